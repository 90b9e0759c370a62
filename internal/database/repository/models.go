package repository

import (
	"errors"
	"time"
)

// ErrNotFound is returned by single-row lookups that match nothing.
var ErrNotFound = errors.New("not found")

// Snapshot is a named set of committed parameter values for a model.
type Snapshot struct {
	ID        string
	Model     string
	Name      string
	Values    map[string]string // parameter id -> value
	CreatedAt time.Time
}

// ExportRecord logs one export request.
type ExportRecord struct {
	ID         string
	Model      string
	SessionID  string
	ExportID   string
	ExportName string
	Filename   string
	Href       string
	Format     string
	SavedPath  string
	CreatedAt  time.Time
}
