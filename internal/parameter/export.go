package parameter

import (
	"context"
	"fmt"

	"github.com/jask/paramdeck/internal/sdk"
)

// Saver stores a downloaded export artifact and returns where it went.
type Saver interface {
	Save(ctx context.Context, href, filename string) (string, error)
}

// Export wraps one session export.
type Export struct {
	session sdk.Session
	export  sdk.Export
	def     sdk.ExportDefinition
	saver   Saver
}

// NewExport builds a handle for export id of session. Saver may be nil, in
// which case download exports are not fetched.
func NewExport(session sdk.Session, id string, saver Saver) (*Export, error) {
	e, ok := session.Exports()[id]
	if !ok {
		return nil, fmt.Errorf("session %s: no export %q", session.ID(), id)
	}
	return &Export{session: session, export: e, def: e.Definition(), saver: saver}, nil
}

func (e *Export) Definition() sdk.ExportDefinition { return e.def }

func (e *Export) SessionID() string { return e.session.ID() }

// Result is an export response plus the local path of a saved download.
type Result struct {
	sdk.ExportResponse
	SavedPath string
}

// Request runs the export with per-call overrides keyed by parameter id.
func (e *Export) Request(ctx context.Context, overrides map[string]string) (Result, error) {
	res, err := e.export.Request(ctx, overrides)
	if err != nil {
		return Result{}, err
	}
	out := Result{ExportResponse: res}
	if e.def.Type != sdk.ExportDownload || e.saver == nil || len(res.Content) == 0 {
		return out, nil
	}
	c := res.Content[0]
	name := res.Filename
	if c.Format != "" {
		name += "." + c.Format
	}
	path, err := e.saver.Save(ctx, c.Href, name)
	if err != nil {
		return out, fmt.Errorf("save export %s: %w", e.def.Name, err)
	}
	out.SavedPath = path
	return out, nil
}
