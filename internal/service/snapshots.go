package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jask/paramdeck/internal/database/repository"
	"github.com/jask/paramdeck/internal/parameter"
	"github.com/jask/paramdeck/internal/store"
)

// SnapshotService saves and restores committed parameter values.
type SnapshotService struct {
	Store     *store.Store
	Snapshots *repository.SnapshotRepo
}

// RestoreResult reports what a restore applied.
type RestoreResult struct {
	Applied int
	// Skipped lists ids that no longer exist or whose value is now invalid.
	Skipped []string
}

// Save stores the exec values of every parameter of sessionID under name.
func (s *SnapshotService) Save(ctx context.Context, sessionID, name string) (repository.Snapshot, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return repository.Snapshot{}, fmt.Errorf("snapshot name required")
	}
	session, ok := s.Store.Session(sessionID)
	if !ok {
		return repository.Snapshot{}, fmt.Errorf("save snapshot: %w", store.ErrSessionNotFound)
	}
	snap := repository.Snapshot{
		ID:     uuid.NewString(),
		Model:  session.ModelID(),
		Name:   name,
		Values: map[string]string{},
	}
	for id, p := range s.Store.Parameters(sessionID) {
		snap.Values[id] = p.State().ExecValue
	}
	id, err := s.Snapshots.Save(ctx, snap)
	if err != nil {
		return repository.Snapshot{}, fmt.Errorf("save snapshot: %w", err)
	}
	snap.ID = id
	return snap, nil
}

// List returns the snapshots of the model behind sessionID.
func (s *SnapshotService) List(ctx context.Context, sessionID string) ([]repository.Snapshot, error) {
	session, ok := s.Store.Session(sessionID)
	if !ok {
		return nil, fmt.Errorf("list snapshots: %w", store.ErrSessionNotFound)
	}
	return s.Snapshots.List(ctx, session.ModelID())
}

// Delete removes a snapshot by name.
func (s *SnapshotService) Delete(ctx context.Context, sessionID, name string) error {
	session, ok := s.Store.Session(sessionID)
	if !ok {
		return fmt.Errorf("delete snapshot: %w", store.ErrSessionNotFound)
	}
	if err := s.Snapshots.Delete(ctx, session.ModelID(), name); err != nil {
		return fmt.Errorf("delete snapshot %q: %w", name, err)
	}
	return nil
}

// Restore applies a snapshot and commits it with a single customization.
func (s *SnapshotService) Restore(ctx context.Context, sessionID, name string) (RestoreResult, error) {
	session, ok := s.Store.Session(sessionID)
	if !ok {
		return RestoreResult{}, fmt.Errorf("restore snapshot: %w", store.ErrSessionNotFound)
	}
	snap, err := s.Snapshots.ByName(ctx, session.ModelID(), name)
	if err != nil {
		return RestoreResult{}, fmt.Errorf("restore snapshot %q: %w", name, err)
	}
	var res RestoreResult
	var changed []*parameter.Parameter
	for id, v := range snap.Values {
		p, ok := s.Store.Parameter(sessionID, store.ByID(id))
		if !ok || !p.SetUIValue(v) {
			res.Skipped = append(res.Skipped, id)
			continue
		}
		res.Applied++
		if p.State().Dirty() {
			changed = append(changed, p)
		}
	}
	if len(changed) == 0 {
		return res, nil
	}
	if err := parameter.ExecuteBatch(ctx, session, s.Store, changed...); err != nil {
		return res, fmt.Errorf("restore snapshot %q: %w", name, err)
	}
	return res, nil
}
