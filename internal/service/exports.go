package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jask/paramdeck/internal/database/repository"
	"github.com/jask/paramdeck/internal/parameter"
	"github.com/jask/paramdeck/internal/store"
)

// ExportService runs exports and keeps a log of them.
type ExportService struct {
	Store *store.Store
	Log   *repository.ExportLogRepo
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Request runs the export identified by k with parameter overrides keyed by
// any parameter key form. Overrides are validated before the request.
func (s *ExportService) Request(ctx context.Context, sessionID string, k store.Key, overrides map[string]string) (parameter.Result, error) {
	session, ok := s.Store.Session(sessionID)
	if !ok {
		return parameter.Result{}, fmt.Errorf("export: %w", store.ErrSessionNotFound)
	}
	exp, ok := s.Store.Export(sessionID, k)
	if !ok {
		return parameter.Result{}, fmt.Errorf("export %s: %w", k, store.ErrExportNotFound)
	}
	byID := make(map[string]string, len(overrides))
	for key, v := range overrides {
		p, ok := s.Store.Parameter(sessionID, store.ParseKey(key))
		if !ok {
			return parameter.Result{}, fmt.Errorf("export override %s: %w", key, store.ErrParameterNotFound)
		}
		if _, err := p.IsValid(v, true); err != nil {
			return parameter.Result{}, fmt.Errorf("export override: %w", err)
		}
		byID[p.Definition().ID] = v
	}

	res, err := exp.Request(ctx, byID)
	if err != nil {
		return res, err
	}
	rec := repository.ExportRecord{
		ID:         uuid.NewString(),
		Model:      session.ModelID(),
		SessionID:  sessionID,
		ExportID:   exp.Definition().ID,
		ExportName: exp.Definition().Name,
		Filename:   res.Filename,
		SavedPath:  res.SavedPath,
	}
	if len(res.Content) > 0 {
		rec.Href = res.Content[0].Href
		rec.Format = res.Content[0].Format
	}
	if s.Log != nil {
		if err := s.Log.Add(ctx, rec); err != nil {
			// the export already happened; only the log line is lost
			s.logger().Warn("export log write failed", "export", rec.ExportName, "err", err)
		}
	}
	s.logger().Info("export requested", "session", sessionID, "export", rec.ExportName, "saved", rec.SavedPath)
	return res, nil
}

// History lists logged exports for the model behind sessionID.
func (s *ExportService) History(ctx context.Context, sessionID string, limit int) ([]repository.ExportRecord, error) {
	session, ok := s.Store.Session(sessionID)
	if !ok {
		return nil, fmt.Errorf("export history: %w", store.ErrSessionNotFound)
	}
	if s.Log == nil {
		return nil, nil
	}
	return s.Log.List(ctx, session.ModelID(), limit)
}

func (s *ExportService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
