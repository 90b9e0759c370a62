package repository

import (
	"context"
	"database/sql"
)

// ExportLogRepo records export requests.
type ExportLogRepo struct {
	db *sql.DB
}

func NewExportLogRepo(db *sql.DB) *ExportLogRepo { return &ExportLogRepo{db: db} }

func (r *ExportLogRepo) Add(ctx context.Context, e ExportRecord) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO export_requests(
	 id, model, session_id, export_id, export_name, filename, href, format, saved_path, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP);
	`, e.ID, e.Model, e.SessionID, e.ExportID, e.ExportName, e.Filename, e.Href, e.Format, e.SavedPath)
	return err
}

// List returns the newest records for model first. limit <= 0 means no limit.
func (r *ExportLogRepo) List(ctx context.Context, model string, limit int) ([]ExportRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, model, session_id, export_id, export_name, filename, href, format, saved_path, created_at
	FROM export_requests WHERE model = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`, model, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ExportRecord
	for rows.Next() {
		var e ExportRecord
		if err := rows.Scan(&e.ID, &e.Model, &e.SessionID, &e.ExportID, &e.ExportName,
			&e.Filename, &e.Href, &e.Format, &e.SavedPath, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
