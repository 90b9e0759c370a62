package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// SnapshotRepo handles parameter snapshots.
type SnapshotRepo struct {
	db *sql.DB
}

func NewSnapshotRepo(db *sql.DB) *SnapshotRepo { return &SnapshotRepo{db: db} }

// Save inserts s, replacing the values of an existing snapshot with the same
// model and name. The stored id is returned.
func (r *SnapshotRepo) Save(ctx context.Context, s Snapshot) (string, error) {
	values, err := json.Marshal(s.Values)
	if err != nil {
		return "", fmt.Errorf("encode snapshot values: %w", err)
	}
	row := r.db.QueryRowContext(ctx, `
	INSERT INTO parameter_snapshots(id, model, name, values_json, created_at)
	VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(model, name) DO UPDATE SET
	 values_json=excluded.values_json,
	 created_at=CURRENT_TIMESTAMP
	RETURNING id;
	`, s.ID, s.Model, s.Name, string(values))
	var id string
	if err := row.Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (r *SnapshotRepo) List(ctx context.Context, model string) ([]Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, model, name, values_json, created_at FROM parameter_snapshots
	WHERE model = ? ORDER BY created_at DESC, name`, model)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SnapshotRepo) ByName(ctx context.Context, model, name string) (Snapshot, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, model, name, values_json, created_at FROM parameter_snapshots
	WHERE model = ? AND name = ?`, model, name)
	return scanSnapshot(row)
}

func (r *SnapshotRepo) Get(ctx context.Context, id string) (Snapshot, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, model, name, values_json, created_at FROM parameter_snapshots WHERE id = ?`, id)
	return scanSnapshot(row)
}

func (r *SnapshotRepo) Delete(ctx context.Context, model, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM parameter_snapshots WHERE model = ? AND name = ?`, model, name)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (Snapshot, error) {
	var s Snapshot
	var values string
	if err := row.Scan(&s.ID, &s.Model, &s.Name, &values, &s.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{}, ErrNotFound
		}
		return Snapshot{}, err
	}
	if err := json.Unmarshal([]byte(values), &s.Values); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot %s: %w", s.ID, err)
	}
	return s, nil
}
