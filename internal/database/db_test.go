package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenMigratedIsRepeatable(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "paramdeck.db")
	db, err := OpenMigrated(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = OpenMigrated(path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM parameter_snapshots`).Scan(&n))
	require.Zero(t, n)
}

func TestRunMigrationsWithDB(t *testing.T) {
	t.Parallel()

	db, err := Open(filepath.Join(t.TempDir(), "x.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, RunMigrationsWithDB(db))
	require.NoError(t, RunMigrationsWithDB(db))
	_, err = db.Exec(`INSERT INTO export_requests(id, model, session_id, export_id, export_name) VALUES ('a', 'm', 's', 'e', 'E')`)
	require.NoError(t, err)
}

func TestWithTxRollsBack(t *testing.T) {
	t.Parallel()

	db, err := OpenMigrated(filepath.Join(t.TempDir(), "tx.db"))
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("boom")
	err = WithTx(db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(context.Background(),
			`INSERT INTO parameter_snapshots(id, model, name, values_json) VALUES ('1', 'm', 'n', '{}')`); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM parameter_snapshots`).Scan(&n))
	require.Zero(t, n)
}
