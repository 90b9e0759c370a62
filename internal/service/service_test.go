package service

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/paramdeck/internal/database"
	"github.com/jask/paramdeck/internal/database/repository"
	"github.com/jask/paramdeck/internal/download"
	"github.com/jask/paramdeck/internal/sdk"
	"github.com/jask/paramdeck/internal/store"
)

type fixture struct {
	db      *sql.DB
	store   *store.Store
	session *sdk.MemorySession
	snaps   *SnapshotService
	exports *ExportService
	dlDir   string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	tmpDir := t.TempDir()
	db, err := database.OpenMigrated(filepath.Join(tmpDir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	dlDir := filepath.Join(tmpDir, "downloads")
	st := store.New(store.WithSaver(&download.Downloader{Dir: dlDir}))
	s := sdk.NewDemoSession()
	require.NoError(t, st.AddSession(s))
	return fixture{
		db:      db,
		store:   st,
		session: s,
		snaps:   &SnapshotService{Store: st, Snapshots: repository.NewSnapshotRepo(db)},
		exports: &ExportService{Store: st, Log: repository.NewExportLogRepo(db)},
		dlDir:   dlDir,
	}
}

func TestSnapshotSaveRestore(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	f := newFixture(t)
	sid := f.session.ID()

	width := f.store.MustParameter(sid, store.ByName("Width"))
	require.True(t, width.SetUIValue("90"))
	_, err := width.Execute(ctx, true)
	require.NoError(t, err)

	snap, err := f.snaps.Save(ctx, sid, "narrow")
	require.NoError(t, err)
	require.Equal(t, "demo-shelf", snap.Model)
	require.Equal(t, "90", snap.Values["p-width"])

	// uncommitted edits are not part of a snapshot
	require.True(t, width.SetUIValue("200"))
	again, err := f.snaps.Save(ctx, sid, "narrow")
	require.NoError(t, err)
	require.Equal(t, snap.ID, again.ID)
	require.Equal(t, "90", again.Values["p-width"])

	_, err = width.Execute(ctx, true)
	require.NoError(t, err)
	require.Equal(t, "200", width.State().ExecValue)
	calls := f.session.CustomizeCalls()

	res, err := f.snaps.Restore(ctx, sid, "narrow")
	require.NoError(t, err)
	require.Equal(t, 9, res.Applied)
	require.Empty(t, res.Skipped)
	require.Equal(t, calls+1, f.session.CustomizeCalls())
	require.Equal(t, "90", width.State().ExecValue)

	list, err := f.snaps.List(ctx, sid)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = f.snaps.Restore(ctx, sid, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
	_, err = f.snaps.Save(ctx, sid, " ")
	require.Error(t, err)
	_, err = f.snaps.Save(ctx, "nope", "x")
	require.ErrorIs(t, err, store.ErrSessionNotFound)

	require.NoError(t, f.snaps.Delete(ctx, sid, "narrow"))
	require.ErrorIs(t, f.snaps.Delete(ctx, sid, "narrow"), repository.ErrNotFound)
}

func TestSnapshotRestoreSkipsStaleValues(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	repo := repository.NewSnapshotRepo(f.db)
	_, err := repo.Save(ctx, repository.Snapshot{
		ID:     "snap-1",
		Model:  "demo-shelf",
		Name:   "old",
		Values: map[string]string{"p-width": "9999", "p-gone": "1", "p-depth": "35"},
	})
	require.NoError(t, err)

	res, err := f.snaps.Restore(ctx, f.session.ID(), "old")
	require.NoError(t, err)
	require.Equal(t, 1, res.Applied)
	require.ElementsMatch(t, []string{"p-width", "p-gone"}, res.Skipped)
	// nothing changed, so no customization
	require.Zero(t, f.session.CustomizeCalls())
}

func TestExportRequestLogsAndDownloads(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	sid := f.session.ID()

	res, err := f.exports.Request(ctx, sid, store.Any("Cut list"), map[string]string{"Depth": "50"})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(f.dlDir, "Cutlist.txt"), res.SavedPath)

	_, err = f.exports.Request(ctx, sid, store.Any("Email quote"), nil)
	require.NoError(t, err)

	hist, err := f.exports.History(ctx, sid, 10)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	require.Equal(t, "Quote", hist[0].ExportName)
	require.Equal(t, "Cutlist", hist[1].ExportName)
	require.Equal(t, "txt", hist[1].Format)
	require.Equal(t, res.SavedPath, hist[1].SavedPath)

	_, err = f.exports.Request(ctx, sid, store.Any("nope"), nil)
	require.ErrorIs(t, err, store.ErrExportNotFound)
	_, err = f.exports.Request(ctx, sid, store.Any("Model"), map[string]string{"Depth": "500"})
	require.ErrorIs(t, err, sdk.ErrInvalidValue)
	_, err = f.exports.Request(ctx, sid, store.Any("Model"), map[string]string{"Bogus": "1"})
	require.ErrorIs(t, err, store.ErrParameterNotFound)

	boom := errors.New("export backend down")
	f.session.FailExports(boom)
	_, err = f.exports.Request(ctx, sid, store.Any("Model"), nil)
	require.ErrorIs(t, err, boom)

	hist, err = f.exports.History(ctx, sid, 0)
	require.NoError(t, err)
	require.Len(t, hist, 2)
}

func TestMaintenanceReset(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	_, err := f.snaps.Save(ctx, f.session.ID(), "a")
	require.NoError(t, err)
	_, err = f.exports.Request(ctx, f.session.ID(), store.Any("Quote"), nil)
	require.NoError(t, err)

	m := &MaintenanceService{DB: f.db}
	require.NoError(t, m.Reset(ctx))

	list, err := f.snaps.List(ctx, f.session.ID())
	require.NoError(t, err)
	require.Empty(t, list)
	hist, err := f.exports.History(ctx, f.session.ID(), 0)
	require.NoError(t, err)
	require.Empty(t, hist)

	require.Error(t, (&MaintenanceService{}).Reset(ctx))
}
