package backups

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/cli"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/config"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/storage"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/storage/sqlite"
)

func setupTestContext(t *testing.T) (*cli.Context, *sqlite.Store, *bytes.Buffer) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, store.Init())
	t.Cleanup(func() { _ = store.Close() })

	out := &bytes.Buffer{}
	return &cli.Context{Store: store, Config: config.Default(), Out: out}, store, out
}

func session(id string) models.Session {
	return models.Session{
		ID:          id,
		Title:       "Session " + id,
		Date:        "2024-03-02",
		Time:        "09:00",
		DurationMin: 60,
		Status:      models.StatusUpcoming,
		CreatedAt:   time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestBackupCreateAndList(t *testing.T) {
	ctx, _, out := setupTestContext(t)

	require.NoError(t, (&ListCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "No backups found.")

	out.Reset()
	require.NoError(t, (&CreateCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "✓ Backup created: quiethours-")

	out.Reset()
	require.NoError(t, (&ListCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "Available backups (1):")
}

func TestBackupRestore(t *testing.T) {
	ctx, store, out := setupTestContext(t)
	require.NoError(t, store.AppendSessions([]models.Session{session("a")}))
	require.NoError(t, (&CreateCmd{}).Run(ctx))

	backups, err := manager(ctx)
	require.NoError(t, err)
	list, err := backups.ListBackups()
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, store.AppendSessions([]models.Session{session("b")}))

	ctx.In = strings.NewReader("no\n")
	require.NoError(t, (&RestoreCmd{BackupFile: filepath.Base(list[0].Path)}).Run(ctx))
	assert.Contains(t, out.String(), "Restore cancelled.")

	out.Reset()
	require.NoError(t, (&RestoreCmd{BackupFile: list[0].Path, Yes: true}).Run(ctx))
	assert.Contains(t, out.String(), "✓ Database restored successfully!")
	assert.Contains(t, out.String(), "The replaced database was saved as")

	require.NoError(t, store.Load())
	all, err := store.GetAllSessions()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "a", all[0].ID)
}

func TestBackupRequiresSQLite(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.Init())
	ctx := &cli.Context{Store: store, Out: &bytes.Buffer{}}

	assert.Error(t, (&CreateCmd{}).Run(ctx))
	assert.Error(t, (&ListCmd{}).Run(ctx))
	assert.Error(t, (&RestoreCmd{BackupFile: "x.db", Yes: true}).Run(ctx))
	assert.ErrorContains(t, (&RestoreCmd{BackupFile: "missing.db", Yes: true}).Run(&cli.Context{Store: sqlite.NewStore(filepath.Join(t.TempDir(), "q.db"))}), "backup file not found")
}
