package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qerrors "github.com/r91781585-tech/quiet-hours-scheduler/internal/errors"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/storage/sqlite"
)

func session(id string) models.Session {
	return models.Session{
		ID:          id,
		Title:       "Session " + id,
		Date:        "2024-01-01",
		Time:        "09:00",
		DurationMin: 30,
		Status:      models.StatusUpcoming,
		CreatedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// setupTestDB creates an initialised store holding the given sessions and
// closes it so the file can be snapshotted.
func setupTestDB(t *testing.T, ids ...string) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "quiethours.db")
	store := sqlite.NewStore(dbPath)
	require.NoError(t, store.Init())
	for _, id := range ids {
		require.NoError(t, store.AppendSessions([]models.Session{session(id)}))
	}
	require.NoError(t, store.Close())
	return dbPath
}

func sessionIDs(t *testing.T, dbPath string) []string {
	t.Helper()
	store := sqlite.NewStore(dbPath)
	require.NoError(t, store.Load())
	defer store.Close()
	all, err := store.GetAllSessions()
	require.NoError(t, err)
	ids := make([]string, 0, len(all))
	for _, s := range all {
		ids = append(ids, s.ID)
	}
	return ids
}

// tickingClock advances one minute per call so every backup gets its own name.
func tickingClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Minute)
		return current
	}
}

func TestCreateBackup(t *testing.T) {
	dbPath := setupTestDB(t, "a")
	mgr := NewManager(dbPath).WithClock(func() time.Time {
		return time.Date(2024, 3, 1, 9, 30, 0, 0, time.Local)
	})

	path, err := mgr.CreateBackup()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(mgr.Dir(), "quiethours-20240301-0930.db"), path)
	assert.Equal(t, []string{"a"}, sessionIDs(t, path))
}

func TestUniqueBackupFilenames(t *testing.T) {
	dbPath := setupTestDB(t)
	fixed := time.Date(2024, 3, 1, 9, 30, 15, 0, time.Local)
	mgr := NewManager(dbPath).WithClock(func() time.Time { return fixed })

	seen := map[string]bool{}
	for i := 0; i < 4; i++ {
		path, err := mgr.CreateBackup()
		require.NoError(t, err)
		assert.False(t, seen[path], "duplicate backup name %s", path)
		seen[path] = true
	}

	backups, err := mgr.ListBackups()
	require.NoError(t, err)
	assert.Len(t, backups, 4)
}

func TestBackupRotation(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath).
		WithClock(tickingClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local))).
		WithRetention(3)

	var last string
	for i := 0; i < 5; i++ {
		var err error
		last, err = mgr.CreateBackup()
		require.NoError(t, err)
	}

	backups, err := mgr.ListBackups()
	require.NoError(t, err)
	require.Len(t, backups, 3)
	assert.Equal(t, last, backups[0].Path, "newest backup first")
	assert.True(t, backups[0].Timestamp.After(backups[2].Timestamp))
}

func TestListBackupsIgnoresForeignFiles(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	backups, err := mgr.ListBackups()
	require.NoError(t, err)
	assert.Empty(t, backups, "missing directory lists nothing")

	require.NoError(t, os.MkdirAll(mgr.Dir(), 0700))
	for _, name := range []string{"notes.txt", "quiethours-garbage.db", "quiethours-20240301-0930-x.db"} {
		require.NoError(t, os.WriteFile(filepath.Join(mgr.Dir(), name), []byte("x"), 0600))
	}
	require.NoError(t, os.WriteFile(filepath.Join(mgr.Dir(), "quiethours-20240301-093015-2.db"), []byte("x"), 0600))

	backups, err = mgr.ListBackups()
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Equal(t, 15, backups[0].Timestamp.Second())
}

func TestRestoreBackup(t *testing.T) {
	dbPath := setupTestDB(t, "a")
	mgr := NewManager(dbPath).WithClock(tickingClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local)))

	snapshot, err := mgr.CreateBackup()
	require.NoError(t, err)

	store := sqlite.NewStore(dbPath)
	require.NoError(t, store.Load())
	require.NoError(t, store.AppendSessions([]models.Session{session("b")}))
	require.NoError(t, store.Close())
	assert.Equal(t, []string{"a", "b"}, sessionIDs(t, dbPath))

	previous, err := mgr.RestoreBackup(snapshot)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, sessionIDs(t, dbPath))

	require.NotEmpty(t, previous, "current database is saved before restoring")
	assert.Equal(t, []string{"a", "b"}, sessionIDs(t, previous))
}

func TestRestoreErrors(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	_, err := mgr.RestoreBackup(filepath.Join(t.TempDir(), "missing.db"))
	assert.True(t, qerrors.IsCode(err, qerrors.CodeIO))

	corrupt := filepath.Join(t.TempDir(), "corrupt.db")
	require.NoError(t, os.WriteFile(corrupt, []byte("definitely not sqlite, just padding to exceed header size......................................................"), 0600))
	_, err = mgr.RestoreBackup(corrupt)
	assert.Error(t, err)

	backups, err := mgr.ListBackups()
	require.NoError(t, err)
	assert.Empty(t, backups, "failed restore leaves no pre-restore snapshot")
}

func TestBackupWithNoDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "none.db"))
	_, err := mgr.CreateBackup()
	assert.True(t, qerrors.IsCode(err, qerrors.CodeIO))
}
