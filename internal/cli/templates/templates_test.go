package templates

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/cli"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/config"
	qerrors "github.com/r91781585-tech/quiet-hours-scheduler/internal/errors"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/notifier"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/storage"
)

func setupTestContext(t *testing.T) (*cli.Context, *storage.MemoryStore, *bytes.Buffer) {
	t.Helper()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Init())
	out := &bytes.Buffer{}
	return &cli.Context{
		Store:    store,
		Config:   config.Default(),
		Out:      out,
		Now:      func() time.Time { return time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC) },
		Notifier: notifier.NewLog(nil),
	}, store, out
}

func TestSaveAndListTemplates(t *testing.T) {
	ctx, _, out := setupTestContext(t)

	require.NoError(t, (&ListCmd{}).Run(ctx))
	assert.Equal(t, "No templates saved.\n", out.String())

	require.NoError(t, (&SaveCmd{Name: "focus", Title: "Deep work", Time: "09:00", Duration: 90}).Run(ctx))
	require.NoError(t, (&SaveCmd{Name: "gym", Title: "Workout", Duration: 45, Recur: "weekly"}).Run(ctx))

	out.Reset()
	require.NoError(t, (&ListCmd{}).Run(ctx))
	assert.Equal(t, "focus: Deep work at 09:00 (90 min)\ngym: Workout (45 min), weekly\n", out.String())
}

func TestSaveTemplateValidation(t *testing.T) {
	ctx, _, _ := setupTestContext(t)

	err := (&SaveCmd{Name: "bad", Title: "Deep work", Time: "9am", Duration: 60}).Run(ctx)
	assert.True(t, qerrors.IsCode(err, qerrors.CodeValidation))

	err = (&SaveCmd{Name: "bad", Title: "Deep work", Duration: 60, Pattern: "1,15"}).Run(ctx)
	assert.Error(t, err, "pattern without recurrence")
}

func TestUseTemplate(t *testing.T) {
	ctx, store, out := setupTestContext(t)
	require.NoError(t, (&SaveCmd{Name: "focus", Title: "Deep work", Time: "14:00", Duration: 60}).Run(ctx))
	require.NoError(t, (&SaveCmd{Name: "open", Title: "Reading", Duration: 60}).Run(ctx))

	require.NoError(t, (&UseCmd{Name: "focus", Date: "2024-03-02"}).Run(ctx))
	assert.Contains(t, out.String(), `from template "focus"`)

	require.NoError(t, (&UseCmd{Name: "focus", Date: "2024-03-03", Time: "16:00"}).Run(ctx))

	require.NoError(t, (&UseCmd{Name: "open", Date: "2024-03-02"}).Run(ctx))

	all, err := store.GetAllSessions()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "14:00", all[0].Time)
	assert.Equal(t, "16:00", all[1].Time)
	assert.Equal(t, "09:00", all[2].Time, "first preferred hour when the template has no time")
	for _, s := range all {
		assert.Equal(t, models.StatusUpcoming, s.Status)
	}

	err = (&UseCmd{Name: "missing", Date: "2024-03-02"}).Run(ctx)
	assert.True(t, qerrors.IsCode(err, qerrors.CodeNotFound))
}
