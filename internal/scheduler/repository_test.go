package scheduler

import (
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strefethen/yamaha-hub-go/internal/db"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	pair, err := db.Init(filepath.Join(t.TempDir(), "hub.db"))
	require.NoError(t, err)
	t.Cleanup(func() { pair.Close() })
	return NewRepository(pair)
}

func TestRepositoryCRUD(t *testing.T) {
	repo := newTestRepository(t)

	routine := Routine{
		Name:       "Morning radio",
		Enabled:    true,
		ReceiverID: "rx-1",
		Zone:       "Main_Zone",
		Action:     "net_radio",
		Parameter:  "Bookmarks>Radio Paradise",
		CronExpr:   "0 7 * * *",
	}
	require.NoError(t, repo.Create(&routine))
	require.NotEmpty(t, routine.RoutineID)

	loaded, err := repo.Get(routine.RoutineID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "Morning radio", loaded.Name)
	assert.True(t, loaded.Enabled)
	assert.Equal(t, "Bookmarks>Radio Paradise", loaded.Parameter)
	assert.Nil(t, loaded.LastRunAt)
	assert.False(t, loaded.CreatedAt.IsZero())

	loaded.Enabled = false
	loaded.Name = "Morning radio (paused)"
	existed, err := repo.Update(*loaded)
	require.NoError(t, err)
	assert.True(t, existed)

	updated, err := repo.Get(routine.RoutineID)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.False(t, updated.Enabled)
	assert.Equal(t, "Morning radio (paused)", updated.Name)

	deleted, err := repo.Delete(routine.RoutineID)
	require.NoError(t, err)
	assert.True(t, deleted)

	gone, err := repo.Get(routine.RoutineID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestRepositoryGetAbsent(t *testing.T) {
	repo := newTestRepository(t)

	routine, err := repo.Get("nope")
	require.NoError(t, err)
	assert.Nil(t, routine)

	existed, err := repo.Update(Routine{RoutineID: "nope"})
	require.NoError(t, err)
	assert.False(t, existed)

	deleted, err := repo.Delete("nope")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestRepositoryListEnabled(t *testing.T) {
	repo := newTestRepository(t)

	on := Routine{Name: "on", Enabled: true, ReceiverID: "rx-1", Action: "power_on", CronExpr: "0 7 * * *"}
	off := Routine{Name: "off", Enabled: false, ReceiverID: "rx-1", Action: "power_off", CronExpr: "0 23 * * *"}
	require.NoError(t, repo.Create(&on))
	require.NoError(t, repo.Create(&off))

	all, err := repo.List()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	enabled, err := repo.ListEnabled()
	require.NoError(t, err)
	require.Len(t, enabled, 1)
	assert.Equal(t, "on", enabled[0].Name)
}

func TestRepositoryMarkRun(t *testing.T) {
	repo := newTestRepository(t)

	routine := Routine{Name: "radio", Enabled: true, ReceiverID: "rx-1", Action: "net_radio", CronExpr: "0 7 * * *"}
	require.NoError(t, repo.Create(&routine))

	ranAt := time.Date(2026, 5, 1, 7, 0, 10, 0, time.UTC)
	require.NoError(t, repo.MarkRun(routine.RoutineID, ranAt))

	loaded, err := repo.Get(routine.RoutineID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.NotNil(t, loaded.LastRunAt)
	assert.True(t, loaded.LastRunAt.Equal(ranAt))
}
