package audit

import (
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strefethen/yamaha-hub-go/internal/db"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	pair, err := db.Init(filepath.Join(t.TempDir(), "hub.db"))
	require.NoError(t, err)
	t.Cleanup(func() { pair.Close() })
	return NewService(pair, nil, 30)
}

func TestRecordAndList(t *testing.T) {
	service := newTestService(t)

	service.Record(Entry{
		ReceiverID: "rx-1",
		Zone:       "Main_Zone",
		Action:     "volume",
		Parameter:  "-32.5",
		Outcome:    "ok",
		RequestID:  "req-1",
	})
	service.Record(Entry{
		ReceiverID: "rx-1",
		Zone:       "Main_Zone",
		Action:     "input",
		Parameter:  "NET RADIO",
		Outcome:    "error",
		ErrorCode:  "RECEIVER_TIMEOUT",
	})

	entries, err := service.List("rx-1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	for _, entry := range entries {
		assert.NotEmpty(t, entry.EventID)
		assert.NotEmpty(t, entry.CreatedAt)
		assert.Equal(t, "rx-1", entry.ReceiverID)
	}

	var outcomes []string
	for _, entry := range entries {
		outcomes = append(outcomes, entry.Outcome)
	}
	assert.ElementsMatch(t, []string{"ok", "error"}, outcomes)
}

func TestListFiltersByReceiver(t *testing.T) {
	service := newTestService(t)

	service.Record(Entry{ReceiverID: "rx-1", Action: "power_on", Outcome: "ok"})
	service.Record(Entry{ReceiverID: "rx-2", Action: "power_off", Outcome: "ok"})

	entries, err := service.List("rx-2", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "power_off", entries[0].Action)

	all, err := service.List("", 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListClampsLimit(t *testing.T) {
	service := newTestService(t)

	for i := 0; i < 5; i++ {
		service.Record(Entry{ReceiverID: "rx-1", Action: "mute_on", Outcome: "ok"})
	}

	entries, err := service.List("rx-1", 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	entries, err = service.List("rx-1", -1)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
}
