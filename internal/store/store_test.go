package store

import (
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strefethen/yamaha-hub-go/internal/db"
	"github.com/strefethen/yamaha-hub-go/internal/yamaha"
	"github.com/strefethen/yamaha-hub-go/internal/yamaha/desc"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	pair, err := db.Init(filepath.Join(t.TempDir(), "hub.db"))
	require.NoError(t, err)
	t.Cleanup(func() { pair.Close() })
	return NewSQLiteStore(pair)
}

func testRecord(name string) yamaha.ReceiverRecord {
	return yamaha.ReceiverRecord{
		Device: desc.DeviceDescription{
			DeviceID:     "uuid-" + name,
			FriendlyName: name,
			ModelName:    "RX-V675",
		},
		Capabilities: yamaha.CapabilitySet{
			Zones:        []string{"Main_Zone", "Zone_2"},
			InputSources: map[string]string{"NET RADIO": "NET_RADIO"},
		},
		Host:         "192.168.1.40",
		ControlURL:   "http://192.168.1.40:80/YamahaRemoteControl/ctrl",
		DiscoveredAt: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	record := testRecord("Living Room")

	require.NoError(t, store.Save("rx-1", record))

	loaded, err := store.Load("rx-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, record.Device.FriendlyName, loaded.Device.FriendlyName)
	assert.Equal(t, record.Capabilities.Zones, loaded.Capabilities.Zones)
	assert.Equal(t, record.ControlURL, loaded.ControlURL)
	assert.True(t, record.DiscoveredAt.Equal(loaded.DiscoveredAt))
}

func TestSQLiteStoreLoadAbsent(t *testing.T) {
	store := newTestStore(t)

	loaded, err := store.Load("missing")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSQLiteStoreSaveReplaces(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save("rx-1", testRecord("Living Room")))

	updated := testRecord("Living Room")
	updated.Host = "192.168.1.99"
	require.NoError(t, store.Save("rx-1", updated))

	loaded, err := store.Load("rx-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "192.168.1.99", loaded.Host)
}

func TestSQLiteStoreLoadAll(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save("rx-1", testRecord("Living Room")))
	require.NoError(t, store.Save("rx-2", testRecord("Office")))

	records, err := store.LoadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Living Room", records["rx-1"].Device.FriendlyName)
	assert.Equal(t, "Office", records["rx-2"].Device.FriendlyName)
}

func TestSQLiteStoreRemove(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save("rx-1", testRecord("Living Room")))
	require.NoError(t, store.Remove("rx-1"))

	loaded, err := store.Load("rx-1")
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// Removing an absent key is not an error.
	require.NoError(t, store.Remove("rx-1"))
}
