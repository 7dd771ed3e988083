package status

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strefethen/yamaha-hub-go/internal/config"
	"github.com/strefethen/yamaha-hub-go/internal/devices"
	"github.com/strefethen/yamaha-hub-go/internal/yamaha"
	"github.com/strefethen/yamaha-hub-go/internal/yamaha/ync"
)

func TestVolumeFraction(t *testing.T) {
	tests := []struct {
		db   float64
		want float64
	}{
		{-80, 0},
		{-95, 0},
		{15, 1},
		{20, 1},
		{-32.5, 0.5},
		{-56.25, 0.25},
	}
	for _, tc := range tests {
		assert.InDelta(t, tc.want, volumeFraction(tc.db), 1e-9, "volumeFraction(%v)", tc.db)
	}
}

func TestPlayState(t *testing.T) {
	assert.Equal(t, "playing", playState(ync.PlayStatus{Playing: true}))
	assert.Equal(t, "idle", playState(ync.PlayStatus{}))
}

func TestChangedIgnoresUpdatedAt(t *testing.T) {
	base := Snapshot{
		ReceiverID: "rx-1",
		Zone:       "Main_Zone",
		Power:      true,
		VolumeDB:   -32.5,
		Input:      "NET RADIO",
		PlayState:  "playing",
		UpdatedAt:  "2026-05-01T12:00:00Z",
	}

	same := base
	same.UpdatedAt = "2026-05-01T12:00:10Z"
	assert.False(t, changed(base, same))

	louder := base
	louder.VolumeDB = -30
	assert.True(t, changed(base, louder))
}

func TestMarkStaleKeepsLastGoodSnapshot(t *testing.T) {
	service := &Service{snapshots: make(map[string]Snapshot)}
	service.snapshots["rx-1"] = Snapshot{
		ReceiverID: "rx-1",
		Zone:       "Main_Zone",
		Power:      true,
		VolumeDB:   -32.5,
		Input:      "NET RADIO",
		PlayState:  "playing",
	}

	service.markStale("rx-1", "Main_Zone", errors.New("connection refused"))

	snapshot := service.Latest("rx-1")
	assert.NotNil(t, snapshot)
	assert.True(t, snapshot.Stale)
	assert.Equal(t, "connection refused", snapshot.LastError)
	assert.True(t, snapshot.Power)
	assert.Equal(t, -32.5, snapshot.VolumeDB)
	assert.Equal(t, "NET RADIO", snapshot.Input)
}

func TestMarkStaleWithoutHistory(t *testing.T) {
	service := &Service{snapshots: make(map[string]Snapshot)}

	service.markStale("rx-9", "Main_Zone", errors.New("timeout"))

	snapshot := service.Latest("rx-9")
	assert.NotNil(t, snapshot)
	assert.True(t, snapshot.Stale)
	assert.Equal(t, "unknown", snapshot.PlayState)
	assert.Equal(t, "Main_Zone", snapshot.Zone)
}

const (
	rejectedResponse = `<YAMAHA_AV rsp="GET" RC="2"></YAMAHA_AV>`

	netRadioPlayInfo = `<YAMAHA_AV rsp="GET" RC="0"><NET_RADIO><Play_Info>` +
		`<Playback_Info>Play</Playback_Info>` +
		`<Meta_Info><Station>Radio Paradise</Station><Song>Fragile</Song></Meta_Info>` +
		`</Play_Info></NET_RADIO></YAMAHA_AV>`
)

func basicStatusResponse(input string) string {
	return `<YAMAHA_AV rsp="GET" RC="0"><Main_Zone><Basic_Status>` +
		`<Power_Control><Power>On</Power></Power_Control>` +
		`<Volume><Lvl><Val>-325</Val></Lvl><Mute>Off</Mute></Volume>` +
		`<Input><Input_Sel>` + input + `</Input_Sel></Input>` +
		`</Basic_Status></Main_Zone></YAMAHA_AV>`
}

type memoryRecordStore struct {
	records map[string]yamaha.ReceiverRecord
}

func (m *memoryRecordStore) Load(id string) (*yamaha.ReceiverRecord, error) {
	record, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (m *memoryRecordStore) LoadAll() (map[string]yamaha.ReceiverRecord, error) {
	return m.records, nil
}

func (m *memoryRecordStore) Save(id string, record yamaha.ReceiverRecord) error {
	m.records[id] = record
	return nil
}

func (m *memoryRecordStore) Remove(id string) error {
	delete(m.records, id)
	return nil
}

// newPollerService wires a status service to a single scripted receiver
// registered as "rx-1".
func newPollerService(t *testing.T, handler func(body string) string) *Service {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		w.Write([]byte(handler(string(raw))))
	}))
	t.Cleanup(server.Close)

	record := yamaha.ReceiverRecord{
		Host:       "192.0.2.10",
		ControlURL: server.URL,
		Capabilities: yamaha.CapabilitySet{
			Zones:             []string{"Main_Zone"},
			Commands:          []string{"NET_RADIO,Play_Info"},
			SourcePlayMethods: map[string][]string{"NET_RADIO": {"Play", "Stop"}},
			InputSources:      map[string]string{"NET RADIO": "NET_RADIO"},
		},
	}

	cfg := config.Config{
		ReceiverTimeoutMs: 2000,
		MenuMaxAttempts:   3,
		MenuRetryDelayMs:  1,
	}
	registry := devices.NewService(cfg, nil, ync.NewClient(2*time.Second), &memoryRecordStore{
		records: map[string]yamaha.ReceiverRecord{"rx-1": record},
	})
	require.NoError(t, registry.LoadPersisted())

	return NewService(cfg, nil, registry, nil)
}

func TestPollRetainsLastGoodOnPlayInfoFailure(t *testing.T) {
	var mu sync.Mutex
	failPlayInfo := false

	service := newPollerService(t, func(body string) string {
		mu.Lock()
		defer mu.Unlock()
		if strings.Contains(body, "<Basic_Status>GetParam") {
			return basicStatusResponse("NET RADIO")
		}
		if failPlayInfo {
			return rejectedResponse
		}
		return netRadioPlayInfo
	})

	snapshot := service.Poll(context.Background(), "rx-1")
	require.NotNil(t, snapshot)
	assert.False(t, snapshot.Stale)
	assert.Empty(t, snapshot.LastError)
	assert.Equal(t, "playing", snapshot.PlayState)
	assert.Equal(t, "Radio Paradise", snapshot.Station)
	assert.Equal(t, "Fragile", snapshot.Song)
	assert.Equal(t, ync.PlaybackSupport{Play: true, Stop: true}, snapshot.PlaybackSupport)

	mu.Lock()
	failPlayInfo = true
	mu.Unlock()

	snapshot = service.Poll(context.Background(), "rx-1")
	require.NotNil(t, snapshot)
	assert.True(t, snapshot.Stale)
	assert.NotEmpty(t, snapshot.LastError)
	assert.Equal(t, "playing", snapshot.PlayState)
	assert.Equal(t, "Radio Paradise", snapshot.Station)
	assert.Equal(t, "Fragile", snapshot.Song)
}

func TestPollPlainInputIdleWithoutPlayInfo(t *testing.T) {
	service := newPollerService(t, func(body string) string {
		if strings.Contains(body, "<Basic_Status>GetParam") {
			return basicStatusResponse("AV1")
		}
		// Any other round trip would flip the snapshot stale below.
		return rejectedResponse
	})

	snapshot := service.Poll(context.Background(), "rx-1")
	require.NotNil(t, snapshot)
	assert.False(t, snapshot.Stale)
	assert.Equal(t, "idle", snapshot.PlayState)
	assert.Equal(t, "AV1", snapshot.Input)
	assert.Equal(t, ync.PlaybackSupport{}, snapshot.PlaybackSupport)
}
