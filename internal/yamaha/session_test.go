package yamaha

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strefethen/yamaha-hub-go/internal/yamaha/ync"
)

const okResponse = `<YAMAHA_AV rsp="PUT" RC="0"></YAMAHA_AV>`

// requestLog records the raw bodies a scripted receiver saw, in order.
type requestLog struct {
	mu     sync.Mutex
	bodies []string
}

func (l *requestLog) add(body string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bodies = append(l.bodies, body)
}

func (l *requestLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.bodies...)
}

func (l *requestLog) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.bodies)
}

// newReceiver starts a scripted receiver. The handler maps a request body to
// a response payload; an empty return sends a bare RC="0" acknowledgment.
func newReceiver(t *testing.T, handler func(body string) string) (*httptest.Server, *requestLog) {
	t.Helper()
	log := &requestLog{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		body := string(raw)
		log.add(body)
		response := handler(body)
		if response == "" {
			response = okResponse
		}
		w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)
	return server, log
}

func testCaps() *CapabilitySet {
	return &CapabilitySet{
		Zones: []string{"Main_Zone", "Zone_2"},
		Commands: []string{
			"NET_RADIO,Play_Info",
			"NET_RADIO,List_Control,Cursor",
			"Main_Zone,Cursor_Control,Cursor",
		},
		ZoneSurroundPrograms: map[string][]string{
			"Main_Zone": {"Straight", "Direct", "Hall in Munich", "2ch Stereo"},
		},
		SourcePlayMethods: map[string][]string{
			"NET_RADIO": {"Play", "Stop"},
		},
		SourceCursorActions: map[string][]string{
			"NET_RADIO": {"Up", "Down", "Sel", "Return"},
			"Main_Zone": {"Up", "Down", "Sel", "Return"},
		},
		InputSources: map[string]string{
			"NET RADIO": "NET_RADIO",
			"HDMI1":     "HDMI_1",
			"TUNER":     "Tuner",
		},
		SceneIDs: map[string]string{"Movie Night": "Scene 1"},
	}
}

func newTestSession(t *testing.T, handler func(body string) string) (*Session, *requestLog) {
	t.Helper()
	server, log := newReceiver(t, handler)
	session, err := NewSession(ync.NewClient(2*time.Second), server.URL, testCaps(), "Main_Zone")
	require.NoError(t, err)
	return session, log
}

func inputResponse(input string) string {
	return `<YAMAHA_AV rsp="GET" RC="0"><Main_Zone><Input><Input_Sel>` + input + `</Input_Sel></Input></Main_Zone></YAMAHA_AV>`
}

func directModeResponse(state string) string {
	return `<YAMAHA_AV rsp="GET" RC="0"><Main_Zone><Sound_Video><Direct><Mode>` + state + `</Mode></Direct></Sound_Video></Main_Zone></YAMAHA_AV>`
}

func TestNewSessionRejectsUnknownZone(t *testing.T) {
	_, err := NewSession(ync.NewClient(time.Second), "http://192.0.2.1/ctrl", testCaps(), "Zone_4")
	require.Error(t, err)

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "zone", validation.Kind)
	assert.Equal(t, "Zone_4", validation.Name)
}

func TestVolumeReadback(t *testing.T) {
	session, _ := newTestSession(t, func(body string) string {
		if strings.Contains(body, "<Volume><Lvl>GetParam") {
			return `<YAMAHA_AV rsp="GET" RC="0"><Main_Zone><Volume><Lvl><Val>-325</Val><Exp>1</Exp><Unit>dB</Unit></Lvl></Volume></Main_Zone></YAMAHA_AV>`
		}
		return ""
	})

	volume, err := session.Volume(context.Background())
	require.NoError(t, err)
	assert.Equal(t, -32.5, volume)
}

func TestSetVolumeRejectsOutOfRange(t *testing.T) {
	session, log := newTestSession(t, func(string) string { return "" })

	for _, db := range []float64{-80.5, 15.5, 100} {
		err := session.SetVolume(context.Background(), db)
		var validation *ValidationError
		require.ErrorAs(t, err, &validation)
		assert.Equal(t, "volume", validation.Kind)
	}
	assert.Zero(t, log.count(), "out of range targets must not reach the receiver")
}

func TestSetVolumeCoercesToHalfSteps(t *testing.T) {
	session, log := newTestSession(t, func(string) string { return "" })

	require.NoError(t, session.SetVolume(context.Background(), -32.4))
	requests := log.all()
	require.Len(t, requests, 1)
	assert.Contains(t, requests[0], "<Val>-320</Val>")
}

func TestSurroundProgramPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		direct   string
		straight string
		program  string
		want     string
	}{
		{name: "direct masks program", direct: "On", straight: "Off", program: "Hall in Munich", want: "Direct"},
		{name: "straight beats named program", direct: "Off", straight: "On", program: "Hall in Munich", want: "Straight"},
		{name: "named program", direct: "Off", straight: "Off", program: "Hall in Munich", want: "Hall in Munich"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			session, _ := newTestSession(t, func(body string) string {
				if strings.Contains(body, "<Direct><Mode>GetParam") {
					return directModeResponse(tc.direct)
				}
				if strings.Contains(body, "<Program_Sel><Current>GetParam") {
					return `<YAMAHA_AV rsp="GET" RC="0"><Main_Zone><Surround><Program_Sel><Current>` +
						`<Straight>` + tc.straight + `</Straight>` +
						`<Sound_Program>` + tc.program + `</Sound_Program>` +
						`</Current></Program_Sel></Surround></Main_Zone></YAMAHA_AV>`
				}
				return ""
			})

			program, err := session.SurroundProgram(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tc.want, program)
		})
	}
}

func TestSetSurroundProgramDisablesDirectFirst(t *testing.T) {
	session, log := newTestSession(t, func(body string) string {
		if strings.Contains(body, "<Direct><Mode>GetParam") {
			return directModeResponse("On")
		}
		return ""
	})

	require.NoError(t, session.SetSurroundProgram(context.Background(), "2ch Stereo"))

	requests := log.all()
	require.Len(t, requests, 3)
	assert.Contains(t, requests[0], "<Direct><Mode>GetParam")
	assert.Contains(t, requests[1], "<Direct><Mode>Off</Mode>")
	assert.Contains(t, requests[2], "<Sound_Program>2ch Stereo</Sound_Program>")
}

func TestSetSurroundProgramRejectsUnknown(t *testing.T) {
	session, log := newTestSession(t, func(string) string { return "" })

	err := session.SetSurroundProgram(context.Background(), "Sci-Fi")
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "surround program", validation.Kind)
	assert.Zero(t, log.count())
}

func TestPlaybackUnsupportedAction(t *testing.T) {
	session, log := newTestSession(t, func(body string) string {
		if strings.Contains(body, "<Input><Input_Sel>GetParam") {
			return inputResponse("NET RADIO")
		}
		return ""
	})

	err := session.Pause(context.Background())
	var unsupported *UnsupportedOperationError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "NET RADIO", unsupported.Source)
	assert.Equal(t, "Pause", unsupported.Action)

	// Only the input readback went over the wire.
	requests := log.all()
	require.Len(t, requests, 1)
	assert.NotContains(t, requests[0], "Play_Control")
}

func TestPlaybackUnsupportedSource(t *testing.T) {
	session, _ := newTestSession(t, func(body string) string {
		if strings.Contains(body, "<Input><Input_Sel>GetParam") {
			return inputResponse("TUNER")
		}
		return ""
	})

	err := session.Play(context.Background())
	var unsupported *UnsupportedOperationError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "TUNER", unsupported.Source)
}

func TestPlaybackIssuesTransportCommand(t *testing.T) {
	session, log := newTestSession(t, func(body string) string {
		if strings.Contains(body, "<Input><Input_Sel>GetParam") {
			return inputResponse("NET RADIO")
		}
		return ""
	})

	require.NoError(t, session.Play(context.Background()))

	requests := log.all()
	require.Len(t, requests, 2)
	assert.Contains(t, requests[1], "<NET_RADIO><Play_Control><Playback>Play</Playback></Play_Control></NET_RADIO>")
}

func TestMenuCursorHDMIRoutesThroughZone(t *testing.T) {
	session, log := newTestSession(t, func(body string) string {
		if strings.Contains(body, "<Input><Input_Sel>GetParam") {
			return inputResponse("HDMI1")
		}
		return ""
	})

	require.NoError(t, session.MenuCursor(context.Background(), ync.CursorUp))

	requests := log.all()
	require.Len(t, requests, 2)
	assert.Contains(t, requests[1], "<Main_Zone><Cursor_Control><Cursor>Up</Cursor></Cursor_Control></Main_Zone>")
}

func TestSetInputRejectsUnknownLabel(t *testing.T) {
	session, log := newTestSession(t, func(string) string { return "" })

	err := session.SetInput(context.Background(), "PHONO")
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "input", validation.Kind)
	assert.Zero(t, log.count())
}

func TestSetSceneResolvesTitle(t *testing.T) {
	session, log := newTestSession(t, func(string) string { return "" })

	require.NoError(t, session.SetScene(context.Background(), "Movie Night"))
	requests := log.all()
	require.Len(t, requests, 1)
	assert.Contains(t, requests[0], "<Scene><Scene_Sel>Scene 1</Scene_Sel></Scene>")

	err := session.SetScene(context.Background(), "Unknown")
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "scene", validation.Kind)
}
