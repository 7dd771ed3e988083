package control

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/strefethen/yamaha-hub-go/internal/api"
	"github.com/strefethen/yamaha-hub-go/internal/apperrors"
	"github.com/strefethen/yamaha-hub-go/internal/yamaha"
	"github.com/strefethen/yamaha-hub-go/internal/yamaha/ync"
)

type powerRequest struct {
	On bool `json:"on"`
}

type volumeRequest struct {
	DB         float64 `json:"db"`
	FadeStepMs int     `json:"fade_step_ms,omitempty"`
}

type muteRequest struct {
	Muted bool `json:"muted"`
}

type inputRequest struct {
	Input string `json:"input"`
}

type surroundRequest struct {
	Program string `json:"program"`
}

type directRequest struct {
	On bool `json:"on"`
}

type playbackRequest struct {
	Action string `json:"action"`
}

type cursorRequest struct {
	Action string `json:"action"`
}

type traverseRequest struct {
	Input string `json:"input"`
	Path  string `json:"path"`
}

type pathRequest struct {
	Path string `json:"path"`
}

type jumpRequest struct {
	Line int `json:"line"`
}

type sceneRequest struct {
	Scene string `json:"scene"`
}

type sleepRequest struct {
	Value string `json:"value"`
}

type partyRequest struct {
	On bool `json:"on"`
}

type hdmiOutputRequest struct {
	Enabled bool `json:"enabled"`
}

type drcRequest struct {
	Auto bool `json:"auto"`
}

type dialogueRequest struct {
	Level int `json:"level"`
}

// RegisterRoutes wires the receiver command surface to the router. All zone
// routes live under /v1/receivers/{receiver_id}/zones/{zone}.
func RegisterRoutes(router chi.Router, service *Service) {
	zonePrefix := "/v1/receivers/{receiver_id}/zones/{zone}"
	recvPrefix := "/v1/receivers/{receiver_id}"

	// --- power ---

	router.Method(http.MethodGet, zonePrefix+"/power", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		receiverID, zone := params(r)
		var on bool
		if err := service.read(receiverID, zone, func(s *yamaha.Session) error {
			var err error
			on, err = s.IsOn(r.Context())
			return err
		}); err != nil {
			return err
		}
		return api.WriteJSON(w, http.StatusOK, map[string]any{"on": on})
	}))

	router.Method(http.MethodPut, zonePrefix+"/power", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		receiverID, zone := params(r)
		var body powerRequest
		if err := api.DecodeJSONBody(r, &body); err != nil {
			return err
		}
		if err := service.command(r, receiverID, zone, "power", strconv.FormatBool(body.On), func(s *yamaha.Session) error {
			return s.SetPower(r.Context(), body.On)
		}); err != nil {
			return err
		}
		return api.WriteJSON(w, http.StatusOK, map[string]any{"on": body.On})
	}))

	// --- basic status ---

	router.Method(http.MethodGet, zonePrefix+"/basic", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		receiverID, zone := params(r)
		var basic ync.BasicStatus
		if err := service.read(receiverID, zone, func(s *yamaha.Session) error {
			var err error
			basic, err = s.BasicStatus(r.Context())
			return err
		}); err != nil {
			return err
		}
		return api.WriteResource(w, http.StatusOK, basic)
	}))

	// --- volume ---

	router.Method(http.MethodGet, zonePrefix+"/volume", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		receiverID, zone := params(r)
		var db float64
		if err := service.read(receiverID, zone, func(s *yamaha.Session) error {
			var err error
			db, err = s.Volume(r.Context())
			return err
		}); err != nil {
			return err
		}
		return api.WriteJSON(w, http.StatusOK, map[string]any{"db": db})
	}))

	router.Method(http.MethodPut, zonePrefix+"/volume", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		receiverID, zone := params(r)
		var body volumeRequest
		if err := api.DecodeJSONBody(r, &body); err != nil {
			return err
		}
		parameter := strconv.FormatFloat(body.DB, 'f', 1, 64)
		if err := service.command(r, receiverID, zone, "volume", parameter, func(s *yamaha.Session) error {
			if body.FadeStepMs > 0 {
				return s.FadeVolume(r.Context(), body.DB, time.Duration(body.FadeStepMs)*time.Millisecond)
			}
			return s.SetVolume(r.Context(), body.DB)
		}); err != nil {
			return err
		}
		return api.WriteJSON(w, http.StatusOK, map[string]any{"db": body.DB})
	}))

	// --- mute ---

	router.Method(http.MethodGet, zonePrefix+"/mute", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		receiverID, zone := params(r)
		var muted bool
		if err := service.read(receiverID, zone, func(s *yamaha.Session) error {
			var err error
			muted, err = s.Muted(r.Context())
			return err
		}); err != nil {
			return err
		}
		return api.WriteJSON(w, http.StatusOK, map[string]any{"muted": muted})
	}))

	router.Method(http.MethodPut, zonePrefix+"/mute", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		receiverID, zone := params(r)
		var body muteRequest
		if err := api.DecodeJSONBody(r, &body); err != nil {
			return err
		}
		if err := service.command(r, receiverID, zone, "mute", strconv.FormatBool(body.Muted), func(s *yamaha.Session) error {
			return s.SetMute(r.Context(), body.Muted)
		}); err != nil {
			return err
		}
		return api.WriteJSON(w, http.StatusOK, map[string]any{"muted": body.Muted})
	}))

	// --- input ---

	router.Method(http.MethodGet, zonePrefix+"/input", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		receiverID, zone := params(r)
		var input string
		var available []string
		if err := service.read(receiverID, zone, func(s *yamaha.Session) error {
			var err error
			input, err = s.Input(r.Context())
			available = s.Inputs()
			return err
		}); err != nil {
			return err
		}
		return api.WriteJSON(w, http.StatusOK, map[string]any{
			"input":     input,
			"available": available,
		})
	}))

	router.Method(http.MethodPut, zonePrefix+"/input", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		receiverID, zone := params(r)
		var body inputRequest
		if err := api.DecodeJSONBody(r, &body); err != nil {
			return err
		}
		if err := service.command(r, receiverID, zone, "input", body.Input, func(s *yamaha.Session) error {
			return s.SetInput(r.Context(), body.Input)
		}); err != nil {
			return err
		}
		return api.WriteJSON(w, http.StatusOK, map[string]any{"input": body.Input})
	}))

	// --- surround ---

	router.Method(http.MethodGet, zonePrefix+"/surround", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		receiverID, zone := params(r)
		var program string
		var available []string
		if err := service.read(receiverID, zone, func(s *yamaha.Session) error {
			var err error
			program, err = s.SurroundProgram(r.Context())
			available = s.SurroundPrograms()
			return err
		}); err != nil {
			return err
		}
		return api.WriteJSON(w, http.StatusOK, map[string]any{
			"program":   program,
			"available": available,
		})
	}))

	router.Method(http.MethodPut, zonePrefix+"/surround", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		receiverID, zone := params(r)
		var body surroundRequest
		if err := api.DecodeJSONBody(r, &body); err != nil {
			return err
		}
		if err := service.command(r, receiverID, zone, "surround", body.Program, func(s *yamaha.Session) error {
			return s.SetSurroundProgram(r.Context(), body.Program)
		}); err != nil {
			return err
		}
		return api.WriteJSON(w, http.StatusOK, map[string]any{"program": body.Program})
	}))

	router.Method(http.MethodGet, zonePrefix+"/surround/direct", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		receiverID, zone := params(r)
		var on bool
		if err := service.read(receiverID, zone, func(s *yamaha.Session) error {
			var err error
			on, err = s.DirectModeEnabled(r.Context())
			return err
		}); err != nil {
			return err
		}
		return api.WriteJSON(w, http.StatusOK, map[string]any{"on": on})
	}))

	router.Method(http.MethodPut, zonePrefix+"/surround/direct", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		receiverID, zone := params(r)
		var body directRequest
		if err := api.DecodeJSONBody(r, &body); err != nil {
			return err
		}
		if err := service.command(r, receiverID, zone, "direct", strconv.FormatBool(body.On), func(s *yamaha.Session) error {
			return s.SetDirectMode(r.Context(), body.On)
		}); err != nil {
			return err
		}
		return api.WriteJSON(w, http.StatusOK, map[string]any{"on": body.On})
	}))

	// --- playback ---

	router.Method(http.MethodPost, zonePrefix+"/playback", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		receiverID, zone := params(r)
		var body playbackRequest
		if err := api.DecodeJSONBody(r, &body); err != nil {
			return err
		}
		action, err := playbackAction(body.Action)
		if err != nil {
			return err
		}
		if err := service.command(r, receiverID, zone, "playback", body.Action, func(s *yamaha.Session) error {
			return s.Playback(r.Context(), action)
		}); err != nil {
			return err
		}
		return api.WriteJSON(w, http.StatusOK, map[string]any{"action": body.Action})
	}))

	router.Method(http.MethodGet, zonePrefix+"/play-status", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		receiverID, zone := params(r)
		input := r.URL.Query().Get("input")
		var play ync.PlayStatus
		if err := service.read(receiverID, zone, func(s *yamaha.Session) error {
			var err error
			play, err = s.PlayStatus(r.Context(), input)
			return err
		}); err != nil {
			return err
		}
		return api.WriteResource(w, http.StatusOK, play)
	}))

	// --- menu ---

	router.Method(http.MethodGet, zonePrefix+"/menu", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		receiverID, zone := params(r)
		var menu ync.MenuStatus
		if err := service.read(receiverID, zone, func(s *yamaha.Session) error {
			var err error
			menu, err = s.MenuStatus(r.Context())
			return err
		}); err != nil {
			return err
		}
		return api.WriteResource(w, http.StatusOK, menu)
	}))

	router.Method(http.MethodPost, zonePrefix+"/menu/cursor", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		receiverID, zone := params(r)
		var body cursorRequest
		if err := api.DecodeJSONBody(r, &body); err != nil {
			return err
		}
		if err := service.command(r, receiverID, zone, "cursor", body.Action, func(s *yamaha.Session) error {
			return s.MenuCursor(r.Context(), ync.CursorAction(body.Action))
		}); err != nil {
			return err
		}
		return api.WriteJSON(w, http.StatusOK, map[string]any{"action": body.Action})
	}))

	router.Method(http.MethodPost, zonePrefix+"/menu/jump", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		receiverID, zone := params(r)
		var body jumpRequest
		if err := api.DecodeJSONBody(r, &body); err != nil {
			return err
		}
		if body.Line < 1 {
			return apperrors.NewValidationError("line must be a positive integer", map[string]any{
				"line": body.Line,
			})
		}
		if err := service.command(r, receiverID, zone, "menu_jump", strconv.Itoa(body.Line), func(s *yamaha.Session) error {
			return s.MenuJumpLine(r.Context(), body.Line)
		}); err != nil {
			return err
		}
		return api.WriteJSON(w, http.StatusOK, map[string]any{"line": body.Line})
	}))

	router.Method(http.MethodPost, zonePrefix+"/menu/traverse", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		receiverID, zone := params(r)
		var body traverseRequest
		if err := api.DecodeJSONBody(r, &body); err != nil {
			return err
		}
		if body.Input == "" || body.Path == "" {
			return apperrors.NewValidationError("input and path are required", nil)
		}
		parameter := fmt.Sprintf("%s: %s", body.Input, body.Path)
		if err := service.command(r, receiverID, zone, "menu_traverse", parameter, func(s *yamaha.Session) error {
			return s.TraverseMenu(r.Context(), body.Input, body.Path)
		}); err != nil {
			return err
		}
		return api.WriteJSON(w, http.StatusOK, map[string]any{
			"input": body.Input,
			"path":  body.Path,
		})
	}))

	router.Method(http.MethodPost, zonePrefix+"/net-radio", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		receiverID, zone := params(r)
		var body pathRequest
		if err := api.DecodeJSONBody(r, &body); err != nil {
			return err
		}
		if body.Path == "" {
			return apperrors.NewValidationError("path is required", nil)
		}
		if err := service.command(r, receiverID, zone, "net_radio", body.Path, func(s *yamaha.Session) error {
			return s.PlayNetRadio(r.Context(), body.Path)
		}); err != nil {
			return err
		}
		return api.WriteJSON(w, http.StatusOK, map[string]any{"path": body.Path})
	}))

	router.Method(http.MethodPost, zonePrefix+"/server", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		receiverID, zone := params(r)
		var body pathRequest
		if err := api.DecodeJSONBody(r, &body); err != nil {
			return err
		}
		if body.Path == "" {
			return apperrors.NewValidationError("path is required", nil)
		}
		if err := service.command(r, receiverID, zone, "server", body.Path, func(s *yamaha.Session) error {
			return s.PlayServer(r.Context(), body.Path)
		}); err != nil {
			return err
		}
		return api.WriteJSON(w, http.StatusOK, map[string]any{"path": body.Path})
	}))

	// --- scene ---

	router.Method(http.MethodGet, zonePrefix+"/scene", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		receiverID, zone := params(r)
		var scene string
		if err := service.read(receiverID, zone, func(s *yamaha.Session) error {
			var err error
			scene, err = s.Scene(r.Context())
			return err
		}); err != nil {
			return err
		}
		return api.WriteJSON(w, http.StatusOK, map[string]any{"scene": scene})
	}))

	router.Method(http.MethodPut, zonePrefix+"/scene", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		receiverID, zone := params(r)
		var body sceneRequest
		if err := api.DecodeJSONBody(r, &body); err != nil {
			return err
		}
		if err := service.command(r, receiverID, zone, "scene", body.Scene, func(s *yamaha.Session) error {
			return s.SetScene(r.Context(), body.Scene)
		}); err != nil {
			return err
		}
		return api.WriteJSON(w, http.StatusOK, map[string]any{"scene": body.Scene})
	}))

	// --- sleep ---

	router.Method(http.MethodGet, zonePrefix+"/sleep", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		receiverID, zone := params(r)
		var value string
		if err := service.read(receiverID, zone, func(s *yamaha.Session) error {
			var err error
			value, err = s.Sleep(r.Context())
			return err
		}); err != nil {
			return err
		}
		return api.WriteJSON(w, http.StatusOK, map[string]any{"value": value})
	}))

	router.Method(http.MethodPut, zonePrefix+"/sleep", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		receiverID, zone := params(r)
		var body sleepRequest
		if err := api.DecodeJSONBody(r, &body); err != nil {
			return err
		}
		if err := service.command(r, receiverID, zone, "sleep", body.Value, func(s *yamaha.Session) error {
			return s.SetSleep(r.Context(), body.Value)
		}); err != nil {
			return err
		}
		return api.WriteJSON(w, http.StatusOK, map[string]any{"value": body.Value})
	}))

	// --- adaptive DRC / dialogue level ---

	router.Method(http.MethodGet, zonePrefix+"/adaptive-drc", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		receiverID, zone := params(r)
		var auto bool
		if err := service.read(receiverID, zone, func(s *yamaha.Session) error {
			var err error
			auto, err = s.AdaptiveDRC(r.Context())
			return err
		}); err != nil {
			return err
		}
		return api.WriteJSON(w, http.StatusOK, map[string]any{"auto": auto})
	}))

	router.Method(http.MethodPut, zonePrefix+"/adaptive-drc", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		receiverID, zone := params(r)
		var body drcRequest
		if err := api.DecodeJSONBody(r, &body); err != nil {
			return err
		}
		if err := service.command(r, receiverID, zone, "adaptive_drc", strconv.FormatBool(body.Auto), func(s *yamaha.Session) error {
			return s.SetAdaptiveDRC(r.Context(), body.Auto)
		}); err != nil {
			return err
		}
		return api.WriteJSON(w, http.StatusOK, map[string]any{"auto": body.Auto})
	}))

	router.Method(http.MethodGet, zonePrefix+"/dialogue-level", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		receiverID, zone := params(r)
		var level int
		if err := service.read(receiverID, zone, func(s *yamaha.Session) error {
			var err error
			level, err = s.DialogueLevel(r.Context())
			return err
		}); err != nil {
			return err
		}
		return api.WriteJSON(w, http.StatusOK, map[string]any{"level": level})
	}))

	router.Method(http.MethodPut, zonePrefix+"/dialogue-level", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		receiverID, zone := params(r)
		var body dialogueRequest
		if err := api.DecodeJSONBody(r, &body); err != nil {
			return err
		}
		if err := service.command(r, receiverID, zone, "dialogue_level", strconv.Itoa(body.Level), func(s *yamaha.Session) error {
			return s.SetDialogueLevel(r.Context(), body.Level)
		}); err != nil {
			return err
		}
		return api.WriteJSON(w, http.StatusOK, map[string]any{"level": body.Level})
	}))

	// --- receiver-level: party mode, HDMI outputs ---

	router.Method(http.MethodGet, recvPrefix+"/party", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		receiverID := chi.URLParam(r, "receiver_id")
		var on bool
		if err := service.read(receiverID, "", func(s *yamaha.Session) error {
			var err error
			on, err = s.PartyModeEnabled(r.Context())
			return err
		}); err != nil {
			return err
		}
		return api.WriteJSON(w, http.StatusOK, map[string]any{"on": on})
	}))

	router.Method(http.MethodPut, recvPrefix+"/party", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		receiverID := chi.URLParam(r, "receiver_id")
		var body partyRequest
		if err := api.DecodeJSONBody(r, &body); err != nil {
			return err
		}
		if err := service.command(r, receiverID, "", "party", strconv.FormatBool(body.On), func(s *yamaha.Session) error {
			return s.SetPartyMode(r.Context(), body.On)
		}); err != nil {
			return err
		}
		return api.WriteJSON(w, http.StatusOK, map[string]any{"on": body.On})
	}))

	router.Method(http.MethodGet, recvPrefix+"/hdmi-outputs", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		receiverID := chi.URLParam(r, "receiver_id")
		var outputs map[string]string
		if err := service.read(receiverID, "", func(s *yamaha.Session) error {
			var err error
			outputs, err = s.HDMIOutputs(r.Context())
			return err
		}); err != nil {
			return err
		}
		return api.WriteResource(w, http.StatusOK, outputs)
	}))

	router.Method(http.MethodPut, recvPrefix+"/hdmi-outputs/{port}", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		receiverID := chi.URLParam(r, "receiver_id")
		port := chi.URLParam(r, "port")
		var body hdmiOutputRequest
		if err := api.DecodeJSONBody(r, &body); err != nil {
			return err
		}
		parameter := fmt.Sprintf("%s=%t", port, body.Enabled)
		if err := service.command(r, receiverID, "", "hdmi_output", parameter, func(s *yamaha.Session) error {
			return s.SetHDMIOutput(r.Context(), port, body.Enabled)
		}); err != nil {
			return err
		}
		return api.WriteJSON(w, http.StatusOK, map[string]any{
			"port":    port,
			"enabled": body.Enabled,
		})
	}))
}

func params(r *http.Request) (receiverID, zone string) {
	return chi.URLParam(r, "receiver_id"), chi.URLParam(r, "zone")
}

func playbackAction(action string) (ync.PlaybackAction, error) {
	switch action {
	case "play":
		return ync.PlaybackPlay, nil
	case "pause":
		return ync.PlaybackPause, nil
	case "stop":
		return ync.PlaybackStop, nil
	case "next":
		return ync.PlaybackSkipFwd, nil
	case "previous":
		return ync.PlaybackSkipRev, nil
	default:
		return "", apperrors.NewValidationError("unknown playback action", map[string]any{
			"action": action,
			"known":  []string{"play", "pause", "stop", "next", "previous"},
		})
	}
}
