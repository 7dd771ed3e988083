// Package ync implements the Yamaha Network Control protocol: XML command
// envelopes posted to the receiver's control endpoint and the typed status
// records decoded from its responses.
package ync

// Command selects GET or PUT semantics for an envelope.
type Command string

const (
	Get Command = "GET"
	Put Command = "PUT"
)

// GetParam is the placeholder value the receiver interprets as "read this".
const GetParam = "GetParam"

// PlaybackAction is a transport action a source may advertise.
type PlaybackAction string

const (
	PlaybackPlay    PlaybackAction = "Play"
	PlaybackPause   PlaybackAction = "Pause"
	PlaybackStop    PlaybackAction = "Stop"
	PlaybackSkipFwd PlaybackAction = "Skip Fwd"
	PlaybackSkipRev PlaybackAction = "Skip Rev"
)

// CursorAction is a closed enumeration of on-device menu cursor commands.
// Values match the strings the unit descriptor advertises per source.
type CursorAction string

const (
	CursorUp           CursorAction = "Up"
	CursorDown         CursorAction = "Down"
	CursorLeft         CursorAction = "Left"
	CursorRight        CursorAction = "Right"
	CursorSel          CursorAction = "Sel"
	CursorReturn       CursorAction = "Return"
	CursorReturnToHome CursorAction = "Return to Home"
	CursorOnScreen     CursorAction = "On Screen"
	CursorTopMenu      CursorAction = "Top Menu"
	CursorMenu         CursorAction = "Menu"
	CursorOption       CursorAction = "Option"
	CursorDisplay      CursorAction = "Display"
)

// CursorActions lists every defined cursor action.
var CursorActions = []CursorAction{
	CursorUp, CursorDown, CursorLeft, CursorRight, CursorSel,
	CursorReturn, CursorReturnToHome, CursorOnScreen, CursorTopMenu,
	CursorMenu, CursorOption, CursorDisplay,
}

// Known returns whether the action is part of the enumeration.
func (a CursorAction) Known() bool {
	for _, known := range CursorActions {
		if a == known {
			return true
		}
	}
	return false
}

// PlaybackSupport reports which transport actions the current source
// advertises.
type PlaybackSupport struct {
	Play        bool `json:"play"`
	Pause       bool `json:"pause"`
	Stop        bool `json:"stop"`
	SkipForward bool `json:"skip_forward"`
	SkipReverse bool `json:"skip_reverse"`
}

// BasicStatus is the zone's power/volume/mute/input snapshot. It is fetched
// per poll and never cached.
type BasicStatus struct {
	On       bool    `json:"on"`
	VolumeDB float64 `json:"volume_db"`
	Muted    bool    `json:"muted"`
	Input    string  `json:"input"`
}

// PlayStatus describes what a network or tuner source is playing. Different
// source types name equivalent fields differently; decoding resolves each
// field through a prioritized tag list.
type PlayStatus struct {
	Playing bool   `json:"playing"`
	Artist  string `json:"artist"`
	Album   string `json:"album"`
	Song    string `json:"song"`
	Station string `json:"station"`
}

// MenuLine is one selectable row on the currently visible menu page.
type MenuLine struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// MenuStatus is the receiver's hierarchical menu state for a source.
type MenuStatus struct {
	Ready       bool       `json:"ready"`
	Layer       int        `json:"layer"`
	Name        string     `json:"name"`
	CurrentLine int        `json:"current_line"`
	MaxLine     int        `json:"max_line"`
	Lines       []MenuLine `json:"lines"`
}

// Line returns the display text for a line ID on the visible page.
func (s MenuStatus) Line(id string) (string, bool) {
	for _, line := range s.Lines {
		if line.ID == id {
			return line.Text, true
		}
	}
	return "", false
}
