// Package yamaha owns the device model for a Yamaha AV receiver: the
// immutable capability set built at discovery and the zone-scoped session
// that maps high-level intents onto the receiver's command set.
package yamaha

import (
	"strings"
	"time"

	"github.com/strefethen/yamaha-hub-go/internal/yamaha/desc"
	"github.com/strefethen/yamaha-hub-go/internal/yamaha/ync"
)

// CapabilitySet is the per-device capability record. It is built once by
// discovery and never mutated; sessions and zone controllers share it by
// reference. Lookups for absent zones or sources fail explicitly so callers
// cannot issue commands the device never advertised.
type CapabilitySet struct {
	Zones                []string            `json:"zones"`
	Commands             []string            `json:"commands"`
	ZoneSurroundPrograms map[string][]string `json:"zone_surround_programs"`
	SourcePlayMethods    map[string][]string `json:"source_play_methods"`
	SourceCursorActions  map[string][]string `json:"source_cursor_actions"`
	InputSources         map[string]string   `json:"input_sources"`
	SceneIDs             map[string]string   `json:"scene_ids"`
}

// HasZone reports whether the zone was advertised as a subunit.
func (c *CapabilitySet) HasZone(zone string) bool {
	for _, known := range c.Zones {
		if known == zone {
			return true
		}
	}
	return false
}

// SurroundPrograms returns the programs advertised for a zone.
func (c *CapabilitySet) SurroundPrograms(zone string) ([]string, error) {
	if !c.HasZone(zone) {
		return nil, &ValidationError{Kind: "zone", Name: zone}
	}
	return c.ZoneSurroundPrograms[zone], nil
}

// SupportsSurroundProgram reports whether a zone advertises a program.
func (c *CapabilitySet) SupportsSurroundProgram(zone, program string) bool {
	for _, known := range c.ZoneSurroundPrograms[zone] {
		if known == program {
			return true
		}
	}
	return false
}

// SourceForInput resolves an input label to its internal source name.
func (c *CapabilitySet) SourceForInput(input string) (string, error) {
	src, ok := c.InputSources[input]
	if !ok {
		return "", &ValidationError{Kind: "input", Name: input}
	}
	return src, nil
}

// SupportsPlayMethod reports whether a source advertises a transport action.
func (c *CapabilitySet) SupportsPlayMethod(src string, action ync.PlaybackAction) bool {
	for _, method := range c.SourcePlayMethods[src] {
		if method == string(action) {
			return true
		}
	}
	return false
}

// PlaybackSupport assembles the advertised transport actions for a source.
func (c *CapabilitySet) PlaybackSupport(src string) ync.PlaybackSupport {
	return ync.PlaybackSupport{
		Play:        c.SupportsPlayMethod(src, ync.PlaybackPlay),
		Pause:       c.SupportsPlayMethod(src, ync.PlaybackPause),
		Stop:        c.SupportsPlayMethod(src, ync.PlaybackStop),
		SkipForward: c.SupportsPlayMethod(src, ync.PlaybackSkipFwd),
		SkipReverse: c.SupportsPlayMethod(src, ync.PlaybackSkipRev),
	}
}

// SupportsCursorAction reports whether a source advertises a cursor action.
func (c *CapabilitySet) SupportsCursorAction(src string, action ync.CursorAction) bool {
	for _, known := range c.SourceCursorActions[src] {
		if known == string(action) {
			return true
		}
	}
	return false
}

// SupportsCommand checks the flattened command list for a hierarchical path.
func (c *CapabilitySet) SupportsCommand(parts ...string) bool {
	want := strings.Join(parts, ",")
	for _, command := range c.Commands {
		if command == want {
			return true
		}
	}
	return false
}

// CommandsWithPrefix yields flattened commands under a hierarchical prefix.
func (c *CapabilitySet) CommandsWithPrefix(parts ...string) []string {
	prefix := strings.Join(parts, ",")
	var out []string
	for _, command := range c.Commands {
		if strings.HasPrefix(command, prefix) {
			out = append(out, command)
		}
	}
	return out
}

// SceneID resolves a scene title to its selector value.
func (c *CapabilitySet) SceneID(name string) (string, error) {
	id, ok := c.SceneIDs[name]
	if !ok {
		return "", &ValidationError{Kind: "scene", Name: name}
	}
	return id, nil
}

// ReceiverRecord is the persisted discovery blob: device identity plus the
// capability set, enough to construct sessions without re-discovery.
type ReceiverRecord struct {
	Device       desc.DeviceDescription `json:"device"`
	Capabilities CapabilitySet          `json:"capabilities"`
	Host         string                 `json:"host"`
	ControlURL   string                 `json:"control_url"`
	DiscoveredAt time.Time              `json:"discovered_at"`
}
