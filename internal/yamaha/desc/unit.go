package desc

import "strings"

// Pseudo-programs advertised as toggles in the Setup menu rather than as
// Program selector values. Straight and Direct bypass DSP processing and
// mask the normal program selection while active.
const (
	ProgramStraight = "Straight"
	ProgramDirect   = "Direct"
)

// UnitCapabilities is the parsed unit (command) descriptor: what this
// particular receiver model supports.
type UnitCapabilities struct {
	Zones                []string            `json:"zones"`
	Commands             []string            `json:"commands"`
	ZoneSurroundPrograms map[string][]string `json:"zone_surround_programs"`
	SourcePlayMethods    map[string][]string `json:"source_play_methods"`
	SourceCursorActions  map[string][]string `json:"source_cursor_actions"`
}

// ParseUnitDescription extracts zones, the flattened command list, per-zone
// surround programs and per-source playback/cursor capability from the
// YamahaRemoteControl descriptor XML. Optional sub-features that a zone or
// source lacks yield empty collections, not errors.
func ParseUnitDescription(payload []byte) (*UnitCapabilities, error) {
	root, err := parseTree(payload)
	if err != nil {
		return nil, newUnitDescError("malformed XML: " + err.Error())
	}

	caps := &UnitCapabilities{
		ZoneSurroundPrograms: make(map[string][]string),
		SourcePlayMethods:    make(map[string][]string),
		SourceCursorActions:  make(map[string][]string),
	}

	subunits := root.findAttrAll("Func", "Subunit")
	for _, subunit := range subunits {
		zone := subunit.attr("YNC_Tag")
		if zone == "" {
			continue
		}
		caps.Zones = append(caps.Zones, zone)
		if programs := collectSurroundPrograms(subunit); programs != nil {
			caps.ZoneSurroundPrograms[zone] = programs
		}
	}
	if len(caps.Zones) == 0 {
		return nil, newUnitDescError("no subunit zones")
	}

	caps.Commands = collectCommands(root)

	for _, source := range root.findAll(hasAttr("YNC_Tag")) {
		name := source.attr("YNC_Tag")
		if name == "" {
			continue
		}
		if methods := collectPutNames(source.findAttr("Func", "Play_Control")); len(methods) > 0 {
			caps.SourcePlayMethods[name] = methods
		}
		cursor := source.find(func(cand *node) bool {
			return cand.XMLName.Local == "Menu" && cand.attr("Func") == "Cursor"
		})
		if actions := collectPutNames(cursor); len(actions) > 0 {
			caps.SourceCursorActions[name] = actions
		}
	}

	return caps, nil
}

func hasAttr(name string) func(*node) bool {
	return func(cand *node) bool { return cand.attr(name) != "" }
}

// collectCommands flattens every Cmd_List definition into comma-joined
// hierarchical command paths.
func collectCommands(root *node) []string {
	var commands []string
	for _, list := range root.findTagAll("Cmd_List") {
		for _, define := range list.findTagAll("Define") {
			text := strings.TrimSpace(define.Text)
			if text != "" {
				commands = append(commands, text)
			}
			for i := range define.Children {
				child := strings.TrimSpace(define.Children[i].Text)
				if child != "" {
					commands = append(commands, child)
				}
			}
		}
	}
	return commands
}

// collectSurroundPrograms reads a zone's Setup menu: optional Straight and
// Direct toggles first, then every value under the Program selector.
func collectSurroundPrograms(subunit *node) []string {
	setup := subunit.findAttr("Title_1", "Setup")
	if setup == nil {
		return nil
	}

	var programs []string
	if straight := setup.findAttr("Title_1", ProgramStraight); straight != nil && straight.findTag("Put_1") != nil {
		programs = append(programs, ProgramStraight)
	}
	if direct := setup.findAttr("Title_1", ProgramDirect); direct != nil && direct.findTag("Put_1") != nil {
		programs = append(programs, ProgramDirect)
	}

	if selector := setup.findAttr("Title_1", "Program"); selector != nil {
		if put := selector.child("Put_2"); put != nil {
			if param := put.child("Param_1"); param != nil {
				for _, value := range param.findTagAll("Direct") {
					text := strings.TrimSpace(value.Text)
					if text != "" {
						programs = append(programs, text)
					}
				}
			}
		}
	}
	return programs
}

func collectPutNames(block *node) []string {
	if block == nil {
		return nil
	}
	var names []string
	for _, put := range block.findTagAll("Put_1") {
		text := strings.TrimSpace(put.Text)
		if text != "" {
			names = append(names, text)
		}
	}
	return names
}
