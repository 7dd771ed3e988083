package ync

import (
	"bytes"
	"encoding/xml"
	"html"
	"strconv"
	"strings"
)

// element is a generic parsed XML node.
type element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []element  `xml:",any"`
}

func (e *element) attr(name string) string {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func (e *element) child(tag string) *element {
	for i := range e.Children {
		if e.Children[i].XMLName.Local == tag {
			return &e.Children[i]
		}
	}
	return nil
}

func (e *element) first(tag string) *element {
	if e.XMLName.Local == tag {
		return e
	}
	for i := range e.Children {
		if found := e.Children[i].first(tag); found != nil {
			return found
		}
	}
	return nil
}

// Response is a parsed receiver reply.
type Response struct {
	root element
}

func parseResponse(payload []byte) (*Response, error) {
	var root element
	decoder := xml.NewDecoder(bytes.NewReader(payload))
	if err := decoder.Decode(&root); err != nil {
		return nil, err
	}
	return &Response{root: root}, nil
}

// FindPath walks a /-separated element path from the document root and
// returns the trimmed text at the end, or "" if any hop is missing.
func (r *Response) FindPath(path string) string {
	current := &r.root
	for _, tag := range strings.Split(path, "/") {
		current = current.child(tag)
		if current == nil {
			return ""
		}
	}
	return strings.TrimSpace(current.Text)
}

// First returns the trimmed text of the first element with the given tag
// anywhere in the document.
func (r *Response) First(tag string) string {
	if found := r.root.first(tag); found != nil {
		return strings.TrimSpace(found.Text)
	}
	return ""
}

// FirstOf resolves a value through a prioritized list of alternative tag
// names; the first non-empty match wins. Tuner and NET RADIO responses
// sometimes carry escaped entities, so the value is unescaped.
func (r *Response) FirstOf(tags ...string) string {
	for _, tag := range tags {
		if found := r.root.first(tag); found != nil {
			text := strings.TrimSpace(html.UnescapeString(found.Text))
			if text != "" {
				return text
			}
		}
	}
	return ""
}

// Alternative field names across source types (Tuner, NET RADIO, SERVER).
var (
	artistTags  = []string{"Artist", "Program_Type"}
	albumTags   = []string{"Album", "Radio_Text_A"}
	songTags    = []string{"Song", "Track", "Radio_Text_B"}
	stationTags = []string{"Station", "Program_Service"}
)

// ParseBasicStatus decodes the zone's Basic_Status block. The wire volume is
// tenths of a dB.
func ParseBasicStatus(resp *Response, zone string) (BasicStatus, error) {
	base := zone + "/Basic_Status"
	power := resp.FindPath(base + "/Power_Control/Power")
	if power == "" {
		return BasicStatus{}, &ParseError{Op: "basic status", Err: errMissing("Power_Control/Power")}
	}
	volumeRaw := resp.FindPath(base + "/Volume/Lvl/Val")
	volume, err := strconv.Atoi(volumeRaw)
	if err != nil {
		return BasicStatus{}, &ParseError{Op: "basic status", Err: errMissing("Volume/Lvl/Val")}
	}

	return BasicStatus{
		On:       power == "On",
		VolumeDB: float64(volume) / 10.0,
		Muted:    resp.FindPath(base+"/Volume/Mute") == "On",
		Input:    resp.FindPath(base + "/Input/Input_Sel"),
	}, nil
}

// ParsePlayStatus decodes a source's Play_Info block. The tuner has no
// transport state and always counts as playing.
func ParsePlayStatus(resp *Response, srcName string) PlayStatus {
	playing := resp.FirstOf("Playback_Info") == "Play" || srcName == "Tuner"
	return PlayStatus{
		Playing: playing,
		Artist:  resp.FirstOf(artistTags...),
		Album:   resp.FirstOf(albumTags...),
		Song:    resp.FirstOf(songTags...),
		Station: resp.FirstOf(stationTags...),
	}
}

// ParseMenuStatus decodes a source's List_Info block, keeping only
// selectable lines of the visible page in document order.
func ParseMenuStatus(resp *Response) (MenuStatus, error) {
	layerRaw := resp.First("Menu_Layer")
	layer, err := strconv.Atoi(layerRaw)
	if err != nil {
		return MenuStatus{}, &ParseError{Op: "menu status", Err: errMissing("Menu_Layer")}
	}
	currentLine, _ := strconv.Atoi(resp.First("Current_Line"))
	maxLine, _ := strconv.Atoi(resp.First("Max_Line"))

	status := MenuStatus{
		Ready:       resp.First("Menu_Status") == "Ready",
		Layer:       layer,
		Name:        resp.First("Menu_Name"),
		CurrentLine: currentLine,
		MaxLine:     maxLine,
	}

	if list := resp.root.first("Current_List"); list != nil {
		for i := range list.Children {
			line := &list.Children[i]
			attribute := line.child("Attribute")
			if attribute != nil && strings.TrimSpace(attribute.Text) == "Unselectable" {
				continue
			}
			txt := line.child("Txt")
			if txt == nil {
				continue
			}
			status.Lines = append(status.Lines, MenuLine{
				ID:   line.XMLName.Local,
				Text: strings.TrimSpace(html.UnescapeString(txt.Text)),
			})
		}
	}

	return status, nil
}

// ParseInputs decodes the Input_Sel_Item response into a map of input label
// to internal source name.
func ParseInputs(resp *Response) map[string]string {
	inputs := make(map[string]string)
	var params, srcNames []string
	collect(&resp.root, "Param", &params)
	collect(&resp.root, "Src_Name", &srcNames)
	for i, param := range params {
		if i < len(srcNames) {
			inputs[param] = srcNames[i]
		}
	}
	return inputs
}

// ParseScenes decodes the zone Config response's Scene block into a map of
// scene title to scene selector ("Scene 1"...). Receivers without scenes
// yield an empty map.
func ParseScenes(resp *Response) map[string]string {
	scenes := make(map[string]string)
	scene := resp.root.first("Scene")
	if scene == nil {
		return scenes
	}
	for i := range scene.Children {
		entry := &scene.Children[i]
		title := strings.TrimSpace(entry.Text)
		if title == "" {
			continue
		}
		scenes[title] = strings.ReplaceAll(entry.XMLName.Local, "_", " ")
	}
	return scenes
}

// FeatureReady reports whether a source's Config response declares the
// feature available.
func FeatureReady(resp *Response) bool {
	return resp.First("Feature_Availability") == "Ready"
}

func collect(e *element, tag string, out *[]string) {
	if e.XMLName.Local == tag {
		*out = append(*out, strings.TrimSpace(e.Text))
	}
	for i := range e.Children {
		collect(&e.Children[i], tag, out)
	}
}

type errMissing string

func (e errMissing) Error() string {
	return "missing element " + string(e)
}
