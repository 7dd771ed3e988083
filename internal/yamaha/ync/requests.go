package ync

import (
	"fmt"
	"strconv"
	"strings"
)

// Payload fragment grammar. Fragments are wrapped in a zone element by the
// client when the command is zone-scoped, then in the YAMAHA_AV envelope.

// Envelope wraps the payload in the outer command element.
func Envelope(cmd Command, payload string) []byte {
	var buf strings.Builder
	buf.WriteString(`<YAMAHA_AV cmd="`)
	buf.WriteString(string(cmd))
	buf.WriteString(`">`)
	buf.WriteString(payload)
	buf.WriteString("</YAMAHA_AV>")
	return []byte(buf.String())
}

func zoneWrap(zone, inner string) string {
	return "<" + zone + ">" + inner + "</" + zone + ">"
}

func BasicStatusGet() string {
	return "<Basic_Status>GetParam</Basic_Status>"
}

func PowerControl(state string) string {
	return "<Power_Control><Power>" + state + "</Power></Power_Control>"
}

func SleepControl(value string) string {
	return "<Power_Control><Sleep>" + value + "</Sleep></Power_Control>"
}

func PartyMode(state string) string {
	return "<System><Party_Mode><Mode>" + state + "</Mode></Party_Mode></System>"
}

func InputSelect(name string) string {
	return "<Input><Input_Sel>" + escape(name) + "</Input_Sel></Input>"
}

func InputSelItems() string {
	return "<Input><Input_Sel_Item>GetParam</Input_Sel_Item></Input>"
}

func ConfigGet(srcName string) string {
	return zoneWrap(srcName, "<Config>GetParam</Config>")
}

func PlayInfoGet(srcName string) string {
	return zoneWrap(srcName, "<Play_Info>GetParam</Play_Info>")
}

func PlaybackControl(srcName string, action PlaybackAction) string {
	return zoneWrap(srcName, "<Play_Control><Playback>"+string(action)+"</Playback></Play_Control>")
}

func ListInfoGet(srcName string) string {
	return zoneWrap(srcName, "<List_Info>GetParam</List_Info>")
}

func ListCursor(srcName string, action CursorAction) string {
	return zoneWrap(srcName, "<List_Control><Cursor>"+string(action)+"</Cursor></List_Control>")
}

func CursorControl(srcName string, action CursorAction) string {
	return zoneWrap(srcName, "<Cursor_Control><Cursor>"+string(action)+"</Cursor></Cursor_Control>")
}

func JumpLine(srcName string, lineno int) string {
	return zoneWrap(srcName, "<List_Control><Jump_Line>"+strconv.Itoa(lineno)+"</Jump_Line></List_Control>")
}

func DirectSelLine(srcName string, lineno int) string {
	return zoneWrap(srcName, "<List_Control><Direct_Sel>Line_"+strconv.Itoa(lineno)+"</Direct_Sel></List_Control>")
}

func VolumeLevelGet() string {
	return "<Volume><Lvl>GetParam</Lvl></Volume>"
}

// CoerceVolume converts a dB target to the receiver's integer encoding.
// The wire value is tenths of a dB and must land on a half-dB step, so the
// target is truncated to half steps first: int(db*2)*5.
func CoerceVolume(db float64) int {
	return int(db*2) * 5
}

func VolumeLevelSet(db float64) string {
	value := strconv.Itoa(CoerceVolume(db))
	return "<Volume><Lvl><Val>" + value + "</Val><Exp>1</Exp><Unit>dB</Unit></Lvl></Volume>"
}

func VolumeMute(state string) string {
	return "<Volume><Mute>" + state + "</Mute></Volume>"
}

func SurroundProgramGet() string {
	return "<Surround><Program_Sel><Current>GetParam</Current></Program_Sel></Surround>"
}

func SurroundProgramStraight() string {
	return "<Surround><Program_Sel><Current><Straight>On</Straight></Current></Program_Sel></Surround>"
}

func SurroundProgramSet(program string) string {
	return "<Surround><Program_Sel><Current><Sound_Program>" + escape(program) + "</Sound_Program></Current></Program_Sel></Surround>"
}

func DirectModeGet() string {
	return "<Sound_Video><Direct><Mode>GetParam</Mode></Direct></Sound_Video>"
}

func DirectModeSet(on bool) string {
	state := "Off"
	if on {
		state = "On"
	}
	return "<Sound_Video><Direct><Mode>" + state + "</Mode></Direct></Sound_Video>"
}

func SceneGet() string {
	return "<Scene><Scene_Sel>GetParam</Scene_Sel></Scene>"
}

func SceneSet(sceneID string) string {
	return "<Scene><Scene_Sel>" + escape(sceneID) + "</Scene_Sel></Scene>"
}

func SceneConfigGet() string {
	return "<Config>GetParam</Config>"
}

func HdmiOut(port string, command string) string {
	return fmt.Sprintf("<System><Sound_Video><HDMI><Output><OUT_%s>%s</OUT_%s></Output></HDMI></Sound_Video></System>", port, command, port)
}

func AdaptiveDRC(value string) string {
	return "<Sound_Video><Adaptive_DRC>" + value + "</Adaptive_DRC></Sound_Video>"
}

func DialogueLevel(value string) string {
	return "<Sound_Video><Dialogue_Adjust><Dialogue_Lvl>" + value + "</Dialogue_Lvl></Dialogue_Adjust></Sound_Video>"
}

// escape covers the characters a caller-supplied name could smuggle into the
// payload. Receiver-defined identifiers pass through unchanged.
func escape(value string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
	return replacer.Replace(value)
}
