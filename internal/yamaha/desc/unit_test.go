package desc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const unitDescXML = `<?xml version="1.0"?>
<Unit_Description Version="1.2">
  <Menu Func="Unit" Title_1="RX-V675">
    <Menu Func="Subunit" Title_1="Main Zone" YNC_Tag="Main_Zone">
      <Menu Func="Power_Control">
        <Put_1>On</Put_1>
      </Menu>
      <Menu Title_1="Setup">
        <Menu Title_1="Straight">
          <Put_1>Straight</Put_1>
        </Menu>
        <Menu Title_1="Direct">
          <Put_1>Direct</Put_1>
        </Menu>
        <Menu Title_1="Program">
          <Put_2>
            <Param_1>
              <Direct>Hall in Munich</Direct>
              <Direct>2ch Stereo</Direct>
              <Direct>Drama</Direct>
            </Param_1>
          </Put_2>
        </Menu>
      </Menu>
      <Cmd_List>
        <Define ID="P1">Main_Zone,Power_Control,Power</Define>
        <Define ID="P2">Main_Zone,Volume,Lvl</Define>
      </Cmd_List>
    </Menu>
    <Menu Func="Subunit" Title_1="Zone 2" YNC_Tag="Zone_2">
      <Cmd_List>
        <Define ID="P1">Zone_2,Power_Control,Power</Define>
      </Cmd_List>
    </Menu>
    <Menu Func="Source_Device" Title_1="NET RADIO" YNC_Tag="NET_RADIO">
      <Menu Func="Play_Control">
        <Put_1>Play</Put_1>
        <Put_1>Stop</Put_1>
      </Menu>
      <Menu Func="Cursor">
        <Put_1>Up</Put_1>
        <Put_1>Down</Put_1>
        <Put_1>Sel</Put_1>
        <Put_1>Return</Put_1>
      </Menu>
      <Cmd_List>
        <Define ID="P1">NET_RADIO,Play_Info</Define>
        <Define ID="P2">NET_RADIO,List_Info</Define>
        <Define ID="P3">NET_RADIO,List_Control,Cursor</Define>
      </Cmd_List>
    </Menu>
  </Menu>
</Unit_Description>`

func TestParseUnitDescriptionZones(t *testing.T) {
	caps, err := ParseUnitDescription([]byte(unitDescXML))
	require.NoError(t, err)

	assert.Equal(t, []string{"Main_Zone", "Zone_2"}, caps.Zones)
}

func TestParseUnitDescriptionSurroundPrograms(t *testing.T) {
	caps, err := ParseUnitDescription([]byte(unitDescXML))
	require.NoError(t, err)

	// Straight and Direct toggles first, then the Program selector values.
	assert.Equal(t,
		[]string{"Straight", "Direct", "Hall in Munich", "2ch Stereo", "Drama"},
		caps.ZoneSurroundPrograms["Main_Zone"])

	// Zone 2 has no Setup menu and therefore no programs.
	assert.NotContains(t, caps.ZoneSurroundPrograms, "Zone_2")
}

func TestParseUnitDescriptionCommands(t *testing.T) {
	caps, err := ParseUnitDescription([]byte(unitDescXML))
	require.NoError(t, err)

	assert.Contains(t, caps.Commands, "Main_Zone,Power_Control,Power")
	assert.Contains(t, caps.Commands, "Zone_2,Power_Control,Power")
	assert.Contains(t, caps.Commands, "NET_RADIO,Play_Info")
	assert.Contains(t, caps.Commands, "NET_RADIO,List_Control,Cursor")
}

func TestParseUnitDescriptionSourceCapabilities(t *testing.T) {
	caps, err := ParseUnitDescription([]byte(unitDescXML))
	require.NoError(t, err)

	assert.Equal(t, []string{"Play", "Stop"}, caps.SourcePlayMethods["NET_RADIO"])
	assert.Equal(t, []string{"Up", "Down", "Sel", "Return"}, caps.SourceCursorActions["NET_RADIO"])
}

func TestParseUnitDescriptionNoZones(t *testing.T) {
	_, err := ParseUnitDescription([]byte(`<Unit_Description><Menu Func="Unit"/></Unit_Description>`))
	require.Error(t, err)

	var descErr *DescriptorError
	require.ErrorAs(t, err, &descErr)
	assert.Equal(t, "unit", descErr.Doc)
}
