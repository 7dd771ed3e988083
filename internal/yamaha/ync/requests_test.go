package ync

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvelope(t *testing.T) {
	body := Envelope(Get, "<Main_Zone><Basic_Status>GetParam</Basic_Status></Main_Zone>")
	assert.Equal(t,
		`<YAMAHA_AV cmd="GET"><Main_Zone><Basic_Status>GetParam</Basic_Status></Main_Zone></YAMAHA_AV>`,
		string(body))

	body = Envelope(Put, "<System><Party_Mode><Mode>On</Mode></Party_Mode></System>")
	assert.Equal(t,
		`<YAMAHA_AV cmd="PUT"><System><Party_Mode><Mode>On</Mode></Party_Mode></System></YAMAHA_AV>`,
		string(body))
}

func TestEnvelopeEncodingIsStable(t *testing.T) {
	first := Envelope(Put, zoneWrap("Main_Zone", VolumeLevelSet(-32.5)))
	second := Envelope(Put, zoneWrap("Main_Zone", VolumeLevelSet(-32.5)))
	assert.Equal(t, first, second)
	assert.Equal(t,
		`<YAMAHA_AV cmd="PUT"><Main_Zone><Volume><Lvl><Val>-325</Val><Exp>1</Exp><Unit>dB</Unit></Lvl></Volume></Main_Zone></YAMAHA_AV>`,
		string(first))
}

func TestCoerceVolume(t *testing.T) {
	tests := []struct {
		db   float64
		want int
	}{
		{-80.0, -800},
		{-32.5, -325},
		{-32.4, -320}, // truncates toward zero onto the half-dB grid
		{-0.4, 0},
		{0, 0},
		{10.3, 100},
		{15.0, 150},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, CoerceVolume(tc.db), "db=%v", tc.db)
	}
}

func TestVolumeLevelSet(t *testing.T) {
	assert.Equal(t,
		"<Volume><Lvl><Val>-325</Val><Exp>1</Exp><Unit>dB</Unit></Lvl></Volume>",
		VolumeLevelSet(-32.5))
}

func TestInputSelectEscapesCallerValues(t *testing.T) {
	assert.Equal(t,
		"<Input><Input_Sel>AC&amp;DC &lt;FM&gt;</Input_Sel></Input>",
		InputSelect("AC&DC <FM>"))
}

func TestDirectSelLine(t *testing.T) {
	assert.Equal(t,
		"<NET_RADIO><List_Control><Direct_Sel>Line_3</Direct_Sel></List_Control></NET_RADIO>",
		DirectSelLine("NET_RADIO", 3))
}

func TestZoneWrap(t *testing.T) {
	assert.Equal(t,
		"<Zone_2><Power_Control><Power>Standby</Power></Power_Control></Zone_2>",
		zoneWrap("Zone_2", PowerControl("Standby")))
}
