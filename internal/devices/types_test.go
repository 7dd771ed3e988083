package devices

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/strefethen/yamaha-hub-go/internal/yamaha"
	"github.com/strefethen/yamaha-hub-go/internal/yamaha/desc"
)

func TestSummarize(t *testing.T) {
	receiver := Receiver{
		ReceiverID: "rx-1",
		Record: yamaha.ReceiverRecord{
			Device: desc.DeviceDescription{
				DeviceID:     "uuid-1",
				FriendlyName: "Living Room",
				Manufacturer: "Yamaha Corporation",
				ModelName:    "RX-V675",
				SerialNumber: "X123456",
				IconURLs:     []string{"/BCO_device_lrg_icon.png", "/BCO_device_sm_icon.png"},
			},
			Capabilities: yamaha.CapabilitySet{
				Zones: []string{"Main_Zone", "Zone_2"},
				InputSources: map[string]string{
					"NET RADIO": "NET_RADIO",
					"HDMI1":     "HDMI_1",
					"AV1":       "AV_1",
				},
				SceneIDs: map[string]string{
					"Vinyl":       "Scene 2",
					"Movie Night": "Scene 1",
				},
			},
			Host:         "192.168.1.40",
			ControlURL:   "http://192.168.1.40:80/YamahaRemoteControl/ctrl",
			DiscoveredAt: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		},
	}

	summary := summarize(receiver)

	assert.Equal(t, "rx-1", summary.ReceiverID)
	assert.Equal(t, "Living Room", summary.FriendlyName)
	assert.Equal(t, "RX-V675", summary.Model)
	assert.Equal(t, []string{"Main_Zone", "Zone_2"}, summary.Zones)
	assert.Equal(t, []string{"AV1", "HDMI1", "NET RADIO"}, summary.Inputs)
	assert.Equal(t, []string{"Movie Night", "Vinyl"}, summary.Scenes)
	assert.Equal(t, "/BCO_device_lrg_icon.png", summary.IconURL)
	assert.Equal(t, "2026-05-01T12:00:00Z", summary.DiscoveredAt)
}

func TestSummarizeWithoutIcons(t *testing.T) {
	summary := summarize(Receiver{ReceiverID: "rx-2"})
	assert.Empty(t, summary.IconURL)
	assert.Empty(t, summary.Inputs)
	assert.Empty(t, summary.Scenes)
}
