package devices

import (
	"sort"
	"time"

	"github.com/strefethen/yamaha-hub-go/internal/yamaha"
)

// Receiver is a registered receiver together with its registry key.
type Receiver struct {
	ReceiverID string
	Record     yamaha.ReceiverRecord
}

// receiverSummary is the wire shape for list and get responses.
type receiverSummary struct {
	ReceiverID   string   `json:"receiver_id"`
	FriendlyName string   `json:"friendly_name"`
	Manufacturer string   `json:"manufacturer"`
	Model        string   `json:"model"`
	SerialNumber string   `json:"serial_number"`
	Host         string   `json:"host"`
	ControlURL   string   `json:"control_url"`
	Zones        []string `json:"zones"`
	Inputs       []string `json:"inputs"`
	Scenes       []string `json:"scenes"`
	IconURL      string   `json:"icon_url,omitempty"`
	DiscoveredAt string   `json:"discovered_at"`
}

func summarize(receiver Receiver) receiverSummary {
	record := receiver.Record

	inputs := make([]string, 0, len(record.Capabilities.InputSources))
	for input := range record.Capabilities.InputSources {
		inputs = append(inputs, input)
	}
	sort.Strings(inputs)

	scenes := make([]string, 0, len(record.Capabilities.SceneIDs))
	for scene := range record.Capabilities.SceneIDs {
		scenes = append(scenes, scene)
	}
	sort.Strings(scenes)

	iconURL := ""
	if len(record.Device.IconURLs) > 0 {
		iconURL = record.Device.IconURLs[0]
	}

	return receiverSummary{
		ReceiverID:   receiver.ReceiverID,
		FriendlyName: record.Device.FriendlyName,
		Manufacturer: record.Device.Manufacturer,
		Model:        record.Device.ModelName,
		SerialNumber: record.Device.SerialNumber,
		Host:         record.Host,
		ControlURL:   record.ControlURL,
		Zones:        record.Capabilities.Zones,
		Inputs:       inputs,
		Scenes:       scenes,
		IconURL:      iconURL,
		DiscoveredAt: record.DiscoveredAt.UTC().Format(time.RFC3339),
	}
}
