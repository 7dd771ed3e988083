package yamaha

import (
	"context"
	"time"

	"github.com/strefethen/yamaha-hub-go/internal/yamaha/desc"
	"github.com/strefethen/yamaha-hub-go/internal/yamaha/ync"
)

// Endpoints are the three HTTP surfaces a receiver exposes. The MediaRenderer
// descriptor lives on the UPnP port; the unit descriptor and control endpoint
// sit on the plain web port.
type Endpoints struct {
	DeviceDescURL string
	UnitDescURL   string
	ControlURL    string
}

// EndpointsForHost builds the conventional endpoint set for a receiver host.
func EndpointsForHost(host string) Endpoints {
	return Endpoints{
		DeviceDescURL: "http://" + host + ":8080/MediaRenderer/desc.xml",
		UnitDescURL:   "http://" + host + ":80/YamahaRemoteControl/desc.xml",
		ControlURL:    "http://" + host + ":80/YamahaRemoteControl/ctrl",
	}
}

// Discover fetches and parses both descriptors, then queries the live device
// for its input mapping and scene titles, producing the persistable record.
// Any failure aborts with no partial record; the caller persists the result
// and treats it as read-only until an explicit re-discovery.
func Discover(ctx context.Context, client *ync.Client, host string, endpoints Endpoints) (*ReceiverRecord, error) {
	devicePayload, err := client.FetchDocument(ctx, endpoints.DeviceDescURL)
	if err != nil {
		return nil, err
	}
	device, err := desc.ParseDeviceDescription(devicePayload)
	if err != nil {
		return nil, err
	}

	unitPayload, err := client.FetchDocument(ctx, endpoints.UnitDescURL)
	if err != nil {
		return nil, err
	}
	unit, err := desc.ParseUnitDescription(unitPayload)
	if err != nil {
		return nil, err
	}

	// Inputs and scenes are only available from the live device; both are
	// queried against the first advertised zone.
	mainZone := unit.Zones[0]
	inputsResp, err := client.Exec(ctx, "input list", endpoints.ControlURL, ync.Get, mainZone, ync.InputSelItems())
	if err != nil {
		return nil, err
	}
	scenesResp, err := client.Exec(ctx, "scene list", endpoints.ControlURL, ync.Get, mainZone, ync.SceneConfigGet())
	if err != nil {
		return nil, err
	}

	return &ReceiverRecord{
		Device: *device,
		Capabilities: CapabilitySet{
			Zones:                unit.Zones,
			Commands:             unit.Commands,
			ZoneSurroundPrograms: unit.ZoneSurroundPrograms,
			SourcePlayMethods:    unit.SourcePlayMethods,
			SourceCursorActions:  unit.SourceCursorActions,
			InputSources:         ync.ParseInputs(inputsResp),
			SceneIDs:             ync.ParseScenes(scenesResp),
		},
		Host:         host,
		ControlURL:   endpoints.ControlURL,
		DiscoveredAt: time.Now().UTC(),
	}, nil
}
