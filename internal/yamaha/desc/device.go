package desc

import (
	"encoding/xml"
	"sort"
	"strconv"
	"strings"
)

// DeviceDescription is the parsed UPnP device descriptor.
type DeviceDescription struct {
	DeviceID     string   `json:"device_id"`
	FriendlyName string   `json:"friendly_name"`
	Manufacturer string   `json:"manufacturer"`
	ModelName    string   `json:"model_name"`
	SerialNumber string   `json:"serial_number"`
	IconURLs     []string `json:"icon_urls"`
}

type iconEntry struct {
	Width string `xml:"width"`
	URL   string `xml:"url"`
}

// ParseDeviceDescription extracts identity fields and the icon list from the
// MediaRenderer descriptor XML.
func ParseDeviceDescription(payload []byte) (*DeviceDescription, error) {
	decoder := xml.NewDecoder(strings.NewReader(string(payload)))
	var device DeviceDescription
	var udnRaw string
	var icons []iconEntry
	sawDevice := false

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "device":
				sawDevice = true
			case "friendlyName":
				var value string
				if err := decoder.DecodeElement(&value, &se); err == nil {
					device.FriendlyName = strings.TrimSpace(value)
				}
			case "manufacturer":
				var value string
				if err := decoder.DecodeElement(&value, &se); err == nil {
					device.Manufacturer = strings.TrimSpace(value)
				}
			case "modelName":
				var value string
				if err := decoder.DecodeElement(&value, &se); err == nil {
					device.ModelName = strings.TrimSpace(value)
				}
			case "serialNumber":
				var value string
				if err := decoder.DecodeElement(&value, &se); err == nil {
					device.SerialNumber = strings.TrimSpace(value)
				}
			case "UDN":
				// Only take the first UDN (root device); embedded devices
				// repeat the tag with suffixed values.
				if udnRaw == "" {
					var value string
					if err := decoder.DecodeElement(&value, &se); err == nil {
						udnRaw = strings.TrimSpace(value)
					}
				}
			case "icon":
				var entry iconEntry
				if err := decoder.DecodeElement(&entry, &se); err == nil {
					icons = append(icons, entry)
				}
			}
		}
	}

	if !sawDevice {
		return nil, newDeviceDescError("no device node")
	}
	if udnRaw == "" {
		return nil, newDeviceDescError("no UDN")
	}

	device.DeviceID = deviceIDFromUDN(udnRaw)
	device.IconURLs = sortIconURLs(icons)
	return &device, nil
}

// deviceIDFromUDN strips the uuid: scheme prefix to yield a stable identity.
func deviceIDFromUDN(udn string) string {
	if len(udn) >= 5 && strings.EqualFold(udn[:5], "uuid:") {
		return udn[5:]
	}
	return udn
}

// sortIconURLs orders icons by descending declared width; ties keep document
// order. Icons without a parseable width sort last.
func sortIconURLs(icons []iconEntry) []string {
	type sized struct {
		width int
		url   string
	}
	entries := make([]sized, 0, len(icons))
	for _, icon := range icons {
		url := strings.TrimSpace(icon.URL)
		if url == "" {
			continue
		}
		width := 0
		if parsed, err := strconv.Atoi(strings.TrimSpace(icon.Width)); err == nil {
			width = parsed
		}
		entries = append(entries, sized{width: width, url: url})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].width > entries[j].width
	})

	urls := make([]string, 0, len(entries))
	for _, entry := range entries {
		urls = append(urls, entry.url)
	}
	return urls
}
