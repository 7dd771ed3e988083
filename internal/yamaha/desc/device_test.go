package desc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const deviceDescXML = `<?xml version="1.0"?>
<root xmlns="urn:schemas-upnp-org:device-1-0">
  <device>
    <deviceType>urn:schemas-upnp-org:device:MediaRenderer:1</deviceType>
    <friendlyName>RX-V675 Living Room</friendlyName>
    <manufacturer>Yamaha Corporation</manufacturer>
    <modelName>RX-V675</modelName>
    <serialNumber>Y123456</serialNumber>
    <UDN>uuid:5f9ec1b3-ed59-1900-4530-00a0dea54f93</UDN>
    <iconList>
      <icon>
        <mimetype>image/jpeg</mimetype>
        <width>32</width>
        <height>32</height>
        <url>/Icons/32x32.jpg</url>
      </icon>
      <icon>
        <mimetype>image/jpeg</mimetype>
        <width>16</width>
        <height>16</height>
        <url>/Icons/16x16.jpg</url>
      </icon>
      <icon>
        <mimetype>image/jpeg</mimetype>
        <width>64</width>
        <height>64</height>
        <url>/Icons/64x64.jpg</url>
      </icon>
    </iconList>
    <deviceList>
      <device>
        <deviceType>urn:schemas-upnp-org:device:EmbeddedThing:1</deviceType>
        <UDN>uuid:ffffffff-ed59-1900-4530-00a0dea54f93</UDN>
      </device>
    </deviceList>
  </device>
</root>`

func TestParseDeviceDescription(t *testing.T) {
	device, err := ParseDeviceDescription([]byte(deviceDescXML))
	require.NoError(t, err)

	assert.Equal(t, "5f9ec1b3-ed59-1900-4530-00a0dea54f93", device.DeviceID)
	assert.Equal(t, "RX-V675 Living Room", device.FriendlyName)
	assert.Equal(t, "Yamaha Corporation", device.Manufacturer)
	assert.Equal(t, "RX-V675", device.ModelName)
	assert.Equal(t, "Y123456", device.SerialNumber)
}

func TestParseDeviceDescriptionSortsIconsByWidthDescending(t *testing.T) {
	device, err := ParseDeviceDescription([]byte(deviceDescXML))
	require.NoError(t, err)

	assert.Equal(t, []string{"/Icons/64x64.jpg", "/Icons/32x32.jpg", "/Icons/16x16.jpg"}, device.IconURLs)
}

func TestParseDeviceDescriptionKeepsFirstUDN(t *testing.T) {
	device, err := ParseDeviceDescription([]byte(deviceDescXML))
	require.NoError(t, err)

	// The embedded device's UDN must not win over the root device's.
	assert.Equal(t, "5f9ec1b3-ed59-1900-4530-00a0dea54f93", device.DeviceID)
}

func TestParseDeviceDescriptionErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{
			name:    "no device node",
			payload: `<?xml version="1.0"?><root><other/></root>`,
		},
		{
			name:    "no UDN",
			payload: `<?xml version="1.0"?><root><device><friendlyName>X</friendlyName></device></root>`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseDeviceDescription([]byte(tc.payload))
			require.Error(t, err)

			var descErr *DescriptorError
			require.ErrorAs(t, err, &descErr)
		})
	}
}

func TestDeviceIDFromUDN(t *testing.T) {
	tests := []struct {
		udn  string
		want string
	}{
		{"uuid:abc-def", "abc-def"},
		{"UUID:abc-def", "abc-def"},
		{"abc-def", "abc-def"},
		{"uuid:", ""},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, deviceIDFromUDN(tc.udn), "udn=%q", tc.udn)
	}
}
