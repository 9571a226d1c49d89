package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSmartPascalCase(t *testing.T) {
	tests := map[string]string{
		"":             "",
		"uuid":         "UUID",
		"device":       "Device",
		"device_ip":    "DeviceIP",
		"macAddress":   "MACAddress",
		"country-code": "CountryCode",
		"serialNumber": "SerialNumber",
	}
	for in, expected := range tests {
		assert.Equal(t, expected, SmartPascalCase(in), in)
	}
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Device", Capitalize("device"))
	assert.Equal(t, "", Capitalize(""))
}
