package model

// DeviceAttribute is one free-form inventory attribute reported for a
// device. Names are not guaranteed unique within a device.
type DeviceAttribute struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// Device is the inventory view of a device: the platform-assigned ID
// plus whatever attributes the inventory service holds for it.
type Device struct {
	ID         string            `json:"id"`
	Attributes []DeviceAttribute `json:"attributes,omitempty"`
}

// ArtifactName returns the value of the artifact_name attribute, or ""
// when the device has no such attribute or no attributes at all.
func (d *Device) ArtifactName() string {
	for _, attr := range d.Attributes {
		if attr.Name != "artifact_name" {
			continue
		}
		if s, ok := attr.Value.(string); ok {
			return s
		}
	}
	return ""
}

// IdentityData is the provisioning-time identity attached to a device
// by the device-authentication service. Only the serial number is
// inspected by this client.
type IdentityData struct {
	SerialNumber string `json:"SerialNumber"`
}

// AuthDevice is the device-authentication view of a device. The same
// device appears in both subsystems under the same ID but with
// different attached data.
type AuthDevice struct {
	ID           string       `json:"id"`
	Status       string       `json:"status,omitempty"`
	IdentityData IdentityData `json:"identity_data"`
}
