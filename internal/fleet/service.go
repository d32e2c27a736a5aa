package fleet

import (
	"github.com/vhubert/fleetctl/internal/client"
)

// Management API paths. These are part of the wire contract and must
// match the server exactly.
const (
	inventoryDevicesPath = "/api/management/v1/inventory/devices"
	devauthDevicesPath   = "/api/management/v2/devauth/devices"
	groupDevicesFmt      = "/api/management/v1/inventory/groups/%s/devices"
	deploymentsPath      = "/api/management/v1/deployments/deployments"
)

// Service exposes the fleet operations: serial-number resolution,
// device info, artifact census, and deployment submission. Every
// operation is all-or-nothing; none retries, caches, or partially
// reports. All server calls run sequentially.
type Service struct {
	client *client.Client
}

// NewService creates a Service on top of a configured transport.
func NewService(c *client.Client) *Service {
	return &Service{client: c}
}
