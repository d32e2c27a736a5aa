package fleet

import (
	"context"
	"errors"
	"net/url"

	"github.com/vhubert/fleetctl/internal/client"
	"github.com/vhubert/fleetctl/internal/log"
	"github.com/vhubert/fleetctl/internal/model"
)

// ErrSerialNotFound is returned when both resolution tiers exhaust
// without a match. It marks a normal outcome, not a fetch failure.
var ErrSerialNotFound = errors.New("no device found for serial number")

// ResolveSerial maps a human-assigned serial number to the platform
// device ID, in two tiers:
//
//  1. A single server-side attribute query against the inventory
//     index. The index is fast but can lag behind provisioning, so an
//     empty result is not authoritative. When several devices share
//     the serial attribute, the last entry the server returned wins;
//     this is a deliberate tie-break, kept for compatibility.
//  2. A full paginated scan of accepted devices in the identity
//     table, the authoritative but unindexed source. The first record
//     whose identity data carries the exact serial (case-sensitive)
//     wins and ends the scan mid-stream.
func (s *Service) ResolveSerial(ctx context.Context, serial string) (string, error) {
	var matches []model.Device
	query := url.Values{"SerialNumber": []string{serial}}
	if err := s.client.GetJSON(ctx, inventoryDevicesPath, query, &matches); err != nil {
		return "", err
	}
	if len(matches) > 0 {
		id := matches[len(matches)-1].ID
		log.Debug("Serial resolved via inventory index", "serial", serial, "id", id, "matches", len(matches))
		return id, nil
	}

	log.Debug("Serial not in inventory index, scanning identity table", "serial", serial)
	var found string
	page := 0
	query = url.Values{"status": []string{"accepted"}}
	err := client.Pages(ctx, s.client, devauthDevicesPath, query, client.DefaultPerPage,
		func(devices []model.AuthDevice) (bool, error) {
			page++
			log.Debug("Scanned identity page", "page", page, "devices", len(devices))
			for _, d := range devices {
				if d.IdentityData.SerialNumber == serial {
					found = d.ID
					return true, nil
				}
			}
			return false, nil
		})
	if err != nil {
		return "", err
	}
	if found == "" {
		return "", ErrSerialNotFound
	}
	return found, nil
}
