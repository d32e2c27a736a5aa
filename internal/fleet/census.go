package fleet

import (
	"context"
	"sort"

	"github.com/vhubert/fleetctl/internal/client"
	"github.com/vhubert/fleetctl/internal/log"
	"github.com/vhubert/fleetctl/internal/model"
)

// ArtifactCensus walks the entire device inventory and counts, per
// artifact name, the devices currently running it. Devices without an
// artifact_name attribute land in the "" bucket. The report is sorted
// by device count descending, name ascending on ties. Any page
// failure discards all partial counts.
func (s *Service) ArtifactCensus(ctx context.Context) ([]model.ArtifactCount, error) {
	counts := make(map[string]int)
	pages := 0

	err := client.Pages(ctx, s.client, inventoryDevicesPath, nil, client.DefaultPerPage,
		func(devices []model.Device) (bool, error) {
			pages++
			for i := range devices {
				counts[devices[i].ArtifactName()]++
			}
			return false, nil
		})
	if err != nil {
		return nil, err
	}

	report := make([]model.ArtifactCount, 0, len(counts))
	for name, n := range counts {
		report = append(report, model.ArtifactCount{Name: name, Devices: n})
	}
	sort.Slice(report, func(i, j int) bool {
		if report[i].Devices != report[j].Devices {
			return report[i].Devices > report[j].Devices
		}
		return report[i].Name < report[j].Name
	})

	log.Debug("Artifact census complete", "pages", pages, "artifacts", len(report))
	return report, nil
}
