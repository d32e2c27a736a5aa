package fleet

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/vhubert/fleetctl/internal/client"
	"github.com/vhubert/fleetctl/internal/log"
	"github.com/vhubert/fleetctl/internal/model"
)

// Caller contract violations, rejected before any network activity.
var (
	ErrNoTarget        = errors.New("either a group or a device must be given")
	ErrAmbiguousTarget = errors.New("group and device targets are mutually exclusive")
	ErrNoArtifact      = errors.New("an artifact name must be given")
)

// DeploymentSpec describes one deployment submission. Exactly one of
// Group or DeviceID must be set. Name is optional and defaults to the
// group name or the device ID.
type DeploymentSpec struct {
	Group        string
	DeviceID     string
	ArtifactName string
	Name         string
}

func (d *DeploymentSpec) validate() error {
	if d.ArtifactName == "" {
		return ErrNoArtifact
	}
	if d.Group == "" && d.DeviceID == "" {
		return ErrNoTarget
	}
	if d.Group != "" && d.DeviceID != "" {
		return ErrAmbiguousTarget
	}
	return nil
}

// effectiveName is the deployment name submitted to the server:
// explicit name first, then group name, then device ID.
func (d *DeploymentSpec) effectiveName() string {
	switch {
	case d.Name != "":
		return d.Name
	case d.Group != "":
		return d.Group
	default:
		return d.DeviceID
	}
}

// Deploy materializes the full target device set and submits a single
// deployment for it. Group targets are expanded by walking the
// membership listing to completion, keeping the IDs in arrival order
// without de-duplication; a device target needs no listing call. The
// returned count is the size of the submitted list, computed
// client-side. If membership listing fails, nothing is submitted;
// once the submission succeeds the deployment is committed, with no
// rollback.
func (s *Service) Deploy(ctx context.Context, spec DeploymentSpec) (int, error) {
	if err := spec.validate(); err != nil {
		return 0, err
	}

	var devices []string
	if spec.DeviceID != "" {
		devices = []string{spec.DeviceID}
	} else {
		path := fmt.Sprintf(groupDevicesFmt, url.PathEscape(spec.Group))
		ids, err := client.FetchAll[string](ctx, s.client, path, nil)
		if err != nil {
			return 0, err
		}
		devices = ids
		log.Debug("Resolved group membership", "group", spec.Group, "devices", len(devices))
	}

	req := model.DeploymentRequest{
		ArtifactName: spec.ArtifactName,
		Name:         spec.effectiveName(),
		Devices:      devices,
	}
	if err := s.client.PostJSON(ctx, deploymentsPath, req); err != nil {
		return 0, err
	}

	log.Info("Deployment submitted", "name", req.Name, "artifact", req.ArtifactName, "devices", len(devices))
	return len(devices), nil
}
