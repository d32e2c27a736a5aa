package model

// DeploymentRequest is the body submitted to the deployments endpoint.
// Devices is the fully materialized target list, never a group
// reference; the server receives exactly the IDs resolved client-side.
type DeploymentRequest struct {
	ArtifactName string   `json:"artifact_name"`
	Name         string   `json:"name"`
	Devices      []string `json:"devices"`
}

// ArtifactCount is one row of the artifact census report: how many
// devices currently run the named artifact. Name is "" for devices
// that report no artifact_name attribute.
type ArtifactCount struct {
	Name    string `json:"artifact_name"`
	Devices int    `json:"devices"`
}
