package fleet

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"testing"

	"github.com/vhubert/fleetctl/internal/client"
	"github.com/vhubert/fleetctl/internal/model"
)

func TestDeployValidation(t *testing.T) {
	tests := []struct {
		name    string
		spec    DeploymentSpec
		wantErr error
	}{
		{"neither target", DeploymentSpec{ArtifactName: "rel-1"}, ErrNoTarget},
		{"both targets", DeploymentSpec{ArtifactName: "rel-1", Group: "prod", DeviceID: "d1"}, ErrAmbiguousTarget},
		{"missing artifact", DeploymentSpec{Group: "prod"}, ErrNoArtifact},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			svc, _ := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
			}))

			_, err := svc.Deploy(context.Background(), tt.spec)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Deploy() error = %v, want %v", err, tt.wantErr)
			}
			if calls != 0 {
				t.Errorf("contract violations must be rejected before any network call, saw %d", calls)
			}
		})
	}
}

func TestDeployToDevice(t *testing.T) {
	groupCalls := 0
	var submitted model.DeploymentRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/api/management/v1/inventory/groups/", func(w http.ResponseWriter, r *http.Request) {
		groupCalls++
		w.Write([]byte("[]"))
	})
	mux.HandleFunc("/api/management/v1/deployments/deployments", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&submitted); err != nil {
			t.Errorf("bad deployment body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	})

	svc, _ := newService(t, mux)
	count, err := svc.Deploy(context.Background(), DeploymentSpec{
		ArtifactName: "release-3.0",
		DeviceID:     "dev-7",
	})
	if err != nil {
		t.Fatalf("Deploy() error = %v", err)
	}

	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	if groupCalls != 0 {
		t.Errorf("membership listing called %d times for a device target, want 0", groupCalls)
	}
	if submitted.Name != "dev-7" {
		t.Errorf("deployment name = %q, want device ID default", submitted.Name)
	}
	if len(submitted.Devices) != 1 || submitted.Devices[0] != "dev-7" {
		t.Errorf("devices = %v, want [dev-7]", submitted.Devices)
	}
}

func TestDeployToGroupMaterializesMembership(t *testing.T) {
	var submitted model.DeploymentRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/api/management/v1/inventory/groups/production/devices", func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		switch page {
		case 1:
			w.Write([]byte(`["d1","d2"]`))
		case 2:
			w.Write([]byte(`["d3"]`))
		default:
			w.Write([]byte("[]"))
		}
	})
	mux.HandleFunc("/api/management/v1/deployments/deployments", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&submitted); err != nil {
			t.Errorf("bad deployment body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	})

	svc, _ := newService(t, mux)
	count, err := svc.Deploy(context.Background(), DeploymentSpec{
		ArtifactName: "release-3.0",
		Group:        "production",
		Name:         "friday rollout",
	})
	if err != nil {
		t.Fatalf("Deploy() error = %v", err)
	}

	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
	want := []string{"d1", "d2", "d3"}
	if len(submitted.Devices) != len(want) {
		t.Fatalf("devices = %v, want %v", submitted.Devices, want)
	}
	for i := range want {
		if submitted.Devices[i] != want[i] {
			t.Errorf("devices[%d] = %q, want %q", i, submitted.Devices[i], want[i])
		}
	}
	if submitted.Name != "friday rollout" {
		t.Errorf("deployment name = %q, want explicit name", submitted.Name)
	}
	if submitted.ArtifactName != "release-3.0" {
		t.Errorf("artifact = %q, want release-3.0", submitted.ArtifactName)
	}
}

func TestDeployGroupNameDefault(t *testing.T) {
	var submitted model.DeploymentRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/api/management/v1/inventory/groups/staging/devices", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			w.Write([]byte(`["d1"]`))
			return
		}
		w.Write([]byte("[]"))
	})
	mux.HandleFunc("/api/management/v1/deployments/deployments", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&submitted)
		w.WriteHeader(http.StatusCreated)
	})

	svc, _ := newService(t, mux)
	if _, err := svc.Deploy(context.Background(), DeploymentSpec{ArtifactName: "rel", Group: "staging"}); err != nil {
		t.Fatalf("Deploy() error = %v", err)
	}
	if submitted.Name != "staging" {
		t.Errorf("deployment name = %q, want group default", submitted.Name)
	}
}

func TestDeployMembershipFailurePreventsSubmission(t *testing.T) {
	deployCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/api/management/v1/inventory/groups/production/devices", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			w.Write([]byte(`["d1"]`))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("membership listing failed"))
	})
	mux.HandleFunc("/api/management/v1/deployments/deployments", func(w http.ResponseWriter, r *http.Request) {
		deployCalls++
	})

	svc, _ := newService(t, mux)
	_, err := svc.Deploy(context.Background(), DeploymentSpec{ArtifactName: "rel", Group: "production"})

	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *client.APIError, got %v", err)
	}
	if deployCalls != 0 {
		t.Errorf("deployment submitted despite membership failure (%d calls)", deployCalls)
	}
}

func TestDeploySubmissionFailureSurfacesStatusAndBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/management/v1/deployments/deployments", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte("artifact not known to the server"))
	})

	svc, _ := newService(t, mux)
	_, err := svc.Deploy(context.Background(), DeploymentSpec{ArtifactName: "rel", DeviceID: "d1"})

	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *client.APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusConflict {
		t.Errorf("StatusCode = %d, want 409", apiErr.StatusCode)
	}
	if apiErr.Body != "artifact not known to the server" {
		t.Errorf("Body = %q, want server response", apiErr.Body)
	}
}
