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

func attrs(artifact string) []model.DeviceAttribute {
	return []model.DeviceAttribute{
		{Name: "device_type", Value: "raspberrypi4"},
		{Name: "artifact_name", Value: artifact},
	}
}

func TestArtifactCensusCountsAcrossPages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/management/v1/inventory/devices", func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		switch page {
		case 1:
			json.NewEncoder(w).Encode([]model.Device{
				{ID: "d1", Attributes: attrs("release-2.1")},
				{ID: "d2"}, // no attributes at all
			})
		case 2:
			json.NewEncoder(w).Encode([]model.Device{
				{ID: "d3", Attributes: attrs("release-2.1")},
				{ID: "d4", Attributes: attrs("release-2.0")},
				{ID: "d5", Attributes: []model.DeviceAttribute{{Name: "device_type", Value: "x86"}}},
			})
		default:
			w.Write([]byte("[]"))
		}
	})

	svc, _ := newService(t, mux)
	report, err := svc.ArtifactCensus(context.Background())
	if err != nil {
		t.Fatalf("ArtifactCensus() error = %v", err)
	}

	want := []model.ArtifactCount{
		{Name: "", Devices: 2},
		{Name: "release-2.1", Devices: 2},
		{Name: "release-2.0", Devices: 1},
	}
	if len(report) != len(want) {
		t.Fatalf("got %d rows, want %d: %+v", len(report), len(want), report)
	}
	for i := range want {
		if report[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, report[i], want[i])
		}
	}
}

func TestArtifactCensusRanksByCountDescending(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/management/v1/inventory/devices", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "1" {
			w.Write([]byte("[]"))
			return
		}
		json.NewEncoder(w).Encode([]model.Device{
			{ID: "d1", Attributes: attrs("a")},
			{ID: "d2"},
			{ID: "d3", Attributes: attrs("a")},
		})
	})

	svc, _ := newService(t, mux)
	report, err := svc.ArtifactCensus(context.Background())
	if err != nil {
		t.Fatalf("ArtifactCensus() error = %v", err)
	}
	if len(report) != 2 {
		t.Fatalf("got %d rows, want 2", len(report))
	}
	if report[0].Name != "a" || report[0].Devices != 2 {
		t.Errorf("top row = %+v, want a/2", report[0])
	}
	if report[1].Name != "" || report[1].Devices != 1 {
		t.Errorf("second row = %+v, want empty bucket with 1", report[1])
	}
}

func TestArtifactCensusDiscardsPartialCountsOnFailure(t *testing.T) {
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/api/management/v1/inventory/devices", func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			json.NewEncoder(w).Encode([]model.Device{{ID: "d1", Attributes: attrs("a")}})
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("inventory overloaded"))
	})

	svc, _ := newService(t, mux)
	report, err := svc.ArtifactCensus(context.Background())

	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *client.APIError, got %v", err)
	}
	if report != nil {
		t.Errorf("partial report returned on failure: %+v", report)
	}
}
