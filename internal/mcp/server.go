package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/paularlott/mcp"

	"github.com/vhubert/fleetctl/internal/fleet"
	"github.com/vhubert/fleetctl/internal/log"
	"github.com/vhubert/fleetctl/internal/model"
	"github.com/vhubert/fleetctl/internal/worker"
)

// Server exposes the fleet operations as MCP tools over HTTP. Tool
// handlers call the same core service as the CLI commands, with the
// same all-or-nothing semantics.
type Server struct {
	mcpServer   *mcp.Server
	fleet       *fleet.Service
	census      *worker.CensusCache
	bearerToken string
}

// NewServer creates an MCP server over the given fleet service. The
// census cache may be nil, in which case the census tool always walks
// the inventory live.
func NewServer(svc *fleet.Service, census *worker.CensusCache, bearerToken string) *Server {
	s := &Server{
		mcpServer:   mcp.NewServer("fleetctl", "1.0.0"),
		fleet:       svc,
		census:      census,
		bearerToken: bearerToken,
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	s.mcpServer.RegisterTool(
		mcp.NewTool("device_resolve", "Resolve a device serial number to its platform device ID, searching the inventory index first and the identity table as a fallback.",
			mcp.String("serial_number", "Serial number assigned at provisioning time", mcp.Required()),
		),
		s.handleDeviceResolve,
	)

	s.mcpServer.RegisterTool(
		mcp.NewTool("device_info", "Get the raw inventory record for a device by its platform device ID.",
			mcp.String("id", "Platform device ID", mcp.Required()),
		),
		s.handleDeviceInfo,
	)

	s.mcpServer.RegisterTool(
		mcp.NewTool("artifact_census", "Count devices per installed artifact across the whole fleet, ranked by device count.",
			mcp.String("mode", "Either \"cached\" to allow serving the background snapshot (default) or \"live\" to walk the inventory now"),
		),
		s.handleArtifactCensus,
	)

	s.mcpServer.RegisterTool(
		mcp.NewTool("deploy", "Submit a deployment of an artifact to a device group or a single device. Exactly one of group or device_id must be given.",
			mcp.String("artifact_name", "Name of the artifact to deploy", mcp.Required()),
			mcp.String("group", "Device group to deploy to"),
			mcp.String("device_id", "Single device to deploy to"),
			mcp.String("name", "Deployment name (defaults to the group or device)"),
		),
		s.handleDeploy,
	)
}

// HandleRequest handles MCP HTTP requests with optional bearer token
// authentication, mirroring the management API's own auth scheme.
func (s *Server) HandleRequest(w http.ResponseWriter, r *http.Request) {
	log.Debug("MCP request received", "method", r.Method, "path", r.URL.Path, "remote_addr", r.RemoteAddr)

	if s.bearerToken != "" {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			log.Warn("MCP request missing Authorization header", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized: Missing Authorization header", http.StatusUnauthorized)
			return
		}
		if !strings.HasPrefix(auth, "Bearer ") {
			log.Warn("MCP request invalid Authorization format", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized: Invalid Authorization format", http.StatusUnauthorized)
			return
		}
		if strings.TrimPrefix(auth, "Bearer ") != s.bearerToken {
			log.Warn("MCP request invalid token", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
			return
		}
	}

	s.mcpServer.HandleRequest(w, r)
}

func (s *Server) handleDeviceResolve(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	serial, err := req.String("serial_number")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("serial_number is required: " + err.Error())
	}

	id, err := s.fleet.ResolveSerial(ctx, serial)
	if errors.Is(err, fleet.ErrSerialNotFound) {
		return mcp.NewToolResponseText(fmt.Sprintf("No device found for serial number %s", serial)), nil
	}
	if err != nil {
		log.Error("MCP serial resolution failed", "error", err, "serial", serial)
		return nil, mcp.NewToolErrorInternal("failed to resolve serial number: " + err.Error())
	}

	return mcp.NewToolResponseText(fmt.Sprintf("Device ID: %s", id)), nil
}

func (s *Server) handleDeviceInfo(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	id, err := req.String("id")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("id is required: " + err.Error())
	}

	info, err := s.fleet.DeviceInfo(ctx, id)
	if err != nil {
		log.Error("MCP device info failed", "error", err, "id", id)
		return nil, mcp.NewToolErrorInternal("failed to fetch device info: " + err.Error())
	}

	return mcp.NewToolResponseText(string(info)), nil
}

func (s *Server) handleArtifactCensus(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	mode := req.StringOr("mode", "cached")

	if mode != "live" && s.census != nil {
		if report, taken, ok := s.census.Get(); ok {
			log.Debug("MCP census served from snapshot", "taken", taken)
			return mcp.NewToolResponseText(formatCensus(report, fmt.Sprintf("snapshot from %s", taken.Format("2006-01-02 15:04:05")))), nil
		}
	}

	report, err := s.fleet.ArtifactCensus(ctx)
	if err != nil {
		log.Error("MCP census failed", "error", err)
		return nil, mcp.NewToolErrorInternal("failed to run artifact census: " + err.Error())
	}
	if s.census != nil {
		s.census.Set(report)
	}

	return mcp.NewToolResponseText(formatCensus(report, "live")), nil
}

func (s *Server) handleDeploy(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	artifact, err := req.String("artifact_name")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("artifact_name is required: " + err.Error())
	}

	spec := fleet.DeploymentSpec{
		ArtifactName: artifact,
		Group:        req.StringOr("group", ""),
		DeviceID:     req.StringOr("device_id", ""),
		Name:         req.StringOr("name", ""),
	}

	count, err := s.fleet.Deploy(ctx, spec)
	switch {
	case errors.Is(err, fleet.ErrNoTarget), errors.Is(err, fleet.ErrAmbiguousTarget), errors.Is(err, fleet.ErrNoArtifact):
		return nil, mcp.NewToolErrorInvalidParams(err.Error())
	case err != nil:
		log.Error("MCP deployment failed", "error", err, "artifact", artifact)
		return nil, mcp.NewToolErrorInternal("failed to submit deployment: " + err.Error())
	}

	return mcp.NewToolResponseText(fmt.Sprintf("Deployment submitted to %d devices", count)), nil
}

func formatCensus(report []model.ArtifactCount, source string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Artifact census (%s):\n\n", source))
	for _, row := range report {
		name := row.Name
		if name == "" {
			name = "(no artifact)"
		}
		b.WriteString(fmt.Sprintf("%8d  %s\n", row.Devices, name))
	}
	return b.String()
}

// GetHTTPHandler returns the HTTP handler for the MCP server.
func (s *Server) GetHTTPHandler() http.HandlerFunc {
	return s.HandleRequest
}

// LogStartup logs MCP server startup information.
func (s *Server) LogStartup() {
	log.Info("MCP server initialized", "version", "1.0.0")
	if s.bearerToken != "" {
		log.Info("MCP authentication enabled", "type", "Bearer token")
	} else {
		log.Info("MCP authentication disabled")
	}
	tools := s.mcpServer.ListTools()
	log.Info("MCP tools registered", "count", len(tools))
	for _, tool := range tools {
		log.Debug("MCP tool registered", "name", tool.Name, "description", tool.Description)
	}
}
