package serve

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/paularlott/cli"

	"github.com/vhubert/fleetctl/internal/client"
	"github.com/vhubert/fleetctl/internal/config"
	"github.com/vhubert/fleetctl/internal/fleet"
	"github.com/vhubert/fleetctl/internal/log"
	"github.com/vhubert/fleetctl/internal/mcp"
	"github.com/vhubert/fleetctl/internal/worker"
)

// Command returns the serve command: an HTTP endpoint exposing the
// fleet operations as MCP tools, with a background task keeping an
// artifact census snapshot warm.
func Command() *cli.Command {
	return &cli.Command{
		Name:        "serve",
		Usage:       "Serve the fleet operations over MCP",
		Description: "Start an HTTP server exposing serial resolution, device info, artifact census, and deployment as MCP tools",
		Flags:       config.ServeFlags(),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.LoadServe(cmd)
			if err != nil {
				return err
			}
			if err := cfg.RequireToken(); err != nil {
				return err
			}
			cert, err := cfg.ReadCert()
			if err != nil {
				return err
			}
			c, err := client.New(cfg.ServerURL, cfg.Token, cert)
			if err != nil {
				return err
			}
			svc := fleet.NewService(c)

			// Background census refresh keeps the MCP census tool
			// answering from a warm snapshot.
			cache := worker.NewCensusCache()
			scheduler := worker.NewScheduler()
			err = scheduler.RegisterTask("census-refresh", cfg.CensusRefresh, func(ctx context.Context) error {
				report, err := svc.ArtifactCensus(ctx)
				if err != nil {
					return err
				}
				cache.Set(report)
				return nil
			})
			if err != nil {
				return err
			}
			scheduler.Start()
			defer func() {
				log.Info("Stopping census scheduler...")
				scheduler.Stop()
			}()

			mcpServer := mcp.NewServer(svc, cache, cfg.MCPAuthToken)
			mcpServer.LogStartup()

			mux := http.NewServeMux()
			mux.HandleFunc("/mcp", mcpServer.GetHTTPHandler())

			server := &http.Server{
				Addr:    cfg.ListenAddr,
				Handler: mux,
			}

			go func() {
				sigChan := make(chan os.Signal, 1)
				signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
				<-sigChan
				log.Info("Shutting down server...")
				server.Close()
			}()

			log.Info("Starting fleetctl MCP server", "addr", cfg.ListenAddr)
			log.Info("MCP available", "url", "http://localhost"+cfg.ListenAddr+"/mcp")

			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("Server error", "error", err)
				return err
			}

			log.Info("Server stopped")
			return nil
		},
	}
}
