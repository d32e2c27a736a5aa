package main

import (
	"context"
	"fmt"
	"os"

	"github.com/paularlott/cli"
	"github.com/paularlott/cli/env"

	"github.com/vhubert/fleetctl/cmd/census"
	"github.com/vhubert/fleetctl/cmd/deploy"
	"github.com/vhubert/fleetctl/cmd/device"
	"github.com/vhubert/fleetctl/cmd/login"
	"github.com/vhubert/fleetctl/cmd/serve"
	"github.com/vhubert/fleetctl/internal/log"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Load .env file if it exists
	env.Load()

	// Initialize structured logging
	log.Configure("info", "console")

	rootCmd := &cli.Command{
		Name:        "fleetctl",
		Version:     version,
		Usage:       "Device-fleet management client",
		Description: "A command line client for a Mender-compatible fleet server: device lookups, inventory census, and OTA deployments",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:         "log-level",
				Usage:        "Log level (trace, debug, info, warn, error)",
				DefaultValue: "info",
				EnvVars:      []string{"FLEETCTL_LOG_LEVEL"},
				Global:       true,
			},
			&cli.StringFlag{
				Name:         "log-format",
				Usage:        "Log format (console, json)",
				DefaultValue: "console",
				EnvVars:      []string{"FLEETCTL_LOG_FORMAT"},
				Global:       true,
			},
		},
		PreRun: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			log.Configure(cmd.GetString("log-level"), cmd.GetString("log-format"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			login.Command(),
			device.GetIDCommand(),
			device.GetInfoCommand(),
			census.Command(),
			deploy.Command(),
			serve.Command(),
		},
	}

	if err := rootCmd.Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
