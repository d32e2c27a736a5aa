package census

import (
	"context"
	"fmt"

	"github.com/paularlott/cli"

	"github.com/vhubert/fleetctl/internal/client"
	"github.com/vhubert/fleetctl/internal/config"
	"github.com/vhubert/fleetctl/internal/fleet"
)

// Command returns the census command: count devices per installed
// artifact across the whole fleet.
func Command() *cli.Command {
	return &cli.Command{
		Name:        "census",
		Usage:       "Count devices per installed artifact",
		Description: "Walk the full device inventory and report how many devices run each artifact, ranked by count",
		Flags:       config.GetFlags(),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(cmd)
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

			report, err := fleet.NewService(c).ArtifactCensus(ctx)
			if err != nil {
				return err
			}

			total := 0
			for _, row := range report {
				name := row.Name
				if name == "" {
					name = "(no artifact)"
				}
				fmt.Printf("%8d  %s\n", row.Devices, name)
				total += row.Devices
			}
			fmt.Printf("%8d  devices total\n", total)
			return nil
		},
	}
}
