package deploy

import (
	"context"
	"fmt"

	"github.com/paularlott/cli"

	"github.com/vhubert/fleetctl/internal/client"
	"github.com/vhubert/fleetctl/internal/config"
	"github.com/vhubert/fleetctl/internal/fleet"
)

// Command returns the deploy command: submit an artifact deployment
// to a device group or a single device.
func Command() *cli.Command {
	return &cli.Command{
		Name:        "deploy",
		Usage:       "Deploy an artifact to a group or a device",
		Description: "Materialize the target device set (a named group or one device) and submit a single deployment for it",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "artifact", Required: true},
		},
		Flags: append(config.GetFlags(),
			&cli.StringFlag{
				Name:    "group",
				Aliases: []string{"g"},
				Usage:   "Device group to deploy to",
			},
			&cli.StringFlag{
				Name:    "device",
				Aliases: []string{"d"},
				Usage:   "Single device ID to deploy to",
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "Deployment name (defaults to the group or device)",
			},
		),
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

			spec := fleet.DeploymentSpec{
				ArtifactName: cmd.GetStringArg("artifact"),
				Group:        cmd.GetString("group"),
				DeviceID:     cmd.GetString("device"),
				Name:         cmd.GetString("name"),
			}

			count, err := fleet.NewService(c).Deploy(ctx, spec)
			if err != nil {
				return err
			}

			fmt.Printf("Deployed to %d devices\n", count)
			return nil
		},
	}
}
