package device

import (
	"context"
	"errors"
	"fmt"

	"github.com/paularlott/cli"

	"github.com/vhubert/fleetctl/internal/client"
	"github.com/vhubert/fleetctl/internal/config"
	"github.com/vhubert/fleetctl/internal/fleet"
)

// GetIDCommand returns the getid command: serial number in, platform
// device ID out.
func GetIDCommand() *cli.Command {
	return &cli.Command{
		Name:        "getid",
		Usage:       "Resolve a serial number to a device ID",
		Description: "Look up the platform device ID for a serial number, searching the inventory index first and falling back to a full identity-table scan",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "serial-number", Required: true},
		},
		Flags: config.GetFlags(),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := buildService(cmd)
			if err != nil {
				return err
			}

			serial := cmd.GetStringArg("serial-number")
			id, err := svc.ResolveSerial(ctx, serial)
			if errors.Is(err, fleet.ErrSerialNotFound) {
				return fmt.Errorf("no device found for serial number %s", serial)
			}
			if err != nil {
				return err
			}

			fmt.Println(id)
			return nil
		},
	}
}

// GetInfoCommand returns the getinfo command: dump the raw inventory
// record for a device ID.
func GetInfoCommand() *cli.Command {
	return &cli.Command{
		Name:        "getinfo",
		Usage:       "Show the inventory record for a device",
		Description: "Fetch and pretty-print the raw inventory data for a device ID",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id", Required: true},
		},
		Flags: config.GetFlags(),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := buildService(cmd)
			if err != nil {
				return err
			}

			info, err := svc.DeviceInfo(ctx, cmd.GetStringArg("id"))
			if err != nil {
				return err
			}

			fmt.Println(string(info))
			return nil
		},
	}
}

// buildService wires config, transport, and the fleet service for one
// command invocation.
func buildService(cmd *cli.Command) (*fleet.Service, error) {
	cfg, err := config.Load(cmd)
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireToken(); err != nil {
		return nil, err
	}
	cert, err := cfg.ReadCert()
	if err != nil {
		return nil, err
	}
	c, err := client.New(cfg.ServerURL, cfg.Token, cert)
	if err != nil {
		return nil, err
	}
	return fleet.NewService(c), nil
}
