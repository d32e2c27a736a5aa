package login

import (
	"context"
	"fmt"
	"os"

	"github.com/paularlott/cli"
	"golang.org/x/term"

	"github.com/vhubert/fleetctl/internal/client"
	"github.com/vhubert/fleetctl/internal/config"
)

// Command returns the login command. It authenticates against the
// server with email and password and prints the bearer token the
// other commands expect in FLEETCTL_TOKEN.
func Command() *cli.Command {
	return &cli.Command{
		Name:        "login",
		Usage:       "Log in to the fleet server",
		Description: "Authenticate with email and password and print the bearer token used by the other commands",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "email", Required: true},
		},
		Flags: append(config.GetFlags(),
			&cli.StringFlag{
				Name:  "password",
				Usage: "Password (prompted without echo when omitted)",
			},
		),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(cmd)
			if err != nil {
				return err
			}

			email := cmd.GetStringArg("email")
			password := cmd.GetString("password")
			if password == "" {
				fmt.Fprint(os.Stderr, "Password: ")
				raw, err := term.ReadPassword(int(os.Stdin.Fd()))
				fmt.Fprintln(os.Stderr)
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = string(raw)
			}

			cert, err := cfg.ReadCert()
			if err != nil {
				return err
			}
			c, err := client.New(cfg.ServerURL, "", cert)
			if err != nil {
				return err
			}

			token, err := c.Login(ctx, email, password)
			if err != nil {
				return err
			}

			fmt.Println(token)
			return nil
		},
	}
}
