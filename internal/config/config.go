package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/paularlott/cli"
)

// Configuration errors, surfaced before any network activity.
var (
	ErrMissingServerURL = errors.New("server URL is required (set --server or FLEETCTL_SERVER_URL)")
	ErrMissingToken     = errors.New("auth token is required (set --token or FLEETCTL_TOKEN, obtained via the login command)")
)

// Config holds everything a fleet operation needs from the
// environment: where the server is, how to authenticate, and which
// certificate to trust. It is built once per invocation and passed
// into the core; nothing below the command layer reads the process
// environment.
type Config struct {
	ServerURL string
	Token     string
	CertFile  string

	// serve mode only
	ListenAddr    string
	MCPAuthToken  string
	CensusRefresh string
}

// GetFlags returns the connection flags shared by every command that
// talks to the fleet server. Values fall back to FLEETCTL_* environment
// variables, with .env files handled by the CLI layer.
func GetFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "Fleet server base URL (e.g. https://mender.example.com)",
			EnvVars: []string{"FLEETCTL_SERVER_URL"},
		},
		&cli.StringFlag{
			Name:    "token",
			Usage:   "Bearer token for the management API",
			EnvVars: []string{"FLEETCTL_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "cert-file",
			Usage:   "PEM certificate to trust instead of the system roots",
			EnvVars: []string{"FLEETCTL_CERT_FILE"},
		},
	}
}

// ServeFlags returns the extra flags used by the serve command.
func ServeFlags() []cli.Flag {
	return append(GetFlags(),
		&cli.StringFlag{
			Name:         "listen-addr",
			Usage:        "Address for the MCP endpoint (e.g. :8090)",
			DefaultValue: ":8090",
			EnvVars:      []string{"FLEETCTL_LISTEN_ADDR"},
		},
		&cli.StringFlag{
			Name:    "mcp-token",
			Usage:   "Bearer token clients must present to the MCP endpoint (unauthenticated when empty)",
			EnvVars: []string{"FLEETCTL_MCP_TOKEN"},
		},
		&cli.StringFlag{
			Name:         "census-refresh",
			Usage:        "Cron schedule for the background census snapshot (e.g. @every 1h)",
			DefaultValue: "@every 1h",
			EnvVars:      []string{"FLEETCTL_CENSUS_REFRESH"},
		},
	)
}

// Load builds a Config from the executed command's flags. It validates
// the server URL; token presence is checked separately since the login
// command runs without one.
func Load(cmd *cli.Command) (*Config, error) {
	cfg := &Config{
		ServerURL: strings.TrimRight(cmd.GetString("server"), "/"),
		Token:     cmd.GetString("token"),
		CertFile:  cmd.GetString("cert-file"),
	}

	if cfg.ServerURL == "" {
		return nil, ErrMissingServerURL
	}

	return cfg, nil
}

// LoadServe builds a Config for the serve command, which carries the
// listen and scheduling flags on top of the connection flags.
func LoadServe(cmd *cli.Command) (*Config, error) {
	cfg, err := Load(cmd)
	if err != nil {
		return nil, err
	}
	cfg.ListenAddr = cmd.GetString("listen-addr")
	cfg.MCPAuthToken = cmd.GetString("mcp-token")
	cfg.CensusRefresh = cmd.GetString("census-refresh")
	return cfg, nil
}

// RequireToken validates that a bearer token is configured.
func (c *Config) RequireToken() error {
	if c.Token == "" {
		return ErrMissingToken
	}
	return nil
}

// ReadCert loads the configured trust certificate, or returns nil
// when none is set and the platform trust store should be used.
func (c *Config) ReadCert() ([]byte, error) {
	if c.CertFile == "" {
		return nil, nil
	}
	pem, err := os.ReadFile(c.CertFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read certificate %s: %w", c.CertFile, err)
	}
	return pem, nil
}
