// Package cli defines the command line interface of faceguard.
package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"

	"go.faceguard.dev/faceguard/app/config"
	actx "go.faceguard.dev/faceguard/app/context"
)

// CLI is the command line interface of faceguard.
type CLI struct {
	Init    Init    `kong:"cmd,help='Create initial application artifacts.'"`
	Auth    Auth    `kong:"cmd,help='Authenticate interactively against the camera.'"`
	Serve   Serve   `kong:"cmd,help='Start the guard service.'"`
	User    User    `kong:"cmd,help='Manage enrolled users.'"`
	Events  Events  `kong:"cmd,help='List recent authentication events.'"`
	Card    Card    `kong:"cmd,help='Wiegand card reader/transmitter checks.'"`
	LED     LED     `kong:"cmd,name='led',help='LED hardware checks.'"`
	Service Service `kong:"cmd,help='Manage the systemd service.'"`

	Log struct {
		Level slog.Level `enum:"DEBUG,INFO,WARN,ERROR" default:"INFO" help:"Set the app logging level."`
	} `embed:"" prefix:"log-"`
	// NOTE: I'm deliberately not using kong.ConfigFlag or its support for reading
	// values from configuration files, since I want to manage configuration
	// independently from the CLI.
	ConfigFile string           `kong:"default='${configFile}',help='Path to the faceguard configuration file.'"`
	DataDir    string           `kong:"default='${dataDir}',help='Path to the directory where faceguard data is stored.'"`
	Simulate   bool             `kong:"help='Replace the camera and GPIO hardware with in-memory simulators.'"`
	Version    kong.VersionFlag `kong:"help='Output version and exit.'"`

	kong *kong.Kong
	kctx *kong.Context
}

// New initializes the command-line interface.
func New(configFilePath, dataDir, version string) (*CLI, error) {
	c := &CLI{}
	kparser, err := kong.New(c,
		kong.Name("faceguard"),
		kong.UsageOnError(),
		kong.DefaultEnvars("FACEGUARD"),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			Summary:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"configFile": configFilePath,
			"dataDir":    dataDir,
			"version":    version,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed creating the Kong parser: %w", err)
	}

	c.kong = kparser

	return c, nil
}

// Execute starts the command execution. Parse must be called before this method.
func (c *CLI) Execute(appCtx *actx.Context) error {
	if c.kctx == nil {
		panic("the CLI wasn't initialized properly")
	}
	c.kong.Stdout = appCtx.Stdout
	c.kong.Stderr = appCtx.Stderr

	//nolint:wrapcheck // This is fine.
	return c.kctx.Run(appCtx, c)
}

// Parse the given command line arguments. This method must be called before
// Execute.
func (c *CLI) Parse(args []string) error {
	kctx, err := c.kong.Parse(args)
	if err != nil {
		return fmt.Errorf("failed parsing CLI arguments: %w", err)
	}
	c.kctx = kctx

	return nil
}

// Command returns the full path of the executed command.
func (c *CLI) Command() string {
	if c.kctx == nil {
		panic("the CLI wasn't initialized properly")
	}
	cmdPath := []string{}
	for _, p := range c.kctx.Path {
		if p.Command != nil {
			cmdPath = append(cmdPath, p.Command.Name)
		}
	}

	return strings.Join(cmdPath, " ")
}

// ApplyConfig applies configuration values to the CLI, but only if they
// weren't already set.
func (c *CLI) ApplyConfig(cfg *config.Config) {
	if c.Serve.Address == "" && cfg.Server.Address.Valid {
		c.Serve.Address = cfg.Server.Address.V
	}
	if !c.Simulate && cfg.Device.Simulate.Valid {
		c.Simulate = cfg.Device.Simulate.V
	}
}
