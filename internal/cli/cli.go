// Package cli implements the setup-pdm command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/setup-pdm/pkg/actions"
	"github.com/matzehuels/setup-pdm/pkg/buildinfo"
	"github.com/matzehuels/setup-pdm/pkg/errors"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "setup-pdm"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Host   *actions.Host
	Out    io.Writer // summary lines and plain command output
}

// New creates a CLI that logs to w at level and issues workflow commands on
// stdout.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Host:   actions.NewHost(os.Stdout),
		Out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
// The root command itself performs the setup. Build information is only
// available through the version subcommand since --version is the PDM
// version input.
func (c *CLI) RootCommand() *cobra.Command {
	root := c.setupCommand()

	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())

	return root
}

// Fail reports err as the step's failure. It is called once, by main, for
// the error that ended the run.
func (c *CLI) Fail(err error) {
	c.Host.SetFailed(errors.UserMessage(err))
}

// ExitCode returns the process exit status.
func (c *CLI) ExitCode() int {
	return c.Host.ExitCode()
}

func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(buildinfo.String())
		},
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the manifest store directory using the XDG standard
// (~/.cache/setup-pdm/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
