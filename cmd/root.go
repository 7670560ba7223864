package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/arcanaland/feedview/internal/config"
	"github.com/arcanaland/feedview/internal/feed"
	"github.com/arcanaland/feedview/internal/logging"
)

var (
	configPath string
	logLevel   string

	cfg    *config.Config
	logger = zap.NewNop()
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "feedview",
	Short: "Render public JSON feeds in the terminal or a browser",
	Long: `Feedview fetches public feeds and renders them.

The cards command draws playing cards from the Deck of Cards API and shows them
as a grid you can select from. The quakes command plots the USGS weekly
earthquake feed on a terminal map. The serve command offers both pages to a
browser.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/feedview/config.toml)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")

	RootCmd.AddCommand(validateCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// Cancelling ctx cancels any fetch in flight and stops the server.
func Execute(ctx context.Context) error {
	return RootCmd.ExecuteContext(ctx)
}

// setup loads the config and builds the logger for a command run
func setup(cmd *cobra.Command) error {
	c, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("error loading config: %v", err)
	}

	level := c.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	l, err := logging.New(level, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	cfg, logger = c, l
	return nil
}

// newFeedClient creates a feed client with the configured timeout
func newFeedClient() (*feed.Client, error) {
	timeout, err := cfg.RequestTimeout()
	if err != nil {
		return nil, err
	}
	return feed.NewClient(timeout, logger), nil
}

// terminalSize returns the stdout size, or 80x24 when it is not a terminal
func terminalSize() (int, int) {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 || height <= 0 {
		return 80, 24
	}
	return width, height
}

// stdinIsTerminal reports whether the user can type selections
func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
