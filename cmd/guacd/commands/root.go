package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/signalwire/sigmond-holyguacamole/cmd/guacd/internal/config"
	"github.com/signalwire/sigmond-holyguacamole/pkg/menu"
)

var (
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "guacd",
	Short: "Order engine for the Holy Guacamole drive-thru",
	Long: `guacd - the deterministic half of a voice drive-thru.

The voice platform handles speech; guacd handles everything that must
not hallucinate: the catalog, phrase matching, the order ledger, and
the ordering state machine.

Examples:
  # Print the menu board
  guacd menu

  # Take an order interactively
  guacd order

  # Serve operations over WebSocket with persistent sessions
  guacd serve --data-dir /var/lib/guacd`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: user config dir)")
}

func initLogging() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// loadConfig loads the config file named by --config, or the default.
func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

// loadMenu loads the catalog named by the config, or the built-in one.
func loadMenu(cfg *config.Config) (*menu.Menu, error) {
	if cfg.Menu == "" {
		return menu.Default(), nil
	}
	m, err := menu.LoadFile(cfg.Menu)
	if err != nil {
		return nil, fmt.Errorf("load menu: %w", err)
	}
	return m, nil
}
