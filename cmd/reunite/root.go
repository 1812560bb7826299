package main

import (
	"github.com/spf13/cobra"

	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/config"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath  string
	storage     string
	sqlitePath  string
	databaseURL string
	logPath     string
	verbose     bool
}

func newRootCmd() *cobra.Command {
	var g globalFlags

	root := &cobra.Command{
		Use:   "reunite",
		Short: "REUNITE lost-and-found backend",
		Long: `REUNITE lets people post lost and found items, search the listings
and message each other about them.

Settings are read from defaults, an optional YAML file (--config), a .env
file, REUNITE_* environment variables and finally command line flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&g.configPath, "config", "c", "", "YAML config file")
	pf.StringVar(&g.storage, "storage", "", "storage driver: memory, sqlite or postgres")
	pf.StringVar(&g.sqlitePath, "sqlite-path", "", "SQLite database path")
	pf.StringVar(&g.databaseURL, "database-url", "", "Postgres connection URL")
	pf.StringVarP(&g.logPath, "log", "l", "", "also write logs to this file")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "log debug messages")

	root.AddCommand(newServeCmd(&g), newSeedCmd(&g))
	return root
}

// loadConfig resolves the configuration, letting explicitly set flags win.
func loadConfig(cmd *cobra.Command, g *globalFlags) (config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("storage") {
		cfg.Storage = g.storage
	}
	if flags.Changed("sqlite-path") {
		cfg.SQLitePath = g.sqlitePath
	}
	if flags.Changed("database-url") {
		cfg.DatabaseURL = g.databaseURL
	}
	if flags.Changed("log") {
		cfg.LogPath = g.logPath
	}
	return cfg, nil
}
