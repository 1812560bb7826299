package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/config"
	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/seed"
)

func newSeedCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo users, items and messages into an empty store",
		Long: `Seed creates a few demo accounts, listings and messages. It does nothing
when the store already holds users or items. The memory driver is rejected
because its data would vanish as soon as the command exits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if cfg.Storage == config.StorageMemory {
				return fmt.Errorf("seed needs a persistent storage driver, got %q", cfg.Storage)
			}

			closeLog, err := setupLogger(cfg.LogPath, g.verbose)
			if err != nil {
				return err
			}
			defer closeLog()

			b, err := openBackend(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer b.Close()

			res, err := seed.Seed(cmd.Context(), b.store)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if res == (seed.Result{}) {
				fmt.Fprintln(out, "Store already has data, nothing seeded.")
				return nil
			}
			fmt.Fprintf(out, "Seeded %d users, %d items and %d messages.\n", res.Users, res.Items, res.Messages)
			fmt.Fprintf(out, "Demo password for every account: %s\n", seed.DemoPassword)
			return nil
		},
	}
}
