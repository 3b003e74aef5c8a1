package app

import (
	"github.com/spf13/cobra"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the schema and role reference rows",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		cfg, log, err := bootstrap(ctx)
		if err != nil {
			return err
		}

		st, err := openStore(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer func() { _ = st.close(ctx) }()

		if err := st.migrate(ctx); err != nil {
			return err
		}
		log.Info().Str("driver", cfg.Store.Driver).Msg("migration complete")
		return nil
	},
}
