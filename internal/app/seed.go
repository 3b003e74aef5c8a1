package app

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/bizledger/records-api/internal/infrastructure/hash"
	"github.com/bizledger/records-api/internal/infrastructure/seed"
)

func init() { //nolint: gochecknoinits
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "YAML file listing users to create (defaults to SEED_FILE)")

	rootCmd.AddCommand(seedCmd)
}

var (
	seedFile string

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Create the users listed in a YAML seed file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, log, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			path := seedFile
			if path == "" {
				path = cfg.SeedFile
			}
			if path == "" {
				return errors.New("seed: --file or SEED_FILE is required")
			}

			st, err := openStore(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer func() { _ = st.close(ctx) }()

			if err := st.migrate(ctx); err != nil {
				return err
			}

			hasher, err := hash.New(hash.Scheme(cfg.PasswordScheme))
			if err != nil {
				return err
			}

			created, err := seed.NewSeeder(st.identities, hasher, log).SeedFromFile(ctx, path)
			if err != nil {
				return err
			}
			log.Info().Int("created", created).Str("file", path).Msg("seeding complete")
			return nil
		},
	}
)
