// Package app implements the records-api commands.
package app

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bizledger/records-api/internal/pkg/config"
	"github.com/bizledger/records-api/pkg/logger"
)

const serviceName = "records-api"

var rootCmd = &cobra.Command{
	Use:   serviceName,
	Short: "records-api serves role-scoped customer business records",
	Long: `records-api is an HTTP API for customer business records. Administrators
manage every record and account; employees manage the customers they created;
customer accounts may only read and update their own profile.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// bootstrap loads configuration from the environment and initialises the
// process logger.
func bootstrap(ctx context.Context) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	log, err := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		File:    cfg.LogFile,
		Service: serviceName,
	})
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, log, nil
}
