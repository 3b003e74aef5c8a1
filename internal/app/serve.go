package app

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bizledger/records-api/internal/api"
	"github.com/bizledger/records-api/internal/core/ports"
	"github.com/bizledger/records-api/internal/core/service"
	redisstore "github.com/bizledger/records-api/internal/infrastructure/db/redis"
	"github.com/bizledger/records-api/internal/infrastructure/hash"
	"github.com/bizledger/records-api/internal/infrastructure/seed"
	"github.com/bizledger/records-api/internal/infrastructure/token"
	"github.com/bizledger/records-api/internal/pkg/config"
)

const shutdownTimeout = 10 * time.Second

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Migrate, seed and start the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg, log, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		return serve(ctx, cfg, log)
	},
}

func serve(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.close(context.Background()); err != nil {
			log.Warn().Err(err).Msg("closing store")
		}
	}()

	if err := st.migrate(ctx); err != nil {
		return err
	}

	hasher, err := hash.New(hash.Scheme(cfg.PasswordScheme))
	if err != nil {
		return err
	}
	tokens, err := token.NewManager(cfg.JWTSecret)
	if err != nil {
		return err
	}

	seeder := seed.NewSeeder(st.identities, hasher, log)
	if cfg.SeedFile != "" {
		if _, err := seeder.SeedFromFile(ctx, cfg.SeedFile); err != nil {
			return err
		}
	}
	if cfg.BootstrapAdminPassword != "" {
		if _, err := seeder.Bootstrap(ctx, cfg.BootstrapAdminPassword); err != nil {
			return err
		}
	}

	checks := st.checks
	var idem ports.IdempotencyStore
	if cfg.Redis.Addr != "" {
		rs, err := redisstore.Open(ctx, redisstore.Config{
			Addr:    cfg.Redis.Addr,
			DB:      cfg.Redis.DB,
			Timeout: cfg.Store.Timeout,
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := rs.Close(); err != nil {
				log.Warn().Err(err).Msg("closing redis")
			}
		}()

		idem = rs
		checks["redis"] = rs.Ping
	}

	router := api.NewRouter(api.Deps{
		Logger:        log,
		Authenticator: service.NewAuthenticator(tokens, st.identities, log),
		Auth:          service.NewAuthService(st.identities, hasher, tokens, cfg.TokenTTL, log),
		Customers:     service.NewCustomerService(st.customers, idem, log),
		Users:         service.NewUserService(st.identities, hasher, log),
		Dashboard:     service.NewDashboardService(st.customers, st.identities),
		Checks:        checks,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Str("driver", cfg.Store.Driver).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
