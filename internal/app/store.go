package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bizledger/records-api/internal/api/handler"
	"github.com/bizledger/records-api/internal/core/ports"
	mongostore "github.com/bizledger/records-api/internal/infrastructure/db/mongo"
	"github.com/bizledger/records-api/internal/infrastructure/db/sqlstore"
	"github.com/bizledger/records-api/internal/pkg/config"
)

const driverMongo = "mongo"

// store bundles the repositories of the configured persistence driver.
type store struct {
	identities ports.IdentityRepository
	customers  ports.CustomerRepository
	checks     map[string]handler.Check
	migrate    func(ctx context.Context) error
	close      func(ctx context.Context) error
}

// openStore connects to the driver named by STORE_DRIVER.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*store, error) {
	if cfg.Store.Driver == driverMongo {
		return openMongo(ctx, cfg)
	}

	db, err := sqlstore.Open(sqlstore.Config{
		Driver:  cfg.Store.Driver,
		DSN:     cfg.Store.DSN,
		Timeout: cfg.Store.Timeout,
		Logger:  log,
	})
	if err != nil {
		return nil, err
	}

	return &store{
		identities: sqlstore.NewIdentityRepository(db, cfg.Store.Timeout),
		customers:  sqlstore.NewCustomerRepository(db, cfg.Store.Timeout),
		checks: map[string]handler.Check{
			cfg.Store.Driver: func(ctx context.Context) error { return sqlstore.Ping(ctx, db) },
		},
		migrate: func(ctx context.Context) error { return sqlstore.Migrate(ctx, db) },
		close:   func(context.Context) error { return sqlstore.Close(db) },
	}, nil
}

func openMongo(ctx context.Context, cfg *config.Config) (*store, error) {
	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Store.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open mongo store: %w", err)
	}

	return &store{
		identities: mongostore.NewIdentityRepository(db, cfg.Store.Timeout),
		customers:  mongostore.NewCustomerRepository(db, cfg.Store.Timeout),
		checks: map[string]handler.Check{
			"mongodb": func(ctx context.Context) error { return client.Ping(ctx, nil) },
		},
		migrate: func(ctx context.Context) error { return mongostore.EnsureIndexes(ctx, db) },
		close:   client.Disconnect,
	}, nil
}
