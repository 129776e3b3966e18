package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"identrust/internal/audit"
	credmodels "identrust/internal/credential/models"
	credstore "identrust/internal/credential/store"
	"identrust/internal/entity"
	idmodels "identrust/internal/identity/models"
	idstore "identrust/internal/identity/store"
	instmodels "identrust/internal/institution/models"
	inststore "identrust/internal/institution/store"
	"identrust/internal/platform/config"
	"identrust/internal/platform/database"
	"identrust/internal/platform/health"
	"identrust/internal/platform/tracer"
	verifmodels "identrust/internal/verification/models"
	verifstore "identrust/internal/verification/store"
)

// stores holds the persistence backends of every feature.
type stores struct {
	credentials   entity.Store[credmodels.Credential]
	verifications entity.Store[verifmodels.Verification]
	identities    entity.Store[idmodels.Identity]
	institutions  entity.Store[instmodels.Institution]
	audit         audit.Store

	close func()
}

// openStores picks Postgres when DATABASE_URL is set and memory otherwise.
// Every store is wrapped in a tracing decorator.
func openStores(ctx context.Context, cfg config.Server, reg prometheus.Registerer, t tracer.Tracer, checks *health.Handler, log *slog.Logger) (*stores, error) {
	if cfg.Database.URL == "" {
		log.Info("using in-memory stores")
		return traced(&stores{
			credentials:   credstore.NewMemory(),
			verifications: verifstore.NewMemory(),
			identities:    idstore.NewMemory(),
			institutions:  inststore.NewMemory(),
			audit:         audit.NewInMemoryStore(),
			close:         func() {},
		}, t), nil
	}

	pool, err := database.New(ctx, database.DefaultConfig(cfg.Database.URL), reg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Migrate(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	checks.RegisterCheck("database", pool.Health)
	log.Info("using postgres stores")

	db := pool.DB()
	return traced(&stores{
		credentials:   credstore.NewPostgres(db),
		verifications: verifstore.NewPostgres(db),
		identities:    idstore.NewPostgres(db),
		institutions:  inststore.NewPostgres(db),
		audit:         audit.NewPostgresStore(db),
		close: func() {
			if err := pool.Close(); err != nil {
				log.Error("failed to close database", "error", err)
			}
		},
	}, t), nil
}

func traced(s *stores, t tracer.Tracer) *stores {
	s.credentials = entity.Traced("credential", s.credentials, t)
	s.verifications = entity.Traced("verification", s.verifications, t)
	s.identities = entity.Traced("identity", s.identities, t)
	s.institutions = entity.Traced("institution", s.institutions, t)
	return s
}
