package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"identrust/internal/audit"
	audithandler "identrust/internal/audit/handler"
	credhandler "identrust/internal/credential/handler"
	credservice "identrust/internal/credential/service"
	dashhandler "identrust/internal/dashboard/handler"
	dashservice "identrust/internal/dashboard/service"
	demohandler "identrust/internal/demo/handler"
	demoservice "identrust/internal/demo/service"
	demostore "identrust/internal/demo/store"
	idhandler "identrust/internal/identity/handler"
	idservice "identrust/internal/identity/service"
	insthandler "identrust/internal/institution/handler"
	instservice "identrust/internal/institution/service"
	"identrust/internal/platform/circuit"
	"identrust/internal/platform/config"
	"identrust/internal/platform/health"
	"identrust/internal/platform/kafka/producer"
	"identrust/internal/platform/logger"
	"identrust/internal/platform/metrics"
	"identrust/internal/platform/redis"
	"identrust/internal/platform/tracer"
	"identrust/internal/seeder"
	httptransport "identrust/internal/transport/http"
	userhandler "identrust/internal/user/handler"
	userservice "identrust/internal/user/service"
	"identrust/internal/user/token"
	verifhandler "identrust/internal/verification/handler"
	verifservice "identrust/internal/verification/service"
	"identrust/pkg/platform/middleware/request"
)

const redisStatsInterval = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// run wires dependencies and serves until ctx is cancelled.
func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	log.Info("initializing identrust",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"version", health.Version,
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(reg)
	checks := health.New(cfg.Environment)
	t := tracer.NewOTel()

	st, err := openStores(ctx, cfg, reg, t, checks, log)
	if err != nil {
		return err
	}
	defer st.close()

	publisher, closeKafka, err := newAuditPublisher(cfg, st.audit, appMetrics, checks, log)
	if err != nil {
		return err
	}
	defer closeKafka()
	defer publisher.Close()

	sessions, closeRedis, err := newDemoSessions(ctx, cfg, reg, checks, log)
	if err != nil {
		return err
	}
	defer closeRedis()

	credentials := credservice.New(st.credentials, publisher,
		credservice.WithMetrics(appMetrics),
		credservice.WithLogger(log),
	)
	verifications := verifservice.New(st.verifications, publisher,
		verifservice.WithDelays(cfg.Verification.ScanDelay, cfg.Verification.ManualDelay),
		verifservice.WithMetrics(appMetrics),
		verifservice.WithTracer(t),
		verifservice.WithLogger(log),
	)
	identities := idservice.New(st.identities, publisher,
		idservice.WithMetrics(appMetrics),
		idservice.WithLogger(log),
	)
	institutions := instservice.New(st.institutions, log)
	demos := demoservice.New(sessions,
		demoservice.WithMetrics(appMetrics),
		demoservice.WithLogger(log),
	)
	dashboard := dashservice.New(identities, credentials, verifications, log)
	tokens := token.NewService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience, cfg.Auth.TokenTTL)

	seed := seeder.New(st.institutions, identities, credentials, log)
	if err := seed.SeedInstitutions(ctx); err != nil {
		return fmt.Errorf("seed institutions: %w", err)
	}
	if cfg.Demo.SeedOwner != "" {
		if err := seed.SeedWallet(ctx, cfg.Demo.SeedOwner); err != nil {
			return fmt.Errorf("seed demo wallet: %w", err)
		}
	}

	router := httptransport.NewRouter(httptransport.Config{
		Logger:         log,
		Validator:      tokens,
		RequestMetrics: request.NewMetrics(reg),
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		RequestTimeout: cfg.RequestTimeout,
		Public: []httptransport.Registrar{
			checks,
			insthandler.New(institutions, log),
			demohandler.New(demos, log),
		},
		Authenticated: []httptransport.Registrar{
			userhandler.New(userservice.New(), log),
			credhandler.New(credentials, log),
			idhandler.New(identities, log),
			dashhandler.New(dashboard, log),
			audithandler.New(publisher, log),
		},
		Uploads: []httptransport.Registrar{
			verifhandler.New(verifications, log),
		},
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// newAuditPublisher persists events to store and, when Kafka brokers are
// configured, forwards verification events to the audit topic.
func newAuditPublisher(cfg config.Server, store audit.Store, m *metrics.Metrics, checks *health.Handler, log *slog.Logger) (*audit.Publisher, func(), error) {
	opts := []audit.PublisherOption{
		audit.WithPublisherLogger(log),
		audit.WithDropCounter(m),
	}
	if cfg.Audit.Buffer > 0 {
		opts = append(opts, audit.WithAsyncBuffer(cfg.Audit.Buffer))
	}

	closeKafka := func() {}
	if cfg.Kafka.Brokers != "" {
		p, err := producer.New(producer.DefaultConfig(cfg.Kafka.Brokers), log)
		if err != nil {
			return nil, nil, fmt.Errorf("connect kafka: %w", err)
		}
		checks.RegisterCheck("kafka", p.Health)
		opts = append(opts, audit.WithForwarder(
			audit.NewKafkaForwarder(p, cfg.Kafka.AuditTopic, audit.ActionVerificationRecorded),
		))
		closeKafka = func() { p.Close(5 * time.Second) }
		log.Info("forwarding verification events to kafka", "topic", cfg.Kafka.AuditTopic)
	}
	return audit.NewPublisher(store, opts...), closeKafka, nil
}

// newDemoSessions keeps walkthrough sessions in Redis when configured so
// they survive restarts and are shared across replicas. A local cache
// mirrors them and takes over while Redis is failing.
func newDemoSessions(ctx context.Context, cfg config.Server, reg prometheus.Registerer, checks *health.Handler, log *slog.Logger) (demoservice.SessionStore, func(), error) {
	client, err := redis.New(ctx, redis.DefaultConfig(cfg.Redis.URL), reg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	if client == nil {
		log.Info("using in-memory demo sessions")
		return demostore.NewCache(cfg.Demo.SessionTTL), func() {}, nil
	}

	checks.RegisterCheck("redis", client.Health)
	go client.RunPoolStats(ctx, redisStatsInterval)
	log.Info("using redis demo sessions")
	sessions := demostore.NewResilient(
		demostore.NewRedis(client, cfg.Demo.SessionTTL),
		demostore.NewCache(cfg.Demo.SessionTTL),
		circuit.New("demo_sessions"),
		log,
	)
	return sessions, func() {
		if err := client.Close(); err != nil {
			log.Error("failed to close redis", "error", err)
		}
	}, nil
}
