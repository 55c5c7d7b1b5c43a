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

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"curaframe/internal/audit"
	"curaframe/internal/catalog"
	"curaframe/internal/evaluation"
	"curaframe/internal/evaluation/handler"
	evalmetrics "curaframe/internal/evaluation/metrics"
	"curaframe/internal/evaluation/ports"
	"curaframe/internal/evaluation/service"
	"curaframe/internal/evaluation/store"
	"curaframe/internal/platform/config"
	"curaframe/internal/platform/httpserver"
	"curaframe/internal/platform/logger"
	httpmetrics "curaframe/internal/platform/metrics"
	"curaframe/internal/platform/postgres"
	"curaframe/internal/platform/redis"
	"curaframe/pkg/platform/circuit"
	"curaframe/pkg/platform/httputil"
	"curaframe/pkg/platform/middleware/metadata"
	"curaframe/pkg/platform/middleware/request"
	"curaframe/pkg/platform/middleware/requesttime"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Evaluation logic lives in internal packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := buildEngine(cfg.Engine, log)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	deps, err := buildInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer deps.close()

	svc := service.New(engine,
		service.WithLogger(log),
		service.WithMetrics(evalmetrics.New(reg)),
		service.WithHistoryStore(deps.store),
		service.WithAuditPublisher(deps.publisher),
		service.WithBatchConcurrency(cfg.Engine.BatchConcurrency),
	)

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(httpmetrics.New(reg).Middleware)
	r.Get("/healthz", deps.health)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	r.Route("/v1", handler.New(svc, log).Register)

	srv := httpserver.New(cfg.Server, r)
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting curaframe",
			"addr", cfg.Server.Addr,
			"engine", engine.Name(),
			"bundle", cfg.Engine.Bundle,
			"constraints", len(engine.Constraints()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("server stopped")
	return nil
}

func buildEngine(cfg config.EngineConfig, log *slog.Logger) (*evaluation.Engine, error) {
	var (
		cat *catalog.Catalog
		err error
	)
	if cfg.CatalogPath != "" {
		cat, err = catalog.LoadFile(cfg.CatalogPath)
	} else {
		cat, err = catalog.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	engine, err := cat.NewEngine(cfg.Bundle,
		evaluation.WithName(cfg.Name),
		evaluation.WithLogger(log),
		evaluation.WithHistoryLimit(cfg.HistoryLimit),
	)
	if err != nil {
		return nil, fmt.Errorf("build engine for bundle %s: %w", cfg.Bundle, err)
	}
	return engine, nil
}

// infra holds the optional backing services and how to check and release
// them.
type infra struct {
	store     ports.HistoryStore
	publisher *audit.Publisher
	checks    map[string]func(context.Context) error
	closers   []func()
}

func buildInfra(ctx context.Context, cfg config.Config, log *slog.Logger) (*infra, error) {
	d := &infra{checks: map[string]func(context.Context) error{}}

	switch {
	case cfg.Postgres.DSN != "":
		db, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		pg := store.NewPostgres(db)
		if err := pg.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		d.store = pg
		d.checks["postgres"] = db.PingContext
		d.closers = append(d.closers, func() { _ = db.Close() })
		log.Info("history store: postgres")
	case cfg.Redis.URL != "":
		client, err := redis.Open(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		d.store = store.NewRedis(client)
		d.checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		d.closers = append(d.closers, func() { _ = client.Close() })
		log.Info("history store: redis")
	default:
		d.store = store.NewInMemoryHistoryStore()
		log.Info("history store: memory")
	}

	var sink audit.Sink = audit.NewMemoryStore()
	if len(cfg.Kafka.Brokers) > 0 {
		kafka, err := audit.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			d.close()
			return nil, err
		}
		if err := kafka.EnsureTopic(ctx, cfg.Kafka.Partitions, cfg.Kafka.ReplicationFactor); err != nil {
			kafka.Close()
			d.close()
			return nil, err
		}
		// keep auditing in memory while the broker is unreachable
		sink = audit.NewFailoverSink(kafka, audit.NewMemoryStore(), circuit.New("audit-kafka"), log)
		d.checks["kafka"] = kafka.Ping
		d.closers = append(d.closers, kafka.Close)
		log.Info("audit sink: kafka", "topic", cfg.Kafka.Topic)
	}
	d.publisher = audit.NewPublisher(sink, audit.WithAsyncBuffer(1024), audit.WithLogger(log))
	// publisher drains before its sink closes
	d.closers = append(d.closers, d.publisher.Close)
	return d, nil
}

func (d *infra) close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

func (d *infra) health(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{}
	healthy := true
	for name, check := range d.checks {
		if err := check(r.Context()); err != nil {
			status[name] = err.Error()
			healthy = false
			continue
		}
		status[name] = "ok"
	}
	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, code, map[string]any{"healthy": healthy, "checks": status})
}
