package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	"crowdsale/internal/balances"
	jwttoken "crowdsale/internal/jwt_token"
	"crowdsale/internal/payments"
	"crowdsale/internal/platform/config"
	"crowdsale/internal/platform/httpserver"
	"crowdsale/internal/platform/kafka"
	"crowdsale/internal/platform/logger"
	platformmetrics "crowdsale/internal/platform/metrics"
	"crowdsale/internal/platform/middleware"
	"crowdsale/internal/platform/postgres"
	"crowdsale/internal/platform/redis"
	ratelimitmw "crowdsale/internal/ratelimit/middleware"
	ratelimitmodels "crowdsale/internal/ratelimit/models"
	"crowdsale/internal/ratelimit/store/bucket"
	"crowdsale/internal/sale/handler"
	salemetrics "crowdsale/internal/sale/metrics"
	"crowdsale/internal/sale/models"
	"crowdsale/internal/sale/ports"
	"crowdsale/internal/sale/service"
	ledgerstore "crowdsale/internal/sale/store/ledger"
	whiteliststore "crowdsale/internal/sale/store/whitelist"
	"crowdsale/internal/token"
	"crowdsale/pkg/platform/audit"
	"crowdsale/pkg/platform/audit/publisher"
	kafkasink "crowdsale/pkg/platform/audit/store/kafka"
	auditmemory "crowdsale/pkg/platform/audit/store/memory"
	auditpostgres "crowdsale/pkg/platform/audit/store/postgres"
	"crowdsale/pkg/platform/circuit"
	"crowdsale/pkg/platform/httputil"
	request "crowdsale/pkg/platform/middleware/request"
	"crowdsale/pkg/platform/middleware/requesttime"
)

const (
	shutdownTimeout   = 10 * time.Second
	auditPartitions   = 3
	auditReplicas     = 1
	startupTimeout    = 30 * time.Second
	healthCheckBudget = 2 * time.Second
	kafkaCooldown     = 30 * time.Second
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("crowdsale exited", "error", err)
		os.Exit(1)
	}
}

// infra holds the optional backing services. Nil fields mean in-memory mode.
type infra struct {
	db    *sql.DB
	redis *redis.Client
	kafka *kgo.Client
}

func (i *infra) close() {
	if i.kafka != nil {
		i.kafka.Close()
	}
	if i.redis != nil {
		_ = i.redis.Close()
	}
	if i.db != nil {
		_ = i.db.Close()
	}
}

func connect(ctx context.Context, cfg config.Server, log *slog.Logger) (*infra, error) {
	ctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	i := &infra{}
	var err error
	if i.db, err = postgres.Open(ctx, cfg.DatabaseURL); err != nil {
		return nil, err
	}
	if i.db != nil {
		if err := postgres.Migrate(ctx, i.db); err != nil {
			i.close()
			return nil, err
		}
		log.Info("postgres connected")
	}

	if i.redis, err = redis.New(ctx, cfg.Redis); err != nil {
		i.close()
		return nil, err
	}
	if i.redis != nil {
		log.Info("redis connected")
	}

	if i.kafka, err = kafka.New(ctx, cfg.Kafka); err != nil {
		i.close()
		return nil, err
	}
	if i.kafka != nil {
		if err := kafka.EnsureTopic(ctx, i.kafka, cfg.Kafka.AuditTopic, auditPartitions, auditReplicas); err != nil {
			i.close()
			return nil, err
		}
		log.Info("kafka connected", "topic", cfg.Kafka.AuditTopic)
	}
	return i, nil
}

// stores picks the persistence for each concern: PostgreSQL when configured,
// Redis for the whitelist when configured, memory otherwise.
type stores struct {
	balances  balancesStore
	ledger    ports.LedgerStore
	whitelist ports.WhitelistStore
	audit     audit.Store
}

// balancesStore is the union the token ledger and payments need.
type balancesStore interface {
	token.Store
	payments.Store
}

func selectStores(i *infra) stores {
	var s stores
	if i.db != nil {
		s.balances = balances.NewPostgres(i.db)
		s.ledger = ledgerstore.NewPostgres(i.db)
		s.whitelist = whiteliststore.NewPostgres(i.db)
		s.audit = auditpostgres.New(i.db)
	} else {
		s.balances = balances.NewInMemoryStore()
		s.ledger = ledgerstore.NewInMemory()
		s.whitelist = whiteliststore.NewInMemory()
		s.audit = auditmemory.NewInMemoryStore()
	}
	if i.redis != nil {
		s.whitelist = whiteliststore.NewRedis(i.redis.Client)
	}
	return s
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	i, err := connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer i.close()

	s := selectStores(i)

	var auditStore audit.Store = s.audit
	if i.kafka != nil {
		sink := kafkasink.NewGuardedSink(
			kafkasink.NewSink(i.kafka, cfg.Kafka.AuditTopic),
			circuit.New("kafka-audit", circuit.WithCooldown(kafkaCooldown)),
			log,
		)
		auditStore = audit.NewTee(s.audit, sink)
	}
	auditPublisher := publisher.NewPublisher(auditStore,
		publisher.WithAsyncBuffer(cfg.AuditBuffer),
		publisher.WithLogger(log),
	)
	defer auditPublisher.Close()

	asset, err := newTokenLedger(ctx, cfg, s.balances, log)
	if err != nil {
		return err
	}
	transferor, err := payments.New(s.balances, payments.WithLogger(log))
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	sale, err := service.New(ctx, saleConfig(cfg), service.Collaborators{
		Ledger:    s.ledger,
		Whitelist: s.whitelist,
		Asset:     asset,
		Payments:  transferor,
	},
		service.WithLogger(log),
		service.WithAuditPublisher(auditPublisher),
		service.WithMetrics(salemetrics.New(reg)),
	)
	if err != nil {
		return err
	}

	jwtValidator := jwttoken.NewJWTServiceAdapter(jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTIssuer))

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(middleware.Recover(log))
	r.Use(middleware.Logger(log))
	r.Use(platformmetrics.New(reg).Middleware)

	r.Get("/health", healthHandler(i))
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	limiter, err := newRateLimiter(cfg.RateLimit, i, log)
	if err != nil {
		return err
	}
	handler.New(sale, jwtValidator, log, cfg.Token.Decimals,
		handler.WithWriteMiddleware(limiter.PerCaller(ratelimitmodels.ClassWrite)),
	).Register(r)
	handler.NewAdmin(s.audit, cfg.AdminToken, log).Register(r)

	srv := httpserver.New(cfg.Addr, r)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting crowdsale", "addr", cfg.Addr,
			"opening", cfg.Sale.OpeningTime, "closing", cfg.Sale.ClosingTime)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// newTokenLedger creates the asset owned by the controller, mints the
// ecosystem allocations, and hands minting rights to the sale address.
func newTokenLedger(ctx context.Context, cfg config.Server, store token.Store, log *slog.Logger) (*token.Ledger, error) {
	allocations := make([]token.Allocation, 0, len(cfg.Token.Allocations))
	for _, a := range cfg.Token.Allocations {
		allocations = append(allocations, token.Allocation{To: a.To, Amount: a.Amount})
	}
	ledger, err := token.New(ctx, store, cfg.Sale.Controller, cfg.Token.MaxSupply, allocations,
		token.WithLogger(log),
		token.WithDecimals(cfg.Token.Decimals),
	)
	if err != nil {
		return nil, fmt.Errorf("create token ledger: %w", err)
	}
	if err := ledger.TransferOwnership(cfg.Sale.Controller, cfg.Sale.Address); err != nil {
		return nil, fmt.Errorf("hand token ownership to sale: %w", err)
	}
	return ledger, nil
}

// newRateLimiter shares counters through Redis when configured.
func newRateLimiter(cfg config.RateLimitConfig, i *infra, log *slog.Logger) (*ratelimitmw.Middleware, error) {
	var store ratelimitmw.BucketStore = bucket.NewInMemoryBucketStore()
	if i.redis != nil {
		store = bucket.NewRedisBucketStore(i.redis.Client)
	}
	opts := []ratelimitmw.Option{ratelimitmw.WithDisabled(cfg.Disabled)}
	if !cfg.Disabled {
		policy, err := ratelimitmodels.NewPolicy(cfg.Writes, cfg.Window)
		if err != nil {
			return nil, fmt.Errorf("rate limit policy: %w", err)
		}
		opts = append(opts, ratelimitmw.WithPolicy(ratelimitmodels.ClassWrite, policy))
	}
	return ratelimitmw.New(store, log, opts...), nil
}

func saleConfig(cfg config.Server) models.Config {
	return models.Config{
		Self:                cfg.Sale.Address,
		Controller:          cfg.Sale.Controller,
		Wallet:              cfg.Sale.Wallet,
		InitialRate:         cfg.Sale.Rate,
		HardCap:             cfg.Sale.HardCap,
		SoftGoal:            cfg.Sale.SoftGoal,
		MinimumContribution: cfg.Sale.MinimumContribution,
		Window:              models.TimeWindow{Opening: cfg.Sale.OpeningTime, Closing: cfg.Sale.ClosingTime},
	}
}

func healthHandler(i *infra) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckBudget)
		defer cancel()

		checks := map[string]string{}
		healthy := true
		if i.db != nil {
			checks["postgres"] = "ok"
			if err := i.db.PingContext(ctx); err != nil {
				checks["postgres"] = err.Error()
				healthy = false
			}
		}
		if i.redis != nil {
			checks["redis"] = "ok"
			if err := i.redis.Health(ctx); err != nil {
				checks["redis"] = err.Error()
				healthy = false
			}
		}

		status := http.StatusOK
		state := "ok"
		if !healthy {
			status = http.StatusServiceUnavailable
			state = "degraded"
		}
		httputil.WriteJSON(w, status, map[string]any{"status": state, "checks": checks})
	}
}
