// Package service is the sale engine: it validates and settles public
// purchases and private investments, manages the rate and whitelist, and runs
// the one-shot finalization and the refund claims that follow a missed goal.
//
// Mutating operations are serialized and all-or-nothing. Preconditions are
// checked inside LedgerStore.RunInTx before any write, and the irreversible
// collaborator call (mint or value transfer) runs last, so a failure at any
// step leaves counters, balances and supply unchanged.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"crowdsale/internal/ownership"
	"crowdsale/internal/sale/metrics"
	"crowdsale/internal/sale/models"
	"crowdsale/internal/sale/ports"
	dErrors "crowdsale/pkg/domain-errors"
)

// Type aliases for shared interfaces.
type (
	LedgerStore    = ports.LedgerStore
	WhitelistStore = ports.WhitelistStore
	AssetLedger    = ports.AssetLedger
	Payments       = ports.Payments
	AuditPublisher = ports.AuditPublisher
)

const tracerName = "crowdsale/sale"

// Operation names used for spans, metrics and logs.
const (
	opPurchase          = "purchase"
	opPrivateInvestment = "private_investment"
	opChangeRate        = "change_rate"
	opWhitelistAdd      = "whitelist_add"
	opWhitelistAddMany  = "whitelist_add_many"
	opWhitelistRemove   = "whitelist_remove"
	opFinalize          = "finalize"
	opRefund            = "refund"
	opTransferOwnership = "transfer_ownership"
)

// Collaborators are the stores and external ledgers the engine drives.
type Collaborators struct {
	Ledger    LedgerStore
	Whitelist WhitelistStore
	Asset     AssetLedger
	Payments  Payments
}

type Service struct {
	mu         sync.Mutex
	cfg        models.Config
	controller *ownership.Ownable

	ledger    LedgerStore
	whitelist WhitelistStore
	asset     AssetLedger
	payments  Payments

	auditPublisher AuditPublisher
	logger         *slog.Logger
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// New validates cfg and creates the sale state if the ledger store holds none.
// A store that already holds state is resumed as is.
func New(ctx context.Context, cfg models.Config, c Collaborators, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch {
	case c.Ledger == nil:
		return nil, fmt.Errorf("ledger store is required")
	case c.Whitelist == nil:
		return nil, fmt.Errorf("whitelist store is required")
	case c.Asset == nil:
		return nil, fmt.Errorf("asset ledger is required")
	case c.Payments == nil:
		return nil, fmt.Errorf("payments are required")
	}

	controller, err := ownership.New(cfg.Controller)
	if err != nil {
		return nil, err
	}

	svc := &Service{
		cfg:        cfg,
		controller: controller,
		ledger:     c.Ledger,
		whitelist:  c.Whitelist,
		asset:      c.Asset,
		payments:   c.Payments,
		logger:     slog.New(slog.DiscardHandler),
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(svc)
	}

	if err := svc.ledger.Init(ctx, models.NewState(cfg.InitialRate)); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to initialize sale state")
	}
	state, err := svc.ledger.LoadState(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load sale state")
	}
	if svc.metrics != nil {
		svc.metrics.SetBalances(state.TotalRaised, state.Escrow)
	}
	return svc, nil
}

// observe opens a span for op and returns a func that closes it, records the
// outcome and logs rejections. Call it deferred with the named error result.
func (s *Service) observe(ctx context.Context, op string) (context.Context, func(*error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "sale."+op)
	return ctx, func(errp *error) {
		defer span.End()
		if s.metrics != nil {
			s.metrics.ObserveDuration(op, start)
		}
		if errp == nil || *errp == nil {
			span.SetStatus(codes.Ok, "")
			return
		}
		err := *errp
		code := dErrors.CodeOf(err)
		span.SetAttributes(attribute.String("sale.error_code", string(code)))
		if s.metrics != nil {
			s.metrics.IncrementRejections(op, string(code))
		}
		if code == dErrors.CodeInternal {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.logger.ErrorContext(ctx, "sale operation failed", "operation", op, "error", err)
			return
		}
		s.logger.InfoContext(ctx, "sale operation rejected", "operation", op, "code", string(code), "reason", err.Error())
	}
}

// internalError wraps infrastructure failures; domain errors pass through.
func internalError(err error, msg string) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

// assetError keeps the supply cap rejection visible to callers. Every other
// asset ledger failure means the engine is misconfigured or the ledger is down.
func assetError(err error) error {
	if dErrors.HasCode(err, dErrors.CodeSupplyExceeded) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "asset ledger rejected mint")
}

func (s *Service) loadState(ctx context.Context, store LedgerStore) (*models.State, error) {
	state, err := store.LoadState(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load sale state")
	}
	return state, nil
}

func (s *Service) recordBalances(state *models.State) {
	if s.metrics != nil {
		s.metrics.SetBalances(state.TotalRaised, state.Escrow)
	}
}
