package kafka

import (
	"context"
	"fmt"
	"log/slog"

	audit "crowdsale/pkg/platform/audit"
	"crowdsale/pkg/platform/circuit"
	"crowdsale/pkg/platform/sentinel"
)

// GuardedSink stops producing to an unhealthy broker until the breaker lets a
// probe through, so a broker outage does not stall the audit worker on every
// event.
type GuardedSink struct {
	sink    audit.Sink
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func NewGuardedSink(sink audit.Sink, breaker *circuit.Breaker, logger *slog.Logger) *GuardedSink {
	return &GuardedSink{sink: sink, breaker: breaker, logger: logger}
}

func (g *GuardedSink) Append(ctx context.Context, event audit.Event) error {
	if !g.breaker.Allow() {
		return fmt.Errorf("audit sink %s: circuit open: %w", g.breaker.Name(), sentinel.ErrUnavailable)
	}

	if err := g.sink.Append(ctx, event); err != nil {
		if _, change := g.breaker.RecordFailure(); change.Opened && g.logger != nil {
			g.logger.WarnContext(ctx, "audit sink circuit opened", "sink", g.breaker.Name(), "error", err)
		}
		return err
	}

	if _, change := g.breaker.RecordSuccess(); change.Closed && g.logger != nil {
		g.logger.InfoContext(ctx, "audit sink circuit closed", "sink", g.breaker.Name())
	}
	return nil
}
