package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "crowdsale/pkg/platform/audit"
	"crowdsale/pkg/platform/circuit"
	"crowdsale/pkg/platform/sentinel"
)

func TestGuardedSink(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	producer := &fakeProducer{err: errors.New("broker down")}
	breaker := circuit.New("kafka",
		circuit.WithFailureThreshold(2),
		circuit.WithCooldown(time.Minute),
		circuit.WithClock(func() time.Time { return now }),
	)
	sink := NewGuardedSink(NewSink(producer, "sale.audit"), breaker, nil)
	ctx := context.Background()
	event := audit.Event{ID: "evt-1", Action: string(audit.EventFinalized)}

	require.Error(t, sink.Append(ctx, event))
	require.Error(t, sink.Append(ctx, event))
	assert.True(t, breaker.IsOpen())
	assert.Len(t, producer.records, 2)

	err := sink.Append(ctx, event)
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
	assert.Len(t, producer.records, 2, "open circuit skips the broker")

	now = now.Add(time.Minute)
	producer.err = nil
	require.NoError(t, sink.Append(ctx, event))
	assert.False(t, breaker.IsOpen())
	assert.Len(t, producer.records, 3)
}
