package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "crowdsale/pkg/platform/audit"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (p *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		p.records = append(p.records, r)
		results = append(results, kgo.ProduceResult{Record: r, Err: p.err})
	}
	return results
}

func TestSink_Append(t *testing.T) {
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	event := audit.Event{
		ID:        "evt-1",
		Category:  audit.CategoryFinancial,
		Timestamp: ts,
		Action:    string(audit.EventPurchase),
		Subject:   "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		Payer:     "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
		Value:     "1000000000000000000",
		Tokens:    "1000000000000000000",
	}

	t.Run("keys by subject and encodes JSON", func(t *testing.T) {
		producer := &fakeProducer{}
		sink := NewSink(producer, "sale.audit")

		require.NoError(t, sink.Append(context.Background(), event))
		require.Len(t, producer.records, 1)

		rec := producer.records[0]
		assert.Equal(t, "sale.audit", rec.Topic)
		assert.Equal(t, event.Subject, string(rec.Key))

		var msg map[string]string
		require.NoError(t, json.Unmarshal(rec.Value, &msg))
		assert.Equal(t, "token_purchase", msg["action"])
		assert.Equal(t, "financial", msg["category"])
		assert.Equal(t, "2025-03-01T10:00:00Z", msg["timestamp"])
		assert.Equal(t, event.Value, msg["value"])
	})

	t.Run("propagates produce errors", func(t *testing.T) {
		sink := NewSink(&fakeProducer{err: errors.New("not leader")}, "sale.audit")
		err := sink.Append(context.Background(), event)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not leader")
	})
}
