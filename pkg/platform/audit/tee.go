package audit

import (
	"context"
	"errors"
)

// Tee writes every event to a primary store and then to each sink.
// Reads are served by the primary store only.
type Tee struct {
	Store
	sinks []Sink
}

func NewTee(primary Store, sinks ...Sink) *Tee {
	return &Tee{Store: primary, sinks: sinks}
}

// Append returns the primary store's error immediately; sink errors are
// joined after every sink has been attempted.
func (t *Tee) Append(ctx context.Context, event Event) error {
	if err := t.Store.Append(ctx, event); err != nil {
		return err
	}
	var errs []error
	for _, sink := range t.sinks {
		if err := sink.Append(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
