package models

import (
	"time"

	dErrors "crowdsale/pkg/domain-errors"
)

// TimeWindow is the half-open interval [Opening, Closing) during which public
// purchases are accepted.
type TimeWindow struct {
	Opening time.Time
	Closing time.Time
}

func NewTimeWindow(opening, closing time.Time) (TimeWindow, error) {
	if !opening.Before(closing) {
		return TimeWindow{}, dErrors.New(dErrors.CodeInvariantViolation, "opening time must be before closing time")
	}
	return TimeWindow{Opening: opening, Closing: closing}, nil
}

// IsOpen reports Opening <= now < Closing.
func (w TimeWindow) IsOpen(now time.Time) bool {
	return !now.Before(w.Opening) && now.Before(w.Closing)
}

// HasClosed reports now >= Closing.
func (w TimeWindow) HasClosed(now time.Time) bool {
	return !now.Before(w.Closing)
}
