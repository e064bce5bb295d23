package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events for retention and routing.
type EventCategory string

const (
	// CategoryFinancial covers movements of value or asset supply:
	// contributions, mints, escrow release and refunds.
	CategoryFinancial EventCategory = "financial"

	// CategoryAdministrative covers controller actions that change sale rules:
	// rate changes, whitelist edits, ownership transfers.
	CategoryAdministrative EventCategory = "administrative"

	// CategoryOperations covers everything else.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic after a state change commits. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string
	Category  EventCategory
	Timestamp time.Time
	Action    string
	// Actor is the authenticated caller that triggered the change.
	Actor string
	// Subject is the address most affected (beneficiary, whitelisted address, refund payee).
	Subject string
	Payer   string
	// Value and Tokens are base-unit integer strings.
	Value     string
	Tokens    string
	Detail    string
	RequestID string
}

// Sink accepts audit events without offering reads (e.g. a message broker).
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Store persists audit events and can read them back.
type Store interface {
	Sink
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

type AuditEvent string

const (
	EventPurchase             AuditEvent = "token_purchase"
	EventPrivateInvestment    AuditEvent = "private_investment"
	EventRateChanged          AuditEvent = "rate_changed"
	EventWhitelistAdded       AuditEvent = "whitelist_added"
	EventWhitelistRemoved     AuditEvent = "whitelist_removed"
	EventFinalized            AuditEvent = "finalized"
	EventRefundClaimed        AuditEvent = "refund_claimed"
	EventOwnershipTransferred AuditEvent = "ownership_transferred"
	EventContributionRejected AuditEvent = "contribution_rejected"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventPurchase:          CategoryFinancial,
	EventPrivateInvestment: CategoryFinancial,
	EventFinalized:         CategoryFinancial,
	EventRefundClaimed:     CategoryFinancial,

	EventRateChanged:          CategoryAdministrative,
	EventWhitelistAdded:       CategoryAdministrative,
	EventWhitelistRemoved:     CategoryAdministrative,
	EventOwnershipTransferred: CategoryAdministrative,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}
