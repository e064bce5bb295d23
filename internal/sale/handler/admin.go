package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"crowdsale/pkg/domain"
	dErrors "crowdsale/pkg/domain-errors"
	"crowdsale/pkg/platform/audit"
	"crowdsale/pkg/platform/httputil"
	"crowdsale/pkg/platform/middleware/admin"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// AuditReader reads back emitted sale notifications.
type AuditReader interface {
	ListBySubject(ctx context.Context, subject string) ([]audit.Event, error)
	ListRecent(ctx context.Context, limit int) ([]audit.Event, error)
}

// AdminHandler serves operator endpoints behind the admin token.
type AdminHandler struct {
	audit      AuditReader
	adminToken string
	logger     *slog.Logger
}

func NewAdmin(reader AuditReader, adminToken string, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{audit: reader, adminToken: adminToken, logger: logger}
}

func (h *AdminHandler) Register(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(admin.RequireAdminToken(h.adminToken, h.logger))
		r.Get("/audit", h.handleListAudit)
	})
}

type AuditEventResponse struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Actor     string    `json:"actor,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Payer     string    `json:"payer,omitempty"`
	Value     string    `json:"value,omitempty"`
	Tokens    string    `json:"tokens,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

type AuditListResponse struct {
	Events []AuditEventResponse `json:"events"`
}

// handleListAudit lists events for ?subject=<address>, or the most recent
// ?limit events when no subject is given.
func (h *AdminHandler) handleListAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	var (
		events []audit.Event
		err    error
	)
	if raw := q.Get("subject"); raw != "" {
		subject, perr := domain.ParseAddress(raw)
		if perr != nil {
			httputil.WriteError(w, dErrors.Wrap(perr, dErrors.CodeBadRequest, "invalid subject"))
			return
		}
		events, err = h.audit.ListBySubject(ctx, subject.String())
	} else {
		limit, lerr := parseLimit(q.Get("limit"))
		if lerr != nil {
			httputil.WriteError(w, lerr)
			return
		}
		events, err = h.audit.ListRecent(ctx, limit)
	}
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read audit events"))
		return
	}

	resp := AuditListResponse{Events: make([]AuditEventResponse, 0, len(events))}
	for _, e := range events {
		resp.Events = append(resp.Events, AuditEventResponse{
			ID:        e.ID,
			Category:  string(e.Category),
			Timestamp: e.Timestamp,
			Action:    e.Action,
			Actor:     e.Actor,
			Subject:   e.Subject,
			Payer:     e.Payer,
			Value:     e.Value,
			Tokens:    e.Tokens,
			Detail:    e.Detail,
			RequestID: e.RequestID,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return defaultAuditLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer")
	}
	return min(n, maxAuditLimit), nil
}
