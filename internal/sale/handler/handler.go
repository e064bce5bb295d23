package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/holiman/uint256"

	"crowdsale/internal/sale/models"
	"crowdsale/pkg/domain"
	dErrors "crowdsale/pkg/domain-errors"
	"crowdsale/pkg/platform/httputil"
	authmw "crowdsale/pkg/platform/middleware/auth"
	request "crowdsale/pkg/platform/middleware/request"
	"crowdsale/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/service_mock.go -package=mocks Service

// Service is the sale engine as seen from HTTP.
type Service interface {
	BuyTokens(ctx context.Context, payer, beneficiary domain.Address, value *uint256.Int) (*models.Purchase, error)
	PushPrivateInvestment(ctx context.Context, caller domain.Address, weiAmount, tokenAmount *uint256.Int, beneficiary domain.Address) (*models.Purchase, error)
	ChangeRate(ctx context.Context, caller domain.Address, newRate *uint256.Int) error
	AddToWhitelist(ctx context.Context, caller, addr domain.Address) error
	AddManyToWhitelist(ctx context.Context, caller domain.Address, addrs []domain.Address) (int, error)
	RemoveFromWhitelist(ctx context.Context, caller, addr domain.Address) error
	IsWhitelisted(ctx context.Context, addr domain.Address) (bool, error)
	Finalize(ctx context.Context, caller domain.Address) (*models.Finalization, error)
	ClaimRefund(ctx context.Context, payer domain.Address) (*models.Refund, error)
	TransferOwnership(ctx context.Context, caller, newOwner domain.Address) error
	Owner() domain.Address
	Rate(ctx context.Context) (*uint256.Int, error)
	InitialRate(ctx context.Context) (*uint256.Int, error)
	Status(ctx context.Context) (*models.Status, error)
	Contribution(ctx context.Context, addr domain.Address) (*models.Contribution, error)
	TokenSupply(ctx context.Context) (supply, maxSupply *uint256.Int, err error)
	TokenBalance(ctx context.Context, addr domain.Address) (*uint256.Int, error)
}

// Handler serves the sale and token endpoints.
type Handler struct {
	sale          Service
	jwtValidator  authmw.JWTValidator
	logger        *slog.Logger
	tokenDecimals int32
	writeMW       []func(http.Handler) http.Handler
}

type Option func(*Handler)

// WithWriteMiddleware adds middleware to the authenticated routes, after the
// caller has been resolved.
func WithWriteMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		h.writeMW = append(h.writeMW, mw...)
	}
}

func New(sale Service, jwtValidator authmw.JWTValidator, logger *slog.Logger, tokenDecimals int32, opts ...Option) *Handler {
	h := &Handler{
		sale:          sale,
		jwtValidator:  jwtValidator,
		logger:        logger,
		tokenDecimals: tokenDecimals,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the routes on r. Reads are public; every write requires a
// bearer token whose subject is the caller address.
func (h *Handler) Register(r chi.Router) {
	r.Route("/sale", func(r chi.Router) {
		r.Get("/", h.handleStatus)
		r.Get("/rate", h.handleGetRate)
		r.Get("/whitelist/{address}", h.handleIsWhitelisted)
		r.Get("/contributions/{address}", h.handleGetContribution)
		r.Get("/owner", h.handleGetOwner)

		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireAuth(h.jwtValidator, h.logger))
			r.Use(h.writeMW...)
			r.Post("/purchases", h.handlePurchase)
			r.Post("/private-investments", h.handlePrivateInvestment)
			r.Put("/rate", h.handleChangeRate)
			r.Post("/whitelist", h.handleAddToWhitelist)
			r.Post("/whitelist/batch", h.handleAddManyToWhitelist)
			r.Delete("/whitelist/{address}", h.handleRemoveFromWhitelist)
			r.Post("/finalize", h.handleFinalize)
			r.Post("/refunds", h.handleClaimRefund)
			r.Put("/owner", h.handleTransferOwnership)
		})
	})

	r.Get("/token", h.handleTokenSupply)
	r.Get("/token/balances/{address}", h.handleTokenBalance)
}

// -----------------------------------------------------------------------------
// Writes
// -----------------------------------------------------------------------------

func (h *Handler) handlePurchase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.PurchaseRequest
	if !h.decode(w, r, &req) {
		return
	}
	parsed, err := req.Parse()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	purchase, err := h.sale.BuyTokens(ctx, requestcontext.Caller(ctx), parsed.Beneficiary, parsed.Value)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, models.NewPurchaseResponse(purchase))
}

func (h *Handler) handlePrivateInvestment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.PrivateInvestmentRequest
	if !h.decode(w, r, &req) {
		return
	}
	parsed, err := req.Parse()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	purchase, err := h.sale.PushPrivateInvestment(ctx, requestcontext.Caller(ctx), parsed.WeiAmount, parsed.TokenAmount, parsed.Beneficiary)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, models.NewPurchaseResponse(purchase))
}

func (h *Handler) handleChangeRate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.ChangeRateRequest
	if !h.decode(w, r, &req) {
		return
	}
	rate, err := req.Parse()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.sale.ChangeRate(ctx, requestcontext.Caller(ctx), rate); err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.handleGetRate(w, r)
}

func (h *Handler) handleAddToWhitelist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.WhitelistRequest
	if !h.decode(w, r, &req) {
		return
	}
	addr, err := req.Parse()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.sale.AddToWhitelist(ctx, requestcontext.Caller(ctx), addr); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.WhitelistResponse{Address: addr, Whitelisted: true})
}

func (h *Handler) handleAddManyToWhitelist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.WhitelistBatchRequest
	if !h.decode(w, r, &req) {
		return
	}
	addrs, err := req.Parse()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	added, err := h.sale.AddManyToWhitelist(ctx, requestcontext.Caller(ctx), addrs)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.WhitelistBatchResponse{Added: added})
}

func (h *Handler) handleRemoveFromWhitelist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	addr, ok := pathAddress(w, r)
	if !ok {
		return
	}
	if err := h.sale.RemoveFromWhitelist(ctx, requestcontext.Caller(ctx), addr); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleFinalize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	result, err := h.sale.Finalize(ctx, requestcontext.Caller(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.NewFinalizationResponse(result))
}

func (h *Handler) handleClaimRefund(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	refund, err := h.sale.ClaimRefund(ctx, requestcontext.Caller(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.RefundResponse{Payer: refund.Payer, Amount: refund.Amount.Dec()})
}

func (h *Handler) handleTransferOwnership(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.TransferOwnershipRequest
	if !h.decode(w, r, &req) {
		return
	}
	newOwner, err := req.Parse()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.sale.TransferOwnership(ctx, requestcontext.Caller(ctx), newOwner); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.OwnerResponse{Owner: h.sale.Owner()})
}

// -----------------------------------------------------------------------------
// Reads
// -----------------------------------------------------------------------------

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.sale.Status(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.NewStatusResponse(status))
}

func (h *Handler) handleGetRate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rate, err := h.sale.Rate(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	initial, err := h.sale.InitialRate(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.RateResponse{Rate: rate.Dec(), InitialRate: initial.Dec()})
}

func (h *Handler) handleIsWhitelisted(w http.ResponseWriter, r *http.Request) {
	addr, ok := pathAddress(w, r)
	if !ok {
		return
	}
	listed, err := h.sale.IsWhitelisted(r.Context(), addr)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.WhitelistResponse{Address: addr, Whitelisted: listed})
}

func (h *Handler) handleGetContribution(w http.ResponseWriter, r *http.Request) {
	addr, ok := pathAddress(w, r)
	if !ok {
		return
	}
	c, err := h.sale.Contribution(r.Context(), addr)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.NewContributionResponse(c))
}

func (h *Handler) handleGetOwner(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, models.OwnerResponse{Owner: h.sale.Owner()})
}

func (h *Handler) handleTokenSupply(w http.ResponseWriter, r *http.Request) {
	supply, maxSupply, err := h.sale.TokenSupply(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.TokenSupplyResponse{
		TotalSupply: supply.Dec(),
		MaxSupply:   maxSupply.Dec(),
		Decimals:    h.tokenDecimals,
	})
}

func (h *Handler) handleTokenBalance(w http.ResponseWriter, r *http.Request) {
	addr, ok := pathAddress(w, r)
	if !ok {
		return
	}
	bal, err := h.sale.TokenBalance(r.Context(), addr)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.TokenBalanceResponse{Address: addr, Balance: bal.Dec()})
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// decode reads the JSON body into req, writing the error response on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := httputil.DecodeJSON(r, req); err != nil {
		ctx := r.Context()
		h.logger.WarnContext(ctx, "invalid request body",
			"request_id", request.GetRequestID(ctx),
			"path", r.URL.Path,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return false
	}
	return true
}

func pathAddress(w http.ResponseWriter, r *http.Request) (domain.Address, bool) {
	addr, err := domain.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid address"))
		return domain.ZeroAddress, false
	}
	return addr, true
}
