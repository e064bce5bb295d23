// Package httputil writes JSON responses and maps domain error codes to HTTP statuses.
package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	dErrors "crowdsale/pkg/domain-errors"
)

// maxBodyBytes caps request bodies; sale requests are a handful of fields.
const maxBodyBytes = 1 << 20

var statusByCode = map[dErrors.Code]int{
	dErrors.CodeBadRequest:         http.StatusBadRequest,
	dErrors.CodeValidation:         http.StatusBadRequest,
	dErrors.CodeInvalidInput:       http.StatusBadRequest,
	dErrors.CodeInvalidBeneficiary: http.StatusBadRequest,
	dErrors.CodeBelowMinimum:       http.StatusBadRequest,
	dErrors.CodeRateBelowFloor:     http.StatusBadRequest,
	// Missing or invalid credentials are answered with 401 by the auth middleware;
	// an authenticated caller without the capability gets 403.
	dErrors.CodeUnauthorized:       http.StatusForbidden,
	dErrors.CodeForbidden:          http.StatusForbidden,
	dErrors.CodeNotWhitelisted:     http.StatusForbidden,
	dErrors.CodeNotFound:           http.StatusNotFound,
	dErrors.CodeConflict:           http.StatusConflict,
	dErrors.CodeSaleNotOpen:        http.StatusConflict,
	dErrors.CodeSaleClosed:         http.StatusConflict,
	dErrors.CodeSaleFinalized:      http.StatusConflict,
	dErrors.CodeAlreadyFinalized:   http.StatusConflict,
	dErrors.CodeTooEarly:           http.StatusConflict,
	dErrors.CodeNotFinalized:       http.StatusConflict,
	dErrors.CodeGoalWasReached:     http.StatusConflict,
	dErrors.CodeCapExceeded:        http.StatusUnprocessableEntity,
	dErrors.CodeSupplyExceeded:     http.StatusUnprocessableEntity,
	dErrors.CodeRateLimited:        http.StatusTooManyRequests,
	dErrors.CodeTimeout:            http.StatusGatewayTimeout,
}

// StatusFor returns the HTTP status for a domain error code.
func StatusFor(code dErrors.Code) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteError writes {"error": code, "error_description": msg}. Internal errors
// never expose their description.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeInternal
	var desc string
	if de, ok := dErrors.As(err); ok {
		code = de.Code
		desc = de.Message
	}
	status := StatusFor(code)
	if status == http.StatusInternalServerError {
		code = dErrors.CodeInternal
		desc = ""
	}
	WriteJSON(w, status, errorResponse{Error: string(code), ErrorDescription: desc})
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeJSON decodes a bounded request body into v, rejecting unknown fields.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return dErrors.New(dErrors.CodeBadRequest, "request body is required")
		}
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid JSON body")
	}
	return nil
}
