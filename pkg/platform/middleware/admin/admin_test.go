package admin

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequireAdminToken(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	tests := []struct {
		name     string
		expected string
		given    string
		status   int
	}{
		{name: "matching token", expected: "s3cret", given: "s3cret", status: http.StatusOK},
		{name: "wrong token", expected: "s3cret", given: "guess", status: http.StatusUnauthorized},
		{name: "missing token", expected: "s3cret", given: "", status: http.StatusUnauthorized},
		{name: "disabled when unset", expected: "", given: "", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/audit", nil)
			if tt.given != "" {
				req.Header.Set(HeaderAdminToken, tt.given)
			}
			rr := httptest.NewRecorder()
			RequireAdminToken(tt.expected, logger)(ok).ServeHTTP(rr, req)
			assert.Equal(t, tt.status, rr.Code)
		})
	}
}
