package request

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	t.Run("generates an ID when absent", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/sale", nil))
		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rr.Header().Get(HeaderRequestID))
	})

	t.Run("propagates a caller-supplied ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/sale", nil)
		req.Header.Set(HeaderRequestID, "trace-123")
		h.ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, "trace-123", seen)
	})

	t.Run("replaces oversized IDs", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/sale", nil)
		req.Header.Set(HeaderRequestID, strings.Repeat("x", 500))
		h.ServeHTTP(httptest.NewRecorder(), req)
		assert.Len(t, seen, 36)
	})
}
