package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "/listings/{id}/feature", normalizePath("/listings/7a1f6e3c-2b1d-4c55-9a0e-0d6f3b8b2c11/feature"))
	assert.Equal(t, "/listings", normalizePath("/listings"))
}

func TestMiddleware_RecordsStatus(t *testing.T) {
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodPost, "/listings", "403"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/listings", nil))
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodPost, "/listings", "403"))

	assert.Equal(t, before+1, after)
}

func TestHandler_BasicAuth(t *testing.T) {
	h := Handler("prom", "s3cret")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.SetBasicAuth("prom", "s3cret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "realty_")
}

func TestQuotaDecision(t *testing.T) {
	gate := QuotaDecisionsTotal.WithLabelValues("addListing", "deny", QuotaStageGate)
	tx := QuotaDecisionsTotal.WithLabelValues("addListing", "deny", QuotaStageTx)
	beforeGate, beforeTx := testutil.ToFloat64(gate), testutil.ToFloat64(tx)

	QuotaDecision("addListing", "deny", QuotaStageGate)

	assert.Equal(t, beforeGate+1, testutil.ToFloat64(gate))
	assert.Equal(t, beforeTx, testutil.ToFloat64(tx))
}
