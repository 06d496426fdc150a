package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_CountsRoutesAndFallsBackOn404(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics())

	r.GET("/ticket-stats", func(c *gin.Context) {
		c.String(http.StatusOK, `{"total_tickets":0}`)
	})
	r.POST("/close-ticket/:id", func(c *gin.Context) {
		c.Status(http.StatusNoContent) // no body, size stays -1
	})

	// Baselines guard against interference from other tests in the package.
	baseStats := testutil.ToFloat64(reqTotal.WithLabelValues("GET", "/ticket-stats", "200"))
	baseClose := testutil.ToFloat64(reqTotal.WithLabelValues("POST", "/close-ticket/:id", "204"))
	base404 := testutil.ToFloat64(reqTotal.WithLabelValues("GET", "/nope", "404"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ticket-stats", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /ticket-stats -> %d", w.Code)
	}

	// The route template must be the label, not the raw ticket id.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/close-ticket/17", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("POST /close-ticket/17 -> %d", w.Code)
	}

	// Unmatched route falls back to the raw path label.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /nope -> %d", w.Code)
	}

	if got := testutil.ToFloat64(reqTotal.WithLabelValues("GET", "/ticket-stats", "200")); got != baseStats+1 {
		t.Fatalf("stats counter = %v; want %v", got, baseStats+1)
	}
	if got := testutil.ToFloat64(reqTotal.WithLabelValues("POST", "/close-ticket/:id", "204")); got != baseClose+1 {
		t.Fatalf("close counter (templated label) = %v; want %v", got, baseClose+1)
	}
	if got := testutil.ToFloat64(reqTotal.WithLabelValues("GET", "/nope", "404")); got != base404+1 {
		t.Fatalf("404 fallback counter = %v; want %v", got, base404+1)
	}

	// No requests in flight once serving completed.
	if inFlight := testutil.ToFloat64(reqInFlight); inFlight != 0 {
		t.Fatalf("reqInFlight = %v; want 0", inFlight)
	}

	// The requests above exercised both histogram paths: a written body
	// observed into respBytes and a size of -1 skipped.
}
