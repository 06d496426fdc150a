package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRedactingLogger_ScrubsReportContactDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID())
	r.Use(RedactingLogger(RedactOptions{}))
	r.POST("/close-ticket/:id", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	// A naive client leaking contact details through the query string.
	q := "reporter=maria.k@example.com&callback=%2B1-555-123-4567&ref=123e4567-e89b-12d3-a456-426614174000"
	req := httptest.NewRequest(http.MethodPost, "/close-ticket/17?"+q, nil)
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("Cookie", "sid=topsecret")
	req.Header.Set("X-Api-Key", "shhh")          // masked built-in, no opts needed
	req.Header.Set("Idempotency-Key", "retry-1") // client retry token, masked built-in
	req.Header.Set("X-Callback", "phone 555-123-4567 or maria.k@example.com")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	logs := buf.String()
	if !strings.Contains(logs, `"level":"info"`) {
		t.Fatalf("expected info log, got: %s", logs)
	}
	// Route template, not the raw ticket id.
	if !strings.Contains(logs, `"path":"/close-ticket/:id"`) {
		t.Fatalf("expected route template path, got: %s", logs)
	}
	if !strings.Contains(logs, `"request_id"`) {
		t.Fatalf("expected request_id field, got: %s", logs)
	}
	// Query values pattern-scrubbed, keys kept readable.
	if !strings.Contains(logs, "reporter=[REDACTED:email]") ||
		!strings.Contains(logs, "ref=[REDACTED:id]") {
		t.Fatalf("expected scrubbed query values, got: %s", logs)
	}
	if strings.Contains(logs, "maria.k@example.com") || strings.Contains(logs, "555-123-4567") {
		t.Fatalf("contact details leaked into logs: %s", logs)
	}
	// Credential-bearing headers fully masked without any configuration.
	for _, h := range []string{"Authorization", "Cookie", "X-Api-Key", "Idempotency-Key"} {
		if !strings.Contains(logs, `"`+h+`":"[REDACTED]"`) {
			t.Fatalf("%s must be masked: %s", h, logs)
		}
	}
	// Other headers are pattern-scrubbed, not dropped.
	if !strings.Contains(logs, `"X-Callback":"phone [REDACTED:phone] or [REDACTED:email]"`) {
		t.Fatalf("expected scrubbed X-Callback header, got: %s", logs)
	}
}

func TestRedactingLogger_MasksSearchQueryWholesale(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RedactingLogger(RedactOptions{}))
	r.GET("/search-sos", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	// The search text repeats report content, so the whole value is masked
	// even when no scrub pattern matches it.
	req := httptest.NewRequest(http.MethodGet, "/search-sos?q=family+trapped+on+Elm+street&limit=5", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	logs := buf.String()
	if !strings.Contains(logs, "q=[REDACTED]") {
		t.Fatalf("expected q masked wholesale, got: %s", logs)
	}
	if strings.Contains(logs, "Elm") {
		t.Fatalf("report text leaked into logs: %s", logs)
	}
	if !strings.Contains(logs, "limit=5") {
		t.Fatalf("non-sensitive params should stay readable, got: %s", logs)
	}
}

func TestRedactingLogger_LevelsAndRequestIDFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	// No RequestID middleware: the logger falls back to the request header.
	r := gin.New()
	r.Use(RedactingLogger(RedactOptions{}))
	r.GET("/warn", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/error", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	reqWarn := httptest.NewRequest(http.MethodGet, "/warn", nil)
	reqWarn.Header.Set("X-Request-ID", "rid-warn")
	r.ServeHTTP(httptest.NewRecorder(), reqWarn)

	reqErr := httptest.NewRequest(http.MethodGet, "/error", nil)
	reqErr.Header.Set("X-Request-ID", "rid-err")
	r.ServeHTTP(httptest.NewRecorder(), reqErr)

	logs := buf.String()
	if !strings.Contains(logs, `"level":"warn"`) || !strings.Contains(logs, `"request_id":"rid-warn"`) {
		t.Fatalf("warn line missing or lost request id: %s", logs)
	}
	if !strings.Contains(logs, `"level":"error"`) || !strings.Contains(logs, `"request_id":"rid-err"`) {
		t.Fatalf("error line missing or lost request id: %s", logs)
	}
}

func TestRedactingLogger_GinErrorsEscalateToErrorLevel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RedactingLogger(RedactOptions{}))
	r.GET("/flaky", func(c *gin.Context) {
		_ = c.Error(errSentinel{})
		c.Status(http.StatusBadRequest)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/flaky", nil))

	logs := buf.String()
	if !strings.Contains(logs, `"level":"error"`) || !strings.Contains(logs, "boom") {
		t.Fatalf("expected error level with collected errors, got: %s", logs)
	}
}

type errSentinel struct{}

func (e errSentinel) Error() string { return "boom" }

func Test_scrubQuery(t *testing.T) {
	masked := map[string]struct{}{"q": {}}

	cases := []struct {
		raw  string
		want string
	}{
		{"", ""},
		{"limit=5", "limit=5"},
		{"q=flooded+basement", "q=[REDACTED]"},
		{"Q=case+insensitive", "Q=[REDACTED]"},
		{"q=x&contact=a@b.com", "q=[REDACTED]&contact=[REDACTED:email]"},
		{"bareword", "bareword"},
	}
	for _, tc := range cases {
		if got := scrubQuery(tc.raw, masked); got != tc.want {
			t.Fatalf("scrubQuery(%q) = %q; want %q", tc.raw, got, tc.want)
		}
	}
}

func Test_scrub_OrderingKeepsUUIDsIntact(t *testing.T) {
	// The UUID must be replaced as one id, not chewed up by the phone pattern.
	in := "id=123e4567-e89b-12d3-a456-426614174000 phone 555-123-4567"
	got := scrub(in)
	if !strings.Contains(got, "[REDACTED:id]") || !strings.Contains(got, "[REDACTED:phone]") {
		t.Fatalf("scrub(%q) = %q", in, got)
	}
}

func Test_truncate(t *testing.T) {
	if truncate("hello", 10) != "hello" {
		t.Fatalf("truncate no-op failed")
	}
	if got := truncate("abcdefgh", 5); got != "abcde…" {
		t.Fatalf("truncate = %q; want %q", got, "abcde…")
	}
	if truncate("abc", 0) != "abc" {
		t.Fatalf("max <= 0 must disable truncation")
	}
}
