package observability

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/bitsctl/internal/testutil/testlog"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog/log"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	testlog.Start(t)
	RegisterMetrics()
	RegisterMetrics()

	before := testutil.ToFloat64(decodeTotal.WithLabelValues("test", "ok"))
	RecordDecode("test", "ok", 24, 40*time.Microsecond)
	RecordDecode("test", "ok", 56, 60*time.Microsecond)
	if got := testutil.ToFloat64(decodeTotal.WithLabelValues("test", "ok")); got != before+2 {
		t.Fatalf("expected decode counter +2, got %v -> %v", before, got)
	}
	RecordHTTPRequest("bitsctl", "POST", "/decode", 200, 12*time.Millisecond)
}

func TestMiddlewareRecordsRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(log.Logger))
	r.Use(RequestMetricsMiddleware("bitsctl-test"))
	r.GET("/items/:id", func(c *gin.Context) {
		c.Set(ErrorKindKey, "ok")
		c.Status(http.StatusNoContent)
	})

	for _, path := range []string{"/items/1", "/items/2", "/missing"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(httpRequests.WithLabelValues("bitsctl-test", "GET", "/items/:id", "204")); got != 2 {
		t.Fatalf("expected 2 requests on route template, got %v", got)
	}
	if got := testutil.ToFloat64(httpRequests.WithLabelValues("bitsctl-test", "GET", "unmatched", "404")); got != 1 {
		t.Fatalf("expected 1 unmatched request, got %v", got)
	}
}

func TestWriteMetricsEmitsOnlyBitsctlFamilies(t *testing.T) {
	testlog.Start(t)
	RecordDecode("dump", "ok", 24, time.Millisecond)

	var buf bytes.Buffer
	if err := WriteMetrics(&buf); err != nil {
		t.Fatalf("write metrics: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `bitsctl_decode_transmissions_total{outcome="ok",source="dump"}`) {
		t.Fatalf("expected decode counter in dump, got:\n%s", out)
	}
	if strings.Contains(out, "go_goroutines") {
		t.Fatalf("dump should skip non-bitsctl families")
	}
}
