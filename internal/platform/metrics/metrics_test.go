package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := New("moderation")
	m.Votes.WithLabelValues("thread", "up").Inc()
	m.Votes.WithLabelValues("thread", "up").Inc()

	if got := testutil.ToFloat64(m.Votes.WithLabelValues("thread", "up")); got != 2 {
		t.Fatalf("expected 2, got %v", got)
	}
}

func TestHandler(t *testing.T) {
	m := New("moderation")
	m.Flags.WithLabelValues("answer").Inc()

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `moderation_flags_created_total{target="answer"} 1`) {
		t.Fatalf("expected flag counter in output:\n%s", rr.Body.String())
	}
}
