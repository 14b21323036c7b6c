package observability

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "info", Format: "json", Output: &buf, ServiceName: "jibsearch-test"})

	planner := Component(logger, "planner")
	planner.Info().Str("query", "โน้ตบุ๊ค").Msg("planned")
	logger.Debug().Msg("hidden at info level")

	out := buf.String()
	assert.Contains(t, out, `"service":"jibsearch-test"`)
	assert.Contains(t, out, `"component":"planner"`)
	assert.Contains(t, out, "planned")
	assert.NotContains(t, out, "hidden at info level")
}

func TestMetrics(t *testing.T) {
	m := NewMetrics("jibsearch-test")

	done := m.RequestStarted()
	done("POST", "/search", 200)
	m.ObserveStage("plan", 15*time.Millisecond)
	m.RecordFallback("planner", "model_error")
	m.RecordModelCall("gpt-4o", "success")
	m.RecordSearch("model", 12)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	text := string(body)
	assert.True(t, strings.Contains(text, `jibsearch_http_requests_total{method="POST",path="/search",status="200"} 1`))
	assert.Contains(t, text, `jibsearch_pipeline_fallbacks_total{reason="model_error",stage="planner"} 1`)
	assert.Contains(t, text, `jibsearch_llm_calls_total{model="gpt-4o",outcome="success"} 1`)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RequestStarted()("GET", "/", 200)
		m.ObserveStage("rank", time.Second)
		m.RecordFallback("ranker", "")
		m.RecordModelCall("", "error")
		m.RecordSearch("heuristic", 0)
	})
}
