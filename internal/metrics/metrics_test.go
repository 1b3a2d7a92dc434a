package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()

	m.IncrementSessionsStarted()
	m.IncrementSessionsStarted()
	m.IncrementSessionsCompleted()
	m.IncrementQuestionsPresented()
	m.IncrementAnswersSubmitted()
	m.ObserveAPICall("submit_answer", "201", 40*time.Millisecond)
	m.ObserveAPICall("submit_answer", "500", time.Second)
	m.ObserveGrading("completed", 3)
	m.IncrementAudioOutcome("played")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.SessionsStarted))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SessionsCompleted))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.APICalls.WithLabelValues("submit_answer", "500")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.GradingOutcomes.WithLabelValues("completed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AudioOutcomes.WithLabelValues("played")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementSessionsStarted()
		m.IncrementSessionsCompleted()
		m.IncrementQuestionsPresented()
		m.IncrementAnswersSubmitted()
		m.ObserveAPICall("x", "200", time.Millisecond)
		m.ObserveGrading("timeout", 300)
		m.IncrementAudioOutcome("muted")
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.IncrementAnswersSubmitted()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "coach_answers_submitted_total 1")
}
