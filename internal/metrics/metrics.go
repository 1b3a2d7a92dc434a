package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics собирает счетчики тренажёра. Методы безопасны для nil.
type Metrics struct {
	registry *prometheus.Registry

	SessionsStarted    prometheus.Counter
	SessionsCompleted  prometheus.Counter
	QuestionsPresented prometheus.Counter
	AnswersSubmitted   prometheus.Counter
	APICalls           *prometheus.CounterVec
	APIDuration        *prometheus.HistogramVec
	GradingOutcomes    *prometheus.CounterVec
	PollRounds         prometheus.Histogram
	AudioOutcomes      *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coach_sessions_started_total",
			Help: "Interview sessions created on the backend",
		}),
		SessionsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coach_sessions_completed_total",
			Help: "Interview sessions whose answers were all graded",
		}),
		QuestionsPresented: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coach_questions_presented_total",
			Help: "Questions shown to the user",
		}),
		AnswersSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coach_answers_submitted_total",
			Help: "Answers accepted by the grading backend",
		}),
		APICalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coach_api_calls_total",
			Help: "Backend API calls by endpoint and status",
		}, []string{"endpoint", "status"}),
		APIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "coach_api_call_duration_seconds",
			Help:    "Duration of backend API calls",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 30},
		}, []string{"endpoint"}),
		GradingOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coach_grading_polls_total",
			Help: "Grading poll invocations by outcome",
		}, []string{"outcome"}),
		PollRounds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "coach_grading_poll_rounds",
			Help:    "Poll rounds needed per grading poll",
			Buckets: []float64{1, 3, 10, 30, 100, 300},
		}),
		AudioOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coach_audio_presentations_total",
			Help: "Question audio presentations by outcome",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		m.SessionsStarted,
		m.SessionsCompleted,
		m.QuestionsPresented,
		m.AnswersSubmitted,
		m.APICalls,
		m.APIDuration,
		m.GradingOutcomes,
		m.PollRounds,
		m.AudioOutcomes,
	)

	return m
}

// Handler отдает метрики в формате Prometheus
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) IncrementSessionsStarted() {
	if m == nil {
		return
	}
	m.SessionsStarted.Inc()
}

func (m *Metrics) IncrementSessionsCompleted() {
	if m == nil {
		return
	}
	m.SessionsCompleted.Inc()
}

func (m *Metrics) IncrementQuestionsPresented() {
	if m == nil {
		return
	}
	m.QuestionsPresented.Inc()
}

func (m *Metrics) IncrementAnswersSubmitted() {
	if m == nil {
		return
	}
	m.AnswersSubmitted.Inc()
}

func (m *Metrics) ObserveAPICall(endpoint, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.APICalls.WithLabelValues(endpoint, status).Inc()
	m.APIDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveGrading(outcome string, rounds int) {
	if m == nil {
		return
	}
	m.GradingOutcomes.WithLabelValues(outcome).Inc()
	m.PollRounds.Observe(float64(rounds))
}

func (m *Metrics) IncrementAudioOutcome(outcome string) {
	if m == nil {
		return
	}
	m.AudioOutcomes.WithLabelValues(outcome).Inc()
}
