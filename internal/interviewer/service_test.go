package interviewer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/IT-26211-Group-1/adultna-sub002/internal/api"
	"github.com/IT-26211-Group-1/adultna-sub002/internal/audio"
	"github.com/IT-26211-Group-1/adultna-sub002/internal/config"
	"github.com/IT-26211-Group-1/adultna-sub002/internal/grading"
	"github.com/IT-26211-Group-1/adultna-sub002/internal/interview"
	"github.com/IT-26211-Group-1/adultna-sub002/internal/metrics"
	"github.com/IT-26211-Group-1/adultna-sub002/internal/session"
	"github.com/IT-26211-Group-1/adultna-sub002/internal/storage"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func intPtr(v int) *int { return &v }

// coachServer имитирует серверную часть тренажёра
type coachServer struct {
	mu           sync.Mutex
	createStatus int
	gradeStatus  interview.AnswerStatus
	submitted    []interview.AnswerSubmission
	created      []interview.CreateSessionRequest
}

func (s *coachServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/interview-session":
		if s.createStatus != 0 {
			w.WriteHeader(s.createStatus)
			_, _ = w.Write([]byte(`{"message":"nope"}`))
			return
		}
		var req interview.CreateSessionRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		s.created = append(s.created, req)
		_ = json.NewEncoder(w).Encode(interview.CreatedSession{
			SessionID: "sess-1",
			Questions: []interview.Question{
				{ID: "q2", Question: "Describe a hard bug you fixed.", Category: interview.CategoryTechnical, Order: intPtr(2)},
				{ID: "g1", Question: "Tell me about yourself.", Category: interview.CategoryBackground, IsGeneral: true, Order: intPtr(1)},
				{ID: "q1", Question: "Why this role?", Category: interview.CategoryBehavioral, Order: intPtr(1)},
			},
		})

	case r.Method == http.MethodPost && r.URL.Path == "/interview-answer":
		var sub interview.AnswerSubmission
		_ = json.NewDecoder(r.Body).Decode(&sub)
		s.submitted = append(s.submitted, sub)
		_ = json.NewEncoder(w).Encode(interview.SubmissionAck{ID: "ans-" + sub.QuestionID, Status: interview.StatusPending})

	case r.Method == http.MethodPost && r.URL.Path == "/interview-answer/batch":
		var body struct {
			AnswerIDs []string `json:"answerIds"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		answers := make([]interview.Answer, 0, len(body.AnswerIDs))
		for _, id := range body.AnswerIDs {
			answers = append(answers, interview.Answer{
				ID:         id,
				QuestionID: strings.TrimPrefix(id, "ans-"),
				Status:     interview.StatusCompleted,
				Grading:    &interview.Grading{OverallScore: 8, Feedback: "Clear and specific.", Strengths: []string{"Structure"}},
			})
		}
		_ = json.NewEncoder(w).Encode(answers)

	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/interview-answer/"):
		status := s.gradeStatus
		if status == "" {
			status = interview.StatusCompleted
		}
		id := strings.TrimPrefix(r.URL.Path, "/interview-answer/")
		_ = json.NewEncoder(w).Encode(interview.Answer{ID: id, Status: status})

	case r.Method == http.MethodPost && r.URL.Path == "/text-to-speech":
		_, _ = w.Write([]byte(`{"audioUrl":"/audio/question.mp3"}`))

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (s *coachServer) submissions() []interview.AnswerSubmission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]interview.AnswerSubmission{}, s.submitted...)
}

type recordingPlayer struct {
	mu   sync.Mutex
	urls []string
}

func (p *recordingPlayer) Play(_ context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.urls = append(p.urls, url)
	return nil
}

func (p *recordingPlayer) Stop() {}

func (p *recordingPlayer) played() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.urls)
}

type harness struct {
	server  *coachServer
	store   storage.Store
	player  *recordingPlayer
	metrics *metrics.Metrics
	results string
	url     string
	t       *testing.T
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	server := &coachServer{}
	ts := httptest.NewServer(server)
	t.Cleanup(ts.Close)

	return &harness{
		server:  server,
		store:   storage.NewMemoryStore(),
		player:  &recordingPlayer{},
		metrics: metrics.NewMetrics(),
		results: t.TempDir(),
		url:     ts.URL,
		t:       t,
	}
}

func catalog() *config.Config {
	return &config.Config{
		Guidelines: []string{"Answer in full sentences."},
		Fields: []config.Field{
			{ID: "information-technology", Title: "Information Technology", JobRoles: []string{"Software Engineer", "QA Analyst"}},
			{ID: "business", Title: "Business", JobRoles: []string{"Accountant"}},
		},
	}
}

// run запускает сервис на заданном вводе и возвращает вывод и машину
func (h *harness) run(input string, policy grading.Policy) (string, *session.Machine, error) {
	h.t.Helper()
	ctx := context.Background()
	log := zaptest.NewLogger(h.t)

	client := api.New(h.url, api.WithToken("token"), api.WithLogger(log), api.WithMetrics(h.metrics))
	machine := session.New(ctx, h.store, session.WithLogger(log))
	pref := audio.LoadPreference(ctx, h.store, "", 0, log)

	var out strings.Builder
	svc := New(Dependencies{
		Catalog:    catalog(),
		Machine:    machine,
		Sessions:   client,
		Grader:     grading.New(client, policy, log, h.metrics),
		Audio:      audio.NewCoordinator(client, h.player, pref, 0, log, h.metrics),
		Metrics:    h.metrics,
		Logger:     log,
		UserID:     "user-1",
		ResultsDir: h.results,
	}, strings.NewReader(input), &out)

	err := svc.Run(ctx)
	return out.String(), machine, err
}

func fastPolicy() grading.Policy {
	return grading.Policy{Interval: time.Millisecond, MaxRounds: 5}
}

func TestRun_CompleteInterview(t *testing.T) {
	h := newHarness(t)

	input := strings.Join([]string{"1", "1", "", "", "I build web apps.", "I like hard problems.", "A race in the cache."}, "\n") + "\n"
	out, machine, err := h.run(input, fastPolicy())
	require.NoError(t, err)

	assert.Contains(t, out, "Question 1 of 3 [general]")
	assert.Contains(t, out, "Please enter a meaningful answer")
	assert.Contains(t, out, "3 of 3 graded")
	assert.Contains(t, out, "Interview complete")
	assert.Contains(t, out, "Clear and specific.")

	subs := h.server.submissions()
	require.Len(t, subs, 3)
	assert.Equal(t, []string{"g1", "q1", "q2"}, []string{subs[0].QuestionID, subs[1].QuestionID, subs[2].QuestionID})
	assert.Equal(t, "sess-1", subs[0].SessionID)

	require.Len(t, h.server.created, 1)
	assert.Equal(t, interview.CreateSessionRequest{UserID: "user-1", Industry: "information-technology", JobRole: "Software Engineer"}, h.server.created[0])

	assert.Equal(t, 3, h.player.played(), "every question is voiced exactly once")
	assert.Equal(t, session.StepField, machine.Step())

	_, ok, err := h.store.Get(context.Background(), session.DefaultStorageKey)
	require.NoError(t, err)
	assert.False(t, ok, "progress is cleared after completion")

	ids, err := storage.ListResults(h.results)
	require.NoError(t, err)
	assert.Equal(t, []string{"sess-1"}, ids)

	result, err := storage.LoadResult(h.results, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Summary.Completed)
	assert.Equal(t, "g1", result.Answers[0].Question.ID)

	assert.Equal(t, float64(1), testutil.ToFloat64(h.metrics.SessionsStarted))
	assert.Equal(t, float64(1), testutil.ToFloat64(h.metrics.SessionsCompleted))
}

func TestRun_BackNavigationClearsLaterChoices(t *testing.T) {
	h := newHarness(t)

	input := strings.Join([]string{"1", "b", "2", "1", "", "b", "q"}, "\n") + "\n"
	out, machine, err := h.run(input, fastPolicy())
	require.NoError(t, err)

	assert.Contains(t, out, "Progress saved")
	state := machine.State()
	assert.Equal(t, session.StepGuidelines, state.Step)
	assert.Equal(t, "business", state.SelectedField)
	assert.Equal(t, "Accountant", state.SelectedJobRole)
	assert.Empty(t, state.SessionID)
	assert.Empty(t, state.Questions)
}

func TestRun_ResumesFromStoredStep(t *testing.T) {
	h := newHarness(t)

	_, machine, err := h.run("1\n1\n\nq\n", fastPolicy())
	require.NoError(t, err)
	require.Equal(t, session.StepQuestions, machine.Step())

	out, machine, err := h.run("one\ntwo\nthree\n", fastPolicy())
	require.NoError(t, err)

	assert.Contains(t, out, "Resuming")
	assert.Contains(t, out, "Interview complete")
	assert.Equal(t, session.StepField, machine.Step())
	assert.Len(t, h.server.created, 1, "resuming must not create another session")
}

func TestRun_GradingTimeoutMessage(t *testing.T) {
	h := newHarness(t)
	h.server.gradeStatus = interview.StatusPending

	input := strings.Join([]string{"1", "1", "", "a", "b answer", "c answer", "q"}, "\n") + "\n"
	out, machine, err := h.run(input, grading.Policy{Interval: time.Millisecond, MaxRounds: 2})
	require.NoError(t, err)

	assert.Contains(t, out, "taking longer than usual")
	assert.NotContains(t, out, "Could not finish grading")
	assert.Contains(t, out, "0 of 3 graded")
	assert.Equal(t, session.StepQuestions, machine.Step())
}

func TestRun_SessionCreationErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		want   string
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, want: "sign-in has expired"},
		{name: "server error", status: http.StatusInternalServerError, want: "Could not create the interview session"},
		{name: "timeout", status: http.StatusGatewayTimeout, want: "took too long"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			h.server.createStatus = tc.status

			out, machine, err := h.run("1\n1\n\nq\n", fastPolicy())
			require.NoError(t, err)

			assert.Contains(t, out, tc.want)
			assert.Equal(t, session.StepGuidelines, machine.Step())
			if tc.status == http.StatusUnauthorized {
				assert.NotContains(t, out, "Progress saved", "re-authentication has its own farewell")
			} else {
				assert.Contains(t, out, "Progress saved")
			}
		})
	}
}

func TestRun_MuteOnGuidelinesSilencesQuestions(t *testing.T) {
	h := newHarness(t)

	input := strings.Join([]string{"1", "1", "m", "", "one", "two", "three"}, "\n") + "\n"
	out, _, err := h.run(input, fastPolicy())
	require.NoError(t, err)

	assert.Contains(t, out, "Sound is off")
	assert.Zero(t, h.player.played())

	value, ok, err := h.store.Get(context.Background(), audio.DefaultPreferenceKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "true", value)
}

func TestRun_EndOfInputQuits(t *testing.T) {
	h := newHarness(t)

	out, machine, err := h.run("2\n", fastPolicy())
	require.NoError(t, err)

	assert.Contains(t, out, "Progress saved")
	assert.Equal(t, session.StepJobRole, machine.Step())
}

func TestPickField(t *testing.T) {
	fields := catalog().Fields

	field, ok := pickField(fields, "2")
	require.True(t, ok)
	assert.Equal(t, "business", field.ID)

	field, ok = pickField(fields, "Information-Technology")
	require.True(t, ok)
	assert.Equal(t, "information-technology", field.ID)

	_, ok = pickField(fields, "0")
	assert.False(t, ok)
	_, ok = pickField(fields, "law")
	assert.False(t, ok)

	role, ok := pickOption(fields[0].JobRoles, "qa analyst")
	require.True(t, ok)
	assert.Equal(t, "QA Analyst", role)
}
