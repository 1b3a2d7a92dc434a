package storage

import (
	"testing"

	"github.com/IT-26211-Group-1/adultna-sub002/internal/interview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadListResults(t *testing.T) {
	dir := t.TempDir()

	ids, err := ListResults(dir + "/absent")
	require.NoError(t, err)
	assert.Empty(t, ids)

	answers := []GradedAnswer{
		{
			Question: interview.Question{ID: "q1", Question: "Tell me about yourself."},
			Answer: interview.Answer{
				ID: "a1", QuestionID: "q1", Status: interview.StatusCompleted,
				Grading: &interview.Grading{OverallScore: 8, Feedback: "Clear structure."},
			},
		},
		{
			Question: interview.Question{ID: "q2"},
			Answer:   interview.Answer{ID: "a2", QuestionID: "q2", Status: interview.StatusCompleted, Grading: &interview.Grading{OverallScore: 6}},
		},
		{
			Question: interview.Question{ID: "q3"},
			Answer:   interview.Answer{ID: "a3", QuestionID: "q3", Status: interview.StatusFailed},
		},
	}

	result := &InterviewResult{
		SessionID: "sess-42",
		Timestamp: "2026-10-14T09:00:00Z",
		Industry:  "information-technology",
		JobRole:   "Data Analyst",
		Answers:   answers,
		Summary:   Summarize(answers),
	}
	require.NoError(t, SaveResult(dir, result))

	assert.Equal(t, 2, result.Summary.Completed)
	assert.Equal(t, 1, result.Summary.Failed)
	assert.InDelta(t, 7.0, result.Summary.AverageScore, 0.0001)

	loaded, err := LoadResult(dir, "sess-42")
	require.NoError(t, err)
	assert.Equal(t, result, loaded)

	ids, err = ListResults(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"sess-42"}, ids)
}

func TestSaveResult_RequiresSessionID(t *testing.T) {
	assert.Error(t, SaveResult(t.TempDir(), &InterviewResult{}))
	assert.Error(t, SaveResult(t.TempDir(), nil))
}

func TestSummarize_Empty(t *testing.T) {
	assert.Equal(t, ResultSummary{}, Summarize(nil))
}
