package storage

import "github.com/IT-26211-Group-1/adultna-sub002/internal/interview"

// InterviewResult представляет итог завершенной сессии
type InterviewResult struct {
	SessionID string         `json:"session_id"`
	Timestamp string         `json:"timestamp"`
	Industry  string         `json:"industry"`
	JobRole   string         `json:"job_role"`
	Answers   []GradedAnswer `json:"answers"`
	Summary   ResultSummary  `json:"summary"`
}

// GradedAnswer связывает вопрос с оцененным ответом
type GradedAnswer struct {
	Question interview.Question `json:"question"`
	Answer   interview.Answer   `json:"answer"`
}

// ResultSummary содержит агрегаты по сессии
type ResultSummary struct {
	Completed    int     `json:"completed"`
	Failed       int     `json:"failed"`
	AverageScore float64 `json:"average_score"`
}
