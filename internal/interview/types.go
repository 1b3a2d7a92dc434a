// Package interview содержит доменные типы сессии тренажёра интервью
// и упорядочивание вопросов.
package interview

// Category представляет тип вопроса
type Category string

const (
	CategoryBehavioral  Category = "behavioral"
	CategoryTechnical   Category = "technical"
	CategorySituational Category = "situational"
	CategoryBackground  Category = "background"
)

// Question представляет вопрос сессии.
// Order == nil означает отсутствие ключа сортировки.
type Question struct {
	ID        string   `json:"id"`
	Question  string   `json:"question"`
	Category  Category `json:"category"`
	IsGeneral bool     `json:"isGeneral"`
	Order     *int     `json:"order,omitempty"`
}

// AnswerStatus представляет состояние оценки ответа
type AnswerStatus string

const (
	StatusPending   AnswerStatus = "pending"
	StatusCompleted AnswerStatus = "completed"
	StatusFailed    AnswerStatus = "failed"
)

// Terminal сообщает, что ответ больше не изменит статус
func (s AnswerStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Grading содержит результат оценки ответа
type Grading struct {
	OverallScore float64            `json:"overallScore"`
	Scores       map[string]float64 `json:"scores,omitempty"`
	Feedback     string             `json:"feedback,omitempty"`
	Strengths    []string           `json:"strengths,omitempty"`
	Improvements []string           `json:"improvements,omitempty"`
}

// Answer представляет отправленный ответ и его оценку
type Answer struct {
	ID         string       `json:"id"`
	SessionID  string       `json:"sessionId,omitempty"`
	QuestionID string       `json:"questionId"`
	Content    string       `json:"content,omitempty"`
	Status     AnswerStatus `json:"status"`
	Grading    *Grading     `json:"grading,omitempty"`
	Error      string       `json:"error,omitempty"`
}

// AnswerSubmission представляет ответ пользователя перед отправкой
type AnswerSubmission struct {
	SessionID  string `json:"sessionId"`
	QuestionID string `json:"questionId"`
	Content    string `json:"content"`
}

// SubmissionAck подтверждает, что ответ поставлен в очередь оценки
type SubmissionAck struct {
	ID     string       `json:"id"`
	Status AnswerStatus `json:"status"`
}

// CreateSessionRequest соответствует POST /interview-session
type CreateSessionRequest struct {
	UserID   string `json:"userId"`
	Industry string `json:"industry"`
	JobRole  string `json:"jobRole"`
}

// CreatedSession соответствует ответу POST /interview-session
type CreatedSession struct {
	SessionID string     `json:"sessionId"`
	Questions []Question `json:"questions"`
}
