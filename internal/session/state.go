// Package session реализует пошаговую машину состояний сессии интервью
// с сохранением прогресса в клиентском хранилище.
package session

import (
	"errors"

	"github.com/IT-26211-Group-1/adultna-sub002/internal/interview"
)

// Step представляет шаг сессии
type Step string

const (
	StepField      Step = "field"
	StepJobRole    Step = "jobRole"
	StepGuidelines Step = "guidelines"
	StepQuestions  Step = "questions"
)

var steps = []Step{StepField, StepJobRole, StepGuidelines, StepQuestions}

// ErrInvalidTransition возвращается, когда переход недоступен на текущем шаге
var ErrInvalidTransition = errors.New("недопустимый переход сессии")

// Valid сообщает, что шаг известен
func (s Step) Valid() bool {
	return s.index() >= 0
}

func (s Step) index() int {
	for i, step := range steps {
		if step == s {
			return i
		}
	}
	return -1
}

// State представляет прогресс пользователя. Пустая строка означает отсутствие значения.
type State struct {
	Step            Step                 `json:"step"`
	SelectedField   string               `json:"selectedField"`
	SelectedJobRole string               `json:"selectedJobRole"`
	SessionID       string               `json:"sessionId"`
	Questions       []interview.Question `json:"questions"`
}

// Initial возвращает начальное состояние
func Initial() State {
	return State{
		Step:      StepField,
		Questions: []interview.Question{},
	}
}

// clone возвращает копию, не разделяющую срез вопросов с оригиналом
func (s State) clone() State {
	out := s
	out.Questions = append([]interview.Question{}, s.Questions...)
	return out
}

// consistent проверяет, что данные соответствуют шагу
func (s State) consistent() bool {
	switch s.Step {
	case StepField:
		return s.SelectedField == "" && s.SelectedJobRole == "" && s.SessionID == "" && len(s.Questions) == 0
	case StepJobRole:
		return s.SelectedField != "" && s.SelectedJobRole == "" && s.SessionID == "" && len(s.Questions) == 0
	case StepGuidelines:
		return s.SelectedField != "" && s.SelectedJobRole != "" && s.SessionID == "" && len(s.Questions) == 0
	case StepQuestions:
		return s.SelectedField != "" && s.SelectedJobRole != "" && s.SessionID != "" && len(s.Questions) > 0
	default:
		return false
	}
}
