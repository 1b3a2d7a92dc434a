package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/IT-26211-Group-1/adultna-sub002/internal/interview"
	"github.com/IT-26211-Group-1/adultna-sub002/internal/storage"
	"go.uber.org/zap"
)

const (
	DefaultStorageKey = "interview_session_state"
	DefaultTTL        = 60 * time.Minute
)

// Machine ведет пользователя по шагам field → jobRole → guidelines → questions.
// Вперед можно перейти только с соседнего предыдущего шага.
type Machine struct {
	mu    sync.Mutex
	state State

	store storage.Store
	key   string
	ttl   time.Duration
	now   storage.Clock
	log   *zap.Logger
}

// Option настраивает Machine
type Option func(*Machine)

func WithKey(key string) Option {
	return func(m *Machine) {
		m.key = key
	}
}

func WithTTL(ttl time.Duration) Option {
	return func(m *Machine) {
		m.ttl = ttl
	}
}

func WithClock(now storage.Clock) Option {
	return func(m *Machine) {
		m.now = now
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(m *Machine) {
		m.log = log
	}
}

// New создает машину и пытается восстановить ранее сохраненное состояние.
// Отсутствующее, просроченное или поврежденное состояние дает начальный шаг.
func New(ctx context.Context, store storage.Store, opts ...Option) *Machine {
	m := &Machine{
		state: Initial(),
		store: store,
		key:   DefaultStorageKey,
		ttl:   DefaultTTL,
		now:   time.Now,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.restore(ctx)
	return m
}

func (m *Machine) restore(ctx context.Context) {
	raw, ok, err := m.store.Get(ctx, m.key)
	if err != nil {
		m.log.Warn("не удалось прочитать сохраненное состояние", zap.Error(err))
		return
	}
	if !ok {
		return
	}

	state, err := decodeSnapshot(raw)
	if err != nil {
		m.log.Debug("сохраненное состояние отброшено", zap.Error(err))
		return
	}

	m.state = state
	m.log.Debug("состояние восстановлено", zap.String("step", string(state.Step)))
}

// State возвращает копию текущего состояния
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone()
}

// Step возвращает текущий шаг
func (m *Machine) Step() Step {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Step
}

// SelectField запоминает сферу и переходит к выбору должности
func (m *Machine) SelectField(ctx context.Context, fieldID string) error {
	if fieldID == "" {
		return fmt.Errorf("%w: пустая сфера", ErrInvalidTransition)
	}
	return m.transition(ctx, StepField, func(s *State) {
		s.SelectedField = fieldID
		s.Step = StepJobRole
	})
}

// SelectJobRole запоминает должность и переходит к правилам
func (m *Machine) SelectJobRole(ctx context.Context, role string) error {
	if role == "" {
		return fmt.Errorf("%w: пустая должность", ErrInvalidTransition)
	}
	return m.transition(ctx, StepJobRole, func(s *State) {
		s.SelectedJobRole = role
		s.Step = StepGuidelines
	})
}

// ReceiveSessionCreated сохраняет выданные сервером идентификаторы
// и упорядоченные вопросы, переходит к вопросам
func (m *Machine) ReceiveSessionCreated(ctx context.Context, sessionID string, questions []interview.Question) error {
	if sessionID == "" {
		return fmt.Errorf("%w: пустой sessionId", ErrInvalidTransition)
	}
	if len(questions) == 0 {
		return fmt.Errorf("%w: сессия без вопросов", ErrInvalidTransition)
	}
	// вопрос без id не пройдет проверку сохраненного состояния при восстановлении
	for i, q := range questions {
		if q.ID == "" {
			return fmt.Errorf("%w: вопрос %d без id", ErrInvalidTransition, i)
		}
	}
	sequenced := interview.Sequence(questions)
	return m.transition(ctx, StepGuidelines, func(s *State) {
		s.SessionID = sessionID
		s.Questions = sequenced
		s.Step = StepQuestions
	})
}

// GoBack возвращает на один шаг назад и очищает то, что было получено
// на целевом шаге и после него
func (m *Machine) GoBack(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.state.clone()
	switch m.state.Step {
	case StepQuestions:
		next.SessionID = ""
		next.Questions = []interview.Question{}
		next.Step = StepGuidelines
	case StepGuidelines:
		next.SelectedJobRole = ""
		next.Step = StepJobRole
	case StepJobRole:
		next.SelectedField = ""
		next.Step = StepField
	default:
		return fmt.Errorf("%w: назад с шага %q", ErrInvalidTransition, m.state.Step)
	}

	m.commit(ctx, next)
	return nil
}

// Reset возвращает начальный шаг и удаляет сохраненное состояние
func (m *Machine) Reset(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = Initial()
	if err := m.store.Remove(ctx, m.key); err != nil {
		m.log.Warn("не удалось удалить сохраненное состояние", zap.Error(err))
	}
}

func (m *Machine) transition(ctx context.Context, from Step, apply func(*State)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Step != from {
		return fmt.Errorf("%w: ожидался шаг %q, текущий %q", ErrInvalidTransition, from, m.state.Step)
	}

	next := m.state.clone()
	apply(&next)
	m.commit(ctx, next)
	return nil
}

// commit применяет состояние и сразу пишет его в хранилище.
// Ошибка записи только логируется.
func (m *Machine) commit(ctx context.Context, next State) {
	m.state = next

	raw, err := encodeSnapshot(next, m.now())
	if err != nil {
		m.log.Warn("не удалось сериализовать состояние", zap.Error(err))
		return
	}

	if err := m.store.Set(ctx, m.key, raw, m.ttl); err != nil {
		m.log.Warn("не удалось сохранить состояние", zap.Error(err))
	}
}
