// Package grading отправляет ответы на асинхронную оценку и опрашивает
// их статус до конечного состояния.
package grading

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/IT-26211-Group-1/adultna-sub002/internal/api"
	"github.com/IT-26211-Group-1/adultna-sub002/internal/interview"
	"github.com/IT-26211-Group-1/adultna-sub002/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const maxAnswerLength = 4000

// ErrGradingTimeout возвращается, когда оценка не завершилась за MaxRounds раундов
var ErrGradingTimeout = errors.New("оценка не завершилась вовремя")

// Backend содержит операции API, которые нужны для отправки и опроса
type Backend interface {
	SubmitAnswer(ctx context.Context, sub interview.AnswerSubmission) (*interview.SubmissionAck, error)
	GetAnswer(ctx context.Context, id string, loadContent bool) (*interview.Answer, error)
	BatchAnswers(ctx context.Context, ids []string) ([]interview.Answer, error)
}

// ProgressFunc вызывается после каждого раунда опроса
type ProgressFunc func(completed, total int)

// Grader представляет сервис оценки ответов
type Grader struct {
	backend Backend
	policy  Policy
	log     *zap.Logger
	metrics *metrics.Metrics
}

// New создает сервис оценки
func New(backend Backend, policy Policy, log *zap.Logger, m *metrics.Metrics) *Grader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Grader{
		backend: backend,
		policy:  policy.withDefaults(),
		log:     log,
		metrics: m,
	}
}

// Submit проверяет ответ и ставит его в очередь оценки. Повторов нет.
func (g *Grader) Submit(ctx context.Context, sub interview.AnswerSubmission) (*interview.SubmissionAck, error) {
	sub.Content = strings.TrimSpace(sub.Content)
	if err := ValidateSubmission(sub); err != nil {
		return nil, err
	}

	ack, err := g.backend.SubmitAnswer(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("ошибка отправки ответа на вопрос %s: %w", sub.QuestionID, err)
	}

	g.metrics.IncrementAnswersSubmitted()
	g.log.Debug("ответ поставлен в очередь",
		zap.String("answer_id", ack.ID), zap.String("question_id", sub.QuestionID))

	return ack, nil
}

// ValidateSubmission проверяет обязательные поля и содержимое ответа
func ValidateSubmission(sub interview.AnswerSubmission) error {
	if sub.SessionID == "" {
		return api.NewValidationError("sessionId", "обязательное поле")
	}
	if sub.QuestionID == "" {
		return api.NewValidationError("questionId", "обязательное поле")
	}

	text := strings.TrimSpace(sub.Content)
	if text == "" {
		return api.NewValidationError("content", "ответ не может быть пустым")
	}

	length := utf8.RuneCountInString(text)
	if length > maxAnswerLength {
		return api.NewValidationError("content", fmt.Sprintf("ответ слишком длинный (максимум %d символов)", maxAnswerLength))
	}

	// Проверка на спам/повторяющиеся символы
	first, _ := utf8.DecodeRuneInString(text)
	if length > 10 && strings.Count(text, string(first)) > length*8/10 {
		return api.NewValidationError("content", "ответ содержит слишком много повторяющихся символов")
	}

	return nil
}

// PollUntilComplete опрашивает статус ответов раундами с интервалом политики.
// Когда все ответы в конечном состоянии, получает их полное содержимое одним
// пакетным запросом. Любая ошибка запроса прерывает опрос.
// Повторяющиеся идентификаторы опрашиваются и возвращаются один раз.
func (g *Grader) PollUntilComplete(ctx context.Context, answerIDs []string, onProgress ProgressFunc) ([]interview.Answer, error) {
	answerIDs = uniqueIDs(answerIDs)
	if len(answerIDs) == 0 {
		return []interview.Answer{}, nil
	}

	total := len(answerIDs)
	log := g.log.With(zap.Int("answers", total))

	for round := 1; round <= g.policy.MaxRounds; round++ {
		statuses, err := g.fetchStatuses(ctx, answerIDs)
		if err != nil {
			g.metrics.ObserveGrading("error", round)
			return nil, fmt.Errorf("ошибка опроса статуса (раунд %d): %w", round, err)
		}

		completed, resolved := g.classify(statuses)
		if onProgress != nil {
			onProgress(completed, total)
		}

		log.Debug("раунд опроса",
			zap.Int("round", round), zap.Int("completed", completed), zap.Int("resolved", resolved))

		if resolved == total {
			answers, err := g.backend.BatchAnswers(ctx, answerIDs)
			if err != nil {
				g.metrics.ObserveGrading("error", round)
				return nil, fmt.Errorf("ошибка получения оценок: %w", err)
			}
			g.metrics.ObserveGrading("completed", round)
			log.Info("оценка завершена", zap.Int("rounds", round), zap.Int("completed", completed))
			return orderByIDs(answers, answerIDs), nil
		}

		if round == g.policy.MaxRounds {
			break
		}

		if err := sleep(ctx, g.policy.Interval); err != nil {
			g.metrics.ObserveGrading("canceled", round)
			return nil, err
		}
	}

	g.metrics.ObserveGrading("timeout", g.policy.MaxRounds)
	log.Warn("оценка не завершилась вовремя", zap.Int("rounds", g.policy.MaxRounds))
	return nil, fmt.Errorf("%w после %d раундов", ErrGradingTimeout, g.policy.MaxRounds)
}

// fetchStatuses получает статусы всех ответов одного раунда параллельно
// и возвращается только когда пришли все
func (g *Grader) fetchStatuses(ctx context.Context, ids []string) ([]interview.AnswerStatus, error) {
	statuses := make([]interview.AnswerStatus, len(ids))

	group, groupCtx := errgroup.WithContext(ctx)
	for i, id := range ids {
		group.Go(func() error {
			answer, err := g.backend.GetAnswer(groupCtx, id, false)
			if err != nil {
				return fmt.Errorf("ответ %s: %w", id, err)
			}
			statuses[i] = answer.Status
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return statuses, nil
}

func (g *Grader) classify(statuses []interview.AnswerStatus) (completed, resolved int) {
	for _, status := range statuses {
		if status == interview.StatusCompleted {
			completed++
		}
		if g.policy.Terminal(status) {
			resolved++
		}
	}
	return completed, resolved
}

// orderByIDs возвращает ответы в порядке запрошенных идентификаторов
func orderByIDs(answers []interview.Answer, ids []string) []interview.Answer {
	byID := make(map[string]interview.Answer, len(answers))
	for _, a := range answers {
		byID[a.ID] = a
	}

	ordered := make([]interview.Answer, 0, len(answers))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			ordered = append(ordered, a)
			delete(byID, id)
		}
	}
	for _, a := range answers {
		if _, ok := byID[a.ID]; ok {
			ordered = append(ordered, a)
			delete(byID, a.ID)
		}
	}
	return ordered
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// uniqueIDs убирает повторы, сохраняя порядок первого появления
func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
