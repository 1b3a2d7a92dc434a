package interviewer

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/IT-26211-Group-1/adultna-sub002/internal/api"
	"github.com/IT-26211-Group-1/adultna-sub002/internal/audio"
	"github.com/IT-26211-Group-1/adultna-sub002/internal/grading"
	"github.com/IT-26211-Group-1/adultna-sub002/internal/interview"
	"github.com/IT-26211-Group-1/adultna-sub002/internal/session"
	"github.com/IT-26211-Group-1/adultna-sub002/internal/storage"
	"go.uber.org/zap"
)

// runQuestions задает вопросы сессии по порядку и отправляет ответы на оценку.
// true означает, что сессия завершена и результат показан.
func (s *Service) runQuestions(ctx context.Context) (bool, error) {
	state := s.deps.Machine.State()
	cursor := interview.NewCursor(state.Questions)
	// вопрос -> идентификатор принятого ответа; повторный ответ заменяет прежний
	answerIDs := make(map[string]string, cursor.Len())

	for !cursor.Done() {
		q, _ := cursor.Current()
		s.presentQuestion(ctx, cursor, q)

		input, err := s.readLine("Your answer (b back, m sound, q quit): ")
		if err != nil {
			return false, err
		}

		switch strings.ToLower(input) {
		case cmdQuit:
			return false, errQuit
		case cmdMute:
			if err := s.toggleMute(ctx, q); err != nil {
				return false, err
			}
			continue
		case cmdBack:
			if cursor.Prev() {
				continue
			}
			s.stopAudio()
			return false, s.deps.Machine.GoBack(ctx)
		}

		ack, err := s.deps.Grader.Submit(ctx, interview.AnswerSubmission{
			SessionID:  state.SessionID,
			QuestionID: q.ID,
			Content:    input,
		})
		if err != nil {
			if err := s.explain(ctx, "submit your answer", err); err != nil {
				return false, err
			}
			continue
		}

		answerIDs[q.ID] = ack.ID
		s.printf("✅ Answer received.\n")
		cursor.Next()
	}

	s.stopAudio()
	return s.gradeAndReport(ctx, state, answerIDs)
}

func (s *Service) presentQuestion(ctx context.Context, cursor *interview.Cursor, q interview.Question) {
	pos, total := cursor.Progress()
	label := string(q.Category)
	if q.IsGeneral {
		label = "general"
	}

	s.printf("\n❓ Question %d of %d", pos, total)
	if label != "" {
		s.printf(" [%s]", label)
	}
	s.printf("\n%s\n", q.Question)
	s.deps.Metrics.IncrementQuestionsPresented()

	if s.deps.Audio == nil {
		return
	}
	outcome, err := s.deps.Audio.Present(ctx, q.ID, q.Question)
	switch {
	case err != nil:
		s.log.Warn("не удалось озвучить вопрос", zap.String("question_id", q.ID), zap.Error(err))
	case outcome == audio.OutcomeAutoplaySuppressed:
		s.printf("🔈 Audio could not start automatically. Press m twice to retry.\n")
	}
}

// gradeAndReport ждет оценки всех ответов, показывает итог и архивирует его.
// Неудачный опрос можно повторить: ответы уже приняты сервером.
func (s *Service) gradeAndReport(ctx context.Context, state session.State, answerIDs map[string]string) (bool, error) {
	ids := make([]string, 0, len(state.Questions))
	for _, q := range state.Questions {
		ids = append(ids, answerIDs[q.ID])
	}

	for {
		s.printf("\n⏳ Grading your answers...\n")
		answers, err := s.deps.Grader.PollUntilComplete(ctx, ids, func(completed, total int) {
			s.printf("\r%d of %d graded", completed, total)
		})
		s.printf("\n")

		if err == nil {
			if err := s.finish(ctx, state, answers); err != nil {
				return false, err
			}
			return true, nil
		}

		switch {
		case ctx.Err() != nil:
			return false, ctx.Err()
		case errors.Is(err, grading.ErrGradingTimeout):
			s.log.Warn("оценка не завершилась вовремя", zap.String("session_id", state.SessionID))
			s.printf("⏱️  Grading is taking longer than usual. Your answers are saved on the server.\n")
		default:
			if err := s.explain(ctx, "finish grading your answers", err); err != nil {
				return false, err
			}
		}

		input, err := s.readLine("Press Enter to check again (q quit): ")
		if err != nil {
			return false, err
		}
		if strings.EqualFold(input, cmdQuit) {
			return false, errQuit
		}
	}
}

// finish печатает оценки, сохраняет результат и сбрасывает прогресс
func (s *Service) finish(ctx context.Context, state session.State, answers []interview.Answer) error {
	graded := make([]storage.GradedAnswer, 0, len(answers))
	byID := make(map[string]interview.Answer, len(answers))
	for _, a := range answers {
		byID[a.QuestionID] = a
	}

	s.printf("\n🎉 Interview complete!\n")
	for i, q := range state.Questions {
		a, ok := byID[q.ID]
		if !ok && i < len(answers) {
			a = answers[i]
		}
		graded = append(graded, storage.GradedAnswer{Question: q, Answer: a})
		s.printAnswer(i+1, q, a)
	}

	summary := storage.Summarize(graded)
	s.printf("\n📊 %d graded, %d failed, average score %.1f\n", summary.Completed, summary.Failed, summary.AverageScore)

	result := &storage.InterviewResult{
		SessionID: state.SessionID,
		Timestamp: time.Now().Format(time.RFC3339),
		Industry:  state.SelectedField,
		JobRole:   state.SelectedJobRole,
		Answers:   graded,
		Summary:   summary,
	}
	if s.deps.ResultsDir != "" {
		if err := storage.SaveResult(s.deps.ResultsDir, result); err != nil {
			s.log.Error("не удалось сохранить результат", zap.Error(err))
			s.printf("⚠️  Could not save the result file.\n")
		} else {
			s.printf("💾 Result saved (ID: %s)\n", state.SessionID)
		}
	}

	s.deps.Metrics.IncrementSessionsCompleted()
	s.deps.Machine.Reset(ctx)
	return nil
}

func (s *Service) printAnswer(n int, q interview.Question, a interview.Answer) {
	s.printf("\n%d. %s\n", n, q.Question)

	if a.Status == interview.StatusFailed || a.Grading == nil {
		s.printf("   ❌ This answer could not be graded.\n")
		return
	}

	g := a.Grading
	s.printf("   Score: %.1f\n", g.OverallScore)
	if g.Feedback != "" {
		s.printf("   %s\n", g.Feedback)
	}
	for _, item := range g.Strengths {
		s.printf("   👍 %s\n", item)
	}
	for _, item := range g.Improvements {
		s.printf("   💡 %s\n", item)
	}
}

// explain печатает понятное пользователю сообщение об ошибке.
// Ошибка возвращается, только если продолжать нельзя.
func (s *Service) explain(ctx context.Context, action string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	s.log.Warn("ошибка запроса", zap.String("action", action), zap.Error(err))

	var ve *api.ValidationError
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		s.printf("🔒 Your sign-in has expired. Please sign in again and restart the coach.\n")
		return errReauth
	case errors.Is(err, api.ErrRequestTimeout):
		s.printf("⏱️  The server took too long to respond. Please try again.\n")
	case errors.As(err, &ve):
		s.printf("⚠️  %s\n", validationHint(ve))
	default:
		s.printf("❌ Could not %s. Please check your connection and try again.\n", action)
	}
	return nil
}

func validationHint(ve *api.ValidationError) string {
	switch ve.Field {
	case "content":
		return "Please enter a meaningful answer of up to 4000 characters."
	case "userId":
		return "Your account is not set up. Please sign in again."
	default:
		return "Some required information is missing. Please try again."
	}
}
