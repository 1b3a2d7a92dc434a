package interviewer

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/IT-26211-Group-1/adultna-sub002/internal/audio"
	"github.com/IT-26211-Group-1/adultna-sub002/internal/config"
	"github.com/IT-26211-Group-1/adultna-sub002/internal/interview"
	"github.com/IT-26211-Group-1/adultna-sub002/internal/session"
	"go.uber.org/zap"
)

// chooseField показывает каталог сфер и фиксирует выбор
func (s *Service) chooseField(ctx context.Context) error {
	fields := s.deps.Catalog.Fields

	s.printf("\n📋 Choose your field:\n")
	for i, field := range fields {
		s.printf("  %d. %s\n", i+1, field.Title)
	}

	for {
		input, err := s.readLine("Field number (q to quit): ")
		if err != nil {
			return err
		}

		switch strings.ToLower(input) {
		case cmdQuit:
			return errQuit
		case cmdBack:
			s.printf("You are already at the first step.\n")
			continue
		}

		field, ok := pickField(fields, input)
		if !ok {
			s.printf("⚠️  Unknown field. Enter a number from the list.\n")
			continue
		}
		return s.deps.Machine.SelectField(ctx, field.ID)
	}
}

// chooseJobRole показывает должности выбранной сферы
func (s *Service) chooseJobRole(ctx context.Context) error {
	state := s.deps.Machine.State()
	field, ok := s.deps.Catalog.FindField(state.SelectedField)
	if !ok {
		// сохраненная сфера могла исчезнуть из каталога
		s.log.Warn("сфера из сохраненного состояния не найдена", zap.String("field", state.SelectedField))
		s.printf("⚠️  The saved field is no longer available. Let's start over.\n")
		s.deps.Machine.Reset(ctx)
		return nil
	}

	s.printf("\n💼 %s: choose a job role:\n", field.Title)
	for i, role := range field.JobRoles {
		s.printf("  %d. %s\n", i+1, role)
	}

	for {
		input, err := s.readLine("Job role number (b back, q quit): ")
		if err != nil {
			return err
		}

		switch strings.ToLower(input) {
		case cmdQuit:
			return errQuit
		case cmdBack:
			return s.deps.Machine.GoBack(ctx)
		}

		role, ok := pickOption(field.JobRoles, input)
		if !ok {
			s.printf("⚠️  Unknown job role. Enter a number from the list.\n")
			continue
		}
		return s.deps.Machine.SelectJobRole(ctx, role)
	}
}

// showGuidelines показывает правила; запуск сессии создает ее на сервере
func (s *Service) showGuidelines(ctx context.Context) error {
	state := s.deps.Machine.State()

	s.printf("\n📝 Interview for %s (%s)\n", state.SelectedJobRole, s.fieldTitle(state.SelectedField))
	s.printf("Before you begin:\n")
	for _, line := range s.deps.Catalog.Guidelines {
		s.printf("  • %s\n", line)
	}
	s.printSoundStatus()

	for {
		input, err := s.readLine("Press Enter to start (m sound, b back, q quit): ")
		if err != nil {
			return err
		}

		switch strings.ToLower(input) {
		case cmdQuit:
			return errQuit
		case cmdBack:
			return s.deps.Machine.GoBack(ctx)
		case cmdMute:
			if err := s.toggleMute(ctx, interview.Question{}); err != nil {
				return err
			}
			continue
		case "":
			started, err := s.startSession(ctx, state)
			if err != nil || started {
				return err
			}
		default:
			s.printf("Press Enter to start the interview.\n")
		}
	}
}

// startSession создает сессию на сервере и переводит машину к вопросам.
// false без ошибки означает, что пользователь остается на экране правил.
func (s *Service) startSession(ctx context.Context, state session.State) (bool, error) {
	s.printf("⏳ Preparing your questions...\n")

	created, err := s.deps.Sessions.CreateSession(ctx, interview.CreateSessionRequest{
		UserID:   s.deps.UserID,
		Industry: state.SelectedField,
		JobRole:  state.SelectedJobRole,
	})
	if err != nil {
		return false, s.explain(ctx, "create the interview session", err)
	}

	err = s.deps.Machine.ReceiveSessionCreated(ctx, created.SessionID, created.Questions)
	if errors.Is(err, session.ErrInvalidTransition) {
		s.log.Warn("сервер вернул сессию без вопросов", zap.String("session_id", created.SessionID))
		s.printf("❌ No questions were prepared for this role. Please try again.\n")
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s.deps.Metrics.IncrementSessionsStarted()
	if s.deps.Audio != nil {
		s.deps.Audio.Forget()
	}
	s.log.Info("сессия интервью создана",
		zap.String("session_id", created.SessionID), zap.Int("questions", len(created.Questions)))

	return true, nil
}

// toggleMute переключает звук; для вопроса включение заново озвучивает его
func (s *Service) toggleMute(ctx context.Context, q interview.Question) error {
	if s.deps.Audio == nil {
		s.printf("Sound is not available.\n")
		return nil
	}

	outcome, err := s.deps.Audio.ToggleMute(ctx, q.ID, q.Question)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.log.Warn("не удалось озвучить вопрос", zap.String("question_id", q.ID), zap.Error(err))
	}
	if outcome == audio.OutcomeAutoplaySuppressed {
		s.printf("🔈 Audio could not start automatically.\n")
	}
	s.printSoundStatus()
	return nil
}

func (s *Service) printSoundStatus() {
	if s.deps.Audio == nil {
		return
	}
	if s.deps.Audio.Muted() {
		s.printf("🔇 Sound is off (m to turn on)\n")
	} else {
		s.printf("🔊 Sound is on (m to turn off)\n")
	}
}

func (s *Service) fieldTitle(id string) string {
	if field, ok := s.deps.Catalog.FindField(id); ok {
		return field.Title
	}
	return id
}

// pickField принимает номер из списка или идентификатор сферы
func pickField(fields []config.Field, input string) (config.Field, bool) {
	if n, err := strconv.Atoi(input); err == nil {
		if n >= 1 && n <= len(fields) {
			return fields[n-1], true
		}
		return config.Field{}, false
	}
	for _, field := range fields {
		if strings.EqualFold(field.ID, input) || strings.EqualFold(field.Title, input) {
			return field, true
		}
	}
	return config.Field{}, false
}

// pickOption принимает номер из списка или само значение
func pickOption(options []string, input string) (string, bool) {
	if n, err := strconv.Atoi(input); err == nil {
		if n >= 1 && n <= len(options) {
			return options[n-1], true
		}
		return "", false
	}
	for _, option := range options {
		if strings.EqualFold(option, input) {
			return option, true
		}
	}
	return "", false
}
