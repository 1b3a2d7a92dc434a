// Package interviewer проводит пользователя по шагам тренажёра интервью в терминале.
package interviewer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/IT-26211-Group-1/adultna-sub002/internal/audio"
	"github.com/IT-26211-Group-1/adultna-sub002/internal/config"
	"github.com/IT-26211-Group-1/adultna-sub002/internal/grading"
	"github.com/IT-26211-Group-1/adultna-sub002/internal/interview"
	"github.com/IT-26211-Group-1/adultna-sub002/internal/metrics"
	"github.com/IT-26211-Group-1/adultna-sub002/internal/session"
	"go.uber.org/zap"
)

// Команды, которые распознаются на любом шаге
const (
	cmdBack = "b"
	cmdQuit = "q"
	cmdMute = "m"
)

var (
	// errQuit завершает сценарий по команде пользователя или концу ввода
	errQuit = errors.New("выход по команде пользователя")

	// errReauth завершает сценарий после истечения авторизации
	errReauth = errors.New("требуется повторная авторизация")
)

// SessionCreator создает сессию интервью на сервере
type SessionCreator interface {
	CreateSession(ctx context.Context, req interview.CreateSessionRequest) (*interview.CreatedSession, error)
}

// Dependencies содержит все, что нужно сервису
type Dependencies struct {
	Catalog    *config.Config
	Machine    *session.Machine
	Sessions   SessionCreator
	Grader     *grading.Grader
	Audio      *audio.Coordinator
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
	UserID     string
	ResultsDir string
}

// Service представляет сервис интервьюера
type Service struct {
	deps    Dependencies
	scanner *bufio.Scanner
	out     io.Writer
	log     *zap.Logger
}

// New создает новый сервис интервьюера
func New(deps Dependencies, in io.Reader, out io.Writer) *Service {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	return &Service{
		deps:    deps,
		scanner: scanner,
		out:     out,
		log:     log.Named("interviewer"),
	}
}

// Run ведет пользователя по шагам, начиная с восстановленного шага машины.
// Возвращает nil после сохранения результата или по команде выхода.
func (s *Service) Run(ctx context.Context) error {
	defer s.stopAudio()

	if step := s.deps.Machine.Step(); step != session.StepField {
		s.printf("↩️  Resuming your interview preparation at the %s step.\n", stepTitle(step))
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var err error
		switch s.deps.Machine.Step() {
		case session.StepField:
			err = s.chooseField(ctx)
		case session.StepJobRole:
			err = s.chooseJobRole(ctx)
		case session.StepGuidelines:
			err = s.showGuidelines(ctx)
		case session.StepQuestions:
			var finished bool
			finished, err = s.runQuestions(ctx)
			if err == nil && finished {
				return nil
			}
		}

		switch {
		case errors.Is(err, errQuit):
			s.printf("👋 Progress saved. See you next time!\n")
			return nil
		case errors.Is(err, errReauth):
			return nil
		case err != nil:
			return err
		}
	}
}

// readLine печатает приглашение и читает строку ввода
func (s *Service) readLine(prompt string) (string, error) {
	s.printf("%s", prompt)
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", fmt.Errorf("ошибка чтения ввода: %w", err)
		}
		return "", errQuit
	}
	return strings.TrimSpace(s.scanner.Text()), nil
}

func (s *Service) printf(format string, args ...interface{}) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *Service) stopAudio() {
	if s.deps.Audio != nil {
		s.deps.Audio.Stop()
	}
}

func stepTitle(step session.Step) string {
	switch step {
	case session.StepJobRole:
		return "job role"
	case session.StepGuidelines:
		return "guidelines"
	case session.StepQuestions:
		return "questions"
	default:
		return "field"
	}
}
