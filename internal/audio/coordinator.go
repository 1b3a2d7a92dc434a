// Package audio озвучивает вопросы сессии с учетом настройки отключения звука.
package audio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/IT-26211-Group-1/adultna-sub002/internal/metrics"
	"go.uber.org/zap"
)

const DefaultAutoplayDelay = 500 * time.Millisecond

// Outcome описывает, чем закончилась попытка озвучить вопрос
type Outcome string

const (
	OutcomePlayed             Outcome = "played"
	OutcomeMuted              Outcome = "muted"
	OutcomeAlreadyPlayed      Outcome = "already_played"
	OutcomeAutoplaySuppressed Outcome = "autoplay_suppressed"
	OutcomeUnmuted            Outcome = "unmuted"
)

// Synthesizer превращает текст в адрес воспроизводимого аудио
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (string, error)
}

// Coordinator озвучивает каждый вопрос не больше одного раза
type Coordinator struct {
	mu     sync.Mutex
	played map[string]bool

	synth   Synthesizer
	player  Player
	pref    *Preference
	delay   time.Duration
	log     *zap.Logger
	metrics *metrics.Metrics
}

// NewCoordinator создает координатор; delay < 0 заменяется значением по умолчанию
func NewCoordinator(synth Synthesizer, player Player, pref *Preference, delay time.Duration, log *zap.Logger, m *metrics.Metrics) *Coordinator {
	if delay < 0 {
		delay = DefaultAutoplayDelay
	}
	if log == nil {
		log = zap.NewNop()
	}
	if player == nil {
		player = NopPlayer{}
	}
	return &Coordinator{
		played:  make(map[string]bool),
		synth:   synth,
		player:  player,
		pref:    pref,
		delay:   delay,
		log:     log,
		metrics: m,
	}
}

func (c *Coordinator) Muted() bool {
	return c.pref.Muted()
}

// Present озвучивает вопрос, если звук включен и вопрос еще не звучал.
// Отказ окружения в автовоспроизведении не является ошибкой.
func (c *Coordinator) Present(ctx context.Context, questionID, text string) (Outcome, error) {
	if c.pref.Muted() {
		return c.outcome(OutcomeMuted), nil
	}

	c.mu.Lock()
	if c.played[questionID] {
		c.mu.Unlock()
		return c.outcome(OutcomeAlreadyPlayed), nil
	}
	c.played[questionID] = true
	c.mu.Unlock()

	outcome, err := c.play(ctx, questionID, text)
	if err != nil {
		c.forget(questionID)
	}
	return outcome, err
}

// ToggleMute переключает звук. Отключение сразу останавливает воспроизведение,
// включение заново запрашивает озвучку текущего вопроса.
func (c *Coordinator) ToggleMute(ctx context.Context, questionID, text string) (Outcome, error) {
	if c.pref.Toggle(ctx) {
		c.player.Stop()
		c.log.Debug("звук отключен")
		return c.outcome(OutcomeMuted), nil
	}

	c.log.Debug("звук включен")
	if text == "" {
		return c.outcome(OutcomeUnmuted), nil
	}

	c.mu.Lock()
	c.played[questionID] = true
	c.mu.Unlock()

	outcome, err := c.play(ctx, questionID, text)
	if err != nil {
		c.forget(questionID)
	}
	return outcome, err
}

// Forget сбрасывает отметки о прозвучавших вопросах, например при новой сессии
func (c *Coordinator) Forget() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.played = make(map[string]bool)
}

// forget снимает отметку с вопроса, чтобы неудачная попытка не считалась воспроизведением
func (c *Coordinator) forget(questionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.played, questionID)
}

// Stop останавливает текущее воспроизведение
func (c *Coordinator) Stop() {
	c.player.Stop()
}

func (c *Coordinator) play(ctx context.Context, questionID, text string) (Outcome, error) {
	url, err := c.synth.Synthesize(ctx, text)
	if err != nil {
		return "", fmt.Errorf("ошибка озвучивания вопроса %s: %w", questionID, err)
	}

	if err := sleep(ctx, c.delay); err != nil {
		return "", err
	}

	// звук могли отключить, пока шел синтез
	if c.pref.Muted() {
		return c.outcome(OutcomeMuted), nil
	}

	if err := c.player.Play(ctx, url); err != nil {
		c.log.Warn("автовоспроизведение отклонено", zap.String("question_id", questionID), zap.Error(err))
		return c.outcome(OutcomeAutoplaySuppressed), nil
	}

	return c.outcome(OutcomePlayed), nil
}

func (c *Coordinator) outcome(o Outcome) Outcome {
	c.metrics.IncrementAudioOutcome(string(o))
	return o
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
