package audio

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
)

// ErrAutoplayRejected возвращается плеером, когда окружение не дает
// запустить воспроизведение
var ErrAutoplayRejected = errors.New("автовоспроизведение отклонено")

// Player воспроизводит аудио по адресу
type Player interface {
	// Play запускает воспроизведение и не ждет его окончания
	Play(ctx context.Context, url string) error
	// Stop немедленно останавливает текущее воспроизведение
	Stop()
}

// NopPlayer ничего не воспроизводит
type NopPlayer struct{}

func (NopPlayer) Play(context.Context, string) error { return nil }

func (NopPlayer) Stop() {}

// CommandPlayer запускает внешнюю программу, например ffplay, с адресом аудио последним аргументом
type CommandPlayer struct {
	mu      sync.Mutex
	command []string
	current *exec.Cmd
}

func NewCommandPlayer(command []string) *CommandPlayer {
	return &CommandPlayer{command: command}
}

func (p *CommandPlayer) Play(_ context.Context, url string) error {
	if len(p.command) == 0 {
		return fmt.Errorf("%w: команда плеера не задана", ErrAutoplayRejected)
	}

	path, err := exec.LookPath(p.command[0])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAutoplayRejected, err)
	}

	p.Stop()

	args := append(append([]string{}, p.command[1:]...), url)
	cmd := exec.Command(path, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %v", ErrAutoplayRejected, err)
	}

	p.mu.Lock()
	p.current = cmd
	p.mu.Unlock()

	go func() {
		_ = cmd.Wait()
		p.mu.Lock()
		if p.current == cmd {
			p.current = nil
		}
		p.mu.Unlock()
	}()

	return nil
}

func (p *CommandPlayer) Stop() {
	p.mu.Lock()
	cmd := p.current
	p.current = nil
	p.mu.Unlock()

	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
}

// Playing сообщает, идет ли воспроизведение
func (p *CommandPlayer) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current != nil
}
