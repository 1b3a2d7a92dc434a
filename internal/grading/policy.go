package grading

import (
	"time"

	"github.com/IT-26211-Group-1/adultna-sub002/internal/interview"
)

const (
	DefaultInterval  = time.Second
	DefaultMaxRounds = 300
)

// Policy описывает опрос: интервал между раундами, предел раундов
// и признак конечного состояния ответа
type Policy struct {
	Interval  time.Duration
	MaxRounds int
	Terminal  func(interview.AnswerStatus) bool
}

// DefaultPolicy опрашивает раз в секунду, не дольше 300 раундов (~5 минут)
func DefaultPolicy() Policy {
	return Policy{
		Interval:  DefaultInterval,
		MaxRounds: DefaultMaxRounds,
		Terminal:  interview.AnswerStatus.Terminal,
	}
}

func (p Policy) withDefaults() Policy {
	if p.Interval <= 0 {
		p.Interval = DefaultInterval
	}
	if p.MaxRounds <= 0 {
		p.MaxRounds = DefaultMaxRounds
	}
	if p.Terminal == nil {
		p.Terminal = interview.AnswerStatus.Terminal
	}
	return p
}
