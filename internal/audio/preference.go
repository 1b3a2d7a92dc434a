package audio

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/IT-26211-Group-1/adultna-sub002/internal/storage"
	"go.uber.org/zap"
)

const (
	DefaultPreferenceKey = "interview_audio_muted"
	DefaultPreferenceTTL = 30 * 24 * time.Hour
)

// Preference хранит флаг отключения звука, общий для экранов правил и вопросов.
// Значение читается из хранилища один раз при создании.
type Preference struct {
	mu    sync.Mutex
	muted bool

	store storage.Store
	key   string
	ttl   time.Duration
	log   *zap.Logger
}

// LoadPreference читает флаг из хранилища; отсутствующее или поврежденное
// значение означает, что звук включен
func LoadPreference(ctx context.Context, store storage.Store, key string, ttl time.Duration, log *zap.Logger) *Preference {
	if key == "" {
		key = DefaultPreferenceKey
	}
	if ttl <= 0 {
		ttl = DefaultPreferenceTTL
	}
	if log == nil {
		log = zap.NewNop()
	}

	p := &Preference{store: store, key: key, ttl: ttl, log: log}

	raw, ok, err := store.Get(ctx, key)
	switch {
	case err != nil:
		log.Warn("не удалось прочитать настройку звука", zap.Error(err))
	case ok:
		muted, perr := strconv.ParseBool(raw)
		if perr != nil {
			log.Debug("настройка звука повреждена, используется значение по умолчанию", zap.String("value", raw))
		} else {
			p.muted = muted
		}
	}

	return p
}

func (p *Preference) Muted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.muted
}

// Set обновляет флаг в памяти и в хранилище
func (p *Preference) Set(ctx context.Context, muted bool) {
	p.mu.Lock()
	p.muted = muted
	p.mu.Unlock()

	if err := p.store.Set(ctx, p.key, strconv.FormatBool(muted), p.ttl); err != nil {
		p.log.Warn("не удалось сохранить настройку звука", zap.Error(err))
	}
}

// Toggle переключает флаг и возвращает новое значение
func (p *Preference) Toggle(ctx context.Context) bool {
	muted := !p.Muted()
	p.Set(ctx, muted)
	return muted
}
