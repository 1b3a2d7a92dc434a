package config

import "time"

// Config представляет конфигурацию тренажёра интервью
type Config struct {
	Session    SessionConfig `yaml:"session"`
	Polling    PollingConfig `yaml:"polling"`
	Audio      AudioConfig   `yaml:"audio"`
	Guidelines []string      `yaml:"guidelines"`
	Fields     []Field       `yaml:"fields"`
}

// SessionConfig содержит настройки хранения прогресса сессии
type SessionConfig struct {
	StorageKey string `yaml:"storage_key"`
	TTLMinutes int    `yaml:"ttl_minutes"`
}

// PollingConfig содержит настройки опроса статуса оценки ответов
type PollingConfig struct {
	Interval  time.Duration `yaml:"interval"`
	MaxRounds int           `yaml:"max_rounds"`
}

// AudioConfig содержит настройки озвучивания вопросов
type AudioConfig struct {
	Enabled           bool          `yaml:"enabled"`
	PreferenceKey     string        `yaml:"preference_key"`
	PreferenceTTLDays int           `yaml:"preference_ttl_days"`
	AutoplayDelay     time.Duration `yaml:"autoplay_delay"`
	PlayerCommand     []string      `yaml:"player_command"`
}

// Field представляет сферу деятельности с набором должностей
type Field struct {
	ID       string   `yaml:"id"`
	Title    string   `yaml:"title"`
	JobRoles []string `yaml:"job_roles"`
}

// Методы для удобного доступа к конфигурации
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLMinutes) * time.Minute
}

func (c *Config) PreferenceTTL() time.Duration {
	return time.Duration(c.Audio.PreferenceTTLDays) * 24 * time.Hour
}

// FindField возвращает сферу по идентификатору
func (c *Config) FindField(id string) (Field, bool) {
	for _, f := range c.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}
