package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load загружает конфигурацию из YAML файла
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла %s: %w", filename, err)
	}

	return Parse(data)
}

// Parse разбирает YAML и применяет значения по умолчанию
func Parse(data []byte) (*Config, error) {
	config := Default()
	err := yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга YAML: %w", err)
	}

	// Валидация конфигурации
	err = validateConfig(config)
	if err != nil {
		return nil, fmt.Errorf("ошибка валидации конфигурации: %w", err)
	}

	return config, nil
}

// Default возвращает конфигурацию, на которую накладывается YAML
func Default() *Config {
	return &Config{
		Session: SessionConfig{
			StorageKey: "interview_session_state",
			TTLMinutes: 60,
		},
		Polling: PollingConfig{
			Interval:  defaultPollInterval,
			MaxRounds: 300,
		},
		Audio: AudioConfig{
			Enabled:           true,
			PreferenceKey:     "interview_audio_muted",
			PreferenceTTLDays: 30,
			AutoplayDelay:     defaultAutoplayDelay,
		},
	}
}

// validateConfig проверяет корректность конфигурации
func validateConfig(config *Config) error {
	if config.Session.StorageKey == "" {
		return fmt.Errorf("session.storage_key не может быть пустым")
	}

	if config.Session.TTLMinutes <= 0 {
		return fmt.Errorf("session.ttl_minutes должно быть больше 0")
	}

	if config.Polling.Interval <= 0 {
		return fmt.Errorf("polling.interval должно быть больше 0")
	}

	if config.Polling.MaxRounds <= 0 {
		return fmt.Errorf("polling.max_rounds должно быть больше 0")
	}

	if config.Audio.PreferenceKey == "" {
		return fmt.Errorf("audio.preference_key не может быть пустым")
	}

	if config.Audio.PreferenceTTLDays <= 0 {
		return fmt.Errorf("audio.preference_ttl_days должно быть больше 0")
	}

	if config.Audio.AutoplayDelay < 0 {
		return fmt.Errorf("audio.autoplay_delay не может быть отрицательным")
	}

	if len(config.Fields) == 0 {
		return fmt.Errorf("должна быть задана хотя бы одна сфера (fields)")
	}

	// Проверяем сферы и должности
	seen := make(map[string]bool, len(config.Fields))
	for i, field := range config.Fields {
		if field.ID == "" {
			return fmt.Errorf("сфера %d должна иметь id", i)
		}

		if seen[field.ID] {
			return fmt.Errorf("сфера %q объявлена дважды", field.ID)
		}
		seen[field.ID] = true

		if field.Title == "" {
			return fmt.Errorf("сфера %q должна иметь title", field.ID)
		}

		if len(field.JobRoles) == 0 {
			return fmt.Errorf("сфера %q должна иметь хотя бы одну должность", field.ID)
		}

		for j, role := range field.JobRoles {
			if role == "" {
				return fmt.Errorf("сфера %q: должность %d пустая", field.ID, j)
			}
		}
	}

	return nil
}
