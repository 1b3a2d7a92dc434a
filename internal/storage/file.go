package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type fileEntry struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// FileStore хранит все ключи в одном JSON документе на диске
type FileStore struct {
	mu   sync.Mutex
	path string
	now  Clock
}

// NewFileStore создает файловое хранилище
func NewFileStore(path string) *FileStore {
	return NewFileStoreWithClock(path, time.Now)
}

// NewFileStoreWithClock создает файловое хранилище с заданными часами
func NewFileStoreWithClock(path string, now Clock) *FileStore {
	return &FileStore{path: path, now: now}
}

func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return "", false, err
	}

	entry, exists := entries[key]
	if !exists {
		return "", false, nil
	}

	if s.expired(entry) {
		delete(entries, key)
		if err := s.write(entries); err != nil {
			return "", false, err
		}
		return "", false, nil
	}

	return entry.Value, true, nil
}

func (s *FileStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return err
	}

	entries[key] = fileEntry{Value: value, ExpiresAt: expiryFor(s.now(), ttl)}
	return s.write(entries)
}

func (s *FileStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return err
	}

	if _, exists := entries[key]; !exists {
		return nil
	}

	delete(entries, key)
	return s.write(entries)
}

func (s *FileStore) expired(entry fileEntry) bool {
	return !entry.ExpiresAt.IsZero() && !s.now().Before(entry.ExpiresAt)
}

// read читает документ; поврежденный файл считается пустым
func (s *FileStore) read() (map[string]fileEntry, error) {
	entries := make(map[string]fileEntry)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return entries, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла %s: %w", s.path, err)
	}

	if err := json.Unmarshal(data, &entries); err != nil {
		return make(map[string]fileEntry), nil
	}

	for key, entry := range entries {
		if s.expired(entry) {
			delete(entries, key)
		}
	}

	return entries, nil
}

func (s *FileStore) write(entries map[string]fileEntry) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("ошибка создания директории %s: %w", dir, err)
	}

	jsonData, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации хранилища: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".store-*.tmp")
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(jsonData); err != nil {
		tmp.Close()
		return fmt.Errorf("ошибка записи файла %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("ошибка записи файла %s: %w", tmp.Name(), err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("ошибка записи файла %s: %w", s.path, err)
	}

	return nil
}
