package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/IT-26211-Group-1/adultna-sub002/internal/interview"
)

const (
	resultPrefix = "interview_"
	resultExt    = ".json"
)

// SaveResult сохраняет результат сессии в JSON файл
func SaveResult(dir string, result *InterviewResult) error {
	if result == nil || result.SessionID == "" {
		return fmt.Errorf("результат без session_id не может быть сохранен")
	}

	// Создаем директорию если её нет
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return fmt.Errorf("ошибка создания директории %s: %w", dir, err)
	}

	path := resultPath(dir, result.SessionID)

	// Сериализуем результат в JSON с отступами
	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации результата: %w", err)
	}

	err = os.WriteFile(path, jsonData, 0644)
	if err != nil {
		return fmt.Errorf("ошибка записи файла %s: %w", path, err)
	}

	return nil
}

// LoadResult загружает результат сессии из JSON файла
func LoadResult(dir, sessionID string) (*InterviewResult, error) {
	path := resultPath(dir, sessionID)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла %s: %w", path, err)
	}

	var result InterviewResult
	err = json.Unmarshal(data, &result)
	if err != nil {
		return nil, fmt.Errorf("ошибка десериализации JSON: %w", err)
	}

	return &result, nil
}

// ListResults возвращает идентификаторы всех сохраненных сессий
func ListResults(dir string) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return []string{}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения директории %s: %w", dir, err)
	}

	results := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != resultExt || !strings.HasPrefix(name, resultPrefix) {
			continue
		}
		results = append(results, strings.TrimSuffix(strings.TrimPrefix(name, resultPrefix), resultExt))
	}

	return results, nil
}

// Summarize считает агрегаты по оцененным ответам
func Summarize(answers []GradedAnswer) ResultSummary {
	var summary ResultSummary
	var total float64

	for _, ga := range answers {
		switch ga.Answer.Status {
		case interview.StatusCompleted:
			summary.Completed++
			if ga.Answer.Grading != nil {
				total += ga.Answer.Grading.OverallScore
			}
		case interview.StatusFailed:
			summary.Failed++
		}
	}

	if summary.Completed > 0 {
		summary.AverageScore = total / float64(summary.Completed)
	}

	return summary
}

func resultPath(dir, sessionID string) string {
	return filepath.Join(dir, resultPrefix+filepath.Base(sessionID)+resultExt)
}
