package api

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized возвращается на 401/403: нужна повторная авторизация
	ErrUnauthorized = errors.New("требуется авторизация")

	// ErrNotFound возвращается на 404
	ErrNotFound = errors.New("не найдено")

	// ErrRequestTimeout возвращается, когда запрос не уложился в таймаут
	ErrRequestTimeout = errors.New("превышено время ожидания запроса")
)

// ValidationError описывает некорректный или неполный ввод. Не повторяется.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("ошибка валидации: %s: %s", e.Field, e.Message)
	}
	return "ошибка валидации: " + e.Message
}

// NewValidationError создает ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NetworkError описывает сбой соединения или ошибку сервера
type NetworkError struct {
	Op         string
	StatusCode int
	Cause      error
	Retryable  bool
}

func (e *NetworkError) Error() string {
	msg := "сетевая ошибка: " + e.Op
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": HTTP %d", e.StatusCode)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// IsValidation сообщает, что ошибка вызвана некорректным вводом
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNetwork сообщает, что ошибка вызвана сетью или сервером
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
