package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden - предикат авторизации запретил изменение еще до запроса.
	ErrForbidden = errors.New("not allowed to modify this entry")
	// ErrNotAuthenticated - действие требует входа.
	ErrNotAuthenticated = errors.New("login required")
)

// NetworkError - ответ от бэкенда не получен (сеть, таймаут, отмена).
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError - бэкенд ответил кодом 4xx/5xx.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("server error: %d: %s", e.Status, e.Message)
}

// Is позволяет проверять errors.Is(err, ErrNotFound) и errors.Is(err, ErrUnauthorized).
func (e *ServerError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	}
	return false
}

// ValidationError - данные формы не прошли проверку на клиенте.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DeserializationError - сохраненные данные не удалось разобрать.
type DeserializationError struct {
	Key string
	Err error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("stored %q is malformed: %v", e.Key, e.Err)
}

func (e *DeserializationError) Unwrap() error { return e.Err }

// IsNetwork сообщает, что ошибка случилась до получения ответа.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// StatusOf возвращает HTTP-статус ошибки сервера или 0.
func StatusOf(err error) int {
	var se *ServerError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}
