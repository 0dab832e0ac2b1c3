package config

import (
	"errors"
	"fmt"
)

// Коды ошибок конфигурации.
const (
	// ErrConfigLoad — ошибка чтения или разбора источника конфигурации
	ErrConfigLoad = "CONFIG.LOAD_FAILED"
	// ErrConfigValidate — конфигурация загружена, но содержит недопустимые значения
	ErrConfigValidate = "CONFIG.VALIDATION_FAILED"
)

// ConfigError представляет ошибку загрузки или проверки конфигурации.
type ConfigError struct {
	// Code — код ошибки (одна из констант ErrConfig*)
	Code string
	// Message — человекочитаемое описание ошибки
	Message string
	// Cause — оригинальная ошибка (если есть)
	Cause error
}

// Error реализует интерфейс error.
func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap возвращает оригинальную ошибку для использования с errors.Is/As.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// ErrorCode возвращает машиночитаемый код ошибки.
func (e *ConfigError) ErrorCode() string {
	return e.Code
}

// NewConfigError создаёт новую ошибку конфигурации.
func NewConfigError(code, message string, cause error) *ConfigError {
	return &ConfigError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsLoadError проверяет, является ли ошибка ошибкой загрузки конфигурации.
// Поддерживает wrapped errors через errors.As.
func IsLoadError(err error) bool {
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return cfgErr.Code == ErrConfigLoad
	}
	return false
}

// IsValidationError проверяет, является ли ошибка ошибкой проверки конфигурации.
// Поддерживает wrapped errors через errors.As.
func IsValidationError(err error) bool {
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return cfgErr.Code == ErrConfigValidate
	}
	return false
}
