package diaglog

import (
	"errors"
	"fmt"

	"github.com/Kargones/diaglog/attrs"
)

// Коды ошибок логгера в иерархическом формате: CATEGORY.SPECIFIC_ERROR.
// Позволяет grep по категориям: `grep "LOGGER\."` для всех ошибок логгера.
const (
	// ErrInvalidSource — логгер создаётся не из строки и не из носителя атрибутов
	ErrInvalidSource = "LOGGER.INVALID_SOURCE"
	// ErrInvalidLevel — недопустимый уровень записи или порог подробности
	ErrInvalidLevel = "LOGGER.INVALID_LEVEL"
	// ErrDeliveryNotImplemented — у логгера не задан способ доставки записей
	ErrDeliveryNotImplemented = "LOGGER.DELIVERY_NOT_IMPLEMENTED"
	// ErrCriticalRaised — критическая запись прервала выполнение
	ErrCriticalRaised = "LOGGER.CRITICAL_RAISED"
)

// LoggerError представляет ошибку конфигурации или использования логгера.
type LoggerError struct {
	// Code — код ошибки (одна из констант Err*)
	Code string
	// Message — человекочитаемое описание ошибки
	Message string
	// Cause — оригинальная ошибка (если есть)
	Cause error
}

// Error реализует интерфейс error.
func (e *LoggerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap возвращает оригинальную ошибку для использования с errors.Is/As.
func (e *LoggerError) Unwrap() error {
	return e.Cause
}

// ErrorCode возвращает машиночитаемый код ошибки.
func (e *LoggerError) ErrorCode() string {
	return e.Code
}

// NewLoggerError создаёт новую ошибку логгера.
func NewLoggerError(code, message string, cause error) *LoggerError {
	return &LoggerError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// CriticalError — полезная нагрузка panic при критической записи.
// Консольный приёмник печатает текст и прерывает выполнение: критическую
// запись нельзя пронаблюдать, не раскрутив стек вызывающей стороны.
// Супервизор может перехватить панику через recover и получить типизированное
// значение с текстом и атрибутами записи.
type CriticalError struct {
	// Text — текст критической записи
	Text string
	// Attrs — атрибуты записи на момент доставки
	Attrs attrs.Set
}

// Error реализует интерфейс error.
func (e *CriticalError) Error() string {
	return fmt.Sprintf("[%s] %s", ErrCriticalRaised, e.Text)
}

// ErrorCode возвращает машиночитаемый код ошибки.
func (e *CriticalError) ErrorCode() string {
	return ErrCriticalRaised
}

// NewCriticalError создаёт полезную нагрузку критической записи.
func NewCriticalError(text string, set attrs.Set) *CriticalError {
	return &CriticalError{
		Text:  text,
		Attrs: set,
	}
}

// IsInvalidSourceError проверяет, является ли ошибка ошибкой источника логгера.
// Поддерживает wrapped errors через errors.As.
func IsInvalidSourceError(err error) bool {
	var logErr *LoggerError
	if errors.As(err, &logErr) {
		return logErr.Code == ErrInvalidSource
	}
	return false
}

// IsInvalidLevelError проверяет, является ли ошибка ошибкой уровня или порога.
// Поддерживает wrapped errors через errors.As.
func IsInvalidLevelError(err error) bool {
	var logErr *LoggerError
	if errors.As(err, &logErr) {
		return logErr.Code == ErrInvalidLevel
	}
	return false
}

// IsNotImplementedError проверяет, является ли ошибка отсутствием способа доставки.
// Поддерживает wrapped errors через errors.As.
func IsNotImplementedError(err error) bool {
	var logErr *LoggerError
	if errors.As(err, &logErr) {
		return logErr.Code == ErrDeliveryNotImplemented
	}
	return false
}

// IsCriticalError проверяет, является ли значение критической записью.
// Поддерживает wrapped errors через errors.As.
func IsCriticalError(err error) bool {
	var critErr *CriticalError
	return errors.As(err, &critErr)
}
