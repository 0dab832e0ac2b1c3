package store

import (
	"errors"
	"fmt"
)

// Коды ошибок хранилища журнала.
const (
	// ErrStoreConnect — ошибка подключения к хранилищу
	ErrStoreConnect = "STORE.CONNECT_FAILED"
	// ErrStoreInsert — ошибка сохранения документа
	ErrStoreInsert = "STORE.INSERT_FAILED"
	// ErrStoreFind — ошибка выборки документов
	ErrStoreFind = "STORE.FIND_FAILED"
	// ErrStoreRemove — ошибка удаления документов
	ErrStoreRemove = "STORE.REMOVE_FAILED"
	// ErrStoreIndex — ошибка создания индекса
	ErrStoreIndex = "STORE.INDEX_FAILED"
	// ErrStoreDecode — ошибка декодирования документа из хранилища
	ErrStoreDecode = "STORE.DECODE_FAILED"
	// ErrStoreValidation — ошибка валидации параметров адаптера
	ErrStoreValidation = "STORE.VALIDATION_FAILED"
)

// StoreError представляет ошибку адаптера хранилища.
// Приёмники и читатель журнала пропускают такие ошибки наверх без
// дополнительного оборачивания.
type StoreError struct {
	// Code — код ошибки (одна из констант ErrStore*)
	Code string
	// Message — человекочитаемое описание ошибки
	Message string
	// Cause — оригинальная ошибка драйвера (если есть)
	Cause error
}

// Error реализует интерфейс error.
func (e *StoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap возвращает оригинальную ошибку для использования с errors.Is/As.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// ErrorCode возвращает машиночитаемый код ошибки.
func (e *StoreError) ErrorCode() string {
	return e.Code
}

// NewStoreError создаёт новую ошибку хранилища.
func NewStoreError(code, message string, cause error) *StoreError {
	return &StoreError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsConnectError проверяет, является ли ошибка ошибкой подключения.
// Поддерживает wrapped errors через errors.As.
func IsConnectError(err error) bool {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Code == ErrStoreConnect
	}
	return false
}

// IsInsertError проверяет, является ли ошибка ошибкой сохранения.
// Поддерживает wrapped errors через errors.As.
func IsInsertError(err error) bool {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Code == ErrStoreInsert
	}
	return false
}

// IsFindError проверяет, является ли ошибка ошибкой выборки.
// Поддерживает wrapped errors через errors.As.
func IsFindError(err error) bool {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Code == ErrStoreFind
	}
	return false
}

// IsRemoveError проверяет, является ли ошибка ошибкой удаления.
// Поддерживает wrapped errors через errors.As.
func IsRemoveError(err error) bool {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Code == ErrStoreRemove
	}
	return false
}

// IsIndexError проверяет, является ли ошибка ошибкой создания индекса.
// Поддерживает wrapped errors через errors.As.
func IsIndexError(err error) bool {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Code == ErrStoreIndex
	}
	return false
}

// IsDecodeError проверяет, является ли ошибка ошибкой декодирования документа.
// Поддерживает wrapped errors через errors.As.
func IsDecodeError(err error) bool {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Code == ErrStoreDecode
	}
	return false
}

// IsValidationError проверяет, является ли ошибка ошибкой валидации параметров.
// Поддерживает wrapped errors через errors.As.
func IsValidationError(err error) bool {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Code == ErrStoreValidation
	}
	return false
}
