// Package tracing предоставляет функции для генерации и управления trace ID.
// Trace ID используется для корреляции записей журнала одной операции:
// логгер, помеченный атрибутом trace_id, прокидывает его во все записи.
//
// Формат trace ID: 32-символьный hex string (16 байт), например:
//
//	"a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6"
//
// Формат совместим с W3C Trace Context: через SpanAttrs и
// ContextWithRemoteTraceID идентификаторы обмениваются с OpenTelemetry.
//
// Пример использования:
//
//	traceID := tracing.GenerateTraceID()
//	ctx := tracing.WithTraceID(ctx, traceID)
//	log := base.Derive(tracing.SpanAttrs(ctx)...)
package tracing

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"
)

// fallbackCounter используется для генерации уникальных fallback ID.
// Является atomic-счётчиком, не может быть константой.
var fallbackCounter atomic.Uint64

// GenerateTraceID генерирует уникальный trace ID.
// Формат: 32 символа hex (16 байт), например: "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6".
//
// Использует crypto/rand для криптографически безопасной генерации.
// При ошибке crypto/rand (что практически невозможно на современных системах)
// возвращает fallback значение на основе timestamp и счётчика.
func GenerateTraceID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fallbackTraceID()
	}
	return hex.EncodeToString(b)
}

// fallbackTraceID генерирует ID на основе текущего времени и счётчика.
// Используется только если crypto/rand недоступен.
//
// %016x для uint64 даёт ровно 16 hex символов, поэтому результат —
// всегда ровно 32 символа, как и у основного пути.
func fallbackTraceID() string {
	counter := fallbackCounter.Add(1)
	timestamp := uint64(time.Now().UnixNano())
	return fmt.Sprintf("%016x%016x", timestamp, counter)
}
