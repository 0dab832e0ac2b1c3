package tracing

import (
	"context"
	"crypto/rand"

	"go.opentelemetry.io/otel/trace"

	"github.com/Kargones/diaglog/attrs"
)

// Имена атрибутов журнала, в которые записываются идентификаторы трассировки.
const (
	// AttrTraceID - имя атрибута с trace ID.
	AttrTraceID = "trace_id"
	// AttrSpanID - имя атрибута со span ID.
	AttrSpanID = "span_id"
)

// SpanAttrs извлекает идентификаторы трассировки из context в виде
// атрибутов журнала. Порядок источников:
//  1. Активный OpenTelemetry span context - возвращает trace_id и span_id.
//  2. Trace ID, установленный через WithTraceID - возвращает только trace_id.
//  3. Ни того ни другого нет - возвращает nil.
//
// Результат передаётся в Derive для пометки всех последующих записей:
//
//	log := base.Derive(tracing.SpanAttrs(ctx)...)
//	log.Msg("запрос принят")
func SpanAttrs(ctx context.Context) []attrs.Attr {
	if ctx == nil {
		return nil
	}
	sc := trace.SpanContextFromContext(ctx)
	if sc.HasTraceID() {
		result := []attrs.Attr{attrs.KV(AttrTraceID, sc.TraceID().String())}
		if sc.HasSpanID() {
			result = append(result, attrs.KV(AttrSpanID, sc.SpanID().String()))
		}
		return result
	}
	if traceID := TraceIDFromContext(ctx); traceID != "" {
		return []attrs.Attr{attrs.KV(AttrTraceID, traceID)}
	}
	return nil
}

// ContextWithRemoteTraceID создаёт в context удалённый OpenTelemetry span
// context с заданным trace ID. Используется, когда trace ID получен извне
// (например, из заголовка запроса) и последующие span должны попасть
// в ту же трассу.
//
// traceID должен быть 32-символьным hex string (см. GenerateTraceID).
// При некорректном traceID возвращает исходный context и ошибку.
//
// Span ID для удалённого context синтезируется случайным образом:
// источник сообщает только trace ID, а валидный span context обязан
// содержать оба идентификатора.
func ContextWithRemoteTraceID(ctx context.Context, traceID string) (context.Context, error) {
	tid, err := trace.TraceIDFromHex(traceID)
	if err != nil {
		return ctx, err
	}
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: tid,
		SpanID:  randomSpanID(),
		Remote:  true,
	})
	return trace.ContextWithRemoteSpanContext(ctx, sc), nil
}

// randomSpanID генерирует случайный span ID (8 байт).
// При ошибке crypto/rand использует fallback-счётчик, чтобы span ID
// оставался ненулевым и span context - валидным.
func randomSpanID() trace.SpanID {
	var sid trace.SpanID
	if _, err := rand.Read(sid[:]); err != nil {
		counter := fallbackCounter.Add(1)
		for i := 0; i < 8; i++ {
			sid[i] = byte(counter >> (8 * (7 - i)))
		}
	}
	return sid
}
