package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Kargones/diaglog/attrs"
)

// KeyValues конвертирует набор атрибутов журнала в атрибуты OpenTelemetry.
// Ключи идут в алфавитном порядке. Значения string, bool, int, int64 и
// float64 переносятся без преобразования, остальные форматируются как %v.
//
// Обратное направление по отношению к SpanAttrs: журнал и трасса несут
// один и тот же диагностический контекст.
//
//	ctx, span := tracer.Start(ctx, "backtest",
//		trace.WithAttributes(tracing.KeyValues(set)...))
func KeyValues(set attrs.Set) []attribute.KeyValue {
	if set.Len() == 0 {
		return nil
	}
	result := make([]attribute.KeyValue, 0, set.Len())
	for _, key := range set.Keys() {
		value, _ := set.Get(key)
		result = append(result, keyValue(key, value))
	}
	return result
}

// AnnotateSpan записывает атрибуты набора в активный span из context.
// Если активного записывающего span нет, вызов ничего не делает.
func AnnotateSpan(ctx context.Context, set attrs.Set) {
	if ctx == nil || set.Len() == 0 {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(KeyValues(set)...)
}

// keyValue подбирает типизированный attribute.KeyValue под значение атрибута.
func keyValue(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case bool:
		return attribute.Bool(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}
