package tracing

import "context"

// traceIDKey - приватный тип ключа для хранения trace ID в context.
// Использование приватного типа предотвращает коллизии с другими пакетами.
type traceIDKey struct{}

// WithTraceID добавляет trace ID в context.
// Возвращает новый context с установленным trace ID.
//
// Пример:
//
//	ctx := tracing.WithTraceID(ctx, tracing.GenerateTraceID())
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// TraceIDFromContext извлекает trace ID из context.
// Возвращает пустую строку, если trace ID не установлен.
//
// Пример:
//
//	traceID := tracing.TraceIDFromContext(ctx)
//	if traceID == "" {
//	    traceID = tracing.GenerateTraceID()
//	}
func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if traceID, ok := ctx.Value(traceIDKey{}).(string); ok {
		return traceID
	}
	return ""
}
