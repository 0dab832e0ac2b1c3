// Package attrs предоставляет неизменяемые наборы атрибутов для
// диагностических записей.
//
// Set — это снимок пар ключ-значение: операции Merge и With всегда
// возвращают новый набор и никогда не изменяют исходные. Это позволяет
// безопасно наследовать атрибуты между логгерами без скрытых связей.
package attrs

// Attr представляет одну пару ключ-значение.
// Заменяет свободный список аргументов: ключи и значения не могут
// рассинхронизироваться на вызывающей стороне.
type Attr struct {
	// Key — имя атрибута.
	Key string
	// Value — произвольное значение. Для вывода используется формат %v.
	Value any
}

// KV создаёт атрибут. Сокращение для литерала Attr.
//
//	logger.Derive(attrs.KV("stage", "loading"))
func KV(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}
