package store

import (
	"reflect"
	"time"
)

// Filter описывает критерии отбора документов.
// Пустой фильтр соответствует всем документам.
type Filter struct {
	// Equals — точные совпадения по полям документа.
	// Ключами могут быть как пользовательские атрибуты, так и служебные поля.
	Equals map[string]any

	// OlderThan — строгая верхняя граница FieldTimestamp: отбираются
	// документы с временем строго раньше указанного. Нулевое время
	// отключает ограничение.
	OlderThan time.Time
}

// Matches сообщает, удовлетворяет ли документ фильтру.
// Эталонная семантика контракта: адаптеры транслируют Filter в запросы
// своих хранилищ, memstore и тесты используют Matches напрямую.
//
// Заданный OlderThan переопределяет точное совпадение по FieldTimestamp:
// одновременно оба условия по времени не применяются.
func (f Filter) Matches(doc Document) bool {
	for key, want := range f.Equals {
		if key == FieldTimestamp && !f.OlderThan.IsZero() {
			continue
		}
		got, ok := doc[key]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}

	if !f.OlderThan.IsZero() {
		ts, ok := doc[FieldTimestamp].(time.Time)
		if !ok {
			return false
		}
		if !ts.Before(f.OlderThan) {
			return false
		}
	}

	return true
}
