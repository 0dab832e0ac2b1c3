package diaglog

import "github.com/Kargones/diaglog/attrs"

// Deliverer определяет способ доставки записей журнала.
// Реализации: Console (экран с порогом подробности), StoreDeliverer
// (документное хранилище, порог игнорируется), Composite (веер по
// нескольким приёмникам), NopDeliverer (отброс для тестов).
//
// Deliver получает порог логгера отдельным аргументом: решение о
// подавлении записи принимает приёмник, а не логгер. Благодаря этому
// хранилище сохраняет записи всех уровней независимо от порога.
type Deliverer interface {
	// Deliver обрабатывает одну запись. set — итоговые атрибуты записи
	// (атрибуты логгера, объединённые с разовыми атрибутами вызова).
	Deliver(level Level, threshold Threshold, text string, set attrs.Set) error
}

// AttributeCarrier — источник атрибутов для создания логгера.
// Logger реализует этот интерфейс сам, поэтому новый логгер можно
// создавать как из строки-идентификатора, так и из другого логгера.
type AttributeCarrier interface {
	// Attributes возвращает набор атрибутов носителя.
	Attributes() attrs.Set
}
