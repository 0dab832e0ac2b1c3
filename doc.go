// Package diaglog — диагностический журнал с наследуемыми атрибутами.
//
// Каждая запись журнала помечается набором атрибутов (attrs.Set) и уровнем
// серьёзности. Логгеры наследуют атрибуты друг от друга через Derive, что
// позволяет сужать контекст по мере углубления в задачу:
//
//	base, _ := diaglog.NewConsoleLogger("pricing", "terse")
//	worker := base.Derive(attrs.KV("instrument", "US10"))
//	worker.Terse("загрузка котировок началась")
//
// Доставку записей выполняет Deliverer. В пакете три реализации:
// Console печатает на экран с учётом порога подробности, StoreDeliverer
// сохраняет каждую запись в документное хранилище (порог игнорируется),
// Composite рассылает запись нескольким приёмникам. Чтение и очистка
// сохранённого журнала — в пакете query.
//
// Один экземпляр Logger не рассчитан на конкурентные мутации (Label,
// SetThreshold): каждой горутине — свой логгер через Derive.
package diaglog
