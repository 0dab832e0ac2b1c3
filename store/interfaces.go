// Package store определяет контракт документного хранилища журнала.
//
// Хранилище оперирует непрозрачными документами: произвольные атрибуты
// записи плюс три служебных поля с подчёркиванием в имени. Контракт
// разбит на узкие интерфейсы (ISP): пишущей стороне нужны только
// Inserter и Indexer, читающей — Finder и Remover.
//
// Реализации: memstore (in-memory), mongostore (MongoDB),
// sqlstore (MS SQL Server), pgstore (PostgreSQL).
package store

import "context"

// Document — один документ журнала: атрибуты записи плюс служебные поля.
type Document map[string]any

// Служебные поля документа. Подчёркивание в имени снижает вероятность
// конфликта с пользовательскими атрибутами.
const (
	// FieldTimestamp — момент доставки записи (time.Time).
	FieldTimestamp = "_Timestamp"
	// FieldLevel — текстовая метка уровня записи.
	FieldLevel = "_Level"
	// FieldText — текст сообщения.
	FieldText = "_Text"
)

// DefaultCollection — имя коллекции (таблицы) журнала по умолчанию.
const DefaultCollection = "Logs"

// Inserter сохраняет документы журнала.
type Inserter interface {
	// Insert сохраняет один документ.
	Insert(ctx context.Context, doc Document) error
}

// Finder выбирает документы журнала по фильтру.
type Finder interface {
	// Find возвращает документы, удовлетворяющие фильтру.
	// Порядок результатов не определён контрактом: сортировка —
	// обязанность вызывающей стороны.
	Find(ctx context.Context, f Filter) ([]Document, error)
}

// Remover удаляет документы журнала по фильтру.
type Remover interface {
	// Remove удаляет все документы, удовлетворяющие фильтру.
	// Операция необратима.
	Remove(ctx context.Context, f Filter) error
}

// Indexer обслуживает индексы хранилища.
type Indexer interface {
	// EnsureIndex создаёт составной индекс по перечисленным служебным
	// полям, если он ещё не существует. Операция идемпотентна и
	// безопасна при одновременном вызове из нескольких процессов.
	EnsureIndex(ctx context.Context, keys ...string) error
}

// WriteStore — контракт пишущей стороны (приёмник записей).
type WriteStore interface {
	Inserter
	Indexer
}

// ReadStore — контракт читающей стороны (выборка и обслуживание).
type ReadStore interface {
	Finder
	Remover
}

// Store объединяет полный контракт хранилища.
type Store interface {
	Inserter
	Finder
	Remover
	Indexer
}
