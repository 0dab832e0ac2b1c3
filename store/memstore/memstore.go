// Package memstore реализует хранилище журнала в памяти процесса.
//
// Используется как бэкенд по умолчанию в разработке и как эталон
// контракта в тестах: поведение Find и Remove напрямую задаётся
// store.Filter.Matches.
package memstore

import (
	"context"
	"sync"

	"github.com/Kargones/diaglog/store"
)

// Store — потокобезопасное хранилище документов в памяти.
// Нулевое значение непригодно, используйте New.
type Store struct {
	mu      sync.Mutex
	docs    []store.Document
	indexes [][]string
}

// Проверка соответствия интерфейсу.
var _ store.Store = (*Store)(nil)

// New создаёт пустое хранилище.
func New() *Store {
	return &Store{}
}

// Insert сохраняет копию документа.
// Последующие изменения аргумента не затрагивают хранилище.
func (s *Store) Insert(ctx context.Context, doc store.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, copyDocument(doc))
	return nil
}

// Find возвращает копии документов, удовлетворяющих фильтру.
// Порядок соответствует порядку вставки.
func (s *Store) Find(ctx context.Context, f store.Filter) ([]store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var result []store.Document
	for _, doc := range s.docs {
		if f.Matches(doc) {
			result = append(result, copyDocument(doc))
		}
	}
	return result, nil
}

// Remove удаляет все документы, удовлетворяющие фильтру.
func (s *Store) Remove(ctx context.Context, f store.Filter) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.docs[:0]
	for _, doc := range s.docs {
		if !f.Matches(doc) {
			kept = append(kept, doc)
		}
	}
	// обнуляем хвост, чтобы не удерживать удалённые документы
	for i := len(kept); i < len(s.docs); i++ {
		s.docs[i] = nil
	}
	s.docs = kept
	return nil
}

// EnsureIndex запоминает запрошенный индекс. Повторный запрос того же
// набора полей — no-op: операция идемпотентна, как и у настоящих
// хранилищ.
func (s *Store) EnsureIndex(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.indexes {
		if equalKeys(existing, keys) {
			return nil
		}
	}
	recorded := make([]string, len(keys))
	copy(recorded, keys)
	s.indexes = append(s.indexes, recorded)
	return nil
}

// Indexes возвращает список созданных индексов. Для проверок в тестах.
func (s *Store) Indexes() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([][]string, len(s.indexes))
	for i, keys := range s.indexes {
		result[i] = append([]string(nil), keys...)
	}
	return result
}

// Len возвращает количество документов в хранилище.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

func copyDocument(doc store.Document) store.Document {
	out := make(store.Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

func equalKeys(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
