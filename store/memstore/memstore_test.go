package memstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kargones/diaglog/store"
)

// TestStore_InsertAndFind проверяет сохранение и выборку документов.
func TestStore_InsertAndFind(t *testing.T) {
	ctx := context.Background()
	st := New()

	doc := store.Document{
		store.FieldText: "запись",
		"type":          "system",
	}
	require.NoError(t, st.Insert(ctx, doc))

	found, err := st.Find(ctx, store.Filter{})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "запись", found[0][store.FieldText])
	assert.Equal(t, "system", found[0]["type"])
}

// TestStore_InsertCopies проверяет что хранилище не зависит от исходного документа.
func TestStore_InsertCopies(t *testing.T) {
	ctx := context.Background()
	st := New()

	doc := store.Document{"type": "system"}
	require.NoError(t, st.Insert(ctx, doc))
	doc["type"] = "изменён снаружи"

	found, err := st.Find(ctx, store.Filter{})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "system", found[0]["type"], "изменение аргумента после Insert не должно менять хранилище")
}

// TestStore_FindReturnsCopies проверяет что результат выборки не связан с хранилищем.
func TestStore_FindReturnsCopies(t *testing.T) {
	ctx := context.Background()
	st := New()
	require.NoError(t, st.Insert(ctx, store.Document{"type": "system"}))

	found, err := st.Find(ctx, store.Filter{})
	require.NoError(t, err)
	found[0]["type"] = "изменён снаружи"

	again, err := st.Find(ctx, store.Filter{})
	require.NoError(t, err)
	assert.Equal(t, "system", again[0]["type"], "изменение результата Find не должно менять хранилище")
}

// TestStore_FindByEquals проверяет выборку по точному совпадению атрибутов.
func TestStore_FindByEquals(t *testing.T) {
	ctx := context.Background()
	st := New()
	require.NoError(t, st.Insert(ctx, store.Document{"type": "system", "stage": "first"}))
	require.NoError(t, st.Insert(ctx, store.Document{"type": "system", "stage": "second"}))
	require.NoError(t, st.Insert(ctx, store.Document{"type": "billing", "stage": "first"}))

	found, err := st.Find(ctx, store.Filter{Equals: map[string]any{"type": "system", "stage": "first"}})
	require.NoError(t, err)
	require.Len(t, found, 1, "должен вернуться единственный документ с обоими атрибутами")
	assert.Equal(t, "system", found[0]["type"])
	assert.Equal(t, "first", found[0]["stage"])
}

// TestStore_FindOlderThan проверяет строгую границу выборки по времени.
func TestStore_FindOlderThan(t *testing.T) {
	ctx := context.Background()
	st := New()
	cutoff := time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, st.Insert(ctx, store.Document{store.FieldTimestamp: cutoff.Add(-time.Second), store.FieldText: "старше"}))
	require.NoError(t, st.Insert(ctx, store.Document{store.FieldTimestamp: cutoff, store.FieldText: "ровно на границе"}))
	require.NoError(t, st.Insert(ctx, store.Document{store.FieldTimestamp: cutoff.Add(time.Second), store.FieldText: "новее"}))

	found, err := st.Find(ctx, store.Filter{OlderThan: cutoff})
	require.NoError(t, err)
	require.Len(t, found, 1, "граница строгая: документ с временем равным границе не подходит")
	assert.Equal(t, "старше", found[0][store.FieldText])
}

// TestStore_Remove проверяет удаление по фильтру.
func TestStore_Remove(t *testing.T) {
	ctx := context.Background()
	st := New()
	require.NoError(t, st.Insert(ctx, store.Document{"type": "system"}))
	require.NoError(t, st.Insert(ctx, store.Document{"type": "billing"}))

	require.NoError(t, st.Remove(ctx, store.Filter{Equals: map[string]any{"type": "system"}}))

	found, err := st.Find(ctx, store.Filter{})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "billing", found[0]["type"])
}

// TestStore_RemoveOlderThan проверяет очистку по возрасту.
func TestStore_RemoveOlderThan(t *testing.T) {
	ctx := context.Background()
	st := New()
	cutoff := time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, st.Insert(ctx, store.Document{store.FieldTimestamp: cutoff.AddDate(-1, 0, 0)}))
	require.NoError(t, st.Insert(ctx, store.Document{store.FieldTimestamp: cutoff.Add(time.Hour)}))

	require.NoError(t, st.Remove(ctx, store.Filter{OlderThan: cutoff}))

	assert.Equal(t, 1, st.Len(), "должен удалиться только документ старше границы")
}

// TestStore_EnsureIndex_Idempotent проверяет идемпотентность создания индекса.
func TestStore_EnsureIndex_Idempotent(t *testing.T) {
	ctx := context.Background()
	st := New()

	require.NoError(t, st.EnsureIndex(ctx, store.FieldTimestamp, store.FieldLevel))
	require.NoError(t, st.EnsureIndex(ctx, store.FieldTimestamp, store.FieldLevel))
	require.NoError(t, st.EnsureIndex(ctx, store.FieldTimestamp))

	indexes := st.Indexes()
	require.Len(t, indexes, 2, "повторный запрос того же индекса не должен создавать дубликат")
	assert.Equal(t, []string{store.FieldTimestamp, store.FieldLevel}, indexes[0])
	assert.Equal(t, []string{store.FieldTimestamp}, indexes[1])
}

// TestStore_EnsureIndex_Concurrent проверяет создание индекса наперегонки.
func TestStore_EnsureIndex_Concurrent(t *testing.T) {
	const numGoroutines = 20
	ctx := context.Background()
	st := New()

	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			assert.NoError(t, st.EnsureIndex(ctx, store.FieldTimestamp, store.FieldLevel))
		}()
	}
	wg.Wait()

	assert.Len(t, st.Indexes(), 1, "одновременные запросы должны дать единственный индекс")
}

// TestStore_ContextCancelled проверяет что отменённый context прерывает операции.
func TestStore_ContextCancelled(t *testing.T) {
	st := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, st.Insert(ctx, store.Document{}))
	_, err := st.Find(ctx, store.Filter{})
	assert.Error(t, err)
	assert.Error(t, st.Remove(ctx, store.Filter{}))
	assert.Error(t, st.EnsureIndex(ctx, store.FieldTimestamp))
}

// TestStore_ConcurrentInsertAndFind проверяет потокобезопасность смешанной нагрузки.
func TestStore_ConcurrentInsertAndFind(t *testing.T) {
	const numGoroutines = 20
	ctx := context.Background()
	st := New()

	var wg sync.WaitGroup
	wg.Add(numGoroutines * 2)
	for i := 0; i < numGoroutines; i++ {
		go func(n int) {
			defer wg.Done()
			assert.NoError(t, st.Insert(ctx, store.Document{"worker": n}))
		}(i)
		go func() {
			defer wg.Done()
			_, err := st.Find(ctx, store.Filter{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, numGoroutines, st.Len())
}
