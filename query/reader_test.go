package query

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kargones/diaglog/attrs"
	"github.com/Kargones/diaglog/metrics"
	"github.com/Kargones/diaglog/store"
	"github.com/Kargones/diaglog/store/memstore"
)

// testNow — фиксированный момент "сейчас" для расчёта границ выборки.
var testNow = time.Date(2015, 6, 15, 12, 0, 0, 0, time.UTC)

// newTestReader создаёт читателя поверх памятного хранилища с фиксированным
// источником времени.
func newTestReader(t *testing.T, st store.ReadStore) *Reader {
	t.Helper()

	r, err := NewReader(st, ReaderOptions{Now: func() time.Time { return testNow }})
	require.NoError(t, err, "создание читателя не должно возвращать ошибку")
	return r
}

// insertDoc кладёт в хранилище документ с заданным временем и атрибутами.
func insertDoc(t *testing.T, st *memstore.Store, ts time.Time, severity, text string, attributes map[string]any) {
	t.Helper()

	doc := store.Document{
		store.FieldTimestamp: ts,
		store.FieldLevel:     severity,
		store.FieldText:      text,
	}
	for k, v := range attributes {
		doc[k] = v
	}
	require.NoError(t, st.Insert(context.Background(), doc))
}

// TestNewReader_RequiresStore проверяет, что читатель не создаётся без хранилища.
func TestNewReader_RequiresStore(t *testing.T) {
	_, err := NewReader(nil, ReaderOptions{})

	assert.ErrorIs(t, err, ErrReadStoreRequired)
}

// TestReader_Fetch_LookbackBoundary проверяет строгую границу выборки:
// запись ровно на границе не возвращается.
func TestReader_Fetch_LookbackBoundary(t *testing.T) {
	st := memstore.New()
	insertDoc(t, st, testNow.AddDate(0, 0, -2), "", "двухдневная", nil)
	insertDoc(t, st, testNow.AddDate(0, 0, -1), "", "ровно на границе", nil)
	insertDoc(t, st, testNow.Add(-time.Hour), "", "часовая", nil)

	r := newTestReader(t, st)

	records, err := r.Fetch(context.Background(), attrs.New(), DefaultLookbackDays)
	require.NoError(t, err)

	require.Len(t, records, 1, "при lookback=1 видна только запись старше суток")
	assert.Equal(t, "двухдневная", records[0].Text)
}

// TestReader_Fetch_ZeroLookbackSeesEverything проверяет, что lookback=0
// охватывает все записи до текущего мгновения.
func TestReader_Fetch_ZeroLookbackSeesEverything(t *testing.T) {
	st := memstore.New()
	insertDoc(t, st, testNow.AddDate(0, 0, -2), "", "двухдневная", nil)
	insertDoc(t, st, testNow.Add(-time.Hour), "", "часовая", nil)
	insertDoc(t, st, testNow, "", "ровно сейчас", nil)

	r := newTestReader(t, st)

	records, err := r.Fetch(context.Background(), attrs.New(), 0)
	require.NoError(t, err)

	require.Len(t, records, 2, "запись с временем ровно 'сейчас' не попадает под строгую границу")
	assert.Equal(t, "двухдневная", records[0].Text)
	assert.Equal(t, "часовая", records[1].Text)
}

// TestReader_Fetch_FiltersByAttributes проверяет точное совпадение атрибутов.
func TestReader_Fetch_FiltersByAttributes(t *testing.T) {
	st := memstore.New()
	old := testNow.AddDate(0, 0, -3)
	insertDoc(t, st, old, "", "торговая", map[string]any{"type": "trading", "instance": "primary"})
	insertDoc(t, st, old.Add(time.Second), "", "системная", map[string]any{"type": "system"})

	r := newTestReader(t, st)

	records, err := r.Fetch(context.Background(), attrs.New(attrs.KV("type", "trading")), DefaultLookbackDays)
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "торговая", records[0].Text)
	instance, ok := records[0].Attributes.Get("instance")
	require.True(t, ok, "несовпавшие с фильтром атрибуты остаются в записи")
	assert.Equal(t, "primary", instance)
}

// TestReader_Fetch_SortedAscending проверяет сортировку по времени по возрастанию.
func TestReader_Fetch_SortedAscending(t *testing.T) {
	st := memstore.New()
	base := testNow.AddDate(0, 0, -5)
	insertDoc(t, st, base.Add(2*time.Minute), "", "третья", nil)
	insertDoc(t, st, base, "", "первая", nil)
	insertDoc(t, st, base.Add(time.Minute), "", "вторая", nil)

	r := newTestReader(t, st)

	records, err := r.Fetch(context.Background(), attrs.New(), DefaultLookbackDays)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "первая", records[0].Text)
	assert.Equal(t, "вторая", records[1].Text)
	assert.Equal(t, "третья", records[2].Text)
}

// TestReader_Fetch_RecordShape проверяет разбор документа: служебные поля
// уходят в именованные поля записи, остаток — в атрибуты.
func TestReader_Fetch_RecordShape(t *testing.T) {
	st := memstore.New()
	ts := testNow.AddDate(0, 0, -2)
	insertDoc(t, st, ts, "[Warning]", "предупреждение", map[string]any{"type": "system", "stage": "warmup"})

	r := newTestReader(t, st)

	records, err := r.Fetch(context.Background(), attrs.New(), DefaultLookbackDays)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.True(t, rec.Timestamp.Equal(ts))
	assert.Equal(t, "[Warning]", rec.Severity)
	assert.Equal(t, "предупреждение", rec.Text)
	assert.Equal(t, 2, rec.Attributes.Len(), "служебные поля не должны попадать в атрибуты")
	assert.Equal(t, "stage: warmup, type: system", rec.Attributes.String())
}

// failingStore возвращает заданную ошибку из всех операций чтения.
type failingStore struct {
	err error
}

func (f *failingStore) Find(ctx context.Context, _ store.Filter) ([]store.Document, error) {
	return nil, f.err
}

func (f *failingStore) Remove(ctx context.Context, _ store.Filter) error {
	return f.err
}

// TestReader_Fetch_StoreErrorPassedThrough проверяет, что ошибка хранилища
// доходит до вызывающего без дополнительной обёртки.
func TestReader_Fetch_StoreErrorPassedThrough(t *testing.T) {
	storeErr := store.NewStoreError(store.ErrStoreFind, "выборка не удалась", nil)
	r := newTestReader(t, &failingStore{err: storeErr})

	_, err := r.Fetch(context.Background(), attrs.New(), DefaultLookbackDays)

	require.Error(t, err)
	assert.Equal(t, storeErr, err, "ошибка должна вернуться как есть")
	assert.True(t, store.IsFindError(err))
}

// TestReader_FetchAsText_Format проверяет текстовую форму записи:
// время, атрибуты, метка уровня, текст через пробел.
func TestReader_FetchAsText_Format(t *testing.T) {
	st := memstore.New()
	ts := time.Date(2015, 1, 1, 12, 0, 0, 123456000, time.UTC)
	insertDoc(t, st, ts, "[Warning]", "предупреждение", map[string]any{"type": "backtest", "stage": "first"})

	r := newTestReader(t, st)

	lines, err := r.FetchAsText(context.Background(), attrs.New(), DefaultLookbackDays)
	require.NoError(t, err)
	require.Len(t, lines, 1)

	assert.Equal(t, "2015-01-01 12:00:00.123456 stage: first, type: backtest [Warning] предупреждение", lines[0])
}

// TestReader_FetchAsText_EmptySeverity проверяет, что пустая метка уровня
// оставляет двойной пробел: формат строки фиксированный.
func TestReader_FetchAsText_EmptySeverity(t *testing.T) {
	st := memstore.New()
	ts := time.Date(2015, 1, 1, 12, 0, 0, 0, time.UTC)
	insertDoc(t, st, ts, "", "рядовое сообщение", map[string]any{"type": "system"})

	r := newTestReader(t, st)

	lines, err := r.FetchAsText(context.Background(), attrs.New(), DefaultLookbackDays)
	require.NoError(t, err)
	require.Len(t, lines, 1)

	assert.Equal(t, "2015-01-01 12:00:00.000000 type: system  рядовое сообщение", lines[0])
}

// TestReader_Prune проверяет удаление записей старше срока хранения.
func TestReader_Prune(t *testing.T) {
	st := memstore.New()
	insertDoc(t, st, testNow.AddDate(-2, 0, 0), "", "двухлетняя", nil)
	insertDoc(t, st, testNow.AddDate(0, 0, -400), "", "годовалая с лишним", nil)
	insertDoc(t, st, testNow.AddDate(0, 0, -10), "", "свежая", nil)

	r := newTestReader(t, st)

	require.NoError(t, r.Prune(context.Background(), DefaultRetentionDays))

	docs, err := st.Find(context.Background(), store.Filter{})
	require.NoError(t, err)
	require.Len(t, docs, 1, "записи старше срока хранения должны исчезнуть")
	assert.Equal(t, "свежая", docs[0][store.FieldText])
}

// TestReader_Prune_IgnoresAttributes проверяет, что очистка не разбирает
// принадлежность записей подсистемам.
func TestReader_Prune_IgnoresAttributes(t *testing.T) {
	st := memstore.New()
	old := testNow.AddDate(-2, 0, 0)
	insertDoc(t, st, old, "", "торговая", map[string]any{"type": "trading"})
	insertDoc(t, st, old, "", "системная", map[string]any{"type": "system"})

	r := newTestReader(t, st)

	require.NoError(t, r.Prune(context.Background(), DefaultRetentionDays))

	docs, err := st.Find(context.Background(), store.Filter{})
	require.NoError(t, err)
	assert.Empty(t, docs, "очистка должна затронуть записи всех подсистем")
}

// TestReader_Prune_StoreErrorPassedThrough проверяет проброс ошибки удаления.
func TestReader_Prune_StoreErrorPassedThrough(t *testing.T) {
	storeErr := store.NewStoreError(store.ErrStoreRemove, "удаление не удалось", nil)
	r := newTestReader(t, &failingStore{err: storeErr})

	err := r.Prune(context.Background(), DefaultRetentionDays)

	assert.Equal(t, storeErr, err)
}

// opRecord — одно зафиксированное обращение к хранилищу.
type opRecord struct {
	operation string
	success   bool
}

// recordingCollector накапливает обращения к хранилищу для проверок.
type recordingCollector struct {
	mu  sync.Mutex
	ops []opRecord
}

var _ metrics.Collector = (*recordingCollector)(nil)

func (c *recordingCollector) RecordEmit(sink, level, outcome string) {}

func (c *recordingCollector) RecordStoreOperation(operation string, _ time.Duration, success bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ops = append(c.ops, opRecord{operation: operation, success: success})
}

func (c *recordingCollector) Push(ctx context.Context) error { return nil }

func (c *recordingCollector) all() []opRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]opRecord(nil), c.ops...)
}

// TestReader_RecordsStoreOperations проверяет учёт обращений к хранилищу.
func TestReader_RecordsStoreOperations(t *testing.T) {
	collector := &recordingCollector{}
	st := memstore.New()

	r, err := NewReader(st, ReaderOptions{
		Collector: collector,
		Now:       func() time.Time { return testNow },
	})
	require.NoError(t, err)

	_, err = r.Fetch(context.Background(), attrs.New(), DefaultLookbackDays)
	require.NoError(t, err)
	require.NoError(t, r.Prune(context.Background(), DefaultRetentionDays))

	ops := collector.all()
	require.Len(t, ops, 2)
	assert.Equal(t, opRecord{operation: "find", success: true}, ops[0])
	assert.Equal(t, opRecord{operation: "remove", success: true}, ops[1])
}

// TestReader_RecordsFailedOperation проверяет учёт неуспешного обращения.
func TestReader_RecordsFailedOperation(t *testing.T) {
	collector := &recordingCollector{}
	storeErr := store.NewStoreError(store.ErrStoreFind, "выборка не удалась", nil)

	r, err := NewReader(&failingStore{err: storeErr}, ReaderOptions{
		Collector: collector,
		Now:       func() time.Time { return testNow },
	})
	require.NoError(t, err)

	_, err = r.Fetch(context.Background(), attrs.New(), DefaultLookbackDays)
	require.Error(t, err)

	ops := collector.all()
	require.Len(t, ops, 1)
	assert.Equal(t, opRecord{operation: "find", success: false}, ops[0])
}

// TestRecordFromDocument_MissingReservedFields проверяет устойчивость к
// документам без служебных полей: запись не теряется, поля остаются нулевыми.
func TestRecordFromDocument_MissingReservedFields(t *testing.T) {
	rec := recordFromDocument(store.Document{"type": "system"})

	assert.True(t, rec.Timestamp.IsZero())
	assert.Empty(t, rec.Severity)
	assert.Empty(t, rec.Text)
	assert.Equal(t, 1, rec.Attributes.Len())
}

// TestRecordFromDocument_WrongFieldTypes проверяет устойчивость к
// служебным полям неожиданных типов.
func TestRecordFromDocument_WrongFieldTypes(t *testing.T) {
	rec := recordFromDocument(store.Document{
		store.FieldTimestamp: "2015-01-01",
		store.FieldLevel:     42,
		store.FieldText:      nil,
	})

	assert.True(t, rec.Timestamp.IsZero())
	assert.Empty(t, rec.Severity)
	assert.Empty(t, rec.Text)
	assert.Equal(t, 0, rec.Attributes.Len(), "нечитаемые служебные поля не должны становиться атрибутами")
}
