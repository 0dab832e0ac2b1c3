// Package query — чтение и обслуживание сохранённого журнала.
//
// Reader работает поверх store.ReadStore напрямую, без участия Logger:
// читающей стороне не нужны ни порог подробности, ни доставка. Выборка
// и очистка отсчитываются от текущего момента в днях.
package query

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Kargones/diaglog/attrs"
	"github.com/Kargones/diaglog/metrics"
	"github.com/Kargones/diaglog/store"
)

// Значения по умолчанию для глубины выборки и срока хранения.
const (
	// DefaultLookbackDays — граница выборки Fetch по умолчанию.
	DefaultLookbackDays = 1
	// DefaultRetentionDays — срок хранения записей для Prune по умолчанию.
	DefaultRetentionDays = 365
)

// Record — одна запись журнала в разобранном виде.
// Служебные поля документа вынесены в именованные поля, всё остальное
// остаётся в Attributes.
type Record struct {
	// Timestamp — момент доставки записи.
	Timestamp time.Time
	// Severity — текстовая метка уровня; у рядовых сообщений пустая.
	Severity string
	// Text — текст сообщения.
	Text string
	// Attributes — пользовательские атрибуты записи.
	Attributes attrs.Set
}

// ReaderOptions настраивает читателя журнала.
type ReaderOptions struct {
	// Collector — коллектор метрик обращений к хранилищу. По умолчанию NopCollector.
	Collector metrics.Collector

	// Now — источник текущего времени для расчёта границ. По умолчанию time.Now.
	// Переопределяется в тестах.
	Now func() time.Time
}

// Reader выбирает и удаляет записи журнала.
type Reader struct {
	store     store.ReadStore
	collector metrics.Collector
	now       func() time.Time
}

// ErrReadStoreRequired возвращается при создании Reader без хранилища.
var ErrReadStoreRequired = errors.New("query: для Reader обязательно хранилище ReadStore")

// NewReader создаёт читателя поверх хранилища журнала.
func NewReader(st store.ReadStore, opts ReaderOptions) (*Reader, error) {
	if st == nil {
		return nil, ErrReadStoreRequired
	}

	collector := opts.Collector
	if collector == nil {
		collector = metrics.NewNopCollector()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Reader{
		store:     st,
		collector: collector,
		now:       now,
	}, nil
}

// Fetch возвращает записи, атрибуты которых точно совпадают с filter,
// с временем СТРОГО РАНЬШЕ чем сейчас минус lookbackDays.
//
// Граница отсчитывается назад: lookbackDays=1 возвращает записи старше
// вчерашнего момента, а не за последние сутки. Чтобы охватить все записи
// до текущего мгновения, передайте lookbackDays=0.
//
// Результат отсортирован по времени по возрастанию. Ошибки хранилища
// возвращаются без оборачивания.
func (r *Reader) Fetch(ctx context.Context, filter attrs.Set, lookbackDays int) ([]Record, error) {
	cutoff := r.now().AddDate(0, 0, -lookbackDays)

	f := store.Filter{
		Equals:    filter.AsMap(),
		OlderThan: cutoff,
	}

	start := time.Now()
	docs, err := r.store.Find(ctx, f)
	r.collector.RecordStoreOperation("find", time.Since(start), err == nil)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(docs))
	for _, doc := range docs {
		records = append(records, recordFromDocument(doc))
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})

	return records, nil
}

// FetchAsText возвращает те же записи, что и Fetch, в виде строк
// "<время> <атрибуты> <метка уровня> <текст>".
func (r *Reader) FetchAsText(ctx context.Context, filter attrs.Set, lookbackDays int) ([]string, error) {
	records, err := r.Fetch(ctx, filter, lookbackDays)
	if err != nil {
		return nil, err
	}

	lines := make([]string, 0, len(records))
	for _, rec := range records {
		lines = append(lines, fmt.Sprintf("%s %s %s %s",
			rec.Timestamp.Format("2006-01-02 15:04:05.000000"),
			rec.Attributes,
			rec.Severity,
			rec.Text,
		))
	}
	return lines, nil
}

// Prune безвозвратно удаляет записи старше, чем сейчас минус olderThanDays.
// Атрибуты при очистке не учитываются: удаляются записи всех подсистем.
func (r *Reader) Prune(ctx context.Context, olderThanDays int) error {
	cutoff := r.now().AddDate(0, 0, -olderThanDays)

	start := time.Now()
	err := r.store.Remove(ctx, store.Filter{OlderThan: cutoff})
	r.collector.RecordStoreOperation("remove", time.Since(start), err == nil)
	return err
}

// recordFromDocument разбирает документ хранилища: служебные поля
// переносятся в Record, остаток становится атрибутами. Отсутствующее
// или нечитаемое служебное поле даёт нулевое значение, запись при этом
// не теряется.
func recordFromDocument(doc store.Document) Record {
	rest := make(map[string]any, len(doc))
	for k, v := range doc {
		rest[k] = v
	}

	ts, _ := rest[store.FieldTimestamp].(time.Time)
	severity, _ := rest[store.FieldLevel].(string)
	text, _ := rest[store.FieldText].(string)

	delete(rest, store.FieldTimestamp)
	delete(rest, store.FieldLevel)
	delete(rest, store.FieldText)

	return Record{
		Timestamp:  ts,
		Severity:   severity,
		Text:       text,
		Attributes: attrs.FromMap(rest),
	}
}
