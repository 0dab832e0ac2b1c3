package diaglog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Kargones/diaglog/attrs"
	"github.com/Kargones/diaglog/metrics"
	"github.com/Kargones/diaglog/store"
)

// EchoTimeFormat — формат отметки времени в эхо-строке и текстовых выборках.
const EchoTimeFormat = "2006-01-02 15:04:05.000000"

// ErrStoreRequired возвращается при создании StoreDeliverer без хранилища.
var ErrStoreRequired = errors.New("diaglog: для StoreDeliverer обязательно хранилище WriteStore")

// StoreDelivererOptions настраивает приёмник с сохранением в хранилище.
type StoreDelivererOptions struct {
	// Echo — приёмник эхо-строк. По умолчанию os.Stdout.
	Echo io.Writer

	// Collector — коллектор метрик доставки. По умолчанию NopCollector.
	Collector metrics.Collector

	// Now — источник времени записи. По умолчанию time.Now.
	// Переопределяется в тестах для детерминированных отметок.
	Now func() time.Time
}

// StoreDeliverer сохраняет каждую запись в документное хранилище.
//
// Порог подробности игнорируется: в хранилище попадает всё. Приёмник
// никогда не паникует, в том числе на критическом
// уровне — прерывание выполнения остаётся обязанностью консоли.
// Каждая сохранённая запись дублируется эхо-строкой
// "<время> <атрибуты> <текст>" независимо от порога.
type StoreDeliverer struct {
	store     store.WriteStore
	echo      io.Writer
	collector metrics.Collector
	now       func() time.Time
}

// Проверка соответствия интерфейсу.
var _ Deliverer = (*StoreDeliverer)(nil)

// NewStoreDeliverer создаёт приёмник поверх хранилища журнала.
//
// Побочный эффект создания: в хранилище обеспечивается составной индекс
// по полям времени и уровня. Операция идемпотентна и безопасна при
// одновременном создании нескольких приёмников; ошибка индекса
// возвращается как есть.
func NewStoreDeliverer(st store.WriteStore, opts StoreDelivererOptions) (*StoreDeliverer, error) {
	if st == nil {
		return nil, ErrStoreRequired
	}

	echo := opts.Echo
	if echo == nil {
		echo = os.Stdout
	}
	collector := opts.Collector
	if collector == nil {
		collector = metrics.NewNopCollector()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	d := &StoreDeliverer{
		store:     st,
		echo:      echo,
		collector: collector,
		now:       now,
	}

	start := time.Now()
	err := st.EnsureIndex(context.Background(), store.FieldTimestamp, store.FieldLevel)
	collector.RecordStoreOperation("ensure_index", time.Since(start), err == nil)
	if err != nil {
		return nil, err
	}

	return d, nil
}

// Deliver сохраняет запись и печатает эхо-строку.
//
// Документ собирается из атрибутов записи и трёх служебных полей: метка
// уровня, момент доставки и текст. Ошибка хранилища возвращается без
// оборачивания; эхо-строка печатается только после успешного сохранения.
func (d *StoreDeliverer) Deliver(level Level, _ Threshold, text string, set attrs.Set) error {
	now := d.now()

	doc := store.Document(set.AsMap())
	doc[store.FieldLevel] = level.Label()
	doc[store.FieldTimestamp] = now
	doc[store.FieldText] = text

	start := time.Now()
	err := d.store.Insert(context.Background(), doc)
	d.collector.RecordStoreOperation("insert", time.Since(start), err == nil)
	if err != nil {
		d.collector.RecordEmit("store", level.String(), metrics.OutcomeFailed)
		return err
	}
	d.collector.RecordEmit("store", level.String(), metrics.OutcomeDelivered)

	if _, err := fmt.Fprintf(d.echo, "%s %s %s\n", now.Format(EchoTimeFormat), set, text); err != nil {
		return err
	}
	return nil
}

// NewStoreLogger создаёт логгер, сохраняющий записи в хранилище st.
// Эхо-строки печатаются на os.Stdout. Порог подробности для хранилища
// значения не имеет, поэтому остаётся off.
func NewStoreLogger(st store.WriteStore, source any, extra ...attrs.Attr) (*Logger, error) {
	deliverer, err := NewStoreDeliverer(st, StoreDelivererOptions{})
	if err != nil {
		return nil, err
	}
	return New(source, Options{Deliverer: deliverer}, extra...)
}
