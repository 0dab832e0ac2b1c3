// Package di собирает журнал из конфигурации через Wire DI:
// хранилище по выбранному бэкенду, коллектор метрик, консольный writer
// и читатель журнала.
//
// Граф зависимостей описан провайдерами в providers.go и собирается
// google/wire (wire.go — описание графа, wire_gen.go — сгенерированный код).
//
// Пример использования:
//
//	cfg, err := config.Load("config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	facility, err := di.InitializeFacility(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer facility.Close(ctx)
//
//	journal, err := facility.CombinedLogger("billing")
package di

import (
	"context"
	"errors"
	"io"

	"github.com/Kargones/diaglog"
	"github.com/Kargones/diaglog/attrs"
	"github.com/Kargones/diaglog/config"
	"github.com/Kargones/diaglog/metrics"
	"github.com/Kargones/diaglog/query"
	"github.com/Kargones/diaglog/store"
)

// Facility содержит инициализированные зависимости журнала.
// Создаётся через Wire DI в InitializeFacility().
//
// Все поля инициализируются через провайдеры в providers.go.
// При добавлении новых зависимостей:
// 1. Добавить поле в Facility struct
// 2. Создать провайдер в providers.go
// 3. Добавить провайдер в ProviderSet в wire.go
// 4. Перегенерировать wire_gen.go: go generate ./di/...
type Facility struct {
	// Config содержит конфигурацию журнала.
	// Передаётся извне через InitializeFacility().
	Config *config.Config

	// Store — хранилище записей журнала, выбранное по Config.Store.Backend.
	// Для подключаемых бэкендов соединение уже установлено.
	Store store.Store

	// Collector собирает метрики доставки и обращений к хранилищу.
	// Если метрики отключены — используется NopCollector.
	Collector metrics.Collector

	// ConsoleOut — writer консольного вывода и эхо-строк хранилища.
	// Создаётся через ProvideConsoleWriter (stdout, stderr или файл с ротацией).
	ConsoleOut io.Writer

	// Reader читает и очищает сохранённый журнал.
	Reader *query.Reader
}

// ConsoleLogger создаёт логгер с консольной доставкой и порогом из
// конфигурации. Логгеры создаются по требованию: каждая подсистема
// получает свой экземпляр со своими атрибутами.
func (f *Facility) ConsoleLogger(source any, extra ...attrs.Attr) (*diaglog.Logger, error) {
	console := diaglog.NewConsole(diaglog.ConsoleOptions{
		Out:       f.ConsoleOut,
		Collector: f.Collector,
	})
	return diaglog.New(source, diaglog.Options{
		Threshold: f.threshold(),
		Deliverer: console,
	}, extra...)
}

// StoreLogger создаёт логгер, сохраняющий каждую запись в хранилище.
// Эхо-строки идут в тот же writer, что и консольный вывод.
func (f *Facility) StoreLogger(source any, extra ...attrs.Attr) (*diaglog.Logger, error) {
	deliverer, err := diaglog.NewStoreDeliverer(f.Store, diaglog.StoreDelivererOptions{
		Echo:      f.ConsoleOut,
		Collector: f.Collector,
	})
	if err != nil {
		return nil, err
	}
	return diaglog.New(source, diaglog.Options{
		Threshold: f.threshold(),
		Deliverer: deliverer,
	}, extra...)
}

// CombinedLogger создаёт логгер с доставкой и в хранилище, и в консоль.
// Хранилище стоит первым: запись сохраняется до того, как критический
// уровень прервёт выполнение.
func (f *Facility) CombinedLogger(source any, extra ...attrs.Attr) (*diaglog.Logger, error) {
	deliverer, err := diaglog.NewStoreDeliverer(f.Store, diaglog.StoreDelivererOptions{
		Echo:      f.ConsoleOut,
		Collector: f.Collector,
	})
	if err != nil {
		return nil, err
	}
	console := diaglog.NewConsole(diaglog.ConsoleOptions{
		Out:       f.ConsoleOut,
		Collector: f.Collector,
	})
	return diaglog.New(source, diaglog.Options{
		Threshold: f.threshold(),
		Deliverer: diaglog.NewComposite(deliverer, console),
	}, extra...)
}

// Recent возвращает записи с точным совпадением атрибутов filter,
// используя глубину выборки из Config.Query.LookbackDays.
func (f *Facility) Recent(ctx context.Context, filter attrs.Set) ([]query.Record, error) {
	return f.Reader.Fetch(ctx, filter, f.lookbackDays())
}

// Maintain безвозвратно удаляет записи старше срока хранения
// Config.Query.RetentionDays.
func (f *Facility) Maintain(ctx context.Context) error {
	return f.Reader.Prune(ctx, f.retentionDays())
}

// Close отправляет накопленные метрики и закрывает хранилище.
// Ошибки обеих операций объединяются: сбой push не мешает закрытию.
func (f *Facility) Close(ctx context.Context) error {
	var errs []error

	if f.Collector != nil {
		if err := f.Collector.Push(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	switch st := f.Store.(type) {
	case interface{ Close(context.Context) error }:
		if err := st.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	case interface{ Close() error }:
		if err := st.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (f *Facility) threshold() string {
	if f.Config == nil {
		return ""
	}
	return f.Config.Console.Threshold
}

func (f *Facility) lookbackDays() int {
	if f.Config == nil {
		return query.DefaultLookbackDays
	}
	return f.Config.Query.LookbackDays
}

func (f *Facility) retentionDays() int {
	if f.Config == nil {
		return query.DefaultRetentionDays
	}
	return f.Config.Query.RetentionDays
}
