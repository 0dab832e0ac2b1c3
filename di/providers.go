package di

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Kargones/diaglog/config"
	"github.com/Kargones/diaglog/metrics"
	"github.com/Kargones/diaglog/query"
	"github.com/Kargones/diaglog/store"
	"github.com/Kargones/diaglog/store/memstore"
	"github.com/Kargones/diaglog/store/mongostore"
	"github.com/Kargones/diaglog/store/pgstore"
	"github.com/Kargones/diaglog/store/sqlstore"
)

// ProvideCollector создаёт Collector на основе Metrics секции конфигурации.
// Если Config == nil или метрики выключены — возвращает NopCollector.
//
// При ошибке создания пишет предупреждение в stderr и возвращает
// NopCollector: сбой метрик не должен останавливать журнал.
func ProvideCollector(cfg *config.Config) metrics.Collector {
	if cfg == nil {
		return metrics.NewNopCollector()
	}

	collector, err := metrics.NewCollector(cfg.Metrics.ToMetrics())
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: не удалось создать коллектор метрик, используется NopCollector: %v\n", err)
		return metrics.NewNopCollector()
	}
	return collector
}

// ProvideConsoleWriter создаёт writer консольного вывода на основе
// Console секции конфигурации: stdout, stderr или файл с ротацией
// (lumberjack). Если Config == nil — возвращает os.Stdout.
func ProvideConsoleWriter(cfg *config.Config) io.Writer {
	if cfg == nil {
		return os.Stdout
	}
	return cfg.Console.NewWriter()
}

// ProvideStore создаёт хранилище журнала по Config.Store.Backend:
//   - memory: встроенное хранилище в памяти (по умолчанию)
//   - mongo: MongoDB по URI
//   - mssql: Microsoft SQL Server
//   - postgres: PostgreSQL
//
// Для подключаемых бэкендов соединение устанавливается сразу:
// журнал без доступного хранилища не имеет смысла, ошибка подключения
// должна проявиться при старте, а не на первой записи.
func ProvideStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg == nil {
		return memstore.New(), nil
	}

	switch cfg.Store.Backend {
	case "", config.BackendMemory:
		return memstore.New(), nil

	case config.BackendMongo:
		client, err := mongostore.NewClient(mongostore.ClientOptions{
			URI:            cfg.Store.URI,
			Database:       cfg.Store.Database,
			Collection:     cfg.Store.Collection,
			ConnectTimeout: cfg.Store.ConnectTimeout,
		})
		if err != nil {
			return nil, err
		}
		if err := client.Connect(ctx); err != nil {
			return nil, err
		}
		return client, nil

	case config.BackendMSSQL:
		client, err := sqlstore.NewClient(sqlstore.ClientOptions{
			Server:   cfg.Store.Host,
			Port:     cfg.Store.Port,
			User:     cfg.Store.User,
			Password: cfg.Store.Password,
			Database: cfg.Store.Database,
			Table:    cfg.Store.Collection,
			Timeout:  cfg.Store.ConnectTimeout,
		})
		if err != nil {
			return nil, err
		}
		if err := client.Connect(ctx); err != nil {
			return nil, err
		}
		return client, nil

	case config.BackendPostgres:
		client, err := pgstore.NewClient(pgstore.ClientOptions{
			Host:     cfg.Store.Host,
			Port:     cfg.Store.Port,
			User:     cfg.Store.User,
			Password: cfg.Store.Password,
			Database: cfg.Store.Database,
			Table:    cfg.Store.Collection,
			SSLMode:  cfg.Store.SSLMode,
		})
		if err != nil {
			return nil, err
		}
		if err := client.Connect(ctx); err != nil {
			return nil, err
		}
		return client, nil

	default:
		return nil, config.NewConfigError(config.ErrConfigValidate,
			fmt.Sprintf("неизвестный backend хранилища %q", cfg.Store.Backend), nil)
	}
}

// ProvideReader создаёт читателя журнала поверх хранилища.
func ProvideReader(st store.Store, collector metrics.Collector) (*query.Reader, error) {
	return query.NewReader(st, query.ReaderOptions{Collector: collector})
}
