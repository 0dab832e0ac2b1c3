package metrics

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// PrometheusCollector реализует Collector с Prometheus метриками.
// Отправляет метрики в Pushgateway при вызове Push().
type PrometheusCollector struct {
	config   Config
	registry *prometheus.Registry

	// Метрики
	emitTotal       *prometheus.CounterVec
	storeOpDuration *prometheus.HistogramVec
	storeOpTotal    *prometheus.CounterVec

	// Instance label (hostname)
	instance string
}

// Проверка соответствия интерфейсу.
var _ Collector = (*PrometheusCollector)(nil)

// NewPrometheusCollector создаёт PrometheusCollector с указанной конфигурацией.
// Регистрирует метрики:
//   - diaglog_emit_total (counter)
//   - diaglog_store_operation_duration_seconds (histogram)
//   - diaglog_store_operation_total (counter)
func NewPrometheusCollector(config Config) (*PrometheusCollector, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	instance := config.InstanceLabel
	if instance == "" {
		hostname, err := os.Hostname()
		if err != nil {
			// hostname недоступен — оставляем различимое значение вместо пустого label
			hostname = "unknown"
		}
		instance = hostname
	}

	registry := prometheus.NewRegistry()

	// Counter обработанных записей по приёмнику, уровню и результату
	emitTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "diaglog",
			Name:      "emit_total",
			Help:      "Total number of log records processed by sinks",
		},
		[]string{"sink", "level", "outcome"},
	)

	// Histogram для длительности обращений к хранилищу.
	// Buckets покрывают диапазон от локальных операций (1ms) до медленных запросов (30s).
	storeOpDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "diaglog",
			Name:      "store_operation_duration_seconds",
			Help:      "Duration of log store operations in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"operation", "status"},
	)

	// Counter обращений к хранилищу.
	// Примечание: дублирует histogram counts (duration_seconds_count с label status),
	// но оставлен для удобства — простые PromQL запросы без агрегации по histogram.
	storeOpTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "diaglog",
			Name:      "store_operation_total",
			Help:      "Total number of log store operations",
		},
		[]string{"operation", "status"},
	)

	// Регистрируем все метрики атомарно.
	// Используем Register вместо MustRegister для избежания panic.
	// Ошибка возможна только при дублировании имён метрик в одном registry.
	collectors := []prometheus.Collector{emitTotal, storeOpDuration, storeOpTotal}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("ошибка регистрации метрики: %w", err)
		}
	}

	return &PrometheusCollector{
		config:          config,
		registry:        registry,
		emitTotal:       emitTotal,
		storeOpDuration: storeOpDuration,
		storeOpTotal:    storeOpTotal,
		instance:        instance,
	}, nil
}

// maxLabelLength — максимальная длина значения label для защиты от cardinality explosion.
const maxLabelLength = 128

// sanitizeLabel обрезает значение label до допустимой длины и удаляет
// контрольные символы (\n, \r, \0), которые могут нарушить Prometheus text format.
// Обрезка выполняется по рунам (не по байтам) для корректной работы с UTF-8.
func sanitizeLabel(value string) string {
	// Удаляем контрольные символы, опасные для Prometheus text format
	clean := strings.Map(func(r rune) rune {
		if r < 0x20 { // контрольные символы: \n, \r, \t, \0 и др.
			return '_'
		}
		return r
	}, value)

	runes := []rune(clean)
	if len(runes) > maxLabelLength {
		return string(runes[:maxLabelLength])
	}
	return clean
}

// RecordEmit записывает факт обработки записи приёмником.
func (c *PrometheusCollector) RecordEmit(sink, level, outcome string) {
	c.emitTotal.WithLabelValues(sanitizeLabel(sink), sanitizeLabel(level), sanitizeLabel(outcome)).Inc()
}

// RecordStoreOperation записывает обращение к хранилищу журнала.
// Обновляет histogram duration и counter обращений.
func (c *PrometheusCollector) RecordStoreOperation(operation string, duration time.Duration, success bool) {
	status := "success"
	if !success {
		status = "error"
	}

	operation = sanitizeLabel(operation)

	c.storeOpDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
	c.storeOpTotal.WithLabelValues(operation, status).Inc()
}

// Push отправляет метрики в Pushgateway.
// В отличие от коллекторов с собственным логгером здесь ошибка возвращается
// вызывающему: пакет не может логировать через подсистему, которую измеряет.
func (c *PrometheusCollector) Push(ctx context.Context) error {
	if c.config.PushgatewayURL == "" {
		return nil
	}

	// Проверяем контекст
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	pusher := push.New(c.config.PushgatewayURL, c.config.JobName).
		Gatherer(c.registry).
		Grouping("instance", c.instance)

	// Устанавливаем таймаут через контекст
	pushCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	if err := pusher.PushContext(pushCtx); err != nil {
		return fmt.Errorf("ошибка отправки метрик в Pushgateway: %w", err)
	}

	return nil
}

// GetRegistry возвращает внутренний registry для тестирования.
// Примечание: экспортируется только для unit-тестов.
func (c *PrometheusCollector) GetRegistry() *prometheus.Registry {
	return c.registry
}
