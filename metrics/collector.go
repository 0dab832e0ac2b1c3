// Package metrics предоставляет интерфейсы и реализации для сбора и отправки
// метрик доставки записей в Prometheus Pushgateway.
//
// Пакет следует общим паттернам проекта:
//   - Interface Segregation: Collector interface для абстракции
//   - Factory pattern: NewCollector выбирает реализацию на основе конфигурации
//   - Graceful degradation: NopCollector при отключённых метриках
package metrics

import (
	"context"
	"time"
)

// Collector определяет интерфейс для сбора метрик доставки.
// Реализации: PrometheusCollector (активный) и NopCollector (no-op).
type Collector interface {
	// RecordEmit записывает факт обработки записи приёмником.
	// sink — имя приёмника ("console", "store"),
	// level — текстовое имя уровня записи,
	// outcome — результат: "delivered", "suppressed" или "failed".
	RecordEmit(sink, level, outcome string)

	// RecordStoreOperation записывает обращение к хранилищу журнала.
	// operation — "insert", "find", "remove" или "ensure_index".
	RecordStoreOperation(operation string, duration time.Duration, success bool)

	// Push отправляет накопленные метрики в Pushgateway.
	// Ошибка отправки возвращается вызывающему: у пакета нет собственного
	// логгера, он сам является частью подсистемы логирования.
	Push(ctx context.Context) error
}

// Возможные значения outcome для RecordEmit.
const (
	OutcomeDelivered  = "delivered"
	OutcomeSuppressed = "suppressed"
	OutcomeFailed     = "failed"
)
