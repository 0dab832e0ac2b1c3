package diaglog

import (
	"fmt"
	"io"
	"os"

	"github.com/Kargones/diaglog/attrs"
	"github.com/Kargones/diaglog/metrics"
)

// ConsoleOptions настраивает консольный приёмник.
type ConsoleOptions struct {
	// Out — приёмник вывода. По умолчанию os.Stdout.
	Out io.Writer

	// Collector — коллектор метрик доставки. По умолчанию NopCollector.
	Collector metrics.Collector
}

// Console печатает записи на экран с учётом порога подробности.
//
// Политика печати по уровням:
//   - msg:      только при пороге on;
//   - terse:    при порогах terse и on;
//   - warn:     всегда;
//   - error:    всегда;
//   - critical: всегда, затем паника с *CriticalError.
//
// Печатается только текст записи, атрибуты на экран не выводятся.
type Console struct {
	out       io.Writer
	collector metrics.Collector
}

// Проверка соответствия интерфейсу.
var _ Deliverer = (*Console)(nil)

// NewConsole создаёт консольный приёмник.
func NewConsole(opts ConsoleOptions) *Console {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	collector := opts.Collector
	if collector == nil {
		collector = metrics.NewNopCollector()
	}
	return &Console{
		out:       out,
		collector: collector,
	}
}

// Deliver печатает запись согласно политике порога.
// Критическая запись печатается и прерывает выполнение паникой с
// *CriticalError независимо от порога. Ошибка записи в out возвращается
// вызывающему.
func (c *Console) Deliver(level Level, threshold Threshold, text string, set attrs.Set) error {
	if !shouldPrint(level, threshold) {
		c.collector.RecordEmit("console", level.String(), metrics.OutcomeSuppressed)
		return nil
	}

	_, writeErr := fmt.Fprintln(c.out, text)

	if level == LevelCritical {
		c.collector.RecordEmit("console", level.String(), metrics.OutcomeDelivered)
		panic(NewCriticalError(text, set))
	}

	if writeErr != nil {
		c.collector.RecordEmit("console", level.String(), metrics.OutcomeFailed)
		return writeErr
	}

	c.collector.RecordEmit("console", level.String(), metrics.OutcomeDelivered)
	return nil
}

// shouldPrint реализует таблицу порогов: msg требует on, terse — terse
// или on, остальные уровни печатаются всегда.
func shouldPrint(level Level, threshold Threshold) bool {
	switch level {
	case LevelMsg:
		return threshold == ThresholdOn
	case LevelTerse:
		return threshold == ThresholdTerse || threshold == ThresholdOn
	default:
		return true
	}
}

// NewConsoleLogger создаёт логгер с указанным порогом и консольной
// доставкой в os.Stdout.
//
//	log, err := diaglog.NewConsoleLogger("backtest", "terse",
//	    attrs.KV("stage", "loading"))
func NewConsoleLogger(source any, threshold string, extra ...attrs.Attr) (*Logger, error) {
	return New(source, Options{
		Threshold: threshold,
		Deliverer: NewConsole(ConsoleOptions{}),
	}, extra...)
}
