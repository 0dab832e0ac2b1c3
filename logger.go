package diaglog

import (
	"fmt"

	"github.com/Kargones/diaglog/attrs"
)

// KeyType — атрибут-идентификатор подсистемы, создавшей логгер.
// Проставляется автоматически при создании логгера из строки.
const KeyType = "type"

// Options настраивает создаваемый логгер.
type Options struct {
	// Threshold — порог подробности: "off", "terse" или "on".
	// Пустая строка означает off.
	Threshold string

	// Deliverer — способ доставки записей. Логгер без приёмника
	// допустим как носитель атрибутов, но Emit вернёт ошибку
	// LOGGER.DELIVERY_NOT_IMPLEMENTED.
	Deliverer Deliverer
}

// Logger помечает записи журнала атрибутами и передаёт их приёмнику.
//
// Атрибуты наследуются: Derive создаёт независимую копию с расширенным
// набором, Label дополняет набор на месте. Один экземпляр не рассчитан
// на конкурентные мутации — каждой горутине свой логгер через Derive.
type Logger struct {
	attrs     attrs.Set
	threshold Threshold
	deliverer Deliverer
}

// Проверка соответствия интерфейсу: логгер сам является носителем атрибутов.
var _ AttributeCarrier = (*Logger)(nil)

// New создаёт логгер из источника атрибутов.
//
// Источником может быть:
//   - строка: идентификатор подсистемы, попадает в атрибут "type";
//   - AttributeCarrier (например другой Logger): его атрибуты копируются,
//     сам источник не изменяется.
//
// Дополнительные атрибуты extra объединяются с атрибутами источника и
// побеждают при совпадении ключей.
func New(source any, opts Options, extra ...attrs.Attr) (*Logger, error) {
	var set attrs.Set

	switch src := source.(type) {
	case string:
		set = attrs.New(attrs.KV(KeyType, src)).With(extra...)
	case AttributeCarrier:
		set = attrs.Merge(src.Attributes(), attrs.New(extra...))
	default:
		return nil, NewLoggerError(ErrInvalidSource,
			fmt.Sprintf("логгер создаётся только из строки или другого логгера, получен %T", source), nil)
	}

	threshold := ThresholdOff
	if opts.Threshold != "" {
		parsed, err := ParseThreshold(opts.Threshold)
		if err != nil {
			return nil, err
		}
		threshold = parsed
	}

	return &Logger{
		attrs:     set,
		threshold: threshold,
		deliverer: opts.Deliverer,
	}, nil
}

// Derive возвращает независимую копию логгера с добавленными атрибутами.
// Порог и приёмник наследуются; исходный логгер не изменяется.
func (l *Logger) Derive(extra ...attrs.Attr) *Logger {
	return &Logger{
		attrs:     attrs.Merge(l.attrs, attrs.New(extra...)),
		threshold: l.threshold,
		deliverer: l.deliverer,
	}
}

// Label дополняет атрибуты логгера на месте.
// Затрагивает только этот экземпляр: производные и исходные логгеры
// изменения не видят.
func (l *Logger) Label(extra ...attrs.Attr) {
	l.attrs = attrs.Merge(l.attrs, attrs.New(extra...))
}

// Attributes возвращает текущий набор атрибутов логгера.
func (l *Logger) Attributes() attrs.Set {
	return l.attrs
}

// Threshold возвращает текущий порог подробности.
func (l *Logger) Threshold() Threshold {
	return l.threshold
}

// SetThreshold меняет порог подробности.
// Имя порога разбирается без учёта регистра; недопустимое имя
// отклоняется с ошибкой LOGGER.INVALID_LEVEL, порог остаётся прежним.
func (l *Logger) SetThreshold(name string) error {
	parsed, err := ParseThreshold(name)
	if err != nil {
		return err
	}
	l.threshold = parsed
	return nil
}

// Emit доставляет запись указанного уровня.
// Разовые атрибуты extra действуют только на эту запись и не меняют
// набор логгера. Ошибки приёмника возвращаются как есть.
func (l *Logger) Emit(level Level, text string, extra ...attrs.Attr) error {
	if !level.Valid() {
		return NewLoggerError(ErrInvalidLevel,
			fmt.Sprintf("уровень %d вне допустимого диапазона %d..%d", level, LevelMsg, LevelCritical), nil)
	}

	if l.deliverer == nil {
		return NewLoggerError(ErrDeliveryNotImplemented,
			"у логгера не задан способ доставки: используйте NewConsoleLogger, NewStoreLogger или Options.Deliverer", nil)
	}

	use := attrs.Merge(l.attrs, attrs.New(extra...))
	return l.deliverer.Deliver(level, l.threshold, text, use)
}

// Msg доставляет рядовое сообщение (уровень 0).
func (l *Logger) Msg(text string, extra ...attrs.Attr) error {
	return l.Emit(LevelMsg, text, extra...)
}

// Terse доставляет краткую сводку (уровень 1).
func (l *Logger) Terse(text string, extra ...attrs.Attr) error {
	return l.Emit(LevelTerse, text, extra...)
}

// Warn доставляет предупреждение (уровень 2).
func (l *Logger) Warn(text string, extra ...attrs.Attr) error {
	return l.Emit(LevelWarn, text, extra...)
}

// Error доставляет сообщение об ошибке (уровень 3).
func (l *Logger) Error(text string, extra ...attrs.Attr) error {
	return l.Emit(LevelError, text, extra...)
}

// Critical доставляет критическую запись (уровень 4).
// Консольный приёмник после печати прерывает выполнение паникой с
// *CriticalError; хранилище сохраняет запись без прерывания.
func (l *Logger) Critical(text string, extra ...attrs.Attr) error {
	return l.Emit(LevelCritical, text, extra...)
}

// String возвращает текстовое представление логгера:
// порог и атрибуты в алфавитном порядке.
func (l *Logger) String() string {
	return fmt.Sprintf("Logger (%s) attributes- %s", l.threshold, l.attrs)
}
