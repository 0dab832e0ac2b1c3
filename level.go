package diaglog

import "fmt"

// Level — уровень серьёзности записи журнала.
// Числовые значения зафиксированы протоколом хранения и не должны меняться.
type Level int

const (
	// LevelMsg — рядовое сообщение, печатается только при полной подробности.
	LevelMsg Level = iota
	// LevelTerse — краткая сводка хода выполнения.
	LevelTerse
	// LevelWarn — предупреждение, печатается всегда.
	LevelWarn
	// LevelError — ошибка, печатается всегда.
	LevelError
	// LevelCritical — критическая ошибка: печатается всегда и прерывает
	// выполнение вызывающей стороны.
	LevelCritical
)

// Valid сообщает, входит ли уровень в допустимый диапазон.
func (l Level) Valid() bool {
	return l >= LevelMsg && l <= LevelCritical
}

// Label возвращает текстовую метку уровня для хранимых записей.
// Метки зафиксированы протоколом хранения: msg и terse остаются пустыми,
// чтобы не загромождать журнал рядовых сообщений.
func (l Level) Label() string {
	switch l {
	case LevelWarn:
		return "[Warning]"
	case LevelError:
		return "[Error]"
	case LevelCritical:
		return "*CRITICAL*"
	default:
		return ""
	}
}

// String возвращает имя уровня для диагностики и меток метрик.
func (l Level) String() string {
	switch l {
	case LevelMsg:
		return "msg"
	case LevelTerse:
		return "terse"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelCritical:
		return "critical"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}
