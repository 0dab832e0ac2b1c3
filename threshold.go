package diaglog

import (
	"fmt"
	"strings"
)

// Threshold — порог подробности консольного вывода.
// Порог управляет только уровнями msg и terse: предупреждения и ошибки
// печатаются при любом пороге.
type Threshold int

const (
	// ThresholdOff — печатаются только warn, error и critical.
	ThresholdOff Threshold = iota
	// ThresholdTerse — дополнительно печатаются краткие сводки (terse).
	ThresholdTerse
	// ThresholdOn — печатается всё, включая рядовые сообщения (msg).
	ThresholdOn
)

// String возвращает каноническое имя порога.
func (t Threshold) String() string {
	switch t {
	case ThresholdOff:
		return "off"
	case ThresholdTerse:
		return "terse"
	case ThresholdOn:
		return "on"
	default:
		return fmt.Sprintf("threshold(%d)", int(t))
	}
}

// ParseThreshold разбирает имя порога без учёта регистра.
// Допустимы только "off", "terse" и "on"; всё остальное, включая пустую
// строку, отклоняется с ошибкой LOGGER.INVALID_LEVEL.
func ParseThreshold(s string) (Threshold, error) {
	switch strings.ToLower(s) {
	case "off":
		return ThresholdOff, nil
	case "terse":
		return ThresholdTerse, nil
	case "on":
		return ThresholdOn, nil
	default:
		return ThresholdOff, NewLoggerError(ErrInvalidLevel,
			fmt.Sprintf("недопустимый порог подробности %q: ожидается off, terse или on", s), nil)
	}
}
