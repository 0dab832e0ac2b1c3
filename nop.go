package diaglog

import "github.com/Kargones/diaglog/attrs"

// NopDeliverer отбрасывает все записи, включая критические.
// Используется в тестах и при полностью отключённом выводе; в отличие от
// логгера без приёмника не возвращает ошибку.
type NopDeliverer struct{}

// Проверка соответствия интерфейсу.
var _ Deliverer = NopDeliverer{}

// NewNopDeliverer создаёт NopDeliverer.
func NewNopDeliverer() NopDeliverer {
	return NopDeliverer{}
}

// Deliver — no-op, всегда возвращает nil.
func (NopDeliverer) Deliver(level Level, threshold Threshold, text string, set attrs.Set) error {
	return nil
}
