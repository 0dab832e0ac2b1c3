package diaglog

import (
	"errors"

	"github.com/Kargones/diaglog/attrs"
)

// Composite рассылает каждую запись нескольким приёмникам по порядку.
//
// Обход не прерывается на ошибке: все приёмники получают запись, ошибки
// собираются через errors.Join. Паника консольного приёмника на
// критическом уровне прерывает обход, поэтому хранилище в комбинации с
// консолью ставится первым — запись успевает сохраниться до прерывания.
type Composite struct {
	targets []Deliverer
}

// Проверка соответствия интерфейсу.
var _ Deliverer = (*Composite)(nil)

// NewComposite создаёт веерный приёмник. Порядок аргументов задаёт
// порядок доставки.
func NewComposite(targets ...Deliverer) *Composite {
	return &Composite{targets: targets}
}

// Deliver передаёт запись каждому приёмнику по порядку.
func (c *Composite) Deliver(level Level, threshold Threshold, text string, set attrs.Set) error {
	var errs []error
	for _, target := range c.targets {
		if err := target.Deliver(level, threshold, text, set); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
