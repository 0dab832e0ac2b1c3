package diaglog

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kargones/diaglog/attrs"
)

// failingDeliverer возвращает заданную ошибку на каждую доставку.
type failingDeliverer struct{ err error }

func (d failingDeliverer) Deliver(Level, Threshold, string, attrs.Set) error { return d.err }

// TestComposite_DeliversToAllInOrder проверяет веерную доставку по порядку.
func TestComposite_DeliversToAllInOrder(t *testing.T) {
	first := &recordingDeliverer{}
	second := &recordingDeliverer{}
	composite := NewComposite(first, second)

	require.NoError(t, composite.Deliver(LevelWarn, ThresholdOff, "запись", attrs.Set{}))

	require.Len(t, first.all(), 1, "первый приёмник должен получить запись")
	require.Len(t, second.all(), 1, "второй приёмник должен получить запись")
}

// TestComposite_CollectsAllErrors проверяет что ошибка одного приёмника
// не лишает записи остальных, а ошибки объединяются.
func TestComposite_CollectsAllErrors(t *testing.T) {
	errFirst := errors.New("первый приёмник недоступен")
	errSecond := errors.New("второй приёмник недоступен")
	witness := &recordingDeliverer{}
	composite := NewComposite(failingDeliverer{errFirst}, witness, failingDeliverer{errSecond})

	err := composite.Deliver(LevelError, ThresholdOff, "запись", attrs.Set{})

	require.Error(t, err)
	assert.ErrorIs(t, err, errFirst)
	assert.ErrorIs(t, err, errSecond)
	assert.Len(t, witness.all(), 1, "приёмник между сбойными должен получить запись")
}

// TestComposite_StoreBeforeConsole проверяет порядок "хранилище до консоли":
// критическая запись успевает сохраниться до прерывания.
func TestComposite_StoreBeforeConsole(t *testing.T) {
	st := &fakeWriteStore{}
	storeDeliverer, err := NewStoreDeliverer(st, StoreDelivererOptions{Echo: &bytes.Buffer{}})
	require.NoError(t, err)

	var out bytes.Buffer
	console := NewConsole(ConsoleOptions{Out: &out})
	composite := NewComposite(storeDeliverer, console)

	var recovered any
	func() {
		defer func() { recovered = recover() }()
		_ = composite.Deliver(LevelCritical, ThresholdOff, "критический сбой", attrs.Set{})
	}()

	require.NotNil(t, recovered, "паника консоли должна пройти сквозь веер")
	assert.IsType(t, &CriticalError{}, recovered)
	require.Len(t, st.allDocs(), 1, "запись должна сохраниться до прерывания")
	assert.Equal(t, "критический сбой\n", out.String(), "консоль должна успеть напечатать текст")
}

// TestComposite_Empty проверяет что пустой веер допустим.
func TestComposite_Empty(t *testing.T) {
	composite := NewComposite()

	assert.NoError(t, composite.Deliver(LevelMsg, ThresholdOn, "в никуда", attrs.Set{}))
}

// TestNopDeliverer_DiscardsEverything проверяет что NopDeliverer молча
// отбрасывает записи всех уровней, включая критический.
func TestNopDeliverer_DiscardsEverything(t *testing.T) {
	nop := NewNopDeliverer()

	for _, level := range []Level{LevelMsg, LevelTerse, LevelWarn, LevelError, LevelCritical} {
		assert.NotPanics(t, func() {
			assert.NoError(t, nop.Deliver(level, ThresholdOn, "запись", attrs.Set{}))
		}, "NopDeliverer не должен ни паниковать, ни ошибаться на уровне %s", level)
	}
}
