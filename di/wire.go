//go:build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"github.com/Kargones/diaglog/config"
)

//go:generate wire

// ProviderSet объединяет все провайдеры журнала.
// Используется в InitializeFacility для построения графа зависимостей.
//
// При добавлении новых провайдеров:
// 1. Создать функцию провайдера в providers.go
// 2. Добавить её в ProviderSet
// 3. Перегенерировать: go generate ./di/...
var ProviderSet = wire.NewSet(
	ProvideCollector,
	ProvideConsoleWriter,
	ProvideStore,
	ProvideReader,
	wire.Struct(new(Facility), "*"),
)

// InitializeFacility создаёт и инициализирует Facility через Wire DI.
// Принимает внешний Config (загруженный через config.Load()).
//
// Wire генерирует реализацию этой функции в wire_gen.go.
// Функция здесь является "заглушкой" с wire.Build() вызовом.
//
// Пример использования:
//
//	cfg, err := config.Load("config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	facility, err := di.InitializeFacility(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer facility.Close(ctx)
//
// Циклические зависимости между провайдерами обнаруживаются на этапе
// компиляции при генерации wire_gen.go.
func InitializeFacility(ctx context.Context, cfg *config.Config) (*Facility, error) {
	wire.Build(ProviderSet)
	return nil, nil // Wire заменит это на реальную реализацию
}
