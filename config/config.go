// Package config загружает и проверяет конфигурацию журнала.
//
// Источники: YAML файл и переменные окружения с префиксом DL_
// (окружение переопределяет файл). Разбор выполняет cleanenv,
// значения по умолчанию заданы в тегах env-default.
package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config — корневая конфигурация журнала.
type Config struct {
	// Console — настройки консольного вывода и эхо-строк.
	Console ConsoleConfig `yaml:"console"`

	// Store — настройки хранилища журнала.
	Store StoreConfig `yaml:"store"`

	// Query — настройки чтения и очистки журнала.
	Query QueryConfig `yaml:"query"`

	// Metrics — настройки Prometheus метрик.
	Metrics MetricsConfig `yaml:"metrics"`
}

// Load загружает конфигурацию из YAML файла и переменных окружения.
// Пустой путь означает только переменные окружения и значения по
// умолчанию. Загруженная конфигурация сразу проверяется.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, NewConfigError(ErrConfigLoad,
				fmt.Sprintf("не удалось загрузить конфигурацию из %q", path), err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, NewConfigError(ErrConfigLoad,
				"не удалось загрузить конфигурацию из переменных окружения", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет все секции конфигурации.
func (c *Config) Validate() error {
	if err := c.Console.Validate(); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if err := c.Query.Validate(); err != nil {
		return err
	}

	metricsCfg := c.Metrics.ToMetrics()
	if err := metricsCfg.Validate(); err != nil {
		return NewConfigError(ErrConfigValidate, "недопустимая конфигурация метрик", err)
	}
	return nil
}
