package config

import (
	"time"

	"github.com/Kargones/diaglog/metrics"
)

// MetricsConfig содержит настройки для Prometheus метрик.
type MetricsConfig struct {
	// Enabled — включены ли метрики (по умолчанию false).
	Enabled bool `yaml:"enabled" env:"DL_METRICS_ENABLED" env-default:"false"`

	// PushgatewayURL — URL Prometheus Pushgateway.
	// Пример: "http://pushgateway:9091"
	PushgatewayURL string `yaml:"pushgatewayUrl" env:"DL_METRICS_PUSHGATEWAY_URL"`

	// JobName — имя job для группировки метрик.
	// По умолчанию: "diaglog"
	JobName string `yaml:"jobName" env:"DL_METRICS_JOB_NAME" env-default:"diaglog"`

	// Timeout — таймаут HTTP запросов к Pushgateway.
	// По умолчанию: 10 секунд.
	Timeout time.Duration `yaml:"timeout" env:"DL_METRICS_TIMEOUT" env-default:"10s"`

	// InstanceLabel — переопределение instance label.
	// Если пусто — используется hostname.
	InstanceLabel string `yaml:"instanceLabel" env:"DL_METRICS_INSTANCE"`
}

// ToMetrics переводит секцию конфигурации в конфигурацию пакета metrics.
func (c *MetricsConfig) ToMetrics() metrics.Config {
	return metrics.Config{
		Enabled:        c.Enabled,
		PushgatewayURL: c.PushgatewayURL,
		JobName:        c.JobName,
		Timeout:        c.Timeout,
		InstanceLabel:  c.InstanceLabel,
	}
}
