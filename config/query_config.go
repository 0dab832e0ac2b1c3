package config

// QueryConfig содержит настройки чтения и очистки журнала.
type QueryConfig struct {
	// LookbackDays — граница выборки по умолчанию: возвращаются записи
	// старше, чем сейчас минус это количество дней
	LookbackDays int `yaml:"lookbackDays" env:"DL_QUERY_LOOKBACK_DAYS" env-default:"1"`

	// RetentionDays — срок хранения записей: очистка удаляет всё старше
	RetentionDays int `yaml:"retentionDays" env:"DL_QUERY_RETENTION_DAYS" env-default:"365"`
}

// Validate проверяет секцию чтения журнала.
func (c *QueryConfig) Validate() error {
	if c.LookbackDays < 0 {
		return NewConfigError(ErrConfigValidate, "lookbackDays не может быть отрицательным", nil)
	}
	if c.RetentionDays < 0 {
		return NewConfigError(ErrConfigValidate, "retentionDays не может быть отрицательным", nil)
	}
	return nil
}
