package config

import (
	"fmt"
	"time"
)

// Поддерживаемые бэкенды хранилища журнала.
const (
	BackendMemory   = "memory"
	BackendMongo    = "mongo"
	BackendMSSQL    = "mssql"
	BackendPostgres = "postgres"
)

// StoreConfig содержит настройки хранилища журнала.
// Набор обязательных полей зависит от бэкенда: mongo подключается по
// URI, mssql и postgres — по host/user/password.
type StoreConfig struct {
	// Backend — бэкенд хранилища (memory, mongo, mssql, postgres)
	Backend string `yaml:"backend" env:"DL_STORE_BACKEND" env-default:"memory"`

	// URI — строка подключения MongoDB (при backend=mongo)
	URI string `yaml:"uri" env:"DL_STORE_URI"`

	// Host — адрес сервера БД (при backend=mssql или postgres)
	Host string `yaml:"host" env:"DL_STORE_HOST"`

	// Port — порт сервера БД; 0 означает порт по умолчанию драйвера
	Port int `yaml:"port" env:"DL_STORE_PORT" env-default:"0"`

	// User — имя пользователя БД
	User string `yaml:"user" env:"DL_STORE_USER"`

	// Password — пароль пользователя БД
	Password string `yaml:"password" env:"DL_STORE_PASSWORD"`

	// Database — имя базы данных
	Database string `yaml:"database" env:"DL_STORE_DATABASE" env-default:"diaglog"`

	// Collection — имя коллекции (таблицы) журнала
	Collection string `yaml:"collection" env:"DL_STORE_COLLECTION" env-default:"Logs"`

	// SSLMode — режим SSL для postgres
	SSLMode string `yaml:"sslMode" env:"DL_STORE_SSL_MODE" env-default:"disable"`

	// ConnectTimeout — таймаут установки соединения
	ConnectTimeout time.Duration `yaml:"connectTimeout" env:"DL_STORE_CONNECT_TIMEOUT" env-default:"10s"`
}

// Validate проверяет секцию хранилища.
func (c *StoreConfig) Validate() error {
	switch c.Backend {
	case BackendMemory:
	case BackendMongo:
		if c.URI == "" {
			return NewConfigError(ErrConfigValidate, "backend=mongo требует uri", nil)
		}
	case BackendMSSQL, BackendPostgres:
		if c.Host == "" {
			return NewConfigError(ErrConfigValidate,
				fmt.Sprintf("backend=%s требует host", c.Backend), nil)
		}
	default:
		return NewConfigError(ErrConfigValidate,
			fmt.Sprintf("недопустимый backend %q: ожидается memory, mongo, mssql или postgres", c.Backend), nil)
	}

	if c.ConnectTimeout < 0 {
		return NewConfigError(ErrConfigValidate, "connectTimeout не может быть отрицательным", nil)
	}
	return nil
}
