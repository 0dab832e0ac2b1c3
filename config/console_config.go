package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Kargones/diaglog"
)

// Поддерживаемые типы консольного вывода.
const (
	OutputStdout = "stdout"
	OutputStderr = "stderr"
	OutputFile   = "file"
)

// ConsoleConfig содержит настройки консольного вывода.
// Этот же writer принимает эхо-строки хранилища.
type ConsoleConfig struct {
	// Threshold — порог подробности (off, terse, on)
	Threshold string `yaml:"threshold" env:"DL_CONSOLE_THRESHOLD" env-default:"off"`

	// Output — вывод записей (stdout, stderr, file)
	Output string `yaml:"output" env:"DL_CONSOLE_OUTPUT" env-default:"stdout"`

	// FilePath — путь к файлу вывода (если output=file)
	FilePath string `yaml:"filePath" env:"DL_CONSOLE_FILE_PATH"`

	// MaxSize — максимальный размер файла вывода в MB
	MaxSize int `yaml:"maxSize" env:"DL_CONSOLE_MAX_SIZE" env-default:"100"`

	// MaxBackups — максимальное количество backup файлов
	MaxBackups int `yaml:"maxBackups" env:"DL_CONSOLE_MAX_BACKUPS" env-default:"3"`

	// MaxAge — максимальный возраст backup файлов в днях
	MaxAge int `yaml:"maxAge" env:"DL_CONSOLE_MAX_AGE" env-default:"7"`

	// Compress — сжимать ли backup файлы
	Compress bool `yaml:"compress" env:"DL_CONSOLE_COMPRESS" env-default:"true"`
}

// Validate проверяет секцию консольного вывода.
func (c *ConsoleConfig) Validate() error {
	if _, err := diaglog.ParseThreshold(c.Threshold); err != nil {
		return NewConfigError(ErrConfigValidate,
			fmt.Sprintf("недопустимый порог подробности %q", c.Threshold), err)
	}

	switch c.Output {
	case OutputStdout, OutputStderr:
	case OutputFile:
		if c.FilePath == "" {
			return NewConfigError(ErrConfigValidate,
				"output=file требует filePath", nil)
		}
	default:
		return NewConfigError(ErrConfigValidate,
			fmt.Sprintf("недопустимый output %q: ожидается stdout, stderr или file", c.Output), nil)
	}

	if c.MaxSize < 0 || c.MaxBackups < 0 || c.MaxAge < 0 {
		return NewConfigError(ErrConfigValidate,
			"параметры ротации не могут быть отрицательными", nil)
	}
	return nil
}

// NewWriter создаёт io.Writer согласно конфигурации.
//
// Поддерживаемые режимы вывода (Output):
//   - "stdout" или "" (default): записи печатаются в os.Stdout
//   - "stderr": записи печатаются в os.Stderr
//   - "file": записи пишутся в файл с автоматической ротацией через lumberjack
func (c *ConsoleConfig) NewWriter() io.Writer {
	switch c.Output {
	case OutputFile:
		return c.newLumberjackWriter()
	case OutputStderr:
		return os.Stderr
	case OutputStdout, "":
		return os.Stdout
	default:
		// не теряем записи молча: предупреждаем и откатываемся на stdout
		_, _ = fmt.Fprintf(os.Stderr, "WARNING: неизвестный console output %q, falling back to stdout\n", c.Output)
		return os.Stdout
	}
}

// newLumberjackWriter создаёт io.Writer с ротацией на основе lumberjack.
// Автоматически создаёт директорию для файла, если не существует.
// При пустом FilePath возвращает os.Stdout как fallback.
func (c *ConsoleConfig) newLumberjackWriter() io.Writer {
	if c.FilePath == "" {
		_, _ = os.Stderr.WriteString("WARNING: console output=file but filePath is empty, falling back to stdout\n")
		return os.Stdout
	}

	dir := filepath.Dir(c.FilePath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			_, _ = fmt.Fprintf(os.Stderr,
				"WARNING: не удалось создать директорию вывода %q: %v, falling back to stdout\n", dir, err)
			return os.Stdout
		}
	}

	return &lumberjack.Logger{
		Filename:   c.FilePath,
		MaxSize:    c.MaxSize, // MB
		MaxBackups: c.MaxBackups,
		MaxAge:     c.MaxAge, // days
		Compress:   c.Compress,
	}
}
