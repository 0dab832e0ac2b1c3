// Package sqlstore предоставляет реализацию хранилища журнала поверх
// Microsoft SQL Server.
//
// Документы раскладываются по колонкам: служебные поля журнала занимают
// Ts, Severity и LogText, пользовательские атрибуты сериализуются в JSON
// в колонке Attrs. Фильтры по атрибутам транслируются в JSON_VALUE.
// ВАЖНО: значения атрибутов проходят через JSON, поэтому при выборке
// числа возвращаются как float64.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"time"

	// blank import для драйвера SQL Server
	_ "github.com/denisenkom/go-mssqldb"

	"github.com/Kargones/diaglog/store"
)

// Compile-time проверка реализации контракта хранилища.
var _ store.Store = (*Client)(nil)

// identPattern ограничивает имена таблиц безопасным подмножеством.
// Имя таблицы попадает в текст DDL/DML запросов, поэтому произвольные
// символы недопустимы.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ClientOptions содержит параметры для создания клиента SQL Server.
type ClientOptions struct {
	// Server — адрес сервера SQL Server
	Server string
	// Port — порт сервера (по умолчанию 1433)
	Port int
	// User — имя пользователя
	User string
	// Password — пароль пользователя
	Password string
	// Database — имя базы данных (по умолчанию "diaglog")
	Database string
	// Table — имя таблицы журнала (по умолчанию store.DefaultCollection)
	Table string
	// Timeout — таймаут подключения (по умолчанию 30 секунд)
	Timeout time.Duration
	// Encrypt — использовать TLS шифрование (по умолчанию true).
	// Для явного отключения используйте NewClientWithEncrypt(opts, false).
	Encrypt bool
	// encryptSet — внутренний флаг: Encrypt был задан явно.
	encryptSet bool
}

// Client — реализация хранилища журнала для SQL Server.
type Client struct {
	db   *sql.DB
	opts ClientOptions
}

// NewClient создаёт новый клиент SQL Server с указанными параметрами.
// Примечание: подключение устанавливается через Connect().
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.Server == "" {
		return nil, store.NewStoreError(store.ErrStoreValidation, "server обязателен", nil)
	}
	if opts.Port == 0 {
		opts.Port = 1433
	}
	if opts.Port < 1 || opts.Port > 65535 {
		return nil, store.NewStoreError(store.ErrStoreValidation,
			fmt.Sprintf("недопустимый порт %d: ожидается 1..65535", opts.Port), nil)
	}
	if opts.Database == "" {
		opts.Database = "diaglog"
	}
	if opts.Table == "" {
		opts.Table = store.DefaultCollection
	}
	if !identPattern.MatchString(opts.Table) {
		return nil, store.NewStoreError(store.ErrStoreValidation,
			fmt.Sprintf("недопустимое имя таблицы %q", opts.Table), nil)
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	// По умолчанию включаем шифрование; явное отключение — через
	// NewClientWithEncrypt.
	if !opts.encryptSet {
		opts.Encrypt = true
	}

	return &Client{opts: opts}, nil
}

// NewClientWithEncrypt создаёт клиент SQL Server с явным указанием режима
// шифрования. Используйте этот конструктор для явного контроля над TLS.
func NewClientWithEncrypt(opts ClientOptions, encrypt bool) (*Client, error) {
	opts.Encrypt = encrypt
	opts.encryptSet = true
	return NewClient(opts)
}

// Connect устанавливает соединение с сервером и создаёт таблицу журнала,
// если её ещё нет. Создание таблицы идемпотентно.
func (c *Client) Connect(ctx context.Context) error {
	encryptMode := "true"
	if !c.opts.Encrypt {
		encryptMode = "disable"
	}

	// Экранируем параметры для защиты от инъекций в connection string:
	// ; и = имеют особое значение в DSN go-mssqldb.
	connString := fmt.Sprintf(
		"server=%s;user id=%s;password=%s;port=%d;database=%s;encrypt=%s;connection timeout=%d",
		escapeConnStringParam(c.opts.Server),
		escapeConnStringParam(c.opts.User),
		escapeConnStringParam(c.opts.Password),
		c.opts.Port,
		escapeConnStringParam(c.opts.Database),
		encryptMode,
		int(c.opts.Timeout.Seconds()),
	)

	db, err := sql.Open("sqlserver", connString)
	if err != nil {
		return store.NewStoreError(store.ErrStoreConnect, "не удалось создать подключение", err)
	}

	if err := db.PingContext(ctx); err != nil {
		// best-effort close; исходная ошибка важнее
		_ = db.Close()
		if ctx.Err() != nil {
			return store.NewStoreError(store.ErrStoreConnect, "контекст отменён при проверке подключения", ctx.Err())
		}
		return store.NewStoreError(store.ErrStoreConnect, "сервер недоступен", err)
	}

	c.db = db

	if err := c.ensureTable(ctx); err != nil {
		_ = db.Close()
		c.db = nil
		return err
	}
	return nil
}

// escapeConnStringParam экранирует параметр для безопасного использования
// в connection string.
func escapeConnStringParam(s string) string {
	return url.QueryEscape(s)
}

// Ping проверяет доступность сервера.
func (c *Client) Ping(ctx context.Context) error {
	if c.db == nil {
		return store.NewStoreError(store.ErrStoreConnect, "подключение не установлено", nil)
	}
	if err := c.db.PingContext(ctx); err != nil {
		return store.NewStoreError(store.ErrStoreConnect, "сервер недоступен", err)
	}
	return nil
}

// Close закрывает соединение с сервером.
func (c *Client) Close() error {
	if c.db != nil {
		err := c.db.Close()
		c.db = nil
		return err
	}
	return nil
}

// ensureTable создаёт таблицу журнала, если она отсутствует.
// Имя таблицы проверено identPattern при создании клиента.
func (c *Client) ensureTable(ctx context.Context) error {
	stmt := fmt.Sprintf(`
IF NOT EXISTS (SELECT 1 FROM sys.objects WHERE object_id = OBJECT_ID(N'[dbo].[%s]') AND type = N'U')
CREATE TABLE [dbo].[%s] (
	Id BIGINT IDENTITY(1,1) PRIMARY KEY,
	Ts DATETIME2(6) NOT NULL,
	Severity NVARCHAR(32) NOT NULL,
	LogText NVARCHAR(MAX) NOT NULL,
	Attrs NVARCHAR(MAX) NOT NULL
);`, c.opts.Table, c.opts.Table)

	if _, err := c.db.ExecContext(ctx, stmt); err != nil {
		return store.NewStoreError(store.ErrStoreConnect, "не удалось создать таблицу журнала", err)
	}
	return nil
}

// Insert сохраняет один документ журнала.
func (c *Client) Insert(ctx context.Context, doc store.Document) error {
	if c.db == nil {
		return store.NewStoreError(store.ErrStoreInsert, "подключение не установлено", nil)
	}

	row, err := splitDocument(doc)
	if err != nil {
		return err
	}

	stmt := fmt.Sprintf(
		"INSERT INTO [dbo].[%s] (Ts, Severity, LogText, Attrs) VALUES (@p1, @p2, @p3, @p4)",
		c.opts.Table)

	if _, err := c.db.ExecContext(ctx, stmt, row.ts, row.severity, row.text, row.attrsJSON); err != nil {
		return store.NewStoreError(store.ErrStoreInsert, "не удалось сохранить документ журнала", err)
	}
	return nil
}

// Find возвращает документы, удовлетворяющие фильтру.
func (c *Client) Find(ctx context.Context, f store.Filter) ([]store.Document, error) {
	if c.db == nil {
		return nil, store.NewStoreError(store.ErrStoreFind, "подключение не установлено", nil)
	}

	where, args, err := buildWhere(f)
	if err != nil {
		return nil, err
	}

	stmt := fmt.Sprintf("SELECT Ts, Severity, LogText, Attrs FROM [dbo].[%s]%s", c.opts.Table, where)

	rows, err := c.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, store.NewStoreError(store.ErrStoreFind, "не удалось выполнить выборку журнала", err)
	}
	defer rows.Close()

	var docs []store.Document
	for rows.Next() {
		var (
			ts        time.Time
			severity  string
			text      string
			attrsJSON string
		)
		if err := rows.Scan(&ts, &severity, &text, &attrsJSON); err != nil {
			return nil, store.NewStoreError(store.ErrStoreDecode, "не удалось прочитать строку журнала", err)
		}

		doc, err := assembleDocument(ts, severity, text, attrsJSON)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError(store.ErrStoreFind, "выборка журнала прервана", err)
	}
	return docs, nil
}

// Remove удаляет все документы, удовлетворяющие фильтру.
func (c *Client) Remove(ctx context.Context, f store.Filter) error {
	if c.db == nil {
		return store.NewStoreError(store.ErrStoreRemove, "подключение не установлено", nil)
	}

	where, args, err := buildWhere(f)
	if err != nil {
		return err
	}

	stmt := fmt.Sprintf("DELETE FROM [dbo].[%s]%s", c.opts.Table, where)

	if _, err := c.db.ExecContext(ctx, stmt, args...); err != nil {
		return store.NewStoreError(store.ErrStoreRemove, "не удалось удалить документы журнала", err)
	}
	return nil
}

// EnsureIndex создаёт составной индекс по перечисленным служебным полям.
// Запрос защищён проверкой sys.indexes, поэтому операция идемпотентна и
// безопасна при параллельных вызовах.
func (c *Client) EnsureIndex(ctx context.Context, keys ...string) error {
	if c.db == nil {
		return store.NewStoreError(store.ErrStoreIndex, "подключение не установлено", nil)
	}
	if len(keys) == 0 {
		return store.NewStoreError(store.ErrStoreValidation, "индекс требует хотя бы одно поле", nil)
	}

	columns := make([]string, 0, len(keys))
	for _, key := range keys {
		column, ok := reservedColumn(key)
		if !ok {
			return store.NewStoreError(store.ErrStoreValidation,
				fmt.Sprintf("индекс поддерживается только по служебным полям, получено %q", key), nil)
		}
		columns = append(columns, column)
	}

	indexName := indexNameFor(c.opts.Table, columns)
	stmt := fmt.Sprintf(`
IF NOT EXISTS (SELECT 1 FROM sys.indexes WHERE name = N'%s' AND object_id = OBJECT_ID(N'[dbo].[%s]'))
CREATE INDEX [%s] ON [dbo].[%s] (%s);`,
		indexName, c.opts.Table, indexName, c.opts.Table, joinColumns(columns))

	if _, err := c.db.ExecContext(ctx, stmt); err != nil {
		return store.NewStoreError(store.ErrStoreIndex, "не удалось создать индекс журнала", err)
	}
	return nil
}

// tableRow — документ, разложенный по колонкам таблицы.
type tableRow struct {
	ts        time.Time
	severity  string
	text      string
	attrsJSON string
}

// splitDocument раскладывает документ на колонки: служебные поля
// обязаны иметь ожидаемые типы, остальные ключи уходят в JSON.
func splitDocument(doc store.Document) (tableRow, error) {
	var row tableRow

	ts, ok := doc[store.FieldTimestamp].(time.Time)
	if !ok {
		return row, store.NewStoreError(store.ErrStoreValidation,
			"документ без служебного поля времени", nil)
	}
	severity, ok := doc[store.FieldLevel].(string)
	if !ok {
		return row, store.NewStoreError(store.ErrStoreValidation,
			"документ без служебного поля уровня", nil)
	}
	text, ok := doc[store.FieldText].(string)
	if !ok {
		return row, store.NewStoreError(store.ErrStoreValidation,
			"документ без служебного поля текста", nil)
	}

	attrs := make(map[string]any, len(doc))
	for key, value := range doc {
		switch key {
		case store.FieldTimestamp, store.FieldLevel, store.FieldText:
			continue
		}
		attrs[key] = value
	}

	encoded, err := json.Marshal(attrs)
	if err != nil {
		return row, store.NewStoreError(store.ErrStoreValidation,
			"атрибуты документа не сериализуются в JSON", err)
	}

	row.ts = ts
	row.severity = severity
	row.text = text
	row.attrsJSON = string(encoded)
	return row, nil
}

// assembleDocument собирает документ контракта из колонок таблицы.
func assembleDocument(ts time.Time, severity, text, attrsJSON string) (store.Document, error) {
	attrs := map[string]any{}
	if attrsJSON != "" {
		if err := json.Unmarshal([]byte(attrsJSON), &attrs); err != nil {
			return nil, store.NewStoreError(store.ErrStoreDecode,
				"атрибуты документа не читаются из JSON", err)
		}
	}

	doc := make(store.Document, len(attrs)+3)
	for key, value := range attrs {
		doc[key] = value
	}
	doc[store.FieldTimestamp] = ts
	doc[store.FieldLevel] = severity
	doc[store.FieldText] = text
	return doc, nil
}
