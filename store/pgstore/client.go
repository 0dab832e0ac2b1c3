// Package pgstore предоставляет реализацию хранилища журнала поверх PostgreSQL.
//
// Документы раскладываются по колонкам: служебные поля журнала занимают
// ts, severity и log_text, пользовательские атрибуты хранятся в колонке
// attrs типа JSONB. Фильтры по атрибутам транслируются в оператор
// вложенности @>, что позволяет использовать GIN-индекс по attrs.
// ВАЖНО: значения атрибутов проходят через JSON, поэтому при выборке
// числа возвращаются как float64.
package pgstore

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	// blank import для драйвера PostgreSQL
	_ "github.com/lib/pq"

	"github.com/Kargones/diaglog/store"
)

// Compile-time проверка реализации контракта хранилища.
var _ store.Store = (*Client)(nil)

// identPattern ограничивает имена таблиц безопасным подмножеством:
// имя подставляется в текст DDL/DML запросов.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ClientOptions содержит параметры для создания PostgreSQL клиента.
type ClientOptions struct {
	// Host — адрес сервера PostgreSQL
	Host string
	// Port — порт сервера (по умолчанию 5432)
	Port int
	// User — имя пользователя
	User string
	// Password — пароль пользователя
	Password string
	// Database — имя базы данных (по умолчанию "diaglog")
	Database string
	// Table — имя таблицы журнала (по умолчанию store.DefaultCollection)
	Table string
	// SSLMode — режим SSL подключения (по умолчанию "disable")
	SSLMode string
	// MaxOpenConns — предел открытых соединений (по умолчанию 50)
	MaxOpenConns int
	// MaxIdleConns — предел простаивающих соединений (по умолчанию 50)
	MaxIdleConns int
}

// Client — реализация хранилища журнала для PostgreSQL.
type Client struct {
	db   *sqlx.DB
	opts ClientOptions
}

// NewClient создаёт новый PostgreSQL клиент с указанными параметрами.
// Примечание: подключение устанавливается через Connect().
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.Host == "" {
		return nil, store.NewStoreError(store.ErrStoreValidation, "host обязателен", nil)
	}
	if opts.Port == 0 {
		opts.Port = 5432
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
	if opts.SSLMode == "" {
		opts.SSLMode = "disable"
	}
	if opts.MaxOpenConns == 0 {
		opts.MaxOpenConns = 50
	}
	if opts.MaxIdleConns == 0 {
		opts.MaxIdleConns = 50
	}

	return &Client{opts: opts}, nil
}

// Connect устанавливает соединение с сервером и создаёт таблицу журнала,
// если её ещё нет. Создание таблицы идемпотентно.
func (c *Client) Connect(ctx context.Context) error {
	dsn := fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s password=%s",
		c.opts.Host, c.opts.Port, c.opts.User, c.opts.Database, c.opts.SSLMode, c.opts.Password)

	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		if ctx.Err() != nil {
			return store.NewStoreError(store.ErrStoreConnect, "контекст отменён при подключении", ctx.Err())
		}
		return store.NewStoreError(store.ErrStoreConnect, "сервер PostgreSQL недоступен", err)
	}
	db.SetMaxOpenConns(c.opts.MaxOpenConns)
	db.SetMaxIdleConns(c.opts.MaxIdleConns)

	c.db = db

	if err := c.ensureTable(ctx); err != nil {
		_ = db.Close()
		c.db = nil
		return err
	}
	return nil
}

// Ping проверяет доступность сервера.
func (c *Client) Ping(ctx context.Context) error {
	if c.db == nil {
		return store.NewStoreError(store.ErrStoreConnect, "подключение не установлено", nil)
	}
	if err := c.db.PingContext(ctx); err != nil {
		return store.NewStoreError(store.ErrStoreConnect, "сервер PostgreSQL недоступен", err)
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

// table возвращает имя таблицы в кавычках: PostgreSQL приводит имена
// без кавычек к нижнему регистру, а таблица по умолчанию называется Logs.
func (c *Client) table() string {
	return `"` + c.opts.Table + `"`
}

// ensureTable создаёт таблицу журнала, если она отсутствует.
func (c *Client) ensureTable(ctx context.Context) error {
	stmt := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	id BIGSERIAL PRIMARY KEY,
	ts TIMESTAMPTZ NOT NULL,
	severity TEXT NOT NULL,
	log_text TEXT NOT NULL,
	attrs JSONB NOT NULL
)`, c.table())

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

	ts, ok := doc[store.FieldTimestamp].(time.Time)
	if !ok {
		return store.NewStoreError(store.ErrStoreValidation, "документ без служебного поля времени", nil)
	}
	severity, ok := doc[store.FieldLevel].(string)
	if !ok {
		return store.NewStoreError(store.ErrStoreValidation, "документ без служебного поля уровня", nil)
	}
	text, ok := doc[store.FieldText].(string)
	if !ok {
		return store.NewStoreError(store.ErrStoreValidation, "документ без служебного поля текста", nil)
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
		return store.NewStoreError(store.ErrStoreValidation, "атрибуты документа не сериализуются в JSON", err)
	}

	stmt := fmt.Sprintf("INSERT INTO %s (ts, severity, log_text, attrs) VALUES ($1, $2, $3, $4)", c.table())
	if _, err := c.db.ExecContext(ctx, stmt, ts, severity, text, encoded); err != nil {
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

	stmt := fmt.Sprintf("SELECT ts, severity, log_text, attrs FROM %s%s", c.table(), where)

	rows, err := c.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, store.NewStoreError(store.ErrStoreFind, "не удалось выполнить выборку журнала", err)
	}
	defer rows.Close()

	var docs []store.Document
	for rows.Next() {
		var (
			ts       time.Time
			severity string
			text     string
			rawAttrs []byte
		)
		if err := rows.Scan(&ts, &severity, &text, &rawAttrs); err != nil {
			return nil, store.NewStoreError(store.ErrStoreDecode, "не удалось прочитать строку журнала", err)
		}

		attrs := map[string]any{}
		if len(rawAttrs) > 0 {
			if err := json.Unmarshal(rawAttrs, &attrs); err != nil {
				return nil, store.NewStoreError(store.ErrStoreDecode, "атрибуты документа не читаются из JSON", err)
			}
		}

		doc := make(store.Document, len(attrs)+3)
		for key, value := range attrs {
			doc[key] = value
		}
		doc[store.FieldTimestamp] = ts
		doc[store.FieldLevel] = severity
		doc[store.FieldText] = text
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

	stmt := fmt.Sprintf("DELETE FROM %s%s", c.table(), where)
	if _, err := c.db.ExecContext(ctx, stmt, args...); err != nil {
		return store.NewStoreError(store.ErrStoreRemove, "не удалось удалить документы журнала", err)
	}
	return nil
}

// EnsureIndex создаёт составной индекс по перечисленным служебным полям.
// CREATE INDEX IF NOT EXISTS идемпотентен и безопасен при параллельных
// вызовах.
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

	indexName := "ix_" + strings.ToLower(c.opts.Table) + "_" + strings.Join(columns, "_")
	stmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
		indexName, c.table(), strings.Join(columns, ", "))

	if _, err := c.db.ExecContext(ctx, stmt); err != nil {
		return store.NewStoreError(store.ErrStoreIndex, "не удалось создать индекс журнала", err)
	}
	return nil
}

// reservedColumn сопоставляет служебное поле документа колонке таблицы.
func reservedColumn(key string) (string, bool) {
	switch key {
	case store.FieldTimestamp:
		return "ts", true
	case store.FieldLevel:
		return "severity", true
	case store.FieldText:
		return "log_text", true
	default:
		return "", false
	}
}

// buildWhere транслирует фильтр контракта в условие WHERE.
// Служебные поля сравниваются по колонкам, пользовательские атрибуты —
// через JSONB-вложенность. Граница времени имеет приоритет над
// равенством по полю времени.
func buildWhere(f store.Filter) (string, []any, error) {
	var (
		clauses []string
		args    []any
	)

	next := func() string {
		return fmt.Sprintf("$%d", len(args)+1)
	}

	hasOlderThan := !f.OlderThan.IsZero()
	attrEquals := map[string]any{}

	for _, key := range sortedKeys(f.Equals) {
		value := f.Equals[key]

		if column, ok := reservedColumn(key); ok {
			if key == store.FieldTimestamp && hasOlderThan {
				continue
			}
			clauses = append(clauses, fmt.Sprintf("%s = %s", column, next()))
			args = append(args, value)
			continue
		}
		attrEquals[key] = value
	}

	if len(attrEquals) > 0 {
		encoded, err := json.Marshal(attrEquals)
		if err != nil {
			return "", nil, store.NewStoreError(store.ErrStoreValidation,
				"значения фильтра не сериализуются в JSON", err)
		}
		clauses = append(clauses, fmt.Sprintf("attrs @> %s::jsonb", next()))
		args = append(args, string(encoded))
	}

	if hasOlderThan {
		clauses = append(clauses, fmt.Sprintf("ts < %s", next()))
		args = append(args, f.OlderThan)
	}

	if len(clauses) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

// sortedKeys возвращает ключи карты в устойчивом порядке: условие WHERE
// должно быть детерминированным для логов запросов и тестов.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
