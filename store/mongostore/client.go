// Package mongostore предоставляет реализацию хранилища журнала поверх MongoDB.
package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Kargones/diaglog/store"
)

// Compile-time проверка реализации контракта хранилища.
var _ store.Store = (*Client)(nil)

// ClientOptions содержит параметры для создания MongoDB клиента.
type ClientOptions struct {
	// URI — строка подключения MongoDB.
	// Пример: "mongodb://localhost:27017"
	URI string
	// Database — имя базы данных (по умолчанию "diaglog")
	Database string
	// Collection — имя коллекции журнала (по умолчанию store.DefaultCollection)
	Collection string
	// ConnectTimeout — таймаут установки соединения (по умолчанию 10 секунд)
	ConnectTimeout time.Duration
}

// Client — реализация хранилища журнала для MongoDB.
type Client struct {
	client *mongo.Client
	coll   *mongo.Collection
	opts   ClientOptions
}

// NewClient создаёт новый MongoDB клиент с указанными параметрами.
// Примечание: подключение устанавливается через Connect().
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.URI == "" {
		return nil, store.NewStoreError(store.ErrStoreValidation, "URI обязателен", nil)
	}
	if opts.Database == "" {
		opts.Database = "diaglog"
	}
	if opts.Collection == "" {
		opts.Collection = store.DefaultCollection
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 10 * time.Second
	}

	return &Client{opts: opts}, nil
}

// Connect устанавливает соединение с сервером MongoDB и проверяет его
// доступность.
func (c *Client) Connect(ctx context.Context) error {
	connectCtx, cancel := context.WithTimeout(ctx, c.opts.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(c.opts.URI))
	if err != nil {
		return store.NewStoreError(store.ErrStoreConnect, "не удалось создать подключение к MongoDB", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		// best-effort disconnect; исходная ошибка важнее
		_ = client.Disconnect(context.Background())
		if ctx.Err() != nil {
			return store.NewStoreError(store.ErrStoreConnect, "контекст отменён при проверке подключения", ctx.Err())
		}
		return store.NewStoreError(store.ErrStoreConnect, "сервер MongoDB недоступен", err)
	}

	c.client = client
	c.coll = client.Database(c.opts.Database).Collection(c.opts.Collection)
	return nil
}

// Ping проверяет доступность сервера.
func (c *Client) Ping(ctx context.Context) error {
	if c.client == nil {
		return store.NewStoreError(store.ErrStoreConnect, "подключение не установлено", nil)
	}
	if err := c.client.Ping(ctx, readpref.Primary()); err != nil {
		return store.NewStoreError(store.ErrStoreConnect, "сервер MongoDB недоступен", err)
	}
	return nil
}

// Close разрывает соединение с сервером.
func (c *Client) Close(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	err := c.client.Disconnect(ctx)
	c.client = nil
	c.coll = nil
	if err != nil {
		return store.NewStoreError(store.ErrStoreConnect, "ошибка закрытия подключения", err)
	}
	return nil
}

// Insert сохраняет один документ журнала.
func (c *Client) Insert(ctx context.Context, doc store.Document) error {
	if c.coll == nil {
		return store.NewStoreError(store.ErrStoreInsert, "подключение не установлено", nil)
	}

	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		return store.NewStoreError(store.ErrStoreInsert, "не удалось сохранить документ журнала", err)
	}
	return nil
}

// Find возвращает документы, удовлетворяющие фильтру.
// Служебный ключ MongoDB "_id" в результаты не попадает; порядок
// документов контрактом не гарантируется.
func (c *Client) Find(ctx context.Context, f store.Filter) ([]store.Document, error) {
	if c.coll == nil {
		return nil, store.NewStoreError(store.ErrStoreFind, "подключение не установлено", nil)
	}

	cursor, err := c.coll.Find(ctx, filterToBSON(f))
	if err != nil {
		return nil, store.NewStoreError(store.ErrStoreFind, "не удалось выполнить выборку журнала", err)
	}

	var raw []bson.M
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, store.NewStoreError(store.ErrStoreDecode, "не удалось декодировать документы журнала", err)
	}

	docs := make([]store.Document, 0, len(raw))
	for _, item := range raw {
		docs = append(docs, normalizeDocument(item))
	}
	return docs, nil
}

// Remove удаляет все документы, удовлетворяющие фильтру.
func (c *Client) Remove(ctx context.Context, f store.Filter) error {
	if c.coll == nil {
		return store.NewStoreError(store.ErrStoreRemove, "подключение не установлено", nil)
	}

	if _, err := c.coll.DeleteMany(ctx, filterToBSON(f)); err != nil {
		return store.NewStoreError(store.ErrStoreRemove, "не удалось удалить документы журнала", err)
	}
	return nil
}

// EnsureIndex создаёт составной индекс по перечисленным полям.
// MongoDB трактует повторное создание идентичного индекса как no-op,
// поэтому операция идемпотентна и безопасна при параллельных вызовах.
func (c *Client) EnsureIndex(ctx context.Context, keys ...string) error {
	if c.coll == nil {
		return store.NewStoreError(store.ErrStoreIndex, "подключение не установлено", nil)
	}
	if len(keys) == 0 {
		return store.NewStoreError(store.ErrStoreValidation, "индекс требует хотя бы одно поле", nil)
	}

	indexKeys := bson.D{}
	for _, key := range keys {
		indexKeys = append(indexKeys, bson.E{Key: key, Value: 1})
	}

	_, err := c.coll.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: indexKeys})
	if err != nil {
		return store.NewStoreError(store.ErrStoreIndex, "не удалось создать индекс журнала", err)
	}
	return nil
}
