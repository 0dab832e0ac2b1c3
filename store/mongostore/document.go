package mongostore

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Kargones/diaglog/store"
)

// mongoIDKey — служебный ключ MongoDB, который хранилище добавляет к
// каждому документу. В контракте журнала он не участвует и вырезается
// из результатов выборки.
const mongoIDKey = "_id"

// filterToBSON транслирует фильтр контракта в запрос MongoDB.
// Граница времени имеет приоритет над равенством по полю времени:
// если фильтр содержит и то и другое, действует граница.
func filterToBSON(f store.Filter) bson.M {
	query := bson.M{}
	for key, value := range f.Equals {
		query[key] = value
	}
	if !f.OlderThan.IsZero() {
		query[store.FieldTimestamp] = bson.M{"$lt": f.OlderThan}
	}
	return query
}

// normalizeDocument переводит документ драйвера в документ контракта:
// вырезает "_id" и возвращает BSON-типам их Go-эквиваленты, чтобы
// остальной код не зависел от типов драйвера.
func normalizeDocument(raw bson.M) store.Document {
	doc := make(store.Document, len(raw))
	for key, value := range raw {
		if key == mongoIDKey {
			continue
		}
		doc[key] = normalizeValue(value)
	}
	return doc
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case primitive.DateTime:
		return v.Time()
	case primitive.A:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalizeValue(item)
		}
		return out
	case bson.M:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = normalizeValue(item)
		}
		return out
	default:
		return value
	}
}
