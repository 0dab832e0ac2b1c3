package sqlstore

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/Kargones/diaglog/store"
)

// attrKeyPattern ограничивает ключи атрибутов в фильтрах безопасным
// подмножеством: ключ подставляется в JSON-путь внутри текста запроса.
var attrKeyPattern = identPattern

// reservedColumn сопоставляет служебное поле документа колонке таблицы.
func reservedColumn(key string) (string, bool) {
	switch key {
	case store.FieldTimestamp:
		return "Ts", true
	case store.FieldLevel:
		return "Severity", true
	case store.FieldText:
		return "LogText", true
	default:
		return "", false
	}
}

// buildWhere транслирует фильтр контракта в условие WHERE.
// Служебные поля сравниваются по колонкам, пользовательские атрибуты —
// через JSON_VALUE по колонке Attrs. Пустой фильтр даёт пустое условие.
//
// Граница времени имеет приоритет над равенством по полю времени.
func buildWhere(f store.Filter) (string, []any, error) {
	var (
		clauses []string
		args    []any
	)

	next := func() string {
		return fmt.Sprintf("@p%d", len(args)+1)
	}

	hasOlderThan := !f.OlderThan.IsZero()

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

		if !attrKeyPattern.MatchString(key) {
			return "", nil, store.NewStoreError(store.ErrStoreValidation,
				fmt.Sprintf("недопустимый ключ атрибута в фильтре: %q", key), nil)
		}

		scalar, err := jsonScalar(value)
		if err != nil {
			return "", nil, err
		}
		clauses = append(clauses, fmt.Sprintf(`JSON_VALUE(Attrs, '$."%s"') = %s`, key, next()))
		args = append(args, scalar)
	}

	if hasOlderThan {
		clauses = append(clauses, fmt.Sprintf("Ts < %s", next()))
		args = append(args, f.OlderThan)
	}

	if len(clauses) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

// jsonScalar приводит значение фильтра к текстовой форме, которую
// возвращает JSON_VALUE: скалярное значение без JSON-кавычек.
func jsonScalar(value any) (string, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return "", store.NewStoreError(store.ErrStoreValidation,
			"значение фильтра не сериализуется в JSON", err)
	}
	s := string(encoded)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return s, nil
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

// indexNameFor строит имя индекса из имени таблицы и колонок.
func indexNameFor(table string, columns []string) string {
	return "IX_" + table + "_" + strings.Join(columns, "_")
}

// joinColumns собирает список колонок для CREATE INDEX.
func joinColumns(columns []string) string {
	return strings.Join(columns, ", ")
}
