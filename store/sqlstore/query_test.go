package sqlstore

import (
	"strings"
	"testing"
	"time"

	"github.com/Kargones/diaglog/store"
)

// TestBuildWhere проверяет трансляцию фильтра контракта в условие WHERE
func TestBuildWhere(t *testing.T) {
	cutoff := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		filter     store.Filter
		wantClause string
		wantArgs   []any
	}{
		{
			name:       "пустой фильтр",
			filter:     store.Filter{},
			wantClause: "",
			wantArgs:   nil,
		},
		{
			name:       "один пользовательский атрибут",
			filter:     store.Filter{Equals: map[string]any{"type": "system"}},
			wantClause: ` WHERE JSON_VALUE(Attrs, '$."type"') = @p1`,
			wantArgs:   []any{"system"},
		},
		{
			name: "атрибуты в алфавитном порядке",
			filter: store.Filter{Equals: map[string]any{
				"type":    "system",
				"attempt": 3,
				"stage":   "warmup",
			}},
			wantClause: ` WHERE JSON_VALUE(Attrs, '$."attempt"') = @p1` +
				` AND JSON_VALUE(Attrs, '$."stage"') = @p2` +
				` AND JSON_VALUE(Attrs, '$."type"') = @p3`,
			wantArgs: []any{"3", "warmup", "system"},
		},
		{
			name: "служебные поля сравниваются по колонкам",
			filter: store.Filter{Equals: map[string]any{
				store.FieldLevel: "[Error]",
				store.FieldText:  "сбой",
			}},
			wantClause: " WHERE Severity = @p1 AND LogText = @p2",
			wantArgs:   []any{"[Error]", "сбой"},
		},
		{
			name:       "только граница времени",
			filter:     store.Filter{OlderThan: cutoff},
			wantClause: " WHERE Ts < @p1",
			wantArgs:   []any{cutoff},
		},
		{
			name: "граница времени вытесняет равенство по времени",
			filter: store.Filter{
				Equals:    map[string]any{store.FieldTimestamp: cutoff.Add(time.Hour)},
				OlderThan: cutoff,
			},
			wantClause: " WHERE Ts < @p1",
			wantArgs:   []any{cutoff},
		},
		{
			name:       "равенство по времени без границы",
			filter:     store.Filter{Equals: map[string]any{store.FieldTimestamp: cutoff}},
			wantClause: " WHERE Ts = @p1",
			wantArgs:   []any{cutoff},
		},
		{
			name: "комбинированный фильтр",
			filter: store.Filter{
				Equals: map[string]any{
					store.FieldLevel: "[Error]",
					"type":           "system",
				},
				OlderThan: cutoff,
			},
			wantClause: ` WHERE Severity = @p1 AND JSON_VALUE(Attrs, '$."type"') = @p2 AND Ts < @p3`,
			wantArgs:   []any{"[Error]", "system", cutoff},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause, args, err := buildWhere(tt.filter)
			if err != nil {
				t.Fatalf("buildWhere() error = %v, want nil", err)
			}
			if clause != tt.wantClause {
				t.Errorf("clause = %q, want %q", clause, tt.wantClause)
			}
			if len(args) != len(tt.wantArgs) {
				t.Fatalf("len(args) = %d, want %d", len(args), len(tt.wantArgs))
			}
			for i := range args {
				if args[i] != tt.wantArgs[i] {
					t.Errorf("args[%d] = %v, want %v", i, args[i], tt.wantArgs[i])
				}
			}
		})
	}
}

// TestBuildWhere_InvalidAttrKey проверяет отклонение небезопасных ключей:
// ключ атрибута подставляется в JSON-путь внутри текста запроса
func TestBuildWhere_InvalidAttrKey(t *testing.T) {
	keys := []string{"bad-key", "a b", `ключ"') = 1 OR ('1' = '1`, ""}

	for _, key := range keys {
		t.Run(key, func(t *testing.T) {
			_, _, err := buildWhere(store.Filter{Equals: map[string]any{key: "v"}})
			if err == nil {
				t.Fatalf("buildWhere() error = nil для ключа %q, want validation error", key)
			}
			if !store.IsValidationError(err) {
				t.Errorf("ожидается ошибка STORE.VALIDATION_FAILED, got: %v", err)
			}
		})
	}
}

// TestJsonScalar проверяет приведение значений фильтра к форме JSON_VALUE
func TestJsonScalar(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{name: "строка без кавычек", value: "system", want: "system"},
		{name: "целое число", value: 3, want: "3"},
		{name: "дробное число", value: 3.5, want: "3.5"},
		{name: "булево значение", value: true, want: "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := jsonScalar(tt.value)
			if err != nil {
				t.Fatalf("jsonScalar() error = %v, want nil", err)
			}
			if got != tt.want {
				t.Errorf("jsonScalar(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}

	t.Run("несериализуемое значение", func(t *testing.T) {
		_, err := jsonScalar(make(chan int))
		if err == nil {
			t.Fatal("jsonScalar() error = nil, want error")
		}
		if !store.IsValidationError(err) {
			t.Errorf("ожидается ошибка STORE.VALIDATION_FAILED, got: %v", err)
		}
	})
}

// TestSplitDocument проверяет раскладку документа по колонкам таблицы
func TestSplitDocument(t *testing.T) {
	ts := time.Date(2015, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("полный документ", func(t *testing.T) {
		row, err := splitDocument(store.Document{
			store.FieldTimestamp: ts,
			store.FieldLevel:     "[Warning]",
			store.FieldText:      "предупреждение",
			"type":               "system",
		})
		if err != nil {
			t.Fatalf("splitDocument() error = %v, want nil", err)
		}
		if !row.ts.Equal(ts) {
			t.Errorf("ts = %v, want %v", row.ts, ts)
		}
		if row.severity != "[Warning]" {
			t.Errorf("severity = %q, want [Warning]", row.severity)
		}
		if row.text != "предупреждение" {
			t.Errorf("text = %q, want 'предупреждение'", row.text)
		}
		if row.attrsJSON != `{"type":"system"}` {
			t.Errorf("attrsJSON = %q, want {\"type\":\"system\"}", row.attrsJSON)
		}
	})

	t.Run("документ без атрибутов", func(t *testing.T) {
		row, err := splitDocument(store.Document{
			store.FieldTimestamp: ts,
			store.FieldLevel:     "",
			store.FieldText:      "запись",
		})
		if err != nil {
			t.Fatalf("splitDocument() error = %v, want nil", err)
		}
		if row.attrsJSON != "{}" {
			t.Errorf("attrsJSON = %q, want {}", row.attrsJSON)
		}
	})

	invalid := []struct {
		name string
		doc  store.Document
	}{
		{
			name: "без поля времени",
			doc:  store.Document{store.FieldLevel: "", store.FieldText: "запись"},
		},
		{
			name: "поле времени неверного типа",
			doc: store.Document{
				store.FieldTimestamp: "2015-01-01",
				store.FieldLevel:     "",
				store.FieldText:      "запись",
			},
		},
		{
			name: "без поля уровня",
			doc:  store.Document{store.FieldTimestamp: ts, store.FieldText: "запись"},
		},
		{
			name: "без поля текста",
			doc:  store.Document{store.FieldTimestamp: ts, store.FieldLevel: ""},
		},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := splitDocument(tt.doc)
			if err == nil {
				t.Fatal("splitDocument() error = nil, want validation error")
			}
			if !store.IsValidationError(err) {
				t.Errorf("ожидается ошибка STORE.VALIDATION_FAILED, got: %v", err)
			}
		})
	}
}

// TestAssembleDocument проверяет сборку документа контракта из колонок
func TestAssembleDocument(t *testing.T) {
	ts := time.Date(2015, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("колонки с атрибутами", func(t *testing.T) {
		doc, err := assembleDocument(ts, "[Error]", "сбой", `{"type":"system","attempt":3}`)
		if err != nil {
			t.Fatalf("assembleDocument() error = %v, want nil", err)
		}
		if doc[store.FieldTimestamp] != ts {
			t.Errorf("поле времени = %v, want %v", doc[store.FieldTimestamp], ts)
		}
		if doc[store.FieldLevel] != "[Error]" {
			t.Errorf("поле уровня = %v, want [Error]", doc[store.FieldLevel])
		}
		if doc[store.FieldText] != "сбой" {
			t.Errorf("поле текста = %v, want 'сбой'", doc[store.FieldText])
		}
		if doc["type"] != "system" {
			t.Errorf("атрибут type = %v, want system", doc["type"])
		}
		if doc["attempt"] != float64(3) {
			t.Errorf("атрибут attempt = %v (%T), want float64(3)", doc["attempt"], doc["attempt"])
		}
	})

	t.Run("пустая колонка атрибутов", func(t *testing.T) {
		doc, err := assembleDocument(ts, "", "запись", "")
		if err != nil {
			t.Fatalf("assembleDocument() error = %v, want nil", err)
		}
		if len(doc) != 3 {
			t.Errorf("len(doc) = %d, want 3", len(doc))
		}
	})

	t.Run("повреждённый JSON", func(t *testing.T) {
		_, err := assembleDocument(ts, "", "запись", "не json")
		if err == nil {
			t.Fatal("assembleDocument() error = nil, want decode error")
		}
		if !store.IsDecodeError(err) {
			t.Errorf("ожидается ошибка STORE.DECODE_FAILED, got: %v", err)
		}
	})
}

// TestIndexNameFor проверяет построение детерминированного имени индекса
func TestIndexNameFor(t *testing.T) {
	got := indexNameFor("Logs", []string{"Ts", "Severity"})
	if got != "IX_Logs_Ts_Severity" {
		t.Errorf("indexNameFor() = %q, want IX_Logs_Ts_Severity", got)
	}
	if strings.Contains(got, " ") {
		t.Errorf("имя индекса содержит пробелы: %q", got)
	}
}
