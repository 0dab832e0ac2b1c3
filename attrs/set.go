package attrs

import (
	"fmt"
	"sort"
	"strings"
)

// Set — неизменяемый набор атрибутов.
//
// Нулевое значение Set готово к использованию и означает пустой набор.
// Все операции возвращают новые наборы; содержимое существующего Set
// не меняется никогда. Благодаря этому Set можно свободно передавать
// между горутинами без синхронизации.
type Set struct {
	m map[string]any
}

// New создаёт набор из перечисленных пар.
// При повторении ключа побеждает последняя пара.
func New(pairs ...Attr) Set {
	if len(pairs) == 0 {
		return Set{}
	}
	m := make(map[string]any, len(pairs))
	for _, p := range pairs {
		m[p.Key] = p.Value
	}
	return Set{m: m}
}

// FromMap создаёт набор из map. Карта копируется: последующие изменения
// аргумента не влияют на созданный Set.
func FromMap(src map[string]any) Set {
	if len(src) == 0 {
		return Set{}
	}
	m := make(map[string]any, len(src))
	for k, v := range src {
		m[k] = v
	}
	return Set{m: m}
}

// Merge объединяет два набора в новый. При совпадении ключей побеждает
// значение из overrides. Оба исходных набора остаются неизменными.
func Merge(base, overrides Set) Set {
	if overrides.Len() == 0 {
		return base
	}
	if base.Len() == 0 {
		return overrides
	}
	m := make(map[string]any, len(base.m)+len(overrides.m))
	for k, v := range base.m {
		m[k] = v
	}
	for k, v := range overrides.m {
		m[k] = v
	}
	return Set{m: m}
}

// With возвращает новый набор с добавленными парами.
// Эквивалент Merge(s, New(pairs...)).
func (s Set) With(pairs ...Attr) Set {
	return Merge(s, New(pairs...))
}

// Get возвращает значение атрибута и признак его наличия.
func (s Set) Get(key string) (any, bool) {
	v, ok := s.m[key]
	return v, ok
}

// Len возвращает количество атрибутов в наборе.
func (s Set) Len() int {
	return len(s.m)
}

// Keys возвращает отсортированный список ключей.
func (s Set) Keys() []string {
	keys := make([]string, 0, len(s.m))
	for k := range s.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AsMap возвращает копию содержимого набора.
// Изменения возвращённой карты не затрагивают Set.
func (s Set) AsMap() map[string]any {
	m := make(map[string]any, len(s.m))
	for k, v := range s.m {
		m[k] = v
	}
	return m
}

// String возвращает текстовое представление "key: value, key: value"
// с ключами в алфавитном порядке. Пустой набор даёт пустую строку.
func (s Set) String() string {
	if len(s.m) == 0 {
		return ""
	}
	parts := make([]string, 0, len(s.m))
	for _, k := range s.Keys() {
		parts = append(parts, fmt.Sprintf("%s: %v", k, s.m[k]))
	}
	return strings.Join(parts, ", ")
}
