// Package permissions решает, может ли оператор выполнить действие или открыть раздел.
//
// Разрешения: плоские строки без иерархии и масок, сравнение с учётом регистра.
package permissions

import "sort"

type Mode string

const (
	ModeAny Mode = "any"
	ModeAll Mode = "all"
)

// ParseMode: всё, кроме "any", считается "all".
func ParseMode(s string) Mode {
	if Mode(s) == ModeAny {
		return ModeAny
	}
	return ModeAll
}

// Set: неизменяемый снимок разрешений оператора.
type Set map[string]struct{}

func NewSet(perms ...string) Set {
	s := make(Set, len(perms))
	for _, p := range perms {
		s[p] = struct{}{}
	}
	return s
}

func (s Set) Has(p string) bool {
	_, ok := s[p]
	return ok
}

// List: отсортированный список для ответов API.
func (s Set) List() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Authorize: пустой required разрешает всегда; any: хотя бы одно совпадение;
// all: required целиком входит в held. Неизвестный режим трактуется как all.
func Authorize(held Set, required []string, mode Mode) bool {
	if len(required) == 0 {
		return true
	}

	if mode == ModeAny {
		for _, p := range required {
			if held.Has(p) {
				return true
			}
		}
		return false
	}

	for _, p := range required {
		if !held.Has(p) {
			return false
		}
	}
	return true
}
