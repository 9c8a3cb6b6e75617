package validation

import (
	"fmt"
	"sort"
	"strings"

	"llama_lend/internal/errs"
)

// Error — ошибки валидации по полям: поле -> список сообщений.
type Error struct {
	Fields map[string][]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *Error) Kind() errs.Kind { return errs.KindValidation }

// Suite накапливает результаты проверок.
type Suite struct {
	fields map[string][]string
}

func New() *Suite {
	return &Suite{fields: make(map[string][]string)}
}

// Test добавляет сообщение для поля, если ok == false.
func (s *Suite) Test(field string, ok bool, msg string) *Suite {
	if !ok {
		s.fields[field] = append(s.fields[field], msg)
	}
	return s
}

func (s *Suite) Testf(field string, ok bool, format string, args ...any) *Suite {
	if !ok {
		s.fields[field] = append(s.fields[field], fmt.Sprintf(format, args...))
	}
	return s
}

// Err возвращает nil, если все проверки прошли.
func (s *Suite) Err() error {
	if len(s.fields) == 0 {
		return nil
	}
	return &Error{Fields: s.fields}
}
