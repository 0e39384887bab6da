package postgres

import (
	"reflect"
	"slices"
	"sync"
)

// columnCache maps a struct type to its ordered "db" tags.
var columnCache sync.Map // map[reflect.Type][]string

func columnsOf(t reflect.Type) []string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := columnCache.Load(t); ok {
		return cached.([]string)
	}

	var cols []string
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if field.Anonymous {
				cols = append(cols, columnsOf(field.Type)...)
				continue
			}
			tag := field.Tag.Get("db")
			if tag == "" || tag == "-" {
				continue
			}
			cols = append(cols, tag)
		}
	}
	columnCache.Store(t, cols)
	return cols
}

// ExtractDBColumns lists T's "db" tags in field order, minus omit.
func ExtractDBColumns[T any](omit ...string) []string {
	var zero T
	cols := columnsOf(reflect.TypeOf(zero))
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if !slices.Contains(omit, c) {
			out = append(out, c)
		}
	}
	return out
}

// StructToMap converts a struct to a column map using "db" tags, skipping
// omit. Used with squirrel's SetMap for inserts.
func StructToMap(v any, omit ...string) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	res := make(map[string]any)
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			for k, val := range StructToMap(rv.Field(i).Interface(), omit...) {
				res[k] = val
			}
			continue
		}
		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" || slices.Contains(omit, tag) {
			continue
		}
		res[tag] = rv.Field(i).Interface()
	}
	return res
}

// Qualify prefixes each column with alias.
func Qualify(alias string, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = alias + "." + c
	}
	return out
}
