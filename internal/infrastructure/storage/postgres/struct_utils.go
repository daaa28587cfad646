package postgres

import (
	"reflect"
	"slices"
	"sync"
)

// ExtractDBColumns lists the "db" tags of T in field order, descending into
// embedded structs such as entity.Base. Fields tagged "-" are skipped.
//
//	columns := ExtractDBColumns[checkrange.NumberRange]()
//	// ["id", "version", "created_at", "updated_at", "category", ...]
func ExtractDBColumns[T any]() []string {
	var zero T
	meta := metadataFor(reflect.TypeOf(zero))
	return slices.Clone(meta.columns)
}

// Without returns cols minus the excluded names.
func Without(cols []string, exclude ...string) []string {
	return slices.DeleteFunc(slices.Clone(cols), func(c string) bool {
		return slices.Contains(exclude, c)
	})
}

type fieldInfo struct {
	index []int
	dbTag string
}

type typeMetadata struct {
	fields  []fieldInfo
	columns []string
}

var typeCache sync.Map // map[reflect.Type]*typeMetadata

func metadataFor(t reflect.Type) *typeMetadata {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if cached, ok := typeCache.Load(t); ok {
		return cached.(*typeMetadata)
	}

	meta := &typeMetadata{}
	if t.Kind() == reflect.Struct {
		collectFields(t, nil, meta)
	}
	actual, _ := typeCache.LoadOrStore(t, meta)
	return actual.(*typeMetadata)
}

func collectFields(t reflect.Type, prefix []int, meta *typeMetadata) {
	for i := range t.NumField() {
		field := t.Field(i)
		index := append(slices.Clone(prefix), i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			collectFields(field.Type, index, meta)
			continue
		}

		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		meta.fields = append(meta.fields, fieldInfo{index: index, dbTag: tag})
		meta.columns = append(meta.columns, tag)
	}
}

// StructToMap converts a struct (or pointer to one) to a column → value map
// using "db" tags. Reflection metadata is cached per type.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	meta := metadataFor(rv.Type())
	res := make(map[string]any, len(meta.fields))
	for _, fi := range meta.fields {
		res[fi.dbTag] = rv.FieldByIndex(fi.index).Interface()
	}
	return res
}

// Pick restricts data to cols.
func Pick(data map[string]any, cols []string) map[string]any {
	out := make(map[string]any, len(cols))
	for _, c := range cols {
		if v, ok := data[c]; ok {
			out[c] = v
		}
	}
	return out
}
