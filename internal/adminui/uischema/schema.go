// Package uischema builds the ui schema the external form renderer uses for the
// entity edit pages: which fields are hidden and which get a custom control.
package uischema

import (
	"reflect"
	"strings"
	"time"

	"golang.org/x/exp/slices"
)

// HiddenFields are hidden at the root and in the general section.
var HiddenFields = []string{"id", "createdAt", "updatedAt"}

type FieldType string

const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeBool    FieldType = "boolean"
	TypeArray   FieldType = "array"
	TypeObject  FieldType = "object"
	TypeDate    FieldType = "date-time"
	TypeUnknown FieldType = "unknown"
)

type Field struct {
	Path string
	Type FieldType
}

// Schema is the flattened field list of an entity type, keyed by dotted json path.
type Schema struct {
	fields map[string]Field
}

var timeType = reflect.TypeOf(time.Time{})

// SchemaOf derives the schema of v's type from its json tags. Embedded structs are
// flattened, nested structs get dotted paths and slices are leaves.
func SchemaOf(v any) Schema {
	s := Schema{fields: map[string]Field{}}
	s.walk(reflect.TypeOf(v), "")
	return s
}

func (s Schema) walk(t reflect.Type, prefix string) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if f.Anonymous && name == "" {
			s.walk(f.Type, prefix)
			continue
		}
		if name == "" {
			name = f.Name
		}
		p := prefix + name
		ft := typeOf(f.Type)
		s.fields[p] = Field{Path: p, Type: ft}
		if ft == TypeObject {
			s.walk(f.Type, p+".")
		}
	}
}

func typeOf(t reflect.Type) FieldType {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == timeType {
		return TypeDate
	}
	switch t.Kind() {
	case reflect.String:
		return TypeString
	case reflect.Bool:
		return TypeBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return TypeNumber
	case reflect.Slice, reflect.Array:
		return TypeArray
	case reflect.Struct:
		return TypeObject
	}
	return TypeUnknown
}

func (s Schema) Has(path string) bool {
	_, ok := s.fields[path]
	return ok
}

func (s Schema) Field(path string) (Field, bool) {
	f, ok := s.fields[path]
	return f, ok
}

// Paths returns every field path, sorted.
func (s Schema) Paths() []string {
	out := make([]string, 0, len(s.fields))
	for p := range s.fields {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// Hidden returns the paths hidden from the form, sorted.
func (s Schema) Hidden() []string {
	var out []string
	for _, prefix := range []string{"", "general."} {
		for _, name := range HiddenFields {
			if s.Has(prefix + name) {
				out = append(out, prefix+name)
			}
		}
	}
	slices.Sort(out)
	return out
}
