package qfilter

import (
	"fmt"
	"strings"

	"github.com/gobeam/stringy"
)

type NamingStrategy string

const NAMING_STRATEGY_NO_CHANGE NamingStrategy = "no_change"
const NAMING_STRATEGY_SNAKE_CASE NamingStrategy = "snake_case"

// Kind is the declared value class of a field.
type Kind int

const (
	KindText Kind = iota + 1
	KindInt
	KindBigInt
	KindFloat
	KindBool
	KindTime
	KindUUID
	KindEnum
	KindRecord
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInt:
		return "int"
	case KindBigInt:
		return "bigint"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	case KindUUID:
		return "uuid"
	case KindEnum:
		return "enum"
	case KindRecord:
		return "record"
	default:
		return "invalid"
	}
}

// FieldType describes the declared type of a field. Bits applies to KindInt
// (8, 16, 32, 64) and KindBigInt (128). Members lists the names of an enum in
// ordinal order.
type FieldType struct {
	Kind     Kind
	Bits     int
	Members  []string
	Nullable bool
}

func (t FieldType) String() string {
	s := t.Kind.String()
	if t.Kind == KindInt || t.Kind == KindBigInt {
		s = fmt.Sprintf("%s%d", s, t.Bits)
	}
	if t.Nullable {
		s = "nullable " + s
	}
	return s
}

// Base returns t without the nullable marker.
func (t FieldType) Base() FieldType {
	t.Nullable = false
	return t
}

func Text() FieldType   { return FieldType{Kind: KindText} }
func Int8() FieldType   { return FieldType{Kind: KindInt, Bits: 8} }
func Int16() FieldType  { return FieldType{Kind: KindInt, Bits: 16} }
func Int32() FieldType  { return FieldType{Kind: KindInt, Bits: 32} }
func Int64() FieldType  { return FieldType{Kind: KindInt, Bits: 64} }
func BigInt() FieldType { return FieldType{Kind: KindBigInt, Bits: 128} }
func Float() FieldType  { return FieldType{Kind: KindFloat, Bits: 64} }
func Bool() FieldType   { return FieldType{Kind: KindBool} }
func Time() FieldType   { return FieldType{Kind: KindTime} }
func UUID() FieldType   { return FieldType{Kind: KindUUID} }
func Record() FieldType { return FieldType{Kind: KindRecord, Nullable: true} }

// Enum declares an enumeration whose members are matched by exact name.
// Members are stored and ordered by name in every store, not by position.
func Enum(members ...string) FieldType {
	return FieldType{Kind: KindEnum, Members: append([]string(nil), members...)}
}

// Nullable marks t as able to hold no value.
func Nullable(t FieldType) FieldType {
	t.Nullable = true
	return t
}

// Getter reads a field from a record. ok is false when the record is not of
// the type the field was declared on.
type Getter func(record any) (value any, ok bool)

// FieldDescriptor is one named, typed field of a record type.
type FieldDescriptor struct {
	Name   string
	Type   FieldType
	Column string
	Nested *Schema
	Get    Getter
}

// WithColumn overrides the storage column name used by the store adapters.
func (d FieldDescriptor) WithColumn(column string) FieldDescriptor {
	d.Column = column
	return d
}

// IsNested reports whether the field is itself a record that paths can walk into.
func (d FieldDescriptor) IsNested() bool {
	return d.Type.Kind == KindRecord && d.Nested != nil
}

// Field declares a scalar field of records of type T.
func Field[T any](name string, typ FieldType, get func(T) any) FieldDescriptor {
	return FieldDescriptor{Name: name, Type: typ, Get: typedGetter(get)}
}

// NestedField declares a field of T holding another record described by s.
// get should return nil (or a nil pointer) when the nested record is absent.
func NestedField[T any](name string, s *Schema, get func(T) any) FieldDescriptor {
	return FieldDescriptor{Name: name, Type: Record(), Nested: s, Get: typedGetter(get)}
}

func typedGetter[T any](get func(T) any) Getter {
	return func(record any) (any, bool) {
		switch r := record.(type) {
		case T:
			return get(r), true
		case *T:
			if r == nil {
				return nil, true
			}
			return get(*r), true
		default:
			return nil, false
		}
	}
}

// Schema is the read-only field table of one record type. It is built once
// and shared between goroutines without synchronization.
type Schema struct {
	name   string
	fields []FieldDescriptor
	byName map[string]int
}

// NewSchema builds a schema using snake_case column names.
func NewSchema(name string, fields ...FieldDescriptor) (*Schema, error) {
	return NewSchemaWithNaming(name, NAMING_STRATEGY_SNAKE_CASE, fields...)
}

// NewSchemaWithNaming builds a schema, deriving missing column names from the
// field names with the given strategy.
func NewSchemaWithNaming(name string, strategy NamingStrategy, fields ...FieldDescriptor) (*Schema, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("qfilter: schema %q has no fields", name)
	}
	s := &Schema{
		name:   name,
		fields: make([]FieldDescriptor, 0, len(fields)),
		byName: make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("qfilter: schema %q: field without a name", name)
		}
		if f.Get == nil {
			return nil, fmt.Errorf("qfilter: schema %q: field %q has no getter", name, f.Name)
		}
		if f.Type.Kind == KindRecord && f.Nested == nil {
			return nil, fmt.Errorf("qfilter: schema %q: record field %q has no nested schema", name, f.Name)
		}
		if f.Type.Kind == KindEnum && len(f.Type.Members) == 0 {
			return nil, fmt.Errorf("qfilter: schema %q: enum field %q has no members", name, f.Name)
		}
		key := strings.ToLower(f.Name)
		if _, dup := s.byName[key]; dup {
			return nil, fmt.Errorf("qfilter: schema %q: duplicate field %q", name, f.Name)
		}
		if f.Column == "" {
			f.Column = columnName(f.Name, strategy)
		}
		s.byName[key] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	return s, nil
}

// MustSchema is NewSchema that panics on error, for package-level schemas.
func MustSchema(name string, fields ...FieldDescriptor) *Schema {
	s, err := NewSchema(name, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) Name() string { return s.name }

// Fields returns a copy of the field table in declaration order.
func (s *Schema) Fields() []FieldDescriptor {
	return append([]FieldDescriptor(nil), s.fields...)
}

// Lookup finds a field by case-insensitive name.
func (s *Schema) Lookup(name string) (FieldDescriptor, bool) {
	i, ok := s.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return FieldDescriptor{}, false
	}
	return s.fields[i], true
}

func columnName(name string, strategy NamingStrategy) string {
	if strategy == NAMING_STRATEGY_SNAKE_CASE {
		return stringy.New(name).SnakeCase("?", "").ToLower()
	}
	return name
}
