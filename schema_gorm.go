package qfilter

import (
	"context"
	"fmt"
	"math/big"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm/schema"
)

var gormSchemaCache = &sync.Map{}

// ModelOption tunes SchemaFromModel.
type ModelOption func(*modelConfig)

type modelConfig struct {
	name  string
	enums map[string][]string
}

// WithEnum declares the Go field (dotted for nested fields, e.g.
// "Studio.Kind") as an enumeration with the given members.
func WithEnum(field string, members ...string) ModelOption {
	return func(c *modelConfig) {
		c.enums[strings.ToLower(field)] = members
	}
}

// WithSchemaName overrides the schema name, which defaults to the model's
// table name.
func WithSchemaName(name string) ModelOption {
	return func(c *modelConfig) { c.name = name }
}

// SchemaFromModel derives a Schema from a GORM model. Field names are the Go
// field names, columns come from GORM's naming. Belongs-to and has-one
// relations become nested fields one level deep, with the relation name as
// column so GormStore can join them. Fields whose Go type has no query kind
// are left out.
func SchemaFromModel(model any, opts ...ModelOption) (*Schema, error) {
	cfg := &modelConfig{enums: map[string][]string{}}
	for _, opt := range opts {
		opt(cfg)
	}

	gs, err := schema.Parse(model, gormSchemaCache, schema.NamingStrategy{})
	if err != nil {
		return nil, fmt.Errorf("qfilter: parse model: %w", err)
	}
	name := cfg.name
	if name == "" {
		name = gs.Table
	}

	fields := scalarFields(gs, cfg, "")
	for _, relName := range relationNames(gs) {
		rel := gs.Relationships.Relations[relName]
		nested, err := NewSchemaWithNaming(rel.FieldSchema.Table, NAMING_STRATEGY_NO_CHANGE,
			scalarFields(rel.FieldSchema, cfg, rel.Name+".")...)
		if err != nil {
			return nil, err
		}
		fields = append(fields, FieldDescriptor{
			Name:   rel.Name,
			Type:   Record(),
			Column: rel.Name,
			Nested: nested,
			Get:    gormGetter(gs.ModelType, rel.Field),
		})
	}
	return NewSchemaWithNaming(name, NAMING_STRATEGY_NO_CHANGE, fields...)
}

// MustSchemaFromModel is SchemaFromModel that panics on error.
func MustSchemaFromModel(model any, opts ...ModelOption) *Schema {
	s, err := SchemaFromModel(model, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func relationNames(gs *schema.Schema) []string {
	var names []string
	for _, f := range gs.Fields {
		rel, ok := gs.Relationships.Relations[f.Name]
		if !ok {
			continue
		}
		if rel.Type == schema.BelongsTo || rel.Type == schema.HasOne {
			names = append(names, rel.Name)
		}
	}
	return names
}

func scalarFields(gs *schema.Schema, cfg *modelConfig, prefix string) []FieldDescriptor {
	var out []FieldDescriptor
	for _, f := range gs.Fields {
		if f.DBName == "" {
			continue
		}
		typ, ok := gormFieldType(f)
		if !ok {
			continue
		}
		if members, ok := cfg.enums[strings.ToLower(prefix+f.Name)]; ok {
			typ = FieldType{Kind: KindEnum, Members: members, Nullable: typ.Nullable}
		}
		out = append(out, FieldDescriptor{
			Name:   f.Name,
			Type:   typ,
			Column: f.DBName,
			Get:    gormGetter(gs.ModelType, f),
		})
	}
	return out
}

var (
	timeType   = reflect.TypeOf(time.Time{})
	uuidType   = reflect.TypeOf(uuid.UUID{})
	bigIntType = reflect.TypeOf(big.Int{})
)

func gormFieldType(f *schema.Field) (FieldType, bool) {
	var typ FieldType
	switch t := f.IndirectFieldType; {
	case t == timeType:
		typ = Time()
	case t == uuidType:
		typ = UUID()
	case t == bigIntType:
		typ = BigInt()
	default:
		switch t.Kind() {
		case reflect.String:
			typ = Text()
		case reflect.Int8:
			typ = Int8()
		case reflect.Int16, reflect.Uint8:
			typ = Int16()
		case reflect.Int32, reflect.Uint16:
			typ = Int32()
		case reflect.Int, reflect.Int64, reflect.Uint32:
			typ = Int64()
		case reflect.Uint, reflect.Uint64:
			typ = BigInt()
		case reflect.Float32, reflect.Float64:
			typ = Float()
		case reflect.Bool:
			typ = Bool()
		default:
			return FieldType{}, false
		}
	}
	if f.FieldType.Kind() == reflect.Pointer {
		typ = Nullable(typ)
	}
	return typ, true
}

// gormGetter reads f from records of modelType (or pointers to it).
func gormGetter(modelType reflect.Type, f *schema.Field) Getter {
	return func(record any) (any, bool) {
		rv := reflect.ValueOf(record)
		if !rv.IsValid() {
			return nil, false
		}
		if rv.Kind() == reflect.Pointer {
			if rv.Type().Elem() != modelType {
				return nil, false
			}
			if rv.IsNil() {
				return nil, true
			}
		} else if rv.Type() != modelType {
			return nil, false
		}
		v, _ := f.ValueOf(context.Background(), rv)
		return v, true
	}
}
