package qfilter

import (
	"bytes"
	"fmt"
	"math/big"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
)

func isNull(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}

// normalize converts a record value into the canonical Go representation of
// its declared kind, the same representation Coerce produces for literals.
func normalize(v any, t FieldType) (any, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, nil
	}
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	v = rv.Interface()

	switch t.Kind {
	case KindText:
		switch x := v.(type) {
		case string:
			return x, nil
		case fmt.Stringer:
			return x.String(), nil
		}
		if rv.Kind() == reflect.String {
			return rv.String(), nil
		}
	case KindInt:
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return rv.Int(), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
			return int64(rv.Uint()), nil
		}
	case KindBigInt:
		switch x := v.(type) {
		case big.Int:
			return new(big.Int).Set(&x), nil
		}
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return big.NewInt(rv.Int()), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return new(big.Int).SetUint64(rv.Uint()), nil
		}
	case KindFloat:
		switch rv.Kind() {
		case reflect.Float32, reflect.Float64:
			return rv.Float(), nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return float64(rv.Int()), nil
		}
	case KindBool:
		if rv.Kind() == reflect.Bool {
			return rv.Bool(), nil
		}
	case KindTime:
		if x, ok := v.(time.Time); ok {
			return x, nil
		}
	case KindUUID:
		switch x := v.(type) {
		case uuid.UUID:
			return x, nil
		case [16]byte:
			return uuid.UUID(x), nil
		case string:
			if id, err := uuid.Parse(x); err == nil {
				return id, nil
			}
		}
	case KindEnum:
		return normalizeEnum(v, rv, t.Members)
	}
	return nil, fmt.Errorf("%w: %T is not a %s value", ErrRecordType, v, t.Kind)
}

func normalizeEnum(v any, rv reflect.Value, members []string) (any, error) {
	name := ""
	switch {
	case rv.Kind() == reflect.String:
		name = rv.String()
	case rv.CanInt():
		i := int(rv.Int())
		if i >= 0 && i < len(members) {
			return EnumValue{Name: members[i], Ordinal: i}, nil
		}
		return nil, fmt.Errorf("%w: enum ordinal %d out of range", ErrRecordType, i)
	default:
		if s, ok := v.(fmt.Stringer); ok {
			name = s.String()
		}
	}
	for i, m := range members {
		if m == name {
			return EnumValue{Name: m, Ordinal: i}, nil
		}
	}
	return nil, fmt.Errorf("%w: %v is not an enum member", ErrRecordType, v)
}

// compareValues orders two normalized values of the same kind.
func compareValues(a, b any) int {
	switch x := a.(type) {
	case string:
		return strings.Compare(x, b.(string))
	case int64:
		return cmpOrdered(x, b.(int64))
	case *big.Int:
		return x.Cmp(b.(*big.Int))
	case float64:
		return cmpOrdered(x, b.(float64))
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	case time.Time:
		return x.Compare(b.(time.Time))
	case uuid.UUID:
		y := b.(uuid.UUID)
		return bytes.Compare(x[:], y[:])
	case EnumValue:
		return strings.Compare(x.Name, b.(EnumValue).Name)
	}
	return 0
}

func cmpOrdered[T int | int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
