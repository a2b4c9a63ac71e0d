package qfilter

import (
	"errors"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Literal is the typed right-hand side of a clause. Value holds one of
// string, int64, *big.Int, float64, bool, time.Time, uuid.UUID or EnumValue.
// A literal for a nullable field is marked Nullable but always carries a value.
type Literal struct {
	Type     FieldType
	Value    any
	Nullable bool
}

// EnumValue is a resolved enum member.
type EnumValue struct {
	Name    string
	Ordinal int
}

// Invariant calendar layouts accepted for time literals, tried in order.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006",
}

var (
	maxInt128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	minInt128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
)

// Coerce converts the literal text into a value of the target type. It never
// falls back to a zero value: every failure is a *ParseError.
func Coerce(literal string, target FieldType) (Literal, error) {
	if target.Nullable {
		lit, err := Coerce(literal, target.Base())
		if err != nil {
			return Literal{}, err
		}
		lit.Type = target
		lit.Nullable = true
		return lit, nil
	}

	switch target.Kind {
	case KindEnum:
		for i, m := range target.Members {
			if m == literal {
				return Literal{Type: target, Value: EnumValue{Name: m, Ordinal: i}}, nil
			}
		}
		return Literal{}, newError(KindUnknownEnumMember, literal, "", nil)
	case KindUUID:
		id, err := uuid.Parse(literal)
		if err != nil {
			return Literal{}, newError(KindMalformedLiteral, literal, "", err)
		}
		return Literal{Type: target, Value: id}, nil
	case KindInt:
		bits := target.Bits
		if bits == 0 {
			bits = 64
		}
		n, err := strconv.ParseInt(strings.TrimSpace(literal), 10, bits)
		if err != nil {
			return Literal{}, numberError(literal, err)
		}
		return Literal{Type: target, Value: n}, nil
	case KindBigInt:
		n, ok := new(big.Int).SetString(strings.TrimSpace(literal), 10)
		if !ok {
			return Literal{}, newError(KindMalformedLiteral, literal, "", nil)
		}
		if n.Cmp(maxInt128) > 0 || n.Cmp(minInt128) < 0 {
			return Literal{}, newError(KindLiteralOutOfRange, literal, "", nil)
		}
		return Literal{Type: target, Value: n}, nil
	case KindFloat:
		s := strings.TrimSpace(literal)
		if !isDecimal(s) {
			return Literal{}, newError(KindMalformedLiteral, literal, "", nil)
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Literal{}, numberError(literal, err)
		}
		return Literal{Type: target, Value: f}, nil
	case KindBool:
		switch strings.ToLower(strings.TrimSpace(literal)) {
		case "true":
			return Literal{Type: target, Value: true}, nil
		case "false":
			return Literal{Type: target, Value: false}, nil
		}
		return Literal{}, newError(KindMalformedLiteral, literal, "", nil)
	case KindTime:
		t, err := parseTime(literal)
		if err != nil {
			return Literal{}, newError(KindMalformedLiteral, literal, "", err)
		}
		return Literal{Type: target, Value: t}, nil
	case KindText:
		return Literal{Type: target, Value: literal}, nil
	default:
		return Literal{}, newError(KindMalformedLiteral, literal, "", errors.New("field type "+target.String()+" takes no literal"))
	}
}

// isDecimal accepts plain decimal notation with an optional exponent, which
// leaves out NaN, Inf and hex floats.
func isDecimal(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && !strings.ContainsRune("+-.eE", c) {
			return false
		}
	}
	return true
}

func numberError(literal string, err error) error {
	if errors.Is(err, strconv.ErrRange) {
		return newError(KindLiteralOutOfRange, literal, "", nil)
	}
	return newError(KindMalformedLiteral, literal, "", nil)
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var firstErr error
	for _, layout := range timeLayouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// String renders the literal so that Coerce(l.String(), l.Type) yields an
// equal literal.
func (l Literal) String() string {
	switch v := l.Value.(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case *big.Int:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case uuid.UUID:
		return v.String()
	case EnumValue:
		return v.Name
	default:
		return ""
	}
}

// Equal reports whether two literals carry the same type and value.
func (l Literal) Equal(o Literal) bool {
	if l.Type.Kind != o.Type.Kind || l.Nullable != o.Nullable {
		return false
	}
	switch v := l.Value.(type) {
	case *big.Int:
		w, ok := o.Value.(*big.Int)
		return ok && v.Cmp(w) == 0
	case time.Time:
		w, ok := o.Value.(time.Time)
		return ok && v.Equal(w)
	default:
		return l.Value == o.Value
	}
}
