package qfilter

import (
	"fmt"
	"strings"
)

// Clause is one compiled field<operator>literal comparison.
type Clause struct {
	Path    FieldPath
	Op      Operator
	Literal Literal
}

// CompileClause turns raw clause text into a Clause against s.
func CompileClause(text string, s *Schema) (*Clause, error) {
	op, left, right, err := ResolveOperator(text)
	if err != nil {
		return nil, err
	}
	path, err := ResolvePath(left, s)
	if err != nil {
		return nil, err
	}
	leaf := path.Leaf()

	if op.IsContains() {
		if leaf.Type.Kind != KindText && leaf.Type.Kind != KindEnum {
			return nil, newError(KindUnrecognizedClause, text, leaf.Name,
				fmt.Errorf("operator %s needs a text field, not %s", op, leaf.Type))
		}
		value := right
		if op == OperatorContains {
			value = strings.ToLower(value)
		}
		return &Clause{
			Path:    path,
			Op:      op,
			Literal: Literal{Type: Text(), Value: value, Nullable: leaf.Type.Nullable},
		}, nil
	}

	if leaf.Type.Kind == KindRecord {
		return nil, newError(KindUnrecognizedClause, text, leaf.Name,
			fmt.Errorf("%s is a record, not a comparable field", leaf.Name))
	}
	lit, err := Coerce(right, leaf.Type)
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.Field = path.String()
		}
		return nil, err
	}
	return &Clause{Path: path, Op: op, Literal: lit}, nil
}

// Eval tests the clause against one record.
func (c *Clause) Eval(record any) (bool, error) {
	raw, present, err := c.Path.Value(record)
	if err != nil {
		return false, err
	}
	if !present {
		// A null operand only satisfies "!=".
		return c.Op == OperatorNeq, nil
	}

	if c.Op.IsContains() {
		text, err := textOf(raw, c.Path.Leaf().Type)
		if err != nil {
			return false, err
		}
		needle := c.Literal.Value.(string)
		if c.Op == OperatorContains {
			text = strings.ToLower(text)
		}
		return strings.Contains(text, needle), nil
	}

	v, err := normalize(raw, c.Path.Leaf().Type.Base())
	if err != nil {
		return false, err
	}
	if v == nil {
		return c.Op == OperatorNeq, nil
	}
	cmp := compareValues(v, c.Literal.Value)
	switch c.Op {
	case OperatorEq:
		return cmp == 0, nil
	case OperatorNeq:
		return cmp != 0, nil
	case OperatorGt:
		return cmp > 0, nil
	case OperatorLt:
		return cmp < 0, nil
	case OperatorGte:
		return cmp >= 0, nil
	case OperatorLte:
		return cmp <= 0, nil
	}
	return false, nil
}

func textOf(raw any, t FieldType) (string, error) {
	v, err := normalize(raw, t.Base())
	if err != nil {
		return "", err
	}
	switch x := v.(type) {
	case string:
		return x, nil
	case EnumValue:
		return x.Name, nil
	}
	return "", nil
}

func (c *Clause) String() string {
	lit := c.Literal.String()
	if c.Literal.Type.Kind == KindText || c.Literal.Type.Kind == KindTime || c.Literal.Type.Kind == KindUUID {
		lit = fmt.Sprintf("%q", lit)
	}
	return fmt.Sprintf("%s %s %s", c.Path, c.Op, lit)
}
