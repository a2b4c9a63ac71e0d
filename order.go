package qfilter

import "fmt"

type Direction int

const (
	Ascending Direction = iota + 1
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// OrderDescriptor selects the sort key of a query.
type OrderDescriptor struct {
	Path      FieldPath
	Direction Direction
}

// Key extracts the normalized sort key of record; nil means the key is null.
func (o *OrderDescriptor) Key(record any) (any, error) {
	raw, present, err := o.Path.Value(record)
	if err != nil || !present {
		return nil, err
	}
	return normalize(raw, o.Path.Leaf().Type.Base())
}

// Less orders two keys returned by Key in the descriptor's direction. Null
// keys sort first when ascending and last when descending.
func (o *OrderDescriptor) Less(a, b any) bool {
	var c int
	switch {
	case a == nil && b == nil:
		c = 0
	case a == nil:
		c = -1
	case b == nil:
		c = 1
	default:
		c = compareValues(a, b)
	}
	if o.Direction == Descending {
		return c > 0
	}
	return c < 0
}

func (o *OrderDescriptor) String() string {
	return fmt.Sprintf("%s %s", o.Path, o.Direction)
}
