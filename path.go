package qfilter

import (
	"strings"
)

// FieldPath is the walk from the record root to a leaf field. Every element
// but the last is a nested record field.
type FieldPath []FieldDescriptor

// Leaf returns the last field of the path.
func (p FieldPath) Leaf() FieldDescriptor {
	return p[len(p)-1]
}

// String renders the path with dots, using the declared field names.
func (p FieldPath) String() string {
	names := make([]string, len(p))
	for i, f := range p {
		names[i] = f.Name
	}
	return strings.Join(names, ".")
}

// Columns returns the storage column of every step of the path.
func (p FieldPath) Columns() []string {
	cols := make([]string, len(p))
	for i, f := range p {
		cols[i] = f.Column
	}
	return cols
}

// Value walks the path on record. present is false when any step is null.
func (p FieldPath) Value(record any) (value any, present bool, err error) {
	cur := record
	for i, f := range p {
		v, ok := f.Get(cur)
		if !ok {
			return nil, false, ErrRecordType
		}
		if isNull(v) {
			return nil, false, nil
		}
		if i == len(p)-1 {
			return v, true, nil
		}
		cur = v
	}
	return nil, false, nil
}

// ResolvePath resolves dotted field text ("studio.name") against s using
// case-insensitive lookup at each level.
func ResolvePath(text string, s *Schema) (FieldPath, error) {
	var path FieldPath
	var err error
	for _, name := range strings.Split(strings.TrimSpace(text), ".") {
		path, err = path.Append(name, s)
		if err != nil {
			return nil, err
		}
	}
	return path, nil
}

// Append resolves one more field name below p and returns the extended path.
// root is the schema of the record the path starts at. p itself is not
// modified.
func (p FieldPath) Append(name string, root *Schema) (FieldPath, error) {
	level := root
	if len(p) > 0 {
		last := p.Leaf()
		if !last.IsNested() {
			return nil, newError(KindUnknownField, "", p.String()+"."+name, nil)
		}
		level = last.Nested
	}
	f, ok := level.Lookup(name)
	if !ok {
		return nil, newError(KindUnknownField, "", strings.TrimSpace(name), nil)
	}
	next := make(FieldPath, len(p), len(p)+1)
	copy(next, p)
	return append(next, f), nil
}
