package qfilter

import (
	"fmt"
	"math/big"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Query is the backend-specific rendering of a Filter.
type Query interface {
	isQuery()
}

// Adapter renders a Filter for one kind of store.
type Adapter interface {
	Name() string
	GetQuery(f *Filter) (Query, error)
	// GetString renders the query as text, for logging and explain output.
	GetString(f *Filter) (string, error)
}

// SQLQuery is a parameterized SQL statement.
type SQLQuery struct {
	SQL  string
	Args []any
}

func (SQLQuery) isQuery() {}

var adapters = map[string]func() Adapter{}

// RegisterAdapter makes an adapter constructor available to AdapterByName.
func RegisterAdapter(name string, newAdapter func() Adapter) {
	adapters[name] = newAdapter
}

// AdapterByName returns a fresh adapter registered under name.
func AdapterByName(name string) (Adapter, error) {
	newAdapter, ok := adapters[name]
	if !ok {
		return nil, fmt.Errorf("qfilter: unknown adapter %q", name)
	}
	return newAdapter(), nil
}

// AdapterNames lists the registered adapters in sorted order.
func AdapterNames() []string {
	names := make([]string, 0, len(adapters))
	for n := range adapters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// storeValue converts a literal value into the representation stores accept
// as a bind argument. Enums are stored by name.
func storeValue(l Literal) any {
	switch v := l.Value.(type) {
	case *big.Int:
		return v.String()
	case uuid.UUID:
		return v.String()
	case EnumValue:
		return v.Name
	case time.Time:
		return v.UTC()
	default:
		return v
	}
}

// flatten splits a chain of the same connective into its operands.
func flatten(p Predicate, and bool) []Predicate {
	switch x := p.(type) {
	case AndExpr:
		if and {
			return append(flatten(x.Left, and), flatten(x.Right, and)...)
		}
	case OrExpr:
		if !and {
			return append(flatten(x.Left, and), flatten(x.Right, and)...)
		}
	}
	return []Predicate{p}
}

// relationsOf lists the relations nested paths walk through, in first-use order.
func relationsOf(f *Filter) []string {
	var joins []string
	seen := make(map[string]bool)
	add := func(p FieldPath) {
		for _, step := range p[:len(p)-1] {
			if !seen[step.Column] {
				seen[step.Column] = true
				joins = append(joins, step.Column)
			}
		}
	}
	Walk(f.Where(), func(p Predicate) {
		switch x := p.(type) {
		case *Clause:
			add(x.Path)
		case NotNullExpr:
			add(x.Path)
		}
	})
	if f.Order != nil {
		add(f.Order.Path)
	}
	return joins
}
