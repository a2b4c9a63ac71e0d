package qfilter

import "fmt"

// Predicate is a node of a compiled filter tree: *Clause, AndExpr, OrExpr or
// NotNullExpr.
type Predicate interface {
	Eval(record any) (bool, error)
	String() string
}

type AndExpr struct {
	Left, Right Predicate
}

type OrExpr struct {
	Left, Right Predicate
}

// NotNullExpr holds when every step of Path is present on the record.
type NotNullExpr struct {
	Path FieldPath
}

func (e AndExpr) Eval(record any) (bool, error) {
	ok, err := e.Left.Eval(record)
	if err != nil || !ok {
		return false, err
	}
	return e.Right.Eval(record)
}

func (e OrExpr) Eval(record any) (bool, error) {
	ok, err := e.Left.Eval(record)
	if err != nil || ok {
		return ok, err
	}
	return e.Right.Eval(record)
}

func (e NotNullExpr) Eval(record any) (bool, error) {
	_, present, err := e.Path.Value(record)
	return present, err
}

func (e AndExpr) String() string { return fmt.Sprintf("(%s AND %s)", e.Left, e.Right) }
func (e OrExpr) String() string  { return fmt.Sprintf("(%s OR %s)", e.Left, e.Right) }
func (e NotNullExpr) String() string {
	return fmt.Sprintf("%s IS NOT NULL", e.Path)
}

// And folds the operands left to right; nil operands are skipped and an
// empty fold is nil.
func And(ps ...Predicate) Predicate {
	return fold(ps, func(l, r Predicate) Predicate { return AndExpr{Left: l, Right: r} })
}

// Or folds the operands left to right like And.
func Or(ps ...Predicate) Predicate {
	return fold(ps, func(l, r Predicate) Predicate { return OrExpr{Left: l, Right: r} })
}

func fold(ps []Predicate, join func(l, r Predicate) Predicate) Predicate {
	var acc Predicate
	for _, p := range ps {
		if p == nil {
			continue
		}
		if acc == nil {
			acc = p
			continue
		}
		acc = join(acc, p)
	}
	return acc
}

// Walk visits every node of p depth-first, left before right.
func Walk(p Predicate, visit func(Predicate)) {
	if p == nil {
		return
	}
	visit(p)
	switch x := p.(type) {
	case AndExpr:
		Walk(x.Left, visit)
		Walk(x.Right, visit)
	case OrExpr:
		Walk(x.Left, visit)
		Walk(x.Right, visit)
	}
}
