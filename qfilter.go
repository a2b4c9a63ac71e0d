// Package qfilter compiles flat, human-typed filter strings such as
//
//	genre%action&voteAverage>7&order=desc&orderBy=title&page=2
//
// into a predicate tree over records of a schema, an order descriptor and a
// page request. The result can be evaluated in memory or rendered for GORM,
// raw SQL, MongoDB, Elasticsearch or RediSearch by the adapters in this
// package.
//
// Directive keywords (page, pagesize, order, orderBy) are detected by
// case-insensitive substring match, so a predicate token that merely contains
// one of them (a field or literal named "page") is taken as a directive.
package qfilter

import (
	"strconv"
	"strings"
)

const (
	ClauseSeparator = "&"

	keywordPage     = "page"
	keywordPageSize = "pagesize"
	keywordOrder    = "order"
	keywordOrderBy  = "orderby"
)

// Filter is the compiled form of one query string. It is immutable and safe
// to share once Parse returns.
type Filter struct {
	Input string

	// Predicate is the AND of all plain clauses and OR groups; nil when the
	// query has no predicate clauses.
	Predicate Predicate

	// NotNull guards every field used with a contains operator; nil when
	// there is none.
	NotNull Predicate

	// Order is nil when the query has no ordering directive.
	Order *OrderDescriptor

	// Page is the declared page request after the defaults were applied;
	// Declared is the page request exactly as the query stated it.
	Page     PageRequest
	Declared PageRequest

	schema *Schema
}

// Schema returns the schema the filter was compiled against.
func (f *Filter) Schema() *Schema { return f.schema }

// Where combines the guard and the predicate, guard first.
func (f *Filter) Where() Predicate {
	return And(f.NotNull, f.Predicate)
}

// Match reports whether record passes the guard and the predicate.
func (f *Filter) Match(record any) (bool, error) {
	w := f.Where()
	if w == nil {
		return true, nil
	}
	return w.Eval(record)
}

// Narrow returns a copy of f whose predicate is additionally ANDed with p.
func (f *Filter) Narrow(p Predicate) *Filter {
	g := *f
	g.Predicate = And(f.Predicate, p)
	return &g
}

func (f *Filter) String() string {
	var b strings.Builder
	b.WriteString("where: ")
	if w := f.Where(); w != nil {
		b.WriteString(w.String())
	} else {
		b.WriteString("<all>")
	}
	if f.Order != nil {
		b.WriteString("; order: ")
		b.WriteString(f.Order.String())
	}
	b.WriteString("; page: ")
	b.WriteString(strconv.Itoa(f.Page.Number))
	b.WriteString("; size: ")
	b.WriteString(strconv.Itoa(f.Page.Size))
	return b.String()
}

// Parse compiles input against s. Any malformed predicate clause, unknown
// order field or malformed page directive fails the whole parse.
func Parse(input string, s *Schema, defaults PageDefaults) (*Filter, error) {
	defaults = defaults.orDefault()
	tokens := splitTokens(input)

	declared, err := extractPagination(tokens)
	if err != nil {
		return nil, err
	}
	page := defaults.Apply(declared)
	if !page.fits() {
		return nil, newError(KindInvalidPagination, strconv.Itoa(declared.Number), "", nil)
	}
	order, err := extractOrder(tokens, s, defaults.DefaultOrderField)
	if err != nil {
		return nil, err
	}

	clauses := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if !isDirective(tok) {
			clauses = append(clauses, tok)
		}
	}

	pred, err := buildPredicate(clauses, s)
	if err != nil {
		return nil, err
	}

	return &Filter{
		Input:     input,
		Predicate: pred,
		NotNull:   buildNotNullGuard(clauses, s),
		Order:     order,
		Page:      page,
		Declared:  declared,
		schema:    s,
	}, nil
}

func splitTokens(input string) []string {
	raw := strings.Split(input, ClauseSeparator)
	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		if strings.TrimSpace(t) == "" {
			continue
		}
		tokens = append(tokens, t)
	}
	return tokens
}

func containsFold(s, keyword string) bool {
	return strings.Contains(strings.ToLower(s), keyword)
}

func isDirective(tok string) bool {
	return containsFold(tok, keywordPage) || containsFold(tok, keywordOrder)
}

// findToken returns the first token that contains keyword but not exclude.
func findToken(tokens []string, keyword, exclude string) (string, bool) {
	for _, t := range tokens {
		if containsFold(t, keyword) && (exclude == "" || !containsFold(t, exclude)) {
			return t, true
		}
	}
	return "", false
}

func extractPagination(tokens []string) (PageRequest, error) {
	var p PageRequest
	var err error
	if tok, ok := findToken(tokens, keywordPage, keywordPageSize); ok {
		if p.Number, err = directiveInt(tok, keywordPage); err != nil {
			return PageRequest{}, err
		}
	}
	if tok, ok := findToken(tokens, keywordPageSize, ""); ok {
		if p.Size, err = directiveInt(tok, keywordPageSize); err != nil {
			return PageRequest{}, err
		}
	}
	return p, nil
}

// directiveInt strips the keyword and its "=" from the front of tok and
// parses the rest as a positive integer.
func directiveInt(tok, keyword string) (int, error) {
	n := len(keyword) + 1
	if len(tok) <= n {
		return 0, newError(KindInvalidPagination, tok, "", nil)
	}
	v, err := strconv.Atoi(strings.TrimSpace(tok[n:]))
	if err != nil {
		return 0, newError(KindInvalidPagination, tok, "", err)
	}
	if v < 1 {
		return 0, newError(KindInvalidPagination, tok, "", nil)
	}
	return v, nil
}

func extractOrder(tokens []string, s *Schema, defaultField string) (*OrderDescriptor, error) {
	orderTok, hasOrder := findToken(tokens, keywordOrder, keywordOrderBy)
	byTok, hasBy := findToken(tokens, keywordOrderBy, "")
	if !hasOrder && !hasBy {
		return nil, nil
	}

	dir := Ascending
	if hasOrder {
		dir = Descending
		if parts := strings.Split(orderTok, "="); len(parts) == 2 && strings.EqualFold(strings.TrimSpace(parts[1]), "asc") {
			dir = Ascending
		}
	}

	field := defaultField
	if hasBy {
		if parts := strings.Split(byTok, "="); len(parts) == 2 && strings.TrimSpace(parts[1]) != "" {
			field = parts[1]
		}
	}

	path, err := ResolvePath(field, s)
	if err != nil {
		return nil, err
	}
	if leaf := path.Leaf(); leaf.Type.Kind == KindRecord {
		return nil, newError(KindUnknownField, field, leaf.Name, nil)
	}
	return &OrderDescriptor{Path: path, Direction: dir}, nil
}

func buildPredicate(clauses []string, s *Schema) (Predicate, error) {
	var plain, groups []Predicate
	for _, tok := range clauses {
		if !strings.Contains(tok, OrSeparator) {
			c, err := CompileClause(tok, s)
			if err != nil {
				return nil, err
			}
			plain = append(plain, c)
			continue
		}
		var alts []Predicate
		for _, sub := range strings.Split(tok, OrSeparator) {
			c, err := CompileClause(sub, s)
			if err != nil {
				return nil, err
			}
			alts = append(alts, c)
		}
		groups = append(groups, Or(alts...))
	}
	return And(append([]Predicate{And(plain...)}, groups...)...), nil
}

// buildNotNullGuard is best effort: clauses whose field cannot be resolved
// are left out, the predicate build reports them.
func buildNotNullGuard(clauses []string, s *Schema) Predicate {
	var guards []Predicate
	seen := make(map[string]bool)
	for _, tok := range clauses {
		for _, sub := range strings.Split(tok, OrSeparator) {
			op, left, _, err := ResolveOperator(sub)
			if err != nil || !op.IsContains() {
				continue
			}
			path, err := ResolvePath(left, s)
			if err != nil {
				continue
			}
			key := strings.ToLower(path.String())
			if seen[key] {
				continue
			}
			seen[key] = true
			guards = append(guards, NotNullExpr{Path: path})
		}
	}
	return And(guards...)
}
