package qfilter

import (
	"encoding/json"
	"fmt"
	"strings"
)

func init() {
	RegisterAdapter("es", func() Adapter { return ElasticsearchAdapter{} })
}

// ElasticsearchAdapter renders filters as an Elasticsearch search body.
type ElasticsearchAdapter struct {
	// Keyword, when set, is appended to text field names in term and
	// wildcard queries (for example ".keyword").
	Keyword string
}

// ElasticsearchQuery represents the structure of an Elasticsearch search body.
type ElasticsearchQuery struct {
	Query map[string]any   `json:"query"`
	Sort  []map[string]any `json:"sort,omitempty"`
	From  int              `json:"from,omitempty"`
	Size  int              `json:"size,omitempty"`
}

func (ElasticsearchQuery) isQuery() {}

func (ElasticsearchAdapter) Name() string { return "es" }

func (e ElasticsearchAdapter) GetQuery(f *Filter) (Query, error) {
	return e.Build(f), nil
}

func (e ElasticsearchAdapter) GetString(f *Filter) (string, error) {
	b, err := json.Marshal(e.Build(f))
	if err != nil {
		return "", fmt.Errorf("failed to marshal Elasticsearch query: %w", err)
	}
	return string(b), nil
}

// BuildElasticsearchQuery renders f with the default adapter settings.
func BuildElasticsearchQuery(f *Filter) ElasticsearchQuery {
	return ElasticsearchAdapter{}.Build(f)
}

// GetElasticsearchQueryString returns the search body as indented JSON.
func GetElasticsearchQueryString(f *Filter) (string, error) {
	b, err := json.MarshalIndent(BuildElasticsearchQuery(f), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal Elasticsearch query: %w", err)
	}
	return string(b), nil
}

// Build converts the guard, predicate, order and page into a search body.
func (e ElasticsearchAdapter) Build(f *Filter) ElasticsearchQuery {
	q := ElasticsearchQuery{
		Query: map[string]any{"match_all": map[string]any{}},
		From:  f.Page.Skip(),
		Size:  f.Page.Size,
	}
	if w := f.Where(); w != nil {
		q.Query = e.expr(w)
	}
	if f.Order != nil {
		q.Sort = []map[string]any{{
			e.field(f.Order.Path): map[string]any{"order": f.Order.Direction.String()},
		}}
	}
	return q
}

func (e ElasticsearchAdapter) field(p FieldPath) string {
	name := strings.Join(p.Columns(), ".")
	if e.Keyword != "" && p.Leaf().Type.Base().Kind == KindText {
		name += e.Keyword
	}
	return name
}

func (e ElasticsearchAdapter) expr(p Predicate) map[string]any {
	switch x := p.(type) {
	case *Clause:
		field := e.field(x.Path)
		switch x.Op {
		case OperatorEq:
			return map[string]any{"term": map[string]any{field: storeValue(x.Literal)}}
		case OperatorNeq:
			return map[string]any{"bool": map[string]any{
				"must_not": map[string]any{"term": map[string]any{field: storeValue(x.Literal)}},
			}}
		case OperatorGt:
			return esRange(field, "gt", storeValue(x.Literal))
		case OperatorGte:
			return esRange(field, "gte", storeValue(x.Literal))
		case OperatorLt:
			return esRange(field, "lt", storeValue(x.Literal))
		case OperatorLte:
			return esRange(field, "lte", storeValue(x.Literal))
		case OperatorContains, OperatorContainsCaseSensitive:
			return map[string]any{"wildcard": map[string]any{field: map[string]any{
				"value":            "*" + wildcardEscape(x.Literal.Value.(string)) + "*",
				"case_insensitive": x.Op == OperatorContains,
			}}}
		}
	case NotNullExpr:
		return map[string]any{"exists": map[string]any{"field": e.field(x.Path)}}
	case AndExpr:
		return map[string]any{"bool": map[string]any{"must": e.group(flatten(x, true))}}
	case OrExpr:
		return map[string]any{"bool": map[string]any{
			"should":               e.group(flatten(x, false)),
			"minimum_should_match": 1,
		}}
	}
	return map[string]any{"match_all": map[string]any{}}
}

func (e ElasticsearchAdapter) group(operands []Predicate) []map[string]any {
	out := make([]map[string]any, 0, len(operands))
	for _, p := range operands {
		out = append(out, e.expr(p))
	}
	return out
}

func esRange(field, op string, v any) map[string]any {
	return map[string]any{"range": map[string]any{field: map[string]any{op: v}}}
}

// wildcardEscape escapes the wildcard query metacharacters.
func wildcardEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`).Replace(s)
}
