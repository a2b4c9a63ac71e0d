package qfilter

import "strings"

type Operator string

const (
	OperatorEq                    Operator = "="
	OperatorNeq                   Operator = "!="
	OperatorGt                    Operator = ">"
	OperatorLt                    Operator = "<"
	OperatorGte                   Operator = ">="
	OperatorLte                   Operator = "<="
	OperatorContains              Operator = "%"
	OperatorContainsCaseSensitive Operator = "%%"
)

// OrSeparator splits the alternatives of an OR group inside one token.
const OrSeparator = "||"

// Detection order. Two-character glyphs come before their one-character
// prefixes and bare "=" comes last, so "votes>=5" can never split on ">".
var operatorPrecedence = []Operator{
	OperatorNeq,
	OperatorLte,
	OperatorGte,
	OperatorContainsCaseSensitive,
	OperatorLt,
	OperatorGt,
	OperatorContains,
	OperatorEq,
}

// IsContains reports whether o is one of the substring operators.
func (o Operator) IsContains() bool {
	return o == OperatorContains || o == OperatorContainsCaseSensitive
}

// String is the operator's query glyph, so rendered clauses parse back.
func (o Operator) String() string { return string(o) }

// ResolveOperator finds the operator of a single clause and splits the clause
// at the first occurrence of its glyph.
func ResolveOperator(clause string) (Operator, string, string, error) {
	for _, op := range operatorPrecedence {
		if i := strings.Index(clause, string(op)); i >= 0 {
			return op, clause[:i], clause[i+len(op):], nil
		}
	}
	return "", "", "", newError(KindUnrecognizedClause, clause, "", nil)
}
