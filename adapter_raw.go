package qfilter

import (
	"fmt"
	"strings"
)

func init() {
	RegisterAdapter("sql", func() Adapter { return RawAdapter{Table: "records"} })
}

// RawAdapter renders filters as MySQL/SQLite flavoured SQL with '?'
// placeholders. Joins are emitted verbatim after the FROM clause; nested
// paths are referenced as `<field column>`.`<leaf column>`, so each join
// should alias its table after the nested field's column.
type RawAdapter struct {
	Table string
	Joins []string
}

func (RawAdapter) Name() string { return "sql" }

func (a RawAdapter) GetQuery(f *Filter) (Query, error) {
	sql, args := BuildRawSelect(f, a.Table, a.Joins...)
	return SQLQuery{SQL: sql, Args: args}, nil
}

func (a RawAdapter) GetString(f *Filter) (string, error) {
	sql, args := BuildRawSelect(f, a.Table, a.Joins...)
	return expandPlaceholders(sql, args), nil
}

// BuildRawWhere builds a SQL WHERE condition (without the WHERE keyword) and
// its args from the guard and predicate.
func BuildRawWhere(f *Filter) (string, []any) {
	w := f.Where()
	if w == nil {
		return "", nil
	}
	return exprToSQL(w)
}

// BuildRawSelect builds a full SELECT for table including ORDER BY and
// LIMIT/OFFSET.
func BuildRawSelect(f *Filter, table string, joins ...string) (string, []any) {
	query := fmt.Sprintf("SELECT %s.* FROM %s", quoteIdent(table), quoteIdent(table))
	if len(joins) > 0 {
		query += " " + strings.Join(joins, " ")
	}
	where, args := BuildRawWhere(f)
	if where != "" {
		query += " WHERE " + where
	}
	if orderBy := buildOrderBy(f); orderBy != "" {
		query += " " + orderBy
	}
	query += " " + buildLimitOffset(f)
	return query, args
}

// -- internals --

func exprToSQL(p Predicate) (string, []any) {
	switch x := p.(type) {
	case *Clause:
		col := columnRef(x.Path)
		switch x.Op {
		case OperatorContains:
			return fmt.Sprintf("LOWER(%s) LIKE ? ESCAPE '\\'", col), []any{likePattern(x.Literal.Value.(string))}
		case OperatorContainsCaseSensitive:
			return fmt.Sprintf("INSTR(%s, ?) > 0", col), []any{x.Literal.Value}
		default:
			return fmt.Sprintf("%s %s ?", col, string(x.Op)), []any{storeValue(x.Literal)}
		}
	case NotNullExpr:
		return fmt.Sprintf("%s IS NOT NULL", columnRef(x.Path)), nil
	case AndExpr:
		return joinGroup("AND", flatten(x, true))
	case OrExpr:
		return joinGroup("OR", flatten(x, false))
	default:
		return "", nil
	}
}

func joinGroup(op string, operands []Predicate) (string, []any) {
	parts := make([]string, 0, len(operands))
	args := make([]any, 0)
	for _, e := range operands {
		p, a := exprToSQL(e)
		if p != "" {
			parts = append(parts, p)
			args = append(args, a...)
		}
	}
	if len(parts) == 1 {
		return parts[0], args
	}
	return "(" + strings.Join(parts, " "+op+" ") + ")", args
}

func columnRef(p FieldPath) string {
	cols := p.Columns()
	if len(cols) == 1 {
		return quoteIdent(cols[0])
	}
	return quoteIdent(cols[len(cols)-2]) + "." + quoteIdent(cols[len(cols)-1])
}

func buildOrderBy(f *Filter) string {
	if f.Order == nil {
		return ""
	}
	return fmt.Sprintf("ORDER BY %s %s", columnRef(f.Order.Path), strings.ToUpper(f.Order.Direction.String()))
}

func buildLimitOffset(f *Filter) string {
	return fmt.Sprintf("LIMIT %d OFFSET %d", f.Page.Size, f.Page.Skip())
}

// likePattern wraps s in % wildcards, escaping LIKE metacharacters.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func quoteIdent(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

// expandPlaceholders replaces '?' with SQL literals derived from args in order.
// This is intended for debugging and logging only.
func expandPlaceholders(sql string, args []any) string {
	if len(args) == 0 {
		return sql
	}
	var b strings.Builder
	b.Grow(len(sql) + len(args)*4)

	idx := 0
	inSingle := false
	for i := 0; i < len(sql); i++ {
		ch := sql[i]
		if ch == '\'' {
			inSingle = !inSingle
			b.WriteByte(ch)
			continue
		}
		if ch == '?' && !inSingle && idx < len(args) {
			b.WriteString(toSQLLiteral(args[idx]))
			idx++
			continue
		}
		b.WriteByte(ch)
	}
	return b.String()
}

func toSQLLiteral(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case int64, float64:
		return fmt.Sprintf("%v", x)
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case string:
		return "'" + strings.ReplaceAll(x, "'", "''") + "'"
	case fmt.Stringer:
		return "'" + strings.ReplaceAll(x.String(), "'", "''") + "'"
	default:
		return fmt.Sprintf("'%v'", x)
	}
}
