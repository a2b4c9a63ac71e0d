package qfilter

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func init() {
	RegisterAdapter("gorm", func() Adapter { return GormAdapter{} })
}

// toGormClause converts a predicate tree into a gorm clause.Expression.
func toGormClause(p Predicate) clause.Expression {
	switch x := p.(type) {
	case *Clause:
		col := gormColumn(x.Path)
		switch x.Op {
		case OperatorEq:
			return clause.Eq{Column: col, Value: storeValue(x.Literal)}
		case OperatorNeq:
			return clause.Neq{Column: col, Value: storeValue(x.Literal)}
		case OperatorGt:
			return clause.Gt{Column: col, Value: storeValue(x.Literal)}
		case OperatorGte:
			return clause.Gte{Column: col, Value: storeValue(x.Literal)}
		case OperatorLt:
			return clause.Lt{Column: col, Value: storeValue(x.Literal)}
		case OperatorLte:
			return clause.Lte{Column: col, Value: storeValue(x.Literal)}
		case OperatorContains:
			// No portable ILIKE; LOWER(col) LIKE pattern with the literal already lower-cased.
			return clause.Expr{SQL: "LOWER(?) LIKE ? ESCAPE '\\'", Vars: []any{col, likePattern(x.Literal.Value.(string))}}
		case OperatorContainsCaseSensitive:
			return clause.Expr{SQL: "INSTR(?, ?) > 0", Vars: []any{col, x.Literal.Value}}
		}
	case NotNullExpr:
		return clause.Neq{Column: gormColumn(x.Path), Value: nil}
	case AndExpr:
		return clause.And(toGormClause(x.Left), toGormClause(x.Right))
	case OrExpr:
		return clause.Or(toGormClause(x.Left), toGormClause(x.Right))
	}
	return nil
}

func gormColumn(p FieldPath) clause.Column {
	cols := p.Columns()
	if len(cols) == 1 {
		return clause.Column{Table: clause.CurrentTable, Name: cols[0]}
	}
	return clause.Column{Table: cols[len(cols)-2], Name: cols[len(cols)-1]}
}

// ApplyGorm applies joins, the guard and predicate, ordering and pagination
// to a GORM DB instance.
func ApplyGorm(f *Filter, trx *gorm.DB) *gorm.DB {
	for _, rel := range relationsOf(f) {
		trx = trx.Joins(rel)
	}
	if w := f.Where(); w != nil {
		trx = trx.Clauses(clause.Where{Exprs: []clause.Expression{toGormClause(w)}})
	}
	if f.Order != nil {
		trx = trx.Order(clause.OrderByColumn{
			Column: gormColumn(f.Order.Path),
			Desc:   f.Order.Direction == Descending,
		})
	}
	return trx.Limit(f.Page.Size).Offset(f.Page.Skip())
}

// GormAdapter renders filters through GORM's statement builder. DB is used
// for dialect and model information; with a nil DB only GetQuery's
// expression form is available.
type GormAdapter struct {
	DB    *gorm.DB
	Model any
}

// GormQuery carries the converted where expression and order column.
type GormQuery struct {
	Where   clause.Expression
	OrderBy *clause.OrderByColumn
	Joins   []string
	Limit   int
	Offset  int
}

func (GormQuery) isQuery() {}

func (GormAdapter) Name() string { return "gorm" }

func (GormAdapter) GetQuery(f *Filter) (Query, error) {
	q := GormQuery{Joins: relationsOf(f), Limit: f.Page.Size, Offset: f.Page.Skip()}
	if w := f.Where(); w != nil {
		q.Where = toGormClause(w)
	}
	if f.Order != nil {
		q.OrderBy = &clause.OrderByColumn{Column: gormColumn(f.Order.Path), Desc: f.Order.Direction == Descending}
	}
	return q, nil
}

// GetString renders the SQL GORM would run, using a dry-run session.
func (a GormAdapter) GetString(f *Filter) (string, error) {
	if a.DB == nil {
		return "", errors.New("qfilter: gorm adapter has no database")
	}
	model := a.Model
	if model == nil {
		return "", errors.New("qfilter: gorm adapter has no model")
	}
	sql := a.DB.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var dest []map[string]any
		return ApplyGorm(f, tx.Model(model)).Find(&dest)
	})
	return sql, nil
}

// GormStore runs filters against a table through GORM.
type GormStore[T any] struct {
	db  *gorm.DB
	log *slog.Logger
}

func NewGormStore[T any](db *gorm.DB, log *slog.Logger) *GormStore[T] {
	if log == nil {
		log = slog.Default()
	}
	return &GormStore[T]{db: db, log: log}
}

func (s *GormStore[T]) Find(ctx context.Context, f *Filter) ([]T, error) {
	var out []T
	tx := ApplyGorm(f, s.db.WithContext(ctx).Model(new(T))).Find(&out)
	if tx.Error != nil {
		return nil, errors.Wrapf(tx.Error, "gorm find on %s", f.Schema().Name())
	}
	s.log.DebugContext(ctx, "gorm find", "schema", f.Schema().Name(), "rows", tx.RowsAffected)
	return out, nil
}
