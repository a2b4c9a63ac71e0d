package qfilter

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/big"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func init() {
	RegisterAdapter("mongo", func() Adapter { return MongoAdapter{} })
}

// MongoJoin describes how a nested field is pulled from another collection
// with $lookup. Without a join, nested fields are treated as embedded
// documents.
type MongoJoin struct {
	From         string // related collection name
	LocalField   string // field in base documents
	ForeignField string // field in related collection
}

// BuildMongoFilter converts the guard and predicate into a MongoDB filter.
// Nested paths become dotted keys.
func BuildMongoFilter(f *Filter) bson.M {
	w := f.Where()
	if w == nil {
		return bson.M{}
	}
	return mongoExpr(w)
}

// BuildMongoFindOptions produces FindOptions carrying sort, skip and limit.
func BuildMongoFindOptions(f *Filter) *options.FindOptions {
	opts := options.Find().SetLimit(int64(f.Page.Size))
	if skip := f.Page.Skip(); skip > 0 {
		opts.SetSkip(int64(skip))
	}
	if sd := mongoSort(f); sd != nil {
		opts.SetSort(sd)
	}
	return opts
}

// BuildMongoAggregatePipeline builds a pipeline that looks up and unwinds
// every joined relation the filter touches, then matches, sorts and pages.
func BuildMongoAggregatePipeline(f *Filter, joins map[string]MongoJoin) mongo.Pipeline {
	pipeline := mongo.Pipeline{}

	for _, rel := range relationsOf(f) {
		j, ok := joins[rel]
		if !ok {
			continue
		}
		pipeline = append(pipeline,
			bson.D{{Key: "$lookup", Value: bson.D{
				{Key: "from", Value: j.From},
				{Key: "localField", Value: j.LocalField},
				{Key: "foreignField", Value: j.ForeignField},
				{Key: "as", Value: rel},
			}}},
			bson.D{{Key: "$unwind", Value: bson.D{
				{Key: "path", Value: "$" + rel},
				{Key: "preserveNullAndEmptyArrays", Value: true},
			}}},
		)
	}

	if match := BuildMongoFilter(f); len(match) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: match}})
	}
	if sd := mongoSort(f); sd != nil {
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: sd}})
	}
	if skip := f.Page.Skip(); skip > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: int64(skip)}})
	}
	pipeline = append(pipeline, bson.D{{Key: "$limit", Value: int64(f.Page.Size)}})
	return pipeline
}

func mongoSort(f *Filter) bson.D {
	if f.Order == nil {
		return nil
	}
	dir := 1
	if f.Order.Direction == Descending {
		dir = -1
	}
	return bson.D{{Key: mongoKey(f.Order.Path), Value: dir}}
}

func mongoKey(p FieldPath) string {
	return strings.Join(p.Columns(), ".")
}

func mongoExpr(p Predicate) bson.M {
	switch x := p.(type) {
	case *Clause:
		key := mongoKey(x.Path)
		switch x.Op {
		case OperatorEq:
			return bson.M{key: mongoValue(x.Literal)}
		case OperatorNeq:
			return bson.M{key: bson.M{"$ne": mongoValue(x.Literal)}}
		case OperatorGt:
			return bson.M{key: bson.M{"$gt": mongoValue(x.Literal)}}
		case OperatorGte:
			return bson.M{key: bson.M{"$gte": mongoValue(x.Literal)}}
		case OperatorLt:
			return bson.M{key: bson.M{"$lt": mongoValue(x.Literal)}}
		case OperatorLte:
			return bson.M{key: bson.M{"$lte": mongoValue(x.Literal)}}
		case OperatorContains:
			return bson.M{key: primitive.Regex{Pattern: regexp.QuoteMeta(x.Literal.Value.(string)), Options: "i"}}
		case OperatorContainsCaseSensitive:
			return bson.M{key: primitive.Regex{Pattern: regexp.QuoteMeta(x.Literal.Value.(string))}}
		}
	case NotNullExpr:
		return bson.M{mongoKey(x.Path): bson.M{"$ne": nil}}
	case AndExpr:
		return bson.M{"$and": mongoGroup(flatten(x, true))}
	case OrExpr:
		return bson.M{"$or": mongoGroup(flatten(x, false))}
	}
	return bson.M{}
}

func mongoGroup(operands []Predicate) bson.A {
	out := make(bson.A, 0, len(operands))
	for _, p := range operands {
		out = append(out, mongoExpr(p))
	}
	return out
}

// mongoValue is storeValue, except 128-bit integers go in as Decimal128.
func mongoValue(l Literal) any {
	if b, ok := l.Value.(*big.Int); ok {
		if d, err := primitive.ParseDecimal128(b.String()); err == nil {
			return d
		}
	}
	return storeValue(l)
}

// MongoAdapter renders filters as a find filter plus options, or as an
// aggregate pipeline when Joins is set.
type MongoAdapter struct {
	Joins map[string]MongoJoin
}

// MongoFindQuery is a Find call's filter and options.
type MongoFindQuery struct {
	Filter  bson.M
	Options *options.FindOptions
}

func (MongoFindQuery) isQuery() {}

// MongoAggregateQuery is an aggregate pipeline.
type MongoAggregateQuery struct {
	Pipeline mongo.Pipeline
}

func (MongoAggregateQuery) isQuery() {}

func (MongoAdapter) Name() string { return "mongo" }

func (a MongoAdapter) GetQuery(f *Filter) (Query, error) {
	if len(a.Joins) > 0 {
		return MongoAggregateQuery{Pipeline: BuildMongoAggregatePipeline(f, a.Joins)}, nil
	}
	return MongoFindQuery{Filter: BuildMongoFilter(f), Options: BuildMongoFindOptions(f)}, nil
}

// GetString renders the query as relaxed extended JSON.
func (a MongoAdapter) GetString(f *Filter) (string, error) {
	var doc any
	if len(a.Joins) > 0 {
		stages := make(bson.A, 0)
		for _, s := range BuildMongoAggregatePipeline(f, a.Joins) {
			stages = append(stages, s)
		}
		doc = bson.M{"pipeline": stages}
	} else {
		find := bson.M{"filter": BuildMongoFilter(f), "limit": int64(f.Page.Size), "skip": int64(f.Page.Skip())}
		if sd := mongoSort(f); sd != nil {
			find["sort"] = sd
		}
		doc = find
	}
	raw, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return "", errors.Wrap(err, "render mongo query")
	}
	// Round-trip through encoding/json so map keys come out sorted.
	var pretty any
	if err := json.Unmarshal(raw, &pretty); err != nil {
		return string(raw), nil
	}
	out, err := json.Marshal(pretty)
	if err != nil {
		return string(raw), nil
	}
	return string(out), nil
}

// MongoStore runs filters against a collection.
type MongoStore[T any] struct {
	coll  *mongo.Collection
	joins map[string]MongoJoin
	log   *slog.Logger
}

func NewMongoStore[T any](coll *mongo.Collection, joins map[string]MongoJoin, log *slog.Logger) *MongoStore[T] {
	if log == nil {
		log = slog.Default()
	}
	return &MongoStore[T]{coll: coll, joins: joins, log: log}
}

func (s *MongoStore[T]) Find(ctx context.Context, f *Filter) ([]T, error) {
	var (
		cur *mongo.Cursor
		err error
	)
	if len(s.joins) > 0 {
		cur, err = s.coll.Aggregate(ctx, BuildMongoAggregatePipeline(f, s.joins))
	} else {
		cur, err = s.coll.Find(ctx, BuildMongoFilter(f), BuildMongoFindOptions(f))
	}
	if err != nil {
		return nil, errors.Wrapf(err, "mongo find on %s", s.coll.Name())
	}
	defer cur.Close(ctx)

	var out []T
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrapf(err, "mongo decode from %s", s.coll.Name())
	}
	s.log.DebugContext(ctx, "mongo find", "collection", s.coll.Name(), "docs", len(out))
	return out, nil
}
