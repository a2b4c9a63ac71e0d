package qfilter

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

func init() {
	RegisterAdapter("redis", func() Adapter { return RediSearchAdapter{Index: "idx:records"} })
}

// Executor runs a raw Redis command.
type Executor interface {
	Do(ctx context.Context, args ...any) (any, error)
}

// RediSearchConn implements Executor on top of *redis.Client and records
// a span per command.
type RediSearchConn struct {
	client *redis.Client
}

func NewRediSearchConn(c *redis.Client) *RediSearchConn { return &RediSearchConn{client: c} }

func (rc *RediSearchConn) Do(ctx context.Context, args ...any) (any, error) {
	ctx, span := otel.Tracer("qfilter.redisearch").Start(ctx, "redis.do")
	defer span.End()

	start := time.Now()
	res, err := rc.client.Do(ctx, args...).Result()
	span.SetAttributes(
		attribute.String("redis.cmd", joinArgs(args)),
		attribute.Float64("redis.duration_ms", float64(time.Since(start).Milliseconds())),
	)
	if err != nil {
		span.RecordError(err)
	}
	return res, err
}

func (rc *RediSearchConn) Close() error { return rc.client.Close() }

// RediSearchAdapter renders filters as FT.SEARCH arguments against Index.
// Text, enum, UUID and bool fields are expected to be TAG fields; numeric
// and time fields NUMERIC (times as unix seconds). The not-null guard has
// no portable RediSearch form and is left out.
type RediSearchAdapter struct {
	Index string
}

// RediSearchQuery is a complete FT.SEARCH command.
type RediSearchQuery struct {
	Args []any
}

func (RediSearchQuery) isQuery() {}

func (RediSearchAdapter) Name() string { return "redis" }

func (a RediSearchAdapter) GetQuery(f *Filter) (Query, error) {
	return RediSearchQuery{Args: BuildRediSearchArgs(a.Index, f)}, nil
}

func (a RediSearchAdapter) GetString(f *Filter) (string, error) {
	return joinArgs(BuildRediSearchArgs(a.Index, f)), nil
}

// BuildRediSearchQuery renders the predicate as a RediSearch query string.
func BuildRediSearchQuery(f *Filter) string {
	if f.Predicate == nil {
		return "*"
	}
	var sb strings.Builder
	redisExpr(&sb, f.Predicate)
	return sb.String()
}

// BuildRediSearchArgs builds FT.SEARCH with SORTBY and LIMIT.
func BuildRediSearchArgs(index string, f *Filter) []any {
	args := []any{"FT.SEARCH", index, BuildRediSearchQuery(f)}
	if f.Order != nil {
		args = append(args, "SORTBY", redisField(f.Order.Path), strings.ToUpper(f.Order.Direction.String()))
	}
	return append(args, "LIMIT", f.Page.Skip(), f.Page.Size, "DIALECT", 2)
}

func redisField(p FieldPath) string {
	return strings.Join(p.Columns(), "_")
}

func redisExpr(sb *strings.Builder, p Predicate) {
	switch x := p.(type) {
	case *Clause:
		redisClause(sb, x)
	case AndExpr:
		redisGroup(sb, flatten(x, true), " ")
	case OrExpr:
		redisGroup(sb, flatten(x, false), "|")
	}
}

func redisGroup(sb *strings.Builder, xs []Predicate, sep string) {
	sb.WriteByte('(')
	for i, x := range xs {
		if i > 0 {
			sb.WriteString(sep)
		}
		redisExpr(sb, x)
	}
	sb.WriteByte(')')
}

func redisClause(sb *strings.Builder, c *Clause) {
	field := "@" + redisField(c.Path)
	if c.Op.IsContains() {
		fmt.Fprintf(sb, "%s:{*%s*}", field, redisEscape(c.Literal.Value.(string)))
		return
	}

	num, numeric := redisNumber(c.Literal)
	if !numeric {
		tag := fmt.Sprintf("%s:{%s}", field, redisEscape(fmt.Sprint(storeValue(c.Literal))))
		if c.Op == OperatorNeq {
			sb.WriteByte('-')
		}
		sb.WriteString(tag)
		return
	}

	switch c.Op {
	case OperatorEq:
		fmt.Fprintf(sb, "%s:[%s %s]", field, num, num)
	case OperatorNeq:
		fmt.Fprintf(sb, "-%s:[%s %s]", field, num, num)
	case OperatorGt:
		fmt.Fprintf(sb, "%s:[(%s +inf]", field, num)
	case OperatorGte:
		fmt.Fprintf(sb, "%s:[%s +inf]", field, num)
	case OperatorLt:
		fmt.Fprintf(sb, "%s:[-inf (%s]", field, num)
	case OperatorLte:
		fmt.Fprintf(sb, "%s:[-inf %s]", field, num)
	}
}

func redisNumber(l Literal) (string, bool) {
	switch v := l.Value.(type) {
	case int64:
		return strconv.FormatInt(v, 10), true
	case *big.Int:
		return v.String(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case time.Time:
		return strconv.FormatInt(v.Unix(), 10), true
	}
	return "", false
}

// redisEscape backslash-escapes everything but letters, digits and '_'.
func redisEscape(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func joinArgs(args []any) string {
	var sb strings.Builder
	for i, a := range args {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(replyString(a))
	}
	return sb.String()
}

func replyString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}

// RediSearchStore runs filters against a RediSearch index and returns each
// hit's attributes.
type RediSearchStore struct {
	index string
	exec  Executor
	log   *slog.Logger
}

func NewRediSearchStore(index string, exec Executor, log *slog.Logger) *RediSearchStore {
	if log == nil {
		log = slog.Default()
	}
	return &RediSearchStore{index: index, exec: exec, log: log}
}

func (s *RediSearchStore) Find(ctx context.Context, f *Filter) ([]map[string]string, error) {
	raw, err := s.exec.Do(ctx, BuildRediSearchArgs(s.index, f)...)
	if err != nil {
		return nil, errors.Wrapf(err, "ft.search on %s", s.index)
	}
	hits, err := decodeSearchReply(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "decode ft.search reply from %s", s.index)
	}
	s.log.DebugContext(ctx, "redisearch find", "index", s.index, "hits", len(hits))
	return hits, nil
}

// decodeSearchReply accepts both the RESP2 array and the RESP3 map forms
// of an FT.SEARCH reply.
func decodeSearchReply(raw any) ([]map[string]string, error) {
	switch reply := raw.(type) {
	case []any:
		if len(reply) == 0 {
			return []map[string]string{}, nil
		}
		if _, ok := reply[0].(int64); !ok {
			return nil, errors.New("first reply element is not a count")
		}
		// count, then (id, attributes) pairs
		out := make([]map[string]string, 0, (len(reply)-1)/2)
		for i := 2; i < len(reply); i += 2 {
			m, err := attributeMap(reply[i])
			if err != nil {
				return nil, err
			}
			out = append(out, m)
		}
		return out, nil
	case map[any]any:
		results, ok := reply["results"].([]any)
		if !ok {
			return nil, errors.New("reply has no results array")
		}
		out := make([]map[string]string, 0, len(results))
		for _, r := range results {
			hit, ok := r.(map[any]any)
			if !ok {
				return nil, errors.Errorf("unknown hit type %T", r)
			}
			attrs, ok := hit["extra_attributes"]
			if !ok {
				attrs = hit["values"]
			}
			m, err := attributeMap(attrs)
			if err != nil {
				return nil, err
			}
			out = append(out, m)
		}
		return out, nil
	default:
		return nil, errors.Errorf("unsupported reply type %T", raw)
	}
}

func attributeMap(v any) (map[string]string, error) {
	switch t := v.(type) {
	case nil:
		return map[string]string{}, nil
	case []any:
		m := make(map[string]string, len(t)/2)
		for i := 0; i+1 < len(t); i += 2 {
			m[replyString(t[i])] = replyString(t[i+1])
		}
		return m, nil
	case map[any]any:
		m := make(map[string]string, len(t))
		for k, val := range t {
			m[replyString(k)] = replyString(val)
		}
		return m, nil
	case map[string]any:
		m := make(map[string]string, len(t))
		for k, val := range t {
			m[k] = replyString(val)
		}
		return m, nil
	default:
		return nil, errors.Errorf("unsupported attribute type %T", v)
	}
}
