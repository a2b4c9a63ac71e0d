package qfilter

import (
	"context"
	"sort"
)

// Store is a record store a Filter can be run against.
type Store[T any] interface {
	Find(ctx context.Context, f *Filter) ([]T, error)
}

// MemoryStore runs filters over an in-memory slice. The slice is never
// modified.
type MemoryStore[T any] struct {
	records []T
}

func NewMemoryStore[T any](records []T) *MemoryStore[T] {
	return &MemoryStore[T]{records: records}
}

// Find filters with the guard and predicate, sorts stably by the order key
// and returns the requested page.
func (m *MemoryStore[T]) Find(ctx context.Context, f *Filter) ([]T, error) {
	return Execute(ctx, m.records, f)
}

// Execute applies f to records: filter, order, then page.
func Execute[T any](ctx context.Context, records []T, f *Filter) ([]T, error) {
	type keyed struct {
		rec T
		key any
	}

	matched := make([]keyed, 0, len(records))
	for i := range records {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		ok, err := f.Match(records[i])
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		k := keyed{rec: records[i]}
		if f.Order != nil {
			if k.key, err = f.Order.Key(records[i]); err != nil {
				return nil, err
			}
		}
		matched = append(matched, k)
	}

	if f.Order != nil {
		sort.SliceStable(matched, func(i, j int) bool {
			return f.Order.Less(matched[i].key, matched[j].key)
		})
	}

	skip := f.Page.Skip()
	if skip < 0 || skip >= len(matched) {
		return []T{}, nil
	}
	end := len(matched)
	if f.Page.Size > 0 && f.Page.Size < end-skip {
		end = skip + f.Page.Size
	}
	out := make([]T, 0, end-skip)
	for _, k := range matched[skip:end] {
		out = append(out, k.rec)
	}
	return out, nil
}
