package qfilter

import (
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDefaults = PageDefaults{DefaultPageSize: 10, MaxPageSize: 50, DefaultOrderField: "Title"}

func TestParseCombinedQuery(t *testing.T) {
	s := MustSchema("docs",
		Field("title", Text(), func(f film) any { return f.Title }),
		Field("votes", Int32(), func(f film) any { return f.Votes }),
		Field("released", Nullable(Time()), func(f film) any { return f.Released }),
	)

	f, err := Parse("votes>3&title%cat&order=asc&orderBy=title&page=2&pagesize=5", s, testDefaults)
	require.NoError(t, err)

	assert.Equal(t, `(votes > 3 AND title % "cat")`, f.Predicate.String())
	assert.Equal(t, "title IS NOT NULL", f.NotNull.String())
	assert.Equal(t, `(title IS NOT NULL AND (votes > 3 AND title % "cat"))`, f.Where().String())

	require.NotNil(t, f.Order)
	assert.Equal(t, "title", f.Order.Path.String())
	assert.Equal(t, Ascending, f.Order.Direction)

	assert.Equal(t, PageRequest{Number: 2, Size: 5}, f.Page)
	assert.Equal(t, PageRequest{Number: 2, Size: 5}, f.Declared)
	assert.Equal(t, 5, f.Page.Skip())
	assert.Same(t, s, f.Schema())
}

func TestParseOrGroups(t *testing.T) {
	f, err := Parse("genre=Action||genre=Drama&votes>10", filmSchema, testDefaults)
	require.NoError(t, err)
	assert.Equal(t, "(Votes > 10 AND (Genre = Action OR Genre = Drama))", f.Predicate.String())
	assert.Nil(t, f.NotNull)

	f, err = Parse("genre=Action||genre=Drama&title%die||title%heat&active=true", filmSchema, testDefaults)
	require.NoError(t, err)
	assert.Equal(t,
		`((Active = true AND (Genre = Action OR Genre = Drama)) AND (Title % "die" OR Title % "heat"))`,
		f.Predicate.String())
	assert.Equal(t, "Title IS NOT NULL", f.NotNull.String(), "guard covers or groups and is deduplicated")

	f, err = Parse("genre=Action||genre=Drama||genre=Comedy", filmSchema, testDefaults)
	require.NoError(t, err)
	assert.Equal(t, "((Genre = Action OR Genre = Drama) OR Genre = Comedy)", f.Predicate.String())
}

func TestParseEmpty(t *testing.T) {
	for _, q := range []string{"", "&", "&&  &"} {
		f, err := Parse(q, filmSchema, testDefaults)
		require.NoError(t, err, q)
		assert.Nil(t, f.Predicate)
		assert.Nil(t, f.NotNull)
		assert.Nil(t, f.Order)
		assert.Equal(t, PageRequest{Number: 1, Size: 10}, f.Page)
		assert.Equal(t, PageRequest{}, f.Declared)
	}
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query string
		want  PageRequest
	}{
		{"page=3", PageRequest{Number: 3, Size: 10}},
		{"pagesize=7", PageRequest{Number: 1, Size: 7}},
		{"PageSize=500&Page=2", PageRequest{Number: 2, Size: 50}},
		{"page=1&page=9", PageRequest{Number: 1, Size: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			f, err := Parse(tt.query, filmSchema, testDefaults)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Page)
		})
	}
}

func TestParseInvalidPagination(t *testing.T) {
	for _, q := range []string{
		"pagesize=abc", "page=", "page=0", "page=-2", "votes>1&page=two",
		"page=500000000000000001&pagesize=20",
		"page=9223372036854775807",
	} {
		_, err := Parse(q, filmSchema, testDefaults)
		assert.ErrorIs(t, err, ErrInvalidPagination, q)
	}
}

func TestPageSkip(t *testing.T) {
	assert.Equal(t, 0, PageRequest{Number: 1, Size: 20}.Skip())
	assert.Equal(t, 40, PageRequest{Number: 3, Size: 20}.Skip())
	assert.Equal(t, 0, PageRequest{Number: 0, Size: 20}.Skip())
	assert.Equal(t, math.MaxInt, PageRequest{Number: math.MaxInt, Size: 20}.Skip())
}

func TestParseOrder(t *testing.T) {
	tests := []struct {
		query string
		field string
		dir   Direction
	}{
		{"order=desc&orderBy=votes", "Votes", Descending},
		{"order=ASC&orderBy=votes", "Votes", Ascending},
		{"order", "Title", Descending},
		{"order=sideways", "Title", Descending},
		{"orderBy=rating", "Rating", Ascending},
		{"orderBy=&order=asc", "Title", Ascending},
		{"order=desc&orderBy=studio.name", "Studio.Name", Descending},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			f, err := Parse(tt.query, filmSchema, testDefaults)
			require.NoError(t, err)
			require.NotNil(t, f.Order)
			assert.Equal(t, tt.field, f.Order.Path.String())
			assert.Equal(t, tt.dir, f.Order.Direction)
			assert.Nil(t, f.Predicate)
		})
	}
}

func TestParseOrderUnknownField(t *testing.T) {
	_, err := Parse("order=asc&orderBy=director", filmSchema, testDefaults)
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = Parse("orderBy=studio", filmSchema, testDefaults)
	assert.ErrorIs(t, err, ErrUnknownField, "a nested record has no order key")

	_, err = Parse("order=desc", filmSchema, PageDefaults{DefaultOrderField: "Name"})
	assert.ErrorIs(t, err, ErrUnknownField, "the default field must exist too")
}

func TestParseFailsWhole(t *testing.T) {
	tests := []struct {
		query string
		want  error
	}{
		{"votes>3&director=Mann", ErrUnknownField},
		{"votes>3&title", ErrUnrecognizedClause},
		{"genre=Action||genre=Horror", ErrUnknownEnumMember},
		{"votes=1.5", ErrMalformedLiteral},
		{"votes=99999999999", ErrLiteralOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			f, err := Parse(tt.query, filmSchema, testDefaults)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, f)
		})
	}
}

func TestParseGuardIgnoresUnresolvable(t *testing.T) {
	g := buildNotNullGuard([]string{"director%mann", "title%cat", "votes>1"}, filmSchema)
	require.NotNil(t, g)
	assert.Equal(t, "Title IS NOT NULL", g.String())
}

// Directive keywords are matched as substrings, so a clause on a field whose
// name contains one of them is consumed as a directive.
func TestParseDirectiveSubstringLimitation(t *testing.T) {
	s := MustSchema("orders",
		Field("OrderTotal", Float(), func(f film) any { return f.Rating }),
		Field("Title", Text(), func(f film) any { return f.Title }),
	)
	f, err := Parse("OrderTotal>5", s, testDefaults)
	require.NoError(t, err)
	assert.Nil(t, f.Predicate)
	require.NotNil(t, f.Order)
	assert.Equal(t, "Title", f.Order.Path.String())
}

func TestFilterMatch(t *testing.T) {
	data := films()
	f, err := Parse("tagline%a", filmSchema, testDefaults)
	require.NoError(t, err)

	var titles []string
	for _, rec := range data {
		ok, err := f.Match(rec)
		require.NoError(t, err)
		if ok {
			titles = append(titles, rec.Title)
		}
	}
	assert.Equal(t, []string{"The Cat Returns", "Heat"}, titles)
}

func TestFilterNarrow(t *testing.T) {
	f, err := Parse("votes>3", filmSchema, testDefaults)
	require.NoError(t, err)
	c, err := CompileClause("genre=Action", filmSchema)
	require.NoError(t, err)

	g := f.Narrow(c)
	assert.Equal(t, "(Votes > 3 AND Genre = Action)", g.Predicate.String())
	assert.Equal(t, "Votes > 3", f.Predicate.String(), "original is unchanged")
}

func TestParseConcurrent(t *testing.T) {
	queries := []string{
		"votes>3&title%cat&order=asc&orderBy=title&page=2&pagesize=5",
		"genre=Action||genre=Drama&active=true",
		"studio.name%fox&order=desc&orderBy=rating",
		"director=Mann",
	}

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q := queries[i%len(queries)]
			f, err := Parse(q, filmSchema, testDefaults)
			if i%len(queries) == 3 {
				if err == nil {
					errs <- fmt.Errorf("query %q should fail", q)
				}
				return
			}
			if err != nil {
				errs <- err
				return
			}
			for _, rec := range films() {
				if _, err := f.Match(rec); err != nil {
					errs <- err
					return
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
