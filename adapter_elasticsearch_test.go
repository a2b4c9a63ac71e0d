package qfilter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func esJSON(t *testing.T, a ElasticsearchAdapter, query string) string {
	t.Helper()
	s, err := a.GetString(mustParse(t, query))
	require.NoError(t, err)
	return s
}

func TestElasticsearchQuery(t *testing.T) {
	assert.JSONEq(t, `{
		"query": {"bool": {"must": [
			{"exists": {"field": "title"}},
			{"range": {"votes": {"gt": 3}}},
			{"wildcard": {"title": {"value": "*cat*", "case_insensitive": true}}}
		]}},
		"sort": [{"votes": {"order": "desc"}}],
		"from": 5,
		"size": 5
	}`, esJSON(t, ElasticsearchAdapter{}, "votes>3&title%Cat&order=desc&orderBy=votes&page=2&pagesize=5"))

	assert.JSONEq(t, `{"query": {"match_all": {}}, "size": 10}`, esJSON(t, ElasticsearchAdapter{}, ""))
}

func TestElasticsearchClauses(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"genre=Action", `{"term": {"genre": "Action"}}`},
		{"genre!=Action", `{"bool": {"must_not": {"term": {"genre": "Action"}}}}`},
		{"rating>=8", `{"range": {"rating": {"gte": 8}}}`},
		{"votes<10", `{"range": {"votes": {"lt": 10}}}`},
		{"votes<=10", `{"range": {"votes": {"lte": 10}}}`},
		{"released>2000-01-01", `{"range": {"released": {"gt": "2000-01-01T00:00:00Z"}}}`},
		{"studio.name=Fox", `{"term": {"studio.name": "Fox"}}`},
		{"budget=1000", `{"term": {"budget": "1000"}}`},
		{"genre=Action||genre=Drama", `{"bool": {"should": [
			{"term": {"genre": "Action"}},
			{"term": {"genre": "Drama"}}
		], "minimum_should_match": 1}}`},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			q := BuildElasticsearchQuery(mustParse(t, tt.query))
			b, err := json.Marshal(q.Query)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(b))
		})
	}
}

func TestElasticsearchKeywordAndEscaping(t *testing.T) {
	a := ElasticsearchAdapter{Keyword: ".keyword"}
	q := a.Build(mustParse(t, "title=Heat&genre=Drama&order=asc&orderBy=title"))
	b, err := json.Marshal(q)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"query": {"bool": {"must": [
			{"term": {"title.keyword": "Heat"}},
			{"term": {"genre": "Drama"}}
		]}},
		"sort": [{"title.keyword": {"order": "asc"}}],
		"size": 10
	}`, string(b))

	q = BuildElasticsearchQuery(mustParse(t, "title%%A*b?"))
	b, err = json.Marshal(q.Query)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"value":"*A\\*b\\?*"`)
	assert.Contains(t, string(b), `"case_insensitive":false`)
}

func TestGetElasticsearchQueryString(t *testing.T) {
	s, err := GetElasticsearchQueryString(mustParse(t, "votes>3"))
	require.NoError(t, err)
	assert.Contains(t, s, "\n  \"query\"")
	assert.JSONEq(t, `{"query": {"range": {"votes": {"gt": 3}}}, "size": 10}`, s)

	q, err := ElasticsearchAdapter{}.GetQuery(mustParse(t, ""))
	require.NoError(t, err)
	_, ok := q.(ElasticsearchQuery)
	assert.True(t, ok)
}
