// Package movies is the movie catalogue served by the qfilter HTTP API.
package movies

import (
	"strings"
	"time"

	"github.com/bi0dread/qfilter"
)

type Movie struct {
	ID               int16      `gorm:"column:id;primaryKey" json:"id" bson:"id"`
	ReleaseDate      *time.Time `gorm:"column:Release_Date" json:"releaseDate" bson:"Release_Date"`
	Title            string     `gorm:"column:Title" json:"title" bson:"Title"`
	Overview         string     `gorm:"column:Overview" json:"overview" bson:"Overview"`
	Popularity       float64    `gorm:"column:Popularity" json:"popularity" bson:"Popularity"`
	VoteCount        int16      `gorm:"column:Vote_Count" json:"voteCount" bson:"Vote_Count"`
	VoteAverage      float64    `gorm:"column:Vote_Average" json:"voteAverage" bson:"Vote_Average"`
	OriginalLanguage string     `gorm:"column:Original_Language" json:"originalLanguage" bson:"Original_Language"`
	Genre            string     `gorm:"column:Genre" json:"genre" bson:"Genre"`
	PosterURL        string     `gorm:"column:Poster_Url" json:"posterUrl" bson:"Poster_Url"`
}

func (Movie) TableName() string { return "movies" }

// Schema is the query schema of Movie, derived from its GORM mapping.
var Schema = qfilter.MustSchemaFromModel(&Movie{}, qfilter.WithSchemaName("movies"))

// searchFields are matched by a free-text search term.
var searchFields = []string{"Title", "Overview", "Genre"}

// SanitizeTerm lower-cases term and keeps only ASCII letters, digits, '.'
// and '_'.
func SanitizeTerm(term string) string {
	var sb strings.Builder
	for _, c := range strings.ToLower(term) {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || c == '.' || c == '_' {
			sb.WriteRune(c)
		}
	}
	return sb.String()
}

// SearchPredicate matches records whose title, overview or genre contains
// the sanitized term, ignoring case. It is nil when nothing of the term
// survives sanitizing.
func SearchPredicate(term string) (qfilter.Predicate, error) {
	term = SanitizeTerm(term)
	if term == "" {
		return nil, nil
	}
	parts := make([]qfilter.Predicate, 0, len(searchFields))
	for _, field := range searchFields {
		c, err := qfilter.CompileClause(field+string(qfilter.OperatorContains)+term, Schema)
		if err != nil {
			return nil, err
		}
		parts = append(parts, c)
	}
	return qfilter.Or(parts...), nil
}

// Search is a refinement narrowing a filter to a free-text search term.
func Search(term string) qfilter.Refinement {
	return func(f *qfilter.Filter) (*qfilter.Filter, error) {
		p, err := SearchPredicate(term)
		if err != nil || p == nil {
			return f, err
		}
		return f.Narrow(p), nil
	}
}
