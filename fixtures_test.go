package qfilter

import (
	"math/big"
	"time"

	"github.com/google/uuid"
)

type studio struct {
	Name    string
	Country *string
}

type film struct {
	ID       uuid.UUID
	Title    string
	Tagline  *string
	Votes    int32
	Rating   float64
	Genre    string
	Released *time.Time
	Budget   *big.Int
	Active   bool
	Studio   *studio
}

var studioSchema = MustSchema("studios",
	Field("Name", Text(), func(s studio) any { return s.Name }),
	Field("Country", Nullable(Text()), func(s studio) any { return s.Country }),
)

var filmSchema = MustSchema("films",
	Field("ID", UUID(), func(f film) any { return f.ID }),
	Field("Title", Text(), func(f film) any { return f.Title }),
	Field("Tagline", Nullable(Text()), func(f film) any { return f.Tagline }),
	Field("Votes", Int32(), func(f film) any { return f.Votes }),
	Field("Rating", Float(), func(f film) any { return f.Rating }),
	Field("Genre", Enum("Action", "Drama", "Comedy"), func(f film) any { return f.Genre }),
	Field("Released", Nullable(Time()), func(f film) any { return f.Released }),
	Field("Budget", Nullable(BigInt()), func(f film) any { return f.Budget }),
	Field("Active", Bool(), func(f film) any { return f.Active }),
	NestedField("Studio", studioSchema, func(f film) any { return f.Studio }),
)

func ptr[T any](v T) *T { return &v }

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func films() []film {
	return []film{
		{ID: uuid.MustParse("11111111-1111-1111-1111-111111111111"), Title: "The Cat Returns", Tagline: ptr("A cat's tale"), Votes: 120, Rating: 7.2, Genre: "Comedy", Released: day(2002, time.July, 20), Budget: big.NewInt(1000000), Active: true, Studio: &studio{Name: "Ghibli", Country: ptr("JP")}},
		{ID: uuid.MustParse("22222222-2222-2222-2222-222222222222"), Title: "Catch Me If You Can", Votes: 5, Rating: 8.1, Genre: "Drama", Released: day(2002, time.December, 25), Active: true, Studio: &studio{Name: "DreamWorks", Country: ptr("US")}},
		{ID: uuid.MustParse("33333333-3333-3333-3333-333333333333"), Title: "Heat", Tagline: ptr("A Los Angeles crime saga"), Votes: 300, Rating: 8.3, Genre: "Action", Released: day(1995, time.December, 15), Active: false, Studio: &studio{Name: "Warner"}},
		{ID: uuid.MustParse("44444444-4444-4444-4444-444444444444"), Title: "Concatenate", Votes: 4, Rating: 3.0, Genre: "Drama"},
		{ID: uuid.MustParse("55555555-5555-5555-5555-555555555555"), Title: "Die Hard", Tagline: ptr("40 Stories. Twelve Terrorists. One Cop."), Votes: 250, Rating: 8.2, Genre: "Action", Released: day(1988, time.July, 15), Active: true, Studio: &studio{Name: "Fox", Country: ptr("US")}},
	}
}
