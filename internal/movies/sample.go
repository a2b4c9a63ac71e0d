package movies

import "time"

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// Sample returns a small catalogue used by the memory store, the seeder
// and tests.
func Sample() []Movie {
	return []Movie{
		{ID: 1, ReleaseDate: date(2021, time.December, 15), Title: "Spider-Man: No Way Home", Overview: "Peter Parker is unmasked and no longer able to separate his normal life from the high-stakes of being a super-hero.", Popularity: 5083.954, VoteCount: 8940, VoteAverage: 8.3, OriginalLanguage: "en", Genre: "Action, Adventure, Science Fiction", PosterURL: "https://image.tmdb.org/t/p/original/1g0dhYtq4irTY1GPXvft6k4YLjm.jpg"},
		{ID: 2, ReleaseDate: date(2022, time.March, 1), Title: "The Batman", Overview: "In his second year of fighting crime, Batman uncovers corruption in Gotham City.", Popularity: 3827.658, VoteCount: 1151, VoteAverage: 8.1, OriginalLanguage: "en", Genre: "Crime, Mystery, Thriller", PosterURL: "https://image.tmdb.org/t/p/original/74xTEgt7R36Fpooo50r9T25onhq.jpg"},
		{ID: 3, ReleaseDate: date(2022, time.February, 25), Title: "No Exit", Overview: "Stranded at a rest stop in the mountains during a blizzard, a recovering addict discovers a kidnapped child.", Popularity: 2618.087, VoteCount: 122, VoteAverage: 6.3, OriginalLanguage: "en", Genre: "Thriller", PosterURL: "https://image.tmdb.org/t/p/original/vDHsLnOWKlPGmWs0kGfuhNF4w5l.jpg"},
		{ID: 4, ReleaseDate: date(2021, time.November, 24), Title: "Encanto", Overview: "The tale of an extraordinary family, the Madrigals, who live hidden in the mountains of Colombia.", Popularity: 2402.201, VoteCount: 5076, VoteAverage: 7.7, OriginalLanguage: "en", Genre: "Animation, Comedy, Family, Fantasy", PosterURL: "https://image.tmdb.org/t/p/original/4j0PNHkMr5ax3IA8tjtxcmPU3QT.jpg"},
		{ID: 5, ReleaseDate: date(2021, time.December, 22), Title: "The King's Man", Overview: "As a collection of history's worst tyrants and criminal masterminds gather to plot a war.", Popularity: 1895.511, VoteCount: 1793, VoteAverage: 7.0, OriginalLanguage: "en", Genre: "Action, Adventure, Thriller, War", PosterURL: "https://image.tmdb.org/t/p/original/aq4Pwv5Xeuvj6HZKtxyd23e6bE9.jpg"},
		{ID: 6, ReleaseDate: date(2022, time.January, 7), Title: "The Commando", Overview: "An elite DEA agent returns home after a failed mission when his family is taken hostage.", Popularity: 1750.484, VoteCount: 33, VoteAverage: 6.6, OriginalLanguage: "en", Genre: "Action, Crime, Thriller", PosterURL: "https://image.tmdb.org/t/p/original/pSh8MyYu5CmfyfnJZsC8rHBn6Oo.jpg"},
		{ID: 7, ReleaseDate: date(2022, time.January, 12), Title: "Scream", Overview: "Twenty-five years after a streak of brutal murders shocked the quiet town of Woodsboro.", Popularity: 1675.161, VoteCount: 935, VoteAverage: 6.8, OriginalLanguage: "en", Genre: "Horror, Mystery, Thriller", PosterURL: "https://image.tmdb.org/t/p/original/kZNHR1upJKF3eTzdgl5V8s8a4C3.jpg"},
		{ID: 8, ReleaseDate: date(2022, time.February, 10), Title: "Kimi", Overview: "A tech worker with agoraphobia discovers recorded evidence of a violent crime.", Popularity: 1601.782, VoteCount: 206, VoteAverage: 6.3, OriginalLanguage: "en", Genre: "Thriller", PosterURL: "https://image.tmdb.org/t/p/original/okNgwtxIWzGsNlR3GsOS0i0Qgbn.jpg"},
		{ID: 9, ReleaseDate: date(2022, time.February, 24), Title: "Fistful of Vengeance", Overview: "A revenge mission becomes a fight to save the world from an ancient threat.", Popularity: 1594.013, VoteCount: 114, VoteAverage: 5.3, OriginalLanguage: "en", Genre: "Action, Crime, Fantasy", PosterURL: "https://image.tmdb.org/t/p/original/3cccEF9QZgV9bLWyupJO41HSrOV.jpg"},
		{ID: 10, ReleaseDate: date(2021, time.December, 16), Title: "Eternals", Overview: "The Eternals are a team of ancient aliens who have been living on Earth in secret for thousands of years.", Popularity: 1537.406, VoteCount: 4726, VoteAverage: 7.2, OriginalLanguage: "en", Genre: "Science Fiction", PosterURL: "https://image.tmdb.org/t/p/original/lFByFSLV5WDJEv3KabbdAF959F2.jpg"},
		{ID: 11, ReleaseDate: date(2021, time.September, 30), Title: "Venom: Let There Be Carnage", Overview: "After finding a host body in investigative reporter Eddie Brock, the alien symbiote must face a new enemy.", Popularity: 1344.551, VoteCount: 6591, VoteAverage: 7.1, OriginalLanguage: "en", Genre: "Science Fiction, Action, Adventure", PosterURL: "https://image.tmdb.org/t/p/original/rjkmN1dniUHVYAtwuV3Tji7FsDO.jpg"},
		{ID: 12, ReleaseDate: nil, Title: "Untitled Project", Overview: "", Popularity: 12.5, VoteCount: 0, VoteAverage: 0, OriginalLanguage: "fr", Genre: "Drama", PosterURL: ""},
	}
}
