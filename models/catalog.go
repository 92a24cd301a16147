package models

const NA = "N/A"

type MovieSummary struct {
	Slug       string
	Name       string
	OriginName string
	Year       string
	Quality    string
	Language   string
}

type RatingSource string

const (
	RatingSourceIMDB RatingSource = "IMDB"
	RatingSourceTMDB RatingSource = "TMDB"
)

type Rating struct {
	Source      RatingSource
	ID          string
	VoteAverage float64
	VoteCount   int64
}

// MovieDetail is a full catalog record fetched by slug.
type MovieDetail struct {
	MovieSummary

	PosterURL      string
	ThumbURL       string
	TrailerURL     string
	Categories     []string
	Countries      []string
	Runtime        string
	EpisodeCurrent string
	EpisodeTotal   string
	Directors      []string
	Actors         []string
	IMDB           *Rating
	TMDB           *Rating
	Views          int64
	Synopsis       string
	Servers        []EpisodeServer
}

// PhotoURL returns the poster, falling back to the thumbnail.
func (s *MovieDetail) PhotoURL() string {
	if s.PosterURL != "" {
		return s.PosterURL
	}
	return s.ThumbURL
}

// DisplayRating picks the single rating line to show. TMDB is only
// considered when the record carries no IMDB id at all.
func (s *MovieDetail) DisplayRating() *Rating {
	if s.IMDB != nil {
		if s.IMDB.VoteAverage == 0 {
			return nil
		}
		return s.IMDB
	}
	if s.TMDB != nil && s.TMDB.VoteAverage != 0 {
		return s.TMDB
	}
	return nil
}

type Link struct {
	Label string
	URL   string
}
