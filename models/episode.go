package models

// EpisodeServer is a named mirror with its own episode list. Names are
// display labels and may repeat within one movie.
type EpisodeServer struct {
	Name  string
	Items []EpisodeItem
}

type EpisodeItem struct {
	Name      string
	StreamURL string
	EmbedURL  string
}

func (s EpisodeItem) Playable() bool {
	return s.StreamURL != "" || s.EmbedURL != ""
}
