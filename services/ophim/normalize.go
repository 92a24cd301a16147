package ophim

import (
	"math"
	"strconv"
	"strings"

	"github.com/webtor-io/ophim-bot/models"
)

const (
	defaultServerName  = "Server"
	defaultEpisodeName = "Tập ?"
)

// ToSummary extracts the listing fields of a raw catalog item.
func ToSummary(raw map[string]any) models.MovieSummary {
	return models.MovieSummary{
		Slug:       stringOr(raw, "slug", ""),
		Name:       stringOr(raw, "name", models.NA),
		OriginName: stringOr(raw, "origin_name", models.NA),
		Year:       stringOr(raw, "year", models.NA),
		Quality:    stringOr(raw, "quality", models.NA),
		Language:   stringOr(raw, "lang", models.NA),
	}
}

// ToDetail extracts every field of a raw catalog item. List-typed fields
// holding anything other than a list come back empty.
func ToDetail(raw map[string]any) models.MovieDetail {
	return models.MovieDetail{
		MovieSummary:   ToSummary(raw),
		PosterURL:      stringOr(raw, "poster_url", ""),
		ThumbURL:       stringOr(raw, "thumb_url", ""),
		TrailerURL:     stringOr(raw, "trailer_url", ""),
		Categories:     names(raw["category"]),
		Countries:      names(raw["country"]),
		Runtime:        stringOr(raw, "time", models.NA),
		EpisodeCurrent: stringOr(raw, "episode_current", models.NA),
		EpisodeTotal:   stringOr(raw, "episode_total", models.NA),
		Directors:      strs(raw["director"]),
		Actors:         strs(raw["actor"]),
		IMDB:           rating(raw["imdb"], models.RatingSourceIMDB),
		TMDB:           rating(raw["tmdb"], models.RatingSourceTMDB),
		Views:          intOr(raw["view"]),
		Synopsis:       stringOr(raw, "content", ""),
		Servers:        ExtractServers(raw["episodes"]),
	}
}

// ExtractServers flattens the episodes field keeping only playable items
// and servers left with at least one of them.
func ExtractServers(v any) []models.EpisodeServer {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var res []models.EpisodeServer
	for _, s := range list {
		server, ok := s.(map[string]any)
		if !ok {
			continue
		}
		data, _ := server["server_data"].([]any)
		var items []models.EpisodeItem
		for _, e := range data {
			ep, ok := e.(map[string]any)
			if !ok {
				continue
			}
			item := models.EpisodeItem{
				Name:      stringOr(ep, "name", defaultEpisodeName),
				StreamURL: stringOr(ep, "link_m3u8", ""),
				EmbedURL:  stringOr(ep, "link_embed", ""),
			}
			if !item.Playable() {
				continue
			}
			items = append(items, item)
		}
		if len(items) == 0 {
			continue
		}
		res = append(res, models.EpisodeServer{
			Name:  stringOr(server, "server_name", defaultServerName),
			Items: items,
		})
	}
	return res
}

// BasicLinks returns the catalog page, poster and trailer links in that order.
func BasicLinks(d *models.MovieDetail, siteURL string) []models.Link {
	var links []models.Link
	if d.Slug != "" {
		links = append(links, models.Link{
			Label: "Xem trên Ophim",
			URL:   strings.TrimRight(siteURL, "/") + "/phim/" + d.Slug,
		})
	}
	if d.PosterURL != "" {
		links = append(links, models.Link{Label: "Poster phim", URL: d.PosterURL})
	}
	if d.TrailerURL != "" {
		links = append(links, models.Link{Label: "Trailer", URL: d.TrailerURL})
	}
	return links
}

// stringOr reads a scalar field; absent, null, blank or non-scalar values
// yield def.
func stringOr(raw map[string]any, key string, def string) string {
	switch t := raw[key].(type) {
	case string:
		if strings.TrimSpace(t) == "" {
			return def
		}
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return def
	}
}

func intOr(v any) int64 {
	switch t := v.(type) {
	case float64:
		switch {
		case math.IsNaN(t):
			return 0
		case t >= math.MaxInt64:
			return math.MaxInt64
		case t <= math.MinInt64:
			return math.MinInt64
		}
		return int64(t)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func floatOr(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func names(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return []string{}
	}
	res := make([]string, 0, len(list))
	for _, e := range list {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		if name := stringOr(m, "name", ""); name != "" {
			res = append(res, name)
		}
	}
	return res
}

func strs(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return []string{}
	}
	res := make([]string, 0, len(list))
	for _, e := range list {
		if s, ok := e.(string); ok && strings.TrimSpace(s) != "" {
			res = append(res, s)
		}
	}
	return res
}

func rating(v any, source models.RatingSource) *models.Rating {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	id := stringOr(m, "id", "")
	if id == "" || id == "0" {
		return nil
	}
	return &models.Rating{
		Source:      source,
		ID:          id,
		VoteAverage: floatOr(m["vote_average"]),
		VoteCount:   intOr(m["vote_count"]),
	}
}
