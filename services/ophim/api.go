package ophim

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"github.com/webtor-io/ophim-bot/models"
	"golang.org/x/text/unicode/norm"
)

const (
	apiURLFlag   = "ophim-api-url"
	siteURLFlag  = "ophim-site-url"
	imageURLFlag = "ophim-image-url"
	timeoutFlag  = "ophim-timeout"
)

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   apiURLFlag,
			Usage:  "ophim api url",
			EnvVar: "OPHIM_API_URL",
			Value:  "https://ophim1.com/v1/api",
		},
		cli.StringFlag{
			Name:   siteURLFlag,
			Usage:  "ophim site url used for movie page links",
			EnvVar: "OPHIM_SITE_URL",
			Value:  "https://ophim1.com",
		},
		cli.StringFlag{
			Name:   imageURLFlag,
			Usage:  "base url for relative poster and thumb names",
			EnvVar: "OPHIM_IMAGE_URL",
			Value:  "https://img.ophim.live/uploads/movies",
		},
		cli.DurationFlag{
			Name:   timeoutFlag,
			Usage:  "ophim api request timeout",
			EnvVar: "OPHIM_TIMEOUT",
			Value:  10 * time.Second,
		},
	)
}

// Api is a read-only client for the ophim catalog. None of its queries
// return errors: failures are folded into Result.Outcome.
type Api struct {
	url      string
	siteURL  string
	imageURL string
	timeout  time.Duration
	cl       *http.Client
}

func New(c *cli.Context, cl *http.Client) *Api {
	u := strings.TrimRight(c.String(apiURLFlag), "/")
	log.Infof("ophim api endpoint %v", u)
	return &Api{
		url:      u,
		siteURL:  strings.TrimRight(c.String(siteURLFlag), "/"),
		imageURL: strings.TrimRight(c.String(imageURLFlag), "/"),
		timeout:  c.Duration(timeoutFlag),
		cl:       cl,
	}
}

func (api *Api) SiteURL() string {
	return api.siteURL
}

// Search queries the keyword endpoint. An empty successful answer falls
// back to a slug lookup of the keyword.
func (api *Api) Search(ctx context.Context, keyword string) Result[models.MovieSummary] {
	data, err := api.get(ctx, "/tim-kiem", url.Values{"keyword": {keyword}})
	if err != nil {
		log.WithError(err).WithField("keyword", keyword).Error("failed to search movies")
		return failed[models.MovieSummary](err)
	}
	if items := rawItems(data); len(items) > 0 {
		return found(summaries(items))
	}
	r := api.LookupBySlug(ctx, Slugify(keyword))
	if r.Outcome != OutcomeOK {
		return Result[models.MovieSummary]{Outcome: OutcomeEmpty, Err: r.Err}
	}
	res := make([]models.MovieSummary, 0, len(r.Items))
	for _, d := range r.Items {
		res = append(res, d.MovieSummary)
	}
	return found(res)
}

// ListByCategory returns one page of a listing.
func (api *Api) ListByCategory(ctx context.Context, slug string, page int) Result[models.MovieSummary] {
	if page < 1 {
		page = 1
	}
	data, err := api.get(ctx, "/danh-sach/"+url.PathEscape(slug), url.Values{"page": {strconv.Itoa(page)}})
	if err != nil {
		log.WithError(err).WithField("category", slug).Error("failed to get movies by category")
		return failed[models.MovieSummary](err)
	}
	return found(summaries(rawItems(data)))
}

// LookupBySlug returns zero or one detailed record.
func (api *Api) LookupBySlug(ctx context.Context, slug string) Result[models.MovieDetail] {
	if slug == "" {
		return Result[models.MovieDetail]{Outcome: OutcomeEmpty}
	}
	data, err := api.get(ctx, "/phim/"+url.PathEscape(slug), nil)
	if err == nil {
		item, ok := data["item"].(map[string]any)
		if !ok {
			err = errNoItem
		} else {
			d := ToDetail(item)
			d.PosterURL = ResolveImage(api.imageURL, d.PosterURL)
			d.ThumbURL = ResolveImage(api.imageURL, d.ThumbURL)
			return found([]models.MovieDetail{d})
		}
	}
	r := failed[models.MovieDetail](err)
	le := log.WithError(err).WithField("slug", slug)
	if r.Outcome == OutcomeNotFound {
		le.Warn("movie not found")
	} else {
		le.Error("failed to get movie details")
	}
	return r
}

// GetDetail is LookupBySlug for call sites needing exactly one movie.
func (api *Api) GetDetail(ctx context.Context, slug string) Result[models.MovieDetail] {
	return api.LookupBySlug(ctx, slug)
}

func (api *Api) get(ctx context.Context, path string, q url.Values) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, api.timeout)
	defer cancel()

	u := api.url + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := api.cl.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var raw map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "decode response")
	}
	if st, _ := raw["status"].(string); st != "success" {
		return nil, errors.Wrapf(ErrUpstream, "status %v", raw["status"])
	}
	data, ok := raw["data"].(map[string]any)
	if !ok {
		return nil, errors.Wrap(ErrUpstream, "missing data")
	}
	return data, nil
}

// Slugify turns free text into the catalog's slug shape.
func Slugify(keyword string) string {
	s := strings.ToLower(norm.NFC.String(strings.TrimSpace(keyword)))
	return strings.ReplaceAll(s, " ", "-")
}

// ResolveImage joins bare file names onto base; absolute urls pass through.
func ResolveImage(base, u string) string {
	if u == "" || base == "" || strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	if strings.HasPrefix(u, "//") {
		return "https:" + u
	}
	return base + "/" + strings.TrimLeft(u, "/")
}

func rawItems(data map[string]any) []map[string]any {
	list, _ := data["items"].([]any)
	res := make([]map[string]any, 0, len(list))
	for _, v := range list {
		if m, ok := v.(map[string]any); ok {
			res = append(res, m)
		}
	}
	return res
}

func summaries(items []map[string]any) []models.MovieSummary {
	res := make([]models.MovieSummary, 0, len(items))
	for _, it := range items {
		res = append(res, ToSummary(it))
	}
	return res
}
