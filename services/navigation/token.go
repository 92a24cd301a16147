package navigation

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// MaxTokenBytes is the callback data limit of the chat transport.
const MaxTokenBytes = 64

type Action int

const (
	ActionBack Action = iota
	ActionDetail
	ActionLinks
	ActionVideos
	ActionBasic
	ActionCategory
	ActionBackToCategories
)

const (
	backToken             = "back"
	backToCategoriesToken = "back_to_cat"
	sep                   = "_"
)

var prefixes = map[Action]string{
	ActionDetail:   "detail_",
	ActionLinks:    "links_",
	ActionVideos:   "videos_",
	ActionBasic:    "basic_",
	ActionCategory: "cat_",
}

func (s Action) String() string {
	switch s {
	case ActionBack:
		return "back"
	case ActionDetail:
		return "detail"
	case ActionLinks:
		return "links"
	case ActionVideos:
		return "videos"
	case ActionBasic:
		return "basic"
	case ActionCategory:
		return "category"
	case ActionBackToCategories:
		return "back_to_categories"
	default:
		return "unknown"
	}
}

// Intent is a decoded button press. Slug holds the movie slug, or the
// category slug for ActionCategory. Index is only meaningful for ActionVideos.
type Intent struct {
	Action Action
	Slug   string
	Index  int
}

var ErrMalformedToken = errors.New("malformed token")

func Detail(slug string) Intent {
	return Intent{Action: ActionDetail, Slug: slug}
}

func Links(slug string) Intent {
	return Intent{Action: ActionLinks, Slug: slug}
}

func Videos(slug string, index int) Intent {
	if index < 0 {
		index = 0
	}
	return Intent{Action: ActionVideos, Slug: slug, Index: index}
}

func Basic(slug string) Intent {
	return Intent{Action: ActionBasic, Slug: slug}
}

func Category(slug string) Intent {
	return Intent{Action: ActionCategory, Slug: slug}
}

func Back() Intent {
	return Intent{Action: ActionBack}
}

func BackToCategories() Intent {
	return Intent{Action: ActionBackToCategories}
}

// Encode never escapes the slug. A slug ending in "_<digits>" therefore
// decodes differently inside a videos token.
func Encode(in Intent) string {
	switch in.Action {
	case ActionBack:
		return backToken
	case ActionBackToCategories:
		return backToCategoriesToken
	case ActionVideos:
		return prefixes[ActionVideos] + in.Slug + sep + strconv.Itoa(in.Index)
	default:
		return prefixes[in.Action] + in.Slug
	}
}

// Fits reports whether token can be attached to a button.
func Fits(token string) bool {
	return len(token) <= MaxTokenBytes
}

func Decode(token string) (Intent, error) {
	switch token {
	case backToken:
		return Back(), nil
	case backToCategoriesToken:
		return BackToCategories(), nil
	}
	for _, a := range []Action{ActionDetail, ActionLinks, ActionVideos, ActionBasic, ActionCategory} {
		payload, ok := strings.CutPrefix(token, prefixes[a])
		if !ok {
			continue
		}
		if a == ActionVideos {
			return decodeVideos(token, payload)
		}
		if payload == "" {
			return Intent{}, errors.Wrapf(ErrMalformedToken, "empty slug in %q", token)
		}
		return Intent{Action: a, Slug: payload}, nil
	}
	return Intent{}, errors.Wrapf(ErrMalformedToken, "unknown action in %q", token)
}

// decodeVideos anchors on the last separator so slugs may contain "_".
func decodeVideos(token, payload string) (Intent, error) {
	i := strings.LastIndex(payload, sep)
	if i < 0 {
		return Intent{}, errors.Wrapf(ErrMalformedToken, "no index in %q", token)
	}
	slug, idx := payload[:i], payload[i+1:]
	if slug == "" {
		return Intent{}, errors.Wrapf(ErrMalformedToken, "empty slug in %q", token)
	}
	if idx == "" || strings.TrimLeft(idx, "0123456789") != "" {
		return Intent{}, errors.Wrapf(ErrMalformedToken, "bad index in %q", token)
	}
	n, err := strconv.Atoi(idx)
	if err != nil {
		return Intent{}, errors.Wrapf(ErrMalformedToken, "bad index in %q: %v", token, err)
	}
	return Intent{Action: ActionVideos, Slug: slug, Index: n}, nil
}

// DecodeOrBack substitutes the back intent for anything Decode rejects.
func DecodeOrBack(token string) Intent {
	in, err := Decode(token)
	if err != nil {
		log.WithError(err).WithField("token", token).Warn("failed to decode token")
		return Back()
	}
	return in
}
