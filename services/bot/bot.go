package bot

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/webtor-io/ophim-bot/models"
	"github.com/webtor-io/ophim-bot/services/navigation"
	"github.com/webtor-io/ophim-bot/services/ophim"
	"github.com/webtor-io/ophim-bot/services/view"
)

type Catalog interface {
	Search(ctx context.Context, keyword string) ophim.Result[models.MovieSummary]
	ListByCategory(ctx context.Context, slug string, page int) ophim.Result[models.MovieSummary]
	GetDetail(ctx context.Context, slug string) ophim.Result[models.MovieDetail]
}

// Sender delivers views to a chat. Send returns the id of the new message.
type Sender interface {
	Send(ctx context.Context, chatID int64, v *view.View) (int, error)
	Edit(ctx context.Context, chatID int64, messageID int, v *view.View) error
	Answer(ctx context.Context, callbackID string) error
}

type handler func(ctx context.Context, chatID int64, in navigation.Intent) error

// Bot routes inbound commands, text and button presses to views. Every
// event is handled independently so calls may run concurrently.
type Bot struct {
	catalog  Catalog
	sender   Sender
	views    *view.Builder
	siteURL  string
	handlers map[navigation.Action]handler
}

func New(catalog Catalog, sender Sender, views *view.Builder, siteURL string) *Bot {
	b := &Bot{
		catalog: catalog,
		sender:  sender,
		views:   views,
		siteURL: siteURL,
	}
	b.handlers = map[navigation.Action]handler{
		navigation.ActionDetail:           b.onDetail,
		navigation.ActionLinks:            b.onLinksMenu,
		navigation.ActionVideos:           b.onVideos,
		navigation.ActionBasic:            b.onBasicLinks,
		navigation.ActionCategory:         b.onCategoryPick,
		navigation.ActionBack:             b.onBack,
		navigation.ActionBackToCategories: b.onBackToCategories,
	}
	return b
}

// HandleCommand answers /start, /help and /danhmuc. Other commands are ignored.
func (s *Bot) HandleCommand(ctx context.Context, chatID int64, command string) error {
	var v *view.View
	switch command {
	case "start":
		v = s.views.Welcome()
	case "help":
		v = s.views.Help()
	case "danhmuc":
		v = s.views.CategoryMenu()
	default:
		log.WithField("command", command).Debug("ignoring unknown command")
		return nil
	}
	return s.send(ctx, chatID, v)
}

// HandleText searches the catalog. A progress message is sent first and
// then edited into the results.
func (s *Bot) HandleText(ctx context.Context, chatID int64, text string) error {
	keyword := strings.TrimSpace(text)
	if keyword == "" {
		return s.send(ctx, chatID, s.views.EmptyQuery())
	}
	msgID, err := s.sender.Send(ctx, chatID, s.views.Searching(keyword))
	if err != nil {
		return errors.Wrap(err, "failed to send progress message")
	}
	r := s.catalog.Search(ctx, keyword)
	var v *view.View
	switch r.Outcome {
	case ophim.OutcomeFailed:
		v = s.views.TryAgain()
	default:
		v = s.views.SearchResults(keyword, r.Items)
	}
	if err := s.sender.Edit(ctx, chatID, msgID, v); err != nil {
		return errors.Wrap(err, "failed to edit progress message")
	}
	return nil
}

// HandlePress acknowledges the press and runs exactly one handler for
// the decoded token.
func (s *Bot) HandlePress(ctx context.Context, chatID int64, callbackID string, token string) error {
	if err := s.sender.Answer(ctx, callbackID); err != nil {
		log.WithError(err).WithField("callback", callbackID).Warn("failed to answer callback")
	}
	in := navigation.DecodeOrBack(token)
	h, ok := s.handlers[in.Action]
	if !ok {
		h = s.onBack
	}
	log.WithFields(log.Fields{
		"chat":   chatID,
		"action": in.Action,
		"slug":   in.Slug,
	}).Debug("handling button press")
	return h(ctx, chatID, in)
}

func (s *Bot) onDetail(ctx context.Context, chatID int64, in navigation.Intent) error {
	d, v := s.detail(ctx, in.Slug, s.views.DetailUnavailable)
	if d != nil {
		v = s.views.Detail(d)
	}
	return s.send(ctx, chatID, v)
}

func (s *Bot) onLinksMenu(ctx context.Context, chatID int64, in navigation.Intent) error {
	d, v := s.detail(ctx, in.Slug, s.views.MovieUnavailable)
	if d != nil {
		v = s.views.LinksMenu(d, ophim.BasicLinks(d, s.siteURL))
	}
	return s.send(ctx, chatID, v)
}

func (s *Bot) onVideos(ctx context.Context, chatID int64, in navigation.Intent) error {
	d, v := s.detail(ctx, in.Slug, s.views.MovieUnavailable)
	if d != nil {
		v = s.views.Episodes(d, in.Index)
	}
	return s.send(ctx, chatID, v)
}

func (s *Bot) onBasicLinks(ctx context.Context, chatID int64, in navigation.Intent) error {
	d, v := s.detail(ctx, in.Slug, s.views.MovieUnavailable)
	if d != nil {
		v = s.views.BasicLinks(d, ophim.BasicLinks(d, s.siteURL))
	}
	return s.send(ctx, chatID, v)
}

func (s *Bot) onCategoryPick(ctx context.Context, chatID int64, in navigation.Intent) error {
	if err := s.send(ctx, chatID, s.views.LoadingCategory(in.Slug)); err != nil {
		return err
	}
	r := s.catalog.ListByCategory(ctx, in.Slug, 1)
	return s.send(ctx, chatID, s.views.CategoryResults(in.Slug, r.Items))
}

func (s *Bot) onBack(ctx context.Context, chatID int64, _ navigation.Intent) error {
	return s.send(ctx, chatID, s.views.Continue())
}

func (s *Bot) onBackToCategories(ctx context.Context, chatID int64, _ navigation.Intent) error {
	return s.send(ctx, chatID, s.views.CategoryMenu())
}

// detail fetches a fresh record. Follow-up tokens and links use the
// pressed slug, not whatever slug the record carries. When the record is
// unavailable the returned view explains why: missing picks the not found
// message.
func (s *Bot) detail(ctx context.Context, slug string, missing func() *view.View) (*models.MovieDetail, *view.View) {
	r := s.catalog.GetDetail(ctx, slug)
	if d, ok := r.First(); ok {
		d.Slug = slug
		return d, nil
	}
	if r.Outcome == ophim.OutcomeFailed {
		return nil, s.views.TryAgain()
	}
	return nil, missing()
}

func (s *Bot) send(ctx context.Context, chatID int64, v *view.View) error {
	if _, err := s.sender.Send(ctx, chatID, v); err != nil {
		return errors.Wrap(err, "failed to send message")
	}
	return nil
}
