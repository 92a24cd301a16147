package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"github.com/webtor-io/ophim-bot/services/view"
)

const (
	botTokenFlag = "telegram-bot-token"
	apiURLFlag   = "telegram-api-url"
	proxyURLFlag = "proxy-url"
	timeoutFlag  = "telegram-timeout"
)

const parseModeMarkdown = "Markdown"

var allowedUpdates = []string{"message", "callback_query"}

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   botTokenFlag,
			Usage:  "telegram bot token",
			EnvVar: "TELEGRAM_BOT_TOKEN",
		},
		cli.StringFlag{
			Name:   apiURLFlag,
			Usage:  "telegram bot api url",
			EnvVar: "TELEGRAM_API_URL",
			Value:  "https://api.telegram.org",
		},
		cli.StringFlag{
			Name:   proxyURLFlag,
			Usage:  "proxy url for telegram requests",
			EnvVar: "PROXY_URL",
		},
		cli.DurationFlag{
			Name:   timeoutFlag,
			Usage:  "telegram request timeout, must exceed poll timeout",
			EnvVar: "TELEGRAM_TIMEOUT",
			Value:  30 * time.Second,
		},
	)
}

// Client talks to the Bot API. It implements the bot sender.
type Client struct {
	url string
	cl  *http.Client
}

func New(c *cli.Context) (*Client, error) {
	token := c.String(botTokenFlag)
	if token == "" {
		return nil, errors.Errorf("%v is required", botTokenFlag)
	}
	tr := http.DefaultTransport.(*http.Transport).Clone()
	if p := c.String(proxyURLFlag); p != "" {
		pu, err := url.Parse(p)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse %v", proxyURLFlag)
		}
		tr.Proxy = http.ProxyURL(pu)
		log.Infof("using proxy %v for telegram", pu.Redacted())
	}
	u := strings.TrimRight(c.String(apiURLFlag), "/")
	timeout := c.Duration(timeoutFlag)
	log.Infof("telegram api endpoint %v timeout %v", u, timeout)
	return &Client{
		url: u + "/bot" + token,
		cl: &http.Client{
			Transport: tr,
			Timeout:   timeout,
		},
	}, nil
}

// Send posts v as a new message and returns its id. A photo send that
// fails is retried once as text only.
func (s *Client) Send(ctx context.Context, chatID int64, v *view.View) (int, error) {
	if v.HasPhoto() {
		id, err := s.sendPhoto(ctx, chatID, v)
		if err == nil {
			return id, nil
		}
		log.WithError(err).WithField("chat", chatID).Warn("failed to send photo, falling back to text")
		v = v.TextOnly()
	}
	var m Message
	err := s.call(ctx, "sendMessage", &sendMessageRequest{
		ChatID:             chatID,
		Text:               v.Text,
		ParseMode:          parseMode(v),
		LinkPreviewOptions: linkPreview(v),
		ReplyMarkup:        markup(v.Keyboard),
	}, &m)
	if err != nil {
		return 0, err
	}
	return m.MessageID, nil
}

func (s *Client) sendPhoto(ctx context.Context, chatID int64, v *view.View) (int, error) {
	var m Message
	err := s.call(ctx, "sendPhoto", &sendPhotoRequest{
		ChatID:      chatID,
		Photo:       v.PhotoURL,
		Caption:     v.Text,
		ParseMode:   parseMode(v),
		ReplyMarkup: markup(v.Keyboard),
	}, &m)
	if err != nil {
		return 0, err
	}
	return m.MessageID, nil
}

// Edit replaces the text and keyboard of a sent message.
func (s *Client) Edit(ctx context.Context, chatID int64, messageID int, v *view.View) error {
	return s.call(ctx, "editMessageText", &editMessageTextRequest{
		ChatID:             chatID,
		MessageID:          messageID,
		Text:               v.Text,
		ParseMode:          parseMode(v),
		LinkPreviewOptions: linkPreview(v),
		ReplyMarkup:        markup(v.Keyboard),
	}, nil)
}

func (s *Client) Answer(ctx context.Context, callbackID string) error {
	return s.call(ctx, "answerCallbackQuery", &answerCallbackQueryRequest{
		CallbackQueryID: callbackID,
	}, nil)
}

// GetUpdates long-polls for updates starting at offset.
func (s *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	var res []Update
	err := s.call(ctx, "getUpdates", &getUpdatesRequest{
		Offset:         offset,
		Timeout:        int(timeout.Seconds()),
		AllowedUpdates: allowedUpdates,
	}, &res)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Client) SetWebhook(ctx context.Context, u string, secret string) error {
	return s.call(ctx, "setWebhook", &setWebhookRequest{
		URL:            u,
		SecretToken:    secret,
		AllowedUpdates: allowedUpdates,
	}, nil)
}

func (s *Client) DeleteWebhook(ctx context.Context) error {
	return s.call(ctx, "deleteWebhook", &deleteWebhookRequest{}, nil)
}

func (s *Client) GetMe(ctx context.Context) (*User, error) {
	var u User
	if err := s.call(ctx, "getMe", struct{}{}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Client) call(ctx context.Context, method string, payload any, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal %v request", method)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url+"/"+method, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.cl.Do(req)
	if err != nil {
		// the url error carries the bot token
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return errors.Wrapf(err, "%v request failed", method)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return errors.Wrapf(err, "failed to decode %v response with status %v", method, resp.StatusCode)
	}
	if !r.OK {
		return &APIError{Code: r.ErrorCode, Description: r.Description}
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(r.Result, result); err != nil {
		return errors.Wrapf(err, "failed to decode %v result", method)
	}
	return nil
}

func parseMode(v *view.View) string {
	if v.Markdown {
		return parseModeMarkdown
	}
	return ""
}

func linkPreview(v *view.View) *LinkPreviewOptions {
	if !v.DisablePreview {
		return nil
	}
	return &LinkPreviewOptions{IsDisabled: true}
}

func markup(kb view.Keyboard) *InlineKeyboardMarkup {
	if len(kb) == 0 {
		return nil
	}
	rows := make([][]InlineKeyboardButton, 0, len(kb))
	for _, r := range kb {
		row := make([]InlineKeyboardButton, 0, len(r))
		for _, b := range r {
			row = append(row, InlineKeyboardButton{Text: b.Label, CallbackData: b.Token})
		}
		rows = append(rows, row)
	}
	return &InlineKeyboardMarkup{InlineKeyboard: rows}
}
