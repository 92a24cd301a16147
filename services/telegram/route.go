package telegram

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Handler receives the three kinds of inbound events.
type Handler interface {
	HandleCommand(ctx context.Context, chatID int64, command string) error
	HandleText(ctx context.Context, chatID int64, text string) error
	HandlePress(ctx context.Context, chatID int64, callbackID string, data string) error
}

// Route passes u to the matching Handler method.
func Route(ctx context.Context, u *Update, h Handler) error {
	switch {
	case u.CallbackQuery != nil:
		cq := u.CallbackQuery
		chatID := cq.From.ID
		if cq.Message != nil {
			chatID = cq.Message.Chat.ID
		}
		return h.HandlePress(ctx, chatID, cq.ID, cq.Data)
	case u.Message != nil && u.Message.Text != "":
		m := u.Message
		if cmd, ok := command(m.Text); ok {
			return h.HandleCommand(ctx, m.Chat.ID, cmd)
		}
		return h.HandleText(ctx, m.Chat.ID, m.Text)
	}
	log.WithField("update", u.UpdateID).Debug("skipping update without text or callback")
	return nil
}

// command extracts "name" from "/name@bot args".
func command(text string) (string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	name := strings.Fields(text)[0][1:]
	name, _, _ = strings.Cut(name, "@")
	return strings.ToLower(name), true
}
