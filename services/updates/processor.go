package updates

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/webtor-io/ophim-bot/services/telegram"
)

// Processor runs one inbound update to completion.
type Processor struct {
	guard *Guard
	h     telegram.Handler
}

func NewProcessor(guard *Guard, h telegram.Handler) *Processor {
	return &Processor{guard: guard, h: h}
}

func (s *Processor) Process(ctx context.Context, u *telegram.Update) {
	le := log.WithField("update", u.UpdateID)
	if !s.guard.First(ctx, u.UpdateID) {
		le.Debug("skipping duplicate update")
		return
	}
	defer func() {
		if r := recover(); r != nil {
			le.WithField("panic", r).Error("panic while handling update")
		}
	}()
	if err := telegram.Route(ctx, u, s.h); err != nil {
		le.WithError(err).Error("failed to handle update")
	}
}
