package poller

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"github.com/webtor-io/ophim-bot/services/telegram"
)

const pollTimeoutFlag = "poll-timeout"

const retryDelay = 3 * time.Second

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.DurationFlag{
			Name:   pollTimeoutFlag,
			Usage:  "long polling timeout",
			EnvVar: "POLL_TIMEOUT",
			Value:  25 * time.Second,
		},
	)
}

type Source interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]telegram.Update, error)
	DeleteWebhook(ctx context.Context) error
}

type Processor interface {
	Process(ctx context.Context, u *telegram.Update)
}

// Poller long-polls the Bot API and hands every update to its own goroutine.
type Poller struct {
	src     Source
	p       Processor
	timeout time.Duration
	delay   time.Duration
	ctx     context.Context
	cancel  context.CancelFunc
}

func New(c *cli.Context, src Source, p Processor) *Poller {
	return newPoller(src, p, c.Duration(pollTimeoutFlag))
}

func newPoller(src Source, p Processor, timeout time.Duration) *Poller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Poller{
		src:     src,
		p:       p,
		timeout: timeout,
		delay:   retryDelay,
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (s *Poller) Serve() error {
	if err := s.src.DeleteWebhook(s.ctx); err != nil {
		return errors.Wrap(err, "failed to delete webhook")
	}
	log.Infof("polling updates with timeout %v", s.timeout)
	var offset int64
	for {
		us, err := s.src.GetUpdates(s.ctx, offset, s.timeout)
		if s.ctx.Err() != nil {
			return nil
		}
		if err != nil {
			log.WithError(err).Error("failed to get updates")
			select {
			case <-s.ctx.Done():
				return nil
			case <-time.After(s.delay):
			}
			continue
		}
		for i := range us {
			u := &us[i]
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			go s.p.Process(context.Background(), u)
		}
	}
}

func (s *Poller) Close() {
	log.Info("closing Poller")
	s.cancel()
}
