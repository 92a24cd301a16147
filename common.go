package main

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"
	"github.com/webtor-io/ophim-bot/models"
	"github.com/webtor-io/ophim-bot/services/bot"
	"github.com/webtor-io/ophim-bot/services/ophim"
	"github.com/webtor-io/ophim-bot/services/telegram"
	"github.com/webtor-io/ophim-bot/services/updates"
	"github.com/webtor-io/ophim-bot/services/view"
)

func configureBot(f []cli.Flag) []cli.Flag {
	f = cs.RegisterProbeFlags(f)
	f = telegram.RegisterFlags(f)
	f = ophim.RegisterFlags(f)
	f = updates.RegisterFlags(f)
	return f
}

type botDeps struct {
	tg        *telegram.Client
	guard     *updates.Guard
	processor *updates.Processor
}

func (s *botDeps) Close() {
	s.guard.Close()
}

func makeBot(c *cli.Context) (*botDeps, error) {
	// Setting HTTP Client
	cl := http.DefaultClient

	// Setting Telegram Client
	tg, err := telegram.New(c)
	if err != nil {
		return nil, err
	}
	me, err := tg.GetMe(context.Background())
	if err != nil {
		return nil, errors.Wrap(err, "failed to check telegram bot token")
	}
	log.Infof("running as @%v", me.Username)

	// Setting Ophim API
	api := ophim.New(c, cl)

	// Setting Views
	views := view.New(models.DefaultCategories())

	// Setting Bot
	b := bot.New(api, tg, views, api.SiteURL())

	// Setting Update Guard
	guard := updates.New(c)

	return &botDeps{
		tg:        tg,
		guard:     guard,
		processor: updates.NewProcessor(guard, b),
	}, nil
}

func withProbe(c *cli.Context, servers []cs.Servable) ([]cs.Servable, func()) {
	probe := cs.NewProbe(c)
	if probe == nil {
		return servers, func() {}
	}
	return append(servers, probe), func() { probe.Close() }
}
