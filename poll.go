package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"
	"github.com/webtor-io/ophim-bot/services/poller"
)

func makePollCMD() cli.Command {
	pollCMD := cli.Command{
		Name:    "poll",
		Aliases: []string{"p"},
		Usage:   "Polls telegram for updates",
		Action:  poll,
	}
	configurePoll(&pollCMD)
	return pollCMD
}

func configurePoll(c *cli.Command) {
	c.Flags = configureBot(c.Flags)
	c.Flags = poller.RegisterFlags(c.Flags)
}

func poll(c *cli.Context) error {
	// Setting Bot
	deps, err := makeBot(c)
	if err != nil {
		return err
	}
	defer deps.Close()

	// Setting Probe
	servers, closeProbe := withProbe(c, nil)
	defer closeProbe()

	// Setting Poller
	pl := poller.New(c, deps.tg, deps.processor)
	servers = append(servers, pl)
	defer pl.Close()

	// Setting Serve
	serve := cs.NewServe(servers...)

	err = serve.Serve()
	if err != nil {
		log.WithError(err).Error("got poller error")
	}
	return err
}
