package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"
	"github.com/webtor-io/ophim-bot/handlers/webhook"
	w "github.com/webtor-io/ophim-bot/services/web"
)

func makeServeCMD() cli.Command {
	serveCMD := cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Serves telegram webhook",
		Action:  serve,
	}
	configureServe(&serveCMD)
	return serveCMD
}

func configureServe(c *cli.Command) {
	c.Flags = configureBot(c.Flags)
	c.Flags = w.RegisterFlags(c.Flags)
	c.Flags = webhook.RegisterFlags(c.Flags)
}

func serve(c *cli.Context) error {
	// Setting Bot
	deps, err := makeBot(c)
	if err != nil {
		return err
	}
	defer deps.Close()

	// Setting Probe
	servers, closeProbe := withProbe(c, nil)
	defer closeProbe()

	// Setting Gin
	r := gin.Default()

	// Setting WebhookHandler
	webhook.RegisterHandler(c, r, deps.processor)

	// Setting Web
	web, err := w.New(c, r)
	if err != nil {
		return err
	}
	servers = append(servers, web)
	defer web.Close()

	// Registering Webhook
	if u := c.String(webhook.URLFlag); u != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err = deps.tg.SetWebhook(ctx, u, c.String(webhook.SecretFlag))
		cancel()
		if err != nil {
			return err
		}
		log.Infof("webhook registered at %v", u)
	} else {
		log.Warnf("%v is not set, expecting webhook to be registered already", webhook.URLFlag)
	}

	// Setting Serve
	serve := cs.NewServe(servers...)

	// And SERVE!
	err = serve.Serve()
	if err != nil {
		log.WithError(err).Error("got server error")
	}
	return err
}
