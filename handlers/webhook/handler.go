package webhook

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"github.com/webtor-io/ophim-bot/services/telegram"
)

const (
	URLFlag      = "webhook-url"
	SecretFlag   = "webhook-secret"
	Path         = "/telegram/webhook"
	secretHeader = "X-Telegram-Bot-Api-Secret-Token"
)

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   URLFlag,
			Usage:  "public webhook url registered with telegram on start",
			EnvVar: "WEBHOOK_URL",
		},
		cli.StringFlag{
			Name:   SecretFlag,
			Usage:  "webhook secret token",
			EnvVar: "WEBHOOK_SECRET",
		},
	)
}

type Processor interface {
	Process(ctx context.Context, u *telegram.Update)
}

type Handler struct {
	p      Processor
	secret string
}

func RegisterHandler(c *cli.Context, r *gin.Engine, p Processor) {
	h := &Handler{
		p:      p,
		secret: c.String(SecretFlag),
	}
	r.POST(Path, h.post)
}

// post acknowledges the update before it is handled.
func (s *Handler) post(c *gin.Context) {
	if s.secret != "" && subtle.ConstantTimeCompare([]byte(c.GetHeader(secretHeader)), []byte(s.secret)) != 1 {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	var u telegram.Update
	if err := c.ShouldBindJSON(&u); err != nil {
		log.WithError(err).Warn("failed to decode webhook update")
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}
	go s.p.Process(context.Background(), &u)
	c.Status(http.StatusOK)
}
