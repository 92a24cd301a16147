package web

import (
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

const (
	webHostFlag = "host"
	webPortFlag = "port"
)

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   webHostFlag,
			Usage:  "listening host",
			Value:  "",
			EnvVar: "WEB_HOST",
		},
		cli.IntFlag{
			Name:   webPortFlag,
			Usage:  "http listening port",
			Value:  8080,
			EnvVar: "WEB_PORT",
		},
	)
}

// Web serves the gin engine until closed.
type Web struct {
	addr string
	srv  *http.Server
}

func New(c *cli.Context, r *gin.Engine) (*Web, error) {
	port := c.Int(webPortFlag)
	if port <= 0 || port > 65535 {
		return nil, errors.Errorf("invalid %v %v", webPortFlag, port)
	}
	addr := fmt.Sprintf("%s:%d", c.String(webHostFlag), port)
	return &Web{
		addr: addr,
		srv:  &http.Server{Addr: addr, Handler: r},
	}, nil
}

func (s *Web) Serve() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.Wrap(err, "failed to listen to tcp connection")
	}
	log.Infof("serving Web at %v", s.addr)
	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "failed to serve Web")
	}
	return nil
}

func (s *Web) Close() {
	log.Info("closing Web")
	_ = s.srv.Close()
}
