package main

import (
	"github.com/urfave/cli"
)

func configure(app *cli.App) {
	serveCMD := makeServeCMD()
	pollCMD := makePollCMD()
	app.Commands = []cli.Command{serveCMD, pollCMD}
}
