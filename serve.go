package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	wb "github.com/kantan-tube/web-ui/handlers/board"
	wm "github.com/kantan-tube/web-ui/handlers/mirror"
	wv "github.com/kantan-tube/web-ui/handlers/video"
	"github.com/kantan-tube/web-ui/services/board"
	w "github.com/kantan-tube/web-ui/services/web"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"
)

func makeServeCMD() cli.Command {
	serveCMD := cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Serves web server",
		Action:  serve,
	}
	configureServe(&serveCMD)
	return serveCMD
}

func configureServe(c *cli.Command) {
	c.Flags = cs.RegisterPGFlags(c.Flags)
	c.Flags = cs.RegisterProbeFlags(c.Flags)
	c.Flags = cs.RegisterPprofFlags(c.Flags)
	c.Flags = w.RegisterFlags(c.Flags)
	c.Flags = configureMirrors(c.Flags)
}

func serve(c *cli.Context) error {
	// Setting HTTP Client
	cl := &http.Client{}

	// Setting DB
	pg := cs.NewPG(c)
	defer pg.Close()

	// Setting Migrations
	err := pgMigrate(pg)
	if err != nil {
		return err
	}

	// Setting Mirrors
	ms, err := makeMirrorStack(c, cl)
	if err != nil {
		return err
	}
	defer ms.Close()
	log.WithFields(log.Fields{
		"mirrors":  ms.registry.Len(),
		"strategy": ms.cfg.Strategy,
	}).Info("mirror pool loaded")

	var servers []cs.Servable
	// Setting Probe
	probe := cs.NewProbe(c)
	if probe != nil {
		servers = append(servers, probe)
		defer probe.Close()
	}

	// Setting Pprof
	pprof := cs.NewPprof(c)
	if pprof != nil {
		servers = append(servers, pprof)
		defer pprof.Close()
	}

	// Setting Gin
	r := gin.Default()
	r.RedirectTrailingSlash = false

	// Setting Web
	web, err := w.New(c, r)
	if err != nil {
		return err
	}
	servers = append(servers, web)
	defer web.Close()

	// Setting VideoHandler
	wv.RegisterHandler(r, ms.api)

	// Setting MirrorHandler
	wm.RegisterHandler(r, ms.prober)

	// Setting BoardHandler
	wb.RegisterHandler(r, board.New(board.NewStore(pg)))

	// Setting Serve
	serve := cs.NewServe(servers...)

	// And SERVE!
	err = serve.Serve()
	if err != nil {
		log.WithError(err).Error("got server error")
	}
	return err
}
