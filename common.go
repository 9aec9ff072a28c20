package main

import (
	"net/http"

	"github.com/kantan-tube/web-ui/services/invidious"
	"github.com/kantan-tube/web-ui/services/mirror"
	rum "github.com/kantan-tube/web-ui/services/request_url_mapper"
	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"
)

func configureMirrors(f []cli.Flag) []cli.Flag {
	f = mirror.RegisterFlags(f)
	f = invidious.RegisterFlags(f)
	f = rum.RegisterFlags(f)
	f = cs.RegisterRedisClientFlags(f)
	return f
}

type mirrorStack struct {
	registry *mirror.Registry
	cfg      mirror.Config
	redis    *cs.RedisClient
	prober   *mirror.Prober
	api      *invidious.Api
}

func makeMirrorStack(c *cli.Context, cl *http.Client) (*mirrorStack, error) {
	reg, err := mirror.NewRegistryFromContext(c)
	if err != nil {
		return nil, err
	}
	cfg, err := mirror.ConfigFromContext(c)
	if err != nil {
		return nil, err
	}

	// Setting Redis
	redis := cs.NewRedisClient(c)

	h, err := mirror.NewHealthFromContext(c, redis)
	if err != nil {
		redis.Close()
		return nil, err
	}
	mapper, err := rum.NewRequestURLMapper(c)
	if err != nil {
		redis.Close()
		return nil, err
	}
	ex := mirror.NewExecutor(cl, reg, cfg, h).WithURLMapper(mapper)
	return &mirrorStack{
		registry: reg,
		cfg:      cfg,
		redis:    redis,
		prober:   mirror.NewProber(cl, reg, cfg, h).WithURLMapper(mapper),
		api:      invidious.NewFromContext(c, ex),
	}, nil
}

func (s *mirrorStack) Close() {
	s.redis.Close()
}
