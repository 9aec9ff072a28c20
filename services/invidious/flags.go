package invidious

import (
	"github.com/urfave/cli"
)

const (
	InvidiousRegionFlag = "invidious-region"
	DefaultRegion       = "JP"
)

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   InvidiousRegionFlag,
			Usage:  "region code for trending videos",
			Value:  DefaultRegion,
			EnvVar: "INVIDIOUS_REGION",
		},
	)
}

func NewFromContext(c *cli.Context, f Fetcher) *Api {
	return New(f, WithRegion(c.String(InvidiousRegionFlag)))
}
