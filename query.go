package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/kantan-tube/web-ui/services/invidious"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

const queryTimeoutFlag = "timeout"

func makeQueryCMD() cli.Command {
	return cli.Command{
		Name:    "query",
		Aliases: []string{"q"},
		Usage:   "Runs a single query against the mirror pool and prints JSON",
		Subcommands: []cli.Command{
			makeQuerySubCMD("search", "<query>", func(ctx context.Context, a *invidious.Api, arg string) (any, error) {
				return a.Search(ctx, arg)
			}),
			makeQuerySubCMD("trending", "", func(ctx context.Context, a *invidious.Api, _ string) (any, error) {
				return a.Trending(ctx)
			}),
			makeQuerySubCMD("video", "<id>", func(ctx context.Context, a *invidious.Api, arg string) (any, error) {
				return a.Video(ctx, arg)
			}),
			makeQuerySubCMD("channel", "<id>", func(ctx context.Context, a *invidious.Api, arg string) (any, error) {
				return a.Channel(ctx, arg)
			}),
			makeQuerySubCMD("channel-videos", "<id>", func(ctx context.Context, a *invidious.Api, arg string) (any, error) {
				return a.ChannelVideos(ctx, arg)
			}),
		},
	}
}

type queryFunc func(ctx context.Context, a *invidious.Api, arg string) (any, error)

func makeQuerySubCMD(name, usage string, q queryFunc) cli.Command {
	flags := configureMirrors([]cli.Flag{})
	flags = append(flags, cli.DurationFlag{
		Name:  queryTimeoutFlag,
		Usage: "overall query timeout",
		Value: time.Minute,
	})
	return cli.Command{
		Name:      name,
		ArgsUsage: usage,
		Flags:     flags,
		Action: func(c *cli.Context) error {
			arg := c.Args().First()
			if usage != "" && arg == "" {
				return errors.Errorf("%s requires %s", name, usage)
			}
			ms, err := makeMirrorStack(c, &http.Client{})
			if err != nil {
				return err
			}
			defer ms.Close()
			ctx, cancel := context.WithTimeout(context.Background(), c.Duration(queryTimeoutFlag))
			defer cancel()
			res, err := q(ctx, ms.api, arg)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
}
