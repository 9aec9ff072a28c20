package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

func makeMirrorsCMD() cli.Command {
	listCmd := cli.Command{
		Name:    "list",
		Aliases: []string{"l"},
		Usage:   "Prints the normalized mirror pool",
		Flags:   configureMirrors([]cli.Flag{}),
		Action:  listMirrors,
	}
	checkCmd := cli.Command{
		Name:    "check",
		Aliases: []string{"c"},
		Usage:   "Probes every mirror concurrently",
		Flags:   configureMirrors([]cli.Flag{}),
		Action:  checkMirrors,
	}
	return cli.Command{
		Name:        "mirrors",
		Usage:       "Inspects the mirror pool",
		Subcommands: []cli.Command{listCmd, checkCmd},
	}
}

func listMirrors(c *cli.Context) error {
	ms, err := makeMirrorStack(c, &http.Client{})
	if err != nil {
		return err
	}
	defer ms.Close()
	for _, m := range ms.registry.List() {
		fmt.Println(m)
	}
	return nil
}

func checkMirrors(c *cli.Context) error {
	ms, err := makeMirrorStack(c, &http.Client{})
	if err != nil {
		return err
	}
	defer ms.Close()
	res := ms.prober.Check(context.Background())

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "MIRROR\tSTATUS\tLATENCY\tVERSION\tERROR")
	healthy := 0
	for _, r := range res {
		status := "down"
		if r.OK {
			status = "up"
			healthy++
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Mirror, status, r.Latency.Round(time.Millisecond), r.Version, r.Error)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Printf("%s of %s mirrors healthy\n", humanize.Comma(int64(healthy)), humanize.Comma(int64(len(res))))
	if healthy == 0 {
		return errors.New("no healthy mirror")
	}
	return nil
}
