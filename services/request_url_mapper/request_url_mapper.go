package request_url_mapper

import (
	"encoding/json"
	"net/url"
	"sort"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

const (
	RequestURLMappingsFlag = "mirror-url-mappings"
)

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   RequestURLMappingsFlag,
			Usage:  "JSON mapping of public mirror urls to internal urls, e.g. {\"https://inv.example.com/\": \"http://invidious:3000/\"}",
			EnvVar: "MIRROR_URL_MAPPINGS",
		},
	)
}

type mapping struct {
	from string
	to   string
}

// RequestURLMapper rewrites outgoing request urls by prefix, so a mirror
// reachable inside the cluster is not contacted through its public address.
// Registry entries and logs keep the public url.
type RequestURLMapper struct {
	mappings []mapping
}

// New validates the mappings. The longest matching prefix wins.
func New(m map[string]string) (*RequestURLMapper, error) {
	res := &RequestURLMapper{}
	for from, to := range m {
		for _, u := range []string{from, to} {
			pu, err := url.Parse(u)
			if err != nil || pu.Host == "" {
				return nil, errors.Errorf("invalid url %q in mirror url mappings", u)
			}
		}
		res.mappings = append(res.mappings, mapping{from: from, to: to})
	}
	sort.Slice(res.mappings, func(i, j int) bool {
		if len(res.mappings[i].from) != len(res.mappings[j].from) {
			return len(res.mappings[i].from) > len(res.mappings[j].from)
		}
		return res.mappings[i].from < res.mappings[j].from
	})
	return res, nil
}

// NewRequestURLMapper reads the mappings from cli flags.
func NewRequestURLMapper(c *cli.Context) (*RequestURLMapper, error) {
	mappingsJSON := c.String(RequestURLMappingsFlag)
	if mappingsJSON == "" {
		return &RequestURLMapper{}, nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(mappingsJSON), &m); err != nil {
		return nil, errors.Wrap(err, "failed to parse mirror url mappings")
	}
	res, err := New(m)
	if err != nil {
		return nil, err
	}
	log.WithField("mappings_count", len(res.mappings)).
		Info("initialized mirror url mapper")
	return res, nil
}

// MapURL returns u with its longest mapped prefix replaced, or u unchanged.
func (s *RequestURLMapper) MapURL(u string) string {
	if s == nil {
		return u
	}
	for _, m := range s.mappings {
		if !strings.HasPrefix(u, m.from) {
			continue
		}
		mapped := m.to + strings.TrimPrefix(u, m.from)
		log.WithField("original_url", u).
			WithField("mapped_url", mapped).
			Debug("mapped mirror url")
		return mapped
	}
	return u
}
