package invidious

import (
	"context"
	"net/url"
	"strings"

	"github.com/kantan-tube/web-ui/services/mirror"
	"github.com/pkg/errors"
)

// Fetcher runs one logical call against the mirror pool.
// It is satisfied by *mirror.Executor.
type Fetcher interface {
	Fetch(ctx context.Context, path string, decode mirror.Decoder) ([]byte, error)
}

type Option func(*Api)

// WithRegion sets the trending region code; empty means the mirror default.
func WithRegion(region string) Option {
	return func(a *Api) {
		a.region = strings.ToUpper(strings.TrimSpace(region))
	}
}

// Api is the query facade over the mirror pool. It returns canonical
// records only.
type Api struct {
	f      Fetcher
	region string
}

func New(f Fetcher, opts ...Option) *Api {
	a := &Api{
		f:      f,
		region: DefaultRegion,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

func (s *Api) Search(ctx context.Context, query string) ([]VideoSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []VideoSummary{}, nil
	}
	q := url.Values{}
	q.Set("q", query)
	q.Set("type", "video")
	return fetch(ctx, s.f, "search", "api/v1/search?"+q.Encode(), listing)
}

func (s *Api) Trending(ctx context.Context) ([]VideoSummary, error) {
	path := "api/v1/trending"
	if s.region != "" {
		path += "?region=" + url.QueryEscape(s.region)
	}
	return fetch(ctx, s.f, "trending", path, listing)
}

func (s *Api) Video(ctx context.Context, id string) (*VideoDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}
	return fetch(ctx, s.f, "video", "api/v1/videos/"+url.PathEscape(id), func(v any) (*VideoDetail, error) {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, errors.New("video payload is not an object")
		}
		d, err := NormalizeVideoDetail(m)
		if err != nil {
			return nil, err
		}
		return &d, nil
	})
}

func (s *Api) Channel(ctx context.Context, id string) (*ChannelDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}
	return fetch(ctx, s.f, "channel", "api/v1/channels/"+url.PathEscape(id), func(v any) (*ChannelDetail, error) {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, errors.New("channel payload is not an object")
		}
		c, err := NormalizeChannelDetail(m)
		if err != nil {
			return nil, err
		}
		return &c, nil
	})
}

// ChannelVideos accepts both a bare array and an object with a videos array.
func (s *Api) ChannelVideos(ctx context.Context, id string) ([]VideoSummary, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}
	return fetch(ctx, s.f, "channel videos", "api/v1/channels/"+url.PathEscape(id)+"/videos", func(v any) ([]VideoSummary, error) {
		if m, ok := v.(map[string]any); ok {
			videos, ok := m["videos"].([]any)
			if !ok {
				return nil, errors.New("channel videos payload has no videos array")
			}
			return NormalizeVideoList(videos), nil
		}
		return listing(v)
	})
}

func listing(v any) ([]VideoSummary, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, errors.New("listing payload is not an array")
	}
	return NormalizeVideoList(list), nil
}

// fetch decodes inside the mirror loop so that a malformed body from one
// mirror falls through to the next.
func fetch[T any](ctx context.Context, f Fetcher, op, path string, parse func(any) (T, error)) (T, error) {
	var res T
	_, err := f.Fetch(ctx, path, func(body []byte) error {
		v, err := decodeBody(body)
		if err != nil {
			return err
		}
		r, err := parse(v)
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		var zero T
		return zero, wrapErr(op, err)
	}
	return res, nil
}
