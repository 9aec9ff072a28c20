package invidious

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/kantan-tube/web-ui/services/mirror"
	"github.com/pkg/errors"
)

var notFoundMarkers = []string{
	"not found",
	"does not exist",
}

// NormalizeVideoSummary maps one listing entry. It reports false for
// entries that are not videos or carry no id.
func NormalizeVideoSummary(raw map[string]any) (VideoSummary, bool) {
	if t := str(raw, "type"); t != "" && t != "video" {
		return VideoSummary{}, false
	}
	id := str(raw, "videoId", "id")
	if id == "" {
		return VideoSummary{}, false
	}
	v := VideoSummary{
		ID:        id,
		Title:     str(raw, "videoTitle", "title"),
		Author:    str(raw, "channelName", "author"),
		AuthorID:  str(raw, "authorId", "channelId"),
		Thumbnail: image(raw, false, "videoThumbnails", "thumbnails", "thumbnail"),
		Views:     num(raw, "videoViews", "views", "viewCount"),
		Published: published(raw),
	}
	if l := num(raw, "lengthSeconds"); l != nil {
		v.LengthSeconds = *l
	}
	if v.Thumbnail == "" {
		v.Thumbnail = PlaceholderThumbnail
	}
	return v, true
}

// NormalizeVideoList maps a listing, skipping unusable entries.
// It never returns nil.
func NormalizeVideoList(raw []any) []VideoSummary {
	out := make([]VideoSummary, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if v, ok := NormalizeVideoSummary(m); ok {
			out = append(out, v)
		}
	}
	return out
}

func NormalizeVideoDetail(raw map[string]any) (VideoDetail, error) {
	s, ok := NormalizeVideoSummary(raw)
	if !ok {
		return VideoDetail{}, errors.New("video payload has no id")
	}
	d := VideoDetail{
		VideoSummary: s,
		Description:  str(raw, "description", "videoDes"),
		Likes:        num(raw, "likeCount", "likes"),
		Dislikes:     num(raw, "dislikeCount", "dislikes"),
		AuthorAvatar: image(raw, true, "authorThumbnails", "channelThumbnail", "channelImage"),
		HLSURL:       httpsURL(str(raw, "hlsUrl")),
		Variants:     ExtractVariants(raw["formatStreams"]),
	}
	if d.AuthorAvatar == "" {
		d.AuthorAvatar = PlaceholderAvatar
	}
	related, _ := raw["recommendedVideos"].([]any)
	if related == nil {
		related, _ = raw["relatedVideos"].([]any)
	}
	d.Related = NormalizeVideoList(related)
	return d, nil
}

func NormalizeChannelDetail(raw map[string]any) (ChannelDetail, error) {
	id := str(raw, "authorId", "channelId", "ucid")
	if id == "" {
		return ChannelDetail{}, errors.New("channel payload has no id")
	}
	c := ChannelDetail{
		ID:          id,
		Name:        str(raw, "author", "channelName"),
		Description: str(raw, "description"),
		Subscribers: num(raw, "subCount", "subscriberCount"),
		Avatar:      image(raw, true, "authorThumbnails", "channelThumbnail", "channelImage"),
		Banner:      image(raw, true, "authorBanners", "channelBanner"),
	}
	if c.Avatar == "" {
		c.Avatar = PlaceholderAvatar
	}
	videos, _ := raw["latestVideos"].([]any)
	if videos == nil {
		videos, _ = raw["videos"].([]any)
	}
	c.Videos = NormalizeVideoList(videos)
	return c, nil
}

// decodeBody parses a mirror body. An object carrying an "error" field is
// either a definitive absence or a mirror-side failure.
func decodeBody(body []byte) (any, error) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, errors.Wrap(err, "failed to decode json")
	}
	m, ok := v.(map[string]any)
	if !ok {
		return v, nil
	}
	msg, ok := m["error"].(string)
	if !ok {
		return v, nil
	}
	lower := strings.ToLower(msg)
	for _, marker := range notFoundMarkers {
		if strings.Contains(lower, marker) {
			return nil, errors.Wrap(mirror.ErrNotFound, msg)
		}
	}
	return nil, errors.Errorf("mirror answered with error: %s", msg)
}

func published(raw map[string]any) string {
	if p := str(raw, "publishedText"); p != "" {
		return p
	}
	if ts := num(raw, "published"); ts != nil && *ts > 0 {
		return humanize.Time(time.Unix(*ts, 0))
	}
	return ""
}

func str(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := raw[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// num reads the first numeric field. Numbers sent as text ("1,234") are
// accepted as well.
func num(raw map[string]any, keys ...string) *int64 {
	for _, k := range keys {
		switch v := raw[k].(type) {
		case float64:
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			n := int64(v)
			return &n
		case string:
			s := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return &n
			}
		}
	}
	return nil
}

// image reads an image url from either a plain string or a list of
// {url, width, height} objects. With largest set the last usable entry
// of a list wins, otherwise the first.
func image(raw map[string]any, largest bool, keys ...string) string {
	for _, k := range keys {
		switch v := raw[k].(type) {
		case string:
			if u := httpsURL(v); u != "" {
				return u
			}
		case []any:
			var found string
			for _, item := range v {
				m, ok := item.(map[string]any)
				if !ok {
					continue
				}
				u := httpsURL(str(m, "url"))
				if u == "" {
					continue
				}
				found = u
				if !largest {
					break
				}
			}
			if found != "" {
				return found
			}
		}
	}
	return ""
}

func httpsURL(u string) string {
	u = strings.TrimSpace(u)
	if strings.HasPrefix(u, "//") {
		return "https:" + u
	}
	return u
}
