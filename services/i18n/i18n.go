package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const (
	Unavailable     = "unavailable"
	VideoNotFound   = "video_not_found"
	ChannelNotFound = "channel_not_found"
	NoResults       = "no_results"
	NoQuery         = "no_query"
	NoTrending      = "no_trending"
	NoChannelVideos = "no_channel_videos"
	NoRelated       = "no_related"
	NoStreams       = "no_streams"
	NoDescription   = "no_description"
	UnknownChannel  = "unknown_channel"
	Superseded      = "superseded"
	Views           = "views"
	Subscribers     = "subscribers"
	BoardEmpty      = "board_empty"
	BoardRequired   = "board_required"
	BoardSent       = "board_sent"
	BoardWelcome    = "board_welcome"
)

var supported = []language.Tag{
	language.Japanese,
	language.English,
}

var matcher = language.NewMatcher(supported)

var messages = map[string][2]string{
	Unavailable:     {"動画を読み込めませんでした。しばらくしてから再度お試しください。", "Could not load content from any mirror. Please try again later."},
	VideoNotFound:   {"動画が見つかりませんでした。", "Video not found."},
	ChannelNotFound: {"チャンネルが見つかりませんでした。", "Channel not found."},
	NoResults:       {"検索結果が見つかりませんでした。", "No results found."},
	NoQuery:         {"検索クエリが指定されていません。", "No search query given."},
	NoTrending:      {"人気動画を読み込めませんでした。", "Could not load popular videos."},
	NoChannelVideos: {"このチャンネルには動画がありません。", "This channel has no videos."},
	NoRelated:       {"関連動画が見つかりませんでした。", "No related videos found."},
	NoStreams:       {"この動画の再生可能なストリームが見つかりませんでした。", "No playable stream found for this video."},
	NoDescription:   {"説明はありません。", "No description."},
	UnknownChannel:  {"不明なチャンネル", "Unknown channel"},
	Superseded:      {"新しいリクエストに置き換えられました。", "Superseded by a newer request."},
	Views:           {"%d 回視聴", "%d views"},
	Subscribers:     {"チャンネル登録者数 %d人", "%d subscribers"},
	BoardEmpty:      {"メッセージがありません。", "No messages."},
	BoardRequired:   {"名前、Seed、メッセージは必須です！", "Name, seed and message are required!"},
	BoardSent:       {"メッセージが送信されました！", "Message sent!"},
	BoardWelcome:    {"簡易YouTubeの掲示板へようこそ！", "Welcome to the kantan-tube board!"},
}

var cat = func() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.Japanese))
	for key, m := range messages {
		for i, tag := range supported {
			if err := b.SetString(tag, key, m[i]); err != nil {
				panic(err)
			}
		}
	}
	return b
}()

// Match picks the display language. An explicit hl parameter wins over the
// Accept-Language header; Japanese is the default.
func Match(hl, acceptLanguage string) language.Tag {
	var prefs []language.Tag
	if hl = strings.TrimSpace(hl); hl != "" {
		if t, err := language.Parse(hl); err == nil {
			prefs = append(prefs, t)
		}
	}
	if tags, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil {
		prefs = append(prefs, tags...)
	}
	_, idx, conf := matcher.Match(prefs...)
	if conf == language.No {
		return supported[0]
	}
	return supported[idx]
}

// Localizer renders messages in one language.
type Localizer struct {
	tag language.Tag
	p   *message.Printer
}

func New(tag language.Tag) *Localizer {
	return &Localizer{
		tag: tag,
		p:   message.NewPrinter(tag, message.Catalog(cat)),
	}
}

func (s *Localizer) Lang() string {
	base, _ := s.tag.Base()
	return base.String()
}

// T renders the message stored under key.
func (s *Localizer) T(key string, args ...any) string {
	return s.p.Sprintf(key, args...)
}

// For returns the localizer matching an hl parameter and Accept-Language header.
func For(hl, acceptLanguage string) *Localizer {
	return New(Match(hl, acceptLanguage))
}
