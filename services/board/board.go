package board

import (
	"bytes"
	"context"
	"encoding/base64"
	"html/template"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultChannel = "main"
	AllChannels    = "all"
	TimeLayout     = "2006/01/02 15:04:05"
	maxMessages    = 200
)

var (
	ErrMissingFields  = errors.New("name, seed and message are required")
	ErrInvalidMessage = errors.New("message is not valid base64 encoded text")
)

var tokyo = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		return time.FixedZone("JST", 9*60*60)
	}
	return loc
}()

var listTemplate = template.Must(template.New("board").Parse(
	`{{range .}}<p><b>{{.Name}}</b> ({{.Seed}}) {{.Time}}<br>{{.Text}}</p>{{end}}`,
))

// Post is a submission as received from a client. Text is base64 encoded.
type Post struct {
	Name    string
	Text    string
	Seed    string
	Channel string
	Verify  bool
}

type Board struct {
	store Store
}

func New(store Store) *Board {
	return &Board{store: store}
}

// Submit validates and stores a post.
func (s *Board) Submit(ctx context.Context, p Post) (*Message, error) {
	name := strings.TrimSpace(p.Name)
	seed := strings.TrimSpace(p.Seed)
	if name == "" || seed == "" || p.Text == "" {
		return nil, ErrMissingFields
	}
	text, err := DecodeText(p.Text)
	if err != nil {
		return nil, err
	}
	channel := strings.TrimSpace(p.Channel)
	if channel == "" || channel == AllChannels {
		channel = DefaultChannel
	}
	m := &Message{
		Name:     name,
		Text:     text,
		Seed:     seed,
		Channel:  channel,
		Verified: p.Verify,
	}
	if err := s.store.Add(ctx, m); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"id":      m.ID,
		"channel": m.Channel,
	}).Info("board message stored")
	return m, nil
}

// List returns messages of a channel, oldest first. Channel "all" or
// empty lists every channel.
func (s *Board) List(ctx context.Context, channel string, verifiedOnly bool) ([]Message, error) {
	channel = strings.TrimSpace(channel)
	if channel == AllChannels {
		channel = ""
	}
	return s.store.List(ctx, Filter{
		Channel:      channel,
		VerifiedOnly: verifiedOnly,
		Limit:        maxMessages,
	})
}

type renderedMessage struct {
	Name string
	Seed string
	Time string
	Text string
}

// Render formats messages as an HTML fragment. All user text is escaped.
func Render(msgs []Message) (string, error) {
	rows := make([]renderedMessage, len(msgs))
	for i, m := range msgs {
		rows[i] = renderedMessage{
			Name: m.Name,
			Seed: ShortSeed(m.Seed),
			Time: m.CreatedAt.In(tokyo).Format(TimeLayout),
			Text: m.Text,
		}
	}
	var buf bytes.Buffer
	if err := listTemplate.Execute(&buf, rows); err != nil {
		return "", errors.Wrap(err, "failed to render board")
	}
	return buf.String(), nil
}

// ShortSeed shows the first and last four characters of a seed.
func ShortSeed(seed string) string {
	r := []rune(seed)
	if len(r) <= 8 {
		return seed
	}
	return string(r[:4]) + "..." + string(r[len(r)-4:])
}

// DecodeText decodes base64 encoded UTF-8 text. Both padded and unpadded
// input is accepted, and spaces left over from form decoding are read as '+'.
func DecodeText(s string) (string, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "+")
	var (
		b   []byte
		err error
	)
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		b, err = enc.DecodeString(s)
		if err == nil {
			break
		}
	}
	if err != nil || !utf8.Valid(b) {
		return "", ErrInvalidMessage
	}
	return string(b), nil
}
