package board

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestBoard_Submit(t *testing.T) {
	ctx := context.Background()
	b := New(NewMemoryStore())

	m, err := b.Submit(ctx, Post{Name: "taro", Text: b64("こんにちは"), Seed: "abcdefghijkl"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, m.ID)
	assert.Equal(t, "こんにちは", m.Text)
	assert.Equal(t, DefaultChannel, m.Channel)
	assert.False(t, m.Verified)

	_, err = b.Submit(ctx, Post{Name: "", Text: b64("x"), Seed: "s"})
	assert.True(t, errors.Is(err, ErrMissingFields))
	_, err = b.Submit(ctx, Post{Name: "n", Text: "", Seed: "s"})
	assert.True(t, errors.Is(err, ErrMissingFields))
	_, err = b.Submit(ctx, Post{Name: "n", Text: b64("x"), Seed: " "})
	assert.True(t, errors.Is(err, ErrMissingFields))
	_, err = b.Submit(ctx, Post{Name: "n", Text: "%%%", Seed: "s"})
	assert.True(t, errors.Is(err, ErrInvalidMessage))
}

func TestBoard_ListFilters(t *testing.T) {
	ctx := context.Background()
	b := New(NewMemoryStore())
	for _, p := range []Post{
		{Name: "a", Text: b64("1"), Seed: "s", Channel: "main"},
		{Name: "b", Text: b64("2"), Seed: "s", Channel: "game", Verify: true},
		{Name: "c", Text: b64("3"), Seed: "s", Channel: "main", Verify: true},
	} {
		_, err := b.Submit(ctx, p)
		require.NoError(t, err)
	}

	all, err := b.List(ctx, "all", false)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	all, err = b.List(ctx, "", false)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	main, err := b.List(ctx, "main", false)
	require.NoError(t, err)
	require.Len(t, main, 2)
	assert.Equal(t, "a", main[0].Name, "oldest first")

	verified, err := b.List(ctx, "main", true)
	require.NoError(t, err)
	require.Len(t, verified, 1)
	assert.Equal(t, "c", verified[0].Name)

	empty, err := b.List(ctx, "nobody", false)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryStore_Limit(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Add(ctx, &Message{Name: "n", Channel: "main"}))
	}
	msgs, err := s.List(ctx, Filter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.EqualValues(t, 4, msgs[0].ID)
	assert.EqualValues(t, 5, msgs[1].ID)
}

func TestRender(t *testing.T) {
	at := time.Date(2024, 3, 1, 15, 4, 5, 0, time.UTC)
	out, err := Render([]Message{{
		Name:      "<script>",
		Seed:      "abcdefghijkl",
		Text:      "a & b",
		CreatedAt: at,
	}})
	require.NoError(t, err)
	assert.Equal(t, "<p><b>&lt;script&gt;</b> (abcd...ijkl) 2024/03/02 00:04:05<br>a &amp; b</p>", out)

	out, err = Render(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestShortSeed(t *testing.T) {
	assert.Equal(t, "abcd...ijkl", ShortSeed("abcdefghijkl"))
	assert.Equal(t, "short", ShortSeed("short"))
	assert.Equal(t, "あいうえ...けこさし", ShortSeed("あいうえおかきくけこさし"))
}

func TestDecodeText(t *testing.T) {
	s, err := DecodeText(b64("hello world"))
	require.NoError(t, err)
	assert.Equal(t, "hello world", s)

	s, err = DecodeText(base64.RawStdEncoding.EncodeToString([]byte("hi")))
	require.NoError(t, err)
	assert.Equal(t, "hi", s)

	enc := b64("???>>>")
	require.Contains(t, enc, "+")
	s, err = DecodeText(replacePlus(enc))
	require.NoError(t, err)
	assert.Equal(t, "???>>>", s)

	_, err = DecodeText(base64.StdEncoding.EncodeToString([]byte{0xff, 0xfe}))
	assert.True(t, errors.Is(err, ErrInvalidMessage))
}

func replacePlus(s string) string {
	out := []rune(s)
	for i, r := range out {
		if r == '+' {
			out[i] = ' '
		}
	}
	return string(out)
}
