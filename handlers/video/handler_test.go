package video

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kantan-tube/web-ui/services/invidious"
	"github.com/kantan-tube/web-ui/services/mirror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// routeFetcher answers by path prefix; a nil body means every mirror failed.
type routeFetcher struct {
	mu     sync.Mutex
	routes map[string]*string
	calls  []string
}

func body(s string) *string { return &s }

func (f *routeFetcher) Fetch(_ context.Context, path string, decode mirror.Decoder) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, path)
	f.mu.Unlock()
	var (
		best string
		b    *string
	)
	for prefix, v := range f.routes {
		if strings.HasPrefix(path, prefix) && len(prefix) > len(best) {
			best, b = prefix, v
		}
	}
	if b == nil {
		return nil, &mirror.ExhaustedError{Path: path, Attempts: []mirror.Attempt{{Mirror: "https://a/"}}}
	}
	if err := decode([]byte(*b)); err != nil {
		return nil, err
	}
	return []byte(*b), nil
}

func newRouter(t *testing.T, routes map[string]*string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterHandler(r, invidious.New(&routeFetcher{routes: routes}))
	return r
}

func get(t *testing.T, r http.Handler, target string, header ...string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var m map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	}
	return w, m
}

func TestSearch(t *testing.T) {
	r := newRouter(t, map[string]*string{
		"api/v1/search": body(`[{"videoId":"c1","title":"Cats"}]`),
	})
	w, m := get(t, r, "/v1/search?q=cats")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cats", m["query"])
	videos := m["videos"].([]any)
	require.Len(t, videos, 1)
	assert.Equal(t, "c1", videos[0].(map[string]any)["id"])
	assert.Nil(t, m["message"])
}

func TestSearch_BlankAndEmpty(t *testing.T) {
	r := newRouter(t, map[string]*string{
		"api/v1/search": body(`[]`),
	})
	w, m := get(t, r, "/v1/search?q=&hl=en")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "No search query given.", m["message"])
	assert.Empty(t, m["videos"])

	w, m = get(t, r, "/v1/search?q=zzz", "Accept-Language", "en-US")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "No results found.", m["message"])

	_, m = get(t, r, "/v1/search?q=zzz")
	assert.Equal(t, "検索結果が見つかりませんでした。", m["message"])
}

func TestTrending_Unavailable(t *testing.T) {
	r := newRouter(t, map[string]*string{})
	w, m := get(t, r, "/v1/trending?hl=en")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "Could not load content from any mirror. Please try again later.", m["message"])
}

func TestVideo(t *testing.T) {
	r := newRouter(t, map[string]*string{
		"api/v1/videos/ok": body(`{"videoId":"ok","title":"T","formatStreams":[
			{"url":"https://v/1080","qualityLabel":"1080p","container":"mp4"},
			{"url":"https://v/144","qualityLabel":"144p","container":"mp4"},
			{"url":"https://v/720","qualityLabel":"720p","container":"mp4"}
		]}`),
		"api/v1/videos/nostream": body(`{"videoId":"nostream"}`),
		"api/v1/videos/gone":     body(`{"error":"Video not found"}`),
		"api/v1/videos/full":     body(`{"videoId":"full","author":"Chan","viewCount":1234567,"description":"d","recommendedVideos":[{"videoId":"r1"}]}`),
	})

	w, m := get(t, r, "/v1/videos/ok")
	require.Equal(t, http.StatusOK, w.Code)
	best := m["best"].(map[string]any)
	assert.Equal(t, "1080p", best["quality"])
	variants := m["video"].(map[string]any)["variants"].([]any)
	require.Len(t, variants, 3)
	assert.Equal(t, "144p", variants[0].(map[string]any)["quality"])

	w, m = get(t, r, "/v1/videos/nostream?hl=en")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, m["best"])
	assert.Equal(t, "No playable stream found for this video.", m["message"])

	assert.Equal(t, "No description.", m["description_message"])
	assert.Equal(t, "No related videos found.", m["related_message"])
	assert.Equal(t, "Unknown channel", m["video"].(map[string]any)["author"])
	assert.Nil(t, m["views_text"])

	w, m = get(t, r, "/v1/videos/full?hl=en")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1,234,567 views", m["views_text"])
	assert.Equal(t, "Chan", m["video"].(map[string]any)["author"])
	assert.Nil(t, m["description_message"])
	assert.Nil(t, m["related_message"])

	w, m = get(t, r, "/v1/videos/gone?hl=en")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Video not found.", m["message"])

	w, _ = get(t, r, "/v1/videos/down")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestChannel_PartialData(t *testing.T) {
	r := newRouter(t, map[string]*string{
		"api/v1/channels/UC1":        body(`{"authorId":"UC1","author":"Chan","latestVideos":[{"videoId":"l1"}]}`),
		"api/v1/channels/UC1/videos": nil,
		"api/v1/channels/UC2":        body(`{"authorId":"UC2","subCount":12000}`),
		"api/v1/channels/UC2/videos": body(`{"videos":[]}`),
		"api/v1/channels/UC3":        body(`{"authorId":"UC3","author":"Full"}`),
		"api/v1/channels/UC3/videos": body(`[{"videoId":"v1"},{"videoId":"v2"}]`),
	})

	w, m := get(t, r, "/v1/channels/UC1")
	require.Equal(t, http.StatusOK, w.Code)
	ch := m["channel"].(map[string]any)
	assert.Equal(t, "Chan", ch["name"])
	assert.Len(t, ch["videos"], 1, "falls back to the videos carried by the detail")
	assert.Nil(t, m["videos_message"])
	assert.Nil(t, m["subscribers_text"])

	w, m = get(t, r, "/v1/channels/UC2?hl=en")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "This channel has no videos.", m["videos_message"])
	assert.Equal(t, "12,000 subscribers", m["subscribers_text"])
	assert.Equal(t, "Unknown channel", m["channel"].(map[string]any)["name"])

	w, m = get(t, r, "/v1/channels/UC3")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, m["channel"].(map[string]any)["videos"], 2)

	w, _ = get(t, r, "/v1/channels/UC9")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestChannelVideos(t *testing.T) {
	r := newRouter(t, map[string]*string{
		"api/v1/channels/UC1/videos": body(`[{"videoId":"v1"}]`),
	})
	w, m := get(t, r, "/v1/channels/UC1/videos")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, m["videos"], 1)
}

func TestLiveSearch(t *testing.T) {
	r := newRouter(t, map[string]*string{
		"api/v1/search": body(`[{"videoId":"c1"}]`),
	})
	w, m := get(t, r, "/v1/live/search?q=cats&sid=s1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, m["videos"], 1)

	w, m = get(t, r, "/v1/live/search?q=&sid=s1&hl=en")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "No search query given.", m["message"])

	w, _ = get(t, r, "/v1/live/search?q=cats")
	assert.Equal(t, http.StatusOK, w.Code)
}

type blockingFetcher struct {
	entered chan struct{}
}

func (f *blockingFetcher) Fetch(ctx context.Context, path string, decode mirror.Decoder) ([]byte, error) {
	if strings.Contains(path, "q=slow") {
		close(f.entered)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	b := []byte(`[{"videoId":"fast"}]`)
	if err := decode(b); err != nil {
		return nil, err
	}
	return b, nil
}

func TestLiveSearch_Superseded(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	f := &blockingFetcher{entered: make(chan struct{})}
	RegisterHandler(r, invidious.New(f))

	slow := make(chan *httptest.ResponseRecorder)
	go func() {
		req := httptest.NewRequest(http.MethodGet, "/v1/live/search?q=slow&sid=s1", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		slow <- w
	}()
	<-f.entered

	w, m := get(t, r, "/v1/live/search?q=fast&sid=s1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, m["videos"], 1)

	stale := <-slow
	assert.Equal(t, http.StatusConflict, stale.Code)
}
