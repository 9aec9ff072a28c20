package video

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kantan-tube/web-ui/services/i18n"
	"github.com/kantan-tube/web-ui/services/invidious"
	"github.com/kantan-tube/web-ui/services/view"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const liveSessionTTL = 10 * time.Minute

type Handler struct {
	api   *invidious.Api
	slots *view.Slots
}

func RegisterHandler(r *gin.Engine, api *invidious.Api) {
	h := &Handler{
		api:   api,
		slots: view.NewSlots(liveSessionTTL),
	}

	gr := r.Group("/v1")
	gr.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET"},
	}))
	gr.GET("/search", h.search)
	gr.GET("/live/search", h.liveSearch)
	gr.GET("/trending", h.trending)
	gr.GET("/videos/:id", h.video)
	gr.GET("/channels/:id", h.channel)
	gr.GET("/channels/:id/videos", h.channelVideos)
}

type listResponse struct {
	Query   *string                  `json:"query,omitempty"`
	Videos  []invidious.VideoSummary `json:"videos"`
	Message string                   `json:"message,omitempty"`
}

type videoResponse struct {
	Video              *invidious.VideoDetail   `json:"video"`
	Best               *invidious.StreamVariant `json:"best,omitempty"`
	Message            string                   `json:"message,omitempty"`
	ViewsText          string                   `json:"views_text,omitempty"`
	DescriptionMessage string                   `json:"description_message,omitempty"`
	RelatedMessage     string                   `json:"related_message,omitempty"`
}

type channelResponse struct {
	Channel         *invidious.ChannelDetail `json:"channel"`
	SubscribersText string                   `json:"subscribers_text,omitempty"`
	VideosMessage   string                   `json:"videos_message,omitempty"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func localizer(c *gin.Context) *i18n.Localizer {
	return i18n.For(c.Query("hl"), c.GetHeader("Accept-Language"))
}

func (s *Handler) search(c *gin.Context) {
	loc := localizer(c)
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusOK, listResponse{Query: &q, Videos: []invidious.VideoSummary{}, Message: loc.T(i18n.NoQuery)})
		return
	}
	videos, err := s.api.Search(c.Request.Context(), q)
	if err != nil {
		s.fail(c, loc, err, i18n.NoResults)
		return
	}
	c.JSON(http.StatusOK, s.list(loc, &q, videos, i18n.NoResults))
}

// liveSearch is search for as-you-type clients: a newer request of the
// same session cancels the older one, which then answers 409.
func (s *Handler) liveSearch(c *gin.Context) {
	sid := strings.TrimSpace(c.Query("sid"))
	if sid == "" {
		s.search(c)
		return
	}
	loc := localizer(c)
	q := strings.TrimSpace(c.Query("q"))
	g := s.slots.Get(sid)
	ctx, t := g.Begin(c.Request.Context())
	var (
		videos []invidious.VideoSummary
		err    error
	)
	if q != "" {
		videos, err = s.api.Search(ctx, q)
	}
	var resp listResponse
	ok := g.Commit(t, func() {
		if err == nil {
			if q == "" {
				resp = listResponse{Query: &q, Videos: []invidious.VideoSummary{}, Message: loc.T(i18n.NoQuery)}
			} else {
				resp = s.list(loc, &q, videos, i18n.NoResults)
			}
		}
	})
	if !ok {
		log.WithField("sid", sid).Debug("live search superseded")
		c.JSON(http.StatusConflict, errorResponse{Message: loc.T(i18n.Superseded)})
		return
	}
	if err != nil {
		s.fail(c, loc, err, i18n.NoResults)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Handler) trending(c *gin.Context) {
	loc := localizer(c)
	videos, err := s.api.Trending(c.Request.Context())
	if err != nil {
		s.fail(c, loc, err, i18n.NoTrending)
		return
	}
	c.JSON(http.StatusOK, s.list(loc, nil, videos, i18n.NoTrending))
}

func (s *Handler) video(c *gin.Context) {
	loc := localizer(c)
	v, err := s.api.Video(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, loc, err, i18n.VideoNotFound)
		return
	}
	if v.Author == "" {
		v.Author = loc.T(i18n.UnknownChannel)
	}
	resp := videoResponse{Video: v}
	if best, ok := invidious.BestVariant(v.Variants); ok {
		resp.Best = &best
	} else if v.HLSURL == "" {
		resp.Message = loc.T(i18n.NoStreams)
	}
	if v.Views != nil {
		resp.ViewsText = loc.T(i18n.Views, *v.Views)
	}
	if v.Description == "" {
		resp.DescriptionMessage = loc.T(i18n.NoDescription)
	}
	if len(v.Related) == 0 {
		resp.RelatedMessage = loc.T(i18n.NoRelated)
	}
	c.JSON(http.StatusOK, resp)
}

// channel fetches the detail and the video listing concurrently. A failed
// listing still renders the channel with what the detail carried.
func (s *Handler) channel(c *gin.Context) {
	loc := localizer(c)
	id := c.Param("id")
	ctx := c.Request.Context()

	var (
		wg        sync.WaitGroup
		ch        *invidious.ChannelDetail
		chErr     error
		videos    []invidious.VideoSummary
		videosErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		ch, chErr = s.api.Channel(ctx, id)
	}()
	go func() {
		defer wg.Done()
		videos, videosErr = s.api.ChannelVideos(ctx, id)
	}()
	wg.Wait()

	if chErr != nil {
		s.fail(c, loc, chErr, i18n.ChannelNotFound)
		return
	}
	if videosErr != nil {
		log.WithError(videosErr).WithField("channel", id).Warn("failed to get channel videos")
	} else if len(videos) > 0 {
		ch.Videos = videos
	}
	if ch.Name == "" {
		ch.Name = loc.T(i18n.UnknownChannel)
	}
	resp := channelResponse{Channel: ch}
	if ch.Subscribers != nil {
		resp.SubscribersText = loc.T(i18n.Subscribers, *ch.Subscribers)
	}
	if len(ch.Videos) == 0 {
		resp.VideosMessage = loc.T(i18n.NoChannelVideos)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Handler) channelVideos(c *gin.Context) {
	loc := localizer(c)
	videos, err := s.api.ChannelVideos(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, loc, err, i18n.ChannelNotFound)
		return
	}
	c.JSON(http.StatusOK, s.list(loc, nil, videos, i18n.NoChannelVideos))
}

func (s *Handler) list(loc *i18n.Localizer, q *string, videos []invidious.VideoSummary, emptyKey string) listResponse {
	resp := listResponse{Query: q, Videos: videos}
	if len(videos) == 0 {
		resp.Videos = []invidious.VideoSummary{}
		resp.Message = loc.T(emptyKey)
	}
	return resp
}

func (s *Handler) fail(c *gin.Context, loc *i18n.Localizer, err error, notFoundKey string) {
	switch {
	case errors.Is(err, invidious.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Message: loc.T(notFoundKey)})
	case errors.Is(err, invidious.ErrUnavailable):
		log.WithError(err).WithField("path", c.Request.URL.Path).Warn("no mirror could answer")
		c.JSON(http.StatusServiceUnavailable, errorResponse{Message: loc.T(i18n.Unavailable)})
	case errors.Is(err, context.Canceled):
		c.Status(499)
	default:
		log.WithError(err).WithField("path", c.Request.URL.Path).Error("failed to query mirrors")
		c.JSON(http.StatusInternalServerError, errorResponse{Message: loc.T(i18n.Unavailable)})
	}
}
