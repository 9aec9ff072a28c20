package board

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kantan-tube/web-ui/services/board"
	"github.com/kantan-tube/web-ui/services/i18n"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const htmlContentType = "text/html; charset=utf-8"

type Handler struct {
	b *board.Board
}

func RegisterHandler(r *gin.Engine, b *board.Board) {
	h := &Handler{
		b: b,
	}
	gr := r.Group("/api")
	gr.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET"},
	}))
	gr.GET("", h.index)
	gr.GET("/result", h.result)
}

func (s *Handler) index(c *gin.Context) {
	loc := i18n.For(c.Query("hl"), c.GetHeader("Accept-Language"))
	msgs, err := s.b.List(c.Request.Context(), c.Query("channel"), c.Query("verify") == "true")
	if err != nil {
		log.WithError(err).Error("failed to list board messages")
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	if len(msgs) == 0 {
		c.Data(http.StatusOK, htmlContentType, []byte("<p>"+loc.T(i18n.BoardEmpty)+"</p>"))
		return
	}
	out, err := board.Render(msgs)
	if err != nil {
		log.WithError(err).Error("failed to render board")
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, htmlContentType, []byte(out))
}

func (s *Handler) result(c *gin.Context) {
	loc := i18n.For(c.Query("hl"), c.GetHeader("Accept-Language"))
	_, err := s.b.Submit(c.Request.Context(), board.Post{
		Name:    c.Query("name"),
		Text:    c.Query("message"),
		Seed:    c.Query("seed"),
		Channel: c.Query("channel"),
		Verify:  c.Query("verify") == "true",
	})
	switch {
	case errors.Is(err, board.ErrMissingFields):
		c.String(http.StatusBadRequest, loc.T(i18n.BoardRequired))
	case errors.Is(err, board.ErrInvalidMessage):
		c.String(http.StatusBadRequest, err.Error())
	case err != nil:
		log.WithError(err).Error("failed to store board message")
		_ = c.AbortWithError(http.StatusInternalServerError, err)
	default:
		c.String(http.StatusOK, loc.T(i18n.BoardSent))
	}
}
