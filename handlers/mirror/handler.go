package mirror

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kantan-tube/web-ui/services/mirror"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	prober *mirror.Prober
}

type report struct {
	Total   int                  `json:"total"`
	Healthy int                  `json:"healthy"`
	Mirrors []mirror.ProbeResult `json:"mirrors"`
	Fastest []string             `json:"fastest"`
}

func RegisterHandler(r *gin.Engine, p *mirror.Prober) {
	h := &Handler{
		prober: p,
	}
	r.GET("/mirrors", h.index)
}

func (s *Handler) index(c *gin.Context) {
	res, err := s.prober.Report(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("failed to probe mirrors")
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	fastest := mirror.Fastest(res)
	rep := report{
		Total:   len(res),
		Healthy: len(fastest),
		Mirrors: res,
		Fastest: make([]string, len(fastest)),
	}
	for i, f := range fastest {
		rep.Fastest[i] = f.Mirror
	}
	c.JSON(http.StatusOK, rep)
}
