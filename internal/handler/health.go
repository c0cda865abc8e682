package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type healthResponse struct {
	Status   string `json:"status"`
	Analysis bool   `json:"analysis"`
	Pair     string `json:"pair"`
}

// Health godoc
// @Summary      Health check
// @Description  Reports liveness, whether the analysis pipeline is configured and the default pair
// @Tags         health
// @Produce      json
// @Success      200  {object}  healthResponse
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{
		Status:   "healthy",
		Analysis: h.runner != nil,
		Pair:     h.defaults.Pair.Symbol(),
	})
}
