package handler

import (
	"net/http"
	"strings"

	"market-narrator/internal/extract"
	"market-narrator/internal/pipeline"
	"market-narrator/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

type extractRequest struct {
	Kind string `json:"kind" binding:"required,oneof=realtime prediction"`
	Text any    `json:"text" binding:"required" swaggertype:"string"`
}

type analysisRequest struct {
	Symbol      string `json:"symbol"`
	TargetPrice string `json:"targetPrice"`
	TargetDate  string `json:"targetDate"`
	Publish     bool   `json:"publish"`
}

// Extract godoc
// @Summary      Extract structured fields from a report
// @Description  Applies the realtime or prediction patterns to a report text. Missing fields are listed, never an error. A text that is not a string is rejected.
// @Tags         analysis
// @Accept       json
// @Produce      json
// @Param        request  body  extractRequest  true  "Report kind and text"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/extract [post]
func (h *Handler) Extract(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.extract")
	defer span.End()

	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	span.SetAttributes(attribute.String("kind", req.Kind))

	if req.Kind == "realtime" {
		figures, err := extract.RealtimeValue(req.Text)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"kind": req.Kind, "figures": figures})
		return
	}

	analysis, err := extract.PredictionValue(req.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"kind": req.Kind, "analysis": analysis})
}

// RunAnalysis godoc
// @Summary      Run the narration pipeline
// @Description  Fetches market data, produces the realtime and prediction reports, extracts the analysis and composes the message thread. Publishes it when publish is true.
// @Tags         analysis
// @Accept       json
// @Produce      json
// @Param        request  body  analysisRequest  false  "Pair and target; empty fields use server defaults"
// @Success      200  {object}  pipeline.Result
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/analysis [post]
func (h *Handler) RunAnalysis(c *gin.Context) {
	if h.runner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analysis unavailable, OPENAI_API_KEY not configured"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.run-analysis")
	defer span.End()

	var body analysisRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	req := pipeline.Request{
		Pair:        h.defaults.Pair,
		TargetPrice: h.defaults.TargetPrice,
		TargetDate:  h.defaults.TargetDate,
		Publish:     body.Publish,
	}
	if s := strings.TrimSpace(body.Symbol); s != "" {
		pair, err := service.ParseSymbol(s)
		if err != nil {
			writeError(c, err)
			return
		}
		req.Pair = pair
	}
	if body.TargetPrice != "" {
		req.TargetPrice = body.TargetPrice
	}
	if body.TargetDate != "" {
		req.TargetDate = body.TargetDate
	}
	span.SetAttributes(attribute.String("symbol", req.Pair.Symbol()), attribute.Bool("publish", req.Publish))

	res, err := h.runner.Run(ctx, req)
	if err != nil {
		if res != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error(), "result": res})
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
