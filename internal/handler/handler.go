package handler

import (
	"context"

	"market-narrator/internal/domain"
	"market-narrator/internal/pipeline"
	"market-narrator/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type MarketReader interface {
	GetTicker(ctx context.Context, symbol string) (*service.TickerView, error)
	GetSentiment(ctx context.Context, limit int) ([]domain.SentimentSample, error)
	GetHistory(ctx context.Context, symbol string, days int) ([]domain.HistoricalBar, error)
}

type AnalysisRunner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// Defaults fill analysis requests that leave fields empty.
type Defaults struct {
	Pair        domain.Pair
	TargetPrice string
	TargetDate  string
	HistoryDays int
}

type Handler struct {
	tracer   trace.Tracer
	market   MarketReader
	runner   AnalysisRunner
	defaults Defaults
}

func New(tracer trace.Tracer, market MarketReader, defaults Defaults) *Handler {
	if defaults.HistoryDays <= 0 {
		defaults.HistoryDays = 30
	}
	return &Handler{tracer: tracer, market: market, defaults: defaults}
}

// SetAnalysisRunner enables POST /api/analysis. Without it the endpoint
// answers 503.
func (h *Handler) SetAnalysisRunner(r AnalysisRunner) {
	h.runner = r
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.GET("/ticker/:symbol", h.GetTicker)
	api.GET("/sentiment", h.GetSentiment)
	api.GET("/history/:symbol", h.GetHistory)
	api.POST("/extract", h.Extract)
	api.POST("/analysis", h.RunAnalysis)
}
