package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

const (
	maxSentimentLimit = 365
	maxHistoryDays    = 2000
)

// GetTicker godoc
// @Summary      Get the 24h ticker for a trading pair
// @Description  Returns the exchange ticker as served and its two-decimal normalized form
// @Tags         market
// @Produce      json
// @Param        symbol  path  string  true  "Trading pair (e.g., BTCUSDT, eth-usdc)"
// @Success      200  {object}  service.TickerView
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/ticker/{symbol} [get]
func (h *Handler) GetTicker(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-ticker")
	defer span.End()

	symbol := c.Param("symbol")
	span.SetAttributes(attribute.String("symbol", symbol))

	view, err := h.market.GetTicker(ctx, symbol)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetSentiment godoc
// @Summary      Get Fear & Greed index readings
// @Description  Returns the most recent readings, newest first
// @Tags         market
// @Produce      json
// @Param        limit  query  int  false  "Number of readings (max 365)"  default(1)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/sentiment [get]
func (h *Handler) GetSentiment(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-sentiment")
	defer span.End()

	limit, ok := intQuery(c, "limit", 1, maxSentimentLimit)
	if !ok {
		return
	}

	samples, err := h.market.GetSentiment(ctx, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"samples": samples})
}

// GetHistory godoc
// @Summary      Get daily closing history
// @Description  Returns trailing daily bars, oldest first
// @Tags         market
// @Produce      json
// @Param        symbol  path   string  true   "Trading pair (e.g., BTCUSDT)"
// @Param        days    query  int     false  "Number of days (max 2000)"  default(30)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/history/{symbol} [get]
func (h *Handler) GetHistory(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-history")
	defer span.End()

	symbol := c.Param("symbol")
	days, ok := intQuery(c, "days", h.defaults.HistoryDays, maxHistoryDays)
	if !ok {
		return
	}
	span.SetAttributes(attribute.String("symbol", symbol), attribute.Int("days", days))

	bars, err := h.market.GetHistory(ctx, symbol, days)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "days": days, "bars": bars})
}

// intQuery reads a positive integer query parameter capped at max. It
// writes a 400 and returns false on bad input.
func intQuery(c *gin.Context, key string, fallback, max int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + key + " parameter"})
		return 0, false
	}
	return min(n, max), true
}
