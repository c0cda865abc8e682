package handler

import (
	"context"
	"errors"
	"net/http"

	"market-narrator/internal/domain"
	"market-narrator/internal/service"

	"github.com/gin-gonic/gin"
)

// statusFor maps pipeline errors onto HTTP status codes. Upstream failures
// are reported as 502 so callers can tell them apart from their own mistakes.
func statusFor(err error) int {
	var (
		netErr    *domain.NetworkError
		decodeErr *domain.DecodeError
		parseErr  *domain.ParseError
		typeErr   *domain.TypeConstraintError
	)
	switch {
	case errors.Is(err, service.ErrUnsupportedPair), errors.As(err, &typeErr):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &netErr), errors.As(err, &decodeErr), errors.As(err, &parseErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
