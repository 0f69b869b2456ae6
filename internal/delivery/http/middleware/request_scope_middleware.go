package middleware

import (
	"log/slog"

	deliverycontext "levelup/internal/delivery/context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestScopeMiddleware tags every request with an ID and places a
// request-scoped logger on the context for the layers below.
type RequestScopeMiddleware struct {
	logger *slog.Logger
}

// NewRequestScopeMiddleware creates a new request scope middleware.
func NewRequestScopeMiddleware(logger *slog.Logger) *RequestScopeMiddleware {
	return &RequestScopeMiddleware{logger: logger}
}

// Handle assigns the request ID, echoes it back in the response header and
// threads a scoped logger through the request context.
func (m *RequestScopeMiddleware) Handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get(deliverycontext.HeaderXRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		deliverycontext.SetRequestID(c, requestID)
		c.Response().Header().Set(deliverycontext.HeaderXRequestID, requestID)

		scoped := m.logger.With(slog.String("requestID", requestID))
		ctx := deliverycontext.WithRequestID(c.Request().Context(), requestID)
		ctx = deliverycontext.WithLogger(ctx, scoped)
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}
