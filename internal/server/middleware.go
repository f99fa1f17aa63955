package server

import (
	"github.com/labstack/echo/v4"

	"github.com/Mugdhazope/hemut-qna/internal/correlation"
)

const correlationHeader = "X-Correlation-ID"

// correlationMiddleware tags every request with a correlation ID. An inbound
// X-Correlation-ID header is honored so IDs survive proxies; otherwise a new
// one is generated. The ID travels in the request context and is echoed back
// in the response.
func correlationMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(correlationHeader)
			if id == "" {
				id = correlation.NewID()
			}

			ctx := correlation.WithID(c.Request().Context(), id)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Response().Header().Set(correlationHeader, id)

			return next(c)
		}
	}
}
