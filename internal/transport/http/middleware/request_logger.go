// Package middleware contains HTTP middlewares for delivery.
package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RequestLogger logs every request with the caller, status and duration.
// Server-side failures are logged at error level.
func RequestLogger(log *zap.SugaredLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// let the app error handler set the final status before logging
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
			err = nil
		}

		reqID, _ := c.Locals("requestid").(string)
		if reqID == "" {
			reqID = c.Get(fiber.HeaderXRequestID)
		}
		status := c.Response().StatusCode()
		fields := []interface{}{
			"method", c.Method(),
			"path", c.OriginalURL(),
			"status", status,
			"user", User(c),
			"duration_ms", float64(time.Since(start).Microseconds()) / 1000.0,
			"request_id", reqID,
		}
		if status >= fiber.StatusInternalServerError {
			log.Errorw("http", fields...)
		} else {
			log.Infow("http", fields...)
		}
		return err
	}
}
