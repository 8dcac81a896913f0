package middleware // middleware contains reusable HTTP middleware for the API

import (
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"
)

// RequestLogger assigns each request an id (honoring an incoming
// X-Request-Id header), echoes it back in the response and emits one
// structured log line per request with method, route, status and
// duration.
func RequestLogger() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            reqID := c.Request().Header.Get("X-Request-Id")
            if reqID == "" {
                reqID = uuid.NewString()
            }
            c.Response().Header().Set("X-Request-Id", reqID)

            start := time.Now()
            err := next(c)
            if err != nil {
                // Let Echo's error handler write the response first so
                // the logged status is the real one.
                c.Error(err)
            }
            logrus.WithFields(logrus.Fields{
                "reqid":  reqID,
                "method": c.Request().Method,
                "uri":    c.Request().RequestURI,
                "status": c.Response().Status,
                "dur":    time.Since(start).String(),
                "ip":     c.RealIP(),
            }).Info("request")
            return nil
        }
    }
}
