package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	ua "github.com/mssola/user_agent"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs every request with latency, status, and parsed
// user-agent fields for the admin audit trail.
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
		}

		if rawUA := c.Request.UserAgent(); rawUA != "" {
			parser := ua.New(rawUA)
			browser, version := parser.Browser()
			fields["os"] = parser.OS()
			fields["browser"] = browser
			fields["browser_ver"] = version
			fields["mobile"] = parser.Mobile()
			if parser.Bot() {
				fields["bot"] = true
			}
		}

		if adminCtx, exists := GetAdminContext(c); exists {
			fields["admin_id"] = adminCtx.AdminID
		}

		entry := logger.WithFields(fields)

		status := c.Writer.Status()
		switch {
		case len(c.Errors) > 0:
			entry.WithField("errors", c.Errors.String()).Error("Request failed with errors")
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}
