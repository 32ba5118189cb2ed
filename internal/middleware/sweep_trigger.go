package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/thebishalghosh/livonto-sub000/internal/services"
)

// SweepTrigger runs the expiry sweep at the start of booking-related requests.
// There is no dedicated scheduler; the sweep piggybacks on admin traffic, so
// it may fire many times per minute from concurrent requests. Failures are
// logged and swallowed: the sweep is a best-effort background correction and
// must never block the request it rides on.
func SweepTrigger(sweeper *services.ExpirySweeperService, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := sweeper.SweepExpiredBookings(time.Time{}); err != nil {
			logger.WithError(err).Error("Opportunistic expiry sweep failed")
		}
		c.Next()
	}
}
