package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"tvshow-catalog/internal/shared/response"
)

func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				correlationID := uuid.NewString()

				log.Error().
					Str("request_id", c.GetString(RequestIDKey)).
					Str("correlation_id", correlationID).
					Interface("error", err).
					Msg("Panic recovered")

				response.InternalServerError(c, correlationID)
			}
		}()

		c.Next()
	}
}
