package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AnhAnhii/veterans-verify-system/internal/auth"
	"github.com/AnhAnhii/veterans-verify-system/internal/services"
)

const (
	// ContextKeyProfileID holds the key for the authenticated profile ID in Gin context.
	ContextKeyProfileID = "profileID"
	// ContextKeyAuthMethod is "api_key" or "jwt".
	ContextKeyAuthMethod = "authMethod"

	HeaderAPIKey = "X-API-Key"

	authFailedDetail = "Invalid or missing authentication"
)

// ProfileID returns the authenticated profile, or "" outside authenticated routes.
func ProfileID(c *gin.Context) string {
	return c.GetString(ContextKeyProfileID)
}

// AuthMiddleware accepts an X-API-Key header or, failing that, an Authorization Bearer JWT.
func AuthMiddleware(profiles services.IProfileService, jwtSecret string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key := c.GetHeader(HeaderAPIKey); key != "" {
			profile, err := profiles.AuthenticateAPIKey(c.Request.Context(), key)
			if err == nil {
				if err := profiles.TouchLastUsed(c.Request.Context(), profile.ID); err != nil && log != nil {
					log.Warn("last use not recorded", zap.String("profile_id", profile.ID), zap.Error(err))
				}
				c.Set(ContextKeyProfileID, profile.ID)
				c.Set(ContextKeyAuthMethod, "api_key")
				c.Next()
				return
			}
			if !errors.Is(err, services.ErrInvalidCredentials) && log != nil {
				log.Error("api key lookup failed", zap.Error(err))
			}
		}

		authHeader := c.GetHeader("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			claims, err := auth.ValidateJWT(strings.TrimSpace(parts[1]), jwtSecret)
			if err == nil {
				c.Set(ContextKeyProfileID, claims.Subject)
				c.Set(ContextKeyAuthMethod, "jwt")
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": authFailedDetail})
	}
}
