package middleware

import (
	"net/http"
	"strings"
	"time"

	"helper/models"
	"helper/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const authCacheTTL = 72 * time.Hour

// Context keys set by the auth middleware.
const (
	CtxCallerID = "callerID"
	CtxRole     = "role"
)

// JWTAuthMiddleware validates the bearer token against the signature and
// the auth cache, then stores the caller's id and role on the context.
// Tokens absent from the cache are treated as revoked.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		callerID, role, err := utils.ExtractClaimsFromToken(tokenString)
		if err != nil || callerID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		cacheKey := utils.AuthCachePrefix + utils.HashToken(tokenString)
		authCache := utils.GetAuthCacheClient()
		if _, err := authCache.Get(c.Request.Context(), cacheKey).Result(); err != nil {
			if err != redis.Nil {
				zap.L().Error("auth cache lookup failed", zap.Error(err))
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token revoked or expired"})
			return
		}
		// Sliding expiration.
		if err := authCache.Expire(c.Request.Context(), cacheKey, authCacheTTL).Err(); err != nil {
			zap.L().Error("auth cache TTL refresh failed", zap.Error(err))
		}

		c.Set(CtxCallerID, callerID)
		c.Set(CtxRole, role)
		c.Next()
	}
}

// RequireRole gates a route group to one role. Must run after
// JWTAuthMiddleware.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if got := c.GetString(CtxRole); got != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}
		c.Next()
	}
}

// RequireProvider is a shorthand used by the provider route group.
func RequireProvider() gin.HandlerFunc { return RequireRole(models.RoleProvider) }

// RequireClient is a shorthand used by the client route group.
func RequireClient() gin.HandlerFunc { return RequireRole(models.RoleClient) }
