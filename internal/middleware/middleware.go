package middleware

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"bookmyseat/internal/cache"
	"bookmyseat/internal/repository"

	"github.com/gin-gonic/gin"
)

// Ctx key and helpers for authenticated user id
// Using unexported type to avoid collisions

type ctxKey string

const userIDKey ctxKey = "user_id"

func ContextWithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func UserIDFromContext(ctx context.Context) (int64, bool) {
	v := ctx.Value(userIDKey)
	if v == nil {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// CORS middleware
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}

		c.Next()
	}
}

// Logger middleware for structured request logging
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)

		logFields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status_code", c.Writer.Status(),
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if userID, exists := c.Get("user_id"); exists {
			logFields = append(logFields, "user_id", userID)
		}

		if c.Writer.Status() >= http.StatusInternalServerError {
			slog.Error("Request completed", logFields...)
		} else {
			slog.Info("Request completed", logFields...)
		}
	}
}

// Recovery middleware with detailed panic logging
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		slog.Error("PANIC recovered",
			"panic", recovered,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"client_ip", c.ClientIP(),
		)

		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
	})
}

// BasicAuth authenticates the caller via HTTP Basic Auth, checking the
// Valkey cache first and falling back to the users table. Downstream
// handlers only ever see the resulting opaque user id.
func BasicAuth(userRepo *repository.UserRepository, valkeyClient *cache.ValkeyClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", "Basic realm=\"Restricted\"")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		ctx := c.Request.Context()

		hash := sha256.Sum256([]byte(password))
		passwordHash := fmt.Sprintf("%x", hash)

		if valkeyClient != nil {
			userID, err := valkeyClient.GetUserIDByAuth(ctx, username, passwordHash)
			if err == nil {
				c.Set("user_id", userID)
				c.Request = c.Request.WithContext(ContextWithUserID(c.Request.Context(), userID))
				c.Next()
				return
			}
		}

		user, err := userRepo.GetByEmail(ctx, username)
		if err != nil || user == nil || !user.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}

		if passwordHash != user.PasswordHash {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}

		if valkeyClient != nil {
			if err := valkeyClient.SetUserAuth(ctx, username, passwordHash, user.UserID); err != nil {
				slog.Debug("Failed to populate auth cache", "error", err)
			}
		}

		c.Set("user_id", user.UserID)
		c.Request = c.Request.WithContext(ContextWithUserID(c.Request.Context(), user.UserID))

		c.Next()
	}
}
