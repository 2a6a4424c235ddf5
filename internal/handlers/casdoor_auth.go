package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/studyhive/studyhub-service/internal/config"
	"github.com/studyhive/studyhub-service/internal/services"
	"github.com/studyhive/studyhub-service/internal/utils"
)

// CasdoorAuthMiddleware provides authentication using Casdoor SDK
type CasdoorAuthMiddleware struct {
	client   *casdoorsdk.Client
	profiles services.ProfileService
	logger   utils.Logger
	config   config.CasdoorConfig
}

// NewCasdoorAuthMiddleware creates a new Casdoor authentication middleware
func NewCasdoorAuthMiddleware(cfg config.CasdoorConfig, profiles services.ProfileService, logger utils.Logger) *CasdoorAuthMiddleware {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Application,
		cfg.Organization,
	)

	return &CasdoorAuthMiddleware{
		client:   client,
		profiles: profiles,
		logger:   logger,
		config:   cfg,
	}
}

// AuthMiddleware returns a Gin middleware function for Casdoor authentication
func (cam *CasdoorAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Authorization header missing"})
			c.Abort()
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := cam.client.ParseJwtToken(tokenParts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Message: fmt.Sprintf("Invalid token: %v", err)})
			c.Abort()
			return
		}

		userID := claims.Id
		if userID == "" {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid user ID in token"})
			c.Abort()
			return
		}

		// First sign-in creates the profile row; failures here must not
		// block the request
		if cam.profiles != nil {
			if _, err := cam.profiles.EnsureProfile(c.Request.Context(), userID, claims.User.Email, claims.User.DisplayName); err != nil {
				cam.logger.Warn("Failed to ensure profile", "user_id", userID, "error", err)
			}
		}

		c.Set("user_id", userID)
		c.Set("user_email", claims.User.Email)
		c.Set("user_name", claims.User.DisplayName)

		c.Next()
	}
}

// OptionalAuthMiddleware sets user info when a valid token is present and
// continues anonymously otherwise.
func (cam *CasdoorAuthMiddleware) OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			c.Next()
			return
		}

		claims, err := cam.client.ParseJwtToken(tokenParts[1])
		if err != nil || claims.Id == "" {
			c.Next()
			return
		}

		c.Set("user_id", claims.Id)
		c.Set("user_email", claims.User.Email)
		c.Set("user_name", claims.User.DisplayName)

		c.Next()
	}
}

// GetUserIDFromContext extracts user ID from Gin context
func GetUserIDFromContext(c *gin.Context) (string, error) {
	userID, exists := c.Get("user_id")
	if !exists {
		return "", fmt.Errorf("user ID not found in context")
	}

	id, ok := userID.(string)
	if !ok {
		return "", fmt.Errorf("invalid user ID type in context")
	}

	return id, nil
}
