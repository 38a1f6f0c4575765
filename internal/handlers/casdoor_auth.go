package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-service/internal/config"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
)

const (
	ctxAuthID   = "auth_id"
	ctxUser     = "user"
	ctxUserRole = "user_role"
)

// TokenParser validates a bearer token; *casdoorsdk.Client implements it
type TokenParser interface {
	ParseJwtToken(token string) (*casdoorsdk.Claims, error)
}

// CasdoorAuthMiddleware provides authentication using Casdoor SDK
type CasdoorAuthMiddleware struct {
	parser   TokenParser
	identity services.IdentityService
	logger   utils.Logger
}

// NewCasdoorAuthMiddleware creates the middleware. Without an endpoint every request is anonymous.
func NewCasdoorAuthMiddleware(cfg config.CasdoorConfig, identity services.IdentityService, logger utils.Logger) *CasdoorAuthMiddleware {
	var parser TokenParser
	if cfg.Endpoint != "" {
		parser = casdoorsdk.NewClient(
			cfg.Endpoint,
			cfg.ClientID,
			cfg.ClientSecret,
			cfg.Cert,
			cfg.Organization,
			cfg.Application,
		)
	}
	return NewAuthMiddlewareWithParser(parser, identity, logger)
}

func NewAuthMiddlewareWithParser(parser TokenParser, identity services.IdentityService, logger utils.Logger) *CasdoorAuthMiddleware {
	return &CasdoorAuthMiddleware{
		parser:   parser,
		identity: identity,
		logger:   logger,
	}
}

// OptionalAuthMiddleware attaches the caller when a valid token is present and never rejects
func (cam *CasdoorAuthMiddleware) OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Next()
			return
		}

		user, err := cam.authenticate(c.Request.Context(), token)
		if err != nil {
			utils.GetLogger(c, cam.logger).Debug("Continuing as anonymous", "reason", err)
			c.Next()
			return
		}

		setUser(c, user)
		c.Next()
	}
}

// AuthMiddleware rejects requests without a valid token
func (cam *CasdoorAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(ctxUser); ok {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "authorization header missing",
			})
			return
		}

		token, ok := bearerToken(authHeader)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "invalid authorization header format",
			})
			return
		}

		user, err := cam.authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "invalid token",
				Details: err.Error(),
			})
			return
		}

		setUser(c, user)
		c.Next()
	}
}

// RequireRoleMiddleware checks if user has required role
func (cam *CasdoorAuthMiddleware) RequireRoleMiddleware(requiredRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := GetUserRoleFromContext(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Message: "forbidden",
				Details: err.Error(),
			})
			return
		}

		for _, requiredRole := range requiredRoles {
			if role == requiredRole {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
			Message: fmt.Sprintf("insufficient permissions, required role: %v", requiredRoles),
		})
	}
}

func (cam *CasdoorAuthMiddleware) authenticate(ctx context.Context, token string) (*models.User, error) {
	if cam.parser == nil {
		return nil, fmt.Errorf("identity provider not configured")
	}

	claims, err := cam.parser.ParseJwtToken(token)
	if err != nil {
		return nil, err
	}
	if claims.Id == "" {
		return nil, fmt.Errorf("invalid user ID in token")
	}

	return cam.identity.Sync(ctx, profileFromClaims(claims))
}

func profileFromClaims(claims *casdoorsdk.Claims) models.ExternalProfile {
	return models.ExternalProfile{
		AuthID:     claims.Id,
		Name:       claims.User.DisplayName,
		Email:      claims.User.Email,
		ProfilePic: claims.User.Avatar,
		Role:       mapCasdoorRole(claims.User.Type),
	}
}

// mapCasdoorRole maps Casdoor user type to internal role
func mapCasdoorRole(casdoorType string) models.UserRole {
	switch strings.ToLower(casdoorType) {
	case "teacher", "instructor", "educator":
		return models.RoleTeacher
	default:
		return models.RoleStudent
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func setUser(c *gin.Context, user *models.User) {
	c.Set(ctxAuthID, user.AuthID)
	c.Set(ctxUser, user)
	c.Set(ctxUserRole, user.Role)
}

// GetUserFromContext extracts user from Gin context
func GetUserFromContext(c *gin.Context) (*models.User, error) {
	user, exists := c.Get(ctxUser)
	if !exists {
		return nil, fmt.Errorf("user not found in context")
	}

	userModel, ok := user.(*models.User)
	if !ok {
		return nil, fmt.Errorf("invalid user type in context")
	}

	return userModel, nil
}

// GetUserRoleFromContext extracts user role from Gin context
func GetUserRoleFromContext(c *gin.Context) (models.UserRole, error) {
	userRole, exists := c.Get(ctxUserRole)
	if !exists {
		return "", fmt.Errorf("user role not found in context")
	}

	role, ok := userRole.(models.UserRole)
	if !ok {
		return "", fmt.Errorf("invalid user role type in context")
	}

	return role, nil
}
