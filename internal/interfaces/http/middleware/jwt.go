package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rakshit782/marketplace-sync-dashboard/internal/infrastructure/auth"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/interfaces/http/dto"
)

// JWT context keys
const (
	JWTClaimsKey         = "jwt_claims"
	JWTOrganizationIDKey = "jwt_organization_id"
	JWTUserIDKey         = "jwt_user_id"
	JWTRoleKey           = "jwt_role"
	AuthHeaderKey        = "Authorization"
	BearerPrefix         = "Bearer "
)

// JWTConfig holds configuration for the auth middleware
type JWTConfig struct {
	Verifier  *auth.Verifier
	SkipPaths []string
	Logger    *zap.Logger
}

// JWTAuth creates bearer token authentication middleware. Requests to
// SkipPaths pass through unauthenticated; everything else needs a valid
// token carrying an organization_id claim.
func JWTAuth(cfg JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if path == skip {
				c.Next()
				return
			}
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			abortUnauthorized(c, cfg, auth.ErrInvalidToken, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, cfg, auth.ErrInvalidToken, "Invalid authorization header format")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		if tokenString == "" {
			abortUnauthorized(c, cfg, auth.ErrInvalidToken, "Missing token")
			return
		}

		claims, err := cfg.Verifier.Verify(tokenString)
		if err != nil {
			abortUnauthorized(c, cfg, err, "Token validation failed")
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTOrganizationIDKey, claims.OrganizationID)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTRoleKey, claims.Role)

		c.Next()
	}
}

// RequireAdmin gates a route group to tokens carrying the admin role.
// Must run after JWTAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil || !claims.IsAdmin() {
			requestID := GetRequestID(c)
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden,
				"Admin role required",
				requestID,
			))
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, cfg JWTConfig, err error, message string) {
	if cfg.Logger != nil {
		cfg.Logger.Warn("Authentication failed",
			zap.Error(err),
			zap.String("message", message),
			zap.String("path", c.Request.URL.Path),
		)
	}

	code := dto.ErrCodeUnauthorized
	apiMessage := "Authentication required"
	switch err {
	case auth.ErrExpiredToken:
		code = dto.ErrCodeTokenExpired
		apiMessage = "Token has expired"
	case auth.ErrInvalidToken, auth.ErrInvalidClaims, auth.ErrMissingOrganizationID:
		code = dto.ErrCodeTokenInvalid
		apiMessage = "Invalid token"
	}

	requestID := GetRequestID(c)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, apiMessage, requestID))
}

// GetJWTClaims retrieves verified claims from the gin context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if v, exists := c.Get(JWTClaimsKey); exists {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetOrganizationID returns the authenticated organization's UUID
func GetOrganizationID(c *gin.Context) (uuid.UUID, bool) {
	claims := GetJWTClaims(c)
	if claims == nil {
		return uuid.Nil, false
	}
	id, err := claims.OrganizationUUID()
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
