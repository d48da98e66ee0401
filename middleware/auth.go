package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/ndeen17/Escrow/config"
	"github.com/ndeen17/Escrow/pkg/logger"
)

// Claims are the identity-provider token claims we rely on. The subject
// comes from the registered claims.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func parseToken(tokenString string, cfg *config.AuthConfig) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

func setIdentity(c *gin.Context, claims *Claims, token string) {
	c.Set("subject", claims.Subject)
	c.Set("email", claims.Email)
	c.Set("token", token)

	// Add to request context for logger
	ctx := context.WithValue(c.Request.Context(), logger.SubjectKey, claims.Subject)
	c.Request = c.Request.WithContext(ctx)
}

// AuthRequired validates the identity-provider bearer token and rejects the
// request when it is missing or invalid.
func AuthRequired(cfg *config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		claims, err := parseToken(token, cfg)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		setIdentity(c, claims, token)
		c.Next()
	}
}

// AuthOptional extracts the caller's identity when a valid bearer token is
// present and leaves the request anonymous otherwise. The wizard runs for
// both; only submission cares about the difference.
func AuthOptional(cfg *config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if claims, err := parseToken(token, cfg); err == nil {
				setIdentity(c, claims, token)
			}
		}
		c.Next()
	}
}

// IsAuthenticated reports whether the request carries a validated identity.
func IsAuthenticated(c *gin.Context) bool {
	return GetSubject(c) != ""
}

// GetSubject gets the identity subject from context
func GetSubject(c *gin.Context) string {
	if subject, exists := c.Get("subject"); exists {
		return subject.(string)
	}
	return ""
}

// GetEmail gets the identity email from context
func GetEmail(c *gin.Context) string {
	if email, exists := c.Get("email"); exists {
		return email.(string)
	}
	return ""
}

// GetToken gets the raw bearer token from context, for pass-through to the
// escrow backend.
func GetToken(c *gin.Context) string {
	if token, exists := c.Get("token"); exists {
		return token.(string)
	}
	return ""
}
