package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/ndeen17/Escrow/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func mintToken(t *testing.T, secret, subject, email string, expiresAt time.Time) string {
	t.Helper()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return token
}

func TestAuthRequired(t *testing.T) {
	cfg := &config.AuthConfig{JWTSecret: "test-secret-key"}
	token := mintToken(t, cfg.JWTSecret, "auth0|abc", "sam@example.com", time.Now().Add(time.Hour))

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
	}{
		{
			name:           "valid token",
			authHeader:     "Bearer " + token,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing header",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "invalid format",
			authHeader:     token, // Missing "Bearer "
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "invalid token",
			authHeader:     "Bearer invalid.token.here",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "wrong secret",
			authHeader:     "Bearer " + mintToken(t, "other-secret", "auth0|abc", "sam@example.com", time.Now().Add(time.Hour)),
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(AuthRequired(cfg))
			router.GET("/test", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{
					"subject": GetSubject(c),
					"email":   GetEmail(c),
				})
			})

			req := httptest.NewRequest("GET", "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestAuthRequiredExpiredToken(t *testing.T) {
	cfg := &config.AuthConfig{JWTSecret: "test-secret-key"}
	token := mintToken(t, cfg.JWTSecret, "auth0|abc", "sam@example.com", time.Now().Add(-time.Hour))

	router := gin.New()
	router.Use(AuthRequired(cfg))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d for expired token, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestAuthOptional(t *testing.T) {
	cfg := &config.AuthConfig{JWTSecret: "test-secret-key"}
	token := mintToken(t, cfg.JWTSecret, "auth0|abc", "sam@example.com", time.Now().Add(time.Hour))

	tests := []struct {
		name          string
		authHeader    string
		wantSubject   string
		authenticated bool
	}{
		{
			name:          "valid token sets identity",
			authHeader:    "Bearer " + token,
			wantSubject:   "auth0|abc",
			authenticated: true,
		},
		{
			name:          "no token stays anonymous",
			authHeader:    "",
			authenticated: false,
		},
		{
			name:          "garbage token stays anonymous",
			authHeader:    "Bearer not.a.token",
			authenticated: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotSubject string
			var gotAuthed bool

			router := gin.New()
			router.Use(AuthOptional(cfg))
			router.GET("/test", func(c *gin.Context) {
				gotSubject = GetSubject(c)
				gotAuthed = IsAuthenticated(c)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest("GET", "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}
			if gotSubject != tt.wantSubject {
				t.Errorf("Expected subject %q, got %q", tt.wantSubject, gotSubject)
			}
			if gotAuthed != tt.authenticated {
				t.Errorf("Expected authenticated=%v, got %v", tt.authenticated, gotAuthed)
			}
		})
	}
}

func TestGetIdentityHelpers(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	// Test with nothing set
	if GetSubject(c) != "" || GetEmail(c) != "" || GetToken(c) != "" {
		t.Error("Expected empty identity for anonymous context")
	}
	if IsAuthenticated(c) {
		t.Error("Expected anonymous context to be unauthenticated")
	}

	// Test with identity set
	c.Set("subject", "auth0|abc")
	c.Set("email", "sam@example.com")
	c.Set("token", "raw-token")

	if GetSubject(c) != "auth0|abc" {
		t.Errorf("Expected subject auth0|abc, got %s", GetSubject(c))
	}
	if GetEmail(c) != "sam@example.com" {
		t.Errorf("Expected email sam@example.com, got %s", GetEmail(c))
	}
	if GetToken(c) != "raw-token" {
		t.Errorf("Expected raw token, got %s", GetToken(c))
	}
	if !IsAuthenticated(c) {
		t.Error("Expected context with subject to be authenticated")
	}
}
