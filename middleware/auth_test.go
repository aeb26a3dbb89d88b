package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OussamaHaimour/chatbot-HCP/internal/config"
	"github.com/OussamaHaimour/chatbot-HCP/utils"
)

func newAuthTestRouter(cfg *config.Config, gotID *int64, gotRole *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	auth := NewAuthMiddleware(cfg)

	router := gin.New()
	router.GET("/whoami", auth.RequireAuth(), func(c *gin.Context) {
		*gotID = GetUserID(c)
		*gotRole = GetRole(c)
		c.Status(http.StatusOK)
	})
	return router
}

func TestRequireAuthPopulatesIdentity(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}
	var gotID int64
	var gotRole string
	router := newAuthTestRouter(cfg, &gotID, &gotRole)

	token, err := utils.GenerateJWT(7, "curator", cfg.JWTSecret, time.Hour)
	if err != nil {
		t.Fatalf("token generation failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotID != 7 {
		t.Fatalf("user id = %d, want 7", gotID)
	}
	if gotRole != "curator" {
		t.Fatalf("role = %q, want curator", gotRole)
	}
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}
	var gotID int64
	var gotRole string
	router := newAuthTestRouter(cfg, &gotID, &gotRole)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestRequireAuthRejectsInvalidToken(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}
	var gotID int64
	var gotRole string
	router := newAuthTestRouter(cfg, &gotID, &gotRole)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
