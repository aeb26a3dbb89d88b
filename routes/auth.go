package routes

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OussamaHaimour/chatbot-HCP/internal/config"
	"github.com/OussamaHaimour/chatbot-HCP/internal/database"
	"github.com/OussamaHaimour/chatbot-HCP/internal/logger"
	"github.com/OussamaHaimour/chatbot-HCP/models"
	"github.com/OussamaHaimour/chatbot-HCP/utils"
)

func SetupAuthRoutes(router *gin.Engine, cfg *config.Config, store *database.Store) {
	auth := router.Group("/auth")

	auth.POST("/register", func(c *gin.Context) {
		var req models.RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		if _, err := store.GetUserByUsername(c.Request.Context(), req.Username); err == nil {
			utils.RespondWithConflict(c, "Username already exists")
			return
		} else if !errors.Is(err, database.ErrNotFound) {
			logger.Error("user lookup failed", "error", err)
			utils.RespondWithInternalError(c, "Failed to create user", nil)
			return
		}

		hashedPassword, err := utils.HashPassword(req.Password, cfg.BcryptCost)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to process password", nil)
			return
		}

		user := &models.User{
			FirstName:    req.FirstName,
			Role:         req.Role,
			Username:     req.Username,
			PasswordHash: hashedPassword,
		}
		if err := store.CreateUser(c.Request.Context(), user); err != nil {
			logger.Error("user insert failed", "error", err)
			utils.RespondWithInternalError(c, "Failed to create user", nil)
			return
		}

		token, err := issueToken(cfg, user)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to generate token", nil)
			return
		}

		c.JSON(http.StatusCreated, models.AuthResponse{Token: token, User: user.Info()})
	})

	auth.POST("/login", func(c *gin.Context) {
		var req models.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Username and password required", nil)
			return
		}

		user, err := store.GetUserByUsername(c.Request.Context(), req.Username)
		if err != nil || !utils.CheckPassword(req.Password, user.PasswordHash) {
			utils.RespondWithUnauthorized(c, "Invalid credentials")
			return
		}

		token, err := issueToken(cfg, user)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to generate token", nil)
			return
		}

		c.JSON(http.StatusOK, models.AuthResponse{Token: token, User: user.Info()})
	})
}

func issueToken(cfg *config.Config, user *models.User) (string, error) {
	duration, err := time.ParseDuration(cfg.JWTExpiresIn)
	if err != nil {
		duration = time.Hour
	}
	return utils.GenerateJWT(user.ID, user.Role, cfg.JWTSecret, duration)
}
