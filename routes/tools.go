package routes

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/OussamaHaimour/chatbot-HCP/internal/logger"
	"github.com/OussamaHaimour/chatbot-HCP/middleware"
	"github.com/OussamaHaimour/chatbot-HCP/services"
	"github.com/OussamaHaimour/chatbot-HCP/utils"
)

type imageToolRequest struct {
	ImageBase64 string `json:"image_base64" binding:"required"`
}

// SetupToolRoutes exposes stateless image extraction helpers and a probe for
// the embeddings sidecar. Nothing here touches the database.
func SetupToolRoutes(router *gin.Engine, embeddings *services.EmbeddingsClient, authMiddleware *middleware.AuthMiddleware) {
	tools := router.Group("/tools")
	tools.Use(authMiddleware.RequireAuth())

	tools.POST("/image-ocr", func(c *gin.Context) {
		var req imageToolRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Image data required", nil)
			return
		}

		text, err := embeddings.OCR(c.Request.Context(), req.ImageBase64)
		if err != nil {
			logger.Error("OCR tool failed", "error", err)
			utils.RespondWithInternalError(c, "Failed to extract text from image", nil)
			return
		}

		c.JSON(http.StatusOK, gin.H{"text": strings.TrimSpace(text)})
	})

	tools.POST("/image-caption", func(c *gin.Context) {
		var req imageToolRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Image data required", nil)
			return
		}

		caption, err := embeddings.Caption(c.Request.Context(), req.ImageBase64)
		if err != nil {
			logger.Error("caption tool failed", "error", err)
			utils.RespondWithInternalError(c, "Failed to generate image caption", nil)
			return
		}

		c.JSON(http.StatusOK, gin.H{"caption": strings.TrimSpace(caption)})
	})

	tools.GET("/embeddings-health", func(c *gin.Context) {
		status, err := embeddings.Health(c.Request.Context())
		if err != nil {
			logger.Warn("embeddings health probe failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unreachable",
				"error":  err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, status)
	})
}
