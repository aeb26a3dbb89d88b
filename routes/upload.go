package routes

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/OussamaHaimour/chatbot-HCP/internal/config"
	"github.com/OussamaHaimour/chatbot-HCP/internal/logger"
	"github.com/OussamaHaimour/chatbot-HCP/middleware"
	"github.com/OussamaHaimour/chatbot-HCP/services"
	"github.com/OussamaHaimour/chatbot-HCP/utils"
)

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeXLS  = "application/vnd.ms-excel"
)

type uploadTextRequest struct {
	Text string `json:"text" binding:"required"`
}

func SetupUploadRoutes(router *gin.Engine, cfg *config.Config, ingest *services.IngestionService, authMiddleware *middleware.AuthMiddleware) {
	upload := router.Group("/upload")
	upload.Use(authMiddleware.RequireAuth())

	upload.POST("/text", func(c *gin.Context) {
		var req uploadTextRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
			utils.RespondWithBadRequest(c, "Text required", nil)
			return
		}

		userID := middleware.GetUserID(c)
		if err := ingest.IngestText(c.Request.Context(), userID, req.Text); err != nil {
			logger.Error("text ingestion failed", "user_id", userID, "error", err)
			utils.RespondWithInternalError(c, "Failed to process text", nil)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Text uploaded and processed successfully"})
	})

	upload.POST("/file", func(c *gin.Context) {
		header, err := c.FormFile("file")
		if err != nil {
			utils.RespondWithBadRequest(c, "File required", nil)
			return
		}
		if header.Size > cfg.MaxFileSize {
			utils.RespondWithBadRequest(c, "File too large", gin.H{"max_bytes": cfg.MaxFileSize})
			return
		}

		opened, err := header.Open()
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to read file", nil)
			return
		}
		defer opened.Close()
		data, err := io.ReadAll(opened)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to read file", nil)
			return
		}

		userID := middleware.GetUserID(c)
		contentType := header.Header.Get("Content-Type")
		ctx := c.Request.Context()

		switch {
		case contentType == "application/pdf":
			startPage, _ := strconv.Atoi(c.PostForm("start_page"))
			err = ingest.IngestPDF(ctx, userID, header.Filename, data, startPage)

		case strings.HasPrefix(contentType, "image/"):
			if !utils.IsValidImageType(contentType) {
				utils.RespondWithBadRequest(c, "Unsupported image type", gin.H{"content_type": contentType})
				return
			}
			mode := c.PostForm("image_type")
			if mode == "" {
				mode = services.ImageModeOCR
			}
			err = ingest.IngestImage(ctx, userID, header.Filename, contentType, data, mode)

		case contentType == "text/csv":
			err = ingest.IngestCSV(ctx, userID, header.Filename, data)

		case contentType == mimeXLSX || contentType == mimeXLS:
			err = ingest.IngestXLSX(ctx, userID, header.Filename, contentType, data)

		default:
			utils.RespondWithBadRequest(c, "Unsupported file type", gin.H{"content_type": contentType})
			return
		}

		if err != nil {
			if isValidationError(err) {
				utils.RespondWithBadRequest(c, err.Error(), nil)
				return
			}
			logger.Error("file ingestion failed", "user_id", userID, "file", header.Filename, "error", err)
			utils.RespondWithInternalError(c, "Failed to process file", nil)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "File uploaded and processed successfully"})
	})
}

func isValidationError(err error) bool {
	return errors.Is(err, services.ErrEmptyExtraction) ||
		errors.Is(err, services.ErrInvalidImageMode) ||
		errors.Is(err, services.ErrNoRows)
}
