package routes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/OussamaHaimour/chatbot-HCP/internal/database"
	"github.com/OussamaHaimour/chatbot-HCP/internal/logger"
	"github.com/OussamaHaimour/chatbot-HCP/middleware"
	"github.com/OussamaHaimour/chatbot-HCP/utils"
)

func SetupFileRoutes(router *gin.Engine, store *database.Store, authMiddleware *middleware.AuthMiddleware) {
	files := router.Group("/files")
	files.Use(authMiddleware.RequireAuth())

	files.GET("", func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		list, err := store.ListFiles(c.Request.Context(), userID)
		if err != nil {
			logger.Error("file listing failed", "user_id", userID, "error", err)
			utils.RespondWithInternalError(c, "Failed to fetch files", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"files": list})
	})

	files.DELETE("/:id", func(c *gin.Context) {
		fileID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			utils.RespondWithBadRequest(c, "Invalid file id", nil)
			return
		}

		userID := middleware.GetUserID(c)
		if err := store.DeleteFile(c.Request.Context(), fileID, userID); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				utils.RespondWithNotFound(c, "File not found")
				return
			}
			logger.Error("file deletion failed", "user_id", userID, "file_id", fileID, "error", err)
			utils.RespondWithInternalError(c, "Failed to delete file", nil)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "File and associated data deleted successfully"})
	})
}
