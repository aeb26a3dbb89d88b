package routes

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/OussamaHaimour/chatbot-HCP/internal/config"
	"github.com/OussamaHaimour/chatbot-HCP/internal/logger"
	"github.com/OussamaHaimour/chatbot-HCP/middleware"
	"github.com/OussamaHaimour/chatbot-HCP/models"
	"github.com/OussamaHaimour/chatbot-HCP/services"
	"github.com/OussamaHaimour/chatbot-HCP/utils"
)

// maxResponseSources caps the provenance list returned to the caller; the
// full retrieval result still feeds the generation context.
const maxResponseSources = 3

// QuestionEmbedder maps a question to its query vector.
type QuestionEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// AnswerGenerator produces document-grounded or open answers.
type AnswerGenerator interface {
	GenerateDocumentAnswer(ctx context.Context, question, contextText string) (string, error)
	GenerateGeneralAnswer(ctx context.Context, question string, image *services.InlineImage) (string, error)
}

// ChatStore covers the user lookups and conversation log writes the chat
// surface needs.
type ChatStore interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	AppendConversation(ctx context.Context, turn *models.Conversation) error
	ListConversations(ctx context.Context, userID int64) ([]models.Conversation, error)
}

func SetupChatRoutes(router *gin.Engine, cfg *config.Config, store ChatStore,
	embeddings QuestionEmbedder, retriever *services.Retriever,
	intent *services.IntentRouter, generation AnswerGenerator,
	authMiddleware *middleware.AuthMiddleware) {

	chat := router.Group("/chat")
	chat.Use(authMiddleware.RequireAuth())

	chat.POST("/ask", func(c *gin.Context) {
		var req models.AskRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Question) == "" {
			utils.RespondWithBadRequest(c, "Question required", nil)
			return
		}

		userID := middleware.GetUserID(c)
		threadID := req.ThreadID
		if threadID == "" {
			threadID = uuid.NewString()
		}

		ctx := c.Request.Context()
		logger.Debug("processing question", "user_id", userID, "role", middleware.GetRole(c),
			"thread_id", threadID, "force_general", req.ForceGeneral, "has_image", req.ImageBase64 != "")

		// Casual conversation short-circuits retrieval and generation; an
		// attached image is ignored on this path.
		if category, ok := intent.ClassifyCasual(req.Question); ok && !req.ForceGeneral {
			answer := intent.CannedResponse(category, firstNameOf(ctx, store, userID))
			logTurn(ctx, store, userID, threadID, req.Question, answer, nil)
			c.JSON(http.StatusOK, models.AskResponse{
				Answer:   answer,
				ThreadID: threadID,
				Sources:  []models.Source{},
				Type:     models.OutcomeCasual,
			})
			return
		}

		image, err := decodeInlineImage(&req)
		if err != nil {
			utils.RespondWithBadRequest(c, "Invalid image data", nil)
			return
		}

		// Forced open mode skips document search entirely.
		if req.ForceGeneral {
			answer := generalAnswer(ctx, generation, req.Question, image)
			logTurn(ctx, store, userID, threadID, req.Question, answer, nil)
			c.JSON(http.StatusOK, models.AskResponse{
				Answer:   answer,
				ThreadID: threadID,
				Sources:  []models.Source{},
				Type:     models.OutcomeGeneralForced,
			})
			return
		}

		// Document-first path: embed the question and run the priority search.
		queryVec, err := embeddings.Embed(ctx, req.Question)
		if err != nil {
			logger.Error("query embedding failed", "user_id", userID, "error", err)
			answer := services.DegradedMessage(err)
			logTurn(ctx, store, userID, threadID, req.Question, answer, nil)
			utils.RespondWithInternalError(c, answer, nil)
			return
		}

		results, err := retriever.Search(ctx, queryVec, userID)
		if err != nil {
			logger.Error("retrieval failed", "user_id", userID, "error", err)
			answer := services.DegradedMessage(err)
			logTurn(ctx, store, userID, threadID, req.Question, answer, nil)
			utils.RespondWithInternalError(c, answer, nil)
			return
		}

		var answer, outcome string
		sources := []models.Source{}

		switch {
		case len(results) > 0:
			texts := make([]string, len(results))
			for i, result := range results {
				texts[i] = result.ChunkText
			}
			answer = documentAnswer(ctx, generation, req.Question, strings.Join(texts, "\n\n"))
			outcome = models.OutcomeDocumentBased
			for _, result := range results {
				sources = append(sources, result.Source())
				if len(sources) == maxResponseSources {
					break
				}
			}

		case intent.LooksLikePolicyQuestion(req.Question):
			answer = services.NoDocumentsMessage
			outcome = models.OutcomeNoDocuments

		default:
			answer = generalAnswer(ctx, generation, req.Question, image)
			outcome = models.OutcomeGeneralFallback
		}

		logTurn(ctx, store, userID, threadID, req.Question, answer, sources)
		c.JSON(http.StatusOK, models.AskResponse{
			Answer:   answer,
			ThreadID: threadID,
			Sources:  sources,
			Type:     outcome,
		})
	})

	chat.GET("/conversations", func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		turns, err := store.ListConversations(c.Request.Context(), userID)
		if err != nil {
			logger.Error("conversation listing failed", "user_id", userID, "error", err)
			utils.RespondWithInternalError(c, "Failed to fetch conversations", nil)
			return
		}

		grouped := make(map[string][]models.ConversationTurn)
		for _, turn := range turns {
			sources := turn.SourcesUsed
			if sources == nil {
				sources = []models.Source{}
			}
			grouped[turn.ThreadID] = append(grouped[turn.ThreadID], models.ConversationTurn{
				Question:  turn.Question,
				Answer:    turn.Answer,
				Sources:   sources,
				Timestamp: turn.CreatedAt,
			})
		}

		c.JSON(http.StatusOK, grouped)
	})
}

// generalAnswer calls open generation; a failed call degrades to a canned
// message for its cause instead of surfacing the technical error.
func generalAnswer(ctx context.Context, generation AnswerGenerator, question string, image *services.InlineImage) string {
	answer, err := generation.GenerateGeneralAnswer(ctx, question, image)
	if err != nil {
		logger.Error("general generation failed", "error", err)
		return services.DegradedMessage(err)
	}
	return answer
}

func documentAnswer(ctx context.Context, generation AnswerGenerator, question, contextText string) string {
	answer, err := generation.GenerateDocumentAnswer(ctx, question, contextText)
	if err != nil {
		logger.Error("document generation failed", "error", err)
		return services.DegradedMessage(err)
	}
	return answer
}

// logTurn appends to the conversation log. Write failures are swallowed: the
// answer is still returned even if it could not be durably recorded.
func logTurn(ctx context.Context, store ChatStore, userID int64, threadID, question, answer string, sources []models.Source) {
	if sources == nil {
		sources = []models.Source{}
	}
	turn := &models.Conversation{
		UserID:      userID,
		ThreadID:    threadID,
		Question:    question,
		Answer:      answer,
		SourcesUsed: sources,
	}
	if err := store.AppendConversation(ctx, turn); err != nil {
		logger.Warn("failed to record conversation turn", "user_id", userID, "thread_id", threadID, "error", err)
	}
}

func firstNameOf(ctx context.Context, store ChatStore, userID int64) string {
	user, err := store.GetUserByID(ctx, userID)
	if err != nil {
		logger.Debug("could not fetch user name", "user_id", userID, "error", err)
		return ""
	}
	return user.FirstName
}

func decodeInlineImage(req *models.AskRequest) (*services.InlineImage, error) {
	if req.ImageBase64 == "" {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		return nil, err
	}
	mimeType := req.ImageMimeType
	if mimeType == "" {
		mimeType = "image/png"
	}
	return &services.InlineImage{MIMEType: mimeType, Data: data}, nil
}
