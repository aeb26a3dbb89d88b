package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Outcome tags attached to every answered question.
const (
	OutcomeCasual          = "casual_conversation"
	OutcomeGeneralForced   = "general_knowledge_forced"
	OutcomeDocumentBased   = "document_based"
	OutcomeNoDocuments     = "no_documents_found"
	OutcomeGeneralFallback = "general_knowledge"
)

// Conversation is one question/answer turn. Turns sharing a thread ID form a
// conversation; the log is append-only.
type Conversation struct {
	bun.BaseModel `bun:"table:conversations,alias:cv"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID      int64     `bun:"user_id,notnull" json:"user_id"`
	ThreadID    string    `bun:"thread_id,notnull" json:"thread_id"`
	Question    string    `bun:"question,notnull" json:"question"`
	Answer      string    `bun:"answer,notnull" json:"answer"`
	SourcesUsed []Source  `bun:"sources_used,type:jsonb" json:"sources_used"`
	CreatedAt   time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

type AskRequest struct {
	Question      string `json:"question" binding:"required"`
	ThreadID      string `json:"thread_id"`
	ForceGeneral  bool   `json:"force_general_mode"`
	ImageBase64   string `json:"image_base64"`
	ImageMimeType string `json:"mime_type"`
}

type AskResponse struct {
	Answer   string   `json:"answer"`
	ThreadID string   `json:"thread_id"`
	Sources  []Source `json:"sources"`
	Type     string   `json:"type"`
}

// ConversationTurn is the history shape returned per thread.
type ConversationTurn struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Sources   []Source  `json:"sources"`
	Timestamp time.Time `json:"timestamp"`
}
