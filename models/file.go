package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Source types recorded on chunks, keyed by the declared content type of the upload.
const (
	SourcePDF   = "pdf"
	SourceImage = "image"
	SourceCSV   = "csv"
	SourceExcel = "excel"
	SourceText  = "text"
)

// Processing methods describing how a chunk's text was obtained.
const (
	MethodText    = "text"
	MethodOCR     = "ocr"
	MethodCaption = "caption"
)

type File struct {
	bun.BaseModel `bun:"table:files,alias:f"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID    int64     `bun:"user_id,notnull" json:"user_id"`
	FileName  string    `bun:"file_name,notnull" json:"file_name"`
	FileType  string    `bun:"file_type,notnull" json:"file_type"`
	FileData  []byte    `bun:"file_data" json:"-"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// Chunk is the atomic retrievable unit: a span of text with provenance and a
// fixed-dimension embedding vector. A chunk always belongs to exactly one file.
type Chunk struct {
	bun.BaseModel `bun:"table:chunks,alias:c"`

	ID               int64     `bun:"id,pk,autoincrement" json:"id"`
	FileID           int64     `bun:"file_id,notnull" json:"file_id"`
	ChunkText        string    `bun:"chunk_text,notnull" json:"chunk_text"`
	SourceType       string    `bun:"source_type,notnull" json:"source_type"`
	PageNumber       int       `bun:"page_number,nullzero" json:"page_number,omitempty"`
	ProcessingMethod string    `bun:"processing_method,default:'text'" json:"processing_method"`
	Embedding        []float32 `bun:"embedding,type:vector(384)" json:"-"`
	CreatedAt        time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// Image is an optional attachment to a chunk (figures or charts lifted out of a
// page). Not used by the retrieval path.
type Image struct {
	bun.BaseModel `bun:"table:images,alias:i"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	ChunkID      int64     `bun:"chunk_id,notnull" json:"chunk_id"`
	ImageData    []byte    `bun:"image_data" json:"-"`
	Caption      string    `bun:"caption" json:"caption,omitempty"`
	IsChart      bool      `bun:"is_chart,default:false" json:"is_chart"`
	PositionInfo string    `bun:"position_info,type:jsonb,nullzero" json:"position_info,omitempty"`
	CreatedAt    time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// Result tiers for the two-stage priority search.
const (
	TierCurated  = "curated"
	TierPersonal = "personal"
)

// ScoredChunk is one similarity-search hit joined with its file name.
type ScoredChunk struct {
	ChunkText        string  `bun:"chunk_text" json:"chunk_text"`
	SourceType       string  `bun:"source_type" json:"source_type"`
	PageNumber       int     `bun:"page_number" json:"page_number,omitempty"`
	ProcessingMethod string  `bun:"processing_method" json:"processing_method"`
	FileName         string  `bun:"file_name" json:"file_name"`
	Similarity       float64 `bun:"similarity" json:"similarity"`
	Tier             string  `bun:"-" json:"tier"`
}

// Source is the provenance entry returned to callers alongside an answer.
type Source struct {
	File   string `json:"file"`
	Page   int    `json:"page,omitempty"`
	Type   string `json:"type"`
	Method string `json:"method"`
	From   string `json:"from"`
}

func (s ScoredChunk) Source() Source {
	return Source{
		File:   s.FileName,
		Page:   s.PageNumber,
		Type:   s.SourceType,
		Method: s.ProcessingMethod,
		From:   s.Tier,
	}
}

// FileInfo is the listing shape for an owner's uploads (no raw bytes).
type FileInfo struct {
	ID        int64     `bun:"id" json:"id"`
	FileName  string    `bun:"file_name" json:"file_name"`
	FileType  string    `bun:"file_type" json:"file_type"`
	CreatedAt time.Time `bun:"created_at" json:"created_at"`
}
