package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/OussamaHaimour/chatbot-HCP/internal/logger"
	"github.com/OussamaHaimour/chatbot-HCP/models"
	"github.com/OussamaHaimour/chatbot-HCP/utils"
)

// Image extraction modes.
const (
	ImageModeOCR     = "ocr"
	ImageModeCaption = "caption"
)

// Validation failures surfaced before or instead of persistence. Callers
// branch on these to distinguish bad input from degraded externals.
var (
	ErrEmptyExtraction  = errors.New("no content extracted")
	ErrInvalidImageMode = errors.New("invalid image extraction mode")
	ErrNoRows           = errors.New("no rows found")
)

// FileStore persists files and their chunks.
type FileStore interface {
	CreateFile(ctx context.Context, file *models.File) error
	InsertChunk(ctx context.Context, chunk *models.Chunk) error
}

// Embedder maps text to a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ImageReader extracts text from or captions a base64-encoded PNG.
type ImageReader interface {
	OCR(ctx context.Context, imageBase64 string) (string, error)
	Caption(ctx context.Context, imageBase64 string) (string, error)
}

// PageSource yields the positioned text fragments of a paginated document.
type PageSource interface {
	NumPages() int
	PageFragments(pageNum int) []TextFragment
}

// IngestionService drives extraction, chunking, embedding and persistence for
// every supported source type. Each driver is a sequential procedure: the
// file record is created first, then chunks are embedded and persisted one at
// a time. A failure partway through leaves earlier chunks in place; ingestion
// is not transactional across pages or rows.
type IngestionService struct {
	store    FileStore
	embedder Embedder
	images   ImageReader
	layout   *LayoutAnalyzer
	chunker  *Chunker
}

func NewIngestionService(store FileStore, embedder Embedder, images ImageReader, layout *LayoutAnalyzer, chunker *Chunker) *IngestionService {
	return &IngestionService{
		store:    store,
		embedder: embedder,
		images:   images,
		layout:   layout,
		chunker:  chunker,
	}
}

// IngestPDF processes a paginated document from startPage (1-based) through
// the last page.
func (s *IngestionService) IngestPDF(ctx context.Context, userID int64, fileName string, data []byte, startPage int) error {
	doc, err := OpenPDF(data)
	if err != nil {
		return err
	}

	file := &models.File{
		UserID:   userID,
		FileName: fileName,
		FileType: "application/pdf",
		FileData: data,
	}
	if err := s.store.CreateFile(ctx, file); err != nil {
		return fmt.Errorf("failed to create file record: %w", err)
	}

	return s.ingestPages(ctx, file.ID, fileName, doc, startPage)
}

// ingestPages walks the document page by page. Pages without extractable text
// are skipped; a startPage below 1 is clamped to the first page.
func (s *IngestionService) ingestPages(ctx context.Context, fileID int64, fileName string, doc PageSource, startPage int) error {
	if startPage < 1 {
		startPage = 1
	}

	numPages := doc.NumPages()
	logger.Info("processing PDF", "file", fileName, "pages", numPages, "start_page", startPage)

	for pageNum := startPage; pageNum <= numPages; pageNum++ {
		fragments := doc.PageFragments(pageNum)
		if len(fragments) == 0 {
			logger.Info("page has no text content, skipping", "file", fileName, "page", pageNum)
			continue
		}

		lines := s.layout.AnalyzePage(fragments)
		if len(lines) == 0 {
			logger.Info("page has no usable lines, skipping", "file", fileName, "page", pageNum)
			continue
		}

		chunks := s.chunker.ChunkLines(lines, models.SourcePDF, pageNum)
		logger.Debug("page chunked", "file", fileName, "page", pageNum, "chunks", len(chunks))

		for _, draft := range chunks {
			if err := s.persistChunk(ctx, fileID, draft); err != nil {
				return err
			}
		}
	}

	return nil
}

// IngestImage normalizes the image to PNG and dispatches to OCR or
// captioning, producing exactly one chunk. An empty extraction is an error.
func (s *IngestionService) IngestImage(ctx context.Context, userID int64, fileName, mimeType string, data []byte, mode string) error {
	if mode != ImageModeOCR && mode != ImageModeCaption {
		return fmt.Errorf("%w: %q", ErrInvalidImageMode, mode)
	}

	normalized, err := utils.NormalizePNG(data)
	if err != nil {
		return err
	}
	encoded := base64.StdEncoding.EncodeToString(normalized)

	file := &models.File{
		UserID:   userID,
		FileName: fileName,
		FileType: mimeType,
		FileData: data,
	}
	if err := s.store.CreateFile(ctx, file); err != nil {
		return fmt.Errorf("failed to create file record: %w", err)
	}

	var text, method string
	switch mode {
	case ImageModeOCR:
		text, err = s.images.OCR(ctx, encoded)
		method = models.MethodOCR
	case ImageModeCaption:
		text, err = s.images.Caption(ctx, encoded)
		method = models.MethodCaption
	}
	if err != nil {
		return err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("%w from image", ErrEmptyExtraction)
	}

	return s.persistChunk(ctx, file.ID, ChunkDraft{
		Text:             text,
		SourceType:       models.SourceImage,
		ProcessingMethod: method,
		TokenCount:       CountTokens(text),
	})
}

// IngestCSV decodes all rows eagerly and emits one chunk per data row, keyed
// by the header row.
func (s *IngestionService) IngestCSV(ctx context.Context, userID int64, fileName string, data []byte) error {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(rows) < 2 {
		return ErrNoRows
	}

	file := &models.File{
		UserID:   userID,
		FileName: fileName,
		FileType: "text/csv",
		FileData: data,
	}
	if err := s.store.CreateFile(ctx, file); err != nil {
		return fmt.Errorf("failed to create file record: %w", err)
	}

	return s.ingestRows(ctx, file.ID, models.SourceCSV, rows[0], rows[1:])
}

// IngestXLSX reads the first sheet of a spreadsheet and applies the same
// one-chunk-per-row policy as CSV.
func (s *IngestionService) IngestXLSX(ctx context.Context, userID int64, fileName, mimeType string, data []byte) error {
	workbook, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return ErrNoRows
	}
	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return ErrNoRows
	}

	file := &models.File{
		UserID:   userID,
		FileName: fileName,
		FileType: mimeType,
		FileData: data,
	}
	if err := s.store.CreateFile(ctx, file); err != nil {
		return fmt.Errorf("failed to create file record: %w", err)
	}

	return s.ingestRows(ctx, file.ID, models.SourceExcel, rows[0], rows[1:])
}

// IngestText stores a freeform text submission as exactly one chunk.
func (s *IngestionService) IngestText(ctx context.Context, userID int64, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyExtraction
	}

	file := &models.File{
		UserID:   userID,
		FileName: fmt.Sprintf("text_%d.txt", time.Now().UnixMilli()),
		FileType: "text/plain",
	}
	if err := s.store.CreateFile(ctx, file); err != nil {
		return fmt.Errorf("failed to create file record: %w", err)
	}

	return s.persistChunk(ctx, file.ID, ChunkDraft{
		Text:             text,
		SourceType:       models.SourceText,
		ProcessingMethod: models.MethodText,
		TokenCount:       CountTokens(text),
	})
}

func (s *IngestionService) ingestRows(ctx context.Context, fileID int64, sourceType string, header []string, rows [][]string) error {
	for i, row := range rows {
		draft := RowChunk(RowRecord{Keys: header, Values: row}, sourceType, i+1)
		if err := s.persistChunk(ctx, fileID, draft); err != nil {
			return err
		}
	}
	return nil
}

// persistChunk embeds the chunk text and stores the chunk under its file.
// The embedding call is issued and awaited before the next chunk is started,
// keeping insertion order deterministic.
func (s *IngestionService) persistChunk(ctx context.Context, fileID int64, draft ChunkDraft) error {
	embedding, err := s.embedder.Embed(ctx, draft.Text)
	if err != nil {
		return fmt.Errorf("embedding failed: %w", err)
	}

	chunk := &models.Chunk{
		FileID:           fileID,
		ChunkText:        draft.Text,
		SourceType:       draft.SourceType,
		PageNumber:       draft.PageNumber,
		ProcessingMethod: draft.ProcessingMethod,
		Embedding:        embedding,
	}
	if err := s.store.InsertChunk(ctx, chunk); err != nil {
		return fmt.Errorf("failed to persist chunk: %w", err)
	}
	return nil
}
