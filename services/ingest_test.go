package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/OussamaHaimour/chatbot-HCP/models"
)

type fakeFileStore struct {
	files  []*models.File
	chunks []*models.Chunk
	nextID int64
}

func (f *fakeFileStore) CreateFile(ctx context.Context, file *models.File) error {
	f.nextID++
	file.ID = f.nextID
	f.files = append(f.files, file)
	return nil
}

func (f *fakeFileStore) InsertChunk(ctx context.Context, chunk *models.Chunk) error {
	f.chunks = append(f.chunks, chunk)
	return nil
}

type fakeEmbedder struct {
	calls int
	err   error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeImageReader struct {
	ocrText string
	caption string
}

func (f *fakeImageReader) OCR(ctx context.Context, imageBase64 string) (string, error) {
	return f.ocrText, nil
}

func (f *fakeImageReader) Caption(ctx context.Context, imageBase64 string) (string, error) {
	return f.caption, nil
}

func newTestIngestion(store *fakeFileStore, embedder *fakeEmbedder, images *fakeImageReader) *IngestionService {
	return NewIngestionService(store, embedder, images,
		NewLayoutAnalyzer(2.0, 12.0), NewChunker(400, 500))
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("failed to build test image: %v", err)
	}
	return buf.Bytes()
}

type fakePageSource struct {
	pages [][]TextFragment
}

func (f *fakePageSource) NumPages() int { return len(f.pages) }

func (f *fakePageSource) PageFragments(pageNum int) []TextFragment {
	return f.pages[pageNum-1]
}

func TestIngestPagesSkipsEmptyPages(t *testing.T) {
	store := &fakeFileStore{}
	svc := newTestIngestion(store, &fakeEmbedder{}, &fakeImageReader{})

	doc := &fakePageSource{pages: [][]TextFragment{
		nil,
		{{Text: repeatWords("policy", 450), Y: 700, FontSize: 10}},
	}}

	if err := svc.ingestPages(context.Background(), 1, "handbook.pdf", doc, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(store.chunks))
	}
	chunk := store.chunks[0]
	if chunk.PageNumber != 2 {
		t.Fatalf("chunk page = %d, want 2", chunk.PageNumber)
	}
	if chunk.SourceType != models.SourcePDF {
		t.Fatalf("source type = %q, want %q", chunk.SourceType, models.SourcePDF)
	}
	if n := CountTokens(chunk.ChunkText); n != 450 {
		t.Fatalf("chunk tokens = %d, want 450", n)
	}
}

func TestIngestPagesClampsStartPage(t *testing.T) {
	store := &fakeFileStore{}
	svc := newTestIngestion(store, &fakeEmbedder{}, &fakeImageReader{})

	doc := &fakePageSource{pages: [][]TextFragment{
		{{Text: "only page", Y: 700, FontSize: 10}},
	}}

	if err := svc.ingestPages(context.Background(), 1, "doc.pdf", doc, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.chunks) != 1 {
		t.Fatalf("start page 0 must clamp to 1, got %d chunks", len(store.chunks))
	}
}

func TestIngestPagesHonorsStartPage(t *testing.T) {
	store := &fakeFileStore{}
	svc := newTestIngestion(store, &fakeEmbedder{}, &fakeImageReader{})

	doc := &fakePageSource{pages: [][]TextFragment{
		{{Text: "cover page", Y: 700, FontSize: 10}},
		{{Text: "body page", Y: 700, FontSize: 10}},
	}}

	if err := svc.ingestPages(context.Background(), 1, "doc.pdf", doc, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(store.chunks))
	}
	if store.chunks[0].PageNumber != 2 {
		t.Fatalf("chunk page = %d, want 2", store.chunks[0].PageNumber)
	}
	if store.chunks[0].ChunkText != "body page" {
		t.Fatalf("chunk text = %q", store.chunks[0].ChunkText)
	}
}

func TestIngestText(t *testing.T) {
	store := &fakeFileStore{}
	embedder := &fakeEmbedder{}
	svc := newTestIngestion(store, embedder, &fakeImageReader{})

	if err := svc.IngestText(context.Background(), 1, "  benefits start after 90 days  "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.files) != 1 {
		t.Fatalf("expected 1 file record, got %d", len(store.files))
	}
	if store.files[0].FileType != "text/plain" {
		t.Fatalf("file type = %q, want text/plain", store.files[0].FileType)
	}
	if len(store.chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(store.chunks))
	}
	chunk := store.chunks[0]
	if chunk.ChunkText != "benefits start after 90 days" {
		t.Fatalf("chunk text = %q", chunk.ChunkText)
	}
	if chunk.SourceType != models.SourceText {
		t.Fatalf("source type = %q, want %q", chunk.SourceType, models.SourceText)
	}
	if len(chunk.Embedding) == 0 {
		t.Fatalf("chunk not embedded")
	}
}

func TestIngestTextEmpty(t *testing.T) {
	svc := newTestIngestion(&fakeFileStore{}, &fakeEmbedder{}, &fakeImageReader{})
	if err := svc.IngestText(context.Background(), 1, "   "); !errors.Is(err, ErrEmptyExtraction) {
		t.Fatalf("expected ErrEmptyExtraction, got %v", err)
	}
}

func TestIngestImageOCR(t *testing.T) {
	store := &fakeFileStore{}
	svc := newTestIngestion(store, &fakeEmbedder{}, &fakeImageReader{ocrText: " Total due: 42 "})

	err := svc.IngestImage(context.Background(), 1, "receipt.png", "image/png", tinyPNG(t), ImageModeOCR)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(store.chunks))
	}
	chunk := store.chunks[0]
	if chunk.ChunkText != "Total due: 42" {
		t.Fatalf("chunk text = %q", chunk.ChunkText)
	}
	if chunk.ProcessingMethod != models.MethodOCR {
		t.Fatalf("method = %q, want %q", chunk.ProcessingMethod, models.MethodOCR)
	}
}

func TestIngestImageCaption(t *testing.T) {
	store := &fakeFileStore{}
	svc := newTestIngestion(store, &fakeEmbedder{}, &fakeImageReader{caption: "a signed contract on a desk"})

	err := svc.IngestImage(context.Background(), 1, "photo.jpg", "image/jpeg", tinyPNG(t), ImageModeCaption)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.chunks[0].ProcessingMethod != models.MethodCaption {
		t.Fatalf("method = %q, want %q", store.chunks[0].ProcessingMethod, models.MethodCaption)
	}
}

func TestIngestImageEmptyExtraction(t *testing.T) {
	svc := newTestIngestion(&fakeFileStore{}, &fakeEmbedder{}, &fakeImageReader{ocrText: "   "})

	err := svc.IngestImage(context.Background(), 1, "blank.png", "image/png", tinyPNG(t), ImageModeOCR)
	if !errors.Is(err, ErrEmptyExtraction) {
		t.Fatalf("expected ErrEmptyExtraction, got %v", err)
	}
}

func TestIngestImageInvalidMode(t *testing.T) {
	svc := newTestIngestion(&fakeFileStore{}, &fakeEmbedder{}, &fakeImageReader{})

	err := svc.IngestImage(context.Background(), 1, "a.png", "image/png", tinyPNG(t), "transcribe")
	if !errors.Is(err, ErrInvalidImageMode) {
		t.Fatalf("expected ErrInvalidImageMode, got %v", err)
	}
}

func TestIngestCSV(t *testing.T) {
	store := &fakeFileStore{}
	embedder := &fakeEmbedder{}
	svc := newTestIngestion(store, embedder, &fakeImageReader{})

	data := []byte("name,department\nAmira,Finance\nSam,Legal\n")
	if err := svc.IngestCSV(context.Background(), 1, "staff.csv", data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(store.chunks))
	}
	if store.chunks[0].ChunkText != `{"name":"Amira","department":"Finance"}` {
		t.Fatalf("first row text = %s", store.chunks[0].ChunkText)
	}
	if store.chunks[0].PageNumber != 1 || store.chunks[1].PageNumber != 2 {
		t.Fatalf("row indexes = %d, %d, want 1, 2", store.chunks[0].PageNumber, store.chunks[1].PageNumber)
	}
	if embedder.calls != 2 {
		t.Fatalf("embedder calls = %d, want 2", embedder.calls)
	}
}

func TestIngestCSVHeaderOnly(t *testing.T) {
	svc := newTestIngestion(&fakeFileStore{}, &fakeEmbedder{}, &fakeImageReader{})

	err := svc.IngestCSV(context.Background(), 1, "empty.csv", []byte("name,department\n"))
	if !errors.Is(err, ErrNoRows) {
		t.Fatalf("expected ErrNoRows, got %v", err)
	}
}

func TestIngestCSVEmbeddingFailureStops(t *testing.T) {
	store := &fakeFileStore{}
	embedder := &fakeEmbedder{err: errors.New("sidecar down")}
	svc := newTestIngestion(store, embedder, &fakeImageReader{})

	data := []byte("name\nAmira\nSam\n")
	err := svc.IngestCSV(context.Background(), 1, "staff.csv", data)
	if err == nil || !strings.Contains(err.Error(), "embedding failed") {
		t.Fatalf("expected wrapped embedding error, got %v", err)
	}
	if len(store.chunks) != 0 {
		t.Fatalf("no chunks should persist after embedding failure, got %d", len(store.chunks))
	}
}
