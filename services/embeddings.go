package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/OussamaHaimour/chatbot-HCP/internal/config"
)

// EmbeddingsClient talks to the embeddings sidecar, which exposes text
// embedding plus OCR, captioning and a health probe. Embedding calls rely on
// the transport's default timeout; the image and health calls get a bounded
// wait because the models behind them can stall.
type EmbeddingsClient struct {
	baseURL       string
	httpClient    *http.Client
	boundedClient *http.Client
	dimensions    int
}

type embedRequest struct {
	Text string `json:"text"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
	Error     string    `json:"error,omitempty"`
}

type imageRequest struct {
	Image string `json:"image"`
}

type ocrResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

type captionResponse struct {
	Caption string `json:"caption"`
	Error   string `json:"error,omitempty"`
}

// HealthStatus is the sidecar's health probe payload.
type HealthStatus struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

func NewEmbeddingsClient(cfg *config.Config) *EmbeddingsClient {
	return &EmbeddingsClient{
		baseURL:    cfg.EmbeddingsAPIURL,
		httpClient: &http.Client{},
		boundedClient: &http.Client{
			Timeout: time.Duration(cfg.EmbeddingsTimeout) * time.Second,
		},
		dimensions: cfg.VectorDimensions,
	}
}

// Embed returns the embedding vector for text. The dimension is validated
// against the persisted vector column width.
func (c *EmbeddingsClient) Embed(ctx context.Context, text string) ([]float32, error) {
	var resp embedResponse
	if err := c.postJSON(ctx, c.httpClient, "/embed", embedRequest{Text: text}, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("embeddings API error: %s", resp.Error)
	}
	if len(resp.Embedding) != c.dimensions {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(resp.Embedding), c.dimensions)
	}
	return resp.Embedding, nil
}

// OCR extracts text from a base64-encoded PNG.
func (c *EmbeddingsClient) OCR(ctx context.Context, imageBase64 string) (string, error) {
	var resp ocrResponse
	if err := c.postJSON(ctx, c.boundedClient, "/ocr", imageRequest{Image: imageBase64}, &resp); err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", fmt.Errorf("OCR error: %s", resp.Error)
	}
	return resp.Text, nil
}

// Caption produces a descriptive caption for a base64-encoded PNG.
func (c *EmbeddingsClient) Caption(ctx context.Context, imageBase64 string) (string, error) {
	var resp captionResponse
	if err := c.postJSON(ctx, c.boundedClient, "/generate-caption", imageRequest{Image: imageBase64}, &resp); err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", fmt.Errorf("caption error: %s", resp.Error)
	}
	return resp.Caption, nil
}

// Health probes the sidecar.
func (c *EmbeddingsClient) Health(ctx context.Context) (*HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create health request: %w", err)
	}

	resp, err := c.boundedClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embeddings API unhealthy: status %d", resp.StatusCode)
	}

	var status HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode health response: %w", err)
	}
	return &status, nil
}

func (c *EmbeddingsClient) postJSON(ctx context.Context, client *http.Client, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("embeddings API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("embeddings API returned status %d: %s", resp.StatusCode, string(raw))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
