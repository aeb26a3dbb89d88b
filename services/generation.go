package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/OussamaHaimour/chatbot-HCP/internal/config"
)

// Generation parameters are fixed per call, not user-tunable.
const (
	genTemperature     = 0.7
	genTopP            = 0.95
	genTopK            = 40
	genMaxOutputTokens = 1024
)

const documentPromptTemplate = `You are a professional assistant helping with document-based inquiries. Answer the question using ONLY the information provided in the context below.

Context from documents:
%s

Question: %s

Instructions:
- Base your answer strictly on the provided context
- If the context doesn't contain sufficient information to fully answer the question, clearly state this
- Be precise and professional
- Structure your response clearly
- If you reference specific information, you may mention it comes from the provided documents
- Do not make assumptions beyond what's stated in the context`

const generalPromptTemplate = `You are a helpful and friendly AI assistant. Answer the following question in a natural, conversational manner. Be informative but concise, and maintain a professional yet warm tone.

Question: %s

Guidelines:
- Provide helpful and accurate information
- Keep responses clear and well-structured
- If you're not certain about something, acknowledge the limitation
- Be conversational but professional
- Aim for 2-4 sentences unless the question requires more detail
- If an image is provided, analyze it to assist with your answer`

// InlineImage is an image passed alongside a general-knowledge question.
type InlineImage struct {
	MIMEType string
	Data     []byte
}

// GenerationService wraps the Gemini API for answer generation.
type GenerationService struct {
	client *genai.Client
	model  string
}

func NewGenerationService(ctx context.Context, cfg *config.Config) (*GenerationService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GenerationService{client: client, model: cfg.GeminiModel}, nil
}

func (s *GenerationService) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// GenerateDocumentAnswer answers strictly from the retrieved chunk texts.
// Document mode carries no image support.
func (s *GenerationService) GenerateDocumentAnswer(ctx context.Context, question, contextText string) (string, error) {
	if contextText == "" {
		contextText = "No context provided"
	}
	prompt := fmt.Sprintf(documentPromptTemplate, contextText, question)
	return s.generate(ctx, genai.Text(prompt))
}

// GenerateGeneralAnswer answers without document context, optionally grounded
// on an attached image.
func (s *GenerationService) GenerateGeneralAnswer(ctx context.Context, question string, image *InlineImage) (string, error) {
	parts := []genai.Part{genai.Text(fmt.Sprintf(generalPromptTemplate, question))}
	if image != nil {
		format := strings.TrimPrefix(image.MIMEType, "image/")
		parts = append(parts, genai.Blob{MIMEType: "image/" + format, Data: image.Data})
	}
	return s.generate(ctx, parts...)
}

func (s *GenerationService) generate(ctx context.Context, parts ...genai.Part) (string, error) {
	model := s.client.GenerativeModel(s.model)
	model.SetTemperature(genTemperature)
	model.SetTopP(genTopP)
	model.SetTopK(genTopK)
	model.SetMaxOutputTokens(genMaxOutputTokens)

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no candidates in generation response")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("empty generation response")
	}
	return b.String(), nil
}

// DegradedMessage maps an external-capability error to the user-facing
// message for its cause. The technical error is logged by the caller, never
// shown verbatim.
func DegradedMessage(err error) string {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 429:
			return "I'm currently experiencing high demand. Please wait a moment and try your question again."
		case apiErr.Code >= 500:
			return "I'm having trouble with my processing systems right now. Please try again shortly."
		}
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return "The request is taking longer than expected. Please try again with a shorter question."
	}

	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) {
		return "I'm having trouble connecting to my knowledge systems. Please check your connection and try again."
	}

	return "I apologize, but I'm experiencing some technical difficulties right now. Please try again in a moment."
}
