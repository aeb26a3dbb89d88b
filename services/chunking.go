package services

import (
	"encoding/json"
	"strings"
)

// ChunkDraft is a chunk before embedding and persistence.
type ChunkDraft struct {
	Text             string
	SourceType       string
	PageNumber       int
	ProcessingMethod string
	TokenCount       int
}

// Chunker builds token-budgeted chunks from classified lines. Tokens here are
// whitespace-delimited words, a coarse sizing measure only. Chunks grow toward
// the [min, max] window: the accumulator is flushed before a line that would
// push it past max, and as soon as it reaches min. The end-of-input remainder
// is always emitted, however short.
type Chunker struct {
	minTokens int
	maxTokens int
}

func NewChunker(minTokens, maxTokens int) *Chunker {
	return &Chunker{minTokens: minTokens, maxTokens: maxTokens}
}

// CountTokens returns the whitespace-delimited word count of text.
func CountTokens(text string) int {
	return len(strings.Fields(text))
}

// ChunkLines windows the classified lines of one page into chunks. Every
// non-final chunk lands inside the token window unless a single line alone
// exceeds max; such a line becomes its own oversized chunk, never split.
func (c *Chunker) ChunkLines(lines []ClassifiedLine, sourceType string, pageNumber int) []ChunkDraft {
	var chunks []ChunkDraft
	var current []string
	currentTokens := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		text := strings.TrimSpace(strings.Join(current, " "))
		chunks = append(chunks, ChunkDraft{
			Text:             text,
			SourceType:       sourceType,
			PageNumber:       pageNumber,
			ProcessingMethod: "text",
			TokenCount:       CountTokens(text),
		})
		current = nil
		currentTokens = 0
	}

	for _, line := range lines {
		lineTokens := CountTokens(line.Text)

		if currentTokens+lineTokens > c.maxTokens {
			flush()
		}

		current = append(current, line.Text)
		currentTokens += lineTokens

		if currentTokens >= c.minTokens {
			flush()
		}
	}
	flush()

	return chunks
}

// RowRecord is one flattened tabular row: column names paired with cell values
// in column order.
type RowRecord struct {
	Keys   []string
	Values []string
}

// RowChunk serializes a tabular record as a single chunk. Each row is an
// atomic semantic unit, so no windowing is applied; rowIndex is 1-based.
func RowChunk(record RowRecord, sourceType string, rowIndex int) ChunkDraft {
	text := serializeRecord(record)
	return ChunkDraft{
		Text:             text,
		SourceType:       sourceType,
		PageNumber:       rowIndex,
		ProcessingMethod: "text",
		TokenCount:       CountTokens(text),
	}
}

// serializeRecord renders the record as a JSON object preserving column order.
func serializeRecord(record RowRecord) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, key := range record.Keys {
		if i > 0 {
			b.WriteByte(',')
		}
		k, _ := json.Marshal(key)
		b.Write(k)
		b.WriteByte(':')
		value := ""
		if i < len(record.Values) {
			value = record.Values[i]
		}
		v, _ := json.Marshal(value)
		b.Write(v)
	}
	b.WriteByte('}')
	return b.String()
}
