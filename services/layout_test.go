package services

import (
	"strings"
	"testing"
)

func TestAnalyzePageGroupsSameLine(t *testing.T) {
	analyzer := NewLayoutAnalyzer(2.0, 12.0)

	fragments := []TextFragment{
		{Text: "world", X: 50, Y: 700.5, FontSize: 10},
		{Text: "Hello", X: 10, Y: 701.2, FontSize: 10},
	}

	lines := analyzer.AnalyzePage(fragments)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].Text != "Hello world" {
		t.Fatalf("expected fragments joined in X order, got %q", lines[0].Text)
	}
}

func TestAnalyzePageSplitsBeyondTolerance(t *testing.T) {
	analyzer := NewLayoutAnalyzer(2.0, 12.0)

	fragments := []TextFragment{
		{Text: "first", X: 10, Y: 700, FontSize: 10},
		{Text: "second", X: 10, Y: 697, FontSize: 10},
	}

	lines := analyzer.AnalyzePage(fragments)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Text != "first" || lines[1].Text != "second" {
		t.Fatalf("expected top-to-bottom order, got %q then %q", lines[0].Text, lines[1].Text)
	}
}

func TestAnalyzePageDefaultsAndBoldFont(t *testing.T) {
	analyzer := NewLayoutAnalyzer(2.0, 12.0)

	fragments := []TextFragment{
		{Text: "Benefits Overview", X: 10, Y: 700, FontSize: 0, FontName: "Helvetica-Bold"},
	}

	lines := analyzer.AnalyzePage(fragments)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].FontSize != 12 {
		t.Fatalf("expected missing font size to default to 12, got %v", lines[0].FontSize)
	}
	if !lines[0].HasBold {
		t.Fatalf("expected bold detected from font name")
	}
	if !lines[0].IsHeading {
		t.Fatalf("expected bold short line to classify as heading")
	}
}

func TestHeadingClassification(t *testing.T) {
	analyzer := NewLayoutAnalyzer(2.0, 12.0)

	tests := []struct {
		name     string
		fragment TextFragment
		heading  bool
	}{
		{"large font short line", TextFragment{Text: "Vacation Policy", FontSize: 14}, true},
		{"small font plain line", TextFragment{Text: "employees may request", FontSize: 10}, false},
		{"bold small font", TextFragment{Text: "Eligibility", FontSize: 10, Bold: true}, true},
		{"bare number", TextFragment{Text: "3.", FontSize: 14}, false},
		{"page label", TextFragment{Text: "Page 4", FontSize: 14}, false},
		{"page label mixed case", TextFragment{Text: "PAGE 12 of 30", FontSize: 14}, false},
		{"trailing period", TextFragment{Text: "This looks like a sentence.", FontSize: 14}, false},
		{"long line", TextFragment{Text: strings.Repeat("word ", 40), FontSize: 14}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fragment.Y = 700
			lines := analyzer.AnalyzePage([]TextFragment{tt.fragment})
			if len(lines) != 1 {
				t.Fatalf("expected 1 line, got %d", len(lines))
			}
			if lines[0].IsHeading != tt.heading {
				t.Fatalf("IsHeading = %v, want %v for %q", lines[0].IsHeading, tt.heading, lines[0].Text)
			}
		})
	}
}

func TestAnalyzePageDropsEmptyFragments(t *testing.T) {
	analyzer := NewLayoutAnalyzer(2.0, 12.0)

	if lines := analyzer.AnalyzePage([]TextFragment{{Text: "   ", Y: 700}}); lines != nil {
		t.Fatalf("expected nil for whitespace-only page, got %v", lines)
	}
	if lines := analyzer.AnalyzePage(nil); lines != nil {
		t.Fatalf("expected nil for empty page, got %v", lines)
	}
}
