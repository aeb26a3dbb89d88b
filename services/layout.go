package services

import (
	"regexp"
	"sort"
	"strings"
)

// TextFragment is one positioned piece of text extracted from a page, with the
// layout metadata needed to reconstruct reading order and spot headings.
type TextFragment struct {
	Text     string
	FontSize float64
	X        float64
	Y        float64
	FontName string
	Bold     bool
}

// ClassifiedLine is one visual line of a page after grouping and heading
// classification.
type ClassifiedLine struct {
	Text        string
	IsHeading   bool
	FontSize    float64
	AvgFontSize float64
	HasBold     bool
}

// LayoutAnalyzer groups positioned fragments into visual lines and classifies
// each line as heading or body text. The tolerance is the vertical band width
// within which fragments are considered part of the same line; the font size
// threshold is the minimum size that marks a heading.
type LayoutAnalyzer struct {
	lineTolerance      float64
	headingMinFontSize float64
}

const defaultFontSize = 12.0

var (
	bareNumberPattern = regexp.MustCompile(`^\d+\.?\s*$`)
	pageLabelPattern  = regexp.MustCompile(`(?i)^page\s+\d+`)
)

func NewLayoutAnalyzer(lineTolerance, headingMinFontSize float64) *LayoutAnalyzer {
	return &LayoutAnalyzer{
		lineTolerance:      lineTolerance,
		headingMinFontSize: headingMinFontSize,
	}
}

// AnalyzePage turns the unordered fragments of one page into an ordered
// sequence of classified lines. A page with no usable fragments yields nil.
func (a *LayoutAnalyzer) AnalyzePage(fragments []TextFragment) []ClassifiedLine {
	cleaned := make([]TextFragment, 0, len(fragments))
	for _, frag := range fragments {
		frag.Text = strings.TrimSpace(frag.Text)
		if frag.Text == "" {
			continue
		}
		if frag.FontSize == 0 {
			frag.FontSize = defaultFontSize
		}
		if !frag.Bold {
			frag.Bold = strings.Contains(strings.ToLower(frag.FontName), "bold")
		}
		cleaned = append(cleaned, frag)
	}
	if len(cleaned) == 0 {
		return nil
	}

	lines := a.groupIntoLines(cleaned)

	classified := make([]ClassifiedLine, 0, len(lines))
	for _, line := range lines {
		cl := a.classifyLine(line)
		if strings.TrimSpace(cl.Text) == "" {
			continue
		}
		classified = append(classified, cl)
	}
	return classified
}

// groupIntoLines sweeps the fragments top-to-bottom, left-to-right and starts
// a new line whenever a fragment falls outside the current line's vertical
// band. Each finished line is re-sorted by X; fragments can arrive slightly
// out of horizontal order within a band.
func (a *LayoutAnalyzer) groupIntoLines(fragments []TextFragment) [][]TextFragment {
	sorted := make([]TextFragment, len(fragments))
	copy(sorted, fragments)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var lines [][]TextFragment
	var current []TextFragment
	var lineY float64

	for _, frag := range sorted {
		if current == nil {
			current = []TextFragment{frag}
			lineY = frag.Y
			continue
		}
		if abs(frag.Y-lineY) <= a.lineTolerance {
			current = append(current, frag)
			continue
		}
		lines = append(lines, sortByX(current))
		current = []TextFragment{frag}
		lineY = frag.Y
	}
	if len(current) > 0 {
		lines = append(lines, sortByX(current))
	}

	return lines
}

func (a *LayoutAnalyzer) classifyLine(line []TextFragment) ClassifiedLine {
	parts := make([]string, len(line))
	maxFontSize := 0.0
	sumFontSize := 0.0
	hasBold := false

	for i, frag := range line {
		parts[i] = frag.Text
		if frag.FontSize > maxFontSize {
			maxFontSize = frag.FontSize
		}
		sumFontSize += frag.FontSize
		if frag.Bold {
			hasBold = true
		}
	}

	text := strings.TrimSpace(strings.Join(parts, " "))

	isHeading := (maxFontSize >= a.headingMinFontSize || hasBold) &&
		len(text) < 150 &&
		len(text) > 0 &&
		!bareNumberPattern.MatchString(text) &&
		!pageLabelPattern.MatchString(text) &&
		!strings.HasSuffix(text, ".")

	return ClassifiedLine{
		Text:        text,
		IsHeading:   isHeading,
		FontSize:    maxFontSize,
		AvgFontSize: sumFontSize / float64(len(line)),
		HasBold:     hasBold,
	}
}

func sortByX(line []TextFragment) []TextFragment {
	sort.SliceStable(line, func(i, j int) bool { return line[i].X < line[j].X })
	return line
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
