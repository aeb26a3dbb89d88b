package services

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PDFDocument gives page-wise access to the positioned text fragments of a
// PDF, the raw input of the layout analyzer.
type PDFDocument struct {
	reader *pdf.Reader
}

func OpenPDF(data []byte) (*PDFDocument, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	return &PDFDocument{reader: reader}, nil
}

func (d *PDFDocument) NumPages() int {
	return d.reader.NumPage()
}

// PageFragments returns the positioned fragments of the 1-based page. A page
// with no extractable text returns nil; the caller skips it.
func (d *PDFDocument) PageFragments(pageNum int) []TextFragment {
	page := d.reader.Page(pageNum)
	if page.V.IsNull() {
		return nil
	}

	content := page.Content()
	if len(content.Text) == 0 {
		return nil
	}

	fragments := make([]TextFragment, 0, len(content.Text))
	for _, t := range content.Text {
		fragments = append(fragments, TextFragment{
			Text:     t.S,
			FontSize: t.FontSize,
			X:        t.X,
			Y:        t.Y,
			FontName: t.Font,
		})
	}
	return fragments
}
