// Package document extracts plain text from the resume and job description files
// users upload or point the CLI at.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

var (
	// ErrUnsupported is returned for file types without an extractor.
	ErrUnsupported = errors.New("unsupported file type")
	// ErrNoText is returned when a file holds no readable text.
	ErrNoText = errors.New("no text content found")
)

// Kind is a supported input format.
type Kind string

const (
	KindText Kind = "text"
	KindPDF  Kind = "pdf"
	KindDocx Kind = "docx"
)

var kindsByExt = map[string]Kind{
	"":          KindText,
	".txt":      KindText,
	".md":       KindText,
	".markdown": KindText,
	".pdf":      KindPDF,
	".docx":     KindDocx,
}

var (
	docxParagraphEnd = regexp.MustCompile(`</w:p>|<w:br[^>]*/>|<w:tab[^>]*/>`)
	xmlTag           = regexp.MustCompile(`<[^>]+>`)
	blankLines       = regexp.MustCompile(`\n{3,}`)
)

// KindOf maps a file name to its format by extension.
func KindOf(name string) (Kind, error) {
	ext := strings.ToLower(filepath.Ext(name))
	kind, ok := kindsByExt[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
	return kind, nil
}

// ReadFile loads and extracts the text of the file at path.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return Extract(filepath.Base(path), data)
}

// Extract returns the text of data, choosing the extractor from name's extension.
func Extract(name string, data []byte) (string, error) {
	kind, err := KindOf(name)
	if err != nil {
		return "", err
	}

	var text string
	switch kind {
	case KindPDF:
		text, err = pdfText(data)
	case KindDocx:
		text, err = docxText(data)
	default:
		text = plainText(data)
	}
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", name, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("extract %s: %w", name, ErrNoText)
	}

	return text, nil
}

func plainText(data []byte) string {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return strings.ToValidUTF8(string(data), "")
	}
	return string(data)
}

func pdfText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var builder strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// a single unreadable page should not discard the rest of the document
			continue
		}

		builder.WriteString(text)
		builder.WriteString("\n\n")
	}

	return builder.String(), nil
}

func docxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer doc.Close()

	return documentXMLText(doc.Editable().GetContent()), nil
}

// documentXMLText turns WordprocessingML body markup into plain text, one line per
// paragraph.
func documentXMLText(content string) string {
	content = docxParagraphEnd.ReplaceAllString(content, "\n")
	content = xmlTag.ReplaceAllString(content, "")
	content = html.UnescapeString(content)

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}

	return blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
}
