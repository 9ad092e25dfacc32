// Package document extracts plain text from uploaded resumes and job
// descriptions.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Supported content types.
const (
	TypePDF  = "application/pdf"
	TypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	TypeText = "text/plain"
)

var (
	// ErrUnsupportedType is returned for anything other than PDF, DOCX or text.
	ErrUnsupportedType = errors.New("unsupported document type")
	// ErrNoText is returned when a document parses but holds no text.
	ErrNoText = errors.New("could not extract text")
	// ErrUnreadable is returned when a PDF or DOCX cannot be parsed.
	ErrUnreadable = errors.New("unreadable document")
)

var (
	xmlTags    = regexp.MustCompile(`<[^>]+>`)
	spaceRuns  = regexp.MustCompile(`[ \t\r\f\v\x{00A0}]+`)
	newlineRun = regexp.MustCompile(`\s*\n\s*`)
)

// DetectType resolves the content type from the declared type, the file
// name and finally the content itself.
func DetectType(declared, filename string, data []byte) string {
	if t, _, err := mime.ParseMediaType(declared); err == nil {
		switch t {
		case TypePDF, TypeDOCX, TypeText:
			return t
		}
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return TypePDF
	case ".docx":
		return TypeDOCX
	case ".txt", ".md":
		return TypeText
	}
	sniffed, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	if sniffed == "application/zip" {
		// DOCX is a zip container; Extract rejects other archives.
		return TypeDOCX
	}
	return sniffed
}

// Extract returns the normalized text of data interpreted as contentType.
func Extract(contentType string, data []byte) (string, error) {
	var (
		text string
		err  error
	)
	switch contentType {
	case TypeText:
		text = string(data)
	case TypePDF:
		text, err = extractPDF(data)
	case TypeDOCX:
		text, err = extractDOCX(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	text = normalize(text)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

// extractPDF recovers from the panics the pdf lexer raises on malformed
// objects and reports them as errors.
func extractPDF(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("read pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("read pdf page %d: %w", i, err)
		}
		sb.WriteString(pageText)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}
	defer doc.Close()
	return stripXML(doc.Editable().GetContent()), nil
}

// stripXML turns WordprocessingML into text, one paragraph per line.
func stripXML(content string) string {
	content = strings.ReplaceAll(content, "</w:p>", "\n")
	content = strings.ReplaceAll(content, "<w:tab/>", "\t")
	return xmlTags.ReplaceAllString(content, "")
}

func normalize(s string) string {
	s = spaceRuns.ReplaceAllString(s, " ")
	s = newlineRun.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}

// ReadAll reads at most limit bytes from r and fails when r holds more.
func ReadAll(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("document larger than %d bytes", limit)
	}
	return data, nil
}
