// Package extract pulls plain text out of uploaded documents so the
// summarizer and the RAG store can work on it. PDF, HTML, and plain-text
// sources are handled locally; anything image-based needs an external OCR
// collaborator and is rejected here.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// ErrInsufficientText means the document yielded too little text to be
// worth summarizing.
var ErrInsufficientText = errors.New("insufficient text extracted from document")

// ErrUnsupportedType means no local extractor exists for the file type.
var ErrUnsupportedType = errors.New("unsupported document type")

// minTextLength is the significant-character floor below which extraction
// is treated as failed.
const minTextLength = 50

var imageExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".bmp": {}, ".tiff": {}, ".webp": {},
}

// Extractor resolves document bytes to preprocessed text.
type Extractor struct {
	httpClient *http.Client
}

// New creates an extractor with a bounded download client.
func New() *Extractor {
	return &Extractor{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// FromFile extracts text from a local path or URL. fileType may be empty,
// in which case the extension decides.
func (e *Extractor) FromFile(ctx context.Context, path, fileType string) (string, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return e.fromURL(ctx, path, fileType)
	}

	kind := normalizeType(path, fileType)
	switch kind {
	case "pdf":
		text, err := extractPDF(path)
		if err != nil {
			return "", fmt.Errorf("extract pdf %q: %w", filepath.Base(path), err)
		}
		return finalize(text)
	case "html":
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read html %q: %w", filepath.Base(path), err)
		}
		text, err := extractHTML(string(raw))
		if err != nil {
			return "", fmt.Errorf("extract html %q: %w", filepath.Base(path), err)
		}
		return finalize(text)
	case "text":
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read text %q: %w", filepath.Base(path), err)
		}
		return finalize(string(raw))
	case "image":
		return "", fmt.Errorf("%w: image OCR requires an external service", ErrUnsupportedType)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, kind)
	}
}

// FromReader extracts text from an in-memory document, buffering it to a
// temp file when the extractor needs random access.
func (e *Extractor) FromReader(ctx context.Context, r io.Reader, filename, fileType string) (string, error) {
	kind := normalizeType(filename, fileType)
	switch kind {
	case "html":
		raw, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("read html upload: %w", err)
		}
		text, err := extractHTML(string(raw))
		if err != nil {
			return "", err
		}
		return finalize(text)
	case "text":
		raw, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("read text upload: %w", err)
		}
		return finalize(string(raw))
	case "pdf":
		tmp, err := spillToTemp(r, ".pdf")
		if err != nil {
			return "", err
		}
		defer os.Remove(tmp)
		return e.FromFile(ctx, tmp, "pdf")
	case "image":
		return "", fmt.Errorf("%w: image OCR requires an external service", ErrUnsupportedType)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, kind)
	}
}

// fromURL downloads the target and re-dispatches on its content type.
func (e *Extractor) fromURL(ctx context.Context, url, fileType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request %q: %w", url, err)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %q: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %q: unexpected status %d", url, resp.StatusCode)
	}

	kind := fileType
	if kind == "" {
		kind = typeFromContentType(resp.Header.Get("Content-Type"))
	}
	if kind == "" {
		kind = normalizeType(url, "")
	}

	return e.FromReader(ctx, resp.Body, url, kind)
}

func normalizeType(path, fileType string) string {
	switch strings.ToLower(strings.TrimSpace(fileType)) {
	case "pdf":
		return "pdf"
	case "html", "webpage", "htm":
		return "html"
	case "text", "txt", "document":
		return "text"
	case "image":
		return "image"
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return "pdf"
	case ".html", ".htm":
		return "html"
	case ".txt", ".md", ".rtf", ".csv":
		return "text"
	}
	if _, ok := imageExtensions[ext]; ok {
		return "image"
	}
	return strings.TrimPrefix(ext, ".")
}

func typeFromContentType(contentType string) string {
	contentType = strings.ToLower(contentType)
	switch {
	case strings.Contains(contentType, "application/pdf"):
		return "pdf"
	case strings.Contains(contentType, "text/html"):
		return "html"
	case strings.Contains(contentType, "text/"):
		return "text"
	case strings.Contains(contentType, "image/"):
		return "image"
	}
	return ""
}

func spillToTemp(r io.Reader, suffix string) (string, error) {
	f, err := os.CreateTemp("", "sarathi-upload-*"+suffix)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("buffer upload: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("flush upload: %w", err)
	}
	return f.Name(), nil
}

var (
	multiBlank  = regexp.MustCompile(`\n{3,}`)
	lineSpacing = regexp.MustCompile(`[ \t]+`)
)

// Preprocess normalizes whitespace without touching content.
func Preprocess(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(lineSpacing.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")
	text = multiBlank.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func finalize(text string) (string, error) {
	text = Preprocess(text)
	if len(text) < minTextLength {
		return text, ErrInsufficientText
	}
	return text, nil
}

// WordCount counts whitespace-separated tokens.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
