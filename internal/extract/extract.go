package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"github.com/nao1215/topwords/internal/fetch"
)

// Mode selects how a page is turned into text.
type Mode string

const (
	// ModeRaw uses the body as is.
	ModeRaw Mode = "raw"

	// ModeText keeps the visible text of an HTML document.
	ModeText Mode = "text"

	// ModeArticle keeps the text of the main article of an HTML document.
	ModeArticle Mode = "article"
)

// ErrUnknownMode is returned by ParseMode for an unsupported mode.
var ErrUnknownMode = errors.New("unknown extract mode")

// skippedElements hold no visible text.
var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// ParseMode parses a mode name. The empty string is ModeRaw.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "", ModeRaw:
		return ModeRaw, nil
	case ModeText, ModeArticle:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// String returns the mode name.
func (m Mode) String() string {
	return string(m)
}

// Extract returns the text of page according to mode.
func Extract(mode Mode, page fetch.Page) (string, error) {
	if mode == ModeRaw || !IsHTML(page.ContentType, page.Body) {
		return string(page.Body), nil
	}

	switch mode {
	case ModeText:
		return VisibleText(bytes.NewReader(page.Body))
	case ModeArticle:
		return articleText(page)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, string(mode))
	}
}

// IsHTML reports whether a document is HTML, using the Content-Type header
// or, when it is missing, the body.
func IsHTML(contentType string, body []byte) bool {
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

// VisibleText parses an HTML document and returns its text nodes joined
// by spaces, skipping script, style, noscript and template elements.
func VisibleText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			if skippedElements[n.Data] {
				return
			}
		case html.TextNode:
			if s := strings.TrimSpace(n.Data); s != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(s)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return sb.String(), nil
}

func articleText(page fetch.Page) (string, error) {
	pageURL, err := url.Parse(page.FinalURL)
	if err != nil {
		return "", fmt.Errorf("invalid page url: %w", err)
	}

	parser := readability.NewParser()
	article, err := parser.Parse(bytes.NewReader(page.Body), pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to extract article: %w", err)
	}

	return VisibleText(strings.NewReader(article.Content))
}
