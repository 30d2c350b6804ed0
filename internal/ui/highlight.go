package ui

import (
	"mime"
	"path"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
)

// Highlighter provides syntax highlighting for page sources
type Highlighter struct {
	style *chroma.Style
}

// NewHighlighter creates a new syntax highlighter
func NewHighlighter() *Highlighter {
	return &Highlighter{
		style: styles.Get("catppuccin-mocha"),
	}
}

// HighlightLine highlights a single line using the lexer for the
// given content type, falling back to the URL's extension
func (h *Highlighter) HighlightLine(line, contentType, url string) string {
	lexer := getLexer(contentType, url)
	if lexer == nil {
		return line
	}

	iterator, err := lexer.Tokenise(nil, line)
	if err != nil {
		return line
	}

	var result strings.Builder
	for token := iterator(); token != chroma.EOF; token = iterator() {
		style := h.style.Get(token.Type)
		text := token.Value

		if style.Colour.IsSet() {
			color := style.Colour.String()
			styled := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
			if style.Bold == chroma.Yes {
				styled = styled.Bold(true)
			}
			if style.Italic == chroma.Yes {
				styled = styled.Italic(true)
			}
			result.WriteString(styled.Render(text))
		} else {
			result.WriteString(text)
		}
	}

	return result.String()
}

// HighlightLines highlights multiple lines
func (h *Highlighter) HighlightLines(lines []string, contentType, url string) []string {
	result := make([]string, len(lines))
	for i, line := range lines {
		result[i] = h.HighlightLine(line, contentType, url)
	}
	return result
}

func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return mt
}

// getLexer returns the lexer for a content type or URL path
func getLexer(contentType, url string) chroma.Lexer {
	switch mediaType(contentType) {
	case "text/html", "application/xhtml+xml", "":
		if ext := urlExt(url); ext != "" && ext != ".html" && ext != ".htm" {
			return lexerForExt(ext)
		}
		return lexers.Get("html")
	case "application/json":
		return lexers.Get("json")
	case "text/css":
		return lexers.Get("css")
	case "text/javascript", "application/javascript":
		return lexers.Get("javascript")
	case "application/xml", "text/xml", "image/svg+xml":
		return lexers.Get("xml")
	case "text/markdown":
		return lexers.Get("markdown")
	case "application/yaml", "text/yaml":
		return lexers.Get("yaml")
	}
	return lexerForExt(urlExt(url))
}

func urlExt(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	if i := strings.Index(url, "://"); i >= 0 {
		url = url[i+3:]
		if j := strings.Index(url, "/"); j >= 0 {
			url = url[j:]
		} else {
			return ""
		}
	}
	return strings.ToLower(path.Ext(url))
}

func lexerForExt(ext string) chroma.Lexer {
	switch ext {
	case ".json":
		return lexers.Get("json")
	case ".css":
		return lexers.Get("css")
	case ".js", ".mjs":
		return lexers.Get("javascript")
	case ".xml", ".svg", ".rss":
		return lexers.Get("xml")
	case ".md", ".markdown":
		return lexers.Get("markdown")
	case ".yaml", ".yml":
		return lexers.Get("yaml")
	case ".html", ".htm":
		return lexers.Get("html")
	}
	return nil
}

// ContentTypeLabel returns a human-readable label for display
func ContentTypeLabel(contentType string) string {
	switch mediaType(contentType) {
	case "text/html", "application/xhtml+xml":
		return "HTML"
	case "application/json":
		return "JSON"
	case "text/css":
		return "CSS"
	case "text/javascript", "application/javascript":
		return "JavaScript"
	case "application/xml", "text/xml":
		return "XML"
	case "image/svg+xml":
		return "SVG"
	case "text/markdown":
		return "Markdown"
	case "text/plain":
		return "Text"
	case "":
		return "Unknown"
	default:
		return mediaType(contentType)
	}
}
