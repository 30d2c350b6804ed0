package viewer

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var multiNewlinePattern = regexp.MustCompile(`\n{3,}`)

// Render converts an HTML document to plain text and returns its title
func Render(src string) (title, text string, err error) {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return "", "", err
	}

	r := &textRenderer{}
	r.walk(doc)

	lines := strings.Split(r.b.String(), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	text = strings.Join(lines, "\n")
	text = multiNewlinePattern.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(r.title), strings.TrimSpace(text), nil
}

type textRenderer struct {
	b     strings.Builder
	title string
	depth int // list nesting
	pre   int
}

func (r *textRenderer) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		r.text(n.Data)
		return
	case html.ElementNode:
		if r.element(n) {
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.walk(c)
	}
}

// element renders n and reports whether its children were handled
func (r *textRenderer) element(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Noscript, atom.Template, atom.Svg, atom.Iframe:
		return true
	case atom.Title:
		r.title = collectText(n)
		return true
	case atom.Br:
		r.b.WriteString("\n")
		return true
	case atom.Hr:
		r.block()
		r.b.WriteString("────────")
		r.block()
		return true
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		r.block()
		level := int(n.Data[1] - '0')
		r.b.WriteString(strings.Repeat("#", level) + " " + strings.TrimSpace(collectText(n)))
		r.block()
		return true
	case atom.A:
		label := strings.TrimSpace(collectText(n))
		href := attr(n, "href")
		switch {
		case label == "":
		case href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:"):
			r.inline(label)
		default:
			r.inline(label + " (" + href + ")")
		}
		return true
	case atom.Img:
		if alt := strings.TrimSpace(attr(n, "alt")); alt != "" {
			r.inline("[" + alt + "]")
		}
		return true
	case atom.Ul, atom.Ol:
		r.block()
		r.depth++
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			r.walk(c)
		}
		r.depth--
		r.block()
		return true
	case atom.Li:
		r.line()
		r.b.WriteString(strings.Repeat("  ", max(0, r.depth-1)) + "• ")
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			r.walk(c)
		}
		r.line()
		return true
	case atom.Pre:
		r.block()
		r.pre++
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			r.walk(c)
		}
		r.pre--
		r.block()
		return true
	case atom.P, atom.Div, atom.Section, atom.Article, atom.Header, atom.Footer,
		atom.Main, atom.Nav, atom.Aside, atom.Blockquote, atom.Table, atom.Form:
		r.block()
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			r.walk(c)
		}
		r.block()
		return true
	case atom.Tr:
		r.line()
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			r.walk(c)
		}
		r.line()
		return true
	case atom.Td, atom.Th:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			r.walk(c)
		}
		r.b.WriteString("  ")
		return true
	}
	return false
}

func (r *textRenderer) text(s string) {
	if r.pre > 0 {
		r.b.WriteString(s)
		return
	}
	r.inline(strings.Join(strings.Fields(s), " "))
}

// inline writes s, separated from preceding inline content by one space
func (r *textRenderer) inline(s string) {
	if s == "" {
		return
	}
	if cur := r.b.String(); cur != "" && !strings.HasSuffix(cur, "\n") && !strings.HasSuffix(cur, " ") {
		r.b.WriteString(" ")
	}
	r.b.WriteString(s)
}

// line ends the current line if it has content
func (r *textRenderer) line() {
	if cur := r.b.String(); cur != "" && !strings.HasSuffix(cur, "\n") {
		r.b.WriteString("\n")
	}
}

// block separates blocks with an empty line
func (r *textRenderer) block() {
	r.line()
	if cur := r.b.String(); cur != "" && !strings.HasSuffix(cur, "\n\n") {
		r.b.WriteString("\n")
	}
}

func collectText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		if n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style) {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
