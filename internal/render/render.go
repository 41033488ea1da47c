// Package render turns the assistant's markdown into plain terminal text.
package render

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"golang.org/x/net/html"
)

var md = goldmark.New()

// Markdown converts markdown to plain text: paragraphs separated by a
// blank line, list items bulleted, inline markup dropped.
// Input that fails to convert is returned as is.
func Markdown(src string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return strings.TrimSpace(src)
	}
	text := Text(buf.String())
	if text == "" {
		return strings.TrimSpace(src)
	}
	return text
}

// Text extracts readable text from an HTML fragment
func Text(fragment string) string {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return ""
	}

	skipTags := map[string]bool{
		"script": true, "style": true, "noscript": true, "iframe": true,
	}

	var blocks []string
	var line strings.Builder
	flush := func() {
		if s := strings.Join(strings.Fields(line.String()), " "); s != "" {
			blocks = append(blocks, s)
		}
		line.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skipTags[n.Data] {
			return
		}

		if n.Type == html.ElementNode {
			switch n.Data {
			case "li":
				flush()
				line.WriteString("• ")
			case "br":
				flush()
			}
		}

		if n.Type == html.TextNode {
			line.WriteString(n.Data)
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode {
			switch n.Data {
			case "p", "div", "h1", "h2", "h3", "h4", "h5", "h6", "li", "pre", "blockquote":
				flush()
			}
		}
	}

	walk(doc)
	flush()
	return strings.Join(blocks, "\n\n")
}

// Truncate shortens s to at most n runes, ending in "..." when cut
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// Preview is s on one line, truncated to n runes
func Preview(s string, n int) string {
	return Truncate(strings.Join(strings.Fields(s), " "), n)
}
