package extract

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

var skippedElements = map[string]struct{}{
	"script": {}, "style": {}, "noscript": {}, "head": {},
	"nav": {}, "footer": {}, "iframe": {}, "svg": {},
}

var blockElements = map[string]struct{}{
	"p": {}, "div": {}, "br": {}, "li": {}, "tr": {}, "section": {},
	"article": {}, "h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
}

// extractHTML strips markup and boilerplate elements, keeping visible text
// with block boundaries as newlines.
func extractHTML(source string) (string, error) {
	root, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if _, skip := skippedElements[n.Data]; skip {
				return
			}
			if _, block := blockElements[n.Data]; block {
				b.WriteByte('\n')
			}
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				b.WriteString(text)
				b.WriteByte(' ')
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)

	return b.String(), nil
}
