package extract

import (
	"fmt"
	"math"
	"sort"
	"strings"

	rpdf "rsc.io/pdf"
)

// extractPDF assembles page text from the PDF content stream. Text items
// are regrouped into lines by their Y coordinate, since stream order does
// not always match reading order.
func extractPDF(path string) (string, error) {
	doc, err := rpdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var pages []string
	for i := 1; i <= doc.NumPage(); i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		text := assemblePage(page.Content().Text)
		if strings.TrimSpace(text) != "" {
			pages = append(pages, text)
		}
	}

	return strings.Join(pages, "\n\n"), nil
}

func assemblePage(items []rpdf.Text) string {
	if len(items) == 0 {
		return ""
	}

	// Stable sort: top of the page first, then left to right.
	sorted := append([]rpdf.Text(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sameLine(sorted[i], sorted[j]) {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var b strings.Builder
	var prev *rpdf.Text
	for i := range sorted {
		item := sorted[i]
		if prev != nil {
			if !sameLine(*prev, item) {
				b.WriteByte('\n')
			} else if item.X-(prev.X+prev.W) > prev.FontSize*0.2 {
				b.WriteByte(' ')
			}
		}
		b.WriteString(item.S)
		prev = &sorted[i]
	}
	return b.String()
}

func sameLine(a, b rpdf.Text) bool {
	tolerance := a.FontSize * 0.5
	if tolerance <= 0 {
		tolerance = 2
	}
	return math.Abs(a.Y-b.Y) <= tolerance
}
