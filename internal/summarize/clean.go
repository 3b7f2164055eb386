package summarize

import (
	"regexp"
	"strings"
)

var (
	controlChars    = regexp.MustCompile(`[\x00-\x09\x0B-\x1F\x7F]`)
	headerNoSpace   = regexp.MustCompile(`(?m)^(#+)([^\s#])`)
	multiSpace      = regexp.MustCompile(`[ \t]+`)
	excessNewlines  = regexp.MustCompile(`\n{3,}`)
	trailingSpaces  = regexp.MustCompile(`(?m)[ \t]+$`)
	looseBold       = regexp.MustCompile(`\*\*\s*([^*\n]+?)\s*\*\*`)
	underscoreBold  = regexp.MustCompile(`__\s*([^_\n]+?)\s*__`)
	codeFenceOpen   = regexp.MustCompile("^```[a-zA-Z]*\n")
	bulletMarker    = regexp.MustCompile(`(?m)^\s*[•*]\s*`)
	danglingBullets = regexp.MustCompile(`(?m)^-\s*$`)
)

// Clean normalizes model output into presentable Markdown. Models wrap
// answers in code fences, misplace header spacing, and emit stray bullet
// markers often enough that every provider's output passes through here.
func Clean(text string, opts Options) string {
	if text == "" {
		return ""
	}
	opts = opts.Normalize()

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = controlChars.ReplaceAllString(text, "")

	text = strings.TrimSpace(text)
	text = codeFenceOpen.ReplaceAllString(text, "")
	text = strings.TrimSuffix(text, "```")

	text = headerNoSpace.ReplaceAllString(text, "$1 $2")
	text = looseBold.ReplaceAllString(text, "**$1**")
	text = underscoreBold.ReplaceAllString(text, "**$1**")

	if opts.Style == "bullet" {
		text = bulletMarker.ReplaceAllString(text, "- ")
		text = danglingBullets.ReplaceAllString(text, "")
	}

	text = multiSpace.ReplaceAllString(text, " ")
	text = trailingSpaces.ReplaceAllString(text, "")
	text = excessNewlines.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}
