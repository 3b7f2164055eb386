package summarize

import (
	"fmt"
	"strings"
)

var lengthDirectives = map[string]string{
	"short":  "concise (approximately 150-250 words)",
	"medium": "moderate length (approximately 400-600 words)",
	"long":   "detailed and extensive (approximately 1000-1500 words)",
}

var styleDirectives = map[string]string{
	"bullet":    "organized bullet points with clear sections, using proper Markdown bullet format",
	"paragraph": "well-structured paragraphs with clear transitions and sections",
}

var focusDirectives = map[string]string{
	"comprehensive": "all key aspects and important details of the document",
	"methods":       "processes, procedures, methods, or technical details",
	"results":       "outcomes, achievements, findings, or key points",
	"conclusions":   "conclusions, implications, or final takeaways",
}

// BuildPrompt renders the summarization prompt for a normalized option set.
func BuildPrompt(text string, opts Options) string {
	opts = opts.Normalize()

	length := lengthDirectives[opts.Length]
	if length == "" {
		length = lengthDirectives["medium"]
	}
	style := styleDirectives[opts.Style]
	if style == "" {
		style = styleDirectives["paragraph"]
	}
	focus := focusDirectives[opts.Focus]
	if focus == "" {
		focus = focusDirectives["comprehensive"]
	}

	languageInstruction := "Output in English."
	if opts.Language != "en" {
		name := LanguageName(opts.Language)
		languageInstruction = fmt.Sprintf(
			"IMPORTANT: Write the ENTIRE summary in %s. Translate everything, including headers and technical terms, to %s.",
			name, name,
		)
	}

	var styleRules string
	if opts.Style == "bullet" {
		styleRules = `- Format each main point as a bullet starting with "- "
- Use headers to organize sections, followed by bullet points
- Keep each bullet concise and on its own line`
	} else {
		styleRules = `- Use well-structured paragraphs with clear topic sentences
- Group related information in the same paragraph
- Use headers to separate major sections`
	}

	var b strings.Builder
	fmt.Fprintf(&b, `You are an expert document summarizer. Create a high-quality %s summary of the following document. The document could be any type: research paper, article, certificate, report, or presentation.

SUMMARY REQUIREMENTS:
- Use %s for the summary format
- Focus primarily on %s
- %s
- Preserve key statistics, findings, and citations
- Begin with a brief executive summary
- Format using clean Markdown with appropriate headings and emphasis
%s

DOCUMENT TEXT:
%s
`, length, style, focus, languageInstruction, styleRules, text)

	return b.String()
}

// BuildAnswerPrompt renders a question-answering prompt over retrieved
// document context and optional conversation history.
func BuildAnswerPrompt(question, context string, history []Message) string {
	var b strings.Builder
	b.WriteString("You are a helpful assistant answering questions about a document. Use only the provided context; if the context does not contain the answer, say so briefly.\n\nCONTEXT:\n")
	b.WriteString(context)
	b.WriteString("\n\n")

	if len(history) > 0 {
		b.WriteString("CONVERSATION SO FAR:\n")
		for _, m := range history {
			fmt.Fprintf(&b, "%s: %s\n", strings.ToUpper(m.Role), m.Content)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "QUESTION: %s\n\nAnswer in at most three sentences, suitable for being read aloud.", question)
	return b.String()
}

// Message is one prior conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
