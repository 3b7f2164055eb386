// Package summarize turns extracted document text into an LLM-written
// summary. Providers are swappable: Gemini through the genai SDK, any
// OpenAI-compatible chat endpoint over REST, and a deterministic mock used
// when no credentials are configured.
package summarize

import "strings"

// Options control summary shape. Zero values fall back to the defaults the
// web client sends.
type Options struct {
	Length   string `json:"length"`   // short | medium | long
	Style    string `json:"style"`    // paragraph | bullet
	Focus    string `json:"focus"`    // comprehensive | methods | results | conclusions
	Language string `json:"language"` // ISO 639-1 code
}

// Normalize fills defaults and lowercases fields.
func (o Options) Normalize() Options {
	normalize := func(v, fallback string) string {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			return fallback
		}
		return v
	}
	return Options{
		Length:   normalize(o.Length, "medium"),
		Style:    normalize(o.Style, "paragraph"),
		Focus:    normalize(o.Focus, "comprehensive"),
		Language: normalize(o.Language, "en"),
	}
}

// languageNames maps ISO codes to the names used in prompts. Unknown codes
// pass through unchanged.
var languageNames = map[string]string{
	"en": "English", "es": "Spanish", "fr": "French", "de": "German",
	"it": "Italian", "pt": "Portuguese", "nl": "Dutch", "ru": "Russian",
	"zh": "Chinese", "ja": "Japanese", "ko": "Korean", "ar": "Arabic",
	"hi": "Hindi", "bn": "Bengali", "mr": "Marathi", "te": "Telugu",
	"ta": "Tamil", "gu": "Gujarati", "kn": "Kannada", "ml": "Malayalam",
	"pa": "Punjabi", "ur": "Urdu", "tr": "Turkish", "vi": "Vietnamese",
	"th": "Thai", "id": "Indonesian", "pl": "Polish", "sv": "Swedish",
	"el": "Greek", "he": "Hebrew", "fa": "Persian", "sw": "Swahili",
}

// LanguageName resolves an ISO code to a prompt-ready language name.
func LanguageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}
