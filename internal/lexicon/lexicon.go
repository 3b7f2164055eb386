// Package lexicon holds the immutable phrase tables the voice assistant
// matches transcripts against. Adding a new voice-navigable page means
// extending these tables, not changing interpreter logic.
package lexicon

// WakePhrases activate the assistant. Matching is exact, prefix, or suffix
// with a separating space.
var WakePhrases = []string{
	"hey sarathi",
	"hey assistant",
	"ok sarathi",
	"okay sarathi",
	"hello sarathi",
}

// SleepPhrases deactivate the assistant while it is awake.
var SleepPhrases = []string{
	"go to sleep",
	"sleep",
}

// Destinations maps a spoken page name to its route path. Generic page
// matching scans this table in a stable order.
var Destinations = map[string]string{
	"home":      "/",
	"dashboard": "/dashboard",
	"settings":  "/settings",
	"community": "/community",
	"practice":  "/practice",
	"summaries": "/summaries",
	"upload":    "/upload",
	"camera":    "/camera",
	"pricing":   "/pricing",
	"profile":   "/profile",
	"history":   "/history",
}

// DestinationNames is the scan order for generic page matching. Longer or
// more specific names come first so "summaries" is not shadowed by a looser
// key.
var DestinationNames = []string{
	"dashboard",
	"settings",
	"community",
	"practice",
	"summaries",
	"upload",
	"camera",
	"pricing",
	"profile",
	"history",
	"home",
}

// SettingsKeywords and CommunityKeywords are checked before the generic
// table. These destinations are requested often enough that the loose
// generic matching could misfire on them.
var SettingsKeywords = []string{
	"settings",
	"setting",
	"preferences",
	"options",
}

var CommunityKeywords = []string{
	"community",
	"forum",
	"discussions",
}

// LanguageSwitches maps a switch phrase to its BCP-47 speech tag.
var LanguageSwitches = map[string]string{
	"speak hindi":       "hi-IN",
	"hindi me bolo":     "hi-IN",
	"switch to hindi":   "hi-IN",
	"speak english":     "en-US",
	"switch to english": "en-US",
}

// LanguagePhrases is the scan order for language-switch matching.
var LanguagePhrases = []string{
	"speak hindi",
	"hindi me bolo",
	"switch to hindi",
	"speak english",
	"switch to english",
}

// QuestionIndicators classify a transcript as a question for the answering
// collaborator.
var QuestionIndicators = []string{
	"what is",
	"what are",
	"what does",
	"who is",
	"where is",
	"when is",
	"why is",
	"why does",
	"how do",
	"how does",
	"how can",
	"can you tell me",
	"tell me about",
	"explain",
}

// Fixed spoken responses.
const (
	WakeResponse     = "Yes, I'm listening. How can I help you?"
	SleepResponse    = "Going to sleep. Say the wake word when you need me."
	UnknownResponse  = "Sorry, I didn't catch that. You can ask me to open a page or ask a question."
	ThinkingResponse = "Let me think about that."
	ApologyResponse  = "Sorry, I couldn't find an answer to that right now."
	HindiResponse    = "Theek hai, ab main Hindi mein bolungi."
	EnglishResponse  = "Okay, I'll speak English now."
)
