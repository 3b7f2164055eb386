// Package interpreter classifies one speech transcript into an assistant
// command. Classification is a prioritized rule table evaluated in order;
// the first matching rule wins and later rules never fire. Rule order is
// behavior: a transcript that names a page and also looks like a question
// is navigation, because the navigation rules come first.
package interpreter

import (
	"strings"

	"github.com/sarathi-app/sarathi/internal/lexicon"
)

// Action is the side effect a classified command requests from dispatch.
type Action string

const (
	ActionNone       Action = ""
	ActionNavigate   Action = "navigate"
	ActionExecute    Action = "execute"
	ActionShow       Action = "show"
	ActionRecord     Action = "record"
	ActionStopRecord Action = "stop_record"
	ActionRead       Action = "read"
	ActionEdit       Action = "edit"
	ActionAnalyze    Action = "analyze"
	ActionAnswer     Action = "answer"
)

// Result is the classified outcome for one transcript. Exactly one of
// IsWake, a non-empty Action, or a terminal Command ("sleep", "inactive",
// "unknown", a language phrase) describes the match.
type Result struct {
	IsWake      bool   `json:"is_wake,omitempty"`
	Command     string `json:"command,omitempty"`
	Response    string `json:"response,omitempty"`
	Action      Action `json:"action,omitempty"`
	Destination string `json:"destination,omitempty"`
	Target      string `json:"target,omitempty"`
	Value       string `json:"value,omitempty"`
	Query       string `json:"query,omitempty"`
	Language    string `json:"language,omitempty"`
}

// input carries both the normalized transcript used for matching and the
// raw transcript preserved for question queries.
type input struct {
	raw    string
	norm   string
	active bool
}

type rule struct {
	name  string
	match func(input) (Result, bool)
}

// rules is the classification order. Do not reorder without revisiting
// every overlapping phrase: "what is the settings page" must resolve as
// settings navigation, not as a question.
var rules = []rule{
	{name: "wake-word", match: matchWake},
	{name: "sleep", match: matchSleep},
	{name: "inactive-gate", match: matchInactive},
	{name: "language-switch", match: matchLanguage},
	{name: "special-destination", match: matchSpecialDestination},
	{name: "direct-page", match: matchDirectPage},
	{name: "explicit-navigation", match: matchExplicitNavigation},
	{name: "page-action", match: matchPageAction},
	{name: "question", match: matchQuestion},
}

// Interpret classifies a transcript. It is a pure function: it never
// errors, never mutates state, and unrecognized input falls through to an
// "unknown" result with spoken help text.
func Interpret(transcript string, active bool) Result {
	in := input{
		raw:    strings.TrimSpace(transcript),
		norm:   strings.ToLower(strings.TrimSpace(transcript)),
		active: active,
	}

	for _, r := range rules {
		if result, ok := r.match(in); ok {
			return result
		}
	}

	return Result{Command: "unknown", Response: lexicon.UnknownResponse}
}

// matchWake fires regardless of the active flag: the wake word must work
// while the assistant is asleep.
func matchWake(in input) (Result, bool) {
	for _, phrase := range lexicon.WakePhrases {
		if in.norm == phrase ||
			strings.HasPrefix(in.norm, phrase+" ") ||
			strings.HasSuffix(in.norm, " "+phrase) {
			return Result{IsWake: true, Command: "wake", Response: lexicon.WakeResponse}, true
		}
	}
	return Result{}, false
}

func matchSleep(in input) (Result, bool) {
	if !in.active {
		return Result{}, false
	}
	for _, phrase := range lexicon.SleepPhrases {
		if strings.Contains(in.norm, phrase) {
			return Result{Command: "sleep", Response: lexicon.SleepResponse}, true
		}
	}
	return Result{}, false
}

// matchInactive suppresses everything below it while the assistant is not
// awake. Ambient speech must not trigger navigation or actions.
func matchInactive(in input) (Result, bool) {
	if in.active {
		return Result{}, false
	}
	return Result{Command: "inactive"}, true
}

func matchLanguage(in input) (Result, bool) {
	for _, phrase := range lexicon.LanguagePhrases {
		if !strings.Contains(in.norm, phrase) {
			continue
		}
		tag := lexicon.LanguageSwitches[phrase]
		response := lexicon.EnglishResponse
		if tag == "hi-IN" {
			response = lexicon.HindiResponse
		}
		return Result{Command: phrase, Language: tag, Response: response}, true
	}
	return Result{}, false
}

// matchSpecialDestination checks settings and community keyword lists ahead
// of the generic table, since those pages are requested disproportionately
// often and loose generic matching could misfire on them.
func matchSpecialDestination(in input) (Result, bool) {
	for _, keyword := range lexicon.SettingsKeywords {
		if strings.Contains(in.norm, keyword) {
			return navResult("settings", lexicon.Destinations["settings"]), true
		}
	}
	for _, keyword := range lexicon.CommunityKeywords {
		if strings.Contains(in.norm, keyword) {
			return navResult("community", lexicon.Destinations["community"]), true
		}
	}
	return Result{}, false
}

func matchDirectPage(in input) (Result, bool) {
	for _, name := range lexicon.DestinationNames {
		if strings.Contains(in.norm, name+" page") ||
			strings.Contains(in.norm, "to "+name) ||
			strings.Contains(in.norm, name) {
			return navResult(name, lexicon.Destinations[name]), true
		}
	}
	return Result{}, false
}

var navigationVerbs = []string{"navigate to ", "go to ", "open "}

func matchExplicitNavigation(in input) (Result, bool) {
	for _, verb := range navigationVerbs {
		idx := strings.Index(in.norm, verb)
		if idx < 0 {
			continue
		}
		name := strings.TrimSpace(in.norm[idx+len(verb):])
		name = strings.TrimPrefix(name, "the ")
		name = strings.TrimSuffix(name, " page")
		if path, ok := lexicon.Destinations[name]; ok {
			return navResult(name, path), true
		}
	}
	return Result{}, false
}

// matchPageAction maps recording, analysis, read-aloud, and edit phrases to
// the page-level actions dispatch broadcasts. Pages own the actual work.
func matchPageAction(in input) (Result, bool) {
	switch {
	case strings.Contains(in.norm, "stop recording"):
		return Result{Command: "stop recording", Action: ActionStopRecord, Response: "Recording stopped."}, true
	case strings.Contains(in.norm, "start recording"), strings.Contains(in.norm, "record my voice"):
		return Result{Command: "start recording", Action: ActionRecord, Response: "Recording started."}, true
	case strings.Contains(in.norm, "analyze my speech"), strings.Contains(in.norm, "analyze speech"):
		return Result{Command: "analyze", Action: ActionAnalyze, Response: "Analyzing your speech."}, true
	case strings.HasPrefix(in.norm, "read "):
		target := strings.TrimSpace(strings.TrimPrefix(in.norm, "read "))
		target = strings.TrimPrefix(target, "the ")
		return Result{Command: "read", Action: ActionRead, Target: target, Response: "Reading it out."}, true
	case strings.HasPrefix(in.norm, "edit ") || strings.HasPrefix(in.norm, "change "):
		rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(in.norm, "edit "), "change "))
		target, value, ok := strings.Cut(rest, " to ")
		if !ok {
			return Result{}, false
		}
		return Result{
			Command:  "edit",
			Action:   ActionEdit,
			Target:   strings.TrimSpace(target),
			Value:    strings.TrimSpace(value),
			Response: "Done.",
		}, true
	}
	return Result{}, false
}

// matchQuestion carries the raw transcript as the query so the answering
// collaborator sees original casing and punctuation.
func matchQuestion(in input) (Result, bool) {
	if strings.HasSuffix(in.norm, "?") {
		return questionResult(in), true
	}
	for _, indicator := range lexicon.QuestionIndicators {
		if strings.Contains(in.norm, indicator) {
			return questionResult(in), true
		}
	}
	return Result{}, false
}

func questionResult(in input) Result {
	return Result{
		Command:  "question",
		Action:   ActionAnswer,
		Query:    in.raw,
		Response: lexicon.ThinkingResponse,
	}
}

func navResult(name, path string) Result {
	return Result{
		Command:     "navigate",
		Action:      ActionNavigate,
		Destination: path,
		Response:    "Taking you to the " + name + " page.",
	}
}
