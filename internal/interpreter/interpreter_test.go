package interpreter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sarathi-app/sarathi/internal/lexicon"
)

func TestInterpretWakeWordAnyPosition(t *testing.T) {
	tests := []struct {
		name       string
		transcript string
		active     bool
	}{
		{name: "exact while asleep", transcript: "hey sarathi", active: false},
		{name: "exact while awake", transcript: "hey sarathi", active: true},
		{name: "prefix", transcript: "hey sarathi open settings", active: false},
		{name: "suffix", transcript: "are you there hey sarathi", active: false},
		{name: "mixed case with padding", transcript: "  Hey Sarathi  ", active: false},
		{name: "alternate phrase", transcript: "hey assistant", active: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := Interpret(tc.transcript, tc.active)
			require.True(t, result.IsWake)
			require.Equal(t, "wake", result.Command)
			require.Equal(t, lexicon.WakeResponse, result.Response)
		})
	}
}

func TestInterpretWakeWordNeedsSeparator(t *testing.T) {
	result := Interpret("hey sarathit", false)
	require.False(t, result.IsWake)
	require.Equal(t, "inactive", result.Command)
}

func TestInterpretInactiveSuppressesEverything(t *testing.T) {
	transcripts := []string{
		"navigate to settings",
		"open community",
		"what is confidence",
		"speak hindi",
		"start recording",
		"",
	}

	for _, transcript := range transcripts {
		result := Interpret(transcript, false)
		require.Equal(t, "inactive", result.Command, "transcript %q", transcript)
		require.False(t, result.IsWake)
		require.Equal(t, ActionNone, result.Action)
	}
}

func TestInterpretSleep(t *testing.T) {
	for _, transcript := range []string{"go to sleep", "please sleep now", "sleep"} {
		result := Interpret(transcript, true)
		require.Equal(t, "sleep", result.Command, "transcript %q", transcript)
		require.Equal(t, lexicon.SleepResponse, result.Response)
	}

	// Sleep phrases are ignored while the assistant is not awake.
	result := Interpret("go to sleep", false)
	require.Equal(t, "inactive", result.Command)
}

func TestInterpretNavigation(t *testing.T) {
	tests := []struct {
		transcript string
		want       string
	}{
		{transcript: "navigate to settings", want: "/settings"},
		{transcript: "go to the community page", want: "/community"},
		{transcript: "open practice", want: "/practice"},
		{transcript: "take me to profile", want: "/profile"},
		{transcript: "summaries page please", want: "/summaries"},
		{transcript: "show my preferences", want: "/settings"},
		{transcript: "open the forum", want: "/community"},
	}

	for _, tc := range tests {
		t.Run(tc.transcript, func(t *testing.T) {
			result := Interpret(tc.transcript, true)
			require.Equal(t, ActionNavigate, result.Action)
			require.Equal(t, tc.want, result.Destination)
			require.NotEmpty(t, result.Response)
		})
	}
}

func TestInterpretQuestionPreservesCasing(t *testing.T) {
	result := Interpret("What is Confidence", true)
	require.Equal(t, ActionAnswer, result.Action)
	require.Equal(t, "What is Confidence", result.Query)
	require.Equal(t, lexicon.ThinkingResponse, result.Response)

	result = Interpret("is the sky blue?", true)
	require.Equal(t, ActionAnswer, result.Action)
	require.Equal(t, "is the sky blue?", result.Query)
}

func TestInterpretLanguageSwitch(t *testing.T) {
	result := Interpret("speak hindi", true)
	require.Equal(t, "speak hindi", result.Command)
	require.Equal(t, "hi-IN", result.Language)
	require.Equal(t, ActionNone, result.Action)

	result = Interpret("please switch to english", true)
	require.Equal(t, "switch to english", result.Command)
	require.Equal(t, "en-US", result.Language)
}

func TestInterpretNavigationBeatsQuestion(t *testing.T) {
	// Overlapping input resolves by rule order: the settings keywords fire
	// before question detection ever runs.
	result := Interpret("what is the settings page", true)
	require.Equal(t, ActionNavigate, result.Action)
	require.Equal(t, "/settings", result.Destination)
	require.Empty(t, result.Query)
}

func TestInterpretPageActions(t *testing.T) {
	tests := []struct {
		transcript string
		action     Action
		target     string
		value      string
	}{
		{transcript: "start recording", action: ActionRecord},
		{transcript: "please stop recording", action: ActionStopRecord},
		{transcript: "analyze my speech", action: ActionAnalyze},
		{transcript: "read the summary", action: ActionRead, target: "summary"},
		{transcript: "edit title to quarterly report", action: ActionEdit, target: "title", value: "quarterly report"},
	}

	for _, tc := range tests {
		t.Run(tc.transcript, func(t *testing.T) {
			result := Interpret(tc.transcript, true)
			require.Equal(t, tc.action, result.Action)
			require.Equal(t, tc.target, result.Target)
			require.Equal(t, tc.value, result.Value)
			require.NotEmpty(t, result.Response)
		})
	}
}

func TestInterpretUnknown(t *testing.T) {
	result := Interpret("purple monkey dishwasher", true)
	require.Equal(t, "unknown", result.Command)
	require.Equal(t, lexicon.UnknownResponse, result.Response)
	require.Equal(t, ActionNone, result.Action)
}

func TestInterpretIsPure(t *testing.T) {
	first := Interpret("navigate to settings", true)
	second := Interpret("navigate to settings", true)
	require.Equal(t, first, second)

	first = Interpret("What is Confidence", true)
	second = Interpret("What is Confidence", true)
	require.Equal(t, first, second)
}
