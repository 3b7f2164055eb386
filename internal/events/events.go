// Package events defines the assistant's page-facing event contract and an
// in-process publish/subscribe bus. Pages (WebSocket clients) subscribe and
// react to broadcasts independently of whether the triggering action also
// succeeded elsewhere.
package events

// Event names pages can bind to.
const (
	Navigate       = "voice-assistant:navigate"
	Speak          = "voice-assistant:speak"
	CancelSpeech   = "voice-assistant:cancel-speech"
	StartRecording = "voice-assistant:start-recording"
	StopRecording  = "voice-assistant:stop-recording"
	AnalyzeSpeech  = "voice-assistant:analyze-speech"
	Read           = "voice-assistant:read"
	Edit           = "voice-assistant:edit"
	StateChanged   = "voice-assistant:state"
)

// Payload field keys.
const (
	FieldDestination = "destination"
	FieldTarget      = "target"
	FieldValue       = "value"
	FieldText        = "text"
	FieldLanguage    = "language"
	FieldState       = "state"
	FieldMethod      = "method"
)

// Event is one broadcast notification. Payload is nil for events that carry
// no data.
type Event struct {
	Name    string            `json:"name"`
	Payload map[string]string `json:"payload,omitempty"`
}
