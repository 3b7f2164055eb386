// Package speech carries synthesized speech to whatever renders it. The
// daemon never produces audio itself; connected pages own the platform
// speech API and react to speak events.
package speech

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sarathi-app/sarathi/internal/events"
)

// Utterance is one piece of spoken output.
type Utterance struct {
	Text     string
	Language string
}

// Speaker is the dispatch-facing synthesis contract.
type Speaker interface {
	// Speak queues one utterance, cancelling any in-flight one first.
	// Audio output is last-command-wins.
	Speak(ctx context.Context, u Utterance)
	// Cancel stops the in-flight utterance without starting a new one.
	Cancel()
}

// BusSpeaker forwards utterances to page clients over the event bus.
type BusSpeaker struct {
	bus    *events.Bus
	logger *slog.Logger

	mu       sync.Mutex
	language string
}

// NewBusSpeaker creates a speaker with a default language tag.
func NewBusSpeaker(bus *events.Bus, logger *slog.Logger, defaultLanguage string) *BusSpeaker {
	if defaultLanguage == "" {
		defaultLanguage = "en-US"
	}
	return &BusSpeaker{bus: bus, logger: logger, language: defaultLanguage}
}

// SetLanguage changes the tag applied to utterances that carry none.
func (s *BusSpeaker) SetLanguage(tag string) {
	if tag == "" {
		return
	}
	s.mu.Lock()
	s.language = tag
	s.mu.Unlock()
}

// Language returns the current default language tag.
func (s *BusSpeaker) Language() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

func (s *BusSpeaker) Speak(ctx context.Context, u Utterance) {
	if u.Text == "" {
		return
	}
	if ctx.Err() != nil {
		return
	}

	language := u.Language
	if language == "" {
		language = s.Language()
	}

	s.Cancel()
	s.bus.Publish(events.Event{
		Name: events.Speak,
		Payload: map[string]string{
			events.FieldText:     u.Text,
			events.FieldLanguage: language,
		},
	})
	if s.logger != nil {
		s.logger.Debug("speech queued", "length", len(u.Text), "language", language)
	}
}

func (s *BusSpeaker) Cancel() {
	s.bus.Publish(events.Event{Name: events.CancelSpeech})
}

// Noop is the fallback speaker used when no output surface is wired.
type Noop struct{}

func (Noop) Speak(context.Context, Utterance) {}
func (Noop) Cancel()                          {}
