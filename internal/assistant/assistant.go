// Package assistant coordinates transcript interpretation and dispatch of
// the resulting side effects: spoken feedback, page navigation, and
// broadcast events. Commands are serialized through a single worker so a
// slow answer cannot race a newer command for the assistant state.
package assistant

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sarathi-app/sarathi/internal/events"
	"github.com/sarathi-app/sarathi/internal/fsm"
	"github.com/sarathi-app/sarathi/internal/interpreter"
	"github.com/sarathi-app/sarathi/internal/lexicon"
	"github.com/sarathi-app/sarathi/internal/speech"
)

// Answerer resolves a spoken question to spoken text. Failures are
// swallowed into a fixed apology, never surfaced to the command source.
type Answerer interface {
	Answer(ctx context.Context, query string) (string, error)
}

// AnswerFunc adapts a function to Answerer.
type AnswerFunc func(ctx context.Context, query string) (string, error)

func (f AnswerFunc) Answer(ctx context.Context, query string) (string, error) {
	return f(ctx, query)
}

// Navigator starts a fire-and-forget navigation attempt.
type Navigator interface {
	Navigate(ctx context.Context, destination string)
}

// NavigateFunc adapts a function to Navigator.
type NavigateFunc func(ctx context.Context, destination string)

func (f NavigateFunc) Navigate(ctx context.Context, destination string) { f(ctx, destination) }

// Broadcaster publishes page-level events.
type Broadcaster interface {
	Publish(events.Event)
}

type noopNavigator struct{}

func (noopNavigator) Navigate(context.Context, string) {}

type noopBroadcaster struct{}

func (noopBroadcaster) Publish(events.Event) {}

// Controller owns the assistant state machine and the serialized command
// queue.
type Controller struct {
	logger        *slog.Logger
	speaker       speech.Speaker
	answerer      Answerer
	navigator     Navigator
	broadcast     Broadcaster
	answerTimeout time.Duration

	mu     sync.RWMutex
	state  fsm.State
	active bool

	queue chan string
}

// NewController constructs a controller with safe default fallbacks for
// unwired collaborators.
func NewController(
	logger *slog.Logger,
	speaker speech.Speaker,
	answerer Answerer,
	navigator Navigator,
	broadcast Broadcaster,
	answerTimeout time.Duration,
) *Controller {
	if speaker == nil {
		speaker = speech.Noop{}
	}
	if answerer == nil {
		answerer = AnswerFunc(func(context.Context, string) (string, error) { return "", context.Canceled })
	}
	if navigator == nil {
		navigator = noopNavigator{}
	}
	if broadcast == nil {
		broadcast = noopBroadcaster{}
	}
	if answerTimeout <= 0 {
		answerTimeout = 20 * time.Second
	}

	return &Controller{
		logger:        logger,
		speaker:       speaker,
		answerer:      answerer,
		navigator:     navigator,
		broadcast:     broadcast,
		answerTimeout: answerTimeout,
		state:         fsm.StateIdle,
		queue:         make(chan string, 16),
	}
}

// State returns the current state snapshot.
func (c *Controller) State() fsm.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Active reports whether the wake word has the assistant awake.
func (c *Controller) Active() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// Submit enqueues one transcript for processing. It never blocks; when the
// queue is full the transcript is dropped and logged.
func (c *Controller) Submit(transcript string) {
	select {
	case c.queue <- transcript:
	default:
		if c.logger != nil {
			c.logger.Warn("command queue full, transcript dropped", "length", len(transcript))
		}
	}
}

// Run drains the command queue until the context ends. One transcript is
// fully dispatched before the next is read.
func (c *Controller) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case transcript := <-c.queue:
			c.Process(ctx, transcript)
		}
	}
}

// Process interprets and dispatches one transcript synchronously. Effects
// occur in a fixed order: state transition, then speech, then navigation or
// broadcast.
func (c *Controller) Process(ctx context.Context, transcript string) {
	result := interpreter.Interpret(transcript, c.Active())

	if c.logger != nil {
		c.logger.Debug("transcript interpreted",
			"command", result.Command,
			"action", string(result.Action),
			"wake", result.IsWake,
		)
	}

	switch {
	case result.IsWake:
		c.handleWake(ctx, result)
	case result.Command == "sleep":
		c.handleSleep(ctx, result)
	case result.Command == "inactive":
		// Deliberate gate: ambient speech while asleep is a no-op.
	case result.Language != "":
		c.handleLanguage(ctx, result)
	case result.Action == interpreter.ActionNavigate:
		c.handleNavigate(ctx, result)
	case result.Action == interpreter.ActionAnswer:
		c.handleAnswer(ctx, result)
	default:
		c.handleAction(ctx, result)
	}
}

func (c *Controller) handleWake(ctx context.Context, result interpreter.Result) {
	if c.Active() {
		c.speak(ctx, result.Response, "")
		return
	}

	c.transition(fsm.EventWake)
	if c.State() == fsm.StateListening {
		c.mu.Lock()
		c.active = true
		c.mu.Unlock()
	}
	c.speak(ctx, result.Response, "")
}

func (c *Controller) handleSleep(ctx context.Context, result interpreter.Result) {
	c.transition(fsm.EventHear)
	c.transition(fsm.EventSleep)

	c.mu.Lock()
	c.active = false
	c.mu.Unlock()

	c.speak(ctx, result.Response, "")
}

func (c *Controller) handleLanguage(ctx context.Context, result interpreter.Result) {
	c.transition(fsm.EventHear)

	if switcher, ok := c.speaker.(interface{ SetLanguage(string) }); ok {
		switcher.SetLanguage(result.Language)
	}
	c.speak(ctx, result.Response, result.Language)

	c.transition(fsm.EventResolve)
}

func (c *Controller) handleNavigate(ctx context.Context, result interpreter.Result) {
	c.transition(fsm.EventHear)
	c.transition(fsm.EventNavigate)

	c.speak(ctx, result.Response, "")
	c.navigator.Navigate(ctx, result.Destination)

	// Broadcast regardless of how the navigation attempt itself lands, so
	// listening pages can react on their own.
	c.broadcast.Publish(events.Event{
		Name:    events.Navigate,
		Payload: map[string]string{events.FieldDestination: result.Destination},
	})

	c.transition(fsm.EventResolve)
}

func (c *Controller) handleAnswer(ctx context.Context, result interpreter.Result) {
	c.transition(fsm.EventHear)
	c.transition(fsm.EventThink)

	c.speak(ctx, result.Response, "")

	answerCtx, cancel := context.WithTimeout(ctx, c.answerTimeout)
	defer cancel()

	answer, err := c.answerer.Answer(answerCtx, result.Query)
	if err != nil || answer == "" {
		if c.logger != nil && err != nil {
			c.logger.Debug("answer collaborator failed", "error", err.Error())
		}
		c.speak(ctx, lexicon.ApologyResponse, "")
		c.transition(fsm.EventResolve)
		return
	}

	c.transition(fsm.EventSpeak)
	c.speak(ctx, answer, "")
	c.transition(fsm.EventResolve)
}

// handleAction covers record, stop_record, analyze, read, edit, execute,
// show, and unknown: speak the response and notify pages. The pages own
// the actual recording and analysis work.
func (c *Controller) handleAction(ctx context.Context, result interpreter.Result) {
	c.transition(fsm.EventHear)

	c.speak(ctx, result.Response, "")

	if name, payload, ok := actionEvent(result); ok {
		c.broadcast.Publish(events.Event{Name: name, Payload: payload})
	}

	c.transition(fsm.EventResolve)
}

func actionEvent(result interpreter.Result) (string, map[string]string, bool) {
	switch result.Action {
	case interpreter.ActionRecord:
		return events.StartRecording, nil, true
	case interpreter.ActionStopRecord:
		return events.StopRecording, nil, true
	case interpreter.ActionAnalyze:
		return events.AnalyzeSpeech, nil, true
	case interpreter.ActionRead:
		return events.Read, map[string]string{events.FieldTarget: result.Target}, true
	case interpreter.ActionEdit:
		return events.Edit, map[string]string{
			events.FieldTarget: result.Target,
			events.FieldValue:  result.Value,
		}, true
	default:
		return "", nil, false
	}
}

func (c *Controller) speak(ctx context.Context, text, language string) {
	if text == "" {
		return
	}
	c.speaker.Speak(ctx, speech.Utterance{Text: text, Language: language})
}

// transition applies one FSM event, recovering through error+reset when the
// event does not fit the current state.
func (c *Controller) transition(event fsm.Event) {
	c.mu.Lock()
	next, err := fsm.Transition(c.state, event)
	if err == nil {
		c.state = next
		c.mu.Unlock()
		c.publishState(next)
		return
	}
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Debug("state transition rejected", "from", string(c.State()), "event", string(event))
	}
	c.toErrorAndReset()
}

// toErrorAndReset transitions to error and back to idle best-effort.
func (c *Controller) toErrorAndReset() {
	c.mu.Lock()
	c.state = fsm.StateError
	if next, err := fsm.Transition(c.state, fsm.EventReset); err == nil {
		c.state = next
	}
	c.active = false
	state := c.state
	c.mu.Unlock()
	c.publishState(state)
}

func (c *Controller) publishState(state fsm.State) {
	c.broadcast.Publish(events.Event{
		Name:    events.StateChanged,
		Payload: map[string]string{events.FieldState: string(state)},
	})
}
