package fsm

import "fmt"

type State string

type Event string

const (
	StateIdle       State = "idle"
	StateListening  State = "listening"
	StateProcessing State = "processing"
	StateSpeaking   State = "speaking"
	StateThinking   State = "thinking"
	StateNavigating State = "navigating"
	StateError      State = "error"
)

const (
	EventWake     Event = "wake"
	EventSleep    Event = "sleep"
	EventHear     Event = "hear"
	EventSpeak    Event = "speak"
	EventThink    Event = "think"
	EventNavigate Event = "navigate"
	EventResolve  Event = "resolve"
	EventFail     Event = "fail"
	EventReset    Event = "reset"
)

func Transition(current State, event Event) (State, error) {
	if event == EventFail {
		return StateError, nil
	}

	switch current {
	case StateIdle:
		switch event {
		case EventWake:
			return StateListening, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateListening:
		switch event {
		case EventSleep:
			return StateIdle, nil
		case EventHear:
			return StateProcessing, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateProcessing:
		switch event {
		case EventSpeak:
			return StateSpeaking, nil
		case EventThink:
			return StateThinking, nil
		case EventNavigate:
			return StateNavigating, nil
		case EventSleep:
			return StateIdle, nil
		case EventResolve:
			return StateListening, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateSpeaking:
		switch event {
		case EventResolve:
			return StateListening, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateThinking:
		switch event {
		case EventSpeak:
			return StateSpeaking, nil
		case EventResolve:
			return StateListening, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateNavigating:
		switch event {
		case EventResolve:
			return StateListening, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateError:
		switch event {
		case EventReset:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
