package events

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBusFanOut(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	first, cancelFirst := bus.Subscribe(4)
	defer cancelFirst()
	second, cancelSecond := bus.Subscribe(4)
	defer cancelSecond()

	bus.Publish(Event{Name: Navigate, Payload: map[string]string{FieldDestination: "/settings"}})

	got := <-first
	require.Equal(t, Navigate, got.Name)
	require.Equal(t, "/settings", got.Payload[FieldDestination])

	got = <-second
	require.Equal(t, Navigate, got.Name)
}

func TestBusPublishDropsWhenSubscriberFull(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	sub, cancel := bus.Subscribe(1)
	defer cancel()

	bus.Publish(Event{Name: StartRecording})
	bus.Publish(Event{Name: StopRecording})

	got := <-sub
	require.Equal(t, StartRecording, got.Name)

	select {
	case extra, ok := <-sub:
		require.False(t, ok, "unexpected buffered event %+v", extra)
	default:
	}
}

func TestBusUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	sub, cancel := bus.Subscribe(1)
	cancel()

	_, ok := <-sub
	require.False(t, ok)

	// Publishing after unsubscribe must not panic.
	bus.Publish(Event{Name: AnalyzeSpeech})
}

func TestBusCloseClosesSubscribers(t *testing.T) {
	bus := NewBus()
	sub, cancel := bus.Subscribe(1)
	defer cancel()

	bus.Close()
	_, ok := <-sub
	require.False(t, ok)

	// Subscribing after close yields a closed channel.
	late, _ := bus.Subscribe(1)
	_, ok = <-late
	require.False(t, ok)
}
