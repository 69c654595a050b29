package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_Publish(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var seen []string
	dispatcher.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		seen = append(seen, "first:"+e.TicketID)
		return errors.New("handler failed")
	})
	dispatcher.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		seen = append(seen, "second:"+e.TicketID)
		return nil
	})
	dispatcher.Subscribe(EventCommentAdded, func(_ context.Context, e Event) error {
		seen = append(seen, "comment:"+e.TicketID)
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventTicketCreated, TicketID: "T-1"})
	require.NoError(t, err)

	// A failing handler does not block the rest, and unrelated subscriptions
	// stay quiet.
	assert.Equal(t, []string{"first:T-1", "second:T-1"}, seen)
}

func TestDispatcher_NoSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	err := dispatcher.Publish(context.Background(), Event{Type: EventTicketStatusChanged, TicketID: "T-1"})
	assert.NoError(t, err)
}
