package event_bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_PublishTyped(t *testing.T) {
	bus := NewEventBus()
	var received []AchievementChangedEvent
	unsubscribe := SubscribeTyped(bus, AchievementChanged, func(e EventT[AchievementChangedEvent]) error {
		received = append(received, e.Data)
		return nil
	})

	require.NoError(t, PublishTyped(context.Background(), bus, AchievementChanged, AchievementChangedEvent{Owner: "u", WeekId: "2024-03-04"}))
	require.NoError(t, PublishTyped(context.Background(), bus, AchievementChanged, "wrong payload"))
	unsubscribe()
	require.NoError(t, PublishTyped(context.Background(), bus, AchievementChanged, AchievementChangedEvent{Owner: "u"}))

	require.Len(t, received, 1)
	assert.Equal(t, "2024-03-04", received[0].WeekId)
}

func TestEventBus_CollectsFailures(t *testing.T) {
	bus := NewEventBus()
	calls := 0
	bus.Subscribe(ScheduleChanged, func(e Event) error {
		calls++
		return errors.New("boom")
	})
	bus.Subscribe(ScheduleChanged, func(e Event) error {
		calls++
		panic("handler exploded")
	})
	bus.Subscribe(ScheduleChanged, func(e Event) error {
		calls++
		return nil
	})

	err := bus.Publish(NewEvent(context.Background(), ScheduleChanged, ScheduleChangedEvent{}))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 handler(s) failed")
	assert.Equal(t, 3, calls)
}

func TestEventBus_CancelledContext(t *testing.T) {
	bus := NewEventBus()
	called := false
	bus.Subscribe(ScheduleChanged, func(e Event) error {
		called = true
		return nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := bus.Publish(NewEvent(ctx, ScheduleChanged, nil))

	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestPublishTyped_NilBus(t *testing.T) {
	assert.NoError(t, PublishTyped(context.Background(), nil, ScheduleChanged, ScheduleChangedEvent{}))
}
