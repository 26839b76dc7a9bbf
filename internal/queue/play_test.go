package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scuttle/internal/config"
	"scuttle/internal/events"
)

// recordBus subscribes to every queue action and records events in the order
// they were published.
func recordBus(source string) (*events.Bus, *[]events.Event) {
	bus := events.NewBus()
	var seen []events.Event
	record := func(e events.Event) error {
		seen = append(seen, e)
		return nil
	}
	actions := []string{
		events.ActionSetAll,
		events.ActionSetFirst,
		events.ActionInsertNext,
		events.ActionPush,
		events.ActionPop,
		events.ActionRemove,
		events.ActionClear,
		events.ActionSendContent,
	}
	for _, action := range actions {
		bus.Subscribe(source, action, record)
	}
	return bus, &seen
}

func TestPlayQueueOrdering(t *testing.T) {
	bus, _ := recordBus(config.PlayQueueName)
	q := NewPlayQueue(bus)

	q.Push("a")
	q.Push("b")
	q.SetFirst("c")
	q.InsertNext("d")

	assert.Equal(t, []string{"c", "d", "a", "b"}, q.Items())

	id, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, "c", id)
	assert.Equal(t, 3, q.Len())
}

func TestPlayQueueSetAllReplaces(t *testing.T) {
	bus, seen := recordBus(config.PlayQueueName)
	q := NewPlayQueue(bus)

	q.Push("old")
	q.SetAll([]string{"x", "y"})

	assert.Equal(t, []string{"x", "y"}, q.Items())

	last := (*seen)[len(*seen)-1]
	assert.Equal(t, events.ActionSetAll, last.Action)
	assert.Equal(t, []string{"x", "y"}, last.Payload["content"])
}

// Clients render the queue straight from the event payload, so every
// mutation event must carry the full queue snapshot alongside the changed id.
func TestPlayQueueEventsCarrySnapshot(t *testing.T) {
	bus, seen := recordBus(config.PlayQueueName)
	q := NewPlayQueue(bus)

	q.Push("a")
	q.Push("b")
	q.InsertNext("c")
	q.Pop()
	q.RemoveAt(1)
	q.Clear()

	want := [][]string{
		{"a"},
		{"a", "b"},
		{"a", "c", "b"},
		{"c", "b"},
		{"c"},
		{},
	}
	require.Len(t, *seen, len(want))
	for i, e := range *seen {
		assert.Equal(t, want[i], e.Payload["content"], "event %d (%s)", i, e.Action)
	}

	push := (*seen)[0]
	assert.Equal(t, events.ActionPush, push.Action)
	assert.Equal(t, "a", push.Payload["id"])
}

func TestPlayQueuePopEmpty(t *testing.T) {
	bus, seen := recordBus(config.PlayQueueName)
	q := NewPlayQueue(bus)

	_, ok := q.Pop()
	assert.False(t, ok)
	assert.Empty(t, *seen, "an empty pop must not publish")
}

func TestPlayQueueRemoveAtOutOfRange(t *testing.T) {
	bus, seen := recordBus(config.PlayQueueName)
	q := NewPlayQueue(bus)

	q.Push("a")
	*seen = nil

	q.RemoveAt(5)
	q.RemoveAt(-1)
	assert.Equal(t, []string{"a"}, q.Items())
	assert.Empty(t, *seen)

	q.RemoveAt(0)
	assert.Empty(t, q.Items())
	require.Len(t, *seen, 1)
	assert.Equal(t, events.ActionRemove, (*seen)[0].Action)
	assert.Equal(t, "a", (*seen)[0].Payload["id"])
}

func TestPlayQueueEventOrderMatchesMutations(t *testing.T) {
	bus, seen := recordBus(config.PlayQueueName)
	q := NewPlayQueue(bus)

	q.Push("a")
	q.InsertNext("b")
	q.Pop()
	q.Clear()
	q.SendContent()

	var actions []string
	for _, e := range *seen {
		actions = append(actions, e.Action)
	}
	assert.Equal(t, []string{
		events.ActionPush,
		events.ActionInsertNext,
		events.ActionPop,
		events.ActionClear,
		events.ActionSendContent,
	}, actions)
}

func TestPlayQueueContains(t *testing.T) {
	bus, _ := recordBus(config.PlayQueueName)
	q := NewPlayQueue(bus)

	q.Push("a")
	assert.True(t, q.Contains("a"))
	assert.False(t, q.Contains("b"))
}
