package events

import "log/slog"

// Handler reacts to one published event. Errors are logged by the bus and do
// not stop later handlers.
type Handler func(Event) error

// Bus is an in-process publish/subscribe map keyed on (source, action). It
// is populated once at boot and read-only afterwards, so Publish takes no
// lock.
type Bus struct {
	subscribers map[string]map[string][]Handler
}

func NewBus() *Bus {
	return &Bus{subscribers: make(map[string]map[string][]Handler)}
}

// Subscribe appends handler to the list for (source, action). Handlers are
// invoked in subscription order.
func (b *Bus) Subscribe(source, action string, handler Handler) {
	actions, ok := b.subscribers[source]
	if !ok {
		actions = make(map[string][]Handler)
		b.subscribers[source] = actions
	}
	actions[action] = append(actions[action], handler)
}

// Publish invokes every handler registered for the event, sequentially and
// in subscription order. A failing or panicking handler is logged and must
// not prevent the remaining handlers from running.
func (b *Bus) Publish(event Event) {
	handlers := b.subscribers[event.Source][event.Action]
	for _, handler := range handlers {
		b.invoke(handler, event)
	}
}

func (b *Bus) invoke(handler Handler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Event handler panicked", "source", event.Source, "action", event.Action, "panic", r)
		}
	}()
	if err := handler(event); err != nil {
		slog.Error("Event handler failed", "source", event.Source, "action", event.Action, "error", err)
	}
}
