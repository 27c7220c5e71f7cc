package cart

import "sync"

// EventKind identifies a cart notification.
type EventKind int

const (
	// EventItemAdded fires after a successful add and its follow-up fetch.
	EventItemAdded EventKind = iota
	// EventCartUpdated fires after a successful quantity change or removal.
	EventCartUpdated
)

// Event carries a cart notification to subscribers.
type Event struct {
	Kind      EventKind
	VariantID int64 // set for EventItemAdded
	Quantity  int   // set for EventItemAdded
	Cart      *Cart
}

// Bus is an explicit observer registry for cart notifications. It decouples
// the controller from page-level collaborators that react to cart changes.
type Bus struct {
	mu   sync.Mutex
	next int
	subs map[int]func(Event)
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]func(Event))}
}

// Subscribe registers fn and returns a token for Unsubscribe.
func (b *Bus) Subscribe(fn func(Event)) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	b.subs[b.next] = fn
	return b.next
}

// Unsubscribe removes a previously registered observer. Unknown tokens are a
// no-op.
func (b *Bus) Unsubscribe(token int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, token)
}

// Publish delivers ev to every subscriber. Delivery is synchronous and in
// unspecified order.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	fns := make([]func(Event), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
