package cart

import (
	"sync"

	"github.com/google/uuid"
)

// Notifier is the process-local change feed for cart mutations, keyed by
// buyer. Observers receive a signal per mutation; coalescing is fine since
// consumers re-read the full snapshot on every signal.
type Notifier struct {
	mu     sync.Mutex
	subs   map[uuid.UUID]map[int]chan struct{}
	nextID int
}

func NewNotifier() *Notifier {
	return &Notifier{
		subs: make(map[uuid.UUID]map[int]chan struct{}),
	}
}

// Notify signals every observer of the buyer's cart.
func (n *Notifier) Notify(buyerID uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs[buyerID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Subscribe registers an observer for the buyer's cart mutations. The
// returned release function must be called on teardown.
func (n *Notifier) Subscribe(buyerID uuid.UUID) (<-chan struct{}, func()) {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	ch := make(chan struct{}, 1)
	if n.subs[buyerID] == nil {
		n.subs[buyerID] = make(map[int]chan struct{})
	}
	n.subs[buyerID][id] = ch
	n.mu.Unlock()

	var once sync.Once
	release := func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs[buyerID], id)
			if len(n.subs[buyerID]) == 0 {
				delete(n.subs, buyerID)
			}
			n.mu.Unlock()
		})
	}
	return ch, release
}
