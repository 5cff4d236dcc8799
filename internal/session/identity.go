package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Identity is the signed-in principal as reported by the identity provider.
// A nil *Identity on the stream means "signed out".
type Identity struct {
	UserID   uuid.UUID
	Email    string
	FullName string
}

// Stream delivers the current identity at subscribe time and every change
// afterwards. The returned release function detaches the subscriber; after
// release no further values are delivered.
type Stream interface {
	Subscribe(ctx context.Context) (<-chan *Identity, func())
}

// Broadcaster is the process-local identity stream. The auth service
// publishes sign-in and sign-out transitions; session watchers subscribe.
type Broadcaster struct {
	mu      sync.Mutex
	current *Identity
	started bool
	subs    map[int]chan *Identity
	nextID  int
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs: make(map[int]chan *Identity),
	}
}

// Publish replaces the current identity and fans it out to every subscriber.
// Delivery is last-applied-wins: a slow subscriber observes only the newest
// snapshot, never a backlog.
func (b *Broadcaster) Publish(identity *Identity) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = identity
	b.started = true
	for _, ch := range b.subs {
		deliverLatest(ch, identity)
	}
}

// Subscribe registers a consumer. When an identity event has already been
// observed the current value is delivered immediately. Releasing (or
// cancelling ctx) detaches the subscriber.
func (b *Broadcaster) Subscribe(ctx context.Context) (<-chan *Identity, func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	ch := make(chan *Identity, 1)
	b.subs[id] = ch
	if b.started {
		deliverLatest(ch, b.current)
	}
	b.mu.Unlock()

	var once sync.Once
	release := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}

	if ctx != nil {
		go func() {
			<-ctx.Done()
			release()
		}()
	}

	return ch, release
}

// deliverLatest replaces any undelivered value so the channel always holds
// the newest snapshot.
func deliverLatest(ch chan *Identity, identity *Identity) {
	for {
		select {
		case ch <- identity:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}
