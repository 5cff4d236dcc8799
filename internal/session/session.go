package session

import (
	"context"

	"github.com/google/uuid"

	"github.com/farmfreshconnect/farmfresh-backend/pkg/enums"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/logger"
)

// State is the resolved position of a visitor in the onboarding funnel.
type State string

const (
	StateLoading                 State = "loading"
	StateUnauthenticated         State = "unauthenticated"
	StateAuthenticatedIncomplete State = "authenticated_incomplete"
	StateAuthenticatedComplete   State = "authenticated_complete"
)

// Profile is the extended account data needed to judge onboarding.
type Profile struct {
	AccountType *enums.AccountType
	PhoneNumber *string
}

// ProfileResolver fetches the extended profile for a signed-in identity.
// A NotFound result must come back as a zero Profile with a nil error or as
// an error; the watcher treats both the same way.
type ProfileResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID) (Profile, error)
}

// ResolverFunc adapts a function to the ProfileResolver interface.
type ResolverFunc func(ctx context.Context, userID uuid.UUID) (Profile, error)

func (f ResolverFunc) Resolve(ctx context.Context, userID uuid.UUID) (Profile, error) {
	return f(ctx, userID)
}

// Session is the combined identity + profile snapshot. It is replaced
// wholesale on every change, never mutated in place.
type Session struct {
	Identity    *Identity
	AccountType *enums.AccountType
	PhoneNumber *string
	Loading     bool
}

// State derives the machine state from the snapshot.
func (s Session) State() State {
	switch {
	case s.Loading:
		return StateLoading
	case s.Identity == nil:
		return StateUnauthenticated
	case s.AccountType == nil:
		return StateAuthenticatedIncomplete
	default:
		return StateAuthenticatedComplete
	}
}

// Watcher combines the identity stream and the profile resolver into a feed
// of session snapshots.
type Watcher struct {
	stream   Stream
	resolver ProfileResolver
	logg     *logger.Logger
}

func NewWatcher(stream Stream, resolver ProfileResolver, logg *logger.Logger) *Watcher {
	return &Watcher{
		stream:   stream,
		resolver: resolver,
		logg:     logg,
	}
}

// Watch subscribes to the identity stream and emits a session snapshot for
// every identity event, starting with a Loading snapshot. Releasing stops
// the background work and detaches the identity subscription.
func (w *Watcher) Watch(ctx context.Context) (<-chan Session, func()) {
	out := make(chan Session, 1)
	watchCtx, cancel := context.WithCancel(ctx)
	identities, releaseStream := w.stream.Subscribe(watchCtx)

	release := func() {
		cancel()
		releaseStream()
	}

	go func() {
		defer close(out)
		emit(out, Session{Loading: true})
		for {
			select {
			case <-watchCtx.Done():
				return
			case identity, ok := <-identities:
				if !ok {
					return
				}
				emit(out, w.resolve(watchCtx, identity))
			}
		}
	}()

	return out, release
}

// Resolve produces the session snapshot for a single identity event.
func (w *Watcher) resolve(ctx context.Context, identity *Identity) Session {
	if identity == nil {
		return Session{}
	}

	snapshot := Session{Identity: identity}
	profile, err := w.resolver.Resolve(ctx, identity.UserID)
	if err != nil {
		// A failed profile fetch drives the same path as a missing
		// account type: the visitor is routed to profile completion.
		if w.logg != nil {
			w.logg.Warn(w.logg.WithUserID(ctx, identity.UserID.String()), "profile fetch failed, treating session as incomplete")
		}
		return snapshot
	}
	snapshot.AccountType = profile.AccountType
	snapshot.PhoneNumber = profile.PhoneNumber
	return snapshot
}

// emit replaces any undelivered snapshot with the newest one.
func emit(ch chan Session, s Session) {
	for {
		select {
		case ch <- s:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}
