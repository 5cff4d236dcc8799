package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/farmfreshconnect/farmfresh-backend/pkg/enums"
)

func waitFor[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for value")
		panic("unreachable")
	}
}

func TestBroadcasterDeliversCurrentToLateSubscriber(t *testing.T) {
	b := NewBroadcaster()
	identity := &Identity{UserID: uuid.New(), Email: "a@b.c", FullName: "A"}
	b.Publish(identity)

	ch, release := b.Subscribe(context.Background())
	defer release()

	got := waitFor(t, ch)
	if got == nil || got.UserID != identity.UserID {
		t.Fatalf("expected current identity on subscribe, got %+v", got)
	}
}

func TestBroadcasterNoValueBeforeFirstPublish(t *testing.T) {
	b := NewBroadcaster()
	ch, release := b.Subscribe(context.Background())
	defer release()

	select {
	case v := <-ch:
		t.Fatalf("expected no delivery before first publish, got %+v", v)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcasterLastAppliedWins(t *testing.T) {
	b := NewBroadcaster()
	ch, release := b.Subscribe(context.Background())
	defer release()

	first := &Identity{UserID: uuid.New()}
	second := &Identity{UserID: uuid.New()}
	b.Publish(first)
	b.Publish(second)

	got := waitFor(t, ch)
	if got == nil || got.UserID != second.UserID {
		t.Fatalf("slow subscriber should only see the newest identity, got %+v", got)
	}

	select {
	case v := <-ch:
		t.Fatalf("stale identity should have been dropped, got %+v", v)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcasterReleaseDetaches(t *testing.T) {
	b := NewBroadcaster()
	ch, release := b.Subscribe(context.Background())
	release()
	release() // idempotent

	b.Publish(&Identity{UserID: uuid.New()})

	select {
	case v, ok := <-ch:
		if ok {
			t.Fatalf("released subscriber received %+v", v)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWatcherEmitsLoadingFirst(t *testing.T) {
	b := NewBroadcaster()
	w := NewWatcher(b, ResolverFunc(func(ctx context.Context, userID uuid.UUID) (Profile, error) {
		return Profile{}, nil
	}), nil)

	sessions, release := w.Watch(context.Background())
	defer release()

	got := waitFor(t, sessions)
	if got.State() != StateLoading {
		t.Fatalf("first snapshot should be loading, got %s", got.State())
	}
}

func TestWatcherResolvesStates(t *testing.T) {
	accountType := enums.AccountTypeFarmer
	phone := "5551234567"
	complete := uuid.New()
	incomplete := uuid.New()

	b := NewBroadcaster()
	w := NewWatcher(b, ResolverFunc(func(ctx context.Context, userID uuid.UUID) (Profile, error) {
		if userID == complete {
			return Profile{AccountType: &accountType, PhoneNumber: &phone}, nil
		}
		return Profile{}, nil
	}), nil)

	sessions, release := w.Watch(context.Background())
	defer release()

	if got := waitFor(t, sessions); got.State() != StateLoading {
		t.Fatalf("expected loading first, got %s", got.State())
	}

	b.Publish(&Identity{UserID: incomplete})
	if got := waitFor(t, sessions); got.State() != StateAuthenticatedIncomplete {
		t.Fatalf("expected incomplete, got %s", got.State())
	}

	b.Publish(&Identity{UserID: complete})
	got := waitFor(t, sessions)
	if got.State() != StateAuthenticatedComplete {
		t.Fatalf("expected complete, got %s", got.State())
	}
	if got.AccountType == nil || *got.AccountType != enums.AccountTypeFarmer {
		t.Fatalf("expected farmer account type, got %+v", got.AccountType)
	}

	b.Publish(nil)
	if got := waitFor(t, sessions); got.State() != StateUnauthenticated {
		t.Fatalf("expected unauthenticated after sign-out, got %s", got.State())
	}
}

func TestWatcherProfileErrorMeansIncomplete(t *testing.T) {
	b := NewBroadcaster()
	w := NewWatcher(b, ResolverFunc(func(ctx context.Context, userID uuid.UUID) (Profile, error) {
		return Profile{}, errors.New("store down")
	}), nil)

	sessions, release := w.Watch(context.Background())
	defer release()

	waitFor(t, sessions) // loading

	b.Publish(&Identity{UserID: uuid.New()})
	if got := waitFor(t, sessions); got.State() != StateAuthenticatedIncomplete {
		t.Fatalf("profile error should resolve to incomplete, got %s", got.State())
	}
}

func TestSessionStateDerivation(t *testing.T) {
	accountType := enums.AccountTypeBuyer

	if (Session{Loading: true}).State() != StateLoading {
		t.Fatal("loading flag should dominate")
	}
	if (Session{}).State() != StateUnauthenticated {
		t.Fatal("nil identity should be unauthenticated")
	}
	if (Session{Identity: &Identity{}}).State() != StateAuthenticatedIncomplete {
		t.Fatal("identity without account type should be incomplete")
	}
	if (Session{Identity: &Identity{}, AccountType: &accountType}).State() != StateAuthenticatedComplete {
		t.Fatal("identity with account type should be complete")
	}
}
