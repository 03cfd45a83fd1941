package impl

import (
	"context"
	"errors"
	"testing"
	"time"

	"groupauth/internal/domain"
)

func TestSessionResolve(t *testing.T) {
	store := newMemoryStore()
	sessions := &memorySessions{store: store}
	group := store.addGroup("The Smiths", "apple-pie")
	svc := NewSessionService(store, sessions, testLogger())
	ctx := context.Background()

	sess, err := sessions.Create(ctx, group.ID, time.Hour, "127.0.0.1", "unit-test")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	gotGroup, gotSess, err := svc.Resolve(ctx, sess.ID)
	if err != nil {
		t.Fatalf("resolve returned error: %v", err)
	}
	if gotGroup.ID != group.ID {
		t.Fatalf("resolved wrong group: got %v want %v", gotGroup.ID, group.ID)
	}
	if gotSess.ID != sess.ID {
		t.Fatalf("resolved wrong session: got %q want %q", gotSess.ID, sess.ID)
	}
}

func TestSessionResolveUnknown(t *testing.T) {
	store := newMemoryStore()
	svc := NewSessionService(store, &memorySessions{store: store}, testLogger())

	if _, _, err := svc.Resolve(context.Background(), "no-such-session"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionResolveExpired(t *testing.T) {
	store := newMemoryStore()
	sessions := &memorySessions{store: store}
	group := store.addGroup("The Smiths", "apple-pie")
	svc := NewSessionService(store, sessions, testLogger())
	ctx := context.Background()

	sess, err := sessions.Create(ctx, group.ID, -time.Minute, "", "")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	if _, _, err := svc.Resolve(ctx, sess.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for expired session, got %v", err)
	}
}

func TestSessionResolveOrphaned(t *testing.T) {
	store := newMemoryStore()
	sessions := &memorySessions{store: store}
	group := store.addGroup("The Smiths", "apple-pie")
	svc := NewSessionService(store, sessions, testLogger())
	ctx := context.Background()

	sess, err := sessions.Create(ctx, group.ID, time.Hour, "", "")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	// Group deleted out from under the session.
	store.mu.Lock()
	delete(store.groups, group.ID)
	store.mu.Unlock()

	if _, _, err := svc.Resolve(ctx, sess.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for orphaned session, got %v", err)
	}
}

func TestSessionEndIsIdempotent(t *testing.T) {
	store := newMemoryStore()
	sessions := &memorySessions{store: store}
	group := store.addGroup("The Smiths", "apple-pie")
	svc := NewSessionService(store, sessions, testLogger())
	ctx := context.Background()

	sess, err := sessions.Create(ctx, group.ID, time.Hour, "", "")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	if err := svc.End(ctx, sess.ID); err != nil {
		t.Fatalf("end returned error: %v", err)
	}
	if _, _, err := svc.Resolve(ctx, sess.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("session still resolvable after end: %v", err)
	}
	if err := svc.End(ctx, sess.ID); err != nil {
		t.Fatalf("second end returned error: %v", err)
	}
	if err := svc.End(ctx, "never-existed"); err != nil {
		t.Fatalf("ending unknown session returned error: %v", err)
	}
}
