package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/opskernel/admin-api/internal/core/domain"
)

func newSessionStoreTest(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewSessionStore(client, "admin-api"), mr
}

func testPrincipal() domain.Principal {
	return domain.Principal{UserID: "42", UserName: "alice", Status: true}
}

func TestSessionStore_PutGetRoundTrip(t *testing.T) {
	store, _ := newSessionStoreTest(t)
	ctx := context.Background()

	if err := store.Put(ctx, "sid-1", testPrincipal(), time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}

	p, ok, err := store.Get(ctx, "sid-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatalf("expected record, got miss")
	}
	if *p != testPrincipal() {
		t.Fatalf("round trip mismatch: %+v", p)
	}
}

func TestSessionStore_KeyNamespace(t *testing.T) {
	store, mr := newSessionStoreTest(t)
	ctx := context.Background()

	if err := store.Put(ctx, "sid-1", testPrincipal(), time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}
	if !mr.Exists("admin-api:api-user:token-id:sid-1") {
		t.Fatalf("record not stored under the namespaced key, keys: %v", mr.Keys())
	}
}

func TestSessionStore_TTLApplied(t *testing.T) {
	store, mr := newSessionStoreTest(t)
	ctx := context.Background()

	if err := store.Put(ctx, "sid-1", testPrincipal(), 30*time.Second); err != nil {
		t.Fatalf("put: %v", err)
	}
	if ttl := mr.TTL("admin-api:api-user:token-id:sid-1"); ttl != 30*time.Second {
		t.Fatalf("expected 30s ttl, got %v", ttl)
	}

	mr.FastForward(time.Minute)
	_, ok, err := store.Get(ctx, "sid-1")
	if err != nil {
		t.Fatalf("get after expiry: %v", err)
	}
	if ok {
		t.Fatalf("expired record still readable")
	}
}

func TestSessionStore_GetMiss(t *testing.T) {
	store, _ := newSessionStoreTest(t)

	p, ok, err := store.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("miss must not error: %v", err)
	}
	if ok || p != nil {
		t.Fatalf("expected absent, got %+v", p)
	}
}

func TestSessionStore_CorruptPayloadIsAbsent(t *testing.T) {
	store, mr := newSessionStoreTest(t)

	if err := mr.Set("admin-api:api-user:token-id:sid-1", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	p, ok, err := store.Get(context.Background(), "sid-1")
	if err != nil {
		t.Fatalf("corrupt payload must not error: %v", err)
	}
	if ok || p != nil {
		t.Fatalf("corrupt payload must read as absent, got %+v", p)
	}
}

func TestSessionStore_DeleteIdempotent(t *testing.T) {
	store, _ := newSessionStoreTest(t)
	ctx := context.Background()

	if err := store.Put(ctx, "sid-1", testPrincipal(), time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}

	deleted, err := store.Delete(ctx, "sid-1")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !deleted {
		t.Fatalf("first delete should report true")
	}

	deleted, err = store.Delete(ctx, "sid-1")
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if deleted {
		t.Fatalf("second delete should report false")
	}
}

func TestSessionStore_InfrastructureErrorSurfaces(t *testing.T) {
	store, mr := newSessionStoreTest(t)
	ctx := context.Background()

	if err := store.Put(ctx, "sid-1", testPrincipal(), time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}
	mr.Close()

	if _, _, err := store.Get(ctx, "sid-1"); err == nil {
		t.Fatalf("expected infrastructure error after close")
	}
	if _, err := store.Delete(ctx, "sid-1"); err == nil {
		t.Fatalf("expected infrastructure error after close")
	}
}
