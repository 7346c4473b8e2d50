package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/opskernel/admin-api/internal/core/domain"
)

// Key layout: <appName>:api-user:token-id:<sessionId> → JSON principal.
const sessionKeyInfix = ":api-user:token-id:"

// SessionStore keeps session records in Redis with a per-record TTL. It is
// the only writer of the session key namespace.
type SessionStore struct {
	client  *redis.Client
	appName string
}

func NewSessionStore(client *redis.Client, appName string) *SessionStore {
	return &SessionStore{client: client, appName: appName}
}

// Put serializes p and writes it under the namespaced session key with the
// given TTL. A non-nil error means the write was not acknowledged.
func (s *SessionStore) Put(ctx context.Context, sessionID string, p domain.Principal, ttl time.Duration) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal principal: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sessionID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Get reads and deserializes the record for sessionID. A miss or a corrupt
// payload is reported as absent; only infrastructure failures error.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (*domain.Principal, bool, error) {
	payload, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read session: %w", err)
	}

	var p domain.Principal
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, false, nil
	}
	return &p, true, nil
}

// Delete removes the record for sessionID, reporting whether one existed.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.client.Del(ctx, s.key(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	return n > 0, nil
}

func (s *SessionStore) key(sessionID string) string {
	return s.appName + sessionKeyInfix + sessionID
}
