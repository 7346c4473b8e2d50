package token

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/opskernel/admin-api/internal/core/domain"
	"github.com/opskernel/admin-api/internal/core/ports"
)

// Verification failure reasons surfaced in the 10401 envelope.
const (
	reasonMalformed = "malformed token"
	reasonBadSig    = "invalid signature"
	reasonExpired   = "expired token"
	reasonInternal  = "verification failed"
)

const bearerScheme = "Bearer"

// Service composes the signer and the session store into token issuance,
// verification, and revocation.
type Service struct {
	signer *Signer
	store  ports.SessionStore
	ttl    time.Duration
	log    zerolog.Logger
}

func NewService(signer *Signer, store ports.SessionStore, ttl time.Duration, log zerolog.Logger) *Service {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Service{signer: signer, store: store, ttl: ttl, log: log}
}

// Issue creates a session record for p and returns "<sessionId>.<signature>".
// When the store does not acknowledge the write, no token exists: the error
// is returned and nothing is left behind for the id.
func (s *Service) Issue(ctx context.Context, p domain.Principal) (string, error) {
	sessionID := newSessionID()
	signature := s.signer.Sign(sessionID)

	if err := s.store.Put(ctx, sessionID, p, s.ttl); err != nil {
		return "", err
	}
	return sessionID + "." + signature, nil
}

// Verify resolves rawHeader to its principal. An empty header is anonymous,
// not an error. Infrastructure failures are logged with their true cause and
// surfaced as the generic 10401 so callers cannot probe backend state.
func (s *Service) Verify(ctx context.Context, rawHeader string) (*domain.Principal, error) {
	if rawHeader == "" {
		return nil, nil
	}

	sessionID, signature, ok := parseBearer(rawHeader)
	if !ok {
		return nil, domain.Unauthorized(reasonMalformed)
	}
	if !s.signer.Verify(sessionID, signature) {
		return nil, domain.Unauthorized(reasonBadSig)
	}

	p, found, err := s.store.Get(ctx, sessionID)
	if err != nil {
		s.log.Error().Err(err).Msg("session lookup failed during token verification")
		return nil, domain.Unauthorized(reasonInternal)
	}
	if !found {
		return nil, domain.Unauthorized(reasonExpired)
	}
	return p, nil
}

// Revoke deletes the session behind rawHeader. Logout is best effort: any
// parse, signature, or store failure yields false, never an error, and only
// an actual deletion yields true.
func (s *Service) Revoke(ctx context.Context, rawHeader string) bool {
	if rawHeader == "" {
		return false
	}

	sessionID, signature, ok := parseBearer(rawHeader)
	if !ok {
		return false
	}
	if !s.signer.Verify(sessionID, signature) {
		return false
	}

	deleted, err := s.store.Delete(ctx, sessionID)
	if err != nil {
		s.log.Error().Err(err).Msg("session delete failed during token revocation")
		return false
	}
	return deleted
}

// parseBearer splits "Bearer <sessionId>.<signature>": exactly one space,
// exactly one dot, both token parts non-empty.
func parseBearer(rawHeader string) (sessionID, signature string, ok bool) {
	scheme, credential, found := strings.Cut(rawHeader, " ")
	if !found || scheme != bearerScheme || strings.Contains(credential, " ") {
		return "", "", false
	}

	sessionID, signature, found = strings.Cut(credential, ".")
	if !found || sessionID == "" || signature == "" || strings.Contains(signature, ".") {
		return "", "", false
	}
	return sessionID, signature, true
}

// newSessionID returns a cryptographically random 32-hex-char identifier.
func newSessionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
