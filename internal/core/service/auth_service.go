package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/opskernel/admin-api/internal/core/domain"
	"github.com/opskernel/admin-api/internal/core/ports"
)

// AuthService implements password login and role/permission resolution.
type AuthService struct {
	users  ports.UserRepository
	roles  ports.RoleRepository
	tokens ports.TokenService
	log    zerolog.Logger
}

func NewAuthService(users ports.UserRepository, roles ports.RoleRepository, tokens ports.TokenService, log zerolog.Logger) *AuthService {
	return &AuthService{users: users, roles: roles, tokens: tokens, log: log}
}

// Login validates the credentials and issues a bearer token. Business
// failures carry the 10500 envelope code with the specific reason; no token
// is issued on any failure path.
func (s *AuthService) Login(ctx context.Context, userName, password, clientIP string) (string, error) {
	user, err := s.users.FindByUserName(ctx, userName)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", &domain.StatusError{Code: domain.CodeFail, Message: "用户不存在"}
		}
		return "", err
	}
	if !user.Status {
		return "", &domain.StatusError{Code: domain.CodeFail, Message: "用户状态异常"}
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", &domain.StatusError{Code: domain.CodeFail, Message: "密码错误"}
	}

	token, err := s.tokens.Issue(ctx, user.Principal())
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	// Last-login stamping is best effort; a failure must not undo a
	// successful login.
	if err := s.users.RecordLogin(ctx, user.ID, clientIP); err != nil {
		s.log.Warn().Err(err).Str("user", userName).Msg("record login failed")
	}

	return token, nil
}

// UserInfo returns the account plus its resolved grants.
func (s *AuthService) UserInfo(ctx context.Context, userID string) (*domain.User, domain.Grants, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, domain.Grants{}, err
	}

	roles, err := s.roles.FindByIDs(ctx, user.RoleIDs)
	if err != nil {
		return nil, domain.Grants{}, err
	}
	return user, domain.CollectGrants(roles), nil
}

// Grants loads the union of role codes and permissions for a user. Called on
// every authorized request, never cached here: role edits take effect on the
// next request's read.
func (s *AuthService) Grants(ctx context.Context, userID string) (domain.Grants, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return domain.Grants{}, err
	}

	roles, err := s.roles.FindByIDs(ctx, user.RoleIDs)
	if err != nil {
		return domain.Grants{}, err
	}
	return domain.CollectGrants(roles), nil
}

// HashPassword returns the bcrypt hash for a plaintext password. Used by
// account management collaborators when creating or updating users.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
