package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/opskernel/admin-api/internal/core/domain"
)

type stubUserRepo struct {
	byName    map[string]*domain.User
	byID      map[string]*domain.User
	loginIP   string
	findErr   error
	recordErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byName: make(map[string]*domain.User), byID: make(map[string]*domain.User)}
}

func (r *stubUserRepo) add(u *domain.User) {
	r.byName[u.UserName] = u
	r.byID[u.ID] = u
}

func (r *stubUserRepo) FindByUserName(_ context.Context, name string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byName[name]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.add(u)
	return u, nil
}

func (r *stubUserRepo) RecordLogin(_ context.Context, _, ip string) error {
	if r.recordErr != nil {
		return r.recordErr
	}
	r.loginIP = ip
	return nil
}

type stubRoleRepo struct {
	roles map[string]domain.Role
	err   error
}

func (r *stubRoleRepo) FindByIDs(_ context.Context, ids []string) ([]domain.Role, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []domain.Role
	for _, id := range ids {
		if role, ok := r.roles[id]; ok {
			out = append(out, role)
		}
	}
	return out, nil
}

type stubTokenService struct {
	issued   []domain.Principal
	issueErr error
}

func (s *stubTokenService) Issue(_ context.Context, p domain.Principal) (string, error) {
	if s.issueErr != nil {
		return "", s.issueErr
	}
	s.issued = append(s.issued, p)
	return "sid." + p.UserID, nil
}

func (s *stubTokenService) Verify(context.Context, string) (*domain.Principal, error) {
	return nil, nil
}

func (s *stubTokenService) Revoke(context.Context, string) bool { return false }

func seedUser(t *testing.T, repo *stubUserRepo, name, password string, status bool, roleIDs ...string) *domain.User {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &domain.User{ID: "id-" + name, UserName: name, PasswordHash: hash, Status: status, RoleIDs: roleIDs}
	repo.add(u)
	return u
}

func TestAuthService_Login_Success(t *testing.T) {
	users := newStubUserRepo()
	tokens := &stubTokenService{}
	svc := NewAuthService(users, &stubRoleRepo{}, tokens, zerolog.Nop())
	seedUser(t, users, "alice", "correct", true)

	tok, err := svc.Login(context.Background(), "alice", "correct", "10.0.0.9")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.HasPrefix(tok, "sid.") {
		t.Fatalf("unexpected token %q", tok)
	}
	if len(tokens.issued) != 1 || tokens.issued[0].UserName != "alice" {
		t.Fatalf("issued principals: %+v", tokens.issued)
	}
	if users.loginIP != "10.0.0.9" {
		t.Fatalf("login ip not recorded, got %q", users.loginIP)
	}
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), &stubRoleRepo{}, &stubTokenService{}, zerolog.Nop())

	_, err := svc.Login(context.Background(), "ghost", "whatever", "")
	var se *domain.StatusError
	if !errors.As(err, &se) || se.Code != domain.CodeFail || se.Message != "用户不存在" {
		t.Fatalf("expected 用户不存在 failure, got %v", err)
	}
}

func TestAuthService_Login_InactiveUser(t *testing.T) {
	users := newStubUserRepo()
	svc := NewAuthService(users, &stubRoleRepo{}, &stubTokenService{}, zerolog.Nop())
	seedUser(t, users, "bob", "pw", false)

	_, err := svc.Login(context.Background(), "bob", "pw", "")
	var se *domain.StatusError
	if !errors.As(err, &se) || se.Message != "用户状态异常" {
		t.Fatalf("expected 用户状态异常 failure, got %v", err)
	}
}

func TestAuthService_Login_BadPassword(t *testing.T) {
	users := newStubUserRepo()
	tokens := &stubTokenService{}
	svc := NewAuthService(users, &stubRoleRepo{}, tokens, zerolog.Nop())
	seedUser(t, users, "alice", "correct", true)

	_, err := svc.Login(context.Background(), "alice", "wrong", "")
	var se *domain.StatusError
	if !errors.As(err, &se) || se.Code != domain.CodeFail || se.Message != "密码错误" {
		t.Fatalf("expected 密码错误 failure, got %v", err)
	}
	if len(tokens.issued) != 0 {
		t.Fatalf("token issued despite bad password")
	}
}

func TestAuthService_Login_IssueFailure(t *testing.T) {
	users := newStubUserRepo()
	tokens := &stubTokenService{issueErr: errors.New("cache down")}
	svc := NewAuthService(users, &stubRoleRepo{}, tokens, zerolog.Nop())
	seedUser(t, users, "alice", "correct", true)

	tok, err := svc.Login(context.Background(), "alice", "correct", "")
	if err == nil {
		t.Fatalf("expected error when issuance fails")
	}
	if tok != "" {
		t.Fatalf("expected no token, got %q", tok)
	}
}

func TestAuthService_Login_RecordLoginBestEffort(t *testing.T) {
	users := newStubUserRepo()
	users.recordErr = errors.New("write failed")
	svc := NewAuthService(users, &stubRoleRepo{}, &stubTokenService{}, zerolog.Nop())
	seedUser(t, users, "alice", "correct", true)

	if _, err := svc.Login(context.Background(), "alice", "correct", "1.2.3.4"); err != nil {
		t.Fatalf("login must succeed despite record failure: %v", err)
	}
}

func TestAuthService_Grants_Union(t *testing.T) {
	users := newStubUserRepo()
	roles := &stubRoleRepo{roles: map[string]domain.Role{
		"r1": {ID: "r1", RoleCode: "editor", Permissions: []string{"user:list", "user:update"}},
		"r2": {ID: "r2", RoleCode: "auditor", Permissions: []string{"user:list", "log:list"}},
	}}
	svc := NewAuthService(users, roles, &stubTokenService{}, zerolog.Nop())
	seedUser(t, users, "alice", "pw", true, "r1", "r2")

	g, err := svc.Grants(context.Background(), "id-alice")
	if err != nil {
		t.Fatalf("grants: %v", err)
	}
	if !g.HasRole("editor") || !g.HasRole("auditor") {
		t.Fatalf("missing role codes: %+v", g.Roles)
	}
	if len(g.Permissions) != 3 {
		t.Fatalf("expected deduplicated permissions, got %+v", g.Permissions)
	}
	if !g.HasPermission("log:list") || !g.HasPermission("user:update") {
		t.Fatalf("missing permissions: %+v", g.Permissions)
	}
}

func TestAuthService_UserInfo(t *testing.T) {
	users := newStubUserRepo()
	roles := &stubRoleRepo{roles: map[string]domain.Role{
		"r1": {ID: "r1", RoleCode: "editor", Permissions: []string{"user:list"}},
	}}
	svc := NewAuthService(users, roles, &stubTokenService{}, zerolog.Nop())
	seedUser(t, users, "alice", "pw", true, "r1")

	user, g, err := svc.UserInfo(context.Background(), "id-alice")
	if err != nil {
		t.Fatalf("user info: %v", err)
	}
	if user.UserName != "alice" {
		t.Fatalf("unexpected user %+v", user)
	}
	if !g.HasRole("editor") || !g.HasPermission("user:list") {
		t.Fatalf("unexpected grants %+v", g)
	}
}
