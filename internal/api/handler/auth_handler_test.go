package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/opskernel/admin-api/internal/core/domain"
	"github.com/opskernel/admin-api/internal/core/principal"
)

type stubAuthService struct {
	token    string
	loginErr error
	user     *domain.User
	grants   domain.Grants
	infoErr  error

	sawUserName string
	sawPassword string
	sawIP       string
}

func (s *stubAuthService) Login(_ context.Context, userName, password, ip string) (string, error) {
	s.sawUserName, s.sawPassword, s.sawIP = userName, password, ip
	if s.loginErr != nil {
		return "", s.loginErr
	}
	return s.token, nil
}

func (s *stubAuthService) UserInfo(context.Context, string) (*domain.User, domain.Grants, error) {
	if s.infoErr != nil {
		return nil, domain.Grants{}, s.infoErr
	}
	return s.user, s.grants, nil
}

func (s *stubAuthService) Grants(context.Context, string) (domain.Grants, error) {
	return s.grants, nil
}

type stubTokenService struct {
	revoked   bool
	sawHeader string
}

func (s *stubTokenService) Issue(context.Context, domain.Principal) (string, error) { return "", nil }
func (s *stubTokenService) Verify(context.Context, string) (*domain.Principal, error) {
	return nil, nil
}
func (s *stubTokenService) Revoke(_ context.Context, rawHeader string) bool {
	s.sawHeader = rawHeader
	return s.revoked
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (int, string, json.RawMessage) {
	t.Helper()
	var env struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	return env.Code, env.Message, env.Data
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newEcho()
	auth := &stubAuthService{token: "abc123.deadbeef"}
	h := NewAuthHandler(auth, &stubTokenService{}, "Authorization")

	req := httptest.NewRequest(http.MethodPost, "/admin/auth/login-password",
		strings.NewReader(`{"userName":"alice","password":"correct"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("login: %v", err)
	}

	code, _, data := decodeEnvelope(t, rec)
	if code != 10200 {
		t.Fatalf("expected code 10200, got %d", code)
	}
	var token string
	if err := json.Unmarshal(data, &token); err != nil || token != "abc123.deadbeef" {
		t.Fatalf("expected raw token string as data, got %s", data)
	}
	if auth.sawUserName != "alice" || auth.sawPassword != "correct" {
		t.Fatalf("credentials not passed through: %q/%q", auth.sawUserName, auth.sawPassword)
	}
}

func TestAuthHandler_Login_BadPasswordEnvelope(t *testing.T) {
	e := newEcho()
	auth := &stubAuthService{loginErr: &domain.StatusError{Code: domain.CodeFail, Message: "密码错误"}}
	h := NewAuthHandler(auth, &stubTokenService{}, "Authorization")

	req := httptest.NewRequest(http.MethodPost, "/admin/auth/login-password",
		strings.NewReader(`{"userName":"alice","password":"wrong"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Login(c)
	var se *domain.StatusError
	if !errors.As(err, &se) || se.Code != domain.CodeFail || se.Message != "密码错误" {
		t.Fatalf("expected 密码错误 failure, got %v", err)
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuthService{}, &stubTokenService{}, "Authorization")

	req := httptest.NewRequest(http.MethodPost, "/admin/auth/login-password",
		strings.NewReader(`{"userName":"alice"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Login(c)
	var se *domain.StatusError
	if !errors.As(err, &se) || se.Code != domain.CodeFail {
		t.Fatalf("expected validation failure, got %v", err)
	}
}

func TestAuthHandler_UserInfo(t *testing.T) {
	e := newEcho()
	auth := &stubAuthService{
		user:   &domain.User{ID: "9", UserName: "alice", Status: true},
		grants: domain.Grants{Roles: []string{"editor"}, Permissions: []string{"user:list"}},
	}
	h := NewAuthHandler(auth, &stubTokenService{}, "Authorization")

	req := httptest.NewRequest(http.MethodGet, "/admin/auth/user-info", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	ctx := principal.WithPrincipal(req.Context(), &domain.Principal{UserID: "9", UserName: "alice", Status: true})
	c.SetRequest(req.WithContext(ctx))

	if err := h.UserInfo(c); err != nil {
		t.Fatalf("user info: %v", err)
	}

	code, _, data := decodeEnvelope(t, rec)
	if code != 10200 {
		t.Fatalf("expected code 10200, got %d", code)
	}
	var info struct {
		UserName    string   `json:"userName"`
		Roles       []string `json:"roles"`
		Permissions []string `json:"permissions"`
	}
	if err := json.Unmarshal(data, &info); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if info.UserName != "alice" || len(info.Roles) != 1 || len(info.Permissions) != 1 {
		t.Fatalf("unexpected payload: %+v", info)
	}
}

func TestAuthHandler_UserInfo_EmptyGrantsAreArrays(t *testing.T) {
	e := newEcho()
	auth := &stubAuthService{user: &domain.User{ID: "9", UserName: "alice", Status: true}}
	h := NewAuthHandler(auth, &stubTokenService{}, "Authorization")

	req := httptest.NewRequest(http.MethodGet, "/admin/auth/user-info", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	ctx := principal.WithPrincipal(req.Context(), &domain.Principal{UserID: "9", UserName: "alice", Status: true})
	c.SetRequest(req.WithContext(ctx))

	if err := h.UserInfo(c); err != nil {
		t.Fatalf("user info: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"roles":[]`) {
		t.Fatalf("roles must serialize as an empty array: %s", rec.Body.String())
	}
}

func TestAuthHandler_UserInfo_Unbound(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuthService{}, &stubTokenService{}, "Authorization")

	req := httptest.NewRequest(http.MethodGet, "/admin/auth/user-info", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.UserInfo(c)
	var se *domain.StatusError
	if !errors.As(err, &se) || se.Code != domain.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	e := newEcho()
	tokens := &stubTokenService{revoked: true}
	h := NewAuthHandler(&stubAuthService{}, tokens, "Authorization")

	req := httptest.NewRequest(http.MethodPost, "/admin/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer sid.sig")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Logout(c); err != nil {
		t.Fatalf("logout: %v", err)
	}
	code, _, _ := decodeEnvelope(t, rec)
	if code != 10200 {
		t.Fatalf("expected success envelope, got %d", code)
	}
	if tokens.sawHeader != "Bearer sid.sig" {
		t.Fatalf("token header not passed to revoke: %q", tokens.sawHeader)
	}
}

func TestAuthHandler_Logout_AlreadyRevoked(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuthService{}, &stubTokenService{revoked: false}, "Authorization")

	req := httptest.NewRequest(http.MethodPost, "/admin/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer sid.sig")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	// Never an error, just the failure envelope.
	if err := h.Logout(c); err != nil {
		t.Fatalf("logout must not error: %v", err)
	}
	code, _, _ := decodeEnvelope(t, rec)
	if code != 10500 {
		t.Fatalf("expected failure envelope, got %d", code)
	}
}
