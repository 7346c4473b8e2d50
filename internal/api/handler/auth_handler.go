package handler

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/opskernel/admin-api/internal/api/metrics"
	"github.com/opskernel/admin-api/internal/api/response"
	"github.com/opskernel/admin-api/internal/core/domain"
	"github.com/opskernel/admin-api/internal/core/ports"
	"github.com/opskernel/admin-api/internal/core/principal"
)

// AuthHandler serves the login, user-info, and logout endpoints.
type AuthHandler struct {
	auth        ports.AuthService
	tokens      ports.TokenService
	tokenHeader string
}

func NewAuthHandler(auth ports.AuthService, tokens ports.TokenService, tokenHeader string) *AuthHandler {
	if tokenHeader == "" {
		tokenHeader = "Authorization"
	}
	return &AuthHandler{auth: auth, tokens: tokens, tokenHeader: tokenHeader}
}

type loginRequest struct {
	UserName string `json:"userName" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userInfoResponse struct {
	UserID      string   `json:"userId"`
	UserName    string   `json:"userName"`
	NickName    string   `json:"nickName,omitempty"`
	Status      bool     `json:"status"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

// Login authenticates by user name and password and returns the raw bearer
// token as the envelope data.
//
// @Summary      Password login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  response.Envelope
// @Router       /admin/auth/login-password [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return &domain.StatusError{Code: domain.CodeFail, Message: "参数验证失败"}
	}
	if err := c.Validate(&req); err != nil {
		return &domain.StatusError{Code: domain.CodeFail, Message: err.Error()}
	}

	token, err := h.auth.Login(c.Request().Context(), req.UserName, req.Password, c.RealIP())
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	metrics.TokensIssuedTotal.Inc()
	return response.OK(c, token)
}

// UserInfo returns the authenticated principal with its resolved role codes
// and flattened permission strings.
//
// @Summary      Current user info
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Envelope
// @Router       /admin/auth/user-info [get]
func (h *AuthHandler) UserInfo(c echo.Context) error {
	p := principal.FromContext(c.Request().Context())
	if p == nil {
		return domain.Unauthorized("")
	}

	user, grants, err := h.auth.UserInfo(c.Request().Context(), p.UserID)
	if err != nil {
		return err
	}

	info := userInfoResponse{
		UserID:      user.ID,
		UserName:    user.UserName,
		NickName:    user.NickName,
		Status:      user.Status,
		Roles:       grants.Roles,
		Permissions: grants.Permissions,
	}
	if info.Roles == nil {
		info.Roles = []string{}
	}
	if info.Permissions == nil {
		info.Permissions = []string{}
	}
	return response.OK(c, info)
}

// Logout revokes the presented token. Best effort: an already-expired or
// invalid token yields a failure envelope, never an error.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Envelope
// @Router       /admin/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if !h.tokens.Revoke(c.Request().Context(), c.Request().Header.Get(h.tokenHeader)) {
		return response.Fail(c, "")
	}
	return response.OKEmpty(c)
}

func loginResult(err error) string {
	var se *domain.StatusError
	if errors.As(err, &se) {
		return "rejected"
	}
	return "error"
}
