// Package middleware contains the per-route security pipeline:
// authentication, role/permission enforcement, principal binding, and audit
// logging.
package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/opskernel/admin-api/internal/api/metrics"
	"github.com/opskernel/admin-api/internal/core/domain"
	"github.com/opskernel/admin-api/internal/core/ports"
	"github.com/opskernel/admin-api/internal/core/principal"
)

// Responses longer than this are truncated in the audit record.
const maxAuditResponseLen = 10000

const truncationMarker = "...[truncated]"

// Config declares the security requirements of one route.
type Config struct {
	// RequireAuth rejects anonymous requests even when no role or
	// permission is configured.
	RequireAuth bool

	// Role must be present in the principal's role codes.
	Role string
	// ExcludeRole must not be present in the principal's role codes.
	ExcludeRole string
	// Permission must be present in the principal's permission set.
	Permission string
	// ExcludePermission must not be present in the principal's permission
	// set.
	ExcludePermission string

	// LogTitle and LogType enable audit logging for the route.
	LogTitle string
	LogType  string
}

// requiresAuth reports whether the route rejects anonymous callers. Any
// role or permission constraint implies authentication.
func (cfg Config) requiresAuth() bool {
	return cfg.RequireAuth || cfg.Role != "" || cfg.ExcludeRole != "" ||
		cfg.Permission != "" || cfg.ExcludePermission != ""
}

// auditEnabled reports whether the route records an audit entry.
func (cfg Config) auditEnabled() bool {
	return cfg.LogTitle != "" || cfg.LogType != ""
}

// Security builds the per-route middleware. One instance is shared by all
// routes; per-route behavior comes from the Config passed to Middleware.
type Security struct {
	tokens       ports.TokenService
	auth         ports.AuthService
	audits       ports.AuditRepository
	tokenHeader  string
	superAdminID string
	log          zerolog.Logger
}

func NewSecurity(tokens ports.TokenService, auth ports.AuthService, audits ports.AuditRepository, tokenHeader, superAdminID string, log zerolog.Logger) *Security {
	if tokenHeader == "" {
		tokenHeader = "Authorization"
	}
	return &Security{
		tokens:       tokens,
		auth:         auth,
		audits:       audits,
		tokenHeader:  tokenHeader,
		superAdminID: superAdminID,
		log:          log,
	}
}

// Middleware returns the echo middleware enforcing cfg. The pipeline is a
// single short-circuiting pass: verify token, check account status, bind the
// principal, enforce roles/permissions, run the handler. When audit logging
// is enabled the entry is persisted exactly once, whether the handler
// succeeded, failed, or panicked out through the recover middleware.
func (s *Security) Middleware(cfg Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			begin := time.Now()
			enableLog := cfg.auditEnabled()

			var entry *domain.AuditEntry
			var capture *responseCapture
			var apiUser *domain.Principal
			var handlerErr error

			if enableLog {
				entry = s.requestSnapshot(c)
				entry.LogTitle = cfg.LogTitle
				entry.LogType = cfg.LogType
				entry.RequestTime = begin.UTC()

				capture = &responseCapture{ResponseWriter: c.Response().Writer}
				c.Response().Writer = capture
			}

			if enableLog {
				defer func() {
					s.finishAudit(c, entry, capture, apiUser, handlerErr, begin)
				}()
			}

			handlerErr = func() error {
				p, err := s.tokens.Verify(c.Request().Context(), c.Request().Header.Get(s.tokenHeader))
				if err != nil {
					metrics.TokenVerificationsTotal.WithLabelValues("unauthorized").Inc()
					return err
				}
				if p == nil {
					metrics.TokenVerificationsTotal.WithLabelValues("anonymous").Inc()
					if !cfg.requiresAuth() {
						return next(c)
					}
					return domain.Unauthorized("")
				}
				metrics.TokenVerificationsTotal.WithLabelValues("valid").Inc()

				if !p.Status {
					return domain.Unauthorized("inactive")
				}
				apiUser = p

				// Bind the principal for the remainder of this request,
				// including data-access hooks below the handler.
				ctx := principal.WithPrincipal(c.Request().Context(), p)
				c.SetRequest(c.Request().WithContext(ctx))

				if p.UserID == s.superAdminID {
					metrics.AuthzDecisionsTotal.WithLabelValues("super_admin").Inc()
					return next(c)
				}

				grants, err := s.auth.Grants(ctx, p.UserID)
				if err != nil {
					return err
				}
				if err := enforce(cfg, grants); err != nil {
					metrics.AuthzDecisionsTotal.WithLabelValues("forbidden").Inc()
					return err
				}
				metrics.AuthzDecisionsTotal.WithLabelValues("allowed").Inc()

				return next(c)
			}()

			return handlerErr
		}
	}
}

// enforce evaluates the configured constraints in order against the loaded
// grants.
func enforce(cfg Config, g domain.Grants) error {
	if cfg.Role != "" && !g.HasRole(cfg.Role) {
		return domain.Forbidden("需要角色 " + cfg.Role)
	}
	if cfg.ExcludeRole != "" && g.HasRole(cfg.ExcludeRole) {
		return domain.Forbidden("禁止角色 " + cfg.ExcludeRole + " 访问")
	}
	if cfg.Permission != "" && !g.HasPermission(cfg.Permission) {
		return domain.Forbidden("缺少权限 " + cfg.Permission)
	}
	if cfg.ExcludePermission != "" && g.HasPermission(cfg.ExcludePermission) {
		return domain.Forbidden("禁止权限 " + cfg.ExcludePermission)
	}
	return nil
}

// requestSnapshot captures the audit view of the inbound request: method,
// route path, parameters, and a sanitized JSON body for mutating methods.
func (s *Security) requestSnapshot(c echo.Context) *domain.AuditEntry {
	req := c.Request()
	method := strings.ToLower(req.Method)

	data := map[string]any{}
	if names := c.ParamNames(); len(names) > 0 {
		params := make(map[string]string, len(names))
		for i, name := range names {
			params[name] = c.ParamValues()[i]
		}
		data["param"] = params
	}
	if query := c.QueryParams(); len(query) > 0 {
		data["query"] = query
	}

	switch method {
	case "post", "put", "delete", "patch":
		if strings.Contains(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
			if body := readAndRestoreBody(req); len(body) > 0 {
				var parsed any
				if json.Unmarshal(body, &parsed) == nil {
					data["body"] = parsed
				}
			}
		}
	}

	requestData, _ := json.Marshal(data)

	return &domain.AuditEntry{
		RequestMethod: method,
		APIURL:        c.Path(),
		RequestData:   string(requestData),
		IP:            clientIP(c),
	}
}

// finishAudit fills the outcome fields and persists the entry. It runs in a
// deferred block so the record is written exactly once regardless of how the
// handler exited.
func (s *Security) finishAudit(c echo.Context, entry *domain.AuditEntry, capture *responseCapture, apiUser *domain.Principal, handlerErr error, begin time.Time) {
	if apiUser != nil {
		entry.UserName = apiUser.UserName
	}
	entry.TakeTimeMs = time.Since(begin).Milliseconds()

	if handlerErr != nil {
		entry.Status = false
		entry.Message = handlerErr.Error()
	} else if capture != nil {
		body := capture.buf.String()
		if body != "" {
			if len(body) > maxAuditResponseLen {
				body = body[:maxAuditResponseLen] + truncationMarker
			}
			entry.ResponseData = body
			entry.Status = envelopeSucceeded(capture.buf.Bytes())
		}
	}

	if err := s.audits.Insert(c.Request().Context(), entry); err != nil {
		metrics.AuditWritesTotal.WithLabelValues("error").Inc()
		s.log.Error().Err(err).Str("path", entry.APIURL).Msg("audit write failed")
		return
	}
	metrics.AuditWritesTotal.WithLabelValues("ok").Inc()
}

// envelopeSucceeded reports whether the captured response body is a success
// envelope.
func envelopeSucceeded(body []byte) bool {
	var parsed struct {
		Code domain.BusinessCode `json:"code"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return false
	}
	return parsed.Code == domain.CodeSuccess
}

// readAndRestoreBody drains the request body and puts an equivalent reader
// back so binding later in the chain still sees it.
func readAndRestoreBody(req *http.Request) []byte {
	if req.Body == nil {
		return nil
	}
	body, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	req.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return nil
	}
	return body
}

// responseCapture tees the response body so the audit record can include it.
type responseCapture struct {
	http.ResponseWriter
	buf bytes.Buffer
}

func (w *responseCapture) Write(p []byte) (int, error) {
	w.buf.Write(p)
	return w.ResponseWriter.Write(p)
}
