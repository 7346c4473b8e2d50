package domain

import "errors"

// BusinessCode is the application-level status carried in every response
// envelope, independent of the HTTP status code.
type BusinessCode int

const (
	CodeSuccess      BusinessCode = 10200
	CodeFail         BusinessCode = 10500
	CodeUnauthorized BusinessCode = 10401
	CodeForbidden    BusinessCode = 10403
)

// DefaultMessage returns the standard message for a business code.
func (c BusinessCode) DefaultMessage() string {
	switch c {
	case CodeSuccess:
		return "操作成功"
	case CodeFail:
		return "操作失败"
	case CodeUnauthorized:
		return "未授权"
	case CodeForbidden:
		return "权限不足"
	default:
		return "未知错误"
	}
}

// StatusError is a business failure with a deterministic envelope code.
// The HTTP boundary matches on it with errors.As and renders the envelope;
// it never reaches the client as a bare error string.
type StatusError struct {
	Code    BusinessCode
	Message string
}

func (e *StatusError) Error() string { return e.Message }

// Unauthorized builds a 10401 error. An empty reason falls back to the
// standard login prompt.
func Unauthorized(reason string) *StatusError {
	if reason == "" {
		reason = "未授权，请先登录"
	}
	return &StatusError{Code: CodeUnauthorized, Message: reason}
}

// Forbidden builds a 10403 error.
func Forbidden(reason string) *StatusError {
	if reason == "" {
		reason = "无权限访问"
	}
	return &StatusError{Code: CodeForbidden, Message: reason}
}

// Sentinel errors shared across repositories and services.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrRoleNotFound = errors.New("role not found")
)
