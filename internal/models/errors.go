package models

import (
	"errors"
	"fmt"
)

// ErrorType classifies a SimplifyError.
type ErrorType string

const (
	ErrNoAPIKey      ErrorType = "no_api_key"
	ErrInvalidAPIKey ErrorType = "invalid_api_key"
	ErrNetwork       ErrorType = "network_error"
	ErrTimeout       ErrorType = "timeout"
	ErrRateLimit     ErrorType = "rate_limit"
	ErrUnknown       ErrorType = "unknown_error"
)

// Retryable reports whether another attempt could succeed.
// Credential failures are never retried.
func (t ErrorType) Retryable() bool {
	switch t {
	case ErrNoAPIKey, ErrInvalidAPIKey:
		return false
	default:
		return true
	}
}

// SimplifyError is the tagged failure returned by the engine and services.
type SimplifyError struct {
	Type       ErrorType
	Message    string
	StatusCode int // HTTP status when the failure came from a provider response
	Err        error
}

// NewError creates a SimplifyError wrapping an optional cause.
func NewError(t ErrorType, message string, cause error) *SimplifyError {
	return &SimplifyError{Type: t, Message: message, Err: cause}
}

func (e *SimplifyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *SimplifyError) Unwrap() error {
	return e.Err
}

// ErrorTypeOf returns the type of the first SimplifyError in err's chain,
// or ErrUnknown if there is none.
func ErrorTypeOf(err error) ErrorType {
	var se *SimplifyError
	if errors.As(err, &se) {
		return se.Type
	}
	return ErrUnknown
}

var userMessagesZh = map[ErrorType]string{
	ErrNoAPIKey:      "请先在设置页面配置 API 密钥",
	ErrInvalidAPIKey: "API 密钥无效，请检查设置",
	ErrNetwork:       "网络连接失败，请检查网络",
	ErrTimeout:       "请求超时，请重试",
	ErrRateLimit:     "API 调用次数已达上限",
}

var userMessagesEn = map[ErrorType]string{
	ErrNoAPIKey:      "Please configure an API key in the settings page",
	ErrInvalidAPIKey: "The API key is invalid, please check your settings",
	ErrNetwork:       "Network connection failed, please check your network",
	ErrTimeout:       "The request timed out, please retry",
	ErrRateLimit:     "The API rate limit has been reached",
}

// UserMessage returns the fixed human-readable message for err. English
// text is used for LanguageEn, Chinese otherwise.
func UserMessage(err error, lang Language) string {
	table, generic := userMessagesZh, "操作失败，请重试"
	if lang == LanguageEn {
		table, generic = userMessagesEn, "Operation failed, please retry"
	}

	var se *SimplifyError
	if !errors.As(err, &se) {
		return generic
	}
	if msg, ok := table[se.Type]; ok {
		return msg
	}
	if se.Message != "" {
		return se.Message
	}
	return generic
}
