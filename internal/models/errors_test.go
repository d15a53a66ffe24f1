package models

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorTypeRetryable(t *testing.T) {
	tests := []struct {
		typ  ErrorType
		want bool
	}{
		{ErrNoAPIKey, false},
		{ErrInvalidAPIKey, false},
		{ErrNetwork, true},
		{ErrTimeout, true},
		{ErrRateLimit, true},
		{ErrUnknown, true},
	}
	for _, tt := range tests {
		if got := tt.typ.Retryable(); got != tt.want {
			t.Errorf("%s.Retryable() = %v, want %v", tt.typ, got, tt.want)
		}
	}
}

func TestSimplifyErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("call failed: %w", NewError(ErrNetwork, "网络连接失败，请检查网络", cause))

	if !errors.Is(err, cause) {
		t.Fatalf("cause lost from chain: %v", err)
	}
	if got := ErrorTypeOf(err); got != ErrNetwork {
		t.Fatalf("got=%q want=%q", got, ErrNetwork)
	}
	if got := ErrorTypeOf(errors.New("plain")); got != ErrUnknown {
		t.Fatalf("got=%q want=%q", got, ErrUnknown)
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		lang Language
		want string
	}{
		{"no key zh", NewError(ErrNoAPIKey, "x", nil), LanguageZh, "请先在设置页面配置 API 密钥"},
		{"rate limit en", NewError(ErrRateLimit, "x", nil), LanguageEn, "The API rate limit has been reached"},
		{"timeout mixed", NewError(ErrTimeout, "x", nil), LanguageMixed, "请求超时，请重试"},
		{"unknown keeps message", NewError(ErrUnknown, "文心一言暂未实现", nil), LanguageZh, "文心一言暂未实现"},
		{"plain error zh", errors.New("boom"), LanguageZh, "操作失败，请重试"},
		{"plain error en", errors.New("boom"), LanguageEn, "Operation failed, please retry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err, tt.lang); got != tt.want {
				t.Fatalf("got=%q want=%q", got, tt.want)
			}
		})
	}
}

func TestParseProvider(t *testing.T) {
	for _, p := range Providers {
		got, err := ParseProvider(string(p))
		if err != nil || got != p {
			t.Fatalf("ParseProvider(%q) = %q, %v", p, got, err)
		}
	}
	if _, err := ParseProvider("gemini"); err == nil {
		t.Fatalf("expected error for unsupported provider")
	}
}
