package preprocess

import (
	"testing"

	"github.com/smartread/smartread/internal/models"
)

func TestPreprocessMixed(t *testing.T) {
	got := New().Preprocess("  Hello   世界  \n\n ")
	if got.Cleaned != "Hello 世界" {
		t.Fatalf("cleaned=%q want=%q", got.Cleaned, "Hello 世界")
	}
	if got.Language != models.LanguageMixed {
		t.Fatalf("language=%q want=%q", got.Language, models.LanguageMixed)
	}
	if got.Length != 8 {
		t.Fatalf("length=%d want=8", got.Length)
	}
	if got.Original != "  Hello   世界  \n\n " {
		t.Fatalf("original not preserved: %q", got.Original)
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"only space", " \t\n\r ", ""},
		{"newlines", "line one\nline two\r\n\r\nline three", "line one line two line three"},
		{"tabs", "a\t\tb", "a b"},
		{"nbsp and ideographic space", "a\u00a0\u00a0b\u3000c", "a b c"},
		{"bom", "\uFEFFtext", "text"},
		{"already clean", "already clean", "already clean"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Fatalf("got=%q want=%q", got, tt.want)
			}
		})
	}
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"  Hello   世界  \n\n ",
		"\t混合 text\n\n with\u3000spaces ",
		"a\u00a0b c d",
		"no-change",
	}
	p := New()
	for _, in := range inputs {
		once := p.Preprocess(in).Cleaned
		twice := p.Preprocess(once).Cleaned
		if once != twice {
			t.Fatalf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want models.Language
	}{
		{"你好世界", models.LanguageZh},
		{"简化这段文字。", models.LanguageZh},
		{"Hello world", models.LanguageEn},
		{"Hello 世界", models.LanguageMixed},
		{"使用 useState 管理状态", models.LanguageMixed},
		{"12345 !?", models.LanguageEn},
		{"", models.LanguageEn},
		{"こんにちは", models.LanguageEn},
	}
	for _, tt := range tests {
		if got := DetectLanguage(tt.in); got != tt.want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPreprocessEmpty(t *testing.T) {
	got := New().Preprocess("")
	if got.Length != 0 || got.Cleaned != "" {
		t.Fatalf("unexpected result for empty input: %+v", got)
	}
}
