package engine

import (
	"strings"
	"testing"

	"github.com/smartread/smartread/internal/models"
)

func TestBuildSimplifyPrompt(t *testing.T) {
	tests := []struct {
		lang models.Language
		want string
	}{
		{models.LanguageZh, "# 现在请改写"},
		{models.LanguageEn, "# Now Please Rewrite"},
		{models.LanguageMixed, "中英文混合内容"},
		{models.Language("fr"), "# Now Please Rewrite"},
	}

	for _, tt := range tests {
		prompt := BuildSimplifyPrompt(models.SimplifyRequest{Text: "SAMPLE TEXT", Language: tt.lang})
		if !strings.Contains(prompt, tt.want) {
			t.Errorf("%s prompt missing %q", tt.lang, tt.want)
		}
		if !strings.Contains(prompt, "SAMPLE TEXT") {
			t.Errorf("%s prompt missing input text", tt.lang)
		}
		if !strings.Contains(prompt, "```json") || !strings.Contains(prompt, `"simplified"`) {
			t.Errorf("%s prompt missing response schema", tt.lang)
		}
		if strings.Contains(prompt, "{{") || strings.Contains(prompt, "~~~") {
			t.Errorf("%s prompt has unfilled slots", tt.lang)
		}
	}
}

func TestBuildSimplifyPromptMaxLength(t *testing.T) {
	prompt := BuildSimplifyPrompt(models.SimplifyRequest{Text: "x", Language: models.LanguageEn, MaxLength: 80})
	if !strings.Contains(prompt, "under 80 characters") {
		t.Error("missing length limit")
	}

	prompt = BuildSimplifyPrompt(models.SimplifyRequest{Text: "x", Language: models.LanguageZh, MaxLength: 50})
	if !strings.Contains(prompt, "不超过 50 字") {
		t.Error("missing zh length limit")
	}
}

func TestBuildExplainPrompt(t *testing.T) {
	prompt := BuildExplainPrompt(models.ExplainRequest{Text: "Memoization", Language: models.LanguageEn, Context: "in a React app"})
	if !strings.Contains(prompt, `"relatedConcepts"`) {
		t.Error("missing relatedConcepts field")
	}
	if !strings.Contains(prompt, "Surrounding context:\nin a React app") {
		t.Error("missing context section")
	}

	prompt = BuildExplainPrompt(models.ExplainRequest{Text: "记忆化", Language: models.LanguageZh})
	if strings.Contains(prompt, "上下文") {
		t.Error("context section rendered without context")
	}
}

func TestPromptDoesNotExpandSlotsInInput(t *testing.T) {
	prompt := BuildSimplifyPrompt(models.SimplifyRequest{Text: "literal {{extra}} here", Language: models.LanguageEn, MaxLength: 10})
	if !strings.Contains(prompt, "literal {{extra}} here") {
		t.Error("slot marker in input text was expanded")
	}
}
