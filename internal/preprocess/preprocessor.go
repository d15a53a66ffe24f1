// Package preprocess normalizes selected text and classifies its language.
package preprocess

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/smartread/smartread/internal/models"
)

// SoftBudget is the processing time above which a warning is logged.
const SoftBudget = 10 * time.Millisecond

// Preprocessor cleans text and detects its language. It holds no state.
type Preprocessor struct{}

// New creates a new preprocessor.
func New() *Preprocessor {
	return &Preprocessor{}
}

// Preprocess cleans text and classifies its language. It never fails.
func (p *Preprocessor) Preprocess(text string) models.PreprocessedText {
	start := time.Now()

	cleaned := Clean(text)
	language := DetectLanguage(cleaned)

	if elapsed := time.Since(start); elapsed > SoftBudget {
		log.Warn().
			Dur("duration", elapsed).
			Int("length", len(text)).
			Msg("Preprocessing exceeded soft budget")
	}

	return models.PreprocessedText{
		Original: text,
		Cleaned:  cleaned,
		Length:   utf8.RuneCountInString(cleaned),
		Language: language,
	}
}

// Clean trims text and collapses every whitespace run, newlines included,
// into a single space.
func Clean(text string) string {
	return strings.Join(strings.FieldsFunc(text, isSpace), " ")
}

// isSpace matches the Unicode white space set plus the byte order mark,
// which browsers treat as white space too.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// DetectLanguage returns mixed when text has both CJK ideographs and Latin
// letters, zh for CJK only, and en otherwise.
func DetectLanguage(text string) models.Language {
	var hasCJK, hasLatin bool
	for _, r := range text {
		switch {
		case r >= 0x4E00 && r <= 0x9FA5:
			hasCJK = true
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			hasLatin = true
		}
		if hasCJK && hasLatin {
			return models.LanguageMixed
		}
	}
	if hasCJK {
		return models.LanguageZh
	}
	return models.LanguageEn
}
