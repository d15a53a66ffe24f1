package engine

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/smartread/smartread/internal/fallback"
)

const (
	unknownDomain         = "unknown"
	defaultConfidence     = 0.8
	passthroughConfidence = 0.5
)

// parsed is the provider-neutral shape every strategy produces.
type parsed struct {
	Primary         string
	Domain          string
	Confidence      float64
	KeyTerms        []string
	RelatedConcepts []string
	Tips            string
}

var (
	fencedBlockRe = regexp.MustCompile("(?i)```(?:json)?\\s*([\\s\\S]+?)\\s*```")
	termSplitRe   = regexp.MustCompile(`[\s,，、;；]+`)
	leadingNumRe  = regexp.MustCompile(`^[\d.]+`)
)

type labelField int

const (
	fieldPrimary labelField = iota
	fieldDomain
	fieldConfidence
	fieldTerms
	fieldRelated
	fieldTips
)

// Longer alternatives come first so 内容类型 wins over 类型.
var sharedLabels = map[labelField][]string{
	fieldDomain:     {"内容类型", "content type", "领域", "domain", "类型"},
	fieldConfidence: {"置信度", "confidence"},
	fieldTerms:      {"关键术语", "关键词", "key terms"},
	fieldRelated:    {"相关概念", "related concepts"},
	fieldTips:       {"理解提示", "提示", "tips"},
}

// responseParser turns raw model output into a parsed result. It never fails.
type responseParser struct {
	key    string
	labels map[string]labelField
	lineRe *regexp.Regexp
	chain  *fallback.Chain[parsed]
}

func newResponseParser(key string, primaryLabels ...string) *responseParser {
	p := &responseParser{
		key:    key,
		labels: make(map[string]labelField),
	}

	var alts []string
	for _, l := range primaryLabels {
		p.labels[l] = fieldPrimary
		alts = append(alts, regexp.QuoteMeta(l))
	}
	for _, f := range []labelField{fieldDomain, fieldConfidence, fieldTerms, fieldRelated, fieldTips} {
		for _, l := range sharedLabels[f] {
			p.labels[l] = f
			alts = append(alts, regexp.QuoteMeta(l))
		}
	}
	p.lineRe = regexp.MustCompile(`(?i)^\s*(?:[#>*\-]+\s*)?(` + strings.Join(alts, "|") + `)\s*\**\s*[:：]\**\s*(.*)$`)

	p.chain = fallback.New(passthrough,
		fallback.Strategy[parsed]{Name: "json", Try: p.tryDirect},
		fallback.Strategy[parsed]{Name: "fenced", Try: p.tryFenced},
		fallback.Strategy[parsed]{Name: "embedded", Try: p.tryEmbedded},
		fallback.Strategy[parsed]{Name: "labels", Try: p.tryLabels},
	)
	return p
}

var (
	simplifyParser = newResponseParser("simplified", "改写", "简化", "simplified", "rewritten")
	explainParser  = newResponseParser("explanation", "解释", "说明", "explanation")
)

// Parse runs the strategy chain and reports which strategy produced the value.
func (p *responseParser) Parse(raw string) (parsed, string) {
	return p.chain.Run(raw)
}

func passthrough(raw string) parsed {
	return parsed{
		Primary:    raw,
		Domain:     unknownDomain,
		Confidence: passthroughConfidence,
	}
}

func (p *responseParser) tryDirect(raw string) (parsed, bool) {
	return p.fromJSON(strings.TrimSpace(raw))
}

func (p *responseParser) tryFenced(raw string) (parsed, bool) {
	for _, m := range fencedBlockRe.FindAllStringSubmatch(raw, -1) {
		if res, ok := p.fromJSON(m[1]); ok {
			return res, true
		}
	}
	return parsed{}, false
}

// tryEmbedded tries every balanced object span that mentions the primary
// key, smallest first.
func (p *responseParser) tryEmbedded(raw string) (parsed, bool) {
	marker := `"` + p.key + `"`
	if !strings.Contains(raw, marker) {
		return parsed{}, false
	}

	var spans []string
	for _, s := range objectSpans(raw) {
		if strings.Contains(s, marker) {
			spans = append(spans, s)
		}
	}
	sort.SliceStable(spans, func(i, j int) bool { return len(spans[i]) < len(spans[j]) })

	for _, s := range spans {
		if res, ok := p.fromJSON(s); ok {
			return res, true
		}
	}
	return parsed{}, false
}

// objectSpans returns every balanced {...} substring, skipping braces inside
// JSON string literals.
func objectSpans(s string) []string {
	var spans []string
	for start := 0; start < len(s); start++ {
		if s[start] != '{' {
			continue
		}
		depth := 0
		inString := false
		escaped := false
	scan:
		for i := start; i < len(s); i++ {
			c := s[i]
			switch {
			case escaped:
				escaped = false
			case inString && c == '\\':
				escaped = true
			case c == '"':
				inString = !inString
			case inString:
			case c == '{':
				depth++
			case c == '}':
				depth--
				if depth == 0 {
					spans = append(spans, s[start:i+1])
					break scan
				}
			}
		}
	}
	return spans
}

func (p *responseParser) tryLabels(raw string) (parsed, bool) {
	var (
		res        parsed
		found      bool
		primary    []string
		inPrimary  bool
		hasPrimary bool
		confidence string
	)

	for _, line := range strings.Split(raw, "\n") {
		m := p.lineRe.FindStringSubmatch(line)
		if m == nil {
			if inPrimary {
				primary = append(primary, line)
			}
			continue
		}

		found = true
		inPrimary = false
		value := strings.TrimSpace(m[2])

		switch p.labels[strings.ToLower(m[1])] {
		case fieldPrimary:
			if hasPrimary {
				continue
			}
			hasPrimary = true
			inPrimary = true
			primary = append(primary, value)
		case fieldDomain:
			if res.Domain == "" {
				res.Domain = value
			}
		case fieldConfidence:
			if confidence == "" {
				confidence = leadingNumRe.FindString(value)
			}
		case fieldTerms:
			if res.KeyTerms == nil {
				res.KeyTerms = splitTerms(value)
			}
		case fieldRelated:
			if res.RelatedConcepts == nil {
				res.RelatedConcepts = splitTerms(value)
			}
		case fieldTips:
			if res.Tips == "" {
				res.Tips = value
			}
		}
	}

	if !found {
		return parsed{}, false
	}

	res.Primary = strings.TrimSpace(strings.Join(primary, "\n"))
	if res.Primary == "" {
		res.Primary = strings.TrimSpace(raw)
	}
	res.Domain = strings.Trim(res.Domain, "*` ")
	if res.Domain == "" {
		res.Domain = unknownDomain
	}
	res.Confidence = defaultConfidence
	if f, err := strconv.ParseFloat(confidence, 64); err == nil {
		res.Confidence = normalizeConfidence(f)
	}
	return res, true
}

func (p *responseParser) fromJSON(s string) (parsed, bool) {
	var data map[string]any
	if err := json.Unmarshal([]byte(s), &data); err != nil {
		return parsed{}, false
	}

	primary, _ := data[p.key].(string)
	if strings.TrimSpace(primary) == "" {
		return parsed{}, false
	}

	res := parsed{
		Primary:         primary,
		Domain:          unknownDomain,
		Confidence:      confidenceValue(data["confidence"]),
		KeyTerms:        termsValue(data["keyTerms"]),
		RelatedConcepts: termsValue(data["relatedConcepts"]),
	}
	if d, ok := data["domain"].(string); ok && strings.TrimSpace(d) != "" {
		res.Domain = strings.TrimSpace(d)
	}
	if t, ok := data["tips"].(string); ok {
		res.Tips = strings.TrimSpace(t)
	}
	return res, true
}

// confidenceValue accepts numbers and numeric strings. Missing, zero, or
// unparseable values fall back to defaultConfidence.
func confidenceValue(v any) float64 {
	var f float64
	switch c := v.(type) {
	case float64:
		f = c
	case string:
		n, err := strconv.ParseFloat(leadingNumRe.FindString(strings.TrimSpace(c)), 64)
		if err != nil {
			return defaultConfidence
		}
		f = n
	default:
		return defaultConfidence
	}
	return normalizeConfidence(f)
}

func normalizeConfidence(f float64) float64 {
	switch {
	case f == 0:
		return defaultConfidence
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

func termsValue(v any) []string {
	switch t := v.(type) {
	case []any:
		var out []string
		for _, item := range t {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
		return out
	case string:
		return splitTerms(t)
	}
	return nil
}

func splitTerms(s string) []string {
	var out []string
	for _, t := range termSplitRe.Split(s, -1) {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
