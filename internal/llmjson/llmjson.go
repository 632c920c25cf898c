// Package llmjson recovers JSON objects from free-form LLM output. Models
// asked for "JSON ONLY" still wrap answers in code fences, smart quotes, or
// prose; Parse peels those layers off instead of failing the pipeline.
package llmjson

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fenceRe         = regexp.MustCompile("(?i)```json|```")
	smartQuoteRe    = regexp.MustCompile("[‘’“”]")
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

// Parse attempts to recover a JSON object from text. It tries, in order:
// a strict parse, code-fence stripping, smart-quote normalization, trailing
// comma removal, and finally the outermost {...} span. Returns nil when no
// usable object can be recovered; it never panics and never returns an error.
func Parse(text string) map[string]any {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	if obj := tryParse(text); obj != nil {
		return obj
	}

	s := strings.TrimSpace(fenceRe.ReplaceAllString(text, ""))
	if obj := tryParse(s); obj != nil {
		return obj
	}

	s = smartQuoteRe.ReplaceAllString(s, `"`)
	if obj := tryParse(s); obj != nil {
		return obj
	}

	s = trailingCommaRe.ReplaceAllString(s, "$1")
	if obj := tryParse(s); obj != nil {
		return obj
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		if obj := tryParse(s[start : end+1]); obj != nil {
			return obj
		}
	}

	return nil
}

// Decode recovers a JSON object from text and unmarshals it into v. Reports
// whether anything usable was decoded.
func Decode(text string, v any) bool {
	obj := Parse(text)
	if obj == nil {
		return false
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

func tryParse(s string) map[string]any {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil
	}
	return obj
}
