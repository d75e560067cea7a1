package service

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/inbalnitzani/Integrations/internal/models"
)

var whitespaceRuns = regexp.MustCompile(`\s+`)

// parseGeneratedFields turns free-text model output into a field set. The
// model is asked for bare JSON but does not reliably comply, so parsing is
// tiered: direct parse, then extract-and-clean, then an empty field set.
// It never fails; a hopeless message degrades to "no suggestions". The
// second return value reports whether the message parsed directly.
func parseGeneratedFields(message string) (models.GeneratedFields, bool) {
	var fields models.GeneratedFields
	if err := json.Unmarshal([]byte(message), &fields); err == nil {
		return fields, true
	}

	candidate, ok := extractObject(message)
	if !ok {
		return models.GeneratedFields{}, false
	}

	cleaned := normalizeModelJSON(candidate)
	fields = models.GeneratedFields{}
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return models.GeneratedFields{}, false
	}
	return fields, false
}

// extractObject returns the substring spanning the first '{' through the last
// '}' of s, greedy across newlines.
func extractObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// normalizeModelJSON repairs the common deviations seen in model output:
// smart quotes, literal escaped-newline sequences and ragged whitespace.
func normalizeModelJSON(s string) string {
	replacer := strings.NewReplacer(
		"“", `"`,
		"”", `"`,
	)
	s = replacer.Replace(s)
	s = strings.ReplaceAll(s, `\n`, "")
	s = whitespaceRuns.ReplaceAllString(s, " ")
	return s
}
