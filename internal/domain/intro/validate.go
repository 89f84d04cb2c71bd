package intro

import (
	"regexp"
	"strings"
)

// Grammar selects how field boundaries are recognised.
type Grammar int

const (
	// GrammarInline is used for single-line command arguments: labels may
	// follow each other on one whitespace-collapsed line.
	GrammarInline Grammar = iota
	// GrammarMultiline is used for channel messages: every label after the
	// first must start a new line.
	GrammarMultiline
)

func (g Grammar) String() string {
	if g == GrammarMultiline {
		return "multiline"
	}
	return "inline"
}

// Normalize applies the normalization rule that matches the grammar.
func (g Grammar) Normalize(raw string) string {
	if g == GrammarMultiline {
		return NormalizeLines(raw)
	}
	return Normalize(raw)
}

func (g Grammar) pattern() *regexp.Regexp {
	if g == GrammarMultiline {
		return multilinePattern
	}
	return inlinePattern
}

// ValidationResult is the transient outcome of Validate.
type ValidationResult struct {
	Valid       bool
	CleanedText string
	Fields      []TemplateField
}

// Validate matches normalized text against the template in a single ordered
// pass. Text before the first label is rejected; anything after the last
// label belongs to the last field. A value that contains any label token is
// rejected, so each label may appear exactly once.
func Validate(normalized string, g Grammar) ValidationResult {
	m := g.pattern().FindStringSubmatch(normalized)
	if m == nil {
		return ValidationResult{}
	}

	fields := make([]TemplateField, len(Labels))
	for i, l := range Labels {
		value := strings.TrimSpace(m[i+1])
		if value == "" || containsLabel(value) {
			return ValidationResult{}
		}
		fields[i] = TemplateField{Label: l, Value: value}
	}

	return ValidationResult{Valid: true, CleanedText: normalized, Fields: fields}
}

func containsLabel(s string) bool {
	for _, l := range Labels {
		if strings.Contains(s, l.Token) {
			return true
		}
	}
	return false
}
