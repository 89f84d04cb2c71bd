// internal/domain/intro/template.go
package intro

import (
	"regexp"
	"strings"
)

// Field identifies one of the six template fields.
type Field string

const (
	FieldName     Field = "Name"
	FieldVRCName  Field = "VRCName"
	FieldAge      Field = "Age"
	FieldGender   Field = "Gender"
	FieldHobby    Field = "Hobby"
	FieldOneLiner Field = "OneLiner"
)

// Label pairs a field with the bracketed token users type for it.
type Label struct {
	Field Field
	Token string
}

// Labels is the required template. Order is significant.
var Labels = []Label{
	{Field: FieldName, Token: "[名前]"},
	{Field: FieldVRCName, Token: "[VRCの名前]"},
	{Field: FieldAge, Token: "[年齢]"},
	{Field: FieldGender, Token: "[性別]"},
	{Field: FieldHobby, Token: "[趣味]"},
	{Field: FieldOneLiner, Token: "[一言]"},
}

// TemplateField is one labeled value of a validated submission.
type TemplateField struct {
	Label Label
	Value string
}

var (
	inlinePattern    = buildPattern("")
	multilinePattern = buildPattern("\n")
)

// buildPattern joins the quoted labels with lazy captures; the last field runs
// to end of input. sep must directly precede every label after the first.
func buildPattern(sep string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString(`(?s)^`)
	for i, l := range Labels {
		if i > 0 {
			b.WriteString(regexp.QuoteMeta(sep))
		}
		b.WriteString(regexp.QuoteMeta(l.Token))
		if i == len(Labels)-1 {
			b.WriteString(`(.+)$`)
		} else {
			b.WriteString(`(.+?)`)
		}
	}
	return regexp.MustCompile(b.String())
}

// HelpText lists the label tokens in order, one per line.
func HelpText() string {
	tokens := make([]string, len(Labels))
	for i, l := range Labels {
		tokens[i] = l.Token
	}
	return strings.Join(tokens, "\n")
}

// MentionsLabel reports whether text contains any template token.
func MentionsLabel(text string) bool {
	for _, l := range Labels {
		if strings.Contains(text, l.Token) {
			return true
		}
	}
	return false
}
