package intro

import "strings"

// Format renders validated text with every label starting its own line,
// followed by exactly one space. Line breaks inside a value are folded into
// spaces, so there is always one line per field. It is idempotent, and
// single-line and multi-line forms of the same submission format identically.
func Format(cleaned string) string {
	out := Normalize(cleaned)
	for _, l := range Labels {
		out = strings.ReplaceAll(out, l.Token, "\n"+l.Token+" ")
	}

	lines := strings.Split(out, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = Normalize(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
