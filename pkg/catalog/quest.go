package catalog

import (
	"strings"
	"unicode"
)

// QuestName derives a human-readable quest name from an item identifier.
//
// Identifiers are underscore-joined token runs that usually start with the
// tokens of the item itself, e.g. "circuit_board_signal_hunt". The leading
// run is stripped against the base identifier when one exists, else against
// the slugified display name; when neither strips anything, everything but
// the last two tokens is dropped. The remainder is title-cased. An empty
// remainder yields "", and callers fall back to a generic label.
func QuestName(id, baseID, name string) string {
	tokens := splitTokens(id)
	if len(tokens) == 0 {
		return ""
	}

	var rest []string
	switch {
	case baseID != "" && countSharedRun(tokens, splitTokens(baseID)) > 0:
		rest = tokens[countSharedRun(tokens, splitTokens(baseID)):]
	case countSharedRun(tokens, splitTokens(Slugify(name))) > 0:
		rest = tokens[countSharedRun(tokens, splitTokens(Slugify(name))):]
	case len(tokens) > 2:
		rest = tokens[len(tokens)-2:]
	default:
		rest = tokens
	}

	return titleCase(rest)
}

// Slugify renders a display name as an identifier fragment: lowercase with
// runs of non-alphanumerics collapsed to single underscores.
func Slugify(name string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
		} else {
			pending = true
		}
	}
	return b.String()
}

func splitTokens(s string) []string {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "_")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// countSharedRun counts how many leading tokens of id match the prefix run.
func countSharedRun(id, prefix []string) int {
	n := 0
	for n < len(id) && n < len(prefix) && id[n] == prefix[n] {
		n++
	}
	return n
}

func titleCase(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		r := []rune(t)
		r[0] = unicode.ToUpper(r[0])
		parts[i] = string(r)
	}
	return strings.Join(parts, " ")
}
