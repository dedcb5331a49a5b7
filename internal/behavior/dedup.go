package behavior

import (
	"strings"
	"unicode"
)

// DedupKey normalizes free text into an entity-aware dedup key: case
// folded, punctuation and apostrophes stripped (so "don't retry" and
// "dont retry" collide), internal whitespace collapsed. Used for
// insight dedup_key per spec §4.F ("dedup by entity-aware key,
// punctuation/apostrophe handled").
func DedupKey(s string) string {
	var b strings.Builder
	lastWasSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r == '\'' || r == '’':
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastWasSpace = false
		default:
			if !lastWasSpace {
				b.WriteRune(' ')
				lastWasSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}
