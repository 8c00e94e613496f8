package skillgap

import "strings"

// The repairs run in order: escaped underscores, escaped quotes, then doubled
// backslashes.
var underscoreRepairs = strings.NewReplacer(`\_`, `_`)

var quoteRepairs = strings.NewReplacer(`\"`, `"`)

var backslashRepairs = strings.NewReplacer(`\\`, `\`)

// Normalize repairs escape corruption in raw model output. It is total and idempotent:
// the repairs are repeated until the text stops changing, so a second call is a no-op.
// Every effective pass shortens the text, which bounds the loop.
func Normalize(raw string) string {
	text := raw
	for {
		next := normalizeOnce(text)
		if next == text {
			break
		}
		text = next
	}
	return text
}

func normalizeOnce(text string) string {
	text = underscoreRepairs.Replace(text)
	text = quoteRepairs.Replace(text)
	text = backslashRepairs.Replace(text)
	return strings.TrimSpace(text)
}
