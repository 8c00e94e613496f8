package llm

import "strings"

// CleanJSONBlock removes a markdown code fence wrapped around a response.
// Models often fence JSON even when asked not to. Text without a leading fence is
// returned trimmed but otherwise untouched, so prose answers survive for keyword
// recovery downstream. An unterminated fence keeps everything after the opener.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	// Drop a language identifier such as json or javascript on the opening line.
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		firstLine := strings.TrimSpace(text[:idx])
		if len(firstLine) < 20 && !strings.ContainsAny(firstLine, " {[") {
			text = text[idx+1:]
		}
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
