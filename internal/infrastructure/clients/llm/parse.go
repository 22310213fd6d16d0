package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var markdownBlock = regexp.MustCompile("(?s)```markdown\\s*\\n(.*)```")

// stripFences removes a surrounding ``` or ```json fence.
func stripFences(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	}
	return strings.TrimSpace(cleaned)
}

// unwrapMarkdown returns the body of a ```markdown block when present.
func unwrapMarkdown(text string) string {
	if m := markdownBlock.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}

// decodeJSON decodes the outermost value delimited by open/close out of a
// possibly chatty response.
func decodeJSON(text string, open, close byte, out any) error {
	cleaned := stripFences(text)
	start := strings.IndexByte(cleaned, open)
	end := strings.LastIndexByte(cleaned, close)
	if start < 0 || end <= start {
		return fmt.Errorf("no JSON %c...%c found in response", open, close)
	}
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
