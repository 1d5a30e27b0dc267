// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import "strings"

// CleanJSONBlock reduces a model reply to the JSON document it contains.
// It strips markdown code fences, drops conversational text before the first
// '{' or '[', and drops anything after the matching closing bracket.
// If no balanced document is found the (fence-stripped) text is returned unchanged
// so that the caller's parser reports the real problem.
func CleanJSONBlock(text string) string {
	text = stripFences(strings.TrimSpace(text))

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return text
	}

	candidate := text[start:]
	var doc string
	if candidate[0] == '{' {
		doc = extractJSONObject(candidate)
	} else {
		doc = extractJSONArray(candidate)
	}
	if doc == "" {
		return text
	}
	return doc
}

// stripFences removes a leading ```lang line and the trailing ``` fence.
func stripFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	// Skip potential language identifier on first line
	if idx := strings.Index(text, "\n"); idx >= 0 {
		firstLine := text[:idx]
		if len(firstLine) < 20 && !strings.ContainsAny(firstLine, " {[") {
			text = text[idx+1:]
		}
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// extractJSONObject returns the balanced {...} document at the start of text.
func extractJSONObject(text string) string {
	return extractBalanced(text, '{', '}')
}

// extractJSONArray returns the balanced [...] document at the start of text.
func extractJSONArray(text string) string {
	return extractBalanced(text, '[', ']')
}

// extractBalanced scans from text[0] (which must be open) to its matching
// close bracket, ignoring brackets inside string literals.
func extractBalanced(text string, open, closer byte) string {
	if text == "" || text[0] != open {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return text[:i+1]
			}
		}
	}
	return ""
}
