package llm

import "strings"

// wrapperTokens are decorations some OpenRouter-served models emit
// around their actual output.
var wrapperTokens = []string{
	"<|begin_of_box|>",
	"<|end_of_box|>",
	"<|start_header_id|>",
	"<|end_header_id|>",
}

// CleanContent normalizes raw chat output: markdown code fences,
// gateway wrapper tokens and hidden reasoning blocks are removed so the
// remainder can be used verbatim or parsed as JSON.
func CleanContent(content string) string {
	cleaned := strings.TrimSpace(content)

	if strings.HasPrefix(cleaned, "```json") {
		cleaned = cleaned[len("```json"):]
	}
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	cleaned = strings.TrimSpace(cleaned)

	for _, token := range wrapperTokens {
		cleaned = strings.ReplaceAll(cleaned, token, "")
	}

	cleaned = stripTagBlock(cleaned, "<think>", "</think>")

	return strings.TrimSpace(cleaned)
}

// stripTagBlock removes every startTag ... endTag occurrence, tags
// included. Unterminated blocks are left alone.
func stripTagBlock(text, startTag, endTag string) string {
	for {
		start := strings.Index(text, startTag)
		if start == -1 {
			return text
		}
		end := strings.Index(text[start+len(startTag):], endTag)
		if end == -1 {
			return text
		}
		text = text[:start] + text[start+len(startTag)+end+len(endTag):]
	}
}
