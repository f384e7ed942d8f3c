// Package assistant – prompt.go builds generation prompts from the persona,
// the reply mode, and the rolling chat history.
package assistant

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/mkotov/jarvis/pkg/jarvis/intent"
)

// Token budgets per reply mode.
const (
	tokensNormal   = 400
	tokensDetailed = 900
	tokensLinkOnly = 120
)

// urlPattern matches the first http/https URL in a reply.
var urlPattern = regexp.MustCompile(`(?i)https?://[^\s<>"')\]]+`)

// linkRequestPrefix strips the "give me a link" lead-in before building the
// search fallback query.
var linkRequestPrefix = regexp.MustCompile(`(?i)^(?:give\s+me\s+a\s+link\s*(?:to|for)?|link\s+to|дай\s+ссылку(?:\s+на)?)\s*`)

// selfReferencePattern removes phrases where the model outs itself as a bot.
var selfReferencePattern = regexp.MustCompile(`(?i)\bas an ai\b|\bi am an ai\b|\bi'm an ai\b|я\s+ии|я\s+бот|как\s+ии`)

// maxTokensFor returns the generation token budget for a reply mode.
func maxTokensFor(mode intent.Mode) int {
	switch mode {
	case intent.ModeDetailed:
		return tokensDetailed
	case intent.ModeLinkOnly:
		return tokensLinkOnly
	default:
		return tokensNormal
	}
}

// buildPrompt assembles the full prompt: persona, mode instruction, recent
// history, and the current message.
func buildPrompt(name string, mode intent.Mode, history []HistoryEntry, userText string) string {
	var b strings.Builder

	b.WriteString("You are ")
	b.WriteString(name)
	b.WriteString(", a personal assistant: concise, precise, no filler. ")
	b.WriteString("Never say you are an AI, a bot, or a model. Answer like a person.\n")

	switch mode {
	case intent.ModeLinkOnly:
		b.WriteString("MODE: LINK_ONLY. Return exactly one URL (http/https) and nothing else. No text, no explanations, no lists.\n")
	case intent.ModeDetailed:
		b.WriteString("MODE: DETAILED. Format: 1) Summary (1-2 lines). 2) Explanation. 3) Steps (up to 5).\n")
	default:
		b.WriteString("MODE: NORMAL. Keep the answer short and to the point (2-6 sentences).\n")
	}

	for _, e := range history {
		b.WriteString(e.Role)
		b.WriteString(": ")
		b.WriteString(e.Text)
		b.WriteString("\n")
	}

	b.WriteString("user: ")
	b.WriteString(userText)
	return b.String()
}

// strictLinkPrompt is the single retry issued when a LINK_ONLY reply came
// back without a URL.
func strictLinkPrompt(userText string) string {
	return "Return exactly one URL (http/https) for this request, nothing else: " + userText
}

// extractFirstURL returns the first URL in text, or "" when there is none.
func extractFirstURL(text string) string {
	return urlPattern.FindString(text)
}

// searchFallbackURL builds a search-engine URL from the user's request, used
// when the generation service could not produce a link.
func searchFallbackURL(userText string) string {
	q := linkRequestPrefix.ReplaceAllString(strings.TrimSpace(userText), "")
	if len(q) > 120 {
		q = q[:120]
	}
	return "https://www.google.com/search?q=" + url.QueryEscape(q)
}

// scrubSelfReferences drops phrases where the reply describes itself as an
// AI, keeping the persona intact.
func scrubSelfReferences(answer string) string {
	return strings.TrimSpace(selfReferencePattern.ReplaceAllString(answer, ""))
}
