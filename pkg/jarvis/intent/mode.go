// Package intent – mode.go detects the reply mode for chat messages.
package intent

import "strings"

// Mode shapes how the LLM is asked to answer a chat message.
type Mode string

const (
	// ModeNormal is the default: short, to the point.
	ModeNormal Mode = "normal"

	// ModeLinkOnly asks for a single URL and nothing else.
	ModeLinkOnly Mode = "link_only"

	// ModeDetailed asks for a structured, longer answer.
	ModeDetailed Mode = "detailed"
)

var linkOnlyTriggers = []string{
	"give me a link", "send a link", "link only", "link to",
	"дай ссылку", "скинь ссылку", "пришли ссылку", "только ссылку", "ссылку на",
}

var detailedTriggers = []string{
	"explain", "in detail", "tell me about",
	"расскажи", "объясни", "подробно", "детально", "развернуто",
}

// DetectMode picks the reply mode from trigger phrases in the text.
func DetectMode(text string) Mode {
	lower := strings.ToLower(text)
	for _, t := range linkOnlyTriggers {
		if strings.Contains(lower, t) {
			return ModeLinkOnly
		}
	}
	for _, t := range detailedTriggers {
		if strings.Contains(lower, t) {
			return ModeDetailed
		}
	}
	return ModeNormal
}
