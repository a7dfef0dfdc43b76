package chat

import (
	"strings"
)

// offTopicPatterns are requests the assistant will never serve; matching one
// rejects the message before any provider call is spent on it.
var offTopicPatterns = []string{
	"write a poem",
	"write a song",
	"write me a poem",
	"what's the weather",
	"whats the weather",
	"weather today",
	"tell me a joke",
	"sports score",
	"football score",
	"movie recommendation",
	"recipe for",
	"homework",
	"lyrics",
}

// domainKeywords signal the message plausibly concerns the user's startup
// project.
var domainKeywords = []string{
	"startup", "business", "idea", "market", "brand", "branding",
	"price", "pricing", "customer", "revenue", "pitch", "investor",
	"product", "saas", "launch", "landing", "competitor", "competition",
	"mvp", "funding", "monetize", "monetization", "users", "growth",
	"strategy", "niche", "audience", "b2b", "b2c",
}

const maxWordsWithoutKeyword = 5

// IsInScope is a cheap pre-filter deciding whether a free-text question is
// plausibly on-topic. It avoids provider calls for obvious non-matches; the
// final judgment is delegated to the generative call's own scope-refusal
// behavior.
//
// Rules, in order: a known off-topic pattern rejects; a domain keyword
// accepts; a keywordless message longer than 5 words rejects; anything else
// (short smalltalk like "ok thanks bye") is accepted.
func IsInScope(message string) bool {
	lowered := strings.ToLower(strings.TrimSpace(message))

	for _, pattern := range offTopicPatterns {
		if strings.Contains(lowered, pattern) {
			return false
		}
	}

	for _, keyword := range domainKeywords {
		if containsWord(lowered, keyword) {
			return true
		}
	}

	if len(strings.Fields(lowered)) > maxWordsWithoutKeyword {
		return false
	}

	return true
}

// containsWord matches keyword as a whole token so "users" does not fire on
// "abusers".
func containsWord(text, keyword string) bool {
	for _, word := range strings.FieldsFunc(text, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		if word == keyword {
			return true
		}
	}
	return false
}
