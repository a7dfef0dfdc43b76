package chat

import (
	"encoding/json"
	"fmt"
	"strings"

	"ideaforge-be/internal/constant"
	"ideaforge-be/internal/entity"
	"ideaforge-be/pkg/store"
)

const (
	// MaxHistoryTurns is the tail of the conversation included in the
	// prompt.
	MaxHistoryTurns = 4

	maxExcerptItems  = 3
	maxExcerptLength = 200
)

// ContextBuilder assembles the bounded text context prepended to a
// conversational prompt: session summary, capped module excerpts and the
// last few conversation turns.
type ContextBuilder struct {
	session *entity.IdeaSession
	turns   []store.Turn
	query   string
}

func NewContextBuilder(session *entity.IdeaSession, turns []store.Turn, query string) *ContextBuilder {
	return &ContextBuilder{
		session: session,
		turns:   turns,
		query:   query,
	}
}

func (b *ContextBuilder) Build() string {
	var prompt strings.Builder

	prompt.WriteString(constant.ChatSystemPromptV1)
	prompt.WriteString("\n\n")

	b.writeSessionSummary(&prompt)
	b.writeHistory(&prompt)

	prompt.WriteString("User question: ")
	prompt.WriteString(b.query)
	prompt.WriteString("\n")

	return prompt.String()
}

func (b *ContextBuilder) writeSessionSummary(prompt *strings.Builder) {
	if b.session == nil {
		return
	}

	prompt.WriteString("<project>\n")
	fmt.Fprintf(prompt, "Idea: %s\nDomain: %s\nTone: %s\nStatus: %s\n",
		b.session.Idea, b.session.DomainHint, b.session.Tone, b.session.Status)

	for _, module := range constant.AllModules {
		output, ok := b.session.Outputs[module]
		if !ok {
			continue
		}
		fmt.Fprintf(prompt, "%s: %s\n", module, excerptOf(output))
	}
	prompt.WriteString("</project>\n\n")
}

func (b *ContextBuilder) writeHistory(prompt *strings.Builder) {
	turns := TruncateHistory(b.turns, MaxHistoryTurns)
	if len(turns) == 0 {
		return
	}

	prompt.WriteString("<conversation>\n")
	for _, turn := range turns {
		fmt.Fprintf(prompt, "%s: %s\n", turn.Role, turn.Text)
	}
	prompt.WriteString("</conversation>\n\n")
}

// TruncateHistory keeps only the last max turns.
func TruncateHistory(turns []store.Turn, max int) []store.Turn {
	if len(turns) <= max {
		return turns
	}
	return turns[len(turns)-max:]
}

// excerptOf renders a bounded preview of a module output: a few items for
// maps and arrays, a clipped string otherwise.
func excerptOf(value interface{}) string {
	switch v := value.(type) {
	case map[string]interface{}:
		parts := make([]string, 0, maxExcerptItems)
		for key, item := range v {
			if len(parts) >= maxExcerptItems {
				break
			}
			parts = append(parts, fmt.Sprintf("%s=%s", key, clip(stringify(item))))
		}
		return strings.Join(parts, ", ")
	case []interface{}:
		limit := len(v)
		if limit > maxExcerptItems {
			limit = maxExcerptItems
		}
		parts := make([]string, 0, limit)
		for _, item := range v[:limit] {
			parts = append(parts, clip(stringify(item)))
		}
		return strings.Join(parts, ", ")
	default:
		return clip(stringify(value))
	}
}

func stringify(value interface{}) string {
	if s, ok := value.(string); ok {
		return s
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(raw)
}

func clip(s string) string {
	if len(s) <= maxExcerptLength {
		return s
	}
	return s[:maxExcerptLength] + "..."
}
