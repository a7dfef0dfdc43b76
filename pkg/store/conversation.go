package store

// Turn is one exchange entry in a session's conversational history.
type Turn struct {
	Role string `json:"role"` // "user" | "model"
	Text string `json:"text"`
}

// Conversation is the active chat state for one idea session, kept in memory
// so the context window can be rebuilt without a DB round trip.
type Conversation struct {
	SessionID string `json:"session_id"` // IdeaSessionID
	UserID    string `json:"user_id"`
	Turns     []Turn `json:"turns"`
}

// Append records a turn, keeping at most max entries (oldest dropped first).
func (c *Conversation) Append(role, text string, max int) {
	c.Turns = append(c.Turns, Turn{Role: role, Text: text})
	if max > 0 && len(c.Turns) > max {
		c.Turns = c.Turns[len(c.Turns)-max:]
	}
}
