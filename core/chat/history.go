package chat

// DefaultHistoryTurns is the number of user/assistant pairs kept when none is configured.
const DefaultHistoryTurns = 12

// TrimHistory bounds a conversation before it is sent upstream: it keeps the
// leading system message, if any, and the most recent turns user/assistant pairs.
// Other system messages are dropped.
func TrimHistory(messages []Message, turns int) []Message {
	if turns <= 0 {
		turns = DefaultHistoryTurns
	}

	var system *Message
	if len(messages) > 0 && messages[0].Role == RoleSystem {
		system = &messages[0]
	}

	rest := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleUser || m.Role == RoleAssistant {
			rest = append(rest, m)
		}
	}
	if n := 2 * turns; len(rest) > n {
		rest = rest[len(rest)-n:]
	}

	trimmed := make([]Message, 0, len(rest)+1)
	if system != nil {
		trimmed = append(trimmed, *system)
	}
	return append(trimmed, rest...)
}
