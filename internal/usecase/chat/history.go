package chat

import (
	"strings"
	"time"

	"github.com/futig/rag-playground/internal/entity"
)

var historyPrefixes = []struct {
	prefix string
	role   entity.Role
}{
	{"사용자:", entity.RoleUser},
	{"user:", entity.RoleUser},
	{"ai:", entity.RoleAssistant},
	{"assistant:", entity.RoleAssistant},
}

// ParseHistory converts the backend's line-oriented transcript into messages.
// Lines without a known speaker prefix are dropped. All messages get the same timestamp.
func ParseHistory(raw string, at time.Time) []entity.Message {
	var messages []entity.Message

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		for _, p := range historyPrefixes {
			if !hasPrefixFold(line, p.prefix) {
				continue
			}

			content := strings.TrimSpace(line[len(p.prefix):])
			if content != "" {
				messages = append(messages, entity.Message{
					Role:      p.role,
					Content:   content,
					Timestamp: at,
				})
			}
			break
		}
	}

	return messages
}

// hasPrefixFold compares byte-for-byte lengths so the prefix can be sliced off line safely.
func hasPrefixFold(line, prefix string) bool {
	return len(line) >= len(prefix) && strings.EqualFold(line[:len(prefix)], prefix)
}
