// Package chatbot answers support-widget messages by keyword matching against
// a static scenario table.
package chatbot

import "strings"

// Reply is the widget response for one user message.
type Reply struct {
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
	Matched     bool     `json:"matched"`
}

type Service struct{}

func NewService() *Service { return &Service{} }

// Respond returns the first scenario whose keyword appears in the message,
// falling back to a default reply. Matching is case-insensitive.
func (s *Service) Respond(message string) Reply {
	normalized := strings.ToLower(strings.TrimSpace(message))
	if normalized == "" {
		return Reply{Message: fallbackReply}
	}

	for _, sc := range scenarios {
		for _, keyword := range sc.Keywords {
			if strings.Contains(normalized, keyword) {
				return Reply{Message: sc.Reply, Suggestions: sc.Suggestions, Matched: true}
			}
		}
	}
	return Reply{Message: fallbackReply}
}
