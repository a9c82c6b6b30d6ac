package aientity

// Message is one entry of a chat exchange.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewSystemMessage creates a new system message
func NewSystemMessage(content string) *Message {
	return &Message{Role: "system", Content: content}
}

// NewUserMessage creates a new user message
func NewUserMessage(content string) *Message {
	return &Message{Role: "user", Content: content}
}
