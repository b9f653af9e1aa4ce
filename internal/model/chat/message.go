package chat

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one chat turn. Messages are never mutated after they are appended.
type Message struct {
	ID     int    `json:"id"`
	Text   string `json:"text"`
	Sender Sender `json:"sender"`
}

// UserMessage builds an unnumbered user message.
func UserMessage(text string) Message {
	return Message{Text: text, Sender: SenderUser}
}

// BotMessage builds an unnumbered bot message.
func BotMessage(text string) Message {
	return Message{Text: text, Sender: SenderBot}
}
