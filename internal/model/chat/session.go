package chat

import "time"

// Session captures one open page and the persona it greets the user with.
type Session struct {
	ID        string    `json:"id"`
	PersonaID string    `json:"personaId"`
	CreatedAt time.Time `json:"createdAt"`
}
