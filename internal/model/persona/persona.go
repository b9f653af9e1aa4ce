package persona

// DefaultID is the persona used when a session does not ask for one.
const DefaultID = "realtime-assistant"

// Persona captures how the bot introduces itself and how it is prompted.
type Persona struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Title       string `json:"title"`
	Tone        string `json:"tone"`
	PromptHint  string `json:"promptHint"`
	Greeting    string `json:"greeting"`
	Placeholder string `json:"placeholder"`
}

// Seed provides the built-in personas.
func Seed() []Persona {
	return []Persona{
		{
			ID:          DefaultID,
			Name:        "Real time Chat Bot",
			Title:       "web-search assistant",
			Tone:        "helpful, factual, concise",
			PromptHint:  "Answer with current, verifiable information and say so when you are unsure.",
			Greeting:    "Hello , I'm a Real time Chat Bot! Who fetches and analyzes information using LLM powered with websearch using Tavily API.",
			Placeholder: "What's the weather in Bhopal today ...?",
		},
		{
			ID:          "plain",
			Name:        "Chat Bot",
			Title:       "general assistant",
			Tone:        "friendly",
			PromptHint:  "Keep answers short.",
			Greeting:    "Hello, ask me anything.",
			Placeholder: "Type a message ...",
		},
	}
}
