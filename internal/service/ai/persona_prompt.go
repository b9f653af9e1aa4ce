package ai

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/zhouzirui/z-chat/internal/model/persona"
)

// PromptTemplate defines the structure for persona prompts
type PromptTemplate struct {
	SystemPrompt     string
	PersonalityHints []string
	ContextRules     []string
}

// PersonaPromptManager manages prompt templates for the built-in personas
type PersonaPromptManager struct {
	templates map[string]*PromptTemplate
}

// NewPersonaPromptManager creates a prompt manager with the default templates
func NewPersonaPromptManager() *PersonaPromptManager {
	manager := &PersonaPromptManager{
		templates: make(map[string]*PromptTemplate),
	}

	manager.loadDefaultTemplates()
	return manager
}

// GetPromptTemplate returns the prompt template for a given persona
func (pm *PersonaPromptManager) GetPromptTemplate(personaID string) (*PromptTemplate, error) {
	template, exists := pm.templates[personaID]
	if !exists {
		return nil, errors.Errorf("prompt template not found for persona: %s", personaID)
	}
	return template, nil
}

// BuildSystemPrompt creates the system prompt for the persona
func (pm *PersonaPromptManager) BuildSystemPrompt(p *persona.Persona) string {
	template, err := pm.GetPromptTemplate(p.ID)
	if err != nil {
		return pm.buildBasicSystemPrompt(p)
	}

	return fmt.Sprintf(`%s

Profile:
- Name: %s
- Role: %s
- Tone: %s

Style:
- %s

Rules:
- %s`,
		template.SystemPrompt,
		p.Name,
		p.Title,
		p.Tone,
		strings.Join(template.PersonalityHints, "\n- "),
		strings.Join(template.ContextRules, "\n- "),
	)
}

func (pm *PersonaPromptManager) buildBasicSystemPrompt(p *persona.Persona) string {
	return fmt.Sprintf(`You are %s, a %s.

Tone: %s
Hint: %s

Reply in plain text suitable for a chat bubble.`,
		p.Name,
		p.Title,
		p.Tone,
		p.PromptHint,
	)
}

func (pm *PersonaPromptManager) loadDefaultTemplates() {
	pm.templates[persona.DefaultID] = &PromptTemplate{
		SystemPrompt: "You are a real time chat bot that fetches and analyzes up-to-date information for the user.",
		PersonalityHints: []string{
			"Be direct and factual",
			"Prefer short paragraphs over long lists",
			"State the date or source of time-sensitive facts when you know it",
		},
		ContextRules: []string{
			"Answer the latest user message only; there is no earlier history",
			"Say so plainly when information may be outdated or unavailable",
			"Reply in plain text suitable for a chat bubble",
		},
	}
}
