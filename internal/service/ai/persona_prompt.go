package ai

import (
	"fmt"
	"strings"

	"github.com/zhouzirui/cs-buddy/internal/model/persona"
)

// PromptTemplate defines the structure for persona priming prompts
type PromptTemplate struct {
	SystemPrompt     string
	PersonalityHints []string
	ContextRules     []string
}

// PersonaPromptManager builds the priming instruction sent to a fresh
// conversation before anything is shown to the user.
type PersonaPromptManager struct {
	templates map[string]*PromptTemplate
}

// NewPersonaPromptManager creates a prompt manager without overrides.
func NewPersonaPromptManager() *PersonaPromptManager {
	return &PersonaPromptManager{
		templates: make(map[string]*PromptTemplate),
	}
}

// Register overrides the priming prompt of a persona.
func (pm *PersonaPromptManager) Register(personaID string, template *PromptTemplate) {
	pm.templates[personaID] = template
}

// GetPromptTemplate returns the registered template for a given persona
func (pm *PersonaPromptManager) GetPromptTemplate(personaID string) (*PromptTemplate, error) {
	template, exists := pm.templates[personaID]
	if !exists {
		return nil, fmt.Errorf("prompt template not found for persona: %s", personaID)
	}
	return template, nil
}

// BuildPrimingPrompt returns the persona instruction. A registered template
// wins, then the persona's own system prompt, then a prompt assembled from
// its fields.
func (pm *PersonaPromptManager) BuildPrimingPrompt(p *persona.Persona) string {
	if template, err := pm.GetPromptTemplate(p.ID); err == nil {
		return pm.buildTemplatePrompt(p, template)
	}
	if prompt := strings.TrimSpace(p.SystemPrompt); prompt != "" {
		return prompt
	}
	return pm.buildBasicPrompt(p)
}

func (pm *PersonaPromptManager) buildTemplatePrompt(p *persona.Persona, template *PromptTemplate) string {
	var builder strings.Builder
	builder.WriteString(template.SystemPrompt)
	if len(template.PersonalityHints) > 0 {
		builder.WriteString("\n\nPersonality:\n- ")
		builder.WriteString(strings.Join(template.PersonalityHints, "\n- "))
	}
	if len(template.ContextRules) > 0 {
		builder.WriteString("\n\nRules:\n- ")
		builder.WriteString(strings.Join(template.ContextRules, "\n- "))
	}
	if p.Greeting != "" {
		builder.WriteString(fmt.Sprintf("\n\nBegin every conversation by saying:\n\n%q", p.Greeting))
	}
	return builder.String()
}

// buildBasicPrompt creates a basic prompt when the persona carries none
func (pm *PersonaPromptManager) buildBasicPrompt(p *persona.Persona) string {
	audience := p.Audience
	if audience == "" {
		audience = "beginners"
	}
	return fmt.Sprintf(`You are %s. Explain computers and coding to %s in simple, kind words.

Personality: %s.

Begin every conversation by saying:

%q`,
		p.Name,
		audience,
		strings.Join(p.Traits, ", "),
		p.Greeting,
	)
}
