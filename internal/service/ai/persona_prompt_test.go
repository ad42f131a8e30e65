package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zhouzirui/cs-buddy/internal/model/persona"
)

func TestBuildPrimingPromptUsesPersonaPrompt(t *testing.T) {
	p := persona.Seed()[0]
	prompt := NewPersonaPromptManager().BuildPrimingPrompt(&p)
	assert.Equal(t, p.SystemPrompt, prompt)
}

func TestBuildPrimingPromptPrefersRegisteredTemplate(t *testing.T) {
	p := persona.Seed()[0]
	pm := NewPersonaPromptManager()
	pm.Register(p.ID, &PromptTemplate{
		SystemPrompt:     "You teach robots.",
		PersonalityHints: []string{"calm"},
		ContextRules:     []string{"no jargon"},
	})

	prompt := pm.BuildPrimingPrompt(&p)
	assert.Contains(t, prompt, "You teach robots.")
	assert.Contains(t, prompt, "- calm")
	assert.Contains(t, prompt, "- no jargon")
	assert.Contains(t, prompt, "Begin every conversation")
}

func TestBuildPrimingPromptFallsBackToFields(t *testing.T) {
	p := persona.Persona{ID: "x", Name: "Robo", Greeting: "Hello!", Traits: []string{"kind"}}
	prompt := NewPersonaPromptManager().BuildPrimingPrompt(&p)
	assert.Contains(t, prompt, "You are Robo.")
	assert.Contains(t, prompt, "beginners")
	assert.Contains(t, prompt, `"Hello!"`)
}
