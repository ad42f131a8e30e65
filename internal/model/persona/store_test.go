package persona

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDefaultPersona(t *testing.T) {
	store := NewMemoryStore(Seed())

	p, ok := Resolve(store, "")
	require.True(t, ok)
	assert.Equal(t, DefaultID, p.ID)
	assert.Equal(t, Greeting, p.Greeting)
	assert.Contains(t, p.SystemPrompt, Greeting)
}

func TestResolveUnknownPersona(t *testing.T) {
	store := NewMemoryStore(Seed())

	_, ok := Resolve(store, "nobody")
	assert.False(t, ok)
}

func TestListIsACopy(t *testing.T) {
	store := NewMemoryStore(Seed())
	items := store.List()
	items[0].Name = "changed"

	p, ok := store.FindByID(DefaultID)
	require.True(t, ok)
	assert.NotEqual(t, "changed", p.Name)
}
