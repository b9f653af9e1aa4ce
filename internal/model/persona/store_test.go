package persona_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/z-chat/internal/model/persona"
)

func TestResolveDefaultsToRealtimeAssistant(t *testing.T) {
	store := persona.NewMemoryStore(persona.Seed())

	p, ok := persona.Resolve(store, "")
	require.True(t, ok)
	assert.Equal(t, persona.DefaultID, p.ID)
	assert.NotEmpty(t, p.Greeting)
	assert.NotEmpty(t, p.Placeholder)
}

func TestResolveUnknown(t *testing.T) {
	store := persona.NewMemoryStore(persona.Seed())

	_, ok := persona.Resolve(store, "missing")
	assert.False(t, ok)
}

func TestListReturnsCopy(t *testing.T) {
	store := persona.NewMemoryStore(persona.Seed())

	list := store.List()
	list[0].Name = "changed"

	p, ok := store.FindByID(persona.DefaultID)
	require.True(t, ok)
	assert.NotEqual(t, "changed", p.Name)
}
