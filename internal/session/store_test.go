package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2021147588/boheommian-rhapsody/internal/types"
)

func TestStoreEmpty(t *testing.T) {
	s := NewStore()

	_, ok := s.Get()
	assert.False(t, ok)
	_, ok = s.Conversation(0)
	assert.False(t, ok)
}

func TestStoreReplacesWholesale(t *testing.T) {
	s := NewStore()

	first := s.Set(types.SimulationResult{
		Summary:       types.Summary{TotalSamples: 2},
		Conversations: []types.ConversationRecord{{ID: "a"}, {ID: "b"}},
	})
	second := s.Set(types.SimulationResult{
		Summary:       types.Summary{TotalSamples: 1},
		Conversations: []types.ConversationRecord{{ID: "c"}},
	})
	assert.NotEqual(t, first, second)

	res, ok := s.Get()
	require.True(t, ok)
	assert.Equal(t, 1, res.Summary.TotalSamples)

	c, ok := s.Conversation(0)
	require.True(t, ok)
	assert.Equal(t, "c", c.ID)
	_, ok = s.Conversation(1)
	assert.False(t, ok)
	_, ok = s.Conversation(-1)
	assert.False(t, ok)

	snap, ok := s.Snapshot()
	require.True(t, ok)
	assert.Equal(t, second, snap.RunID)
}

func TestStoresAreIndependent(t *testing.T) {
	a, b := NewStore(), NewStore()
	a.Set(types.SimulationResult{})

	_, ok := b.Get()
	assert.False(t, ok)
}
