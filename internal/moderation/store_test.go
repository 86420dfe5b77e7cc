package moderation

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBanUnban(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)

	assert.False(t, s.IsBanned("alice"))
	require.NoError(t, s.Ban("alice"))
	assert.True(t, s.IsBanned("alice"))

	assert.ErrorIs(t, s.Ban("alice"), ErrAlreadyBanned)
	assert.True(t, s.IsBanned("alice"), "duplicate ban leaves the set unchanged")

	require.NoError(t, s.Unban("alice"))
	assert.False(t, s.IsBanned("alice"))
	assert.ErrorIs(t, s.Unban("alice"), ErrNotBanned)
	assert.ErrorIs(t, s.Unban("bob"), ErrNotBanned)
}

func TestAntilinkPerChat(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)

	assert.False(t, s.AntilinkEnabled("g1"))
	require.NoError(t, s.SetAntilink("g1", true))
	assert.True(t, s.AntilinkEnabled("g1"))
	assert.False(t, s.AntilinkEnabled("g2"), "antilink is scoped to the chat it was enabled in")

	require.NoError(t, s.SetAntilink("g1", false))
	assert.False(t, s.AntilinkEnabled("g1"))
}

func TestMutePerChat(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)

	require.NoError(t, s.SetMuted("g1", true))
	assert.True(t, s.Muted("g1"))
	assert.False(t, s.Muted("g2"))
	require.NoError(t, s.SetMuted("g1", false))
	assert.False(t, s.Muted("g1"))
}

func TestPersistenceAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moderation.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Ban("alice"))
	require.NoError(t, s.Ban("bob"))
	require.NoError(t, s.Unban("bob"))
	require.NoError(t, s.SetAntilink("g1", true))
	require.NoError(t, s.SetMuted("g2", true))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	assert.True(t, s.IsBanned("alice"))
	assert.False(t, s.IsBanned("bob"))
	assert.True(t, s.AntilinkEnabled("g1"))
	assert.False(t, s.AntilinkEnabled("g2"))
	assert.True(t, s.Muted("g2"))
}

func TestFailedWriteSurfacesAndRollsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moderation.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Ban("bob"))

	// A closed database makes every write-through fail.
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Ban("alice"), ErrPersist)
	assert.False(t, s.IsBanned("alice"), "failed write must not leave memory divergent")

	assert.ErrorIs(t, s.Unban("bob"), ErrPersist)
	assert.True(t, s.IsBanned("bob"))

	assert.ErrorIs(t, s.SetAntilink("g1", true), ErrPersist)
	assert.False(t, s.AntilinkEnabled("g1"))

	assert.ErrorIs(t, s.SetMuted("g1", true), ErrPersist)
	assert.False(t, s.Muted("g1"))
}
