package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Friomademyday/FRIO-BOT-v2/internal/domain"
)

func TestIsAdmin(t *testing.T) {
	group := domain.ChatContext{
		ChatID:  "g1",
		IsGroup: true,
		Participants: []domain.Participant{
			{ID: "owner", IsSuperAdmin: true},
			{ID: "mod", IsAdmin: true},
			{ID: "member"},
		},
	}

	assert.True(t, isAdmin(group, "owner"))
	assert.True(t, isAdmin(group, "mod"))
	assert.False(t, isAdmin(group, "member"))
	assert.False(t, isAdmin(group, "stranger"), "unknown participant is not an admin")

	private := domain.ChatContext{ChatID: "dm", Participants: []domain.Participant{{ID: "mod", IsAdmin: true}}}
	assert.False(t, isAdmin(private, "mod"), "never an admin outside groups")
}
