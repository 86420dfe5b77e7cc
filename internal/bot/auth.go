package bot

import "github.com/Friomademyday/FRIO-BOT-v2/internal/domain"

// isAdmin reports whether senderID holds admin rights in the chat.
// Always false outside groups; a sender missing from the participant
// list is not an admin.
func isAdmin(chat domain.ChatContext, senderID string) bool {
	if !chat.IsGroup {
		return false
	}
	for _, p := range chat.Participants {
		if p.ID == senderID {
			return p.IsAdmin || p.IsSuperAdmin
		}
	}
	return false
}
