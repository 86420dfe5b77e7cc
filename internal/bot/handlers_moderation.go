package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Friomademyday/FRIO-BOT-v2/internal/moderation"
	"github.com/Friomademyday/FRIO-BOT-v2/internal/transport"
)

func (h *Handler) handleBan(ctx context.Context, msg transport.Message, args []string) {
	if !h.requireAdmin(ctx, msg) {
		return
	}
	if len(args) != 1 {
		h.usage(ctx, msg, "ban <user>")
		return
	}
	target := h.session.NormalizeMention(args[0])
	switch err := h.mod.Ban(target); {
	case errors.Is(err, moderation.ErrAlreadyBanned):
		h.reply(ctx, msg, "User is already banned.")
	case err != nil:
		h.reply(ctx, msg, "Could not ban the user.")
	default:
		h.reply(ctx, msg, fmt.Sprintf("User %s has been banned.", mentionTag(target)))
	}
}

func (h *Handler) handleUnban(ctx context.Context, msg transport.Message, args []string) {
	if !h.requireAdmin(ctx, msg) {
		return
	}
	if len(args) != 1 {
		h.usage(ctx, msg, "unban <user>")
		return
	}
	target := h.session.NormalizeMention(args[0])
	switch err := h.mod.Unban(target); {
	case errors.Is(err, moderation.ErrNotBanned):
		h.reply(ctx, msg, "User is not banned.")
	case err != nil:
		h.reply(ctx, msg, "Could not unban the user.")
	default:
		h.reply(ctx, msg, fmt.Sprintf("User %s has been unbanned.", mentionTag(target)))
	}
}

func (h *Handler) handleAntilinkOn(ctx context.Context, msg transport.Message, _ []string) {
	if !h.requireAdmin(ctx, msg) {
		return
	}
	if err := h.mod.SetAntilink(msg.ChatID, true); err != nil {
		h.moderationFailure(ctx, msg, "antilinkon", err)
		return
	}
	h.reply(ctx, msg, "Antilink ON")
}

func (h *Handler) handleAntilinkOff(ctx context.Context, msg transport.Message, _ []string) {
	if !h.requireAdmin(ctx, msg) {
		return
	}
	if err := h.mod.SetAntilink(msg.ChatID, false); err != nil {
		h.moderationFailure(ctx, msg, "antilinkoff", err)
		return
	}
	h.reply(ctx, msg, "Antilink OFF")
}

func (h *Handler) handleMute(ctx context.Context, msg transport.Message, _ []string) {
	if !h.requireAdmin(ctx, msg) {
		return
	}
	if err := h.mod.SetMuted(msg.ChatID, true); err != nil {
		h.moderationFailure(ctx, msg, "mute", err)
		return
	}
	if err := h.session.SetChatLocked(ctx, msg.ChatID, true); err != nil {
		h.log.Error("lock chat", "chat", msg.ChatID, "err", err)
		h.reply(ctx, msg, "Chat muted. Could not lock the group, check my permissions.")
		return
	}
	h.reply(ctx, msg, "Chat muted.")
}

func (h *Handler) handleUnmute(ctx context.Context, msg transport.Message, _ []string) {
	if !h.requireAdmin(ctx, msg) {
		return
	}
	if err := h.mod.SetMuted(msg.ChatID, false); err != nil {
		h.moderationFailure(ctx, msg, "unmute", err)
		return
	}
	if err := h.session.SetChatLocked(ctx, msg.ChatID, false); err != nil {
		h.log.Error("unlock chat", "chat", msg.ChatID, "err", err)
		h.reply(ctx, msg, "Chat unmuted. Could not unlock the group, check my permissions.")
		return
	}
	h.reply(ctx, msg, "Chat unmuted.")
}

func (h *Handler) handlePromote(ctx context.Context, msg transport.Message, args []string) {
	h.handleRoleChange(ctx, msg, args, "promote")
}

func (h *Handler) handleDemote(ctx context.Context, msg transport.Message, args []string) {
	h.handleRoleChange(ctx, msg, args, "demote")
}

func (h *Handler) handleRoleChange(ctx context.Context, msg transport.Message, args []string, verb string) {
	if !h.requireAdmin(ctx, msg) {
		return
	}
	if len(args) == 0 {
		h.usage(ctx, msg, verb+" <users>")
		return
	}

	targets := make([]string, 0, len(args))
	tags := make([]string, 0, len(args))
	for _, a := range args {
		id := h.session.NormalizeMention(a)
		if id == "" {
			continue
		}
		targets = append(targets, id)
		tags = append(tags, mentionTag(id))
	}
	if len(targets) == 0 {
		h.usage(ctx, msg, verb+" <users>")
		return
	}

	change := h.session.Promote
	if verb == "demote" {
		change = h.session.Demote
	}
	if err := change(ctx, msg.ChatID, targets); err != nil {
		h.log.Error(verb, "chat", msg.ChatID, "err", err)
		h.reply(ctx, msg, "Could not "+verb+", check my permissions.")
		return
	}
	done := "Promoted"
	if verb == "demote" {
		done = "Demoted"
	}
	h.reply(ctx, msg, done+" "+strings.Join(tags, ", ")+".")
}

// moderationFailure reports a failed moderation write: the setting was
// rolled back, memory and disk still agree.
func (h *Handler) moderationFailure(ctx context.Context, msg transport.Message, cmd string, err error) {
	h.log.Error("moderation", "command", cmd, "chat", msg.ChatID, "err", err)
	h.reply(ctx, msg, "Could not save that setting, nothing was changed.")
}
