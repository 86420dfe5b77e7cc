package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Friomademyday/FRIO-BOT-v2/internal/ledger"
	"github.com/Friomademyday/FRIO-BOT-v2/internal/transport"
)

func (h *Handler) handleDaily(ctx context.Context, msg transport.Message, _ []string) {
	bal, err := h.store.ClaimDaily(ctx, msg.SenderID, h.today(), h.cfg.DailyReward)
	switch {
	case errors.Is(err, ledger.ErrAlreadyClaimed):
		h.reply(ctx, msg, "You already claimed today!")
	case err != nil:
		h.ledgerFailure(ctx, msg, "daily", err)
	default:
		h.reply(ctx, msg, fmt.Sprintf("Claimed %d coins! Balance: %d", h.cfg.DailyReward, bal))
	}
}

func (h *Handler) handleBalance(ctx context.Context, msg transport.Message, _ []string) {
	bal, err := h.store.Balance(ctx, msg.SenderID)
	if err != nil {
		h.ledgerFailure(ctx, msg, "balance", err)
		return
	}
	h.reply(ctx, msg, fmt.Sprintf("Your balance is %d coins.", bal))
}

func (h *Handler) handleTransfer(ctx context.Context, msg transport.Message, args []string) {
	if len(args) != 2 {
		h.usage(ctx, msg, "transfer <user> <amount>")
		return
	}
	recipient := h.session.NormalizeMention(args[0])
	amount, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || amount <= 0 || recipient == "" {
		h.reply(ctx, msg, "Invalid amount.")
		return
	}

	switch err := h.store.Transfer(ctx, msg.SenderID, recipient, amount); {
	case errors.Is(err, ledger.ErrInvalidAmount):
		h.reply(ctx, msg, "Invalid amount.")
	case errors.Is(err, ledger.ErrInsufficientFunds):
		h.reply(ctx, msg, "You don't have that many coins.")
	case err != nil:
		h.ledgerFailure(ctx, msg, "transfer", err)
	default:
		h.reply(ctx, msg, fmt.Sprintf("Sent %d coins to %s.", amount, mentionTag(recipient)))
	}
}

func (h *Handler) handleGamble(ctx context.Context, msg transport.Message, args []string) {
	if len(args) != 1 {
		h.usage(ctx, msg, "gamble <amount>")
		return
	}
	amount, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || amount <= 0 {
		h.reply(ctx, msg, "Specify an amount.")
		return
	}

	bal, err := h.store.Balance(ctx, msg.SenderID)
	if err != nil {
		h.ledgerFailure(ctx, msg, "gamble", err)
		return
	}
	if amount > bal {
		h.reply(ctx, msg, "Too poor!")
		return
	}

	if h.coin() {
		newBal, err := h.store.Credit(ctx, msg.SenderID, amount)
		if err != nil {
			h.ledgerFailure(ctx, msg, "gamble", err)
			return
		}
		h.reply(ctx, msg, fmt.Sprintf("WIN! New balance: %d", newBal))
		return
	}

	newBal, err := h.store.Debit(ctx, msg.SenderID, amount)
	switch {
	case errors.Is(err, ledger.ErrInsufficientFunds):
		// Balance moved underneath us; no coins were taken.
		h.reply(ctx, msg, "Too poor!")
	case err != nil:
		h.ledgerFailure(ctx, msg, "gamble", err)
	default:
		h.reply(ctx, msg, fmt.Sprintf("LOSS! New balance: %d", newBal))
	}
}

func (h *Handler) handleLeaderboard(ctx context.Context, msg transport.Message, _ []string) {
	entries, err := h.store.Top(ctx, 10)
	if err != nil {
		h.ledgerFailure(ctx, msg, "lb", err)
		return
	}
	if len(entries) == 0 {
		h.reply(ctx, msg, "No users found.")
		return
	}

	text := "🏆 *LEADERBOARD* 🏆\n\n"
	for i, e := range entries {
		text += fmt.Sprintf("%d. %s — %d coins\n", i+1, mentionTag(e.ID), e.Balance)
	}
	h.reply(ctx, msg, text)
}

func (h *Handler) handleSetBalance(ctx context.Context, msg transport.Message, args []string) {
	if !h.requireAdmin(ctx, msg) {
		return
	}
	if len(args) != 2 {
		h.usage(ctx, msg, "setbalance <user> <amount>")
		return
	}
	target := h.session.NormalizeMention(args[0])
	amount, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || amount < 0 || target == "" {
		h.reply(ctx, msg, "Invalid amount.")
		return
	}
	if err := h.store.SetBalance(ctx, target, amount); err != nil {
		h.ledgerFailure(ctx, msg, "setbalance", err)
		return
	}
	h.reply(ctx, msg, fmt.Sprintf("Set %s's balance to %d coins.", mentionTag(target), amount))
}

// ledgerFailure reports an unexpected store error: the command failed,
// durable state is whatever the last successful write left behind.
func (h *Handler) ledgerFailure(ctx context.Context, msg transport.Message, cmd string, err error) {
	h.log.Error("ledger", "command", cmd, "user", msg.SenderID, "err", err)
	h.reply(ctx, msg, "Something went wrong saving your balance, nothing was changed.")
}
