package bot

import (
	"context"
	"log/slog"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/Friomademyday/FRIO-BOT-v2/internal/config"
	"github.com/Friomademyday/FRIO-BOT-v2/internal/ledger"
	"github.com/Friomademyday/FRIO-BOT-v2/internal/moderation"
	"github.com/Friomademyday/FRIO-BOT-v2/internal/proxy"
	"github.com/Friomademyday/FRIO-BOT-v2/internal/transport"
)

var linkPattern = regexp.MustCompile(`(?i)(https?://|www\.)\S+`)

type handlerFunc func(ctx context.Context, msg transport.Message, args []string)

type Handler struct {
	session transport.Session
	cfg     config.Config
	store   ledger.Store
	mod     *moderation.Store
	proxy   *proxy.Client
	log     *slog.Logger

	routes map[string]handlerFunc

	// coin and now are swapped out in tests.
	coin func() bool
	now  func() time.Time
	loc  *time.Location
}

func NewHandler(session transport.Session, cfg config.Config, store ledger.Store, mod *moderation.Store, px *proxy.Client, log *slog.Logger) *Handler {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		loc = time.UTC
	}
	h := &Handler{
		session: session,
		cfg:     cfg,
		store:   store,
		mod:     mod,
		proxy:   px,
		log:     log,
		coin:    func() bool { return rand.Intn(2) == 0 },
		now:     time.Now,
		loc:     loc,
	}
	h.routes = map[string]handlerFunc{
		"ping":        h.handlePing,
		"menu":        h.handleMenu,
		"economy":     h.handleEconomy,
		"daily":       h.handleDaily,
		"balance":     h.handleBalance,
		"transfer":    h.handleTransfer,
		"gamble":      h.handleGamble,
		"lb":          h.handleLeaderboard,
		"setbalance":  h.handleSetBalance,
		"ban":         h.handleBan,
		"unban":       h.handleUnban,
		"antilinkon":  h.handleAntilinkOn,
		"antilinkoff": h.handleAntilinkOff,
		"mute":        h.handleMute,
		"unmute":      h.handleUnmute,
		"promote":     h.handlePromote,
		"demote":      h.handleDemote,
		"sticker":     h.handleSticker,
		"ss":          h.handleScreenshot,
		"tts":         h.handleTTS,
		"imgsearch":   h.handleImageSearch,
		"antivo":      h.handleAntiViewOnce,
		"tomp3":       h.handleToMP3,
	}
	return h
}

// Dispatch runs one inbound message through the pipeline: ban check,
// antilink check, prefix check, parse, route. Each stage short-circuits.
func (h *Handler) Dispatch(ctx context.Context, msg transport.Message) {
	if h.mod.IsBanned(msg.SenderID) {
		if err := h.session.Delete(ctx, msg); err != nil {
			h.log.Error("delete banned user message", "chat", msg.ChatID, "err", err)
		}
		return
	}

	if msg.IsGroup && h.mod.AntilinkEnabled(msg.ChatID) && linkPattern.MatchString(msg.Text) {
		if !h.senderIsAdmin(ctx, msg) {
			if err := h.session.Delete(ctx, msg); err != nil {
				h.log.Error("delete link message", "chat", msg.ChatID, "err", err)
			}
			h.reply(ctx, msg, "Links are not allowed here.")
			return
		}
	}

	text := strings.TrimSpace(msg.Text)
	if !strings.HasPrefix(text, h.cfg.CommandPrefix) {
		return // ordinary chat traffic
	}

	name, args := parseCommand(strings.TrimPrefix(text, h.cfg.CommandPrefix))
	handler, ok := h.routes[name]
	if !ok {
		return // unknown commands and plain @mentions stay silent
	}

	if h.mod.Muted(msg.ChatID) && !h.senderIsAdmin(ctx, msg) {
		return
	}

	handler(ctx, msg, args)
}

func (h *Handler) handlePing(ctx context.Context, msg transport.Message, _ []string) {
	h.reply(ctx, msg, "Pong!")
}

func (h *Handler) handleMenu(ctx context.Context, msg transport.Message, _ []string) {
	p := h.cfg.CommandPrefix
	text := "• *------|[ HELLO ]|------* •\n" +
		"________________________\n" +
		"|--| FRIO – Multi-DEV | --|\n" +
		"________________________\n\n" +
		"   [ *MENU* ]   \n" +
		" •-- " + p + "economy\n" +
		" •-- " + p + "lb\n" +
		" •-- " + p + "sticker\n" +
		" •-- " + p + "ss <url>\n" +
		" •-- " + p + "tts <text>\n" +
		" •-- " + p + "imgsearch <query>\n" +
		" •-- " + p + "ping\n" +
		"________________________"

	if h.cfg.MenuImageURL != "" {
		if data, mime, err := h.proxy.Fetch(ctx, h.cfg.MenuImageURL); err == nil {
			opts := transport.MediaOptions{Caption: text}
			if err := h.session.SendMedia(ctx, msg.ChatID, data, mime, opts); err == nil {
				return
			}
		}
	}
	h.reply(ctx, msg, text)
}

func (h *Handler) handleEconomy(ctx context.Context, msg transport.Message, _ []string) {
	p := h.cfg.CommandPrefix
	h.reply(ctx, msg, "💸💰 *ECONOMY MENU* 💰💸\n\n"+
		"💵 | *"+p+"daily*\n"+
		"🏦 | *"+p+"balance*\n"+
		"📊 | *"+p+"lb*\n"+
		"🤝 | *"+p+"transfer*\n"+
		"🎲 | *"+p+"gamble*")
}

func (h *Handler) reply(ctx context.Context, msg transport.Message, text string) {
	if err := h.session.Reply(ctx, msg, text); err != nil {
		h.log.Error("reply", "chat", msg.ChatID, "err", err)
	}
}

func (h *Handler) usage(ctx context.Context, msg transport.Message, form string) {
	h.reply(ctx, msg, "Usage: "+h.cfg.CommandPrefix+form)
}

// requireAdmin gates privileged handlers: group chats only, admin
// senders only. Replies and returns false otherwise; callers mutate
// nothing on false.
func (h *Handler) requireAdmin(ctx context.Context, msg transport.Message) bool {
	if !msg.IsGroup {
		h.reply(ctx, msg, "This command can only be used in groups.")
		return false
	}
	chat, err := h.session.Chat(ctx, msg.ChatID)
	if err != nil {
		h.log.Error("chat lookup", "chat", msg.ChatID, "err", err)
		h.reply(ctx, msg, "Could not verify admin rights, try again.")
		return false
	}
	if !isAdmin(chat, msg.SenderID) {
		h.reply(ctx, msg, "Only group admins can use this command.")
		return false
	}
	return true
}

func (h *Handler) senderIsAdmin(ctx context.Context, msg transport.Message) bool {
	chat, err := h.session.Chat(ctx, msg.ChatID)
	if err != nil {
		h.log.Error("chat lookup", "chat", msg.ChatID, "err", err)
		return false
	}
	return isAdmin(chat, msg.SenderID)
}

func (h *Handler) today() string {
	return h.now().In(h.loc).Format("2006-01-02")
}

// mentionTag renders a user ID the way chats display it: @ plus the bare
// identifier, with any transport domain suffix cut off.
func mentionTag(id string) string {
	if i := strings.IndexByte(id, '@'); i > 0 {
		id = id[:i]
	}
	return "@" + id
}
