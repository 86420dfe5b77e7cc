package bot

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/Friomademyday/FRIO-BOT-v2/internal/transport"
)

// Proxy-backed and media commands. These never touch ledger or
// moderation state; a failing service costs one reply and nothing else.

func (h *Handler) handleSticker(ctx context.Context, msg transport.Message, _ []string) {
	if !msg.HasMedia {
		h.reply(ctx, msg, "Attach an image and caption it "+h.cfg.CommandPrefix+"sticker.")
		return
	}
	data, mime, err := h.session.DownloadMedia(ctx, msg)
	if err != nil {
		h.log.Error("sticker download", "chat", msg.ChatID, "err", err)
		h.reply(ctx, msg, "Could not read that media.")
		return
	}
	opts := transport.MediaOptions{AsSticker: true, StickerName: "BOT", StickerAuthor: "FRIO"}
	if err := h.session.SendMedia(ctx, msg.ChatID, data, mime, opts); err != nil {
		h.log.Error("sticker send", "chat", msg.ChatID, "err", err)
		h.reply(ctx, msg, "Could not make a sticker from that.")
	}
}

func (h *Handler) handleScreenshot(ctx context.Context, msg transport.Message, args []string) {
	if len(args) != 1 {
		h.usage(ctx, msg, "ss <url>")
		return
	}
	target, err := url.Parse(args[0])
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") {
		h.reply(ctx, msg, "Give me a full http(s) URL.")
		return
	}

	data, mime, err := h.proxy.Screenshot(ctx, target.String())
	if err != nil {
		h.proxyFailure(ctx, msg, "ss", err)
		return
	}
	opts := transport.MediaOptions{Caption: target.String(), Filename: "screenshot.png"}
	if err := h.session.SendMedia(ctx, msg.ChatID, data, mime, opts); err != nil {
		h.log.Error("screenshot send", "chat", msg.ChatID, "err", err)
	}
}

func (h *Handler) handleTTS(ctx context.Context, msg transport.Message, args []string) {
	text := strings.Join(args, " ")
	if text == "" {
		h.usage(ctx, msg, "tts <text>")
		return
	}

	data, mime, err := h.proxy.TTS(ctx, text)
	if err != nil {
		h.proxyFailure(ctx, msg, "tts", err)
		return
	}
	if err := h.session.SendMedia(ctx, msg.ChatID, data, mime, transport.MediaOptions{Filename: "tts.mp3"}); err != nil {
		h.log.Error("tts send", "chat", msg.ChatID, "err", err)
	}
}

func (h *Handler) handleImageSearch(ctx context.Context, msg transport.Message, args []string) {
	count := 1
	if n := len(args); n > 1 {
		if c, err := strconv.Atoi(args[n-1]); err == nil {
			if c < 1 {
				c = 1
			}
			if c > 5 {
				c = 5
			}
			count = c
			args = args[:n-1]
		}
	}
	query := strings.Join(args, " ")
	if query == "" {
		h.usage(ctx, msg, "imgsearch <query> [count]")
		return
	}

	images, err := h.proxy.ImageSearch(ctx, query, count)
	if err != nil {
		h.proxyFailure(ctx, msg, "imgsearch", err)
		return
	}
	for _, img := range images {
		if err := h.session.SendMedia(ctx, msg.ChatID, img.Data, img.MimeType, transport.MediaOptions{}); err != nil {
			h.log.Error("imgsearch send", "chat", msg.ChatID, "err", err)
			return
		}
	}
}

func (h *Handler) handleAntiViewOnce(ctx context.Context, msg transport.Message, _ []string) {
	q := msg.Quoted
	if q == nil || !q.IsViewOnce || !q.HasMedia {
		h.reply(ctx, msg, "Reply to a view-once message with "+h.cfg.CommandPrefix+"antivo.")
		return
	}
	data, mime, err := h.session.DownloadQuotedMedia(ctx, msg)
	if err != nil {
		h.log.Error("antivo download", "chat", msg.ChatID, "err", err)
		h.reply(ctx, msg, "Could not recover that media.")
		return
	}
	if err := h.session.SendMedia(ctx, msg.ChatID, data, mime, transport.MediaOptions{Caption: "Recovered view-once media."}); err != nil {
		h.log.Error("antivo send", "chat", msg.ChatID, "err", err)
	}
}

func (h *Handler) handleToMP3(ctx context.Context, msg transport.Message, _ []string) {
	q := msg.Quoted
	if q == nil || !q.IsVoice || !q.HasMedia {
		h.reply(ctx, msg, "Reply to a voice message with "+h.cfg.CommandPrefix+"tomp3.")
		return
	}
	data, mime, err := h.session.DownloadQuotedMedia(ctx, msg)
	if err != nil {
		h.log.Error("tomp3 download", "chat", msg.ChatID, "err", err)
		h.reply(ctx, msg, "Could not read that voice message.")
		return
	}

	mp3, err := h.proxy.ToMP3(ctx, data, mime)
	if err != nil {
		h.proxyFailure(ctx, msg, "tomp3", err)
		return
	}
	if err := h.session.SendMedia(ctx, msg.ChatID, mp3, "audio/mpeg", transport.MediaOptions{Filename: "voice.mp3"}); err != nil {
		h.log.Error("tomp3 send", "chat", msg.ChatID, "err", err)
	}
}

func (h *Handler) proxyFailure(ctx context.Context, msg transport.Message, cmd string, err error) {
	h.log.Error("proxy", "command", cmd, "err", err)
	h.reply(ctx, msg, "That service is unavailable right now, try again later.")
}
