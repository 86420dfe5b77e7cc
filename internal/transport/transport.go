// Package transport defines the narrow chat-client surface the bot core
// depends on. The core never imports a concrete messaging library; any
// client that can satisfy Session can carry the bot.
package transport

import (
	"context"

	"github.com/Friomademyday/FRIO-BOT-v2/internal/domain"
)

// Message is one inbound chat message event.
type Message struct {
	ID       string
	ChatID   string
	SenderID string
	Text     string
	IsGroup  bool
	HasMedia bool
	// MediaRef is an opaque transport handle for the attached media,
	// meaningful only to the Session that produced the message.
	MediaRef string
	Quoted   *Quoted
}

// Quoted describes the message an inbound message replies to, when the
// command needs its media (view-once recovery, voice-note conversion).
type Quoted struct {
	HasMedia   bool
	IsViewOnce bool
	IsVoice    bool
	MediaRef   string
}

// MediaOptions control how outgoing media is rendered.
type MediaOptions struct {
	AsSticker     bool
	StickerName   string
	StickerAuthor string
	Caption       string
	Filename      string
}

// Session is the capability interface to the chat client.
type Session interface {
	Reply(ctx context.Context, msg Message, text string) error
	SendMedia(ctx context.Context, chatID string, data []byte, mimeType string, opts MediaOptions) error
	Delete(ctx context.Context, msg Message) error

	// Chat resolves the chat a message arrived in, including group
	// participants and their admin roles.
	Chat(ctx context.Context, chatID string) (domain.ChatContext, error)

	DownloadMedia(ctx context.Context, msg Message) (data []byte, mimeType string, err error)
	DownloadQuotedMedia(ctx context.Context, msg Message) (data []byte, mimeType string, err error)

	// Group management, delegated wholesale to the chat platform.
	Promote(ctx context.Context, chatID string, userIDs []string) error
	Demote(ctx context.Context, chatID string, userIDs []string) error
	SetChatLocked(ctx context.Context, chatID string, locked bool) error

	// NormalizeMention turns a user-typed mention into the canonical
	// addressable ID for this transport.
	NormalizeMention(raw string) string
}
