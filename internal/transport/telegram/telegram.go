// Package telegram adapts the Telegram Bot API to the transport
// capability interface.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Friomademyday/FRIO-BOT-v2/internal/domain"
	"github.com/Friomademyday/FRIO-BOT-v2/internal/transport"
)

type Session struct {
	api  *tgbotapi.BotAPI
	http *http.Client
}

func New(api *tgbotapi.BotAPI) *Session {
	return &Session{api: api, http: &http.Client{Timeout: 30 * time.Second}}
}

// FromUpdate converts a Telegram update into a transport message. The
// second return value is false for updates that carry no message.
func (s *Session) FromUpdate(upd tgbotapi.Update) (transport.Message, bool) {
	m := upd.Message
	if m == nil {
		return transport.Message{}, false
	}
	msg := transport.Message{
		ID:       strconv.Itoa(m.MessageID),
		ChatID:   strconv.FormatInt(m.Chat.ID, 10),
		SenderID: strconv.FormatInt(m.From.ID, 10),
		Text:     m.Text,
		IsGroup:  m.Chat.IsGroup() || m.Chat.IsSuperGroup(),
	}
	if msg.Text == "" {
		msg.Text = m.Caption
	}
	if ref := mediaRef(m); ref != "" {
		msg.HasMedia = true
		msg.MediaRef = ref
	}
	if q := m.ReplyToMessage; q != nil {
		quoted := &transport.Quoted{
			IsVoice: q.Voice != nil || q.Audio != nil,
		}
		if ref := mediaRef(q); ref != "" {
			quoted.HasMedia = true
			quoted.MediaRef = ref
		}
		// Telegram has no view-once messages; self-destruct photos are
		// not delivered to bots at all.
		msg.Quoted = quoted
	}
	return msg, true
}

func mediaRef(m *tgbotapi.Message) string {
	switch {
	case len(m.Photo) > 0:
		return m.Photo[len(m.Photo)-1].FileID
	case m.Sticker != nil:
		return m.Sticker.FileID
	case m.Voice != nil:
		return m.Voice.FileID
	case m.Audio != nil:
		return m.Audio.FileID
	case m.Video != nil:
		return m.Video.FileID
	case m.Document != nil:
		return m.Document.FileID
	}
	return ""
}

func (s *Session) Reply(ctx context.Context, msg transport.Message, text string) error {
	chatID, err := strconv.ParseInt(msg.ChatID, 10, 64)
	if err != nil {
		return err
	}
	out := tgbotapi.NewMessage(chatID, text)
	if id, err := strconv.Atoi(msg.ID); err == nil {
		out.ReplyToMessageID = id
	}
	_, err = s.api.Send(out)
	return err
}

func (s *Session) SendMedia(ctx context.Context, chat string, data []byte, mimeType string, opts transport.MediaOptions) error {
	chatID, err := strconv.ParseInt(chat, 10, 64)
	if err != nil {
		return err
	}
	name := opts.Filename
	if name == "" {
		name = "media"
	}
	file := tgbotapi.FileBytes{Name: name, Bytes: data}

	var c tgbotapi.Chattable
	switch {
	case opts.AsSticker:
		c = tgbotapi.NewSticker(chatID, file)
	case strings.HasPrefix(mimeType, "image/"):
		photo := tgbotapi.NewPhoto(chatID, file)
		photo.Caption = opts.Caption
		c = photo
	case strings.HasPrefix(mimeType, "audio/"):
		audio := tgbotapi.NewAudio(chatID, file)
		audio.Caption = opts.Caption
		c = audio
	default:
		doc := tgbotapi.NewDocument(chatID, file)
		doc.Caption = opts.Caption
		c = doc
	}
	_, err = s.api.Send(c)
	return err
}

func (s *Session) Delete(ctx context.Context, msg transport.Message) error {
	chatID, err := strconv.ParseInt(msg.ChatID, 10, 64)
	if err != nil {
		return err
	}
	msgID, err := strconv.Atoi(msg.ID)
	if err != nil {
		return err
	}
	_, err = s.api.Request(tgbotapi.NewDeleteMessage(chatID, msgID))
	return err
}

// Chat resolves group metadata. The Bot API only enumerates
// administrators, which is all the authorization check needs; regular
// members simply do not appear in Participants.
func (s *Session) Chat(ctx context.Context, chat string) (domain.ChatContext, error) {
	chatID, err := strconv.ParseInt(chat, 10, 64)
	if err != nil {
		return domain.ChatContext{}, err
	}
	info, err := s.api.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
	})
	if err != nil {
		return domain.ChatContext{}, err
	}

	cc := domain.ChatContext{
		ChatID:  chat,
		IsGroup: info.IsGroup() || info.IsSuperGroup(),
	}
	if !cc.IsGroup {
		return cc, nil
	}

	admins, err := s.api.GetChatAdministrators(tgbotapi.ChatAdministratorsConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
	})
	if err != nil {
		return domain.ChatContext{}, err
	}
	for _, a := range admins {
		cc.Participants = append(cc.Participants, domain.Participant{
			ID:           strconv.FormatInt(a.User.ID, 10),
			IsAdmin:      a.Status == "administrator",
			IsSuperAdmin: a.Status == "creator",
		})
	}
	return cc, nil
}

func (s *Session) DownloadMedia(ctx context.Context, msg transport.Message) ([]byte, string, error) {
	if msg.MediaRef == "" {
		return nil, "", errors.New("telegram: message has no media")
	}
	return s.download(ctx, msg.MediaRef)
}

func (s *Session) DownloadQuotedMedia(ctx context.Context, msg transport.Message) ([]byte, string, error) {
	if msg.Quoted == nil || msg.Quoted.MediaRef == "" {
		return nil, "", errors.New("telegram: quoted message has no media")
	}
	return s.download(ctx, msg.Quoted.MediaRef)
}

func (s *Session) download(ctx context.Context, fileID string) ([]byte, string, error) {
	url, err := s.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("telegram: file download: %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func (s *Session) Promote(ctx context.Context, chat string, userIDs []string) error {
	return s.setPromoted(chat, userIDs, true)
}

func (s *Session) Demote(ctx context.Context, chat string, userIDs []string) error {
	return s.setPromoted(chat, userIDs, false)
}

func (s *Session) setPromoted(chat string, userIDs []string, promoted bool) error {
	chatID, err := strconv.ParseInt(chat, 10, 64)
	if err != nil {
		return err
	}
	for _, raw := range userIDs {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("telegram: bad user id %q", raw)
		}
		cfg := tgbotapi.PromoteChatMemberConfig{
			ChatMemberConfig: tgbotapi.ChatMemberConfig{ChatID: chatID, UserID: userID},
			CanDeleteMessages:  promoted,
			CanRestrictMembers: promoted,
			CanInviteUsers:     promoted,
			CanPinMessages:     promoted,
		}
		if _, err := s.api.Request(cfg); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) SetChatLocked(ctx context.Context, chat string, locked bool) error {
	chatID, err := strconv.ParseInt(chat, 10, 64)
	if err != nil {
		return err
	}
	perms := &tgbotapi.ChatPermissions{
		CanSendMessages:      !locked,
		CanSendMediaMessages: !locked,
		CanSendOtherMessages: !locked,
	}
	_, err = s.api.Request(tgbotapi.SetChatPermissionsConfig{
		ChatConfig:  tgbotapi.ChatConfig{ChatID: chatID},
		Permissions: perms,
	})
	return err
}

// NormalizeMention strips the leading @ so "@123456" and "123456" address
// the same account.
func (s *Session) NormalizeMention(raw string) string {
	return strings.TrimPrefix(strings.TrimSpace(raw), "@")
}
