// Package bridge mirrors human messages between registered channels across
// guilds. Each registered channel owns a webhook; forwarded messages carry
// the author's display name prefixed with the source guild.
package bridge

import (
	"fmt"
	"strings"

	"aurora-bot/internal/config"
	"aurora-bot/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const replyPreviewLimit = 100

type Sender interface {
	Send(url string, params *discordgo.WebhookParams) error
}

// Message is one inbound message to forward, already reduced to what the
// webhooks need.
type Message struct {
	ChannelID      string
	GuildName      string
	DisplayName    string
	AvatarURL      string
	Content        string
	AttachmentURLs []string
	Reply          *Reply
}

// Reply summarizes the message being replied to. Deleted marks a reply whose
// target no longer exists.
type Reply struct {
	AuthorName string
	AvatarURL  string
	Content    string
	Deleted    bool
}

type Module struct {
	store  *storage.Store
	sender Sender
	logger *zap.Logger
	colors config.EmbedColors
}

func New(store *storage.Store, sender Sender, logger *zap.Logger, colors config.EmbedColors) *Module {
	return &Module{store: store, sender: sender, logger: logger, colors: colors}
}

func (m *Module) Channels() (map[string]string, error) {
	return m.store.BridgeWebhooks()
}

func (m *Module) SetChannel(channelID, webhookURL string) error {
	return m.store.SetBridgeWebhook(channelID, webhookURL)
}

func (m *Module) RemoveChannel(channelID string) (string, bool, error) {
	webhooks, err := m.store.BridgeWebhooks()
	if err != nil {
		return "", false, err
	}
	url, ok := webhooks[channelID]
	if !ok {
		return "", false, nil
	}
	removed, err := m.store.RemoveBridgeWebhook(channelID)
	return url, removed, err
}

// HandleMessage forwards msg to every other bridge channel. It reports how
// many webhooks received it and whether the source channel is bridged at all.
func (m *Module) HandleMessage(msg Message) (int, bool) {
	webhooks, err := m.store.BridgeWebhooks()
	if err != nil {
		m.logger.Warn("bridge webhooks unavailable", zap.Error(err))
		return 0, false
	}
	if _, ok := webhooks[msg.ChannelID]; !ok {
		return 0, false
	}
	// A single registration has nowhere to forward to.
	if len(webhooks) <= 1 {
		return 0, true
	}

	content := msg.Content
	if len(msg.AttachmentURLs) > 0 {
		content = strings.TrimSpace(content + "\n" + strings.Join(msg.AttachmentURLs, "\n"))
	}
	embed := m.replyEmbed(msg.Reply)
	if content == "" && embed == nil {
		return 0, true
	}

	params := &discordgo.WebhookParams{
		Username:  fmt.Sprintf("[%s] %s", msg.GuildName, msg.DisplayName),
		AvatarURL: msg.AvatarURL,
		Content:   content,
	}
	if embed != nil {
		params.Embeds = []*discordgo.MessageEmbed{embed}
	}

	forwarded := 0
	for channelID, url := range webhooks {
		if channelID == msg.ChannelID {
			continue
		}
		if err := m.sender.Send(url, params); err != nil {
			m.logger.Warn("bridge forward failed", zap.String("channel", channelID), zap.Error(err))
			continue
		}
		forwarded++
	}
	return forwarded, true
}

func (m *Module) replyEmbed(reply *Reply) *discordgo.MessageEmbed {
	if reply == nil {
		return nil
	}
	if reply.Deleted {
		return &discordgo.MessageEmbed{
			Description: "> *[original message deleted]*",
			Color:       m.colors.Info,
			Author:      &discordgo.MessageEmbedAuthor{Name: "Replying to a deleted message"},
		}
	}
	preview := reply.Content
	if preview == "" {
		preview = "*[no text content]*"
	}
	// Truncate by characters, not bytes, so multibyte content survives.
	if runes := []rune(preview); len(runes) > replyPreviewLimit {
		preview = string(runes[:replyPreviewLimit]) + "..."
	}
	return &discordgo.MessageEmbed{
		Description: "> " + preview,
		Color:       m.colors.Info,
		Author: &discordgo.MessageEmbedAuthor{
			Name:    "Replying to " + reply.AuthorName,
			IconURL: reply.AvatarURL,
		},
	}
}
