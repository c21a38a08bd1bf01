// Package relay runs the cross-guild number chain game. Registered channels
// each hold a webhook; the shared counter lives on disk and every attempt is
// judged under a single lock with the state reloaded inside the critical
// section.
package relay

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"aurora-bot/internal/config"
	"aurora-bot/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type Sender interface {
	Send(url string, params *discordgo.WebhookParams) error
}

type Outcome string

const (
	// OutcomeAdvanced means the expected number was posted and the counter moved on.
	OutcomeAdvanced Outcome = "advanced"
	// OutcomeRepeat means the same user posted twice in a row; state is unchanged.
	OutcomeRepeat Outcome = "repeat"
	// OutcomeReset means a wrong number arrived and the game restarted at 1.
	OutcomeReset Outcome = "reset"
)

// Source describes where an attempt or reset came from.
type Source struct {
	ChannelID   string
	GuildName   string
	UserID      string
	DisplayName string
	AvatarURL   string
}

type Result struct {
	Outcome  Outcome
	Expected int
	Got      int
	Next     int
}

type Module struct {
	mu     sync.Mutex
	store  *storage.Store
	sender Sender
	logger *zap.Logger
	colors config.EmbedColors
}

func New(store *storage.Store, sender Sender, logger *zap.Logger, colors config.EmbedColors) *Module {
	return &Module{store: store, sender: sender, logger: logger, colors: colors}
}

func (m *Module) Channels() (map[string]string, error) {
	return m.store.RelayWebhooks()
}

func (m *Module) SetChannel(channelID, webhookURL string) error {
	return m.store.SetRelayWebhook(channelID, webhookURL)
}

func (m *Module) RemoveChannel(channelID string) (string, bool, error) {
	webhooks, err := m.store.RelayWebhooks()
	if err != nil {
		return "", false, err
	}
	url, ok := webhooks[channelID]
	if !ok {
		return "", false, nil
	}
	removed, err := m.store.RemoveRelayWebhook(channelID)
	return url, removed, err
}

// HandleMessage judges one attempt. It reports false when the message is not
// part of the game (unregistered channel or non-numeric content); state is
// only touched for real attempts.
func (m *Module) HandleMessage(src Source, content string) (Result, bool) {
	webhooks, err := m.store.RelayWebhooks()
	if err != nil {
		m.logger.Warn("relay webhooks unavailable", zap.Error(err))
		return Result{}, false
	}
	if _, ok := webhooks[src.ChannelID]; !ok {
		return Result{}, false
	}
	got, err := strconv.Atoi(strings.TrimSpace(content))
	if err != nil {
		return Result{}, false
	}

	m.mu.Lock()
	state := m.store.RelayState()
	expected := state.CurrentNumber

	if src.UserID != "" && src.UserID == state.LastUserID {
		m.mu.Unlock()
		return Result{Outcome: OutcomeRepeat, Expected: expected, Got: got, Next: expected}, true
	}

	var result Result
	if got == expected {
		state.CurrentNumber++
		state.LastUserID = src.UserID
		if err := m.store.SaveRelayState(state); err != nil {
			m.logger.Error("relay state save failed", zap.Error(err))
		}
		result = Result{Outcome: OutcomeAdvanced, Expected: expected, Got: got, Next: state.CurrentNumber}
	} else {
		state = storage.DefaultRelayState()
		if err := m.store.SaveRelayState(state); err != nil {
			m.logger.Error("relay state save failed", zap.Error(err))
		}
		result = Result{Outcome: OutcomeReset, Expected: expected, Got: got, Next: 1}
	}
	m.mu.Unlock()

	switch result.Outcome {
	case OutcomeAdvanced:
		m.broadcast(src, m.successEmbed(src, result), false)
		m.logger.Info("relay advanced",
			zap.String("user", src.UserID),
			zap.Int("number", result.Expected),
			zap.Int("next", result.Next))
	case OutcomeReset:
		m.broadcast(src, m.resetEmbed(src, result), false)
		m.logger.Info("relay reset",
			zap.String("user", src.UserID),
			zap.Int("expected", result.Expected),
			zap.Int("got", result.Got))
	}
	return result, true
}

// Reset restarts the game at 1 and announces it to every relay channel,
// including the one the reset came from.
func (m *Module) Reset(src Source) error {
	m.mu.Lock()
	state := storage.DefaultRelayState()
	err := m.store.SaveRelayState(state)
	m.mu.Unlock()
	if err != nil {
		return err
	}
	m.broadcast(src, m.manualResetEmbed(src), true)
	return nil
}

// broadcast fans the embed out to every relay webhook. The source channel is
// skipped unless includeSource is set, since it already saw the message.
func (m *Module) broadcast(src Source, embed *discordgo.MessageEmbed, includeSource bool) {
	webhooks, err := m.store.RelayWebhooks()
	if err != nil {
		m.logger.Warn("relay broadcast skipped", zap.Error(err))
		return
	}
	params := &discordgo.WebhookParams{
		Username: "Number Relay",
		Embeds:   []*discordgo.MessageEmbed{embed},
	}
	for channelID, url := range webhooks {
		if channelID == src.ChannelID && !includeSource {
			continue
		}
		if err := m.sender.Send(url, params); err != nil {
			m.logger.Warn("relay broadcast failed", zap.String("channel", channelID), zap.Error(err))
		}
	}
}

func (m *Module) successEmbed(src Source, result Result) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "🎉 Chain continued!",
		Description: fmt.Sprintf("**%s** in **[%s]** counted **%d**!\nNext up: **%d**.",
			src.DisplayName, src.GuildName, result.Expected, result.Next),
		Color:     m.colors.Success,
		Footer:    m.footer(src),
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func (m *Module) resetEmbed(src Source, result Result) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "🚨 Chain broken! Game reset!",
		Description: fmt.Sprintf("**%s** in **[%s]** sent **%d** but the expected number was **%d**.\nThe count restarts at **1**!",
			src.DisplayName, src.GuildName, result.Got, result.Expected),
		Color:     m.colors.Error,
		Footer:    m.footer(src),
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func (m *Module) manualResetEmbed(src Source) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "💥 Game manually reset!",
		Description: fmt.Sprintf("An admin in **[%s]** reset the game.\nThe count restarts at **1**!",
			src.GuildName),
		Color:     m.colors.Warning,
		Footer:    m.footer(src),
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func (m *Module) footer(src Source) *discordgo.MessageEmbedFooter {
	return &discordgo.MessageEmbedFooter{
		Text:    fmt.Sprintf("From %s | %s", src.GuildName, src.DisplayName),
		IconURL: src.AvatarURL,
	}
}
