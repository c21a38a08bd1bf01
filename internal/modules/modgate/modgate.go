// Package modgate implements bot-wide moderation: global bans, mutes, and
// warns that follow a user across every guild, plus the owner check guarding
// the commands that manage them. Globally banned or muted users are blocked
// before any command handler runs.
package modgate

import (
	"strings"

	"aurora-bot/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type Kind string

const (
	KindBan  Kind = "ban"
	KindMute Kind = "mute"
)

type Verdict struct {
	Kind   Kind
	Record storage.Record
}

type Module struct {
	store  *storage.Store
	logger *zap.Logger
	owner  string
}

// New builds the gate. owner identifies the bot owner as a user ID, a
// username, or a username#discriminator pair.
func New(store *storage.Store, logger *zap.Logger, owner string) *Module {
	return &Module{store: store, logger: logger, owner: owner}
}

func (m *Module) IsOwner(user *discordgo.User) bool {
	if user == nil || m.owner == "" {
		return false
	}
	if m.owner == user.ID {
		return true
	}
	if name, disc, ok := strings.Cut(m.owner, "#"); ok {
		return strings.EqualFold(name, user.Username) && disc == user.Discriminator
	}
	return strings.EqualFold(m.owner, user.Username)
}

// Check reports whether the user is globally banned or muted. Expired
// records have already been pruned by the store.
func (m *Module) Check(userID string) (Verdict, bool, error) {
	bans, err := m.store.GlobalBans()
	if err != nil {
		return Verdict{}, false, err
	}
	if rec, ok := bans[userID]; ok {
		return Verdict{Kind: KindBan, Record: rec}, true, nil
	}
	mutes, err := m.store.GlobalMutes()
	if err != nil {
		return Verdict{}, false, err
	}
	if rec, ok := mutes[userID]; ok {
		return Verdict{Kind: KindMute, Record: rec}, true, nil
	}
	return Verdict{}, false, nil
}

func (m *Module) Ban(userID string, rec storage.Record) error {
	m.logger.Info("global ban", zap.String("user", userID), zap.String("reason", rec.Reason))
	return m.store.SetGlobalBan(userID, rec)
}

func (m *Module) Unban(userID string) (bool, error) {
	return m.store.RemoveGlobalBan(userID)
}

func (m *Module) Mute(userID string, rec storage.Record) error {
	m.logger.Info("global mute", zap.String("user", userID), zap.String("reason", rec.Reason))
	return m.store.SetGlobalMute(userID, rec)
}

func (m *Module) Unmute(userID string) (bool, error) {
	return m.store.RemoveGlobalMute(userID)
}

func (m *Module) Warn(userID string, rec storage.Record) (int, error) {
	m.logger.Info("global warn", zap.String("user", userID), zap.String("reason", rec.Reason))
	return m.store.AddGlobalWarn(userID, rec)
}

func (m *Module) Unwarn(userID string) (int, bool, error) {
	return m.store.RemoveGlobalWarn(userID)
}

func (m *Module) Bans() (map[string]storage.Record, error) {
	return m.store.GlobalBans()
}

func (m *Module) Mutes() (map[string]storage.Record, error) {
	return m.store.GlobalMutes()
}

func (m *Module) Warns() (map[string][]storage.Record, error) {
	return m.store.GlobalWarns()
}
