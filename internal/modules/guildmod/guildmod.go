// Package guildmod implements per-guild moderation: mutes enforced by
// deleting messages, warn histories, and the permission checks gating the
// moderation commands.
package guildmod

import (
	"aurora-bot/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type Action string

const (
	ActionBan  Action = "ban"
	ActionKick Action = "kick"
	ActionMute Action = "mute"
	ActionWarn Action = "warn"
)

// requiredPerms lists, per action, the permission bits any one of which
// authorizes a member to use the matching command.
var requiredPerms = map[Action][]int64{
	ActionBan:  {discordgo.PermissionBanMembers},
	ActionKick: {discordgo.PermissionKickMembers},
	ActionMute: {discordgo.PermissionManageMessages, discordgo.PermissionModerateMembers, discordgo.PermissionManageRoles},
	ActionWarn: {discordgo.PermissionManageMessages, discordgo.PermissionKickMembers, discordgo.PermissionBanMembers},
}

// Authorized reports whether perms (a member's resolved permission set)
// allows the given action. Administrator always passes.
func Authorized(perms int64, action Action) bool {
	if perms&discordgo.PermissionAdministrator != 0 {
		return true
	}
	for _, bit := range requiredPerms[action] {
		if perms&bit != 0 {
			return true
		}
	}
	return false
}

// HigherRole reports whether the actor outranks the target by role position.
// Position ties go to neither side.
func HigherRole(guild *discordgo.Guild, actor, target *discordgo.Member) bool {
	if guild == nil || actor == nil || target == nil {
		return false
	}
	if actor.User != nil && guild.OwnerID == actor.User.ID {
		return true
	}
	if target.User != nil && guild.OwnerID == target.User.ID {
		return false
	}
	return topPosition(guild, actor) > topPosition(guild, target)
}

func topPosition(guild *discordgo.Guild, member *discordgo.Member) int {
	best := -1
	for _, id := range member.Roles {
		for _, role := range guild.Roles {
			if role.ID == id && role.Position > best {
				best = role.Position
			}
		}
	}
	return best
}

type Module struct {
	store  *storage.Store
	logger *zap.Logger
}

func New(store *storage.Store, logger *zap.Logger) *Module {
	return &Module{store: store, logger: logger}
}

func (m *Module) Mute(guildID, userID string, rec storage.Record) error {
	m.logger.Info("guild mute",
		zap.String("guild", guildID), zap.String("user", userID), zap.String("reason", rec.Reason))
	return m.store.SetGuildMute(guildID, userID, rec)
}

func (m *Module) Unmute(guildID, userID string) (bool, error) {
	return m.store.RemoveGuildMute(guildID, userID)
}

// IsMuted reports whether the user is muted in the guild. Expired mutes
// have already been pruned by the store.
func (m *Module) IsMuted(guildID, userID string) (storage.Record, bool, error) {
	mutes, err := m.store.GuildMutes()
	if err != nil {
		return storage.Record{}, false, err
	}
	rec, ok := mutes[guildID][userID]
	return rec, ok, nil
}

func (m *Module) Warn(guildID, userID string, rec storage.Record) (int, error) {
	m.logger.Info("guild warn",
		zap.String("guild", guildID), zap.String("user", userID), zap.String("reason", rec.Reason))
	return m.store.AddGuildWarn(guildID, userID, rec)
}

func (m *Module) Unwarn(guildID, userID string) (int, bool, error) {
	return m.store.RemoveGuildWarn(guildID, userID)
}

func (m *Module) Mutes(guildID string) (map[string]storage.Record, error) {
	all, err := m.store.GuildMutes()
	if err != nil {
		return nil, err
	}
	return all[guildID], nil
}

func (m *Module) Warns(guildID string) (map[string][]storage.Record, error) {
	all, err := m.store.GuildWarns()
	if err != nil {
		return nil, err
	}
	return all[guildID], nil
}
