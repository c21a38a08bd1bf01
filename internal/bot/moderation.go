package bot

import (
	"fmt"

	"aurora-bot/internal/modules/guildmod"
	"aurora-bot/internal/storage"
	"aurora-bot/internal/utils"

	"github.com/bwmarrin/discordgo"
)

func formatRecord(rec storage.Record) string {
	reason := rec.Reason
	if reason == "" {
		reason = "no reason given"
	}
	out := reason + " (by " + rec.ModeratorName
	if rec.Expires != "" {
		out += ", until " + rec.Expires
	}
	return out + ")"
}

func (b *Bot) handleBotGroup(session *discordgo.Session, interaction *discordgo.InteractionCreate, user *discordgo.User, data discordgo.ApplicationCommandInteractionData) {
	if !b.gate.IsOwner(user) {
		b.respondEmbed(session, interaction, b.embed("Owner only", "Bot-wide moderation is restricted to the bot owner.", b.cfg.Colors.Error), true)
		return
	}

	sub, opts := subcommand(data)
	target := optUser(opts, "user", session)
	reason := optString(opts, "reason")
	rec := storage.NewRecord(user.ID, user.Username, reason, optInt(opts, "days"))

	switch sub {
	case "ban":
		if target == nil {
			return
		}
		if err := b.gate.Ban(target.ID, rec); err != nil {
			b.respondEmbed(session, interaction, b.embed("Global ban", "Saving the ban failed.", b.cfg.Colors.Error), true)
			return
		}
		b.announceModeration("🔨 Global ban", target, rec)
		b.dmEmbed(target.ID, b.embed("You were globally banned",
			"You can no longer use this bot anywhere.\n"+formatRecord(rec), b.cfg.Colors.Error))
		b.respondEmbed(session, interaction, b.embed("Global ban", "**"+target.Username+"** is banned from the bot.", b.cfg.Colors.Success), false)
	case "unban":
		if target == nil {
			return
		}
		removed, err := b.gate.Unban(target.ID)
		if err != nil || !removed {
			b.respondEmbed(session, interaction, b.embed("Global ban", "**"+target.Username+"** was not banned.", b.cfg.Colors.Warning), true)
			return
		}
		b.dmEmbed(target.ID, b.embed("Global ban lifted", "You can use this bot again.", b.cfg.Colors.Success))
		b.respondEmbed(session, interaction, b.embed("Global ban", "**"+target.Username+"** is unbanned.", b.cfg.Colors.Success), false)
	case "mute":
		if target == nil {
			return
		}
		if err := b.gate.Mute(target.ID, rec); err != nil {
			b.respondEmbed(session, interaction, b.embed("Global mute", "Saving the mute failed.", b.cfg.Colors.Error), true)
			return
		}
		b.announceModeration("🔇 Global mute", target, rec)
		b.dmEmbed(target.ID, b.embed("You were globally muted",
			"Your messages will be removed in every server I watch.\n"+formatRecord(rec), b.cfg.Colors.Warning))
		b.respondEmbed(session, interaction, b.embed("Global mute", "**"+target.Username+"** is muted everywhere.", b.cfg.Colors.Success), false)
	case "unmute":
		if target == nil {
			return
		}
		removed, err := b.gate.Unmute(target.ID)
		if err != nil || !removed {
			b.respondEmbed(session, interaction, b.embed("Global mute", "**"+target.Username+"** was not muted.", b.cfg.Colors.Warning), true)
			return
		}
		b.dmEmbed(target.ID, b.embed("Global mute lifted", "You can talk again.", b.cfg.Colors.Success))
		b.respondEmbed(session, interaction, b.embed("Global mute", "**"+target.Username+"** is unmuted.", b.cfg.Colors.Success), false)
	case "warn":
		if target == nil {
			return
		}
		count, err := b.gate.Warn(target.ID, rec)
		if err != nil {
			b.respondEmbed(session, interaction, b.embed("Global warn", "Saving the warn failed.", b.cfg.Colors.Error), true)
			return
		}
		b.announceModeration("⚠️ Global warn", target, rec)
		b.dmEmbed(target.ID, b.embed("You were warned",
			fmt.Sprintf("Warning #%d.\n%s", count, formatRecord(rec)), b.cfg.Colors.Warning))
		b.respondEmbed(session, interaction, b.embed("Global warn",
			fmt.Sprintf("**%s** now has **%d** warning(s).", target.Username, count), b.cfg.Colors.Success), false)
	case "unwarn":
		if target == nil {
			return
		}
		remaining, removed, err := b.gate.Unwarn(target.ID)
		if err != nil || !removed {
			b.respondEmbed(session, interaction, b.embed("Global warn", "**"+target.Username+"** has no warnings.", b.cfg.Colors.Warning), true)
			return
		}
		b.respondEmbed(session, interaction, b.embed("Global warn",
			fmt.Sprintf("Removed the latest warning. **%s** has **%d** left.", target.Username, remaining), b.cfg.Colors.Success), false)
	case "list":
		b.listGlobalRecords(session, interaction, optString(opts, "kind"))
	}
}

// announceModeration mirrors a global moderation action to every guild's
// announcement channel.
func (b *Bot) announceModeration(title string, target *discordgo.User, rec storage.Record) {
	embed := b.embed(title, "**"+target.Username+"** — "+formatRecord(rec), b.cfg.Colors.Warning)
	embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: target.AvatarURL("")}
	b.broadcastAnnouncement(embed)
}

func (b *Bot) listGlobalRecords(session *discordgo.Session, interaction *discordgo.InteractionCreate, kind string) {
	lines := []string{}
	switch kind {
	case "bans":
		records, err := b.gate.Bans()
		if err != nil {
			return
		}
		for userID, rec := range records {
			lines = append(lines, "<@"+userID+"> — "+formatRecord(rec))
		}
	case "mutes":
		records, err := b.gate.Mutes()
		if err != nil {
			return
		}
		for userID, rec := range records {
			lines = append(lines, "<@"+userID+"> — "+formatRecord(rec))
		}
	case "warns":
		records, err := b.gate.Warns()
		if err != nil {
			return
		}
		for userID, recs := range records {
			lines = append(lines, fmt.Sprintf("<@%s> — %d warning(s), latest: %s",
				userID, len(recs), formatRecord(recs[len(recs)-1])))
		}
	}
	if len(lines) == 0 {
		b.respondEmbed(session, interaction, b.embed("Global "+kind, "No records.", b.cfg.Colors.Info), true)
		return
	}
	chunks := utils.ChunkLines(lines, 20)
	b.respondEmbed(session, interaction, b.embed("Global "+kind, chunks[0], b.cfg.Colors.Info), true)
	for _, chunk := range chunks[1:] {
		_, _ = session.ChannelMessageSendEmbed(interaction.ChannelID, b.embed("Global "+kind+" (continued)", chunk, b.cfg.Colors.Info))
	}
}

var serverActions = map[string]guildmod.Action{
	"ban":    guildmod.ActionBan,
	"unban":  guildmod.ActionBan,
	"kick":   guildmod.ActionKick,
	"mute":   guildmod.ActionMute,
	"unmute": guildmod.ActionMute,
	"warn":   guildmod.ActionWarn,
	"unwarn": guildmod.ActionWarn,
	"list":   guildmod.ActionWarn,
}

func (b *Bot) handleServerGroup(session *discordgo.Session, interaction *discordgo.InteractionCreate, user *discordgo.User, data discordgo.ApplicationCommandInteractionData) {
	if !b.requireGuild(session, interaction) {
		return
	}

	sub, opts := subcommand(data)
	action, ok := serverActions[sub]
	if !ok {
		return
	}
	if !guildmod.Authorized(memberPerms(interaction), action) {
		b.respondEmbed(session, interaction, b.embed("No permission", "You lack the permission for this action.", b.cfg.Colors.Error), true)
		return
	}

	guildID := interaction.GuildID
	target := optUser(opts, "user", session)
	reason := optString(opts, "reason")
	rec := storage.NewRecord(user.ID, user.Username, reason, optInt(opts, "days"))

	// Role hierarchy: the moderator must outrank the target.
	if target != nil && sub != "unban" {
		guild, err := session.State.Guild(guildID)
		targetMember := b.memberForUser(guildID, target.ID)
		if err == nil && targetMember != nil && !guildmod.HigherRole(guild, interaction.Member, targetMember) {
			b.respondEmbed(session, interaction, b.embed("No permission", "You can't moderate someone with an equal or higher role.", b.cfg.Colors.Error), true)
			return
		}
	}

	switch sub {
	case "ban":
		if target == nil {
			return
		}
		b.dmEmbed(target.ID, b.embed("Banned from "+b.guildName(guildID), formatRecord(rec), b.cfg.Colors.Error))
		if err := session.GuildBanCreateWithReason(guildID, target.ID, reason, optInt(opts, "delete_days")); err != nil {
			b.respondEmbed(session, interaction, b.embed("Ban", "Banning failed: "+err.Error(), b.cfg.Colors.Error), true)
			return
		}
		b.respondEmbed(session, interaction, b.embed("🔨 Banned", "**"+target.Username+"** — "+formatRecord(rec), b.cfg.Colors.Success), false)
	case "unban":
		userID := optString(opts, "user_id")
		if err := session.GuildBanDelete(guildID, userID); err != nil {
			b.respondEmbed(session, interaction, b.embed("Unban", "Unbanning failed: "+err.Error(), b.cfg.Colors.Error), true)
			return
		}
		b.respondEmbed(session, interaction, b.embed("Unbanned", "<@"+userID+"> can join again.", b.cfg.Colors.Success), false)
	case "kick":
		if target == nil {
			return
		}
		b.dmEmbed(target.ID, b.embed("Kicked from "+b.guildName(guildID), formatRecord(rec), b.cfg.Colors.Warning))
		if err := session.GuildMemberDeleteWithReason(guildID, target.ID, reason); err != nil {
			b.respondEmbed(session, interaction, b.embed("Kick", "Kicking failed: "+err.Error(), b.cfg.Colors.Error), true)
			return
		}
		b.respondEmbed(session, interaction, b.embed("👢 Kicked", "**"+target.Username+"** — "+formatRecord(rec), b.cfg.Colors.Success), false)
	case "mute":
		if target == nil {
			return
		}
		if err := b.guildMod.Mute(guildID, target.ID, rec); err != nil {
			b.respondEmbed(session, interaction, b.embed("Mute", "Saving the mute failed.", b.cfg.Colors.Error), true)
			return
		}
		b.dmEmbed(target.ID, b.embed("Muted in "+b.guildName(guildID),
			"Your messages here will be removed.\n"+formatRecord(rec), b.cfg.Colors.Warning))
		b.respondEmbed(session, interaction, b.embed("🔇 Muted", "**"+target.Username+"** — "+formatRecord(rec), b.cfg.Colors.Success), false)
	case "unmute":
		if target == nil {
			return
		}
		removed, err := b.guildMod.Unmute(guildID, target.ID)
		if err != nil || !removed {
			b.respondEmbed(session, interaction, b.embed("Mute", "**"+target.Username+"** is not muted here.", b.cfg.Colors.Warning), true)
			return
		}
		b.dmEmbed(target.ID, b.embed("Unmuted in "+b.guildName(guildID), "You can talk again.", b.cfg.Colors.Success))
		b.respondEmbed(session, interaction, b.embed("Unmuted", "**"+target.Username+"** can talk again.", b.cfg.Colors.Success), false)
	case "warn":
		if target == nil {
			return
		}
		count, err := b.guildMod.Warn(guildID, target.ID, rec)
		if err != nil {
			b.respondEmbed(session, interaction, b.embed("Warn", "Saving the warn failed.", b.cfg.Colors.Error), true)
			return
		}
		b.dmEmbed(target.ID, b.embed("Warned in "+b.guildName(guildID),
			fmt.Sprintf("Warning #%d.\n%s", count, formatRecord(rec)), b.cfg.Colors.Warning))
		b.respondEmbed(session, interaction, b.embed("⚠️ Warned",
			fmt.Sprintf("**%s** now has **%d** warning(s).", target.Username, count), b.cfg.Colors.Success), false)
	case "unwarn":
		if target == nil {
			return
		}
		remaining, removed, err := b.guildMod.Unwarn(guildID, target.ID)
		if err != nil || !removed {
			b.respondEmbed(session, interaction, b.embed("Warn", "**"+target.Username+"** has no warnings here.", b.cfg.Colors.Warning), true)
			return
		}
		b.respondEmbed(session, interaction, b.embed("Warn",
			fmt.Sprintf("Removed the latest warning. **%s** has **%d** left.", target.Username, remaining), b.cfg.Colors.Success), false)
	case "list":
		b.listGuildRecords(session, interaction, optString(opts, "kind"))
	}
}

func (b *Bot) listGuildRecords(session *discordgo.Session, interaction *discordgo.InteractionCreate, kind string) {
	guildID := interaction.GuildID
	lines := []string{}
	switch kind {
	case "bans":
		bans, err := session.GuildBans(guildID, 100, "", "")
		if err != nil {
			b.respondEmbed(session, interaction, b.embed("Bans", "Fetching bans failed.", b.cfg.Colors.Error), true)
			return
		}
		for _, ban := range bans {
			if ban == nil || ban.User == nil {
				continue
			}
			line := "**" + ban.User.Username + "** (`" + ban.User.ID + "`)"
			if ban.Reason != "" {
				line += " — " + ban.Reason
			}
			lines = append(lines, line)
		}
	case "mutes":
		records, err := b.guildMod.Mutes(guildID)
		if err != nil {
			return
		}
		for userID, rec := range records {
			lines = append(lines, "<@"+userID+"> — "+formatRecord(rec))
		}
	case "warns":
		records, err := b.guildMod.Warns(guildID)
		if err != nil {
			return
		}
		for userID, recs := range records {
			lines = append(lines, fmt.Sprintf("<@%s> — %d warning(s), latest: %s",
				userID, len(recs), formatRecord(recs[len(recs)-1])))
		}
	}
	if len(lines) == 0 {
		b.respondEmbed(session, interaction, b.embed("Server "+kind, "No records.", b.cfg.Colors.Info), true)
		return
	}
	chunks := utils.ChunkLines(lines, 20)
	b.respondEmbed(session, interaction, b.embed("Server "+kind, chunks[0], b.cfg.Colors.Info), true)
	for _, chunk := range chunks[1:] {
		_, _ = session.ChannelMessageSendEmbed(interaction.ChannelID, b.embed("Server "+kind+" (continued)", chunk, b.cfg.Colors.Info))
	}
}
