package bot

import (
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"aurora-bot/internal/modules/fun"
	"aurora-bot/internal/modules/game2048"
	"aurora-bot/internal/modules/polls"
	"aurora-bot/internal/modules/relay"
	"aurora-bot/internal/storage"
	"aurora-bot/internal/usage"
	"aurora-bot/internal/utils"
	"aurora-bot/internal/webhook"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func (b *Bot) onInteractionCreate(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	switch interaction.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(session, interaction)
	case discordgo.InteractionMessageComponent:
		b.handleComponent(session, interaction)
	}
}

func (b *Bot) handleCommand(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	user := interactionUser(interaction)
	if user == nil {
		return
	}

	// Globally banned or muted users don't get to run anything.
	if verdict, hit, err := b.gate.Check(user.ID); err == nil && hit {
		reason := verdict.Record.Reason
		if reason == "" {
			reason = "no reason given"
		}
		b.respondEmbed(session, interaction, b.embed(
			"Access denied",
			"You are globally "+string(verdict.Kind)+"ned from using this bot.\nReason: "+reason,
			b.cfg.Colors.Error), true)
		return
	}

	data := interaction.ApplicationCommandData()
	b.metrics.CommandsTotal.WithLabelValues(data.Name).Inc()
	b.logUsage(interaction, user, data)

	switch data.Name {
	case "bot":
		b.handleBotGroup(session, interaction, user, data)
	case "server":
		b.handleServerGroup(session, interaction, user, data)
	case "bridge":
		b.handleBridge(session, interaction, data)
	case "relay":
		b.handleRelay(session, interaction, user, data)
	case "poll":
		b.handlePoll(session, interaction, user, data)
	case "game":
		b.handleGame(session, interaction, user, data)
	case "tools":
		b.handleTools(session, interaction, user, data)
	case "fun":
		b.handleFun(session, interaction, user, data)
	case "general":
		b.handleGeneral(session, interaction, user, data)
	case "dev":
		b.handleDev(session, interaction, user, data)
	case "help":
		b.handleHelp(session, interaction)
	}
}

func (b *Bot) logUsage(interaction *discordgo.InteractionCreate, user *discordgo.User, data discordgo.ApplicationCommandInteractionData) {
	if b.usage == nil {
		return
	}
	rec := usage.Record{
		UserID:   user.ID,
		UserName: user.Username,
		Command:  data.Name,
		Options:  map[string]string{},
	}
	if interaction.GuildID != "" {
		rec.GuildID = interaction.GuildID
		rec.GuildName = b.guildName(interaction.GuildID)
	}
	if interaction.ChannelID != "" {
		rec.ChannelID = interaction.ChannelID
		if channel, err := b.session.State.Channel(interaction.ChannelID); err == nil && channel != nil {
			rec.ChannelName = channel.Name
		}
	}
	flattenOptions("", data.Options, rec.Options)
	b.usage.Log(rec)
}

func flattenOptions(prefix string, options []*discordgo.ApplicationCommandInteractionDataOption, out map[string]string) {
	for _, opt := range options {
		if opt == nil {
			continue
		}
		name := opt.Name
		if prefix != "" {
			name = prefix + "." + name
		}
		switch opt.Type {
		case discordgo.ApplicationCommandOptionSubCommand, discordgo.ApplicationCommandOptionSubCommandGroup:
			out["subcommand"] = name
			flattenOptions("", opt.Options, out)
		default:
			out[name] = fmt.Sprintf("%v", opt.Value)
		}
	}
}

func interactionUser(interaction *discordgo.InteractionCreate) *discordgo.User {
	if interaction.Member != nil && interaction.Member.User != nil {
		return interaction.Member.User
	}
	return interaction.User
}

func memberPerms(interaction *discordgo.InteractionCreate) int64 {
	if interaction.Member == nil {
		return 0
	}
	return interaction.Member.Permissions
}

func subcommand(data discordgo.ApplicationCommandInteractionData) (string, map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	if len(data.Options) == 0 {
		return "", nil
	}
	sub := data.Options[0]
	opts := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(sub.Options))
	for _, opt := range sub.Options {
		opts[opt.Name] = opt
	}
	return sub.Name, opts
}

func optString(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if opt, ok := opts[name]; ok {
		return opt.StringValue()
	}
	return ""
}

func optInt(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) int {
	if opt, ok := opts[name]; ok {
		return int(opt.IntValue())
	}
	return 0
}

func optBool(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) bool {
	if opt, ok := opts[name]; ok {
		return opt.BoolValue()
	}
	return false
}

func optUser(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string, session *discordgo.Session) *discordgo.User {
	if opt, ok := opts[name]; ok {
		return opt.UserValue(session)
	}
	return nil
}

func (b *Bot) requireGuild(session *discordgo.Session, interaction *discordgo.InteractionCreate) bool {
	if interaction.GuildID != "" {
		return true
	}
	b.respondEmbed(session, interaction, b.embed("Server only", "This command only works inside a server.", b.cfg.Colors.Error), true)
	return false
}

func (b *Bot) handleBridge(session *discordgo.Session, interaction *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	if !b.requireGuild(session, interaction) {
		return
	}
	perms := memberPerms(interaction)
	if perms&(discordgo.PermissionManageWebhooks|discordgo.PermissionAdministrator) == 0 {
		b.respondEmbed(session, interaction, b.embed("No permission", "Managing the bridge needs the Manage Webhooks permission.", b.cfg.Colors.Error), true)
		return
	}

	sub, opts := subcommand(data)
	switch sub {
	case "set":
		url := optString(opts, "webhook_url")
		if _, err := webhook.ParseURL(url); err != nil {
			b.respondEmbed(session, interaction, b.embed("Bridge", "That doesn't look like a Discord webhook URL.", b.cfg.Colors.Error), true)
			return
		}
		if err := b.bridge.SetChannel(interaction.ChannelID, url); err != nil {
			b.respondEmbed(session, interaction, b.embed("Bridge", "Saving the bridge failed.", b.cfg.Colors.Error), true)
			return
		}
		b.respondEmbed(session, interaction, b.embed("🌉 Bridge connected", "Messages in this channel are now shared with every bridged channel.", b.cfg.Colors.Success), false)
	case "remove":
		_, removed, err := b.bridge.RemoveChannel(interaction.ChannelID)
		if err != nil || !removed {
			b.respondEmbed(session, interaction, b.embed("Bridge", "This channel is not bridged.", b.cfg.Colors.Warning), true)
			return
		}
		b.respondEmbed(session, interaction, b.embed("Bridge disconnected", "This channel no longer shares messages.", b.cfg.Colors.Success), false)
	}
}

func (b *Bot) handleRelay(session *discordgo.Session, interaction *discordgo.InteractionCreate, user *discordgo.User, data discordgo.ApplicationCommandInteractionData) {
	if !b.requireGuild(session, interaction) {
		return
	}
	perms := memberPerms(interaction)
	if perms&(discordgo.PermissionManageWebhooks|discordgo.PermissionAdministrator) == 0 {
		b.respondEmbed(session, interaction, b.embed("No permission", "Managing the relay needs the Manage Webhooks permission.", b.cfg.Colors.Error), true)
		return
	}

	sub, opts := subcommand(data)
	switch sub {
	case "set":
		url := optString(opts, "webhook_url")
		if _, err := webhook.ParseURL(url); err != nil {
			b.respondEmbed(session, interaction, b.embed("Relay", "That doesn't look like a Discord webhook URL.", b.cfg.Colors.Error), true)
			return
		}
		if err := b.relay.SetChannel(interaction.ChannelID, url); err != nil {
			b.respondEmbed(session, interaction, b.embed("Relay", "Saving the relay channel failed.", b.cfg.Colors.Error), true)
			return
		}
		b.respondEmbed(session, interaction, b.embed("🔢 Relay joined", "This channel now plays the number relay. Post the next number in the chain!", b.cfg.Colors.Success), false)
	case "remove":
		_, removed, err := b.relay.RemoveChannel(interaction.ChannelID)
		if err != nil || !removed {
			b.respondEmbed(session, interaction, b.embed("Relay", "This channel is not part of the relay.", b.cfg.Colors.Warning), true)
			return
		}
		b.respondEmbed(session, interaction, b.embed("Relay left", "This channel no longer plays the number relay.", b.cfg.Colors.Success), false)
	case "reset":
		if perms&discordgo.PermissionAdministrator == 0 {
			b.respondEmbed(session, interaction, b.embed("No permission", "Resetting the relay needs Administrator.", b.cfg.Colors.Error), true)
			return
		}
		src := relay.Source{
			ChannelID:   interaction.ChannelID,
			GuildName:   b.guildName(interaction.GuildID),
			UserID:      user.ID,
			DisplayName: displayName(interaction.Member, user),
			AvatarURL:   user.AvatarURL(""),
		}
		if err := b.relay.Reset(src); err != nil {
			b.respondEmbed(session, interaction, b.embed("Relay", "Reset failed.", b.cfg.Colors.Error), true)
			return
		}
		b.metrics.RelayMessages.WithLabelValues("manual_reset").Inc()
		b.respondEmbed(session, interaction, b.embed("💥 Relay reset", "The chain starts over at **1**.", b.cfg.Colors.Warning), false)
	}
}

func (b *Bot) handlePoll(session *discordgo.Session, interaction *discordgo.InteractionCreate, user *discordgo.User, data discordgo.ApplicationCommandInteractionData) {
	if !b.requireGuild(session, interaction) {
		return
	}

	sub, opts := subcommand(data)
	switch sub {
	case "create":
		question := optString(opts, "question")
		options := splitOptions(optString(opts, "options"))
		duration := time.Duration(optInt(opts, "minutes")) * time.Minute

		poll, err := b.polls.Create(interaction.GuildID, interaction.ChannelID, user.ID, user.Username,
			question, options, optBool(opts, "multi"), optBool(opts, "anonymous"), duration)
		if err != nil {
			b.respondEmbed(session, interaction, b.embed("Poll", "A poll needs between 2 and 10 options, separated by `;`.", b.cfg.Colors.Error), true)
			return
		}

		_ = session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Embeds:     []*discordgo.MessageEmbed{b.polls.PollEmbed(poll)},
				Components: polls.Buttons(poll, false),
			},
		})
		if msg, err := session.InteractionResponse(interaction.Interaction); err == nil && msg != nil {
			if err := b.polls.Bind(poll.ID, msg.ID); err != nil {
				b.logger.Warn("poll bind failed", zap.String("poll", poll.ID), zap.Error(err))
			}
		}
	case "list":
		open, err := b.polls.Open(interaction.GuildID)
		if err != nil || len(open) == 0 {
			b.respondEmbed(session, interaction, b.embed("Polls", "No open polls in this server.", b.cfg.Colors.Info), true)
			return
		}
		lines := make([]string, 0, len(open))
		for _, poll := range open {
			lines = append(lines, fmt.Sprintf("**%s** — %d votes, by %s in <#%s>",
				poll.Question, len(poll.Votes), poll.CreatorName, poll.ChannelID))
		}
		b.respondEmbed(session, interaction, b.embed("Open polls", strings.Join(lines, "\n"), b.cfg.Colors.Info), true)
	}
}

func splitOptions(raw string) []string {
	parts := strings.Split(raw, ";")
	options := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			options = append(options, trimmed)
		}
	}
	return options
}

func (b *Bot) handleGame(session *discordgo.Session, interaction *discordgo.InteractionCreate, user *discordgo.User, data discordgo.ApplicationCommandInteractionData) {
	sub, _ := subcommand(data)
	switch sub {
	case "2048":
		game := b.games.Start(user.ID)
		_ = session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content:    gameContent(user.ID, game, false),
				Components: gameButtons(false),
			},
		})
		if msg, err := session.InteractionResponse(interaction.Interaction); err == nil && msg != nil {
			b.games.Bind(msg.ID, game)
		}
	case "scores":
		scores, err := b.store.Scores2048()
		if err != nil || len(scores) == 0 {
			b.respondEmbed(session, interaction, b.embed("2048 scores", "Nobody has finished a game yet.", b.cfg.Colors.Info), true)
			return
		}
		sort.Slice(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
		if len(scores) > 10 {
			scores = scores[:10]
		}
		lines := make([]string, 0, len(scores))
		for i, entry := range scores {
			lines = append(lines, fmt.Sprintf("%d. **%s** — %d", i+1, entry.UserName, entry.Score))
		}
		b.respondEmbed(session, interaction, b.embed("🏆 2048 high scores", strings.Join(lines, "\n"), b.cfg.Colors.Info), false)
	}
}

func gameContent(ownerID string, game *game2048.Game, over bool) string {
	header := "**2048** — <@" + ownerID + ">  |  Score: " + strconv.Itoa(game.Score)
	if over {
		header = "**2048 — game over!** <@" + ownerID + "> finished with **" + strconv.Itoa(game.Score) + "** points."
	}
	return header + "\n```\n" + game.Render() + "\n```"
}

func gameButtons(disabled bool) []discordgo.MessageComponent {
	button := func(emoji, id string) discordgo.Button {
		return discordgo.Button{
			Style:    discordgo.SecondaryButton,
			Emoji:    discordgo.ComponentEmoji{Name: emoji},
			CustomID: id,
			Disabled: disabled,
		}
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			button("⬅️", "2048:left"),
			button("⬆️", "2048:up"),
			button("⬇️", "2048:down"),
			button("➡️", "2048:right"),
			button("❌", "2048:quit"),
		}},
	}
}

var gameDirections = map[string]game2048.Direction{
	"up":    game2048.Up,
	"down":  game2048.Down,
	"left":  game2048.Left,
	"right": game2048.Right,
}

func (b *Bot) handleComponent(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	user := interactionUser(interaction)
	if user == nil {
		return
	}
	data := interaction.MessageComponentData()
	parts := strings.Split(data.CustomID, ":")

	switch parts[0] {
	case "poll":
		if len(parts) == 3 {
			b.handlePollComponent(session, interaction, user, parts[1], parts[2])
		}
	case "2048":
		if len(parts) == 2 {
			b.handleGameComponent(session, interaction, user, parts[1])
		}
	}
}

func (b *Bot) handlePollComponent(session *discordgo.Session, interaction *discordgo.InteractionCreate, user *discordgo.User, pollID, action string) {
	switch action {
	case "results":
		poll, err := b.polls.Get(pollID)
		if err != nil {
			b.respondEmbed(session, interaction, b.embed("Poll", "This poll no longer exists.", b.cfg.Colors.Error), true)
			return
		}
		b.respondEmbed(session, interaction, b.polls.ResultsEmbed(poll, poll.Closed), true)
	case "end":
		admin := memberPerms(interaction)&discordgo.PermissionAdministrator != 0
		poll, err := b.polls.Close(pollID, user.ID, admin)
		switch err {
		case nil:
		case polls.ErrNotPermitted:
			b.respondEmbed(session, interaction, b.embed("Poll", "Only the poll creator or an administrator can end it.", b.cfg.Colors.Error), true)
			return
		case polls.ErrClosed:
			b.respondEmbed(session, interaction, b.embed("Poll", "This poll is already closed.", b.cfg.Colors.Warning), true)
			return
		default:
			b.respondEmbed(session, interaction, b.embed("Poll", "This poll no longer exists.", b.cfg.Colors.Error), true)
			return
		}
		b.updatePollMessage(session, interaction, b.polls.ResultsEmbed(poll, true), polls.Buttons(poll, true))
	default:
		index, err := strconv.Atoi(action)
		if err != nil {
			return
		}
		_, poll, err := b.polls.Vote(pollID, user.ID, index)
		switch err {
		case nil:
		case polls.ErrClosed:
			b.respondEmbed(session, interaction, b.embed("Poll", "This poll is closed.", b.cfg.Colors.Warning), true)
			return
		default:
			b.respondEmbed(session, interaction, b.embed("Poll", "Voting failed.", b.cfg.Colors.Error), true)
			return
		}
		b.metrics.PollVotes.Inc()
		b.updatePollMessage(session, interaction, b.polls.PollEmbed(poll), polls.Buttons(poll, false))
	}
}

func (b *Bot) updatePollMessage(session *discordgo.Session, interaction *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) {
	_ = session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
		},
	})
}

func (b *Bot) handleGameComponent(session *discordgo.Session, interaction *discordgo.InteractionCreate, user *discordgo.User, action string) {
	messageID := ""
	if interaction.Message != nil {
		messageID = interaction.Message.ID
	}

	if action == "quit" {
		game, status := b.games.Quit(messageID, user.ID, user.Username)
		switch status {
		case game2048.StatusNotOwner:
			b.respondEmbed(session, interaction, b.embed("2048", "This is not your game.", b.cfg.Colors.Error), true)
		case game2048.StatusNotFound:
			b.respondEmbed(session, interaction, b.embed("2048", "This game has expired. Start a new one with `/game 2048`.", b.cfg.Colors.Warning), true)
		default:
			b.updateGameMessage(session, interaction, gameContent(user.ID, game, true), gameButtons(true))
		}
		return
	}

	dir, ok := gameDirections[action]
	if !ok {
		return
	}
	game, status := b.games.Move(messageID, user.ID, user.Username, dir)
	switch status {
	case game2048.StatusMoved:
		b.updateGameMessage(session, interaction, gameContent(user.ID, game, false), gameButtons(false))
	case game2048.StatusGameOver:
		b.updateGameMessage(session, interaction, gameContent(user.ID, game, true), gameButtons(true))
	case game2048.StatusNoChange:
		_ = session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredMessageUpdate,
		})
	case game2048.StatusNotOwner:
		b.respondEmbed(session, interaction, b.embed("2048", "This is not your game.", b.cfg.Colors.Error), true)
	case game2048.StatusNotFound:
		b.respondEmbed(session, interaction, b.embed("2048", "This game has expired. Start a new one with `/game 2048`.", b.cfg.Colors.Warning), true)
	}
}

func (b *Bot) updateGameMessage(session *discordgo.Session, interaction *discordgo.InteractionCreate, content string, components []discordgo.MessageComponent) {
	_ = session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Components: components,
		},
	})
}

func (b *Bot) handleTools(session *discordgo.Session, interaction *discordgo.InteractionCreate, user *discordgo.User, data discordgo.ApplicationCommandInteractionData) {
	if !b.requireGuild(session, interaction) {
		return
	}

	sub, opts := subcommand(data)
	switch sub {
	case "join-set", "join-remove", "leave-set", "leave-remove":
		perms := memberPerms(interaction)
		if perms&(discordgo.PermissionManageChannels|discordgo.PermissionAdministrator) == 0 {
			b.respondEmbed(session, interaction, b.embed("No permission", "Managing announcement channels needs Manage Channels.", b.cfg.Colors.Error), true)
			return
		}
		b.handleToolsChannels(session, interaction, sub, opts)
	case "profile":
		target := optUser(opts, "user", session)
		if target == nil {
			target = user
		}
		b.handleProfile(session, interaction, target)
	case "overview":
		if !b.gate.IsOwner(user) {
			b.respondEmbed(session, interaction, b.embed("Owner only", "Only the bot owner can view the overview.", b.cfg.Colors.Error), true)
			return
		}
		b.handleOverview(session, interaction)
	}
}

func (b *Bot) handleToolsChannels(session *discordgo.Session, interaction *discordgo.InteractionCreate, sub string, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	guildID := interaction.GuildID
	switch sub {
	case "join-set":
		channel := opts["channel"].ChannelValue(session)
		if channel == nil {
			return
		}
		if err := b.store.SetJoinChannel(guildID, channel.ID); err != nil {
			b.respondEmbed(session, interaction, b.embed("Tools", "Saving failed.", b.cfg.Colors.Error), true)
			return
		}
		b.respondEmbed(session, interaction, b.embed("Tools", "New members are announced in <#"+channel.ID+">.", b.cfg.Colors.Success), false)
	case "join-remove":
		if removed, err := b.store.RemoveJoinChannel(guildID); err != nil || !removed {
			b.respondEmbed(session, interaction, b.embed("Tools", "No join channel was set.", b.cfg.Colors.Warning), true)
			return
		}
		b.respondEmbed(session, interaction, b.embed("Tools", "Join announcements disabled.", b.cfg.Colors.Success), false)
	case "leave-set":
		channel := opts["channel"].ChannelValue(session)
		if channel == nil {
			return
		}
		if err := b.store.SetLeaveChannel(guildID, channel.ID); err != nil {
			b.respondEmbed(session, interaction, b.embed("Tools", "Saving failed.", b.cfg.Colors.Error), true)
			return
		}
		b.respondEmbed(session, interaction, b.embed("Tools", "Leaving members are announced in <#"+channel.ID+">.", b.cfg.Colors.Success), false)
	case "leave-remove":
		if removed, err := b.store.RemoveLeaveChannel(guildID); err != nil || !removed {
			b.respondEmbed(session, interaction, b.embed("Tools", "No leave channel was set.", b.cfg.Colors.Warning), true)
			return
		}
		b.respondEmbed(session, interaction, b.embed("Tools", "Leave announcements disabled.", b.cfg.Colors.Success), false)
	}
}

func (b *Bot) handleProfile(session *discordgo.Session, interaction *discordgo.InteractionCreate, target *discordgo.User) {
	created, _ := discordgo.SnowflakeTimestamp(target.ID)
	member := b.memberForUser(interaction.GuildID, target.ID)

	snapshot := storage.ProfileSnapshot{
		UserID:      target.ID,
		UserName:    target.Username,
		DisplayName: displayName(member, target),
		CreatedAt:   created.UTC().Format(time.RFC3339),
	}
	fields := []*discordgo.MessageEmbedField{
		{Name: "ID", Value: target.ID, Inline: true},
		{Name: "Created", Value: created.UTC().Format("2006-01-02"), Inline: true},
	}
	if member != nil {
		if !member.JoinedAt.IsZero() {
			snapshot.JoinedAt = member.JoinedAt.UTC().Format(time.RFC3339)
			fields = append(fields, &discordgo.MessageEmbedField{
				Name: "Joined", Value: member.JoinedAt.UTC().Format("2006-01-02"), Inline: true,
			})
		}
		snapshot.Roles = b.roleNames(interaction.GuildID, member.Roles)
		if len(snapshot.Roles) > 0 {
			fields = append(fields, &discordgo.MessageEmbedField{
				Name: "Roles", Value: strings.Join(snapshot.Roles, ", "), Inline: false,
			})
		}
	}
	if err := b.store.SaveProfile(snapshot); err != nil {
		b.logger.Warn("profile save failed", zap.String("user", target.ID), zap.Error(err))
	}

	embed := b.embed("Profile: "+snapshot.DisplayName, "", b.cfg.Colors.Info)
	embed.Fields = fields
	embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: target.AvatarURL("")}
	b.respondEmbed(session, interaction, embed, false)
}

func (b *Bot) roleNames(guildID string, roleIDs []string) []string {
	guild, err := b.session.State.Guild(guildID)
	if err != nil || guild == nil {
		return nil
	}
	byID := make(map[string]string, len(guild.Roles))
	for _, role := range guild.Roles {
		byID[role.ID] = role.Name
	}
	names := make([]string, 0, len(roleIDs))
	for _, id := range roleIDs {
		if name := byID[id]; name != "" {
			names = append(names, name)
		}
	}
	return names
}

func (b *Bot) handleOverview(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	announce, _ := b.store.AnnounceChannels()
	join, _ := b.store.JoinChannels()
	leave, _ := b.store.LeaveChannels()

	lines := []string{}
	for _, guild := range session.State.Guilds {
		if guild == nil {
			continue
		}
		line := "**" + guild.Name + "**:"
		if id := announce[guild.ID]; id != "" {
			line += " announce <#" + id + ">"
		}
		if id := join[guild.ID]; id != "" {
			line += " join <#" + id + ">"
		}
		if id := leave[guild.ID]; id != "" {
			line += " leave <#" + id + ">"
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		b.respondEmbed(session, interaction, b.embed("Overview", "No channels configured anywhere.", b.cfg.Colors.Info), true)
		return
	}

	chunks := utils.ChunkLines(lines, 20)
	b.respondEmbed(session, interaction, b.embed("Channel overview", chunks[0], b.cfg.Colors.Info), true)
	for _, chunk := range chunks[1:] {
		_, _ = session.ChannelMessageSendEmbed(interaction.ChannelID, b.embed("Channel overview (continued)", chunk, b.cfg.Colors.Info))
	}
}

func (b *Bot) handleFun(session *discordgo.Session, interaction *discordgo.InteractionCreate, user *discordgo.User, data discordgo.ApplicationCommandInteractionData) {
	sub, opts := subcommand(data)
	switch sub {
	case "echo":
		// Embed output keeps mentions in the text from pinging anyone.
		b.respondEmbed(session, interaction,
			b.embed("🗣️ Echo", optString(opts, "text"), b.cfg.Colors.Info),
			optBool(opts, "private"))
	case "greet":
		target := optUser(opts, "user", session)
		if target == nil {
			target = user
		}
		b.respondEmbed(session, interaction,
			b.embed("👋 Greetings", b.fun.Greeting("<@"+target.ID+">"), b.cfg.Colors.Success), false)
	case "random-text":
		text, err := b.fun.RandomText(optString(opts, "category"))
		switch err {
		case nil:
			b.respondEmbed(session, interaction, b.embed("📝 Random text", text, b.cfg.Colors.Success), false)
		case fun.ErrNoCategory:
			msg := "That category does not exist."
			if categories, err := b.fun.Categories(); err == nil && len(categories) > 0 {
				msg += " Available: " + strings.Join(categories, ", ")
			}
			b.respond(session, interaction, msg, true)
		case fun.ErrNoTexts:
			b.respond(session, interaction, "The text pool is empty. Add lines to random-text.json in the data directory.", true)
		default:
			b.logger.Warn("random text failed", zap.Error(err))
			b.respond(session, interaction, "Could not read the text pool.", true)
		}
	}
}

func (b *Bot) handleGeneral(session *discordgo.Session, interaction *discordgo.InteractionCreate, user *discordgo.User, data discordgo.ApplicationCommandInteractionData) {
	sub, opts := subcommand(data)
	switch sub {
	case "ping":
		latency := session.HeartbeatLatency().Milliseconds()
		b.respondEmbed(session, interaction, b.embed("🏓 Pong!", fmt.Sprintf("Gateway latency: **%d ms**", latency), b.cfg.Colors.Info), false)
	case "hello":
		b.respondEmbed(session, interaction, b.embed("Hello!", "Hi <@"+user.ID+">, nice to see you!", b.cfg.Colors.Success), false)
	case "userinfo":
		target := optUser(opts, "user", session)
		if target == nil {
			target = user
		}
		b.handleProfile(session, interaction, target)
	case "botinfo":
		b.respondEmbed(session, interaction, b.botInfoEmbed(session), false)
	}
}

func (b *Bot) botInfoEmbed(session *discordgo.Session) *discordgo.MessageEmbed {
	embed := b.embed("About this bot", "", b.cfg.Colors.Info)
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Servers", Value: strconv.Itoa(len(session.State.Guilds)), Inline: true},
		{Name: "Uptime", Value: time.Since(b.startedAt).Round(time.Second).String(), Inline: true},
		{Name: "Go", Value: runtime.Version(), Inline: true},
		{Name: "Platform", Value: runtime.GOOS + "/" + runtime.GOARCH, Inline: true},
		{Name: "Goroutines", Value: strconv.Itoa(runtime.NumGoroutine()), Inline: true},
	}
	return embed
}

func (b *Bot) handleDev(session *discordgo.Session, interaction *discordgo.InteractionCreate, user *discordgo.User, data discordgo.ApplicationCommandInteractionData) {
	if !b.gate.IsOwner(user) {
		b.respondEmbed(session, interaction, b.embed("Owner only", "Developer commands are restricted to the bot owner.", b.cfg.Colors.Error), true)
		return
	}

	sub, opts := subcommand(data)
	switch sub {
	case "info":
		embed := b.botInfoEmbed(session)
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Data dir", Value: b.store.Dir(), Inline: true,
		})
		if report, err := b.usage.Report(); err == nil {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name: "Commands handled", Value: strconv.Itoa(report.Total), Inline: true,
			})
		}
		b.respondEmbed(session, interaction, embed, true)
	case "guilds":
		lines := make([]string, 0, len(session.State.Guilds))
		for _, guild := range session.State.Guilds {
			if guild == nil {
				continue
			}
			lines = append(lines, fmt.Sprintf("**%s** (`%s`) — %d members", guild.Name, guild.ID, guild.MemberCount))
		}
		if len(lines) == 0 {
			b.respondEmbed(session, interaction, b.embed("Servers", "Not in any servers.", b.cfg.Colors.Info), true)
			return
		}
		chunks := utils.ChunkLines(lines, 20)
		b.respondEmbed(session, interaction, b.embed("Servers", chunks[0], b.cfg.Colors.Info), true)
		for _, chunk := range chunks[1:] {
			_, _ = session.ChannelMessageSendEmbed(interaction.ChannelID, b.embed("Servers (continued)", chunk, b.cfg.Colors.Info))
		}
	case "broadcast":
		message := optString(opts, "message")
		embed := b.embed("📢 Announcement", message, b.cfg.Colors.Info)
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "Sent by " + user.Username}
		sent := b.broadcastAnnouncement(embed)
		b.respondEmbed(session, interaction, b.embed("Broadcast", fmt.Sprintf("Delivered to **%d** servers.", sent), b.cfg.Colors.Success), true)
	case "usage":
		report, err := b.usage.Report()
		if err != nil || report.Total == 0 {
			b.respondEmbed(session, interaction, b.embed("Usage", "No usage recorded yet.", b.cfg.Colors.Info), true)
			return
		}
		type pair struct {
			name  string
			count int
		}
		pairs := make([]pair, 0, len(report.ByCommand))
		for name, count := range report.ByCommand {
			pairs = append(pairs, pair{name, count})
		}
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].count > pairs[j].count })
		lines := make([]string, 0, len(pairs)+1)
		lines = append(lines, fmt.Sprintf("Total: **%d**", report.Total))
		for _, p := range pairs {
			lines = append(lines, fmt.Sprintf("`/%s` — %d", p.name, p.count))
		}
		b.respondEmbed(session, interaction, b.embed("Command usage", strings.Join(lines, "\n"), b.cfg.Colors.Info), true)
	}
}

func (b *Bot) handleHelp(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	embed := b.embed("Commands", "", b.cfg.Colors.Info)
	for _, cmd := range b.commandDefinitions() {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "/" + cmd.Name,
			Value:  cmd.Description,
			Inline: false,
		})
	}
	b.respondEmbed(session, interaction, embed, true)
}
