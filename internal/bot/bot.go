package bot

import (
	"context"
	"strconv"
	"strings"
	"time"

	"aurora-bot/internal/config"
	"aurora-bot/internal/metrics"
	"aurora-bot/internal/modules/bridge"
	"aurora-bot/internal/modules/fun"
	"aurora-bot/internal/modules/game2048"
	"aurora-bot/internal/modules/guard"
	"aurora-bot/internal/modules/guildmod"
	"aurora-bot/internal/modules/modgate"
	"aurora-bot/internal/modules/polls"
	"aurora-bot/internal/modules/relay"
	"aurora-bot/internal/storage"
	"aurora-bot/internal/usage"
	"aurora-bot/internal/webhook"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type Bot struct {
	cfg     config.Config
	logger  *zap.Logger
	store   *storage.Store
	session *discordgo.Session

	gate     *modgate.Module
	guildMod *guildmod.Module
	bridge   *bridge.Module
	relay    *relay.Module
	games    *game2048.Manager
	polls    *polls.Module
	guard    *guard.Module
	fun      *fun.Module
	usage    *usage.Logger
	metrics  *metrics.Metrics

	startedAt time.Time
	sweepStop chan struct{}
}

func New(cfg config.Config, logger *zap.Logger, store *storage.Store, usageLog *usage.Logger, metricsSet *metrics.Metrics) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsMessageContent |
		discordgo.IntentsDirectMessages

	b := &Bot{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		session:   session,
		usage:     usageLog,
		metrics:   metricsSet,
		startedAt: time.Now(),
		sweepStop: make(chan struct{}),
	}

	sender := webhook.NewSender(session, logger)
	b.gate = modgate.New(store, logger, cfg.Owner)
	b.guildMod = guildmod.New(store, logger)
	b.bridge = bridge.New(store, sender, logger, cfg.Colors)
	b.relay = relay.New(store, sender, logger, cfg.Colors)
	b.games = game2048.NewManager(store, logger)
	b.polls = polls.New(store, logger, cfg.Colors)
	b.guard = guard.New(cfg.Guard, logger)
	b.fun = fun.New(store, logger)

	if b.usage != nil && cfg.LogChannelID != "" {
		b.usage.SetNotifier(func(rec usage.Record) {
			_, _ = b.session.ChannelMessageSend(cfg.LogChannelID, usage.FormatLine(rec))
		})
	}

	return b, nil
}

func (b *Bot) Start() error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(b.onGuildMemberAdd)
	b.session.AddHandler(b.onGuildMemberRemove)
	b.session.AddHandler(b.onGuildMemberUpdate)
	b.session.AddHandler(b.onInteractionCreate)

	if err := b.session.Open(); err != nil {
		return err
	}

	if err := b.registerCommands(); err != nil {
		return err
	}

	b.startPollSweeper()

	return nil
}

func (b *Bot) Close(ctx context.Context) {
	_ = ctx
	close(b.sweepStop)
	if b.session != nil {
		_ = b.session.Close()
	}
}

func (b *Bot) onReady(session *discordgo.Session, event *discordgo.Ready) {
	b.logger.Info("discord ready",
		zap.String("user", session.State.User.Username),
		zap.Int("guilds", len(event.Guilds)))
}

func (b *Bot) onMessageCreate(session *discordgo.Session, msg *discordgo.MessageCreate) {
	if msg.Author == nil || msg.Author.Bot || msg.Interaction != nil {
		return
	}
	if msg.GuildID == "" {
		return
	}
	if msg.Type != discordgo.MessageTypeDefault && msg.Type != discordgo.MessageTypeReply {
		return
	}

	if b.enforceMute(session, msg) {
		return
	}
	b.forwardBridge(session, msg)
	if relayAttempt(msg.Message) {
		b.handleRelayMessage(session, msg)
	}
}

// relayAttempt reports whether a message can count toward the number chain.
// Replies keep their bridge context but never advance the game.
func relayAttempt(msg *discordgo.Message) bool {
	return msg != nil && msg.Type == discordgo.MessageTypeDefault
}

// enforceMute deletes messages from globally or guild-muted users and tells
// them why over DM. Returns true when the message was removed.
func (b *Bot) enforceMute(session *discordgo.Session, msg *discordgo.MessageCreate) bool {
	var rec storage.Record
	muted := false

	if verdict, hit, err := b.gate.Check(msg.Author.ID); err == nil && hit && verdict.Kind == modgate.KindMute {
		rec = verdict.Record
		muted = true
	}
	if !muted {
		guildRec, hit, err := b.guildMod.IsMuted(msg.GuildID, msg.Author.ID)
		if err != nil || !hit {
			return false
		}
		rec = guildRec
		muted = true
	}

	if err := session.ChannelMessageDelete(msg.ChannelID, msg.ID); err != nil {
		b.logger.Warn("mute delete failed",
			zap.String("channel", msg.ChannelID), zap.Error(err))
		return true
	}
	b.metrics.MutedDeletes.Inc()

	reason := rec.Reason
	if reason == "" {
		reason = "no reason given"
	}
	desc := "Your message was removed because you are muted.\nReason: " + reason
	if rec.Expires != "" {
		desc += "\nExpires: " + rec.Expires
	}
	b.dmEmbed(msg.Author.ID, b.embed("You are muted", desc, b.cfg.Colors.Warning))
	return true
}

func (b *Bot) forwardBridge(session *discordgo.Session, msg *discordgo.MessageCreate) {
	out := bridge.Message{
		ChannelID:   msg.ChannelID,
		GuildName:   b.guildName(msg.GuildID),
		DisplayName: displayName(msg.Member, msg.Author),
		AvatarURL:   msg.Author.AvatarURL(""),
		Content:     msg.Content,
	}
	for _, attachment := range msg.Attachments {
		if attachment != nil && attachment.URL != "" {
			out.AttachmentURLs = append(out.AttachmentURLs, attachment.URL)
		}
	}
	if msg.MessageReference != nil {
		out.Reply = b.resolveReply(session, msg)
	}

	forwarded, bridged := b.bridge.HandleMessage(out)
	if bridged && forwarded > 0 {
		b.metrics.BridgeForwards.Add(float64(forwarded))
	}
}

func (b *Bot) resolveReply(session *discordgo.Session, msg *discordgo.MessageCreate) *bridge.Reply {
	ref := msg.ReferencedMessage
	if ref == nil {
		fetched, err := session.ChannelMessage(msg.MessageReference.ChannelID, msg.MessageReference.MessageID)
		if err != nil {
			return &bridge.Reply{Deleted: true}
		}
		ref = fetched
	}
	if ref == nil || ref.Author == nil {
		return &bridge.Reply{Deleted: true}
	}
	return &bridge.Reply{
		AuthorName: ref.Author.Username,
		AvatarURL:  ref.Author.AvatarURL(""),
		Content:    ref.Content,
	}
}

func (b *Bot) handleRelayMessage(session *discordgo.Session, msg *discordgo.MessageCreate) {
	src := relay.Source{
		ChannelID:   msg.ChannelID,
		GuildName:   b.guildName(msg.GuildID),
		UserID:      msg.Author.ID,
		DisplayName: displayName(msg.Member, msg.Author),
		AvatarURL:   msg.Author.AvatarURL(""),
	}

	result, handled := b.relay.HandleMessage(src, strings.TrimSpace(msg.Content))
	if !handled {
		return
	}
	b.metrics.RelayMessages.WithLabelValues(string(result.Outcome)).Inc()

	switch result.Outcome {
	case relay.OutcomeRepeat:
		_ = session.ChannelMessageDelete(msg.ChannelID, msg.ID)
		b.tempNotice(session, msg.ChannelID,
			"You can't post two numbers in a row. Someone else has to post "+strconv.Itoa(result.Expected)+".")
	case relay.OutcomeReset:
		_ = session.ChannelMessageDelete(msg.ChannelID, msg.ID)
		_, _ = session.ChannelMessageSendEmbed(msg.ChannelID, b.embed(
			"🚨 Chain broken!",
			"<@"+msg.Author.ID+"> posted "+strconv.Itoa(result.Got)+" but the next number was "+strconv.Itoa(result.Expected)+".\nThe game starts over at **1**.",
			b.cfg.Colors.Error))
	}
}

// tempNotice sends a short-lived channel message, removed after a few seconds.
func (b *Bot) tempNotice(session *discordgo.Session, channelID, content string) {
	msg, err := session.ChannelMessageSend(channelID, content)
	if err != nil || msg == nil {
		return
	}
	time.AfterFunc(5*time.Second, func() {
		_ = session.ChannelMessageDelete(channelID, msg.ID)
	})
}

func (b *Bot) onGuildMemberAdd(session *discordgo.Session, event *discordgo.GuildMemberAdd) {
	if event.Member == nil || event.Member.User == nil || event.GuildID == "" {
		return
	}

	if !event.Member.Pending && b.screenMember(session, event.GuildID, event.Member.User) {
		return
	}

	channels, err := b.store.JoinChannels()
	if err != nil {
		return
	}
	channelID := channels[event.GuildID]
	if channelID == "" {
		return
	}

	user := event.Member.User
	embed := b.embed("👋 Welcome!",
		"<@"+user.ID+"> joined **"+b.guildName(event.GuildID)+"**.",
		b.cfg.Colors.Success)
	embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: user.AvatarURL("")}
	if _, err := session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		// Channel is gone; drop the stale mapping.
		_, _ = b.store.RemoveJoinChannel(event.GuildID)
	}
}

func (b *Bot) onGuildMemberRemove(session *discordgo.Session, event *discordgo.GuildMemberRemove) {
	if event.Member == nil || event.Member.User == nil || event.GuildID == "" {
		return
	}

	channels, err := b.store.LeaveChannels()
	if err != nil {
		return
	}
	channelID := channels[event.GuildID]
	if channelID == "" {
		return
	}

	user := event.Member.User
	embed := b.embed("👋 Farewell",
		"**"+user.Username+"** left **"+b.guildName(event.GuildID)+"**.",
		b.cfg.Colors.Warning)
	if _, err := session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		_, _ = b.store.RemoveLeaveChannel(event.GuildID)
	}
}

func (b *Bot) onGuildMemberUpdate(session *discordgo.Session, event *discordgo.GuildMemberUpdate) {
	if event.Member == nil || event.Member.User == nil || event.GuildID == "" {
		return
	}
	// Screening completes when the member flips from pending to not pending.
	if event.BeforeUpdate == nil || !event.BeforeUpdate.Pending || event.Member.Pending {
		return
	}
	b.screenMember(session, event.GuildID, event.Member.User)
}

func (b *Bot) screenMember(session *discordgo.Session, guildID string, user *discordgo.User) bool {
	decision := b.guard.Screen(user, time.Now())
	if !decision.Ban {
		return false
	}

	b.dmEmbed(user.ID, b.embed("Removed from "+b.guildName(guildID),
		"Your account was flagged as a suspected bot: it was created recently and has no avatar. "+
			"If this is a mistake, contact the server staff after setting up your profile.",
		b.cfg.Colors.Error))

	if err := session.GuildBanCreateWithReason(guildID, user.ID, "screening guard: new account without avatar", 0); err != nil {
		b.logger.Warn("guard ban failed",
			zap.String("guild", guildID), zap.String("user", user.ID), zap.Error(err))
		return false
	}
	b.metrics.GuardBans.Inc()
	b.logger.Info("guard banned suspected bot",
		zap.String("guild", guildID),
		zap.String("user", user.ID),
		zap.Duration("account_age", decision.AccountAge))
	return true
}

// announceChannel resolves the announcement channel for a guild: the
// persisted mapping first, then a case-insensitive name lookup, then
// auto-creation. Stale mappings are dropped along the way.
func (b *Bot) announceChannel(guildID string) (string, error) {
	channels, err := b.store.AnnounceChannels()
	if err != nil {
		return "", err
	}
	if id := channels[guildID]; id != "" {
		if ch, err := b.session.State.Channel(id); err == nil && ch != nil {
			return id, nil
		}
		if _, err := b.session.Channel(id); err == nil {
			return id, nil
		}
		_, _ = b.store.RemoveAnnounceChannel(guildID)
	}

	guildChannels, err := b.session.GuildChannels(guildID)
	if err != nil {
		return "", err
	}
	for _, ch := range guildChannels {
		if ch == nil || ch.Type != discordgo.ChannelTypeGuildText {
			continue
		}
		if strings.EqualFold(ch.Name, b.cfg.AnnounceChannelName) {
			_ = b.store.SetAnnounceChannel(guildID, ch.ID)
			return ch.ID, nil
		}
	}

	created, err := b.session.GuildChannelCreate(guildID, b.cfg.AnnounceChannelName, discordgo.ChannelTypeGuildText)
	if err != nil {
		return "", err
	}
	_ = b.store.SetAnnounceChannel(guildID, created.ID)
	return created.ID, nil
}

// broadcastAnnouncement delivers an embed to every guild's announcement
// channel and returns how many guilds received it.
func (b *Bot) broadcastAnnouncement(embed *discordgo.MessageEmbed) int {
	if b.session.State == nil {
		return 0
	}
	sent := 0
	for _, guild := range b.session.State.Guilds {
		if guild == nil {
			continue
		}
		channelID, err := b.announceChannel(guild.ID)
		if err != nil {
			b.logger.Warn("announce channel unresolved",
				zap.String("guild", guild.ID), zap.Error(err))
			continue
		}
		if _, err := b.session.ChannelMessageSendEmbed(channelID, embed); err != nil {
			continue
		}
		sent++
		b.metrics.BroadcastsTotal.Inc()
	}
	return sent
}

func (b *Bot) dmEmbed(userID string, embed *discordgo.MessageEmbed) {
	if userID == "" || embed == nil {
		return
	}
	channel, err := b.session.UserChannelCreate(userID)
	if err != nil {
		return
	}
	_, _ = b.session.ChannelMessageSendEmbed(channel.ID, embed)
}

// startPollSweeper closes polls whose duration elapsed and freezes their
// messages with final results.
func (b *Bot) startPollSweeper() {
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-b.sweepStop:
				return
			case <-ticker.C:
			}
			closed, err := b.polls.CloseDue(time.Now())
			if err != nil {
				b.logger.Warn("poll sweep failed", zap.Error(err))
				continue
			}
			for _, poll := range closed {
				b.freezePollMessage(poll)
			}
		}
	}()
}

func (b *Bot) freezePollMessage(poll storage.Poll) {
	if poll.ChannelID == "" || poll.MessageID == "" {
		return
	}
	embed := b.polls.ResultsEmbed(poll, true)
	components := polls.Buttons(poll, true)
	_, err := b.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    poll.ChannelID,
		ID:         poll.MessageID,
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: components,
	})
	if err != nil {
		b.logger.Warn("poll freeze failed", zap.String("poll", poll.ID), zap.Error(err))
	}
}

func (b *Bot) guildName(guildID string) string {
	if guild, err := b.session.State.Guild(guildID); err == nil && guild != nil && guild.Name != "" {
		return guild.Name
	}
	if guild, err := b.session.Guild(guildID); err == nil && guild != nil {
		return guild.Name
	}
	return guildID
}

func (b *Bot) memberForUser(guildID, userID string) *discordgo.Member {
	member, err := b.session.State.Member(guildID, userID)
	if err == nil && member != nil {
		return member
	}
	member, _ = b.session.GuildMember(guildID, userID)
	return member
}

func displayName(member *discordgo.Member, user *discordgo.User) string {
	if member != nil && member.Nick != "" {
		return member.Nick
	}
	if user != nil {
		return user.Username
	}
	return ""
}

func (b *Bot) embed(title, description string, color int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}

func (b *Bot) respond(session *discordgo.Session, interaction *discordgo.InteractionCreate, content string, ephemeral bool) {
	flags := discordgo.MessageFlags(0)
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	_ = session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   flags,
		},
	})
}

func (b *Bot) respondEmbed(session *discordgo.Session, interaction *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, ephemeral bool) {
	if embed == nil {
		b.respond(session, interaction, "No response available.", ephemeral)
		return
	}
	flags := discordgo.MessageFlags(0)
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	_ = session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  flags,
		},
	})
}
