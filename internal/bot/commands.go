package bot

import "github.com/bwmarrin/discordgo"

func userOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

func stringOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

func intOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

func boolOption(name, description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionBoolean,
		Name:        name,
		Description: description,
	}
}

func channelOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionChannel,
		Name:        name,
		Description: description,
		Required:    required,
		ChannelTypes: []discordgo.ChannelType{
			discordgo.ChannelTypeGuildText,
			discordgo.ChannelTypeGuildNews,
		},
	}
}

func subCommand(name, description string, options ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        name,
		Description: description,
		Options:     options,
	}
}

func recordKindOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "kind",
		Description: "which records to list",
		Required:    true,
		Choices: []*discordgo.ApplicationCommandOptionChoice{
			{Name: "bans", Value: "bans"},
			{Name: "mutes", Value: "mutes"},
			{Name: "warns", Value: "warns"},
		},
	}
}

func (b *Bot) commandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "bot",
			Description: "Bot-wide moderation (owner only)",
			Options: []*discordgo.ApplicationCommandOption{
				subCommand("ban", "Globally ban a user",
					userOption("user", "target user", true),
					stringOption("reason", "why", false),
					intOption("days", "expiry in days, 0 = permanent", false)),
				subCommand("unban", "Lift a global ban",
					userOption("user", "target user", true)),
				subCommand("mute", "Globally mute a user",
					userOption("user", "target user", true),
					stringOption("reason", "why", false),
					intOption("days", "expiry in days, 0 = permanent", false)),
				subCommand("unmute", "Lift a global mute",
					userOption("user", "target user", true)),
				subCommand("warn", "Globally warn a user",
					userOption("user", "target user", true),
					stringOption("reason", "why", false),
					intOption("days", "expiry in days, 0 = permanent", false)),
				subCommand("unwarn", "Remove the latest global warn",
					userOption("user", "target user", true)),
				subCommand("list", "List global moderation records", recordKindOption()),
			},
		},
		{
			Name:        "server",
			Description: "Moderate this server",
			Options: []*discordgo.ApplicationCommandOption{
				subCommand("ban", "Ban a member",
					userOption("user", "target member", true),
					stringOption("reason", "why", false),
					intOption("delete_days", "days of messages to delete", false)),
				subCommand("unban", "Unban a user by ID",
					stringOption("user_id", "user ID", true)),
				subCommand("kick", "Kick a member",
					userOption("user", "target member", true),
					stringOption("reason", "why", false)),
				subCommand("mute", "Mute a member in this server",
					userOption("user", "target member", true),
					stringOption("reason", "why", false),
					intOption("days", "expiry in days, 0 = permanent", false)),
				subCommand("unmute", "Unmute a member",
					userOption("user", "target member", true)),
				subCommand("warn", "Warn a member",
					userOption("user", "target member", true),
					stringOption("reason", "why", false),
					intOption("days", "expiry in days, 0 = permanent", false)),
				subCommand("unwarn", "Remove a member's latest warn",
					userOption("user", "target member", true)),
				subCommand("list", "List this server's records", recordKindOption()),
			},
		},
		{
			Name:        "bridge",
			Description: "Cross-server chat bridge",
			Options: []*discordgo.ApplicationCommandOption{
				subCommand("set", "Bridge this channel through a webhook",
					stringOption("webhook_url", "webhook URL of this channel", true)),
				subCommand("remove", "Remove this channel from the bridge"),
			},
		},
		{
			Name:        "relay",
			Description: "Cross-server number relay game",
			Options: []*discordgo.ApplicationCommandOption{
				subCommand("set", "Register this channel for the relay",
					stringOption("webhook_url", "webhook URL of this channel", true)),
				subCommand("remove", "Unregister this channel"),
				subCommand("reset", "Reset the relay back to 1"),
			},
		},
		{
			Name:        "poll",
			Description: "Create and manage polls",
			Options: []*discordgo.ApplicationCommandOption{
				subCommand("create", "Create a poll",
					stringOption("question", "what to ask", true),
					stringOption("options", "2-10 options separated by ;", true),
					boolOption("multi", "allow multiple choices"),
					boolOption("anonymous", "hide who voted"),
					intOption("minutes", "auto-close after this many minutes", false)),
				subCommand("list", "List open polls in this server"),
			},
		},
		{
			Name:        "game",
			Description: "Minigames",
			Options: []*discordgo.ApplicationCommandOption{
				subCommand("2048", "Start a 2048 board"),
				subCommand("scores", "Show the 2048 high scores"),
			},
		},
		{
			Name:        "tools",
			Description: "Server tools",
			Options: []*discordgo.ApplicationCommandOption{
				subCommand("join-set", "Announce joins in a channel",
					channelOption("channel", "target channel", true)),
				subCommand("join-remove", "Stop announcing joins"),
				subCommand("leave-set", "Announce leaves in a channel",
					channelOption("channel", "target channel", true)),
				subCommand("leave-remove", "Stop announcing leaves"),
				subCommand("profile", "Show and snapshot a user profile",
					userOption("user", "defaults to you", false)),
				subCommand("overview", "Show channel mappings (owner only)"),
			},
		},
		{
			Name:        "fun",
			Description: "Entertainment commands",
			Options: []*discordgo.ApplicationCommandOption{
				subCommand("echo", "Repeat your text back",
					stringOption("text", "what to repeat", true),
					boolOption("private", "only you see the reply")),
				subCommand("greet", "Greet someone",
					userOption("user", "defaults to you", false)),
				subCommand("random-text", "A random line from the local text pool",
					stringOption("category", "limit to one category", false)),
			},
		},
		{
			Name:        "general",
			Description: "General commands",
			Options: []*discordgo.ApplicationCommandOption{
				subCommand("ping", "Gateway latency"),
				subCommand("hello", "Say hi"),
				subCommand("userinfo", "About a user",
					userOption("user", "defaults to you", false)),
				subCommand("botinfo", "About this bot"),
			},
		},
		{
			Name:        "dev",
			Description: "Developer commands (owner only)",
			Options: []*discordgo.ApplicationCommandOption{
				subCommand("info", "Runtime details"),
				subCommand("guilds", "List joined servers"),
				subCommand("broadcast", "Post to every announcement channel",
					stringOption("message", "what to broadcast", true)),
				subCommand("usage", "Command usage report"),
			},
		},
		{
			Name:        "help",
			Description: "List available commands",
		},
	}
}

func (b *Bot) registerCommands() error {
	commands := b.commandDefinitions()

	appID := b.session.State.User.ID
	existing, err := b.session.ApplicationCommands(appID, "")
	if err != nil {
		for _, cmd := range commands {
			if _, err := b.session.ApplicationCommandCreate(appID, "", cmd); err != nil {
				return err
			}
		}
		return nil
	}

	existingByName := make(map[string]*discordgo.ApplicationCommand)
	for _, cmd := range existing {
		existingByName[cmd.Name] = cmd
	}

	desired := make(map[string]struct{})
	for _, cmd := range commands {
		desired[cmd.Name] = struct{}{}
		if current, ok := existingByName[cmd.Name]; ok {
			if _, err := b.session.ApplicationCommandEdit(appID, "", current.ID, cmd); err != nil {
				return err
			}
			continue
		}
		if _, err := b.session.ApplicationCommandCreate(appID, "", cmd); err != nil {
			return err
		}
	}

	for _, cmd := range existing {
		if _, ok := desired[cmd.Name]; ok {
			continue
		}
		_ = b.session.ApplicationCommandDelete(appID, "", cmd.ID)
	}

	for _, guild := range b.session.State.Guilds {
		if guild == nil {
			continue
		}
		guildCmds, err := b.session.ApplicationCommands(appID, guild.ID)
		if err != nil {
			continue
		}
		for _, cmd := range guildCmds {
			if _, ok := desired[cmd.Name]; ok {
				continue
			}
			_ = b.session.ApplicationCommandDelete(appID, guild.ID, cmd.ID)
		}
	}
	return nil
}
