package bot

import (
	"testing"

	"aurora-bot/internal/storage"

	"github.com/bwmarrin/discordgo"
)

func TestSplitOptions(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"plain", "red;green;blue", []string{"red", "green", "blue"}},
		{"spaces trimmed", " red ; green ", []string{"red", "green"}},
		{"empty segments dropped", "red;;;blue;", []string{"red", "blue"}},
		{"empty input", "", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := splitOptions(tc.in)
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestFlattenOptions(t *testing.T) {
	options := []*discordgo.ApplicationCommandInteractionDataOption{
		{
			Name: "ban",
			Type: discordgo.ApplicationCommandOptionSubCommand,
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{Name: "reason", Type: discordgo.ApplicationCommandOptionString, Value: "spam"},
				{Name: "days", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(7)},
			},
		},
	}
	out := map[string]string{}
	flattenOptions("", options, out)

	if out["subcommand"] != "ban" {
		t.Fatalf("subcommand = %q", out["subcommand"])
	}
	if out["reason"] != "spam" {
		t.Fatalf("reason = %q", out["reason"])
	}
	if out["days"] != "7" {
		t.Fatalf("days = %q", out["days"])
	}
}

func TestDisplayName(t *testing.T) {
	user := &discordgo.User{Username: "alice"}
	if got := displayName(nil, user); got != "alice" {
		t.Fatalf("got %q", got)
	}
	if got := displayName(&discordgo.Member{Nick: "Ally"}, user); got != "Ally" {
		t.Fatalf("got %q", got)
	}
	if got := displayName(&discordgo.Member{}, user); got != "alice" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatRecord(t *testing.T) {
	rec := storage.Record{Moderator: "1", ModeratorName: "Mod", Reason: "spam"}
	if got := formatRecord(rec); got != "spam (by Mod)" {
		t.Fatalf("got %q", got)
	}

	rec.Expires = "2024-06-08T00:00:00Z"
	if got := formatRecord(rec); got != "spam (by Mod, until 2024-06-08T00:00:00Z)" {
		t.Fatalf("got %q", got)
	}

	rec = storage.Record{ModeratorName: "Mod"}
	if got := formatRecord(rec); got != "no reason given (by Mod)" {
		t.Fatalf("got %q", got)
	}
}

func TestGameButtonsLayout(t *testing.T) {
	components := gameButtons(false)
	if len(components) != 1 {
		t.Fatalf("rows = %d, want 1", len(components))
	}
	row, ok := components[0].(discordgo.ActionsRow)
	if !ok {
		t.Fatal("expected an actions row")
	}
	if len(row.Components) != 5 {
		t.Fatalf("buttons = %d, want 5", len(row.Components))
	}

	disabledRow := gameButtons(true)[0].(discordgo.ActionsRow)
	for _, component := range disabledRow.Components {
		if !component.(discordgo.Button).Disabled {
			t.Fatal("expected all buttons disabled")
		}
	}
}

func TestWarnCommandsAcceptExpiry(t *testing.T) {
	b := &Bot{}
	for _, group := range []string{"bot", "server"} {
		var warn *discordgo.ApplicationCommandOption
		for _, cmd := range b.commandDefinitions() {
			if cmd.Name != group {
				continue
			}
			for _, sub := range cmd.Options {
				if sub.Name == "warn" {
					warn = sub
				}
			}
		}
		if warn == nil {
			t.Fatalf("/%s warn not defined", group)
		}
		found := false
		for _, opt := range warn.Options {
			if opt.Name == "days" && opt.Type == discordgo.ApplicationCommandOptionInteger {
				found = true
			}
		}
		if !found {
			t.Fatalf("/%s warn is missing the days option", group)
		}
	}
}

func TestRelayAttemptExcludesReplies(t *testing.T) {
	if !relayAttempt(&discordgo.Message{Type: discordgo.MessageTypeDefault}) {
		t.Fatal("plain messages should count as attempts")
	}
	if relayAttempt(&discordgo.Message{Type: discordgo.MessageTypeReply}) {
		t.Fatal("replies must not count as attempts")
	}
}
