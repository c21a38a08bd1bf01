package bridge

import (
	"strings"
	"testing"
	"unicode/utf8"

	"aurora-bot/internal/config"
	"aurora-bot/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type fakeSender struct {
	params []*discordgo.WebhookParams
	urls   []string
}

func (f *fakeSender) Send(url string, params *discordgo.WebhookParams) error {
	f.urls = append(f.urls, url)
	f.params = append(f.params, params)
	return nil
}

func newTestModule(t *testing.T) (*Module, *fakeSender) {
	t.Helper()
	store, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	sender := &fakeSender{}
	return New(store, sender, zap.NewNop(), config.DefaultConfig().Colors), sender
}

func TestForwardSkipsSource(t *testing.T) {
	module, sender := newTestModule(t)
	for channel, url := range map[string]string{
		"c1": "https://discord.com/api/webhooks/1/a",
		"c2": "https://discord.com/api/webhooks/2/b",
	} {
		if err := module.SetChannel(channel, url); err != nil {
			t.Fatalf("set: %v", err)
		}
	}

	forwarded, bridged := module.HandleMessage(Message{
		ChannelID:   "c1",
		GuildName:   "Guild One",
		DisplayName: "Alice",
		Content:     "hello there",
	})
	if !bridged || forwarded != 1 {
		t.Fatalf("forwarded=%d bridged=%v", forwarded, bridged)
	}
	if sender.urls[0] != "https://discord.com/api/webhooks/2/b" {
		t.Fatalf("forwarded to wrong webhook: %v", sender.urls)
	}
	params := sender.params[0]
	if params.Username != "[Guild One] Alice" {
		t.Fatalf("username = %q", params.Username)
	}
	if params.Content != "hello there" {
		t.Fatalf("content = %q", params.Content)
	}
}

func TestSingleBridgeDoesNotForward(t *testing.T) {
	module, sender := newTestModule(t)
	if err := module.SetChannel("c1", "https://discord.com/api/webhooks/1/a"); err != nil {
		t.Fatalf("set: %v", err)
	}

	forwarded, bridged := module.HandleMessage(Message{ChannelID: "c1", Content: "hi"})
	if !bridged || forwarded != 0 {
		t.Fatalf("forwarded=%d bridged=%v", forwarded, bridged)
	}
	if len(sender.urls) != 0 {
		t.Fatalf("nothing should be sent: %v", sender.urls)
	}
}

func TestUnbridgedChannelIgnored(t *testing.T) {
	module, _ := newTestModule(t)
	if _, bridged := module.HandleMessage(Message{ChannelID: "c9", Content: "hi"}); bridged {
		t.Fatalf("unbridged channel should be ignored")
	}
}

func TestAttachmentsAppendedToContent(t *testing.T) {
	module, sender := newTestModule(t)
	_ = module.SetChannel("c1", "https://discord.com/api/webhooks/1/a")
	_ = module.SetChannel("c2", "https://discord.com/api/webhooks/2/b")

	module.HandleMessage(Message{
		ChannelID:      "c1",
		Content:        "look",
		AttachmentURLs: []string{"https://cdn.example/one.png", "https://cdn.example/two.png"},
	})
	content := sender.params[0].Content
	if !strings.Contains(content, "look") || !strings.Contains(content, "two.png") {
		t.Fatalf("attachments missing from content: %q", content)
	}
}

func TestReplyRendersQuoteEmbed(t *testing.T) {
	module, sender := newTestModule(t)
	_ = module.SetChannel("c1", "https://discord.com/api/webhooks/1/a")
	_ = module.SetChannel("c2", "https://discord.com/api/webhooks/2/b")

	long := strings.Repeat("x", 150)
	module.HandleMessage(Message{
		ChannelID: "c1",
		Content:   "agreed",
		Reply:     &Reply{AuthorName: "Bob", Content: long},
	})
	params := sender.params[0]
	if len(params.Embeds) != 1 {
		t.Fatalf("expected reply embed")
	}
	embed := params.Embeds[0]
	if embed.Author == nil || embed.Author.Name != "Replying to Bob" {
		t.Fatalf("unexpected author: %+v", embed.Author)
	}
	if !strings.HasSuffix(embed.Description, "...") || len(embed.Description) > replyPreviewLimit+10 {
		t.Fatalf("preview not truncated: %q", embed.Description)
	}
}

func TestReplyPreviewKeepsMultibyteContentIntact(t *testing.T) {
	module, sender := newTestModule(t)
	_ = module.SetChannel("c1", "https://discord.com/api/webhooks/1/a")
	_ = module.SetChannel("c2", "https://discord.com/api/webhooks/2/b")

	short := strings.Repeat("數", 40)
	long := strings.Repeat("數", replyPreviewLimit+20)
	module.HandleMessage(Message{
		ChannelID: "c1",
		Content:   "ok",
		Reply:     &Reply{AuthorName: "Bob", Content: short},
	})
	module.HandleMessage(Message{
		ChannelID: "c1",
		Content:   "ok",
		Reply:     &Reply{AuthorName: "Bob", Content: long},
	})

	shortDesc := sender.params[0].Embeds[0].Description
	if shortDesc != "> "+short {
		t.Fatalf("short multibyte reply should not be truncated: %q", shortDesc)
	}
	longDesc := sender.params[1].Embeds[0].Description
	if !utf8.ValidString(longDesc) {
		t.Fatalf("preview cut mid-rune: %q", longDesc)
	}
	want := "> " + strings.Repeat("數", replyPreviewLimit) + "..."
	if longDesc != want {
		t.Fatalf("preview = %q, want %d characters", longDesc, replyPreviewLimit)
	}
}

func TestEmptyMessageNotForwarded(t *testing.T) {
	module, sender := newTestModule(t)
	_ = module.SetChannel("c1", "https://discord.com/api/webhooks/1/a")
	_ = module.SetChannel("c2", "https://discord.com/api/webhooks/2/b")

	forwarded, bridged := module.HandleMessage(Message{ChannelID: "c1"})
	if !bridged || forwarded != 0 || len(sender.urls) != 0 {
		t.Fatalf("empty message should not forward: forwarded=%d sent=%v", forwarded, sender.urls)
	}
}
