package modgate

import (
	"testing"

	"aurora-bot/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func newTestModule(t *testing.T, owner string) *Module {
	t.Helper()
	store, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	return New(store, zap.NewNop(), owner)
}

func TestIsOwner(t *testing.T) {
	cases := []struct {
		name  string
		owner string
		user  *discordgo.User
		want  bool
	}{
		{"by id", "1234", &discordgo.User{ID: "1234", Username: "alice"}, true},
		{"by username", "alice", &discordgo.User{ID: "1234", Username: "Alice"}, true},
		{"by tag", "alice#0420", &discordgo.User{ID: "1234", Username: "alice", Discriminator: "0420"}, true},
		{"wrong tag", "alice#0001", &discordgo.User{ID: "1234", Username: "alice", Discriminator: "0420"}, false},
		{"other user", "alice", &discordgo.User{ID: "9999", Username: "bob"}, false},
		{"unset owner", "", &discordgo.User{ID: "1234", Username: "alice"}, false},
		{"nil user", "alice", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := newTestModule(t, tc.owner)
			if got := m.IsOwner(tc.user); got != tc.want {
				t.Fatalf("IsOwner = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCheckBanTakesPriority(t *testing.T) {
	m := newTestModule(t, "owner")
	if err := m.Ban("u1", storage.NewRecord("mod", "Mod", "spam", 0)); err != nil {
		t.Fatalf("Ban: %v", err)
	}
	if err := m.Mute("u1", storage.NewRecord("mod", "Mod", "noise", 0)); err != nil {
		t.Fatalf("Mute: %v", err)
	}

	v, hit, err := m.Check("u1")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !hit || v.Kind != KindBan {
		t.Fatalf("got hit=%v kind=%q, want ban verdict", hit, v.Kind)
	}
}

func TestCheckMute(t *testing.T) {
	m := newTestModule(t, "owner")
	if err := m.Mute("u2", storage.NewRecord("mod", "Mod", "noise", 1)); err != nil {
		t.Fatalf("Mute: %v", err)
	}

	v, hit, err := m.Check("u2")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !hit || v.Kind != KindMute {
		t.Fatalf("got hit=%v kind=%q, want mute verdict", hit, v.Kind)
	}
	if v.Record.Reason != "noise" {
		t.Fatalf("reason = %q", v.Record.Reason)
	}

	if _, hit, _ := m.Check("unknown"); hit {
		t.Fatal("unknown user should pass the gate")
	}
}

func TestWarnLifecycle(t *testing.T) {
	m := newTestModule(t, "owner")
	if n, err := m.Warn("u3", storage.NewRecord("mod", "Mod", "first", 0)); err != nil || n != 1 {
		t.Fatalf("Warn = (%d, %v), want (1, nil)", n, err)
	}
	if n, err := m.Warn("u3", storage.NewRecord("mod", "Mod", "second", 0)); err != nil || n != 2 {
		t.Fatalf("Warn = (%d, %v), want (2, nil)", n, err)
	}

	remaining, removed, err := m.Unwarn("u3")
	if err != nil {
		t.Fatalf("Unwarn: %v", err)
	}
	if !removed || remaining != 1 {
		t.Fatalf("Unwarn = (%d, %v), want (1, true)", remaining, removed)
	}

	if _, removed, _ := m.Unwarn("never-warned"); removed {
		t.Fatal("Unwarn on clean user should report false")
	}
}

func TestUnbanMissing(t *testing.T) {
	m := newTestModule(t, "owner")
	removed, err := m.Unban("nobody")
	if err != nil {
		t.Fatalf("Unban: %v", err)
	}
	if removed {
		t.Fatal("Unban should report false for unknown user")
	}
}
