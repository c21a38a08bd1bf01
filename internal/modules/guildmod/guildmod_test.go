package guildmod

import (
	"testing"

	"aurora-bot/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func newTestModule(t *testing.T) *Module {
	t.Helper()
	store, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	return New(store, zap.NewNop())
}

func TestAuthorized(t *testing.T) {
	cases := []struct {
		name   string
		perms  int64
		action Action
		want   bool
	}{
		{"admin can ban", discordgo.PermissionAdministrator, ActionBan, true},
		{"ban members can ban", discordgo.PermissionBanMembers, ActionBan, true},
		{"kick members cannot ban", discordgo.PermissionKickMembers, ActionBan, false},
		{"manage messages can mute", discordgo.PermissionManageMessages, ActionMute, true},
		{"moderate members can mute", discordgo.PermissionModerateMembers, ActionMute, true},
		{"kick members can warn", discordgo.PermissionKickMembers, ActionWarn, true},
		{"plain member cannot warn", discordgo.PermissionSendMessages, ActionWarn, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Authorized(tc.perms, tc.action); got != tc.want {
				t.Fatalf("Authorized(%#x, %s) = %v, want %v", tc.perms, tc.action, got, tc.want)
			}
		})
	}
}

func TestHigherRole(t *testing.T) {
	guild := &discordgo.Guild{
		OwnerID: "owner",
		Roles: []*discordgo.Role{
			{ID: "low", Position: 1},
			{ID: "high", Position: 5},
		},
	}
	mod := &discordgo.Member{User: &discordgo.User{ID: "mod"}, Roles: []string{"high"}}
	member := &discordgo.Member{User: &discordgo.User{ID: "member"}, Roles: []string{"low"}}
	owner := &discordgo.Member{User: &discordgo.User{ID: "owner"}}

	if !HigherRole(guild, mod, member) {
		t.Fatal("high role should outrank low role")
	}
	if HigherRole(guild, member, mod) {
		t.Fatal("low role should not outrank high role")
	}
	if HigherRole(guild, member, member) {
		t.Fatal("equal positions should not outrank")
	}
	if !HigherRole(guild, owner, mod) {
		t.Fatal("guild owner should outrank everyone")
	}
	if HigherRole(guild, mod, owner) {
		t.Fatal("nobody should outrank the guild owner")
	}
}

func TestMuteLifecycle(t *testing.T) {
	m := newTestModule(t)
	if err := m.Mute("g1", "u1", storage.NewRecord("mod", "Mod", "spam", 0)); err != nil {
		t.Fatalf("Mute: %v", err)
	}

	rec, muted, err := m.IsMuted("g1", "u1")
	if err != nil {
		t.Fatalf("IsMuted: %v", err)
	}
	if !muted || rec.Reason != "spam" {
		t.Fatalf("got muted=%v reason=%q", muted, rec.Reason)
	}

	// Mutes are scoped per guild.
	if _, muted, _ := m.IsMuted("g2", "u1"); muted {
		t.Fatal("mute leaked into another guild")
	}

	removed, err := m.Unmute("g1", "u1")
	if err != nil || !removed {
		t.Fatalf("Unmute = (%v, %v)", removed, err)
	}
	if _, muted, _ := m.IsMuted("g1", "u1"); muted {
		t.Fatal("user still muted after unmute")
	}
}

func TestWarnLifecycle(t *testing.T) {
	m := newTestModule(t)
	if n, err := m.Warn("g1", "u1", storage.NewRecord("mod", "Mod", "first", 0)); err != nil || n != 1 {
		t.Fatalf("Warn = (%d, %v), want (1, nil)", n, err)
	}
	if n, err := m.Warn("g1", "u1", storage.NewRecord("mod", "Mod", "second", 0)); err != nil || n != 2 {
		t.Fatalf("Warn = (%d, %v), want (2, nil)", n, err)
	}

	warns, err := m.Warns("g1")
	if err != nil {
		t.Fatalf("Warns: %v", err)
	}
	if len(warns["u1"]) != 2 {
		t.Fatalf("warn count = %d, want 2", len(warns["u1"]))
	}

	remaining, removed, err := m.Unwarn("g1", "u1")
	if err != nil || !removed || remaining != 1 {
		t.Fatalf("Unwarn = (%d, %v, %v), want (1, true, nil)", remaining, removed, err)
	}
}
