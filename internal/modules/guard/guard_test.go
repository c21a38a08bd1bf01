package guard

import (
	"strconv"
	"testing"
	"time"

	"aurora-bot/internal/config"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// discordEpoch is the millisecond timestamp snowflake IDs count from.
const discordEpoch = 1420070400000

func snowflakeAt(t time.Time) string {
	ms := t.UnixMilli() - discordEpoch
	return strconv.FormatInt(ms<<22, 10)
}

func TestScreen(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	fresh := snowflakeAt(now.Add(-24 * time.Hour))
	aged := snowflakeAt(now.Add(-30 * 24 * time.Hour))

	cases := []struct {
		name    string
		cfg     config.GuardConfig
		user    *discordgo.User
		wantBan bool
	}{
		{
			"fresh account without avatar banned",
			config.GuardConfig{Enabled: true, MinAccountAgeDays: 7},
			&discordgo.User{ID: fresh},
			true,
		},
		{
			"fresh account with avatar allowed",
			config.GuardConfig{Enabled: true, MinAccountAgeDays: 7},
			&discordgo.User{ID: fresh, Avatar: "abc123"},
			false,
		},
		{
			"old account without avatar allowed",
			config.GuardConfig{Enabled: true, MinAccountAgeDays: 7},
			&discordgo.User{ID: aged},
			false,
		},
		{
			"bot accounts skipped",
			config.GuardConfig{Enabled: true, MinAccountAgeDays: 7},
			&discordgo.User{ID: fresh, Bot: true},
			false,
		},
		{
			"disabled guard never bans",
			config.GuardConfig{Enabled: false, MinAccountAgeDays: 7},
			&discordgo.User{ID: fresh},
			false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := New(tc.cfg, zap.NewNop())
			d := m.Screen(tc.user, now)
			if d.Ban != tc.wantBan {
				t.Fatalf("Screen ban = %v, want %v", d.Ban, tc.wantBan)
			}
		})
	}
}

func TestScreenReportsAccountAge(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	user := &discordgo.User{ID: snowflakeAt(now.Add(-48 * time.Hour)), Avatar: "abc"}
	m := New(config.GuardConfig{Enabled: true, MinAccountAgeDays: 7}, zap.NewNop())

	d := m.Screen(user, now)
	if d.AccountAge < 47*time.Hour || d.AccountAge > 49*time.Hour {
		t.Fatalf("account age = %v, want ~48h", d.AccountAge)
	}
}
