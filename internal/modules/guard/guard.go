// Package guard screens new members for throwaway bot accounts: a freshly
// created account with no avatar set is banned on join.
package guard

import (
	"time"

	"aurora-bot/internal/config"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type Decision struct {
	Ban        bool
	AccountAge time.Duration
}

type Module struct {
	cfg    config.GuardConfig
	logger *zap.Logger
}

func New(cfg config.GuardConfig, logger *zap.Logger) *Module {
	return &Module{cfg: cfg, logger: logger}
}

func (m *Module) Enabled() bool {
	return m.cfg.Enabled
}

// Screen decides whether a joining user should be banned. Only accounts
// that have no avatar and are younger than the configured minimum age
// are flagged.
func (m *Module) Screen(user *discordgo.User, now time.Time) Decision {
	if !m.cfg.Enabled || user == nil || user.Bot {
		return Decision{}
	}
	created, err := discordgo.SnowflakeTimestamp(user.ID)
	if err != nil {
		m.logger.Warn("unparseable user snowflake", zap.String("user", user.ID), zap.Error(err))
		return Decision{}
	}
	age := now.Sub(created)
	if user.Avatar != "" {
		return Decision{AccountAge: age}
	}
	minAge := time.Duration(m.cfg.MinAccountAgeDays) * 24 * time.Hour
	if age >= minAge {
		return Decision{AccountAge: age}
	}
	m.logger.Info("flagged suspicious account",
		zap.String("user", user.ID),
		zap.Duration("account_age", age))
	return Decision{Ban: true, AccountAge: age}
}
