// Package webhook executes Discord webhooks addressed by their full URL,
// which is how bridge and relay registrations are stored.
package webhook

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type Target struct {
	ID    string
	Token string
}

// ParseURL extracts the webhook ID and token from a Discord webhook URL of
// the form https://discord.com/api/webhooks/{id}/{token}.
func ParseURL(raw string) (Target, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return Target{}, fmt.Errorf("parse webhook url: %w", err)
	}
	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	for i, part := range parts {
		if part != "webhooks" {
			continue
		}
		if len(parts) < i+3 || parts[i+1] == "" || parts[i+2] == "" {
			break
		}
		return Target{ID: parts[i+1], Token: parts[i+2]}, nil
	}
	return Target{}, fmt.Errorf("not a webhook url: %s", raw)
}

type Sender struct {
	session *discordgo.Session
	logger  *zap.Logger
}

func NewSender(session *discordgo.Session, logger *zap.Logger) *Sender {
	return &Sender{session: session, logger: logger}
}

func (s *Sender) Send(rawURL string, params *discordgo.WebhookParams) error {
	target, err := ParseURL(rawURL)
	if err != nil {
		return err
	}
	if _, err := s.session.WebhookExecute(target.ID, target.Token, false, params); err != nil {
		s.logger.Warn("webhook execute failed", zap.String("webhook", target.ID), zap.Error(err))
		return err
	}
	return nil
}
