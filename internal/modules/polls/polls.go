// Package polls manages button-driven polls: creation, vote toggling, live
// tallies, and creator-or-admin closing. Polls persist across restarts and
// their buttons are re-resolved from the custom ID on every press.
package polls

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"aurora-bot/internal/config"
	"aurora-bot/internal/storage"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	MinOptions = 2
	MaxOptions = 10
)

var (
	ErrNotFound     = errors.New("poll not found")
	ErrClosed       = errors.New("poll is closed")
	ErrBadOption    = errors.New("option index out of range")
	ErrNotPermitted = errors.New("only the creator or an admin can close a poll")
	ErrOptionCount  = errors.New("polls need between 2 and 10 options")
)

var optionEmojis = []string{"1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣", "6️⃣", "7️⃣", "8️⃣", "9️⃣", "🔟"}

var medals = []string{"🥇", "🥈", "🥉"}

type Action string

const (
	ActionVoted     Action = "voted"
	ActionChanged   Action = "changed"
	ActionRetracted Action = "retracted"
	ActionAdded     Action = "added"
	ActionRemoved   Action = "removed"
)

type Module struct {
	mu     sync.Mutex
	store  *storage.Store
	logger *zap.Logger
	colors config.EmbedColors
}

func New(store *storage.Store, logger *zap.Logger, colors config.EmbedColors) *Module {
	return &Module{store: store, logger: logger, colors: colors}
}

func (m *Module) Create(guildID, channelID, creatorID, creatorName, question string, options []string, multi, anonymous bool, duration time.Duration) (storage.Poll, error) {
	if len(options) < MinOptions || len(options) > MaxOptions {
		return storage.Poll{}, ErrOptionCount
	}
	now := time.Now().UTC()
	poll := storage.Poll{
		ID:          uuid.NewString(),
		GuildID:     guildID,
		ChannelID:   channelID,
		CreatorID:   creatorID,
		CreatorName: creatorName,
		Question:    question,
		Options:     options,
		Multi:       multi,
		Anonymous:   anonymous,
		Votes:       make(map[string][]int),
		CreatedAt:   now.Format(time.RFC3339),
	}
	if duration > 0 {
		poll.ExpiresAt = now.Add(duration).Format(time.RFC3339)
	}
	if err := m.store.SavePoll(poll); err != nil {
		return storage.Poll{}, err
	}
	return poll, nil
}

// Bind records the message that hosts the poll once it has been sent.
func (m *Module) Bind(pollID, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	poll, ok, err := m.store.Poll(pollID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	poll.MessageID = messageID
	return m.store.SavePoll(poll)
}

func (m *Module) Get(pollID string) (storage.Poll, error) {
	poll, ok, err := m.store.Poll(pollID)
	if err != nil {
		return storage.Poll{}, err
	}
	if !ok {
		return storage.Poll{}, ErrNotFound
	}
	return poll, nil
}

// Open lists the guild's polls that are still accepting votes.
func (m *Module) Open(guildID string) ([]storage.Poll, error) {
	all, err := m.store.Polls()
	if err != nil {
		return nil, err
	}
	open := make([]storage.Poll, 0, len(all))
	for _, poll := range all {
		if poll.GuildID == guildID && !poll.Closed {
			open = append(open, poll)
		}
	}
	sort.Slice(open, func(i, j int) bool { return open[i].CreatedAt < open[j].CreatedAt })
	return open, nil
}

// Vote applies one button press. Single-choice polls change or retract the
// existing vote; multi-choice polls toggle the option.
func (m *Module) Vote(pollID, userID string, option int) (Action, storage.Poll, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	poll, ok, err := m.store.Poll(pollID)
	if err != nil {
		return "", storage.Poll{}, err
	}
	if !ok {
		return "", storage.Poll{}, ErrNotFound
	}
	if poll.Closed || m.expired(poll, time.Now()) {
		return "", poll, ErrClosed
	}
	if option < 0 || option >= len(poll.Options) {
		return "", poll, ErrBadOption
	}
	if poll.Votes == nil {
		poll.Votes = make(map[string][]int)
	}

	var action Action
	current, voted := poll.Votes[userID]
	switch {
	case !voted:
		poll.Votes[userID] = []int{option}
		action = ActionVoted
	case !poll.Multi:
		if len(current) == 1 && current[0] == option {
			delete(poll.Votes, userID)
			action = ActionRetracted
		} else {
			poll.Votes[userID] = []int{option}
			action = ActionChanged
		}
	default:
		idx := -1
		for i, chosen := range current {
			if chosen == option {
				idx = i
				break
			}
		}
		if idx >= 0 {
			current = append(current[:idx], current[idx+1:]...)
			if len(current) == 0 {
				delete(poll.Votes, userID)
			} else {
				poll.Votes[userID] = current
			}
			action = ActionRemoved
		} else {
			poll.Votes[userID] = append(current, option)
			action = ActionAdded
		}
	}

	if err := m.store.SavePoll(poll); err != nil {
		return "", storage.Poll{}, err
	}
	return action, poll, nil
}

// Close ends a poll. Only the creator or a guild admin may do it.
func (m *Module) Close(pollID, userID string, isAdmin bool) (storage.Poll, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	poll, ok, err := m.store.Poll(pollID)
	if err != nil {
		return storage.Poll{}, err
	}
	if !ok {
		return storage.Poll{}, ErrNotFound
	}
	if poll.CreatorID != userID && !isAdmin {
		return poll, ErrNotPermitted
	}
	if poll.Closed {
		return poll, ErrClosed
	}
	poll.Closed = true
	if err := m.store.SavePoll(poll); err != nil {
		return storage.Poll{}, err
	}
	return poll, nil
}

// CloseDue closes every poll whose deadline has passed and returns them so
// their messages can be updated.
func (m *Module) CloseDue(now time.Time) ([]storage.Poll, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all, err := m.store.Polls()
	if err != nil {
		return nil, err
	}
	var closed []storage.Poll
	for _, poll := range all {
		if poll.Closed || !m.expired(poll, now) {
			continue
		}
		poll.Closed = true
		if err := m.store.SavePoll(poll); err != nil {
			m.logger.Warn("poll close save failed", zap.String("poll", poll.ID), zap.Error(err))
			continue
		}
		closed = append(closed, poll)
	}
	return closed, nil
}

func (m *Module) expired(poll storage.Poll, now time.Time) bool {
	if poll.ExpiresAt == "" {
		return false
	}
	expires, err := time.Parse(time.RFC3339, poll.ExpiresAt)
	if err != nil {
		return false
	}
	return now.After(expires)
}

// Tally counts votes per option index.
func Tally(poll storage.Poll) []int {
	counts := make([]int, len(poll.Options))
	for _, chosen := range poll.Votes {
		for _, option := range chosen {
			if option >= 0 && option < len(counts) {
				counts[option]++
			}
		}
	}
	return counts
}

// bar renders a 20-cell block graph at 5% per cell.
func bar(count, total int) string {
	percentage := 0.0
	if total > 0 {
		percentage = float64(count) / float64(total) * 100
	}
	filled := int(percentage / 5)
	return strings.Repeat("█", filled) + strings.Repeat("░", 20-filled)
}

func OptionEmoji(index int) string {
	if index < len(optionEmojis) {
		return optionEmojis[index]
	}
	return "▪️"
}

// PollEmbed renders the live poll message.
func (m *Module) PollEmbed(poll storage.Poll) *discordgo.MessageEmbed {
	counts := Tally(poll)
	total := 0
	for _, count := range counts {
		total += count
	}

	var options strings.Builder
	for i, option := range poll.Options {
		percentage := 0.0
		if total > 0 {
			percentage = float64(counts[i]) / float64(total) * 100
		}
		fmt.Fprintf(&options, "%s **%s**\n%s %.1f%% (%d votes)\n\n",
			OptionEmoji(i), option, bar(counts[i], total), percentage, counts[i])
	}

	mode := "🔘 single choice"
	if poll.Multi {
		mode = "✅ multiple choice"
	}
	settings := mode
	if poll.Anonymous {
		settings += " | 🕶️ anonymous"
	}

	return &discordgo.MessageEmbed{
		Title:       "📊 " + poll.Question,
		Color:       m.colors.Info,
		Description: "",
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Options", Value: options.String(), Inline: false},
			{Name: "Settings", Value: settings, Inline: true},
			{Name: "Total votes", Value: fmt.Sprintf("**%d**", total), Inline: true},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "Created by " + poll.CreatorName},
		Timestamp: poll.CreatedAt,
	}
}

// ResultsEmbed renders the ranked results view.
func (m *Module) ResultsEmbed(poll storage.Poll, ended bool) *discordgo.MessageEmbed {
	counts := Tally(poll)
	total := 0
	for _, count := range counts {
		total += count
	}

	order := make([]int, len(counts))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return counts[order[a]] > counts[order[b]] })

	var results strings.Builder
	for rank, index := range order {
		percentage := 0.0
		if total > 0 {
			percentage = float64(counts[index]) / float64(total) * 100
		}
		label := OptionEmoji(index)
		if rank < len(medals) {
			label = medals[rank]
		}
		fmt.Fprintf(&results, "%s **%s**\n%s %.1f%% (%d votes)\n\n",
			label, poll.Options[index], bar(counts[index], total), percentage, counts[index])
	}

	color := m.colors.Info
	if ended {
		color = m.colors.Success
	}
	fields := []*discordgo.MessageEmbedField{
		{Name: "Results", Value: results.String(), Inline: false},
	}
	if !poll.Anonymous && len(poll.Votes) > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Participation", Value: fmt.Sprintf("%d voters", len(poll.Votes)), Inline: false,
		})
	}
	if ended {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Status", Value: "🔒 **Poll closed**", Inline: false,
		})
	}

	return &discordgo.MessageEmbed{
		Title:     "📊 Results: " + poll.Question,
		Color:     color,
		Fields:    fields,
		Footer:    &discordgo.MessageEmbedFooter{Text: "Created by " + poll.CreatorName},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// Buttons builds the component rows for a poll message: one button per
// option plus results and close controls. Custom IDs carry the poll ID so
// presses survive restarts.
func Buttons(poll storage.Poll, disabled bool) []discordgo.MessageComponent {
	var rows []discordgo.MessageComponent
	var row []discordgo.MessageComponent
	for i, option := range poll.Options {
		label := option
		if runes := []rune(label); len(runes) > 20 {
			label = string(runes[:20])
		}
		row = append(row, discordgo.Button{
			Label:    label,
			Style:    discordgo.PrimaryButton,
			CustomID: fmt.Sprintf("poll:%s:%d", poll.ID, i),
			Emoji:    discordgo.ComponentEmoji{Name: OptionEmoji(i)},
			Disabled: disabled,
		})
		if len(row) == 5 {
			rows = append(rows, discordgo.ActionsRow{Components: row})
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, discordgo.ActionsRow{Components: row})
	}
	rows = append(rows, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.Button{
			Label:    "Results",
			Style:    discordgo.SecondaryButton,
			CustomID: fmt.Sprintf("poll:%s:results", poll.ID),
			Emoji:    discordgo.ComponentEmoji{Name: "📊"},
			Disabled: disabled,
		},
		discordgo.Button{
			Label:    "End poll",
			Style:    discordgo.DangerButton,
			CustomID: fmt.Sprintf("poll:%s:end", poll.ID),
			Emoji:    discordgo.ComponentEmoji{Name: "🔒"},
			Disabled: disabled,
		},
	}})
	return rows
}
