// Package usage records every handled application command as a JSON line
// and can mirror a formatted entry to a Discord log channel.
package usage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

type Record struct {
	Timestamp   string            `json:"ts"`
	UserID      string            `json:"user_id"`
	UserName    string            `json:"user_name"`
	GuildID     string            `json:"guild_id,omitempty"`
	GuildName   string            `json:"guild_name,omitempty"`
	ChannelID   string            `json:"channel_id,omitempty"`
	ChannelName string            `json:"channel_name,omitempty"`
	Command     string            `json:"command"`
	Options     map[string]string `json:"options,omitempty"`
}

type Logger struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
	notify func(Record)
}

func NewLogger(path string, logger *zap.Logger) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create usage log dir: %w", err)
	}
	return &Logger{path: path, logger: logger}, nil
}

// SetNotifier registers a callback invoked after each record is written,
// used to mirror entries to the configured log channel.
func (l *Logger) SetNotifier(fn func(Record)) {
	l.notify = fn
}

func (l *Logger) Log(rec Record) {
	if rec.Timestamp == "" {
		rec.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	if err := l.append(rec); err != nil {
		l.logger.Warn("usage log write failed", zap.Error(err))
	}
	if l.notify != nil {
		l.notify(rec)
	}
}

func (l *Logger) append(rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()
	if _, err := file.Write(append(data, '\n')); err != nil {
		return err
	}
	return nil
}

type Report struct {
	Total     int
	ByCommand map[string]int
}

// Report aggregates the usage log into per-command counts.
func (l *Logger) Report() (Report, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	report := Report{ByCommand: make(map[string]int)}
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return report, nil
		}
		return Report{}, err
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			continue
		}
		report.Total++
		report.ByCommand[rec.Command]++
	}
	return report, nil
}

// FormatLine renders a record the way it appears in the log channel.
func FormatLine(rec Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "`%s` **%s** used `/%s`", rec.Timestamp, rec.UserName, rec.Command)
	if rec.GuildName != "" {
		fmt.Fprintf(&b, " in **%s**", rec.GuildName)
	}
	if rec.ChannelName != "" {
		fmt.Fprintf(&b, " (#%s)", rec.ChannelName)
	}
	if len(rec.Options) > 0 {
		keys := make([]string, 0, len(rec.Options))
		for key := range rec.Options {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, key := range keys {
			pairs = append(pairs, key+"="+rec.Options[key])
		}
		fmt.Fprintf(&b, " with %s", strings.Join(pairs, " "))
	}
	return b.String()
}
