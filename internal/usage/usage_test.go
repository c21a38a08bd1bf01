package usage

import (
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestLogAndReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.log")
	logger, err := NewLogger(path, zap.NewNop())
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logger.Log(Record{UserID: "u1", UserName: "A", Command: "ping"})
	logger.Log(Record{UserID: "u2", UserName: "B", Command: "poll"})
	logger.Log(Record{UserID: "u1", UserName: "A", Command: "ping"})

	report, err := logger.Report()
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.Total != 3 {
		t.Fatalf("total = %d, want 3", report.Total)
	}
	if report.ByCommand["ping"] != 2 || report.ByCommand["poll"] != 1 {
		t.Fatalf("unexpected counts: %v", report.ByCommand)
	}
}

func TestNotifier(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.log")
	logger, err := NewLogger(path, zap.NewNop())
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	var seen []Record
	logger.SetNotifier(func(rec Record) { seen = append(seen, rec) })
	logger.Log(Record{UserName: "A", Command: "hello"})
	if len(seen) != 1 || seen[0].Command != "hello" {
		t.Fatalf("notifier not invoked: %v", seen)
	}
	if seen[0].Timestamp == "" {
		t.Fatalf("timestamp should be filled in")
	}
}

func TestFormatLine(t *testing.T) {
	line := FormatLine(Record{
		Timestamp:   "2025-01-01T00:00:00Z",
		UserName:    "Someone",
		GuildName:   "Guild",
		ChannelName: "general",
		Command:     "server",
		Options:     map[string]string{"user": "u1", "action": "ban"},
	})
	for _, want := range []string{"Someone", "/server", "Guild", "#general", "action=ban", "user=u1"} {
		if !strings.Contains(line, want) {
			t.Fatalf("line %q missing %q", line, want)
		}
	}
}
