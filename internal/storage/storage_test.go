package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestGlobalBanRoundTrip(t *testing.T) {
	store := newTestStore(t)

	rec := NewRecord("mod1", "Mod", "spam", 0)
	if err := store.SetGlobalBan("u1", rec); err != nil {
		t.Fatalf("set ban: %v", err)
	}
	bans, err := store.GlobalBans()
	if err != nil {
		t.Fatalf("get bans: %v", err)
	}
	if got := bans["u1"]; got.Reason != "spam" || got.Moderator != "mod1" {
		t.Fatalf("unexpected record: %+v", got)
	}

	removed, err := store.RemoveGlobalBan("u1")
	if err != nil || !removed {
		t.Fatalf("remove ban: removed=%v err=%v", removed, err)
	}
	removed, err = store.RemoveGlobalBan("u1")
	if err != nil || removed {
		t.Fatalf("second remove should be a no-op: removed=%v err=%v", removed, err)
	}
}

func TestExpiredRecordsPruned(t *testing.T) {
	store := newTestStore(t)

	expired := NewRecord("mod1", "Mod", "old", 0)
	expired.Expires = time.Now().Add(-time.Hour).Format(time.RFC3339)
	if err := store.SetGlobalMute("u1", expired); err != nil {
		t.Fatalf("set mute: %v", err)
	}
	if err := store.SetGlobalMute("u2", NewRecord("mod1", "Mod", "current", 1)); err != nil {
		t.Fatalf("set mute: %v", err)
	}

	mutes, err := store.GlobalMutes()
	if err != nil {
		t.Fatalf("get mutes: %v", err)
	}
	if _, ok := mutes["u1"]; ok {
		t.Fatalf("expired mute should be pruned")
	}
	if _, ok := mutes["u2"]; !ok {
		t.Fatalf("live mute should remain")
	}

	// The prune must be persisted, not just filtered in memory.
	mutes, err = store.GlobalMutes()
	if err != nil {
		t.Fatalf("reread mutes: %v", err)
	}
	if len(mutes) != 1 {
		t.Fatalf("expected one mute after prune, got %d", len(mutes))
	}
}

func TestWarnHistory(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.AddGuildWarn("g1", "u1", NewRecord("m", "M", "first", 0)); err != nil {
		t.Fatalf("warn: %v", err)
	}
	count, err := store.AddGuildWarn("g1", "u1", NewRecord("m", "M", "second", 0))
	if err != nil {
		t.Fatalf("warn: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}

	remaining, removed, err := store.RemoveGuildWarn("g1", "u1")
	if err != nil || !removed || remaining != 1 {
		t.Fatalf("unwarn: remaining=%d removed=%v err=%v", remaining, removed, err)
	}
	warns, err := store.GuildWarns()
	if err != nil {
		t.Fatalf("get warns: %v", err)
	}
	if got := warns["g1"]["u1"]; len(got) != 1 || got[0].Reason != "first" {
		t.Fatalf("unexpected history: %+v", got)
	}
}

func TestRelayStateDefaults(t *testing.T) {
	store := newTestStore(t)

	state := store.RelayState()
	if state.CurrentNumber != 1 || state.LastUserID != "" {
		t.Fatalf("unexpected default state: %+v", state)
	}

	state.CurrentNumber = 42
	state.LastUserID = "u1"
	if err := store.SaveRelayState(state); err != nil {
		t.Fatalf("save state: %v", err)
	}
	state = store.RelayState()
	if state.CurrentNumber != 42 || state.LastUserID != "u1" {
		t.Fatalf("unexpected state after save: %+v", state)
	}
}

func TestChannelMaps(t *testing.T) {
	store := newTestStore(t)

	if err := store.SetAnnounceChannel("g1", "c1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.SetJoinChannel("g1", "c2"); err != nil {
		t.Fatalf("set: %v", err)
	}
	channels, err := store.AnnounceChannels()
	if err != nil || channels["g1"] != "c1" {
		t.Fatalf("announce channels = %v err=%v", channels, err)
	}
	joins, err := store.JoinChannels()
	if err != nil || joins["g1"] != "c2" {
		t.Fatalf("join channels = %v err=%v", joins, err)
	}
	removed, err := store.RemoveJoinChannel("g1")
	if err != nil || !removed {
		t.Fatalf("remove join: removed=%v err=%v", removed, err)
	}
}

func TestPollRoundTrip(t *testing.T) {
	store := newTestStore(t)

	poll := Poll{
		ID:       "p1",
		GuildID:  "g1",
		Question: "tabs or spaces",
		Options:  []string{"tabs", "spaces"},
		Votes:    map[string][]int{"u1": {0}},
	}
	if err := store.SavePoll(poll); err != nil {
		t.Fatalf("save poll: %v", err)
	}
	got, ok, err := store.Poll("p1")
	if err != nil || !ok {
		t.Fatalf("get poll: ok=%v err=%v", ok, err)
	}
	if got.Question != poll.Question || len(got.Votes["u1"]) != 1 {
		t.Fatalf("unexpected poll: %+v", got)
	}
}

func Test2048Scores(t *testing.T) {
	store := newTestStore(t)

	if err := store.Append2048Score("u1", "Player", 2048); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Append2048Score("u2", "Other", 128); err != nil {
		t.Fatalf("append: %v", err)
	}
	scores, err := store.Scores2048()
	if err != nil {
		t.Fatalf("scores: %v", err)
	}
	if len(scores) != 2 || scores[0].Score != 2048 {
		t.Fatalf("unexpected scores: %+v", scores)
	}
}

func TestRandomTextsAcceptsBothShapes(t *testing.T) {
	store := newTestStore(t)

	texts, err := store.RandomTexts()
	if err != nil || len(texts) != 0 {
		t.Fatalf("missing file should yield an empty pool: %v err=%v", texts, err)
	}

	write := func(content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(store.Dir(), "random-text.json"), []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	write(`["one", "two"]`)
	texts, err = store.RandomTexts()
	if err != nil || len(texts[""]) != 2 {
		t.Fatalf("list shape: %v err=%v", texts, err)
	}

	write(`{"jokes": ["ha"], "facts": ["hm", "oh"]}`)
	texts, err = store.RandomTexts()
	if err != nil || len(texts["facts"]) != 2 || len(texts["jokes"]) != 1 {
		t.Fatalf("map shape: %v err=%v", texts, err)
	}

	write(`42`)
	if _, err := store.RandomTexts(); err == nil {
		t.Fatal("unsupported shape should error")
	}
}
