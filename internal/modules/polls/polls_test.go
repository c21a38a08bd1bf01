package polls

import (
	"testing"
	"time"

	"aurora-bot/internal/config"
	"aurora-bot/internal/storage"

	"go.uber.org/zap"
)

func newTestModule(t *testing.T) *Module {
	t.Helper()
	store, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	return New(store, zap.NewNop(), config.DefaultConfig().Colors)
}

func createPoll(t *testing.T, m *Module, multi bool) storage.Poll {
	t.Helper()
	poll, err := m.Create("g1", "c1", "creator", "Creator", "best letter", []string{"a", "b", "c"}, multi, false, 0)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return poll
}

func TestCreateValidatesOptionCount(t *testing.T) {
	m := newTestModule(t)
	if _, err := m.Create("g", "c", "u", "U", "q", []string{"only"}, false, false, 0); err != ErrOptionCount {
		t.Fatalf("err = %v, want ErrOptionCount", err)
	}
	tooMany := make([]string, 11)
	for i := range tooMany {
		tooMany[i] = "x"
	}
	if _, err := m.Create("g", "c", "u", "U", "q", tooMany, false, false, 0); err != ErrOptionCount {
		t.Fatalf("err = %v, want ErrOptionCount", err)
	}
}

func TestSingleChoiceVoteChangeRetract(t *testing.T) {
	m := newTestModule(t)
	poll := createPoll(t, m, false)

	action, _, err := m.Vote(poll.ID, "u1", 0)
	if err != nil || action != ActionVoted {
		t.Fatalf("first vote: action=%v err=%v", action, err)
	}
	action, _, err = m.Vote(poll.ID, "u1", 1)
	if err != nil || action != ActionChanged {
		t.Fatalf("change: action=%v err=%v", action, err)
	}
	action, updated, err := m.Vote(poll.ID, "u1", 1)
	if err != nil || action != ActionRetracted {
		t.Fatalf("retract: action=%v err=%v", action, err)
	}
	if len(updated.Votes) != 0 {
		t.Fatalf("votes should be empty: %v", updated.Votes)
	}
}

func TestMultiChoiceToggle(t *testing.T) {
	m := newTestModule(t)
	poll := createPoll(t, m, true)

	if action, _, _ := m.Vote(poll.ID, "u1", 0); action != ActionVoted {
		t.Fatalf("action = %v", action)
	}
	if action, _, _ := m.Vote(poll.ID, "u1", 2); action != ActionAdded {
		t.Fatalf("action = %v", action)
	}
	action, updated, _ := m.Vote(poll.ID, "u1", 0)
	if action != ActionRemoved {
		t.Fatalf("action = %v", action)
	}
	if got := updated.Votes["u1"]; len(got) != 1 || got[0] != 2 {
		t.Fatalf("votes = %v", got)
	}
}

func TestTally(t *testing.T) {
	m := newTestModule(t)
	poll := createPoll(t, m, true)

	m.Vote(poll.ID, "u1", 0)
	m.Vote(poll.ID, "u1", 1)
	m.Vote(poll.ID, "u2", 1)

	updated, err := m.Get(poll.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	counts := Tally(updated)
	if counts[0] != 1 || counts[1] != 2 || counts[2] != 0 {
		t.Fatalf("counts = %v", counts)
	}
}

func TestClosePermissions(t *testing.T) {
	m := newTestModule(t)
	poll := createPoll(t, m, false)

	if _, err := m.Close(poll.ID, "stranger", false); err != ErrNotPermitted {
		t.Fatalf("err = %v, want ErrNotPermitted", err)
	}
	if _, err := m.Close(poll.ID, "stranger", true); err != nil {
		t.Fatalf("admin close: %v", err)
	}
	if _, _, err := m.Vote(poll.ID, "u1", 0); err != ErrClosed {
		t.Fatalf("vote on closed poll: err = %v", err)
	}
	if _, err := m.Close(poll.ID, "creator", false); err != ErrClosed {
		t.Fatalf("second close: err = %v, want ErrClosed", err)
	}
}

func TestCloseDue(t *testing.T) {
	m := newTestModule(t)
	poll, err := m.Create("g1", "c1", "creator", "Creator", "q", []string{"a", "b"}, false, false, time.Minute)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	closed, err := m.CloseDue(time.Now())
	if err != nil || len(closed) != 0 {
		t.Fatalf("nothing should be due yet: %v err=%v", closed, err)
	}
	closed, err = m.CloseDue(time.Now().Add(2 * time.Minute))
	if err != nil || len(closed) != 1 || closed[0].ID != poll.ID {
		t.Fatalf("poll should close: %v err=%v", closed, err)
	}
	got, err := m.Get(poll.ID)
	if err != nil || !got.Closed {
		t.Fatalf("poll should be marked closed: %+v err=%v", got, err)
	}
}

func TestButtonsLayout(t *testing.T) {
	m := newTestModule(t)
	options := []string{"a", "b", "c", "d", "e", "f", "g"}
	poll, err := m.Create("g1", "c1", "creator", "Creator", "q", options, false, false, 0)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	rows := Buttons(poll, false)
	// 7 options -> rows of 5 and 2, plus the control row.
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
}
