package game2048

import (
	"sync"

	"aurora-bot/internal/storage"

	"go.uber.org/zap"
)

type MoveStatus int

const (
	StatusMoved MoveStatus = iota
	StatusNoChange
	StatusGameOver
	StatusNotOwner
	StatusNotFound
)

// Manager tracks active boards keyed by the message that hosts them.
type Manager struct {
	mu     sync.Mutex
	games  map[string]*Game
	store  *storage.Store
	logger *zap.Logger
}

func NewManager(store *storage.Store, logger *zap.Logger) *Manager {
	return &Manager{games: make(map[string]*Game), store: store, logger: logger}
}

func (m *Manager) Start(ownerID string) *Game {
	return NewGame(ownerID)
}

// Bind attaches a game to its host message once the message exists.
func (m *Manager) Bind(messageID string, game *Game) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[messageID] = game
}

func (m *Manager) Get(messageID string) (*Game, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	game, ok := m.games[messageID]
	return game, ok
}

// Move applies a button press. Only the owner may move; a finished game is
// scored, persisted, and dropped from the session table. The manager lock
// covers the whole board mutation: every button press arrives on its own
// gateway goroutine.
func (m *Manager) Move(messageID, userID, userName string, dir Direction) (*Game, MoveStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	game, ok := m.games[messageID]
	if !ok {
		return nil, StatusNotFound
	}
	if game.OwnerID != userID {
		return game, StatusNotOwner
	}
	moved := game.Move(dir)
	if game.Over {
		m.finishLocked(messageID, userID, userName, game)
		return game, StatusGameOver
	}
	if !moved {
		return game, StatusNoChange
	}
	return game, StatusMoved
}

// Quit ends a game early, recording its score.
func (m *Manager) Quit(messageID, userID, userName string) (*Game, MoveStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	game, ok := m.games[messageID]
	if !ok {
		return nil, StatusNotFound
	}
	if game.OwnerID != userID {
		return game, StatusNotOwner
	}
	game.Over = true
	m.finishLocked(messageID, userID, userName, game)
	return game, StatusGameOver
}

// finishLocked expects m.mu held.
func (m *Manager) finishLocked(messageID, userID, userName string, game *Game) {
	delete(m.games, messageID)
	if err := m.store.Append2048Score(userID, userName, game.Score); err != nil {
		m.logger.Warn("2048 score save failed", zap.Error(err))
	}
}
