// Package fun hosts the lighthearted command group: echoed text, greetings
// and random lines drawn from a local text pool.
package fun

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"aurora-bot/internal/storage"

	"go.uber.org/zap"
)

var (
	ErrNoTexts    = errors.New("fun: text pool is empty")
	ErrNoCategory = errors.New("fun: unknown category")
)

var greetings = []string{
	"Hello, %s! 👋",
	"Hi, %s! 😊",
	"Hey there, %s! 🎉",
	"Welcome, %s! ✨",
	"Great to see you, %s! 🌟",
}

type Module struct {
	store  *storage.Store
	logger *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

func New(store *storage.Store, logger *zap.Logger) *Module {
	return NewWithRand(store, logger, rand.New(rand.NewSource(rand.Int63())))
}

func NewWithRand(store *storage.Store, logger *zap.Logger, rng *rand.Rand) *Module {
	return &Module{store: store, logger: logger, rng: rng}
}

func (m *Module) intn(n int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rng.Intn(n)
}

// Greeting returns a random salutation addressed to the given mention.
func (m *Module) Greeting(mention string) string {
	return fmt.Sprintf(greetings[m.intn(len(greetings))], mention)
}

// RandomText picks one entry from the local text pool, optionally limited to
// a category.
func (m *Module) RandomText(category string) (string, error) {
	texts, err := m.store.RandomTexts()
	if err != nil {
		return "", err
	}
	var pool []string
	if category != "" {
		pool = texts[category]
		if len(pool) == 0 {
			return "", ErrNoCategory
		}
	} else {
		for _, list := range texts {
			pool = append(pool, list...)
		}
	}
	if len(pool) == 0 {
		return "", ErrNoTexts
	}
	return pool[m.intn(len(pool))], nil
}

// Categories lists the non-empty categories of the text pool, sorted.
func (m *Module) Categories() ([]string, error) {
	texts, err := m.store.RandomTexts()
	if err != nil {
		return nil, err
	}
	var out []string
	for name, list := range texts {
		if name != "" && len(list) > 0 {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}
