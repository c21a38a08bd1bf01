// Package game2048 implements the 2048 minigame played through message
// buttons. A move slides and merges the 4x4 board, then a new tile spawns in
// a random empty cell (2, or 4 ten percent of the time).
package game2048

import (
	"fmt"
	"math/rand"
	"strings"
)

const size = 4

type Board [size][size]int

type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

type Game struct {
	Board   Board
	Score   int
	Over    bool
	OwnerID string
	rng     *rand.Rand
}

func NewGame(ownerID string) *Game {
	return NewGameWithRand(ownerID, rand.New(rand.NewSource(rand.Int63())))
}

func NewGameWithRand(ownerID string, rng *rand.Rand) *Game {
	g := &Game{OwnerID: ownerID, rng: rng}
	g.spawn()
	g.spawn()
	return g
}

// Move applies one direction and reports whether the board changed. A new
// tile only spawns after an effective move.
func (g *Game) Move(dir Direction) bool {
	if g.Over {
		return false
	}
	rotations := map[Direction]int{Left: 0, Up: 1, Right: 2, Down: 3}[dir]
	board := g.Board
	for i := 0; i < rotations; i++ {
		board = rotate(board)
	}

	moved := false
	for row := 0; row < size; row++ {
		line, gained, changed := slideLine(board[row])
		board[row] = line
		g.Score += gained
		if changed {
			moved = true
		}
	}

	for i := 0; i < (4-rotations)%4; i++ {
		board = rotate(board)
	}
	if !moved {
		return false
	}
	g.Board = board
	g.spawn()
	if g.gameOver() {
		g.Over = true
	}
	return true
}

// slideLine compresses a row to the left, merging each equal pair once.
func slideLine(line [size]int) ([size]int, int, bool) {
	var packed []int
	for _, v := range line {
		if v != 0 {
			packed = append(packed, v)
		}
	}
	var out [size]int
	gained := 0
	idx := 0
	for i := 0; i < len(packed); i++ {
		if i+1 < len(packed) && packed[i] == packed[i+1] {
			out[idx] = packed[i] * 2
			gained += out[idx]
			i++
		} else {
			out[idx] = packed[i]
		}
		idx++
	}
	return out, gained, out != line
}

// rotate turns the board 90 degrees counterclockwise, so that one slideLine
// pass serves all four directions.
func rotate(b Board) Board {
	var out Board
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			out[size-1-c][r] = b[r][c]
		}
	}
	return out
}

func (g *Game) spawn() {
	var empty [][2]int
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			if g.Board[r][c] == 0 {
				empty = append(empty, [2]int{r, c})
			}
		}
	}
	if len(empty) == 0 {
		return
	}
	cell := empty[g.rng.Intn(len(empty))]
	value := 2
	if g.rng.Float64() < 0.1 {
		value = 4
	}
	g.Board[cell[0]][cell[1]] = value
}

func (g *Game) gameOver() bool {
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			if g.Board[r][c] == 0 {
				return false
			}
			if c+1 < size && g.Board[r][c] == g.Board[r][c+1] {
				return false
			}
			if r+1 < size && g.Board[r][c] == g.Board[r+1][c] {
				return false
			}
		}
	}
	return true
}

// Render draws the board as fixed-width text for a code block.
func (g *Game) Render() string {
	var b strings.Builder
	divider := "+------+------+------+------+\n"
	b.WriteString(divider)
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			if g.Board[r][c] == 0 {
				b.WriteString("|      ")
			} else {
				fmt.Fprintf(&b, "| %4d ", g.Board[r][c])
			}
		}
		b.WriteString("|\n")
		b.WriteString(divider)
	}
	return b.String()
}
