// Package suggest picks a move for the computer side. A Suggester proposes
// move text for a position; a Chooser checks the proposal against the legal
// moves it offered and falls back to a random legal move when the proposal
// cannot be used.
package suggest

import (
	"errors"
	"fmt"
)

var (
	ErrNoLegalMoves       = errors.New("no legal moves")
	ErrMalformedReply     = errors.New("malformed suggestion reply")
	ErrSuggestionRejected = errors.New("suggestion is not a legal move")
	ErrUnknownDifficulty  = errors.New("unknown difficulty")
)

type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

type preset struct {
	temperature float64
	prompt      string
}

const replyRule = `You must pick one move from the list you are given and answer ONLY with its algebraic notation.
Valid answers look like "e4", "Nf3", "Bxe5", "O-O" or "O-O-O".
Do not add any other text or explanation.`

var presets = map[Difficulty]preset{
	Easy: {
		temperature: 0.9,
		prompt: `You are a beginner level chess engine.
` + replyRule + `

Rules:
- Pick simple moves
- Do not analyse too much
- Prefer obvious captures
- Avoid complex plans`,
	},
	Medium: {
		temperature: 0.7,
		prompt: `You are an intermediate level chess engine.
` + replyRule + `

Rules:
- Analyse moves moderately
- Look for simple tactics
- Protect your pieces
- Control the centre`,
	},
	Hard: {
		temperature: 0.5,
		prompt: `You are an expert chess engine playing at grandmaster strength (2700+ Elo).
Judge every position by strategic and tactical principles, calculate several
moves deep and weigh positional, material and dynamic factors.
Play the best available move every turn.
` + replyRule,
	},
}

// ParseDifficulty maps s to a Difficulty. The empty string selects Medium.
func ParseDifficulty(s string) (Difficulty, error) {
	if s == "" {
		return Medium, nil
	}
	d := Difficulty(s)
	if _, ok := presets[d]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
	}
	return d, nil
}

func presetFor(d Difficulty) preset {
	if p, ok := presets[d]; ok {
		return p
	}
	return presets[Medium]
}
