package suggest

import (
	"context"
	"math/rand/v2"
	"sync"
)

// Request is the snapshot handed to a Suggester: the position as FEN and the
// legal moves of the side to move in SAN.
type Request struct {
	FEN        string
	Moves      []string
	Difficulty Difficulty
}

type Suggester interface {
	Suggest(ctx context.Context, req Request) (string, error)
}

// Random suggests a uniformly random entry of the request's move list.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandom(seed1, seed2 uint64) *Random {
	return &Random{rng: rand.New(rand.NewPCG(seed1, seed2))}
}

func (r *Random) Suggest(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(req.Moves) == 0 {
		return "", ErrNoLegalMoves
	}
	return req.Moves[r.intN(len(req.Moves))], nil
}

func (r *Random) intN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(n)
}
