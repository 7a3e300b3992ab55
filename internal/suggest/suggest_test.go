package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/notation"
)

type suggestFunc func(ctx context.Context, req Request) (string, error)

func (f suggestFunc) Suggest(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

func fixed(text string) Suggester {
	return suggestFunc(func(context.Context, Request) (string, error) { return text, nil })
}

func stateFrom(t *testing.T, fen string) model.GameState {
	t.Helper()
	board, toMove, err := notation.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	return model.NewGameStateFrom(board, toMove)
}

func sq(t *testing.T, name string) model.Position {
	t.Helper()
	p, err := notation.ParseSquare(name)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestParseDifficulty(t *testing.T) {
	for in, want := range map[string]Difficulty{"": Medium, "easy": Easy, "medium": Medium, "hard": Hard} {
		got, err := ParseDifficulty(in)
		if err != nil || got != want {
			t.Errorf("ParseDifficulty(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseDifficulty("grandmaster"); !errors.Is(err, ErrUnknownDifficulty) {
		t.Errorf("err = %v, want ErrUnknownDifficulty", err)
	}
}

func TestRandom(t *testing.T) {
	r := NewRandom(1, 2)
	moves := []string{"e4", "d4", "Nf3"}
	for i := 0; i < 20; i++ {
		got, err := r.Suggest(context.Background(), Request{Moves: moves})
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains("e4 d4 Nf3", got) {
			t.Fatalf("suggested %q, not in %v", got, moves)
		}
	}
	if _, err := r.Suggest(context.Background(), Request{}); !errors.Is(err, ErrNoLegalMoves) {
		t.Errorf("err = %v, want ErrNoLegalMoves", err)
	}
}

func chatServer(t *testing.T, status int, content string, seen *chatRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		if seen != nil {
			if err := json.NewDecoder(r.Body).Decode(seen); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.WriteHeader(status)
		fmt.Fprint(w, content)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRemoteSuggest(t *testing.T) {
	var seen chatRequest
	srv := chatServer(t, http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"  Nf3\n"}}]}`, &seen)
	r := NewRemote(srv.URL, "secret", "test-model", 2*time.Second)

	req := Request{FEN: "fen-snapshot", Moves: []string{"e4", "Nf3"}, Difficulty: Hard}
	got, err := r.Suggest(context.Background(), req)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if got != "Nf3" {
		t.Errorf("got %q, want Nf3", got)
	}
	if seen.Model != "test-model" || seen.Temperature != 0.5 || seen.MaxTokens != maxReplyTokens {
		t.Errorf("request = %+v", seen)
	}
	if len(seen.Messages) != 2 || !strings.Contains(seen.Messages[1].Content, "fen-snapshot") ||
		!strings.Contains(seen.Messages[1].Content, `["e4","Nf3"]`) {
		t.Errorf("messages = %+v", seen.Messages)
	}
}

func TestRemoteSuggestMalformed(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{}`},
		{"not json", http.StatusOK, `e4`},
		{"no choices", http.StatusOK, `{"choices":[]}`},
		{"empty content", http.StatusOK, `{"choices":[{"message":{"content":"   "}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := chatServer(t, tt.status, tt.body, nil)
			r := NewRemote(srv.URL, "secret", "m", 2*time.Second)
			_, err := r.Suggest(context.Background(), Request{Moves: []string{"e4"}})
			if !errors.Is(err, ErrMalformedReply) {
				t.Errorf("err = %v, want ErrMalformedReply", err)
			}
		})
	}
}

func TestRemoteSuggestHonoursContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	r := NewRemote(srv.URL, "secret", "m", 5*time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := r.Suggest(ctx, Request{Moves: []string{"e4"}}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context.DeadlineExceeded", err)
	}
}

func TestRemoteSuggestExpiredContext(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	r := NewRemote(srv.URL, "secret", "m", 5*time.Second)
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	if _, err := r.Suggest(ctx, Request{Moves: []string{"e4"}}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context.DeadlineExceeded", err)
	}
	if n := hits.Load(); n != 0 {
		t.Errorf("server called %d times after the deadline passed", n)
	}
}

func TestChooserAcceptsLegalSuggestion(t *testing.T) {
	var offered Request
	s := suggestFunc(func(_ context.Context, req Request) (string, error) {
		offered = req
		return "Nf3", nil
	})
	c := NewChooser(s, NewRandom(1, 1))

	got, err := c.Choose(context.Background(), model.NewGameState(), Easy)
	if err != nil {
		t.Fatal(err)
	}
	want := model.Move{From: sq(t, "g1"), To: sq(t, "f3")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("move mismatch (-want +got):\n%s", diff)
	}
	if len(offered.Moves) != 20 || offered.Difficulty != Easy {
		t.Errorf("offered %d moves at %q", len(offered.Moves), offered.Difficulty)
	}
	if offered.FEN != "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1" {
		t.Errorf("FEN = %q", offered.FEN)
	}
}

func TestChooserFallsBack(t *testing.T) {
	const afterE4 = "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1"
	tests := []struct {
		name string
		fen  string
		s    Suggester
	}{
		{"illegal move", "", fixed("e5")},
		{"gibberish", "", fixed("I would play the Sicilian")},
		{"suggester error", "", suggestFunc(func(context.Context, Request) (string, error) {
			return "", errors.New("unavailable")
		})},
		{"promotion suffix on a plain push", "", fixed("e2e4q")},
		{"promotion suffix for black", afterE4, fixed("e7e5q")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := model.NewGameState()
			if tt.fen != "" {
				state = stateFrom(t, tt.fen)
			}
			c := NewChooser(tt.s, NewRandom(4, 2))
			got, err := c.Choose(context.Background(), state, Medium)
			if err != nil {
				t.Fatal(err)
			}
			if !model.IsLegalMove(state.Board, got) {
				t.Errorf("fallback %v -> %v is not legal", got.From, got.To)
			}
			found := false
			for _, m := range state.AllLegalMoves() {
				found = found || m.SameSquares(got)
			}
			if !found {
				t.Errorf("fallback %v not among offered moves", got)
			}
			if _, err := state.ApplyTurn(got); err != nil {
				t.Errorf("fallback %v cannot be played: %v", got, err)
			}
		})
	}
}

func TestChooserPromotion(t *testing.T) {
	state := stateFrom(t, "8/4P3/8/8/8/8/k7/4K3 w - - 0 1")
	tests := []struct {
		suggestion string
		want       model.PieceType
	}{
		{"e8=Q", model.Queen},
		{"e8", model.Queen},
		{"e8=N", model.Knight},
	}
	for _, tt := range tests {
		c := NewChooser(fixed(tt.suggestion), NewRandom(1, 1))
		got, err := c.Choose(context.Background(), state, Hard)
		if err != nil {
			t.Fatal(err)
		}
		if got.To != sq(t, "e8") || got.Promotion != tt.want {
			t.Errorf("Choose(%q) = %+v, want promotion to %s", tt.suggestion, got, tt.want)
		}
	}

	// The fallback also completes promotions.
	onlyPromotion := stateFrom(t, "k7/4P3/K7/8/8/8/8/8 w - - 0 1")
	c := NewChooser(fixed("nonsense"), NewRandom(9, 9))
	for i := 0; i < 20; i++ {
		got, err := c.Choose(context.Background(), onlyPromotion, Easy)
		if err != nil {
			t.Fatal(err)
		}
		if got.From == sq(t, "e7") && got.Promotion != model.Queen {
			t.Errorf("fallback promotion = %q, want queen", got.Promotion)
		}
	}
}

func TestChooserNoLegalMoves(t *testing.T) {
	mated := stateFrom(t, "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	called := false
	c := NewChooser(suggestFunc(func(context.Context, Request) (string, error) {
		called = true
		return "", nil
	}), NewRandom(1, 1))
	if _, err := c.Choose(context.Background(), mated, Easy); !errors.Is(err, ErrNoLegalMoves) {
		t.Errorf("err = %v, want ErrNoLegalMoves", err)
	}
	if called {
		t.Error("suggester consulted with no legal moves")
	}
}
