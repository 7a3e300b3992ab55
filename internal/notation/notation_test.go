package notation

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/benbeisheim/chess-backend/internal/model"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func sq(t *testing.T, name string) model.Position {
	t.Helper()
	p, err := ParseSquare(name)
	if err != nil {
		t.Fatalf("ParseSquare(%q): %v", name, err)
	}
	return p
}

func play(t *testing.T, s model.GameState, sans ...string) model.GameState {
	t.Helper()
	for _, san := range sans {
		m, err := ParseMove(s.Board, s.ToMove, san)
		if err != nil {
			t.Fatalf("ParseMove(%q): %v", san, err)
		}
		if m.Promotion == "" {
			if p, _ := s.Board.At(m.From); model.CanPromote(p, m.To) {
				m.Promotion = model.Queen
			}
		}
		next, err := s.ApplyTurn(m)
		if err != nil {
			t.Fatalf("ApplyTurn(%q): %v", san, err)
		}
		s = next
	}
	return s
}

// placement flattens b to the kind and color on each square.
func placement(b model.Board) map[string]string {
	out := map[string]string{}
	for _, color := range []model.Color{model.White, model.Black} {
		for _, p := range b.Pieces(color) {
			out[SquareName(p.Position)] = string(p.Color) + " " + string(p.Type)
		}
	}
	return out
}

func TestSquareNames(t *testing.T) {
	tests := []struct {
		name string
		pos  model.Position
	}{
		{"a8", model.Position{Row: 0, Col: 0}},
		{"h8", model.Position{Row: 0, Col: 7}},
		{"a1", model.Position{Row: 7, Col: 0}},
		{"e4", model.Position{Row: 4, Col: 4}},
	}
	for _, tt := range tests {
		if got := SquareName(tt.pos); got != tt.name {
			t.Errorf("SquareName(%v) = %q, want %q", tt.pos, got, tt.name)
		}
		if got := sq(t, tt.name); got != tt.pos {
			t.Errorf("ParseSquare(%q) = %v, want %v", tt.name, got, tt.pos)
		}
	}
	for _, bad := range []string{"", "i1", "a9", "a0", "e44", "E4"} {
		if _, err := ParseSquare(bad); !errors.Is(err, ErrInvalidSquare) {
			t.Errorf("ParseSquare(%q): err = %v, want ErrInvalidSquare", bad, err)
		}
	}
}

func TestFEN(t *testing.T) {
	s := model.NewGameState()
	if got := FEN(s.Board, s.ToMove, 1); got != startFEN {
		t.Errorf("initial FEN = %q", got)
	}

	s = play(t, s, "e4")
	want := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1"
	if got := FEN(s.Board, s.ToMove, 1); got != want {
		t.Errorf("FEN after e4 = %q, want %q", got, want)
	}

	s = play(t, s, "e5", "Ke2", "Nf6", "Ke1", "Rg8")
	want = "rnbqkbr1/pppp1ppp/5n2/4p3/4P3/8/PPPP1PPP/RNBQKBNR w q - 0 4"
	if got := FEN(s.Board, s.ToMove, 4); got != want {
		t.Errorf("FEN after king walk = %q, want %q", got, want)
	}
}

func TestParseFEN(t *testing.T) {
	board, toMove, err := ParseFEN(startFEN)
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	if toMove != model.White {
		t.Errorf("to move = %s", toMove)
	}
	if diff := cmp.Diff(placement(model.InitialBoard()), placement(board)); diff != "" {
		t.Errorf("placement mismatch (-want +got):\n%s", diff)
	}

	kiwipete := "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"
	board, toMove, err = ParseFEN(kiwipete)
	if err != nil {
		t.Fatalf("ParseFEN(kiwipete): %v", err)
	}
	if got := FEN(board, toMove, 1); got != kiwipete {
		t.Errorf("round trip = %q", got)
	}
	if got := len(model.LegalMovesForColor(board, toMove)); got != 48 {
		t.Errorf("kiwipete has %d legal moves, want 48", got)
	}

	board, _, err = ParseFEN("4k3/8/8/8/8/8/4P3/R3K2R b K - 3 20")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	if p, _ := board.At(sq(t, "a1")); !p.HasMoved {
		t.Error("a1 rook without a right should count as moved")
	}
	if p, _ := board.At(sq(t, "h1")); p.HasMoved {
		t.Error("h1 rook with the K right should be unmoved")
	}
	if p, _ := board.At(sq(t, "e2")); p.HasMoved {
		t.Error("pawn on its start rank should be unmoved")
	}

	for _, bad := range []string{
		"",
		"8/8/8/8/8/8/8 w - - 0 1",
		"rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"rnbqkbnr/ppppxppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KZ - 0 1",
	} {
		if _, _, err := ParseFEN(bad); !errors.Is(err, ErrInvalidFEN) {
			t.Errorf("ParseFEN(%q): err = %v, want ErrInvalidFEN", bad, err)
		}
	}
}

func TestSAN(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		from string
		to   string
		kind model.PieceType
		want string
	}{
		{"pawn push", startFEN, "e2", "e4", "", "e4"},
		{"knight", startFEN, "g1", "f3", "", "Nf3"},
		{"pawn capture", "rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 2", "e4", "d5", "", "exd5"},
		{"king side castle", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "e1", "g1", "", "O-O"},
		{"queen side castle", "r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1", "e8", "c8", "", "O-O-O"},
		{"file disambiguation", "4k3/8/8/8/8/8/8/1N2KN2 w - - 0 1", "b1", "d2", "", "Nbd2"},
		{"rank disambiguation", "4k3/8/8/R7/8/8/8/R3K3 w - - 0 1", "a1", "a3", "", "R1a3"},
		{"capture with check", "4k3/8/8/8/8/8/4r3/4RK2 w - - 0 1", "e1", "e2", "", "Rxe2+"},
		{"promotion", "8/4P3/8/8/8/8/k7/4K3 w - - 0 1", "e7", "e8", model.Queen, "e8=Q"},
		{"under promotion", "8/4P3/8/8/8/8/k7/4K3 w - - 0 1", "e7", "e8", model.Knight, "e8=N"},
		{"check", "4k3/8/8/8/8/8/8/R3K3 w Q - 0 1", "a1", "a8", "", "Ra8+"},
		{"mate", "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1", "a1", "a8", "", "Ra8#"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board, _, err := ParseFEN(tt.fen)
			if err != nil {
				t.Fatalf("ParseFEN: %v", err)
			}
			m := model.Move{From: sq(t, tt.from), To: sq(t, tt.to), Promotion: tt.kind}
			if got := SAN(board, m); got != tt.want {
				t.Errorf("SAN = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseMove(t *testing.T) {
	castleFEN := "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1"
	promoFEN := "8/4P3/8/8/8/8/k7/4K3 w - - 0 1"
	tests := []struct {
		name  string
		fen   string
		input string
		want  model.Move
	}{
		{"san pawn", startFEN, "e4", model.Move{From: model.Position{Row: 6, Col: 4}, To: model.Position{Row: 4, Col: 4}}},
		{"san knight with check mark", startFEN, "Nf3+", model.Move{From: model.Position{Row: 7, Col: 6}, To: model.Position{Row: 5, Col: 5}}},
		{"long form", startFEN, "g1f3", model.Move{From: model.Position{Row: 7, Col: 6}, To: model.Position{Row: 5, Col: 5}}},
		{"long form hyphen", startFEN, "e2-e4", model.Move{From: model.Position{Row: 6, Col: 4}, To: model.Position{Row: 4, Col: 4}}},
		{"quoted with spaces", startFEN, ` "d4" `, model.Move{From: model.Position{Row: 6, Col: 3}, To: model.Position{Row: 4, Col: 3}}},
		{"castle letters", castleFEN, "O-O", model.Move{From: model.Position{Row: 7, Col: 4}, To: model.Position{Row: 7, Col: 6}}},
		{"castle digits", castleFEN, "0-0-0", model.Move{From: model.Position{Row: 7, Col: 4}, To: model.Position{Row: 7, Col: 2}}},
		{"san promotion", promoFEN, "e8=R", model.Move{From: model.Position{Row: 1, Col: 4}, To: model.Position{Row: 0, Col: 4}, Promotion: model.Rook}},
		{"san promotion without equals", promoFEN, "e8Q", model.Move{From: model.Position{Row: 1, Col: 4}, To: model.Position{Row: 0, Col: 4}, Promotion: model.Queen}},
		{"long promotion", promoFEN, "e7e8n", model.Move{From: model.Position{Row: 1, Col: 4}, To: model.Position{Row: 0, Col: 4}, Promotion: model.Knight}},
		{"bare promotion square", promoFEN, "e8", model.Move{From: model.Position{Row: 1, Col: 4}, To: model.Position{Row: 0, Col: 4}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board, toMove, err := ParseFEN(tt.fen)
			if err != nil {
				t.Fatalf("ParseFEN: %v", err)
			}
			got, err := ParseMove(board, toMove, tt.input)
			if err != nil {
				t.Fatalf("ParseMove(%q): %v", tt.input, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("move mismatch (-want +got):\n%s", diff)
			}
		})
	}

	board := model.InitialBoard()
	for _, bad := range []string{"", "Ke2", "e5", "e2e5", "e2e4q", "g1f3n", "Nf6", "castle", "I choose e4"} {
		if _, err := ParseMove(board, model.White, bad); !errors.Is(err, ErrUnknownMove) {
			t.Errorf("ParseMove(%q): err = %v, want ErrUnknownMove", bad, err)
		}
	}
	afterE4, _, err := ParseFEN("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseMove(afterE4, model.Black, "e7e5q"); !errors.Is(err, ErrUnknownMove) {
		t.Errorf("ParseMove(e7e5q): err = %v, want ErrUnknownMove", err)
	}
}

func TestSANRoundTripsThroughParseMove(t *testing.T) {
	s := play(t, model.NewGameState(), "e4", "e5", "Nf3", "Nc6", "Bb5", "a6", "Ba4", "Nf6", "O-O")
	for _, m := range s.AllLegalMoves() {
		san := SAN(s.Board, m)
		got, err := ParseMove(s.Board, s.ToMove, san)
		if err != nil {
			t.Fatalf("ParseMove(%q): %v", san, err)
		}
		if !got.SameSquares(m) {
			t.Errorf("ParseMove(%q) = %v -> %v, want %v -> %v", san, got.From, got.To, m.From, m.To)
		}
	}
}
