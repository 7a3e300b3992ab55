package model

type Player struct {
	ID    string `json:"id"`
	Color Color  `json:"color"`
}

// Seats holds the two sides of a game. An empty ID means the seat is free.
type Seats struct {
	White Player `json:"white"`
	Black Player `json:"black"`
}

// ColorOf returns the color seated by playerID.
func (s Seats) ColorOf(playerID string) (Color, bool) {
	switch {
	case playerID == "":
		return "", false
	case s.White.ID == playerID:
		return White, true
	case s.Black.ID == playerID:
		return Black, true
	}
	return "", false
}

func (s Seats) Full() bool {
	return s.White.ID != "" && s.Black.ID != ""
}
