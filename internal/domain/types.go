package domain

// Player is the side a piece or turn belongs to
type Player string

const (
	White Player = "White"
	Black Player = "Black"
)

func (p Player) Next() Player {
	if p == White {
		return Black
	}
	return White
}

// prefix used for pieces in move notation
func (p Player) notationPrefix() string {
	if p == White {
		return "w"
	}
	return "b"
}

// to represent the game status
type GameStatus string

const (
	StatusNotStarted GameStatus = "NotStarted"
	StatusInProgress GameStatus = "InProgress"
	StatusDraw       GameStatus = "Draw"
	StatusWhiteWins  GameStatus = "WhiteWins"
	StatusBlackWins  GameStatus = "BlackWins"
)

func (s GameStatus) IsFinished() bool {
	return s == StatusDraw || s == StatusWhiteWins || s == StatusBlackWins
}

func parseGameStatus(raw string) (GameStatus, bool) {
	switch GameStatus(raw) {
	case StatusNotStarted, StatusInProgress, StatusDraw, StatusWhiteWins, StatusBlackWins:
		return GameStatus(raw), true
	}
	return "", false
}

// basic error that can occur
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrInvalidSnapshot Error = "invalid game state snapshot"
	ErrInvalidNotation Error = "invalid move notation"
	ErrGameFinished    Error = "game is already finished"
)
