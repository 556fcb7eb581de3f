package domain

import (
	"fmt"
	"strings"
)

type Bug byte

const (
	Queen       Bug = 'Q'
	Spider      Bug = 'S'
	Beetle      Bug = 'B'
	Grasshopper Bug = 'G'
	Ant         Bug = 'A'
	Mosquito    Bug = 'M'
	Ladybug     Bug = 'L'
	PillBug     Bug = 'P'
)

// how many of each bug a player holds; bugs with a single copy carry no index
var bugCounts = map[Bug]int{
	Queen:       1,
	Spider:      2,
	Beetle:      2,
	Grasshopper: 3,
	Ant:         3,
	Mosquito:    1,
	Ladybug:     1,
	PillBug:     1,
}

type Piece struct {
	Owner Player
	Bug   Bug
	Index int
}

func (p Piece) Notation() string {
	if bugCounts[p.Bug] == 1 {
		return p.Owner.notationPrefix() + string(p.Bug)
	}
	return fmt.Sprintf("%s%c%d", p.Owner.notationPrefix(), p.Bug, p.Index)
}

func ParsePiece(raw string) (Piece, error) {
	if len(raw) < 2 || len(raw) > 3 {
		return Piece{}, fmt.Errorf("%w: piece %q", ErrInvalidNotation, raw)
	}

	var piece Piece
	switch raw[0] {
	case 'w':
		piece.Owner = White
	case 'b':
		piece.Owner = Black
	default:
		return Piece{}, fmt.Errorf("%w: piece %q", ErrInvalidNotation, raw)
	}

	piece.Bug = Bug(raw[1])
	count, ok := bugCounts[piece.Bug]
	if !ok {
		return Piece{}, fmt.Errorf("%w: unknown bug in %q", ErrInvalidNotation, raw)
	}

	if count == 1 {
		if len(raw) != 2 {
			return Piece{}, fmt.Errorf("%w: piece %q takes no index", ErrInvalidNotation, raw)
		}
		return piece, nil
	}

	if len(raw) != 3 || raw[2] < '1' || int(raw[2]-'0') > count {
		return Piece{}, fmt.Errorf("%w: piece %q needs an index 1-%d", ErrInvalidNotation, raw, count)
	}
	piece.Index = int(raw[2] - '0')
	return piece, nil
}

// Direction places a moved piece relative to its reference piece.
type Direction string

const (
	OnTop     Direction = ""
	West      Direction = "-."
	NorthWest Direction = "\\."
	SouthWest Direction = "/."
	East      Direction = ".-"
	NorthEast Direction = "./"
	SouthEast Direction = ".\\"
)

// Movement is a single move in engine notation: "wQ", "bG1 -wQ", "wB1 wQ" or "pass".
type Movement struct {
	Pass      bool
	Piece     Piece
	Reference *Piece
	Direction Direction
}

const passNotation = "pass"

func PassMovement() Movement {
	return Movement{Pass: true}
}

func (m Movement) Notation() string {
	if m.Pass {
		return passNotation
	}
	if m.Reference == nil {
		return m.Piece.Notation()
	}

	ref := m.Reference.Notation()
	dir := string(m.Direction)
	switch m.Direction {
	case West, NorthWest, SouthWest:
		ref = dir[:1] + ref
	case East, NorthEast, SouthEast:
		ref = ref + dir[1:]
	}
	return m.Piece.Notation() + " " + ref
}

func (m Movement) String() string {
	return m.Notation()
}

func ParseMovement(raw string) (Movement, error) {
	raw = strings.TrimSpace(raw)
	if raw == passNotation {
		return PassMovement(), nil
	}

	fields := strings.Fields(raw)
	if len(fields) == 0 || len(fields) > 2 {
		return Movement{}, fmt.Errorf("%w: %q", ErrInvalidNotation, raw)
	}

	piece, err := ParsePiece(fields[0])
	if err != nil {
		return Movement{}, err
	}
	movement := Movement{Piece: piece}
	if len(fields) == 1 {
		return movement, nil
	}

	target := fields[1]
	direction := OnTop
	switch {
	case strings.HasPrefix(target, "-"):
		direction, target = West, target[1:]
	case strings.HasPrefix(target, "\\"):
		direction, target = NorthWest, target[1:]
	case strings.HasPrefix(target, "/"):
		direction, target = SouthWest, target[1:]
	case strings.HasSuffix(target, "-"):
		direction, target = East, target[:len(target)-1]
	case strings.HasSuffix(target, "/"):
		direction, target = NorthEast, target[:len(target)-1]
	case strings.HasSuffix(target, "\\"):
		direction, target = SouthEast, target[:len(target)-1]
	}

	reference, err := ParsePiece(target)
	if err != nil {
		return Movement{}, err
	}
	movement.Reference = &reference
	movement.Direction = direction
	return movement, nil
}
