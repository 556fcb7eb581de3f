package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const baseGameType = "Base"

// GameState is the snapshot the server pushes after every change:
// "<GameType>;<GameStatus>;<Player>[<turn>][;<move>...]"
type GameState struct {
	Expansions    []GameOption
	Status        GameStatus
	CurrentPlayer Player
	Turn          int
	Moves         []Movement
}

var turnPattern = regexp.MustCompile(`^(White|Black)\[(\d+)\]$`)

func NewGameState(expansions ...GameOption) *GameState {
	gs := &GameState{
		Status:        StatusNotStarted,
		CurrentPlayer: White,
		Turn:          1,
	}
	for _, option := range AllGameOptions {
		for _, e := range expansions {
			if e == option && option.IsExpansion() {
				gs.Expansions = append(gs.Expansions, option)
			}
		}
	}
	return gs
}

func ParseGameState(raw string) (*GameState, error) {
	fields := strings.Split(strings.TrimSpace(raw), ";")
	if len(fields) < 3 {
		return nil, fmt.Errorf("%w: expected at least 3 fields, got %d", ErrInvalidSnapshot, len(fields))
	}

	expansions, err := parseGameType(fields[0])
	if err != nil {
		return nil, err
	}

	status, ok := parseGameStatus(fields[1])
	if !ok {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidSnapshot, fields[1])
	}

	match := turnPattern.FindStringSubmatch(fields[2])
	if match == nil {
		return nil, fmt.Errorf("%w: bad turn %q", ErrInvalidSnapshot, fields[2])
	}
	turn, err := strconv.Atoi(match[2])
	if err != nil || turn < 1 {
		return nil, fmt.Errorf("%w: bad turn %q", ErrInvalidSnapshot, fields[2])
	}

	gs := &GameState{
		Expansions:    expansions,
		Status:        status,
		CurrentPlayer: Player(match[1]),
		Turn:          turn,
	}

	for _, rawMove := range fields[3:] {
		move, err := ParseMovement(rawMove)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
		}
		gs.Moves = append(gs.Moves, move)
	}

	return gs, nil
}

func parseGameType(raw string) ([]GameOption, error) {
	if raw == baseGameType {
		return nil, nil
	}
	codes, ok := strings.CutPrefix(raw, baseGameType+"+")
	if !ok || codes == "" {
		return nil, fmt.Errorf("%w: unknown game type %q", ErrInvalidSnapshot, raw)
	}

	var expansions []GameOption
	// codes must appear in canonical order, each at most once
	next := 0
	for i := 0; i < len(codes); i++ {
		found := false
		for next < len(AllGameOptions) {
			option := AllGameOptions[next]
			next++
			if code, ok := expansionCodes[option]; ok && code == codes[i] {
				expansions = append(expansions, option)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: unknown game type %q", ErrInvalidSnapshot, raw)
		}
	}
	return expansions, nil
}

func (gs *GameState) gameType() string {
	if len(gs.Expansions) == 0 {
		return baseGameType
	}
	var sb strings.Builder
	sb.WriteString(baseGameType + "+")
	for _, option := range gs.Expansions {
		sb.WriteByte(expansionCodes[option])
	}
	return sb.String()
}

// String serializes the snapshot back into its wire form.
func (gs *GameState) String() string {
	parts := []string{
		gs.gameType(),
		string(gs.Status),
		fmt.Sprintf("%s[%d]", gs.CurrentPlayer, gs.Turn),
	}
	for _, move := range gs.Moves {
		parts = append(parts, move.Notation())
	}
	return strings.Join(parts, ";")
}

func (gs *GameState) HasExpansion(option GameOption) bool {
	for _, e := range gs.Expansions {
		if e == option {
			return true
		}
	}
	return false
}

// Apply records a move for the current player. Placement legality is the
// engine's concern; only turn bookkeeping happens here.
func (gs *GameState) Apply(move Movement) error {
	if gs.Status.IsFinished() {
		return ErrGameFinished
	}
	if !move.Pass && move.Piece.Owner != gs.CurrentPlayer {
		return fmt.Errorf("%w: %s cannot move on %s's turn", ErrInvalidNotation, move.Piece.Notation(), gs.CurrentPlayer)
	}
	if !move.Pass && !gs.bugAvailable(move.Piece.Bug) {
		return fmt.Errorf("%w: %s is not part of this game", ErrInvalidNotation, move.Piece.Notation())
	}

	gs.Moves = append(gs.Moves, move)
	gs.Status = StatusInProgress
	if gs.CurrentPlayer == Black {
		gs.Turn++
	}
	gs.CurrentPlayer = gs.CurrentPlayer.Next()
	return nil
}

// Finish ends the game; a nil winner is a draw.
func (gs *GameState) Finish(winner *Player) {
	switch {
	case winner == nil:
		gs.Status = StatusDraw
	case *winner == White:
		gs.Status = StatusWhiteWins
	default:
		gs.Status = StatusBlackWins
	}
}

func (gs *GameState) bugAvailable(bug Bug) bool {
	switch bug {
	case Mosquito:
		return gs.HasExpansion(OptionMosquito)
	case Ladybug:
		return gs.HasExpansion(OptionLadybug)
	case PillBug:
		return gs.HasExpansion(OptionPillBug)
	}
	return true
}
