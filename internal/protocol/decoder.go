package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/autoreleasefool/hive-for-ios-sub001/internal/domain"
	"github.com/google/uuid"
)

type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrEmptyLine   Error = "empty line"
	ErrUnparseable Error = "unparseable server message"
)

// Decoder turns raw server lines into ServerMessages. It holds no state
// beyond the engine used for snapshots and option names.
type Decoder struct {
	Engine domain.Engine
}

func NewDecoder(engine domain.Engine) *Decoder {
	if engine == nil {
		engine = domain.UHPEngine{}
	}
	return &Decoder{Engine: engine}
}

// Decode maps one line to exactly one ServerMessage. Failures wrap
// ErrUnparseable, or ErrEmptyLine for blank input, and never panic.
func (d *Decoder) Decode(line string) (ServerMessage, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, ErrEmptyLine
	}

	command, ok := ParseCommand(line)
	if !ok {
		return nil, unparseable(line, "unknown command")
	}

	switch command {
	case CommandState:
		return d.decodeState(line)
	case CommandSet:
		return d.decodeOption(line)
	case CommandReady:
		id, ok := UserIDAfter(line)
		if !ok {
			return nil, unparseable(line, "bad user id")
		}
		ready, ok := TrailingBool(line)
		if !ok || len(strings.Fields(line)) != 3 {
			return nil, unparseable(line, "bad ready flag")
		}
		return PlayerReady{UserID: id, Ready: ready}, nil
	case CommandMessage:
		id, ok := UserIDAfter(line)
		if !ok {
			return nil, unparseable(line, "bad user id")
		}
		_, text := splitFirst(Remainder(line))
		return ChatMessage{UserID: id, Text: text}, nil
	case CommandForfeit, CommandJoin, CommandLeave:
		id, ok := UserIDAfter(line)
		if !ok || len(strings.Fields(line)) != 2 {
			return nil, unparseable(line, "bad user id")
		}
		switch command {
		case CommandForfeit:
			return Forfeit{UserID: id}, nil
		case CommandJoin:
			return PlayerJoined{UserID: id}, nil
		default:
			return PlayerLeft{UserID: id}, nil
		}
	case CommandSpectatorJoin, CommandSpectatorLeave:
		name := Remainder(line)
		if name == "" {
			return nil, unparseable(line, "missing spectator name")
		}
		if command == CommandSpectatorJoin {
			return SpectatorJoined{Name: name}, nil
		}
		return SpectatorLeft{Name: name}, nil
	case CommandWinner:
		if Remainder(line) == "" {
			return GameOver{}, nil
		}
		id, ok := UserIDAfter(line)
		if !ok || len(strings.Fields(line)) != 2 {
			return nil, unparseable(line, "bad winner id")
		}
		return GameOver{Winner: &id}, nil
	case CommandError:
		return ErrorMessage{Err: decodeServerError(line)}, nil
	}

	return nil, unparseable(line, "unhandled command")
}

func (d *Decoder) decodeState(line string) (ServerMessage, error) {
	snapshot := Remainder(line)
	if snapshot == "" {
		return nil, unparseable(line, "missing snapshot")
	}
	state, err := d.Engine.ParseGameState(snapshot)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	return GameStateMessage{State: state}, nil
}

func (d *Decoder) decodeOption(line string) (ServerMessage, error) {
	fields := strings.Fields(line)
	value, ok := TrailingBool(line)
	if !ok || len(fields) < 3 {
		return nil, unparseable(line, "bad option value")
	}

	name := strings.Join(fields[1:len(fields)-1], " ")
	if option, ok := d.Engine.GameOption(name); ok {
		return OptionChanged{Option: GameOptionKind(option), Value: value}, nil
	}
	return OptionChanged{Option: CustomOptionKind(name), Value: value}, nil
}

// decodeServerError reads "ERR <uuid|null> <code> [description...]". Any
// stage that fails collapses to an unknown error carrying the raw remainder.
func decodeServerError(line string) ServerError {
	rest := Remainder(line)
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return unknownServerError(rest)
	}

	var userID *uuid.UUID
	if fields[1] != nullUserID {
		id, err := uuid.Parse(fields[1])
		if err != nil {
			return unknownServerError(rest)
		}
		userID = &id
	}

	rawCode, err := strconv.Atoi(fields[2])
	if err != nil {
		return unknownServerError(rest)
	}

	// description keeps its inner spacing
	_, afterUser := splitFirst(rest)
	_, description := splitFirst(afterUser)

	return ServerError{
		UserID:      userID,
		Code:        errorCodeFrom(rawCode),
		Description: description,
	}
}

func unparseable(line, reason string) error {
	return fmt.Errorf("%w: %s in %q", ErrUnparseable, reason, line)
}
