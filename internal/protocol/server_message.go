package protocol

import (
	"strconv"
	"strings"

	"github.com/autoreleasefool/hive-for-ios-sub001/internal/domain"
	"github.com/google/uuid"
)

// ServerMessage is one decoded inbound line. Implementations are the types in
// this file only.
type ServerMessage interface {
	Command() Command
	line() string
}

// OptionKind names the option carried by a SET line. Options the engine does
// not know about are kept verbatim in Custom.
type OptionKind struct {
	Game   domain.GameOption
	Custom string
}

func GameOptionKind(option domain.GameOption) OptionKind {
	return OptionKind{Game: option}
}

func CustomOptionKind(name string) OptionKind {
	return OptionKind{Custom: name}
}

func (k OptionKind) IsCustom() bool {
	return k.Game == ""
}

func (k OptionKind) Name() string {
	if k.IsCustom() {
		return k.Custom
	}
	return string(k.Game)
}

type GameStateMessage struct {
	State *domain.GameState
}

type OptionChanged struct {
	Option OptionKind
	Value  bool
}

type PlayerReady struct {
	UserID uuid.UUID
	Ready  bool
}

type PlayerJoined struct {
	UserID uuid.UUID
}

type PlayerLeft struct {
	UserID uuid.UUID
}

type SpectatorJoined struct {
	Name string
}

type SpectatorLeft struct {
	Name string
}

type ChatMessage struct {
	UserID uuid.UUID
	Text   string
}

type Forfeit struct {
	UserID uuid.UUID
}

// GameOver ends the match; a nil Winner is a draw.
type GameOver struct {
	Winner *uuid.UUID
}

type ErrorMessage struct {
	Err ServerError
}

func (GameStateMessage) Command() Command { return CommandState }
func (OptionChanged) Command() Command    { return CommandSet }
func (PlayerReady) Command() Command      { return CommandReady }
func (PlayerJoined) Command() Command     { return CommandJoin }
func (PlayerLeft) Command() Command       { return CommandLeave }
func (SpectatorJoined) Command() Command  { return CommandSpectatorJoin }
func (SpectatorLeft) Command() Command    { return CommandSpectatorLeave }
func (ChatMessage) Command() Command      { return CommandMessage }
func (Forfeit) Command() Command          { return CommandForfeit }
func (GameOver) Command() Command         { return CommandWinner }
func (ErrorMessage) Command() Command     { return CommandError }

// A nil State formats as a game that has not started yet.
func (m GameStateMessage) line() string {
	state := m.State
	if state == nil {
		state = domain.NewGameState()
	}
	return join(CommandState, state.String())
}

func (m OptionChanged) line() string {
	return join(CommandSet, m.Option.Name(), strconv.FormatBool(m.Value))
}

func (m PlayerReady) line() string {
	return join(CommandReady, m.UserID.String(), strconv.FormatBool(m.Ready))
}

func (m PlayerJoined) line() string {
	return join(CommandJoin, m.UserID.String())
}

func (m PlayerLeft) line() string {
	return join(CommandLeave, m.UserID.String())
}

func (m SpectatorJoined) line() string {
	return join(CommandSpectatorJoin, m.Name)
}

func (m SpectatorLeft) line() string {
	return join(CommandSpectatorLeave, m.Name)
}

func (m ChatMessage) line() string {
	return join(CommandMessage, m.UserID.String(), m.Text)
}

func (m Forfeit) line() string {
	return join(CommandForfeit, m.UserID.String())
}

func (m GameOver) line() string {
	if m.Winner == nil {
		return string(CommandWinner)
	}
	return join(CommandWinner, m.Winner.String())
}

func (m ErrorMessage) line() string {
	user := nullUserID
	if m.Err.UserID != nil {
		user = m.Err.UserID.String()
	}
	code := strconv.Itoa(int(m.Err.Code))
	if m.Err.Description == "" {
		return join(CommandError, user, code)
	}
	return join(CommandError, user, code, m.Err.Description)
}

// FormatServerMessage renders m the way the server writes it on the wire.
func FormatServerMessage(m ServerMessage) string {
	return m.line()
}

func join(command Command, args ...string) string {
	return string(command) + " " + strings.Join(args, " ")
}
