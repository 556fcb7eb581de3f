package protocol

import (
	"strconv"

	"github.com/autoreleasefool/hive-for-ios-sub001/internal/domain"
)

// ClientMessage is an action sent by the player. Implementations are the
// types in this file only.
type ClientMessage interface {
	encode() string
}

type Move struct {
	Movement domain.Movement
}

type SetOption struct {
	Name  string
	Value bool
}

type SendChat struct {
	Text string
}

type ReadyToPlay struct{}

type ForfeitMatch struct{}

func (m Move) encode() string {
	return string(CommandMove) + " " + m.Movement.Notation()
}

func (m SetOption) encode() string {
	return string(CommandSet) + " " + m.Name + " " + strconv.FormatBool(m.Value)
}

func (m SendChat) encode() string {
	return string(CommandMessage) + " " + m.Text
}

func (ReadyToPlay) encode() string {
	return string(CommandReadyToPlay)
}

func (ForfeitMatch) encode() string {
	return string(CommandForfeit)
}

// Encode renders a client message as a single wire line.
func Encode(m ClientMessage) string {
	return m.encode()
}

// NewSetGameOption is a shorthand for toggling one of the engine's options.
func NewSetGameOption(option domain.GameOption, value bool) SetOption {
	return SetOption{Name: string(option), Value: value}
}
