package protocol

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Command is the keyword that opens every wire line.
type Command string

// Outbound commands.
const (
	CommandMove        Command = "MOV"
	CommandSet         Command = "SET"
	CommandMessage     Command = "MSG"
	CommandReadyToPlay Command = "GLHF"
	CommandForfeit     Command = "FF"
)

// Inbound-only commands. SET, MSG and FF are shared with the outbound set.
const (
	CommandState          Command = "STATE"
	CommandReady          Command = "READY"
	CommandJoin           Command = "JOIN"
	CommandLeave          Command = "LEAVE"
	CommandSpectatorJoin  Command = "SPECJOIN"
	CommandSpectatorLeave Command = "SPECLEAVE"
	CommandWinner         Command = "WINNER"
	CommandError          Command = "ERR"
)

// inboundCommands is the order keywords are tested in when decoding.
var inboundCommands = []Command{
	CommandState,
	CommandSet,
	CommandReady,
	CommandMessage,
	CommandForfeit,
	CommandJoin,
	CommandLeave,
	CommandSpectatorJoin,
	CommandSpectatorLeave,
	CommandWinner,
	CommandError,
}

const nullUserID = "null"

// ParseCommand returns the inbound keyword that opens line.
func ParseCommand(line string) (Command, bool) {
	first, _ := splitFirst(line)
	if first == "" {
		return "", false
	}
	for _, command := range inboundCommands {
		if first == string(command) {
			return command, true
		}
	}
	return "", false
}

// UserIDAfter parses the first token following the command as a UUID.
func UserIDAfter(line string) (uuid.UUID, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(fields[1])
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// TrailingBool parses the last token of line as a literal true or false.
func TrailingBool(line string) (bool, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return false, false
	}
	switch fields[len(fields)-1] {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// Remainder returns everything after the command keyword, trimmed.
func Remainder(line string) string {
	_, rest := splitFirst(line)
	return rest
}

func splitFirst(line string) (string, string) {
	line = strings.TrimSpace(line)
	idx := strings.IndexFunc(line, unicode.IsSpace)
	if idx < 0 {
		return line, ""
	}
	return line[:idx], strings.TrimSpace(line[idx:])
}
