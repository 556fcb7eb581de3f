package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/autoreleasefool/hive-for-ios-sub001/internal/domain"
	"github.com/autoreleasefool/hive-for-ios-sub001/internal/protocol"
)

type consoleAction int

const (
	actionSend consoleAction = iota
	actionReconnect
	actionQuit
	actionHelp
	actionNone
)

var errUsage = errors.New("unrecognised command, type help")

const consoleHelp = `commands:
  move <notation>        play a move, e.g. "move wS1" or "move bG1 -wS1"
  set <option> <bool>    change a match option, e.g. "set Mosquito true"
  chat <text>            send a chat message
  ready                  toggle readiness (GLHF)
  ff                     forfeit the match
  reconnect              reopen the connection after it dropped
  quit                   close the connection and exit`

type consoleCommand struct {
	action  consoleAction
	message protocol.ClientMessage
}

// parseConsoleLine turns one line typed by the user into an action.
func parseConsoleLine(line string) (consoleCommand, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return consoleCommand{action: actionNone}, nil
	}
	verb, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(verb) {
	case "move", "mov":
		move, err := domain.ParseMovement(rest)
		if err != nil {
			return consoleCommand{}, err
		}
		return send(protocol.Move{Movement: move}), nil
	case "set":
		fields := strings.Fields(rest)
		if len(fields) != 2 || (fields[1] != "true" && fields[1] != "false") {
			return consoleCommand{}, fmt.Errorf("usage: set <option> <true|false>")
		}
		value := fields[1] == "true"
		if option, ok := domain.ParseGameOption(fields[0]); ok {
			return send(protocol.NewSetGameOption(option, value)), nil
		}
		return send(protocol.SetOption{Name: fields[0], Value: value}), nil
	case "chat", "msg":
		if rest == "" {
			return consoleCommand{}, fmt.Errorf("usage: chat <text>")
		}
		return send(protocol.SendChat{Text: rest}), nil
	case "ready", "glhf":
		return send(protocol.ReadyToPlay{}), nil
	case "ff", "forfeit":
		return send(protocol.ForfeitMatch{}), nil
	case "reconnect":
		return consoleCommand{action: actionReconnect}, nil
	case "quit", "exit":
		return consoleCommand{action: actionQuit}, nil
	case "help", "?":
		return consoleCommand{action: actionHelp}, nil
	}
	return consoleCommand{}, errUsage
}

func send(msg protocol.ClientMessage) consoleCommand {
	return consoleCommand{action: actionSend, message: msg}
}

// describe renders an inbound message for the terminal.
func describe(msg protocol.ServerMessage) string {
	switch m := msg.(type) {
	case protocol.GameStateMessage:
		return fmt.Sprintf("state  %s (%s to move, turn %d)", m.State.Status, m.State.CurrentPlayer, m.State.Turn)
	case protocol.ChatMessage:
		return fmt.Sprintf("chat   %s: %s", m.UserID, m.Text)
	case protocol.GameOver:
		if m.Winner == nil {
			return "over   draw"
		}
		return fmt.Sprintf("over   %s wins", m.Winner)
	case protocol.ErrorMessage:
		return fmt.Sprintf("error  %v", m.Err)
	default:
		return "event  " + protocol.FormatServerMessage(msg)
	}
}
