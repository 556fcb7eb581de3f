package devserver

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/autoreleasefool/hive-for-ios-sub001/internal/domain"
	"github.com/autoreleasefool/hive-for-ios-sub001/internal/protocol"
	"github.com/google/uuid"
)

type Error string

func (e Error) Error() string {
	return string(e)
}

const ErrRoomFull Error = "match already has two players"

// LineSender delivers one protocol line to one peer.
type LineSender interface {
	SendLine(peerID uuid.UUID, line string) error
}

// Room is a scripted match: the first player to join hosts and plays White,
// the second plays Black. It answers client commands the way the real match
// server does but performs no placement validation beyond notation and turn.
type Room struct {
	MatchID   string
	CreatedAt time.Time

	mu         sync.Mutex
	hostID     *uuid.UUID
	guestID    *uuid.UUID
	ready      map[uuid.UUID]bool
	options    map[string]bool
	spectators map[uuid.UUID]string
	state      *domain.GameState
	engine     domain.Engine
	conn       LineSender
	finishedAt time.Time
}

func NewRoom(matchID string, conn LineSender) *Room {
	return &Room{
		MatchID:    matchID,
		CreatedAt:  time.Now(),
		ready:      make(map[uuid.UUID]bool),
		options:    make(map[string]bool),
		spectators: make(map[uuid.UUID]string),
		state:      domain.NewGameState(),
		engine:     domain.UHPEngine{},
		conn:       conn,
	}
}

// Join seats a player, or re-seats one who reconnected. Everyone in the room is told about the newcomer; the
// newcomer also learns about the opponent and the current snapshot.
func (r *Room) Join(userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case r.isPlayer(userID):
		// reconnecting player keeps the seat
	case r.hostID == nil:
		r.hostID = &userID
	case r.guestID == nil:
		r.guestID = &userID
	default:
		return ErrRoomFull
	}

	log.Printf("[DEVSERVER] %s joined match %s", userID, r.MatchID)
	r.broadcast(protocol.PlayerJoined{UserID: userID})
	if opponent := r.opponentOf(userID); opponent != nil {
		r.send(userID, protocol.PlayerJoined{UserID: *opponent})
		if r.ready[*opponent] {
			r.send(userID, protocol.PlayerReady{UserID: *opponent, Ready: true})
		}
	}
	for name, value := range r.options {
		r.send(userID, protocol.OptionChanged{Option: r.optionKind(name), Value: value})
	}
	r.send(userID, protocol.GameStateMessage{State: r.state})
	return nil
}

func (r *Room) JoinSpectator(peerID uuid.UUID, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.spectators[peerID] = name
	log.Printf("[DEVSERVER] spectator %q joined match %s", name, r.MatchID)
	r.broadcast(protocol.SpectatorJoined{Name: name})
	r.send(peerID, protocol.GameStateMessage{State: r.state})
}

// Leave removes a peer. A player leaving a match in progress forfeits it to
// the opponent. It reports whether the room is now empty.
func (r *Room) Leave(peerID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name, ok := r.spectators[peerID]; ok {
		delete(r.spectators, peerID)
		r.broadcast(protocol.SpectatorLeft{Name: name})
		return r.emptyLocked()
	}
	if !r.isPlayer(peerID) {
		return r.emptyLocked()
	}

	opponent := r.opponentOf(peerID)
	if r.hostID != nil && *r.hostID == peerID {
		r.hostID = nil
	} else {
		r.guestID = nil
	}
	delete(r.ready, peerID)

	log.Printf("[DEVSERVER] %s left match %s", peerID, r.MatchID)
	r.broadcast(protocol.PlayerLeft{UserID: peerID})

	if r.state.Status == domain.StatusInProgress && opponent != nil {
		log.Printf("[DEVSERVER] match %s abandoned by %s", r.MatchID, peerID)
		r.finishLocked(opponent)
	}
	return r.emptyLocked()
}

// Handle answers one client line from peerID.
func (r *Room) Handle(peerID uuid.UUID, line string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	if _, ok := r.spectators[peerID]; ok {
		r.sendError(nil, peerID, protocol.ErrorCodeInvalidCommand, "spectators cannot send commands")
		return
	}
	if !r.isPlayer(peerID) {
		return
	}

	command, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch protocol.Command(command) {
	case protocol.CommandReadyToPlay:
		r.handleReady(peerID)
	case protocol.CommandSet:
		r.handleSet(peerID, line, rest)
	case protocol.CommandMove:
		r.handleMove(peerID, rest)
	case protocol.CommandMessage:
		r.broadcast(protocol.ChatMessage{UserID: peerID, Text: rest})
	case protocol.CommandForfeit:
		r.handleForfeit(peerID)
	default:
		r.sendError(&peerID, peerID, protocol.ErrorCodeInvalidCommand, fmt.Sprintf("unknown command %q", command))
	}
}

// CanJoin reports whether userID would get a seat.
func (r *Room) CanJoin(userID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.isPlayer(userID) || r.hostID == nil || r.guestID == nil
}

// Snapshot returns the wire form of the current game state.
func (r *Room) Snapshot() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.String()
}

func (r *Room) Empty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.emptyLocked()
}

func (r *Room) handleReady(userID uuid.UUID) {
	if r.state.Status != domain.StatusNotStarted {
		r.sendError(&userID, userID, protocol.ErrorCodeFailedToStartMatch, "match already started")
		return
	}

	r.ready[userID] = !r.ready[userID]
	r.broadcast(protocol.PlayerReady{UserID: userID, Ready: r.ready[userID]})

	if r.hostID != nil && r.guestID != nil && r.ready[*r.hostID] && r.ready[*r.guestID] {
		r.state.Status = domain.StatusInProgress
		log.Printf("[DEVSERVER] match %s started", r.MatchID)
		r.broadcast(protocol.GameStateMessage{State: r.state})
	}
}

func (r *Room) handleSet(userID uuid.UUID, line, rest string) {
	name, _, _ := strings.Cut(rest, " ")
	value, ok := protocol.TrailingBool(line)
	if name == "" || !ok || len(strings.Fields(line)) != 3 {
		r.sendError(&userID, userID, protocol.ErrorCodeInvalidCommand, "expected SET <option> <true|false>")
		return
	}
	if r.hostID == nil || *r.hostID != userID || r.state.Status != domain.StatusNotStarted {
		r.sendError(&userID, userID, protocol.ErrorCodeOptionNonModifiable, fmt.Sprintf("%s cannot be changed", name))
		return
	}
	if current, exists := r.options[name]; exists && current == value {
		r.sendError(&userID, userID, protocol.ErrorCodeOptionValueNotUpdated, fmt.Sprintf("%s is already %t", name, value))
		return
	}

	r.options[name] = value
	kind := r.optionKind(name)
	if !kind.IsCustom() && kind.Game.IsExpansion() {
		r.state = domain.NewGameState(r.enabledExpansions()...)
	}

	r.broadcast(protocol.OptionChanged{Option: kind, Value: value})

	// changing the rules invalidates readiness
	for id, ready := range r.ready {
		if ready {
			r.ready[id] = false
			r.broadcast(protocol.PlayerReady{UserID: id, Ready: false})
		}
	}
}

func (r *Room) handleMove(userID uuid.UUID, notation string) {
	if r.state.Status != domain.StatusInProgress {
		r.sendError(&userID, userID, protocol.ErrorCodeInvalidMovement, "match is not in progress")
		return
	}
	if r.colorOf(userID) != r.state.CurrentPlayer {
		r.sendError(&userID, userID, protocol.ErrorCodeNotPlayerTurn, "it is not your turn")
		return
	}

	move, err := domain.ParseMovement(notation)
	if err != nil {
		r.sendError(&userID, userID, protocol.ErrorCodeInvalidMovement, fmt.Sprintf("%q is not a valid move", notation))
		return
	}
	if err := r.state.Apply(move); err != nil {
		r.sendError(&userID, userID, protocol.ErrorCodeInvalidMovement, err.Error())
		return
	}

	r.broadcast(protocol.GameStateMessage{State: r.state})
}

func (r *Room) handleForfeit(userID uuid.UUID) {
	if r.state.Status != domain.StatusInProgress {
		r.sendError(&userID, userID, protocol.ErrorCodeFailedToEndMatch, "match is not in progress")
		return
	}

	r.broadcast(protocol.Forfeit{UserID: userID})
	r.finishLocked(r.opponentOf(userID))
}

// finishLocked ends the match in winner's favour; nil is a draw.
func (r *Room) finishLocked(winner *uuid.UUID) {
	if winner == nil {
		r.state.Finish(nil)
	} else {
		color := r.colorOf(*winner)
		r.state.Finish(&color)
	}
	r.finishedAt = time.Now()
	log.Printf("[DEVSERVER] match %s finished: %s", r.MatchID, r.state.Status)
	r.broadcast(protocol.GameOver{Winner: winner})
	r.broadcast(protocol.GameStateMessage{State: r.state})
}

func (r *Room) optionKind(name string) protocol.OptionKind {
	if option, ok := r.engine.GameOption(name); ok {
		return protocol.GameOptionKind(option)
	}
	return protocol.CustomOptionKind(name)
}

func (r *Room) enabledExpansions() []domain.GameOption {
	var expansions []domain.GameOption
	for _, option := range domain.AllGameOptions {
		if option.IsExpansion() && r.options[string(option)] {
			expansions = append(expansions, option)
		}
	}
	return expansions
}

func (r *Room) isPlayer(id uuid.UUID) bool {
	return (r.hostID != nil && *r.hostID == id) || (r.guestID != nil && *r.guestID == id)
}

func (r *Room) colorOf(id uuid.UUID) domain.Player {
	if r.hostID != nil && *r.hostID == id {
		return domain.White
	}
	return domain.Black
}

func (r *Room) opponentOf(id uuid.UUID) *uuid.UUID {
	if r.hostID != nil && *r.hostID == id {
		return r.guestID
	}
	if r.guestID != nil && *r.guestID == id {
		return r.hostID
	}
	return nil
}

// FinishedBefore reports whether the match ended before cutoff.
func (r *Room) FinishedBefore(cutoff time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.finishedAt.IsZero() && r.finishedAt.Before(cutoff)
}

// Peers lists every seated player and spectator socket.
func (r *Room) Peers() []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.peers()
}

func (r *Room) emptyLocked() bool {
	return r.hostID == nil && r.guestID == nil && len(r.spectators) == 0
}

func (r *Room) peers() []uuid.UUID {
	peers := make([]uuid.UUID, 0, 2+len(r.spectators))
	if r.hostID != nil {
		peers = append(peers, *r.hostID)
	}
	if r.guestID != nil {
		peers = append(peers, *r.guestID)
	}
	for id := range r.spectators {
		peers = append(peers, id)
	}
	return peers
}

func (r *Room) broadcast(msg protocol.ServerMessage) {
	line := protocol.FormatServerMessage(msg)
	for _, id := range r.peers() {
		if err := r.conn.SendLine(id, line); err != nil {
			log.Printf("[DEVSERVER] failed to send %s to %s: %v", msg.Command(), id, err)
		}
	}
}

func (r *Room) send(peerID uuid.UUID, msg protocol.ServerMessage) {
	if err := r.conn.SendLine(peerID, protocol.FormatServerMessage(msg)); err != nil {
		log.Printf("[DEVSERVER] failed to send %s to %s: %v", msg.Command(), peerID, err)
	}
}

func (r *Room) sendError(userID *uuid.UUID, peerID uuid.UUID, code protocol.ErrorCode, description string) {
	r.send(peerID, protocol.ErrorMessage{Err: protocol.ServerError{UserID: userID, Code: code, Description: description}})
}

// MatchSummary is the public view of a room used by the match listing.
type MatchSummary struct {
	MatchID        string    `json:"matchId"`
	Host           string    `json:"host,omitempty"`
	Guest          string    `json:"guest,omitempty"`
	SpectatorCount int       `json:"spectatorCount"`
	Snapshot       string    `json:"snapshot"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (r *Room) Summary() MatchSummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	summary := MatchSummary{
		MatchID:        r.MatchID,
		SpectatorCount: len(r.spectators),
		Snapshot:       r.state.String(),
		CreatedAt:      r.CreatedAt,
	}
	if r.hostID != nil {
		summary.Host = r.hostID.String()
	}
	if r.guestID != nil {
		summary.Guest = r.guestID.String()
	}
	return summary
}
