package devserver

import (
	"log"
	"sort"
	"sync"
	"time"
)

// RoomManager owns every open match, keyed by match id.
type RoomManager struct {
	rooms map[string]*Room
	conn  LineSender
	mu    sync.RWMutex
}

func NewRoomManager(conn LineSender) *RoomManager {
	return &RoomManager{
		rooms: make(map[string]*Room),
		conn:  conn,
	}
}

func (rm *RoomManager) GetOrCreate(matchID string) *Room {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if room, exists := rm.rooms[matchID]; exists {
		return room
	}
	room := NewRoom(matchID, rm.conn)
	rm.rooms[matchID] = room
	log.Printf("[DEVSERVER] Created match %s", matchID)
	return room
}

func (rm *RoomManager) Get(matchID string) (*Room, bool) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	room, exists := rm.rooms[matchID]
	return room, exists
}

// RemoveIfEmpty drops the room once its last peer has left.
func (rm *RoomManager) RemoveIfEmpty(matchID string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	room, exists := rm.rooms[matchID]
	if !exists || !room.Empty() {
		return
	}
	delete(rm.rooms, matchID)
	log.Printf("[DEVSERVER] Removing match %s", matchID)
}

// RemoveFinished drops every match that ended before cutoff and returns them
// so their remaining peers can be disconnected.
func (rm *RoomManager) RemoveFinished(cutoff time.Time) []*Room {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	var removed []*Room
	for matchID, room := range rm.rooms {
		if room.FinishedBefore(cutoff) {
			delete(rm.rooms, matchID)
			removed = append(removed, room)
		}
	}
	return removed
}

// Summaries lists every open match ordered by creation time.
func (rm *RoomManager) Summaries() []MatchSummary {
	rm.mu.RLock()
	rooms := make([]*Room, 0, len(rm.rooms))
	for _, room := range rm.rooms {
		rooms = append(rooms, room)
	}
	rm.mu.RUnlock()

	summaries := make([]MatchSummary, 0, len(rooms))
	for _, room := range rooms {
		summaries = append(summaries, room.Summary())
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.Before(summaries[j].CreatedAt)
	})
	return summaries
}
