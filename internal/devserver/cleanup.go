package devserver

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
)

const cleanupInterval = time.Minute

type peerCloser interface {
	Disconnect(peerID uuid.UUID)
}

// CleanupWorker retires finished matches that players left open, so a match
// id can be reused for a fresh game.
type CleanupWorker struct {
	Rooms *RoomManager
	Conns peerCloser
	TTL   time.Duration
}

func NewCleanupWorker(rooms *RoomManager, conns peerCloser, ttl time.Duration) *CleanupWorker {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CleanupWorker{Rooms: rooms, Conns: conns, TTL: ttl}
}

// Start sweeps every minute until ctx is cancelled.
func (w *CleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				w.Sweep(now)
			case <-ctx.Done():
				return
			}
		}
	}()
	log.Println("[CLEANUP] Background worker started")
}

// Sweep removes matches that finished more than TTL before now and
// disconnects whoever is still in them. It returns the number removed.
func (w *CleanupWorker) Sweep(now time.Time) int {
	removed := w.Rooms.RemoveFinished(now.Add(-w.TTL))
	for _, room := range removed {
		for _, peerID := range room.Peers() {
			w.Conns.Disconnect(peerID)
		}
	}
	if len(removed) > 0 {
		log.Printf("[CLEANUP] Removed %d finished matches", len(removed))
	}
	return len(removed)
}
