package devserver

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/autoreleasefool/hive-for-ios-sub001/internal/protocol"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const defaultMatchID = "default"

// Handler serves the match websocket and the small HTTP surface around it.
type Handler struct {
	Conns        *ConnectionManager
	Rooms        *RoomManager
	Upgrader     websocket.Upgrader
	PingInterval time.Duration
	PongWait     time.Duration
}

func NewHandler(cm *ConnectionManager, rm *RoomManager, pingInterval, pongWait time.Duration) *Handler {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	if pongWait <= pingInterval {
		pongWait = 2 * pingInterval
	}
	return &Handler{
		Conns:        cm,
		Rooms:        rm,
		PingInterval: pingInterval,
		PongWait:     pongWait,
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// HandleWebSocket joins the caller to the match named in the path. With
// ?spectate=<name> the caller watches instead of taking a seat.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	userID, username, ok := userFromContext(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	matchID := strings.TrimPrefix(c.Param("matchID"), "/")
	if matchID == "" {
		matchID = defaultMatchID
	}
	spectatorName := strings.TrimSpace(c.Query("spectate"))

	room := h.Rooms.GetOrCreate(matchID)
	if spectatorName == "" && !room.CanJoin(userID) {
		h.Rooms.RemoveIfEmpty(matchID)
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": ErrRoomFull.Error()})
		return
	}

	conn, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		h.Rooms.RemoveIfEmpty(matchID)
		return
	}

	peerID := userID
	if spectatorName != "" {
		// spectators are anonymous on the wire and may watch from many sockets
		peerID = uuid.New()
	}
	h.Conns.AddConnection(peerID, conn)

	if spectatorName != "" {
		room.JoinSpectator(peerID, spectatorName)
		log.Printf("[WS] %s (%s) spectating match %s as %q", username, userID, matchID, spectatorName)
	} else if err := room.Join(userID); err != nil {
		log.Printf("[WS] %s could not join match %s: %v", username, matchID, err)
		h.Conns.SendLine(peerID, protocol.FormatServerMessage(protocol.ErrorMessage{Err: protocol.ServerError{
			UserID:      &userID,
			Code:        protocol.ErrorCodeFailedToStartMatch,
			Description: err.Error(),
		}}))
		h.Conns.RemoveConnectionIfMatching(peerID, conn)
		h.Rooms.RemoveIfEmpty(matchID)
		return
	}

	h.handleConnection(conn, peerID, room)
}

func (h *Handler) handleConnection(conn *websocket.Conn, peerID uuid.UUID, room *Room) {
	conn.SetReadDeadline(time.Now().Add(h.PongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(h.PongWait))
		return nil
	})

	stop := make(chan struct{})
	defer close(stop)

	// Keep-alive pinger
	go func() {
		ticker := time.NewTicker(h.PingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := h.Conns.Ping(peerID); err != nil {
					return
				}
			case <-stop:
				return
			}
		}
	}()

	defer func() {
		// a newer socket for the same peer keeps its seat
		if h.Conns.RemoveConnectionIfMatching(peerID, conn) {
			room.Leave(peerID)
		}
		h.Rooms.RemoveIfEmpty(room.MatchID)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[WS] Peer %s disconnected unexpectedly: %v", peerID, err)
			}
			return
		}
		if !h.Conns.IsCurrentConnection(peerID, conn) {
			return
		}
		for _, line := range strings.Split(string(data), "\n") {
			room.Handle(peerID, line)
		}
	}
}

// ListMatches returns every open match for spectators to pick from.
func (h *Handler) ListMatches(c *gin.Context) {
	c.JSON(http.StatusOK, h.Rooms.Summaries())
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"connections": h.Conns.Count(),
	})
}
