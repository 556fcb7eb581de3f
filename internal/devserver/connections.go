package devserver

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// ConnectionManager tracks the socket of every peer in every room.
type ConnectionManager struct {
	connections map[uuid.UUID]*websocket.Conn

	// writeMu serializes writes per socket; gorilla allows one writer at a time.
	writeMu map[uuid.UUID]*sync.Mutex

	mu sync.RWMutex
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[uuid.UUID]*websocket.Conn),
		writeMu:     make(map[uuid.UUID]*sync.Mutex),
	}
}

// AddConnection registers conn for peerID, closing any older socket the
// same peer still had open.
func (cm *ConnectionManager) AddConnection(peerID uuid.UUID, conn *websocket.Conn) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if oldConn, exists := cm.connections[peerID]; exists {
		oldConn.Close()
	}
	cm.connections[peerID] = conn
	cm.writeMu[peerID] = &sync.Mutex{}
}

// RemoveConnectionIfMatching only removes conn if it is still the peer's
// current socket, so a stale handler cannot drop a newer connection.
func (cm *ConnectionManager) RemoveConnectionIfMatching(peerID uuid.UUID, conn *websocket.Conn) bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if currentConn, exists := cm.connections[peerID]; exists && currentConn == conn {
		currentConn.Close()
		delete(cm.connections, peerID)
		delete(cm.writeMu, peerID)
		return true
	}
	return false
}

func (cm *ConnectionManager) IsCurrentConnection(peerID uuid.UUID, conn *websocket.Conn) bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	currentConn, exists := cm.connections[peerID]
	return exists && currentConn == conn
}

// SendLine writes one protocol line as a text frame. Unknown peers are ignored.
func (cm *ConnectionManager) SendLine(peerID uuid.UUID, line string) error {
	return cm.write(peerID, func(conn *websocket.Conn) error {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteMessage(websocket.TextMessage, []byte(line))
	})
}

// Ping writes a keep-alive ping under the same lock as SendLine.
func (cm *ConnectionManager) Ping(peerID uuid.UUID) error {
	return cm.write(peerID, func(conn *websocket.Conn) error {
		return conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
	})
}

func (cm *ConnectionManager) write(peerID uuid.UUID, fn func(conn *websocket.Conn) error) error {
	cm.mu.RLock()
	conn, exists := cm.connections[peerID]
	mu, muExists := cm.writeMu[peerID]
	cm.mu.RUnlock()

	if !exists || !muExists {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()
	return fn(conn)
}

// Disconnect closes the peer's socket. Its handler notices on the next read
// and runs the usual leave path.
func (cm *ConnectionManager) Disconnect(peerID uuid.UUID) {
	cm.mu.RLock()
	conn, exists := cm.connections[peerID]
	cm.mu.RUnlock()
	if exists {
		conn.Close()
	}
}

func (cm *ConnectionManager) Count() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.connections)
}
