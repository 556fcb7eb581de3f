package devserver

import (
	"github.com/autoreleasefool/hive-for-ios-sub001/internal/config"
	"github.com/gin-gonic/gin"
)

// NewRouter wires the dev match server:
//
//	GET /healthz
//	GET /api/matches          (bearer token)
//	GET /ws, /ws/:matchID     (bearer token, websocket)
func NewRouter(cfg *config.Config) (*gin.Engine, *Handler) {
	conns := NewConnectionManager()
	rooms := NewRoomManager(conns)
	handler := NewHandler(conns, rooms, cfg.PingInterval, cfg.PongWait)

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(CORSMiddleware(cfg.AllowedOrigins))

	router.GET("/healthz", handler.Health)

	protected := router.Group("/")
	protected.Use(AuthMiddleware(cfg.JWTSecret))
	{
		protected.GET("/api/matches", handler.ListMatches)
		protected.GET("/ws", handler.HandleWebSocket)
		protected.GET("/ws/:matchID", handler.HandleWebSocket)
	}

	return router, handler
}
