package httpserver

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/kstepanov/dormhub/internal/hub"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Viewers are browsers served from elsewhere; the push channel carries
	// no credentials and only status pings, so any origin may subscribe.
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleWS upgrades the connection and subscribes it as a viewer. The handler
// blocks in the read loop until the peer disconnects; the hub drops the
// subscription as soon as the transport closes.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Info("websocket upgrade failed", zap.Error(err))
		return
	}
	client := hub.NewClient(conn)
	s.hub.Subscribe(client)
	client.ReadLoop(s.hub)
}
