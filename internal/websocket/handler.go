package websocket

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lukev/secrettoaster/internal/config"
	"github.com/lukev/secrettoaster/internal/game"
	"github.com/lukev/secrettoaster/internal/lobby"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		// TODO: Restrict this in production
		return true
	},
}

// ServerDeps contains references to other subsystems used by websocket clients.
type ServerDeps struct {
	Lobby  *lobby.Manager
	Games  *game.Manager
	Config config.Config
}

// ServeWs handles websocket requests from the peer.
func ServeWs(hub *Hub, deps ServerDeps, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	clientID := uuid.NewString()

	client := &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, 256),
		id:          clientID,
		deps:        deps,
		seatsByGame: make(map[string]string),
	}
	client.hub.register <- client

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()
}
