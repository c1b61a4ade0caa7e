package websocket

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/lukev/secrettoaster/internal/models"
)

// outboundEnvelope is the wire shape for every message the hub pushes to a
// game room: a type tag plus a typed payload, matching the inbound
// envelope clients send.
type outboundEnvelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type gameBroadcastMessage struct {
	GameID  string
	Message []byte
}

// Hub maintains connected websocket clients and room subscriptions.
type Hub struct {
	clients map[*Client]bool

	broadcast     chan []byte
	gameBroadcast chan gameBroadcastMessage
	register      chan *Client
	unregister    chan *Client

	mu sync.RWMutex

	gameSubscribers map[string]map[*Client]bool
	clientGames     map[*Client]map[string]bool
}

// NewHub creates a new Hub instance.
func NewHub() *Hub {
	return &Hub{
		broadcast:       make(chan []byte),
		gameBroadcast:   make(chan gameBroadcastMessage),
		register:        make(chan *Client),
		unregister:      make(chan *Client),
		clients:         make(map[*Client]bool),
		gameSubscribers: make(map[string]map[*Client]bool),
		clientGames:     make(map[*Client]map[string]bool),
	}
}

// Run starts the hub loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("Client connected. Total clients: %d", len(h.clients))

		case client := <-h.unregister:
			h.mu.Lock()
			h.unregisterClientLocked(client)
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				h.sendToClientLocked(client, message)
			}
			h.mu.RUnlock()

		case msg := <-h.gameBroadcast:
			h.mu.RLock()
			for client := range h.gameSubscribers[msg.GameID] {
				h.sendToClientLocked(client, msg.Message)
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) unregisterClientLocked(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}

	delete(h.clients, client)
	if games := h.clientGames[client]; games != nil {
		for gameID := range games {
			if subscribers := h.gameSubscribers[gameID]; subscribers != nil {
				delete(subscribers, client)
				if len(subscribers) == 0 {
					delete(h.gameSubscribers, gameID)
				}
			}
		}
		delete(h.clientGames, client)
	}

	close(client.send)
	log.Printf("Client disconnected. Total clients: %d", len(h.clients))
}

func (h *Hub) sendToClientLocked(client *Client, message []byte) {
	select {
	case client.send <- message:
	default:
		close(client.send)
		delete(h.clients, client)
		if games := h.clientGames[client]; games != nil {
			for gameID := range games {
				if subscribers := h.gameSubscribers[gameID]; subscribers != nil {
					delete(subscribers, client)
					if len(subscribers) == 0 {
						delete(h.gameSubscribers, gameID)
					}
				}
			}
			delete(h.clientGames, client)
		}
	}
}

// BroadcastMessage sends a message to all connected clients.
func (h *Hub) BroadcastMessage(message []byte) {
	h.broadcast <- message
}

// BroadcastToGame sends a message to subscribers of a single game room.
func (h *Hub) BroadcastToGame(gameID string, message []byte) {
	h.gameBroadcast <- gameBroadcastMessage{GameID: gameID, Message: message}
}

// BroadcastRoundEvents pushes the event log produced by a single
// execute_round call to a game room, so the domain event types flow
// through the hub instead of callers pre-marshaling opaque bytes.
func (h *Hub) BroadcastRoundEvents(gameID string, events []models.Event) error {
	msg, err := json.Marshal(outboundEnvelope{Type: "round_events", Payload: events})
	if err != nil {
		return err
	}
	h.BroadcastToGame(gameID, msg)
	return nil
}

// BroadcastGameState pushes a serialized game snapshot to a game room.
func (h *Hub) BroadcastGameState(gameID string, state map[string]interface{}) error {
	msg, err := json.Marshal(outboundEnvelope{Type: "game_state_update", Payload: state})
	if err != nil {
		return err
	}
	h.BroadcastToGame(gameID, msg)
	return nil
}

// JoinGame subscribes a client to a game room.
func (h *Hub) JoinGame(client *Client, gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.clients[client]; !exists {
		return
	}

	if h.gameSubscribers[gameID] == nil {
		h.gameSubscribers[gameID] = make(map[*Client]bool)
	}
	h.gameSubscribers[gameID][client] = true

	if h.clientGames[client] == nil {
		h.clientGames[client] = make(map[string]bool)
	}
	h.clientGames[client][gameID] = true
}

// LeaveGame unsubscribes a client from a game room.
func (h *Hub) LeaveGame(client *Client, gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subscribers := h.gameSubscribers[gameID]; subscribers != nil {
		delete(subscribers, client)
		if len(subscribers) == 0 {
			delete(h.gameSubscribers, gameID)
		}
	}

	if games := h.clientGames[client]; games != nil {
		delete(games, gameID)
		if len(games) == 0 {
			delete(h.clientGames, client)
		}
	}
}

// GetClientCount returns connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
