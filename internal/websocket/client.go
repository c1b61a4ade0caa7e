// Package websocket handles websocket connections and messaging.
package websocket

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lukev/secrettoaster/internal/game"
	"github.com/lukev/secrettoaster/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024
)

var (
	newline = []byte{'\n'}
	space   = []byte{' '}
)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	hub *Hub

	conn *websocket.Conn
	send chan []byte
	id   string

	deps ServerDeps

	seatsByGame map[string]string
}

type inboundMsg struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type createGamePayload struct {
	Name       string `json:"name"`
	MaxPlayers int    `json:"maxPlayers"`
	Creator    string `json:"creator"`
}

type joinGamePayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type lobbyStateMsg struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type submitOrderPayload struct {
	GameID           string       `json:"gameId"`
	ActionID         string       `json:"actionId,omitempty"`
	ExpectedRevision *int         `json:"expectedRevision,omitempty"`
	Order            models.Order `json:"order"`
}

type setReadyPayload struct {
	GameID           string `json:"gameId"`
	ActionID         string `json:"actionId,omitempty"`
	ExpectedRevision *int   `json:"expectedRevision,omitempty"`
	Ready            bool   `json:"ready"`
}

type executeRoundPayload struct {
	GameID string `json:"gameId"`
	Seed   uint64 `json:"seed"`
}

func (c *Client) bindSeat(gameID, playerID string) {
	if c.seatsByGame == nil {
		c.seatsByGame = make(map[string]string)
	}
	c.seatsByGame[gameID] = playerID
}

func (c *Client) seatForGame(gameID string) string {
	if c.seatsByGame == nil {
		return ""
	}
	return c.seatsByGame[gameID]
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error: %v", err)
			}
			break
		}
		message = bytes.TrimSpace(bytes.ReplaceAll(message, newline, space))

		var env inboundMsg
		if err := json.Unmarshal(message, &env); err != nil {
			log.Printf("Received non-JSON message from %s: %s", c.id, string(message))
			continue
		}

		c.handleInboundMessage(env)
	}
}

func (c *Client) handleInboundMessage(env inboundMsg) {
	switch env.Type {
	case "list_games":
		games := c.deps.Lobby.ListGames()
		out, _ := json.Marshal(lobbyStateMsg{Type: "lobby_state", Payload: games})
		c.send <- out

	case "get_game_state":
		var p struct {
			GameID string `json:"gameId"`
		}
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			log.Printf("error parsing get_game_state payload: %v", err)
			return
		}
		c.sendGameState(p.GameID)

	case "create_game":
		c.handleCreateGame(env.Payload)

	case "join_game":
		c.handleJoinGame(env.Payload)

	case "submit_order":
		c.handleSubmitOrder(env.Payload)

	case "set_ready":
		c.handleSetReady(env.Payload)

	case "execute_round":
		c.handleExecuteRound(env.Payload)

	default:
		log.Printf("Unknown message type: %s", env.Type)
	}
}

func (c *Client) handleCreateGame(payload json.RawMessage) {
	var p createGamePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Printf("create_game payload error: %v", err)
		return
	}
	if p.MaxPlayers <= 0 {
		p.MaxPlayers = 6
	}
	meta := c.deps.Lobby.CreateGame(p.Name, p.MaxPlayers)
	if _, err := c.deps.Games.CreateGame(meta.ID); err != nil {
		log.Printf("create_game: %v", err)
		c.sendError("create_game_failed")
		return
	}
	if p.Creator != "" {
		_ = c.deps.Lobby.JoinGame(meta.ID, p.Creator)
		c.bindSeat(meta.ID, p.Creator)
		c.hub.JoinGame(c, meta.ID)
		createdMsg, _ := json.Marshal(map[string]any{
			"type":    "game_created",
			"payload": map[string]string{"gameId": meta.ID, "playerId": p.Creator},
		})
		c.send <- createdMsg
	}
	games := c.deps.Lobby.ListGames()
	out, _ := json.Marshal(lobbyStateMsg{Type: "lobby_state", Payload: games})
	c.hub.broadcast <- out
}

func (c *Client) handleJoinGame(payload json.RawMessage) {
	var p joinGamePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Printf("join_game payload error: %v", err)
		return
	}
	ok := c.deps.Lobby.JoinGame(p.ID, p.Name)
	if !ok {
		meta, exists := c.deps.Lobby.GetGame(p.ID)
		if !exists {
			c.sendError("join_failed")
			return
		}
		rejoinAllowed := false
		for _, playerID := range meta.Players {
			if playerID == p.Name {
				rejoinAllowed = true
				break
			}
		}
		if !rejoinAllowed {
			c.sendError("join_failed")
			return
		}
	}

	gs, ok := c.deps.Games.GetGame(p.ID)
	if !ok {
		c.sendError("game_not_found")
		return
	}
	if gs.GetPlayer(p.Name) == nil {
		if _, err := gs.AddPlayer(p.Name, c.deps.Config.AllianceFor(p.Name)); err != nil {
			log.Printf("join_game: %v", err)
			c.sendError("join_failed")
			return
		}
	}

	c.bindSeat(p.ID, p.Name)
	c.hub.JoinGame(c, p.ID)

	successMsg, _ := json.Marshal(map[string]any{
		"type":    "game_joined",
		"payload": map[string]string{"gameId": p.ID, "playerId": p.Name},
	})
	c.send <- successMsg

	games := c.deps.Lobby.ListGames()
	out, _ := json.Marshal(lobbyStateMsg{Type: "lobby_state", Payload: games})
	c.hub.broadcast <- out
}

func (c *Client) handleSubmitOrder(payload json.RawMessage) {
	var p submitOrderPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Printf("submit_order payload error: %v", err)
		c.sendActionRejected("", "invalid_action_payload", "invalid submit_order payload")
		return
	}

	seatID := c.seatForGame(p.GameID)
	if seatID == "" {
		c.sendActionRejected(p.ActionID, "unauthorized", "you are not seated in this game")
		return
	}
	p.Order.OwnerNickname = seatID

	expectedRevision := -1
	if p.ExpectedRevision != nil {
		expectedRevision = *p.ExpectedRevision
	}

	result, err := c.deps.Games.SubmitOrder(p.GameID, &p.Order, game.ActionMeta{
		ActionID:         p.ActionID,
		ExpectedRevision: expectedRevision,
	})
	if !c.reportActionResult(p.GameID, p.ActionID, result, err) {
		return
	}
	c.sendGameState(p.GameID)
}

func (c *Client) handleSetReady(payload json.RawMessage) {
	var p setReadyPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Printf("set_ready payload error: %v", err)
		c.sendActionRejected("", "invalid_action_payload", "invalid set_ready payload")
		return
	}

	seatID := c.seatForGame(p.GameID)
	if seatID == "" {
		c.sendActionRejected(p.ActionID, "unauthorized", "you are not seated in this game")
		return
	}

	expectedRevision := -1
	if p.ExpectedRevision != nil {
		expectedRevision = *p.ExpectedRevision
	}

	result, err := c.deps.Games.SetReady(p.GameID, seatID, p.Ready, game.ActionMeta{
		ActionID:         p.ActionID,
		ExpectedRevision: expectedRevision,
	})
	if !c.reportActionResult(p.GameID, p.ActionID, result, err) {
		return
	}
	c.sendGameState(p.GameID)
}

func (c *Client) handleExecuteRound(payload json.RawMessage) {
	var p executeRoundPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Printf("execute_round payload error: %v", err)
		return
	}
	if c.seatForGame(p.GameID) == "" {
		c.sendError("unauthorized")
		return
	}

	seed := p.Seed
	if seed == 0 && c.deps.Config.Seed != nil {
		seed = *c.deps.Config.Seed
	}

	events, executed, err := c.deps.Games.ExecuteRound(p.GameID, seed)
	if err != nil {
		c.sendError("execute_round_failed")
		return
	}
	if !executed {
		c.sendError("not_all_players_ready")
		return
	}

	if err := c.hub.BroadcastRoundEvents(p.GameID, events); err != nil {
		log.Printf("broadcasting round events: %v", err)
	}
	c.sendGameState(p.GameID)
}

// reportActionResult sends an action_accepted/action_rejected response and
// reports whether the action actually succeeded.
func (c *Client) reportActionResult(gameID, actionID string, result *game.ActionResult, err error) bool {
	if err != nil {
		if mismatch, ok := err.(*game.RevisionMismatchError); ok {
			c.sendActionRejected(actionID, "revision_mismatch", mismatch.Error(), map[string]any{
				"expectedRevision": mismatch.Expected,
				"currentRevision":  mismatch.Current,
			})
			return false
		}
		c.sendActionRejected(actionID, "action_rejected", err.Error())
		return false
	}

	acceptedMsg, _ := json.Marshal(map[string]any{
		"type": "action_accepted",
		"payload": map[string]any{
			"actionId":    actionID,
			"newRevision": result.Revision,
			"duplicate":   result.Duplicate,
		},
	})
	c.send <- acceptedMsg
	return true
}

func (c *Client) sendGameState(gameID string) {
	gs, ok := c.deps.Games.GetGame(gameID)
	if !ok {
		return
	}
	revision, _ := c.deps.Games.GetRevision(gameID)
	state := game.SerializeState(gs, gameID, revision)
	if err := c.hub.BroadcastGameState(gameID, state); err != nil {
		log.Printf("broadcasting game state: %v", err)
	}
}

func (c *Client) sendError(code string) {
	msg, _ := json.Marshal(map[string]any{
		"type":    "error",
		"payload": code,
	})
	c.send <- msg
}

func (c *Client) sendActionRejected(actionID, code, message string, extras ...map[string]any) {
	payload := map[string]any{
		"actionId": actionID,
		"error":    code,
		"message":  message,
	}
	if len(extras) > 0 {
		for k, v := range extras[0] {
			payload[k] = v
		}
	}
	msg, _ := json.Marshal(map[string]any{
		"type":    "action_rejected",
		"payload": payload,
	})
	c.send <- msg
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			if err := c.handleWriteMessage(message, ok); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.handlePing(); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleWriteMessage(message []byte, ok bool) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	if !ok {
		_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
		return fmt.Errorf("channel closed")
	}

	w, err := c.conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}
	if _, err := w.Write(message); err != nil {
		return err
	}

	return w.Close()
}

func (c *Client) handlePing() error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}
