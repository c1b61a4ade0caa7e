package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/lukev/secrettoaster/internal/models"
)

func TestHubBroadcastToGame_IsRoomScoped(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c1 := &Client{hub: hub, send: make(chan []byte, 8), seatsByGame: make(map[string]string)}
	c2 := &Client{hub: hub, send: make(chan []byte, 8), seatsByGame: make(map[string]string)}

	hub.register <- c1
	hub.register <- c2
	hub.JoinGame(c1, "g1")
	hub.JoinGame(c2, "g2")

	msg := []byte(`{"type":"game_state_update","payload":{"id":"g1"}}`)
	hub.BroadcastToGame("g1", msg)

	select {
	case got := <-c1.send:
		if string(got) != string(msg) {
			t.Fatalf("unexpected message for c1: %s", string(got))
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timed out waiting for c1 room message")
	}

	select {
	case got := <-c2.send:
		t.Fatalf("c2 should not receive room-scoped message, got: %s", string(got))
	case <-time.After(150 * time.Millisecond):
		// expected
	}

	hub.unregister <- c1
	hub.unregister <- c2
}

func TestHubBroadcastRoundEvents_DeliversTypedEventLog(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c := &Client{hub: hub, send: make(chan []byte, 8), seatsByGame: make(map[string]string)}
	hub.register <- c
	hub.JoinGame(c, "g1")

	events := []models.Event{
		{
			ID: "evt-1", Index: 0, Round: 3, Type: models.EventRoundAdvanced,
			RoundAdvanced: &models.RoundAdvancedEvent{FromRound: 2, ToRound: 3},
		},
		{
			ID: "evt-2", Index: 1, Round: 3, Type: models.EventHexCaptured,
			HexCaptured: &models.HexCapturedEvent{Hex: 55, FromOwner: "bob", ToOwner: "alice"},
		},
	}
	if err := hub.BroadcastRoundEvents("g1", events); err != nil {
		t.Fatalf("BroadcastRoundEvents: %v", err)
	}

	select {
	case got := <-c.send:
		var env outboundEnvelope
		raw := json.RawMessage{}
		env.Payload = &raw
		if err := json.Unmarshal(got, &env); err != nil {
			t.Fatalf("unmarshal envelope: %v", err)
		}
		if env.Type != "round_events" {
			t.Fatalf("expected type round_events, got %s", env.Type)
		}
		var decoded []models.Event
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("unmarshal events payload: %v", err)
		}
		if len(decoded) != 2 || decoded[1].HexCaptured.ToOwner != "alice" {
			t.Fatalf("unexpected decoded events: %+v", decoded)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timed out waiting for round events broadcast")
	}

	hub.unregister <- c
}
