// Package api exposes the game engine's five core operations over a plain
// HTTP/JSON interface, for hosts that want a request/response surface
// alongside (or instead of) the websocket event stream.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lukev/secrettoaster/internal/config"
	"github.com/lukev/secrettoaster/internal/game"
	"github.com/lukev/secrettoaster/internal/lobby"
	"github.com/lukev/secrettoaster/internal/models"
)

// Handler wires the lobby and game managers into mux routes.
type Handler struct {
	Lobby  *lobby.Manager
	Games  *game.Manager
	Config config.Config
}

// NewHandler builds a Handler over the given managers and scenario config.
func NewHandler(lobbyMgr *lobby.Manager, gameMgr *game.Manager, cfg config.Config) *Handler {
	return &Handler{Lobby: lobbyMgr, Games: gameMgr, Config: cfg}
}

// RegisterRoutes attaches every endpoint to router under /api.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	s := router.PathPrefix("/api").Subrouter()
	s.HandleFunc("/games", h.handleListGames).Methods("GET")
	s.HandleFunc("/games", h.handleCreateGame).Methods("POST")
	s.HandleFunc("/games/{id}/join", h.handleJoinGame).Methods("POST")
	s.HandleFunc("/games/{id}", h.handleGetGame).Methods("GET")
	s.HandleFunc("/games/{id}/orders", h.handleSubmitOrder).Methods("POST")
	s.HandleFunc("/games/{id}/ready", h.handleSetReady).Methods("POST")
	s.HandleFunc("/games/{id}/round", h.handleExecuteRound).Methods("POST")
}

func (h *Handler) handleListGames(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Lobby.ListGames())
}

func (h *Handler) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string `json:"name"`
		MaxPlayers int    `json:"maxPlayers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.MaxPlayers <= 0 {
		req.MaxPlayers = 6
	}
	meta := h.Lobby.CreateGame(req.Name, req.MaxPlayers)
	if _, err := h.Games.CreateGame(meta.ID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, meta)
}

func (h *Handler) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]
	var req struct {
		Nickname string `json:"nickname"`
		Alliance string `json:"alliance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !h.Lobby.JoinGame(gameID, req.Nickname) {
		writeError(w, http.StatusConflict, "join_failed")
		return
	}
	gs, ok := h.Games.GetGame(gameID)
	if !ok {
		writeError(w, http.StatusNotFound, "game_not_found")
		return
	}
	if gs.GetPlayer(req.Nickname) == nil {
		alliance := req.Alliance
		if alliance == "" {
			alliance = h.Config.AllianceFor(req.Nickname)
		}
		if _, err := gs.AddPlayer(req.Nickname, alliance); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"gameId": gameID, "nickname": req.Nickname})
}

func (h *Handler) handleGetGame(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]
	gs, ok := h.Games.GetGame(gameID)
	if !ok {
		writeError(w, http.StatusNotFound, "game_not_found")
		return
	}
	revision, _ := h.Games.GetRevision(gameID)
	writeJSON(w, http.StatusOK, game.SerializeState(gs, gameID, revision))
}

func (h *Handler) handleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]
	var req struct {
		ActionID         string       `json:"actionId,omitempty"`
		ExpectedRevision *int         `json:"expectedRevision,omitempty"`
		Order            models.Order `json:"order"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	expectedRevision := -1
	if req.ExpectedRevision != nil {
		expectedRevision = *req.ExpectedRevision
	}
	result, err := h.Games.SubmitOrder(gameID, &req.Order, game.ActionMeta{
		ActionID:         req.ActionID,
		ExpectedRevision: expectedRevision,
	})
	if err != nil {
		writeActionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleSetReady(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]
	var req struct {
		Nickname         string `json:"nickname"`
		Ready            bool   `json:"ready"`
		ActionID         string `json:"actionId,omitempty"`
		ExpectedRevision *int   `json:"expectedRevision,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	expectedRevision := -1
	if req.ExpectedRevision != nil {
		expectedRevision = *req.ExpectedRevision
	}
	result, err := h.Games.SetReady(gameID, req.Nickname, req.Ready, game.ActionMeta{
		ActionID:         req.ActionID,
		ExpectedRevision: expectedRevision,
	})
	if err != nil {
		writeActionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleExecuteRound(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]
	var req struct {
		Seed uint64 `json:"seed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	seed := req.Seed
	if seed == 0 && h.Config.Seed != nil {
		seed = *h.Config.Seed
	}
	events, executed, err := h.Games.ExecuteRound(gameID, seed)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"executed": executed,
		"events":   events,
	})
}

func writeActionError(w http.ResponseWriter, err error) {
	if mismatch, ok := err.(*game.RevisionMismatchError); ok {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":            "revision_mismatch",
			"expectedRevision": mismatch.Expected,
			"currentRevision":  mismatch.Current,
		})
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
