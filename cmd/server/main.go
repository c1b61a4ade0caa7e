package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lukev/secrettoaster/internal/api"
	"github.com/lukev/secrettoaster/internal/config"
	"github.com/lukev/secrettoaster/internal/game"
	"github.com/lukev/secrettoaster/internal/lobby"
	"github.com/lukev/secrettoaster/internal/websocket"
)

func main() {
	scenarioPath := flag.String("scenario", "", "optional YAML scenario file")
	flag.Parse()

	cfg := config.Default()
	if *scenarioPath != "" {
		loaded, err := config.Load(*scenarioPath)
		if err != nil {
			log.Fatalf("loading scenario: %v", err)
		}
		cfg = loaded
	}

	hub := websocket.NewHub()
	go hub.Run()

	gameMgr := game.NewManager()
	lobbyMgr := lobby.NewManager()
	apiHandler := api.NewHandler(lobbyMgr, gameMgr, cfg)

	deps := websocket.ServerDeps{
		Lobby:  lobbyMgr,
		Games:  gameMgr,
		Config: cfg,
	}

	router := mux.NewRouter()

	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		websocket.ServeWs(hub, deps, w, r)
	})

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	router.Use(corsMiddleware)

	apiHandler.RegisterRoutes(router)

	log.Printf("secret toaster server starting on %s", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, router); err != nil {
		log.Fatal("ListenAndServe: ", err)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
