package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/pinclub/pin-engine/brackets"
	"github.com/pinclub/pin-engine/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Cross-origin clients are expected; auth happens at subscribe time.
		return true
	},
}

// WebSocketHandler upgrades connections and subscribes them to an entity's
// event room.
type WebSocketHandler struct {
	hub    *brackets.Hub
	logger *slog.Logger
}

func NewWebSocketHandler(hub *brackets.Hub, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, logger: logger}
}

// SubscribeTournament handles GET /ws/tournaments/{tournamentID}.
func (h *WebSocketHandler) SubscribeTournament(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.subscribe(w, r, services.TournamentRoom(id))
}

// SubscribeSeason handles GET /ws/seasons/{seasonID}.
func (h *WebSocketHandler) SubscribeSeason(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "seasonID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.subscribe(w, r, services.SeasonRoom(id))
}

func (h *WebSocketHandler) subscribe(w http.ResponseWriter, r *http.Request, room string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed",
			slog.String("room", room), slog.Any("error", err))
		return
	}

	client := &brackets.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: room,
	}
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
