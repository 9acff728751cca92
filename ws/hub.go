package ws

// Hub de notificaciones de agenda: cuando alguien guarda o publica una
// programación, las demás sesiones con el calendario abierto reciben el
// evento y refrescan su copia.

import (
	"encoding/json"

	"github.com/gorilla/websocket"

	"github.com/Adagu69/calendario-medico-sub000/pkg/logger"
)

var HubInstance = NewHub()

func init() {
	go HubInstance.Run()
}

// Client es una sesión WebSocket conectada.
type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

type Hub struct {
	Clients    map[*Client]bool
	Broadcast  chan []byte
	Register   chan *Client
	Unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Broadcast:  make(chan []byte),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// ScheduleEvent es el mensaje que se difunde a las sesiones abiertas.
type ScheduleEvent struct {
	Type    string `json:"type"` // month_updated | month_published | draft_saved
	MonthID int    `json:"month_id"`
	Day     int    `json:"day,omitempty"`
	By      int    `json:"by,omitempty"`
}

// Publish serializa y difunde un evento de agenda.
func (h *Hub) Publish(ev ScheduleEvent) {
	msg, err := json.Marshal(ev)
	if err != nil {
		logger.Log().WithError(err).Warn("no se pudo serializar el evento de agenda")
		return
	}
	h.Broadcast <- msg
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.Clients[client] = true
			logger.Log().Debug("sesión de agenda conectada")
		case client := <-h.Unregister:
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				close(client.Send)
				logger.Log().Debug("sesión de agenda desconectada")
			}
		case message := <-h.Broadcast:
			for client := range h.Clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.Clients, client)
				}
			}
		}
	}
}
