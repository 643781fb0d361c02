// Package realtime pushes drawer events to connected websocket clients.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"siso/internal/apierror"
	"siso/internal/auth"
	"siso/internal/dto"
	"siso/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 16
)

type client struct {
	conn   *websocket.Conn
	caller *auth.Caller
	send   chan []byte
}

// wants reports whether ev should reach this client: admins see every
// drawer, others only their own.
func (c *client) wants(ev dto.Evento) bool {
	return c.caller.IsAdmin() || c.caller.IsSelf(ev.UsuarioID)
}

// Hub owns the client set; only Run touches it.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan dto.Evento
	register   chan *client
	unregister chan *client
	count      chan chan int
	done       chan struct{}
	upgrader   websocket.Upgrader
}

func NewHub(allowedOrigins []string) *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan dto.Evento, 64),
		register:   make(chan *client),
		unregister: make(chan *client),
		count:      make(chan chan int),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || (len(allowed) == 1 && allowed[0] == "*") {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}

// Run serves register/unregister/broadcast until ctx is cancelled, then
// closes every connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			return

		case c := <-h.register:
			h.clients[c] = true
			log.Debug().Uint("usuario_id", c.caller.UserID).Int("clients", len(h.clients)).Msg("websocket conectado")

		case c := <-h.unregister:
			if h.clients[c] {
				delete(h.clients, c)
				close(c.send)
				log.Debug().Uint("usuario_id", c.caller.UserID).Int("clients", len(h.clients)).Msg("websocket desconectado")
			}

		case ev := <-h.broadcast:
			msg, err := json.Marshal(ev)
			if err != nil {
				log.Error().Err(err).Msg("websocket: marshal evento")
				continue
			}
			for c := range h.clients {
				if !c.wants(ev) {
					continue
				}
				select {
				case c.send <- msg:
				default:
					// slow consumer
					delete(h.clients, c)
					close(c.send)
				}
			}

		case reply := <-h.count:
			reply <- len(h.clients)
		}
	}
}

// Publish queues ev for broadcast without blocking the caller; events are
// dropped when the queue is full.
func (h *Hub) Publish(_ context.Context, ev dto.Evento) {
	select {
	case h.broadcast <- ev:
	default:
		log.Warn().Str("tipo", ev.Tipo).Uint("caixa_id", ev.CaixaID).Msg("websocket: fila cheia, evento descartado")
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	reply := make(chan int)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}

// ServeWs upgrades an authenticated request and registers the connection.
func (h *Hub) ServeWs(c *gin.Context) {
	caller := middleware.GetCaller(c)
	if caller == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Autenticação requerida"))
		return
	}
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade")
		return
	}

	cl := &client{conn: conn, caller: caller, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- cl:
	case <-h.done:
		_ = conn.Close()
		return
	}
	go h.writePump(cl)
	go h.readPump(cl)
}

// readPump only drains control frames to detect disconnects.
func (h *Hub) readPump(c *client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
