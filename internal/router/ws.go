package router

import (
	"net/http"

	"github.com/gorilla/websocket"

	"med-cabinet/internal/platform/bus"
	"med-cabinet/internal/platform/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// App de un solo usuario en red propia; no filtramos origen.
	CheckOrigin: func(*http.Request) bool { return true },
}

type wsMessage struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// eventsFeedHandler emite por websocket los eventos de dominio a medida que
// se publican. Cada conexión recibe su propio canal con buffer; si el cliente
// no drena, pierde eventos en vez de frenar al resto.
func eventsFeedHandler(b *bus.Bus, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("ws upgrade failed", map[string]any{"error": err.Error()})
			return
		}
		defer conn.Close()

		done := make(chan struct{})
		go func() {
			defer close(done)
			// Solo leemos para detectar el cierre del cliente.
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ch := b.SubscribeChan(16)
		for {
			select {
			case <-done:
				return
			case <-r.Context().Done():
				return
			case e := <-ch:
				if err := conn.WriteJSON(wsMessage{Event: e.EventName(), Data: e}); err != nil {
					return
				}
			}
		}
	}
}
