package bus

import (
	"context"
	"sync"
)

// Bus es un canal de publicación/suscripción en proceso para los eventos de
// cascada del dominio. El fan-out es síncrono y en orden de publicación:
// cada suscriptor corre hasta terminar antes de que Publish retorne, así las
// cascadas (borrado de medicamento, descuento de stock) quedan aplicadas
// cuando la acción del usuario termina.
//
// Las suscripciones se cablean una sola vez al arrancar el proceso (ver
// router.NewRouter); un suscriptor nuevo solo observa eventos posteriores.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
}

type Handler func(ctx context.Context, e Event)

func New() *Bus {
	return &Bus{}
}

func (b *Bus) Subscribe(h Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

func (b *Bus) Publish(ctx context.Context, e Event) {
	b.mu.RLock()
	hs := make([]Handler, len(b.handlers))
	copy(hs, b.handlers)
	b.mu.RUnlock()

	for _, h := range hs {
		h(ctx, e)
	}
}

// SubscribeChan expone el bus como un canal, pensado para consumidores de
// streaming (el feed websocket). El envío no bloquea: si el consumidor no
// drena a tiempo, se descartan eventos en vez de frenar al publicador.
func (b *Bus) SubscribeChan(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)
	b.Subscribe(func(_ context.Context, e Event) {
		select {
		case ch <- e:
		default:
		}
	})
	return ch
}
