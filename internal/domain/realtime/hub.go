package realtime

import (
	"context"
	"encoding/json"
	"expvar"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const userEventsChannel = "ws:user_events"

var (
	socketsOpen     = expvar.NewInt("realtime_sockets_open")
	eventsDelivered = expvar.NewInt("realtime_events_delivered_total")
	eventsDropped   = expvar.NewInt("realtime_events_dropped_total")
)

// envelope is what travels over Redis between instances.
type envelope struct {
	UserID string          `json:"user_id"`
	Event  json.RawMessage `json:"event"`
	Origin string          `json:"origin"`
}

// Connection is one open socket of an account.
type Connection struct {
	UserID uuid.UUID
	Conn   *websocket.Conn
	Send   chan []byte
}

// Hub owns the sockets of this instance. Events for an account are written
// to its local sockets and published on Redis so that the instances
// holding the account's other sockets deliver them too.
type Hub struct {
	mu      sync.RWMutex
	sockets map[uuid.UUID]map[*Connection]struct{}

	joins  chan *Connection
	leaves chan *Connection

	sub     *redis.PubSub
	publish func(ctx context.Context, payload []byte) error
	origin  string

	ctx  context.Context
	stop context.CancelFunc
}

// NewHub creates a hub. With a nil client events stay on this instance.
func NewHub(client *redis.Client) *Hub {
	return NewHubWithInstanceID(client, uuid.NewString())
}

// NewHubWithInstanceID creates a hub whose published events carry origin.
func NewHubWithInstanceID(client *redis.Client, origin string) *Hub {
	ctx, stop := context.WithCancel(context.Background())
	h := &Hub{
		sockets: make(map[uuid.UUID]map[*Connection]struct{}),
		joins:   make(chan *Connection),
		leaves:  make(chan *Connection),
		origin:  origin,
		ctx:     ctx,
		stop:    stop,
	}
	if client != nil {
		h.sub = client.Subscribe(ctx, userEventsChannel)
		h.publish = func(ctx context.Context, payload []byte) error {
			return client.Publish(ctx, userEventsChannel, payload).Err()
		}
	}
	return h
}

// Run processes joins and leaves until Shutdown. Call it in a goroutine.
func (h *Hub) Run() {
	if h.sub != nil {
		go h.consume()
	}
	for {
		select {
		case <-h.ctx.Done():
			return
		case c := <-h.joins:
			h.add(c)
		case c := <-h.leaves:
			h.remove(c)
		}
	}
}

func (h *Hub) add(c *Connection) {
	h.mu.Lock()
	set, ok := h.sockets[c.UserID]
	if !ok {
		set = make(map[*Connection]struct{})
		h.sockets[c.UserID] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()

	socketsOpen.Add(1)
	log.Debug().Str("user_id", c.UserID.String()).Msg("realtime socket opened")
}

func (h *Hub) remove(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.sockets[c.UserID]
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.sockets, c.UserID)
	}
	close(c.Send)
	socketsOpen.Add(-1)
	log.Debug().Str("user_id", c.UserID.String()).Msg("realtime socket closed")
}

func (h *Hub) consume() {
	msgs := h.sub.Channel()
	for {
		select {
		case <-h.ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			h.receive(msg.Payload)
		}
	}
}

// receive delivers an event published by another instance.
func (h *Hub) receive(payload string) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil || env.Origin == h.origin {
		return
	}
	userID, err := uuid.Parse(env.UserID)
	if err != nil {
		return
	}
	h.deliver(userID, env.Event)
}

// Register attaches a socket to its account.
func (h *Hub) Register(c *Connection) {
	select {
	case h.joins <- c:
	case <-h.ctx.Done():
	}
}

// Unregister detaches a socket and closes its send queue.
func (h *Hub) Unregister(c *Connection) {
	select {
	case h.leaves <- c:
	case <-h.ctx.Done():
	}
}

// SendToUser marshals event and delivers it to every socket of userID on
// every instance.
func (h *Hub) SendToUser(userID uuid.UUID, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	h.deliver(userID, data)

	if h.publish == nil {
		return nil
	}
	payload, err := json.Marshal(envelope{UserID: userID.String(), Event: data, Origin: h.origin})
	if err != nil {
		return err
	}
	return h.publish(h.ctx, payload)
}

// deliver never blocks: a socket whose queue is full loses the event.
func (h *Hub) deliver(userID uuid.UUID, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.sockets[userID] {
		select {
		case c.Send <- data:
			eventsDelivered.Add(1)
		default:
			eventsDropped.Add(1)
			log.Warn().Str("user_id", userID.String()).Msg("realtime queue full, event dropped")
		}
	}
}

// ConnectionCount returns the number of sockets open on this instance.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.sockets {
		n += len(set)
	}
	return n
}

// Shutdown stops Run and the Redis subscription.
func (h *Hub) Shutdown() {
	h.stop()
	if h.sub != nil {
		h.sub.Close()
	}
}
