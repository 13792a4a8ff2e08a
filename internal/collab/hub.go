package collab

import (
	"context"
	"log/slog"
	"time"

	"github.com/inamate/inamate/canvas-go/internal/document"
	"github.com/inamate/inamate/canvas-go/internal/engine"
)

const (
	defaultTickInterval = 10 * time.Millisecond
	loadTimeout         = 10 * time.Second
)

// DocumentLoader fetches the scene a room is opened for.
type DocumentLoader func(ctx context.Context, sceneID string) (*document.Scene, error)

type inbound struct {
	client *Client
	msg    *Message
}

// Hub owns every room. All engine work happens on the goroutine running
// Run, which makes it the single UI thread for all window surfaces.
type Hub struct {
	load   DocumentLoader
	images engine.ImageResolver
	tick   time.Duration
	log    *slog.Logger

	rooms      map[string]*Room // sceneID -> room
	register   chan *Client
	unregister chan *Client
	inbound    chan inbound
	done       chan struct{}
}

type HubOption func(*Hub)

func WithImages(r engine.ImageResolver) HubOption {
	return func(h *Hub) { h.images = r }
}

// WithTickInterval sets how often playing rooms are checked for a due frame.
func WithTickInterval(d time.Duration) HubOption {
	return func(h *Hub) { h.tick = d }
}

func WithLogger(l *slog.Logger) HubOption {
	return func(h *Hub) { h.log = l }
}

func NewHub(load DocumentLoader, opts ...HubOption) *Hub {
	h := &Hub{
		load:       load,
		tick:       defaultTickInterval,
		log:        slog.Default(),
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inbound, 64),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run processes hub events until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.tick)
	defer func() {
		ticker.Stop()
		h.shutdown()
		close(h.done)
	}()

	for {
		select {
		case client := <-h.register:
			h.addClient(ctx, client)
		case client := <-h.unregister:
			h.removeClient(client)
		case in := <-h.inbound:
			h.handleMessage(in.client, in.msg)
		case now := <-ticker.C:
			h.advance(now)
		case <-ctx.Done():
			return
		}
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} { return h.done }

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Submit queues a client message for the hub goroutine.
func (h *Hub) Submit(client *Client, msg *Message) {
	select {
	case h.inbound <- inbound{client: client, msg: msg}:
	case <-h.done:
	}
}

func (h *Hub) addClient(ctx context.Context, client *Client) {
	room, ok := h.rooms[client.SceneID]
	if !ok {
		var err error
		room, err = h.openRoom(ctx, client.SceneID)
		if err != nil {
			h.log.Warn("open room failed", "scene", client.SceneID, "error", err)
			client.Send(errorMessage(nil, err))
			close(client.send)
			return
		}
		h.rooms[client.SceneID] = room
	}

	room.clients[client.ClientID] = client
	viewer := room.presence.Join(client)

	client.Send(room.welcome(client))
	client.Send(room.presence.StateMessage())
	if frame, err := room.frame(); err != nil {
		client.Send(errorMessage(nil, err))
	} else {
		client.Send(frame)
	}
	room.broadcast(newMessage(TypePresenceJoin, viewer), client.ClientID)

	h.log.Info("client joined", "user", client.UserID, "scene", client.SceneID, "viewers", len(room.clients))
}

func (h *Hub) openRoom(ctx context.Context, sceneID string) (*Room, error) {
	loadCtx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()

	doc, err := h.load(loadCtx, sceneID)
	if err != nil {
		return nil, err
	}
	return NewRoom(sceneID, doc, h.images, h.log)
}

func (h *Hub) removeClient(client *Client) {
	room, ok := h.rooms[client.SceneID]
	if !ok {
		return
	}
	if _, ok := room.clients[client.ClientID]; !ok {
		return
	}

	delete(room.clients, client.ClientID)
	close(client.send)
	room.presence.Leave(client.ClientID)

	if len(room.clients) == 0 {
		if err := room.Close(); err != nil {
			h.log.Warn("close room", "scene", client.SceneID, "error", err)
		}
		delete(h.rooms, client.SceneID)
	} else {
		room.broadcast(newMessage(TypePresenceLeave, PresenceLeavePayload{ClientID: client.ClientID}), "")
	}

	h.log.Info("client left", "user", client.UserID, "scene", client.SceneID)
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	room, ok := h.rooms[sender.SceneID]
	if !ok {
		return
	}
	if _, ok := room.clients[sender.ClientID]; !ok {
		return
	}

	reply, broadcast, err := room.apply(sender, msg)
	if err != nil {
		h.log.Debug("request failed", "type", msg.Type, "user", sender.UserID, "error", err)
		sender.Send(errorMessage(msg, err))
	}
	if reply != nil {
		reply.Seq = msg.Seq
		sender.Send(reply)
	}
	if broadcast != nil {
		room.broadcast(broadcast, "")
	}
	h.flush(room)
}

func (h *Hub) flush(room *Room) {
	frame, err := room.flush()
	if err != nil {
		h.log.Warn("draw pass failed", "scene", room.sceneID, "error", err)
		return
	}
	if frame != nil {
		room.broadcast(frame, "")
	}
}

func (h *Hub) advance(now time.Time) {
	for _, room := range h.rooms {
		if room.tick(now) {
			h.flush(room)
		}
	}
}

func (h *Hub) shutdown() {
	for sceneID, room := range h.rooms {
		for _, c := range room.clients {
			close(c.send)
		}
		if err := room.Close(); err != nil {
			h.log.Warn("close room", "scene", sceneID, "error", err)
		}
		delete(h.rooms, sceneID)
	}
}
