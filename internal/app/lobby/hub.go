/*
Package lobby contains the realtime core of the dashboard.

This file defines the Hub, the single broadcast channel connecting the server
to every active browser session. One goroutine owns the client set and the
lobby roster, so every state change and fan-out is serialized: events
published from a single causal chain (write-then-publish) never reorder for a
subscriber. Delivery is fire-and-forget; a slow client is dropped, never
waited on.
*/
package lobby

import (
	"sync"
	"sync/atomic"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"vaultboard/internal/app/model"
	"vaultboard/internal/app/store"
	"vaultboard/internal/pkg/logx"
)

const (
	// broadcastChannelBuffer absorbs bursts of published events.
	broadcastChannelBuffer = 1024

	// lifecycleChannelBuffer absorbs bursts of connects/joins/messages.
	lifecycleChannelBuffer = 64

	// HistoryHandoffCount is how many recent messages a joining client
	// receives. Deliberately smaller than the retained history cap.
	HistoryHandoffCount = 50
)

// joinRequest asks the hub to add a connection to the lobby roster.
type joinRequest struct {
	client      *Client
	participant model.Participant
}

// inboundMessage is a chat message received from a connection.
type inboundMessage struct {
	client *Client
	msg    model.ChatMessage
}

// Hub coordinates all websocket subscribers and the lobby roster.
type Hub struct {
	store *store.Store
	clock clockwork.Clock

	// clients and roster are owned by the Run goroutine exclusively.
	clients map[string]*Client
	roster  map[string]model.Participant

	register   chan *Client
	unregister chan *Client
	join       chan joinRequest
	inbound    chan inboundMessage
	broadcast  chan []byte

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	// online mirrors len(roster) for cheap reads outside the Run goroutine.
	online atomic.Int64

	logger zerolog.Logger
}

// NewHub constructs a Hub. Run must be started by the caller.
func NewHub(docStore *store.Store, clock clockwork.Clock) *Hub {
	hubLogger := logx.Logger().With().Str("component", "Hub").Logger()

	h := &Hub{
		store:      docStore,
		clock:      clock,
		clients:    make(map[string]*Client),
		roster:     make(map[string]model.Participant),
		register:   make(chan *Client, lifecycleChannelBuffer),
		unregister: make(chan *Client, lifecycleChannelBuffer),
		join:       make(chan joinRequest, lifecycleChannelBuffer),
		inbound:    make(chan inboundMessage, lifecycleChannelBuffer),
		broadcast:  make(chan []byte, broadcastChannelBuffer),
		stop:       make(chan struct{}),
		logger:     hubLogger,
	}

	h.wg.Add(1)

	return h
}

// Run is the hub event loop. It owns clients and roster; nothing else may
// touch them.
func (h *Hub) Run() {
	defer func() {
		for _, client := range h.clients {
			select {
			case <-client.send:
			default:
				close(client.send)
			}
		}
		h.logger.Info().Msg("Hub loop stopped.")
		h.wg.Done()
	}()

	h.logger.Info().Msg("Hub loop started.")

	for {
		select {
		case client := <-h.register:
			h.clients[client.id] = client
			h.logger.Info().
				Str("conn_id", client.id).
				Int("total_clients", len(h.clients)).
				Msg("Client subscribed.")

			h.sendSnapshot(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case req := <-h.join:
			h.handleJoin(req)

		case in := <-h.inbound:
			h.handleMessage(in)

		case frame := <-h.broadcast:
			h.fanOut(frame)

		case <-h.stop:
			return
		}
	}
}

// Shutdown stops the hub loop and waits for it to finish.
func (h *Hub) Shutdown() {
	h.stopOnce.Do(func() {
		close(h.stop)
	})
	h.wg.Wait()
}

// RegisterClient subscribes a new connection to the broadcast channel.
func (h *Hub) RegisterClient(client *Client) {
	select {
	case h.register <- client:
	default:
		h.logger.Warn().Str("conn_id", client.id).Msg("Hub register channel blocked, rejecting client.")
		close(client.send)
	}
}

// OnlineCount returns the current lobby roster size.
func (h *Hub) OnlineCount() int {
	return int(h.online.Load())
}

// PublishToAll broadcasts a named event to every subscribed connection.
// Fire-and-forget: no acknowledgment, no delivery guarantee beyond best
// effort to all currently connected.
func (h *Hub) PublishToAll(event string, payload any) {
	frame, err := marshalEnvelope(event, payload)
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("Failed to marshal broadcast event.")
		return
	}

	select {
	case h.broadcast <- frame:
	default:
		h.logger.Warn().Str("event", event).Msg("Broadcast channel full, dropping event.")
	}
}

// sendSnapshot delivers the connection-scoped initial state to a subscriber.
func (h *Hub) sendSnapshot(client *Client) {
	frame, err := marshalEnvelope(EventStateUpdated, h.store.State())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal state snapshot.")
		return
	}

	client.queue(frame)
}

// handleJoin adds a connection to the roster, hands it the recent history and
// announces the join to everyone.
func (h *Hub) handleJoin(req joinRequest) {
	if _, subscribed := h.clients[req.client.id]; !subscribed {
		h.logger.Warn().Str("conn_id", req.client.id).Msg("Join from unsubscribed connection ignored.")
		return
	}

	h.roster[req.client.id] = req.participant
	h.online.Store(int64(len(h.roster)))

	h.logger.Info().
		Str("username", req.participant.Username).
		Int("online", len(h.roster)).
		Msg("Participant joined the lobby.")

	if frame, err := marshalEnvelope(EventLobbyHistory, h.store.ChatHistoryTail(HistoryHandoffCount)); err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal lobby history.")
	} else {
		req.client.queue(frame)
	}

	h.announce(EventUserJoined, UserEventPayload{Username: req.participant.Username})
	h.announce(EventLobbyOnlineCount, len(h.roster))
}

// handleMessage relays a chat message from a joined participant to everyone,
// including the sender. Messages from connections that never joined are
// dropped with a log entry.
func (h *Hub) handleMessage(in inboundMessage) {
	participant, joined := h.roster[in.client.id]
	if !joined {
		h.logger.Warn().Str("conn_id", in.client.id).Msg("Message from non-lobby connection dropped.")
		return
	}

	msg := in.msg
	if msg.Timestamp == 0 {
		msg.Timestamp = h.clock.Now().UnixMilli()
	}

	h.logger.Debug().
		Str("username", participant.Username).
		Str("text", msg.Text).
		Msg("Lobby message received.")

	if err := h.store.AppendChatMessage(msg); err != nil {
		h.logger.Error().Err(err).Msg("Failed to persist lobby message.")
	}

	h.announce(EventLobbyMessage, msg)
}

// removeClient drops a connection and, if it had joined, announces the leave.
func (h *Hub) removeClient(client *Client) {
	current, ok := h.clients[client.id]
	if !ok || current != client {
		return
	}

	delete(h.clients, client.id)

	select {
	case <-client.send:
	default:
		close(client.send)
	}

	participant, joined := h.roster[client.id]
	if !joined {
		h.logger.Info().Str("conn_id", client.id).Msg("Client disconnected without joining the lobby.")
		return
	}

	delete(h.roster, client.id)
	h.online.Store(int64(len(h.roster)))

	h.logger.Info().
		Str("username", participant.Username).
		Int("online", len(h.roster)).
		Msg("Participant left the lobby.")

	h.announce(EventUserLeft, UserEventPayload{Username: participant.Username})
	h.announce(EventLobbyOnlineCount, len(h.roster))
}

// announce marshals an event and fans it out immediately. Only called from
// the Run goroutine so ordering within one causal chain is preserved.
func (h *Hub) announce(event string, payload any) {
	frame, err := marshalEnvelope(event, payload)
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("Failed to marshal event.")
		return
	}

	h.fanOut(frame)
}

// fanOut delivers a frame to every subscriber, dropping clients whose send
// queue is full.
func (h *Hub) fanOut(frame []byte) {
	var stale []*Client

	for _, client := range h.clients {
		if !client.queue(frame) {
			stale = append(stale, client)
		}
	}

	for _, client := range stale {
		h.logger.Warn().Str("conn_id", client.id).Msg("Dropping unresponsive client.")
		h.removeClient(client)
	}
}
