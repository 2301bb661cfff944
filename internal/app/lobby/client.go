/*
Package lobby contains the realtime core of the dashboard.

This file defines the Client struct, representing one active websocket
connection. It manages the connection lifecycle and the message pumps
(ReadPump and WritePump) between the browser and the Hub.
*/
package lobby

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"vaultboard/internal/app/model"
	"vaultboard/internal/pkg/logx"
)

const (
	// timeout duration for writing to the websocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxMessageSize = 8192

	// sendQueueSize is the per-client outbound buffer; a client that cannot
	// drain it fast enough gets disconnected rather than blocking the hub.
	sendQueueSize = 256
)

// Client represents an active websocket connection to the dashboard.
type Client struct {
	// id is the connection identity (not the username; usernames are not unique).
	id string

	// the hub this connection is subscribed to.
	hub *Hub

	// underlying websocket connection object.
	conn *websocket.Conn

	// a buffered channel queuing frames waiting to be sent to the client.
	send chan []byte

	// structured logger with connection context.
	logger zerolog.Logger
}

// NewClient constructs a Client for an upgraded connection.
func NewClient(hub *Hub, conn *websocket.Conn, connID string) *Client {
	clientLogger := logx.Logger().With().
		Str("conn_id", connID).
		Logger()

	return &Client{
		id:     connID,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendQueueSize),
		logger: clientLogger,
	}
}

// ID returns the connection identity.
func (c *Client) ID() string {
	return c.id
}

// ReadPump reads frames from the websocket connection until it closes.
// It handles heartbeats (Pong), envelope parsing, and cleanup on disconnect.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (client close/going away)")
			}
			break
		}

		c.processInboundFrame(messageBytes)
	}
}

// cleanupOnDisconnect unregisters the client from the hub and closes the socket.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Client connection cleanup starting.")

	select {
	case c.hub.unregister <- c:
	default:
		c.logger.Warn().Msg("Hub unregister channel blocked. Connection cleanup still proceeding.")
	}

	if err := c.conn.Close(); err != nil {
		c.logger.Error().Err(err).Msg("Client connection close error")
	}
}

// processInboundFrame dispatches a raw frame received from the client.
func (c *Client) processInboundFrame(messageBytes []byte) {
	var env Envelope
	if err := json.Unmarshal(messageBytes, &env); err != nil {
		c.logger.Warn().Err(err).
			Bytes("message_bytes", messageBytes).
			Msg("Client sent invalid JSON")
		return
	}

	switch env.Event {
	case EventLobbyJoin:
		c.handleJoin(env.Data)

	case EventLobbyMessage:
		c.handleMessage(env.Data)

	default:
		c.logger.Warn().Str("event", env.Event).Msg("Client sent unsupported event")
	}
}

// handleJoin registers the sender in the lobby roster.
func (c *Client) handleJoin(data json.RawMessage) {
	var participant model.Participant
	if err := json.Unmarshal(data, &participant); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid lobbyJoin payload")
		return
	}

	if participant.Username == "" {
		c.logger.Warn().Msg("Client sent lobbyJoin without a username")
		return
	}

	select {
	case c.hub.join <- joinRequest{client: c, participant: participant}:
	default:
		c.logger.Warn().Msg("Hub join channel blocked, dropping lobbyJoin")
	}
}

// handleMessage forwards a chat message to the hub for relay.
func (c *Client) handleMessage(data json.RawMessage) {
	var msg model.ChatMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid lobbyMessage payload")
		return
	}

	select {
	case c.hub.inbound <- inboundMessage{client: c, msg: msg}:
	default:
		c.logger.Warn().Msg("Hub inbound channel blocked, dropping lobbyMessage")
	}
}

// queue attempts to enqueue a frame for delivery to this client.
// Best effort: a full queue drops the frame.
func (c *Client) queue(frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send channel full, dropping frame")
		return false
	}
}

// WritePump writes queued frames to the websocket connection and keeps the
// heartbeat alive.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Error().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !c.writeQueuedFrame(message, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedFrame writes one frame pulled from the send channel.
// Returns false when the WritePump loop should terminate.
func (c *Client) writeQueuedFrame(message []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Error().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		c.logger.Error().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

// writePingMessage sends a periodic Ping to maintain the heartbeat.
// Returns false when the WritePump loop should terminate.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}
