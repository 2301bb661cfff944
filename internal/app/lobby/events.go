/*
Package lobby contains the realtime core of the dashboard: the websocket hub
that fans events out to every connected browser, the per-connection client
pumps, and the lobby roster and chat relay.

This file defines the wire envelope and the event vocabulary. Two delivery
patterns coexist and both are part of the client contract: push events carry
the full updated value (stateUpdated, lobbyMessage, ...) while invalidation
events carry no payload and tell the receiver to re-fetch over HTTP
(galleryUpdated, soldUpdated).
*/
package lobby

import "encoding/json"

// Server-to-client events.
const (
	// EventStateUpdated pushes the full dashboard state document.
	EventStateUpdated = "stateUpdated"

	// EventGalleryUpdated signals that the gallery changed; no payload,
	// receivers re-fetch GET /gallery.
	EventGalleryUpdated = "galleryUpdated"

	// EventSoldUpdated signals that the sold list changed; no payload.
	EventSoldUpdated = "soldUpdated"

	// EventChartUpdated pushes the new contract address for chart reloads.
	EventChartUpdated = "chartUpdated"

	// EventLobbyHistory hands the recent chat history to a joining client.
	EventLobbyHistory = "lobbyHistory"

	// EventUserJoined announces a join, carrying only the username.
	EventUserJoined = "userJoined"

	// EventUserLeft announces a leave, carrying only the username.
	EventUserLeft = "userLeft"

	// EventLobbyOnlineCount pushes the roster size as a bare integer.
	EventLobbyOnlineCount = "lobbyOnlineCount"
)

// Bidirectional events.
const (
	// EventLobbyJoin registers the sender in the lobby roster.
	EventLobbyJoin = "lobbyJoin"

	// EventLobbyMessage is a chat message; the server re-broadcasts it to all
	// participants including the sender.
	EventLobbyMessage = "lobbyMessage"
)

// Envelope is the JSON frame exchanged over the websocket.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// UserEventPayload carries the username of a join/leave announcement.
type UserEventPayload struct {
	Username string `json:"username"`
}

// marshalEnvelope builds the wire bytes for an event. A nil payload produces
// an invalidation frame without a data field.
func marshalEnvelope(event string, payload any) ([]byte, error) {
	env := Envelope{Event: event}

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.Data = data
	}

	return json.Marshal(env)
}
