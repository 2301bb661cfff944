package lobby

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"vaultboard/internal/app/model"
	"vaultboard/internal/app/store"
)

func newTestHub(t *testing.T) (*Hub, *store.Store, *clockwork.FakeClock) {
	t.Helper()

	docStore, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("store.New() failed: %v", err)
	}

	clock := clockwork.NewFakeClock()
	hub := NewHub(docStore, clock)
	go hub.Run()
	t.Cleanup(hub.Shutdown)

	return hub, docStore, clock
}

// readFrame pops the next frame queued for the client.
func readFrame(t *testing.T, c *Client) Envelope {
	t.Helper()

	select {
	case frame := <-c.send:
		var env Envelope
		if err := json.Unmarshal(frame, &env); err != nil {
			t.Fatalf("frame is not a valid envelope: %v", err)
		}
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a frame")
		return Envelope{}
	}
}

// subscribe registers a bare client and consumes its state snapshot.
func subscribe(t *testing.T, h *Hub, id string) *Client {
	t.Helper()

	c := NewClient(h, nil, id)
	h.register <- c

	if env := readFrame(t, c); env.Event != EventStateUpdated {
		t.Fatalf("first frame after subscribe = %q, want %q", env.Event, EventStateUpdated)
	}
	return c
}

// joinLobby sends a join request and consumes the joiner-side frames
// (history, userJoined, online count).
func joinLobby(t *testing.T, h *Hub, c *Client, username string) {
	t.Helper()

	h.join <- joinRequest{client: c, participant: model.Participant{Username: username}}

	if env := readFrame(t, c); env.Event != EventLobbyHistory {
		t.Fatalf("first join frame = %q, want %q", env.Event, EventLobbyHistory)
	}
	if env := readFrame(t, c); env.Event != EventUserJoined {
		t.Fatalf("second join frame = %q, want %q", env.Event, EventUserJoined)
	}
	if env := readFrame(t, c); env.Event != EventLobbyOnlineCount {
		t.Fatalf("third join frame = %q, want %q", env.Event, EventLobbyOnlineCount)
	}
}

func waitForOnlineCount(t *testing.T, h *Hub, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.OnlineCount() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("online count = %d, want %d", h.OnlineCount(), want)
}

func TestSubscribeReceivesStateSnapshot(t *testing.T) {
	hub, docStore, _ := newTestHub(t)

	if _, err := docStore.MergeState(model.State{"burnPercent": float64(25)}); err != nil {
		t.Fatalf("MergeState() failed: %v", err)
	}

	c := NewClient(hub, nil, "conn-1")
	hub.register <- c

	env := readFrame(t, c)
	if env.Event != EventStateUpdated {
		t.Fatalf("snapshot event = %q, want %q", env.Event, EventStateUpdated)
	}

	var state model.State
	if err := json.Unmarshal(env.Data, &state); err != nil {
		t.Fatalf("snapshot payload invalid: %v", err)
	}
	if state["burnPercent"] != float64(25) {
		t.Errorf("snapshot burnPercent = %v, want 25", state["burnPercent"])
	}
}

func TestJoinLeaveOnlineCountInvariant(t *testing.T) {
	hub, _, _ := newTestHub(t)

	const joins = 5
	clients := make([]*Client, 0, joins)
	for i := 0; i < joins; i++ {
		c := subscribe(t, hub, fmt.Sprintf("conn-%d", i))
		joinLobby(t, hub, c, fmt.Sprintf("user-%d", i))
		clients = append(clients, c)
	}

	waitForOnlineCount(t, hub, joins)

	const leaves = 2
	for i := 0; i < leaves; i++ {
		hub.unregister <- clients[i]
	}

	waitForOnlineCount(t, hub, joins-leaves)
}

func TestDuplicateUsernamesAreDistinctParticipants(t *testing.T) {
	hub, _, _ := newTestHub(t)

	a := subscribe(t, hub, "conn-a")
	joinLobby(t, hub, a, "Alice")
	b := subscribe(t, hub, "conn-b")
	joinLobby(t, hub, b, "Alice")

	waitForOnlineCount(t, hub, 2)

	hub.unregister <- b
	waitForOnlineCount(t, hub, 1)
}

func TestMessageFromNonParticipantIsDropped(t *testing.T) {
	hub, docStore, _ := newTestHub(t)

	c := subscribe(t, hub, "conn-1")
	hub.inbound <- inboundMessage{client: c, msg: model.ChatMessage{Username: "Ghost", Text: "boo"}}

	// Wait until the hub consumed the frame, then join to flush the loop.
	deadline := time.Now().Add(2 * time.Second)
	for len(hub.inbound) > 0 {
		if time.Now().After(deadline) {
			t.Fatal("hub never consumed the inbound frame")
		}
		time.Sleep(5 * time.Millisecond)
	}
	joinLobby(t, hub, c, "Alice")

	if history := docStore.ChatHistory(); len(history) != 0 {
		t.Errorf("history = %+v, want empty after dropped message", history)
	}
}

func TestMessageIsStampedPersistedAndEchoedToAll(t *testing.T) {
	hub, docStore, clock := newTestHub(t)

	alice := subscribe(t, hub, "conn-a")
	joinLobby(t, hub, alice, "Alice")

	bob := subscribe(t, hub, "conn-b")
	joinLobby(t, hub, bob, "Bob")

	// Alice sees Bob's join announcement and the updated count.
	if env := readFrame(t, alice); env.Event != EventUserJoined {
		t.Fatalf("alice frame = %q, want %q", env.Event, EventUserJoined)
	}
	if env := readFrame(t, alice); env.Event != EventLobbyOnlineCount {
		t.Fatalf("alice frame = %q, want %q", env.Event, EventLobbyOnlineCount)
	}

	hub.inbound <- inboundMessage{client: alice, msg: model.ChatMessage{Username: "Alice", Text: "hi"}}

	wantTS := clock.Now().UnixMilli()

	for _, c := range []*Client{alice, bob} {
		env := readFrame(t, c)
		if env.Event != EventLobbyMessage {
			t.Fatalf("frame = %q, want %q (sender echo included)", env.Event, EventLobbyMessage)
		}

		var msg model.ChatMessage
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			t.Fatalf("lobbyMessage payload invalid: %v", err)
		}
		if msg.Username != "Alice" || msg.Text != "hi" {
			t.Errorf("relayed message = %+v, want Alice/hi", msg)
		}
		if msg.Timestamp != wantTS {
			t.Errorf("relayed timestamp = %d, want server stamp %d", msg.Timestamp, wantTS)
		}
	}

	history := docStore.ChatHistory()
	if len(history) != 1 || history[0].Text != "hi" || history[0].Timestamp != wantTS {
		t.Errorf("persisted history = %+v, want one stamped entry", history)
	}
}

func TestClientTimestampIsPreserved(t *testing.T) {
	hub, docStore, _ := newTestHub(t)

	c := subscribe(t, hub, "conn-1")
	joinLobby(t, hub, c, "Alice")

	hub.inbound <- inboundMessage{client: c, msg: model.ChatMessage{Username: "Alice", Text: "hi", Timestamp: 12345}}

	env := readFrame(t, c)
	var msg model.ChatMessage
	if err := json.Unmarshal(env.Data, &msg); err != nil {
		t.Fatalf("lobbyMessage payload invalid: %v", err)
	}
	if msg.Timestamp != 12345 {
		t.Errorf("timestamp = %d, want client-provided 12345", msg.Timestamp)
	}

	if history := docStore.ChatHistory(); len(history) != 1 || history[0].Timestamp != 12345 {
		t.Errorf("persisted history = %+v, want timestamp 12345", history)
	}
}

func TestHistoryHandoffIsBoundedAndOldestFirst(t *testing.T) {
	hub, docStore, _ := newTestHub(t)

	for i := 0; i < 80; i++ {
		if err := docStore.AppendChatMessage(model.ChatMessage{Username: "Bob", Text: fmt.Sprintf("msg-%d", i)}); err != nil {
			t.Fatalf("AppendChatMessage() failed: %v", err)
		}
	}

	c := subscribe(t, hub, "conn-1")
	hub.join <- joinRequest{client: c, participant: model.Participant{Username: "Alice"}}

	env := readFrame(t, c)
	if env.Event != EventLobbyHistory {
		t.Fatalf("frame = %q, want %q", env.Event, EventLobbyHistory)
	}

	var history []model.ChatMessage
	if err := json.Unmarshal(env.Data, &history); err != nil {
		t.Fatalf("lobbyHistory payload invalid: %v", err)
	}
	if len(history) != HistoryHandoffCount {
		t.Fatalf("hand-off length = %d, want %d", len(history), HistoryHandoffCount)
	}
	if history[0].Text != "msg-30" || history[len(history)-1].Text != "msg-79" {
		t.Errorf("hand-off spans %q..%q, want msg-30..msg-79", history[0].Text, history[len(history)-1].Text)
	}
}

func TestLeaveAnnouncementCarriesUsername(t *testing.T) {
	hub, _, _ := newTestHub(t)

	alice := subscribe(t, hub, "conn-a")
	joinLobby(t, hub, alice, "Alice")

	bob := subscribe(t, hub, "conn-b")
	joinLobby(t, hub, bob, "Bob")

	// Drain Bob's join events from Alice's queue.
	if env := readFrame(t, alice); env.Event != EventUserJoined {
		t.Fatalf("alice frame = %q, want %q", env.Event, EventUserJoined)
	}
	if env := readFrame(t, alice); env.Event != EventLobbyOnlineCount {
		t.Fatalf("alice frame = %q, want %q", env.Event, EventLobbyOnlineCount)
	}

	hub.unregister <- bob

	env := readFrame(t, alice)
	if env.Event != EventUserLeft {
		t.Fatalf("frame = %q, want %q", env.Event, EventUserLeft)
	}
	var payload UserEventPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("userLeft payload invalid: %v", err)
	}
	if payload.Username != "Bob" {
		t.Errorf("userLeft username = %q, want Bob", payload.Username)
	}

	env = readFrame(t, alice)
	if env.Event != EventLobbyOnlineCount {
		t.Fatalf("frame = %q, want %q", env.Event, EventLobbyOnlineCount)
	}
	var count int
	if err := json.Unmarshal(env.Data, &count); err != nil {
		t.Fatalf("lobbyOnlineCount payload invalid: %v", err)
	}
	if count != 1 {
		t.Errorf("online count = %d, want 1", count)
	}
}

func TestDisconnectWithoutJoinIsSilent(t *testing.T) {
	hub, _, _ := newTestHub(t)

	alice := subscribe(t, hub, "conn-a")
	joinLobby(t, hub, alice, "Alice")

	lurker := subscribe(t, hub, "conn-b")
	hub.unregister <- lurker

	// Alice must not see a leave announcement for a connection that never
	// joined; the next frame she sees is a later broadcast.
	hub.PublishToAll(EventGalleryUpdated, nil)

	env := readFrame(t, alice)
	if env.Event != EventGalleryUpdated {
		t.Fatalf("frame = %q, want %q (no leave announcement)", env.Event, EventGalleryUpdated)
	}
	waitForOnlineCount(t, hub, 1)
}

func TestPublishToAllPreservesCausalOrder(t *testing.T) {
	hub, _, _ := newTestHub(t)

	c := subscribe(t, hub, "conn-1")

	hub.PublishToAll(EventStateUpdated, model.State{"seq": float64(1)})
	hub.PublishToAll(EventChartUpdated, model.Chart{Address: "abc"})
	hub.PublishToAll(EventGalleryUpdated, nil)

	wantOrder := []string{EventStateUpdated, EventChartUpdated, EventGalleryUpdated}
	for _, want := range wantOrder {
		env := readFrame(t, c)
		if env.Event != want {
			t.Fatalf("frame = %q, want %q (FIFO per causal chain)", env.Event, want)
		}
	}
}

func TestInvalidationEventHasNoPayload(t *testing.T) {
	hub, _, _ := newTestHub(t)

	c := subscribe(t, hub, "conn-1")
	hub.PublishToAll(EventGalleryUpdated, nil)

	env := readFrame(t, c)
	if env.Event != EventGalleryUpdated {
		t.Fatalf("frame = %q, want %q", env.Event, EventGalleryUpdated)
	}
	if len(env.Data) != 0 {
		t.Errorf("invalidation payload = %s, want none", env.Data)
	}
}
