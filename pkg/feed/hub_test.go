package feed

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"planetfall/pkg/types"
)

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	hub := NewHub(nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("player"))
	}))
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, hub *Hub, base, player, extra string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(base+"/?player="+player+extra, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	deadline := time.Now().Add(2 * time.Second)
	for hub.Count(player) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("%s never registered", player)
		}
		time.Sleep(5 * time.Millisecond)
	}
	return conn
}

func TestPublishReachesOwnerOnly(t *testing.T) {
	hub, base := startHub(t)
	alice := dial(t, hub, base, "alice", "")
	dial(t, hub, base, "bob", "")

	hub.Publish(types.Event{Type: types.EventBattleResolved, PlayerID: "bob"})
	hub.Publish(types.Event{Type: types.EventActionCompleted, PlayerID: "alice"})

	alice.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev types.Event
	if err := alice.ReadJSON(&ev); err != nil {
		t.Fatal(err)
	}
	if ev.PlayerID != "alice" || ev.Type != types.EventActionCompleted {
		t.Errorf("alice received someone else's event: %+v", ev)
	}
}

func TestMsgpackFrames(t *testing.T) {
	hub, base := startHub(t)
	conn := dial(t, hub, base, "carol", "&format=msgpack")

	hub.Publish(types.Event{Type: types.EventCellsDiscovered, PlayerID: "carol", Data: map[string]interface{}{"planetId": "p1"}})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	kind, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if kind != websocket.BinaryMessage {
		t.Fatalf("Expected a binary frame, got %d", kind)
	}
	var ev types.Event
	if err := msgpack.Unmarshal(data, &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Type != types.EventCellsDiscovered {
		t.Errorf("Unexpected event %+v", ev)
	}
}

func TestUnregisterOnClose(t *testing.T) {
	hub, base := startHub(t)
	conn := dial(t, hub, base, "dave", "")
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Count("dave") != 0 {
		if time.Now().After(deadline) {
			t.Fatal("closed connection was never unregistered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	hub.Publish(types.Event{Type: types.EventActionCompleted, PlayerID: "dave"})
}
