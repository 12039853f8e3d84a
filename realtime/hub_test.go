package realtime

import (
	"encoding/json"
	"testing"
	"time"
)

func newTestClient(rooms ...string) *Client {
	c := &Client{
		Send:  make(chan []byte, 10),
		rooms: make(map[string]bool),
	}
	for _, r := range rooms {
		c.rooms[r] = true
	}
	return c
}

func TestHubRegisterBroadcastUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	client := newTestClient(societyRoom("s100001"))
	hub.register <- client

	data, _ := json.Marshal(envelope{Event: "notice_created", Payload: mustRaw(map[string]string{"title": "water cut"})})
	hub.broadcast <- broadcastMsg{Room: societyRoom("s100001"), Data: data}

	select {
	case got := <-client.Send:
		if string(got) != string(data) {
			t.Fatalf("expected %s, got %s", data, got)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for message")
	}

	hub.unregister <- client
}

func TestHubJoinAndLeaveRooms(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	client := newTestClient(societyRoom("s100001"))
	hub.register <- client

	hub.Join(client, "group:g1")

	data, _ := json.Marshal(envelope{Event: "receiveMessage"})
	hub.broadcast <- broadcastMsg{Room: "group:g1", Data: data}

	select {
	case <-client.Send:
	case <-time.After(1 * time.Second):
		t.Fatal("timeout: joined room did not deliver")
	}

	hub.Leave(client, "group:g1")
	hub.broadcast <- broadcastMsg{Room: "group:g1", Data: data}

	select {
	case got := <-client.Send:
		t.Fatalf("left room still delivered: %s", got)
	case <-time.After(200 * time.Millisecond):
	}

	hub.unregister <- client
}

func TestHubBroadcastSkipsOtherRooms(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	a := newTestClient(societyRoom("s100001"))
	b := newTestClient(societyRoom("s200002"))
	hub.register <- a
	hub.register <- b

	data, _ := json.Marshal(envelope{Event: "poll_created"})
	hub.broadcast <- broadcastMsg{Room: societyRoom("s100001"), Data: data}

	select {
	case <-a.Send:
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for message in own room")
	}

	select {
	case got := <-b.Send:
		t.Fatalf("other society received message: %s", got)
	case <-time.After(200 * time.Millisecond):
	}

	hub.unregister <- a
	hub.unregister <- b
}
