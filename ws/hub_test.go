package ws

import (
	"testing"
	"time"
)

func newTestHub() *Hub {
	return &Hub{
		clients:    &clients{c: make(map[uint]map[string]*Client)},
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

func newTestClient(h *Hub, userID uint, ip string) *Client {
	return &Client{hub: h, userID: userID, ip: ip, send: make(chan []byte, 1)}
}

// waitRegistered blocks until the run loop has installed c.
func waitRegistered(t *testing.T, h *Hub, c *Client) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		h.clients.Lock()
		installed := h.clients.c[c.userID][c.ip] == c
		h.clients.Unlock()
		if installed {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("client was not registered")
}

func TestHubPush(t *testing.T) {
	h := newTestHub()
	go h.Run()
	defer close(h.done)

	follower := newTestClient(h, 1, "10.0.0.1")
	bystander := newTestClient(h, 2, "10.0.0.2")
	h.register <- follower
	h.register <- bystander
	waitRegistered(t, h, follower)
	waitRegistered(t, h, bystander)

	h.Push([]uint{1}, []byte("new post"))

	select {
	case msg := <-follower.send:
		if string(msg) != "new post" {
			t.Errorf("follower received %q, want \"new post\"", msg)
		}
	case <-time.After(time.Second):
		t.Fatalf("follower did not receive the push")
	}
	select {
	case msg := <-bystander.send:
		t.Errorf("bystander received %q, want nothing", msg)
	default:
	}
}

func TestHubUnregister(t *testing.T) {
	h := newTestHub()
	go h.Run()
	defer close(h.done)

	c := newTestClient(h, 1, "10.0.0.1")
	h.register <- c
	waitRegistered(t, h, c)
	h.unregister <- c

	// the send channel is closed on unregister
	select {
	case _, ok := <-c.send:
		if ok {
			t.Errorf("send channel delivered a value, want closed")
		}
	case <-time.After(time.Second):
		t.Fatalf("send channel was not closed")
	}

	// pushing to a gone user must not panic
	h.Push([]uint{1}, []byte("late"))
}

func TestHubReplacesDuplicateDevice(t *testing.T) {
	h := newTestHub()
	go h.Run()
	defer close(h.done)

	first := newTestClient(h, 1, "10.0.0.1")
	second := newTestClient(h, 1, "10.0.0.1")
	h.register <- first
	h.register <- second
	waitRegistered(t, h, second)

	// the replaced client is closed
	select {
	case _, ok := <-first.send:
		if ok {
			t.Errorf("first client received a value, want closed channel")
		}
	default:
		t.Errorf("first client was not closed on replacement")
	}

	h.Push([]uint{1}, []byte("post"))
	select {
	case msg := <-second.send:
		if string(msg) != "post" {
			t.Errorf("second client received %q, want \"post\"", msg)
		}
	case <-time.After(time.Second):
		t.Fatalf("second client did not receive the push")
	}
}
