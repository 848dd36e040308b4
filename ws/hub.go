package ws

import (
	"sync"
)

var hub *Hub
var once sync.Once

type clients struct {
	sync.Mutex
	// user id -> device ip -> client
	c map[uint]map[string]*Client
}

// Hub tracks connected feed listeners. A user may be connected from
// several devices; each gets its own client.
type Hub struct {
	clients    *clients
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

func GetHub() *Hub {
	once.Do(func() {
		hub = &Hub{
			clients:    &clients{c: make(map[uint]map[string]*Client)},
			register:   make(chan *Client),
			unregister: make(chan *Client),
			done:       make(chan struct{}),
		}
	})
	return hub
}

func (h *Hub) Register() chan<- *Client   { return h.register }
func (h *Hub) Unregister() chan<- *Client { return h.unregister }

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients.Lock()
			if h.clients.c[c.userID] == nil {
				h.clients.c[c.userID] = make(map[string]*Client)
			}
			if old := h.clients.c[c.userID][c.ip]; old != nil {
				old.close()
			}
			h.clients.c[c.userID][c.ip] = c
			h.clients.Unlock()
		case c := <-h.unregister:
			h.clients.Lock()
			if devices := h.clients.c[c.userID]; devices != nil {
				if devices[c.ip] == c {
					delete(devices, c.ip)
					c.close()
				}
				if len(devices) == 0 {
					delete(h.clients.c, c.userID)
				}
			}
			h.clients.Unlock()
		case <-h.done:
			return
		}
	}
}

// Push delivers payload to every connected device of every user in
// userIDs. Slow clients are skipped rather than blocking the caller.
func (h *Hub) Push(userIDs []uint, payload []byte) {
	h.clients.Lock()
	defer h.clients.Unlock()
	for _, id := range userIDs {
		for _, c := range h.clients.c[id] {
			select {
			case c.send <- payload:
			default:
			}
		}
	}
}

// Close stops the run loop and disconnects every client.
func (h *Hub) Close() {
	close(h.done)
	h.clients.Lock()
	defer h.clients.Unlock()
	for _, devices := range h.clients.c {
		for _, c := range devices {
			c.close()
		}
	}
	h.clients.c = make(map[uint]map[string]*Client)
}
