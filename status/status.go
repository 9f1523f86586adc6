package status

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	INFO = iota
	WARNING
	ERROR
	PROGRESS
)

type status struct {
	Message string
	Time    time.Time
	Type    int
	Job     string `json:",omitempty"`
}

// client receives records of one export job, or of every job when job is empty
type client struct {
	conn *websocket.Conn
	job  string
	send chan []byte
}

func (c *client) wants(s *status) bool {
	return c.job == "" || c.job == s.Job
}

func (c *client) writePump() {
	ticker := time.NewTicker(time.Second * 30)
	defer func() {
		ticker.Stop()
		defaultHub.unregister(c)
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(40 * time.Second)); err != nil {
				log.Printf("[status] ws deadline error: %v", err)
				return
			}
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Printf("[status] ws write msg error: %v", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(40 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[status] ws write ping error: %v", err)
				return
			}
		}
	}
}

// readPump drains control frames so pongs and close are handled
func (c *client) readPump() {
	defer c.conn.Close()
	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			return
		}
	}
}

// NewClient streams export records to conn. An empty job subscribes to all
// exports, the last broadcast record is replayed on connect.
func NewClient(conn *websocket.Conn, job string) *client {
	c := &client{conn: conn, job: job, send: make(chan []byte, 32)}
	defaultHub.register(c)
	go c.writePump()
	go c.readPump()
	return c
}

type hub struct {
	lock    sync.Mutex
	clients map[*client]bool
	last    *status
	lastRaw []byte
	in      chan *status
}

var defaultHub = newHub()

func newHub() *hub {
	h := &hub{
		clients: make(map[*client]bool),
		in:      make(chan *status, 64),
	}
	go h.run()
	return h
}

func (h *hub) register(c *client) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.clients[c] = true
	if h.last != nil && c.wants(h.last) {
		c.send <- h.lastRaw
	}
}

func (h *hub) unregister(c *client) {
	h.lock.Lock()
	defer h.lock.Unlock()
	delete(h.clients, c)
}

func (h *hub) run() {
	for s := range h.in {
		data, err := json.Marshal(s)
		if err != nil {
			log.Printf("[status] marshal error: %v", err)
			continue
		}
		h.lock.Lock()
		h.last, h.lastRaw = s, data
		for c := range h.clients {
			if !c.wants(s) {
				continue
			}
			select {
			case c.send <- data:
			default:
				// slow client, drop message instead of stalling exports
			}
		}
		h.lock.Unlock()
	}
}

func (h *hub) send(s *status) {
	s.Time = time.Now()
	h.in <- s
}

// BroadcastListener forwards export log records of one job to websocket clients
func BroadcastListener(job string) Listener {
	return ListenerFunc(func(r Record) {
		defaultHub.send(&status{Message: r.Message, Type: r.Type, Job: job})
	})
}
