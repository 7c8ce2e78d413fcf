package game

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is the slice of *websocket.Conn the engine needs. Tests substitute
// an in-memory recorder.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Subscriber serializes writes to one connection. The write mutex keeps
// broadcast fan-out and direct replies from interleaving frames.
type Subscriber struct {
	conn Conn
	mu   sync.Mutex
}

// NewSubscriber wraps an upgraded connection for the engine.
func NewSubscriber(conn Conn) *Subscriber {
	return &Subscriber{conn: conn}
}

func (s *Subscriber) write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// closeNormal sends a normal-closure frame and closes the socket.
func (s *Subscriber) closeNormal(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	s.conn.WriteMessage(websocket.CloseMessage, payload)
	s.conn.Close()
}

// outbox accumulates frames while a handler holds the room lock and
// flushes them after the lock is released, preserving per-room ordering
// without writing to sockets under the mutex.
type outbox struct {
	sends  []outboundSend
	closes []*Subscriber
}

type outboundSend struct {
	sub      *Subscriber
	playerID string
	data     []byte
}

// send queues one frame for one subscriber.
func (o *outbox) send(sub *Subscriber, playerID string, msg any) {
	if sub == nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("failed to marshal outbound message: %v", err)
		return
	}
	o.sends = append(o.sends, outboundSend{sub: sub, playerID: playerID, data: data})
}

// close queues a normal-closure for a subscriber, after any queued sends.
func (o *outbox) close(sub *Subscriber) {
	if sub == nil {
		return
	}
	o.closes = append(o.closes, sub)
}

// flush delivers queued frames and returns the players whose connections
// failed mid-write so the caller can run the disconnect path for them.
func (o *outbox) flush() []string {
	var failed []string
	for _, item := range o.sends {
		if err := item.sub.write(item.data); err != nil {
			log.Printf("failed to send to %s: %v", item.playerID, err)
			failed = append(failed, item.playerID)
		}
	}
	for _, sub := range o.closes {
		sub.closeNormal("game over")
	}
	o.sends = nil
	o.closes = nil
	return failed
}
