package net

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Session represents a single connected client. Network I/O runs in
// dedicated goroutines; world state is never touched from them — the game
// loop hands fully-built frames to OutQueue.
type Session struct {
	ID   uint64
	conn *websocket.Conn

	OutQueue chan []byte // writer goroutine drains this

	IP           string
	writeTimeout time.Duration

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	log *zap.Logger
}

func NewSession(conn *websocket.Conn, id uint64, outSize int, writeTimeout time.Duration, log *zap.Logger) *Session {
	return &Session{
		ID:           id,
		conn:         conn,
		OutQueue:     make(chan []byte, outSize),
		IP:           conn.RemoteAddr().String(),
		writeTimeout: writeTimeout,
		closeCh:      make(chan struct{}),
		log:          log,
	}
}

// Start launches the reader and writer goroutines.
func (s *Session) Start(onClose func(id uint64)) {
	go s.writeLoop(onClose)
	go s.readLoop()
}

func (s *Session) writeLoop(onClose func(id uint64)) {
	defer func() {
		s.Close()
		if onClose != nil {
			onClose(s.ID)
		}
	}()
	for {
		select {
		case frame := <-s.OutQueue:
			if s.writeTimeout > 0 {
				_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				s.log.Debug("session write failed",
					zap.Uint64("session", s.ID), zap.Error(err))
				return
			}
		case <-s.closeCh:
			return
		}
	}
}

// readLoop drains inbound messages. Clients of the sync feed send nothing
// after the handshake; a read error means the peer went away.
func (s *Session) readLoop() {
	defer s.Close()
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Send enqueues a frame without blocking the game loop. Frames to a slow
// session are dropped; the next full sync catches it up.
func (s *Session) Send(frame []byte) bool {
	if s.closed.Load() {
		return false
	}
	select {
	case s.OutQueue <- frame:
		return true
	default:
		return false
	}
}

func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.closeCh)
		_ = s.conn.Close()
	})
}
