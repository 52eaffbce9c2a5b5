package net

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/james-salafatinos/mmo4/internal/config"
)

// handshake is the first frame a client must send after the upgrade.
type handshake struct {
	Key string `json:"key"`
}

// Server accepts websocket connections for the sync feed. Sessions only
// receive; the world is mutated exclusively by the game loop.
type Server struct {
	httpServer *http.Server
	upgrader   websocket.Upgrader

	mu       sync.Mutex
	sessions map[uint64]*Session
	nextID   atomic.Uint64

	keyHash      []byte // bcrypt hash; empty disables the handshake check
	outSize      int
	writeTimeout time.Duration
	log          *zap.Logger
}

func NewServer(cfg config.NetworkConfig, log *zap.Logger) *Server {
	s := &Server{
		sessions:     make(map[uint64]*Session),
		keyHash:      []byte(cfg.AccessKeyHash),
		outSize:      cfg.OutQueueSize,
		writeTimeout: cfg.WriteTimeout,
		log:          log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/sync", s.handleSync)
	s.httpServer = &http.Server{
		Addr:    cfg.BindAddress,
		Handler: mux,
	}
	return s
}

// ListenAndServe blocks until Shutdown. Run in its own goroutine.
func (s *Server) ListenAndServe() error {
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	if len(s.keyHash) > 0 {
		if !s.authenticate(conn) {
			s.log.Warn("sync handshake rejected",
				zap.String("ip", conn.RemoteAddr().String()))
			_ = conn.Close()
			return
		}
	}

	id := s.nextID.Add(1)
	sess := NewSession(conn, id, s.outSize, s.writeTimeout, s.log)

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	sess.Start(s.dropSession)
	s.log.Info("client connected",
		zap.Uint64("session", id),
		zap.String("ip", sess.IP))
}

// authenticate reads the handshake frame and compares its key against the
// configured bcrypt hash.
func (s *Server) authenticate(conn *websocket.Conn) bool {
	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		return false
	}
	_ = conn.SetReadDeadline(time.Time{})

	var hs handshake
	if err := json.Unmarshal(raw, &hs); err != nil {
		return false
	}
	return bcrypt.CompareHashAndPassword(s.keyHash, []byte(hs.Key)) == nil
}

func (s *Server) dropSession(id uint64) {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		s.log.Info("client disconnected", zap.Uint64("session", id))
	}
}

// Broadcast enqueues a frame to every connected session. Slow sessions drop
// the frame rather than stalling the game loop.
func (s *Server) Broadcast(frame []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if !sess.Send(frame) {
			s.log.Debug("frame dropped for slow session",
				zap.Uint64("session", sess.ID))
		}
	}
}

// SessionCount reports the number of connected clients.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Shutdown closes every session and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for _, sess := range s.sessions {
		sess.Close()
	}
	s.sessions = make(map[uint64]*Session)
	s.mu.Unlock()
	return s.httpServer.Shutdown(ctx)
}
