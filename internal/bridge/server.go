// Package bridge connects the service to a game host over a websocket.
// The host reports worlds, blocks and player events; the service answers
// with chat lines, firework effects and player movement.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/crypto/bcrypt"

	"github.com/udisondev/homestations/internal/homestations"
	"github.com/udisondev/homestations/internal/model"
	"github.com/udisondev/homestations/internal/world"
)

const (
	outQueueSize     = 256
	handshakeTimeout = 5 * time.Second
	writeTimeout     = 5 * time.Second
	pongTimeout      = 60 * time.Second
	pingInterval     = 25 * time.Second
	shutdownTimeout  = 5 * time.Second
)

var (
	_ Handler             = (*homestations.Service)(nil)
	_ homestations.Player = (*Player)(nil)
)

// Handler receives host events. Implemented by *homestations.Service.
type Handler interface {
	PostInit(ctx context.Context)
	OnJoin(ctx context.Context, p homestations.Player)
	OnQuit(p homestations.Player)
	OnInteract(ctx context.Context, p homestations.Player, pos model.BlockPos) bool
	Command(ctx context.Context, p homestations.Player, args []string) bool
}

// Submitter runs fn on the scheduler goroutine.
type Submitter interface {
	Submit(fn func())
}

// Config configures the endpoint.
type Config struct {
	ListenAddress string
	TokenHash     string // bcrypt; empty accepts any token
}

// Server accepts one game host connection at a time on /ws.
type Server struct {
	cfg     Config
	host    *Host
	sched   Submitter
	mirror  *world.Mirror
	handler Handler

	upgrader websocket.Upgrader

	mu      sync.Mutex
	baseCtx context.Context
	conn    *websocket.Conn

	// owned by the scheduler goroutine
	players map[uuid.UUID]*Player
}

// NewServer creates a Server. Inbound events are applied to mirror and
// handler on sched; outbound frames go through host.
func NewServer(cfg Config, host *Host, sched Submitter, mirror *world.Mirror, handler Handler) *Server {
	return &Server{
		cfg:     cfg,
		host:    host,
		sched:   sched,
		mirror:  mirror,
		handler: handler,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // hosts are not browsers
		},
		baseCtx: context.Background(),
		players: make(map[uuid.UUID]*Player),
	}
}

// Handler returns the HTTP handler serving /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)
	return mux
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.ListenAddress, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.baseCtx = ctx
	s.mu.Unlock()

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: handshakeTimeout,
	}

	slog.Info("bridge listening", "address", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("bridge shutdown", "error", err)
		}
		// hijacked connections are not closed by Shutdown
		s.closeConn()
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving bridge: %w", err)
	}
}

func (s *Server) eventContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return context.WithoutCancel(s.baseCtx)
}

func (s *Server) closeConn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		_ = s.conn.Close()
	}
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("bridge upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	if err := s.handshake(conn); err != nil {
		slog.Warn("bridge handshake rejected", "remote", r.RemoteAddr, "error", err)
		closeWith(conn, websocket.ClosePolicyViolation, err.Error())
		return
	}

	out := make(chan []byte, outQueueSize)
	if !s.host.attach(out) {
		slog.Warn("second game host rejected", "remote", r.RemoteAddr)
		closeWith(conn, websocket.ClosePolicyViolation, "host already connected")
		return
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	defer s.disconnect(conn, out)

	if err := writeJSON(conn, WelcomeMsg{Type: TypeWelcome}); err != nil {
		return
	}
	slog.Info("game host connected", "remote", r.RemoteAddr)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go s.writeLoop(ctx, cancel, conn, out)

	_ = conn.SetReadDeadline(time.Now().Add(pongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Info("game host connection lost", "remote", r.RemoteAddr, "error", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongTimeout))
		if err := s.dispatch(data); err != nil {
			slog.Warn("bridge frame rejected", "error", err)
		}
	}
}

func (s *Server) handshake(conn *websocket.Conn) error {
	_ = conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	_, data, err := conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("reading hello: %w", err)
	}

	var hello HelloMsg
	if err := json.Unmarshal(data, &hello); err != nil {
		return fmt.Errorf("decoding hello: %w", err)
	}
	if hello.Type != TypeHello {
		return fmt.Errorf("expected hello, got %q", hello.Type)
	}
	if s.cfg.TokenHash == "" {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.TokenHash), []byte(hello.Token)); err != nil {
		return errors.New("invalid token")
	}
	return nil
}

func (s *Server) writeLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, out <-chan []byte) {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case b := <-out:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				cancel()
				_ = conn.Close()
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				cancel()
				_ = conn.Close()
				return
			}
		}
	}
}

// disconnect detaches the host and quits every tracked player, since the
// host can no longer report them.
//
// The quit work is queued before the host is detached, so a reconnecting
// host cannot get its joins scheduled ahead of it.
func (s *Server) disconnect(conn *websocket.Conn, out chan []byte) {
	s.sched.Submit(func() {
		for id, p := range s.players {
			delete(s.players, id)
			s.handler.OnQuit(p)
		}
	})

	s.host.detach(out)

	s.mu.Lock()
	if s.conn == conn {
		s.conn = nil
	}
	s.mu.Unlock()

	slog.Info("game host disconnected")
}

// dispatch decodes one inbound frame and submits its handling to the
// scheduler. Decoding errors reject the frame only.
func (s *Server) dispatch(data []byte) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decoding frame: %w", err)
	}

	switch env.Type {
	case TypeWorld:
		var msg WorldMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("decoding world: %w", err)
		}
		if msg.Name == "" {
			return errors.New("world without name")
		}
		s.sched.Submit(func() {
			if msg.Removed {
				s.mirror.RemoveWorld(msg.Name)
				return
			}
			s.mirror.SetWorld(msg.Name, msg.MaxHeight)
		})

	case TypeBlocks:
		var msg BlocksMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("decoding blocks: %w", err)
		}
		s.sched.Submit(func() { s.applyBlocks(msg.Blocks) })

	case TypeReady:
		s.sched.Submit(func() {
			slog.Info("world data synced", "regions", s.mirror.RegionCount())
			s.handler.PostInit(s.eventContext())
		})

	case TypeJoin:
		var msg JoinMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("decoding join: %w", err)
		}
		id, err := msg.Player.id()
		if err != nil {
			return err
		}
		s.sched.Submit(func() {
			s.handler.OnJoin(s.eventContext(), s.track(id, msg.Player))
		})

	case TypeQuit:
		var msg QuitMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("decoding quit: %w", err)
		}
		id, err := uuid.Parse(msg.PlayerID)
		if err != nil {
			return fmt.Errorf("parsing player id %q: %w", msg.PlayerID, err)
		}
		s.sched.Submit(func() {
			p, ok := s.players[id]
			if !ok {
				return
			}
			delete(s.players, id)
			s.handler.OnQuit(p)
		})

	case TypeInteract:
		var msg InteractMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("decoding interact: %w", err)
		}
		id, err := msg.Player.id()
		if err != nil {
			return err
		}
		pos, err := msg.Block.blockPos()
		if err != nil {
			return err
		}
		s.sched.Submit(func() {
			handled := s.handler.OnInteract(s.eventContext(), s.track(id, msg.Player), pos)
			s.reply(msg.Ref, handled)
		})

	case TypeCommand:
		var msg CommandMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("decoding command: %w", err)
		}
		id, err := msg.Player.id()
		if err != nil {
			return err
		}
		s.sched.Submit(func() {
			handled := s.handler.Command(s.eventContext(), s.track(id, msg.Player), msg.Args)
			s.reply(msg.Ref, handled)
		})

	case TypeHello:
		return errors.New("duplicate hello")

	default:
		return fmt.Errorf("unknown frame type %q", env.Type)
	}
	return nil
}

func (s *Server) applyBlocks(blocks []BlockMsg) {
	for _, bm := range blocks {
		pos, b, ok, err := bm.block()
		if err != nil {
			slog.Warn("skipping block update", "error", err)
			continue
		}
		if ok {
			err = s.mirror.SetBlock(pos, b)
		} else {
			err = s.mirror.ClearBlock(pos)
		}
		if err != nil {
			slog.Warn("skipping block update", "location", pos, "error", err)
		}
	}
}

// track returns the handle for id, creating it on first sight, refreshed
// with st.
func (s *Server) track(id uuid.UUID, st PlayerState) *Player {
	p, ok := s.players[id]
	if !ok {
		p = newPlayer(s.host, id)
		s.players[id] = p
	}
	p.update(st)
	return p
}

func (s *Server) reply(ref string, handled bool) {
	if ref == "" {
		return
	}
	if err := s.host.send(ResultMsg{Type: TypeResult, Ref: ref, Handled: handled}); err != nil {
		slog.Debug("dropping result", "ref", ref, "error", err)
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, b)
}

func closeWith(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}
