package debug

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/voxhunt/server/internal/config"
	"github.com/voxhunt/server/internal/geom"
	"github.com/voxhunt/server/internal/grid"
)

// Command is an external block edit received from a debug client, applied
// by the simulation at the start of the next tick.
type Command struct {
	Type string // "place_block" or "remove_block"
	Cell grid.Cell
}

// EntitySnapshot is one entity's per-tick observable output.
type EntitySnapshot struct {
	ID        uint64  `json:"id"`
	X         float64 `json:"x"`
	Z         float64 `json:"z"`
	Facing    float64 `json:"facing"`
	Marker    string  `json:"marker"`
	Archetype string  `json:"archetype,omitempty"`
}

type cellSnapshot struct {
	X       int  `json:"x"`
	Z       int  `json:"z"`
	Blocked bool `json:"blocked"`
}

type snapshotMessage struct {
	Type     string           `json:"type"`
	Tick     uint64           `json:"tick"`
	Entities []EntitySnapshot `json:"entities"`
	Cells    []cellSnapshot   `json:"cells,omitempty"`
}

type clientMessage struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Z    float64 `json:"z"`
}

type client struct {
	conn *websocket.Conn

	mu      sync.Mutex // guards writes and the view center
	view    geom.Vec2
	hasView bool
}

// Server is the debug viewer endpoint: a websocket feed broadcasting
// per-tick snapshots and accepting block placement commands. It runs on its
// own goroutines; the only contact points with the simulation are Drain and
// Broadcast, both called from the tick loop.
type Server struct {
	cfg      config.DebugConfig
	log      *zap.Logger
	httpSrv  *http.Server
	upgrader websocket.Upgrader

	mu       sync.Mutex
	clients  map[*client]struct{}
	commands chan Command
}

func NewServer(cfg config.DebugConfig, log *zap.Logger) *Server {
	s := &Server{
		cfg: cfg,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients:  make(map[*client]struct{}),
		commands: make(chan Command, 256),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	s.httpSrv = &http.Server{
		Addr:    cfg.BindAddress,
		Handler: mux,
	}
	return s
}

// Start begins serving in the background.
func (s *Server) Start() {
	go func() {
		s.log.Info("debug feed listening", zap.String("addr", s.cfg.BindAddress))
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("debug feed server error", zap.Error(err))
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("debug client upgrade failed", zap.Error(err))
		return
	}
	c := &client{conn: conn}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	s.log.Info("debug client connected", zap.String("remote", conn.RemoteAddr().String()))

	go s.readLoop(c)
}

func (s *Server) readLoop(c *client) {
	defer func() {
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
		c.conn.Close()
	}()
	for {
		var msg clientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		switch msg.Type {
		case "view":
			c.mu.Lock()
			c.view = geom.Vec2{X: msg.X, Z: msg.Z}
			c.hasView = true
			c.mu.Unlock()
		case "place_block", "remove_block":
			cmd := Command{
				Type: msg.Type,
				Cell: grid.WorldToCell(geom.Vec2{X: msg.X, Z: msg.Z}),
			}
			select {
			case s.commands <- cmd:
			default:
				s.log.Warn("debug command queue full, dropping",
					zap.String("type", msg.Type))
			}
		}
	}
}

// Drain returns all commands received since the last call. Non-blocking.
func (s *Server) Drain() []Command {
	var out []Command
	for {
		select {
		case cmd := <-s.commands:
			out = append(out, cmd)
		default:
			return out
		}
	}
}

// Broadcast sends the tick snapshot to every connected client. The cells
// callback supplies grid statuses around each client's own view center.
func (s *Server) Broadcast(tick uint64, entities []EntitySnapshot, cells func(center geom.Vec2, radius int) []grid.CellStatus) {
	s.mu.Lock()
	targets := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		targets = append(targets, c)
	}
	s.mu.Unlock()

	for _, c := range targets {
		c.mu.Lock()
		msg := snapshotMessage{Type: "snapshot", Tick: tick, Entities: entities}
		if c.hasView {
			statuses := cells(c.view, s.cfg.ViewRadius)
			msg.Cells = make([]cellSnapshot, len(statuses))
			for i, st := range statuses {
				msg.Cells[i] = cellSnapshot{X: st.Cell.X, Z: st.Cell.Z, Blocked: st.Blocked}
			}
		}
		c.conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
		err := c.conn.WriteJSON(msg)
		c.mu.Unlock()
		if err != nil {
			s.log.Debug("debug client write failed, dropping",
				zap.String("remote", c.conn.RemoteAddr().String()), zap.Error(err))
			s.mu.Lock()
			delete(s.clients, c)
			s.mu.Unlock()
			c.conn.Close()
		}
	}
}
