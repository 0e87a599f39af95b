package live

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/recera/nodecloud/internal/metrics"
	"github.com/recera/nodecloud/pkg/nodecloud"
)

// maxSessionID bounds client supplied session ids
const maxSessionID = 128

var errTooManySessions = errors.New("too many sessions")

// Config configures a live server
type Config struct {
	Options     nodecloud.Options
	FPS         int
	MaxSessions int // 0 means unlimited
	Title       string
	Logger      *zap.Logger
}

// Server accepts live viewer sessions. Each session owns one engine and one
// frame loop; the server only holds the shared dataset.
type Server struct {
	cfg      Config
	log      *zap.Logger
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	sessions map[string]*Session
	entities []nodecloud.Entity
	graph    *nodecloud.Graph
	gen      uint64 // bumped by SetEntities
}

// NewServer creates a live server for entities
func NewServer(entities []nodecloud.Entity, cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Options.Logger == nil {
		cfg.Options.Logger = cfg.Logger.Named("engine")
	}
	s := &Server{
		cfg: cfg,
		log: cfg.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		sessions: make(map[string]*Session),
	}
	s.SetEntities(entities)
	return s
}

// SetEntities replaces the dataset. Open sessions rebuild their graph
// between frames and receive a new GRAPH manifest.
func (s *Server) SetEntities(entities []nodecloud.Entity) {
	entities = append([]nodecloud.Entity(nil), entities...)
	g := nodecloud.Build(entities, s.cfg.Options)

	s.mu.Lock()
	s.entities = entities
	s.graph = g
	s.gen++
	open := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		open = append(open, sess)
	}
	s.mu.Unlock()

	st := g.Stats()
	metrics.DatasetNodes.WithLabelValues(nodecloud.KindPrimary.String()).Set(float64(st.Primaries))
	metrics.DatasetNodes.WithLabelValues(nodecloud.KindSecondary.String()).Set(float64(st.Secondaries))

	for _, sess := range open {
		sess.reload(entities)
	}
}

// Dataset returns the current entities and their graph
func (s *Server) Dataset() ([]nodecloud.Entity, *nodecloud.Graph) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entities, s.graph
}

func (s *Server) snapshot() ([]nodecloud.Entity, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entities, s.gen
}

// SessionCount returns the number of open sessions
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// GetSession retrieves a session by ID
func (s *Server) GetSession(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Close ends every open session
func (s *Server) Close() {
	s.mu.RLock()
	open := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		open = append(open, sess)
	}
	s.mu.RUnlock()
	for _, sess := range open {
		sess.conn.Close()
	}
}

// HandleWebSocket upgrades /live/{session} and runs the session until the
// client disconnects. A missing session id is generated.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("session")
	if id == "" {
		id = uuid.NewString()
	}
	if len(id) > maxSessionID {
		http.Error(w, "session id too long", http.StatusBadRequest)
		return
	}
	s.mu.RLock()
	admitted := s.admitLocked(id)
	s.mu.RUnlock()
	if !admitted {
		http.Error(w, errTooManySessions.Error(), http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sess := newSession(id, conn, s)
	if err := s.register(sess); err != nil {
		// lost a race for the last slot after the upgrade
		s.log.Warn("session rejected", zap.String("session", id), zap.Error(err))
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}
	sess.run()
}

// admitLocked reports whether id fits under MaxSessions. Replacing an open
// session with the same id always fits. s.mu must be held.
func (s *Server) admitLocked(id string) bool {
	limit := s.cfg.MaxSessions
	if limit <= 0 {
		return true
	}
	if _, replacing := s.sessions[id]; replacing {
		return true
	}
	return len(s.sessions) < limit
}

// register adds sess, replacing an open session with the same id. A dataset
// swapped in after sess was created is handed to it before its loop starts.
func (s *Server) register(sess *Session) error {
	s.mu.Lock()
	if !s.admitLocked(sess.ID) {
		s.mu.Unlock()
		return errTooManySessions
	}
	old := s.sessions[sess.ID]
	s.sessions[sess.ID] = sess
	stale := sess.gen != s.gen
	entities := s.entities
	s.mu.Unlock()

	if stale {
		sess.reload(entities)
	}
	if old != nil {
		s.log.Info("session replaced", zap.String("session", sess.ID))
		old.conn.Close()
		return nil
	}
	metrics.SessionsActive.Inc()
	return nil
}

func (s *Server) remove(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions[sess.ID] == sess {
		delete(s.sessions, sess.ID)
		metrics.SessionsActive.Dec()
	}
}

// Session is one connected viewer
type Session struct {
	ID     string
	server *Server
	conn   *websocket.Conn
	log    *zap.Logger
	loop   *frameLoop

	send      chan []byte
	closed    chan struct{}
	closeOnce sync.Once
	started   time.Time
	gen       uint64 // dataset generation the loop was built from
}

func newSession(id string, conn *websocket.Conn, srv *Server) *Session {
	s := &Session{
		ID:      id,
		server:  srv,
		conn:    conn,
		log:     srv.log.With(zap.String("session", id)),
		send:    make(chan []byte, 64),
		closed:  make(chan struct{}),
		started: time.Now(),
	}
	entities, gen := srv.snapshot()
	s.gen = gen
	s.loop = newFrameLoop(s, entities, srv.cfg)
	return s
}

// run drives the connection: HELLO and GRAPH first, then frames from the
// loop while client messages are read on this goroutine.
func (s *Session) run() {
	defer s.close(nil)

	go s.writer()

	s.enqueue(EncodeControl(Control{Name: ControlHello}))
	s.enqueue(EncodeGraph(s.loop.manifest()))
	s.loop.start()
	s.log.Info("session opened")

	s.conn.SetReadLimit(64 << 10)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.close(err)
			}
			return
		}
		if messageType != websocket.BinaryMessage || len(data) == 0 {
			continue
		}
		s.handleMessage(data)
	}
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

func (s *Session) writer() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.BinaryMessage, message); err != nil {
				s.log.Debug("write failed", zap.Error(err))
				s.conn.Close()
				return
			}
			if len(message) > 0 && MessageType(message[0]) == FrameRender {
				metrics.FramesSent.Inc()
				metrics.FrameBytes.Observe(float64(len(message)))
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.conn.Close()
				return
			}

		case <-s.closed:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			s.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// enqueue queues a message that must arrive. It gives up once the session
// is closed.
func (s *Session) enqueue(msg []byte) bool {
	select {
	case s.send <- msg:
		return true
	case <-s.closed:
		return false
	}
}

// offer queues a message that may be dropped when the client is slow
func (s *Session) offer(msg []byte) bool {
	select {
	case s.send <- msg:
		return true
	default:
		return false
	}
}

func (s *Session) handleMessage(data []byte) {
	switch MessageType(data[0]) {
	case FrameEvent:
		evt, err := DecodeEvent(data)
		if err != nil {
			s.log.Debug("dropping malformed event", zap.Error(err))
			return
		}
		metrics.EventsReceived.WithLabelValues(evt.Type.String()).Inc()
		s.loop.post(*evt)

	case FrameControl:
		ctl, err := DecodeControl(data)
		if err != nil {
			s.log.Debug("dropping malformed control", zap.Error(err))
			return
		}
		switch ctl.Name {
		case ControlHello:
			s.log.Debug("client hello", zap.Uint64("last_seq", ctl.Seq))
		case ControlPing:
			s.enqueue(EncodeControl(Control{Name: ControlPong}))
		case ControlLabels:
			if len(ctl.Args) == 1 {
				s.loop.setLabels(ctl.Args[0] == "on")
			}
		default:
			s.log.Debug("unknown control", zap.String("name", ctl.Name))
		}

	default:
		s.log.Debug("unknown frame type", zap.Uint8("type", data[0]))
	}
}

func (s *Session) reload(entities []nodecloud.Entity) {
	s.loop.reload(entities)
}

func (s *Session) close(err error) {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.loop.stop()
		s.conn.Close()
		s.server.remove(s)

		result := "closed"
		if err != nil {
			result = "error"
			s.log.Warn("session ended", zap.Error(err), zap.Duration("duration", time.Since(s.started)))
		} else {
			s.log.Info("session closed", zap.Duration("duration", time.Since(s.started)))
		}
		metrics.SessionsTotal.WithLabelValues(result).Inc()
	})
}

// String implements fmt.Stringer
func (s *Session) String() string {
	return fmt.Sprintf("session %s", s.ID)
}
