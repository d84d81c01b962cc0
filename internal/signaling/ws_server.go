package signaling

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/reelchat/reelchat/internal/chat"
	"github.com/reelchat/reelchat/internal/config"
	"github.com/reelchat/reelchat/internal/delivery"
	"github.com/reelchat/reelchat/internal/identity"
	"github.com/reelchat/reelchat/internal/metrics"
	"github.com/reelchat/reelchat/internal/ratelimit"
)

// Server handles GET /ws: it upgrades the connection, binds it to an
// identity on join, and dispatches inbound events to the chat service and
// the call relay.
//
// Inbound hardening mirrors the intake policy everywhere else: malformed or
// unaddressed events are dropped silently, while transport-level abuse
// (oversized frames, excessive rates, binary frames) closes the connection.
type Server struct {
	cfg      config.Config
	registry *identity.Registry
	chats    *chat.Service
	relay    *Relay
	metrics  *metrics.Collector
	log      *slog.Logger
	clock    ratelimit.Clock

	open     atomic.Int64
	upgrader websocket.Upgrader
}

func NewServer(cfg config.Config, registry *identity.Registry, chats *chat.Service, relay *Relay, m *metrics.Collector, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{
		cfg:      cfg,
		registry: registry,
		chats:    chats,
		relay:    relay,
		metrics:  m,
		log:      logger,
		clock:    ratelimit.RealClock{},
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(r.Header.Get("Origin"), cfg.AllowedOrigins)
		},
	}
	return s
}

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws", s.ServeHTTP)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	conn := &wsConn{conn: raw, writeTimeout: s.cfg.WSWriteTimeout}

	s.open.Add(1)
	s.updatePresence()

	defer func() {
		s.registry.Remove(conn)
		_ = raw.Close()
		s.open.Add(-1)
		s.updatePresence()
	}()

	refreshDeadline := func() {
		if s.cfg.WSIdleTimeout > 0 {
			_ = raw.SetReadDeadline(time.Now().Add(s.cfg.WSIdleTimeout))
		}
	}
	refreshDeadline()
	raw.SetPongHandler(func(string) error {
		refreshDeadline()
		return nil
	})

	if s.cfg.WSPingInterval > 0 {
		stop := make(chan struct{})
		defer close(stop)
		go s.pingLoop(conn, stop)
	}

	rate := int64(s.cfg.MaxEventsPerSecond)
	limiter := ratelimit.NewEventLimiter(s.clock, rate, rate)

	for {
		msgType, msgReader, err := raw.NextReader()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			conn.closeWith(websocket.CloseUnsupportedData, "expected text message")
			return
		}

		frame, err := readLimited(msgReader, s.cfg.MaxEventBytes)
		if err != nil {
			if errors.Is(err, errMessageTooLarge) {
				s.dropEvent(metrics.DropReasonTooLarge)
				conn.closeWith(websocket.CloseMessageTooBig, "message too large")
				return
			}
			return
		}

		if !limiter.Allow() {
			s.dropEvent(metrics.DropReasonRateLimited)
			conn.closeWith(websocket.ClosePolicyViolation, "rate limit exceeded")
			return
		}

		s.dispatch(conn, frame)
		refreshDeadline()
	}
}

func (s *Server) dispatch(conn *wsConn, frame []byte) {
	env, err := parseEnvelope(frame)
	if err != nil {
		s.dropEvent(metrics.DropReasonMalformed)
		return
	}

	if s.metrics != nil {
		s.metrics.RecordEventReceived(env.Event)
	}

	switch env.Event {
	case delivery.EventJoin:
		var p joinPayload
		if !s.decode(env.Data, &p) {
			return
		}
		s.registry.Join(p.Identity, conn)
		s.updatePresence()

	case delivery.EventChatSend:
		var p chatSendPayload
		if !s.decode(env.Data, &p) {
			return
		}
		s.chats.Send(p.From, p.To, p.Text)

	case delivery.EventCallOffer:
		var p callOfferPayload
		if !s.decode(env.Data, &p) {
			return
		}
		s.relay.Offer(p)

	case delivery.EventCallAnswer:
		var p callAnswerPayload
		if !s.decode(env.Data, &p) {
			return
		}
		s.relay.Answer(p)

	case delivery.EventCallICECandidate:
		var p callCandidatePayload
		if !s.decode(env.Data, &p) {
			return
		}
		s.relay.ICECandidate(p)

	case delivery.EventCallEnd:
		var p callEndPayload
		if !s.decode(env.Data, &p) {
			return
		}
		s.relay.End(p)

	default:
		s.dropEvent(metrics.DropReasonUnknownEvent)
	}
}

func (s *Server) decode(data json.RawMessage, into any) bool {
	if len(data) == 0 {
		s.dropEvent(metrics.DropReasonMalformed)
		return false
	}
	if err := json.Unmarshal(data, into); err != nil {
		s.dropEvent(metrics.DropReasonMalformed)
		return false
	}
	return true
}

func (s *Server) dropEvent(reason string) {
	if s.metrics != nil {
		s.metrics.RecordEventDropped(reason)
	}
}

func (s *Server) updatePresence() {
	if s.metrics == nil {
		return
	}
	identities, _ := s.registry.Counts()
	s.metrics.SetPresence(identities, int(s.open.Load()))
}

func (s *Server) pingLoop(conn *wsConn, stop <-chan struct{}) {
	ticker := time.NewTicker(s.cfg.WSPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := conn.ping(s.cfg.WSWriteTimeout); err != nil {
				return
			}
		}
	}
}

// wsConn wraps a websocket connection behind a write mutex so deliveries
// from other connections' read loops and HTTP handlers never interleave
// frames. It is the identity.Conn handed to the registry.
type wsConn struct {
	conn         *websocket.Conn
	writeTimeout time.Duration

	mu sync.Mutex
}

func (c *wsConn) Send(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.writeTimeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	return c.conn.WriteJSON(envelope{Event: event, Data: data})
}

func (c *wsConn) ping(timeout time.Duration) error {
	if timeout <= 0 {
		timeout = time.Second
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(timeout))
}

func (c *wsConn) closeWith(code int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(time.Second))
}

var errMessageTooLarge = errors.New("message too large")

func readLimited(r io.Reader, max int64) ([]byte, error) {
	if max <= 0 {
		return nil, errMessageTooLarge
	}
	b, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > max {
		return nil, errMessageTooLarge
	}
	return b, nil
}
