package websocket

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/autoreleasefool/hive-for-ios-sub001/internal/protocol"
	"github.com/autoreleasefool/hive-for-ios-sub001/pkg/auth"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	maxMessageSize = 64 * 1024
	sendQueueSize  = 64
)

var (
	ErrSessionClosed  = errors.New("session is closed")
	ErrSessionStarted = errors.New("session was already opened")
	ErrSendQueueFull  = errors.New("send queue is full")
)

var tracer = otel.Tracer("github.com/autoreleasefool/hive-for-ios-sub001/internal/transport/websocket")

// Handler receives everything a session produces, always from the session's
// own goroutine and in the order frames were read.
type Handler interface {
	HandleConnected(s *Session)
	HandleMessage(s *Session, msg protocol.ServerMessage)
	HandleFailure(s *Session, err error)
}

type SessionConfig struct {
	PingInterval     time.Duration
	PongWait         time.Duration
	WriteWait        time.Duration
	HandshakeTimeout time.Duration
	Dialer           *websocket.Dialer
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		PingInterval:     30 * time.Second,
		PongWait:         60 * time.Second,
		WriteWait:        10 * time.Second,
		HandshakeTimeout: 10 * time.Second,
	}
}

type sendRequest struct {
	line string
	done func(error)
}

// Session owns one websocket to the match server. A single goroutine (run)
// dials, writes every frame, pings, decodes and publishes; a second one only
// reads frames and hands them over.
type Session struct {
	ID uuid.UUID

	endpoint   string
	credential auth.Credential
	decoder    *protocol.Decoder
	handler    Handler
	cfg        SessionConfig

	mu      sync.Mutex
	state   SessionState
	started bool

	ctx      context.Context
	cancel   context.CancelFunc
	sends    chan sendRequest
	closeReq chan struct{}
	done     chan struct{}
}

func NewSession(endpoint string, credential auth.Credential, decoder *protocol.Decoder, handler Handler, cfg SessionConfig) *Session {
	defaults := DefaultSessionConfig()
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = defaults.PingInterval
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = defaults.PongWait
	}
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = defaults.WriteWait
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = defaults.HandshakeTimeout
	}
	if decoder == nil {
		decoder = protocol.NewDecoder(nil)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		ID:         uuid.New(),
		endpoint:   endpoint,
		credential: credential,
		decoder:    decoder,
		handler:    handler,
		cfg:        cfg,
		state:      StateIdle,
		ctx:        ctx,
		cancel:     cancel,
		sends:      make(chan sendRequest, sendQueueSize),
		closeReq:   make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Alive reports whether the session is connecting or open.
func (s *Session) Alive() bool {
	state := s.State()
	return state == StateConnecting || state == StateOpen
}

// Done is closed once the session goroutine has exited.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Open starts the handshake in the background and returns immediately.
// Completion is reported through Handler.HandleConnected or HandleFailure.
func (s *Session) Open() error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrSessionStarted
	}
	s.started = true
	s.state = StateConnecting
	s.mu.Unlock()

	go s.run()
	return nil
}

// Send queues msg for writing. done, if set, is called from the session
// goroutine with the write result. A failed write does not close the session.
func (s *Session) Send(msg protocol.ClientMessage, done func(error)) {
	req := sendRequest{line: protocol.Encode(msg), done: done}

	s.mu.Lock()
	if s.state.IsTerminal() {
		s.mu.Unlock()
		complete(done, ErrSessionClosed)
		return
	}
	select {
	case s.sends <- req:
		s.mu.Unlock()
	default:
		s.mu.Unlock()
		complete(done, ErrSendQueueFull)
	}
}

// Close performs a normal closure and returns once the session goroutine has
// stopped; no handler call happens after Close returns. Safe to call repeatedly.
func (s *Session) Close() {
	s.mu.Lock()
	if !s.started {
		s.started = true
		s.state = StateClosed
		s.mu.Unlock()
		close(s.done)
		return
	}
	s.mu.Unlock()

	// aborts a handshake still in flight
	s.cancel()

	select {
	case s.closeReq <- struct{}{}:
	case <-s.done:
	}
	<-s.done

	s.mu.Lock()
	if !s.state.IsTerminal() {
		s.state = StateClosed
	}
	s.mu.Unlock()
}

func (s *Session) run() {
	defer close(s.done)

	conn, err := s.handshake()
	if err != nil {
		if s.ctx.Err() != nil {
			// closed while connecting
			s.finish(StateClosed)
			return
		}
		s.fail(err)
		return
	}
	if s.ctx.Err() != nil {
		conn.Close()
		s.finish(StateClosed)
		return
	}

	s.setState(StateOpen)
	metrics().sessionsOpened.Inc()
	log.Printf("[SESSION] %s connected to %s", s.ID, s.endpoint)
	s.handler.HandleConnected(s)

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
		return nil
	})

	frames := make(chan string)
	readErrs := make(chan error, 1)
	go s.readPump(conn, frames, readErrs)

	// Keep-alive pinger
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case frame := <-frames:
			s.handleFrame(frame)

		case err := <-readErrs:
			conn.Close()
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[SESSION] %s disconnected unexpectedly: %v", s.ID, err)
			}
			s.fail(err)
			return

		case req := <-s.sends:
			s.write(conn, req)

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				// the read deadline will surface a dead peer
				log.Printf("[SESSION] %s ping failed: %v", s.ID, err)
				continue
			}
			metrics().pingsSent.Inc()

		case <-s.closeReq:
			s.setState(StateClosing)
			deadline := time.Now().Add(s.cfg.WriteWait)
			closeFrame := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			if err := conn.WriteControl(websocket.CloseMessage, closeFrame, deadline); err != nil {
				log.Printf("[SESSION] %s close handshake failed: %v", s.ID, err)
			}
			conn.Close()
			metrics().sessionsClosed.Inc()
			log.Printf("[SESSION] %s closed", s.ID)
			s.finish(StateClosed)
			return
		}
	}
}

func (s *Session) handshake() (*websocket.Conn, error) {
	ctx, span := tracer.Start(s.ctx, "hive.session.handshake",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("hive.session_id", s.ID.String()),
			attribute.String("hive.endpoint", s.endpoint),
		),
	)
	defer span.End()

	header := http.Header{}
	if s.credential != nil {
		if err := s.credential.Apply(header); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "credential rejected")
			return nil, fmt.Errorf("failed to authenticate handshake: %w", err)
		}
	}

	dialer := s.cfg.Dialer
	if dialer == nil {
		dialer = &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: s.cfg.HandshakeTimeout,
		}
	}

	dialCtx, cancel := context.WithTimeout(ctx, s.cfg.HandshakeTimeout)
	defer cancel()

	conn, resp, err := dialer.DialContext(dialCtx, s.endpoint, header)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "handshake failed")
		if resp != nil {
			return nil, fmt.Errorf("handshake failed with status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("handshake failed: %w", err)
	}
	return conn, nil
}

func (s *Session) readPump(conn *websocket.Conn, frames chan<- string, errs chan<- error) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			errs <- err
			return
		}
		select {
		case frames <- string(data):
		case <-s.done:
			return
		}
	}
}

// handleFrame decodes every line of a frame; a frame may batch several lines.
func (s *Session) handleFrame(frame string) {
	metrics().framesReceived.Inc()
	for _, line := range strings.Split(frame, "\n") {
		msg, err := s.decoder.Decode(line)
		if err != nil {
			if !errors.Is(err, protocol.ErrEmptyLine) {
				metrics().decodeFailures.Inc()
				log.Printf("[DECODE] %s dropping line: %v", s.ID, err)
			}
			continue
		}
		s.handler.HandleMessage(s, msg)
	}
}

func (s *Session) write(conn *websocket.Conn, req sendRequest) {
	command, _, _ := strings.Cut(req.line, " ")
	_, span := tracer.Start(s.ctx, "hive.session.send",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("hive.session_id", s.ID.String()),
			attribute.String("hive.command", command),
		),
	)
	defer span.End()

	conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteWait))
	err := conn.WriteMessage(websocket.TextMessage, []byte(req.line))
	if err != nil {
		metrics().writeErrors.Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "write failed")
		log.Printf("[SESSION] %s write %s failed: %v", s.ID, command, err)
	} else {
		metrics().framesSent.Inc()
	}
	complete(req.done, err)
}

func (s *Session) fail(err error) {
	metrics().sessionFailures.Inc()
	log.Printf("[SESSION] %s failed: %v", s.ID, err)
	s.finish(StateFailed)
	s.handler.HandleFailure(s, err)
}

// finish moves to a terminal state and rejects every queued send.
func (s *Session) finish(state SessionState) {
	s.setState(state)
	for {
		select {
		case req := <-s.sends:
			complete(req.done, ErrSessionClosed)
		default:
			return
		}
	}
}

func (s *Session) setState(state SessionState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func complete(done func(error), err error) {
	if done != nil {
		done(err)
	}
}
