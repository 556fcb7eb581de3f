package game

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"sync"

	"github.com/autoreleasefool/hive-for-ios-sub001/internal/protocol"
	"github.com/autoreleasefool/hive-for-ios-sub001/internal/transport/websocket"
	"github.com/autoreleasefool/hive-for-ios-sub001/pkg/auth"
)

type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrNotPrepared        Error = "client has not been prepared with an endpoint"
	ErrOfflineAccount     Error = "cannot connect online with an offline account"
	ErrNoActiveConnection Error = "no active connection"
	ErrInvalidEndpoint    Error = "invalid match endpoint"
)

// Config is what Prepare stores: where to connect and as whom.
type Config struct {
	Endpoint   *url.URL
	Credential auth.Credential
}

// Client is the single authority over the connection to one match server.
// It owns at most one live session and the stream that session publishes to.
// It never retries on its own; callers decide when to Reconnect.
type Client struct {
	decoder       *protocol.Decoder
	sessionConfig websocket.SessionConfig

	mu      sync.Mutex
	config  *Config
	session *websocket.Session
	stream  *EventStream
}

func NewClient(decoder *protocol.Decoder, sessionConfig websocket.SessionConfig) *Client {
	if decoder == nil {
		decoder = protocol.NewDecoder(nil)
	}
	return &Client{
		decoder:       decoder,
		sessionConfig: sessionConfig,
	}
}

// Prepare stores the connection configuration. Switching to a different
// endpoint closes any live session first; preparing the same endpoint again
// leaves the live session alone and only updates the credential used for the
// next connection.
func (c *Client) Prepare(endpoint string, credential auth.Credential) error {
	target, err := parseEndpoint(endpoint)
	if err != nil {
		return err
	}

	c.mu.Lock()
	var staleSession *websocket.Session
	var staleStream *EventStream
	if c.config != nil && c.config.Endpoint.String() != target.String() {
		staleSession, staleStream = c.session, c.stream
		c.session, c.stream = nil, nil
	}
	c.config = &Config{Endpoint: target, Credential: credential}
	c.mu.Unlock()

	if staleSession != nil {
		log.Printf("[CLIENT] Endpoint changed to %s, closing session %s", target, staleSession.ID)
		staleSession.Close()
	}
	if staleStream != nil {
		staleStream.finish(nil)
	}
	return nil
}

// Config returns a copy of the prepared configuration, or nil.
func (c *Client) Config() *Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.config == nil {
		return nil
	}
	cfg := *c.config
	return &cfg
}

// OpenConnection returns a subscription to the connection's event stream
// without waiting for the handshake. If a session is already live, the new
// subscription joins its stream and an EventAlreadyConnected is published.
//
// Configuration problems are returned as an error together with a
// subscription to a stream that has already ended with that error.
//
// Callers must read the subscription until Events is closed or call Cancel.
func (c *Client) OpenConnection() (*Subscription, error) {
	return c.open()
}

// Reconnect is used once a caller's own subscription has gone stale. With a
// live session it behaves like OpenConnection on a shared connection; with
// none it opens a new one.
func (c *Client) Reconnect() (*Subscription, error) {
	log.Printf("[CLIENT] Reconnect requested")
	return c.open()
}

func (c *Client) open() (*Subscription, error) {
	c.mu.Lock()

	if c.config == nil {
		c.mu.Unlock()
		return failedStream(ErrNotPrepared).Subscribe(), ErrNotPrepared
	}
	if c.config.Credential != nil && c.config.Credential.Offline() {
		c.mu.Unlock()
		return failedStream(ErrOfflineAccount).Subscribe(), ErrOfflineAccount
	}

	if c.session != nil && c.session.Alive() && !c.stream.Finished() {
		stream := c.stream
		sub := stream.Subscribe()
		c.mu.Unlock()

		log.Printf("[CLIENT] Session %s already connected, sharing stream %s", c.sessionID(), stream.ID)
		stream.publish(Event{Type: EventAlreadyConnected})
		return sub, nil
	}

	endpoint := c.config.Endpoint.String()
	stream := newEventStream()
	session := websocket.NewSession(
		endpoint,
		c.config.Credential,
		c.decoder,
		&sessionBinding{client: c, stream: stream},
		c.sessionConfig,
	)
	c.session, c.stream = session, stream

	// subscribe before opening so the connected event is never missed
	sub := stream.Subscribe()
	if err := session.Open(); err != nil {
		c.session, c.stream = nil, nil
		c.mu.Unlock()
		stream.finish(err)
		return sub, nil
	}
	c.mu.Unlock()

	log.Printf("[CLIENT] Opening session %s to %s", session.ID, endpoint)
	return sub, nil
}

// Send forwards msg to the live session. Without one, onComplete receives
// ErrNoActiveConnection; the event stream is never involved.
func (c *Client) Send(msg protocol.ClientMessage, onComplete func(error)) {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()

	if session == nil || !session.Alive() {
		complete(onComplete, ErrNoActiveConnection)
		return
	}

	session.Send(msg, func(err error) {
		if errors.Is(err, websocket.ErrSessionClosed) {
			err = fmt.Errorf("%w: %v", ErrNoActiveConnection, err)
		}
		complete(onComplete, err)
	})
}

// Close tears down the live session and completes its stream normally. The
// prepared configuration is kept, so the next OpenConnection starts fresh.
func (c *Client) Close() {
	c.mu.Lock()
	session, stream := c.session, c.stream
	c.session, c.stream = nil, nil
	c.mu.Unlock()

	if session != nil {
		session.Close()
		log.Printf("[CLIENT] Closed session %s", session.ID)
	}
	if stream != nil {
		stream.finish(nil)
	}
}

// Connected reports whether a session is connecting or open.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil && c.session.Alive()
}

// detach forgets s if it is still the current session.
func (c *Client) detach(s *websocket.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == s {
		c.session, c.stream = nil, nil
	}
}

func (c *Client) sessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return "none"
	}
	return c.session.ID.String()
}

// sessionBinding ties one session to the stream created alongside it.
type sessionBinding struct {
	client *Client
	stream *EventStream
}

func (b *sessionBinding) HandleConnected(*websocket.Session) {
	b.stream.publish(Event{Type: EventConnected})
}

func (b *sessionBinding) HandleMessage(_ *websocket.Session, msg protocol.ServerMessage) {
	b.stream.publish(Event{Type: EventMessage, Message: msg})
}

func (b *sessionBinding) HandleFailure(s *websocket.Session, err error) {
	b.client.detach(s)
	b.stream.finish(err)
}

func parseEndpoint(endpoint string) (*url.URL, error) {
	target, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	switch target.Scheme {
	case "ws", "wss":
	case "http":
		target.Scheme = "ws"
	case "https":
		target.Scheme = "wss"
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidEndpoint, target.Scheme)
	}
	if target.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidEndpoint)
	}
	return target, nil
}

func complete(done func(error), err error) {
	if done != nil {
		done(err)
	}
}
