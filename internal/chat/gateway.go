package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/labstack/echo/v4"
	"github.com/parlorchat/parlor/internal/auth"
	"github.com/parlorchat/parlor/internal/domain"
	"github.com/parlorchat/parlor/internal/pubsub"
)

// writeTimeout bounds a single frame write to one client.
const writeTimeout = 10 * time.Second

// errTerminate instructs the read loop to stop dispatching and close the
// connection. It is never sent to the client.
var errTerminate = errors.New("terminate connection")

// TokenVerifier is the credential verifier consumed by the gateway. A
// failure means the token is malformed, expired, or names no identity.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// eventHandler processes one inbound event for one session. A returned
// error is reported to that session as an `error` event and never affects
// any other connection.
type eventHandler func(ctx context.Context, sess *Session, payload json.RawMessage) error

// Gateway owns the lifecycle of every persistent connection: it upgrades
// the transport, routes inbound events through a dispatch table, and runs
// disconnect cleanup exactly once per connection.
type Gateway struct {
	registry     *Registry
	pipeline     *Pipeline
	verifier     TokenVerifier
	users        domain.UserRepository
	publisher    pubsub.Publisher
	historyLimit int

	handlers map[string]eventHandler
}

// NewGateway wires a Gateway. historyLimit caps the replay sent after a
// successful authentication.
func NewGateway(registry *Registry, pipeline *Pipeline, verifier TokenVerifier, users domain.UserRepository, publisher pubsub.Publisher, historyLimit int) *Gateway {
	g := &Gateway{
		registry:     registry,
		pipeline:     pipeline,
		verifier:     verifier,
		users:        users,
		publisher:    publisher,
		historyLimit: historyLimit,
	}
	g.handlers = map[string]eventHandler{
		EventAuthenticate: g.handleAuthenticate,
		EventSendMessage:  g.handleSendMessage,
		EventTyping:       g.handleTyping,
	}
	return g
}

// Handler returns an echo.HandlerFunc that upgrades the request to a
// WebSocket and serves the connection until it closes.
func (g *Gateway) Handler() echo.HandlerFunc {
	return func(c echo.Context) error {
		conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			slog.Error("Failed to upgrade connection to WebSocket", "error", err)
			return err
		}

		sess := NewSession()
		slog.Info("Connection opened", "sessionID", sess.ID)

		go g.writePump(sess, conn)
		g.readLoop(c.Request().Context(), sess, conn)

		g.Disconnect(context.Background(), sess)
		return nil
	}
}

// readLoop pumps inbound frames through the dispatch table. Events for
// one connection are handled strictly in order; a slow store or verifier
// call blocks only this loop, never another connection's.
func (g *Gateway) readLoop(ctx context.Context, sess *Session, conn *websocket.Conn) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				slog.Info("WebSocket closed by client", "sessionID", sess.ID)
			} else if err != io.EOF && !errors.Is(err, context.Canceled) {
				slog.Debug("WebSocket read ended", "sessionID", sess.ID, "error", err)
			}
			return
		}

		if err := g.dispatch(ctx, sess, data); err != nil {
			if errors.Is(err, errTerminate) {
				return
			}
			sess.Deliver(EventError, ErrorPayload{Message: err.Error()})
		}
	}
}

// writePump drains the session's outbound queue onto the wire. When the
// queue is closed it flushes what remains and closes the transport.
func (g *Gateway) writePump(sess *Session, conn *websocket.Conn) {
	defer conn.Close(websocket.StatusNormalClosure, "session closed")

	for data := range sess.outbound() {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := conn.Write(ctx, websocket.MessageText, data)
		cancel()
		if err != nil {
			slog.Debug("WebSocket write failed", "sessionID", sess.ID, "error", err)
			return
		}
	}
}

// dispatch routes one inbound event by name. Anything other than
// authenticate on an unauthenticated session is rejected with an error
// event and has no other side effect.
func (g *Gateway) dispatch(ctx context.Context, sess *Session, data []byte) error {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("malformed event: %w", err)
	}

	handler, ok := g.handlers[env.Event]
	if !ok {
		return fmt.Errorf("unknown event %q", env.Event)
	}

	if env.Event != EventAuthenticate && !sess.Authenticated() {
		return errors.New("authentication required")
	}

	return handler(ctx, sess, env.Payload)
}

// handleAuthenticate validates the session token exactly once per
// connection. On success the session joins the presence registry and
// receives its history replay; on failure the connection is terminated.
func (g *Gateway) handleAuthenticate(ctx context.Context, sess *Session, payload json.RawMessage) error {
	if sess.Authenticated() {
		return errors.New("already authenticated")
	}

	var req AuthenticatePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("malformed authenticate payload: %w", err)
	}

	identity, err := g.verifier.Verify(req.Token)
	if err != nil {
		slog.Warn("Authentication failed", "sessionID", sess.ID, "error", err)
		sess.Deliver(EventAuthError, ErrorPayload{Message: authFailureMessage(err)})
		sess.Close()
		return errTerminate
	}

	sess.Authenticate(identity.UserID, identity.Name)
	if err := g.registry.Insert(sess); err != nil {
		// Session ids are unique per connection, so this only fires on a
		// double authenticate that raced the check above.
		return err
	}

	if err := g.users.TouchLastSeen(ctx, identity.UserID); err != nil {
		slog.Error("Failed to update last seen", "userID", identity.UserID, "error", err)
	}

	sess.Deliver(EventAuthenticated, NamePayload{Name: identity.Name})

	if err := g.pipeline.History(ctx, sess, g.historyLimit); err != nil {
		slog.Error("Failed to replay history", "sessionID", sess.ID, "error", err)
		sess.Deliver(EventError, ErrorPayload{Message: "could not load message history"})
	}

	g.announce(ctx, TopicJoined, sess.ID, identity.Name)
	slog.Info("Session authenticated", "sessionID", sess.ID, "userID", identity.UserID, "name", identity.Name)
	return nil
}

// handleSendMessage validates and forwards text to the message pipeline.
func (g *Gateway) handleSendMessage(ctx context.Context, sess *Session, payload json.RawMessage) error {
	var req SendMessagePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("malformed send_message payload: %w", err)
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return ErrEmptyMessage
	}

	return g.pipeline.Send(ctx, sess, text)
}

// handleTyping publishes an ephemeral typing signal. It carries no
// ordering or delivery guarantee.
func (g *Gateway) handleTyping(ctx context.Context, sess *Session, _ json.RawMessage) error {
	_, name := sess.Identity()
	g.announce(ctx, TopicTyping, sess.ID, name)
	return nil
}

// Disconnect removes the session from the presence registry and, if it
// was authenticated, announces the departure. It runs at most once per
// session even when close is signalled multiple times.
func (g *Gateway) Disconnect(ctx context.Context, sess *Session) {
	sess.disconnectOnce.Do(func() {
		_, registered := g.registry.Remove(sess.ID)
		sess.Close()

		if registered {
			_, name := sess.Identity()
			g.announce(ctx, TopicLeft, sess.ID, name)
			slog.Info("Session disconnected", "sessionID", sess.ID, "name", name)
			return
		}
		slog.Info("Unauthenticated connection closed", "sessionID", sess.ID)
	})
}

// announce publishes a presence signal on the ephemeral bus.
func (g *Gateway) announce(ctx context.Context, topic, origin, name string) {
	payload, err := json.Marshal(NamePayload{Name: name})
	if err != nil {
		slog.Error("Failed to marshal presence signal", "topic", topic, "error", err)
		return
	}
	msg := pubsub.Message{Topic: topic, Origin: origin, Payload: payload}
	if err := g.publisher.Publish(ctx, msg); err != nil {
		slog.Error("Failed to publish presence signal", "topic", topic, "error", err)
	}
}

// authFailureMessage maps verifier errors to the reason sent in the
// auth_error event.
func authFailureMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return "token expired"
	case errors.Is(err, auth.ErrTokenInvalid):
		return "token invalid"
	default:
		return "authentication failed"
	}
}
