package game

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var (
	pongWait     = 10 * time.Second
	pingInterval = (pongWait * 9) / 10

	// Stroke payloads are batches of points, so the limit is well above a
	// plain chat line.
	maxMessageSize int64 = 8192
)

// Client is one live websocket connection bound to a player identity. The
// room binding is set exactly once when the join_room event is handled and
// read by the manager's broadcast helpers.
type Client struct {
	ID       string // player id from the token payload
	SocketID string // unique per connection
	Username string

	mu     sync.RWMutex
	roomID string

	connection *websocket.Conn
	manager    *Manager
	egress     chan Event
	err        chan error
}

func NewClient(id, username string, conn *websocket.Conn, manager *Manager) *Client {
	return &Client{
		ID:         id,
		SocketID:   uuid.NewString(),
		Username:   username,
		connection: conn,
		manager:    manager,
		egress:     make(chan Event, 256),
		err:        make(chan error, 2),
	}
}

// Reads incoming messages from the client's websocket connection and routes
// them. Runs as one goroutine per connection, so a single sender's events
// are handled strictly in submission order.
func (c *Client) readMessages(ctx context.Context) {
	c.connection.SetReadLimit(maxMessageSize)

	if err := c.connection.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.handleError(err)
		return
	}

	c.connection.SetPongHandler(c.pongHandler)

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, payload, err := c.connection.ReadMessage()

			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
					c.manager.logger.Warn("unexpected socket closure", zap.Error(err))
				}
				c.handleError(err)
				return
			}

			var evt Event

			if err := json.Unmarshal(payload, &evt); err != nil {
				c.pushError("cannot unmarshal event payload")
				continue
			}

			if err := c.manager.routeEvent(evt, c); err != nil {
				c.manager.logger.Debug("event handler error",
					zap.String("type", evt.Type),
					zap.String("client", c.SocketID),
					zap.Error(err),
				)
				c.pushError(err.Error())
			}
		}
	}
}

// Writes messages pushed to the client's egress channel.
func (c *Client) writeMessages(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)

	defer func() {
		ticker.Stop()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case message, ok := <-c.egress:
			if !ok {
				c.handleError(errors.New("client egress channel unexpectedly closed"))
				return
			}

			data, err := json.Marshal(message)

			if err != nil {
				c.handleError(err)
				return
			}

			if err := c.connection.WriteMessage(websocket.TextMessage, data); err != nil {
				c.handleError(err)
				return
			}
		case <-ticker.C:
			if err := c.connection.WriteMessage(websocket.PingMessage, []byte("")); err != nil {
				c.handleError(err)
				return
			}
		}
	}
}

// Room returns the id of the room this connection is bound to, or "" before
// join_room has been handled.
func (c *Client) Room() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomID
}

func (c *Client) setRoom(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomID = roomID
}

// Sets a new read deadline when a pong is received for a ping message.
func (c *Client) pongHandler(pongMsg string) error {
	return c.connection.SetReadDeadline(time.Now().Add(pongWait))
}

// Push error to the client error channel. The connection handler listens on
// it to tear the connection down.
func (c *Client) handleError(e error) {
	c.err <- e
}

func (c *Client) Err() chan error {
	return c.err
}

// Creates an event and pushes it to the client's egress.
func (c *Client) PushEventToEgress(evtType string, payload any) error {
	evt, err := NewEvent(evtType, payload)
	if err != nil {
		return err
	}
	c.PushToEgress(evt)
	return nil
}

// Pushes an event onto the egress to be delivered over the websocket
// connection. A client whose egress is full is skipped rather than allowed
// to stall the sender; its connection is already on its way out.
func (c *Client) PushToEgress(evt Event) {
	select {
	case c.egress <- evt:
	default:
		c.manager.logger.Warn("dropping event for slow client",
			zap.String("client", c.SocketID),
			zap.String("type", evt.Type),
		)
	}
}

func (c *Client) pushError(message string) {
	evt, err := NewErrorEvent(message)
	if err != nil {
		return
	}
	c.PushToEgress(evt)
}
