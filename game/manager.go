package game

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/judgegodwins/sketch-server/token"
	"github.com/judgegodwins/sketch-server/util"
)

var websocketUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// room ids are shared out of band and carry no privileges; any
		// origin may connect
		return true
	},
}

type wsQuery struct {
	Token string `form:"token" binding:"required"`
}

// Manager is the connection gateway. It owns the set of live clients, routes
// inbound events to the room state machine and fans results out to the right
// audience (room-all, room-others or a single connection).
type Manager struct {
	sync.RWMutex
	clients    map[string]*Client // keyed by socket id
	handlers   map[string]EventHandler
	rooms      *Registry
	config     *util.Config
	logger     *zap.Logger
	tokenMaker token.Maker
	validate   *validator.Validate
}

func NewManager(config *util.Config, logger *zap.Logger, maker token.Maker) (*Manager, error) {
	bank, err := NewBank(DefaultWords)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		clients:    make(map[string]*Client),
		handlers:   make(map[string]EventHandler),
		rooms:      NewRegistry(bank, time.Duration(config.RoundSeconds)*time.Second),
		config:     config,
		logger:     logger,
		tokenMaker: maker,
		validate:   validator.New(),
	}

	m.setupEventHandlers()

	return m, nil
}

func (m *Manager) setupEventHandlers() {
	m.handlers[EventJoinRoom] = JoinRoomHandler
	m.handlers[EventStartRound] = StartRoundHandler
	m.handlers[EventDraw] = DrawHandler
	m.handlers[EventClearCanvas] = ClearCanvasHandler
	m.handlers[EventChatMessage] = ChatMessageHandler
}

func (m *Manager) routeEvent(evt Event, c *Client) error {
	if handler, ok := m.handlers[evt.Type]; ok {
		return handler(evt, c)
	}

	return errors.New("there is no such event type")
}

func (m *Manager) addClient(client *Client) {
	m.Lock()
	defer m.Unlock()

	m.clients[client.SocketID] = client
}

func (m *Manager) removeClient(client *Client) {
	m.Lock()
	defer m.Unlock()

	if _, ok := m.clients[client.SocketID]; ok {
		client.connection.Close()
		delete(m.clients, client.SocketID)
	}
}

// Websocket connection handler
func (m *Manager) ServeWS(c *gin.Context) {
	var query wsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "token not sent",
		})
		return
	}

	payload, err := m.tokenMaker.VerifyToken(query.Token)

	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":  "error",
			"message": "unauthorized",
		})
		return
	}

	conn, err := websocketUpgrader.Upgrade(c.Writer, c.Request, nil)

	if err != nil {
		m.logger.Error("error upgrading to websocket connection", zap.Error(err))
		return
	}

	client := NewClient(payload.ID.String(), payload.Username, conn, m)

	m.addClient(client)

	ctx, cancel := context.WithCancel(c)

	defer func() {
		cancel()
		m.removeClient(client)
		m.handleDisconnect(client)

		err := client.connection.WriteMessage(websocket.CloseMessage, nil)

		if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
			m.logger.Debug("error sending close message", zap.Error(err))
		}
	}()

	go client.readMessages(ctx)
	go client.writeMessages(ctx)

	err = <-client.Err()

	m.logger.Info("client disconnected",
		zap.String("client", client.SocketID),
		zap.String("username", client.Username),
		zap.Error(err),
	)
}

// handleDisconnect removes the departing player from its room, broadcasts
// the new roster (and the fresh round, if the drawer left) and garbage
// collects the room once empty.
func (m *Manager) handleDisconnect(client *Client) {
	roomID := client.Room()
	if roomID == "" {
		return
	}

	room, ok := m.rooms.Get(roomID)
	if !ok {
		return
	}

	res := room.Leave(client.ID)
	if !res.Removed {
		return
	}

	if res.Empty {
		m.rooms.RemoveIfEmpty(roomID)
		return
	}

	m.emitRoster(roomID, res.Roster)
	m.systemChat(roomID, fmt.Sprintf("%s left the game.", res.Name))

	if res.NextRound != nil {
		m.broadcastRoundStart(room, res.NextRound)
	}
}

// EmitToRoom sends an event to every connection bound to a room, sender included.
func (m *Manager) EmitToRoom(roomID string, evt Event) {
	m.RLock()
	defer m.RUnlock()

	for _, client := range m.clients {
		if client.Room() == roomID {
			client.PushToEgress(evt)
		}
	}
}

// EmitToRoomExcept sends an event to every connection in a room except the
// originating socket. Used for drawing strokes: the sender renders locally
// and must not receive an echo.
func (m *Manager) EmitToRoomExcept(roomID, socketID string, evt Event) {
	m.RLock()
	defer m.RUnlock()

	for _, client := range m.clients {
		if client.Room() == roomID && client.SocketID != socketID {
			client.PushToEgress(evt)
		}
	}
}

// EmitToPlayer sends an event only to the connection(s) bound to one player
// identity in a room. This is the only path the literal secret word travels.
func (m *Manager) EmitToPlayer(roomID, playerID string, evt Event) {
	m.RLock()
	defer m.RUnlock()

	for _, client := range m.clients {
		if client.Room() == roomID && client.ID == playerID {
			client.PushToEgress(evt)
		}
	}
}

func (m *Manager) emitRoster(roomID string, roster []RosterEntry) {
	evt, err := NewEvent(EventRosterUpdate, PayloadRoster{Players: roster})
	if err != nil {
		m.logger.Error("error building roster event", zap.Error(err))
		return
	}
	m.EmitToRoom(roomID, evt)
}

func (m *Manager) systemChat(roomID, text string) {
	evt, err := NewEvent(EventChatMessage, PayloadChatMessage{Text: text, System: true})
	if err != nil {
		return
	}
	m.EmitToRoom(roomID, evt)
}

// broadcastRoundStart announces a new round to the room, delivers the secret
// word to the drawer's connection only and arms the round timer.
func (m *Manager) broadcastRoundStart(room *Room, info *RoundInfo) {
	started, err := NewEvent(EventRoundStarted, PayloadRoundStarted{
		Round:           info.Round,
		Drawer:          info.DrawerName,
		DrawerID:        info.DrawerID,
		StartedAt:       info.StartedAt.UnixMilli(),
		DurationSeconds: int(info.Duration.Seconds()),
	})
	if err != nil {
		m.logger.Error("error building round_started event", zap.Error(err))
		return
	}
	m.EmitToRoom(room.ID, started)

	hint, err := NewEvent(EventWordHint, PayloadWordHint{MaskedWord: info.Masked})
	if err == nil {
		m.EmitToRoom(room.ID, hint)
	}

	word, err := NewEvent(EventNewWord, PayloadWord{Word: info.Word})
	if err == nil {
		m.EmitToPlayer(room.ID, info.DrawerID, word)
	}

	m.emitRoster(room.ID, room.Roster())
	m.systemChat(room.ID, fmt.Sprintf("%s is drawing now!", info.DrawerName))

	m.scheduleRoundTimer(room, info.Duration, info.Generation)
}

// scheduleRoundTimer arms the soft round-expiry timer. The callback is
// guarded by the room generation, so a timer whose round already ended is a
// no-op instead of firing against rotated state.
func (m *Manager) scheduleRoundTimer(room *Room, d time.Duration, gen int) {
	time.AfterFunc(d, func() {
		if info := room.AdvanceIfCurrent(gen); info != nil {
			m.broadcastRoundStart(room, info)
		}
	})
}

// RoomSnapshot exposes read-only room info to the HTTP layer.
func (m *Manager) RoomSnapshot(roomID string) (Snapshot, bool) {
	room, ok := m.rooms.Get(roomID)
	if !ok {
		return Snapshot{}, false
	}
	return room.Snapshot(), true
}
