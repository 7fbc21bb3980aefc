package game

import "encoding/json"

type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type EventHandler func(evt Event, c *Client) error

// Inbound event types.
const (
	EventJoinRoom    = "join_room"
	EventStartRound  = "start_round"
	EventDraw        = "draw"
	EventClearCanvas = "clear_canvas"
	EventChatMessage = "chat_message"
)

// Outbound event types.
const (
	EventRosterUpdate = "roster_update"
	EventRoundStarted = "round_started"
	EventNewWord      = "new_word"
	EventWordHint     = "word_hint"
	EventCorrectGuess = "correct_guess"
	EventError        = "error"
	EventRoomNotFound = "room_not_found"
)

type PayloadJoinRoom struct {
	RoomID string `json:"room_id" validate:"required"`
}

type PayloadChat struct {
	Text string `json:"text" validate:"required"`
}

type PayloadChatMessage struct {
	From   string `json:"from,omitempty"`
	Text   string `json:"text"`
	System bool   `json:"system,omitempty"`
}

type PayloadRoster struct {
	Players []RosterEntry `json:"players"`
}

type PayloadRoundStarted struct {
	Round           int    `json:"round"`
	Drawer          string `json:"drawer"`
	DrawerID        string `json:"drawer_id"`
	StartedAt       int64  `json:"started_at"`
	DurationSeconds int    `json:"duration_seconds"`
}

type PayloadWord struct {
	Word string `json:"word"`
}

type PayloadWordHint struct {
	MaskedWord string `json:"masked_word"`
}

type PayloadCorrectGuess struct {
	Player string `json:"player"`
	Score  int    `json:"score"`
}

type PayloadError struct {
	Message string `json:"message"`
}

func NewEvent(evtType string, payload any) (Event, error) {
	b, err := json.Marshal(payload)

	if err != nil {
		return Event{}, err
	}

	return Event{Type: evtType, Payload: b}, nil
}

func NewErrorEvent(message string) (Event, error) {
	return NewEvent(EventError, PayloadError{Message: message})
}
