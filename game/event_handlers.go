package game

import (
	"encoding/json"
	"errors"
	"fmt"
)

// JoinRoomHandler binds the connection to a room and player, adds the player
// to the room's membership and broadcasts the updated roster. The binding is
// established exactly once per connection.
func JoinRoomHandler(evt Event, c *Client) error {
	var payload PayloadJoinRoom

	if err := json.Unmarshal(evt.Payload, &payload); err != nil {
		return err
	}

	if err := c.manager.validate.Struct(payload); err != nil {
		return errors.New("room_id is required")
	}

	if c.Room() != "" {
		return errors.New("connection is already bound to a room")
	}

	room, roster := c.manager.rooms.Join(payload.RoomID, c.ID, c.Username)

	c.setRoom(room.ID)

	c.manager.emitRoster(room.ID, roster)
	c.manager.systemChat(room.ID, fmt.Sprintf("%s joined the game.", c.Username))

	return nil
}

// StartRoundHandler advances the drawer and word on behalf of the room host.
func StartRoundHandler(evt Event, c *Client) error {
	room, ok := boundRoom(c)
	if !ok {
		c.PushEventToEgress(EventRoomNotFound, nil)
		return nil
	}

	if room.HostID() != c.ID {
		return errors.New("only the host can start a round")
	}

	info, err := room.StartRound()
	if err != nil {
		return err
	}

	c.manager.broadcastRoundStart(room, info)

	return nil
}

// DrawHandler relays an opaque stroke payload, unmodified and in order, to
// everyone in the room except the sender.
func DrawHandler(evt Event, c *Client) error {
	room, ok := boundRoom(c)
	if !ok {
		c.PushEventToEgress(EventRoomNotFound, nil)
		return nil
	}

	c.manager.EmitToRoomExcept(room.ID, c.SocketID, evt)

	return nil
}

// ClearCanvasHandler relays a canvas wipe to the whole room, sender included,
// so every canvas converges even after races.
func ClearCanvasHandler(evt Event, c *Client) error {
	room, ok := boundRoom(c)
	if !ok {
		c.PushEventToEgress(EventRoomNotFound, nil)
		return nil
	}

	c.manager.EmitToRoom(room.ID, evt)

	return nil
}

// ChatMessageHandler evaluates chat text as a guess. A first correct guess
// produces a correct_guess broadcast; a repeat correct guess is suppressed so
// the literal word never reaches the room; anything else is plain chat.
func ChatMessageHandler(evt Event, c *Client) error {
	var payload PayloadChat

	if err := json.Unmarshal(evt.Payload, &payload); err != nil {
		return err
	}

	if err := c.manager.validate.Struct(payload); err != nil {
		return errors.New("text is required")
	}

	room, ok := boundRoom(c)
	if !ok {
		c.PushEventToEgress(EventRoomNotFound, nil)
		return nil
	}

	result := room.SubmitGuess(c.ID, payload.Text)

	switch result.Outcome {
	case GuessCorrect:
		correct, err := NewEvent(EventCorrectGuess, PayloadCorrectGuess{
			Player: result.Player,
			Score:  result.Score,
		})
		if err != nil {
			return err
		}
		c.manager.EmitToRoom(room.ID, correct)
		c.manager.emitRoster(room.ID, room.Roster())
	case GuessRepeat:
		// already scored this round; nothing to relay
	default:
		chat, err := NewEvent(EventChatMessage, PayloadChatMessage{
			From: c.Username,
			Text: payload.Text,
		})
		if err != nil {
			return err
		}
		c.manager.EmitToRoom(room.ID, chat)
	}

	return nil
}

func boundRoom(c *Client) (*Room, bool) {
	roomID := c.Room()
	if roomID == "" {
		return nil, false
	}

	return c.manager.rooms.Get(roomID)
}
