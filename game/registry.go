package game

import (
	"sync"
	"time"
)

// Registry owns the process-wide mapping from room id to Room. Creation is a
// single check-and-insert under one lock, so two near-simultaneous joins for
// the same not-yet-existing id always resolve to the same Room.
type Registry struct {
	mu            sync.Mutex
	rooms         map[string]*Room
	bank          *Bank
	roundDuration time.Duration
}

func NewRegistry(bank *Bank, roundDuration time.Duration) *Registry {
	return &Registry{
		rooms:         make(map[string]*Room),
		bank:          bank,
		roundDuration: roundDuration,
	}
}

func (reg *Registry) GetOrCreate(id string) *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[id]
	if !ok {
		room = NewRoom(id, reg.bank, reg.roundDuration)
		reg.rooms[id] = room
	}

	return room
}

// Join resolves id (creating the room if needed) and adds the player in one
// step under the registry lock. Splitting lookup from membership mutation
// would let a concurrent last-member departure delete the room between the
// two, stranding the joiner in a Room the registry no longer returns.
func (reg *Registry) Join(id, playerID, name string) (*Room, []RosterEntry) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[id]
	if !ok {
		room = NewRoom(id, reg.bank, reg.roundDuration)
		reg.rooms[id] = room
	}

	return room, room.Join(playerID, name)
}

func (reg *Registry) Get(id string) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[id]
	return room, ok
}

// RemoveIfEmpty deletes the room entry once its membership is empty. Called
// after every departure.
func (reg *Registry) RemoveIfEmpty(id string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if room, ok := reg.rooms[id]; ok && room.Empty() {
		delete(reg.rooms, id)
	}
}
