package game

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// GuessAward is the fixed number of points for a first correct guess in a round.
const GuessAward = 10

var ErrNotEnoughPlayers = errors.New("at least two players are needed to start a round")

type Player struct {
	ID    string
	Name  string
	Score int
}

type RosterEntry struct {
	Name     string `json:"name"`
	IsDrawer bool   `json:"is_drawer"`
	Score    int    `json:"score"`
}

// RoundInfo describes a freshly started round. Word must only ever be
// delivered to the drawer's connection; everyone else gets Masked.
type RoundInfo struct {
	Round      int
	DrawerID   string
	DrawerName string
	Word       string
	Masked     string
	StartedAt  time.Time
	Duration   time.Duration
	Generation int
}

type GuessOutcome int

const (
	// GuessChat means the text is an ordinary chat message (no match, no
	// active round, or the drawer talking).
	GuessChat GuessOutcome = iota
	// GuessCorrect means a first correct guess this round; points awarded.
	GuessCorrect
	// GuessRepeat means the player already guessed correctly this round.
	// No points and no relay, so the literal word is never echoed to the room.
	GuessRepeat
)

type GuessResult struct {
	Outcome GuessOutcome
	Player  string
	Score   int
}

type LeaveResult struct {
	Removed   bool
	Name      string
	WasDrawer bool
	// NextRound is set when the departing drawer's round was replaced by a
	// fresh one (at least two members remained).
	NextRound *RoundInfo
	Empty     bool
	Roster    []RosterEntry
}

// Room holds the authoritative state of one game session. A single mutex
// serializes every mutation, so events touching the same room are applied
// atomically and in the order their handlers acquire the lock. Rooms are
// fully independent of one another.
type Room struct {
	ID string

	mu       sync.Mutex
	bank     *Bank
	duration time.Duration

	players    []*Player // join order; index 0 is the host
	drawerIdx  int       // -1 before the first round; rotation memory while idle
	word       string    // empty between rounds
	round      int
	generation int // bumped whenever a round starts or ends; guards stale timers
	startedAt  time.Time
	deadline   time.Time
	guessed    map[string]bool // player ids that already guessed this round
}

func NewRoom(id string, bank *Bank, roundDuration time.Duration) *Room {
	return &Room{
		ID:        id,
		bank:      bank,
		duration:  roundDuration,
		drawerIdx: -1,
		guessed:   make(map[string]bool),
	}
}

// Join adds a player to the room. Joining twice with the same id is an
// idempotent no-op on membership. A joiner never auto-starts a round and
// enters a running round as a guesser. Returns the updated roster.
func (r *Room) Join(id, name string) []RosterEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.players {
		if p.ID == id {
			return r.rosterLocked()
		}
	}

	r.players = append(r.players, &Player{ID: id, Name: name})
	return r.rosterLocked()
}

// Leave removes a player. If the departing player was the current drawer the
// round is torn down atomically with the removal: the word is cleared, the
// running timer is invalidated via the generation counter, and a fresh round
// begins immediately when at least two members remain.
func (r *Room) Leave(id string) LeaveResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := slices.IndexFunc(r.players, func(p *Player) bool { return p.ID == id })

	if idx < 0 {
		return LeaveResult{}
	}

	res := LeaveResult{
		Removed:   true,
		Name:      r.players[idx].Name,
		WasDrawer: r.roundActiveLocked() && idx == r.drawerIdx,
	}

	r.players = append(r.players[:idx], r.players[idx+1:]...)

	if len(r.players) == 0 {
		r.endRoundLocked()
		r.drawerIdx = -1
		res.Empty = true
		return res
	}

	if res.WasDrawer {
		r.endRoundLocked()
		if len(r.players) >= 2 {
			// rotation should land on the player who slid into the
			// departed drawer's slot
			r.drawerIdx = (idx - 1 + len(r.players)) % len(r.players)
			res.NextRound = r.startRoundLocked()
		} else {
			r.drawerIdx = -1
		}
	} else if r.drawerIdx >= 0 && idx <= r.drawerIdx {
		r.drawerIdx--
	}

	res.Roster = r.rosterLocked()
	return res
}

// StartRound rotates the drawer, picks a fresh word and resets per-round
// state. Fails with ErrNotEnoughPlayers below two members.
func (r *Room) StartRound() (*RoundInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.players) < 2 {
		return nil, ErrNotEnoughPlayers
	}

	return r.startRoundLocked(), nil
}

// AdvanceIfCurrent is the round-timer callback entry point. It is a no-op
// unless gen still matches the room's generation, so a timer that outlived
// its round (drawer left, host restarted early) never fires against rotated
// state. A room too small to continue falls back to idle.
func (r *Room) AdvanceIfCurrent(gen int) *RoundInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.generation || !r.roundActiveLocked() {
		return nil
	}

	if len(r.players) < 2 {
		r.endRoundLocked()
		return nil
	}

	return r.startRoundLocked()
}

// SubmitGuess evaluates chat text against the secret word. The drawer's own
// messages are always plain chat. Correct guesses award points exactly once
// per round per player; a repeat correct submission is suppressed entirely.
func (r *Room) SubmitGuess(id, text string) GuessResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := slices.IndexFunc(r.players, func(p *Player) bool { return p.ID == id })

	if idx < 0 || !r.roundActiveLocked() {
		return GuessResult{Outcome: GuessChat}
	}

	player := r.players[idx]

	if r.players[r.drawerIdx].ID == id {
		return GuessResult{Outcome: GuessChat}
	}

	guess := strings.ToLower(strings.TrimSpace(text))
	if guess != strings.ToLower(r.word) {
		return GuessResult{Outcome: GuessChat}
	}

	if r.guessed[id] {
		return GuessResult{Outcome: GuessRepeat, Player: player.Name, Score: player.Score}
	}

	r.guessed[id] = true
	player.Score += GuessAward

	return GuessResult{Outcome: GuessCorrect, Player: player.Name, Score: player.Score}
}

// MaskedWord returns the current word with letters hidden, or "" between rounds.
func (r *Room) MaskedWord() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.word == "" {
		return ""
	}
	return Mask(r.word)
}

func (r *Room) Roster() []RosterEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rosterLocked()
}

// HostID is the id of the longest-tenured member. Start-round privilege
// belongs to the host and transfers automatically on host departure.
func (r *Room) HostID() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.players) == 0 {
		return ""
	}
	return r.players[0].ID
}

func (r *Room) Empty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players) == 0
}

type Snapshot struct {
	ID          string   `json:"id"`
	Players     []string `json:"players"`
	Round       int      `json:"round"`
	RoundActive bool     `json:"round_active"`
}

func (r *Room) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	return Snapshot{
		ID: r.ID,
		Players: lo.Map(r.players, func(p *Player, _ int) string {
			return p.Name
		}),
		Round:       r.round,
		RoundActive: r.roundActiveLocked(),
	}
}

func (r *Room) roundActiveLocked() bool {
	return r.word != ""
}

func (r *Room) rosterLocked() []RosterEntry {
	active := r.roundActiveLocked()
	return lo.Map(r.players, func(p *Player, i int) RosterEntry {
		return RosterEntry{
			Name:     p.Name,
			IsDrawer: active && i == r.drawerIdx,
			Score:    p.Score,
		}
	})
}

func (r *Room) startRoundLocked() *RoundInfo {
	if r.drawerIdx < 0 {
		r.drawerIdx = 0
	} else {
		r.drawerIdx = (r.drawerIdx + 1) % len(r.players)
	}

	r.word = r.bank.Pick()
	r.round++
	r.generation++
	r.startedAt = time.Now()
	r.deadline = r.startedAt.Add(r.duration)
	r.guessed = make(map[string]bool)

	drawer := r.players[r.drawerIdx]

	return &RoundInfo{
		Round:      r.round,
		DrawerID:   drawer.ID,
		DrawerName: drawer.Name,
		Word:       r.word,
		Masked:     Mask(r.word),
		StartedAt:  r.startedAt,
		Duration:   r.duration,
		Generation: r.generation,
	}
}

func (r *Room) endRoundLocked() {
	r.word = ""
	r.generation++
	r.guessed = make(map[string]bool)
}
