package game

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestRoom(t *testing.T, words ...string) *Room {
	t.Helper()

	if len(words) == 0 {
		words = []string{"apple"}
	}

	bank, err := NewBank(words)
	require.NoError(t, err)

	return NewRoom("ABCD", bank, time.Minute)
}

func drawerOf(roster []RosterEntry) (RosterEntry, bool) {
	for _, entry := range roster {
		if entry.IsDrawer {
			return entry, true
		}
	}
	return RosterEntry{}, false
}

func TestJoinDeduplicates(t *testing.T) {
	room := newTestRoom(t)

	roster := room.Join("p1", "Alice")
	require.Len(t, roster, 1)

	roster = room.Join("p1", "Alice")
	require.Len(t, roster, 1, "duplicate join must be an idempotent no-op")

	roster = room.Join("p2", "Bob")
	require.Len(t, roster, 2)
	require.Equal(t, "Alice", roster[0].Name, "roster keeps join order")
	require.Equal(t, "Bob", roster[1].Name)
}

func TestStartRoundRequiresTwoPlayers(t *testing.T) {
	room := newTestRoom(t)
	room.Join("p1", "Alice")

	_, err := room.StartRound()
	require.ErrorIs(t, err, ErrNotEnoughPlayers)
	require.Empty(t, room.MaskedWord())
}

func TestStartRoundAssignsDrawerAndWord(t *testing.T) {
	room := newTestRoom(t)
	room.Join("p1", "Alice")
	room.Join("p2", "Bob")

	info, err := room.StartRound()
	require.NoError(t, err)

	require.Equal(t, 1, info.Round)
	require.Equal(t, "p1", info.DrawerID, "first round starts at the first joiner")
	require.Equal(t, "apple", info.Word)
	require.Equal(t, "_____", info.Masked)
	require.Equal(t, "_____", room.MaskedWord())
	require.False(t, info.StartedAt.IsZero())
	require.Equal(t, time.Minute, info.Duration)

	drawer, ok := drawerOf(room.Roster())
	require.True(t, ok)
	require.Equal(t, "Alice", drawer.Name)
}

func TestRoundRobinRotation(t *testing.T) {
	room := newTestRoom(t)
	ids := []string{"p1", "p2", "p3"}
	for i, id := range ids {
		room.Join(id, fmt.Sprintf("Player%d", i+1))
	}

	counts := make(map[string]int)
	var lastThree []string

	for i := 0; i < 6; i++ {
		info, err := room.StartRound()
		require.NoError(t, err)
		counts[info.DrawerID]++

		lastThree = append(lastThree, info.DrawerID)
		if len(lastThree) == len(ids) {
			seen := make(map[string]bool)
			for _, id := range lastThree {
				seen[id] = true
			}
			require.Len(t, seen, len(ids), "drawer repeated before everyone had a turn: %v", lastThree)
			lastThree = nil
		}
	}

	for _, id := range ids {
		require.Equal(t, 2, counts[id], "each member draws N/M times across N rounds")
	}
}

// Two players "Alice" then "Bob" join; the round selects Alice as drawer and
// "apple" as the word; Bob submits "APPLE" and scores once.
func TestCorrectGuessScenario(t *testing.T) {
	room := newTestRoom(t)
	room.Join("p1", "Alice")
	room.Join("p2", "Bob")

	info, err := room.StartRound()
	require.NoError(t, err)
	require.Equal(t, "Alice", info.DrawerName)

	res := room.SubmitGuess("p2", "APPLE")
	require.Equal(t, GuessCorrect, res.Outcome)
	require.Equal(t, "Bob", res.Player)
	require.Equal(t, GuessAward, res.Score)

	roster := room.Roster()
	require.Equal(t, 0, roster[0].Score, "drawer score unchanged")
	require.Equal(t, GuessAward, roster[1].Score)
}

func TestGuessTrimsAndCaseFolds(t *testing.T) {
	room := newTestRoom(t)
	room.Join("p1", "Alice")
	room.Join("p2", "Bob")
	_, err := room.StartRound()
	require.NoError(t, err)

	res := room.SubmitGuess("p2", "  Apple \n")
	require.Equal(t, GuessCorrect, res.Outcome)
}

func TestRepeatCorrectGuessScoresOnce(t *testing.T) {
	room := newTestRoom(t)
	room.Join("p1", "Alice")
	room.Join("p2", "Bob")
	_, err := room.StartRound()
	require.NoError(t, err)

	first := room.SubmitGuess("p2", "apple")
	require.Equal(t, GuessCorrect, first.Outcome)

	second := room.SubmitGuess("p2", "apple")
	require.Equal(t, GuessRepeat, second.Outcome)

	require.Equal(t, GuessAward, room.Roster()[1].Score, "repeat guess must not award again")
}

// The drawer typing the secret word is ordinary chat, never a guess.
func TestDrawerCannotGuessOwnWord(t *testing.T) {
	room := newTestRoom(t)
	room.Join("p1", "Alice")
	room.Join("p2", "Bob")
	_, err := room.StartRound()
	require.NoError(t, err)

	res := room.SubmitGuess("p1", "apple")
	require.Equal(t, GuessChat, res.Outcome)
	require.Equal(t, 0, room.Roster()[0].Score)
}

func TestGuessOutsideRoundIsChat(t *testing.T) {
	room := newTestRoom(t)
	room.Join("p1", "Alice")
	room.Join("p2", "Bob")

	res := room.SubmitGuess("p2", "apple")
	require.Equal(t, GuessChat, res.Outcome)
}

func TestDrawerLeaveRotatesAndInvalidatesWord(t *testing.T) {
	room := newTestRoom(t, "apple", "banana")
	room.Join("p1", "Alice")
	room.Join("p2", "Bob")
	room.Join("p3", "Carol")

	info, err := room.StartRound()
	require.NoError(t, err)
	require.Equal(t, "p1", info.DrawerID)

	res := room.Leave("p1")
	require.True(t, res.Removed)
	require.True(t, res.WasDrawer)
	require.NotNil(t, res.NextRound, "a fresh round starts when two members remain")
	require.Equal(t, "p2", res.NextRound.DrawerID, "rotation lands on the next-tenured member")
	require.NotEqual(t, info.Generation, res.NextRound.Generation, "old timer generation invalidated")

	drawer, ok := drawerOf(room.Roster())
	require.True(t, ok)
	require.Equal(t, "Bob", drawer.Name, "the drawer is always a current member")
}

func TestDrawerLeaveWithOneRemaining(t *testing.T) {
	room := newTestRoom(t)
	room.Join("p1", "Alice")
	room.Join("p2", "Bob")

	_, err := room.StartRound()
	require.NoError(t, err)

	res := room.Leave("p1")
	require.True(t, res.WasDrawer)
	require.Nil(t, res.NextRound)
	require.Empty(t, room.MaskedWord(), "no stale word may leak after the drawer left")

	_, ok := drawerOf(room.Roster())
	require.False(t, ok)
}

func TestNonDrawerLeaveKeepsRound(t *testing.T) {
	room := newTestRoom(t)
	room.Join("p1", "Alice")
	room.Join("p2", "Bob")
	room.Join("p3", "Carol")

	_, err := room.StartRound()
	require.NoError(t, err)

	res := room.Leave("p3")
	require.True(t, res.Removed)
	require.False(t, res.WasDrawer)
	require.Nil(t, res.NextRound)
	require.NotEmpty(t, room.MaskedWord())

	drawer, ok := drawerOf(room.Roster())
	require.True(t, ok)
	require.Equal(t, "Alice", drawer.Name)
}

func TestLeaveBeforeDrawerAdjustsIndex(t *testing.T) {
	room := newTestRoom(t)
	room.Join("p1", "Alice")
	room.Join("p2", "Bob")
	room.Join("p3", "Carol")

	_, err := room.StartRound()
	require.NoError(t, err)
	info, err := room.StartRound()
	require.NoError(t, err)
	require.Equal(t, "p2", info.DrawerID)

	res := room.Leave("p1")
	require.False(t, res.WasDrawer)

	drawer, ok := drawerOf(room.Roster())
	require.True(t, ok)
	require.Equal(t, "Bob", drawer.Name, "drawer index tracks membership changes")
}

func TestLastLeaveEmptiesRoom(t *testing.T) {
	room := newTestRoom(t)
	room.Join("p1", "Alice")

	res := room.Leave("p1")
	require.True(t, res.Removed)
	require.True(t, res.Empty)
	require.True(t, room.Empty())
}

func TestHostTransfersOnDeparture(t *testing.T) {
	room := newTestRoom(t)
	room.Join("p1", "Alice")
	room.Join("p2", "Bob")
	require.Equal(t, "p1", room.HostID())

	room.Leave("p1")
	require.Equal(t, "p2", room.HostID(), "privilege moves to the next-longest-tenured member")
}

func TestAdvanceIfCurrent(t *testing.T) {
	t.Run("advances a live round", func(t *testing.T) {
		room := newTestRoom(t)
		room.Join("p1", "Alice")
		room.Join("p2", "Bob")

		info, err := room.StartRound()
		require.NoError(t, err)

		next := room.AdvanceIfCurrent(info.Generation)
		require.NotNil(t, next)
		require.Equal(t, "p2", next.DrawerID)
	})

	t.Run("stale generation is a no-op", func(t *testing.T) {
		room := newTestRoom(t)
		room.Join("p1", "Alice")
		room.Join("p2", "Bob")

		old, err := room.StartRound()
		require.NoError(t, err)
		current, err := room.StartRound()
		require.NoError(t, err)

		require.Nil(t, room.AdvanceIfCurrent(old.Generation))
		require.NotNil(t, room.AdvanceIfCurrent(current.Generation))
	})

	t.Run("round ends when too few players remain", func(t *testing.T) {
		room := newTestRoom(t)
		room.Join("p1", "Alice")
		room.Join("p2", "Bob")

		info, err := room.StartRound()
		require.NoError(t, err)

		room.Leave("p2")
		require.Nil(t, room.AdvanceIfCurrent(info.Generation))
		require.Empty(t, room.MaskedWord())
	})
}

// Randomized join/leave/start sequences: the drawer of an active round is
// always a current member and scores never decrease.
func TestDrawerAlwaysMemberUnderChurn(t *testing.T) {
	room := newTestRoom(t, "apple", "banana", "car")
	rng := rand.New(rand.NewSource(42))

	present := make(map[string]bool)
	scores := make(map[string]int)
	nextID := 0

	for step := 0; step < 500; step++ {
		switch rng.Intn(4) {
		case 0:
			id := fmt.Sprintf("p%d", nextID)
			nextID++
			room.Join(id, id)
			present[id] = true
		case 1:
			for id := range present {
				room.Leave(id)
				delete(present, id)
				break
			}
		case 2:
			room.StartRound()
		case 3:
			for id := range present {
				room.SubmitGuess(id, "apple")
				break
			}
		}

		roster := room.Roster()
		require.Len(t, roster, len(present))

		drawers := 0
		for _, entry := range roster {
			if entry.IsDrawer {
				drawers++
			}
			require.GreaterOrEqual(t, entry.Score, scores[entry.Name], "scores are monotonic")
			scores[entry.Name] = entry.Score
		}
		require.LessOrEqual(t, drawers, 1, "at most one drawer at any time")
		if room.MaskedWord() != "" {
			require.Equal(t, 1, drawers, "an active round always has a member drawer")
		}
	}
}
