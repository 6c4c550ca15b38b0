package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testSettings() Settings {
	s := DefaultSettings()
	s.PoolSize = 10
	return s
}

func newTestRoom(settings Settings) *Room {
	return NewRoom("room-1", "host", "Hosty", nil, testRand(), settings)
}

// forceCall marks numbers as called without running the caller.
// Already-called numbers are skipped, keeping the history distinct.
func forceCall(r *Room, numbers ...int) {
	for _, n := range numbers {
		if r.calledSet[n] {
			continue
		}
		r.calledNumbers = append(r.calledNumbers, n)
		r.calledSet[n] = true
	}
}

func startedRoom(t *testing.T, settings Settings) *Room {
	t.Helper()
	r := newTestRoom(settings)
	_, err := r.Join("p2", "Two", nil)
	assert.NoError(t, err)
	_, _, err = r.SelectCard("host", 0)
	assert.NoError(t, err)
	_, _, err = r.SelectCard("p2", 1)
	assert.NoError(t, err)
	assert.NoError(t, r.Start("host"))
	return r
}

func TestNewRoom(t *testing.T) {
	assert := assert.New(t)

	r := newTestRoom(testSettings())

	assert.Equal(StatusWaiting, r.Status)
	assert.Len(r.Pool(), 10)
	assert.Equal(1, r.PlayerCount())

	host := r.Player("host")
	assert.NotNil(host)
	assert.True(host.IsHost)
	assert.Equal(map[int]bool{FreeIndex: true}, host.MarkedCells)
}

func TestRoom_Join(t *testing.T) {
	assert := assert.New(t)

	r := newTestRoom(testSettings())

	p, err := r.Join("p2", "Two", nil)
	assert.NoError(err)
	assert.False(p.IsHost)
	assert.Equal(map[int]bool{FreeIndex: true}, p.MarkedCells)
	assert.Equal(2, r.PlayerCount())

	_, err = r.Join("p2", "Two again", nil)
	assert.True(errors.Is(err, ErrValidation))
}

func TestRoom_JoinCapacity(t *testing.T) {
	assert := assert.New(t)

	settings := testSettings()
	settings.MaxPlayers = 3
	r := newTestRoom(settings)

	_, err := r.Join("p2", "Two", nil)
	assert.NoError(err)
	_, err = r.Join("p3", "Three", nil)
	assert.NoError(err)

	_, err = r.Join("p4", "Four", nil)
	assert.True(errors.Is(err, ErrCapacity))
	assert.Equal(3, r.PlayerCount())
}

func TestRoom_JoinAfterStart(t *testing.T) {
	assert := assert.New(t)

	r := startedRoom(t, testSettings())
	_, err := r.Join("late", "Late", nil)
	assert.True(errors.Is(err, ErrState))
}

func TestRoom_SelectCard(t *testing.T) {
	assert := assert.New(t)

	r := newTestRoom(testSettings())
	_, err := r.Join("p2", "Two", nil)
	assert.NoError(err)

	card, allReady, err := r.SelectCard("host", 3)
	assert.NoError(err)
	assert.False(allReady)
	assert.Equal(r.Pool()[3], card)
	assert.True(r.Player("host").HasSelectedCard)

	// Second selection by the same player is rejected.
	_, _, err = r.SelectCard("host", 4)
	assert.True(errors.Is(err, ErrState))

	// Out of bounds.
	_, _, err = r.SelectCard("p2", 10)
	assert.True(errors.Is(err, ErrValidation))
	_, _, err = r.SelectCard("p2", -1)
	assert.True(errors.Is(err, ErrValidation))

	// Unknown player.
	_, _, err = r.SelectCard("ghost", 0)
	assert.True(errors.Is(err, ErrNotFound))

	// Last selection flips the all-ready signal.
	_, allReady, err = r.SelectCard("p2", 3)
	assert.NoError(err)
	assert.True(allReady)
}

func TestRoom_SelectCard_SharedIndexAllowedByDefault(t *testing.T) {
	assert := assert.New(t)

	r := newTestRoom(testSettings())
	_, err := r.Join("p2", "Two", nil)
	assert.NoError(err)

	_, _, err = r.SelectCard("host", 0)
	assert.NoError(err)
	_, _, err = r.SelectCard("p2", 0)
	assert.NoError(err)
}

func TestRoom_SelectCard_ExclusivePool(t *testing.T) {
	assert := assert.New(t)

	settings := testSettings()
	settings.PoolExclusive = true
	r := newTestRoom(settings)
	_, err := r.Join("p2", "Two", nil)
	assert.NoError(err)

	_, _, err = r.SelectCard("host", 0)
	assert.NoError(err)
	_, _, err = r.SelectCard("p2", 0)
	assert.True(errors.Is(err, ErrState))
	_, _, err = r.SelectCard("p2", 1)
	assert.NoError(err)
}

func TestRoom_Start(t *testing.T) {
	assert := assert.New(t)

	r := newTestRoom(testSettings())

	// Alone: rejected even for the host.
	_, _, err := r.SelectCard("host", 0)
	assert.NoError(err)
	err = r.Start("host")
	assert.True(errors.Is(err, ErrState))

	_, err = r.Join("p2", "Two", nil)
	assert.NoError(err)

	// Non-host cannot start.
	err = r.Start("p2")
	assert.True(errors.Is(err, ErrAuthorization))

	// A player without a card blocks the start.
	err = r.Start("host")
	assert.True(errors.Is(err, ErrState))

	_, _, err = r.SelectCard("p2", 1)
	assert.NoError(err)
	assert.NoError(r.Start("host"))
	assert.Equal(StatusActive, r.Status)
	assert.False(r.StartedAt.IsZero())

	// No second start.
	err = r.Start("host")
	assert.True(errors.Is(err, ErrState))
}

func TestRoom_MarkCell(t *testing.T) {
	assert := assert.New(t)

	r := startedRoom(t, testSettings())
	host := r.Player("host")
	cell := host.Card.Cell(0)

	// Nothing called yet.
	_, err := r.MarkCell("host", 0)
	assert.True(errors.Is(err, ErrState))

	forceCall(r, cell.Value)

	count, err := r.MarkCell("host", 0)
	assert.NoError(err)
	assert.Equal(2, count) // free cell + the new mark
	assert.True(host.MarkedCells[0])

	// Already marked.
	_, err = r.MarkCell("host", 0)
	assert.True(errors.Is(err, ErrValidation))

	// Free cell.
	_, err = r.MarkCell("host", FreeIndex)
	assert.True(errors.Is(err, ErrValidation))

	// Out of range.
	_, err = r.MarkCell("host", 25)
	assert.True(errors.Is(err, ErrValidation))

	// Value not called.
	uncalled := -1
	for idx, c := range host.Card.Cells {
		if !c.Free && !r.calledSet[c.Value] {
			uncalled = idx
			break
		}
	}
	assert.NotEqual(-1, uncalled)
	_, err = r.MarkCell("host", uncalled)
	assert.True(errors.Is(err, ErrValidation))

	// Unknown player.
	_, err = r.MarkCell("ghost", 0)
	assert.True(errors.Is(err, ErrNotFound))
}

func TestRoom_MarkCellBeforeStart(t *testing.T) {
	assert := assert.New(t)

	r := newTestRoom(testSettings())
	_, err := r.MarkCell("host", 0)
	assert.True(errors.Is(err, ErrState))
}

func TestRoom_MarkCellAfterFinish(t *testing.T) {
	assert := assert.New(t)

	r := startedRoom(t, testSettings())
	forceCall(r, r.Player("host").Card.Cell(0).Value)
	r.Finish("host")

	_, err := r.MarkCell("host", 0)
	assert.True(errors.Is(err, ErrState))
}

func TestRoom_DrawNumberExhaustion(t *testing.T) {
	assert := assert.New(t)

	r := startedRoom(t, testSettings())
	rng := testRand()

	seen := make(map[int]bool)
	var history []int
	for i := 0; i < 75; i++ {
		n, ok := r.DrawNumber(rng)
		assert.True(ok)
		assert.GreaterOrEqual(n, 1)
		assert.LessOrEqual(n, 75)
		assert.False(seen[n], "duplicate draw %d", n)
		seen[n] = true
		history = append(history, n)

		// Append-only: the prefix never changes.
		assert.Equal(history, r.CalledNumbers())
	}

	_, ok := r.DrawNumber(rng)
	assert.False(ok)
	assert.Len(r.CalledNumbers(), 75)
}

func TestRoom_DrawNumberStopsWhenNotActive(t *testing.T) {
	assert := assert.New(t)

	r := newTestRoom(testSettings())
	_, ok := r.DrawNumber(testRand())
	assert.False(ok)

	r = startedRoom(t, testSettings())
	r.Finish("host")
	_, ok = r.DrawNumber(testRand())
	assert.False(ok)
}

func TestRoom_HostPromotionOnLeave(t *testing.T) {
	assert := assert.New(t)

	r := newTestRoom(testSettings())
	_, err := r.Join("p2", "Two", nil)
	assert.NoError(err)
	_, err = r.Join("p3", "Three", nil)
	assert.NoError(err)

	removed, newHostID, empty := r.RemovePlayer("host")
	assert.True(removed)
	assert.False(empty)
	assert.Equal("p2", newHostID) // earliest remaining joiner
	assert.Equal("p2", r.HostID)
	assert.True(r.Player("p2").IsHost)
}

func TestRoom_NonHostLeaveKeepsHost(t *testing.T) {
	assert := assert.New(t)

	r := newTestRoom(testSettings())
	_, err := r.Join("p2", "Two", nil)
	assert.NoError(err)

	removed, newHostID, empty := r.RemovePlayer("p2")
	assert.True(removed)
	assert.Empty(newHostID)
	assert.False(empty)
	assert.Equal("host", r.HostID)
}

func TestRoom_RemovePlayerIdempotent(t *testing.T) {
	assert := assert.New(t)

	r := newTestRoom(testSettings())
	removed, _, _ := r.RemovePlayer("ghost")
	assert.False(removed)

	removed, _, empty := r.RemovePlayer("host")
	assert.True(removed)
	assert.True(empty)

	removed, _, empty = r.RemovePlayer("host")
	assert.False(removed)
	assert.True(empty)
}

func TestRoom_SnapshotJoinOrder(t *testing.T) {
	assert := assert.New(t)

	r := newTestRoom(testSettings())
	_, err := r.Join("p2", "Two", nil)
	assert.NoError(err)
	_, err = r.Join("p3", "Three", nil)
	assert.NoError(err)

	snap := r.Snapshot()
	assert.Equal("room-1", snap.ID)
	assert.Equal(string(StatusWaiting), snap.Status)
	ids := make([]string, len(snap.Players))
	for i, p := range snap.Players {
		ids[i] = p.ID
	}
	assert.Equal([]string{"host", "p2", "p3"}, ids)
}
