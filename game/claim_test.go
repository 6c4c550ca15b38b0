package game

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// recordConn captures outbound events for assertions.
type recordConn struct {
	mu     sync.Mutex
	events []Event
}

func (c *recordConn) Send(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *recordConn) count(eventType string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, ev := range c.events {
		if ev.Type == eventType {
			n++
		}
	}
	return n
}

type fakeLedger struct {
	credits chan string
}

func (l *fakeLedger) Credit(playerID string, amount float64, reason string) error {
	l.credits <- playerID
	return nil
}

func (l *fakeLedger) Debit(playerID string, amount float64, reason string) error {
	return nil
}

type fakeArchive struct {
	results chan GameResult
}

func (a *fakeArchive) SaveResult(res GameResult) error {
	a.results <- res
	return nil
}

// markFourCorners force-calls and marks the player's corner cells.
func markFourCorners(t *testing.T, r *Room, playerID string) {
	t.Helper()
	p := r.Player(playerID)
	for _, idx := range []int{0, 4, 20, 24} {
		forceCall(r, p.Card.Cell(idx).Value)
		_, err := r.MarkCell(playerID, idx)
		assert.NoError(t, err)
	}
}

func TestArbiter_FileWithoutPatternRejected(t *testing.T) {
	assert := assert.New(t)

	r := startedRoom(t, testSettings())
	arbiter := NewArbiter(ManualHostVerification, 100, nil, nil)

	rec, finalized, err := arbiter.File(r, "host")
	assert.True(errors.Is(err, ErrValidation))
	assert.Nil(rec)
	assert.False(finalized)
	assert.Empty(r.pendingClaims)
	assert.False(r.Player("host").HasClaimedBingo)
	assert.Equal(StatusActive, r.Status)
}

func TestArbiter_FileStagesClaim(t *testing.T) {
	assert := assert.New(t)

	conn := &recordConn{}
	r := NewRoom("room-1", "host", "Hosty", conn, testRand(), testSettings())
	_, err := r.Join("p2", "Two", nil)
	assert.NoError(err)
	_, _, err = r.SelectCard("host", 0)
	assert.NoError(err)
	_, _, err = r.SelectCard("p2", 1)
	assert.NoError(err)
	assert.NoError(r.Start("host"))

	markFourCorners(t, r, "p2")
	arbiter := NewArbiter(ManualHostVerification, 100, nil, nil)

	rec, finalized, err := arbiter.File(r, "p2")
	assert.NoError(err)
	assert.False(finalized)
	assert.NotNil(rec)
	assert.Equal("p2", rec.PlayerID)
	assert.False(rec.FiledAt.IsZero())
	assert.NotEmpty(rec.Patterns)
	assert.True(r.Player("p2").HasClaimedBingo)

	// Staged, not won: the room is still Active, no winner.
	assert.Equal(StatusActive, r.Status)
	assert.Empty(r.WinnerID)
	assert.Equal(1, conn.count("bingo-claimed"))
	assert.Equal(0, conn.count("bingo-verified"))

	// A second file while the claim is outstanding is rejected.
	_, _, err = arbiter.File(r, "p2")
	assert.True(errors.Is(err, ErrState))
}

func TestArbiter_FileOnInactiveRoom(t *testing.T) {
	assert := assert.New(t)

	r := newTestRoom(testSettings())
	arbiter := NewArbiter(ManualHostVerification, 100, nil, nil)

	_, _, err := arbiter.File(r, "host")
	assert.True(errors.Is(err, ErrState))
}

func TestArbiter_VerifyRequiresHost(t *testing.T) {
	assert := assert.New(t)

	r := startedRoom(t, testSettings())
	markFourCorners(t, r, "p2")
	arbiter := NewArbiter(ManualHostVerification, 100, nil, nil)
	_, _, err := arbiter.File(r, "p2")
	assert.NoError(err)

	_, err = arbiter.Verify(r, "p2", "p2", true)
	assert.True(errors.Is(err, ErrAuthorization))
	assert.Equal(StatusActive, r.Status)
}

func TestArbiter_VerifyWithoutClaim(t *testing.T) {
	assert := assert.New(t)

	r := startedRoom(t, testSettings())
	arbiter := NewArbiter(ManualHostVerification, 100, nil, nil)

	_, err := arbiter.Verify(r, "host", "p2", true)
	assert.True(errors.Is(err, ErrNotFound))
}

func TestArbiter_VerifyReject(t *testing.T) {
	assert := assert.New(t)

	r := startedRoom(t, testSettings())
	markFourCorners(t, r, "p2")
	arbiter := NewArbiter(ManualHostVerification, 100, nil, nil)
	_, _, err := arbiter.File(r, "p2")
	assert.NoError(err)

	rec, err := arbiter.Verify(r, "host", "p2", false)
	assert.NoError(err)
	assert.NotNil(rec)

	// Claim discarded, room still running, player may claim again.
	assert.Equal(StatusActive, r.Status)
	assert.Empty(r.WinnerID)
	assert.Empty(r.pendingClaims)
	assert.False(r.Player("p2").HasClaimedBingo)

	_, _, err = arbiter.File(r, "p2")
	assert.NoError(err)
}

func TestArbiter_VerifyAcceptFinalizes(t *testing.T) {
	assert := assert.New(t)

	ledger := &fakeLedger{credits: make(chan string, 1)}
	archive := &fakeArchive{results: make(chan GameResult, 1)}

	r := startedRoom(t, testSettings())
	r.caller = newNumberCaller(time.Hour)
	markFourCorners(t, r, "p2")
	arbiter := NewArbiter(ManualHostVerification, 250, ledger, archive)
	_, _, err := arbiter.File(r, "p2")
	assert.NoError(err)

	rec, err := arbiter.Verify(r, "host", "p2", true)
	assert.NoError(err)
	assert.NotNil(rec)

	assert.Equal(StatusFinished, r.Status)
	assert.Equal("p2", r.WinnerID)
	assert.False(r.FinishedAt.IsZero())
	assert.True(r.caller.Cancelled())

	// Exactly one winner, and the room refuses everything afterwards.
	_, err = r.MarkCell("p2", 1)
	assert.True(errors.Is(err, ErrState))
	_, _, err = arbiter.File(r, "host")
	assert.True(errors.Is(err, ErrState))
	_, err = arbiter.Verify(r, "host", "p2", true)
	assert.True(errors.Is(err, ErrNotFound))

	// Award and archive happen off the session loop.
	select {
	case winner := <-ledger.credits:
		assert.Equal("p2", winner)
	case <-time.After(2 * time.Second):
		t.Fatal("ledger credit never happened")
	}
	select {
	case res := <-archive.results:
		assert.Equal("p2", res.WinnerID)
		assert.Equal("room-1", res.RoomID)
		assert.NotEmpty(res.Patterns)
	case <-time.After(2 * time.Second):
		t.Fatal("archive write never happened")
	}
}

func TestArbiter_VerifyAfterFinishRejected(t *testing.T) {
	assert := assert.New(t)

	r := startedRoom(t, testSettings())
	markFourCorners(t, r, "p2")
	markFourCorners(t, r, "host")
	arbiter := NewArbiter(ManualHostVerification, 100, nil, nil)

	// Both players hold valid pending claims.
	_, _, err := arbiter.File(r, "p2")
	assert.NoError(err)
	_, _, err = arbiter.File(r, "host")
	assert.NoError(err)

	_, err = arbiter.Verify(r, "host", "p2", true)
	assert.NoError(err)
	assert.Equal(StatusFinished, r.Status)
	assert.Equal("p2", r.WinnerID)

	// Accepting the leftover claim must not crown a second winner.
	_, err = arbiter.Verify(r, "host", "host", true)
	assert.True(errors.Is(err, ErrState))
	assert.Equal("p2", r.WinnerID)

	// Rejecting it must not touch the finished room's records either.
	_, err = arbiter.Verify(r, "host", "host", false)
	assert.True(errors.Is(err, ErrState))
	assert.NotNil(r.pendingClaims["host"])
	assert.True(r.Player("host").HasClaimedBingo)
}

func TestArbiter_AutoVerification(t *testing.T) {
	assert := assert.New(t)

	r := startedRoom(t, testSettings())
	r.caller = newNumberCaller(time.Hour)
	markFourCorners(t, r, "p2")
	arbiter := NewArbiter(ServerAutoVerification, 100, nil, nil)

	rec, finalized, err := arbiter.File(r, "p2")
	assert.NoError(err)
	assert.True(finalized)
	assert.NotNil(rec)
	assert.Equal(StatusFinished, r.Status)
	assert.Equal("p2", r.WinnerID)
	assert.True(r.caller.Cancelled())
}

func TestArbiter_LedgerFailureDoesNotAffectRoom(t *testing.T) {
	assert := assert.New(t)

	r := startedRoom(t, testSettings())
	markFourCorners(t, r, "p2")
	arbiter := NewArbiter(ServerAutoVerification, 100, failingLedger{}, nil)

	_, finalized, err := arbiter.File(r, "p2")
	assert.NoError(err)
	assert.True(finalized)
	assert.Equal(StatusFinished, r.Status)
	assert.Equal("p2", r.WinnerID)
}

type failingLedger struct{}

func (failingLedger) Credit(string, float64, string) error { return ErrInsufficientFunds }
func (failingLedger) Debit(string, float64, string) error  { return ErrInsufficientFunds }
