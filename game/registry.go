package game

import (
	"math/rand"
	"time"

	"github.com/GenanawMekete/final-bingo/utils/logger"

	"github.com/google/uuid"
)

// Registry owns the process-wide room table and the single task loop
// that every session event runs on. No two handlers for any room ever
// execute concurrently, so rooms need no locks; the one rule is that
// all mutating methods below are called only from inside tasks (or
// from a test that never starts the loop).
type Registry struct {
	settings Settings
	rng      *rand.Rand
	arbiter  *Arbiter

	rooms map[string]*Room

	tasks chan func()
	quit  chan struct{}
}

func NewRegistry(settings Settings, ledger Ledger, archive Archive) *Registry {
	return &Registry{
		settings: settings,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		arbiter:  NewArbiter(settings.ClaimPolicy, settings.WinAward, ledger, archive),
		rooms:    make(map[string]*Room),
		tasks:    make(chan func(), 256),
		quit:     make(chan struct{}),
	}
}

// Arbiter returns the claim arbiter bound to this registry.
func (g *Registry) Arbiter() *Arbiter {
	return g.arbiter
}

// Run processes tasks until Stop. A panic inside one task is logged
// and contained so one room's bad handler cannot take down the rest.
func (g *Registry) Run() {
	logger.Infof("[Registry] session loop started")
	for {
		select {
		case <-g.quit:
			return
		case fn := <-g.tasks:
			g.safely(fn)
		}
	}
}

func (g *Registry) safely(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("[Registry] recovered from handler panic: %v", r)
		}
	}()
	fn()
}

func (g *Registry) Stop() {
	close(g.quit)
}

// Do schedules fn onto the session loop.
func (g *Registry) Do(fn func()) {
	select {
	case g.tasks <- fn:
	case <-g.quit:
	}
}

// Sync schedules fn and waits for it to finish.
func (g *Registry) Sync(fn func()) {
	done := make(chan struct{})
	g.Do(func() {
		defer close(done)
		fn()
	})
	<-done
}

// CreateRoom makes a new Waiting room with a generated id, pool
// included, and the host joined.
func (g *Registry) CreateRoom(hostID, hostName string, conn Conn) *Room {
	id := uuid.NewString()
	r := NewRoom(id, hostID, hostName, conn, g.rng, g.settings)
	g.rooms[id] = r
	logger.Infof("[Registry] room %s created by %s (pool=%d)", id, hostID, len(r.pool))
	return r
}

// Room looks up a live room by id.
func (g *Registry) Room(id string) (*Room, error) {
	r := g.rooms[id]
	if r == nil {
		return nil, notFoundErrorf("room %s not found", id)
	}
	return r, nil
}

func (g *Registry) RoomCount() int {
	return len(g.rooms)
}

// StartRoom runs the host's start request and, on success, attaches
// the room's NumberCaller.
func (g *Registry) StartRoom(roomID, requesterID string) (*Room, error) {
	r, err := g.Room(roomID)
	if err != nil {
		return nil, err
	}
	if err := r.Start(requesterID); err != nil {
		return nil, err
	}

	c := newNumberCaller(g.settings.CallInterval)
	r.caller = c
	go c.run(g.Do, func() { g.tick(roomID, c) })

	logger.Infof("[Room %s] started with %d players, calling every %s",
		roomID, len(r.players), g.settings.CallInterval)
	return r, nil
}

// tick draws and broadcasts one number. The caller-identity check
// guards against a stale cadence racing a deleted (or reused) room id.
func (g *Registry) tick(roomID string, c *NumberCaller) {
	r := g.rooms[roomID]
	if r == nil || r.caller != c {
		c.Cancel()
		return
	}
	n, ok := r.DrawNumber(g.rng)
	if !ok {
		c.Cancel()
		return
	}
	r.Broadcast(NumberCalledEvent(n, r.CalledNumbers()))
}

// Leave removes a player from a room, promoting a new host if needed
// and deleting the room once empty. Idempotent: repeated leaves for
// an already-removed player are no-ops.
func (g *Registry) Leave(roomID, playerID string) (removed bool, newHostID string, roomDeleted bool) {
	r := g.rooms[roomID]
	if r == nil {
		return false, "", true
	}
	removed, newHostID, empty := r.RemovePlayer(playerID)
	if !removed {
		return false, "", false
	}
	if empty {
		g.deleteRoom(roomID)
		return true, "", true
	}
	return true, newHostID, false
}

// deleteRoom cancels the room's caller and drops it from the table.
// Safe to call for an id that is already gone.
func (g *Registry) deleteRoom(id string) {
	r := g.rooms[id]
	if r == nil {
		return
	}
	if r.caller != nil {
		r.caller.Cancel()
	}
	delete(g.rooms, id)
	logger.Infof("[Registry] room %s deleted", id)
}
