package game

import (
	"math/rand"
	"time"
)

type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusActive   Status = "in_progress"
	StatusFinished Status = "finished"
)

// ClaimPolicy selects who finalizes a filed claim.
type ClaimPolicy int

const (
	// ManualHostVerification stages the claim until the host accepts
	// or rejects it.
	ManualHostVerification ClaimPolicy = iota
	// ServerAutoVerification finalizes a claim the moment the pattern
	// check passes, with no host step.
	ServerAutoVerification
)

// Settings are the per-room engine tunables.
type Settings struct {
	PoolSize      int
	MaxPlayers    int
	CallInterval  time.Duration
	ClaimPolicy   ClaimPolicy
	PoolExclusive bool
	WinAward      float64
}

func DefaultSettings() Settings {
	return Settings{
		PoolSize:     20,
		MaxPlayers:   8,
		CallInterval: 3 * time.Second,
		ClaimPolicy:  ManualHostVerification,
		WinAward:     100,
	}
}

// Conn routes outbound events to one connection. Players hold it as a
// non-owning back-reference; it is never used to store state.
type Conn interface {
	Send(ev Event)
}

type Player struct {
	ID              string
	DisplayName     string
	Conn            Conn
	Card            *Card
	PoolIndex       int
	MarkedCells     map[int]bool
	IsHost          bool
	HasSelectedCard bool
	HasClaimedBingo bool
	JoinedAt        time.Time
}

func (p *Player) Snapshot() PlayerSnapshot {
	return PlayerSnapshot{
		ID:              p.ID,
		DisplayName:     p.DisplayName,
		IsHost:          p.IsHost,
		HasSelectedCard: p.HasSelectedCard,
		HasClaimedBingo: p.HasClaimedBingo,
	}
}

// ClaimRecord is a filed-but-unverified bingo claim.
type ClaimRecord struct {
	PlayerID    string
	FiledAt     time.Time
	MarkedCells map[int]bool
	Patterns    []MatchedPattern
}

// Room is the aggregate for one bingo session. All methods must be
// called from the registry's single task loop; the room itself carries
// no locks.
type Room struct {
	ID     string
	HostID string
	Status Status

	players   map[string]*Player
	joinOrder []string

	calledNumbers []int
	calledSet     map[int]bool

	pool      []Card
	takenPool map[int]bool

	pendingClaims map[string]*ClaimRecord
	WinnerID      string

	CreatedAt  time.Time
	StartedAt  time.Time
	FinishedAt time.Time

	caller   *NumberCaller
	settings Settings
}

// NewRoom creates a Waiting room with its card pool generated up
// front and the host joined as the first player.
func NewRoom(id, hostID, hostName string, conn Conn, rng *rand.Rand, settings Settings) *Room {
	r := &Room{
		ID:            id,
		HostID:        hostID,
		Status:        StatusWaiting,
		players:       make(map[string]*Player),
		calledSet:     make(map[int]bool),
		pool:          NewCardPool(rng, settings.PoolSize),
		takenPool:     make(map[int]bool),
		pendingClaims: make(map[string]*ClaimRecord),
		CreatedAt:     time.Now(),
		settings:      settings,
	}
	r.addPlayer(hostID, hostName, conn, true)
	return r
}

func (r *Room) addPlayer(id, name string, conn Conn, host bool) *Player {
	p := &Player{
		ID:          id,
		DisplayName: name,
		Conn:        conn,
		MarkedCells: map[int]bool{FreeIndex: true},
		IsHost:      host,
		JoinedAt:    time.Now(),
	}
	r.players[id] = p
	r.joinOrder = append(r.joinOrder, id)
	return p
}

// Join adds a player while the room is still Waiting.
func (r *Room) Join(id, name string, conn Conn) (*Player, error) {
	if r.Status != StatusWaiting {
		return nil, stateErrorf("room %s has already started", r.ID)
	}
	if len(r.players) >= r.settings.MaxPlayers {
		return nil, capacityErrorf("room %s is full (%d players)", r.ID, r.settings.MaxPlayers)
	}
	if _, ok := r.players[id]; ok {
		return nil, validationErrorf("player %s is already in room %s", id, r.ID)
	}
	return r.addPlayer(id, name, conn, false), nil
}

// Player returns the player by id, or nil.
func (r *Room) Player(id string) *Player {
	return r.players[id]
}

func (r *Room) PlayerCount() int {
	return len(r.players)
}

// Pool returns the room's immutable card pool.
func (r *Room) Pool() []Card {
	return r.pool
}

// PoolPreviews builds the browse list sent on join.
func (r *Room) PoolPreviews(k int) []CardPreview {
	out := make([]CardPreview, len(r.pool))
	for i, card := range r.pool {
		out[i] = CardPreview{PoolIndex: i, Columns: Preview(card, k)}
	}
	return out
}

// SelectCard assigns a pool card to a player. Returns whether every
// current player has now selected ("all ready" is informational only,
// it never auto-starts the room).
func (r *Room) SelectCard(playerID string, poolIndex int) (card Card, allReady bool, err error) {
	p := r.players[playerID]
	if p == nil {
		return Card{}, false, notFoundErrorf("player %s not in room %s", playerID, r.ID)
	}
	if p.HasSelectedCard {
		return Card{}, false, stateErrorf("player %s already selected a card", playerID)
	}
	if poolIndex < 0 || poolIndex >= len(r.pool) {
		return Card{}, false, validationErrorf("pool index %d out of range", poolIndex)
	}
	// Two players picking the same pool index is allowed unless
	// exclusivity is switched on.
	if r.settings.PoolExclusive && r.takenPool[poolIndex] {
		return Card{}, false, stateErrorf("card %d is already taken", poolIndex)
	}

	p.Card = &r.pool[poolIndex]
	p.PoolIndex = poolIndex
	p.HasSelectedCard = true
	r.takenPool[poolIndex] = true

	allReady = true
	for _, other := range r.players {
		if !other.HasSelectedCard {
			allReady = false
			break
		}
	}
	return *p.Card, allReady, nil
}

// Start transitions Waiting -> Active. Host only, needs at least two
// players and every player holding a card. The caller is attached by
// the registry afterwards.
func (r *Room) Start(requesterID string) error {
	if requesterID != r.HostID {
		return authorizationErrorf("only the host can start the room")
	}
	if r.Status != StatusWaiting {
		return stateErrorf("room %s is %s, cannot start", r.ID, r.Status)
	}
	if len(r.players) < 2 {
		return stateErrorf("need at least 2 players to start")
	}
	for _, p := range r.players {
		if !p.HasSelectedCard {
			return stateErrorf("player %s has not selected a card", p.ID)
		}
	}
	r.Status = StatusActive
	r.StartedAt = time.Now()
	return nil
}

// MarkCell marks a called, unmarked, non-free cell on the player's
// card and returns the new marked count.
func (r *Room) MarkCell(playerID string, cellIndex int) (int, error) {
	if r.Status != StatusActive {
		return 0, stateErrorf("room %s is not active", r.ID)
	}
	p := r.players[playerID]
	if p == nil {
		return 0, notFoundErrorf("player %s not in room %s", playerID, r.ID)
	}
	if p.Card == nil {
		return 0, stateErrorf("player %s has no card", playerID)
	}
	cell := p.Card.Cell(cellIndex)
	if cell == nil {
		return 0, validationErrorf("cell index %d out of range", cellIndex)
	}
	if cell.Free {
		return 0, validationErrorf("the free cell is always marked")
	}
	if len(r.calledNumbers) == 0 {
		return 0, stateErrorf("no numbers have been called yet")
	}
	if !r.calledSet[cell.Value] {
		return 0, validationErrorf("number %d has not been called", cell.Value)
	}
	if p.MarkedCells[cellIndex] {
		return 0, validationErrorf("cell %d is already marked", cellIndex)
	}
	p.MarkedCells[cellIndex] = true
	return len(p.MarkedCells), nil
}

// DrawNumber rejection-samples an uncalled number in [1,75], appends
// it to the call history and returns it. ok is false once all 75 are
// out or the room is no longer Active.
func (r *Room) DrawNumber(rng *rand.Rand) (int, bool) {
	if r.Status != StatusActive || len(r.calledNumbers) >= 75 {
		return 0, false
	}
	n := 1 + rng.Intn(75)
	for r.calledSet[n] {
		n = 1 + rng.Intn(75)
	}
	r.calledNumbers = append(r.calledNumbers, n)
	r.calledSet[n] = true
	return n, true
}

// CalledNumbers returns a copy of the call history in draw order.
func (r *Room) CalledNumbers() []int {
	return append([]int(nil), r.calledNumbers...)
}

// RemovePlayer drops a player, promoting the earliest-joined remaining
// player to host if the host left. Removing an unknown player is a
// no-op. Returns the new host id (if any) and whether the room is now
// empty.
func (r *Room) RemovePlayer(playerID string) (removed bool, newHostID string, empty bool) {
	p := r.players[playerID]
	if p == nil {
		return false, "", len(r.players) == 0
	}
	delete(r.players, playerID)
	delete(r.pendingClaims, playerID)
	for i, id := range r.joinOrder {
		if id == playerID {
			r.joinOrder = append(r.joinOrder[:i], r.joinOrder[i+1:]...)
			break
		}
	}

	if len(r.players) == 0 {
		return true, "", true
	}
	if p.IsHost {
		next := r.players[r.joinOrder[0]]
		next.IsHost = true
		r.HostID = next.ID
		newHostID = next.ID
	}
	return true, newHostID, false
}

// Finish transitions the room to Finished with the given winner. The
// registry cancels the caller; once Finished no mark or claim is ever
// accepted again.
func (r *Room) Finish(winnerID string) {
	r.Status = StatusFinished
	r.WinnerID = winnerID
	r.FinishedAt = time.Now()
}

// Broadcast sends an event to every connected player in the room.
func (r *Room) Broadcast(ev Event) {
	for _, p := range r.players {
		if p.Conn != nil {
			p.Conn.Send(ev)
		}
	}
}

// Snapshot builds the wire view of the room. Players are listed in
// join order.
func (r *Room) Snapshot() RoomSnapshot {
	players := make([]PlayerSnapshot, 0, len(r.players))
	for _, id := range r.joinOrder {
		if p := r.players[id]; p != nil {
			players = append(players, p.Snapshot())
		}
	}
	return RoomSnapshot{
		ID:            r.ID,
		HostID:        r.HostID,
		Status:        string(r.Status),
		Players:       players,
		CalledNumbers: r.CalledNumbers(),
	}
}
