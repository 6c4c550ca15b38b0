package services

import (
	"github.com/GenanawMekete/final-bingo/game"
	"github.com/GenanawMekete/final-bingo/utils/logger"
)

// previewValues is how many values per column the pool browse list
// shows for each card.
const previewValues = 5

// Gateway translates decoded session events into registry, room and
// arbiter calls and routes the resulting events back out. Handlers
// run as tasks on the registry's loop; an error is only ever sent to
// the connection that caused it.
type Gateway struct {
	registry *game.Registry
}

func NewGateway(registry *game.Registry) *Gateway {
	return &Gateway{registry: registry}
}

// Dispatch schedules one inbound event onto the session loop.
func (g *Gateway) Dispatch(c *Client, ev interface{}) {
	g.registry.Do(func() {
		g.handle(c, ev)
	})
}

// Disconnected is called by the read pump when the socket drops. The
// leave is idempotent, so a close racing an explicit leave-room is
// harmless.
func (g *Gateway) Disconnected(c *Client) {
	g.registry.Do(func() {
		g.handleLeave(c)
		c.Close()
	})
}

func (g *Gateway) handle(c *Client, ev interface{}) {
	var err error
	switch e := ev.(type) {
	case game.CreateRoom:
		err = g.handleCreate(c, e)
	case game.JoinRoom:
		err = g.handleJoin(c, e)
	case game.SelectCard:
		err = g.handleSelectCard(c, e)
	case game.StartRoom:
		err = g.handleStart(c, e)
	case game.MarkCell:
		err = g.handleMarkCell(c, e)
	case game.ClaimBingo:
		err = g.handleClaim(c, e)
	case game.VerifyBingo:
		err = g.handleVerify(c, e)
	case game.LeaveRoom:
		g.handleLeave(c)
	default:
		logger.Warnf("[Gateway] unhandled event %T", ev)
	}
	if err != nil {
		c.Send(game.ErrorEvent(err))
	}
}

// identity resolves the acting player id: the payload id must match
// the connection's authenticated id when both are present.
func (g *Gateway) identity(c *Client, payloadID string) (string, error) {
	if payloadID == "" {
		return c.playerID, nil
	}
	if c.playerID != "" && payloadID != c.playerID {
		return "", game.NewError(game.KindAuthorization, "cannot act as another player")
	}
	return payloadID, nil
}

// boundRoom checks the connection's ambient room binding against the
// payload's room id and returns the live room.
func (g *Gateway) boundRoom(c *Client, roomID string) (*game.Room, error) {
	if c.roomID == "" {
		return nil, game.NewError(game.KindState, "not in a room")
	}
	if roomID != "" && roomID != c.roomID {
		return nil, game.NewError(game.KindValidation, "room id does not match this connection")
	}
	return g.registry.Room(c.roomID)
}

func (g *Gateway) handleCreate(c *Client, e game.CreateRoom) error {
	if c.roomID != "" {
		return game.NewError(game.KindState, "already in a room")
	}
	hostID, err := g.identity(c, e.HostID)
	if err != nil {
		return err
	}
	if hostID == "" {
		return game.NewError(game.KindValidation, "hostId is required")
	}
	name := e.HostDisplayName
	if name == "" {
		name = c.displayName
	}

	r := g.registry.CreateRoom(hostID, name, c)
	c.playerID = hostID
	c.roomID = r.ID

	c.Send(game.RoomCreatedEvent(r.ID, hostID))
	c.Send(game.CardPoolEvent(r.PoolPreviews(previewValues)))
	return nil
}

func (g *Gateway) handleJoin(c *Client, e game.JoinRoom) error {
	if c.roomID != "" {
		return game.NewError(game.KindState, "already in a room")
	}
	playerID, err := g.identity(c, e.PlayerID)
	if err != nil {
		return err
	}
	if playerID == "" {
		return game.NewError(game.KindValidation, "playerId is required")
	}
	r, err := g.registry.Room(e.RoomID)
	if err != nil {
		return err
	}

	// A second connection for a player already in the room replaces
	// the first instead of joining twice.
	if existing := r.Player(playerID); existing != nil {
		if old, ok := existing.Conn.(*Client); ok && old != c {
			old.roomID = ""
			old.Close()
		}
		existing.Conn = c
		c.playerID = playerID
		c.roomID = r.ID
		c.Send(game.RoomJoinedEvent(r.Snapshot(), existing.Snapshot()))
		c.Send(game.CardPoolEvent(r.PoolPreviews(previewValues)))
		return nil
	}

	name := e.DisplayName
	if name == "" {
		name = c.displayName
	}
	p, err := r.Join(playerID, name, c)
	if err != nil {
		return err
	}
	c.playerID = playerID
	c.roomID = r.ID

	c.Send(game.RoomJoinedEvent(r.Snapshot(), p.Snapshot()))
	c.Send(game.CardPoolEvent(r.PoolPreviews(previewValues)))
	r.Broadcast(game.PlayerJoinedEvent(p.Snapshot()))
	return nil
}

func (g *Gateway) handleSelectCard(c *Client, e game.SelectCard) error {
	r, err := g.boundRoom(c, e.RoomID)
	if err != nil {
		return err
	}
	card, allReady, err := r.SelectCard(c.playerID, e.PoolIndex)
	if err != nil {
		return err
	}
	c.Send(game.CardSelectedEvent(e.PoolIndex, card))
	r.Broadcast(game.PlayerCardSelectedEvent(c.playerID))
	if allReady {
		r.Broadcast(game.AllPlayersReadyEvent())
	}
	return nil
}

func (g *Gateway) handleStart(c *Client, e game.StartRoom) error {
	if _, err := g.boundRoom(c, e.RoomID); err != nil {
		return err
	}
	r, err := g.registry.StartRoom(c.roomID, c.playerID)
	if err != nil {
		return err
	}
	r.Broadcast(game.RoomStartedEvent(r.StartedAt))
	return nil
}

func (g *Gateway) handleMarkCell(c *Client, e game.MarkCell) error {
	r, err := g.boundRoom(c, e.RoomID)
	if err != nil {
		return err
	}
	count, err := r.MarkCell(c.playerID, e.CellIndex)
	if err != nil {
		return err
	}
	c.Send(game.CellMarkedEvent(e.CellIndex, count))
	r.Broadcast(game.PlayerMarkedCellEvent(c.playerID, e.CellIndex))
	return nil
}

func (g *Gateway) handleClaim(c *Client, e game.ClaimBingo) error {
	r, err := g.boundRoom(c, e.RoomID)
	if err != nil {
		return err
	}
	// The arbiter broadcasts the claim/verified events itself.
	_, _, err = g.registry.Arbiter().File(r, c.playerID)
	return err
}

func (g *Gateway) handleVerify(c *Client, e game.VerifyBingo) error {
	r, err := g.boundRoom(c, e.RoomID)
	if err != nil {
		return err
	}
	_, err = g.registry.Arbiter().Verify(r, c.playerID, e.TargetPlayerID, e.Accept)
	return err
}

func (g *Gateway) handleLeave(c *Client) {
	if c.roomID == "" {
		return
	}
	roomID, playerID := c.roomID, c.playerID
	c.roomID = ""

	removed, newHostID, roomDeleted := g.registry.Leave(roomID, playerID)
	if !removed || roomDeleted {
		return
	}
	r, err := g.registry.Room(roomID)
	if err != nil {
		return
	}
	r.Broadcast(game.PlayerLeftEvent(playerID))
	if newHostID != "" {
		r.Broadcast(game.NewHostEvent(newHostID))
	}
}
