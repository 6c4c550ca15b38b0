package game

import (
	"encoding/json"
	"time"
)

// Inbound session events. Each wire message is an envelope with a
// "type" tag plus the payload fields of exactly one of the structs
// below, so a malformed payload fails at decode time instead of deep
// inside a handler.

type CreateRoom struct {
	HostID          string `json:"hostId"`
	HostDisplayName string `json:"hostDisplayName"`
}

type JoinRoom struct {
	RoomID      string `json:"roomId"`
	PlayerID    string `json:"playerId"`
	DisplayName string `json:"displayName"`
}

type SelectCard struct {
	RoomID    string `json:"roomId"`
	PoolIndex int    `json:"poolIndex"`
}

type StartRoom struct {
	RoomID string `json:"roomId"`
}

type MarkCell struct {
	RoomID    string `json:"roomId"`
	CellIndex int    `json:"cellIndex"`
}

type ClaimBingo struct {
	RoomID string `json:"roomId"`
}

type VerifyBingo struct {
	RoomID         string `json:"roomId"`
	TargetPlayerID string `json:"targetPlayerId"`
	Accept         bool   `json:"accept"`
}

// LeaveRoom carries no fields; the connection's ambient room/player
// binding identifies who is leaving.
type LeaveRoom struct{}

type inboundEnvelope struct {
	Type string `json:"type"`
}

// DecodeInbound parses a wire message into one of the typed inbound
// events above.
func DecodeInbound(raw []byte) (interface{}, error) {
	var env inboundEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, validationErrorf("malformed message: %v", err)
	}

	var (
		ev  interface{}
		err error
	)
	switch env.Type {
	case "create-room":
		var e CreateRoom
		err = json.Unmarshal(raw, &e)
		ev = e
	case "join-room":
		var e JoinRoom
		err = json.Unmarshal(raw, &e)
		ev = e
	case "select-card":
		var e SelectCard
		err = json.Unmarshal(raw, &e)
		ev = e
	case "start-room":
		var e StartRoom
		err = json.Unmarshal(raw, &e)
		ev = e
	case "mark-cell":
		var e MarkCell
		err = json.Unmarshal(raw, &e)
		ev = e
	case "claim-bingo":
		var e ClaimBingo
		err = json.Unmarshal(raw, &e)
		ev = e
	case "verify-bingo":
		var e VerifyBingo
		err = json.Unmarshal(raw, &e)
		ev = e
	case "leave-room":
		ev = LeaveRoom{}
	default:
		return nil, validationErrorf("unknown event type %q", env.Type)
	}
	if err != nil {
		return nil, validationErrorf("malformed %s payload: %v", env.Type, err)
	}
	return ev, nil
}

// Outbound events. The envelope is marshalled once per broadcast and
// written to every recipient's send channel.

type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

type CardPreview struct {
	PoolIndex int              `json:"poolIndex"`
	Columns   map[string][]int `json:"columns"`
}

type PlayerSnapshot struct {
	ID              string `json:"id"`
	DisplayName     string `json:"displayName"`
	IsHost          bool   `json:"isHost"`
	HasSelectedCard bool   `json:"hasSelectedCard"`
	HasClaimedBingo bool   `json:"hasClaimedBingo"`
}

type RoomSnapshot struct {
	ID            string           `json:"id"`
	HostID        string           `json:"hostId"`
	Status        string           `json:"status"`
	Players       []PlayerSnapshot `json:"players"`
	CalledNumbers []int            `json:"calledNumbers"`
}

func RoomCreatedEvent(roomID, hostID string) Event {
	return Event{Type: "room-created", Data: map[string]string{
		"roomId": roomID,
		"hostId": hostID,
	}}
}

func CardPoolEvent(previews []CardPreview) Event {
	return Event{Type: "card-pool", Data: map[string]interface{}{
		"cards": previews,
	}}
}

func RoomJoinedEvent(room RoomSnapshot, you PlayerSnapshot) Event {
	return Event{Type: "room-joined", Data: map[string]interface{}{
		"room": room,
		"you":  you,
	}}
}

func PlayerJoinedEvent(player PlayerSnapshot) Event {
	return Event{Type: "player-joined", Data: player}
}

func CardSelectedEvent(poolIndex int, card Card) Event {
	return Event{Type: "card-selected", Data: map[string]interface{}{
		"poolIndex": poolIndex,
		"card":      card,
	}}
}

func PlayerCardSelectedEvent(playerID string) Event {
	return Event{Type: "player-card-selected", Data: map[string]string{
		"playerId": playerID,
	}}
}

func AllPlayersReadyEvent() Event {
	return Event{Type: "all-players-ready"}
}

func RoomStartedEvent(startedAt time.Time) Event {
	return Event{Type: "room-started", Data: map[string]interface{}{
		"startedAt": startedAt,
	}}
}

func NumberCalledEvent(value int, history []int) Event {
	return Event{Type: "number-called", Data: map[string]interface{}{
		"value":   value,
		"history": history,
	}}
}

func CellMarkedEvent(cellIndex, markedCount int) Event {
	return Event{Type: "cell-marked", Data: map[string]int{
		"cellIndex":   cellIndex,
		"markedCount": markedCount,
	}}
}

func PlayerMarkedCellEvent(playerID string, cellIndex int) Event {
	return Event{Type: "player-marked-cell", Data: map[string]interface{}{
		"playerId":  playerID,
		"cellIndex": cellIndex,
	}}
}

func BingoClaimedEvent(playerID string, filedAt time.Time) Event {
	return Event{Type: "bingo-claimed", Data: map[string]interface{}{
		"playerId": playerID,
		"filedAt":  filedAt,
	}}
}

func BingoVerifiedEvent(winnerID string, patterns []MatchedPattern) Event {
	return Event{Type: "bingo-verified", Data: map[string]interface{}{
		"winnerId": winnerID,
		"patterns": patterns,
	}}
}

func BingoRejectedEvent(playerID, reason string) Event {
	return Event{Type: "bingo-verified", Data: map[string]interface{}{
		"winnerId": nil,
		"playerId": playerID,
		"reason":   reason,
	}}
}

func NewHostEvent(playerID string) Event {
	return Event{Type: "new-host", Data: map[string]string{
		"playerId": playerID,
	}}
}

func PlayerLeftEvent(playerID string) Event {
	return Event{Type: "player-left", Data: map[string]string{
		"playerId": playerID,
	}}
}

func ErrorEvent(err error) Event {
	kind := "unknown"
	if ge, ok := err.(*Error); ok {
		kind = ge.Kind.String()
	}
	return Event{Type: "error", Data: map[string]string{
		"kind":    kind,
		"message": err.Error(),
	}}
}
