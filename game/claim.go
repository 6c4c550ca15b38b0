package game

import (
	"time"

	"github.com/GenanawMekete/final-bingo/utils/logger"
)

// Arbiter implements the two-phase claim protocol. A client saying
// "I won" is not trusted by itself: File checks the pattern against
// the server-side marked cells, and Verify (or the auto policy)
// finalizes. Like every room mutation, Arbiter methods run on the
// registry's task loop.
type Arbiter struct {
	policy  ClaimPolicy
	award   float64
	ledger  Ledger
	archive Archive
}

func NewArbiter(policy ClaimPolicy, award float64, ledger Ledger, archive Archive) *Arbiter {
	return &Arbiter{
		policy:  policy,
		award:   award,
		ledger:  ledger,
		archive: archive,
	}
}

// File validates and stages a claim. Under ServerAutoVerification a
// valid claim finalizes the room immediately; under manual policy it
// waits for the host. finalized reports which happened.
func (a *Arbiter) File(r *Room, playerID string) (rec *ClaimRecord, finalized bool, err error) {
	if r.Status != StatusActive {
		return nil, false, stateErrorf("room %s is not active", r.ID)
	}
	p := r.players[playerID]
	if p == nil {
		return nil, false, notFoundErrorf("player %s not in room %s", playerID, r.ID)
	}
	if p.HasClaimedBingo {
		return nil, false, stateErrorf("player %s already has a claim outstanding", playerID)
	}

	result := Evaluate(p.MarkedCells)
	if !result.Won {
		return nil, false, validationErrorf("no winning pattern on player %s's card", playerID)
	}

	snapshot := make(map[int]bool, len(p.MarkedCells))
	for idx := range p.MarkedCells {
		snapshot[idx] = true
	}
	rec = &ClaimRecord{
		PlayerID:    playerID,
		FiledAt:     time.Now(),
		MarkedCells: snapshot,
		Patterns:    result.Patterns,
	}
	r.pendingClaims[playerID] = rec
	p.HasClaimedBingo = true

	logger.Infof("[Room %s] player %s filed a bingo claim (%d patterns)",
		r.ID, playerID, len(rec.Patterns))
	r.Broadcast(BingoClaimedEvent(playerID, rec.FiledAt))

	if a.policy == ServerAutoVerification {
		a.finalize(r, rec)
		return rec, true, nil
	}
	return rec, false, nil
}

// Verify resolves an outstanding claim. Host only. Accepting
// finalizes the room; rejecting discards the record and lets the
// player claim again later.
func (a *Arbiter) Verify(r *Room, requesterID, targetPlayerID string, accept bool) (*ClaimRecord, error) {
	// A Finished room already has its one winner; claims left pending
	// by other players must never finalize again or be mutated.
	if r.Status != StatusActive {
		return nil, stateErrorf("room %s is not active", r.ID)
	}
	if requesterID != r.HostID {
		return nil, authorizationErrorf("only the host can verify a claim")
	}
	rec := r.pendingClaims[targetPlayerID]
	if rec == nil {
		return nil, notFoundErrorf("no outstanding claim for player %s", targetPlayerID)
	}

	if accept {
		a.finalize(r, rec)
		return rec, nil
	}

	delete(r.pendingClaims, targetPlayerID)
	if p := r.players[targetPlayerID]; p != nil {
		p.HasClaimedBingo = false
	}
	logger.Infof("[Room %s] host rejected claim by player %s", r.ID, targetPlayerID)
	r.Broadcast(BingoRejectedEvent(targetPlayerID, "claim rejected by host"))
	return rec, nil
}

// finalize ends the room: Finished status, winner set, caller
// cancelled, verified event broadcast, then the award and archive
// writes go out asynchronously so collaborator latency never stalls
// the session loop.
func (a *Arbiter) finalize(r *Room, rec *ClaimRecord) {
	r.Finish(rec.PlayerID)
	delete(r.pendingClaims, rec.PlayerID)
	if r.caller != nil {
		r.caller.Cancel()
	}

	logger.Infof("[Room %s] player %s wins", r.ID, rec.PlayerID)
	r.Broadcast(BingoVerifiedEvent(rec.PlayerID, rec.Patterns))

	winnerName := ""
	if p := r.players[rec.PlayerID]; p != nil {
		winnerName = p.DisplayName
	}
	result := GameResult{
		RoomID:        r.ID,
		WinnerID:      rec.PlayerID,
		WinnerName:    winnerName,
		CalledNumbers: r.CalledNumbers(),
		Patterns:      rec.Patterns,
		StartedAt:     r.StartedAt,
		FinishedAt:    r.FinishedAt,
	}

	ledger, archive, award := a.ledger, a.archive, a.award
	go func() {
		if ledger != nil {
			if err := ledger.Credit(result.WinnerID, award, "bingo win "+result.RoomID); err != nil {
				logger.Errorf("[Room %s] failed to credit winner %s: %v", result.RoomID, result.WinnerID, err)
			}
		}
		if archive != nil {
			if err := archive.SaveResult(result); err != nil {
				logger.Errorf("[Room %s] failed to archive result: %v", result.RoomID, err)
			}
		}
	}()
}
