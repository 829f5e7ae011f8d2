package arena

import (
	"testing"
	"time"

	"wormhole-arena/internal/proto"
)

func TestSoloPauseAppliesImmediately(t *testing.T) {
	g, _ := newTestRegistry(t)
	room, _ := g.ResolveOrCreate("ABCD", "")
	sess, conn := joinTestClient(t, room, "x")

	room.HandlePauseRequest(sess, proto.ActionPause)

	if room.proposal != nil {
		t.Fatal("solo pause created a proposal")
	}
	if !room.world.Paused {
		t.Fatal("world not paused")
	}
	if conn.countOfType(t, proto.TypePauseProposal) != 0 {
		t.Fatal("pause_proposal sent for a solo session")
	}
	if conn.lastOfType(t, proto.TypeInfo) == nil {
		t.Fatal("no info broadcast for solo pause")
	}

	room.HandlePauseRequest(sess, proto.ActionResume)
	if room.world.Paused {
		t.Fatal("world still paused after solo resume")
	}
}

func TestUnanimousAcceptPausesAndBroadcastsState(t *testing.T) {
	g, _ := newTestRegistry(t)
	room, _ := g.ResolveOrCreate("ABCD", "")
	x, connX := joinTestClient(t, room, "x")
	y, connY := joinTestClient(t, room, "y")

	room.HandlePauseRequest(x, proto.ActionPause)

	prop := connY.lastOfType(t, proto.TypePauseProposal)
	if prop == nil {
		t.Fatal("proposal not broadcast to other member")
	}
	if eligible := prop["eligible"].([]any); len(eligible) != 2 {
		t.Fatalf("eligible = %d voters, want 2", len(eligible))
	}
	votes := prop["votes"].(map[string]any)
	if votes[x.ID] != proto.VoteAccept {
		t.Fatalf("requester vote = %v, want pre-filled accept", votes[x.ID])
	}
	if votes[y.ID] != "" {
		t.Fatalf("other vote = %v, want undecided", votes[y.ID])
	}

	reqID := prop["request_id"].(string)
	room.HandlePauseVote(y, reqID, proto.VoteAccept)

	for _, conn := range []*fakeConn{connX, connY} {
		res := conn.lastOfType(t, proto.TypePauseResult)
		if res == nil {
			t.Fatal("no pause_result broadcast")
		}
		if res["accepted"] != true {
			t.Fatalf("accepted = %v, want true", res["accepted"])
		}
	}
	if !room.world.Paused {
		t.Fatal("world not paused after unanimous accept")
	}

	// The new state goes out right after the result, not on the next
	// broadcast tick.
	msgs := connY.decoded(t)
	resultIdx, stateIdx := -1, -1
	for i, m := range msgs {
		if m["type"] == proto.TypePauseResult {
			resultIdx = i
		}
		if m["type"] == proto.TypeState && m["is_paused"] == true && stateIdx == -1 {
			stateIdx = i
		}
	}
	if resultIdx == -1 || stateIdx == -1 || stateIdx < resultIdx {
		t.Fatalf("expected paused state broadcast after pause_result, got result=%d state=%d", resultIdx, stateIdx)
	}
	if room.proposal != nil {
		t.Fatal("proposal not cleared after resolution")
	}
}

func TestSingleRejectFailsImmediately(t *testing.T) {
	g, _ := newTestRegistry(t)
	room, _ := g.ResolveOrCreate("ABCD", "")
	x, _ := joinTestClient(t, room, "x")
	y, _ := joinTestClient(t, room, "y")
	z, connZ := joinTestClient(t, room, "z")

	room.HandlePauseRequest(x, proto.ActionPause)
	reqID := room.proposal.id
	room.HandlePauseVote(z, reqID, proto.VoteAccept)
	room.HandlePauseVote(y, reqID, proto.VoteReject)

	res := connZ.lastOfType(t, proto.TypePauseResult)
	if res == nil {
		t.Fatal("no pause_result after reject")
	}
	if res["accepted"] != false || res["reason"] != "rejected" {
		t.Fatalf("result = %+v, want accepted=false reason=rejected", res)
	}
	if room.world.Paused {
		t.Fatal("world paused despite reject")
	}
	if room.proposal != nil {
		t.Fatal("proposal still active after reject")
	}
}

func TestDisconnectShrinksEligibleAndCanResolve(t *testing.T) {
	g, _ := newTestRegistry(t)
	room, _ := g.ResolveOrCreate("ABCD", "")
	x, _ := joinTestClient(t, room, "x")
	y, _ := joinTestClient(t, room, "y")
	z, connZ := joinTestClient(t, room, "z")

	room.HandlePauseRequest(x, proto.ActionPause)
	reqID := room.proposal.id

	room.Leave(y)
	if room.proposal == nil {
		t.Fatal("proposal resolved by a single disconnect with votes outstanding")
	}
	if got := len(room.proposal.eligible); got != 2 {
		t.Fatalf("eligible after disconnect = %d, want 2", got)
	}

	room.HandlePauseVote(z, reqID, proto.VoteAccept)

	res := connZ.lastOfType(t, proto.TypePauseResult)
	if res == nil || res["accepted"] != true {
		t.Fatalf("result = %+v, want accepted=true without the disconnected vote", res)
	}
	if !room.world.Paused {
		t.Fatal("world not paused")
	}
}

func TestDisconnectOfLastUndecidedResolves(t *testing.T) {
	g, _ := newTestRegistry(t)
	room, _ := g.ResolveOrCreate("ABCD", "")
	x, connX := joinTestClient(t, room, "x")
	y, _ := joinTestClient(t, room, "y")

	room.HandlePauseRequest(x, proto.ActionPause)
	room.Leave(y)

	res := connX.lastOfType(t, proto.TypePauseResult)
	if res == nil || res["accepted"] != true {
		t.Fatalf("result = %+v, want accepted=true once only accepters remain", res)
	}
	if !room.world.Paused {
		t.Fatal("world not paused")
	}
}

func TestProposalExpiresOnTick(t *testing.T) {
	g, clock := newTestRegistry(t)
	room, _ := g.ResolveOrCreate("ABCD", "")
	x, connX := joinTestClient(t, room, "x")
	joinTestClient(t, room, "y")

	room.HandlePauseRequest(x, proto.ActionPause)
	clock.Advance(g.cfg.VoteExpiry + time.Second)
	room.Tick(clock.Now())

	res := connX.lastOfType(t, proto.TypePauseResult)
	if res == nil {
		t.Fatal("no pause_result after expiry")
	}
	if res["accepted"] != false || res["reason"] != "timeout" {
		t.Fatalf("result = %+v, want accepted=false reason=timeout", res)
	}
	if room.world.Paused {
		t.Fatal("world paused despite timeout")
	}
}

func TestSecondRequestWhileVotingRefused(t *testing.T) {
	g, _ := newTestRegistry(t)
	room, _ := g.ResolveOrCreate("ABCD", "")
	x, _ := joinTestClient(t, room, "x")
	y, connY := joinTestClient(t, room, "y")

	room.HandlePauseRequest(x, proto.ActionPause)
	first := room.proposal.id
	room.HandlePauseRequest(y, proto.ActionResume)

	if room.proposal == nil || room.proposal.id != first {
		t.Fatal("second request replaced the active proposal")
	}
	if connY.lastOfType(t, proto.TypeError) == nil {
		t.Fatal("second requester not answered with an error")
	}
}

func TestVoteOnStaleRequestIgnored(t *testing.T) {
	g, _ := newTestRegistry(t)
	room, _ := g.ResolveOrCreate("ABCD", "")
	x, _ := joinTestClient(t, room, "x")
	y, _ := joinTestClient(t, room, "y")

	room.HandlePauseRequest(x, proto.ActionPause)
	room.HandlePauseVote(y, "no-such-request", proto.VoteReject)
	if room.proposal == nil {
		t.Fatal("stale vote resolved the active proposal")
	}

	// A client who joined mid-vote is not eligible.
	late, _ := joinTestClient(t, room, "late")
	room.HandlePauseVote(late, room.proposal.id, proto.VoteReject)
	if room.proposal == nil {
		t.Fatal("ineligible vote resolved the proposal")
	}
}

func TestEligibleSetNeverGrows(t *testing.T) {
	g, _ := newTestRegistry(t)
	room, _ := g.ResolveOrCreate("ABCD", "")
	x, _ := joinTestClient(t, room, "x")
	joinTestClient(t, room, "y")

	room.HandlePauseRequest(x, proto.ActionPause)
	before := len(room.proposal.eligible)

	joinTestClient(t, room, "late")
	room.Tick(g.now())

	if room.proposal == nil {
		t.Fatal("proposal resolved unexpectedly")
	}
	if got := len(room.proposal.eligible); got != before {
		t.Fatalf("eligible grew from %d to %d after a join", before, got)
	}
}

func TestAllVotersLeavingDestroysProposal(t *testing.T) {
	g, _ := newTestRegistry(t)
	room, _ := g.ResolveOrCreate("ABCD", "")
	x, _ := joinTestClient(t, room, "x")
	y, _ := joinTestClient(t, room, "y")

	room.HandlePauseRequest(x, proto.ActionPause)
	_, connLate := joinTestClient(t, room, "late")
	room.Leave(x)
	room.Leave(y)

	if room.proposal != nil {
		t.Fatal("proposal survives with zero eligible voters")
	}
	res := connLate.lastOfType(t, proto.TypePauseResult)
	if res == nil || res["accepted"] != false {
		t.Fatalf("result = %+v, want accepted=false terminal broadcast", res)
	}
	if room.world.Paused {
		t.Fatal("world paused with no unanimous accept")
	}
}
