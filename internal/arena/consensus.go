package arena

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"wormhole-arena/internal/ids"
	"wormhole-arena/internal/proto"
)

// proposal is one in-flight pause/resume vote. The eligible set is captured
// once at creation and only ever shrinks; a client joining mid-vote is never
// asked to vote on it.
type proposal struct {
	id            string
	action        string
	requesterID   string
	requesterName string
	eligible      []string
	votes         map[string]string // "" = undecided
	expiresAt     time.Time
}

// HandlePauseRequest starts a vote, or applies the action straight away when
// the requester is alone in the room. Only one proposal may be active.
func (r *Room) HandlePauseRequest(sess *ClientSession, action string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sess == nil {
		return
	}
	if _, ok := r.sessions[sess.ID]; !ok {
		return
	}
	if r.proposal != nil {
		sendError(sess.Conn, "a vote is already in progress")
		return
	}
	if len(r.sessions) == 1 {
		// Solo session: no ceremony.
		r.applyPauseLocked(action)
		r.broadcastInfoLocked(pauseInfoMessage(action, sess.Name))
		r.broadcastStateLocked()
		return
	}

	p := &proposal{
		id:            ids.NewID(),
		action:        action,
		requesterID:   sess.ID,
		requesterName: sess.Name,
		eligible:      make([]string, 0, len(r.sessions)),
		votes:         make(map[string]string, len(r.sessions)),
		expiresAt:     r.now().Add(r.cfg.VoteExpiry),
	}
	for id := range r.sessions {
		p.eligible = append(p.eligible, id)
		p.votes[id] = ""
	}
	p.votes[sess.ID] = proto.VoteAccept
	r.proposal = p
	log.Info().Str("room_id", r.ID).Str("request_id", p.id).Str("action", action).Str("requester", sess.Name).Int("eligible", len(p.eligible)).Msg("pause proposal created")
	r.broadcastProposalLocked()
}

// HandlePauseVote records a vote on the active proposal. A stale request id
// or a voter outside the eligible set is an expected race and is ignored.
func (r *Room) HandlePauseVote(sess *ClientSession, requestID, vote string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.proposal
	if sess == nil || p == nil || p.id != requestID {
		return
	}
	if _, ok := p.votes[sess.ID]; !ok {
		return
	}
	p.votes[sess.ID] = vote
	r.broadcastProposalLocked()
	r.evaluateProposalLocked(r.now())
}

// evaluateProposalLocked runs after every vote and on every simulation tick
// while a proposal is active: any reject fails it, the eligible set is shrunk
// to the still-connected clients, expiry fails it, unanimous accept across
// the remaining set succeeds it.
func (r *Room) evaluateProposalLocked(now time.Time) {
	p := r.proposal
	if p == nil {
		return
	}
	for _, v := range p.votes {
		if v == proto.VoteReject {
			r.resolveProposalLocked(false, "rejected")
			return
		}
	}

	kept := p.eligible[:0]
	for _, id := range p.eligible {
		if _, ok := r.sessions[id]; ok {
			kept = append(kept, id)
		} else {
			delete(p.votes, id)
		}
	}
	p.eligible = kept
	if len(p.eligible) == 0 {
		r.resolveProposalLocked(false, "all voters left")
		return
	}

	if now.After(p.expiresAt) {
		r.resolveProposalLocked(false, "timeout")
		return
	}
	for _, id := range p.eligible {
		if p.votes[id] != proto.VoteAccept {
			return
		}
	}
	r.resolveProposalLocked(true, "")
}

// resolveProposalLocked broadcasts the terminal result and returns the room
// to idle. On success the action is applied and the new state goes out
// immediately instead of waiting for the next broadcast tick.
func (r *Room) resolveProposalLocked(accepted bool, reason string) {
	p := r.proposal
	if p == nil {
		return
	}
	r.proposal = nil
	log.Info().Str("room_id", r.ID).Str("request_id", p.id).Str("action", p.action).Bool("accepted", accepted).Str("reason", reason).Msg("pause proposal resolved")
	msg, err := json.Marshal(proto.PauseResult{
		Type:            proto.TypePauseResult,
		ProtocolVersion: proto.ProtocolVersion,
		RequestID:       p.id,
		Action:          p.action,
		Accepted:        accepted,
		Reason:          reason,
	})
	if err == nil {
		r.broadcastRawLocked(msg)
	}
	if accepted {
		r.applyPauseLocked(p.action)
		r.broadcastInfoLocked(pauseInfoMessage(p.action, p.requesterName))
		r.broadcastStateLocked()
	}
}

func (r *Room) broadcastProposalLocked() {
	p := r.proposal
	if p == nil {
		return
	}
	eligible := append([]string(nil), p.eligible...)
	votes := make(map[string]string, len(p.votes))
	for id, v := range p.votes {
		votes[id] = v
	}
	msg, err := json.Marshal(proto.PauseProposal{
		Type:            proto.TypePauseProposal,
		ProtocolVersion: proto.ProtocolVersion,
		RequestID:       p.id,
		Action:          p.action,
		RequesterID:     p.requesterID,
		RequesterName:   p.requesterName,
		Eligible:        eligible,
		Votes:           votes,
		ExpiresAtMS:     p.expiresAt.UnixMilli(),
	})
	if err != nil {
		return
	}
	r.broadcastRawLocked(msg)
}

func (r *Room) applyPauseLocked(action string) {
	r.world.Paused = action == proto.ActionPause
}

func pauseInfoMessage(action, name string) string {
	if action == proto.ActionPause {
		return "game paused by " + name
	}
	return "game resumed by " + name
}
