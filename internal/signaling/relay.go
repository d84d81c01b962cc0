package signaling

import (
	"io"
	"log/slog"

	"github.com/pion/webrtc/v4"

	"github.com/reelchat/reelchat/internal/delivery"
)

// Relay is the stateless call-signaling pass-through. It keeps no per-call
// session object and makes no attempt to enforce the offer/answer state
// machine; it only forwards identity-addressed events.
type Relay struct {
	router *delivery.Router
	log    *slog.Logger
}

func NewRelay(router *delivery.Router, logger *slog.Logger) *Relay {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Relay{router: router, log: logger}
}

// Offer forwards a call offer. The SDP is validated for wire shape (it must
// carry the "offer" type tag) but its contents are never interpreted. The
// returned count is 0 when the callee is offline; there is no timeout or
// retry, the caller owns that UX.
func (r *Relay) Offer(p callOfferPayload) int {
	if p.From == "" || p.To == "" {
		return 0
	}
	desc, err := p.Offer.ToPion()
	if err != nil || desc.Type != webrtc.SDPTypeOffer {
		r.log.Debug("dropping malformed call offer", "from", p.From, "to", p.To, "err", err)
		return 0
	}
	return r.router.Deliver(p.To, delivery.EventCallOffer, callOfferNotice{
		From:  p.From,
		Offer: sdpFromPion(desc),
		Video: p.Video,
	})
}

// Answer forwards a call answer back to the offering side.
func (r *Relay) Answer(p callAnswerPayload) int {
	if p.From == "" || p.To == "" {
		return 0
	}
	desc, err := p.Answer.ToPion()
	if err != nil || desc.Type != webrtc.SDPTypeAnswer {
		r.log.Debug("dropping malformed call answer", "from", p.From, "to", p.To, "err", err)
		return 0
	}
	return r.router.Deliver(p.To, delivery.EventCallAnswer, callAnswerNotice{
		From:   p.From,
		Answer: sdpFromPion(desc),
	})
}

// ICECandidate forwards a trickled candidate. Candidates are opaque: an
// empty candidate string is a legal end-of-candidates marker and is relayed
// like any other.
func (r *Relay) ICECandidate(p callCandidatePayload) int {
	if p.From == "" || p.To == "" {
		return 0
	}
	return r.router.Deliver(p.To, delivery.EventCallICECandidate, callCandidateNotice{
		From:      p.From,
		Candidate: candidateFromPion(p.Candidate.ToPion()),
	})
}

// End forwards a hang-up.
func (r *Relay) End(p callEndPayload) int {
	if p.From == "" || p.To == "" {
		return 0
	}
	return r.router.Deliver(p.To, delivery.EventCallEnd, callEndNotice{From: p.From})
}
