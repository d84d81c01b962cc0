package signaling

import (
	"encoding/json"
	"fmt"

	"github.com/pion/webrtc/v4"
)

// envelope is the wire frame for every websocket event in both directions.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func parseEnvelope(raw []byte) (envelope, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return envelope{}, err
	}
	if env.Event == "" {
		return envelope{}, fmt.Errorf("envelope missing event")
	}
	return env, nil
}

type joinPayload struct {
	Identity string `json:"identity"`
}

type chatSendPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
}

// sessionDescription is the wire form of an SDP offer or answer. The SDP
// body is relayed opaquely; only the type tag is checked.
type sessionDescription struct {
	Type string `json:"type"`
	SDP  string `json:"sdp"`
}

func (s sessionDescription) ToPion() (webrtc.SessionDescription, error) {
	var t webrtc.SDPType
	switch s.Type {
	case "offer":
		t = webrtc.SDPTypeOffer
	case "answer":
		t = webrtc.SDPTypeAnswer
	default:
		return webrtc.SessionDescription{}, fmt.Errorf("unsupported sdp type %q", s.Type)
	}
	return webrtc.SessionDescription{Type: t, SDP: s.SDP}, nil
}

func sdpFromPion(desc webrtc.SessionDescription) sessionDescription {
	return sessionDescription{
		Type: desc.Type.String(),
		SDP:  desc.SDP,
	}
}

// candidate is the wire form of a trickled ICE candidate, mirroring the
// browser's RTCIceCandidateInit.
type candidate struct {
	Candidate        string  `json:"candidate"`
	SDPMid           *string `json:"sdpMid,omitempty"`
	SDPMLineIndex    *uint16 `json:"sdpMLineIndex,omitempty"`
	UsernameFragment *string `json:"usernameFragment,omitempty"`
}

func (c candidate) ToPion() webrtc.ICECandidateInit {
	return webrtc.ICECandidateInit{
		Candidate:        c.Candidate,
		SDPMid:           c.SDPMid,
		SDPMLineIndex:    c.SDPMLineIndex,
		UsernameFragment: c.UsernameFragment,
	}
}

func candidateFromPion(init webrtc.ICECandidateInit) candidate {
	return candidate{
		Candidate:        init.Candidate,
		SDPMid:           init.SDPMid,
		SDPMLineIndex:    init.SDPMLineIndex,
		UsernameFragment: init.UsernameFragment,
	}
}

// Inbound call signaling payloads carry the sender and the addressee.

type callOfferPayload struct {
	From  string             `json:"from"`
	To    string             `json:"to"`
	Offer sessionDescription `json:"offer"`
	Video bool               `json:"video"`
}

type callAnswerPayload struct {
	From   string             `json:"from"`
	To     string             `json:"to"`
	Answer sessionDescription `json:"answer"`
}

type callCandidatePayload struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Candidate candidate `json:"candidate"`
}

type callEndPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Delivered forms drop the addressee: the recipient already knows who they
// are, they only need to learn who is calling.

type callOfferNotice struct {
	From  string             `json:"from"`
	Offer sessionDescription `json:"offer"`
	Video bool               `json:"video"`
}

type callAnswerNotice struct {
	From   string             `json:"from"`
	Answer sessionDescription `json:"answer"`
}

type callCandidateNotice struct {
	From      string    `json:"from"`
	Candidate candidate `json:"candidate"`
}

type callEndNotice struct {
	From string `json:"from"`
}
