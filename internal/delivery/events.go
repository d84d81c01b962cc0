package delivery

// Event names carried in websocket envelopes, server->client unless noted.
const (
	// EventJoin is client->server: bind the connection to an identity.
	EventJoin = "join"
	// EventChatSend is client->server: store and fan out a chat message.
	EventChatSend = "chat-send"

	// EventMessageReceived notifies both parties' sessions of a new message.
	EventMessageReceived = "message-received"
	// EventConversationStale tells one viewer their cached conversation view
	// is out of date and should be re-fetched.
	EventConversationStale = "conversation-stale"

	// Call signaling events are relayed in both directions.
	EventCallOffer        = "call-offer"
	EventCallAnswer       = "call-answer"
	EventCallICECandidate = "call-ice-candidate"
	EventCallEnd          = "call-end"
)
