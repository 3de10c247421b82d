// Package negotiation implements the §4.G/§6 handshake protocol on top
// of net/http: the agent-side reverse-proxy mediator and the client-side
// http.RoundTripper. Both are thin adapters over the core synpatico
// package (§6.4's "collaborator contracts") — neither the fingerprinter,
// shape extractor, nor codec in the parent package imports net/http.
package negotiation

const (
	// HeaderAcceptID is the request-direction header (§6.1): "if you can
	// return this shape, optimize it."
	HeaderAcceptID = "X-Synpatico-Accept-ID"

	// HeaderStructureID echoes, response-direction, which shape a packet
	// body belongs to.
	HeaderStructureID = "X-Synpatico-ID"

	// HeaderAgent is non-empty on every response from a Synpatico-enabled
	// origin, letting the client discover capability.
	HeaderAgent = "X-Synpatico-Agent"
)

const (
	// ContentTypePacket identifies a §3.5 Packet body.
	ContentTypePacket = "application/synpatico-packet+json"

	// ContentTypeJSON identifies a standard JSON body.
	ContentTypeJSON = "application/json"

	// AgentFlagValue is what HeaderAgent is set to on every response this
	// agent emits — its exact text carries no protocol meaning (§6.1 only
	// requires it be non-empty), kept fixed so logs are greppable.
	AgentFlagValue = "synpatico/1"
)

// hopByHopHeaders are stripped before forwarding a request upstream or
// emitting a response downstream (§4.G EMIT: "Strip hop-by-hop headers").
var hopByHopHeaders = []string{
	"Content-Encoding",
	"Transfer-Encoding",
	"Connection",
}
