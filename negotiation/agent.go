package negotiation

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/synpatico-dev/synpatico"
)

// AgentOptions configures an Agent — synpatico.Options' sibling for the
// negotiation layer, same "plain struct passed to a constructor" idiom.
type AgentOptions struct {
	// Upstream is where FETCH forwards requests. Required.
	Upstream *url.URL

	// Transport performs the actual upstream round trip. Defaults to
	// http.DefaultTransport.
	Transport http.RoundTripper

	Logger *slog.Logger
}

// Agent mediates HTTP requests per §4.G's agent state machine
// (RECV -> DECODE_REQ? -> FETCH -> LEARN -> ENCODE? -> EMIT). It is the
// "thin adapter" §6.4 describes: every structural decision is delegated
// to the synpatico.Engine and the core codec; Agent only moves bytes and
// headers.
type Agent struct {
	engine    *synpatico.Engine
	upstream  *url.URL
	transport http.RoundTripper
	logger    *slog.Logger
}

func NewAgent(engine *synpatico.Engine, opt AgentOptions) *Agent {
	transport := opt.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	logger := opt.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Agent{engine: engine, upstream: opt.Upstream, transport: transport, logger: logger}
}

func (a *Agent) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	endpoint := endpointKey(r)

	// RECV / DECODE_REQ?
	body, err := a.decodeRequestBody(r)
	if err != nil {
		if _, ok := err.(*synpatico.StateConflictError); ok {
			a.logger.Warn("synpatico: state conflict", "endpoint", endpoint, "err", err)
			writeJSONError(w, http.StatusConflict, "State Conflict")
			return
		}
		a.logger.Error("synpatico: request decode failed", "endpoint", endpoint, "err", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Proxy Error")
		return
	}

	// FETCH
	upstreamReq, err := a.buildUpstreamRequest(r, body)
	if err != nil {
		a.logger.Error("synpatico: building upstream request", "err", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Proxy Error")
		return
	}
	resp, err := a.transport.RoundTrip(upstreamReq)
	if err != nil {
		a.logger.Error("synpatico: upstream request failed", "endpoint", endpoint, "err", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Proxy Error")
		return
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		a.logger.Error("synpatico: reading upstream body", "endpoint", endpoint, "err", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Proxy Error")
		return
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// UpstreamFailure: passed through with original status, unoptimized.
		copyHeaders(w.Header(), resp.Header)
		w.WriteHeader(resp.StatusCode)
		w.Write(respBody)
		return
	}

	// LEARN + ENCODE?
	acceptID := StructureId(r.Header.Get(HeaderAcceptID))
	a.emit(w, endpoint, acceptID, resp.Header, respBody)
}

type StructureId = synpatico.StructureId

// decodeRequestBody implements RECV/DECODE_REQ?: a packet-typed inbound
// body is decoded against ShapeCache, or the agent responds 409 (§4.G.1).
// Any other content type passes through unchanged.
func (a *Agent) decodeRequestBody(r *http.Request) ([]byte, error) {
	if r.Body == nil || r.ContentLength == 0 {
		return nil, nil
	}
	if mediaType(r.Header.Get("Content-Type")) != ContentTypePacket {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, &synpatico.InternalProxyError{Err: err}
		}
		return raw, nil
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, &synpatico.InternalProxyError{Err: err}
	}
	var p synpatico.Packet
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, &synpatico.InternalProxyError{Err: err}
	}
	shape, ok := a.engine.Shape(p.StructureId)
	if !ok {
		return nil, &synpatico.StateConflictError{StructureId: p.StructureId}
	}
	v, err := synpatico.Decode(&p, shape)
	if err != nil {
		return nil, err
	}
	return synpatico.EncodeToJSON(v)
}

func (a *Agent) buildUpstreamRequest(r *http.Request, body []byte) (*http.Request, error) {
	u := *a.upstream
	u.Path = singleJoiningSlash(a.upstream.Path, r.URL.Path)
	u.RawQuery = r.URL.RawQuery

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(r.Context(), r.Method, u.String(), reader)
	if err != nil {
		return nil, err
	}
	copyHeaders(req.Header, r.Header)
	for _, h := range hopByHopHeaders {
		req.Header.Del(h)
	}
	if body != nil {
		req.Header.Set("Content-Type", ContentTypeJSON)
		req.ContentLength = int64(len(body))
	}
	return req, nil
}

// emit implements LEARN, ENCODE?, and EMIT (§4.G.3-5).
func (a *Agent) emit(w http.ResponseWriter, endpoint string, acceptID StructureId, upstreamHeaders http.Header, body []byte) {
	v, err := synpatico.DecodeFromJSON(body)
	if err != nil {
		// Non-JSON or malformed body: forward unchanged, no learning possible.
		a.forwardRaw(w, upstreamHeaders, body)
		return
	}

	if !v.IsObject() {
		// LEARN only fires for a JSON object (§4.G.3); arrays/primitives pass through.
		a.forwardRaw(w, upstreamHeaders, body)
		return
	}

	fp, _, err := a.engine.Learn(endpoint, v)
	if err != nil {
		a.logger.Warn("synpatico: failed to learn shape", "endpoint", endpoint, "err", err)
		a.forwardRaw(w, upstreamHeaders, body)
		return
	}
	id := fp.Id

	if acceptID == "" || acceptID != id {
		// Cache miss or drift (StructureMismatch, §7): forward raw JSON,
		// already relearned above under the fresh id.
		a.forwardRaw(w, upstreamHeaders, body)
		return
	}

	packet, smaller, err := synpatico.EncodeIfSmaller(v, id, fp, body)
	if err != nil || !smaller {
		a.forwardRaw(w, upstreamHeaders, body)
		return
	}

	raw, err := json.Marshal(packet)
	if err != nil {
		a.forwardRaw(w, upstreamHeaders, body)
		return
	}

	copyHeaders(w.Header(), upstreamHeaders)
	for _, h := range hopByHopHeaders {
		w.Header().Del(h)
	}
	w.Header().Set("Content-Type", ContentTypePacket)
	w.Header().Set(HeaderStructureID, string(id))
	w.Header().Set(HeaderAgent, AgentFlagValue)
	w.Header().Set("Content-Length", itoa(len(raw)))
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

func (a *Agent) forwardRaw(w http.ResponseWriter, upstreamHeaders http.Header, body []byte) {
	copyHeaders(w.Header(), upstreamHeaders)
	for _, h := range hopByHopHeaders {
		w.Header().Del(h)
	}
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.Header().Set(HeaderAgent, AgentFlagValue)
	w.Header().Set("Content-Length", itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
