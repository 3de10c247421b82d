package negotiation

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/synpatico-dev/synpatico"
)

// ClientOptions configures a Transport.
type ClientOptions struct {
	// Base performs the actual round trip. Defaults to http.DefaultTransport.
	Base http.RoundTripper

	Logger *slog.Logger
}

// Transport is the client-side half of §4.G: an http.RoundTripper that
// layers the negotiation headers over an inner transport, so callers use
// it exactly like any other http.Client.Transport. It is the "Client
// adapter" §6.4 describes — it never mutates synpatico.Engine's cache
// entries directly, only through Engine.Learn/Forget/ResetState.
type Transport struct {
	engine *synpatico.Engine
	base   http.RoundTripper
	logger *slog.Logger

	capableOrigins sync.Map // origin string -> bool
}

func NewTransport(engine *synpatico.Engine, opt ClientOptions) *Transport {
	base := opt.Base
	if base == nil {
		base = http.DefaultTransport
	}
	logger := opt.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Transport{engine: engine, base: base, logger: logger}
}

// ClearCache resets every structure this Transport has learned — the
// §6.4 "Client adapter ... consumes clearCache()" contract.
func (t *Transport) ClearCache() {
	t.engine.ResetState()
	t.capableOrigins = sync.Map{}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	endpoint := endpointKey(req)
	origin := originOf(req)

	negotiated := false
	if t.isCapable(origin) {
		if id, ok := t.engine.AcceptedStructureId(endpoint); ok {
			req = req.Clone(req.Context())
			req.Header.Set(HeaderAcceptID, string(id))
			negotiated = true
		}
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusConflict && negotiated {
		// §4.G.3: retry once without the negotiation header, discard
		// learned state for this endpoint, and return that response.
		resp.Body.Close()
		t.engine.Forget(endpoint)

		retry := req.Clone(req.Context())
		retry.Header.Del(HeaderAcceptID)
		return t.base.RoundTrip(retry)
	}

	if resp.Header.Get(HeaderAgent) == "" {
		// §4.G.4: not a Synpatico-enabled origin; pass through, never learn.
		return resp, nil
	}
	t.markCapable(origin)

	return t.decodeOrLearn(resp, endpoint)
}

func (t *Transport) decodeOrLearn(resp *http.Response, endpoint string) (*http.Response, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	switch mediaType(resp.Header.Get("Content-Type")) {
	case ContentTypePacket:
		var p synpatico.Packet
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, err
		}
		shape, ok := t.engine.Shape(p.StructureId)
		if !ok {
			return nil, &synpatico.UnknownStructureError{StructureId: p.StructureId}
		}
		v, err := synpatico.Decode(&p, shape)
		if err != nil {
			return nil, err
		}
		raw, err := synpatico.EncodeToJSON(v)
		if err != nil {
			return nil, err
		}
		return rewriteBody(resp, raw, ContentTypeJSON), nil

	case ContentTypeJSON:
		v, err := synpatico.DecodeFromJSON(body)
		if err == nil && v.IsObject() {
			if _, _, lerr := t.engine.Learn(endpoint, v); lerr != nil {
				t.logger.Warn("synpatico: failed to learn shape", "err", lerr, "endpoint", endpoint)
			}
		}
		return rewriteBody(resp, body, ContentTypeJSON), nil

	default:
		return rewriteBody(resp, body, resp.Header.Get("Content-Type")), nil
	}
}

func rewriteBody(resp *http.Response, body []byte, contentType string) *http.Response {
	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	resp.Header.Set("Content-Type", contentType)
	resp.Header.Set("Content-Length", itoa(len(body)))
	return resp
}

func (t *Transport) isCapable(origin string) bool {
	v, ok := t.capableOrigins.Load(origin)
	return ok && v.(bool)
}

func (t *Transport) markCapable(origin string) {
	t.capableOrigins.Store(origin, true)
}
