// Command synpatico-agent runs the reverse-proxy mediator (§4.G's agent
// state machine) in front of a single upstream origin. Configuration is
// stdlib flag, the same convention edb's example programs use — no
// third-party CLI framework appears anywhere in the retrieval pack, so
// none is introduced here (see SPEC_FULL.md's ambient stack note).
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"

	"github.com/synpatico-dev/synpatico"
	"github.com/synpatico-dev/synpatico/internal/snapshot"
	"github.com/synpatico-dev/synpatico/negotiation"
)

// debugStatsHandler serves the engine's current learned-structure state as
// msgpack (snapshot.Take/Encode) — the admin export SPEC_FULL.md's DOMAIN
// STACK section describes, never read back in by anything in this module.
func debugStatsHandler(engine *synpatico.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := snapshot.Take(engine)
		body, err := snapshot.Encode(snap)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/msgpack")
		w.Write(body)
	}
}

func main() {
	var (
		listenAddr  = flag.String("listen", ":8090", "address to listen on")
		upstreamURL = flag.String("upstream", "", "upstream origin to forward requests to, e.g. http://localhost:3000")
		verbose     = flag.Bool("verbose", false, "enable debug-level logging")
		newIDOnColl = flag.Bool("new-id-on-collision", false, "enable the StructureId collision-counter variant (§4.B)")
	)
	flag.Parse()

	if *upstreamURL == "" {
		fmt.Fprintln(os.Stderr, "synpatico-agent: -upstream is required")
		os.Exit(2)
	}
	upstream, err := url.Parse(*upstreamURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "synpatico-agent: invalid -upstream: %v\n", err)
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	engine := synpatico.NewEngine(synpatico.Options{
		Logger:           logger,
		NewIDOnCollision: *newIDOnColl,
	})
	agent := negotiation.NewAgent(engine, negotiation.AgentOptions{
		Upstream: upstream,
		Logger:   logger,
	})

	mux := http.NewServeMux()
	mux.Handle("/debug/stats", debugStatsHandler(engine))
	mux.Handle("/", agent)

	logger.Info("synpatico-agent: listening", "addr", *listenAddr, "upstream", upstream.String())
	if err := http.ListenAndServe(*listenAddr, mux); err != nil {
		logger.Error("synpatico-agent: exiting", "err", err)
		os.Exit(1)
	}
}
