// Command synpaticoctl is a standalone inspector: given a JSON document,
// it prints the StructureId synpatico would derive from it and, with
// -shape, the derived Shape, without running any HTTP negotiation. Useful for explaining why two
// endpoints did or didn't converge on the same structure.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/synpatico-dev/synpatico"
)

func main() {
	var (
		inputPath = flag.String("f", "-", "path to a JSON document, or - for stdin")
		dumpShape = flag.Bool("shape", false, "also print the derived Shape")
	)
	flag.Parse()

	if err := run(*inputPath, *dumpShape, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "synpaticoctl:", err)
		os.Exit(1)
	}
}

func run(inputPath string, dumpShape bool, out io.Writer) error {
	raw, err := readInput(inputPath)
	if err != nil {
		return err
	}

	v, err := synpatico.DecodeFromJSON(raw)
	if err != nil {
		return fmt.Errorf("decoding input: %w", err)
	}

	id := synpatico.Fingerprint(v)
	fmt.Fprintf(out, "structureId: %s\n", id)

	if dumpShape {
		shape, err := synpatico.ExtractShape(v)
		if err != nil {
			return fmt.Errorf("extracting shape: %w", err)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(describeShape(shape))
	}
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// describeShape renders a Shape into a plain JSON-marshalable tree for
// -shape output, mirroring state.go's Dump-time describeShape but as
// structured data instead of a one-line string.
func describeShape(s synpatico.Shape) any {
	switch {
	case s.IsLeaf():
		return map[string]any{"kind": "leaf", "leaf": s.LeafKind().String()}
	case s.IsArray():
		items := s.ArrayItems()
		out := make([]any, len(items))
		for i, it := range items {
			out[i] = describeShape(it)
		}
		return map[string]any{"kind": "array", "items": out}
	case s.IsObject():
		fields := s.Fields()
		out := make(map[string]any, len(fields))
		for _, fl := range fields {
			out[fl.Key] = describeShape(fl.Shape)
		}
		return map[string]any{"kind": "object", "fields": out}
	default:
		return map[string]any{"kind": "unknown"}
	}
}
