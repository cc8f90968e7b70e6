// Package traceio reads occurrence documents: already-resolved failures stored
// as YAML or JSON.
//
//	type: java.lang.StackOverflowError
//	stack_overflow: true
//	frames:
//	  - {class: app.Tree, method: walk, file: Tree.java, line: 41}
//	  - {class: null, method: null, line: -1}
//
// A stream may hold several YAML documents separated by "---". JSON input is
// accepted as the YAML subset it is.
package traceio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/steveyegge/tracehash/internal/types"
)

// Decode reads every occurrence document in r.
func Decode(r io.Reader) ([]*types.Occurrence, error) {
	dec := yaml.NewDecoder(r)

	var out []*types.Occurrence
	for i := 0; ; i++ {
		var occ types.Occurrence
		err := dec.Decode(&occ)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing document %d: %w", i+1, err)
		}
		if err := occ.Validate(); err != nil {
			return nil, fmt.Errorf("document %d: %w", i+1, err)
		}
		out = append(out, &occ)
	}
	return out, nil
}

// ReadFile decodes the occurrence documents in path. "-" reads standard input.
func ReadFile(path string) ([]*types.Occurrence, error) {
	if path == "-" {
		return Decode(os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading occurrence file: %w", err)
	}
	defer f.Close()

	occs, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return occs, nil
}

// Write encodes occurrences as a YAML stream.
func Write(w io.Writer, occs []*types.Occurrence) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	for _, occ := range occs {
		if err := enc.Encode(occ); err != nil {
			return fmt.Errorf("encoding occurrence: %w", err)
		}
	}
	return enc.Close()
}
