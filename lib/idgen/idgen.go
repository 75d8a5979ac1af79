// Package idgen generates per-invocation correlation identifiers so a
// caller can grep one sandrun run out of a shared log stream when many
// invocations interleave (judges and CI runners typically launch many
// sandboxes concurrently against one collector).
package idgen

import (
	"fmt"

	"github.com/nrednav/cuid2"
)

// NewRunID returns a fresh collision-resistant run identifier.
func NewRunID() (string, error) {
	generate, err := cuid2.Init()
	if err != nil {
		return "", fmt.Errorf("init cuid2 generator: %w", err)
	}
	return generate(), nil
}
