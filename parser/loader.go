// Package parser defines the out-of-core boundary between external input
// formats (BLIF, a packed-netlist ".net" file, architecture JSON, a
// ".place" placement file) and the engine's in-memory circuit. Only the
// architecture-JSON and place-file readers/writers are implemented here;
// BLIF and ".net" parsing are full parsers on their own right and stay
// behind the Loader interface so cliapp can be built and tested against a
// fake before a real implementation exists.
package parser

import (
	"github.com/sarchlab/fpgapr/arch"
	"github.com/sarchlab/fpgapr/circuit"
)

// Loader is the contract cliapp depends on for every external input
// stage named in spec.md §6's staged CLI
// (blif → pack → place → route; net → place → route; place → route).
// Each method loads one stage's input file into (or onto) an in-progress
// circuit.Circuit and returns it unchanged in meaning from the prior
// stage's output.
type Loader interface {
	// LoadBLIF parses a BLIF netlist and technology-maps/packs it into a
	// fresh Circuit bound to ctx. This is the earliest possible entry
	// point (blif → pack → place → route).
	LoadBLIF(path string, ctx *arch.Context) (*circuit.Circuit, error)

	// LoadNet parses an already-packed ".net" file into a fresh Circuit,
	// skipping BLIF parsing and packing (net → place → route).
	LoadNet(path string, ctx *arch.Context) (*circuit.Circuit, error)

	// LoadPlace reads a ".place" file's site assignments onto an
	// already-built Circuit, skipping placement entirely (place → route).
	LoadPlace(path string, c *circuit.Circuit) error
}
