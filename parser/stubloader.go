package parser

import (
	"github.com/sarchlab/fpgapr/arch"
	"github.com/sarchlab/fpgapr/circuit"
	"github.com/sarchlab/fpgapr/errkind"
)

// StubLoader implements Loader's LoadPlace (a fully specified, simple
// format) directly, and reports BLIF/".net" parsing as not yet
// available. It lets cliapp be built before a real BLIF/net front end
// exists, per this package's stated out-of-core boundary. With no netlist
// loader, the --place stage hands LoadPlace a circuit that has no blocks,
// so a place file that names any block is rejected as an unknown block.
type StubLoader struct{}

// LoadBLIF is not implemented: BLIF parsing and packing are a full
// front end of their own, out of this engine's core scope.
func (StubLoader) LoadBLIF(path string, _ *arch.Context) (*circuit.Circuit, error) {
	return nil, errkind.NewInputFormat(path, "BLIF parsing is not implemented by this loader")
}

// LoadNet is not implemented for the same reason as LoadBLIF.
func (StubLoader) LoadNet(path string, _ *arch.Context) (*circuit.Circuit, error) {
	return nil, errkind.NewInputFormat(path, ".net parsing is not implemented by this loader")
}

// LoadPlace reads a ".place" file onto an already-built circuit.
func (StubLoader) LoadPlace(path string, c *circuit.Circuit) error {
	return ReadPlaceFile(path, c)
}
