// Package circuit models the packed netlist: global blocks, pins, nets,
// connections, sites and the device grid they are placed on. A Circuit is
// built once from the (out-of-core) parser output and then mutated in
// place by the placer and router.
package circuit

import (
	"github.com/rs/xid"
	"github.com/sarchlab/fpgapr/arch"
)

// Kind tags the position of a block in the packing hierarchy. Collapsing
// the original's AbstractBlock/GlobalBlock/IntermediateBlock/LeafBlock
// class chain into one struct keyed by Kind keeps cross-references as
// plain indices into the Circuit's arenas instead of a pointer graph.
type Kind int

// Recognized block kinds.
const (
	KindIO Kind = iota
	KindCLB
	KindIntermediate
	KindLeaf
)

// Placement records a global block's current site assignment. A block
// that has not yet been placed has Placed == false and X/Y/Subblock are
// meaningless.
type Placement struct {
	X, Y, Subblock int
	Placed         bool
}

// Block is one node of the packing hierarchy: a global (IO/CLB/hardblock)
// block or one of its owned children. Only global blocks carry a
// Placement; only global blocks are visible to the placer and router.
type Block struct {
	ID         xid.ID
	Index      int
	Name       string
	Kind       Kind
	Type       *arch.BlockType
	Mode       string
	InputPins  []int // indices into Circuit.Pins
	OutputPins []int // indices into Circuit.Pins
	Children   []int // indices into Circuit.Blocks, empty for leaves
	Parent     int   // index into Circuit.Blocks, -1 for global blocks

	Placement Placement
}

// IsGlobal reports whether the block is directly placed on a device site
// (as opposed to being an intermediate or leaf sub-block owned by one).
func (b *Block) IsGlobal() bool {
	return b.Kind == KindIO || b.Kind == KindCLB
}

// Pin is one primitive pin of a global or local block. GlobalPin and
// LocalPin from the original collapse into this single record; BlockIndex
// always refers to the owning global block for pins on global blocks, and
// to the owning sub-block otherwise.
type Pin struct {
	Index      int
	BlockIndex int
	PortType   *arch.PortType
	Dir        arch.PortDir
	NetIndex   int // -1 if unconnected
}
