package circuit

import (
	"fmt"

	"github.com/rs/xid"
	"github.com/sarchlab/fpgapr/arch"
	"github.com/sarchlab/fpgapr/errkind"
)

// Circuit is the packed netlist together with its device grid and current
// site assignment. It is built once from parser output (out of core) and
// then mutated in place by the placer and router.
type Circuit struct {
	Name string
	Ctx  *arch.Context
	Grid *Grid

	Blocks      []*Block
	Pins        []*Pin
	Nets        []*Net
	Connections []*Connection

	globalBlockIndexes []int // indices into Blocks, in creation order
}

// New creates an empty Circuit bound to the given architecture context.
// Call BuildGrid once all blocks, pins, nets and connections have been added
// via the Add* methods, to size and build the device grid.
func New(name string, ctx *arch.Context) *Circuit {
	return &Circuit{Name: name, Ctx: ctx}
}

// AddBlock appends a block (global or owned child) to the circuit and
// returns its index.
func (c *Circuit) AddBlock(b *Block) int {
	b.Index = len(c.Blocks)
	b.ID = xid.New()
	c.Blocks = append(c.Blocks, b)

	if b.IsGlobal() {
		c.globalBlockIndexes = append(c.globalBlockIndexes, b.Index)
	}

	return b.Index
}

// AddPin appends a pin and returns its index.
func (c *Circuit) AddPin(p *Pin) int {
	p.Index = len(c.Pins)
	p.NetIndex = -1
	c.Pins = append(c.Pins, p)

	return p.Index
}

// AddNet appends a net and returns its index. The net's pins must already
// exist; this also creates one Connection per sink pin.
func (c *Circuit) AddNet(name string, driverPin int, sinkPins []int) int {
	net := &Net{
		ID:        xid.New(),
		Name:      name,
		DriverPin: driverPin,
		SinkPins:  sinkPins,
	}
	net.Index = len(c.Nets)
	c.Nets = append(c.Nets, net)

	c.Pins[driverPin].NetIndex = net.Index
	for _, sink := range sinkPins {
		c.Pins[sink].NetIndex = net.Index

		conn := &Connection{
			ID:        xid.New(),
			NetIndex:  net.Index,
			DriverPin: driverPin,
			SinkPin:   sink,
		}
		conn.Index = len(c.Connections)
		c.Connections = append(c.Connections, conn)

		net.Connections = append(net.Connections, conn.Index)
	}

	return net.Index
}

// GlobalBlocks returns every global (IO/CLB/hardblock) block, in creation
// order.
func (c *Circuit) GlobalBlocks() []*Block {
	blocks := make([]*Block, len(c.globalBlockIndexes))
	for i, idx := range c.globalBlockIndexes {
		blocks[i] = c.Blocks[idx]
	}

	return blocks
}

// BuildGrid sizes and builds the device grid from the current global
// block population.
func (c *Circuit) BuildGrid(autoSize bool, fixedSize int) error {
	demand := make(map[int]int)
	for _, idx := range c.globalBlockIndexes {
		demand[c.Blocks[idx].Type.Index]++
	}

	grid, err := NewGrid(c.Ctx, demand, autoSize, fixedSize)
	if err != nil {
		return err
	}

	c.Grid = grid

	return nil
}

// Place assigns a global block to a site/subslot, enforcing the
// no-overlap and matching-type invariants from the data model.
func (c *Circuit) Place(blockIndex, x, y, subblock int) error {
	block := c.Blocks[blockIndex]

	site := c.Grid.SiteAnchoredAt(x, y)
	if site == nil {
		return errkind.NewInfeasible(
			fmt.Sprintf("no site anchored at (%d,%d)", x, y))
	}

	if site.Type.Index != block.Type.Index {
		return errkind.NewInfeasible(
			fmt.Sprintf("block %s is type %s but site (%d,%d) is type %s",
				block.Name, block.Type.Name, x, y, site.Type.Name))
	}

	if subblock < 0 || subblock >= site.Capacity {
		return errkind.NewInfeasible(
			fmt.Sprintf("subblock %d out of range for site (%d,%d)", subblock, x, y))
	}

	if site.Occupant(subblock) != -1 && site.Occupant(subblock) != blockIndex {
		return errkind.NewInfeasible(
			fmt.Sprintf("site (%d,%d) subblock %d is already occupied", x, y, subblock))
	}

	if block.Placement.Placed {
		c.Unplace(blockIndex)
	}

	site.place(blockIndex, subblock)
	block.Placement = Placement{X: x, Y: y, Subblock: subblock, Placed: true}

	return nil
}

// Unplace removes a block from its current site, if any.
func (c *Circuit) Unplace(blockIndex int) {
	block := c.Blocks[blockIndex]
	if !block.Placement.Placed {
		return
	}

	site := c.Grid.SiteAnchoredAt(block.Placement.X, block.Placement.Y)
	if site != nil {
		site.clear(block.Placement.Subblock)
	}

	block.Placement = Placement{}
}

// RecomputeBoundingBox recomputes a net's cached bounding box from the
// current positions of every block it touches.
func (c *Circuit) RecomputeBoundingBox(netIndex int) {
	net := c.Nets[netIndex]

	first := true
	extend := func(pinIndex int) {
		block := c.Blocks[c.Pins[pinIndex].BlockIndex]
		if !block.Placement.Placed {
			return
		}

		x, y := block.Placement.X, block.Placement.Y
		if first {
			net.XMin, net.XMax, net.YMin, net.YMax = x, x, y, y
			first = false

			return
		}

		if x < net.XMin {
			net.XMin = x
		}

		if x > net.XMax {
			net.XMax = x
		}

		if y < net.YMin {
			net.YMin = y
		}

		if y > net.YMax {
			net.YMax = y
		}
	}

	extend(net.DriverPin)
	for _, sink := range net.SinkPins {
		extend(sink)
	}

	net.valid = true
}

// RecomputeAllBoundingBoxes recomputes every net's bounding box.
func (c *Circuit) RecomputeAllBoundingBoxes() {
	for i := range c.Nets {
		c.RecomputeBoundingBox(i)
	}
}

// NetsTouching returns the nets any of the given block's pins belong to.
func (c *Circuit) NetsTouching(blockIndex int) []int {
	block := c.Blocks[blockIndex]

	seen := make(map[int]bool)
	var nets []int

	addPin := func(pinIndex int) {
		netIndex := c.Pins[pinIndex].NetIndex
		if netIndex == -1 || seen[netIndex] {
			return
		}

		seen[netIndex] = true
		nets = append(nets, netIndex)
	}

	for _, p := range block.InputPins {
		addPin(p)
	}

	for _, p := range block.OutputPins {
		addPin(p)
	}

	return nets
}
