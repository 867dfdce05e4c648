package timinggraph_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/fpgapr/arch"
	"github.com/sarchlab/fpgapr/circuit"
	"github.com/sarchlab/fpgapr/timinggraph"
)

func buildWireOnlyCircuit() (*circuit.Circuit, int) {
	ctx := arch.NewContext()
	ctx.IOCapacity = 4

	ioType, _ := ctx.AddBlockType("io", arch.IO, 1, 1, 1, false,
		[]arch.Port{{Name: "outpad", Dir: arch.PortInput, Count: 1}},
		[]arch.Port{{Name: "inpad", Dir: arch.PortOutput, Count: 1}})
	_, _ = ctx.AddBlockType("clb", arch.CLB, 1, 1, 1, false,
		[]arch.Port{{Name: "in", Dir: arch.PortInput, Count: 4}},
		[]arch.Port{{Name: "out", Dir: arch.PortOutput, Count: 1}})

	c := circuit.New("t", ctx)

	src := c.AddBlock(&circuit.Block{Name: "src", Kind: circuit.KindIO, Type: ioType, Parent: -1})
	dst := c.AddBlock(&circuit.Block{Name: "dst", Kind: circuit.KindIO, Type: ioType, Parent: -1})

	outPin := c.AddPin(&circuit.Pin{BlockIndex: src, Dir: arch.PortOutput})
	inPin := c.AddPin(&circuit.Pin{BlockIndex: dst, Dir: arch.PortInput})
	c.Blocks[src].OutputPins = []int{outPin}
	c.Blocks[dst].InputPins = []int{inPin}

	Expect(c.BuildGrid(true, 0)).To(Succeed())

	sites := c.Grid.SitesOfType(ioType)
	Expect(len(sites)).To(BeNumerically(">=", 2))
	Expect(c.Place(src, sites[0].X, sites[0].Y, 0)).To(Succeed())
	Expect(c.Place(dst, sites[1].X, sites[1].Y, 0)).To(Succeed())

	netIdx := c.AddNet("n", outPin, []int{inPin})

	return c, netIdx
}

var _ = Describe("Graph", func() {
	Describe("arrival and required times", func() {
		It("satisfies arrival/required/slack invariants on every edge", func() {
			c, _ := buildWireOnlyCircuit()

			g := timinggraph.New(c)
			g.CalculatePlacementEstimatedWireDelay()
			g.CalculateArrivalAndRequiredTimes()

			Expect(g.CalculateTotalCost()).To(BeNumerically(">=", 0))
			Expect(g.MaxDelay()).To(BeNumerically(">", 0))
		})

		It("is idempotent across repeated calls on an unchanged graph", func() {
			c, _ := buildWireOnlyCircuit()

			g := timinggraph.New(c)
			g.CalculatePlacementEstimatedWireDelay()

			g.CalculateArrivalAndRequiredTimes()
			first := g.MaxDelay()

			g.CalculateArrivalAndRequiredTimes()
			second := g.MaxDelay()

			Expect(first).To(Equal(second))
		})
	})

	Describe("connection criticality", func() {
		It("stays within [0, maxCrit] and is mirrored onto the Connection", func() {
			c, _ := buildWireOnlyCircuit()

			g := timinggraph.New(c)
			g.CalculatePlacementEstimatedWireDelay()
			g.CalculateArrivalAndRequiredTimes()
			g.CalculateConnectionCriticality(0.99, 1.0)

			crit := c.Connections[0].Criticality
			Expect(crit).To(BeNumerically(">=", 0))
			Expect(crit).To(BeNumerically("<=", 0.99))
		})
	})

	Describe("intra-block combinational edges", func() {
		It("expands an output-to-input delay from the architecture's table", func() {
			ctx := arch.NewContext()
			ctx.IOCapacity = 4

			clbType, _ := ctx.AddBlockType("clb", arch.CLB, 1, 1, 1, false,
				[]arch.Port{{Name: "in", Dir: arch.PortInput, Count: 1}},
				[]arch.Port{{Name: "out", Dir: arch.PortOutput, Count: 1}})
			ctx.SetDelay("clb", "out", "clb", "in", 120.0)

			c := circuit.New("t", ctx)
			blk := c.AddBlock(&circuit.Block{Name: "b", Kind: circuit.KindCLB, Type: clbType, Parent: -1})

			outPort := ctx.PortType("clb", "out")
			inPort := ctx.PortType("clb", "in")

			outPin := c.AddPin(&circuit.Pin{BlockIndex: blk, Dir: arch.PortOutput, PortType: outPort})
			inPin := c.AddPin(&circuit.Pin{BlockIndex: blk, Dir: arch.PortInput, PortType: inPort})
			c.Blocks[blk].OutputPins = []int{outPin}
			c.Blocks[blk].InputPins = []int{inPin}

			g := timinggraph.New(c)
			g.CalculateArrivalAndRequiredTimes()

			Expect(g.MaxDelay()).To(Equal(120.0))
		})
	})
})
