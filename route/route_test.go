package route_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/fpgapr/arch"
	"github.com/sarchlab/fpgapr/circuit"
	"github.com/sarchlab/fpgapr/place"
	"github.com/sarchlab/fpgapr/route"
	"github.com/sarchlab/fpgapr/timinggraph"
)

func newRouteTestContext() *arch.Context {
	ctx := arch.NewContext()
	ctx.IOCapacity = 4

	_, _ = ctx.AddBlockType("io", arch.IO, 1, 1, 1, false,
		[]arch.Port{{Name: "outpad", Dir: arch.PortInput, Count: 1}},
		[]arch.Port{{Name: "inpad", Dir: arch.PortOutput, Count: 1}})

	_, _ = ctx.AddBlockType("clb", arch.CLB, 1, 1, 1, false,
		[]arch.Port{{Name: "in", Dir: arch.PortInput, Count: 4}},
		[]arch.Port{{Name: "out", Dir: arch.PortOutput, Count: 1}})

	return ctx
}

// fanoutCircuit builds one IO driver fanning out to numSinks CLB sinks,
// placed randomly on an auto-sized device.
func fanoutCircuit(numSinks int) (*circuit.Circuit, int) {
	ctx := newRouteTestContext()
	ioType, _ := ctx.BlockTypeByName("io")
	clbType, _ := ctx.BlockTypeByName("clb")

	c := circuit.New("t", ctx)

	drv := c.AddBlock(&circuit.Block{Name: "drv", Kind: circuit.KindIO, Type: ioType, Parent: -1})
	outPin := c.AddPin(&circuit.Pin{BlockIndex: drv, Dir: arch.PortOutput})
	c.Blocks[drv].OutputPins = []int{outPin}

	var sinkPins []int
	for i := 0; i < numSinks; i++ {
		blk := c.AddBlock(&circuit.Block{Name: "clb", Kind: circuit.KindCLB, Type: clbType, Parent: -1})
		p := c.AddPin(&circuit.Pin{BlockIndex: blk, Dir: arch.PortInput})
		c.Blocks[blk].InputPins = []int{p}
		sinkPins = append(sinkPins, p)
	}

	netIdx := c.AddNet("n", outPin, sinkPins)

	Expect(c.BuildGrid(true, 0)).To(Succeed())
	Expect(place.NewRandomPlacer(1).PlaceAll(c)).To(Succeed())

	return c, netIdx
}

var _ = Describe("Router", func() {
	Describe("convergence", func() {
		It("routes a modest fanout net with zero overused nodes", func() {
			c, _ := fanoutCircuit(8)

			g := route.BuildGraph(c, 4)
			r := route.NewRouter(g)

			report, err := r.Route(c, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Converged).To(BeTrue())
			Expect(report.OverusedNodes).To(BeEmpty())
		})
	})

	Describe("timing-driven mode", func() {
		It("refreshes criticality every iteration and still converges", func() {
			c, _ := fanoutCircuit(6)

			tg := timinggraph.New(c)
			tg.CalculatePlacementEstimatedWireDelay()
			tg.CalculateArrivalAndRequiredTimes()
			tg.CalculateConnectionCriticality(0.99, 1.0)

			g := route.BuildGraph(c, 4)
			r := route.NewRouter(g)

			report, err := r.Route(c, tg)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Converged).To(BeTrue())
			Expect(report.OverusedNodes).To(BeEmpty())
		})
	})

	Describe("OPIN uniqueness", func() {
		It("routes every connection of a net through the same OPIN", func() {
			c, netIdx := fanoutCircuit(5)

			g := route.BuildGraph(c, 4)
			r := route.NewRouter(g)
			r.FixOpins = 1

			_, err := r.Route(c, nil)
			Expect(err).NotTo(HaveOccurred())

			net := c.Nets[netIdx]
			opins := make(map[int]bool)

			for _, connIdx := range net.Connections {
				path := r.RouteOf(connIdx)
				Expect(len(path)).To(BeNumerically(">=", 2))
				opins[path[1]] = true
			}

			Expect(opins).To(HaveLen(1))
		})

		It("reports no violations after a converged route", func() {
			c, _ := fanoutCircuit(5)

			g := route.BuildGraph(c, 4)
			r := route.NewRouter(g)
			r.FixOpins = 1

			_, err := r.Route(c, nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(r.VerifyOpinUniqueness(c)).To(BeEmpty())
		})
	})

	Describe("rip-up then add", func() {
		It("leaves node occupation unchanged", func() {
			c, _ := fanoutCircuit(3)

			g := route.BuildGraph(c, 4)
			r := route.NewRouter(g)

			_, err := r.Route(c, nil)
			Expect(err).NotTo(HaveOccurred())

			conn := c.Connections[0]
			path := append([]int(nil), r.RouteOf(conn.Index)...)

			before := make([]int, len(path))
			for i, node := range path {
				before[i] = r.Occupation(node)
			}

			r.RipUp(conn)
			r.Add(conn)

			for i, node := range path {
				Expect(r.Occupation(node)).To(Equal(before[i]))
			}
		})
	})
})
