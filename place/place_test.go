package place_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/fpgapr/arch"
	"github.com/sarchlab/fpgapr/circuit"
	"github.com/sarchlab/fpgapr/cost"
	"github.com/sarchlab/fpgapr/place"
)

func newPlaceTestContext() *arch.Context {
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

var _ = Describe("AnalyticalPlacer", func() {
	It("converges immediately on a two-IO-block net with cost 4.0", func() {
		ctx := newPlaceTestContext()
		ioType, _ := ctx.BlockTypeByName("io")

		c := circuit.New("t", ctx)
		drv := c.AddBlock(&circuit.Block{Name: "drv", Kind: circuit.KindIO, Type: ioType, Parent: -1})
		sink := c.AddBlock(&circuit.Block{Name: "sink", Kind: circuit.KindIO, Type: ioType, Parent: -1})

		outPin := c.AddPin(&circuit.Pin{BlockIndex: drv, Dir: arch.PortOutput})
		inPin := c.AddPin(&circuit.Pin{BlockIndex: sink, Dir: arch.PortInput})
		c.Blocks[drv].OutputPins = []int{outPin}
		c.Blocks[sink].InputPins = []int{inPin}

		Expect(c.BuildGrid(false, 4)).To(Succeed())

		Expect(c.Place(drv, 0, 1, 0)).To(Succeed())
		Expect(c.Place(sink, 1, 0, 0)).To(Succeed())

		c.AddNet("n", outPin, []int{inPin})
		c.RecomputeAllBoundingBoxes()

		Expect(cost.TotalCost(c)).To(Equal(4.0))

		result := place.NewAnalyticalPlacer().Run(c)
		Expect(result.Converged).To(BeTrue())
		Expect(result.Iterations).To(BeNumerically("<=", 2))
	})

	It("returns immediately with zero cost on an empty circuit", func() {
		ctx := newPlaceTestContext()
		c := circuit.New("empty", ctx)
		Expect(c.BuildGrid(true, 0)).To(Succeed())

		result := place.NewAnalyticalPlacer().Run(c)
		Expect(result.Converged).To(BeTrue())
		Expect(cost.TotalCost(c)).To(Equal(0.0))
	})
})

var _ = Describe("RandomPlacer", func() {
	It("is deterministic given the same seed", func() {
		build := func() *circuit.Circuit {
			ctx := newPlaceTestContext()
			clbType, _ := ctx.BlockTypeByName("clb")
			c := circuit.New("t", ctx)

			for i := 0; i < 6; i++ {
				c.AddBlock(&circuit.Block{Name: "b", Kind: circuit.KindCLB, Type: clbType, Parent: -1})
			}

			Expect(c.BuildGrid(true, 0)).To(Succeed())

			return c
		}

		c1 := build()
		Expect(place.NewRandomPlacer(1).PlaceAll(c1)).To(Succeed())

		c2 := build()
		Expect(place.NewRandomPlacer(1).PlaceAll(c2)).To(Succeed())

		for i := range c1.Blocks {
			Expect(c1.Blocks[i].Placement).To(Equal(c2.Blocks[i].Placement))
		}
	})
})

var _ = Describe("LegalizeType", func() {
	It("is a pure function of continuous coordinates", func() {
		ctx := newPlaceTestContext()
		clbType, _ := ctx.BlockTypeByName("clb")
		c := circuit.New("t", ctx)

		var movable []int
		for i := 0; i < 5; i++ {
			idx := c.AddBlock(&circuit.Block{Name: "b", Kind: circuit.KindCLB, Type: clbType, Parent: -1})
			movable = append(movable, idx)
		}

		Expect(c.BuildGrid(true, 0)).To(Succeed())

		contX := []float64{0.2, 1.9, 0.5, 2.1, 1.1}
		contY := []float64{1.0, 0.3, 2.2, 1.4, 0.9}

		moves1, err := place.LegalizeType(c, clbType, movable, contX, contY)
		Expect(err).NotTo(HaveOccurred())

		moves2, err := place.LegalizeType(c, clbType, movable, append([]float64(nil), contX...), append([]float64(nil), contY...))
		Expect(err).NotTo(HaveOccurred())

		Expect(moves1).To(Equal(moves2))
	})
})

var _ = Describe("SARefiner", func() {
	It("runs to completion without crashing on a small circuit", func() {
		ctx := newPlaceTestContext()
		ioType, _ := ctx.BlockTypeByName("io")
		clbType, _ := ctx.BlockTypeByName("clb")
		c := circuit.New("t", ctx)

		var ios, clbs []int
		for i := 0; i < 2; i++ {
			ios = append(ios, c.AddBlock(&circuit.Block{Name: "io", Kind: circuit.KindIO, Type: ioType, Parent: -1}))
		}

		for i := 0; i < 4; i++ {
			clbs = append(clbs, c.AddBlock(&circuit.Block{Name: "clb", Kind: circuit.KindCLB, Type: clbType, Parent: -1}))
		}

		outPin := c.AddPin(&circuit.Pin{BlockIndex: ios[0], Dir: arch.PortOutput})
		c.Blocks[ios[0]].OutputPins = []int{outPin}

		var sinkPins []int
		for _, idx := range append(append([]int{}, ios[1]), clbs...) {
			p := c.AddPin(&circuit.Pin{BlockIndex: idx, Dir: arch.PortInput})
			c.Blocks[idx].InputPins = append(c.Blocks[idx].InputPins, p)
			sinkPins = append(sinkPins, p)
		}

		c.AddNet("n", outPin, sinkPins)

		Expect(c.BuildGrid(true, 0)).To(Succeed())
		Expect(place.NewRandomPlacer(1).PlaceAll(c)).To(Succeed())

		rng := rand.New(rand.NewSource(1))
		result := place.NewSARefiner().Run(c, rng, nil)
		Expect(result.Converged).To(BeTrue())
	})
})
