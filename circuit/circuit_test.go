package circuit_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/fpgapr/arch"
	"github.com/sarchlab/fpgapr/circuit"
)

func newTestContext() *arch.Context {
	ctx := arch.NewContext()
	ctx.IOCapacity = 2

	_, _ = ctx.AddBlockType("io", arch.IO, 1, 1, 1, false,
		[]arch.Port{{Name: "outpad", Dir: arch.PortInput, Count: 1}},
		[]arch.Port{{Name: "inpad", Dir: arch.PortOutput, Count: 1}})

	_, _ = ctx.AddBlockType("clb", arch.CLB, 1, 1, 1, false,
		[]arch.Port{{Name: "in", Dir: arch.PortInput, Count: 40}},
		[]arch.Port{{Name: "out", Dir: arch.PortOutput, Count: 10}})

	_, _ = ctx.AddBlockType("dsp", arch.HardBlock, 4, 1, 8, false,
		[]arch.Port{{Name: "a", Dir: arch.PortInput, Count: 18}},
		[]arch.Port{{Name: "p", Dir: arch.PortOutput, Count: 36}})

	return ctx
}

func newGlobalBlock(name string, kind circuit.Kind, bt *arch.BlockType) *circuit.Block {
	return &circuit.Block{Name: name, Kind: kind, Type: bt, Parent: -1}
}

var _ = Describe("Circuit", func() {
	var ctx *arch.Context

	BeforeEach(func() {
		ctx = newTestContext()
	})

	Describe("empty circuit", func() {
		It("auto-sizes to a 2x2 device with zero blocks", func() {
			c := circuit.New("empty", ctx)
			Expect(c.BuildGrid(true, 0)).To(Succeed())
			Expect(c.Grid.Width).To(Equal(2))
			Expect(c.Grid.Height).To(Equal(2))
		})
	})

	Describe("grid column pattern", func() {
		It("places a hardblock column at (x-1-start) mod repeat == 0", func() {
			ioType, _ := ctx.BlockTypeByName("io")
			clbType, _ := ctx.BlockTypeByName("clb")
			dspType, _ := ctx.BlockTypeByName("dsp")

			demand := map[int]int{clbType.Index: 40, dspType.Index: 2}
			grid, err := circuit.NewGrid(ctx, demand, true, 0)
			Expect(err).NotTo(HaveOccurred())

			Expect(grid.ColumnType(0).Index).To(Equal(ioType.Index))
			Expect(grid.ColumnType(grid.Width - 1).Index).To(Equal(ioType.Index))

			for _, x := range grid.ColumnsOf(dspType) {
				Expect((x - 1 - dspType.Start) % dspType.Repeat).To(Equal(0))
			}
		})

		It("rejects a fixed device that is too small", func() {
			clbType, _ := ctx.BlockTypeByName("clb")
			demand := map[int]int{clbType.Index: 10000}

			_, err := circuit.NewGrid(ctx, demand, false, 4)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("site placement", func() {
		It("enforces one block per site/subslot and matching type", func() {
			clbType, _ := ctx.BlockTypeByName("clb")
			c := circuit.New("t", ctx)

			idxA := c.AddBlock(newGlobalBlock("a", circuit.KindCLB, clbType))
			idxB := c.AddBlock(newGlobalBlock("b", circuit.KindCLB, clbType))

			Expect(c.BuildGrid(true, 0)).To(Succeed())

			site := c.Grid.SitesOfType(clbType)[0]

			Expect(c.Place(idxA, site.X, site.Y, 0)).To(Succeed())
			err := c.Place(idxB, site.X, site.Y, 0)
			Expect(err).To(HaveOccurred())

			c.Unplace(idxA)
			Expect(c.Place(idxB, site.X, site.Y, 0)).To(Succeed())
		})

		It("rejects placing a block on a site of the wrong type", func() {
			clbType, _ := ctx.BlockTypeByName("clb")
			ioType, _ := ctx.BlockTypeByName("io")
			c := circuit.New("t", ctx)

			idx := c.AddBlock(newGlobalBlock("a", circuit.KindCLB, clbType))
			Expect(c.BuildGrid(true, 0)).To(Succeed())

			ioSite := c.Grid.SitesOfType(ioType)[0]
			err := c.Place(idx, ioSite.X, ioSite.Y, 0)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("net bounding box", func() {
		It("is invariant under reordering of net pins", func() {
			clbType, _ := ctx.BlockTypeByName("clb")
			c := circuit.New("t", ctx)

			var blockIdx []int
			for i := 0; i < 3; i++ {
				idx := c.AddBlock(newGlobalBlock("b", circuit.KindCLB, clbType))
				blockIdx = append(blockIdx, idx)
			}

			Expect(c.BuildGrid(true, 0)).To(Succeed())

			var outPins, inPins []int
			for _, idx := range blockIdx {
				out := c.AddPin(&circuit.Pin{BlockIndex: idx, Dir: arch.PortOutput})
				in := c.AddPin(&circuit.Pin{BlockIndex: idx, Dir: arch.PortInput})
				c.Blocks[idx].OutputPins = []int{out}
				c.Blocks[idx].InputPins = []int{in}
				outPins = append(outPins, out)
				inPins = append(inPins, in)
			}

			sites := c.Grid.SitesOfType(clbType)
			for i, idx := range blockIdx {
				Expect(c.Place(idx, sites[i].X, sites[i].Y, 0)).To(Succeed())
			}

			netA := c.AddNet("n", outPins[0], []int{inPins[1], inPins[2]})
			c.RecomputeBoundingBox(netA)
			hpwlA := c.Nets[netA].HPWL()

			netB := c.AddNet("n2", outPins[0], []int{inPins[2], inPins[1]})
			c.RecomputeBoundingBox(netB)
			hpwlB := c.Nets[netB].HPWL()

			Expect(hpwlA).To(Equal(hpwlB))
		})
	})

	Describe("RandomSite", func() {
		It("guards against an infeasible window with a retry budget", func() {
			clbType, _ := ctx.BlockTypeByName("clb")
			ioType, _ := ctx.BlockTypeByName("io")
			c := circuit.New("t", ctx)
			c.AddBlock(newGlobalBlock("a", circuit.KindCLB, clbType))
			Expect(c.BuildGrid(true, 0)).To(Succeed())

			_, found := c.Grid.RandomSite(ioType, 1, 1, 0, randSource(), 8)
			_ = found // any outcome is acceptable; the call must return promptly

			_, found2 := c.Grid.RandomSite(clbType, 1, 1, 1, randSource(), 32)
			Expect(found2).To(BeTrue())
		})
	})
})
