package circuit

import (
	"fmt"
	"math/rand"

	"github.com/sarchlab/fpgapr/arch"
	"github.com/sarchlab/fpgapr/errkind"
)

// Grid is the square NxN device. Column 0 and column N-1 are IO, as are
// rows 0 and N-1; interior columns follow the architecture's hardblock
// column pattern, CLB elsewhere.
type Grid struct {
	ctx        *arch.Context
	Width      int
	Height     int
	columns    []*arch.BlockType      // column type, indexed by x
	columnsOf  map[int][]int          // block type index -> column x's
	sites      [][]*Site              // sites[x][y], nil where no site starts
}

// NewGrid builds the device grid. When autoSize is true, it grows the
// smallest square device whose per-type capacity meets occupancy (the
// counts in demand); otherwise it validates the fixed size and returns an
// Infeasible error if the device is too small for the given demand.
func NewGrid(ctx *arch.Context, demand map[int]int, autoSize bool, fixedSize int) (*Grid, error) {
	ioType, ok := firstOfCategory(ctx, arch.IO)
	if !ok {
		return nil, errkind.NewArchInconsistency("architecture defines no IO block type")
	}

	clbType, ok := firstOfCategory(ctx, arch.CLB)
	if !ok {
		return nil, errkind.NewArchInconsistency("architecture defines no CLB block type")
	}

	hardBlockTypes := ctx.BlockTypesOfCategory(arch.HardBlock)

	size := 2
	if autoSize {
		size = autoSizeDevice(ctx, ioType, clbType, hardBlockTypes, demand)
	} else {
		size = fixedSize
		if tooSmall(ctx, ioType, clbType, hardBlockTypes, demand, size) {
			return nil, errkind.NewInfeasible(
				fmt.Sprintf("device size %d is too small for the given netlist", size))
		}
	}

	g := &Grid{
		ctx:       ctx,
		Width:     size,
		Height:    size,
		columnsOf: make(map[int][]int),
	}
	g.buildColumns(ioType, clbType, hardBlockTypes, size)
	g.createSites(ioType)

	return g, nil
}

func firstOfCategory(ctx *arch.Context, category arch.BlockCategory) (*arch.BlockType, bool) {
	types := ctx.BlockTypesOfCategory(category)
	if len(types) == 0 {
		return nil, false
	}

	return types[0], true
}

// capacityFor counts, for a device of the given size, its IO perimeter
// sites and its CLB and hardblock columns, following the same
// column-pattern arithmetic as buildColumns; tooSmall turns these counts
// into per-type capacities.
func capacityFor(
	ioType, clbType *arch.BlockType,
	hardBlockTypes []*arch.BlockType,
	size int,
) (ioCapacityColumns, clbColumns int, hardBlockColumns []int) {
	hardBlockColumns = make([]int, len(hardBlockTypes))

	for x := 1; x < size-1; x++ {
		placed := false

		for i, ht := range hardBlockTypes {
			if (x-1-ht.Start)%ht.Repeat == 0 {
				hardBlockColumns[i]++
				placed = true

				break
			}
		}

		if !placed {
			clbColumns++
		}
	}

	ioCapacityColumns = (size - 2) * 4

	return ioCapacityColumns, clbColumns, hardBlockColumns
}

func tooSmall(
	ctx *arch.Context,
	ioType, clbType *arch.BlockType,
	hardBlockTypes []*arch.BlockType,
	demand map[int]int,
	size int,
) bool {
	if size < 2 {
		return true
	}

	ioCols, clbCols, hbCols := capacityFor(ioType, clbType, hardBlockTypes, size)

	ioCapacity := ioCols * ctx.IOCapacity
	if ioCapacity < demand[ioType.Index] {
		return true
	}

	clbCapacity := int(float64(clbCols*(size-2)) * arch.FillGrade)
	if clbCapacity < demand[clbType.Index] {
		return true
	}

	for i, ht := range hardBlockTypes {
		blocksPerColumn := (size - 2) / ht.Height
		capacity := hbCols[i] * blocksPerColumn

		if capacity < demand[ht.Index] {
			return true
		}
	}

	return false
}

// autoSizeDevice grows size until tooSmall no longer holds, mirroring
// Circuit.java's calculateSizeAndColumns(true) loop.
func autoSizeDevice(
	ctx *arch.Context,
	ioType, clbType *arch.BlockType,
	hardBlockTypes []*arch.BlockType,
	demand map[int]int,
) int {
	size := 2
	for tooSmall(ctx, ioType, clbType, hardBlockTypes, demand, size) {
		size++
	}

	return size
}

// buildColumns assigns a BlockType to every interior column: hardblock
// type i at column x iff (x-1-start_i) mod repeat_i == 0, else CLB.
func (g *Grid) buildColumns(ioType, clbType *arch.BlockType, hardBlockTypes []*arch.BlockType, size int) {
	g.columns = make([]*arch.BlockType, size)
	g.columns[0] = ioType
	g.columns[size-1] = ioType

	for x := 1; x < size-1; x++ {
		chosen := clbType

		for _, ht := range hardBlockTypes {
			if (x-1-ht.Start)%ht.Repeat == 0 {
				chosen = ht
				break
			}
		}

		g.columns[x] = chosen
		g.columnsOf[chosen.Index] = append(g.columnsOf[chosen.Index], x)
	}

	g.columnsOf[ioType.Index] = []int{0, size - 1}
}

func (g *Grid) createSites(ioType *arch.BlockType) {
	g.sites = make([][]*Site, g.Width)
	for x := range g.sites {
		g.sites[x] = make([]*Site, g.Height)
	}

	size := g.Width
	for i := 1; i < size-1; i++ {
		g.sites[0][i] = newSite(0, i, ioType, g.ctx.IOCapacity)
		g.sites[i][size-1] = newSite(i, size-1, ioType, g.ctx.IOCapacity)
		g.sites[size-1][size-1-i] = newSite(size-1, size-1-i, ioType, g.ctx.IOCapacity)
		g.sites[size-1-i][0] = newSite(size-1-i, 0, ioType, g.ctx.IOCapacity)
	}

	for x := 1; x < size-1; x++ {
		blockType := g.columns[x]
		if blockType == nil || blockType.Category == arch.IO {
			continue
		}

		height := blockType.Height
		for y := 1; y+height <= size-1; y += height {
			g.sites[x][y] = newSite(x, y, blockType, 1)
		}
	}
}

// ColumnType returns the block type of column x.
func (g *Grid) ColumnType(x int) *arch.BlockType {
	return g.columns[x]
}

// ColumnsOf returns every column x whose type is blockType.
func (g *Grid) ColumnsOf(blockType *arch.BlockType) []int {
	return g.columnsOf[blockType.Index]
}

// SiteAt returns the site that owns coordinate (x, y): the site whose Y is
// <= y and whose height covers y. Returns nil if none does (e.g. x/y out
// of range).
func (g *Grid) SiteAt(x, y int) *Site {
	if x < 0 || x >= g.Width || y < 0 || y >= g.Height {
		return nil
	}

	for top := y; top >= 0; top-- {
		if s := g.sites[x][top]; s != nil {
			if top+s.Type.Height > y {
				return s
			}

			return nil
		}
	}

	return nil
}

// SiteAnchoredAt returns the site that starts exactly at (x, y), or nil.
func (g *Grid) SiteAnchoredAt(x, y int) *Site {
	if x < 0 || x >= g.Width || y < 0 || y >= g.Height {
		return nil
	}

	return g.sites[x][y]
}

// SitesOfType returns every site of the given block type, in
// column-major, row-ascending order.
func (g *Grid) SitesOfType(blockType *arch.BlockType) []*Site {
	var result []*Site

	for x := range g.sites {
		for y := range g.sites[x] {
			if s := g.sites[x][y]; s != nil && s.Type.Index == blockType.Index {
				result = append(result, s)
			}
		}
	}

	return result
}

// RandomSite returns a random site within Chebyshev distance of a block's
// current position whose type matches the block's type, retrying up to
// maxAttempts times. This resolves the open question in spec §9: the
// original's unbounded retry loop is replaced with an explicit budget, and
// callers must treat a false return as "no site found in this window".
func (g *Grid) RandomSite(blockType *arch.BlockType, x, y, distance int, rng *rand.Rand, maxAttempts int) (*Site, bool) {
	minX, maxX := clamp(x-distance, 0, g.Width-1), clamp(x+distance, 0, g.Width-1)
	minY, maxY := clamp(y-distance, 0, g.Height-1), clamp(y+distance, 0, g.Height-1)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		rx := minX + rng.Intn(maxX-minX+1)
		ry := minY + rng.Intn(maxY-minY+1)

		site := g.SiteAt(rx, ry)
		if site != nil && site.Type.Index == blockType.Index {
			return site, true
		}
	}

	return nil, false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}
