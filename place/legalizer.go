package place

import (
	"fmt"
	"sort"

	"github.com/sarchlab/fpgapr/arch"
	"github.com/sarchlab/fpgapr/circuit"
	"github.com/sarchlab/fpgapr/errkind"
)

// legalizeArea is a growable rectangle of device columns/rows considered
// together during bipartition. It keeps the original's four bounds plus
// its per-type growth steps so the bipartition below can be checked field
// for field against NewLegalizerArea.java.
type legalizeArea struct {
	top, bottom, left, right int
	blockHeight, blockRepeat int
	blocks                   []int // indices into the type's movable list
}

func (a *legalizeArea) occupation() int {
	return len(a.blocks)
}

func (a *legalizeArea) capacity(sitesByColumn map[int][]*circuit.Site) int {
	total := 0
	for x := a.left; x <= a.right; x++ {
		total += len(sitesByColumn[x])
	}

	return total
}

// growLeft/growRight widen the area by one column-repeat step, staying
// within the device.
func (a *legalizeArea) growRight(maxCol int) bool {
	if a.right >= maxCol {
		return false
	}

	a.right += a.blockRepeat
	if a.right > maxCol {
		a.right = maxCol
	}

	return true
}

func (a *legalizeArea) growLeft(minCol int) bool {
	if a.left <= minCol {
		return false
	}

	a.left -= a.blockRepeat
	if a.left < minCol {
		a.left = minCol
	}

	return true
}

// legalMove is one block's resolved legal site.
type legalMove struct {
	blockIndex     int
	x, y, subblock int
}

// LegalizeType legalizes every movable block of one type: bins their
// continuous x coordinates onto the type's device columns, grows any
// overfull bin into a legalizeArea until its capacity covers its
// occupation, then recursively bipartitions each area down to one block
// per site.
func LegalizeType(
	c *circuit.Circuit,
	blockType *arch.BlockType,
	movable []int,
	contX, contY []float64,
) ([]legalMove, error) {
	sites := c.Grid.SitesOfType(blockType)
	if len(sites) < len(movable) {
		return nil, errkind.NewInfeasible(
			fmt.Sprintf("not enough %s sites: have %d, need %d", blockType.Name, len(sites), len(movable)))
	}

	if len(movable) == 0 {
		return nil, nil
	}

	sitesByColumn := make(map[int][]*circuit.Site)
	for _, s := range sites {
		sitesByColumn[s.X] = append(sitesByColumn[s.X], s)
	}

	columns := c.Grid.ColumnsOf(blockType)
	minCol, maxCol := columns[0], columns[0]

	for _, x := range columns {
		if x < minCol {
			minCol = x
		}

		if x > maxCol {
			maxCol = x
		}
	}

	nearestColumn := func(x float64) int {
		best, bestDist := columns[0], -1.0

		for _, col := range columns {
			d := x - float64(col)
			if d < 0 {
				d = -d
			}

			if bestDist < 0 || d < bestDist {
				best, bestDist = col, d
			}
		}

		return best
	}

	bins := make(map[int][]int) // column -> movable local indexes
	for i, blockIdx := range movable {
		col := nearestColumn(contX[i])
		bins[col] = append(bins[col], i)
		_ = blockIdx
	}

	var areas []*legalizeArea
	visited := make(map[int]bool)

	binColumns := make([]int, 0, len(bins))
	for col := range bins {
		binColumns = append(binColumns, col)
	}

	sort.Ints(binColumns)

	for _, col := range binColumns {
		if visited[col] {
			continue
		}

		area := &legalizeArea{
			top: 0, bottom: c.Grid.Height - 1,
			left: col, right: col,
			blockHeight: blockType.Height,
			blockRepeat: blockType.Repeat,
			blocks:      append([]int(nil), bins[col]...),
		}

		absorbed := map[int]bool{col: true}
		grow := true
		for area.capacity(sitesByColumn) < area.occupation() && grow {
			grewRight := area.growRight(maxCol)
			grewLeft := area.growLeft(minCol)
			grow = grewRight || grewLeft

			for x := area.left; x <= area.right; x++ {
				if !visited[x] && !absorbed[x] {
					area.blocks = append(area.blocks, bins[x]...)
					absorbed[x] = true
				}
			}
		}

		for x := area.left; x <= area.right; x++ {
			visited[x] = true
		}

		areas = append(areas, area)
	}

	var moves []legalMove
	for _, area := range areas {
		var areaSites []*circuit.Site
		for x := area.left; x <= area.right; x++ {
			areaSites = append(areaSites, sitesByColumn[x]...)
		}

		bipartition(areaSites, area.blocks, movable, contX, contY, &moves)
	}

	return moves, nil
}

// bipartition recursively splits sites/blockRows along the longer axis of
// the site bounding box until one site remains, then assigns it.
// blockRows indexes into contX/contY/movable (the type's movable list).
func bipartition(
	sites []*circuit.Site,
	blockRows []int,
	movable []int,
	contX, contY []float64,
	moves *[]legalMove,
) {
	if len(blockRows) == 0 {
		return
	}

	if len(sites) == 1 {
		site := sites[0]

		for sub := 0; sub < site.Capacity && len(blockRows) > 0; sub++ {
			row := blockRows[0]
			blockRows = blockRows[1:]

			*moves = append(*moves, legalMove{
				blockIndex: movable[row],
				x:          site.X, y: site.Y, subblock: sub,
			})
		}

		return
	}

	minX, maxX, minY, maxY := sites[0].X, sites[0].X, sites[0].Y, sites[0].Y
	for _, s := range sites[1:] {
		if s.X < minX {
			minX = s.X
		}

		if s.X > maxX {
			maxX = s.X
		}

		if s.Y < minY {
			minY = s.Y
		}

		if s.Y > maxY {
			maxY = s.Y
		}
	}

	byX := (maxX - minX) >= (maxY - minY)

	sort.Slice(sites, func(i, j int) bool {
		if byX {
			if sites[i].X != sites[j].X {
				return sites[i].X < sites[j].X
			}

			return sites[i].Y < sites[j].Y
		}

		if sites[i].Y != sites[j].Y {
			return sites[i].Y < sites[j].Y
		}

		return sites[i].X < sites[j].X
	})

	sort.Slice(blockRows, func(i, j int) bool {
		a, b := blockRows[i], blockRows[j]
		if byX {
			return contX[a] < contX[b]
		}

		return contY[a] < contY[b]
	})

	leftCap := len(sites) / 2
	if leftCap == 0 {
		leftCap = 1
	}

	rightCap := len(sites) - leftCap

	leftCount := leftCap
	if leftCount > len(blockRows) {
		leftCount = len(blockRows)
	}

	if len(blockRows)-leftCount > rightCap {
		leftCount = len(blockRows) - rightCap
	}

	bipartition(sites[:leftCap], blockRows[:leftCount], movable, contX, contY, moves)
	bipartition(sites[leftCap:], blockRows[leftCount:], movable, contX, contY, moves)
}
