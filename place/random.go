package place

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/sarchlab/fpgapr/circuit"
	"github.com/sarchlab/fpgapr/errkind"
)

// RandomPlacer assigns every global block to a uniformly chosen site of
// its own type, deterministic given its Rng's seed. It both stands alone
// under --placer random and seeds the analytical placer's IO positions.
type RandomPlacer struct {
	Rng *rand.Rand
}

// NewRandomPlacer returns a placer seeded deterministically, matching the
// CLI's --random fixed-seed-1 contract.
func NewRandomPlacer(seed int64) *RandomPlacer {
	return &RandomPlacer{Rng: rand.New(rand.NewSource(seed))}
}

type slot struct {
	x, y, sub int
}

// PlaceAll assigns every global block of c to a distinct site/subslot of
// matching type.
func (p *RandomPlacer) PlaceAll(c *circuit.Circuit) error {
	byType := make(map[int][]*circuit.Block)

	for _, b := range c.GlobalBlocks() {
		byType[b.Type.Index] = append(byType[b.Type.Index], b)
	}

	typeIndexes := make([]int, 0, len(byType))
	for typeIdx := range byType {
		typeIndexes = append(typeIndexes, typeIdx)
	}

	sort.Ints(typeIndexes)

	for _, typeIdx := range typeIndexes {
		blocks := byType[typeIdx]
		blockType := c.Ctx.BlockTypeByIndex(typeIdx)
		sites := c.Grid.SitesOfType(blockType)

		var slots []slot
		for _, s := range sites {
			for sub := 0; sub < s.Capacity; sub++ {
				slots = append(slots, slot{s.X, s.Y, sub})
			}
		}

		if len(slots) < len(blocks) {
			return errkind.NewInfeasible(
				fmt.Sprintf("not enough %s sites for random placement: have %d, need %d",
					blockType.Name, len(slots), len(blocks)))
		}

		p.Rng.Shuffle(len(slots), func(i, j int) { slots[i], slots[j] = slots[j], slots[i] })
		p.Rng.Shuffle(len(blocks), func(i, j int) { blocks[i], blocks[j] = blocks[j], blocks[i] })

		for i, b := range blocks {
			if err := c.Place(b.Index, slots[i].x, slots[i].y, slots[i].sub); err != nil {
				return err
			}
		}
	}

	c.RecomputeAllBoundingBoxes()

	return nil
}
