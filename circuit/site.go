package circuit

import "github.com/sarchlab/fpgapr/arch"

// Site is a grid location with a block type and capacity. A hardblock
// site of height h occupies rows y..y+h-1 of its column; only the row it
// is anchored at (its Y) appears in Grid.sites.
type Site struct {
	X, Y     int
	Type     *arch.BlockType
	Capacity int
	occupant []int // block index per subslot, -1 if empty
}

func newSite(x, y int, blockType *arch.BlockType, capacity int) *Site {
	occ := make([]int, capacity)
	for i := range occ {
		occ[i] = -1
	}

	return &Site{X: x, Y: y, Type: blockType, Capacity: capacity, occupant: occ}
}

// Occupant returns the block index at the given subslot, or -1 if empty.
func (s *Site) Occupant(subblock int) int {
	return s.occupant[subblock]
}

// FreeSubblock returns the first empty subslot and true, or (-1, false)
// if the site is full.
func (s *Site) FreeSubblock() (int, bool) {
	for i, occ := range s.occupant {
		if occ == -1 {
			return i, true
		}
	}

	return -1, false
}

// Occupation returns the number of subslots currently in use.
func (s *Site) Occupation() int {
	n := 0

	for _, occ := range s.occupant {
		if occ != -1 {
			n++
		}
	}

	return n
}

func (s *Site) place(blockIndex, subblock int) {
	s.occupant[subblock] = blockIndex
}

func (s *Site) clear(subblock int) {
	s.occupant[subblock] = -1
}
