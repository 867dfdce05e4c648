package arch

import (
	"fmt"

	"github.com/sarchlab/fpgapr/errkind"
)

// ClockSetupTimeKey is the reserved delay-table key for the global clock
// setup time, matching the architecture JSON's "clock_setup_time" entry.
const ClockSetupTimeKey = "clock_setup_time"

// FillGrade is the fraction of CLB capacity the auto-sizing loop is
// allowed to target before growing the device further.
const FillGrade = 1.0

// Context is the immutable, shared registry of block types and port types
// built once from the architecture description and threaded by reference
// through circuit, timing, placement and routing. It replaces the
// original's static BlockTypeData/PortTypeData singletons with an
// explicit, passable value so that multiple architectures can coexist in
// one process (e.g. under test).
type Context struct {
	IOCapacity      int
	ClockSetupTime  float64
	blockTypes      []*BlockType
	blockTypeByName map[string]int
	portTypes       map[PortKey]*PortType
}

// NewContext creates an empty Context. Use a Builder (see json.go) to
// populate it from an architecture description.
func NewContext() *Context {
	return &Context{
		blockTypeByName: make(map[string]int),
		portTypes:       make(map[PortKey]*PortType),
	}
}

// AddBlockType registers a new block type and returns it. The type's Index
// is assigned to its position in the registry.
func (c *Context) AddBlockType(
	name string,
	category BlockCategory,
	height, start, repeat int,
	clocked bool,
	inputs, outputs []Port,
) (*BlockType, error) {
	if _, exists := c.blockTypeByName[name]; exists {
		return nil, errkind.NewArchInconsistency(
			fmt.Sprintf("block type %q defined twice", name))
	}

	bt := &BlockType{
		Index:    len(c.blockTypes),
		Name:     name,
		Category: category,
		Height:   height,
		Start:    start,
		Repeat:   repeat,
		Clocked:  clocked,
		Inputs:   inputs,
		Outputs:  outputs,
	}

	if !bt.Valid() {
		return nil, errkind.NewArchInconsistency(
			fmt.Sprintf("block type %q has an invalid height/repeat", name))
	}

	c.blockTypes = append(c.blockTypes, bt)
	c.blockTypeByName[name] = bt.Index

	return bt, nil
}

// AddMode attaches a mode (a named child decomposition) to a block type
// previously created with AddBlockType.
func (c *Context) AddMode(blockTypeName, modeName string, children map[string]int) error {
	bt, ok := c.BlockTypeByName(blockTypeName)
	if !ok {
		return errkind.NewArchInconsistency(
			fmt.Sprintf("mode %q refers to unknown block type %q", modeName, blockTypeName))
	}

	bt.Modes = append(bt.Modes, Mode{Name: modeName, Children: children})

	return nil
}

// BlockTypeByName looks up a block type by name.
func (c *Context) BlockTypeByName(name string) (*BlockType, bool) {
	idx, ok := c.blockTypeByName[name]
	if !ok {
		return nil, false
	}

	return c.blockTypes[idx], true
}

// BlockTypeByIndex returns the block type at the given registry index.
func (c *Context) BlockTypeByIndex(idx int) *BlockType {
	return c.blockTypes[idx]
}

// BlockTypes returns every registered block type, in registration order.
func (c *Context) BlockTypes() []*BlockType {
	return c.blockTypes
}

// BlockTypesOfCategory returns every registered block type of the given
// category, in registration order.
func (c *Context) BlockTypesOfCategory(category BlockCategory) []*BlockType {
	var result []*BlockType

	for _, bt := range c.blockTypes {
		if bt.Category == category {
			result = append(result, bt)
		}
	}

	return result
}

// PortType returns (creating if necessary) the PortType for a
// (blockType, portName) pair.
func (c *Context) PortType(blockType, portName string) *PortType {
	key := PortKey{blockType, portName}

	pt, ok := c.portTypes[key]
	if !ok {
		pt = &PortType{
			BlockTypeName: blockType,
			PortName:      portName,
			Delays:        make(map[PortKey]float64),
		}
		c.portTypes[key] = pt
	}

	return pt
}

// SetDelay records a combinational delay from one port type to another.
func (c *Context) SetDelay(srcBlock, srcPort, dstBlock, dstPort string, delay float64) {
	src := c.PortType(srcBlock, srcPort)
	src.Delays[PortKey{dstBlock, dstPort}] = delay
}
