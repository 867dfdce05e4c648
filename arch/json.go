package arch

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"github.com/sarchlab/fpgapr/errkind"
)

// blockDef mirrors one entry of the architecture JSON's "blocks" object.
// See spec §6 for the wire format.
type blockDef struct {
	Leaf           bool                `json:"leaf"`
	Clocked        bool                `json:"clocked"`
	GlobalCategory string              `json:"globalCategory"`
	Height         int                 `json:"height"`
	Start          int                 `json:"start"`
	Repeat         int                 `json:"repeat"`
	Ports          portsDef            `json:"ports"`
	Modes          map[string]modeDef  `json:"modes"`
	Children       map[string]int      `json:"children"`
}

type portsDef struct {
	Input  map[string]int `json:"input"`
	Output map[string]int `json:"output"`
}

type modeDef struct {
	Children map[string]int `json:"children"`
}

// document mirrors the architecture JSON's top level.
type document struct {
	IOCapacity int                 `json:"io_capacity"`
	Blocks     map[string]blockDef `json:"blocks"`
	Delays     map[string]float64  `json:"delays"`
}

// delayKeyPattern parses the three delay-key shapes from spec §6:
//
//	"<block>.<port>-<block>.<port>"  (full)
//	"<block>-<block>.<port>"         (sink setup)
//	"<block>.<port>-<block>"         (source setup)
var delayKeyPattern = regexp.MustCompile(
	`^(?P<srcBlock>[^.\-]+)(\.(?P<srcPort>[^-]+))?-(?P<dstBlock>[^.\-]+)(\.(?P<dstPort>.+))?$`)

// LoadArchitectureFile reads and parses an architecture JSON file into a
// new Context.
func LoadArchitectureFile(path string) (*Context, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errkind.NewInputFormat(path, "could not read architecture file")
	}

	return LoadArchitecture(path, data)
}

// LoadArchitecture parses architecture JSON content into a new Context.
// path is used only for error messages.
func LoadArchitecture(path string, data []byte) (*Context, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errkind.NewInputFormat(path, "invalid architecture JSON: "+err.Error())
	}

	ctx := NewContext()
	ctx.IOCapacity = doc.IOCapacity

	if err := ctx.addBlockTypes(doc.Blocks); err != nil {
		return nil, err
	}

	if err := ctx.processDelays(doc.Delays); err != nil {
		return nil, err
	}

	return ctx, nil
}

func (c *Context) addBlockTypes(blocks map[string]blockDef) error {
	for name, def := range blocks {
		category := categoryOf(def)

		height, start, repeat := 1, 1, 1
		if category == HardBlock {
			height, start, repeat = def.Height, def.Start, def.Repeat
		}

		clocked := def.Leaf && def.Clocked

		inputs := portsFromCounts(def.Ports.Input, PortInput)
		outputs := portsFromCounts(def.Ports.Output, PortOutput)

		if _, err := c.AddBlockType(name, category, height, start, repeat, clocked, inputs, outputs); err != nil {
			return err
		}

		if err := c.addModes(name, def); err != nil {
			return err
		}
	}

	return nil
}

func categoryOf(def blockDef) BlockCategory {
	switch {
	case def.GlobalCategory == "IO":
		return IO
	case def.GlobalCategory == "CLB":
		return CLB
	case def.GlobalCategory == "hardblock":
		return HardBlock
	case def.Leaf:
		return Leaf
	default:
		return Intermediate
	}
}

// addModes mirrors Architecture.java's addBlockTypes: leaf types get a
// single unnamed mode; types without an explicit "modes" map get one mode
// named after the type itself; otherwise every named mode is added.
func (c *Context) addModes(name string, def blockDef) error {
	if def.Leaf {
		return c.AddMode(name, "", def.Children)
	}

	if len(def.Modes) == 0 {
		return c.AddMode(name, name, def.Children)
	}

	for modeName, mode := range def.Modes {
		if err := c.AddMode(name, modeName, mode.Children); err != nil {
			return err
		}
	}

	return nil
}

func portsFromCounts(counts map[string]int, dir PortDir) []Port {
	ports := make([]Port, 0, len(counts))
	for name, count := range counts {
		ports = append(ports, Port{Name: name, Dir: dir, Count: count})
	}

	return ports
}

func (c *Context) processDelays(delays map[string]float64) error {
	for key, delay := range delays {
		if key == ClockSetupTimeKey {
			c.ClockSetupTime = delay
			continue
		}

		match := delayKeyPattern.FindStringSubmatch(key)
		if match == nil {
			return errkind.NewArchInconsistency(
				fmt.Sprintf("malformed delay key %q", key))
		}

		groups := namedGroups(delayKeyPattern, match)

		switch {
		case groups["srcPort"] == "":
			// "<block>-<block>.<port>" — sink setup time.
			pt := c.PortType(groups["dstBlock"], groups["dstPort"])
			pt.SetupTime = delay

		case groups["dstPort"] == "":
			// "<block>.<port>-<block>" — source setup time.
			pt := c.PortType(groups["srcBlock"], groups["srcPort"])
			pt.SetupTime = delay

		default:
			c.SetDelay(groups["srcBlock"], groups["srcPort"], groups["dstBlock"], groups["dstPort"], delay)
		}
	}

	return nil
}

func namedGroups(re *regexp.Regexp, match []string) map[string]string {
	groups := make(map[string]string, len(match))
	for i, name := range re.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}

		groups[name] = match[i]
	}

	return groups
}
