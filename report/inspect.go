package report

import (
	"fmt"
	"io"

	"github.com/syifan/goseth"

	"github.com/sarchlab/fpgapr/circuit"
)

// InspectBlock reflectively serializes a single named global block to w
// as JSON, for the report server's /api/component/{name}-style
// endpoints, grounded on monitoring/monitor.go's listComponentDetails.
func InspectBlock(c *circuit.Circuit, name string, w io.Writer) error {
	for _, b := range c.GlobalBlocks() {
		if b.Name == name {
			s := goseth.NewSerializer()
			s.SetRoot(b)
			s.SetMaxDepth(1)

			return s.Serialize(w)
		}
	}

	return fmt.Errorf("report: no global block named %q", name)
}

// InspectNet reflectively serializes a single named net to w as JSON.
func InspectNet(c *circuit.Circuit, name string, w io.Writer) error {
	for _, n := range c.Nets {
		if n.Name == name {
			s := goseth.NewSerializer()
			s.SetRoot(n)
			s.SetMaxDepth(1)

			return s.Serialize(w)
		}
	}

	return fmt.Errorf("report: no net named %q", name)
}
