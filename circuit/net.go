package circuit

import "github.com/rs/xid"

// Net is a driver pin plus a set of sink pins, together with its derived
// bounding box and fanout.
type Net struct {
	ID          xid.ID
	Index       int
	Name        string
	DriverPin   int   // index into Circuit.Pins
	SinkPins    []int // indices into Circuit.Pins
	Connections []int // indices into Circuit.Connections, one per sink

	// Cached bounding box over the current positions of every block this
	// net touches; recomputed by Circuit.RecomputeBoundingBox.
	XMin, XMax, YMin, YMax int
	valid                  bool
}

// Fanout returns the number of sinks of the net.
func (n *Net) Fanout() int {
	return len(n.SinkPins)
}

// GeometricCenter returns the center of the net's current bounding box.
func (n *Net) GeometricCenter() (float64, float64) {
	return float64(n.XMin+n.XMax) / 2, float64(n.YMin+n.YMax) / 2
}

// HPWL returns the net's half-perimeter wire length.
func (n *Net) HPWL() int {
	return (n.XMax - n.XMin) + (n.YMax - n.YMin)
}
