package circuit

import "github.com/rs/xid"

// Connection is a driver-pin -> one-sink-pin pair. It owns its routing
// criticality here; the actual RRG path is owned by the route package,
// indexed by Connection.Index, keeping circuit free of any dependency on
// the routing-resource graph.
type Connection struct {
	ID          xid.ID
	Index       int
	NetIndex    int
	DriverPin   int
	SinkPin     int
	Criticality float64

	// ActualWireDelay is the sum of t_linear along the connection's current
	// RRG path, written by the router after each route/reroute pass and
	// read back by the timing graph to avoid a circuit->route dependency.
	ActualWireDelay float64
}
