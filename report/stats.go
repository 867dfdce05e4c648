// Package report collects structured placement/routing statistics,
// persists a per-iteration trace to SQLite, and optionally exposes a
// read-only JSON monitoring server, grounded on
// sarchlab-akita/tracing/sqlite.go and monitoring/monitor.go.
package report

import (
	"github.com/sarchlab/fpgapr/circuit"
	"github.com/sarchlab/fpgapr/cost"
	"github.com/sarchlab/fpgapr/logging"
	"github.com/sarchlab/fpgapr/timinggraph"
)

// IterationRow is one row of the router/placer's per-iteration trace: the
// console table original/ConnectionRouter.java:156-157 printed inline,
// routed through structured logging/persistence here instead.
type IterationRow struct {
	Stage         string
	Itry          int
	PresFac       float64
	OverusedNodes int
	WireLength    int
	MaxDelay      float64
	SATemperature float64
}

// PrintStageStatistics logs the total bounding-box cost after a placer
// stage or the router, plus max delay and total timing cost when tg is
// non-nil, restoring
// original/CLI.java:145-170's printStatistics via structured logging
// instead of System.out.format.
func PrintStageStatistics(log logging.Logger, stage string, c *circuit.Circuit, tg *timinggraph.Graph) {
	fields := logging.Fields{
		"stage":   stage,
		"bb_cost": cost.TotalCost(c),
	}

	if tg != nil {
		fields["max_delay"] = tg.MaxDelay()
		fields["timing_cost"] = tg.CalculateTotalCost()
	}

	log.Info("stage complete", fields)
}
