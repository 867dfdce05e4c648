package cliapp

import (
	"fmt"
	"math/rand"

	"github.com/sarchlab/fpgapr/circuit"
	"github.com/sarchlab/fpgapr/cost"
	"github.com/sarchlab/fpgapr/logging"
	"github.com/sarchlab/fpgapr/place"
	"github.com/sarchlab/fpgapr/report"
	"github.com/sarchlab/fpgapr/route"
	"github.com/sarchlab/fpgapr/timinggraph"
)

// Pipeline runs the placer sequence requested by --placer, then routes,
// producing the structured per-stage statistics the original's
// printStatistics dumped to stdout.
type Pipeline struct {
	Log      logging.Logger
	Trace    *report.IterationTraceWriter
	Server   *report.Server
	Seed     int64
	Placers  []placerSpec
	ChannelW int
}

// Run executes every requested placer stage in order followed by
// routing, mutating c's Placement fields in place.
func (p *Pipeline) Run(c *circuit.Circuit) (*route.CongestionReport, error) {
	rng := rand.New(rand.NewSource(p.Seed))

	for _, spec := range p.Placers {
		if err := p.runPlacerStage(c, spec, rng); err != nil {
			return nil, err
		}
	}

	tg := timinggraph.New(c)
	tg.CalculatePlacementEstimatedWireDelay()
	tg.CalculateArrivalAndRequiredTimes()
	tg.CalculateConnectionCriticality(0.99, 1.0)

	channelWidth := p.ChannelW
	if channelWidth <= 0 {
		channelWidth = 4
	}

	graph := route.BuildGraph(c, channelWidth)
	router := route.NewRouter(graph)

	congestionReport, err := router.Route(c, tg)
	if err != nil {
		return nil, err
	}

	if !congestionReport.Converged {
		p.Log.Warn("router did not converge within max trials",
			logging.Fields{"iterations": congestionReport.Iterations, "overused_nodes": len(congestionReport.OverusedNodes)})
	}

	report.PrintStageStatistics(p.Log, "route", c, tg)

	if violations := router.VerifyOpinUniqueness(c); len(violations) > 0 {
		p.Log.Warn("OPIN uniqueness violated", logging.Fields{"violations": len(violations)})
	}

	congestion := make([]report.CongestionSummary, len(congestionReport.OverusedNodes))
	for i, node := range congestionReport.OverusedNodes {
		congestion[i] = report.CongestionSummary{
			Node:   node,
			Excess: router.Occupation(node) - graph.Nodes[node].Capacity,
		}
	}

	p.Server.Update(report.Snapshot{
		Stage:         "route",
		Itry:          congestionReport.Iterations,
		OverusedNodes: len(congestionReport.OverusedNodes),
		WireLength:    int(cost.TotalCost(c)),
		MaxDelay:      tg.MaxDelay(),
		Congestion:    congestion,
	})

	if err := p.Trace.Write(report.IterationRow{
		Stage:         "route",
		Itry:          congestionReport.Iterations,
		OverusedNodes: len(congestionReport.OverusedNodes),
		WireLength:    int(cost.TotalCost(c)),
		MaxDelay:      tg.MaxDelay(),
	}); err != nil {
		p.Log.Warn("failed to write iteration trace row", logging.Fields{"error": err.Error()})
	}

	return congestionReport, nil
}

func (p *Pipeline) runPlacerStage(c *circuit.Circuit, spec placerSpec, rng *rand.Rand) error {
	switch spec.Name {
	case "random":
		placer := place.NewRandomPlacer(p.Seed)
		if err := placer.PlaceAll(c); err != nil {
			return err
		}

	case "analytical":
		placer := place.NewAnalyticalPlacer()
		applyFloatOpt(spec.Opts, "tolerance", &placer.Tolerance)
		applyFloatOpt(spec.Opts, "pseudo_weight", &placer.PseudoWeight)
		applyFloatOpt(spec.Opts, "gap_threshold", &placer.GapThreshold)
		applyIntOpt(spec.Opts, "max_outer_iter", &placer.MaxOuterIter)
		applyIntOpt(spec.Opts, "max_cg_iter", &placer.MaxCGIter)

		placer.Run(c)

	case "SA":
		refiner := place.NewSARefiner()
		applyFloatOpt(spec.Opts, "lambda", &refiner.Lambda)
		applyIntOpt(spec.Opts, "moves_per_temp_factor", &refiner.MovesPerTempFactor)
		applyIntOpt(spec.Opts, "max_site_attempts", &refiner.MaxSiteAttempts)

		refiner.Run(c, rng, func() float64 { return cost.TotalCost(c) })

	default:
		return fmt.Errorf("cliapp: unrecognized placer %q, want one of random/analytical/SA", spec.Name)
	}

	report.PrintStageStatistics(p.Log, spec.Name, c, nil)

	p.Server.Update(report.Snapshot{
		Stage:      spec.Name,
		WireLength: int(cost.TotalCost(c)),
	})

	if err := p.Trace.Write(report.IterationRow{
		Stage:      spec.Name,
		WireLength: int(cost.TotalCost(c)),
	}); err != nil {
		p.Log.Warn("failed to write iteration trace row", logging.Fields{"error": err.Error()})
	}

	return nil
}

func applyFloatOpt(opts map[string]float64, key string, dst *float64) {
	if v, ok := opts[key]; ok {
		*dst = v
	}
}

func applyIntOpt(opts map[string]float64, key string, dst *int) {
	if v, ok := opts[key]; ok {
		*dst = int(v)
	}
}
