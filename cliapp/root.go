// Package cliapp wires the external parsers (BLIF/net/place/architecture
// JSON, via parser.Loader) to the core placement/routing engine through a
// cobra command tree, implementing spec.md §6's staged entry points.
package cliapp

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sarchlab/fpgapr/arch"
	"github.com/sarchlab/fpgapr/circuit"
	"github.com/sarchlab/fpgapr/config"
	"github.com/sarchlab/fpgapr/errkind"
	"github.com/sarchlab/fpgapr/logging"
	"github.com/sarchlab/fpgapr/parser"
	"github.com/sarchlab/fpgapr/report"
)

// options holds every flag value, populated by cobra before RunE runs.
type options struct {
	architecturePath string
	blifPath         string
	netPath          string
	placePath        string
	random           bool
	placerFlags      []string
	outputPath       string
	reportAddr       string
	traceDB          string
	channelWidth     int
}

// New builds the root command described in spec.md §6.
func New(loader parser.Loader) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "fpgapr",
		Short: "FPGA placement-and-routing engine",
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(opts, loader)
		},
	}

	flags := root.Flags()
	flags.StringVar(&opts.architecturePath, "architecture", "", "architecture JSON file")
	flags.StringVar(&opts.blifPath, "blif", "", "start from a BLIF netlist (blif -> pack -> place -> route)")
	flags.StringVar(&opts.netPath, "net", "", "start from a packed .net file (net -> place -> route)")
	flags.StringVar(&opts.placePath, "place", "", "start from a .place file (place -> route)")
	flags.BoolVar(&opts.random, "random", false, "randomize initial placement with fixed seed 1")
	flags.StringArrayVar(&opts.placerFlags, "placer", nil,
		"placer stage to run, repeatable: name[opt=value,...] (random, analytical, SA)")
	flags.StringVar(&opts.outputPath, "output", "", "target placement file")
	flags.StringVar(&opts.reportAddr, "report-addr", "", "optional address to serve JSON monitoring on")
	flags.StringVar(&opts.traceDB, "trace-db", "", "optional SQLite file for the per-iteration trace")
	flags.IntVar(&opts.channelWidth, "channel-width", 4, "routing channel width (tracks per channel)")

	return root
}

func run(opts *options, loader parser.Loader) error {
	cfg := config.Load(".env")
	applyConfigDefaults(opts, cfg)

	log := logging.New(os.Stderr, logrus.InfoLevel)

	c, err := loadStartingCircuit(opts, loader)
	if err != nil {
		return reportFatal(log, err)
	}

	var trace *report.IterationTraceWriter
	if opts.traceDB != "" {
		trace, err = report.NewIterationTraceWriter(opts.traceDB)
		if err != nil {
			return reportFatal(log, err)
		}
		defer trace.Close()
	}

	var server *report.Server
	if opts.reportAddr != "" {
		server = report.NewServer(c)
		if err := server.Start(opts.reportAddr); err != nil {
			return reportFatal(log, err)
		}
	}

	placers, err := resolvePlacerStages(opts)
	if err != nil {
		return reportFatal(log, err)
	}

	pipeline := &Pipeline{
		Log:      log,
		Trace:    trace,
		Server:   server,
		Seed:     1,
		Placers:  placers,
		ChannelW: opts.channelWidth,
	}

	if _, err := pipeline.Run(c); err != nil {
		return reportFatal(log, err)
	}

	if opts.outputPath != "" {
		if err := parser.WritePlaceFile(opts.outputPath, c); err != nil {
			return reportFatal(log, err)
		}
	}

	return nil
}

func applyConfigDefaults(opts *options, cfg config.Config) {
	if opts.architecturePath == "" {
		opts.architecturePath = cfg.Architecture
	}

	if opts.reportAddr == "" {
		opts.reportAddr = cfg.ReportAddr
	}

	if opts.traceDB == "" {
		opts.traceDB = cfg.TraceDB
	}
}

// loadStartingCircuit implements the three staged entry points of
// spec.md §6: blif -> pack -> place -> route, net -> place -> route, and
// place -> route, dispatching on whichever of --blif/--net/--place was
// given.
func loadStartingCircuit(opts *options, loader parser.Loader) (*circuit.Circuit, error) {
	if opts.architecturePath == "" {
		return nil, errkind.NewInputFormat("", "--architecture is required")
	}

	ctx, err := arch.LoadArchitectureFile(opts.architecturePath)
	if err != nil {
		return nil, err
	}

	switch {
	case opts.blifPath != "":
		return loader.LoadBLIF(opts.blifPath, ctx)

	case opts.netPath != "":
		return loader.LoadNet(opts.netPath, ctx)

	case opts.placePath != "":
		c := circuit.New("circuit", ctx)
		if err := c.BuildGrid(true, 0); err != nil {
			return nil, err
		}

		if err := loader.LoadPlace(opts.placePath, c); err != nil {
			return nil, err
		}

		return c, nil

	default:
		return nil, errkind.NewInputFormat("", "one of --blif, --net or --place is required")
	}
}

// resolvePlacerStages parses --placer flags, defaulting to a random
// placement when --random is given and no --placer was specified, and to
// no placement stage at all when starting from a .place file.
func resolvePlacerStages(opts *options) ([]placerSpec, error) {
	if len(opts.placerFlags) == 0 {
		if opts.random {
			return []placerSpec{{Name: "random", Opts: map[string]float64{}}}, nil
		}

		if opts.placePath != "" {
			return nil, nil
		}

		return nil, fmt.Errorf("cliapp: no --placer given and --random not set for a circuit needing placement")
	}

	specs := make([]placerSpec, 0, len(opts.placerFlags))

	for _, raw := range opts.placerFlags {
		spec, err := parsePlacerSpec(raw)
		if err != nil {
			return nil, err
		}

		specs = append(specs, spec)
	}

	return specs, nil
}

func reportFatal(log logging.Logger, err error) error {
	if kindErr, ok := err.(*errkind.Error); ok {
		log.Error(kindErr.Error(), logging.Fields{"kind": kindErr.Kind().String()})
	} else {
		log.Error(err.Error(), nil)
	}

	return err
}
