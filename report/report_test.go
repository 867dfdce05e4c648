package report_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarchlab/fpgapr/arch"
	"github.com/sarchlab/fpgapr/circuit"
	"github.com/sarchlab/fpgapr/logging"
	"github.com/sarchlab/fpgapr/report"
)

func newTestCircuit(t *testing.T) *circuit.Circuit {
	t.Helper()

	ctx := arch.NewContext()
	ctx.IOCapacity = 4

	ioType, err := ctx.AddBlockType("io", arch.IO, 1, 1, 1, false,
		[]arch.Port{{Name: "outpad", Dir: arch.PortInput, Count: 1}},
		[]arch.Port{{Name: "inpad", Dir: arch.PortOutput, Count: 1}})
	require.NoError(t, err)

	_, err = ctx.AddBlockType("clb", arch.CLB, 1, 1, 1, false,
		[]arch.Port{{Name: "in", Dir: arch.PortInput, Count: 1}},
		[]arch.Port{{Name: "out", Dir: arch.PortOutput, Count: 1}})
	require.NoError(t, err)

	c := circuit.New("t", ctx)

	c.AddBlock(&circuit.Block{Name: "b0", Kind: circuit.KindIO, Type: ioType, Parent: -1})

	require.NoError(t, c.BuildGrid(true, 0))

	return c
}

func TestPrintStageStatisticsLogsBBCost(t *testing.T) {
	c := newTestCircuit(t)

	buf := &bytes.Buffer{}
	log := logging.New(buf, logrus.DebugLevel)

	report.PrintStageStatistics(log, "place", c, nil)

	assert.Contains(t, buf.String(), "stage complete")
	assert.Contains(t, buf.String(), "place")
}

func TestInspectBlockFindsNamedBlock(t *testing.T) {
	c := newTestCircuit(t)

	buf := &bytes.Buffer{}
	err := report.InspectBlock(c, "b0", buf)

	require.NoError(t, err)
	assert.NotEmpty(t, buf.String())
}

func TestInspectBlockReturnsErrorForUnknownName(t *testing.T) {
	c := newTestCircuit(t)

	buf := &bytes.Buffer{}
	err := report.InspectBlock(c, "does-not-exist", buf)

	assert.Error(t, err)
}

func TestIterationTraceWriterBuffersAndFlushes(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "trace.sqlite3")

	w, err := report.NewIterationTraceWriter(dbPath)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	require.NoError(t, w.Write(report.IterationRow{Stage: "route", Itry: 1, PresFac: 0.6}))
	require.NoError(t, w.Flush())
}

func TestCurrentResourceUsageReturnsPositiveMemory(t *testing.T) {
	usage, err := report.CurrentResourceUsage()

	require.NoError(t, err)
	assert.Greater(t, usage.MemoryRSS, uint64(0))
}

func TestServerServesTheSnapshotPassedToUpdate(t *testing.T) {
	c := newTestCircuit(t)

	s := report.NewServer(c)
	require.NoError(t, s.Start("127.0.0.1:0"))

	s.Update(report.Snapshot{
		Stage:         "route",
		Itry:          3,
		OverusedNodes: 1,
		WireLength:    42,
		MaxDelay:      12.5,
		Congestion:    []report.CongestionSummary{{Node: 7, Excess: 2}},
	})

	base := "http://" + s.Addr()

	statsResp, err := http.Get(base + "/api/stats")
	require.NoError(t, err)
	defer statsResp.Body.Close()

	var snap report.Snapshot
	require.NoError(t, json.NewDecoder(statsResp.Body).Decode(&snap))
	assert.Equal(t, "route", snap.Stage)
	assert.Equal(t, 3, snap.Itry)
	assert.Equal(t, 42, snap.WireLength)

	congestionResp, err := http.Get(base + "/api/congestion")
	require.NoError(t, err)
	defer congestionResp.Body.Close()

	var congestion []report.CongestionSummary
	require.NoError(t, json.NewDecoder(congestionResp.Body).Decode(&congestion))
	require.Len(t, congestion, 1)
	assert.Equal(t, 7, congestion[0].Node)
	assert.Equal(t, 2, congestion[0].Excess)
}

func TestServerCongestionIsEmptyBeforeAnyUpdate(t *testing.T) {
	c := newTestCircuit(t)

	s := report.NewServer(c)
	require.NoError(t, s.Start("127.0.0.1:0"))

	resp, err := http.Get("http://" + s.Addr() + "/api/congestion")
	require.NoError(t, err)
	defer resp.Body.Close()

	var congestion []report.CongestionSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&congestion))
	assert.Empty(t, congestion)
}
