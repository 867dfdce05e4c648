package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"

	// Enables pprof's default mux handlers used by collectProfile.
	_ "net/http/pprof"
	"os"
	"runtime/pprof"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"

	"github.com/sarchlab/fpgapr/circuit"
)

// Server exposes read-only JSON endpoints for external tooling to poll
// during a long placement/routing run, grounded on
// monitoring/monitor.go's StartServer. It is off by default and serves
// JSON only — not the interactive GUI the Non-goals exclude.
type Server struct {
	addr string

	mu      sync.Mutex
	circuit *circuit.Circuit
	latest  Snapshot
}

// Addr returns the address the server is actually listening on, valid
// after Start returns without error. Empty before Start is called.
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.addr
}

// Snapshot is the most recently recorded iteration state, served by
// /api/stats. Congestion holds the same overused nodes in detail, served
// separately by /api/congestion.
type Snapshot struct {
	Stage         string              `json:"stage"`
	Itry          int                 `json:"itry"`
	OverusedNodes int                 `json:"overused_nodes"`
	WireLength    int                 `json:"wire_length"`
	MaxDelay      float64             `json:"max_delay"`
	Congestion    []CongestionSummary `json:"-"`
}

// NewServer builds a Server bound to the given circuit. Call Update after
// each iteration and Start to begin serving.
func NewServer(c *circuit.Circuit) *Server {
	return &Server{circuit: c}
}

// Update records the latest iteration snapshot, shown by /api/stats and
// /api/congestion. A nil Server is a no-op, so callers can hold one
// unconditionally whether or not --report-addr was given.
func (s *Server) Update(snap Snapshot) {
	if s == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest = snap
}

// Start listens on addr (":0" for a random free port if empty) and
// serves in the background, printing its listen address to stderr the
// way monitoring/monitor.go does instead of opening a browser.
func (s *Server) Start(addr string) error {
	r := mux.NewRouter()
	r.HandleFunc("/api/stats", s.handleStats)
	r.HandleFunc("/api/congestion", s.handleCongestion)
	r.HandleFunc("/api/resource", s.handleResource)
	r.HandleFunc("/api/profile", s.handleProfile)
	r.HandleFunc("/api/component/{name}", s.handleComponent)

	listenAddr := addr
	if listenAddr == "" {
		listenAddr = ":0"
	}

	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return fmt.Errorf("report: starting server: %w", err)
	}

	s.mu.Lock()
	s.addr = listener.Addr().String()
	s.mu.Unlock()

	fmt.Fprintf(os.Stderr, "report server listening on http://%s\n", listener.Addr())

	go func() {
		_ = http.Serve(listener, r)
	}()

	return nil
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	snap := s.latest
	s.mu.Unlock()

	writeJSON(w, snap)
}

// CongestionSummary is the per-node overuse count above capacity, served
// by /api/congestion.
type CongestionSummary struct {
	Node   int `json:"node"`
	Excess int `json:"excess"`
}

func (s *Server) handleCongestion(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	congestion := s.latest.Congestion
	s.mu.Unlock()

	if congestion == nil {
		congestion = []CongestionSummary{}
	}

	writeJSON(w, congestion)
}

func (s *Server) handleResource(w http.ResponseWriter, _ *http.Request) {
	usage, err := CurrentResourceUsage()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, usage)
}

func (s *Server) handleProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	if err := pprof.StartCPUProfile(buf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	time.Sleep(time.Second)
	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, prof)
}

func (s *Server) handleComponent(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	s.mu.Lock()
	c := s.circuit
	s.mu.Unlock()

	buf := bytes.NewBuffer(nil)
	if err := InspectBlock(c, name, buf); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")

	enc := json.NewEncoder(w)
	_ = enc.Encode(v)
}
