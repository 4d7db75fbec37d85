// Package admin exposes a small JSON API over a running bridge.
package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"waterops-bridge/internal/bridge"
	"waterops-bridge/internal/telemetry"
)

// Server reports run status and telemetry snapshots for one bridge.
// The stop callback requests a clean shutdown of the whole process.
type Server struct {
	Bridge *bridge.Bridge
	stop   func()
	mux    *http.ServeMux
}

func NewServer(b *bridge.Bridge, stop func()) *Server {
	s := &Server{Bridge: b, stop: stop, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/status", s.handleStatus)
	s.mux.HandleFunc("/telemetry", s.handleTelemetry)
	s.mux.HandleFunc("/events", s.handleEvents)
	s.mux.HandleFunc("/resources", s.handleResources)
	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/stop", s.handleStop)
}

// Start serves the API until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

type statusResponse struct {
	PlantID     string                    `json:"plant_id"`
	RunID       string                    `json:"run_id"`
	State       string                    `json:"state"`
	LinkUp      bool                      `json:"link_up"`
	Cycle       uint64                    `json:"cycle"`
	SimTimeS    float64                   `json:"sim_time_s"`
	LastCycleMS float64                   `json:"last_cycle_ms"`
	Overview    telemetry.NetworkOverview `json:"overview"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	b := s.Bridge
	resp := statusResponse{
		PlantID:     b.PlantID(),
		RunID:       b.RunID(),
		State:       b.State().String(),
		LinkUp:      b.LinkUp(),
		Cycle:       b.Cycles(),
		SimTimeS:    b.SimTimeS(),
		LastCycleMS: b.LastCycleMS(),
		Overview:    b.Overview(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

type telemetryResponse struct {
	Controls  telemetry.ControlFrame   `json:"controls"`
	Telemetry telemetry.TelemetryFrame `json:"telemetry"`
}

func (s *Server) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	cf, tf := s.Bridge.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(telemetryResponse{Controls: cf, Telemetry: tf})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.Bridge.Events())
}

type resourceResponse struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (s *Server) handleResources(w http.ResponseWriter, r *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	memInfo, err := proc.MemoryInfo()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resourceResponse{CPUPercent: cpuPercent, MemorySize: memInfo.RSS})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	if s.stop != nil {
		s.stop()
	}
	w.WriteHeader(http.StatusNoContent)
}
