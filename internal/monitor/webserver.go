// Package monitor serves the planner's diagnostics HTTP interface:
// run status, retained frames, and recorded cycles.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/M-Vagrant/apollo/internal/httputil"
	"github.com/M-Vagrant/apollo/internal/monitoring"
	"github.com/M-Vagrant/apollo/internal/planning"
	"github.com/M-Vagrant/apollo/internal/version"
)

// CycleSource reads recorded cycles for the cycles and chart endpoints.
// *sqlite.CycleStore satisfies it.
type CycleSource interface {
	ListCycles(ctx context.Context, runID string, limit int) ([]*planning.CycleRecord, error)
}

// WebServer handles the HTTP interface for monitoring the planning loop.
type WebServer struct {
	address string
	runID   string
	history *planning.FrameHistory
	cycles  CycleSource
	server  *http.Server
}

// WebServerConfig contains configuration options for the web server.
type WebServerConfig struct {
	Address string
	RunID   string
	History *planning.FrameHistory
	Cycles  CycleSource
}

// NewWebServer creates a new web server with the provided configuration.
func NewWebServer(config WebServerConfig) *WebServer {
	ws := &WebServer{
		address: config.Address,
		runID:   config.RunID,
		history: config.History,
		cycles:  config.Cycles,
	}

	ws.server = &http.Server{
		Addr:    ws.address,
		Handler: ws.setupRoutes(),
	}

	return ws
}

// Start begins the HTTP server in a goroutine and blocks until the context
// is cancelled or the listener fails, then shuts the server down.
func (ws *WebServer) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		monitoring.Logf("monitor: serving diagnostics on %s", ws.address)
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("monitor server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := ws.server.Shutdown(shutdownCtx); err != nil {
		monitoring.Logf("monitor: shutdown error: %v", err)
		// Force close the server if graceful shutdown fails
		if err := ws.server.Close(); err != nil {
			monitoring.Logf("monitor: force close error: %v", err)
		}
	}

	monitoring.Logf("monitor: stopped")
	return nil
}

// setupRoutes configures the HTTP routes and handlers
func (ws *WebServer) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", ws.handleHealth)
	mux.HandleFunc("/api/planning/status", ws.handleStatus)
	mux.HandleFunc("/api/planning/history", ws.handleHistory)
	mux.HandleFunc("/api/planning/frame", ws.handleFrame)
	mux.HandleFunc("/api/planning/cycles", ws.handleCycles)
	mux.HandleFunc("/debug/charts/cycles", ws.handleCyclesChart)

	return mux
}

// handleHealth handles the health check endpoint
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status": "ok", "service": "planner", "version": "%s", "timestamp": "%s"}`,
		version.Version, time.Now().UTC().Format(time.RFC3339))
}

type statusResponse struct {
	Service         string        `json:"service"`
	RunID           string        `json:"run_id"`
	RetainedFrames  int           `json:"retained_frames"`
	HistoryCapacity int           `json:"history_capacity"`
	Latest          *frameSummary `json:"latest,omitempty"`
}

// handleStatus reports the run id and the most recent retained frame.
func (ws *WebServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	resp := statusResponse{Service: "planner", RunID: ws.runID}
	if ws.history != nil {
		resp.RetainedFrames = ws.history.Len()
		resp.HistoryCapacity = ws.history.Cap()
		if latest := ws.history.Latest(); latest != nil {
			s := summarizeFrame(latest)
			resp.Latest = &s
		}
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// handleHistory lists the sequence numbers of the retained frames.
func (ws *WebServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if ws.history == nil {
		httputil.InternalServerError(w, "no frame history configured")
		return
	}

	seqs := ws.history.Seqs()
	if seqs == nil {
		seqs = []uint32{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"run_id": ws.runID, "seqs": seqs})
}

// handleFrame returns the summary of one retained frame.
// Query params:
//
//	seq (required)
func (ws *WebServer) handleFrame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if ws.history == nil {
		httputil.InternalServerError(w, "no frame history configured")
		return
	}

	seqParam := r.URL.Query().Get("seq")
	if seqParam == "" {
		httputil.BadRequest(w, "missing 'seq' parameter")
		return
	}
	seq, err := strconv.ParseUint(seqParam, 10, 32)
	if err != nil {
		httputil.BadRequest(w, fmt.Sprintf("invalid 'seq' parameter: %v", err))
		return
	}

	frame := ws.history.Get(uint32(seq))
	if frame == nil {
		httputil.NotFound(w, fmt.Sprintf("frame %d not retained", seq))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, summarizeFrame(frame))
}

// handleCycles returns the most recent recorded cycles of a run.
// Query params:
//
//	run (optional, defaults to the current run)
//	limit (optional, default 50)
func (ws *WebServer) handleCycles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if ws.cycles == nil {
		httputil.InternalServerError(w, "no cycle store configured")
		return
	}

	runID := r.URL.Query().Get("run")
	if runID == "" {
		runID = ws.runID
	}
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 1000 {
			limit = v
		}
	}

	recs, err := ws.cycles.ListCycles(r.Context(), runID, limit)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("list cycles: %v", err))
		return
	}

	summaries := make([]cycleSummary, 0, len(recs))
	for _, rec := range recs {
		summaries = append(summaries, summarizeCycle(rec))
	}
	httputil.WriteJSON(w, http.StatusOK, summaries)
}

type frameSummary struct {
	Frame            string            `json:"frame"`
	Seq              uint32            `json:"seq"`
	PoseX            float64           `json:"pose_x"`
	PoseY            float64           `json:"pose_y"`
	PoseHeading      float64           `json:"pose_heading"`
	ObstacleIDs      []string          `json:"obstacle_ids"`
	ReferenceLines   int               `json:"reference_lines"`
	PrimaryLengthM   float64           `json:"primary_length_m"`
	TrajectoryPoints int               `json:"trajectory_points"`
	Decisions        []decisionSummary `json:"decisions"`
}

type decisionSummary struct {
	ObstacleID   string  `json:"obstacle_id"`
	S            float64 `json:"s"`
	L            float64 `json:"l"`
	Longitudinal string  `json:"longitudinal"`
	Lateral      string  `json:"lateral"`
}

func summarizeFrame(f *planning.Frame) frameSummary {
	pose := f.Localization().Pose
	s := frameSummary{
		Frame:            f.DebugString(),
		Seq:              f.SequenceNum(),
		PoseX:            pose.Position.X,
		PoseY:            pose.Position.Y,
		PoseHeading:      pose.Heading,
		ObstacleIDs:      []string{},
		ReferenceLines:   len(f.ReferenceLineInfos()),
		TrajectoryPoints: len(f.Trajectory().Points),
		Decisions:        []decisionSummary{},
	}

	if obstacles := f.Obstacles(); obstacles != nil {
		s.ObstacleIDs = obstacles.IDs()
	}
	if line := f.ReferenceLine(); line != nil {
		s.PrimaryLengthM = line.Length()
	}
	if pd := f.PathDecision(); pd != nil {
		for _, d := range pd.Items() {
			s.Decisions = append(s.Decisions, decisionSummary{
				ObstacleID:   d.ObstacleID,
				S:            d.SL.S,
				L:            d.SL.L,
				Longitudinal: string(d.Longitudinal),
				Lateral:      string(d.Lateral),
			})
		}
	}

	return s
}

type cycleSummary struct {
	RunID            string          `json:"run_id"`
	Seq              uint32          `json:"seq"`
	Status           string          `json:"status"`
	ErrorKind        string          `json:"error_kind,omitempty"`
	Error            string          `json:"error,omitempty"`
	StartedAt        string          `json:"started_at"`
	DurationMS       float64         `json:"duration_ms"`
	PoseX            float64         `json:"pose_x"`
	PoseY            float64         `json:"pose_y"`
	ObstacleCount    int             `json:"obstacle_count"`
	ReferenceLines   int             `json:"reference_lines"`
	PrimaryLengthM   float64         `json:"primary_length_m"`
	TrajectoryPoints int             `json:"trajectory_points"`
	Inputs           json.RawMessage `json:"inputs,omitempty"`
}

func summarizeCycle(rec *planning.CycleRecord) cycleSummary {
	return cycleSummary{
		RunID:            rec.RunID,
		Seq:              rec.Seq,
		Status:           rec.Status,
		ErrorKind:        rec.ErrorKind,
		Error:            rec.Error,
		StartedAt:        rec.StartedAt.UTC().Format(time.RFC3339Nano),
		DurationMS:       rec.DurationMS,
		PoseX:            rec.PoseX,
		PoseY:            rec.PoseY,
		ObstacleCount:    rec.ObstacleCount,
		ReferenceLines:   rec.ReferenceLines,
		PrimaryLengthM:   rec.PrimaryLengthM,
		TrajectoryPoints: rec.TrajectoryPoints,
		Inputs:           json.RawMessage(rec.Inputs),
	}
}
