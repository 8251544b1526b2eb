// Command planner runs the cyclic planning loop against a synthetic demo
// scenario: each tick it assembles a frame from generated localization,
// routing, and prediction inputs, fills a stub trajectory along the primary
// reference line, records the cycle to SQLite, and serves diagnostics over
// HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/M-Vagrant/apollo/internal/config"
	"github.com/M-Vagrant/apollo/internal/db"
	"github.com/M-Vagrant/apollo/internal/monitor"
	"github.com/M-Vagrant/apollo/internal/msg"
	"github.com/M-Vagrant/apollo/internal/planning"
	storage "github.com/M-Vagrant/apollo/internal/storage/sqlite"
	"github.com/M-Vagrant/apollo/internal/version"
)

var (
	configFile = flag.String("config", "", "Path to planning config JSON (defaults apply when empty)")
	dbFile     = flag.String("db", "planning_data.db", "Path to the SQLite database file")
	listen     = flag.String("listen", ":8084", "HTTP listen address for diagnostics")
	cycleCount = flag.Int("cycles", 0, "Number of cycles to run before exiting (0 = run until interrupted)")
	routeLanes = flag.Int("route-lanes", 3, "Number of lanes chained on the demo route")
	obstacles  = flag.Int("obstacles", 6, "Number of predicted agents in the demo scenario")
	seed       = flag.Int64("seed", 42, "Random seed for the demo scenario")
)

// Demo trajectory horizon.
const (
	trajectoryHorizonSec = 3.0
	trajectoryStepSec    = 0.25
)

// fillDemoTrajectory stands in for downstream trajectory generation: it
// samples the primary reference line ahead of the vehicle at constant
// speed so the output record and its persistence see realistic data.
func fillDemoTrajectory(frame *planning.Frame) error {
	line := frame.ReferenceLine()
	if line == nil {
		return fmt.Errorf("frame %d has no primary reference line", frame.SequenceNum())
	}

	start := frame.PlanningStartPoint()
	speed := start.V
	if speed <= 0 {
		speed = 5
	}
	s0 := line.XYToSL(start.Position).S

	traj := frame.MutableTrajectory()
	traj.Header = msg.Header{
		TimestampSec: frame.Localization().Header.TimestampSec,
		Module:       "planning",
		Sequence:     frame.SequenceNum(),
	}
	traj.Points = traj.Points[:0]
	for tSec := 0.0; tSec <= trajectoryHorizonSec+1e-9; tSec += trajectoryStepSec {
		s := s0 + speed*tSec
		if s > line.Length() {
			s = line.Length()
		}
		rp := line.PointAt(s)
		traj.Points = append(traj.Points, msg.TrajectoryPoint{
			Position:     rp.Pos,
			Theta:        rp.Heading,
			Kappa:        rp.Kappa,
			S:            s - s0,
			V:            speed,
			RelativeTime: tSec,
		})
	}
	traj.TotalPathLength = traj.Points[len(traj.Points)-1].S
	traj.TotalTime = trajectoryHorizonSec
	traj.Gear = "DRIVE"

	return nil
}

func loadConfig(path string) (*config.PlanningConfig, error) {
	if path == "" {
		return config.EmptyPlanningConfig(), nil
	}
	return config.LoadPlanningConfig(path)
}

func main() {
	flag.Parse()

	cfg, err := loadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load planning config: %v", err)
	}

	database, err := db.Open(*dbFile)
	if err != nil {
		log.Fatalf("Failed to open planning database: %v", err)
	}
	defer database.Close()

	if err := database.MigrateUp(); err != nil {
		log.Fatalf("Failed to migrate planning database: %v", err)
	}

	gen := planning.NewScenarioGenerator(*seed)
	gen.RouteLanes = *routeLanes
	gen.AgentCount = *obstacles

	routeMap, _, err := gen.BuildRouteMap(cfg.GetRouteSnapMaxM())
	if err != nil {
		log.Fatalf("Failed to build demo route map: %v", err)
	}

	smoother := planning.NewSplineSmoother()
	smoother.Configure(cfg.SmootherConfig())

	provider := planning.NewReferenceLineProvider(
		routeMap, smoother, cfg.GetLookBackwardM(), cfg.GetLookForwardM(),
	)

	store := storage.NewCycleStore(database.DB)
	runID := uuid.New().String()

	planner := planning.NewPlanner(provider, store, planning.PlannerOptions{
		RunID:            runID,
		EnablePrediction: cfg.GetEnablePrediction(),
		RecordInputs:     cfg.GetRecordInputs(),
		HistoryCapacity:  cfg.GetMaxHistoryFrames(),
		Downstream:       fillDemoTrajectory,
	})

	webServer := monitor.NewWebServer(monitor.WebServerConfig{
		Address: *listen,
		RunID:   runID,
		History: planner.History(),
		Cycles:  store,
	})

	log.Printf("Planner %s (%s) run %s: %d lanes, %d agents, cycle period %s",
		version.Version, version.GitSHA, runID, *routeLanes, *obstacles, cfg.GetCyclePeriod())

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := webServer.Start(ctx); err != nil {
			log.Printf("Diagnostics server error: %v", err)
			stop()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		// Reaching the cycle budget unwinds the whole process.
		defer stop()

		ticker := time.NewTicker(cfg.GetCyclePeriod())
		defer ticker.Stop()

		completed := 0
		failed := 0
		for {
			select {
			case <-ctx.Done():
				log.Printf("Planning loop stopped after %d cycles (%d failed)", completed, failed)
				return
			case <-ticker.C:
				frame, err := planner.RunCycle(ctx, gen.NextInput())
				completed++
				if err != nil {
					failed++
					log.Printf("Cycle %d failed: %v", planner.SequenceNum(), err)
				} else if completed%50 == 0 {
					log.Printf("%s complete, retained %d frames", frame.DebugString(), planner.History().Len())
				}
				if *cycleCount > 0 && completed >= *cycleCount {
					log.Printf("Cycle budget reached: %d cycles (%d failed)", completed, failed)
					return
				}
			}
		}
	}()

	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
