package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/scan-sim/internal/config"
	"github.com/banshee-data/scan-sim/internal/monitor"
	"github.com/banshee-data/scan-sim/internal/monitoring"
	"github.com/banshee-data/scan-sim/internal/network"
	"github.com/banshee-data/scan-sim/internal/scene"
	"github.com/banshee-data/scan-sim/internal/sim"
	"github.com/banshee-data/scan-sim/internal/simdb"
	"github.com/banshee-data/scan-sim/internal/timeutil"
	"github.com/banshee-data/scan-sim/internal/version"
)

var (
	listen      = flag.String("listen", ":8082", "HTTP monitor listen address")
	configFile  = flag.String("config", "", "Path to simulator config JSON (defaults apply if empty)")
	sensorID    = flag.String("sensor-id", "sim-01", "Sensor identifier attached to emitted frames")
	trackFile   = flag.String("track", "", "Az-transform track CSV (overrides config)")
	sceneFile   = flag.String("scene", "", "Scene JSON (default: built-in demo scene)")
	dbFile      = flag.String("db", "scan_sim.db", "SQLite database file for detections (empty disables)")
	forward     = flag.Bool("forward", false, "Forward detection frames over UDP")
	forwardAddr = flag.String("forward-addr", "localhost", "Address to forward detection frames to")
	forwardPort = flag.Int("forward-port", 2370, "Port to forward detection frames to")
	duration    = flag.Duration("duration", 0, "Stop after this long (0 runs until the track is exhausted)")
	logInterval = flag.Int("log-interval", 2, "Statistics logging interval in seconds")
	recentCap   = flag.Int("recent", 20000, "Detections kept for the monitor endpoints")
)

func main() {
	flag.Parse()
	monitoring.Logf("scan-sim %s", version.String())

	cfg := config.Empty()
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}
	params := cfg.Params()

	trackPath := cfg.GetTrackFile()
	if *trackFile != "" {
		trackPath = *trackFile
	}
	track, err := sim.LoadTrack(trackPath, params.TickPeriod())
	if err != nil {
		log.Fatalf("failed to load az-transform track: %v", err)
	}

	var world *scene.Scene
	scenePath := cfg.GetSceneFile()
	if *sceneFile != "" {
		scenePath = *sceneFile
	}
	if scenePath != "" {
		world, err = scene.Load(scenePath)
		if err != nil {
			log.Fatalf("failed to load scene: %v", err)
		}
	} else {
		world = scene.Demo()
	}

	stats := monitoring.NewTickStats()
	recent := monitor.NewRecentDetections(*recentCap)
	hub := monitor.NewHub(*sensorID)

	sinks := []sim.DetectionSink{recent, hub}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *dbFile != "" {
		db, err := simdb.Open(*dbFile)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		dbSink, err := simdb.NewSink(db, params)
		if err != nil {
			log.Fatalf("failed to start run: %v", err)
		}
		monitoring.Logf("recording run %s to %s", dbSink.RunID(), *dbFile)
		sinks = append(sinks, dbSink)
	}

	if *forward {
		forwarder, err := network.NewDetectionForwarder(
			*forwardAddr, *forwardPort, *sensorID, stats, time.Duration(*logInterval)*time.Second)
		if err != nil {
			log.Fatalf("failed to create detection forwarder: %v", err)
		}
		defer forwarder.Close()
		forwarder.Start(ctx)
		sinks = append(sinks, forwarder)
	}

	sensor, err := sim.NewSensor(params, track, sim.FixedPose{P: sim.IdentityPose(*sensorID)}, world, sinks...)
	if err != nil {
		log.Fatalf("failed to build sensor: %v", err)
	}
	monitoring.Logf("sensor %s: %d rays/tick, %d ticks/rev, track covers %.0fs",
		*sensorID, params.RaysPerTick(), params.TickRate/params.ScanRate, track.Duration())

	var wg sync.WaitGroup

	ws := monitor.NewWebServer(monitor.WebServerConfig{
		Address:  *listen,
		SensorID: *sensorID,
		Params:   params,
		Stats:    stats,
		Recent:   recent,
		Hub:      hub,
	})
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := ws.Start(ctx); err != nil {
			monitoring.Logf("monitor server error: %v", err)
			stop()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		runLoop(ctx, timeutil.RealClock{}, sensor, stats, params)
		stop()
	}()

	wg.Wait()
	hub.Shutdown(context.Background())
}

// runLoop drives the fixed-rate tick loop until cancellation, the optional
// duration limit, or track exhaustion.
func runLoop(ctx context.Context, clock timeutil.Clock, sensor *sim.Sensor, stats *monitoring.TickStats, params sim.Params) {
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	ticker := clock.NewTicker(time.Duration(float64(time.Second) * params.TickPeriod()))
	defer ticker.Stop()

	statsTicker := clock.NewTicker(time.Duration(*logInterval) * time.Second)
	defer statsTicker.Stop()

	raysPerTick := params.RaysPerTick()
	var tick uint64

	for {
		select {
		case <-ctx.Done():
			return
		case <-statsTicker.C():
			ticks, rays, detections, dropped, skipped, dur := stats.GetAndReset()
			monitoring.Logf("%d ticks, %d rays, %d detections in %.1fs (%d dropped, %d skipped)",
				ticks, rays, detections, dur.Seconds(), dropped, skipped)
		case <-ticker.C():
			detections, err := sensor.Tick(ctx, tick)
			switch {
			case err == nil:
				stats.AddTick(raysPerTick, len(detections))
			case errors.Is(err, sim.ErrOutOfRange):
				// Track exhausted: nothing left to scan.
				monitoring.Logf("az-transform track exhausted at tick %d, stopping", tick)
				return
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				return
			default:
				stats.AddSkipped()
				monitoring.Logf("tick %d failed: %v", tick, err)
			}
			tick++
		}
	}
}
