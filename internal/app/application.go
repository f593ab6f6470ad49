package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"mode1090/internal/activitypin"
	"mode1090/internal/console"
	"mode1090/internal/discovery"
	"mode1090/internal/framer"
	"mode1090/internal/geo"
	"mode1090/internal/hotplug"
	"mode1090/internal/httpapi"
	"mode1090/internal/icaocache"
	"mode1090/internal/logging"
	"mode1090/internal/pipeline"
	"mode1090/internal/rawio"
	"mode1090/internal/registry"
	"mode1090/internal/replay"
	"mode1090/internal/roster"
	"mode1090/internal/rtlsdr"
	"mode1090/internal/sbs"
	"mode1090/internal/stats"
)

// Application wires every SPEC_FULL.md component around one
// pipeline.Driver: a Sample Source (device or replay), the fixed roster/
// cache the decoder owns, every configured Sink, and the Observers that
// read the roster/driver without ever mutating them.
type Application struct {
	config Config
	logger *logrus.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	roster *roster.Roster
	cache  *icaocache.Cache

	source pipeline.SampleSource
	driver *pipeline.Driver

	logRotator *logging.LogRotator
	rawOut     *os.File
	rawIn      *os.File
	httpServer *httpapi.Server

	rawSinkForStats *rawio.Writer
	sbsSinkForStats *sbs.Writer

	collector *stats.Collector
	reg       *registry.Registry
	indicator activitypin.Indicator
}

// NewApplication builds an Application from config. Heavyweight resources
// (devices, files, sockets) are opened in Start/initializeComponents, not
// here, matching the teacher's NewApplication/initializeComponents split.
func NewApplication(config Config) *Application {
	ctx, cancel := context.WithCancel(context.Background())

	logger := logrus.New()
	if config.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	return &Application{
		config: config,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start initializes every component, launches the pipeline and Observers,
// and blocks until a shutdown signal arrives.
func (app *Application) Start() error {
	app.logger.WithFields(logrus.Fields{
		"version":    Version,
		"build_time": BuildTime,
		"git_commit": GitCommit,
	}).Info("Starting mode1090 1090MHz Mode S/ADS-B decoder")

	if err := app.initializeComponents(); err != nil {
		return fmt.Errorf("failed to initialize components: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if err := app.run(); err != nil {
		app.logger.WithError(err).Error("Application error")
		return err
	}

	<-sigChan
	app.logger.Info("Received shutdown signal")
	app.shutdown()

	return nil
}

// initializeComponents builds the roster, cache, Sample Source, every
// configured Sink, and the Driver that ties them together, per spec §4/§5.
func (app *Application) initializeComponents() error {
	app.roster = roster.New(DefaultRosterTTL)
	app.cache = icaocache.New()

	source, err := app.openSource()
	if err != nil {
		return fmt.Errorf("failed to open sample source: %w", err)
	}
	app.source = source

	sinks, err := app.buildSinks()
	if err != nil {
		return fmt.Errorf("failed to build sinks: %w", err)
	}

	app.driver = pipeline.New(pipeline.Config{
		Source:     app.source,
		Logger:     app.logger,
		Opts:       framer.Options{FixErrors: true, Aggressive: app.config.Aggressive},
		Cache:      app.cache,
		Roster:     app.roster,
		Sinks:      sinks,
		Aggressive: app.config.Aggressive,
		NowMs:      func() int64 { return time.Now().UnixMilli() },
	})

	app.collector = stats.NewCollector(app.driver, app.roster)
	for _, ns := range app.namedSinks() {
		app.collector.AddSink(ns.name, ns.sink)
	}

	if app.httpServer != nil {
		app.collector.AddSink("http_ws", app.httpServer)
	}

	return nil
}

// openSource picks the Sample Source per spec §6.1/§6.2: a replay file if
// configured, otherwise the physical RTL-SDR device.
func (app *Application) openSource() (pipeline.SampleSource, error) {
	if app.config.ReplayPath != "" {
		return replay.Open(app.config.ReplayPath, app.config.ReplayPasses)
	}

	src, err := rtlsdr.New(app.config.DeviceIndex, app.logger)
	if err != nil {
		return nil, err
	}
	if err := src.Configure(app.config.Frequency, app.config.SampleRate, app.config.Gain); err != nil {
		return nil, fmt.Errorf("failed to configure RTL-SDR: %w", err)
	}
	if err := src.Start(); err != nil {
		return nil, fmt.Errorf("failed to start RTL-SDR capture: %w", err)
	}
	return src, nil
}

type namedSink struct {
	name string
	sink interface{}
}

// namedSinks lists every sink worth a named entry in the statistics dump,
// separate from buildSinks' pipeline.Sink list since a few (the indicator)
// aren't pipeline.Sinks at all.
func (app *Application) namedSinks() []namedSink {
	var out []namedSink
	if app.rawOut != nil {
		out = append(out, namedSink{name: "raw_out", sink: app.rawSinkForStats})
	}
	if app.logRotator != nil {
		out = append(out, namedSink{name: "sbs", sink: app.sbsSinkForStats})
	}
	return out
}

// buildSinks opens every configured Sink (§6.3 raw output, §6.5 SBS, §6.6
// HTTP/JSON) plus the optional GPIO activity indicator, which rides along
// as a pipeline.Sink too since it fires on every accepted decode.
func (app *Application) buildSinks() ([]pipeline.Sink, error) {
	var sinks []pipeline.Sink

	var err error
	app.logRotator, err = logging.NewLogRotator(app.config.LogDir, app.config.LogRotateUTC, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize log rotator: %w", err)
	}
	app.sbsSinkForStats = sbs.NewWriter(app.logRotator)
	sinks = append(sinks, app.sbsSinkForStats)

	if app.config.RawOutPath != "" {
		f, err := os.OpenFile(app.config.RawOutPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open raw output %s: %w", app.config.RawOutPath, err)
		}
		app.rawOut = f
		app.rawSinkForStats = rawio.NewWriter(f)
		sinks = append(sinks, app.rawSinkForStats)
	}

	if app.config.HTTPAddr != "" {
		app.httpServer = httpapi.NewServer(app.roster, app.config.WebRoot, app.config.DefaultPage, app.logger)
		sinks = append(sinks, app.httpServer)
	}

	if app.config.ActivityGPIOChip != "" {
		ind, err := activitypin.Open(app.config.ActivityGPIOChip, app.config.ActivityGPIOOffset)
		if err != nil {
			return nil, fmt.Errorf("failed to open activity indicator: %w", err)
		}
		app.indicator = ind
		sinks = append(sinks, activityBlipSink{ind})
	}

	return sinks, nil
}

// activityBlipSink adapts an activitypin.Indicator into a pipeline.Sink:
// every accepted (CRC-OK) decode blips the line, per spec §6.12.
type activityBlipSink struct {
	ind activitypin.Indicator
}

func (a activityBlipSink) Accept(*framer.Message, roster.Record) {
	a.ind.Blip()
}

// run launches the pipeline and every Observer goroutine, per spec §5's
// single-decoder-thread architecture plus this repo's Observer set.
func (app *Application) run() error {
	app.logger.Info("Starting capture and ADS-B demodulation")

	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		app.logRotator.Start(app.ctx)
	}()

	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		if err := app.driver.Run(); err != nil {
			app.logger.WithError(err).Error("pipeline run failed")
		}
	}()

	if app.config.RawInPath != "" {
		f, err := os.Open(app.config.RawInPath)
		if err != nil {
			return fmt.Errorf("failed to open raw input %s: %w", app.config.RawInPath, err)
		}
		app.rawIn = f
		app.wg.Add(1)
		go func() {
			defer app.wg.Done()
			app.runRawInput(f)
		}()
	}

	if app.httpServer != nil {
		app.wg.Add(1)
		go func() {
			defer app.wg.Done()
			app.runHTTP()
		}()

		if app.config.MDNSName != "" {
			app.wg.Add(1)
			go func() {
				defer app.wg.Done()
				if err := discovery.Advertise(app.ctx, app.logger, app.config.MDNSName, app.config.MDNSHost, httpPort(app.config.HTTPAddr)); err != nil {
					app.logger.WithError(err).Warn("mDNS advertisement stopped")
				}
			}()
		}
	}

	if app.config.RegistryPath != "" || app.config.Console {
		reg, err := registry.Open(app.config.RegistryPath)
		if err != nil {
			app.logger.WithError(err).Warn("failed to load aircraft registry, continuing without it")
		} else {
			app.reg = reg
		}
	}

	if app.config.Console {
		var station *geo.Station
		if app.config.HaveStation {
			station = &geo.Station{Lat: app.config.StationLat, Lon: app.config.StationLon}
		}
		renderer := console.NewRenderer(app.roster, app.reg, station, os.Stdout)
		app.wg.Add(1)
		go func() {
			defer app.wg.Done()
			renderer.Run(app.ctx)
		}()
	}

	if app.config.HotplugWatch {
		events := make(chan hotplug.Event, 4)
		app.wg.Add(1)
		go func() {
			defer app.wg.Done()
			if err := hotplug.Watch(app.ctx, app.logger, events); err != nil {
				app.logger.WithError(err).Warn("hotplug watch stopped")
			}
		}()
		app.wg.Add(1)
		go func() {
			defer app.wg.Done()
			for {
				select {
				case <-app.ctx.Done():
					return
				case ev := <-events:
					if ev.Attached {
						app.logger.Info("RTL-SDR device attached")
					} else {
						app.logger.Warn("RTL-SDR device detached")
					}
				}
			}
		}()
	}

	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		app.reportStatistics()
	}()

	app.logger.Info("All components started successfully")
	return nil
}

// runRawInput implements spec §6.4: accepted raw lines re-enter the Field
// Decoder as if locally demodulated.
func (app *Application) runRawInput(f *os.File) {
	rd := rawio.NewReader(f)
	for {
		select {
		case <-app.ctx.Done():
			return
		default:
		}
		raw, ok := rd.Next()
		if !ok {
			if rd.Err() != nil {
				app.logger.WithError(rd.Err()).Debug("raw input closed")
			}
			return
		}
		app.driver.InjectRaw(raw, time.Now().UnixMilli())
	}
}

// runHTTP serves spec §6.6's HTTP/JSON interface plus /metrics, until ctx
// is cancelled.
func (app *Application) runHTTP() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", app.collector.Handler())
	mux.Handle("/", app.httpServer.Handler())
	server := &http.Server{Addr: app.config.HTTPAddr, Handler: mux}

	go func() {
		<-app.ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		app.logger.WithError(err).Error("HTTP server failed")
	}
}

// reportStatistics logs the running statistics dump every 30s, mirroring
// the teacher's reportStatistics cadence, and once more at shutdown per
// spec §6.7.
func (app *Application) reportStatistics() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-app.ctx.Done():
			return
		case <-ticker.C:
			stats.Dump(app.logger, app.collector.Snapshot())
		}
	}
}

// shutdown gracefully tears down every component, per the teacher's
// Application.shutdown shape.
func (app *Application) shutdown() {
	app.logger.Info("Shutting down application")
	app.cancel()
	app.driver.Stop()

	done := make(chan struct{})
	go func() {
		app.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		app.logger.Info("All goroutines finished")
	case <-time.After(5 * time.Second):
		app.logger.Warn("Shutdown timeout, forcing exit")
	}

	if app.collector != nil {
		stats.Dump(app.logger, app.collector.Snapshot())
	}

	if app.source != nil {
		_ = app.source.Close()
	}
	if app.logRotator != nil {
		_ = app.logRotator.Close()
	}
	if app.rawOut != nil {
		_ = app.rawOut.Close()
	}
	if app.rawIn != nil {
		_ = app.rawIn.Close()
	}
	if app.indicator != nil {
		_ = app.indicator.Close()
	}

	app.logger.Info("Shutdown completed")
}

// httpPort extracts the numeric port from an "addr:port" listen address,
// for the mDNS advertisement's Port field.
func httpPort(addr string) int {
	var port int
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			fmt.Sscanf(addr[i+1:], "%d", &port)
			break
		}
	}
	return port
}
