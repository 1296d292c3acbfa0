// Command ls-sights is a terminal celestial navigation sight reduction tool.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/litescript/ls-sights/internal/celnav"
	"github.com/litescript/ls-sights/internal/geopos"
	"github.com/litescript/ls-sights/internal/logging"
	"github.com/litescript/ls-sights/internal/metrics"
	"github.com/litescript/ls-sights/internal/plot"
	"github.com/litescript/ls-sights/internal/prefs"
	"github.com/litescript/ls-sights/internal/report"
	"github.com/litescript/ls-sights/internal/sight"
	"github.com/litescript/ls-sights/internal/state"
	"github.com/litescript/ls-sights/internal/ui"
)

// CLI flags for headless mode
var (
	hsFlag       string
	bodyFlag     string
	icFlag       float64
	eyeFlag      int
	limbFlag     string
	latFlag      string
	lonFlag      string
	utcFlag      string
	ghaFlag      string
	decFlag      string
	distanceFlag float64
	jsonMode     bool
	saveMode     bool
	summaryMode  bool
	geojsonPath  string
)

func main() {
	// Parse flags
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	logFile := flag.String("log-file", "", "Write logs to file (the TUI discards logs otherwise)")
	providerFlag := flag.String("provider", "", "Geographic position source: service, horizons, auto (default from preferences)")
	serviceURL := flag.String("service-url", "", "Geographic position service URL (default from preferences)")
	configDir := flag.String("config-dir", "", "Directory for preferences and saved sights (default: user config dir)")
	metricsAddr := flag.String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")

	flag.StringVar(&hsFlag, "hs", "", "Sextant altitude, e.g. \"43 40.0\" (runs a headless reduction)")
	flag.StringVar(&bodyFlag, "body", "", "Observed body, e.g. Sun, Moon, Vega")
	flag.Float64Var(&icFlag, "ic", 0, "Index correction in minutes (default from preferences)")
	flag.IntVar(&eyeFlag, "eye", 0, "Height of eye in feet (default from preferences)")
	flag.StringVar(&limbFlag, "limb", "center", "Observed limb: lower, upper, center")
	flag.StringVar(&latFlag, "lat", "", "Assumed latitude, e.g. \"N19 00.0\" (default from preferences)")
	flag.StringVar(&lonFlag, "lon", "", "Assumed longitude, e.g. \"W156 00.0\" (default from preferences)")
	flag.StringVar(&utcFlag, "utc", "", "Time of the sight in UTC, e.g. \"2022-12-22 21:00:00\" (default: now)")
	flag.StringVar(&ghaFlag, "gha", "", "GHA of the body; with -dec, skips the lookup")
	flag.StringVar(&decFlag, "dec", "", "Declination of the body, e.g. \"S23 24.1\"; with -gha, skips the lookup")
	flag.Float64Var(&distanceFlag, "distance", 0, "Distance to the body in km, used with -gha/-dec (required for the Sun and Moon)")
	flag.BoolVar(&jsonMode, "json", false, "Print the reduction as JSON")
	flag.BoolVar(&saveMode, "save", false, "Save the reduced sight")
	flag.BoolVar(&summaryMode, "summary", false, "Print saved sights instead of TUI")
	flag.StringVar(&geojsonPath, "geojson", "", "Write active lines of position as GeoJSON (use - for stdout)")
	flag.Parse()

	headless := hsFlag != "" || summaryMode || geojsonPath != ""

	// Set up logging
	logger := logging.New(logging.ParseLevel(*logLevel))
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logger.SetOutput(f)
	} else if !headless {
		// Anything written to stderr would corrupt the alt screen.
		logger.SetOutput(io.Discard)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	// Initialize components
	dir := *configDir
	if dir == "" {
		d, err := prefs.DefaultDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		dir = d
	}

	prefsFile := prefs.NewFile(filepath.Join(dir, prefs.FileName))
	p, err := prefsFile.Load()
	if err != nil {
		logger.Warn("load preferences", "err", err)
	}
	if *providerFlag != "" || *serviceURL != "" {
		if *providerFlag != "" {
			p.Provider = *providerFlag
		}
		if *serviceURL != "" {
			p.ServiceURL = *serviceURL
		}
		if err := prefsFile.Update(func(saved *prefs.Prefs) {
			saved.Provider, saved.ServiceURL = p.Provider, p.ServiceURL
		}); err != nil {
			logger.Warn("save preferences", "err", err)
		}
	}

	store, err := sight.OpenFileStore(filepath.Join(dir, sight.FileName))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var collector *metrics.Collector
	if *metricsAddr != "" {
		collector, err = metrics.NewCollector(nil)
		if err != nil {
			logger.Error("initialise metrics collector", "err", err)
		}
	}
	metricsSrv := serveMetrics(*metricsAddr, collector, logger)

	provider := collector.InstrumentProvider(geopos.ForMode(geopos.ParseMode(p.Provider), p.ServiceURL))
	logger.Debug("lookup provider", "provider", provider.Name())

	stateCfg := state.DefaultConfig()
	stateCfg.Sights = store
	stateCfg.Prefs = prefsFile
	stateCfg.Metrics = collector
	stateCfg.Logger = logger
	stateMgr := state.NewManager(stateCfg)

	exitCode := 0
	if headless {
		if err := runHeadless(ctx, stateMgr, provider, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = 1
		}
	} else {
		exitCode = runTUI(ctx, stateMgr, provider)
	}

	if metricsSrv != nil {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		_ = metricsSrv.Shutdown(shutdownCtx)
		cancelShutdown()
	}
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

func runTUI(ctx context.Context, stateMgr *state.Manager, provider geopos.Provider) int {
	model := ui.New(ctx, stateMgr, provider)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	// Run TUI (blocks until quit)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		return 1
	}
	return 0
}

func serveMetrics(addr string, collector *metrics.Collector, logger *logging.Logger) *http.Server {
	if collector == nil || addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server exited", "err", err)
		}
	}()

	logger.Info("serving Prometheus metrics", "addr", addr)
	return srv
}

// runHeadless handles all headless modes without starting TUI.
func runHeadless(ctx context.Context, stateMgr *state.Manager, provider geopos.Provider, logger *logging.Logger) error {
	isTTY := term.IsTerminal(int(os.Stdout.Fd()))

	if hsFlag != "" {
		if err := reduceOnce(ctx, stateMgr, provider, logger, isTTY); err != nil {
			return err
		}
	}

	sights, err := stateMgr.Sights()
	if err != nil {
		return fmt.Errorf("list sights: %w", err)
	}

	// Print summary table if requested
	if summaryMode {
		if hsFlag != "" && !jsonMode {
			fmt.Println()
		}
		report.WriteSummaryTable(os.Stdout, sights, time.Now())
	}

	// Export GeoJSON if requested
	if geojsonPath != "" {
		pl := plot.New(sights, stateMgr.Snapshot().Position())
		if geojsonPath == "-" {
			if err := pl.WriteGeoJSON(os.Stdout); err != nil {
				return fmt.Errorf("write GeoJSON to stdout: %w", err)
			}
			fmt.Println()
		} else {
			f, err := os.Create(geojsonPath)
			if err != nil {
				return fmt.Errorf("create GeoJSON file: %w", err)
			}
			defer f.Close()
			if err := pl.WriteGeoJSON(f); err != nil {
				return fmt.Errorf("write GeoJSON to file: %w", err)
			}
			logger.Info("wrote GeoJSON", "path", geojsonPath, "lines", len(pl.Lines))
		}
	}

	return nil
}

// reduceOnce fills the worksheet from flags, reduces it and prints the result.
func reduceOnce(ctx context.Context, stateMgr *state.Manager, provider geopos.Provider, logger *logging.Logger, isTTY bool) error {
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if bodyFlag == "" {
		return errors.New("-body is required with -hs")
	}
	body := bodyFlag
	if b, ok := geopos.LookupBody(body); ok {
		body = b.Name
	}

	hs, err := celnav.ParseDM(hsFlag)
	if err != nil {
		return fmt.Errorf("-hs: %w", err)
	}
	var limb celnav.Limb
	if err := limb.UnmarshalText([]byte(limbFlag)); err != nil {
		return fmt.Errorf("-limb: %w", err)
	}

	sightTime := time.Now().UTC()
	if utcFlag != "" {
		if sightTime, err = geopos.ParseUTC(utcFlag); err != nil {
			return fmt.Errorf("-utc: %w", err)
		}
	}

	stateMgr.SetBody(body)
	stateMgr.SetSightTime(sightTime)
	stateMgr.SetHs(hs)
	stateMgr.SetLimb(limb)
	if set["ic"] {
		stateMgr.SetIC(icFlag)
	}
	if set["eye"] {
		if eyeFlag < 0 {
			return errors.New("-eye must not be negative")
		}
		stateMgr.SetEyeHeight(eyeFlag)
	}
	if latFlag != "" {
		lat, err := celnav.ParseDM(latFlag)
		if err != nil || lat < -90 || lat > 90 {
			return fmt.Errorf("-lat: invalid latitude %q", latFlag)
		}
		stateMgr.SetLat(lat)
	}
	if lonFlag != "" {
		lon, err := celnav.ParseDM(lonFlag)
		if err != nil || lon < -180 || lon > 180 {
			return fmt.Errorf("-lon: invalid longitude %q", lonFlag)
		}
		stateMgr.SetLon(lon)
	}

	switch {
	case ghaFlag != "" && decFlag != "":
		gha, err := celnav.ParseDM(ghaFlag)
		if err != nil {
			return fmt.Errorf("-gha: %w", err)
		}
		dec, err := celnav.ParseDM(decFlag)
		if err != nil {
			return fmt.Errorf("-dec: %w", err)
		}
		stateMgr.SetGHA(gha)
		stateMgr.SetDec(dec)
		if set["distance"] {
			if distanceFlag <= 0 {
				return errors.New("-distance must be positive")
			}
			stateMgr.SetDistance(distanceFlag)
		}
	case ghaFlag != "" || decFlag != "":
		return errors.New("-gha and -dec must be given together")
	default:
		logger.Debug("looking up geographic position", "body", body, "utc", sightTime, "provider", provider.Name())
		if err := stateMgr.LookupGeoPosition(ctx, provider, sightTime); err != nil {
			return err
		}
	}

	snap := stateMgr.Snapshot()
	ws := stateMgr.Worksheet()
	if !snap.Computable {
		return fmt.Errorf("%w: missing %s", celnav.ErrInsufficientData, strings.Join(snap.Missing, ", "))
	}

	if jsonMode {
		if err := report.ExportWorksheet(ws, snap.Result, time.Now()).WriteJSON(os.Stdout); err != nil {
			return fmt.Errorf("write JSON to stdout: %w", err)
		}
	} else {
		report.WriteWorksheet(os.Stdout, ws, snap.Result)
	}

	if saveMode {
		s, err := stateMgr.SaveSight()
		if err != nil {
			return err
		}
		// Keep piped output machine-readable.
		if isTTY && !jsonMode {
			fmt.Printf("\nSaved sight %s\n", s.ID)
		}
	}
	return nil
}
