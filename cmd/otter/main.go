// Command otter runs the Otter code-intelligence broker as an MCP server
// over stdio, generalizing the teacher's cmd/opencode-server HTTP entry
// point (flag parsing, config load, component wiring, signal-driven
// graceful shutdown) to a single stdio-served process with no listening
// socket, in the shape of cmd/calculator-mcp's server.ServeStdio(s) call.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/otter-ide/otter/internal/dap"
	"github.com/otter-ide/otter/internal/dispatcher"
	"github.com/otter-ide/otter/internal/editing"
	"github.com/otter-ide/otter/internal/editorhost"
	"github.com/otter-ide/otter/internal/event"
	"github.com/otter-ide/otter/internal/otterlog"
	"github.com/otter-ide/otter/internal/project"
	"github.com/otter-ide/otter/internal/runtime"
	"github.com/otter-ide/otter/internal/scheduler"
)

var (
	directory = flag.String("directory", "", "Project root (defaults to the current working directory)")
	logLevel  = flag.String("log-level", "info", "Minimum log level: debug, info, warn, error, fatal")
	version   = flag.Bool("version", false, "Print version and exit")
)

const Version = "0.1.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("otter %s\n", Version)
		os.Exit(0)
	}

	cfg := otterlog.DefaultConfig()
	cfg.Level = otterlog.ParseLevel(*logLevel)
	otterlog.Init(cfg)
	defer otterlog.Close()

	workDir := *directory
	if workDir == "" {
		var err error
		workDir, err = os.Getwd()
		if err != nil {
			otterlog.Fatal().Err(err).Msg("failed to get working directory")
		}
	}

	otterlog.Info().Str("version", Version).Str("project_root", workDir).Msg("starting otter")

	projectSvc, err := project.NewService(workDir)
	if err != nil {
		otterlog.Fatal().Err(err).Msg("failed to load project")
	}
	proj := projectSvc.Current()

	bus := event.NewBus()
	resolver := runtime.NewResolver()
	ctx := context.Background()

	diagnosticEvents, err := bus.Messages(ctx, event.DiagnosticsPublished)
	if err != nil {
		otterlog.Fatal().Err(err).Msg("failed to subscribe to diagnostics events")
	}
	go logDiagnosticEvents(diagnosticEvents)

	host := editorhost.NewHost(proj, resolver)
	if err := host.Start(ctx); err != nil {
		otterlog.Fatal().Err(err).Msg("failed to start editor host")
	}

	debug := dap.NewService(proj.Root, resolver, bus, dap.DefaultAdapters())
	buffers := editing.NewBufferSet(bus)

	perf := proj.Config.Performance
	sched := scheduler.New(scheduler.Config{
		MaxParallelTasks:       int64(perf.MaxLSPClients + perf.MaxDAPSessions),
		MaxAttachedLSP:         int64(perf.MaxLSPClients),
		MaxActiveDebugSessions: int64(perf.MaxDAPSessions),
	})

	s := dispatcher.NewServer(&dispatcher.Dependencies{
		Host:      host,
		Debug:     debug,
		Buffers:   buffers,
		Project:   projectSvc,
		Scheduler: sched,
	})

	errCh := make(chan error, 1)
	go func() {
		otterlog.Info().Msg("serving MCP tools over stdio")
		errCh <- server.ServeStdio(s)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			otterlog.Error().Err(err).Msg("stdio server stopped")
		}
	case <-quit:
		otterlog.Info().Msg("shutting down otter")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := host.Shutdown(shutdownCtx); err != nil {
		otterlog.Error().Err(err).Msg("editor host shutdown error")
	}

	otterlog.Info().Msg("otter stopped")
}

// logDiagnosticEvents drains the watermill-backed diagnostics.published
// topic and logs each one, independently of any direct-call subscriber a
// component may have registered via event.Subscribe. It runs for the
// process lifetime and exits once the bus's Messages channel closes.
func logDiagnosticEvents(events <-chan event.Event) {
	for evt := range events {
		// Messages decodes Data generically (it came back over the wire as
		// JSON), so round-trip it through the concrete type rather than
		// type-asserting directly.
		raw, err := json.Marshal(evt.Data)
		if err != nil {
			continue
		}
		var data event.DiagnosticsPublishedData
		if err := json.Unmarshal(raw, &data); err != nil {
			continue
		}
		otterlog.Debug().
			Str("file", data.File).
			Str("language", data.Language).
			Int("count", len(data.Diagnostics)).
			Msg("diagnostics published")
	}
}
