package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/app"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/config"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/observability"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/platform/logging"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/usecase"
	"go.opentelemetry.io/otel"
)

const (
	exitOK    = 0
	exitErr   = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || isHelp(args[0]) {
		printUsage(stderr)
		return exitUsage
	}
	cmd := strings.ToLower(strings.TrimSpace(args[0]))
	if !knownCommand(cmd) {
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		printUsage(stderr)
		return exitUsage
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(stderr, "load .env: %v\n", err)
		return exitErr
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return exitErr
	}

	logger := logging.New(cfg.LogFormat, cfg.LogLevel).With("service", cfg.ServiceName, "env", cfg.AppEnv)
	logging.SetDefault(logger)
	defer func() {
		_ = logger.Sync()
	}()

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		return exitErr
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Warn("shutdown uptrace failed", "error", err)
		}
	}()

	stopProfiling, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		return exitErr
	}
	defer func() {
		if err := stopProfiling(); err != nil {
			logger.Warn("stop pyroscope failed", "error", err)
		}
	}()

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		return exitErr
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "serve":
		return runServe(ctx, a)
	case "ics":
		return runICS(a, args[1:], stdout, stderr)
	}

	// One root span per command so usecase and client spans hang off it.
	ctx, span := otel.Tracer("lunch-hockey-rsvp/cmd/rsvp").Start(ctx, "rsvp."+cmd)
	defer span.End()

	switch cmd {
	case "profile":
		return runProfile(ctx, a, args[1:], stdout, stderr)
	case "events":
		return runEvents(ctx, a, stdout, stderr)
	case "toggle":
		return runToggle(ctx, a, args[1:], stdout, stderr)
	case "roster":
		return runRoster(ctx, a, args[1:], stdout, stderr)
	}
	return exitUsage
}

func runProfile(ctx context.Context, a *app.App, args []string, stdout, stderr io.Writer) int {
	fset := flag.NewFlagSet("profile", flag.ContinueOnError)
	fset.SetOutput(stderr)
	first := fset.String("first", "", "first name")
	last := fset.String("last", "", "last name")
	pos := fset.String("pos", "", "position: Skater or Goalie")
	if err := fset.Parse(args); err != nil {
		return exitUsage
	}

	if *first == "" && *last == "" && *pos == "" {
		p, ok, err := a.Profiles.Current(ctx)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return exitErr
		}
		if !ok {
			fmt.Fprintln(stdout, "No profile saved. Use: rsvp profile -first NAME -last NAME [-pos Skater|Goalie]")
			return exitOK
		}
		printProfile(stdout, p)
		return exitOK
	}

	result, err := a.Dispatcher.Dispatch(ctx, usecase.SaveProfile{First: *first, Last: *last, Position: *pos})
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitErr
	}
	fmt.Fprintln(stdout, "Profile saved!")
	printProfile(stdout, *result.Profile)
	fmt.Fprintln(stdout)
	printBoard(stdout, *result.Board)
	return exitOK
}

func runEvents(ctx context.Context, a *app.App, stdout, stderr io.Writer) int {
	result, err := a.Dispatcher.Dispatch(ctx, usecase.RefreshEvents{})
	printBoard(stdout, *result.Board)
	if err != nil {
		return exitErr
	}
	return exitOK
}

func runToggle(ctx context.Context, a *app.App, args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "usage: rsvp toggle <session-id>")
		return exitUsage
	}

	result, err := a.Dispatcher.Dispatch(ctx, usecase.ToggleAttendance{SessionID: args[0]})
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitErr
	}
	printBoard(stdout, *result.Board)
	return exitOK
}

func runRoster(ctx context.Context, a *app.App, args []string, stdout, stderr io.Writer) int {
	fset := flag.NewFlagSet("roster", flag.ContinueOnError)
	fset.SetOutput(stderr)
	all := fset.Bool("all", false, "list players for every upcoming session")
	if err := fset.Parse(args); err != nil {
		return exitUsage
	}

	if *all {
		result, err := a.Dispatcher.Dispatch(ctx, usecase.ViewAllRosters{})
		for i, roster := range result.Rosters {
			if i > 0 {
				fmt.Fprintln(stdout)
			}
			printRoster(stdout, roster)
		}
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return exitErr
		}
		return exitOK
	}

	if fset.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: rsvp roster <session-id> | rsvp roster -all")
		return exitUsage
	}

	result, err := a.Dispatcher.Dispatch(ctx, usecase.ViewRoster{SessionID: fset.Arg(0)})
	if result.Roster != nil && result.Roster.Title != "" {
		printRoster(stdout, *result.Roster)
	}
	if err != nil {
		if result.Roster == nil || result.Roster.Message == "" {
			fmt.Fprintf(stderr, "%v\n", err)
		}
		return exitErr
	}
	return exitOK
}

func runICS(a *app.App, args []string, stdout, stderr io.Writer) int {
	fset := flag.NewFlagSet("ics", flag.ContinueOnError)
	fset.SetOutput(stderr)
	out := fset.String("o", "", "write to file instead of stdout")
	if err := fset.Parse(args); err != nil {
		return exitUsage
	}

	sessions, err := a.Board.UpcomingSessions()
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitErr
	}

	w := stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			fmt.Fprintf(stderr, "create %s: %v\n", *out, err)
			return exitErr
		}
		defer f.Close()
		w = f
	}

	if err := a.Exporter.Write(w, sessions); err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitErr
	}
	return exitOK
}

func runServe(ctx context.Context, a *app.App) int {
	logger := a.Logger
	srv, err := a.NewHTTPServer()
	if err != nil {
		logger.Error("build http server", "error", err)
		return exitErr
	}

	pprofSrv, err := observability.StartPprofServer(a.Config, logger)
	if err != nil {
		logger.Error("start pprof server", "error", err)
		return exitErr
	}
	defer func() {
		if err := observability.StopPprofServer(pprofSrv, logger, 5*time.Second); err != nil {
			logger.Warn("stop pprof server failed", "error", err)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("http server failed", "error", err)
			return exitErr
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		return exitErr
	}

	logger.Info("http server stopped")
	return exitOK
}

func knownCommand(cmd string) bool {
	switch cmd {
	case "profile", "events", "toggle", "roster", "ics", "serve":
		return true
	default:
		return false
	}
}

func isHelp(arg string) bool {
	switch arg {
	case "-h", "--help", "help":
		return true
	default:
		return false
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `usage: rsvp <command> [args]

commands:
  profile [-first NAME -last NAME -pos Skater|Goalie]   show or save your profile
  events                                              list upcoming sessions with counts
  toggle <session-id>                                 RSVP or cancel for a session
  roster <session-id> | roster -all                   list players signed up for a session
  ics [-o FILE]                                       export upcoming sessions as iCalendar
  serve                                               run the local web UI
`)
}
