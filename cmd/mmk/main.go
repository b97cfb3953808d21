package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/target/mmk-ui-client/config"
	"github.com/target/mmk-ui-client/internal/bootstrap"
	"github.com/target/mmk-ui-client/internal/transport"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
}

const defaultCommandTimeout = 2 * time.Minute

func main() {
	if len(os.Args) < 2 {
		if err := printUsage(); err != nil {
			fmt.Fprintln(os.Stderr, "print usage failed:", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			fmt.Fprintln(os.Stderr, "print unknown command message failed:", err)
		}
		if err := printUsage(); err != nil {
			fmt.Fprintln(os.Stderr, "print usage failed:", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	logger := bootstrap.InitLogger(cfg.IsDev)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmdCtx := &commandContext{
		Ctx:    ctx,
		Logger: logger,
		Config: cfg,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		fmt.Fprintln(os.Stderr, "Error:", runErr)
		stop()
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"login": {
			name:        "login",
			description: "Authenticate and store the credential pair locally",
			run:         runLogin,
		},
		"logout": {
			name:        "logout",
			description: "Invalidate the server session and clear local credentials",
			run:         runLogout,
		},
		"whoami": {
			name:        "whoami",
			description: "Show the current authenticated identity and role",
			run:         runWhoami,
		},
		"sites": {
			name:        "sites",
			description: "List, inspect and manage monitored sites",
			run:         runSites,
		},
		"sources": {
			name:        "sources",
			description: "List, inspect and manage browser scripts",
			run:         runSources,
		},
		"jobs": {
			name:        "jobs",
			description: "List jobs and launch test runs",
			run:         runJobs,
		},
		"alerts": {
			name:        "alerts",
			description: "List, inspect and resolve fired alerts",
			run:         runAlerts,
		},
		"dashboard": {
			name:        "dashboard",
			description: "Show alert statistics and recent unresolved alerts",
			run:         runDashboard,
		},
	}
}

func printUsage() error {
	if err := writef(os.Stdout, "Usage: mmk <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(os.Stdout, "Available commands:\n"); err != nil {
		return err
	}
	names := make([]string, 0, len(commands()))
	for name := range commands() {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := commands()[name]
		if err := writef(os.Stdout, "  %-12s %s\n", c.name, c.description); err != nil {
			return err
		}
	}
	return nil
}

// withRuntime builds the wired client runtime, runs f against it within the
// command timeout, and tears the runtime down.
func withRuntime(cmdCtx *commandContext, f func(ctx context.Context, rt *bootstrap.Runtime) error) error {
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	hooks := transport.Hooks{
		LoggedOut: func(reason string) {
			if err := writef(os.Stderr, "Session ended (%s); run `mmk login` to sign in again.\n", reason); err != nil {
				cmdCtx.Logger.Warn("print logged-out notice failed", "error", err)
			}
		},
	}

	rt, err := bootstrap.Build(ctx, cmdCtx.Config, hooks, cmdCtx.Logger)
	if err != nil {
		return fmt.Errorf("build runtime: %w", err)
	}
	defer func() {
		if closeErr := rt.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("runtime close failed", "error", closeErr)
		}
	}()

	return f(ctx, rt)
}

func writef(w io.Writer, format string, args ...any) error {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func writeln(w io.Writer, args ...any) error {
	if _, err := fmt.Fprintln(w, args...); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
