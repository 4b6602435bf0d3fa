package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/petasbytes/go-assistants/internal/config"
	"github.com/petasbytes/go-assistants/internal/ingest"
	"github.com/petasbytes/go-assistants/internal/provider"
	"github.com/petasbytes/go-assistants/internal/registry"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// env carries process-level collaborators so tests can run commands in-process.
type env struct {
	stdout    io.Writer
	stderr    io.Writer
	completer provider.Completer // nil means provider.NewRouter()
	envFiles  []string
}

// app is what a command runs against once flags are parsed.
type app struct {
	cfg    config.Config
	reg    *registry.Registry
	log    *slog.Logger
	out    io.Writer
	errOut io.Writer
}

// command is one subcommand. Exactly len(args) must lie in [minArgs, maxArgs].
type command struct {
	name    string
	args    string
	summary string
	minArgs int
	maxArgs int
	flags   func(fs *pflag.FlagSet)
	// standalone commands run without configuration or a registry.
	standalone func(e env, fs *pflag.FlagSet, args []string) error
	run        func(ctx context.Context, a *app, fs *pflag.FlagSet, args []string) error
}

type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func lookup(name string) *command {
	for i := range commands {
		if commands[i].name == name {
			return &commands[i]
		}
	}
	return nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: assistants <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
	for _, c := range commands {
		fmt.Fprintf(tw, "  %s %s\t%s\n", c.name, c.args, c.summary)
	}
	tw.Flush()
}

func isHelp(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "help"
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, e env) int {
	if len(args) == 0 {
		printUsage(e.stderr)
		return exitUsage
	}
	if isHelp(args[0]) {
		printUsage(e.stdout)
		return exitOK
	}

	cmd := lookup(args[0])
	if cmd == nil {
		fmt.Fprintf(e.stderr, "error: unknown command %q\n\n", args[0])
		printUsage(e.stderr)
		return exitUsage
	}

	fs := pflag.NewFlagSet(cmd.name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if cmd.flags != nil {
		cmd.flags(fs)
	}
	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(e.stdout, "usage: assistants %s %s\n%s", cmd.name, cmd.args, fs.FlagUsages())
			return exitOK
		}
		fmt.Fprintf(e.stderr, "error: %v\nusage: assistants %s %s\n", err, cmd.name, cmd.args)
		return exitUsage
	}
	pos := fs.Args()
	if len(pos) < cmd.minArgs || len(pos) > cmd.maxArgs {
		fmt.Fprintf(e.stderr, "error: %s expects %s\nusage: assistants %s %s\n", cmd.name, argCount(cmd), cmd.name, cmd.args)
		return exitUsage
	}

	var err error
	if cmd.standalone != nil {
		err = cmd.standalone(e, fs, pos)
	} else {
		err = runWithRegistry(ctx, cmd, e, fs, pos)
	}
	return report(e.stderr, err)
}

func argCount(c *command) string {
	if c.minArgs == c.maxArgs {
		return fmt.Sprintf("%d argument(s)", c.minArgs)
	}
	return fmt.Sprintf("%d to %d arguments", c.minArgs, c.maxArgs)
}

func report(w io.Writer, err error) int {
	if err == nil {
		return exitOK
	}
	var ue usageError
	if errors.As(err, &ue) {
		fmt.Fprintf(w, "error: %v\n", err)
		return exitUsage
	}
	fmt.Fprintf(w, "error: %v\n", err)
	return exitError
}

func runWithRegistry(ctx context.Context, cmd *command, e env, fs *pflag.FlagSet, args []string) error {
	cfg, err := config.Load(e.envFiles...)
	if err != nil {
		return err
	}
	log := slog.New(slog.NewTextHandler(e.stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	in, err := ingest.New(cfg.ThreadFilesDir, nil, log)
	if err != nil {
		return err
	}
	completer := e.completer
	if completer == nil {
		completer = provider.NewRouter()
	}
	reg, err := registry.Open(ctx, registry.Options{
		Store:        registry.FileStore{Path: cfg.RegistryPath},
		Completer:    completer,
		Ingestor:     in,
		Logger:       log,
		DefaultModel: cfg.DefaultModel,
		MaxTokens:    cfg.MaxTokens,
		Credentials:  config.CredentialFor,
	})
	if err != nil {
		return err
	}

	return cmd.run(ctx, &app{cfg: cfg, reg: reg, log: log, out: e.stdout, errOut: e.stderr}, fs, args)
}
