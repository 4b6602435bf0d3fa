package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/petasbytes/go-assistants/internal/apperr"
	"github.com/petasbytes/go-assistants/internal/config"
	"github.com/petasbytes/go-assistants/memory"
)

var commands = []command{
	{
		name: "create-assistant", args: "<name> [--model M] [--instructions TEXT|PATH]",
		summary: "register a new assistant", minArgs: 1, maxArgs: 1,
		flags: func(fs *pflag.FlagSet) {
			fs.String("model", "", "model identifier (default AGT_DEFAULT_MODEL)")
			fs.String("instructions", "", "system instructions, or a file or folder to read them from")
		},
		run: createAssistant,
	},
	{
		name: "remove-assistant", args: "<name>",
		summary: "remove an assistant and its threads", minArgs: 1, maxArgs: 1,
		run: removeAssistant,
	},
	{
		name: "set-model", args: "<name> <model>",
		summary: "change an assistant's model", minArgs: 2, maxArgs: 2,
		run: setModel,
	},
	{
		name: "list-assistants", summary: "list assistants and their models",
		run: listAssistants,
	},
	{
		name: "create-thread", args: "<assistant> [thread-id]",
		summary: "start a thread (id synthesized when omitted)", minArgs: 1, maxArgs: 2,
		run: createThread,
	},
	{
		name: "list-threads", args: "<assistant>",
		summary: "list an assistant's threads", minArgs: 1, maxArgs: 1,
		run: listThreads,
	},
	{
		name: "send", args: "<assistant> <thread> <prompt>",
		summary: "send a prompt and print the reply", minArgs: 3, maxArgs: 3,
		run: send,
	},
	{
		name: "history", args: "<assistant> <thread> [--format text|json|yaml]",
		summary: "print a thread's transcript", minArgs: 2, maxArgs: 2,
		flags: formatFlag,
		run:   history,
	},
	{
		name: "assistant-history", args: "<assistant> [--format text|json|yaml]",
		summary: "print every thread of an assistant", minArgs: 1, maxArgs: 1,
		flags: formatFlag,
		run:   assistantHistory,
	},
	{
		name: "add-file", args: "<assistant> <thread> <path>",
		summary: "add a file's text to a thread", minArgs: 3, maxArgs: 3,
		run: addFile,
	},
	{
		name: "add-folder", args: "<assistant> <thread> <dir>",
		summary: "add every .pdf, .txt and .md document in a folder", minArgs: 3, maxArgs: 3,
		run: addFolder,
	},
	{
		name: "schema", summary: "print the JSON Schema of the registry document",
		standalone: printSchema,
	},
}

func formatFlag(fs *pflag.FlagSet) {
	fs.String("format", "text", "output format: text, json or yaml")
}

func createAssistant(ctx context.Context, a *app, fs *pflag.FlagSet, args []string) error {
	model, _ := fs.GetString("model")
	instructions, _ := fs.GetString("instructions")
	if model == "" {
		model = a.cfg.DefaultModel
	}
	credential, err := config.CredentialFor(model)
	if err != nil {
		return err
	}
	as, err := a.reg.Create(ctx, args[0], model, instructions, credential)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Assistant %q created with model %s.\n", as.Name(), as.Model())
	return nil
}

func removeAssistant(ctx context.Context, a *app, _ *pflag.FlagSet, args []string) error {
	if err := a.reg.Remove(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Assistant %q removed.\n", args[0])
	return nil
}

func setModel(_ context.Context, a *app, _ *pflag.FlagSet, args []string) error {
	if err := a.reg.SetModel(args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Assistant %q now uses %s.\n", args[0], args[1])
	return nil
}

func listAssistants(_ context.Context, a *app, _ *pflag.FlagSet, _ []string) error {
	for _, line := range a.reg.List() {
		fmt.Fprintln(a.out, line)
	}
	return nil
}

func createThread(ctx context.Context, a *app, _ *pflag.FlagSet, args []string) error {
	var id string
	if len(args) == 2 {
		id = args[1]
	}
	id, err := a.reg.CreateThread(ctx, args[0], id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Thread %q created for assistant %q.\n", id, args[0])
	return nil
}

func listThreads(_ context.Context, a *app, _ *pflag.FlagSet, args []string) error {
	ids, err := a.reg.ListThreads(args[0])
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Fprintf(a.out, "Assistant %q has no threads.\n", args[0])
		return nil
	}
	for _, id := range ids {
		fmt.Fprintln(a.out, id)
	}
	return nil
}

// send relies on the registry's credential fallback: an assistant stored
// without a key uses the environment key for its model, and a missing one
// fails before the transcript is touched.
func send(ctx context.Context, a *app, _ *pflag.FlagSet, args []string) error {
	if a.cfg.CompletionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.CompletionTimeout)
		defer cancel()
	}
	reply, err := a.reg.SendPrompt(ctx, args[0], args[1], args[2])
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, reply)
	return nil
}

func history(_ context.Context, a *app, fs *pflag.FlagSet, args []string) error {
	format, _ := fs.GetString("format")
	entries, err := a.reg.History(args[0], args[1])
	if err != nil {
		return err
	}
	return render(a.out, format, entries, func() string { return transcriptText(entries) })
}

func assistantHistory(_ context.Context, a *app, fs *pflag.FlagSet, args []string) error {
	format, _ := fs.GetString("format")
	h, err := a.reg.AssistantHistory(args[0])
	if err != nil {
		return err
	}
	return render(a.out, format, h, func() string { return assistantHistoryText(h) })
}

func addFile(ctx context.Context, a *app, _ *pflag.FlagSet, args []string) error {
	unit, err := a.reg.AddContextFile(ctx, args[0], args[1], args[2])
	if errors.Is(err, apperr.ErrDegradedRead) {
		// Degraded reads are reported, not fatal.
		fmt.Fprintf(a.errOut, "warning: %v\n", err)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added %s to thread %q (stored at %s).\n", unit.SourcePath, args[1], unit.StoredPath)
	return nil
}

func addFolder(ctx context.Context, a *app, _ *pflag.FlagSet, args []string) error {
	report, err := a.reg.AddContextFolder(ctx, args[0], args[1], args[2])
	for _, s := range report.Skipped {
		fmt.Fprintf(a.errOut, "skipped %s: %v\n", s.Path, s.Reason)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added %d file(s) to thread %q, skipped %d.\n", len(report.Units), args[1], len(report.Skipped))
	return nil
}

func printSchema(e env, _ *pflag.FlagSet, _ []string) error {
	b, err := memory.Schema()
	if err != nil {
		return err
	}
	return writeJSONBytes(e.stdout, b)
}
