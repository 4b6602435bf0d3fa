// Command assistants manages named assistants, their conversation threads and
// the context documents added to them. State lives in one JSON document
// (AGT_REGISTRY_PATH, default assistants.json).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// Ctrl-C / SIGTERM cancel an in-flight completion.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], env{stdout: os.Stdout, stderr: os.Stderr})
	stop()
	os.Exit(code)
}
