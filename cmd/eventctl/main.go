// Command eventctl browses events and books seats against the event
// reservation API.  The session is kept in durable storage between runs.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := run(ctx, os.Args[1:], env{stdout: os.Stdout, stderr: os.Stderr, stdin: os.Stdin})
	if err == nil {
		return
	}
	var silent exitError
	if !errors.As(err, &silent) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	os.Exit(1)
}

// exitError fails the process after the command already reported why.
type exitError struct{}

func (exitError) Error() string { return "command failed" }
