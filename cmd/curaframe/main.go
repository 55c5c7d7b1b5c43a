// Command curaframe evaluates candidate files against catalog bundles from
// the command line.
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
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		var rejected *rejectedError
		if errors.As(err, &rejected) {
			fmt.Fprintln(os.Stderr, rejected)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
