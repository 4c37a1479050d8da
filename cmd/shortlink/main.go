// Command shortlink is the terminal client of the shortener API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MikhailRaia/shortlink/internal/clipboard"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := environment{
		getenv:    os.Getenv,
		clipboard: clipboard.System{},
		runTUI:    runTUI,
	}

	if err := execute(ctx, env, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
