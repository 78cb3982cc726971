// Command prominence computes topographic prominence and divide trees
// from digital elevation tiles.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/kirmse-prom/prominence/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c := cli.New(os.Stderr, log.InfoLevel)
	if err := c.Execute(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // standard shell convention for SIGINT
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
