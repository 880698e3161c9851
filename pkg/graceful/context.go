package graceful

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
)

// Context derives a context that is canceled when the process receives an
// interrupt or termination signal, so the matcher can drain in-flight
// requests before exiting.
func Context(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-ctx.Done()
		if parent.Err() == nil {
			log.Println("Shutdown requested, canceling work...")
		}
	}()

	return ctx, stop
}
