// Package agent hosts the long-lived consumers that react to completed
// conversation turns: the animation toggler and the speech playback driver.
// Each consumer blocks on its channel and a stop signal; an empty channel is a
// normal condition, never an error.
package agent

import (
	"context"
	"log"
)

// Base carries the shared start/stop lifecycle for consumers.
type Base struct {
	name   string
	cancel context.CancelFunc
	done   chan struct{}
}

// start launches run in its own goroutine bound to a child of parent.
func (b *Base) start(parent context.Context, run func(ctx context.Context)) {
	if b.cancel != nil {
		log.Printf("[agent] %s already running", b.name)
		return
	}

	ctx, cancel := context.WithCancel(parent)
	b.cancel = cancel
	b.done = make(chan struct{})

	go func() {
		defer close(b.done)
		run(ctx)
	}()
	log.Printf("[agent] %s started", b.name)
}

// Stop signals the consumer and waits for its loop to exit.
func (b *Base) Stop() {
	if b.cancel == nil {
		return
	}
	b.cancel()
	<-b.done
	b.cancel = nil
	log.Printf("[agent] %s stopped", b.name)
}
