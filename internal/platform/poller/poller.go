package poller

import (
	"context"
	"sync/atomic"
	"time"
)

// Run ejecuta fn de inmediato y luego cada interval hasta que ctx se cancele.
// Si la ejecución anterior sigue en curso, el tick se descarta.
// onErr es opcional.
func Run(ctx context.Context, interval time.Duration, fn func(context.Context) error, onErr func(error)) {
	if interval <= 0 {
		interval = time.Minute
	}

	var inFlight atomic.Bool
	tick := func() {
		if !inFlight.CompareAndSwap(false, true) {
			return
		}
		go func() {
			defer inFlight.Store(false)
			if err := fn(ctx); err != nil && onErr != nil && ctx.Err() == nil {
				onErr(err)
			}
		}()
	}

	tick()

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			tick()
		}
	}
}
