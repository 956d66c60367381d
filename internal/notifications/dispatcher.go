package notifications

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/geocoder89/plantdoctor/internal/observability"
)

// Dispatcher sends mail off the request path. Dispatch never blocks the
// caller and never reports failure back to it; outcomes go to logs and
// metrics only.
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	log      *slog.Logger
	prom     *observability.Prom

	wg sync.WaitGroup
}

func NewDispatcher(n Notifier, timeout time.Duration, log *slog.Logger, prom *observability.Prom) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{notifier: n, timeout: timeout, log: log, prom: prom}
}

func (d *Dispatcher) Dispatch(msg Message) {
	d.wg.Add(1)

	go func() {
		defer d.wg.Done()

		// detached from the request: the response may already be written
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		err := d.notifier.Send(ctx, msg)

		switch {
		case err == nil:
			d.prom.ObserveNotification(string(msg.Kind), "sent")
		case errors.Is(err, ErrCircuitOpen):
			d.prom.ObserveNotification(string(msg.Kind), "circuit_open")
			d.log.Warn("notification skipped, circuit open", "kind", msg.Kind)
		default:
			d.prom.ObserveNotification(string(msg.Kind), "failed")
			d.log.Error("notification failed", "kind", msg.Kind, "err", err)
		}
	}()
}

// Wait blocks until every dispatched send has finished or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
