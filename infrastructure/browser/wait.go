package browser

import (
	"context"
	"time"

	"quote_automation/domain/entities"
)

const defaultPollInterval = 100 * time.Millisecond

// pollUntil evaluates cond until it reports true, returns an error, ctx ends or
// timeout elapses. A condition that first holds after the deadline is a timeout.
func pollUntil(ctx context.Context, timeout, interval time.Duration, cond func() (bool, error)) error {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		ok, err := cond()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if !time.Now().Before(deadline) {
			return entities.ErrTimeout
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// timeoutError converts a poll or engine timeout into the domain error
func timeoutError(sel entities.Selector, timeout time.Duration, err error) error {
	return &entities.TimeoutError{Selector: sel.String(), State: "visible", Timeout: timeout, Err: err}
}

// sleepCtx pauses for d unless ctx ends first
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
