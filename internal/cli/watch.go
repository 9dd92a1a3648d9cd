package cli

import (
	"context"
	"time"
)

// Terminal reports whether an approval status can no longer change.
func Terminal(status string) bool {
	return status == "approved" || status == "rejected"
}

// Watch polls once immediately and then on every tick until the status is terminal or ctx ends.
// onChange sees each distinct status; polling errors are passed to onError and polling continues.
func Watch(ctx context.Context, interval time.Duration, poll func(context.Context) (string, error), onChange func(string), onError func(error)) (string, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := ""
	for {
		status, err := poll(ctx)
		switch {
		case err != nil && ctx.Err() != nil:
			return last, ctx.Err()
		case err != nil:
			if onError != nil {
				onError(err)
			}
		case status != last:
			last = status
			onChange(status)
		}

		if Terminal(last) {
			return last, nil
		}

		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-ticker.C:
		}
	}
}
