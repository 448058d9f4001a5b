package client

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/tnqbao/gau-object-gallery/entity"
)

// RetryPolicy bounds the warm-up loop. Zero fields are unbounded,
// except Interval which falls back to the default.
type RetryPolicy struct {
	MaxAttempts uint
	MaxDuration time.Duration
	Interval    time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxDuration: 2 * time.Minute,
		Interval:    3 * time.Second,
	}
}

// WarmUp lists objects at a fixed interval until the server answers,
// which covers hosts that sleep and take a while to wake.
// Client errors (4xx) stop the loop immediately.
func (c *Client) WarmUp(ctx context.Context, policy RetryPolicy) ([]entity.StoreObject, error) {
	interval := policy.Interval
	if interval <= 0 {
		interval = DefaultRetryPolicy().Interval
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(backoff.NewConstantBackOff(interval)),
	}
	if policy.MaxAttempts > 0 {
		opts = append(opts, backoff.WithMaxTries(policy.MaxAttempts))
	}
	if policy.MaxDuration > 0 {
		opts = append(opts, backoff.WithMaxElapsedTime(policy.MaxDuration))
	}

	return backoff.Retry(ctx, func() ([]entity.StoreObject, error) {
		objects, err := c.ListObjects(ctx, "")
		if err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode >= http.StatusBadRequest && apiErr.StatusCode < http.StatusInternalServerError {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return objects, nil
	}, opts...)
}
