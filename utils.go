package aientity

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

// SanitizeJSONResponse removes the markdown code fences models like to wrap
// JSON in.
func SanitizeJSONResponse(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// retryInvoker re-issues failed calls that look transient. It is only
// installed when the caller asks for more than one attempt.
type retryInvoker struct {
	next     Invoker
	attempts uint
	delay    time.Duration
	log      *slog.Logger
}

func (r *retryInvoker) Invoke(ctx context.Context, req *Request) (string, error) {
	if r.attempts <= 1 {
		return r.next.Invoke(ctx, req) // no retry
	}

	var content string
	err := retry.Do(
		func() error {
			c, err := r.next.Invoke(ctx, req)
			if err != nil {
				return err
			}
			content = c
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(r.attempts),
		retry.Delay(r.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			r.log.Debug("Attempt failed, retrying", "attempt", n+1, "error", err)
		}),
	)
	return content, err
}

// isRetryable reports transport failures and throttling or server errors.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var te *TransportError
	if errors.As(err, &te) {
		return true
	}
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.StatusCode == http.StatusTooManyRequests || ae.StatusCode >= 500
	}
	return false
}
