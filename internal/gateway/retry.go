package gateway

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/danny-ell77/clustr-be-sub003/internal/httpclient"
)

const maxSendAttempts = 3

// SendWithRetry runs an HTTP call against a provider, retrying
// transient failures (5xx, rate limits, transport errors) with
// exponential backoff. 4xx responses are terminal.
func SendWithRetry(ctx context.Context, client httpclient.Client, req *httpclient.Request) (*httpclient.Response, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 5 * time.Second

	var resp *httpclient.Response
	operation := func() error {
		var err error
		resp, err = client.Send(ctx, req)
		if err == nil {
			return nil
		}
		if httpErr, ok := httpclient.IsHTTPError(err); ok && !httpErr.IsRetryable() {
			return backoff.Permanent(err)
		}
		return err
	}

	err := backoff.Retry(
		operation,
		backoff.WithContext(backoff.WithMaxRetries(bo, maxSendAttempts-1), ctx),
	)
	if err != nil {
		return nil, err
	}
	return resp, nil
}
