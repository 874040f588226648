package lsp

import (
	"context"
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// defaultReadinessTimeout bounds WaitReady when LSP_READINESS_TIMEOUT is
// unset or invalid.
const defaultReadinessTimeout = 15 * time.Second

// errNotIndexed is returned by the readiness probe while workspace/symbol
// keeps answering empty; it never escapes WaitReady itself.
var errNotIndexed = errors.New("language server has not answered a non-empty workspace/symbol query yet")

// WaitReady blocks until the language client for file answers
// workspace/symbol("") with at least one result, or the readiness deadline
// elapses. Readiness is never determined by a time-based sleep, and an
// empty response is not treated as evidence by itself — some servers
// answer workspace/symbol before they have finished indexing the project,
// so the probe retries with backoff until it observes a non-empty result
// or LSP_READINESS_TIMEOUT (seconds; default 15s) runs out.
func (c *Client) WaitReady(ctx context.Context, file string) error {
	client, err := c.GetClient(ctx, file)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, readinessTimeout())
	defer cancel()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = 0 // bounded by ctx's deadline instead

	return backoff.Retry(func() error {
		symbols, err := client.workspaceSymbol(ctx, "")
		if err != nil {
			return backoff.Permanent(err)
		}
		if len(symbols) == 0 {
			return errNotIndexed
		}
		return nil
	}, backoff.WithContext(b, ctx))
}

// readinessTimeout reads LSP_READINESS_TIMEOUT as whole seconds, falling
// back to defaultReadinessTimeout when unset or not a positive integer.
func readinessTimeout() time.Duration {
	raw := os.Getenv("LSP_READINESS_TIMEOUT")
	if raw == "" {
		return defaultReadinessTimeout
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs <= 0 {
		return defaultReadinessTimeout
	}
	return time.Duration(secs) * time.Second
}
