package proxy6

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// BatchCheckResult contains the results of a batch validity check
type BatchCheckResult struct {
	Requested int
	Valid     []string
	Invalid   []string
	Failed    []CheckError
}

// CheckError contains information about a failed check
type CheckError struct {
	ProxyID string
	Err     error
}

// Error implements the error interface
func (e CheckError) Error() string {
	return fmt.Sprintf("failed to check proxy %s: %v", e.ProxyID, e.Err)
}

// Unwrap returns the underlying error
func (e CheckError) Unwrap() error {
	return e.Err
}

// CheckBatch checks many proxies concurrently. Individual failures are
// collected rather than aborting the batch. Calls still go through the
// client's pacer, so the provider's rate limit is respected.
func (c *Client) CheckBatch(ctx context.Context, ids []string) BatchCheckResult {
	result := BatchCheckResult{
		Requested: len(ids),
	}

	if len(ids) == 0 {
		return result
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	var mu sync.Mutex

	for _, id := range ids {
		g.Go(func() error {
			resp, err := c.Check(ctx, id)

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err != nil:
				c.logger.Warn().
					Err(err).
					Str("proxy_id", id).
					Msg("Failed to check proxy")
				result.Failed = append(result.Failed, CheckError{ProxyID: id, Err: err})
			case resp.ProxyStatus:
				result.Valid = append(result.Valid, id)
			default:
				result.Invalid = append(result.Invalid, id)
			}
			return nil // Don't stop on individual errors
		})
	}

	_ = g.Wait()

	sort.Strings(result.Valid)
	sort.Strings(result.Invalid)
	sort.Slice(result.Failed, func(i, j int) bool {
		return result.Failed[i].ProxyID < result.Failed[j].ProxyID
	})

	return result
}
