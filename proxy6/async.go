package proxy6

import (
	"context"
)

// Future is the pending result of an AsyncClient call
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

func goCall[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.value, f.err = fn(ctx)
	}()
	return f
}

// Done is closed once the call has finished
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the call finishes or ctx is done. Giving up on ctx does
// not cancel the call itself; cancel the context passed to the AsyncClient
// method for that.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// AsyncClient is the non-blocking view of a Client. Each method starts the
// call and returns immediately; the request pipeline is the same one the
// blocking methods use.
type AsyncClient struct {
	c *Client
}

// NewAsyncClient creates a client whose methods return futures
func NewAsyncClient(c *Client) *AsyncClient {
	return &AsyncClient{c: c}
}

// Client returns the underlying blocking client
func (a *AsyncClient) Client() *Client {
	return a.c
}

// GetPrice starts Client.GetPrice
func (a *AsyncClient) GetPrice(ctx context.Context, count, period int, version Version) *Future[*PriceResponse] {
	return goCall(ctx, func(ctx context.Context) (*PriceResponse, error) {
		return a.c.GetPrice(ctx, count, period, version)
	})
}

// GetCount starts Client.GetCount
func (a *AsyncClient) GetCount(ctx context.Context, country string, version Version) *Future[*CountResponse] {
	return goCall(ctx, func(ctx context.Context) (*CountResponse, error) {
		return a.c.GetCount(ctx, country, version)
	})
}

// GetCountries starts Client.GetCountries
func (a *AsyncClient) GetCountries(ctx context.Context, version Version) *Future[*CountriesResponse] {
	return goCall(ctx, func(ctx context.Context) (*CountriesResponse, error) {
		return a.c.GetCountries(ctx, version)
	})
}

// GetProxies starts Client.GetProxies
func (a *AsyncClient) GetProxies(ctx context.Context, state State, descr string) *Future[*ProxiesResponse] {
	return goCall(ctx, func(ctx context.Context) (*ProxiesResponse, error) {
		return a.c.GetProxies(ctx, state, descr)
	})
}

// SetType starts Client.SetType
func (a *AsyncClient) SetType(ctx context.Context, ids []string, typ Protocol) *Future[*Response] {
	return goCall(ctx, func(ctx context.Context) (*Response, error) {
		return a.c.SetType(ctx, ids, typ)
	})
}

// SetDescription starts Client.SetDescription
func (a *AsyncClient) SetDescription(ctx context.Context, newDescr, oldDescr string, ids []string) *Future[*SetDescriptionResponse] {
	return goCall(ctx, func(ctx context.Context) (*SetDescriptionResponse, error) {
		return a.c.SetDescription(ctx, newDescr, oldDescr, ids)
	})
}

// Buy starts Client.Buy
func (a *AsyncClient) Buy(ctx context.Context, req BuyRequest) *Future[*BuyResponse] {
	return goCall(ctx, func(ctx context.Context) (*BuyResponse, error) {
		return a.c.Buy(ctx, req)
	})
}

// Prolong starts Client.Prolong
func (a *AsyncClient) Prolong(ctx context.Context, period int, ids []string) *Future[*ProlongResponse] {
	return goCall(ctx, func(ctx context.Context) (*ProlongResponse, error) {
		return a.c.Prolong(ctx, period, ids)
	})
}

// Delete starts Client.Delete. Argument errors are reported through the future.
func (a *AsyncClient) Delete(ctx context.Context, ids []string, descr string) *Future[*DeleteResponse] {
	return goCall(ctx, func(ctx context.Context) (*DeleteResponse, error) {
		return a.c.Delete(ctx, ids, descr)
	})
}

// Check starts Client.Check
func (a *AsyncClient) Check(ctx context.Context, id string) *Future[*CheckResponse] {
	return goCall(ctx, func(ctx context.Context) (*CheckResponse, error) {
		return a.c.Check(ctx, id)
	})
}

// IPAuth starts Client.IPAuth
func (a *AsyncClient) IPAuth(ctx context.Context, ips []string, remove bool) *Future[*Response] {
	return goCall(ctx, func(ctx context.Context) (*Response, error) {
		return a.c.IPAuth(ctx, ips, remove)
	})
}
