package proxy6

import (
	"context"
	"net/url"
)

// API defines the interface for proxy6 operations
type API interface {
	// Execute calls a raw API method
	Execute(ctx context.Context, method string, params url.Values) (Payload, error)

	// GetPrice returns the price of an order
	GetPrice(ctx context.Context, count, period int, version Version) (*PriceResponse, error)

	// GetCount returns the number of proxies available in a country
	GetCount(ctx context.Context, country string, version Version) (*CountResponse, error)

	// GetCountries returns the countries a version can be bought in
	GetCountries(ctx context.Context, version Version) (*CountriesResponse, error)

	// GetProxies lists the account's proxies
	GetProxies(ctx context.Context, state State, descr string) (*ProxiesResponse, error)

	// SetType changes the protocol of proxies
	SetType(ctx context.Context, ids []string, typ Protocol) (*Response, error)

	// SetDescription changes the technical description of proxies
	SetDescription(ctx context.Context, newDescr, oldDescr string, ids []string) (*SetDescriptionResponse, error)

	// Buy purchases proxies
	Buy(ctx context.Context, req BuyRequest) (*BuyResponse, error)

	// Prolong renews proxies
	Prolong(ctx context.Context, period int, ids []string) (*ProlongResponse, error)

	// Delete removes proxies
	Delete(ctx context.Context, ids []string, descr string) (*DeleteResponse, error)

	// Check verifies that a proxy works
	Check(ctx context.Context, id string) (*CheckResponse, error)

	// IPAuth manages IP based authorization
	IPAuth(ctx context.Context, ips []string, remove bool) (*Response, error)
}

var _ API = (*Client)(nil)
