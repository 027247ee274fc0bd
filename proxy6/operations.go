package proxy6

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxDescriptionLength is the longest technical description the provider accepts
const MaxDescriptionLength = 50

// GetPrice returns the cost of count proxies of a version for period days
func (c *Client) GetPrice(ctx context.Context, count, period int, version Version) (*PriceResponse, error) {
	params := url.Values{}
	params.Set("count", strconv.Itoa(count))
	params.Set("period", strconv.Itoa(period))
	params.Set("version", version.param())

	payload, err := c.Execute(ctx, "getprice", params)
	if err != nil {
		return nil, err
	}
	return decodeResponse[PriceResponse](payload)
}

// GetCount returns how many proxies of a version can be bought in a country
func (c *Client) GetCount(ctx context.Context, country string, version Version) (*CountResponse, error) {
	params := url.Values{}
	params.Set("country", country)
	params.Set("version", version.param())

	payload, err := c.Execute(ctx, "getcount", params)
	if err != nil {
		return nil, err
	}
	return decodeResponse[CountResponse](payload)
}

// GetCountries returns the ISO2 codes of countries where a version is available
func (c *Client) GetCountries(ctx context.Context, version Version) (*CountriesResponse, error) {
	params := url.Values{}
	params.Set("version", version.param())

	payload, err := c.Execute(ctx, "getcountry", params)
	if err != nil {
		return nil, err
	}
	return decodeResponse[CountriesResponse](payload)
}

// GetProxies lists the account's proxies in the given state. A non-empty
// descr restricts the list to proxies with that technical description.
func (c *Client) GetProxies(ctx context.Context, state State, descr string) (*ProxiesResponse, error) {
	if state == "" {
		state = StateAll
	}
	params := url.Values{}
	params.Set("state", string(state))
	if descr != "" {
		params.Set("descr", descr)
	}

	payload, err := c.Execute(ctx, "getproxy", params)
	if err != nil {
		return nil, err
	}
	return decodeResponse[ProxiesResponse](payload)
}

// SetType changes the protocol of the given proxies.
//
// If every proxy already has the requested type the provider answers with
// error 30 (KindUnknown).
func (c *Client) SetType(ctx context.Context, ids []string, typ Protocol) (*Response, error) {
	params := url.Values{}
	params.Set("ids", joinIDs(ids))
	params.Set("type", string(typ))

	payload, err := c.Execute(ctx, "settype", params)
	if err != nil {
		return nil, err
	}
	return decodeResponse[Response](payload)
}

// SetDescription replaces the technical description of proxies selected
// either by their current description (oldDescr) or by ids. Exactly one of
// the two selectors must be given.
func (c *Client) SetDescription(ctx context.Context, newDescr, oldDescr string, ids []string) (*SetDescriptionResponse, error) {
	if (oldDescr == "") == (len(ids) == 0) {
		return nil, argumentError("exactly one of old description or ids must be given")
	}
	if err := checkDescription("new description", newDescr); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("new", newDescr)
	if oldDescr != "" {
		params.Set("old", oldDescr)
	}
	if len(ids) > 0 {
		params.Set("ids", joinIDs(ids))
	}

	payload, err := c.Execute(ctx, "setdescr", params)
	if err != nil {
		return nil, err
	}
	return decodeResponse[SetDescriptionResponse](payload)
}

// Buy purchases proxies
func (c *Client) Buy(ctx context.Context, req BuyRequest) (*BuyResponse, error) {
	if req.Description != "" {
		if err := checkDescription("description", req.Description); err != nil {
			return nil, err
		}
	}
	version := req.Version
	if version == 0 {
		version = VersionIPv6
	}
	typ := req.Type
	if typ == "" {
		typ = ProtocolHTTP
	}

	params := url.Values{}
	params.Set("count", strconv.Itoa(req.Count))
	params.Set("period", strconv.Itoa(req.Period))
	params.Set("country", req.Country)
	params.Set("version", version.param())
	params.Set("type", string(typ))
	if req.Description != "" {
		params.Set("descr", req.Description)
	}
	if req.AutoProlong {
		// Presence of the key enables auto renewal
		params.Set("auto_prolong", "")
	}

	payload, err := c.Execute(ctx, "buy", params)
	if err != nil {
		return nil, err
	}
	return decodeResponse[BuyResponse](payload)
}

// Prolong renews the given proxies for period days
func (c *Client) Prolong(ctx context.Context, period int, ids []string) (*ProlongResponse, error) {
	params := url.Values{}
	params.Set("period", strconv.Itoa(period))
	params.Set("ids", joinIDs(ids))

	payload, err := c.Execute(ctx, "prolong", params)
	if err != nil {
		return nil, err
	}
	return decodeResponse[ProlongResponse](payload)
}

// Delete removes proxies selected either by ids or by technical description.
// Exactly one of the two selectors must be given.
func (c *Client) Delete(ctx context.Context, ids []string, descr string) (*DeleteResponse, error) {
	if (len(ids) == 0) == (descr == "") {
		return nil, argumentError("exactly one of ids or description must be given")
	}

	params := url.Values{}
	if len(ids) > 0 {
		params.Set("ids", joinIDs(ids))
	} else {
		params.Set("descr", descr)
	}

	payload, err := c.Execute(ctx, "delete", params)
	if err != nil {
		return nil, err
	}
	return decodeResponse[DeleteResponse](payload)
}

// Check asks the provider whether a proxy is working
func (c *Client) Check(ctx context.Context, id string) (*CheckResponse, error) {
	params := url.Values{}
	params.Set("ids", id)

	payload, err := c.Execute(ctx, "check", params)
	if err != nil {
		return nil, err
	}
	return decodeResponse[CheckResponse](payload)
}

// IPAuth binds proxy authorization to the given IP addresses, or removes the
// binding when remove is set. The two are mutually exclusive.
func (c *Client) IPAuth(ctx context.Context, ips []string, remove bool) (*Response, error) {
	if len(ips) > 0 && remove {
		return nil, argumentError("ip list and delete flag are mutually exclusive")
	}
	if len(ips) == 0 && !remove {
		return nil, argumentError("either an ip list or the delete flag must be given")
	}

	params := url.Values{}
	if remove {
		params.Set("ip", "delete")
	} else {
		params.Set("ip", strings.Join(ips, ","))
	}

	payload, err := c.Execute(ctx, "ipauth", params)
	if err != nil {
		return nil, err
	}
	return decodeResponse[Response](payload)
}

func checkDescription(name, descr string) error {
	n := utf8.RuneCountInString(descr)
	if n < 1 || n > MaxDescriptionLength {
		return argumentError("%s must be 1 to %d characters long, got %d", name, MaxDescriptionLength, n)
	}
	return nil
}

func joinIDs(ids []string) string {
	return strings.Join(ids, ",")
}
