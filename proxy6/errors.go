package proxy6

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind classifies an Error
type Kind int

const (
	// KindUnexpected covers unmapped provider error codes and responses that cannot be decoded
	KindUnexpected Kind = iota
	// KindArgument is a local validation failure, raised before any request is made
	KindArgument
	// KindUnexpectedTransport is a non-2xx, non-503 status or a network failure
	KindUnexpectedTransport
	// KindRateLimited means the provider kept answering 503 past the retry ceiling
	KindRateLimited
	// KindUnknown is provider error 30, e.g. the proxies already have the requested type
	KindUnknown
	// KindAuth is provider error 100, a wrong API key
	KindAuth
	// KindMethod is provider error 110, a wrong method name
	KindMethod
	// KindCount is provider error 200, a wrong or missing proxy count
	KindCount
	// KindPeriod is provider error 210, a wrong or missing period
	KindPeriod
	// KindCountry is provider error 220, a wrong or missing ISO2 country
	KindCountry
	// KindIDs is provider error 230, a malformed proxy id list
	KindIDs
	// KindDescription is provider error 250, a wrong or missing description
	KindDescription
	// KindType is provider error 260, a wrong or missing protocol
	KindType
	// KindActiveProxyLimit is provider error 300, more proxies requested than available
	KindActiveProxyLimit
	// KindInsufficientBalance is provider error 400, the balance is too low
	KindInsufficientBalance
	// KindNotFound is provider error 404, the requested item does not exist
	KindNotFound
	// KindPrice is provider error 410, the computed price is zero or less
	KindPrice
)

var kindNames = map[Kind]string{
	KindUnexpected:          "unexpected",
	KindArgument:            "argument",
	KindUnexpectedTransport: "unexpected transport",
	KindRateLimited:         "rate limited",
	KindUnknown:             "unknown",
	KindAuth:                "auth",
	KindMethod:              "method",
	KindCount:               "count",
	KindPeriod:              "period",
	KindCountry:             "country",
	KindIDs:                 "ids",
	KindDescription:         "description",
	KindType:                "type",
	KindActiveProxyLimit:    "active proxy limit",
	KindInsufficientBalance: "insufficient balance",
	KindNotFound:            "not found",
	KindPrice:               "price",
}

// String returns the string representation of a Kind
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Sentinels for use with errors.Is. They match any *Error of the same kind.
var (
	ErrUnexpected          = &Error{Kind: KindUnexpected}
	ErrArgument            = &Error{Kind: KindArgument}
	ErrUnexpectedTransport = &Error{Kind: KindUnexpectedTransport}
	ErrRateLimited         = &Error{Kind: KindRateLimited}
	ErrUnknown             = &Error{Kind: KindUnknown}
	ErrAuth                = &Error{Kind: KindAuth}
	ErrMethod              = &Error{Kind: KindMethod}
	ErrCount               = &Error{Kind: KindCount}
	ErrPeriod              = &Error{Kind: KindPeriod}
	ErrCountry             = &Error{Kind: KindCountry}
	ErrIDs                 = &Error{Kind: KindIDs}
	ErrDescription         = &Error{Kind: KindDescription}
	ErrType                = &Error{Kind: KindType}
	ErrActiveProxyLimit    = &Error{Kind: KindActiveProxyLimit}
	ErrInsufficientBalance = &Error{Kind: KindInsufficientBalance}
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrPrice               = &Error{Kind: KindPrice}
)

// Error is the single error type returned by the client
type Error struct {
	Kind Kind
	// Code is the provider error_id, zero when the error did not come from the provider
	Code    int
	Message string
	// Payload is the raw response the error was classified from
	Payload Payload
	// StatusCode is the HTTP status of the final attempt, if one was received
	StatusCode int
	// Attempts is the number of HTTP attempts made
	Attempts int
	Err      error
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("proxy6: ")
	b.WriteString(e.Kind.String())
	if e.Code != 0 {
		fmt.Fprintf(&b, " error %d", e.Code)
	} else {
		b.WriteString(" error")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// IsProviderFault reports whether the provider answered with an error
// marker. Success payloads that failed to decode are not provider faults.
func (e *Error) IsProviderFault() bool {
	return e.Payload != nil && truthy(e.Payload["error"])
}

// IsRateLimited reports whether the error is a rate-limit failure
func (e *Error) IsRateLimited() bool {
	return e.Kind == KindRateLimited
}

// KindOf returns the kind of err, or KindUnexpected if err is not an *Error
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// IsArgument reports whether err is a local validation failure
func IsArgument(err error) bool {
	return errors.Is(err, ErrArgument)
}

// IsRateLimited reports whether err is a rate-limit failure
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsProviderFault reports whether err carries a coded provider error
func IsProviderFault(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.IsProviderFault()
}

func argumentError(format string, args ...any) error {
	return &Error{Kind: KindArgument, Message: fmt.Sprintf(format, args...)}
}

type fault struct {
	kind    Kind
	message string
	// useProviderText prefers the provider's own error text when present
	useProviderText bool
}

var faults = map[int]fault{
	30:  {KindUnknown, "unknown error", true},
	100: {KindAuth, "authorization error, wrong key", false},
	110: {KindMethod, "wrong method", false},
	200: {KindCount, "wrong proxy quantity, or quantity is missing", false},
	210: {KindPeriod, "period error, wrong number of days or it is missing", false},
	220: {KindCountry, "country error, wrong country (must be ISO2) or it is missing", false},
	230: {KindIDs, "error in the list of proxy ids, ids must be comma separated", false},
	250: {KindDescription, "technical description error, wrong or missing", false},
	260: {KindType, "proxy type (protocol) error, wrong or missing", false},
	300: {KindActiveProxyLimit, "more proxies requested than are available", false},
	400: {KindInsufficientBalance, "balance is missing or too low for the requested purchase", false},
	404: {KindNotFound, "requested item not found", false},
	410: {KindPrice, "price calculation error, total cost is zero or less", false},
}

var unexpectedFault = fault{KindUnexpected, "unexpected API error", true}

// Classify inspects a decoded response. A payload without a truthy error
// marker is returned unchanged; otherwise the error_id is mapped to an *Error
// carrying the payload.
func Classify(payload Payload) (Payload, error) {
	if !truthy(payload["error"]) {
		return payload, nil
	}

	code, _ := intValue(payload["error_id"])
	f, ok := faults[code]
	if !ok {
		f = unexpectedFault
	}

	msg := f.message
	if f.useProviderText {
		if text, ok := payload["error"].(string); ok && text != "" {
			msg = text
		}
	}

	return nil, &Error{
		Kind:    f.kind,
		Code:    code,
		Message: msg,
		Payload: payload,
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case float64:
		return t != 0
	case int:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

func intValue(v any) (int, bool) {
	switch t := v.(type) {
	case json.Number:
		i, err := t.Int64()
		return int(i), err == nil
	case float64:
		return int(t), true
	case int:
		return t, true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(t))
		return i, err == nil
	}
	return 0, false
}
