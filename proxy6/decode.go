package proxy6

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/netip"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/shopspring/decimal"
)

// Payload is a decoded JSON object as returned by the provider
type Payload map[string]any

// Provider timestamps look like "2016-06-19 16:32:39"
const dateLayout = "2006-01-02 15:04:05"

var (
	decimalType = reflect.TypeOf(decimal.Decimal{})
	timeType    = reflect.TypeOf(time.Time{})
	addrType    = reflect.TypeOf(netip.Addr{})
	typeType    = reflect.TypeOf(Protocol(""))
	versionType = reflect.TypeOf(Version(0))

	// matches the map keys and slice indexes in decoder field paths
	indexPattern = regexp.MustCompile(`\[[^\]]*\]`)
)

// parsePayload decodes a response body, keeping numbers exact
func parsePayload(body []byte) (Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload Payload
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, fmt.Errorf("response is not a JSON object")
	}
	return payload, nil
}

// decodeInto maps a payload onto a result struct. Fields are matched by their
// json tag, numeric strings are coerced, embedded structs are flattened.
// Every field without omitempty must be present in the payload.
func decodeInto(payload Payload, out any) error {
	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			emptyListToMapHook,
			decimalHook,
			timeHook,
			emptyAddrHook,
			mapstructure.StringToNetIPAddrHookFunc(),
			protocolHook,
			versionHook,
		),
		WeaklyTypedInput: true,
		Squash:           true,
		TagName:          "json",
		Metadata:         &md,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(map[string]any(payload)); err != nil {
		return err
	}

	if missing := missingFields(reflect.TypeOf(out), md.Unset); len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// missingFields returns the unset paths that point at required fields
func missingFields(t reflect.Type, unset []string) []string {
	var missing []string
	for _, path := range unset {
		if f, ok := fieldByPath(t, path); ok && required(f) {
			missing = append(missing, path)
		}
	}
	sort.Strings(missing)
	return missing
}

// fieldByPath resolves a decoder path such as "list[12].host" to the struct
// field it names
func fieldByPath(t reflect.Type, path string) (reflect.StructField, bool) {
	var field reflect.StructField
	for _, segment := range strings.Split(indexPattern.ReplaceAllString(path, "[]"), ".") {
		name, _, _ := strings.Cut(segment, "[")
		f, ok := fieldByTag(t, name)
		if !ok {
			return field, false
		}
		field = f
		t = f.Type
		for range strings.Count(segment, "[]") {
			t = deref(t).Elem()
		}
	}
	return field, true
}

func fieldByTag(t reflect.Type, name string) (reflect.StructField, bool) {
	t = deref(t)
	if t.Kind() != reflect.Struct {
		return reflect.StructField{}, false
	}
	for i := range t.NumField() {
		f := t.Field(i)
		tag, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if f.Anonymous && tag == "" {
			if inner, ok := fieldByTag(f.Type, name); ok {
				return inner, true
			}
			continue
		}
		if tag == "" {
			tag = f.Name
		}
		if tag == name {
			return f, true
		}
	}
	return reflect.StructField{}, false
}

func required(f reflect.StructField) bool {
	name, opts, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return false
	}
	for _, opt := range strings.Split(opts, ",") {
		if opt == "omitempty" {
			return false
		}
	}
	return true
}

func deref(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

type envelope interface {
	envelope() *Response
}

func (r *Response) envelope() *Response { return r }

// decodeResponse decodes payload into a new T and attaches the raw payload
func decodeResponse[T any, PT interface {
	*T
	envelope
}](payload Payload) (*T, error) {
	out := PT(new(T))
	if err := decodeInto(payload, out); err != nil {
		return nil, &Error{
			Kind:    KindUnexpected,
			Message: "failed to decode response",
			Payload: payload,
			Err:     err,
		}
	}
	env := out.envelope()
	if _, ok := payload["status"]; !ok {
		env.Status = "yes"
	}
	env.Raw = payload
	return (*T)(out), nil
}

// emptyListToMapHook accepts [] where an object is expected; the provider
// encodes empty collections as empty arrays.
func emptyListToMapHook(f reflect.Type, t reflect.Type, data any) (any, error) {
	if t.Kind() != reflect.Map || f.Kind() != reflect.Slice {
		return data, nil
	}
	if reflect.ValueOf(data).Len() == 0 {
		return reflect.MakeMap(t).Interface(), nil
	}
	return data, nil
}

func decimalHook(f reflect.Type, t reflect.Type, data any) (any, error) {
	if t != decimalType {
		return data, nil
	}
	switch v := data.(type) {
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		if strings.TrimSpace(v) == "" {
			return decimal.Zero, nil
		}
		return decimal.NewFromString(strings.TrimSpace(v))
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	}
	return data, nil
}

func timeHook(f reflect.Type, t reflect.Type, data any) (any, error) {
	if t != timeType || f.Kind() != reflect.String {
		return data, nil
	}
	s := strings.TrimSpace(reflect.ValueOf(data).String())
	if s == "" {
		return time.Time{}, nil
	}
	if ts, err := time.Parse(dateLayout, s); err == nil {
		return ts, nil
	}
	return time.Parse(time.RFC3339, s)
}

// emptyAddrHook leaves the address unset when the provider sends ""
func emptyAddrHook(f reflect.Type, t reflect.Type, data any) (any, error) {
	if t != addrType || f.Kind() != reflect.String {
		return data, nil
	}
	if strings.TrimSpace(reflect.ValueOf(data).String()) == "" {
		return netip.Addr{}, nil
	}
	return data, nil
}

// protocolHook accepts only the provider's protocol spellings
func protocolHook(f reflect.Type, t reflect.Type, data any) (any, error) {
	if t != typeType || f.Kind() != reflect.String {
		return data, nil
	}
	switch p := Protocol(reflect.ValueOf(data).String()); p {
	case ProtocolHTTP, ProtocolSOCKS5:
		return p, nil
	default:
		return nil, fmt.Errorf("unknown proxy type %q", string(p))
	}
}

// versionHook accepts only the provider's version numbers, sent as strings
// or numbers
func versionHook(f reflect.Type, t reflect.Type, data any) (any, error) {
	if t != versionType {
		return data, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(fmt.Sprint(data)))
	if err != nil {
		return nil, fmt.Errorf("invalid proxy version %v", data)
	}
	switch v := Version(n); v {
	case VersionIPv6, VersionIPv4, VersionIPv4Shared:
		return v, nil
	default:
		return nil, fmt.Errorf("unknown proxy version %d", n)
	}
}
