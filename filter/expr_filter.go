package filter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/file"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/proxy6/proxy6"
)

// compiled keeps recently used programs so presets are compiled once
var compiled = newLRUCache[*ExprFilter](64)

// ExprFilter represents a compiled expr filter over proxies
type ExprFilter struct {
	program *vm.Program
	expr    string
}

// CompileExprFilter compiles an expr filter expression. The expression must
// evaluate to a boolean.
func CompileExprFilter(expression string) (*ExprFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{Expression: expression, Reason: "empty filter expression", Position: -1}
	}

	if f, ok := compiled.Get(expression); ok {
		return f, nil
	}

	// Compile against a zero proxy so field and helper types are checked
	program, err := expr.Compile(expression,
		expr.Env(proxyEnv(proxy6.Proxy{}, time.Time{})),
		expr.AsBool(),
	)
	if err != nil {
		cerr := &CompilationError{Expression: expression, Reason: err.Error(), Position: -1, Err: err}
		var fe *file.Error
		if errors.As(err, &fe) {
			cerr.Reason = fe.Message
			cerr.Position = fe.Column
		}
		return nil, cerr
	}

	f := &ExprFilter{
		program: program,
		expr:    expression,
	}
	compiled.Put(expression, f)
	return f, nil
}

// Evaluate evaluates the filter against a proxy at the current time
func (f *ExprFilter) Evaluate(p proxy6.Proxy) (bool, error) {
	return f.EvaluateAt(p, time.Now())
}

// EvaluateAt evaluates the filter with now as the reference time for date helpers
func (f *ExprFilter) EvaluateAt(p proxy6.Proxy, now time.Time) (bool, error) {
	result, err := expr.Run(f.program, proxyEnv(p, now))
	if err != nil {
		return false, &EvaluationError{Expression: f.expr, ProxyID: p.ID, Reason: err.Error(), Err: err}
	}

	match, ok := result.(bool)
	if !ok {
		return false, &EvaluationError{
			Expression: f.expr,
			ProxyID:    p.ID,
			Reason:     fmt.Sprintf("expression returned %T, not bool", result),
		}
	}
	return match, nil
}

// Apply returns the proxies matching the filter, keeping their order
func (f *ExprFilter) Apply(proxies []proxy6.Proxy) ([]proxy6.Proxy, error) {
	now := time.Now()
	matched := make([]proxy6.Proxy, 0, len(proxies))
	for _, p := range proxies {
		ok, err := f.EvaluateAt(p, now)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// String returns the original expression
func (f *ExprFilter) String() string {
	return f.expr
}

// proxyEnv exposes a proxy and helper functions to expressions
func proxyEnv(p proxy6.Proxy, now time.Time) map[string]any {
	ip := ""
	if p.IP.IsValid() {
		ip = p.IP.String()
	}

	return map[string]any{
		// Proxy data
		"ID":          p.ID,
		"IP":          ip,
		"Host":        p.Host,
		"Port":        p.Port,
		"User":        p.User,
		"Type":        string(p.Type),
		"Version":     int(p.Version),
		"Country":     p.Country,
		"Description": p.Description,
		"Active":      p.Active,
		"Date":        p.Date,
		"DateEnd":     p.DateEnd,
		"DaysLeft":    p.DaysLeft(now),

		// Proxy helpers
		"isSocks": func() bool {
			return p.Type == proxy6.ProtocolSOCKS5
		},
		"isHTTP": func() bool {
			return p.Type == proxy6.ProtocolHTTP
		},
		"isIPv6": func() bool {
			return p.Version == proxy6.VersionIPv6
		},
		"hasDescr": func(descr string) bool {
			return strings.EqualFold(p.Description, descr)
		},
		"expiresWithin": func(days int) bool {
			return !p.DateEnd.IsZero() && p.DateEnd.Before(now.AddDate(0, 0, days))
		},

		// Date helpers
		"daysSince": func(t time.Time) int {
			return int(now.Sub(t).Hours() / 24)
		},
		"daysUntil": func(t time.Time) int {
			return int(t.Sub(now).Hours() / 24)
		},
		"daysAgo": func(days int) time.Time {
			return now.AddDate(0, 0, -days)
		},
		"parseDate": func(dateStr string) time.Time {
			t, _ := time.Parse("2006-01-02", dateStr)
			return t
		},
		"now": func() time.Time {
			return now
		},

		// Case-insensitive string helpers. The case-sensitive forms are the
		// contains, startsWith and endsWith operators.
		"containsFold": func(str, substr string) bool {
			return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
		},
		"hasPrefixFold": func(str, prefix string) bool {
			return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
		},
		"hasSuffixFold": func(str, suffix string) bool {
			return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
		},
	}
}
