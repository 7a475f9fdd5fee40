package endpoint

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Limit is a single fixed-window rate limit, e.g. 10 requests per second
type Limit struct {
	Count  int64
	Window time.Duration
}

// String renders the limit in the "N/unit" notation
func (l Limit) String() string {
	switch l.Window {
	case time.Second:
		return fmt.Sprintf("%d/second", l.Count)
	case time.Minute:
		return fmt.Sprintf("%d/minute", l.Count)
	case time.Hour:
		return fmt.Sprintf("%d/hour", l.Count)
	case 24 * time.Hour:
		return fmt.Sprintf("%d/day", l.Count)
	default:
		return fmt.Sprintf("%d/%s", l.Count, l.Window)
	}
}

var windowUnits = map[string]time.Duration{
	"second": time.Second,
	"minute": time.Minute,
	"hour":   time.Hour,
	"day":    24 * time.Hour,
	"month":  30 * 24 * time.Hour,
	"year":   365 * 24 * time.Hour,
}

// ParseRateLimit parses limits such as "10/second;10000/day" or "2 per minute, 100 per day".
// Windows may carry a multiplier: "5/10 minutes".
func ParseRateLimit(spec string) ([]Limit, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}

	parts := strings.FieldsFunc(spec, func(r rune) bool { return r == ';' || r == ',' })
	limits := make([]Limit, 0, len(parts))
	for _, part := range parts {
		l, err := parseSingleLimit(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		limits = append(limits, l)
	}
	return limits, nil
}

func parseSingleLimit(s string) (Limit, error) {
	var countStr, windowStr string
	if i := strings.Index(s, "/"); i >= 0 {
		countStr, windowStr = s[:i], s[i+1:]
	} else if i := strings.Index(s, " per "); i >= 0 {
		countStr, windowStr = s[:i], s[i+len(" per "):]
	} else {
		return Limit{}, fmt.Errorf("invalid rate limit %q", s)
	}

	count, err := strconv.ParseInt(strings.TrimSpace(countStr), 10, 64)
	if err != nil || count <= 0 {
		return Limit{}, fmt.Errorf("invalid rate limit count in %q", s)
	}

	fields := strings.Fields(windowStr)
	multiplier := int64(1)
	switch len(fields) {
	case 1:
	case 2:
		multiplier, err = strconv.ParseInt(fields[0], 10, 64)
		if err != nil || multiplier <= 0 {
			return Limit{}, fmt.Errorf("invalid rate limit window in %q", s)
		}
		fields = fields[1:]
	default:
		return Limit{}, fmt.Errorf("invalid rate limit window in %q", s)
	}

	unit := strings.TrimSuffix(strings.ToLower(fields[0]), "s")
	window, ok := windowUnits[unit]
	if !ok {
		return Limit{}, fmt.Errorf("unknown rate limit unit %q", fields[0])
	}
	return Limit{Count: count, Window: window * time.Duration(multiplier)}, nil
}
