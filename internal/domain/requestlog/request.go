package requestlog

import (
	"errors"
	"net/url"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// Status is the lifecycle state of an API request
type Status string

const (
	StatusStarted   Status = "started"
	StatusSuccess   Status = "success"
	StatusException Status = "exception"
)

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	switch s {
	case StatusStarted, StatusSuccess, StatusException:
		return true
	}
	return false
}

// IsTerminal reports whether no further status may follow s
func (s Status) IsTerminal() bool {
	return s == StatusSuccess || s == StatusException
}

// Column widths of the request log tables
const (
	MaxRouteLength   = 255
	MaxParamsLength  = 2048
	MaxMessageLength = 1024
)

var (
	ErrEmptyRoute       = errors.New("requestlog: route cannot be empty")
	ErrInvalidStatus    = errors.New("requestlog: invalid status")
	ErrRequestNotFound  = errors.New("requestlog: request not found")
	ErrAlreadyCompleted = errors.New("requestlog: request already completed")
)

// Request is a single API call recorded for auditing
type Request struct {
	ID         int64       `json:"id"`
	Route      string      `json:"route"`
	Params     string      `json:"params"`
	OriginIP   string      `json:"originIp"`
	CreatedAt  time.Time   `json:"createdAt"`
	Logs       []StatusLog `json:"logs"`
	Exceptions []Exception `json:"exceptions"`
}

// StatusLog is one status transition of a request
type StatusLog struct {
	ID        int64     `json:"id"`
	RequestID int64     `json:"requestId"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// Exception is an error message returned to the client for a request
type Exception struct {
	ID        int64     `json:"id"`
	RequestID int64     `json:"requestId"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewRequest creates a request record from the route and query parameters
func NewRequest(route string, query url.Values, originIP string) (*Request, error) {
	route = strings.TrimSpace(route)
	if route == "" {
		return nil, ErrEmptyRoute
	}
	return &Request{
		Route:     truncate(route, MaxRouteLength),
		Params:    truncate(EncodeParams(query), MaxParamsLength),
		OriginIP:  originIP,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// CurrentStatus returns the latest logged status, or "" if none
func (r *Request) CurrentStatus() Status {
	if len(r.Logs) == 0 {
		return ""
	}
	return r.Logs[len(r.Logs)-1].Status
}

// EncodeParams renders query parameters as "?k=v&k2=v2" with keys sorted.
// Repeated keys keep every value. An empty query yields "".
func EncodeParams(query url.Values) string {
	if len(query) == 0 {
		return ""
	}
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		for _, v := range query[k] {
			if b.Len() == 0 {
				b.WriteByte('?')
			} else {
				b.WriteByte('&')
			}
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(v)
		}
	}
	return b.String()
}

// TruncateMessage shortens an exception message to the column width
func TruncateMessage(msg string) string {
	return truncate(msg, MaxMessageLength)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	s = s[:max]
	for !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}
