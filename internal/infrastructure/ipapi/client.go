// Package ipapi looks up IP address geolocation on ip-api.com.
package ipapi

import (
	"context"
	"net/url"
	"strings"

	"github.com/everytoolsapi/backend/internal/domain/shared"
	"github.com/everytoolsapi/backend/internal/infrastructure/upstream"
)

// Fields requested from ip-api
const Fields = "status,message,continent,continentCode,country,countryCode,region,regionName,city,district,zip,lat,lon,timezone,offset,currency,isp,org,as,asname,reverse,mobile,proxy,hosting,query"

// Lookup errors reported by ip-api
var (
	ErrPrivateRange  = shared.Invalid("The IP address is in a private range. Please enter a public IP address.")
	ErrReservedRange = shared.Invalid("The IP address is in a reserved range. Please enter a public IP address.")
	ErrInvalidIP     = shared.Invalid("The IP address is invalid. Please enter a valid public IP address.")
)

var failureMessages = map[string]error{
	"private range":  ErrPrivateRange,
	"reserved range": ErrReservedRange,
	"invalid query":  ErrInvalidIP,
}

// Client queries the ip-api JSON endpoint.
type Client struct {
	http    *upstream.Client
	baseURL string
}

// NewClient creates a Client; baseURL is the JSON endpoint ending in a slash.
func NewClient(client *upstream.Client, baseURL string) *Client {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Client{http: client, baseURL: baseURL}
}

// Lookup returns the geolocation record of ip. Bookkeeping fields are removed
// and blank strings are reported as null.
func (c *Client) Lookup(ctx context.Context, ip string) (map[string]any, error) {
	resp, err := c.http.Get(ctx, c.baseURL+url.PathEscape(ip), url.Values{
		"lang":   {"en"},
		"fields": {Fields},
	}, nil)
	if err != nil {
		return nil, upstream.ClientError(err, shared.ErrOnlineRequestFailed)
	}
	if !resp.OK() {
		return nil, shared.ErrOnlineRequestFailed
	}

	var data map[string]any
	if err := resp.DecodeJSON(&data); err != nil {
		return nil, shared.ErrOnlineRequestFailed
	}

	if data["status"] != "success" {
		msg, _ := data["message"].(string)
		if mapped, ok := failureMessages[msg]; ok {
			return nil, mapped
		}
		return nil, shared.ErrOnlineRequestFailed
	}

	for _, k := range []string{"query", "status", "message"} {
		delete(data, k)
	}
	for k, v := range data {
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			data[k] = nil
		}
	}
	return data, nil
}
