// Package useragent parses browser user agent strings with the ua-parser
// regex definitions bundled in uap-go.
package useragent

import (
	"strconv"
	"strings"

	"github.com/ua-parser/uap-go/uaparser"
)

// Version is a parsed product version
type Version struct {
	Family        string `json:"family"`
	Version       []int  `json:"version"`
	VersionString string `json:"versionString"`
}

// Device describes the hardware a user agent reports
type Device struct {
	Family string  `json:"family"`
	Brand  *string `json:"brand"`
	Model  *string `json:"model"`
}

// Result is the parsed form of a user agent string
type Result struct {
	UAString string  `json:"uaString"`
	OS       Version `json:"os"`
	Browser  Version `json:"browser"`
	Device   Device  `json:"device"`
}

// Parser wraps a compiled uap-go parser. It is safe for concurrent use.
type Parser struct {
	uap *uaparser.Parser
}

// NewParser compiles the bundled regex definitions.
func NewParser() *Parser {
	return &Parser{uap: uaparser.NewFromSaved()}
}

// Parse extracts OS, browser and device information from ua.
func (p *Parser) Parse(ua string) *Result {
	client := p.uap.Parse(ua)

	return &Result{
		UAString: ua,
		OS:       newVersion(client.Os.Family, client.Os.Major, client.Os.Minor, client.Os.Patch, client.Os.PatchMinor),
		Browser:  newVersion(client.UserAgent.Family, client.UserAgent.Major, client.UserAgent.Minor, client.UserAgent.Patch),
		Device: Device{
			Family: client.Device.Family,
			Brand:  optional(client.Device.Brand),
			Model:  optional(client.Device.Model),
		},
	}
}

// newVersion keeps the leading numeric components; parsing stops at the first
// missing or non-numeric part.
func newVersion(family string, parts ...string) Version {
	v := Version{Family: family, Version: []int{}}
	var str []string
	for _, part := range parts {
		if part == "" {
			break
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			break
		}
		v.Version = append(v.Version, n)
		str = append(str, part)
	}
	v.VersionString = strings.Join(str, ".")
	return v
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
