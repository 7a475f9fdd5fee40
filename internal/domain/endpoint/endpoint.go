package endpoint

import (
	"net/http"
	"strings"
	"time"
)

// Category groups endpoints under a common path prefix
type Category string

const (
	CategoryParser     Category = "parser"
	CategoryTools      Category = "tools"
	CategoryRandomizer Category = "randomizer"
	CategoryScraper    Category = "scraper"
)

// ParamType describes the expected type of a query parameter
type ParamType string

const (
	ParamString  ParamType = "string"
	ParamInteger ParamType = "integer"
	ParamNumber  ParamType = "number"
	ParamBoolean ParamType = "boolean"
	ParamURL     ParamType = "url"
)

// Parameter describes a query parameter accepted by an endpoint
type Parameter struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Type        ParamType `json:"type"`
	Required    bool      `json:"required"`
	Enum        []string  `json:"enum,omitempty"`
	Default     string    `json:"default,omitempty"`
}

// Endpoint describes a single tool endpoint exposed under /api/<version>/
type Endpoint struct {
	Category    Category      `json:"category"`
	Name        string        `json:"name"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Parameters  []Parameter   `json:"parameters"`
	Methods     []string      `json:"methods"`
	RateLimit   string        `json:"rateLimit"`
	CacheTTL    time.Duration `json:"-"`
	Ready       bool          `json:"ready"`

	// CallerScoped endpoints answer from the caller's IP or User-Agent when
	// no query is given, so cached entries must not be shared between clients
	CallerScoped bool `json:"-"`
}

// Path returns the endpoint path relative to the API version, e.g. "parser/url"
func (e Endpoint) Path() string {
	return string(e.Category) + "/" + e.Name
}

// Cacheable reports whether successful responses may be cached
func (e Endpoint) Cacheable() bool {
	return e.CacheTTL > 0
}

// AllowsMethod reports whether the HTTP method is accepted
func (e Endpoint) AllowsMethod(method string) bool {
	if len(e.Methods) == 0 {
		return method == http.MethodGet
	}
	for _, m := range e.Methods {
		if strings.EqualFold(m, method) {
			return true
		}
	}
	return false
}

// RequiredParameters returns the names of the required parameters
func (e Endpoint) RequiredParameters() []string {
	var names []string
	for _, p := range e.Parameters {
		if p.Required {
			names = append(names, p.Name)
		}
	}
	return names
}
