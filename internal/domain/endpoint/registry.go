package endpoint

import (
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/everytoolsapi/backend/internal/domain/shared"
)

// LatestVersion is the only API version that serves requests
const LatestVersion = "v2"

// outdatedVersions were served in the past and get a dedicated error message
var outdatedVersions = map[string]struct{}{
	"v1": {},
}

// CheckVersion validates an API version path segment
func CheckVersion(version string) error {
	if version == LatestVersion {
		return nil
	}
	if _, ok := outdatedVersions[version]; ok {
		return shared.ErrOutdatedAPIVersion
	}
	return shared.ErrInvalidAPIVersion
}

// Registry is a read-mostly set of endpoints indexed by path
type Registry struct {
	mu        sync.RWMutex
	endpoints map[string]Endpoint
	order     []string
}

// NewRegistry creates a registry holding the given endpoints
func NewRegistry(endpoints ...Endpoint) (*Registry, error) {
	r := &Registry{endpoints: make(map[string]Endpoint, len(endpoints))}
	for _, e := range endpoints {
		if err := r.Add(e); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add registers an endpoint; paths must be unique
func (r *Registry) Add(e Endpoint) error {
	if e.Category == "" || e.Name == "" {
		return fmt.Errorf("endpoint requires a category and a name")
	}
	if e.RateLimit != "" {
		if _, err := ParseRateLimit(e.RateLimit); err != nil {
			return fmt.Errorf("endpoint %s: %w", e.Path(), err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	path := e.Path()
	if _, exists := r.endpoints[path]; exists {
		return fmt.Errorf("endpoint %s already registered", path)
	}
	r.endpoints[path] = e
	r.order = append(r.order, path)
	return nil
}

// Lookup finds an endpoint by its path, e.g. "tools/ip"
func (r *Registry) Lookup(path string) (Endpoint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.endpoints[path]
	return e, ok
}

// All returns every endpoint in registration order
func (r *Registry) All() []Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Endpoint, 0, len(r.order))
	for _, p := range r.order {
		out = append(out, r.endpoints[p])
	}
	return out
}

// ByCategory groups endpoints by category, each group sorted by name
func (r *Registry) ByCategory() map[Category][]Endpoint {
	groups := make(map[Category][]Endpoint)
	for _, e := range r.All() {
		groups[e.Category] = append(groups[e.Category], e)
	}
	for c := range groups {
		sort.Slice(groups[c], func(i, j int) bool { return groups[c][i].Name < groups[c][j].Name })
	}
	return groups
}

// Len returns the number of registered endpoints
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

func queryParam(name, description string, required bool) Parameter {
	return Parameter{Name: name, Description: description, Type: ParamString, Required: required}
}

// Default returns the registry of every tool endpoint served by the API
func Default() *Registry {
	const (
		parserLimit = "10/second;10000/day"
		scraperLim  = "2/second;30/minute;400/day"
	)
	get := []string{http.MethodGet}

	r, err := NewRegistry(
		Endpoint{
			Category: CategoryParser, Name: "useragent", Title: "User-Agent parser",
			Description: "Parses a User-Agent string into operating system, browser and device details.",
			Parameters:  []Parameter{queryParam("query", "User-Agent string. Defaults to the request User-Agent header.", false)},
			Methods:     get, RateLimit: parserLimit, CacheTTL: 5 * time.Second, Ready: true, CallerScoped: true,
		},
		Endpoint{
			Category: CategoryParser, Name: "url", Title: "URL parser",
			Description: "Splits a URL into protocol, hostname, path, query parameters and fragment.",
			Parameters:  []Parameter{queryParam("query", "URL to parse.", true)},
			Methods:     get, RateLimit: parserLimit, CacheTTL: 5 * time.Second, Ready: true,
		},
		Endpoint{
			Category: CategoryParser, Name: "sec-to-hms", Title: "Seconds to HH:MM:SS",
			Description: "Converts a number of seconds to an HH:MM:SS string.",
			Parameters:  []Parameter{{Name: "query", Description: "Non-negative number of seconds.", Type: ParamInteger, Required: true}},
			Methods:     get, RateLimit: parserLimit, CacheTTL: 5 * time.Second, Ready: true,
		},
		Endpoint{
			Category: CategoryParser, Name: "email", Title: "E-mail parser",
			Description: "Splits an e-mail address into user and domain.",
			Parameters:  []Parameter{queryParam("query", "E-mail address.", true)},
			Methods:     get, RateLimit: parserLimit, CacheTTL: 5 * time.Second, Ready: true,
		},
		Endpoint{
			Category: CategoryParser, Name: "text-counter", Title: "Text counter",
			Description: "Counts letters, digits, symbols, words and spaces in a text.",
			Parameters:  []Parameter{queryParam("query", "Text to analyse.", true)},
			Methods:     get, RateLimit: parserLimit, CacheTTL: 5 * time.Second, Ready: true,
		},
		Endpoint{
			Category: CategoryTools, Name: "text-lang-detector", Title: "Text language detector",
			Description: "Detects the language a text is written in.",
			Parameters:  []Parameter{queryParam("query", "Text to analyse.", true)},
			Methods:     get, RateLimit: "4/second;800/day", CacheTTL: time.Hour, Ready: true,
		},
		Endpoint{
			Category: CategoryTools, Name: "text-translator", Title: "Text translator",
			Description: "Translates a text to the destination language.",
			Parameters: []Parameter{
				queryParam("query", "Text to translate.", true),
				queryParam("dest_lang", "Destination language code.", true),
				{Name: "src_lang", Description: "Source language code.", Type: ParamString, Default: "auto"},
			},
			Methods: get, RateLimit: "4/second;600/day", CacheTTL: time.Hour, Ready: true,
		},
		Endpoint{
			Category: CategoryTools, Name: "ip", Title: "Client IP address",
			Description: "Returns the IP address the request originated from.",
			Methods:     get, RateLimit: parserLimit, CacheTTL: 5 * time.Second, Ready: true, CallerScoped: true,
		},
		Endpoint{
			Category: CategoryTools, Name: "ip-info", Title: "IP address information",
			Description: "Looks up geolocation and network details of a public IP address.",
			Parameters:  []Parameter{queryParam("query", "IP address. Defaults to the client IP address.", false)},
			Methods:     get, RateLimit: "2/second;60/minute;1000/day", CacheTTL: time.Hour, Ready: true, CallerScoped: true,
		},
		Endpoint{
			Category: CategoryTools, Name: "latest-ffmpeg-download-url", Title: "Latest FFmpeg build URLs",
			Description: "Lists download URLs of the latest FFmpeg builds matching the given filters.",
			Parameters: []Parameter{
				{Name: "os", Description: "Target operating system.", Type: ParamString, Enum: []string{"windows", "linux"}},
				{Name: "arch", Description: "Target architecture.", Type: ParamString, Enum: []string{"amd32", "amd64", "arm32", "arm64"}},
				{Name: "license", Description: "Build license.", Type: ParamString, Enum: []string{"gpl", "lgpl"}},
				{Name: "shared", Description: "Shared library build.", Type: ParamBoolean, Enum: []string{"true", "false"}},
			},
			Methods: get, RateLimit: "1/second;20/minute;600/day", CacheTTL: 4 * time.Hour, Ready: true,
		},
		Endpoint{
			Category: CategoryTools, Name: "video-url-info", Title: "Video URL information",
			Description: "Inspects a remote video with ffprobe and returns its format and streams.",
			Parameters:  []Parameter{{Name: "query", Description: "Video URL.", Type: ParamURL, Required: true}},
			Methods:     get, RateLimit: "2/second;60/minute;600/day", CacheTTL: time.Hour, Ready: true,
		},
		Endpoint{
			Category: CategoryRandomizer, Name: "int-number", Title: "Random integer",
			Description: "Returns a random integer between min and max, inclusive.",
			Parameters: []Parameter{
				{Name: "min", Description: "Lower bound.", Type: ParamInteger, Required: true},
				{Name: "max", Description: "Upper bound.", Type: ParamInteger, Required: true},
			},
			Methods: get, RateLimit: parserLimit, Ready: true,
		},
		Endpoint{
			Category: CategoryRandomizer, Name: "float-number", Title: "Random float",
			Description: "Returns a random decimal number between min and max.",
			Parameters: []Parameter{
				{Name: "min", Description: "Lower bound.", Type: ParamNumber, Required: true},
				{Name: "max", Description: "Upper bound.", Type: ParamNumber, Required: true},
			},
			Methods: get, RateLimit: parserLimit, Ready: true,
		},
		Endpoint{
			Category: CategoryScraper, Name: "google-search", Title: "Google search",
			Description: "Returns result URLs of a Google search.",
			Parameters: []Parameter{
				queryParam("query", "Search terms.", true),
				{Name: "max_results", Description: "Number of results, 1 to 50.", Type: ParamInteger, Default: "10"},
			},
			Methods: get, RateLimit: scraperLim, CacheTTL: time.Hour, Ready: true,
		},
		Endpoint{
			Category: CategoryScraper, Name: "instagram-reels", Title: "Instagram reels",
			Description: "Returns the media and thumbnail URLs of an Instagram reel.",
			Parameters:  []Parameter{{Name: "query", Description: "Instagram reel URL.", Type: ParamURL, Required: true}},
			Methods:     get, RateLimit: scraperLim, CacheTTL: 8 * time.Hour, Ready: true,
		},
		Endpoint{
			Category: CategoryScraper, Name: "tiktok-media", Title: "TikTok media",
			Description: "Returns the media and thumbnail URLs of a TikTok video.",
			Parameters:  []Parameter{{Name: "query", Description: "TikTok video URL.", Type: ParamURL, Required: true}},
			Methods:     get, RateLimit: scraperLim, CacheTTL: 8 * time.Hour, Ready: true,
		},
		Endpoint{
			Category: CategoryScraper, Name: "youtube-media", Title: "YouTube media",
			Description: "Returns metadata and stream URLs of a YouTube video.",
			Parameters:  []Parameter{{Name: "query", Description: "YouTube video URL.", Type: ParamURL, Required: true}},
			Methods:     get, RateLimit: "1/second;20/minute;300/day", CacheTTL: 4 * time.Hour, Ready: true,
		},
		Endpoint{
			Category: CategoryScraper, Name: "youtube-video-url-from-query", Title: "YouTube search",
			Description: "Returns the first YouTube video matching a search query.",
			Parameters:  []Parameter{queryParam("query", "Search terms.", true)},
			Methods:     get, RateLimit: "2/second;60/minute;1000/day", CacheTTL: time.Hour, Ready: true,
		},
		Endpoint{
			Category: CategoryScraper, Name: "soundcloud-track", Title: "SoundCloud track",
			Description: "Returns metadata and audio stream URLs of a SoundCloud track.",
			Parameters:  []Parameter{{Name: "query", Description: "SoundCloud track URL.", Type: ParamURL, Required: true}},
			Methods:     get, RateLimit: "1/second;20/minute;300/day", CacheTTL: 4 * time.Hour, Ready: true,
		},
	)
	if err != nil {
		panic(fmt.Sprintf("invalid endpoint registry: %v", err))
	}
	return r
}
