package tools

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/everytoolsapi/backend/internal/infrastructure/scraper"
)

// Input carries everything a tool may read from the incoming request
type Input struct {
	Query     url.Values
	UserAgent string
	ClientIP  string
}

// Get returns the first value of a query parameter
func (in Input) Get(name string) string {
	return in.Query.Get(name)
}

// Trimmed returns the first value of a query parameter without surrounding whitespace
func (in Input) Trimmed(name string) string {
	return strings.TrimSpace(in.Query.Get(name))
}

// Has reports whether the parameter was sent, even if empty
func (in Input) Has(name string) bool {
	_, ok := in.Query[name]
	return ok
}

// HMSResponse is the result of parser/sec-to-hms
type HMSResponse struct {
	HMSString string `json:"hmsString"`
}

// TranslationResponse is the result of tools/text-translator
type TranslationResponse struct {
	TranslatedText string `json:"translatedText"`
}

// OriginIPResponse is the result of tools/ip
type OriginIPResponse struct {
	OriginIPAddress string `json:"originIpAddress"`
}

// FFmpegBuildsResponse is the result of tools/latest-ffmpeg-download-url
type FFmpegBuildsResponse struct {
	MatchedBuilds []string `json:"matchedBuilds"`
}

// NumberResponse is the result of the randomizer endpoints.
// Number is kept as a JSON number literal so decimals keep their precision.
type NumberResponse struct {
	Number json.Number `json:"number"`
}

// SearchResultsResponse is the result of scraper/google-search
type SearchResultsResponse struct {
	SearchResults []string `json:"searchResults"`
}

// FoundURLResponse is the result of scraper/youtube-video-url-from-query
type FoundURLResponse struct {
	FoundURLData *scraper.YouTubeSearchResult `json:"foundUrlData"`
}
