// Package tools runs the tool behind each API endpoint.
//
// Every endpoint of the catalogue maps to one Handler. Handlers validate the
// query, call a parser, a subprocess or an upstream service and return the
// value placed under "response" in the API envelope. Errors shown to clients
// are *shared.DomainError values; anything else is reported as unexpected.
package tools

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/everytoolsapi/backend/internal/domain/endpoint"
	"github.com/everytoolsapi/backend/internal/domain/tool"
	"github.com/everytoolsapi/backend/internal/infrastructure/github"
	"github.com/everytoolsapi/backend/internal/infrastructure/langdetect"
	"github.com/everytoolsapi/backend/internal/infrastructure/logger"
	"github.com/everytoolsapi/backend/internal/infrastructure/media"
	"github.com/everytoolsapi/backend/internal/infrastructure/scraper"
	"github.com/everytoolsapi/backend/internal/infrastructure/telemetry"
	"github.com/everytoolsapi/backend/internal/infrastructure/useragent"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Handler runs one tool
type Handler func(ctx context.Context, in Input) (any, error)

// UserAgentParser parses User-Agent strings
type UserAgentParser interface {
	Parse(ua string) *useragent.Result
}

// LanguageDetector detects the language of a text
type LanguageDetector interface {
	Detect(text string) (*langdetect.Result, error)
}

// Translator translates text between languages
type Translator interface {
	Translate(ctx context.Context, text, src, dest string) (string, error)
}

// IPLookup returns details about a public IP address
type IPLookup interface {
	Lookup(ctx context.Context, ip string) (map[string]any, error)
}

// ReleaseFetcher loads the latest release of a GitHub repository
type ReleaseFetcher interface {
	LatestRelease(ctx context.Context, repo string) (*github.Release, error)
}

// MediaInspector inspects remote media
type MediaInspector interface {
	Inspect(ctx context.Context, url string) (*media.StreamInfo, error)
}

// WebSearcher returns result URLs of a web search
type WebSearcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]string, error)
}

// ReelScraper resolves Instagram reels
type ReelScraper interface {
	Reel(ctx context.Context, url string) (*scraper.Reel, error)
}

// TikTokScraper resolves TikTok videos
type TikTokScraper interface {
	Video(ctx context.Context, url string) (*scraper.TikTokVideo, error)
}

// YouTubeScraper extracts YouTube videos and searches YouTube
type YouTubeScraper interface {
	Video(ctx context.Context, url string) (*scraper.YouTubeVideo, error)
	Search(ctx context.Context, query string) (*scraper.YouTubeSearchResult, error)
}

// SoundCloudScraper extracts SoundCloud tracks
type SoundCloudScraper interface {
	Track(ctx context.Context, url string) (*scraper.SoundCloudTrack, error)
}

// Dependencies are the tool backends. A nil backend leaves its endpoints unregistered.
type Dependencies struct {
	UserAgents UserAgentParser
	Languages  LanguageDetector
	Translator Translator
	IPLookup   IPLookup
	Releases   ReleaseFetcher
	Media      MediaInspector
	Search     WebSearcher
	Instagram  ReelScraper
	TikTok     TikTokScraper
	YouTube    YouTubeScraper
	SoundCloud SoundCloudScraper
	Randomizer *tool.Randomizer
	Metrics    *telemetry.Metrics
	Logger     *zap.Logger
}

// Service dispatches endpoint paths to their handlers
type Service struct {
	handlers map[string]Handler
	metrics  *telemetry.Metrics
	logger   *zap.Logger
}

// NewService creates a Service with a handler for every configured backend
func NewService(deps Dependencies) *Service {
	l := deps.Logger
	if l == nil {
		l = zap.NewNop()
	}
	if deps.Randomizer == nil {
		deps.Randomizer = tool.NewRandomizer()
	}
	s := &Service{
		handlers: make(map[string]Handler),
		metrics:  deps.Metrics,
		logger:   l.Named("tools"),
	}

	s.register("parser/url", parseURL)
	s.register("parser/sec-to-hms", secondsToHMS)
	s.register("parser/email", parseEmail)
	s.register("parser/text-counter", countText)
	s.register("tools/ip", originIP)
	s.register("randomizer/int-number", randomInt(deps.Randomizer))
	s.register("randomizer/float-number", randomFloat(deps.Randomizer))

	if deps.UserAgents != nil {
		s.register("parser/useragent", parseUserAgent(deps.UserAgents))
	}
	if deps.Languages != nil {
		s.register("tools/text-lang-detector", detectLanguage(deps.Languages))
	}
	if deps.Translator != nil {
		s.register("tools/text-translator", translateText(deps.Translator))
	}
	if deps.IPLookup != nil {
		s.register("tools/ip-info", ipInfo(deps.IPLookup))
	}
	if deps.Releases != nil {
		s.register("tools/latest-ffmpeg-download-url", latestFFmpeg(deps.Releases))
	}
	if deps.Media != nil {
		s.register("tools/video-url-info", videoURLInfo(deps.Media))
	}
	if deps.Search != nil {
		s.register("scraper/google-search", googleSearch(deps.Search))
	}
	if deps.Instagram != nil {
		s.register("scraper/instagram-reels", instagramReel(deps.Instagram))
	}
	if deps.TikTok != nil {
		s.register("scraper/tiktok-media", tiktokMedia(deps.TikTok))
	}
	if deps.YouTube != nil {
		s.register("scraper/youtube-media", youtubeMedia(deps.YouTube))
		s.register("scraper/youtube-video-url-from-query", youtubeSearch(deps.YouTube))
	}
	if deps.SoundCloud != nil {
		s.register("scraper/soundcloud-track", soundcloudTrack(deps.SoundCloud))
	}
	return s
}

func (s *Service) register(path string, h Handler) {
	s.handlers[path] = h
}

// Has reports whether a handler is registered for path
func (s *Service) Has(path string) bool {
	_, ok := s.handlers[path]
	return ok
}

// Unhandled returns the catalogue paths that have no handler, sorted
func (s *Service) Unhandled(reg *endpoint.Registry) []string {
	var missing []string
	for _, e := range reg.All() {
		if !s.Has(e.Path()) {
			missing = append(missing, e.Path())
		}
	}
	sort.Strings(missing)
	return missing
}

// Run executes the tool registered for path
func (s *Service) Run(ctx context.Context, path string, in Input) (result any, err error) {
	h, ok := s.handlers[path]
	if !ok {
		return nil, fmt.Errorf("no tool registered for %q", path)
	}

	ctx, span := telemetry.StartSpan(ctx, "tool "+path, attribute.String(telemetry.SpanAttrEndpoint, path))
	start := time.Now()
	defer func() {
		elapsed := time.Since(start)
		s.metrics.ObserveTool(path, elapsed, err)
		telemetry.EndSpan(span, err)
		if err != nil {
			logger.L(ctx).Debug("Tool returned an error",
				zap.String("endpoint", path),
				zap.Duration("elapsed", elapsed),
				zap.Error(err),
			)
		}
	}()

	return h(ctx, in)
}
