package tools

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/everytoolsapi/backend/internal/domain/shared"
	"github.com/everytoolsapi/backend/internal/domain/tool"
	"github.com/everytoolsapi/backend/internal/infrastructure/github"
	"github.com/everytoolsapi/backend/internal/infrastructure/translate"
)

func requireQuery(in Input) (string, error) {
	q := in.Get("query")
	if q == "" {
		return "", shared.ErrMissingQuery
	}
	return q, nil
}

func parseUserAgent(p UserAgentParser) Handler {
	return func(_ context.Context, in Input) (any, error) {
		ua := in.Get("query")
		if ua == "" {
			ua = in.UserAgent
		}
		if ua == "" {
			return nil, tool.ErrMissingUserAgent
		}
		return p.Parse(ua), nil
	}
}

func parseURL(_ context.Context, in Input) (any, error) {
	q, err := requireQuery(in)
	if err != nil {
		return nil, err
	}
	return tool.ParseURL(q)
}

func secondsToHMS(_ context.Context, in Input) (any, error) {
	q, err := requireQuery(in)
	if err != nil {
		return nil, err
	}
	n, err := tool.ParseSeconds(q)
	if err != nil {
		return nil, err
	}
	return HMSResponse{HMSString: tool.SecondsToHMS(n)}, nil
}

func parseEmail(_ context.Context, in Input) (any, error) {
	q, err := requireQuery(in)
	if err != nil {
		return nil, err
	}
	return tool.ParseEmail(strings.TrimSpace(q))
}

func countText(_ context.Context, in Input) (any, error) {
	q, err := requireQuery(in)
	if err != nil {
		return nil, err
	}
	return tool.CountText(q), nil
}

func detectLanguage(d LanguageDetector) Handler {
	return func(_ context.Context, in Input) (any, error) {
		q, err := requireQuery(in)
		if err != nil {
			return nil, err
		}
		return d.Detect(q)
	}
}

func translateText(t Translator) Handler {
	return func(ctx context.Context, in Input) (any, error) {
		q, err := requireQuery(in)
		if err != nil {
			return nil, err
		}
		dest := in.Trimmed("dest_lang")
		if dest == "" {
			return nil, tool.ErrMissingDestLang
		}
		src := in.Trimmed("src_lang")
		if src == "" {
			src = translate.AutoDetect
		}

		text, err := t.Translate(ctx, q, src, dest)
		if err != nil {
			return nil, err
		}
		return TranslationResponse{TranslatedText: text}, nil
	}
}

func originIP(_ context.Context, in Input) (any, error) {
	if in.ClientIP == "" {
		return nil, tool.ErrMissingOriginIP
	}
	return OriginIPResponse{OriginIPAddress: in.ClientIP}, nil
}

func ipInfo(l IPLookup) Handler {
	return func(ctx context.Context, in Input) (any, error) {
		ip := in.Trimmed("query")
		if ip == "" {
			ip = in.ClientIP
		}
		if ip == "" {
			return nil, tool.ErrMissingOriginIP
		}
		return l.Lookup(ctx, ip)
	}
}

func latestFFmpeg(r ReleaseFetcher) Handler {
	return func(ctx context.Context, in Input) (any, error) {
		// filter values are matched exactly as sent
		filter, err := tool.NewFFmpegFilter(in.Get("os"), in.Get("arch"), in.Get("license"), in.Get("shared"))
		if err != nil {
			return nil, err
		}

		release, err := r.LatestRelease(ctx, github.FFmpegBuildsRepo)
		if err != nil {
			return nil, err
		}
		builds, err := filter.MatchBuilds(release.AssetNames())
		if err != nil {
			return nil, err
		}
		return FFmpegBuildsResponse{MatchedBuilds: builds}, nil
	}
}

func videoURLInfo(m MediaInspector) Handler {
	return func(ctx context.Context, in Input) (any, error) {
		q, err := requireQuery(in)
		if err != nil {
			return nil, err
		}
		res, err := m.Inspect(ctx, strings.TrimSpace(q))
		if err != nil {
			return nil, err
		}
		return res.Raw, nil
	}
}

func randomInt(r *tool.Randomizer) Handler {
	return func(_ context.Context, in Input) (any, error) {
		n, err := r.Int(in.Get("min"), in.Get("max"))
		if err != nil {
			return nil, err
		}
		return NumberResponse{Number: json.Number(strconv.FormatInt(n, 10))}, nil
	}
}

func randomFloat(r *tool.Randomizer) Handler {
	return func(_ context.Context, in Input) (any, error) {
		n, err := r.Float(in.Get("min"), in.Get("max"))
		if err != nil {
			return nil, err
		}
		return NumberResponse{Number: json.Number(n.String())}, nil
	}
}

func googleSearch(s WebSearcher) Handler {
	return func(ctx context.Context, in Input) (any, error) {
		q := in.Trimmed("query")
		if q == "" {
			return nil, shared.ErrMissingQuery
		}
		maxResults, err := tool.ParseMaxResults(in.Get("max_results"))
		if err != nil {
			return nil, err
		}
		links, err := s.Search(ctx, q, maxResults)
		if err != nil {
			return nil, err
		}
		if links == nil {
			links = []string{}
		}
		return SearchResultsResponse{SearchResults: links}, nil
	}
}

func instagramReel(s ReelScraper) Handler {
	return func(ctx context.Context, in Input) (any, error) {
		q, err := requireQuery(in)
		if err != nil {
			return nil, err
		}
		return s.Reel(ctx, strings.TrimSpace(q))
	}
}

func tiktokMedia(s TikTokScraper) Handler {
	return func(ctx context.Context, in Input) (any, error) {
		q, err := requireQuery(in)
		if err != nil {
			return nil, err
		}
		return s.Video(ctx, strings.TrimSpace(q))
	}
}

func youtubeMedia(s YouTubeScraper) Handler {
	return func(ctx context.Context, in Input) (any, error) {
		q, err := requireQuery(in)
		if err != nil {
			return nil, err
		}
		return s.Video(ctx, strings.TrimSpace(q))
	}
}

func youtubeSearch(s YouTubeScraper) Handler {
	return func(ctx context.Context, in Input) (any, error) {
		if !in.Has("query") {
			return nil, shared.ErrMissingQuery
		}
		q := in.Trimmed("query")
		if q == "" {
			return nil, tool.ErrEmptyQuery
		}
		found, err := s.Search(ctx, q)
		if err != nil {
			return nil, err
		}
		return FoundURLResponse{FoundURLData: found}, nil
	}
}

func soundcloudTrack(s SoundCloudScraper) Handler {
	return func(ctx context.Context, in Input) (any, error) {
		q, err := requireQuery(in)
		if err != nil {
			return nil, err
		}
		return s.Track(ctx, strings.TrimSpace(q))
	}
}
