package app

import (
	"github.com/everytoolsapi/backend/internal/application/tools"
	"github.com/everytoolsapi/backend/internal/infrastructure/config"
	"github.com/everytoolsapi/backend/internal/infrastructure/github"
	"github.com/everytoolsapi/backend/internal/infrastructure/ipapi"
	"github.com/everytoolsapi/backend/internal/infrastructure/langdetect"
	"github.com/everytoolsapi/backend/internal/infrastructure/media"
	"github.com/everytoolsapi/backend/internal/infrastructure/scraper"
	"github.com/everytoolsapi/backend/internal/infrastructure/telemetry"
	"github.com/everytoolsapi/backend/internal/infrastructure/translate"
	"github.com/everytoolsapi/backend/internal/infrastructure/upstream"
	"github.com/everytoolsapi/backend/internal/infrastructure/useragent"
	"go.uber.org/zap"
)

// buildTools creates the backends of every tool endpoint. The returned
// closers release the headless browser.
func buildTools(cfg *config.Config, l *zap.Logger, m *telemetry.Metrics) (tools.Dependencies, []func() error) {
	tc := cfg.Tools
	up := upstream.New(upstream.ConfigFrom(tc), l, upstream.WithMetrics(m))

	exec := media.NewCommandExecutor(tc.CommandTimeout)
	ytdlp := media.NewYtDlp(tc.YtDlpPath, exec)
	google := scraper.NewGoogle(scraper.GoogleConfigFrom(cfg.Scraper, up.UserAgent), l)

	deps := tools.Dependencies{
		UserAgents: useragent.NewParser(),
		Languages:  langdetect.NewDetector(),
		Translator: translate.NewClient(up, tc.TranslateURL, tc.TranslateAPIKey),
		IPLookup:   ipapi.NewClient(up, tc.IPAPIURL),
		Releases:   github.NewClient(up, tc.GitHubAPIURL, tc.GitHubToken),
		Media:      media.NewFFprobe(tc.FFprobePath, exec),
		Search:     google,
		Instagram:  scraper.NewInstagram(up, tc.FastDLURL),
		TikTok:     scraper.NewTikTok(up, tc.TikTokOEmbedURL, tc.SaveTikURL),
		YouTube:    scraper.NewYouTube(ytdlp),
		SoundCloud: scraper.NewSoundCloud(ytdlp),
	}

	closers := []func() error{
		func() error {
			google.Close()
			return nil
		},
	}
	return deps, closers
}
