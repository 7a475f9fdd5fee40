// Package scraper extracts media and search data from third-party sites:
// Google (headless Chrome), Instagram, TikTok, YouTube and SoundCloud.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/everytoolsapi/backend/internal/domain/shared"
	"github.com/everytoolsapi/backend/internal/domain/tool"
	"github.com/everytoolsapi/backend/internal/infrastructure/config"
	"github.com/everytoolsapi/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const defaultPageTimeout = 30 * time.Second

// ErrGoogleSearchFailed is returned when the result page cannot be rendered.
var ErrGoogleSearchFailed = shared.ToolFailure("Some error occurred in our systems during the data search. Please try again later.")

const collectLinksJS = `Array.from(document.querySelectorAll('#search a[href], #rso a[href]')).map(a => a.href)`

// GoogleConfig configures the headless browser.
type GoogleConfig struct {
	SearchURL   string
	ChromePath  string
	Headless    bool
	NoSandbox   bool
	PageTimeout time.Duration
	UserAgent   func() string
}

// GoogleConfigFrom builds a GoogleConfig from the scraper configuration.
func GoogleConfigFrom(sc config.ScraperConfig, userAgent func() string) GoogleConfig {
	return GoogleConfig{
		SearchURL:   sc.GoogleURL,
		ChromePath:  sc.ChromePath,
		Headless:    sc.Headless,
		NoSandbox:   true,
		PageTimeout: sc.PageTimeout,
		UserAgent:   userAgent,
	}
}

// Google renders search result pages in headless Chrome. One browser
// allocator is shared; every search opens its own tab.
type Google struct {
	cfg         GoogleConfig
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewGoogle prepares the browser allocator. Chrome starts on the first search.
func NewGoogle(cfg GoogleConfig, logger *zap.Logger) *Google {
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = defaultPageTimeout
	}
	if cfg.SearchURL == "" {
		cfg.SearchURL = "https://www.google.com/search"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("lang", "en-US"),
	)
	if cfg.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}
	if cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ChromePath))
	}

	g := &Google{cfg: cfg, logger: logger.Named("google")}
	g.allocCtx, g.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	return g
}

// Close shuts the browser down.
func (g *Google) Close() {
	g.allocCancel()
}

// Search returns up to maxResults distinct result URLs for query.
func (g *Google) Search(ctx context.Context, query string, maxResults int) ([]string, error) {
	ctx, span := telemetry.StartClientSpan(ctx, "chromedp google search",
		attribute.Int("search.max_results", maxResults),
	)
	var err error
	defer func() { telemetry.EndSpan(span, err) }()

	pageURL := g.cfg.SearchURL + "?" + url.Values{
		"q":   {query},
		"num": {strconv.Itoa(maxResults + 5)},
		"hl":  {"en"},
	}.Encode()

	ctx, cancel := context.WithTimeout(ctx, g.cfg.PageTimeout)
	defer cancel()

	tabCtx, tabCancel := chromedp.NewContext(g.allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			g.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer tabCancel()

	// The tab must also stop when the request is cancelled.
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	var links []string
	err = chromedp.Run(tabCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			if err := network.Enable().Do(ctx); err != nil {
				return err
			}
			if err := network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": "en-US,en;q=0.9"}).Do(ctx); err != nil {
				return err
			}
			if g.cfg.UserAgent == nil {
				return nil
			}
			return emulation.SetUserAgentOverride(g.cfg.UserAgent()).Do(ctx)
		}),
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(collectLinksJS, &links),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			g.logger.Warn("Google search timed out", zap.Duration("timeout", g.cfg.PageTimeout))
		} else {
			g.logger.Error("Google search failed", zap.Error(err))
		}
		return nil, ErrGoogleSearchFailed
	}

	return FilterSearchResults(links, maxResults), nil
}

// FilterSearchResults turns the anchors of a result page into result URLs:
// redirect links are resolved, Google's own pages dropped, URLs unescaped and
// deduplicated in page order.
func FilterSearchResults(links []string, maxResults int) []string {
	out := make([]string, 0, maxResults)
	for _, link := range links {
		u, err := url.Parse(link)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			continue
		}
		if isGoogleHost(u.Hostname()) {
			target := u.Query().Get("q")
			if u.Path != "/url" || target == "" {
				continue
			}
			link = target
		}
		out = append(out, tool.Unescape(link))
	}

	out = tool.DedupeStrings(out)
	if len(out) > maxResults {
		out = out[:maxResults]
	}
	return out
}

func isGoogleHost(host string) bool {
	host = strings.ToLower(host)
	return host == "google.com" || strings.HasSuffix(host, ".google.com") ||
		strings.HasSuffix(host, ".googleusercontent.com") || strings.HasSuffix(host, ".gstatic.com")
}
