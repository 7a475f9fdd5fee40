package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/everytoolsapi/backend/internal/domain/shared"
	"github.com/everytoolsapi/backend/internal/domain/tool"
	"github.com/everytoolsapi/backend/internal/infrastructure/logger"
	"github.com/everytoolsapi/backend/internal/infrastructure/upstream"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// TikTok errors
var (
	ErrTikTokLookup = shared.Upstream("Some external error occurred during the data lookup. Please try again later.")
	ErrTikTokScrape = shared.Upstream("Some error occurred in our systems during the data scraping. Please try again later.")
)

var akamaizedPattern = regexp.MustCompile(`https://[^/\s"'<>]+\.akamaized\.net/[^\s"'<>]+`)

// TikTokVideo is a resolved TikTok video
type TikTokVideo struct {
	Filename     string  `json:"filename"`
	ThumbnailURL string  `json:"thumbnailUrl"`
	MediaURL     *string `json:"mediaUrl"`
}

type oembedResponse struct {
	Type         string `json:"type"`
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// TikTok resolves videos with the public oEmbed API and a SaveTik compatible
// download page.
type TikTok struct {
	http      *upstream.Client
	oembedURL string
	saveURL   string
}

// NewTikTok creates a TikTok scraper.
func NewTikTok(client *upstream.Client, oembedURL, saveURL string) *TikTok {
	return &TikTok{http: client, oembedURL: oembedURL, saveURL: saveURL}
}

// Video returns the download data of a TikTok video URL.
func (s *TikTok) Video(ctx context.Context, videoURL string) (*TikTokVideo, error) {
	if err := tool.ValidateTikTokURL(videoURL); err != nil {
		return nil, err
	}

	resp, err := s.http.Get(ctx, s.oembedURL, url.Values{"url": {videoURL}}, nil)
	if err != nil {
		return nil, upstream.ClientError(err, shared.ErrSearchFailed)
	}
	var meta oembedResponse
	if !resp.OK() || resp.DecodeJSON(&meta) != nil || meta.Type == "" {
		return nil, ErrTikTokLookup
	}
	if meta.Type != "video" {
		return nil, tool.ErrOnlyVideoURLs
	}

	title := meta.Title
	if title == "" {
		title = "tiktok_video"
	}
	out := &TikTokVideo{
		Filename:     tool.FormatString(title, tool.MaxFormattedLength) + ".mp4",
		ThumbnailURL: tool.Unescape(meta.ThumbnailURL),
	}

	page, err := s.http.PostForm(ctx, s.saveURL, url.Values{"q": {videoURL}, "lang": {"en"}},
		http.Header{"X-Requested-With": {"XMLHttpRequest"}})
	if err != nil {
		return nil, upstream.ClientError(err, ErrTikTokScrape)
	}

	mediaURL, name := extractSaveTikMedia(page.Body)
	if mediaURL == "" {
		logger.L(ctx).Warn("No TikTok media link found", zap.String("url", videoURL), zap.Int("status", page.StatusCode))
		return out, nil
	}
	link := tool.StripQueryAndUnescape(mediaURL) + "?mime_type=video_mp4&filename=" + name + ".mp4"
	out.MediaURL = &link
	return out, nil
}

// extractSaveTikMedia returns the first akamaized download link of a SaveTik
// answer and the page's h3 title. The answer is either the HTML fragment or a
// JSON object carrying it in "data".
func extractSaveTikMedia(body []byte) (string, string) {
	var wrapped struct {
		Data string `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Data != "" {
		body = []byte(wrapped.Data)
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "", ""
	}

	var link, title string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.H3:
				if title == "" {
					title = strings.TrimSpace(textContent(n))
				}
			case atom.A:
				if link == "" {
					for _, a := range n.Attr {
						if a.Key == "href" && akamaizedPattern.MatchString(a.Val) {
							link = akamaizedPattern.FindString(a.Val)
						}
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if link == "" {
		link = akamaizedPattern.FindString(string(body))
	}
	return link, title
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}
