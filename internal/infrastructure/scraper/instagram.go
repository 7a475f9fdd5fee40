package scraper

import (
	"context"
	"net/http"
	"strings"

	"github.com/everytoolsapi/backend/internal/domain/shared"
	"github.com/everytoolsapi/backend/internal/domain/tool"
	"github.com/everytoolsapi/backend/internal/infrastructure/logger"
	"github.com/everytoolsapi/backend/internal/infrastructure/upstream"
	"go.uber.org/zap"
)

// ErrInstagramData is returned when the converter answer lacks the expected fields.
var ErrInstagramData = shared.Upstream("An error occurred while fetching Instagram reel data. Please try again later.")

// Reel is a resolved Instagram reel
type Reel struct {
	Filename     string `json:"filename"`
	ThumbnailURL string `json:"thumbnailUrl"`
	MediaURL     string `json:"mediaUrl"`
}

type fastdlResponse struct {
	URL []struct {
		URL string `json:"url"`
		Ext string `json:"ext"`
	} `json:"url"`
	Meta struct {
		Title string `json:"title"`
	} `json:"meta"`
	Thumb string `json:"thumb"`
}

// Instagram resolves reels through a FastDL compatible converter.
type Instagram struct {
	http       *upstream.Client
	convertURL string
}

// NewInstagram creates an Instagram scraper posting to convertURL.
func NewInstagram(client *upstream.Client, convertURL string) *Instagram {
	return &Instagram{http: client, convertURL: convertURL}
}

// Reel returns the download data of a reel or post URL.
func (s *Instagram) Reel(ctx context.Context, rawURL string) (*Reel, error) {
	reelURL, err := tool.NormalizeInstagramURL(rawURL)
	if err != nil {
		return nil, err
	}

	resp, err := s.http.PostJSON(ctx, s.convertURL, map[string]string{"url": reelURL},
		http.Header{"Accept": {"application/json"}})
	if err != nil {
		return nil, upstream.ClientError(err, shared.ErrSearchFailed)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, shared.ErrExternalFailure
	}

	var data fastdlResponse
	if err := resp.DecodeJSON(&data); err != nil {
		return nil, shared.ErrExternalFailure
	}
	if len(data.URL) == 0 || data.Thumb == "" {
		logger.L(ctx).Warn("Instagram converter returned no media", zap.String("url", reelURL))
		return nil, ErrInstagramData
	}

	ext := strings.ToLower(data.URL[0].Ext)
	if ext == "" {
		ext = "mp4"
	}
	thumb, err := tool.ProxiedMediaURL(data.Thumb)
	if err != nil {
		return nil, ErrInstagramData
	}
	media, err := tool.ProxiedMediaURL(data.URL[0].URL)
	if err != nil {
		return nil, ErrInstagramData
	}

	return &Reel{
		Filename:     tool.FormatString(data.Meta.Title, tool.MaxFormattedLength) + "." + ext,
		ThumbnailURL: thumb,
		MediaURL:     media,
	}, nil
}
