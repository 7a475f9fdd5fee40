package scraper

import (
	"context"
	"errors"
	"maps"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/everytoolsapi/backend/internal/domain/shared"
	"github.com/everytoolsapi/backend/internal/domain/tool"
	"github.com/everytoolsapi/backend/internal/infrastructure/logger"
	"github.com/everytoolsapi/backend/internal/infrastructure/media"
	"go.uber.org/zap"
)

// YouTube errors
var (
	ErrMediaUnavailable  = shared.Invalid("The URL you have chosen does not exist or is temporarily unavailable.")
	ErrYouTubeSearch     = shared.ToolFailure("Some error occurred while searching on YouTube. Please try again later.")
	ErrNoYouTubeResult   = shared.NewDomainErrorWithStatus(http.StatusNotFound, shared.CodeNotFound, "No YouTube video was found for the given query.")
	errNoUsableMediaInfo = errors.New("yt-dlp returned no media id")
)

// YouTubeInfo is the metadata block of a YouTube video
type YouTubeInfo struct {
	MediaID                    string   `json:"mediaId"`
	MediaTitle                 string   `json:"mediaTitle"`
	FormattedMediaTitle        string   `json:"formattedMediaTitle"`
	MediaDescription           string   `json:"mediaDescription"`
	MediaUploadedAt            int64    `json:"mediaUploadedAt"`
	MediaDurationTime          int64    `json:"mediaDurationTime"`
	FormattedMediaDurationTime string   `json:"formattedMediaDurationTime"`
	MediaCategories            []string `json:"mediaCategories"`
	MediaTags                  []string `json:"mediaTags"`
	ViewCount                  int64    `json:"viewCount"`
	LikeCount                  int64    `json:"likeCount"`
	CommentCount               int64    `json:"commentCount"`
	MediaIsStreaming           bool     `json:"mediaIsStreaming"`
	MediaIsAgeRestricted       bool     `json:"mediaIsAgeRestricted"`
	tool.YouTubeLinks
	ChannelID            string `json:"channelId"`
	ChannelURL           string `json:"channelUrl"`
	ChannelName          string `json:"channelName"`
	FormattedChannelName string `json:"formattedChannelName"`
}

// VideoStream is a downloadable video-only stream
type VideoStream struct {
	URL       string `json:"url"`
	Quality   int64  `json:"quality"`
	Codec     string `json:"codec"`
	Framerate int64  `json:"framerate"`
	Bitrate   int64  `json:"bitrate"`
}

// AudioStream is a downloadable audio stream
type AudioStream struct {
	URL        string `json:"url"`
	Codec      string `json:"codec"`
	Bitrate    int64  `json:"bitrate"`
	Samplerate int64  `json:"samplerate"`
	Size       int64  `json:"size"`
}

// SubtitleTrack is a subtitle file
type SubtitleTrack struct {
	URL  string `json:"url"`
	Lang string `json:"lang"`
	Ext  string `json:"ext"`
}

// YouTubeMedia groups the streams of a video
type YouTubeMedia struct {
	Video     []VideoStream   `json:"video"`
	Audio     []AudioStream   `json:"audio"`
	Subtitles []SubtitleTrack `json:"subtitles"`
}

// YouTubeVideo is the full scrape of a video
type YouTubeVideo struct {
	Info  YouTubeInfo  `json:"info"`
	Media YouTubeMedia `json:"media"`
}

// YouTubeSearchResult is the first video found for a query
type YouTubeSearchResult struct {
	MediaID             string `json:"mediaId"`
	MediaTitle          string `json:"mediaTitle"`
	FormattedMediaTitle string `json:"formattedMediaTitle"`
	ViewCount           int64  `json:"viewCount"`
	tool.YouTubeLinks
	ChannelID            string   `json:"channelId"`
	ChannelURL           string   `json:"channelUrl"`
	ChannelName          string   `json:"channelName"`
	FormattedChannelName string   `json:"formattedChannelName"`
	ThumbnailURLs        []string `json:"thumbnailUrls"`
}

// YouTube scrapes videos through yt-dlp.
type YouTube struct {
	ytdlp *media.YtDlp
}

// NewYouTube creates a YouTube scraper.
func NewYouTube(ytdlp *media.YtDlp) *YouTube {
	return &YouTube{ytdlp: ytdlp}
}

// Video returns metadata and streams of the video a URL points to.
func (s *YouTube) Video(ctx context.Context, rawURL string) (*YouTubeVideo, error) {
	id, err := tool.YouTubeVideoID(rawURL)
	if err != nil {
		return nil, err
	}

	info, err := s.ytdlp.Extract(ctx, tool.YouTubeLinksFor(id).URL, media.FormatBestVideo)
	if err == nil && info.ID == "" {
		err = errNoUsableMediaInfo
	}
	if err != nil {
		logger.L(ctx).Info("YouTube extraction failed", zap.String("video_id", id), zap.Error(err))
		return nil, ErrMediaUnavailable
	}

	return &YouTubeVideo{
		Info:  youtubeInfo(info),
		Media: youtubeMedia(info),
	}, nil
}

// Search returns the first video matching query.
func (s *YouTube) Search(ctx context.Context, query string) (*YouTubeSearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, tool.ErrEmptyQuery
	}

	entry, err := s.ytdlp.SearchYouTube(ctx, query)
	if errors.Is(err, media.ErrNoSearchResult) {
		return nil, ErrNoYouTubeResult
	}
	if err != nil {
		logger.L(ctx).Warn("YouTube search failed", zap.Error(err))
		return nil, ErrYouTubeSearch
	}

	channel := firstNonEmpty(entry.Channel, entry.Uploader)
	return &YouTubeSearchResult{
		MediaID:              entry.ID,
		MediaTitle:           entry.Title,
		FormattedMediaTitle:  tool.FormatString(entry.Title, tool.MaxFormattedLength),
		ViewCount:            entry.ViewCount,
		YouTubeLinks:         tool.YouTubeLinksFor(entry.ID),
		ChannelID:            entry.ChannelID,
		ChannelURL:           tool.YouTubeChannelURL(entry.ChannelID),
		ChannelName:          channel,
		FormattedChannelName: tool.FormatString(channel, tool.MaxFormattedLength),
		ThumbnailURLs:        tool.YouTubeThumbnails(entry.ID),
	}, nil
}

func youtubeInfo(info *media.Info) YouTubeInfo {
	duration := int64(info.Duration)
	return YouTubeInfo{
		MediaID:                    info.ID,
		MediaTitle:                 info.Title,
		FormattedMediaTitle:        tool.FormatString(info.Title, tool.MaxFormattedLength),
		MediaDescription:           info.Description,
		MediaUploadedAt:            uploadDateUnix(info.UploadDate),
		MediaDurationTime:          duration,
		FormattedMediaDurationTime: tool.FormatDuration(duration),
		MediaCategories:            nonNil(info.Categories),
		MediaTags:                  nonNil(info.Tags),
		ViewCount:                  info.ViewCount,
		LikeCount:                  info.LikeCount,
		CommentCount:               info.CommentCount,
		MediaIsStreaming:           info.IsLive,
		MediaIsAgeRestricted:       info.AgeLimit > 0,
		YouTubeLinks:               tool.YouTubeLinksFor(info.ID),
		ChannelID:                  info.ChannelID,
		ChannelURL:                 tool.YouTubeChannelURL(info.ChannelID),
		ChannelName:                info.Uploader,
		FormattedChannelName:       tool.FormatString(info.Uploader, tool.MaxFormattedLength),
	}
}

func youtubeMedia(info *media.Info) YouTubeMedia {
	out := YouTubeMedia{
		Video:     []VideoStream{},
		Audio:     []AudioStream{},
		Subtitles: []SubtitleTrack{},
	}

	for _, f := range info.Formats {
		streamURL := tool.Unescape(f.URL)
		if tool.IsBlockedMediaURL(streamURL) || f.Filesize <= 0 {
			continue
		}
		if f.VCodec != "" && f.VCodec != "none" && f.ABR == 0 {
			out.Video = append(out.Video, VideoStream{
				URL:       streamURL,
				Quality:   int64(f.Height),
				Codec:     codecFamily(f.VCodec),
				Framerate: int64(f.FPS),
				Bitrate:   int64(f.TBR),
			})
		}
		if f.ACodec != "none" && f.ABR > 0 {
			out.Audio = append(out.Audio, AudioStream{
				URL:        streamURL,
				Codec:      codecFamily(f.ACodec),
				Bitrate:    int64(f.ABR),
				Samplerate: int64(f.ASR),
				Size:       int64(f.Filesize),
			})
		}
	}

	for _, lang := range slices.Sorted(maps.Keys(info.Subtitles)) {
		for _, sub := range info.Subtitles[lang] {
			out.Subtitles = append(out.Subtitles, SubtitleTrack{URL: tool.Unescape(sub.URL), Lang: lang, Ext: sub.Ext})
		}
	}
	return out
}

// uploadDateUnix converts a YYYYMMDD date to a Unix timestamp at UTC midnight.
func uploadDateUnix(date string) int64 {
	t, err := time.Parse("20060102", date)
	if err != nil {
		return 0
	}
	return t.Unix()
}

func codecFamily(codec string) string {
	family, _, _ := strings.Cut(codec, ".")
	return family
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
