package scraper

import (
	"context"

	"github.com/everytoolsapi/backend/internal/domain/tool"
	"github.com/everytoolsapi/backend/internal/infrastructure/logger"
	"github.com/everytoolsapi/backend/internal/infrastructure/media"
	"go.uber.org/zap"
)

// SoundCloudInfo is the metadata block of a track
type SoundCloudInfo struct {
	Title               string `json:"title"`
	FormattedTitle      string `json:"formattedTitle"`
	URL                 string `json:"url"`
	ThumbnailURL        string `json:"thumbnailUrl"`
	Description         string `json:"description"`
	ArtistName          string `json:"artistName"`
	FormattedArtistName string `json:"formattedArtistName"`
	ArtistURL           string `json:"artistUrl"`
	ViewCount           int64  `json:"viewCount"`
	LikeCount           int64  `json:"likeCount"`
	CommentCount        int64  `json:"commentCount"`
	UploadedAt          int64  `json:"uploadedAt"`
	Duration            int64  `json:"duration"`
}

// SoundCloudAudio is the best audio stream of a track
type SoundCloudAudio struct {
	URL      string `json:"url"`
	Codec    string `json:"codec"`
	Bitrate  int64  `json:"bitrate"`
	Filename string `json:"filename"`
}

// SoundCloudTrack is the full scrape of a track
type SoundCloudTrack struct {
	Info  SoundCloudInfo `json:"info"`
	Media struct {
		Audio []SoundCloudAudio `json:"audio"`
	} `json:"media"`
}

// SoundCloud scrapes tracks through yt-dlp.
type SoundCloud struct {
	ytdlp *media.YtDlp
}

// NewSoundCloud creates a SoundCloud scraper.
func NewSoundCloud(ytdlp *media.YtDlp) *SoundCloud {
	return &SoundCloud{ytdlp: ytdlp}
}

// Track returns metadata and the best audio stream of a track URL.
func (s *SoundCloud) Track(ctx context.Context, rawURL string) (*SoundCloudTrack, error) {
	trackURL, err := tool.NormalizeSoundCloudURL(rawURL)
	if err != nil {
		return nil, err
	}

	info, err := s.ytdlp.Extract(ctx, trackURL, media.FormatBestAudio)
	if err == nil && info.URL == "" {
		err = errNoUsableMediaInfo
	}
	if err != nil {
		logger.L(ctx).Info("SoundCloud extraction failed", zap.String("url", trackURL), zap.Error(err))
		return nil, ErrMediaUnavailable
	}

	out := &SoundCloudTrack{
		Info: SoundCloudInfo{
			Title:               info.Title,
			FormattedTitle:      tool.FormatString(info.Title, tool.MaxFormattedLength),
			URL:                 tool.Unescape(info.WebpageURL),
			ThumbnailURL:        tool.Unescape(info.Thumbnail),
			Description:         info.Description,
			ArtistName:          info.Uploader,
			FormattedArtistName: tool.FormatString(info.Uploader, tool.MaxFormattedLength),
			ArtistURL:           tool.Unescape(info.UploaderURL),
			ViewCount:           info.ViewCount,
			LikeCount:           info.LikeCount,
			CommentCount:        info.CommentCount,
			UploadedAt:          uploadedAt(info),
			Duration:            int64(info.Duration),
		},
	}
	out.Media.Audio = []SoundCloudAudio{{
		URL:      tool.Unescape(info.URL),
		Codec:    info.FormatID,
		Bitrate:  int64(info.ABR),
		Filename: info.Title + "." + info.Ext,
	}}
	return out, nil
}

func uploadedAt(info *media.Info) int64 {
	if info.Timestamp > 0 {
		return int64(info.Timestamp)
	}
	return uploadDateUnix(info.UploadDate)
}
