package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Format selectors passed to yt-dlp
const (
	FormatBestVideo = "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best"
	FormatBestAudio = "bestaudio/best"
)

// ErrNoSearchResult is returned when a search yields no entry.
var ErrNoSearchResult = errors.New("media: search returned no result")

// Info is the subset of the yt-dlp info dict read by the scrapers.
type Info struct {
	ID           string                `json:"id"`
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	UploadDate   string                `json:"upload_date"`
	Timestamp    float64               `json:"timestamp"`
	Duration     float64               `json:"duration"`
	Categories   []string              `json:"categories"`
	Tags         []string              `json:"tags"`
	ViewCount    int64                 `json:"view_count"`
	LikeCount    int64                 `json:"like_count"`
	CommentCount int64                 `json:"comment_count"`
	IsLive       bool                  `json:"is_live"`
	AgeLimit     int                   `json:"age_limit"`
	ChannelID    string                `json:"channel_id"`
	Channel      string                `json:"channel"`
	Uploader     string                `json:"uploader"`
	UploaderURL  string                `json:"uploader_url"`
	WebpageURL   string                `json:"webpage_url"`
	Thumbnail    string                `json:"thumbnail"`
	URL          string                `json:"url"`
	Ext          string                `json:"ext"`
	FormatID     string                `json:"format_id"`
	ABR          float64               `json:"abr"`
	Formats      []StreamFormat        `json:"formats"`
	Subtitles    map[string][]Subtitle `json:"subtitles"`
	Entries      []Info                `json:"entries"`
}

// StreamFormat is a single downloadable stream. Numeric fields are zero when yt-dlp
// reports them as null.
type StreamFormat struct {
	FormatID string  `json:"format_id"`
	URL      string  `json:"url"`
	Ext      string  `json:"ext"`
	VCodec   string  `json:"vcodec"`
	ACodec   string  `json:"acodec"`
	Height   float64 `json:"height"`
	FPS      float64 `json:"fps"`
	TBR      float64 `json:"tbr"`
	ABR      float64 `json:"abr"`
	ASR      float64 `json:"asr"`
	Filesize float64 `json:"filesize"`
}

// Subtitle is a subtitle track.
type Subtitle struct {
	URL  string `json:"url"`
	Ext  string `json:"ext"`
	Name string `json:"name"`
}

// YtDlp extracts metadata with the yt-dlp binary.
type YtDlp struct {
	binary string
	exec   Executor
}

// NewYtDlp creates a YtDlp; an empty binary defaults to "yt-dlp" on PATH.
func NewYtDlp(binary string, exec Executor) *YtDlp {
	if strings.TrimSpace(binary) == "" {
		binary = "yt-dlp"
	}
	return &YtDlp{binary: binary, exec: exec}
}

// Extract dumps the info dict of a single media URL with the given format selector.
func (y *YtDlp) Extract(ctx context.Context, url, format string) (*Info, error) {
	args := []string{"-J", "--no-warnings", "--no-playlist", "--geo-bypass"}
	if format != "" {
		args = append(args, "-f", format)
	}
	args = append(args, "--", url)

	return y.dump(ctx, args)
}

// SearchYouTube returns the first YouTube search result for query.
func (y *YtDlp) SearchYouTube(ctx context.Context, query string) (*Info, error) {
	info, err := y.dump(ctx, []string{"-J", "--no-warnings", "--flat-playlist", "--", "ytsearch1:" + query})
	if err != nil {
		return nil, err
	}
	if len(info.Entries) == 0 {
		return nil, ErrNoSearchResult
	}
	return &info.Entries[0], nil
}

func (y *YtDlp) dump(ctx context.Context, args []string) (*Info, error) {
	out, err := y.exec.Run(ctx, y.binary, args...)
	if err != nil {
		return nil, err
	}

	var info Info
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, fmt.Errorf("decode yt-dlp output: %w", err)
	}
	return &info, nil
}
