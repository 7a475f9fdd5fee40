package tool

import (
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/everytoolsapi/backend/internal/domain/shared"
)

var (
	youtubeVideoPattern    = regexp.MustCompile(`(?:(?:youtube\.com/(?:[^/\n\s?]+/\S+/|(?:v|e(?:mbed)?)/|\S*?[?&]v=)|youtu\.be/)([a-zA-Z0-9_-]+))`)
	youtubePlaylistPattern = regexp.MustCompile(`(?:list=)([a-zA-Z0-9_-]+)`)
	tiktokPattern          = regexp.MustCompile(`^(https?://(?:www\.)?tiktok\.com/@[\w.-]+/video/\d+|https?://vm\.tiktok\.com/[\w\d]+)`)
	instagramPattern       = regexp.MustCompile(`^(https?://)?(www\.)?instagram\.com(/[^/]+)?/(reel|p)/[A-Za-z0-9_-]+/?(\?.*)?$`)
	soundcloudPattern      = regexp.MustCompile(`^(https?://)?(www\.|m\.)?soundcloud\.com/[\w.-]+/[\w.-]+/?(\?.*)?$`)
)

// Media URL errors
var (
	ErrInvalidYouTubeURL    = shared.Invalid("The URL provided is not a valid YouTube media URL.")
	ErrOnlyVideoURLs        = shared.Invalid("Only video URLs are supported for now.")
	ErrInvalidTikTokURL     = shared.Invalid("The URL provided is not a valid TikTok video URL.")
	ErrInvalidInstagramURL  = shared.Invalid("The URL provided is not a valid Instagram Reels URL. A valid URL should look like: https://www.instagram.com/reel/{your_reel_id}")
	ErrInvalidSoundCloudURL = shared.Invalid("The URL provided is not a valid SoundCloud track URL.")
)

// YouTubeURLType is the kind of resource a YouTube URL points to
type YouTubeURLType string

const (
	YouTubeVideo    YouTubeURLType = "video"
	YouTubePlaylist YouTubeURLType = "playlist"
)

// YouTubeURL holds the identifiers found in a YouTube URL
type YouTubeURL struct {
	Type       YouTubeURLType
	VideoID    string
	PlaylistID string
}

// ParseYouTubeURL extracts the video and playlist ids of a youtube.com or youtu.be URL
func ParseYouTubeURL(raw string) (*YouTubeURL, error) {
	if !strings.Contains(raw, "youtube.com") && !strings.Contains(raw, "youtu.be") {
		return nil, ErrInvalidYouTubeURL
	}

	out := &YouTubeURL{}
	if m := youtubePlaylistPattern.FindStringSubmatch(raw); m != nil {
		out.PlaylistID = m[1]
	}
	if m := youtubeVideoPattern.FindStringSubmatch(raw); m != nil {
		out.Type = YouTubeVideo
		out.VideoID = m[1]
		return out, nil
	}
	if out.PlaylistID != "" {
		out.Type = YouTubePlaylist
		return out, nil
	}
	return nil, ErrInvalidYouTubeURL
}

// YouTubeVideoID validates a URL as a single video and returns its id
func YouTubeVideoID(raw string) (string, error) {
	u, err := ParseYouTubeURL(raw)
	if err != nil {
		return "", err
	}
	if u.Type != YouTubeVideo {
		return "", ErrOnlyVideoURLs
	}
	return u.VideoID, nil
}

// YouTubeLinks are the canonical URLs of a YouTube video
type YouTubeLinks struct {
	URL      string `json:"mediaUrl"`
	ShortURL string `json:"mediaShortUrl"`
	EmbedURL string `json:"mediaEmbedUrl"`
}

// YouTubeLinksFor builds the watch, short and embed URLs of a video
func YouTubeLinksFor(videoID string) YouTubeLinks {
	return YouTubeLinks{
		URL:      "https://www.youtube.com/watch?v=" + videoID,
		ShortURL: "https://youtu.be/" + videoID,
		EmbedURL: "https://www.youtube.com/embed/" + videoID,
	}
}

// YouTubeChannelURL returns the channel URL for an id, or "" when the id is empty
func YouTubeChannelURL(channelID string) string {
	if channelID == "" {
		return ""
	}
	return "https://www.youtube.com/channel/" + channelID
}

// YouTubeThumbnails lists thumbnail URLs of a video from highest to lowest resolution
func YouTubeThumbnails(videoID string) []string {
	sizes := []string{"maxresdefault", "sddefault", "hqdefault", "mqdefault", "default"}
	out := make([]string, 0, len(sizes))
	for _, s := range sizes {
		out = append(out, "https://img.youtube.com/vi/"+videoID+"/"+s+".jpg")
	}
	return out
}

// IsBlockedMediaURL reports whether a stream URL cannot be served to clients,
// which holds for non-HTTP URLs and HLS/DASH manifests
func IsBlockedMediaURL(raw string) bool {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil {
		return true
	}
	return u.Host == "" || strings.EqualFold(u.Hostname(), "manifest.googlevideo.com")
}

// ValidateTikTokURL checks a TikTok video or short link
func ValidateTikTokURL(raw string) error {
	if !tiktokPattern.MatchString(raw) {
		return ErrInvalidTikTokURL
	}
	return nil
}

// NormalizeInstagramURL validates a reel or post URL and adds a scheme when missing
func NormalizeInstagramURL(raw string) (string, error) {
	if !instagramPattern.MatchString(raw) {
		return "", ErrInvalidInstagramURL
	}
	if u, err := url.Parse(raw); err != nil || u.Scheme == "" {
		raw = "https://" + raw
	}
	return raw, nil
}

// NormalizeSoundCloudURL validates a track URL and adds a scheme when missing
func NormalizeSoundCloudURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if !soundcloudPattern.MatchString(raw) {
		return "", ErrInvalidSoundCloudURL
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	return raw, nil
}

// ProxiedMediaURL extracts the "uri" parameter of a download-proxy URL, forces dl=0
// on it and returns it unescaped
func ProxiedMediaURL(proxyURL string) (string, error) {
	pu, err := url.Parse(proxyURL)
	if err != nil {
		return "", err
	}
	inner := pu.Query().Get("uri")
	if inner == "" {
		return "", errors.New("proxy URL has no uri parameter")
	}

	u, err := url.Parse(inner)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("dl", "0")

	return u.Scheme + "://" + u.Host + u.Path + "?" + q.Encode(), nil
}

// StripQueryAndUnescape removes the query string of a URL and unescapes what remains
func StripQueryAndUnescape(raw string) string {
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[:i]
	}
	if out, err := url.PathUnescape(raw); err == nil {
		return out
	}
	return raw
}

// Unescape decodes percent-escapes, returning the input unchanged when it is malformed
func Unescape(raw string) string {
	if out, err := url.PathUnescape(raw); err == nil {
		return out
	}
	return raw
}

// DedupeStrings removes duplicates keeping the first occurrence order
func DedupeStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
