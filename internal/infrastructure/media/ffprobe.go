package media

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/everytoolsapi/backend/internal/domain/shared"
)

// FFprobe errors shown to clients
var (
	ErrFFprobeFailed = shared.ToolFailure("Some error occurred while running the FFprobe command. Please use a valid video URL.")
	ErrNoMediaData   = shared.NewDomainErrorWithStatus(http.StatusBadRequest, shared.CodeInvalidInput, "No video data found in the URL provided.")
)

// StreamInfo is the decoded ffprobe output. Raw keeps the full document
// returned to clients; Streams and Format are read for validation.
type StreamInfo struct {
	Streams []Stream        `json:"streams"`
	Format  Format          `json:"format"`
	Raw     json.RawMessage `json:"-"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// Format captures container-level metadata.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
}

// VideoStreamCount returns the number of video streams.
func (r *StreamInfo) VideoStreamCount() int {
	n := 0
	for _, s := range r.Streams {
		if strings.EqualFold(s.CodecType, "video") {
			n++
		}
	}
	return n
}

// FFprobe inspects media URLs.
type FFprobe struct {
	binary string
	exec   Executor
}

// NewFFprobe creates an FFprobe; an empty binary defaults to "ffprobe" on PATH.
func NewFFprobe(binary string, exec Executor) *FFprobe {
	if strings.TrimSpace(binary) == "" {
		binary = "ffprobe"
	}
	return &FFprobe{binary: binary, exec: exec}
}

// remoteProtocols limits ffprobe to network inputs
const remoteProtocols = "https,http,tcp,tls"

// Inspect runs ffprobe on an http(s) URL and returns streams and container format.
// Anything else, such as local paths or option-shaped values, is rejected
// before the binary runs.
func (f *FFprobe) Inspect(ctx context.Context, target string) (*StreamInfo, error) {
	if !isRemoteURL(target) {
		return nil, ErrFFprobeFailed
	}
	out, err := f.exec.Run(ctx, f.binary,
		"-v", "quiet",
		"-protocol_whitelist", remoteProtocols,
		"-print_format", "json",
		"-show_format", "-show_streams",
		"--", target,
	)
	if err != nil {
		return nil, ErrFFprobeFailed
	}

	var res StreamInfo
	if err := json.Unmarshal(out, &res); err != nil {
		return nil, ErrFFprobeFailed
	}
	if len(res.Streams) == 0 && res.Format.FormatName == "" {
		return nil, ErrNoMediaData
	}
	res.Raw = append(json.RawMessage(nil), out...)
	return &res, nil
}

func isRemoteURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
