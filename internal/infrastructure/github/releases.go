// Package github reads release metadata from the GitHub REST API.
package github

import (
	"context"
	"net/http"
	"strings"

	"github.com/everytoolsapi/backend/internal/domain/shared"
	"github.com/everytoolsapi/backend/internal/infrastructure/upstream"
)

// FFmpegBuildsRepo publishes the FFmpeg builds matched by the ffmpeg tool
const FFmpegBuildsRepo = "BtbN/FFmpeg-Builds"

// Release is the subset of a GitHub release the service reads
type Release struct {
	TagName string  `json:"tag_name"`
	Name    string  `json:"name"`
	Assets  []Asset `json:"assets"`
}

// Asset is a release file
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// AssetNames lists the asset file names in release order.
func (r *Release) AssetNames() []string {
	names := make([]string, 0, len(r.Assets))
	for _, a := range r.Assets {
		names = append(names, a.Name)
	}
	return names
}

// Client reads releases.
type Client struct {
	http    *upstream.Client
	baseURL string
	token   string
}

// NewClient creates a Client against baseURL, e.g. https://api.github.com.
// token is optional and raises the API rate limit.
func NewClient(client *upstream.Client, baseURL, token string) *Client {
	return &Client{http: client, baseURL: strings.TrimRight(baseURL, "/"), token: token}
}

// LatestRelease fetches the latest release of repo ("owner/name").
// Unreachable API yields shared.ErrSearchFailed; a non-200 or empty answer
// yields shared.ErrExternalFailure.
func (c *Client) LatestRelease(ctx context.Context, repo string) (*Release, error) {
	header := http.Header{
		"Accept":               {"application/vnd.github+json"},
		"X-GitHub-Api-Version": {"2022-11-28"},
	}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Get(ctx, c.baseURL+"/repos/"+repo+"/releases/latest", nil, header)
	if err != nil {
		return nil, upstream.ClientError(err, shared.ErrSearchFailed)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, shared.ErrExternalFailure
	}

	var rel Release
	if err := resp.DecodeJSON(&rel); err != nil || (rel.TagName == "" && len(rel.Assets) == 0) {
		return nil, shared.ErrExternalFailure
	}
	return &rel, nil
}
