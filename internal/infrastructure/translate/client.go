// Package translate calls a LibreTranslate compatible translation API.
package translate

import (
	"context"
	"strings"

	"github.com/everytoolsapi/backend/internal/domain/shared"
	"github.com/everytoolsapi/backend/internal/domain/tool"
	"github.com/everytoolsapi/backend/internal/infrastructure/logger"
	"github.com/everytoolsapi/backend/internal/infrastructure/upstream"
	"go.uber.org/zap"
)

// AutoDetect asks the service to detect the source language
const AutoDetect = "auto"

type request struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type response struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error"`
}

// Client translates text.
type Client struct {
	http   *upstream.Client
	url    string
	apiKey string
}

// NewClient creates a Client posting to endpointURL.
func NewClient(client *upstream.Client, endpointURL, apiKey string) *Client {
	return &Client{http: client, url: endpointURL, apiKey: apiKey}
}

// NormalizeLang rewrites a language code the way the API expects it.
func NormalizeLang(code string) string {
	return strings.ReplaceAll(strings.TrimSpace(code), "-", "_")
}

// Translate translates text from src (empty for auto detection) to dest.
// Errors reported by the service come back as 500 domain errors carrying
// the service message.
func (c *Client) Translate(ctx context.Context, text, src, dest string) (string, error) {
	if dest == "" {
		return "", tool.ErrMissingDestLang
	}
	source := AutoDetect
	if src != "" {
		source = NormalizeLang(src)
	}

	resp, err := c.http.PostJSON(ctx, c.url, request{
		Q:      text,
		Source: source,
		Target: NormalizeLang(dest),
		Format: "text",
		APIKey: c.apiKey,
	}, nil)
	if err != nil {
		return "", upstream.ClientError(err, shared.ErrOnlineRequestFailed)
	}

	var out response
	if err := resp.DecodeJSON(&out); err != nil {
		logger.L(ctx).Warn("Unreadable translation response",
			zap.Int("status", resp.StatusCode),
			zap.Error(err),
		)
		return "", shared.ErrExternalFailure
	}
	if out.Error != "" {
		return "", shared.Upstream(tool.Capitalize(out.Error))
	}
	if !resp.OK() {
		return "", shared.ErrExternalFailure
	}
	return out.TranslatedText, nil
}
