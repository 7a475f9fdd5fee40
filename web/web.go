// Package web embeds the HTML templates and static files served by the API.
// Both can be replaced by directories on disk through the web section of the
// configuration.
package web

import (
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"strings"

	"github.com/everytoolsapi/backend/internal/infrastructure/config"
)

// Template names
const (
	IndexTemplate = "index.html"
	ErrorTemplate = "httpweberrors.html"
	FaviconFile   = "favicon.ico"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// Assets are the loaded templates and static files
type Assets struct {
	Templates     *template.Template
	Static        fs.FS
	Favicon       []byte
	FaviconBase64 string
}

// Load reads the embedded assets, or the configured directories when set
func Load(cfg config.WebConfig) (*Assets, error) {
	tfs, err := sub(templatesFS, "templates", cfg.TemplateFolder)
	if err != nil {
		return nil, err
	}
	sfs, err := sub(staticFS, "static", cfg.StaticFolder)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.ParseFS(tfs, "*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	for _, name := range []string{IndexTemplate, ErrorTemplate} {
		if tmpl.Lookup(name) == nil {
			return nil, fmt.Errorf("template %s not found", name)
		}
	}

	favicon, err := fs.ReadFile(sfs, FaviconFile)
	if err != nil {
		return nil, fmt.Errorf("read favicon: %w", err)
	}

	return &Assets{
		Templates:     tmpl,
		Static:        sfs,
		Favicon:       favicon,
		FaviconBase64: base64.StdEncoding.EncodeToString(favicon),
	}, nil
}

// MustLoad loads the embedded assets and panics on error; meant for tests
func MustLoad() *Assets {
	a, err := Load(config.WebConfig{})
	if err != nil {
		panic(err)
	}
	return a
}

func sub(embedded embed.FS, dir, override string) (fs.FS, error) {
	if strings.TrimSpace(override) != "" {
		info, err := os.Stat(override)
		if err != nil {
			return nil, fmt.Errorf("web folder %s: %w", override, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("web folder %s is not a directory", override)
		}
		return os.DirFS(override), nil
	}
	return fs.Sub(embedded, dir)
}
