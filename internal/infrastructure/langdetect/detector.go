// Package langdetect identifies the predominant language of a text.
package langdetect

import (
	"strings"

	"github.com/abadojack/whatlanggo"
	"github.com/everytoolsapi/backend/internal/domain/tool"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Result is a detected language
type Result struct {
	Code string `json:"detectedLangCode"`
	Name string `json:"detectedLangName"`
}

// Detector detects languages with whatlanggo trigram profiles.
type Detector struct {
	opts  whatlanggo.Options
	names display.Namer
}

// NewDetector creates a Detector that names languages in English.
func NewDetector() *Detector {
	return &Detector{
		names: display.English.Languages(),
	}
}

// Detect returns the ISO 639-1 code and English name of the language of text.
// Texts without letters, or in a language lacking a two-letter code, yield
// tool.ErrUndetectedLanguage.
func (d *Detector) Detect(text string) (*Result, error) {
	if strings.TrimSpace(text) == "" || whatlanggo.DetectScript(text) == nil {
		return nil, tool.ErrUndetectedLanguage
	}

	info := whatlanggo.DetectWithOptions(text, d.opts)
	code := info.Lang.Iso6391()
	if code == "" || info.Confidence == 0 {
		return nil, tool.ErrUndetectedLanguage
	}

	name := info.Lang.String()
	if tag, err := language.Parse(code); err == nil {
		if n := d.names.Name(tag); n != "" {
			name = n
		}
	}
	return &Result{Code: code, Name: name}, nil
}
