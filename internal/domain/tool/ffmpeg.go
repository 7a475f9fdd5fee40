package tool

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/everytoolsapi/backend/internal/domain/shared"
)

const (
	ffmpegBuildPrefix      = "ffmpeg-master-latest-"
	ffmpegDownloadBaseURL  = "https://github.com/BtbN/FFmpeg-Builds/releases/download/latest/"
	ffmpegSharedMarker     = "-shared"
	ffmpegNoBuildMessage   = "No FFmpeg build found with the specified parameters."
	ffmpegSharedBoolReason = `The "shared" parameter must be a boolean: "true" or "false".`
)

// ErrNoFFmpegBuild is returned when no release asset matches the filters
var ErrNoFFmpegBuild = shared.NewDomainErrorWithStatus(http.StatusNotFound, shared.CodeNotFound, ffmpegNoBuildMessage)

type buildMatcher struct {
	name  string
	match func(build string) bool
}

var (
	ffmpegOS = []buildMatcher{
		{"windows", func(b string) bool { return strings.Contains(b, "-win") }},
		{"linux", func(b string) bool { return strings.Contains(b, "-linux") }},
	}
	ffmpegArch = []buildMatcher{
		{"amd32", func(b string) bool { return !strings.Contains(b, "arm") && strings.Contains(b, "32-") }},
		{"amd64", func(b string) bool { return !strings.Contains(b, "arm") && strings.Contains(b, "64-") }},
		{"arm32", func(b string) bool { return strings.Contains(b, "arm32") }},
		{"arm64", func(b string) bool { return strings.Contains(b, "arm64") }},
	}
	ffmpegLicense = []buildMatcher{
		{"gpl", func(b string) bool { return strings.Contains(b, "-gpl") }},
		{"lgpl", func(b string) bool { return strings.Contains(b, "-lgpl") }},
	}
)

// FFmpegFilter selects FFmpeg release assets; empty fields match anything
type FFmpegFilter struct {
	OS      string
	Arch    string
	License string
	Shared  *bool

	matchers []func(string) bool
}

// NewFFmpegFilter validates the raw filter values
func NewFFmpegFilter(osName, arch, license, sharedRaw string) (*FFmpegFilter, error) {
	f := &FFmpegFilter{OS: osName, Arch: arch, License: license}

	for _, opt := range []struct {
		param    string
		value    string
		matchers []buildMatcher
	}{
		{"os", osName, ffmpegOS},
		{"arch", arch, ffmpegArch},
		{"license", license, ffmpegLicense},
	} {
		if opt.value == "" {
			continue
		}
		m, err := pickMatcher(opt.param, opt.value, opt.matchers)
		if err != nil {
			return nil, err
		}
		f.matchers = append(f.matchers, m)
	}

	switch sharedRaw {
	case "":
	case "true":
		v := true
		f.Shared = &v
		f.matchers = append(f.matchers, func(b string) bool { return strings.Contains(b, ffmpegSharedMarker) })
	case "false":
		v := false
		f.Shared = &v
		f.matchers = append(f.matchers, func(b string) bool { return !strings.Contains(b, ffmpegSharedMarker) })
	default:
		return nil, shared.Invalid(ffmpegSharedBoolReason)
	}
	return f, nil
}

func pickMatcher(param, value string, matchers []buildMatcher) (func(string) bool, error) {
	names := make([]string, 0, len(matchers))
	for _, m := range matchers {
		if m.name == value {
			return m.match, nil
		}
		names = append(names, m.name)
	}
	return nil, shared.Invalid(fmt.Sprintf(`The "%s" parameter must be one of the following: "%s"`, param, strings.Join(names, `", "`)))
}

// Matches reports whether a release asset name satisfies the filter
func (f *FFmpegFilter) Matches(build string) bool {
	if !strings.HasPrefix(build, ffmpegBuildPrefix) {
		return false
	}
	for _, m := range f.matchers {
		if !m(build) {
			return false
		}
	}
	return true
}

// MatchBuilds returns download URLs of the matching asset names, deduplicated in input order
func (f *FFmpegFilter) MatchBuilds(assetNames []string) ([]string, error) {
	var urls []string
	for _, name := range assetNames {
		if f.Matches(name) {
			urls = append(urls, ffmpegDownloadBaseURL+name)
		}
	}
	urls = DedupeStrings(urls)
	if len(urls) == 0 {
		return nil, ErrNoFFmpegBuild
	}
	return urls, nil
}
