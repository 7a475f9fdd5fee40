package tool

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxFormattedLength is the default maximum length of FormatString output
const MaxFormattedLength = 128

var (
	disallowedChars = regexp.MustCompile(`[^a-zA-Z0-9\-_()\[\]{}!$#+,. ]`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
	asciiOnly       = transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })))
)

// FormatString turns an arbitrary title into a file-name safe ASCII string.
// Accents are decomposed and dropped, characters outside a safe set are removed,
// whitespace runs are collapsed and the result is cut at the last space before maxLength.
func FormatString(s string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = MaxFormattedLength
	}

	ascii, _, err := transform.String(asciiOnly, s)
	if err != nil {
		ascii = s
	}

	cleaned := disallowedChars.ReplaceAllString(strings.TrimSpace(ascii), "")
	cleaned = strings.TrimSpace(whitespaceRun.ReplaceAllString(cleaned, " "))

	if len(cleaned) > maxLength {
		cleaned = cleaned[:maxLength]
		if i := strings.LastIndex(cleaned, " "); i >= 0 {
			cleaned = cleaned[:i]
		}
	}
	return cleaned
}

// SecondsToHMS renders seconds as zero padded HH:MM:SS; hours grow past two digits as needed
func SecondsToHMS(seconds int64) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}

// FormatDuration renders a media duration as HH:MM:SS, clamping negative values to zero
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return SecondsToHMS(seconds)
}

// Capitalize upper-cases the first letter and lower-cases the rest
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
