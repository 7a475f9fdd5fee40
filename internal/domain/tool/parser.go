package tool

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/everytoolsapi/backend/internal/domain/shared"
)

var (
	emailPattern = regexp.MustCompile(`^(?P<user>[a-zA-Z0-9._%+-]+)@(?P<domain>[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})$`)
	wordPattern  = regexp.MustCompile(`\b[a-zA-Z]+(?:'[a-zA-Z]+)*\b`)
)

// Parser errors
var (
	ErrInvalidEmail       = shared.Invalid("The e-mail address format is invalid.")
	ErrNegativeSeconds    = shared.Invalid(`The "query" parameter cannot be negative.`)
	ErrNonIntegerSeconds  = shared.Invalid(`The "query" parameter must be an integer.`)
	ErrMissingUserAgent   = shared.Missing(`No "query" parameter or "User-Agent" header found in the request.`)
	ErrMissingDestLang    = shared.Missing(`No "dest_lang" parameter found in the request.`)
	ErrMissingOriginIP    = shared.Invalid("Your IP address was not found in the request.")
	ErrEmptyQuery         = shared.Invalid(`The "query" parameter must not be empty.`)
	ErrUndetectedLanguage = shared.Invalid("There aren't enough resources in the text to detect your language.")
)

// Email is an e-mail address split into its parts
type Email struct {
	User   string `json:"user"`
	Domain string `json:"domain"`
}

// ParseEmail splits an e-mail address into user and domain
func ParseEmail(address string) (*Email, error) {
	m := emailPattern.FindStringSubmatch(address)
	if m == nil {
		return nil, ErrInvalidEmail
	}
	return &Email{
		User:   m[emailPattern.SubexpIndex("user")],
		Domain: m[emailPattern.SubexpIndex("domain")],
	}, nil
}

// ParsedURL is a URL split into its components
type ParsedURL struct {
	Protocol string         `json:"protocol"`
	Hostname *string        `json:"hostname"`
	Path     string         `json:"path"`
	Params   map[string]any `json:"params"`
	Fragment string         `json:"fragment"`
}

// ParseURL splits a URL into protocol, hostname, path, params and fragment.
// Single-valued params map to a string, repeated params to a list.
func ParseURL(raw string) (*ParsedURL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, shared.Invalid("The URL format is invalid.")
	}

	out := &ParsedURL{
		Protocol: u.Scheme,
		Path:     u.Path,
		Params:   make(map[string]any),
		Fragment: u.Fragment,
	}
	if host := strings.ToLower(u.Hostname()); host != "" {
		out.Hostname = &host
	}

	values, _ := url.ParseQuery(u.RawQuery)
	for k, v := range values {
		nonEmpty := v[:0:0]
		for _, item := range v {
			if item != "" {
				nonEmpty = append(nonEmpty, item)
			}
		}
		switch len(nonEmpty) {
		case 0:
		case 1:
			out.Params[k] = nonEmpty[0]
		default:
			out.Params[k] = nonEmpty
		}
	}
	return out, nil
}

// ParseSeconds validates a non-negative integer number of seconds
func ParseSeconds(raw string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, ErrNonIntegerSeconds
	}
	if n < 0 {
		return 0, ErrNegativeSeconds
	}
	return n, nil
}

// CharacterGroup counts the distinct items of a group and their occurrences
type CharacterGroup struct {
	Total      int            `json:"total"`
	Characters map[string]int `json:"characters"`
}

func (g *CharacterGroup) add(item string) {
	if _, ok := g.Characters[item]; !ok {
		g.Total++
	}
	g.Characters[item]++
}

func newGroup() CharacterGroup {
	return CharacterGroup{Characters: make(map[string]int)}
}

// TextCount is the per-category breakdown of a text
type TextCount struct {
	Lowercase    CharacterGroup `json:"lowercase"`
	Uppercase    CharacterGroup `json:"uppercase"`
	Numbers      CharacterGroup `json:"numbers"`
	Letters      CharacterGroup `json:"letters"`
	OtherSymbols CharacterGroup `json:"otherSymbols"`
	Words        CharacterGroup `json:"words"`
	Spaces       int            `json:"spaces"`
}

// CountText counts characters by class, words and spaces
func CountText(text string) *TextCount {
	c := &TextCount{
		Lowercase:    newGroup(),
		Uppercase:    newGroup(),
		Numbers:      newGroup(),
		Letters:      newGroup(),
		OtherSymbols: newGroup(),
		Words:        newGroup(),
	}

	for _, r := range text {
		ch := string(r)
		switch {
		case unicode.IsLower(r):
			c.Lowercase.add(ch)
		case unicode.IsUpper(r):
			c.Uppercase.add(ch)
		}
		if unicode.IsDigit(r) {
			c.Numbers.add(ch)
		}
		if unicode.IsLetter(r) {
			c.Letters.add(ch)
		}
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) && !unicode.IsSpace(r) {
			c.OtherSymbols.add(ch)
		}
		if r == ' ' {
			c.Spaces++
		}
	}

	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		c.Words.add(w)
	}
	return c
}

// Search result bounds
const (
	DefaultMaxResults = 10
	MaxSearchResults  = 50
)

// ParseMaxResults validates the optional "max_results" parameter
func ParseMaxResults(raw string) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return DefaultMaxResults, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, shared.Invalid(`The "max_results" parameter must be an integer.`)
	}
	if n < 1 {
		return 0, shared.Invalid(`The "max_results" parameter must be greater than 0.`)
	}
	if n > MaxSearchResults {
		return 0, shared.Invalid(`The "max_results" parameter must be less than or equal to 50.`)
	}
	return n, nil
}
