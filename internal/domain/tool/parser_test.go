package tool

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatString(t *testing.T) {
	t.Run("strips accents and symbols", func(t *testing.T) {
		assert.Equal(t, "Cafe Deja vu!!", FormatString("  Café   Déjà vu!! ✨ ", 0))
	})

	t.Run("keeps allowed punctuation", func(t *testing.T) {
		assert.Equal(t, "Song (Live) [HD] #1 - part_2", FormatString("Song (Live) [HD] #1 - part_2", 0))
	})

	t.Run("truncates at the last space", func(t *testing.T) {
		out := FormatString(strings.Repeat("word ", 40), 0)
		assert.Len(t, out, 124)
		assert.True(t, strings.HasSuffix(out, "word"))
	})

	t.Run("truncates without spaces", func(t *testing.T) {
		out := FormatString(strings.Repeat("a", 200), 10)
		assert.Equal(t, strings.Repeat("a", 10), out)
	})
}

func TestSecondsToHMS(t *testing.T) {
	assert.Equal(t, "00:00:00", SecondsToHMS(0))
	assert.Equal(t, "01:01:01", SecondsToHMS(3661))
	assert.Equal(t, "100:00:00", SecondsToHMS(360000))
	assert.Equal(t, "00:00:00", FormatDuration(-10))
}

func TestParseSeconds(t *testing.T) {
	t.Run("parses integers", func(t *testing.T) {
		n, err := ParseSeconds(" 3661 ")
		require.NoError(t, err)
		assert.Equal(t, int64(3661), n)
	})

	t.Run("rejects negative values", func(t *testing.T) {
		_, err := ParseSeconds("-5")
		assert.ErrorIs(t, err, ErrNegativeSeconds)
	})

	t.Run("rejects non integers", func(t *testing.T) {
		for _, s := range []string{"abc", "1.5", ""} {
			_, err := ParseSeconds(s)
			assert.ErrorIs(t, err, ErrNonIntegerSeconds, s)
		}
	})
}

func TestParseEmail(t *testing.T) {
	t.Run("splits user and domain", func(t *testing.T) {
		e, err := ParseEmail("john.doe+news@mail.example.com")
		require.NoError(t, err)
		assert.Equal(t, "john.doe+news", e.User)
		assert.Equal(t, "mail.example.com", e.Domain)
	})

	t.Run("rejects invalid addresses", func(t *testing.T) {
		for _, s := range []string{"foo@bar", "no-at-sign.com", "a@b.c", "@example.com"} {
			_, err := ParseEmail(s)
			assert.ErrorIs(t, err, ErrInvalidEmail, s)
		}
	})
}

func TestParseURL(t *testing.T) {
	t.Run("splits every component", func(t *testing.T) {
		u, err := ParseURL("https://Example.com/path/to?a=1&b=2&b=3&empty=#frag")
		require.NoError(t, err)

		assert.Equal(t, "https", u.Protocol)
		require.NotNil(t, u.Hostname)
		assert.Equal(t, "example.com", *u.Hostname)
		assert.Equal(t, "/path/to", u.Path)
		assert.Equal(t, "frag", u.Fragment)
		assert.Equal(t, "1", u.Params["a"])
		assert.Equal(t, []string{"2", "3"}, u.Params["b"])
		assert.NotContains(t, u.Params, "empty")
	})

	t.Run("hostname is nil for relative URLs", func(t *testing.T) {
		u, err := ParseURL("/just/a/path")
		require.NoError(t, err)
		assert.Nil(t, u.Hostname)
		assert.Empty(t, u.Params)
	})

	t.Run("rejects unparsable URLs", func(t *testing.T) {
		_, err := ParseURL("http://[::1")
		assert.Error(t, err)
	})
}

func TestCountText(t *testing.T) {
	c := CountText("Hello World 42! It's")

	assert.Equal(t, 3, c.Spaces)
	assert.Equal(t, 3, c.Lowercase.Characters["l"])
	assert.Equal(t, 7, c.Lowercase.Total)
	assert.Equal(t, 3, c.Uppercase.Total)
	assert.Equal(t, 2, c.Numbers.Total)
	assert.Equal(t, 1, c.Numbers.Characters["4"])
	assert.Equal(t, 2, c.OtherSymbols.Total)
	assert.Equal(t, 1, c.OtherSymbols.Characters["!"])
	assert.Equal(t, 1, c.OtherSymbols.Characters["'"])
	assert.Equal(t, 3, c.Words.Total)
	assert.Equal(t, 1, c.Words.Characters["it's"])
	assert.Equal(t, 1, c.Words.Characters["hello"])
}

func TestParseMaxResults(t *testing.T) {
	tests := []struct {
		raw  string
		want int
		err  string
	}{
		{"", DefaultMaxResults, ""},
		{"1", 1, ""},
		{"50", 50, ""},
		{"0", 0, `The "max_results" parameter must be greater than 0.`},
		{"51", 0, `The "max_results" parameter must be less than or equal to 50.`},
		{"ten", 0, `The "max_results" parameter must be an integer.`},
	}
	for _, tt := range tests {
		t.Run("raw "+tt.raw, func(t *testing.T) {
			n, err := ParseMaxResults(tt.raw)
			if tt.err != "" {
				require.Error(t, err)
				assert.Equal(t, tt.err, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}
}
