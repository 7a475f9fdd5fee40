package tool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseYouTubeURL(t *testing.T) {
	t.Run("extracts video ids", func(t *testing.T) {
		cases := map[string]string{
			"https://www.youtube.com/watch?v=dQw4w9WgXcQ":            "dQw4w9WgXcQ",
			"https://youtu.be/dQw4w9WgXcQ?t=5":                       "dQw4w9WgXcQ",
			"https://www.youtube.com/embed/dQw4w9WgXcQ":              "dQw4w9WgXcQ",
			"https://m.youtube.com/watch?feature=share&v=dQw4w9WgXcQ": "dQw4w9WgXcQ",
		}
		for raw, want := range cases {
			id, err := YouTubeVideoID(raw)
			require.NoError(t, err, raw)
			assert.Equal(t, want, id, raw)
		}
	})

	t.Run("keeps playlist id next to the video", func(t *testing.T) {
		u, err := ParseYouTubeURL("https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=PLabc_123")
		require.NoError(t, err)
		assert.Equal(t, YouTubeVideo, u.Type)
		assert.Equal(t, "PLabc_123", u.PlaylistID)
	})

	t.Run("rejects playlist only URLs", func(t *testing.T) {
		_, err := YouTubeVideoID("https://www.youtube.com/playlist?list=PLabc_123")
		assert.ErrorIs(t, err, ErrOnlyVideoURLs)
	})

	t.Run("rejects foreign URLs", func(t *testing.T) {
		_, err := YouTubeVideoID("https://example.com/watch?v=dQw4w9WgXcQ")
		assert.ErrorIs(t, err, ErrInvalidYouTubeURL)

		_, err = YouTubeVideoID("https://www.youtube.com/")
		assert.ErrorIs(t, err, ErrInvalidYouTubeURL)
	})
}

func TestYouTubeLinks(t *testing.T) {
	links := YouTubeLinksFor("abc")
	assert.Equal(t, "https://www.youtube.com/watch?v=abc", links.URL)
	assert.Equal(t, "https://youtu.be/abc", links.ShortURL)
	assert.Equal(t, "https://www.youtube.com/embed/abc", links.EmbedURL)

	assert.Equal(t, "", YouTubeChannelURL(""))
	assert.Equal(t, "https://www.youtube.com/channel/UC1", YouTubeChannelURL("UC1"))

	thumbs := YouTubeThumbnails("abc")
	require.Len(t, thumbs, 5)
	assert.Equal(t, "https://img.youtube.com/vi/abc/maxresdefault.jpg", thumbs[0])
	assert.Equal(t, "https://img.youtube.com/vi/abc/default.jpg", thumbs[4])
}

func TestIsBlockedMediaURL(t *testing.T) {
	assert.False(t, IsBlockedMediaURL("https://rr1.googlevideo.com/videoplayback?id=1"))
	assert.True(t, IsBlockedMediaURL("https://manifest.googlevideo.com/api/manifest/hls"))
	assert.True(t, IsBlockedMediaURL("ftp://example.com/file"))
	assert.True(t, IsBlockedMediaURL(""))
}

func TestValidateTikTokURL(t *testing.T) {
	assert.NoError(t, ValidateTikTokURL("https://www.tiktok.com/@user.name/video/7234567890123456789"))
	assert.NoError(t, ValidateTikTokURL("https://vm.tiktok.com/ZMabc123/"))
	assert.ErrorIs(t, ValidateTikTokURL("https://www.tiktok.com/@user.name"), ErrInvalidTikTokURL)
	assert.ErrorIs(t, ValidateTikTokURL("tiktok.com/@user/video/1"), ErrInvalidTikTokURL)
}

func TestNormalizeInstagramURL(t *testing.T) {
	t.Run("adds missing scheme", func(t *testing.T) {
		u, err := NormalizeInstagramURL("instagram.com/reel/Cabc123/")
		require.NoError(t, err)
		assert.Equal(t, "https://instagram.com/reel/Cabc123/", u)
	})

	t.Run("accepts posts with user segment and query", func(t *testing.T) {
		u, err := NormalizeInstagramURL("https://www.instagram.com/someone/p/Cabc-123/?igsh=x")
		require.NoError(t, err)
		assert.Equal(t, "https://www.instagram.com/someone/p/Cabc-123/?igsh=x", u)
	})

	t.Run("rejects other pages", func(t *testing.T) {
		_, err := NormalizeInstagramURL("https://www.instagram.com/stories/someone/1")
		assert.ErrorIs(t, err, ErrInvalidInstagramURL)
	})
}

func TestNormalizeSoundCloudURL(t *testing.T) {
	u, err := NormalizeSoundCloudURL("soundcloud.com/artist/track-name")
	require.NoError(t, err)
	assert.Equal(t, "https://soundcloud.com/artist/track-name", u)

	_, err = NormalizeSoundCloudURL("https://soundcloud.com/artist")
	assert.ErrorIs(t, err, ErrInvalidSoundCloudURL)
}

func TestProxiedMediaURL(t *testing.T) {
	t.Run("unwraps uri and forces dl=0", func(t *testing.T) {
		out, err := ProxiedMediaURL("https://dl.example/proxy?uri=https%3A%2F%2Fcdn.example.com%2Fv%2Fclip.mp4%3Fdl%3D1%26token%3Dabc")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/v/clip.mp4?dl=0&token=abc", out)
	})

	t.Run("fails without uri parameter", func(t *testing.T) {
		_, err := ProxiedMediaURL("https://dl.example/proxy?x=1")
		assert.Error(t, err)
	})
}

func TestURLHelpers(t *testing.T) {
	assert.Equal(t, "https://a.akamaized.net/v/a b.mp4", StripQueryAndUnescape("https://a.akamaized.net/v/a%20b.mp4?x=1"))
	assert.Equal(t, "100%", Unescape("100%"))
	assert.Equal(t, []string{"a", "b"}, DedupeStrings([]string{"a", "b", "a"}))
}
