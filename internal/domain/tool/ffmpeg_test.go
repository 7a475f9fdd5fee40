package tool

import (
	"net/http"
	"testing"

	"github.com/everytoolsapi/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ffmpegAssets = []string{
	"checksums.sha256",
	"ffmpeg-master-latest-win64-gpl.zip",
	"ffmpeg-master-latest-win64-gpl-shared.zip",
	"ffmpeg-master-latest-win64-lgpl.zip",
	"ffmpeg-master-latest-linux64-gpl.tar.xz",
	"ffmpeg-master-latest-linuxarm64-gpl.tar.xz",
	"ffmpeg-n7.1-latest-win64-gpl-7.1.zip",
	"ffmpeg-master-latest-win64-gpl.zip",
}

func TestFFmpegFilter(t *testing.T) {
	t.Run("no filters keeps every master build once", func(t *testing.T) {
		f, err := NewFFmpegFilter("", "", "", "")
		require.NoError(t, err)

		urls, err := f.MatchBuilds(ffmpegAssets)
		require.NoError(t, err)
		assert.Len(t, urls, 5)
		assert.Equal(t, "https://github.com/BtbN/FFmpeg-Builds/releases/download/latest/ffmpeg-master-latest-win64-gpl.zip", urls[0])
	})

	t.Run("combines filters", func(t *testing.T) {
		f, err := NewFFmpegFilter("windows", "amd64", "gpl", "false")
		require.NoError(t, err)

		urls, err := f.MatchBuilds(ffmpegAssets)
		require.NoError(t, err)
		assert.Equal(t, []string{"https://github.com/BtbN/FFmpeg-Builds/releases/download/latest/ffmpeg-master-latest-win64-gpl.zip"}, urls)
	})

	t.Run("arm builds are not amd", func(t *testing.T) {
		f, err := NewFFmpegFilter("linux", "arm64", "", "")
		require.NoError(t, err)
		assert.True(t, f.Matches("ffmpeg-master-latest-linuxarm64-gpl.tar.xz"))
		assert.False(t, f.Matches("ffmpeg-master-latest-linux64-gpl.tar.xz"))

		amd, err := NewFFmpegFilter("", "amd64", "", "")
		require.NoError(t, err)
		assert.False(t, amd.Matches("ffmpeg-master-latest-linuxarm64-gpl.tar.xz"))
	})

	t.Run("shared filter", func(t *testing.T) {
		f, err := NewFFmpegFilter("", "", "", "true")
		require.NoError(t, err)
		require.NotNil(t, f.Shared)
		assert.True(t, *f.Shared)

		urls, err := f.MatchBuilds(ffmpegAssets)
		require.NoError(t, err)
		assert.Len(t, urls, 1)
	})

	t.Run("rejects unknown values", func(t *testing.T) {
		_, err := NewFFmpegFilter("mac", "", "", "")
		require.Error(t, err)
		assert.Equal(t, `The "os" parameter must be one of the following: "windows", "linux"`, err.Error())

		_, err = NewFFmpegFilter("", "x86", "", "")
		require.Error(t, err)
		assert.Equal(t, `The "arch" parameter must be one of the following: "amd32", "amd64", "arm32", "arm64"`, err.Error())

		_, err = NewFFmpegFilter("", "", "mit", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `The "license" parameter`)

		_, err = NewFFmpegFilter("", "", "", "yes")
		require.Error(t, err)
		assert.Equal(t, `The "shared" parameter must be a boolean: "true" or "false".`, err.Error())
	})

	t.Run("no match is a not found error", func(t *testing.T) {
		f, err := NewFFmpegFilter("linux", "", "lgpl", "")
		require.NoError(t, err)

		_, err = f.MatchBuilds(ffmpegAssets)
		require.ErrorIs(t, err, ErrNoFFmpegBuild)

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, http.StatusNotFound, de.HTTPStatus())
	})
}
