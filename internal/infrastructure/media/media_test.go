package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExecutor struct {
	out  []byte
	err  error
	args []string
}

func (f *fakeExecutor) Run(_ context.Context, binary string, args ...string) ([]byte, error) {
	f.args = append([]string{binary}, args...)
	return f.out, f.err
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tool.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestCommandExecutor(t *testing.T) {
	e := NewCommandExecutor(time.Second)

	t.Run("stdout", func(t *testing.T) {
		out, err := e.Run(context.Background(), writeScript(t, `echo "$1-$2"`), "a", "b")
		require.NoError(t, err)
		assert.Equal(t, "a-b\n", string(out))
	})

	t.Run("failure carries stderr", func(t *testing.T) {
		_, err := e.Run(context.Background(), writeScript(t, `echo broken >&2; exit 3`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broken")
	})

	t.Run("timeout", func(t *testing.T) {
		short := NewCommandExecutor(50 * time.Millisecond)
		_, err := short.Run(context.Background(), writeScript(t, `sleep 5`))
		assert.ErrorIs(t, err, ErrTimeout)
	})
}

func TestFFprobe_Inspect(t *testing.T) {
	t.Run("decodes output", func(t *testing.T) {
		fe := &fakeExecutor{out: []byte(`{"streams":[{"index":0,"codec_type":"video","codec_name":"h264"}],"format":{"format_name":"mov,mp4"}}`)}
		res, err := NewFFprobe("", fe).Inspect(context.Background(), "https://example.com/a.mp4")
		require.NoError(t, err)

		assert.Equal(t, 1, res.VideoStreamCount())
		assert.JSONEq(t, string(fe.out), string(res.Raw))
		assert.Equal(t, []string{
			"ffprobe", "-v", "quiet",
			"-protocol_whitelist", "https,http,tcp,tls",
			"-print_format", "json", "-show_format", "-show_streams",
			"--", "https://example.com/a.mp4",
		}, fe.args)
	})

	t.Run("rejects non-remote inputs", func(t *testing.T) {
		for _, target := range []string{
			"-report",
			"/etc/passwd",
			"file:///etc/passwd",
			"concat:a.mp4|b.mp4",
			"ftp://example.com/a.mp4",
			"https:///a.mp4",
			"",
		} {
			fe := &fakeExecutor{out: []byte(`{"format":{"format_name":"mp4"}}`)}
			_, err := NewFFprobe("ffprobe", fe).Inspect(context.Background(), target)
			assert.ErrorIs(t, err, ErrFFprobeFailed, target)
			assert.Nil(t, fe.args, "ffprobe must not run for %q", target)
		}
	})

	t.Run("command failure", func(t *testing.T) {
		_, err := NewFFprobe("ffprobe", &fakeExecutor{err: errors.New("exit status 1")}).Inspect(context.Background(), "https://example.com/a.mp4")
		assert.ErrorIs(t, err, ErrFFprobeFailed)
	})

	t.Run("empty document", func(t *testing.T) {
		_, err := NewFFprobe("ffprobe", &fakeExecutor{out: []byte(`{}`)}).Inspect(context.Background(), "https://example.com/a.mp4")
		assert.ErrorIs(t, err, ErrNoMediaData)
	})
}

func TestYtDlp(t *testing.T) {
	t.Run("extract", func(t *testing.T) {
		fe := &fakeExecutor{out: []byte(`{"id":"abc","title":"T","duration":12.5,"like_count":null,"formats":[{"format_id":"18","vcodec":"avc1.42001E","filesize":null}]}`)}
		info, err := NewYtDlp("", fe).Extract(context.Background(), "https://youtu.be/abc", FormatBestVideo)
		require.NoError(t, err)

		assert.Equal(t, "abc", info.ID)
		assert.Equal(t, 12.5, info.Duration)
		assert.Zero(t, info.LikeCount)
		require.Len(t, info.Formats, 1)
		assert.Zero(t, info.Formats[0].Filesize)
		assert.Equal(t, []string{"yt-dlp", "-J", "--no-warnings", "--no-playlist", "--geo-bypass", "-f", FormatBestVideo, "--", "https://youtu.be/abc"}, fe.args)
	})

	t.Run("search", func(t *testing.T) {
		fe := &fakeExecutor{out: []byte(`{"entries":[{"id":"xyz","title":"Song","channel_id":"UC1","view_count":42}]}`)}
		info, err := NewYtDlp("yt-dlp", fe).SearchYouTube(context.Background(), "some song")
		require.NoError(t, err)
		assert.Equal(t, "xyz", info.ID)
		assert.Equal(t, int64(42), info.ViewCount)
		assert.Equal(t, "ytsearch1:some song", fe.args[len(fe.args)-1])
	})

	t.Run("search without entries", func(t *testing.T) {
		_, err := NewYtDlp("", &fakeExecutor{out: []byte(`{"entries":[]}`)}).SearchYouTube(context.Background(), "q")
		assert.ErrorIs(t, err, ErrNoSearchResult)
	})

	t.Run("garbage output", func(t *testing.T) {
		_, err := NewYtDlp("", &fakeExecutor{out: []byte(`nope`)}).Extract(context.Background(), "u", "")
		assert.Error(t, err)
	})
}
