// Package media runs the external media binaries (ffprobe, yt-dlp) and
// decodes their JSON output.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/everytoolsapi/backend/internal/infrastructure/logger"
	"github.com/everytoolsapi/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const stderrTail = 512

// ErrTimeout is returned when a command outlives its timeout.
var ErrTimeout = errors.New("media: command timed out")

// Executor runs a binary and returns its standard output.
type Executor interface {
	Run(ctx context.Context, binary string, args ...string) ([]byte, error)
}

// CommandExecutor runs binaries with exec.CommandContext under a timeout.
type CommandExecutor struct {
	Timeout time.Duration
}

// NewCommandExecutor creates an executor; timeout <= 0 means only the caller's
// context bounds the command.
func NewCommandExecutor(timeout time.Duration) *CommandExecutor {
	return &CommandExecutor{Timeout: timeout}
}

// Run executes binary with args. Stderr is attached to the returned error.
func (e *CommandExecutor) Run(ctx context.Context, binary string, args ...string) ([]byte, error) {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	name := filepath.Base(binary)
	ctx, span := telemetry.StartClientSpan(ctx, "exec "+name,
		attribute.String(telemetry.SpanAttrCommand, name),
	)
	var err error
	defer func() { telemetry.EndSpan(span, err) }()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if runErr := cmd.Run(); runErr != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %s after %s", ErrTimeout, name, time.Since(start).Round(time.Millisecond))
		} else {
			err = fmt.Errorf("%s: %w: %s", name, runErr, tail(stderr.String()))
		}
		logger.L(ctx).Warn("Command failed",
			zap.String("command", name),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}

	logger.L(ctx).Debug("Command finished",
		zap.String("command", name),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("stdout_bytes", stdout.Len()),
	)
	return stdout.Bytes(), nil
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > stderrTail {
		return "..." + s[len(s)-stderrTail:]
	}
	return s
}
