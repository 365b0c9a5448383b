package system

import (
	"context"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"syscall"
)

// DefaultOpenFiles is the soft RLIMIT_NOFILE the preloader is comfortable
// with: a priority burst plus a batch of open frame files and sockets.
const DefaultOpenFiles = 2048

// InitResourceLimits raises the soft open-files limit towards want, capped
// by the hard limit.
func InitResourceLimits(want uint64, logger *slog.Logger) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		logger.Warn("cannot read open files limit", "error", err)
		return
	}
	if rLimit.Cur >= want {
		return
	}

	rLimit.Cur = want
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		logger.Warn("cannot raise open files limit", "error", err)
		return
	}
	logger.Debug("open files limit raised", "limit", rLimit.Cur)
}

// h264Encoders in order of preference; libx264 is the fallback.
var h264Encoders = []string{"h264_videotoolbox", "h264_nvenc"}

// BestH264Encoder asks ffmpeg which encoders it was built with and picks a
// hardware one when available.
func BestH264Encoder(ctx context.Context) string {
	out, err := exec.CommandContext(ctx, "ffmpeg", "-hide_banner", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264"
	}
	return pickEncoder(string(out))
}

func pickEncoder(listing string) string {
	for _, name := range h264Encoders {
		if strings.Contains(listing, name) {
			return name
		}
	}
	return "libx264"
}
