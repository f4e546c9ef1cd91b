package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Thumbnailer extracts a JPEG still from a video by shelling out to the
// ffmpeg binary. The frame is taken one second in, matching what the
// clip thumbnails have always looked like.
type Thumbnailer struct {
	binPath string
}

func NewThumbnailer(binPath string) *Thumbnailer {
	if binPath == "" {
		binPath = "ffmpeg"
	}
	return &Thumbnailer{binPath: binPath}
}

// Extract writes a thumbnail for videoPath to a temp file and returns its
// path. The caller owns the returned file and removes it when done.
func (t *Thumbnailer) Extract(ctx context.Context, videoPath string) (string, error) {
	out, err := os.CreateTemp("", "clip-thumb-*.jpg")
	if err != nil {
		return "", fmt.Errorf("create thumbnail temp file: %w", err)
	}
	out.Close()

	cmd := exec.CommandContext(ctx, t.binPath,
		"-y",
		"-ss", "00:00:01",
		"-i", videoPath,
		"-frames:v", "1",
		"-q:v", "2",
		out.Name(),
	)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		os.Remove(out.Name())
		return "", fmt.Errorf("ffmpeg: %w: %s", err, lastLine(stderr.String()))
	}
	return out.Name(), nil
}

// lastLine trims ffmpeg's noisy banner down to the actual failure.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}
