package export

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
)

const framePattern = "frame_%04d.png"

var videoContentTypes = map[string]string{
	"mp4":  "video/mp4",
	"gif":  "image/gif",
	"webm": "video/webm",
}

// Encoder turns a directory of numbered PNG frames into a video file.
type Encoder struct {
	ffmpegPath string
}

func NewEncoder(ffmpegPath string) *Encoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Encoder{ffmpegPath: ffmpegPath}
}

// Encode writes dir/output.<format> and returns its path.
func (e *Encoder) Encode(ctx context.Context, dir, format string, fps int) (string, error) {
	if _, ok := videoContentTypes[format]; !ok {
		return "", fmt.Errorf("%w: %q", ErrBadFormat, format)
	}
	output := filepath.Join(dir, "output."+format)
	for _, args := range encodePasses(dir, format, fps, output) {
		if err := e.run(ctx, args...); err != nil {
			return "", err
		}
	}
	return output, nil
}

// encodePasses returns the ffmpeg argument lists for format. GIF takes
// two passes: palette generation then palette use.
func encodePasses(dir, format string, fps int, output string) [][]string {
	input := []string{
		"-framerate", strconv.Itoa(fps),
		"-i", filepath.Join(dir, framePattern),
	}
	with := func(extra ...string) []string {
		return append(append([]string{}, input...), extra...)
	}

	switch format {
	case "mp4":
		return [][]string{with(
			"-c:v", "libx264",
			"-pix_fmt", "yuv420p",
			"-crf", "18",
			"-preset", "fast",
			"-movflags", "+faststart",
			output,
		)}
	case "gif":
		palette := filepath.Join(dir, "palette.png")
		return [][]string{
			with("-vf", "palettegen=stats_mode=diff", palette),
			with(
				"-i", palette,
				"-lavfi", "paletteuse=dither=bayer:bayer_scale=5:diff_mode=rectangle",
				output,
			),
		}
	case "webm":
		return [][]string{with(
			"-c:v", "libvpx-vp9",
			"-crf", "30",
			"-b:v", "0",
			"-pix_fmt", "yuva420p",
			output,
		)}
	}
	return nil
}

func (e *Encoder) run(ctx context.Context, args ...string) error {
	// -y overwrites output without prompting
	fullArgs := append([]string{"-y"}, args...)
	cmd := exec.CommandContext(ctx, e.ffmpegPath, fullArgs...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg: %v: %s", err, stderr.String())
	}
	return nil
}
