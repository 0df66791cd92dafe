package player

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os/exec"
	"strings"
	"sync"
	"time"

	_ "golang.org/x/image/webp"
)

const (
	frameRate       = 4
	maxFrames       = 24
	ffmpegDeadline  = 12 * time.Second
	minFrameColumns = 8
	minFrameRows    = 4
)

var errNotAnimated = errors.New("not animated")

var (
	ffmpegCheckOnce sync.Once
	ffmpegAvailable bool
)

func hasFFmpeg() bool {
	ffmpegCheckOnce.Do(func() {
		_, err := exec.LookPath("ffmpeg")
		ffmpegAvailable = err == nil
	})
	return ffmpegAvailable
}

// decodeFrames turns media bytes into ANSI frames of w columns and h rows.
// Animated GIFs and stills decode in process; anything else goes through
// ffmpeg, first from the bytes and then from url when the container needs
// seeking.
func decodeFrames(ctx context.Context, data []byte, url string, w, h int) ([]string, error) {
	w, h = max(w, minFrameColumns), max(h, minFrameRows)

	if frames, err := framesFromGIF(data, w, h); err == nil {
		return frames, nil
	}
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return []string{renderFrame(img, w, h)}, nil
	}
	if !hasFFmpeg() {
		return nil, fmt.Errorf("ffmpeg unavailable")
	}

	frames, err := framesFromVideo(ctx, "pipe:0", data, w, h)
	if err == nil {
		return frames, nil
	}
	if url == "" {
		return nil, err
	}
	return framesFromVideo(ctx, url, nil, w, h)
}

func framesFromGIF(data []byte, w, h int) ([]string, error) {
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if len(g.Image) <= 1 {
		return nil, errNotAnimated
	}
	n := min(len(g.Image), maxFrames)
	frames := make([]string, 0, n)
	for i := 0; i < n; i++ {
		frames = append(frames, renderFrame(g.Image[i], w, h))
	}
	return frames, nil
}

// framesFromVideo samples the input at frameRate through ffmpeg, which
// re-encodes to GIF on stdout.
func framesFromVideo(ctx context.Context, input string, stdin []byte, w, h int) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, ffmpegDeadline)
	defer cancel()

	filter := fmt.Sprintf("fps=%d,scale=%d:%d:flags=lanczos", frameRate, w, h*2)
	cmd := exec.CommandContext(
		ctx,
		"ffmpeg",
		"-hide_banner",
		"-loglevel", "error",
		"-i", input,
		"-vf", filter,
		"-frames:v", fmt.Sprintf("%d", maxFrames),
		"-f", "gif",
		"-",
	)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg: %w", err)
	}
	g, err := gif.DecodeAll(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("decoding ffmpeg output: %w", err)
	}
	frames := make([]string, 0, len(g.Image))
	for _, img := range g.Image {
		frames = append(frames, renderFrame(img, w, h))
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("ffmpeg produced no frames")
	}
	return frames, nil
}

// renderFrame paints img with upper half blocks, two pixel rows per line.
func renderFrame(img image.Image, w, h int) string {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return ""
	}
	var out strings.Builder
	rows := h * 2
	for y := 0; y < rows; y += 2 {
		for x := 0; x < w; x++ {
			sx := b.Min.X + x*b.Dx()/w
			top := sample(img, sx, b.Min.Y+y*b.Dy()/rows)
			bottom := sample(img, sx, b.Min.Y+(y+1)*b.Dy()/rows)
			fmt.Fprintf(&out, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀",
				top.R, top.G, top.B, bottom.R, bottom.G, bottom.B)
		}
		out.WriteString("\x1b[0m")
		if y+2 < rows {
			out.WriteByte('\n')
		}
	}
	return out.String()
}

func sample(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}
