// Package video writes rendered frames out, either as an H.264 stream
// through ffmpeg or as a numbered PNG sequence.
package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"

	"github.com/ivlev/scrollscrub/internal/config"
)

// FrameSink consumes frames in presentation order.
type FrameSink interface {
	WriteFrame(img *image.RGBA) error
	Close() error
}

// Open creates the sink for format at output.
func Open(ctx context.Context, format, output string, params config.EncodeParams) (FrameSink, error) {
	switch format {
	case config.FormatMP4:
		return NewFFmpegEncoder(ctx, output, params)
	case config.FormatPNG:
		return NewPNGSequence(output)
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}

// FFmpegEncoder streams raw RGBA frames into an ffmpeg process over stdin.
type FFmpegEncoder struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	log    bytes.Buffer
	params config.EncodeParams
	frames int
}

func NewFFmpegEncoder(ctx context.Context, videoPath string, params config.EncodeParams) (*FFmpegEncoder, error) {
	e := &FFmpegEncoder{params: params}
	e.cmd = exec.CommandContext(ctx, "ffmpeg", buildFFmpegArgs(videoPath, params)...)
	e.cmd.Stdout = &e.log
	e.cmd.Stderr = &e.log

	stdin, err := e.cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe error: %w", err)
	}
	e.stdin = stdin

	if err := e.cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}
	return e, nil
}

// WriteFrame sends one frame. Frames must match the configured size.
func (e *FFmpegEncoder) WriteFrame(img *image.RGBA) error {
	if b := img.Bounds(); b.Dx() != e.params.Width || b.Dy() != e.params.Height {
		return fmt.Errorf("frame %d is %dx%d, stream is %dx%d", e.frames, b.Dx(), b.Dy(), e.params.Width, e.params.Height)
	}
	if err := writeRawRGBA(e.stdin, img); err != nil {
		return fmt.Errorf("write raw error: %w", err)
	}
	e.frames++
	return nil
}

// Close ends the stream and waits for ffmpeg to finish the file.
func (e *FFmpegEncoder) Close() error {
	e.stdin.Close()
	if err := e.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w, output: %s", err, e.log.String())
	}
	return nil
}

func buildFFmpegArgs(videoPath string, params config.EncodeParams) []string {
	encoder := params.Encoder
	if encoder == "" {
		encoder = "libx264"
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", params.Width, params.Height),
		"-framerate", fmt.Sprintf("%d", params.FPS),
		"-i", "-",
		// yuv420p needs even dimensions
		"-vf", "pad=ceil(iw/2)*2:ceil(ih/2)*2",
		"-pix_fmt", "yuv420p",
		"-c:v", encoder,
	}
	args = append(args, qualityArgs(encoder, params.Quality)...)
	args = append(args, videoPath)
	return args
}

func qualityArgs(encoder string, quality int) []string {
	switch encoder {
	case "h264_videotoolbox":
		// VideoToolbox has no CRF; quality maps to a bitrate.
		return []string{"-b:v", fmt.Sprintf("%dk", quality*100)}
	case "h264_nvenc":
		return []string{"-cq", fmt.Sprintf("%d", quality)}
	default:
		return []string{"-crf", fmt.Sprintf("%d", quality), "-preset", "medium"}
	}
}

// writeRawRGBA writes tightly packed rows, repacking sub-images.
func writeRawRGBA(w io.Writer, img *image.RGBA) error {
	bounds := img.Bounds()
	if img.Stride != bounds.Dx()*4 || bounds.Min != (image.Point{}) {
		packed := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(packed, packed.Bounds(), img, bounds.Min, draw.Src)
		img = packed
	}
	_, err := w.Write(img.Pix)
	return err
}
