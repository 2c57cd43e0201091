package renderer

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// Pixel is an 8-bit RGB triple
type Pixel struct {
	R, G, B uint8
}

// Frame is the renderer's output: width*height pixels in row-major order,
// row 0 at the top and column 0 at the left.
type Frame struct {
	Width  int
	Height int
	Pixels []Pixel
}

// ToPixel maps an averaged linear color to display bytes: gamma 2 (square root),
// clamp to [0, 0.999], scale by 256 and truncate.
func ToPixel(colorVec core.Vec3) Pixel {
	colorVec = colorVec.Sqrt().Clamp(0.0, 0.999)
	return Pixel{
		R: uint8(256 * colorVec.X),
		G: uint8(256 * colorVec.Y),
		B: uint8(256 * colorVec.Z),
	}
}

// NewFrame quantizes a [row][column] grid of accumulators
func NewFrame(pixelStats [][]PixelStats) *Frame {
	height := len(pixelStats)
	width := 0
	if height > 0 {
		width = len(pixelStats[0])
	}

	frame := &Frame{
		Width:  width,
		Height: height,
		Pixels: make([]Pixel, 0, width*height),
	}
	for y := range pixelStats {
		for x := range pixelStats[y] {
			frame.Pixels = append(frame.Pixels, ToPixel(pixelStats[y][x].GetColor()))
		}
	}
	return frame
}

// At returns the pixel at column x, row y
func (f *Frame) At(x, y int) Pixel {
	return f.Pixels[y*f.Width+x]
}

// Image converts the frame to an opaque RGBA image for encoding
func (f *Frame) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			p := f.At(x, y)
			img.SetRGBA(x, y, color.RGBA{R: p.R, G: p.G, B: p.B, A: 255})
		}
	}
	return img
}

// WritePPM writes the frame as a plain-text (P3) PPM image
func (f *Frame) WritePPM(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P3\n%d %d\n255\n", f.Width, f.Height); err != nil {
		return fmt.Errorf("writing ppm header: %w", err)
	}
	for _, p := range f.Pixels {
		if _, err := fmt.Fprintf(bw, "%d %d %d\n", p.R, p.G, p.B); err != nil {
			return fmt.Errorf("writing ppm pixels: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing ppm: %w", err)
	}
	return nil
}

// AverageLuminance returns the mean perceptual luminance in [0, 1]
func (f *Frame) AverageLuminance() float64 {
	if len(f.Pixels) == 0 {
		return 0
	}
	total := 0.0
	for _, p := range f.Pixels {
		total += (0.2126*float64(p.R) + 0.7152*float64(p.G) + 0.0722*float64(p.B)) / 255.0
	}
	return total / float64(len(f.Pixels))
}
